package worksheet

import (
	"github.com/pkg/errors"

	"github.com/TsubasaBE/go-xlsxw/cellref"
	"github.com/TsubasaBE/go-xlsxw/styles"
)

// RowColOptions are the optional flags of SetRow and SetColumn.
type RowColOptions struct {
	Hidden    bool
	Level     uint8
	Collapsed bool
}

// Col describes a column definition as written to <cols>.
// C1 and C2 are the 0-based first and last column indices of the range this
// definition applies to (inclusive).
type Col struct {
	// C1 is the 0-based index of the first column in the range.
	C1 int
	// C2 is the 0-based index of the last column in the range (inclusive).
	C2 int
	// Width is the column width in character units as given to SetColumn.
	Width float64
	// Style is the cell-format (XF) index applied to blank cells.
	Style int
	// Hidden, Level and Collapsed are the outline options.
	Hidden    bool
	Level     uint8
	Collapsed bool
}

type colOptions struct {
	width     float64
	format    *styles.Format
	hidden    bool
	level     uint8
	collapsed bool
}

func (a *colOptions) equal(b *colOptions) bool {
	return *a == *b
}

// SetRow sets the height, default format and outline options of row r.  A
// height of 0 hides the row at the default height.
func (ws *Worksheet) SetRow(r int, height float64, f *styles.Format, opts *RowColOptions) error {
	col := 0
	if ws.dim.colsSet {
		col = ws.dim.colMin
	}
	if err := ws.prepare("set row", r, col); err != nil {
		return err
	}
	var o RowColOptions
	if opts != nil {
		o = *opts
	}
	if o.Level > 7 {
		o.Level = 7
	}
	if height == 0 {
		o.Hidden = true
		height = ws.defaultRowHeight
	}
	row := ws.store.getRow(r)
	row.height = height
	row.format = f
	row.hidden = o.Hidden
	row.level = o.Level
	row.collapsed = o.Collapsed
	row.changed = true
	ws.outlineRowLevel = max(ws.outlineRowLevel, o.Level)
	ws.dim.updateRow(r)
	return nil
}

// SetColumn sets the width, default format and outline options of columns
// c1..c2.  Only formatted or hidden columns count towards the dimension.
func (ws *Worksheet) SetColumn(c1, c2 int, width float64, f *styles.Format, opts *RowColOptions) error {
	if c1 > c2 {
		c1, c2 = c2, c1
	}
	if err := cellref.CheckBounds(0, c2); err != nil {
		return errors.WithMessage(err, "worksheet: set column")
	}
	if err := cellref.CheckBounds(0, c1); err != nil {
		return errors.WithMessage(err, "worksheet: set column")
	}
	if width < 0 || width > MaxColumnWidth {
		return errors.Wrapf(ErrInvalidArgument, "worksheet: set column: width %g", width)
	}
	var o RowColOptions
	if opts != nil {
		o = *opts
	}
	if o.Level > 7 {
		o.Level = 7
	}
	if f != nil || o.Hidden {
		ws.dim.updateCol(c1)
		ws.dim.updateCol(c2)
	}
	for c := c1; c <= c2; c++ {
		ws.cols[c] = &colOptions{width: width, format: f, hidden: o.Hidden, level: o.Level, collapsed: o.Collapsed}
		if f != nil {
			ws.colFormats[c] = f
		} else {
			delete(ws.colFormats, c)
		}
	}
	ws.outlineColLevel = max(ws.outlineColLevel, o.Level)
	return nil
}

// Cols returns the column definitions in ascending order, with adjacent
// identical columns coalesced.
func (ws *Worksheet) Cols() []Col {
	var out []Col
	ws.eachColRange(func(c1, c2 int, o *colOptions) {
		out = append(out, Col{
			C1: c1, C2: c2, Width: o.width, Style: o.format.XFIndex(),
			Hidden: o.hidden, Level: o.level, Collapsed: o.collapsed,
		})
	})
	return out
}

// SetDefaultRow changes the default row height and optionally hides every
// row that is not written.
func (ws *Worksheet) SetDefaultRow(height float64, hideUnused bool) error {
	if height < 0 {
		return errors.Wrapf(ErrInvalidArgument, "worksheet: set default row: height %g", height)
	}
	if height > 0 {
		ws.defaultRowHeight = height
		ws.store.defaultHeight = height
	}
	ws.defaultRowZeroed = hideUnused
	return nil
}

// colWidth converts a width in characters to the stored width, which
// includes the cell padding: 7 pixel digits plus 5 pixels of padding for
// the default font.
func colWidth(w float64) float64 {
	const digit, padding = 7.0, 5.0
	if w <= 0 {
		return 0
	}
	var pixels int
	if w < 1 {
		pixels = int(w*(digit+padding) + 0.5)
	} else {
		pixels = int(w*digit+0.5) + int(padding)
	}
	return float64(int(float64(pixels)/digit*256)) / 256
}
