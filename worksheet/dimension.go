package worksheet

import (
	"strconv"

	"github.com/TsubasaBE/go-xlsxw/cellref"
)

// Dimension describes the used range of a worksheet.
type Dimension struct {
	// R is the first row index (0-based).
	R int
	// C is the first column index (0-based).
	C int
	// H is the height (number of rows).
	H int
	// W is the width (number of columns).
	W int
}

// dimTracker keeps the running bounds of every write.  Rows and columns are
// tracked separately because SetRow touches only rows and SetColumn only
// columns.
type dimTracker struct {
	rowMin, rowMax int
	colMin, colMax int
	rowsSet        bool
	colsSet        bool
}

func (d *dimTracker) update(row, col int) {
	d.updateRow(row)
	d.updateCol(col)
}

func (d *dimTracker) updateRow(row int) {
	if !d.rowsSet {
		d.rowMin, d.rowMax, d.rowsSet = row, row, true
		return
	}
	d.rowMin = min(d.rowMin, row)
	d.rowMax = max(d.rowMax, row)
}

func (d *dimTracker) updateCol(col int) {
	if !d.colsSet {
		d.colMin, d.colMax, d.colsSet = col, col, true
		return
	}
	d.colMin = min(d.colMin, col)
	d.colMax = max(d.colMax, col)
}

// ref renders the <dimension ref> value.
func (d *dimTracker) ref() string {
	switch {
	case !d.rowsSet && !d.colsSet:
		return "A1"
	case !d.rowsSet:
		return cellref.RowColToRange(0, d.colMin, 0, d.colMax)
	case !d.colsSet:
		return cellref.RowColToRange(d.rowMin, 0, d.rowMax, 0)
	}
	return cellref.RowColToRange(d.rowMin, d.colMin, d.rowMax, d.colMax)
}

// dimension returns the tracked bounds, nil when nothing was written.
func (d *dimTracker) dimension() *Dimension {
	if !d.rowsSet || !d.colsSet {
		return nil
	}
	return &Dimension{
		R: d.rowMin,
		C: d.colMin,
		H: d.rowMax - d.rowMin + 1,
		W: d.colMax - d.colMin + 1,
	}
}

// spans renders the 1-based column block covering minCol..maxCol, rounded
// out to multiples of 16.
func spans(minCol, maxCol int) string {
	lo := minCol/16*16 + 1
	hi := (maxCol + 16) / 16 * 16
	return strconv.Itoa(lo) + ":" + strconv.Itoa(hi)
}
