package worksheet

import (
	"github.com/pkg/errors"

	"github.com/TsubasaBE/go-xlsxw/cellref"
	"github.com/TsubasaBE/go-xlsxw/internal/xmlwriter"
)

// PaneType selects how FreezePanesOpt freezes the panes.
type PaneType uint8

const (
	// PaneFrozen is a normal freeze.
	PaneFrozen PaneType = iota
	// PaneFrozenSplit is a freeze that reverts to a split when unfrozen.
	PaneFrozenSplit
)

type paneKind uint8

const (
	paneNone paneKind = iota
	paneFreeze
	paneSplit
)

type paneState struct {
	kind paneKind
	typ  PaneType

	// Freeze position in rows/columns, or split position in row height
	// and column width units.
	row, col float64
	// First visible row and column of the bottom-right pane.
	top, left int
}

type selection struct {
	pane       string
	activeCell string
	sqref      string
}

// FreezePanes freezes the rows above r and the columns left of c.
func (ws *Worksheet) FreezePanes(r, c int) error {
	return ws.FreezePanesOpt(r, c, r, c, PaneFrozen)
}

// FreezePanesOpt freezes at (r, c) and scrolls the unfrozen pane so that
// (top, left) is its first visible cell.
func (ws *Worksheet) FreezePanesOpt(r, c, top, left int, typ PaneType) error {
	if err := cellref.CheckBounds(r, c); err != nil {
		return errors.WithMessage(err, "worksheet: freeze panes")
	}
	if err := cellref.CheckBounds(top, left); err != nil {
		return errors.WithMessage(err, "worksheet: freeze panes")
	}
	ws.panes = paneState{kind: paneFreeze, typ: typ, row: float64(r), col: float64(c), top: top, left: left}
	return nil
}

// SplitPanes splits the window y row-height units from the top and x
// column-width units from the left.
func (ws *Worksheet) SplitPanes(y, x float64) error {
	return ws.SplitPanesOpt(y, x, 0, 0)
}

// SplitPanesOpt is SplitPanes with the first visible cell of the
// bottom-right pane.  When top and left are both 0 they are estimated from
// the split position.
func (ws *Worksheet) SplitPanesOpt(y, x float64, top, left int) error {
	if y < 0 || x < 0 {
		return errors.Wrapf(ErrInvalidArgument, "worksheet: split panes: negative position (%g, %g)", y, x)
	}
	if err := cellref.CheckBounds(top, left); err != nil {
		return errors.WithMessage(err, "worksheet: split panes")
	}
	ws.panes = paneState{kind: paneSplit, row: y, col: x, top: top, left: left}
	return nil
}

// SetSelection sets the selected range.  The active cell is the (r1, c1)
// corner as given.  Selecting only A1 is the default and is ignored.
func (ws *Worksheet) SetSelection(r1, c1, r2, c2 int) error {
	rng := cellref.NewRange(r1, c1, r2, c2)
	if err := rng.CheckBounds(); err != nil {
		return errors.WithMessage(err, "worksheet: set selection")
	}
	if rng.IsCell() && rng.FirstRow == 0 && rng.FirstCol == 0 {
		return nil
	}
	ws.sel = &selection{activeCell: cellref.RowColToCell(r1, c1), sqref: rng.String()}
	return nil
}

// writePanes writes <pane> and the <selection> elements inside
// <sheetView>.
func (ws *Worksheet) writePanes(xw *xmlwriter.Writer) {
	switch ws.panes.kind {
	case paneFreeze:
		ws.writeFreezePanes(xw)
	case paneSplit:
		ws.writeSplitPanes(xw)
	default:
		if ws.sel != nil {
			writeSelection(xw, selection{activeCell: ws.sel.activeCell, sqref: ws.sel.sqref})
		}
	}
}

func writeSelection(xw *xmlwriter.Writer, s selection) {
	var attrs []xmlwriter.Attr
	if s.pane != "" {
		attrs = append(attrs, xmlwriter.Attr{Key: "pane", Value: s.pane})
	}
	if s.activeCell != "" {
		attrs = append(attrs, xmlwriter.Attr{Key: "activeCell", Value: s.activeCell})
	}
	if s.sqref != "" {
		attrs = append(attrs, xmlwriter.Attr{Key: "sqref", Value: s.sqref})
	}
	xw.EmptyTag("selection", attrs...)
}

func (ws *Worksheet) userSelection(pane string) selection {
	if ws.sel == nil {
		return selection{pane: pane}
	}
	return selection{pane: pane, activeCell: ws.sel.activeCell, sqref: ws.sel.sqref}
}

func (ws *Worksheet) writeFreezePanes(xw *xmlwriter.Writer) {
	p := ws.panes
	row, col := int(p.row), int(p.col)
	state := "frozen"
	if p.typ == PaneFrozenSplit {
		state = "frozenSplit"
	}

	var active string
	switch {
	case row > 0 && col > 0:
		active = "bottomRight"
	case col > 0:
		active = "topRight"
	default:
		active = "bottomLeft"
	}

	var attrs []xmlwriter.Attr
	if col > 0 {
		attrs = append(attrs, xmlwriter.IntAttr("xSplit", col))
	}
	if row > 0 {
		attrs = append(attrs, xmlwriter.IntAttr("ySplit", row))
	}
	attrs = append(attrs,
		xmlwriter.Attr{Key: "topLeftCell", Value: cellref.RowColToCell(p.top, p.left)},
		xmlwriter.Attr{Key: "activePane", Value: active},
		xmlwriter.Attr{Key: "state", Value: state})
	xw.EmptyTag("pane", attrs...)

	if active == "bottomRight" {
		tr := cellref.RowColToCell(0, col)
		bl := cellref.RowColToCell(row, 0)
		writeSelection(xw, selection{pane: "topRight", activeCell: tr, sqref: tr})
		writeSelection(xw, selection{pane: "bottomLeft", activeCell: bl, sqref: bl})
	}
	writeSelection(xw, ws.userSelection(active))
}

// splitTwips converts split positions to the twips stored in xSplit and
// ySplit.  Rows are 20 twips per point plus a 300 twip header; columns go
// through the default font's pixel width plus a 390 twip header.
func splitTwips(y, x float64) (ySplit, xSplit float64) {
	if y > 0 {
		ySplit = 20*y + 300
	}
	if x > 0 {
		var pixels int
		if x < 1 {
			pixels = int(x*12 + 0.5)
		} else {
			pixels = int(x*7+0.5) + 5
		}
		points := float64(pixels) * 3 / 4
		xSplit = points*20 + 390
	}
	return ySplit, xSplit
}

func (ws *Worksheet) writeSplitPanes(xw *xmlwriter.Writer) {
	p := ws.panes
	ySplit, xSplit := splitTwips(p.row, p.col)
	top, left := p.top, p.left
	if top == 0 && left == 0 {
		if ySplit > 0 {
			top = int(0.5 + (ySplit-300)/20/15)
		}
		if xSplit > 0 {
			left = int(0.5 + (xSplit-390)/20/3*4/64)
		}
	}
	topLeft := cellref.RowColToCell(top, left)

	var active string
	switch {
	case ySplit > 0 && xSplit > 0:
		active = "bottomRight"
	case xSplit > 0:
		active = "topRight"
	default:
		active = "bottomLeft"
	}

	var attrs []xmlwriter.Attr
	if xSplit > 0 {
		attrs = append(attrs, xmlwriter.FloatAttr("xSplit", xSplit))
	}
	if ySplit > 0 {
		attrs = append(attrs, xmlwriter.FloatAttr("ySplit", ySplit))
	}
	attrs = append(attrs, xmlwriter.Attr{Key: "topLeftCell", Value: topLeft})
	if ws.sel != nil {
		attrs = append(attrs, xmlwriter.Attr{Key: "activePane", Value: active})
	}
	xw.EmptyTag("pane", attrs...)

	if active == "bottomRight" {
		tr := cellref.RowColToCell(0, left)
		bl := cellref.RowColToCell(top, 0)
		writeSelection(xw, selection{pane: "topRight", activeCell: tr, sqref: tr})
		writeSelection(xw, selection{pane: "bottomLeft", activeCell: bl, sqref: bl})
	}
	sel := ws.userSelection(active)
	if ws.sel == nil {
		sel.activeCell, sel.sqref = topLeft, topLeft
	}
	writeSelection(xw, sel)
}
