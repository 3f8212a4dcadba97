package worksheet

import (
	"github.com/TsubasaBE/go-xlsxw/styles"
)

// Kind identifies the value variant stored in a cell.
type Kind uint8

const (
	KindNumber Kind = iota
	KindString
	KindInlineString
	KindRichString
	KindFormula
	KindArrayFormula
	KindBlank
	KindBoolean
)

var kindNames = [...]string{
	KindNumber:       "number",
	KindString:       "string",
	KindInlineString: "inline string",
	KindRichString:   "rich string",
	KindFormula:      "formula",
	KindArrayFormula: "array formula",
	KindBlank:        "blank",
	KindBoolean:      "boolean",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Cell is a read-only view of one stored cell, yielded by Worksheet.Cells
// and Worksheet.Rows.
type Cell struct {
	// R is the 0-based row index of the cell.
	R int
	// C is the 0-based column index of the cell.
	C int
	// Kind is the stored value variant.
	Kind Kind
	// V holds the typed cell value. The dynamic type is one of:
	//   - nil     for blank cells
	//   - float64 for numbers and the cached result of numeric formulas
	//   - int     for shared strings and buffered rich strings (the SST index)
	//   - string  for inline strings and the cached result of string formulas
	//   - bool    for booleans
	V any
	// Formula is the stored formula text for formula kinds, without "=".
	Formula string
	// Style is the XF index of the format attached to the cell itself.
	Style int
}

// cell is the stored form.  Exactly one of the value fields is meaningful,
// selected by kind.
type cell struct {
	col    int
	kind   Kind
	num    float64
	str    string
	sst    int
	strRes bool
	expr   string
	ref    string
	format *styles.Format
}

func (c *cell) view(row int) Cell {
	out := Cell{R: row, C: c.col, Kind: c.kind, Formula: c.expr, Style: c.format.XFIndex()}
	switch c.kind {
	case KindNumber, KindArrayFormula:
		out.V = c.num
	case KindString:
		out.V = c.sst
	case KindRichString:
		if c.str != "" {
			out.V = c.str
		} else {
			out.V = c.sst
		}
	case KindInlineString:
		out.V = c.str
	case KindFormula:
		if c.strRes {
			out.V = c.str
		} else {
			out.V = c.num
		}
	case KindBoolean:
		out.V = c.num != 0
	}
	return out
}

func cellLess(a, b *cell) bool { return a.col < b.col }
