// Package cellref converts between zero-based (row, col) pairs and A1-style
// cell and range references.
//
// The conversions are pure and do no bounds checking.  Public write
// operations in package worksheet call [CheckBounds] once per call, before
// any store mutation.
package cellref

import (
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
)

const (
	// MaxRows is the number of rows in a worksheet (row indices 0..MaxRows-1).
	MaxRows = 1_048_576
	// MaxCols is the number of columns in a worksheet (col indices 0..MaxCols-1).
	MaxCols = 16_384
)

// ErrIndexOutOfRange is returned for a row or column outside the worksheet
// grid.
var ErrIndexOutOfRange = errors.New("index out of range")

// ErrInvalidReference is returned by the parsers for malformed A1 strings.
var ErrInvalidReference = errors.New("invalid cell reference")

// colNames memoises ColToName for the relative form.  Cell references are
// rebuilt for every cell during assembly and most sheets use few columns.
var colNames, _ = lru.New[int, string](1024)

// CheckBounds reports ErrIndexOutOfRange when row or col is outside the grid.
func CheckBounds(row, col int) error {
	if row < 0 || row >= MaxRows {
		return errors.Wrapf(ErrIndexOutOfRange, "cellref: row %d not in [0, %d)", row, MaxRows)
	}
	if col < 0 || col >= MaxCols {
		return errors.Wrapf(ErrIndexOutOfRange, "cellref: col %d not in [0, %d)", col, MaxCols)
	}
	return nil
}

// ColToName returns the column letters for the zero-based col, e.g. 0 → "A",
// 26 → "AA".  When absolute is true the result is prefixed with "$".
func ColToName(col int, absolute bool) string {
	name, ok := colNames.Get(col)
	if !ok {
		name = colLetters(col)
		colNames.Add(col, name)
	}
	if absolute {
		return "$" + name
	}
	return name
}

// colLetters renders col as a bijective base-26 numeral.  Fourteen letters
// cover any non-negative int.
func colLetters(col int) string {
	var buf [14]byte
	i := len(buf)
	for n := col + 1; n > 0; n = (n - 1) / 26 {
		i--
		buf[i] = byte('A' + (n-1)%26)
	}
	return string(buf[i:])
}

// RowColToCell returns the relative A1 reference for (row, col).
func RowColToCell(row, col int) string {
	return RowColToCellAbs(row, col, false, false)
}

// RowColToCellAbs returns the A1 reference for (row, col) with optional "$"
// markers on the row and column parts.
func RowColToCellAbs(row, col int, rowAbs, colAbs bool) string {
	var sb strings.Builder
	sb.Grow(12)
	sb.WriteString(ColToName(col, colAbs))
	if rowAbs {
		sb.WriteByte('$')
	}
	sb.WriteString(strconv.Itoa(row + 1))
	return sb.String()
}

// RowColToRange returns "A1:B2" style references.  A range whose first and
// last cells coincide collapses to the single cell form ("A1", not "A1:A1").
func RowColToRange(firstRow, firstCol, lastRow, lastCol int) string {
	return RowColToRangeAbs(firstRow, firstCol, lastRow, lastCol, false)
}

// RowColToRangeAbs is RowColToRange with every part made absolute when abs
// is true ("$A$1:$B$2").
func RowColToRangeAbs(firstRow, firstCol, lastRow, lastCol int, abs bool) string {
	first := RowColToCellAbs(firstRow, firstCol, abs, abs)
	if firstRow == lastRow && firstCol == lastCol {
		return first
	}
	return first + ":" + RowColToCellAbs(lastRow, lastCol, abs, abs)
}

// NameToCol parses the column letters at the start of s ("$AB12" → 27).
func NameToCol(s string) (int, error) {
	s = strings.TrimPrefix(s, "$")
	col := 0
	n := 0
	for n < len(s) {
		ch := s[n]
		if ch >= 'a' && ch <= 'z' {
			ch -= 'a' - 'A'
		}
		if ch < 'A' || ch > 'Z' {
			break
		}
		col = col*26 + int(ch-'A'+1)
		n++
		if col > MaxCols {
			return 0, errors.Wrapf(ErrInvalidReference, "cellref: column in %q exceeds XFD", s)
		}
	}
	if n == 0 {
		return 0, errors.Wrapf(ErrInvalidReference, "cellref: no column letters in %q", s)
	}
	return col - 1, nil
}

// NameToRow parses the row number that follows the column letters in s
// ("B$7" → 6).
func NameToRow(s string) (int, error) {
	i := strings.IndexFunc(s, func(r rune) bool { return r >= '0' && r <= '9' })
	if i < 0 {
		return 0, errors.Wrapf(ErrInvalidReference, "cellref: no row number in %q", s)
	}
	n, err := strconv.Atoi(s[i:])
	if err != nil || n < 1 {
		return 0, errors.Wrapf(ErrInvalidReference, "cellref: bad row number in %q", s)
	}
	return n - 1, nil
}

// ParseCell parses a single A1 reference, absolute markers allowed.
func ParseCell(s string) (row, col int, err error) {
	s = strings.TrimSpace(s)
	if col, err = NameToCol(s); err != nil {
		return 0, 0, err
	}
	if row, err = NameToRow(s); err != nil {
		return 0, 0, err
	}
	return row, col, nil
}

// ── ranges ────────────────────────────────────────────────────────────────────

// Range is a rectangle of cells, inclusive on both ends, zero-based.
type Range struct {
	FirstRow int
	FirstCol int
	LastRow  int
	LastCol  int
}

// NewRange returns the normalised range spanned by two corners given in any
// order.
func NewRange(r1, c1, r2, c2 int) Range {
	return Range{FirstRow: r1, FirstCol: c1, LastRow: r2, LastCol: c2}.Normalize()
}

// ParseRange parses "A1:B2" or a single cell "A1".
func ParseRange(s string) (Range, error) {
	first, last, found := strings.Cut(s, ":")
	r1, c1, err := ParseCell(first)
	if err != nil {
		return Range{}, err
	}
	if !found {
		return Range{r1, c1, r1, c1}, nil
	}
	r2, c2, err := ParseCell(last)
	if err != nil {
		return Range{}, err
	}
	return NewRange(r1, c1, r2, c2), nil
}

// Normalize swaps corners so that First* <= Last*.
func (r Range) Normalize() Range {
	if r.FirstRow > r.LastRow {
		r.FirstRow, r.LastRow = r.LastRow, r.FirstRow
	}
	if r.FirstCol > r.LastCol {
		r.FirstCol, r.LastCol = r.LastCol, r.FirstCol
	}
	return r
}

// String returns the relative A1 form of r.
func (r Range) String() string {
	return RowColToRange(r.FirstRow, r.FirstCol, r.LastRow, r.LastCol)
}

// Contains reports whether (row, col) lies inside r.
func (r Range) Contains(row, col int) bool {
	return row >= r.FirstRow && row <= r.LastRow && col >= r.FirstCol && col <= r.LastCol
}

// Overlaps reports whether r and o share at least one cell.
func (r Range) Overlaps(o Range) bool {
	return r.FirstRow <= o.LastRow && o.FirstRow <= r.LastRow &&
		r.FirstCol <= o.LastCol && o.FirstCol <= r.LastCol
}

// IsCell reports whether r covers exactly one cell.
func (r Range) IsCell() bool {
	return r.FirstRow == r.LastRow && r.FirstCol == r.LastCol
}

// CheckBounds validates both corners of r.
func (r Range) CheckBounds() error {
	if err := CheckBounds(r.FirstRow, r.FirstCol); err != nil {
		return err
	}
	return CheckBounds(r.LastRow, r.LastCol)
}
