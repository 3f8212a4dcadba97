package worksheet

import (
	"github.com/google/btree"

	"github.com/TsubasaBE/go-xlsxw/styles"
)

const btreeDegree = 32

// row holds the cells of one worksheet row plus its SetRow options.
type row struct {
	num   int
	cells *btree.BTreeG[*cell]

	// minCol and maxCol bound the cells written to this row; -1 when the
	// row has none.  They feed the spans attribute.
	minCol int
	maxCol int

	height    float64
	format    *styles.Format
	hidden    bool
	collapsed bool
	level     uint8
	changed   bool
}

func newRow(num int, height float64) *row {
	return &row{
		num:    num,
		cells:  btree.NewG(btreeDegree, cellLess),
		minCol: -1,
		maxCol: -1,
		height: height,
	}
}

func rowLess(a, b *row) bool { return a.num < b.num }

func (r *row) ascend(fn func(*cell) bool) {
	r.cells.Ascend(btree.ItemIteratorG[*cell](fn))
}

// bounds recomputes minCol and maxCol after a cell is removed.
func (r *row) bounds() {
	r.minCol, r.maxCol = -1, -1
	if lo, ok := r.cells.Min(); ok {
		r.minCol = lo.col
	}
	if hi, ok := r.cells.Max(); ok {
		r.maxCol = hi.col
	}
}

// store is the ordered row/cell table of a worksheet.
type store struct {
	rows *btree.BTreeG[*row]
	// cache is a lookup hint for the most recently touched row.
	cache *row
	// defaultHeight is the height given to rows created on first touch.
	defaultHeight float64
}

func newStore() *store {
	return &store{rows: btree.NewG(btreeDegree, rowLess), defaultHeight: defaultRowHeight}
}

// findRow returns row n if it exists.
func (s *store) findRow(n int) (*row, bool) {
	if s.cache != nil && s.cache.num == n {
		return s.cache, true
	}
	r, ok := s.rows.Get(&row{num: n})
	if ok {
		s.cache = r
	}
	return r, ok
}

// getRow returns row n, creating it on first touch.
func (s *store) getRow(n int) *row {
	if r, ok := s.findRow(n); ok {
		return r
	}
	r := newRow(n, s.defaultHeight)
	s.rows.ReplaceOrInsert(r)
	s.cache = r
	return r
}

// upsertCell stores c in row n.  A nil format on c inherits the format of
// the cell it replaces.
func (s *store) upsertCell(n int, c *cell) {
	r := s.getRow(n)
	if old, ok := r.cells.ReplaceOrInsert(c); ok && c.format == nil {
		c.format = old.format
	}
	if r.minCol < 0 || c.col < r.minCol {
		r.minCol = c.col
	}
	if c.col > r.maxCol {
		r.maxCol = c.col
	}
}

// findCell returns the cell at (n, col) if it exists.
func (s *store) findCell(n, col int) (*cell, bool) {
	r, ok := s.findRow(n)
	if !ok {
		return nil, false
	}
	return r.cells.Get(&cell{col: col})
}

// ascend visits rows in ascending order until fn returns false.
func (s *store) ascend(fn func(*row) bool) {
	s.rows.Ascend(btree.ItemIteratorG[*row](fn))
}

// deleteRow drops row n, used after a streamed row has been serialised.
func (s *store) deleteRow(n int) {
	s.rows.Delete(&row{num: n})
	if s.cache != nil && s.cache.num == n {
		s.cache = nil
	}
}

func (s *store) len() int { return s.rows.Len() }
