// Package worksheet builds the XML part of a single worksheet.
//
// Cells, rows and ranges may be written in any order in the default
// buffered mode; the part is assembled in one pass by WriteTo with rows and
// cells in ascending order.  In constant-memory mode (Options.ConstantMemory)
// each row is serialised to a scratch file as soon as a later row is
// written, and writes to earlier rows fail with ErrRowOrderViolation.
package worksheet

import (
	"io"
	"iter"

	"github.com/sirupsen/logrus"

	"github.com/TsubasaBE/go-xlsxw/cellref"
	"github.com/TsubasaBE/go-xlsxw/styles"
	"github.com/TsubasaBE/go-xlsxw/stringtable"
)

const (
	defaultRowHeight = 15.0
	defaultColWidth  = 8.43
)

// Options configures a Worksheet.  The zero value is a buffered sheet with
// a private string table and no logging.
type Options struct {
	// ConstantMemory streams each finished row to a scratch file.
	ConstantMemory bool
	// TmpDir is the directory for the scratch file; "" uses os.TempDir.
	TmpDir string
	// Strings is the shared string table.  Workbooks pass one table to all
	// their sheets; nil gives the sheet a private table.
	Strings stringtable.Interner
	// Logger receives debug and warning output.
	Logger logrus.FieldLogger
	// Date1904 selects the 1904 date epoch for WriteDatetime and date
	// validations.
	Date1904 bool
	// FutureFunctions prefixes post-2007 function names in formulas.
	FutureFunctions bool
}

// Worksheet holds the cells and sheet-level records of one worksheet.  It
// is not safe for concurrent use.
type Worksheet struct {
	// Name is the display name of the worksheet as it appears on the sheet tab.
	Name string

	opts    Options
	log     logrus.FieldLogger
	strings stringtable.Interner

	store  *store
	dim    dimTracker
	stream *stream // nil in buffered mode

	cols       map[int]*colOptions
	colFormats map[int]*styles.Format

	defaultRowHeight float64
	defaultRowZeroed bool
	outlineRowLevel  uint8
	outlineColLevel  uint8

	merges      []cellref.Range
	filter      *autoFilter
	validations []*validation

	cfGroups   []*cfGroup
	cfIndex    map[uint64]*cfGroup
	cfPriority int
	dataBars   int

	// links keeps one entry per cell in first-write order; linkAt indexes
	// it by cell reference and linkURLs counts the cells using each url.
	links    []*hyperlink
	linkAt   map[string]int
	linkURLs map[string]int

	view  viewOptions
	panes paneState
	sel   *selection
	page  pageOptions
}

// New returns an empty worksheet.  In constant-memory mode it creates the
// scratch file immediately and fails with ErrAllocation if it cannot.
func New(name string, opts Options) (*Worksheet, error) {
	log := opts.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	strs := opts.Strings
	if strs == nil {
		strs = stringtable.New()
	}
	ws := &Worksheet{
		Name:             name,
		opts:             opts,
		log:              log.WithField("sheet", name),
		strings:          strs,
		store:            newStore(),
		cols:             make(map[int]*colOptions),
		colFormats:       make(map[int]*styles.Format),
		defaultRowHeight: defaultRowHeight,
		cfIndex:          make(map[uint64]*cfGroup),
		view:             defaultView(),
		page:             defaultPage(),
	}
	if opts.ConstantMemory {
		st, err := newStream(opts.TmpDir)
		if err != nil {
			return nil, err
		}
		ws.stream = st
	}
	return ws, nil
}

// Close releases the scratch file of a constant-memory sheet.  It is a
// no-op for buffered sheets and safe to call more than once.
func (ws *Worksheet) Close() error {
	if ws.stream == nil {
		return nil
	}
	return ws.stream.close()
}

// Dimension returns the used range, or nil if no cell or row was written.
func (ws *Worksheet) Dimension() *Dimension {
	return ws.dim.dimension()
}

// DimensionRef returns the value written in <dimension ref="...">.
func (ws *Worksheet) DimensionRef() string {
	return ws.dim.ref()
}

// Cells iterates over the stored cells in row-major ascending order.  In
// constant-memory mode only the unflushed row is visible.
func (ws *Worksheet) Cells() iter.Seq[Cell] {
	return func(yield func(Cell) bool) {
		ws.store.ascend(func(r *row) bool {
			ok := true
			r.ascend(func(c *cell) bool {
				ok = yield(c.view(r.num))
				return ok
			})
			return ok
		})
	}
}

// Rows iterates over the stored rows in ascending order, yielding the row
// index and its cells.  Rows created only by SetRow yield an empty slice.
func (ws *Worksheet) Rows() iter.Seq2[int, []Cell] {
	return func(yield func(int, []Cell) bool) {
		ws.store.ascend(func(r *row) bool {
			cells := make([]Cell, 0, r.cells.Len())
			r.ascend(func(c *cell) bool {
				cells = append(cells, c.view(r.num))
				return true
			})
			return yield(r.num, cells)
		})
	}
}

// Strings returns the string table the sheet interns into.
func (ws *Worksheet) Strings() stringtable.Interner {
	return ws.strings
}
