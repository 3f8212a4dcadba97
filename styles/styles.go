// Package styles provides the opaque cell-format handle consumed by
// worksheets, and a small registry that allocates the XF (cell format) and
// DXF (differential format) indices those handles carry.
//
// Emitting xl/styles.xml is outside this module; the registry only hands out
// stable indices and records the number formats they use, so that a package
// writer can build the style part from Formats().
package styles

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/TsubasaBE/go-xlsxw/internal/dateformat"
	"github.com/TsubasaBE/go-xlsxw/numfmt"
)

// Format is a formatting handle.  Worksheets read only its indices, number
// format and the font fields used by rich string runs.
type Format struct {
	// NumFormat is the number format string, "" for General.
	NumFormat string

	// Font properties, used when the format styles a rich string run.
	Bold      bool
	Italic    bool
	Underline bool
	Strikeout bool
	FontName  string
	FontSize  float64
	// FontColor is an ARGB hex string such as "FFFF0000"; "" for automatic.
	FontColor string

	xfIndex  int
	dxfIndex int
	numFmtID int
}

// New returns an unregistered Format.  Its XF index is 0 (the default cell
// format) until it is added to a Table.
func New() *Format {
	return &Format{dxfIndex: -1, numFmtID: -1}
}

// WithXFIndex returns a Format bound to a known XF index, for callers that
// maintain their own style table.
func WithXFIndex(xf int) *Format {
	f := New()
	f.xfIndex = xf
	return f
}

// XFIndex returns the cell format index written in s="..." attributes.
func (f *Format) XFIndex() int {
	if f == nil {
		return 0
	}
	return f.xfIndex
}

// DXFIndex returns the differential format index used by conditional
// formats, or -1 when the format was not registered as a DXF.
func (f *Format) DXFIndex() int {
	if f == nil {
		return -1
	}
	return f.dxfIndex
}

// NumFmtID returns the numFmtId assigned by the Table, -1 for an
// unregistered format and 0 for nil.
func (f *Format) NumFmtID() int {
	if f == nil {
		return 0
	}
	return f.numFmtID
}

// IsDate reports whether the number format displays a date or time.
func (f *Format) IsDate() bool {
	if f == nil {
		return false
	}
	return numfmt.IsDateFormat(f.numFmtID, f.NumFormat)
}

// HasFont reports whether any font property is set.
func (f *Format) HasFont() bool {
	return f != nil && (f.Bold || f.Italic || f.Underline || f.Strikeout ||
		f.FontName != "" || f.FontSize != 0 || f.FontColor != "")
}

// ── registry ──────────────────────────────────────────────────────────────────

// Table allocates indices.  It is safe for concurrent use.
type Table struct {
	mu         sync.Mutex
	xfs        []*Format
	dxfs       []*Format
	customFmts map[string]int
	nextFmtID  int
}

// NewTable returns a Table whose index 0 is the implicit default format.
func NewTable() *Table {
	def := New()
	def.numFmtID = 0
	return &Table{
		xfs:        []*Format{def},
		customFmts: make(map[string]int),
		nextFmtID:  dateformat.FirstCustomID,
	}
}

// Add registers f as a cell format and assigns it the next XF index.
// Adding the same handle twice is a no-op.
func (t *Table) Add(f *Format) (*Format, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if f.xfIndex > 0 && f.xfIndex < len(t.xfs) && t.xfs[f.xfIndex] == f {
		return f, nil
	}
	if err := t.assignNumFmt(f); err != nil {
		return nil, err
	}
	f.xfIndex = len(t.xfs)
	t.xfs = append(t.xfs, f)
	return f, nil
}

// AddDXF registers f as a differential format for conditional formatting.
func (t *Table) AddDXF(f *Format) (*Format, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if f.dxfIndex >= 0 && f.dxfIndex < len(t.dxfs) && t.dxfs[f.dxfIndex] == f {
		return f, nil
	}
	if err := t.assignNumFmt(f); err != nil {
		return nil, err
	}
	f.dxfIndex = len(t.dxfs)
	t.dxfs = append(t.dxfs, f)
	return f, nil
}

// Formats returns the registered cell formats in XF order, default first.
func (t *Table) Formats() []*Format {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*Format(nil), t.xfs...)
}

// CustomNumFmts returns custom number formats keyed by their numFmtId.
func (t *Table) CustomNumFmts() map[int]string {
	t.mu.Lock()
	defer t.mu.Unlock()
	m := make(map[int]string, len(t.customFmts))
	for s, id := range t.customFmts {
		m[id] = s
	}
	return m
}

func (t *Table) assignNumFmt(f *Format) error {
	f.NumFormat = numfmt.Normalize(f.NumFormat)
	if id, ok := numfmt.BuiltInID(f.NumFormat); ok {
		f.numFmtID = id
		return nil
	}
	if err := numfmt.Validate(f.NumFormat); err != nil {
		return errors.Wrap(err, "styles: add format")
	}
	id, ok := t.customFmts[f.NumFormat]
	if !ok {
		id = t.nextFmtID
		t.nextFmtID++
		t.customFmts[f.NumFormat] = id
	}
	f.numFmtID = id
	return nil
}
