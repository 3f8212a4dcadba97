// Package stringtable builds the shared string table (SST) of a workbook and
// serialises it as xl/sharedStrings.xml.
//
// Indices are handed out in first-insertion order and never change once
// assigned, so a worksheet can emit a string's index as soon as the string
// is written.
package stringtable

import (
	"io"
	"sync"

	"github.com/pkg/errors"

	"github.com/TsubasaBE/go-xlsxw/internal/xmlwriter"
)

// Interner is the write-side view of a string table that worksheets depend
// on.  *StringTable and *Locked both satisfy it.
type Interner interface {
	// Intern returns the index of s, appending it on first sight.
	Intern(s string) int
	// InternRich returns the index of a pre-rendered run sequence
	// ("<r>...</r>...").  Rich entries never collide with plain strings.
	InternRich(fragment string) int
}

type key struct {
	s    string
	rich bool
}

type entry struct {
	s        string
	rich     bool
	preserve bool
}

// StringTable is the unique-string list plus its reverse lookup.  It is not
// safe for concurrent use; see Locked.
type StringTable struct {
	entries []entry
	index   map[key]int
	total   int
}

// New returns an empty StringTable.
func New() *StringTable {
	return &StringTable{index: make(map[key]int)}
}

// Intern implements Interner.
func (st *StringTable) Intern(s string) int {
	return st.intern(key{s: s})
}

// InternRich implements Interner.
func (st *StringTable) InternRich(fragment string) int {
	return st.intern(key{s: fragment, rich: true})
}

func (st *StringTable) intern(k key) int {
	st.total++
	if idx, ok := st.index[k]; ok {
		return idx
	}
	idx := len(st.entries)
	st.entries = append(st.entries, entry{
		s:        k.s,
		rich:     k.rich,
		preserve: !k.rich && needsPreserve(k.s),
	})
	st.index[k] = idx
	return idx
}

// Get returns the string at index idx.  It panics if idx is out of range,
// matching the behaviour of a slice index.
func (st *StringTable) Get(idx int) string {
	return st.entries[idx].s
}

// PreserveSpace reports whether the entry at idx has leading or trailing
// whitespace and must carry xml:space="preserve".
func (st *StringTable) PreserveSpace(idx int) bool {
	return st.entries[idx].preserve
}

// Len returns the number of unique strings.
func (st *StringTable) Len() int {
	return len(st.entries)
}

// Total returns the number of Intern calls, i.e. the number of cells that
// reference the table.
func (st *StringTable) Total() int {
	return st.total
}

// WriteXML writes the sharedStrings.xml part.
func (st *StringTable) WriteXML(w io.Writer) error {
	xw := xmlwriter.New(w)
	xw.Declaration()
	xw.StartTag("sst",
		xmlwriter.Attr{Key: "xmlns", Value: xmlwriter.NSMain},
		xmlwriter.IntAttr("count", st.total),
		xmlwriter.IntAttr("uniqueCount", len(st.entries)),
	)
	for _, e := range st.entries {
		xw.StartTag("si")
		switch {
		case e.rich:
			xw.Raw(e.s)
		case e.preserve:
			xw.DataElement("t", e.s, xmlwriter.Attr{Key: "xml:space", Value: "preserve"})
		default:
			xw.DataElement("t", e.s)
		}
		xw.EndTag("si")
	}
	xw.EndTag("sst")
	if err := xw.Flush(); err != nil {
		return errors.Wrap(err, "stringtable: write sharedStrings")
	}
	return nil
}

// needsPreserve reports whether s starts or ends with whitespace.
func needsPreserve(s string) bool {
	if s == "" {
		return false
	}
	return isSpace(s[0]) || isSpace(s[len(s)-1])
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// ── workbook-scoped table ─────────────────────────────────────────────────────

// Locked guards a StringTable shared by worksheets that are built on
// separate goroutines.
type Locked struct {
	mu sync.Mutex
	st *StringTable
}

// NewLocked wraps st.  A nil st allocates a fresh table.
func NewLocked(st *StringTable) *Locked {
	if st == nil {
		st = New()
	}
	return &Locked{st: st}
}

// Intern implements Interner.
func (l *Locked) Intern(s string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.st.Intern(s)
}

// InternRich implements Interner.
func (l *Locked) InternRich(fragment string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.st.InternRich(fragment)
}

// Counts returns the unique and total counts under the lock.
func (l *Locked) Counts() (unique, total int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.st.Len(), l.st.Total()
}

// WriteXML writes the sharedStrings.xml part under the lock.
func (l *Locked) WriteXML(w io.Writer) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.st.WriteXML(w)
}
