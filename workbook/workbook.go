// Package workbook owns the worksheets of one document together with their
// shared string table and format table, and writes the worksheet-level
// parts of the package.
//
// Packaging is left to the caller: WriteParts hands every part to a
// PartWriter, which *zip.Writer satisfies directly.
package workbook

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/TsubasaBE/go-xlsxw/stringtable"
	"github.com/TsubasaBE/go-xlsxw/styles"
	"github.com/TsubasaBE/go-xlsxw/worksheet"
)

// MaxSheetNameLength is the longest sheet name the file format accepts.
const MaxSheetNameLength = 31

// Error classes returned (wrapped) by Workbook methods.
var (
	// ErrSheetName is returned for a sheet name the file format rejects.
	ErrSheetName = errors.New("invalid sheet name")
	// ErrDuplicateSheet is returned when a sheet name is already in use,
	// compared case-insensitively.
	ErrDuplicateSheet = errors.New("duplicate sheet name")
	// ErrSheetNotFound is returned by SheetByName for an unknown name.
	ErrSheetNotFound = errors.New("sheet not found")
)

// Options configures a Workbook and every sheet it creates.
type Options struct {
	// ConstantMemory creates all sheets in streaming mode.
	ConstantMemory bool
	// TmpDir holds scratch files; "" uses os.TempDir.
	TmpDir string
	// Date1904 selects the 1904 date epoch.
	Date1904 bool
	// FutureFunctions prefixes post-2007 function names in formulas.
	FutureFunctions bool
	// Concurrency bounds the number of sheets assembled at once by
	// WriteParts; 0 means one per sheet.
	Concurrency int
	// Logger receives debug and warning output; nil discards it.
	Logger logrus.FieldLogger
}

// Workbook is a set of worksheets sharing one string table and one format
// table.  Adding sheets is not safe for concurrent use; writing cells to
// different sheets from different goroutines is.
type Workbook struct {
	// Styles is the format table shared by all sheets.  Register a format
	// with Styles.Add (or AddFormat) before using it in a cell.
	Styles *styles.Table

	opts   Options
	log    logrus.FieldLogger
	sst    *stringtable.Locked
	sheets []*worksheet.Worksheet
	names  map[string]struct{}
	closed bool
}

// New returns an empty workbook.
func New(opts Options) *Workbook {
	log := opts.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Workbook{
		Styles: styles.NewTable(),
		opts:   opts,
		log:    log,
		sst:    stringtable.NewLocked(stringtable.New()),
		names:  make(map[string]struct{}),
	}
}

// AddWorksheet appends a sheet.  An empty name gives "SheetN".  The first
// sheet added is the selected one.
func (wb *Workbook) AddWorksheet(name string) (*worksheet.Worksheet, error) {
	if name == "" {
		name = fmt.Sprintf("Sheet%d", len(wb.sheets)+1)
	}
	if err := checkSheetName(name); err != nil {
		return nil, err
	}
	key := strings.ToLower(name)
	if _, dup := wb.names[key]; dup {
		return nil, errors.Wrapf(ErrDuplicateSheet, "workbook: add worksheet %q", name)
	}

	ws, err := worksheet.New(name, worksheet.Options{
		ConstantMemory:  wb.opts.ConstantMemory,
		TmpDir:          wb.opts.TmpDir,
		Strings:         wb.sst,
		Logger:          wb.log,
		Date1904:        wb.opts.Date1904,
		FutureFunctions: wb.opts.FutureFunctions,
	})
	if err != nil {
		return nil, errors.WithMessagef(err, "workbook: add worksheet %q", name)
	}
	if len(wb.sheets) == 0 {
		ws.Select()
	}
	wb.sheets = append(wb.sheets, ws)
	wb.names[key] = struct{}{}
	return ws, nil
}

func checkSheetName(name string) error {
	if n := utf8.RuneCountInString(name); n > MaxSheetNameLength {
		return errors.Wrapf(ErrSheetName, "workbook: sheet name %q has %d characters", name, n)
	}
	if i := strings.IndexAny(name, `[]:*?/\`); i >= 0 {
		return errors.Wrapf(ErrSheetName, "workbook: sheet name %q contains %q", name, name[i])
	}
	if strings.HasPrefix(name, "'") || strings.HasSuffix(name, "'") {
		return errors.Wrapf(ErrSheetName, "workbook: sheet name %q starts or ends with an apostrophe", name)
	}
	return nil
}

// AddFormat registers f in the shared format table.
func (wb *Workbook) AddFormat(f *styles.Format) (*styles.Format, error) {
	return wb.Styles.Add(f)
}

// Sheets returns the worksheets in order.
func (wb *Workbook) Sheets() []*worksheet.Worksheet {
	return wb.sheets
}

// SheetNames returns the display names of all worksheets in order.
func (wb *Workbook) SheetNames() []string {
	names := make([]string, len(wb.sheets))
	for i, ws := range wb.sheets {
		names[i] = ws.Name
	}
	return names
}

// SheetByName returns the worksheet with the given name (case-insensitive).
func (wb *Workbook) SheetByName(name string) (*worksheet.Worksheet, error) {
	for _, ws := range wb.sheets {
		if strings.EqualFold(ws.Name, name) {
			return ws, nil
		}
	}
	return nil, errors.Wrapf(ErrSheetNotFound, "workbook: %q", name)
}

// SharedStrings reports the unique and total string counts of the shared
// string table.
func (wb *Workbook) SharedStrings() (unique, total int) {
	return wb.sst.Counts()
}

// WriteSharedStrings writes sharedStrings.xml.
func (wb *Workbook) WriteSharedStrings(w io.Writer) error {
	if err := wb.sst.WriteXML(w); err != nil {
		return errors.Wrapf(worksheet.ErrSinkWrite, "workbook: shared strings: %v", err)
	}
	return nil
}

// Close releases the scratch files of all sheets.  It is safe to call more
// than once.
func (wb *Workbook) Close() error {
	if wb.closed {
		return nil
	}
	wb.closed = true
	var first error
	for _, ws := range wb.sheets {
		if err := ws.Close(); err != nil && first == nil {
			first = errors.WithMessagef(err, "workbook: close %q", ws.Name)
		}
	}
	return first
}
