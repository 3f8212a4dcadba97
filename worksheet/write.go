package worksheet

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/TsubasaBE/go-xlsxw/cellref"
	"github.com/TsubasaBE/go-xlsxw/formula"
	"github.com/TsubasaBE/go-xlsxw/internal/xmlwriter"
	"github.com/TsubasaBE/go-xlsxw/numfmt"
	"github.com/TsubasaBE/go-xlsxw/styles"
)

// RichRun is one formatted fragment of a rich string.  A nil Format uses
// the cell's default font.
type RichRun struct {
	Format *styles.Format
	Text   string
}

// prepare validates (r, c) and, in constant-memory mode, moves the row
// frontier.  It must succeed before the store is touched.
func (ws *Worksheet) prepare(op string, r, c int) error {
	if err := cellref.CheckBounds(r, c); err != nil {
		return errors.WithMessagef(err, "worksheet: %s", op)
	}
	return ws.advance(r)
}

func (ws *Worksheet) put(r int, c *cell) {
	ws.store.upsertCell(r, c)
	ws.dim.update(r, c.col)
}

// WriteNumber stores a numeric cell.
func (ws *Worksheet) WriteNumber(r, c int, v float64, f *styles.Format) error {
	if err := ws.prepare("write number", r, c); err != nil {
		return err
	}
	ws.put(r, &cell{col: c, kind: KindNumber, num: v, format: f})
	return nil
}

// WriteString stores s in the shared string table and references it from
// the cell.  An empty string writes a blank.
func (ws *Worksheet) WriteString(r, c int, s string, f *styles.Format) error {
	if err := cellref.CheckBounds(r, c); err != nil {
		return errors.WithMessage(err, "worksheet: write string")
	}
	if s == "" {
		return ws.WriteBlank(r, c, f)
	}
	if n := utf8.RuneCountInString(s); n > MaxStringLength {
		return errors.Wrapf(ErrSheetLimit, "worksheet: write string: %d characters", n)
	}
	if err := ws.advance(r); err != nil {
		return err
	}
	ws.put(r, &cell{col: c, kind: KindString, sst: ws.strings.Intern(s), format: f})
	return nil
}

// WriteInlineString stores s in the cell itself instead of the shared
// string table.
func (ws *Worksheet) WriteInlineString(r, c int, s string, f *styles.Format) error {
	if err := cellref.CheckBounds(r, c); err != nil {
		return errors.WithMessage(err, "worksheet: write inline string")
	}
	if n := utf8.RuneCountInString(s); n > MaxStringLength {
		return errors.Wrapf(ErrSheetLimit, "worksheet: write inline string: %d characters", n)
	}
	if err := ws.advance(r); err != nil {
		return err
	}
	ws.put(r, &cell{col: c, kind: KindInlineString, str: s, format: f})
	return nil
}

// WriteRichString stores a string made of differently formatted runs.  In
// buffered mode the rendered runs go to the shared string table; in
// constant-memory mode they are written inline.
func (ws *Worksheet) WriteRichString(r, c int, runs []RichRun, f *styles.Format) error {
	if err := cellref.CheckBounds(r, c); err != nil {
		return errors.WithMessage(err, "worksheet: write rich string")
	}
	if len(runs) == 0 {
		return errors.Wrap(ErrInvalidArgument, "worksheet: write rich string: no runs")
	}
	n := 0
	for i, run := range runs {
		if run.Text == "" {
			return errors.Wrapf(ErrInvalidArgument, "worksheet: write rich string: run %d is empty", i)
		}
		n += utf8.RuneCountInString(run.Text)
	}
	if n > MaxStringLength {
		return errors.Wrapf(ErrSheetLimit, "worksheet: write rich string: %d characters", n)
	}
	if err := ws.advance(r); err != nil {
		return err
	}
	fragment := renderRich(runs)
	c0 := &cell{col: c, kind: KindRichString, format: f}
	if ws.stream != nil {
		c0.str = fragment
	} else {
		c0.sst = ws.strings.InternRich(fragment)
	}
	ws.put(r, c0)
	return nil
}

// WriteFormula stores a formula with a cached result of 0.
func (ws *Worksheet) WriteFormula(r, c int, text string, f *styles.Format) error {
	return ws.WriteFormulaNum(r, c, text, f, 0)
}

// WriteFormulaNum stores a formula with a numeric cached result.
func (ws *Worksheet) WriteFormulaNum(r, c int, text string, f *styles.Format, v float64) error {
	if err := ws.prepare("write formula", r, c); err != nil {
		return err
	}
	ws.put(r, &cell{col: c, kind: KindFormula, expr: formula.Prepare(text, ws.opts.FutureFunctions), num: v, format: f})
	return nil
}

// WriteFormulaStr stores a formula with a string cached result.
func (ws *Worksheet) WriteFormulaStr(r, c int, text string, f *styles.Format, v string) error {
	if err := ws.prepare("write formula", r, c); err != nil {
		return err
	}
	ws.put(r, &cell{col: c, kind: KindFormula, expr: formula.Prepare(text, ws.opts.FutureFunctions), str: v, strRes: true, format: f})
	return nil
}

// WriteArrayFormula stores an array formula over the range.  The first cell
// of the range holds the formula; the others get 0 with the same format.
func (ws *Worksheet) WriteArrayFormula(r1, c1, r2, c2 int, text string, f *styles.Format, v float64) error {
	rng := cellref.NewRange(r1, c1, r2, c2)
	if err := rng.CheckBounds(); err != nil {
		return errors.WithMessage(err, "worksheet: write array formula")
	}
	if err := ws.advance(rng.FirstRow); err != nil {
		return err
	}
	ws.put(rng.FirstRow, &cell{
		col:    rng.FirstCol,
		kind:   KindArrayFormula,
		expr:   formula.Prepare(text, ws.opts.FutureFunctions),
		ref:    rng.String(),
		num:    v,
		format: f,
	})
	for r := rng.FirstRow; r <= rng.LastRow; r++ {
		if err := ws.advance(r); err != nil {
			return err
		}
		for c := rng.FirstCol; c <= rng.LastCol; c++ {
			if r == rng.FirstRow && c == rng.FirstCol {
				continue
			}
			ws.put(r, &cell{col: c, kind: KindNumber, format: f})
		}
	}
	return nil
}

// WriteBoolean stores a boolean cell.
func (ws *Worksheet) WriteBoolean(r, c int, b bool, f *styles.Format) error {
	if err := ws.prepare("write boolean", r, c); err != nil {
		return err
	}
	v := 0.0
	if b {
		v = 1
	}
	ws.put(r, &cell{col: c, kind: KindBoolean, num: v, format: f})
	return nil
}

// WriteBlank stores a formatted empty cell.  Without a format it only
// clears an existing value, keeping that cell's format; a cell left with
// neither is removed.
func (ws *Worksheet) WriteBlank(r, c int, f *styles.Format) error {
	if err := cellref.CheckBounds(r, c); err != nil {
		return errors.WithMessage(err, "worksheet: write blank")
	}
	if f == nil {
		return ws.clearCell(r, c)
	}
	if err := ws.advance(r); err != nil {
		return err
	}
	ws.put(r, &cell{col: c, kind: KindBlank, format: f})
	return nil
}

func (ws *Worksheet) clearCell(r, c int) error {
	if err := ws.advance(r); err != nil {
		return err
	}
	old, ok := ws.store.findCell(r, c)
	if !ok {
		return nil
	}
	row, _ := ws.store.findRow(r)
	if old.format == nil {
		row.cells.Delete(old)
		if row.cells.Len() == 0 && !row.changed {
			ws.store.deleteRow(r)
		} else {
			row.bounds()
		}
		return nil
	}
	row.cells.ReplaceOrInsert(&cell{col: c, kind: KindBlank, format: old.format})
	return nil
}

// WriteDatetime stores t as a date serial number.  f should carry a date
// number format for the value to display as a date.
func (ws *Worksheet) WriteDatetime(r, c int, t time.Time, f *styles.Format) error {
	if err := ws.prepare("write datetime", r, c); err != nil {
		return err
	}
	ws.put(r, &cell{col: c, kind: KindNumber, num: numfmt.TimeToSerial(t, ws.opts.Date1904), format: f})
	return nil
}

// ── rich runs ─────────────────────────────────────────────────────────────────

// renderRich renders runs as the <r> sequence stored in <si> or <is>.
func renderRich(runs []RichRun) string {
	var sb strings.Builder
	xw := xmlwriter.New(&sb)
	for _, run := range runs {
		xw.StartTag("r")
		if run.Format != nil {
			writeRunProps(xw, run.Format)
		}
		writeText(xw, run.Text)
		xw.EndTag("r")
	}
	_ = xw.Flush() // strings.Builder does not fail
	return sb.String()
}

func writeRunProps(xw *xmlwriter.Writer, f *styles.Format) {
	xw.StartTag("rPr")
	if f.Bold {
		xw.EmptyTag("b")
	}
	if f.Italic {
		xw.EmptyTag("i")
	}
	if f.Strikeout {
		xw.EmptyTag("strike")
	}
	if f.Underline {
		xw.EmptyTag("u")
	}
	size := f.FontSize
	if size == 0 {
		size = 11
	}
	xw.EmptyTag("sz", xmlwriter.FloatAttr("val", size))
	if f.FontColor != "" {
		xw.EmptyTag("color", xmlwriter.Attr{Key: "rgb", Value: argb(f.FontColor)})
	} else {
		xw.EmptyTag("color", xmlwriter.Attr{Key: "theme", Value: "1"})
	}
	name := f.FontName
	if name == "" {
		name = "Calibri"
	}
	xw.EmptyTag("rFont", xmlwriter.Attr{Key: "val", Value: name})
	xw.EmptyTag("family", xmlwriter.Attr{Key: "val", Value: "2"})
	if name == "Calibri" {
		xw.EmptyTag("scheme", xmlwriter.Attr{Key: "val", Value: "minor"})
	}
	xw.EndTag("rPr")
}

// writeText writes <t>, preserving leading and trailing whitespace.
func writeText(xw *xmlwriter.Writer, s string) {
	if preserveSpace(s) {
		xw.DataElement("t", s, xmlwriter.Attr{Key: "xml:space", Value: "preserve"})
		return
	}
	xw.DataElement("t", s)
}

func preserveSpace(s string) bool {
	if s == "" {
		return false
	}
	return isSpace(s[0]) || isSpace(s[len(s)-1])
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// argb normalises "#RRGGBB", "RRGGBB" or "AARRGGBB" to upper-case ARGB with
// an opaque alpha.
func argb(s string) string {
	s = strings.ToUpper(strings.TrimPrefix(s, "#"))
	if len(s) == 6 {
		return "FF" + s
	}
	return s
}
