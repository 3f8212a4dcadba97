package worksheet

import (
	"io"
	"sort"
	"strconv"

	"github.com/pkg/errors"

	"github.com/TsubasaBE/go-xlsxw/cellref"
	"github.com/TsubasaBE/go-xlsxw/internal/xmlwriter"
	"github.com/TsubasaBE/go-xlsxw/styles"
)

// WriteTo assembles the worksheet part and writes it to w.
//
// In constant-memory mode the remaining row is flushed and the sheet stops
// accepting writes; the streamed rows are spliced in after the header,
// whose dimension is only known at this point.
func (ws *Worksheet) WriteTo(w io.Writer) (int64, error) {
	log := ws.log.WithField("rows", ws.store.len())
	log.Debug("assembling worksheet")

	streamed := false
	if ws.stream != nil {
		var err error
		if streamed, err = ws.finishStream(); err != nil {
			return 0, err
		}
	}

	xw := xmlwriter.New(w)
	xw.Declaration()
	ws.writeWorksheetStart(xw)
	ws.writeSheetPr(xw)
	xw.EmptyTag("dimension", xmlwriter.Attr{Key: "ref", Value: ws.dim.ref()})
	ws.writeSheetViews(xw)
	ws.writeSheetFormatPr(xw)
	ws.writeCols(xw)

	switch {
	case ws.stream != nil && streamed:
		xw.StartTag("sheetData")
		if err := ws.copyStream(xw); err != nil {
			return xw.Written(), err
		}
		xw.EndTag("sheetData")
	case ws.stream == nil && ws.store.len() > 0:
		xw.StartTag("sheetData")
		ws.store.ascend(func(r *row) bool {
			ws.writeRow(xw, r)
			return xw.Err() == nil
		})
		xw.EndTag("sheetData")
	default:
		xw.EmptyTag("sheetData")
	}

	ws.writeAutoFilter(xw)
	ws.writeMergeCells(xw)
	ws.writeConditionalFormats(xw)
	ws.writeDataValidations(xw)
	ws.writeHyperlinks(xw)
	ws.writePrintOptions(xw)
	ws.writePageMargins(xw)
	ws.writePageSetup(xw)
	ws.writeHeaderFooter(xw)
	ws.writeDataBarExt(xw)
	xw.EndTag("worksheet")

	if err := xw.Flush(); err != nil {
		return xw.Written(), errors.Wrapf(ErrSinkWrite, "worksheet: %s: %v", ws.Name, err)
	}
	log.WithField("bytes", xw.Written()).Debug("worksheet assembled")
	return xw.Written(), nil
}

func (ws *Worksheet) writeWorksheetStart(xw *xmlwriter.Writer) {
	attrs := []xmlwriter.Attr{
		{Key: "xmlns", Value: xmlwriter.NSMain},
		{Key: "xmlns:r", Value: xmlwriter.NSRel},
	}
	if ws.has2010DataBars() {
		attrs = append(attrs,
			xmlwriter.Attr{Key: "xmlns:mc", Value: xmlwriter.NSMC},
			xmlwriter.Attr{Key: "xmlns:x14ac", Value: xmlwriter.NSX14AC},
			xmlwriter.Attr{Key: "mc:Ignorable", Value: "x14ac"})
	}
	xw.StartTag("worksheet", attrs...)
}

func (ws *Worksheet) writeSheetFormatPr(xw *xmlwriter.Writer) {
	attrs := []xmlwriter.Attr{xmlwriter.FloatAttr("defaultRowHeight", ws.defaultRowHeight)}
	if ws.defaultRowHeight != defaultRowHeight {
		attrs = append(attrs, xmlwriter.Attr{Key: "customHeight", Value: "1"})
	}
	if ws.defaultRowZeroed {
		attrs = append(attrs, xmlwriter.Attr{Key: "zeroHeight", Value: "1"})
	}
	if ws.outlineRowLevel > 0 {
		attrs = append(attrs, xmlwriter.IntAttr("outlineLevelRow", int(ws.outlineRowLevel)))
	}
	if ws.outlineColLevel > 0 {
		attrs = append(attrs, xmlwriter.IntAttr("outlineLevelCol", int(ws.outlineColLevel)))
	}
	if ws.has2010DataBars() {
		attrs = append(attrs, xmlwriter.Attr{Key: "x14ac:dyDescent", Value: "0.25"})
	}
	xw.EmptyTag("sheetFormatPr", attrs...)
}

// eachColRange visits the column definitions in ascending order, merging
// runs of adjacent columns with identical options.
func (ws *Worksheet) eachColRange(fn func(c1, c2 int, o *colOptions)) {
	if len(ws.cols) == 0 {
		return
	}
	keys := make([]int, 0, len(ws.cols))
	for c := range ws.cols {
		keys = append(keys, c)
	}
	sort.Ints(keys)
	start, prev := keys[0], keys[0]
	for _, c := range keys[1:] {
		if c == prev+1 && ws.cols[c].equal(ws.cols[prev]) {
			prev = c
			continue
		}
		fn(start, prev, ws.cols[start])
		start, prev = c, c
	}
	fn(start, prev, ws.cols[start])
}

func (ws *Worksheet) writeCols(xw *xmlwriter.Writer) {
	if len(ws.cols) == 0 {
		return
	}
	xw.StartTag("cols")
	ws.eachColRange(func(c1, c2 int, o *colOptions) {
		width := o.width
		custom := width != defaultColWidth
		if o.hidden && width == defaultColWidth {
			width = 0
			custom = true
		}
		attrs := []xmlwriter.Attr{
			xmlwriter.IntAttr("min", c1+1),
			xmlwriter.IntAttr("max", c2+1),
			xmlwriter.FloatAttr("width", colWidth(width)),
		}
		if xf := o.format.XFIndex(); xf > 0 {
			attrs = append(attrs, xmlwriter.IntAttr("style", xf))
		}
		if o.hidden {
			attrs = append(attrs, xmlwriter.Attr{Key: "hidden", Value: "1"})
		}
		if custom {
			attrs = append(attrs, xmlwriter.Attr{Key: "customWidth", Value: "1"})
		}
		if o.level > 0 {
			attrs = append(attrs, xmlwriter.IntAttr("outlineLevel", int(o.level)))
		}
		if o.collapsed {
			attrs = append(attrs, xmlwriter.Attr{Key: "collapsed", Value: "1"})
		}
		xw.EmptyTag("col", attrs...)
	})
	xw.EndTag("cols")
}

func (ws *Worksheet) writeMergeCells(xw *xmlwriter.Writer) {
	if len(ws.merges) == 0 {
		return
	}
	xw.StartTag("mergeCells", xmlwriter.IntAttr("count", len(ws.merges)))
	for _, m := range ws.merges {
		xw.EmptyTag("mergeCell", xmlwriter.Attr{Key: "ref", Value: m.String()})
	}
	xw.EndTag("mergeCells")
}

// ── sheet data ────────────────────────────────────────────────────────────────

func (ws *Worksheet) writeRow(xw *xmlwriter.Writer, r *row) {
	attrs := []xmlwriter.Attr{xmlwriter.IntAttr("r", r.num+1)}
	empty := r.cells.Len() == 0
	if !empty {
		attrs = append(attrs, xmlwriter.Attr{Key: "spans", Value: spans(r.minCol, r.maxCol)})
	}
	if r.format != nil {
		if xf := r.format.XFIndex(); xf > 0 {
			attrs = append(attrs, xmlwriter.IntAttr("s", xf))
		}
		attrs = append(attrs, xmlwriter.Attr{Key: "customFormat", Value: "1"})
	}
	if r.height != ws.defaultRowHeight {
		attrs = append(attrs, xmlwriter.FloatAttr("ht", r.height))
	}
	if r.hidden {
		attrs = append(attrs, xmlwriter.Attr{Key: "hidden", Value: "1"})
	}
	if r.height != ws.defaultRowHeight {
		attrs = append(attrs, xmlwriter.Attr{Key: "customHeight", Value: "1"})
	}
	if r.level > 0 {
		attrs = append(attrs, xmlwriter.IntAttr("outlineLevel", int(r.level)))
	}
	if r.collapsed {
		attrs = append(attrs, xmlwriter.Attr{Key: "collapsed", Value: "1"})
	}
	if empty {
		xw.EmptyTag("row", attrs...)
		return
	}
	xw.StartTag("row", attrs...)
	r.ascend(func(c *cell) bool {
		ws.writeCell(xw, r, c)
		return true
	})
	xw.EndTag("row")
}

// cellStyle resolves the XF index of a cell: its own format, else the row
// format, else the column format.
func (ws *Worksheet) cellStyle(r *row, c *cell) int {
	var f *styles.Format
	switch {
	case c.format != nil:
		f = c.format
	case r.format != nil:
		f = r.format
	default:
		f = ws.colFormats[c.col]
	}
	return f.XFIndex()
}

func (ws *Worksheet) writeCell(xw *xmlwriter.Writer, r *row, c *cell) {
	attrs := make([]xmlwriter.Attr, 1, 3)
	attrs[0] = xmlwriter.Attr{Key: "r", Value: cellref.RowColToCell(r.num, c.col)}
	if xf := ws.cellStyle(r, c); xf > 0 {
		attrs = append(attrs, xmlwriter.IntAttr("s", xf))
	}
	typ := func(t string) {
		attrs = append(attrs, xmlwriter.Attr{Key: "t", Value: t})
	}

	switch c.kind {
	case KindNumber:
		xw.StartTag("c", attrs...)
		xw.DataElement("v", xmlwriter.FormatFloat(c.num))
		xw.EndTag("c")

	case KindString:
		typ("s")
		xw.StartTag("c", attrs...)
		xw.DataElement("v", strconv.Itoa(c.sst))
		xw.EndTag("c")

	case KindInlineString:
		typ("inlineStr")
		xw.StartTag("c", attrs...)
		xw.StartTag("is")
		writeText(xw, c.str)
		xw.EndTag("is")
		xw.EndTag("c")

	case KindRichString:
		if c.str == "" {
			typ("s")
			xw.StartTag("c", attrs...)
			xw.DataElement("v", strconv.Itoa(c.sst))
			xw.EndTag("c")
			return
		}
		typ("inlineStr")
		xw.StartTag("c", attrs...)
		xw.StartTag("is")
		xw.Raw(c.str)
		xw.EndTag("is")
		xw.EndTag("c")

	case KindFormula:
		if c.strRes {
			typ("str")
		}
		xw.StartTag("c", attrs...)
		xw.DataElement("f", c.expr)
		if c.strRes {
			xw.DataElement("v", c.str)
		} else {
			xw.DataElement("v", xmlwriter.FormatFloat(c.num))
		}
		xw.EndTag("c")

	case KindArrayFormula:
		xw.StartTag("c", attrs...)
		xw.DataElement("f", c.expr,
			xmlwriter.Attr{Key: "t", Value: "array"},
			xmlwriter.Attr{Key: "ref", Value: c.ref})
		xw.DataElement("v", xmlwriter.FormatFloat(c.num))
		xw.EndTag("c")

	case KindBlank:
		xw.EmptyTag("c", attrs...)

	case KindBoolean:
		typ("b")
		xw.StartTag("c", attrs...)
		xw.DataElement("v", xmlwriter.FormatFloat(c.num))
		xw.EndTag("c")
	}
}
