// Package xmlwriter emits the small, fixed subset of XML used by the OOXML
// parts this module produces: a declaration, start/end/empty tags with
// attributes in caller order, escaped character data, and pre-rendered
// fragments.
//
// A Writer latches the first write error.  Later calls become no-ops and the
// error is reported by Flush and Err, so emitters can write a whole part
// without checking every call.
package xmlwriter

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// Namespaces used by worksheet and shared-string parts.
const (
	NSMain  = "http://schemas.openxmlformats.org/spreadsheetml/2006/main"
	NSRel   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	NSMC    = "http://schemas.openxmlformats.org/markup-compatibility/2006"
	NSX14AC = "http://schemas.microsoft.com/office/spreadsheetml/2009/9/ac"
	NSX14   = "http://schemas.microsoft.com/office/spreadsheetml/2009/9/main"
	NSXM    = "http://schemas.microsoft.com/office/excel/2006/main"
)

const declaration = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

// Attr is one attribute.  Value is escaped on output.
type Attr struct {
	Key   string
	Value string
}

// IntAttr formats v in decimal.
func IntAttr(key string, v int) Attr {
	return Attr{Key: key, Value: strconv.Itoa(v)}
}

// FloatAttr formats v with up to 16 significant digits and no trailing
// zeros, the same rendering used for cell values.
func FloatAttr(key string, v float64) Attr {
	return Attr{Key: key, Value: FormatFloat(v)}
}

// FormatFloat renders v like C's "%.16g".
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 16, 64)
}

// Writer is a buffered XML tag writer.
type Writer struct {
	bw  *bufio.Writer
	cw  *countingWriter
	err error
}

// New returns a Writer that buffers output to w.
func New(w io.Writer) *Writer {
	cw := &countingWriter{w: w}
	return &Writer{bw: bufio.NewWriterSize(cw, 32*1024), cw: cw}
}

// Declaration writes the standalone UTF-8 XML declaration and newline.
func (xw *Writer) Declaration() {
	xw.writeString(declaration)
}

// StartTag writes <name attrs...>.
func (xw *Writer) StartTag(name string, attrs ...Attr) {
	xw.openTag(name, attrs)
	xw.writeByte('>')
}

// EmptyTag writes <name attrs.../>.
func (xw *Writer) EmptyTag(name string, attrs ...Attr) {
	xw.openTag(name, attrs)
	xw.writeString("/>")
}

// EndTag writes </name>.
func (xw *Writer) EndTag(name string) {
	xw.writeString("</")
	xw.writeString(name)
	xw.writeByte('>')
}

// DataElement writes <name attrs...>data</name> with data escaped.
func (xw *Writer) DataElement(name, data string, attrs ...Attr) {
	xw.openTag(name, attrs)
	xw.writeByte('>')
	xw.writeString(EscapeData(data))
	xw.EndTag(name)
}

// Raw writes s unchanged.  It is used only for fragments this module
// rendered itself (rich string runs, spliced sheet data).
func (xw *Writer) Raw(s string) {
	xw.writeString(s)
}

// Copy streams r into the output unchanged.
func (xw *Writer) Copy(r io.Reader) {
	if xw.err != nil {
		return
	}
	_, xw.err = io.Copy(xw.bw, r)
}

// Flush writes buffered data to the underlying writer and returns the first
// error seen by any call.
func (xw *Writer) Flush() error {
	if xw.err != nil {
		return xw.err
	}
	xw.err = xw.bw.Flush()
	return xw.err
}

// Err returns the latched error without flushing.
func (xw *Writer) Err() error {
	return xw.err
}

// Written returns the number of bytes that reached the underlying writer.
func (xw *Writer) Written() int64 {
	return xw.cw.n
}

func (xw *Writer) openTag(name string, attrs []Attr) {
	xw.writeByte('<')
	xw.writeString(name)
	for _, a := range attrs {
		xw.writeByte(' ')
		xw.writeString(a.Key)
		xw.writeString(`="`)
		xw.writeString(EscapeAttr(a.Value))
		xw.writeByte('"')
	}
}

func (xw *Writer) writeString(s string) {
	if xw.err != nil {
		return
	}
	_, xw.err = xw.bw.WriteString(s)
}

func (xw *Writer) writeByte(b byte) {
	if xw.err != nil {
		return
	}
	xw.err = xw.bw.WriteByte(b)
}

// ── escaping ──────────────────────────────────────────────────────────────────

var (
	dataEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "\n", "&#xA;")
)

// EscapeData escapes character data: & < >.
func EscapeData(s string) string {
	if !strings.ContainsAny(s, "&<>") {
		return s
	}
	return dataEscaper.Replace(s)
}

// EscapeAttr escapes an attribute value: & < > " and newline.
func EscapeAttr(s string) string {
	if !strings.ContainsAny(s, "&<>\"\n") {
		return s
	}
	return attrEscaper.Replace(s)
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
