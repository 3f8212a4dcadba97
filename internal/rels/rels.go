// Package rels writes and reads OOXML relationship parts (.rels).
//
// Worksheets use it for the xl/worksheets/_rels/sheetN.xml.rels part that
// resolves the r:id of external hyperlinks.  Parse exists for round-trip
// checks in tests and tools.
package rels

import (
	"encoding/xml"
	"io"
	"strconv"

	"github.com/pkg/errors"

	"github.com/TsubasaBE/go-xlsxw/internal/xmlwriter"
)

const nsPackage = "http://schemas.openxmlformats.org/package/2006/relationships"

// Relationship types used by worksheets.
const (
	TypeHyperlink = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink"
)

// Relationships is the root element of a .rels XML document.
type Relationships struct {
	Relationships []Relationship `xml:"Relationship"`
}

// Relationship is one entry in a .rels XML document.
type Relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr,omitempty"`
}

// ID returns the conventional identifier of the n-th (1-based)
// relationship of a part.
func ID(n int) string {
	return "rId" + strconv.Itoa(n)
}

// Write emits a .rels part holding rs in order.
func Write(w io.Writer, rs []Relationship) error {
	xw := xmlwriter.New(w)
	xw.Declaration()
	xw.StartTag("Relationships", xmlwriter.Attr{Key: "xmlns", Value: nsPackage})
	for _, r := range rs {
		attrs := []xmlwriter.Attr{
			{Key: "Id", Value: r.ID},
			{Key: "Type", Value: r.Type},
			{Key: "Target", Value: r.Target},
		}
		if r.TargetMode != "" {
			attrs = append(attrs, xmlwriter.Attr{Key: "TargetMode", Value: r.TargetMode})
		}
		xw.EmptyTag("Relationship", attrs...)
	}
	xw.EndTag("Relationships")
	if err := xw.Flush(); err != nil {
		return errors.Wrap(err, "rels: write")
	}
	return nil
}

// Parse parses the raw bytes of a .rels XML file and returns a map of
// relationship ID → target string.
func Parse(data []byte) (map[string]string, error) {
	var r Relationships
	if err := xml.Unmarshal(data, &r); err != nil {
		return nil, errors.Wrap(err, "rels: parse")
	}
	m := make(map[string]string, len(r.Relationships))
	for _, rel := range r.Relationships {
		m[rel.ID] = rel.Target
	}
	return m, nil
}
