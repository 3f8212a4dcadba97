package worksheet

import (
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/TsubasaBE/go-xlsxw/cellref"
	"github.com/TsubasaBE/go-xlsxw/internal/rels"
	"github.com/TsubasaBE/go-xlsxw/internal/xmlwriter"
	"github.com/TsubasaBE/go-xlsxw/styles"
)

// URLOptions are the optional parts of WriteURL.
type URLOptions struct {
	// String is the displayed text; the URL itself when empty.
	String string
	// Tip is the screen tip shown on hover.
	Tip string
}

type hyperlink struct {
	ref      string
	url      string
	external bool
	target   string
	location string
	display  string
	tooltip  string
}

var (
	urlSchemes  = regexp.MustCompile(`^(?i:https?://|ftp://|mailto:)`)
	windowsPath = regexp.MustCompile(`^([A-Za-z]:|\\\\)`)
)

// WriteURL writes a hyperlink.  url is one of:
//
//	http://, https://, ftp:// or mailto: links
//	external:path     a link to a file, optionally with #location
//	internal:location a link within the workbook, e.g. "Sheet2!A1"
//
// The cell receives the display string, formatted with f.
func (ws *Worksheet) WriteURL(r, c int, url string, f *styles.Format, opts *URLOptions) error {
	if err := cellref.CheckBounds(r, c); err != nil {
		return errors.WithMessage(err, "worksheet: write url")
	}
	if n := utf8.RuneCountInString(url); n > MaxURLLength {
		return errors.Wrapf(ErrSheetLimit, "worksheet: write url: %d characters", n)
	}
	ref := cellref.RowColToCell(r, c)
	if ws.distinctURLsAfter(ref, url) > MaxURLs {
		return errors.Wrapf(ErrSheetLimit, "worksheet: write url: more than %d distinct urls", MaxURLs)
	}
	var o URLOptions
	if opts != nil {
		o = *opts
	}
	if n := utf8.RuneCountInString(o.Tip); n > MaxHeaderFooterLength {
		return errors.Wrapf(ErrSheetLimit, "worksheet: write url: tip has %d characters", n)
	}

	link := &hyperlink{ref: ref, url: url, tooltip: o.Tip}
	display := url
	switch {
	case strings.HasPrefix(url, "internal:"):
		link.location = strings.TrimPrefix(url, "internal:")
		display = link.location
	case strings.HasPrefix(url, "external:"):
		path := strings.TrimPrefix(url, "external:")
		display = path
		link.external = true
		link.target, link.location, _ = strings.Cut(path, "#")
		if windowsPath.MatchString(link.target) {
			link.target = "file:///" + link.target
		}
	case urlSchemes.MatchString(url):
		link.external = true
		link.target, link.location, _ = strings.Cut(url, "#")
	default:
		return errors.Wrapf(ErrInvalidArgument, "worksheet: write url: unknown scheme in %q", url)
	}
	if o.String != "" {
		display = o.String
	}
	if !link.external {
		link.display = display
	}

	if err := ws.WriteString(r, c, display, f); err != nil {
		return err
	}
	ws.putLink(link)
	return nil
}

// distinctURLsAfter returns the number of distinct urls the sheet would
// hold once the link at ref points to url.
func (ws *Worksheet) distinctURLsAfter(ref, url string) int {
	n := len(ws.linkURLs)
	if ws.linkURLs[url] == 0 {
		n++
	}
	if i, ok := ws.linkAt[ref]; ok {
		if old := ws.links[i].url; old != url && ws.linkURLs[old] == 1 {
			n--
		}
	}
	return n
}

// putLink stores link, replacing any earlier link on the same cell in place.
func (ws *Worksheet) putLink(link *hyperlink) {
	if ws.linkAt == nil {
		ws.linkAt = make(map[string]int)
		ws.linkURLs = make(map[string]int)
	}
	if i, ok := ws.linkAt[link.ref]; ok {
		old := ws.links[i].url
		if ws.linkURLs[old]--; ws.linkURLs[old] == 0 {
			delete(ws.linkURLs, old)
		}
		ws.links[i] = link
	} else {
		ws.linkAt[link.ref] = len(ws.links)
		ws.links = append(ws.links, link)
	}
	ws.linkURLs[link.url]++
}

func (ws *Worksheet) writeHyperlinks(xw *xmlwriter.Writer) {
	if len(ws.links) == 0 {
		return
	}
	xw.StartTag("hyperlinks")
	n := 0
	for _, l := range ws.links {
		attrs := []xmlwriter.Attr{{Key: "ref", Value: l.ref}}
		if l.external {
			n++
			attrs = append(attrs, xmlwriter.Attr{Key: "r:id", Value: rels.ID(n)})
			if l.location != "" {
				attrs = append(attrs, xmlwriter.Attr{Key: "location", Value: l.location})
			}
			if l.tooltip != "" {
				attrs = append(attrs, xmlwriter.Attr{Key: "tooltip", Value: l.tooltip})
			}
		} else {
			attrs = append(attrs, xmlwriter.Attr{Key: "location", Value: l.location})
			if l.tooltip != "" {
				attrs = append(attrs, xmlwriter.Attr{Key: "tooltip", Value: l.tooltip})
			}
			attrs = append(attrs, xmlwriter.Attr{Key: "display", Value: l.display})
		}
		xw.EmptyTag("hyperlink", attrs...)
	}
	xw.EndTag("hyperlinks")
}

// Relationships returns the relationships of the worksheet part, one per
// external hyperlink.  IDs follow the order of the <hyperlinks> element.
func (ws *Worksheet) Relationships() []rels.Relationship {
	var out []rels.Relationship
	for _, l := range ws.links {
		if !l.external {
			continue
		}
		out = append(out, rels.Relationship{
			ID:         rels.ID(len(out) + 1),
			Type:       rels.TypeHyperlink,
			Target:     l.target,
			TargetMode: "External",
		})
	}
	return out
}

// WriteRelsTo writes the worksheet's .rels part.  It writes nothing and
// returns false when the sheet has no external links.
func (ws *Worksheet) WriteRelsTo(w io.Writer) (bool, error) {
	rs := ws.Relationships()
	if len(rs) == 0 {
		return false, nil
	}
	if err := rels.Write(w, rs); err != nil {
		return false, errors.Wrapf(ErrSinkWrite, "worksheet: write rels: %v", err)
	}
	return true, nil
}
