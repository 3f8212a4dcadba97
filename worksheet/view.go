package worksheet

import (
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/TsubasaBE/go-xlsxw/internal/xmlwriter"
)

// Gridlines selects which gridlines HideGridlines leaves visible.
type Gridlines uint8

const (
	HideAllGridlines Gridlines = iota
	ShowScreenGridlines
	ShowPrintGridlines
	ShowAllGridlines
)

type viewOptions struct {
	selected       bool
	screenGrid     bool
	zoom           int
	tabColor       string
	fitToPage      bool
	fitWidth       int
	fitHeight      int
	centerH        bool
	centerV        bool
	printGridlines bool
}

func defaultView() viewOptions {
	return viewOptions{screenGrid: true, zoom: 100}
}

type pageOptions struct {
	left, right, top, bottom float64
	header, footer           float64
	headerText, footerText   string
}

func defaultPage() pageOptions {
	return pageOptions{left: 0.7, right: 0.7, top: 0.75, bottom: 0.75, header: 0.3, footer: 0.3}
}

// Select marks the sheet as selected in the workbook window.
func (ws *Worksheet) Select() {
	ws.view.selected = true
}

// HideGridlines sets which gridlines are shown on screen and in print.
// Screen gridlines are on and print gridlines off by default.
func (ws *Worksheet) HideGridlines(g Gridlines) {
	ws.view.screenGrid = g == ShowScreenGridlines || g == ShowAllGridlines
	ws.view.printGridlines = g == ShowPrintGridlines || g == ShowAllGridlines
}

// SetZoom sets the view zoom in percent, 10 to 400.  Other values are
// ignored.
func (ws *Worksheet) SetZoom(z int) {
	if z < 10 || z > 400 {
		ws.log.WithField("zoom", z).Warn("zoom outside 10..400 ignored")
		return
	}
	ws.view.zoom = z
}

// SetTabColor sets the sheet tab color, "#RRGGBB" or "AARRGGBB".
func (ws *Worksheet) SetTabColor(color string) {
	ws.view.tabColor = argb(color)
}

// FitToPages scales the printout to width by height pages.  0 leaves a
// direction unconstrained.
func (ws *Worksheet) FitToPages(width, height int) {
	ws.view.fitToPage = true
	ws.view.fitWidth = width
	ws.view.fitHeight = height
}

// CenterHorizontally centers the printout on the page horizontally.
func (ws *Worksheet) CenterHorizontally() { ws.view.centerH = true }

// CenterVertically centers the printout on the page vertically.
func (ws *Worksheet) CenterVertically() { ws.view.centerV = true }

// SetMargins sets the page margins in inches.  A negative value keeps the
// default for that side.
func (ws *Worksheet) SetMargins(left, right, top, bottom float64) {
	set := func(dst *float64, v float64) {
		if v >= 0 {
			*dst = v
		}
	}
	set(&ws.page.left, left)
	set(&ws.page.right, right)
	set(&ws.page.top, top)
	set(&ws.page.bottom, bottom)
}

// SetHeader sets the page header using the &-code syntax, e.g. "&CPage &P".
func (ws *Worksheet) SetHeader(s string) error {
	if n := utf8.RuneCountInString(s); n > MaxHeaderFooterLength {
		return errors.Wrapf(ErrSheetLimit, "worksheet: set header: %d characters", n)
	}
	ws.page.headerText = s
	return nil
}

// SetFooter sets the page footer.
func (ws *Worksheet) SetFooter(s string) error {
	if n := utf8.RuneCountInString(s); n > MaxHeaderFooterLength {
		return errors.Wrapf(ErrSheetLimit, "worksheet: set footer: %d characters", n)
	}
	ws.page.footerText = s
	return nil
}

// ── XML ───────────────────────────────────────────────────────────────────────

func (ws *Worksheet) writeSheetPr(xw *xmlwriter.Writer) {
	v := ws.view
	filtered := ws.filter.filtered()
	if !filtered && v.tabColor == "" && !v.fitToPage {
		return
	}
	var attrs []xmlwriter.Attr
	if filtered {
		attrs = append(attrs, xmlwriter.Attr{Key: "filterMode", Value: "1"})
	}
	if v.tabColor == "" && !v.fitToPage {
		xw.EmptyTag("sheetPr", attrs...)
		return
	}
	xw.StartTag("sheetPr", attrs...)
	if v.tabColor != "" {
		xw.EmptyTag("tabColor", xmlwriter.Attr{Key: "rgb", Value: v.tabColor})
	}
	if v.fitToPage {
		xw.EmptyTag("pageSetUpPr", xmlwriter.Attr{Key: "fitToPage", Value: "1"})
	}
	xw.EndTag("sheetPr")
}

func (ws *Worksheet) writeSheetViews(xw *xmlwriter.Writer) {
	var attrs []xmlwriter.Attr
	if !ws.view.screenGrid {
		attrs = append(attrs, xmlwriter.Attr{Key: "showGridLines", Value: "0"})
	}
	if ws.view.selected {
		attrs = append(attrs, xmlwriter.Attr{Key: "tabSelected", Value: "1"})
	}
	if ws.view.zoom != 100 {
		attrs = append(attrs, xmlwriter.IntAttr("zoomScale", ws.view.zoom))
	}
	attrs = append(attrs, xmlwriter.Attr{Key: "workbookViewId", Value: "0"})

	xw.StartTag("sheetViews")
	if ws.panes.kind == paneNone && ws.sel == nil {
		xw.EmptyTag("sheetView", attrs...)
	} else {
		xw.StartTag("sheetView", attrs...)
		ws.writePanes(xw)
		xw.EndTag("sheetView")
	}
	xw.EndTag("sheetViews")
}

func (ws *Worksheet) writePrintOptions(xw *xmlwriter.Writer) {
	v := ws.view
	if !v.centerH && !v.centerV && !v.printGridlines {
		return
	}
	var attrs []xmlwriter.Attr
	if v.centerH {
		attrs = append(attrs, xmlwriter.Attr{Key: "horizontalCentered", Value: "1"})
	}
	if v.centerV {
		attrs = append(attrs, xmlwriter.Attr{Key: "verticalCentered", Value: "1"})
	}
	if v.printGridlines {
		attrs = append(attrs, xmlwriter.Attr{Key: "gridLines", Value: "1"})
	}
	xw.EmptyTag("printOptions", attrs...)
}

func (ws *Worksheet) writePageMargins(xw *xmlwriter.Writer) {
	p := ws.page
	xw.EmptyTag("pageMargins",
		xmlwriter.FloatAttr("left", p.left),
		xmlwriter.FloatAttr("right", p.right),
		xmlwriter.FloatAttr("top", p.top),
		xmlwriter.FloatAttr("bottom", p.bottom),
		xmlwriter.FloatAttr("header", p.header),
		xmlwriter.FloatAttr("footer", p.footer))
}

func (ws *Worksheet) writePageSetup(xw *xmlwriter.Writer) {
	v := ws.view
	if !v.fitToPage {
		return
	}
	var attrs []xmlwriter.Attr
	if v.fitWidth != 1 {
		attrs = append(attrs, xmlwriter.IntAttr("fitToWidth", v.fitWidth))
	}
	if v.fitHeight != 1 {
		attrs = append(attrs, xmlwriter.IntAttr("fitToHeight", v.fitHeight))
	}
	attrs = append(attrs, xmlwriter.Attr{Key: "orientation", Value: "portrait"})
	xw.EmptyTag("pageSetup", attrs...)
}

func (ws *Worksheet) writeHeaderFooter(xw *xmlwriter.Writer) {
	p := ws.page
	if p.headerText == "" && p.footerText == "" {
		return
	}
	xw.StartTag("headerFooter")
	if p.headerText != "" {
		xw.DataElement("oddHeader", p.headerText)
	}
	if p.footerText != "" {
		xw.DataElement("oddFooter", p.footerText)
	}
	xw.EndTag("headerFooter")
}
