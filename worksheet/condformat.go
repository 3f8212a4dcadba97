package worksheet

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/TsubasaBE/go-xlsxw/cellref"
	"github.com/TsubasaBE/go-xlsxw/formula"
	"github.com/TsubasaBE/go-xlsxw/internal/xmlwriter"
	"github.com/TsubasaBE/go-xlsxw/styles"
)

// CFType is the kind of a conditional format rule.
type CFType uint8

const (
	CFNone CFType = iota
	CFCell
	CFText
	CFTimePeriod
	CFAverage
	CFDuplicate
	CFUnique
	CFTop
	CFBottom
	CFBlanks
	CFNoBlanks
	CFErrors
	CFNoErrors
	CFFormula
	CF2ColorScale
	CF3ColorScale
	CFDataBar
	CFIconSet
)

// CFCriteria qualifies cell, text, time period, average and top/bottom
// rules.
type CFCriteria uint8

const (
	CFCriteriaNone CFCriteria = iota

	CFEqualTo
	CFNotEqualTo
	CFGreaterThan
	CFLessThan
	CFGreaterThanOrEqualTo
	CFLessThanOrEqualTo
	CFBetween
	CFNotBetween

	CFTextContaining
	CFTextNotContaining
	CFTextBeginsWith
	CFTextEndsWith

	CFYesterday
	CFToday
	CFTomorrow
	CFLast7Days
	CFLastWeek
	CFThisWeek
	CFNextWeek
	CFLastMonth
	CFThisMonth
	CFNextMonth

	CFAverageAbove
	CFAverageBelow
	CFAverageAboveOrEqual
	CFAverageBelowOrEqual
	CFAverage1StdDevAbove
	CFAverage1StdDevBelow
	CFAverage2StdDevAbove
	CFAverage2StdDevBelow
	CFAverage3StdDevAbove
	CFAverage3StdDevBelow

	// CFTopOrBottomPercent makes a top/bottom rule rank by percent.
	CFTopOrBottomPercent
)

// CFRuleType is the threshold type of a color scale or data bar end point.
type CFRuleType uint8

const (
	CFRuleNone CFRuleType = iota
	CFRuleMinimum
	CFRuleNumber
	CFRulePercent
	CFRulePercentile
	CFRuleFormula
	CFRuleMaximum
)

var cfvoTypes = [...]string{
	CFRuleMinimum:    "min",
	CFRuleNumber:     "num",
	CFRulePercent:    "percent",
	CFRulePercentile: "percentile",
	CFRuleFormula:    "formula",
	CFRuleMaximum:    "max",
}

// BarDirection is the fill direction of a 2010 data bar.
type BarDirection uint8

const (
	BarDirectionContext BarDirection = iota
	BarDirectionLeftToRight
	BarDirectionRightToLeft
)

// BarAxisPosition places the axis of a 2010 data bar.
type BarAxisPosition uint8

const (
	BarAxisAutomatic BarAxisPosition = iota
	BarAxisMidpoint
	BarAxisNone
)

// IconStyle is the icon set of an icon set rule.
type IconStyle uint8

const (
	Icons3ArrowsColored IconStyle = iota
	Icons3ArrowsGray
	Icons3Flags
	Icons3TrafficLightsUnrimmed
	Icons3TrafficLightsRimmed
	Icons3Signs
	Icons3SymbolsCircled
	Icons3SymbolsUncircled
	Icons4ArrowsColored
	Icons4ArrowsGray
	Icons4RedToBlack
	Icons4Ratings
	Icons4TrafficLights
	Icons5ArrowsColored
	Icons5ArrowsGray
	Icons5Ratings
	Icons5Quarters
)

var iconSets = [...]struct {
	name  string
	count int
}{
	Icons3ArrowsColored:         {"3Arrows", 3},
	Icons3ArrowsGray:            {"3ArrowsGray", 3},
	Icons3Flags:                 {"3Flags", 3},
	Icons3TrafficLightsUnrimmed: {"3TrafficLights1", 3},
	Icons3TrafficLightsRimmed:   {"3TrafficLights2", 3},
	Icons3Signs:                 {"3Signs", 3},
	Icons3SymbolsCircled:        {"3Symbols", 3},
	Icons3SymbolsUncircled:      {"3Symbols2", 3},
	Icons4ArrowsColored:         {"4Arrows", 4},
	Icons4ArrowsGray:            {"4ArrowsGray", 4},
	Icons4RedToBlack:            {"4RedToBlack", 4},
	Icons4Ratings:               {"4Rating", 4},
	Icons4TrafficLights:         {"4TrafficLights", 4},
	Icons5ArrowsColored:         {"5Arrows", 5},
	Icons5ArrowsGray:            {"5ArrowsGray", 5},
	Icons5Ratings:               {"5Rating", 5},
	Icons5Quarters:              {"5Quarters", 5},
}

// ConditionalFormat describes one conditional format rule.  Which fields
// apply depends on Type.
//
// Numeric thresholds have a *String alternative that takes precedence when
// set; it holds a cell reference or formula.  Colors are "#RRGGBB",
// "RRGGBB" or "AARRGGBB".
type ConditionalFormat struct {
	Type     CFType
	Criteria CFCriteria

	Value       float64
	ValueString string

	MinValue       float64
	MinValueString string
	MinRuleType    CFRuleType
	MinColor       string

	MidValue       float64
	MidValueString string
	MidRuleType    CFRuleType
	MidColor       string

	MaxValue       float64
	MaxValueString string
	MaxRuleType    CFRuleType
	MaxColor       string

	// Format is the differential format applied when the rule matches.  It
	// must have been registered with styles.Table.AddDXF.
	Format *styles.Format

	// MultiRange replaces the range argument in the sqref, e.g.
	// "A1:A5 C1:C5".  Formulas still refer to the range argument's first
	// cell.
	MultiRange string
	StopIfTrue bool

	BarColor                   string
	BarOnly                    bool
	DataBar2010                bool
	BarSolid                   bool
	BarNegativeColor           string
	BarBorderColor             string
	BarNegativeBorderColor     string
	BarNegativeColorSame       bool
	BarNegativeBorderColorSame bool
	BarNoBorder                bool
	BarDirection               BarDirection
	BarAxisPosition            BarAxisPosition
	BarAxisColor               string

	IconStyle    IconStyle
	ReverseIcons bool
	IconsOnly    bool
}

// bar2010 reports whether the rule needs the Excel 2010 data bar extension.
func (cf *ConditionalFormat) bar2010() bool {
	return cf.DataBar2010 || cf.BarSolid || cf.BarNoBorder ||
		cf.BarNegativeColor != "" || cf.BarBorderColor != "" ||
		cf.BarNegativeBorderColor != "" || cf.BarNegativeColorSame ||
		cf.BarNegativeBorderColorSame || cf.BarAxisColor != "" ||
		cf.BarDirection != BarDirectionContext || cf.BarAxisPosition != BarAxisAutomatic
}

type cfRule struct {
	ConditionalFormat
	priority int
	sqref    string
	// cell is the first cell of the range, referenced by generated formulas.
	cell string
	// guid links a 2010 data bar to its extension element; "" otherwise.
	guid string
}

type cfGroup struct {
	sqref string
	rules []*cfRule
}

// ConditionalFormatCell applies cf to a single cell.
func (ws *Worksheet) ConditionalFormatCell(r, c int, cf *ConditionalFormat) error {
	return ws.ConditionalFormatRange(r, c, r, c, cf)
}

// ConditionalFormatRange adds a rule over the range.  Rules on the same
// range share one <conditionalFormatting> element; priorities follow the
// order of the calls.
func (ws *Worksheet) ConditionalFormatRange(r1, c1, r2, c2 int, cf *ConditionalFormat) error {
	rng := cellref.NewRange(r1, c1, r2, c2)
	if err := rng.CheckBounds(); err != nil {
		return errors.WithMessage(err, "worksheet: conditional format")
	}
	if cf == nil {
		return errors.Wrap(ErrInvalidArgument, "worksheet: conditional format: nil rule")
	}
	if err := checkConditionalFormat(cf); err != nil {
		return err
	}

	sqref := rng.String()
	if cf.MultiRange != "" {
		sqref = strings.Join(strings.Fields(cf.MultiRange), " ")
	}
	ws.cfPriority++
	rule := &cfRule{
		ConditionalFormat: *cf,
		priority:          ws.cfPriority,
		sqref:             sqref,
		cell:              cellref.RowColToCell(rng.FirstRow, rng.FirstCol),
	}
	if cf.Type == CFDataBar && cf.bar2010() {
		ws.dataBars++
		rule.guid = dataBarGUID(ws.dataBars)
	}

	key := xxhash.Sum64String(sqref)
	g, ok := ws.cfIndex[key]
	if !ok || g.sqref != sqref {
		g = &cfGroup{sqref: sqref}
		ws.cfGroups = append(ws.cfGroups, g)
		if !ok {
			ws.cfIndex[key] = g
		}
	}
	g.rules = append(g.rules, rule)
	return nil
}

func checkConditionalFormat(cf *ConditionalFormat) error {
	invalid := func(format string, args ...any) error {
		return errors.Wrapf(ErrInvalidArgument, "worksheet: conditional format: "+format, args...)
	}
	switch cf.Type {
	case CFNone:
		return invalid("no type")
	case CFCell:
		if cf.Criteria < CFEqualTo || cf.Criteria > CFNotBetween {
			return invalid("cell rule needs a comparison")
		}
	case CFText:
		if cf.Criteria < CFTextContaining || cf.Criteria > CFTextEndsWith {
			return invalid("text rule needs a text criteria")
		}
		if cf.ValueString == "" {
			return invalid("text rule needs a value")
		}
		if n := utf8.RuneCountInString(cf.ValueString); n > MaxHeaderFooterLength {
			return errors.Wrapf(ErrSheetLimit, "worksheet: conditional format: text has %d characters", n)
		}
	case CFTimePeriod:
		if cf.Criteria < CFYesterday || cf.Criteria > CFNextMonth {
			return invalid("time period rule needs a period")
		}
	case CFAverage:
		if cf.Criteria != CFCriteriaNone && (cf.Criteria < CFAverageAbove || cf.Criteria > CFAverage3StdDevBelow) {
			return invalid("average rule has criteria %d", cf.Criteria)
		}
	case CFFormula:
		if cf.ValueString == "" {
			return invalid("formula rule needs a formula")
		}
	case CFIconSet:
		if int(cf.IconStyle) >= len(iconSets) {
			return invalid("unknown icon style %d", cf.IconStyle)
		}
	}
	if cf.Type > CFIconSet {
		return invalid("unknown type %d", cf.Type)
	}
	return nil
}

// dataBarPrefix fills the first ten bytes of every data bar GUID; the last
// six hold the sheet-scoped counter.
var dataBarPrefix = [10]byte{0xDA, 0x7A, 0xBA, 0x51, 0xAA, 0xAA, 0xBB, 0xBB, 0x00, 0x01}

func dataBarGUID(n int) string {
	var u uuid.UUID
	copy(u[:], dataBarPrefix[:])
	var ctr [8]byte
	binary.BigEndian.PutUint64(ctr[:], uint64(n))
	copy(u[10:], ctr[2:])
	return "{" + strings.ToUpper(u.String()) + "}"
}

// has2010DataBars reports whether any rule needs the x14 extension.
func (ws *Worksheet) has2010DataBars() bool {
	return ws.dataBars > 0
}

// ── rule XML ──────────────────────────────────────────────────────────────────

var cellOperators = map[CFCriteria]string{
	CFEqualTo:              "equal",
	CFNotEqualTo:           "notEqual",
	CFGreaterThan:          "greaterThan",
	CFLessThan:             "lessThan",
	CFGreaterThanOrEqualTo: "greaterThanOrEqual",
	CFLessThanOrEqualTo:    "lessThanOrEqual",
	CFBetween:              "between",
	CFNotBetween:           "notBetween",
}

var timePeriods = map[CFCriteria]string{
	CFYesterday: "yesterday",
	CFToday:     "today",
	CFTomorrow:  "tomorrow",
	CFLast7Days: "last7Days",
	CFLastWeek:  "lastWeek",
	CFThisWeek:  "thisWeek",
	CFNextWeek:  "nextWeek",
	CFLastMonth: "lastMonth",
	CFThisMonth: "thisMonth",
	CFNextMonth: "nextMonth",
}

func (ws *Worksheet) writeConditionalFormats(xw *xmlwriter.Writer) {
	for _, g := range ws.cfGroups {
		xw.StartTag("conditionalFormatting", xmlwriter.Attr{Key: "sqref", Value: g.sqref})
		for _, rule := range g.rules {
			rule.write(xw)
		}
		xw.EndTag("conditionalFormatting")
	}
}

// head returns the attributes shared by all rules: type, dxfId, priority
// and stopIfTrue.
func (rule *cfRule) head(typ string) []xmlwriter.Attr {
	attrs := []xmlwriter.Attr{{Key: "type", Value: typ}}
	if dxf := rule.Format.DXFIndex(); dxf >= 0 {
		attrs = append(attrs, xmlwriter.IntAttr("dxfId", dxf))
	}
	attrs = append(attrs, xmlwriter.IntAttr("priority", rule.priority))
	if rule.StopIfTrue {
		attrs = append(attrs, xmlwriter.Attr{Key: "stopIfTrue", Value: "1"})
	}
	return attrs
}

func (rule *cfRule) write(xw *xmlwriter.Writer) {
	switch rule.Type {
	case CFCell:
		attrs := append(rule.head("cellIs"), xmlwriter.Attr{Key: "operator", Value: cellOperators[rule.Criteria]})
		xw.StartTag("cfRule", attrs...)
		if rule.Criteria == CFBetween || rule.Criteria == CFNotBetween {
			xw.DataElement("formula", operand(rule.MinValueString, rule.MinValue))
			xw.DataElement("formula", operand(rule.MaxValueString, rule.MaxValue))
		} else {
			xw.DataElement("formula", operand(rule.ValueString, rule.Value))
		}
		xw.EndTag("cfRule")

	case CFText:
		rule.writeText(xw)

	case CFTimePeriod:
		attrs := append(rule.head("timePeriod"), xmlwriter.Attr{Key: "timePeriod", Value: timePeriods[rule.Criteria]})
		xw.StartTag("cfRule", attrs...)
		xw.DataElement("formula", timePeriodFormula(rule.Criteria, rule.cell))
		xw.EndTag("cfRule")

	case CFAverage:
		xw.EmptyTag("cfRule", append(rule.head("aboveAverage"), averageAttrs(rule.Criteria)...)...)

	case CFDuplicate:
		xw.EmptyTag("cfRule", rule.head("duplicateValues")...)

	case CFUnique:
		xw.EmptyTag("cfRule", rule.head("uniqueValues")...)

	case CFTop, CFBottom:
		attrs := rule.head("top10")
		if rule.Criteria == CFTopOrBottomPercent {
			attrs = append(attrs, xmlwriter.Attr{Key: "percent", Value: "1"})
		}
		if rule.Type == CFBottom {
			attrs = append(attrs, xmlwriter.Attr{Key: "bottom", Value: "1"})
		}
		rank := int(rule.Value)
		if rank == 0 {
			rank = 10
		}
		xw.EmptyTag("cfRule", append(attrs, xmlwriter.IntAttr("rank", rank))...)

	case CFBlanks:
		rule.writeFormulaRule(xw, "containsBlanks", "LEN(TRIM("+rule.cell+"))=0")
	case CFNoBlanks:
		rule.writeFormulaRule(xw, "notContainsBlanks", "LEN(TRIM("+rule.cell+"))>0")
	case CFErrors:
		rule.writeFormulaRule(xw, "containsErrors", "ISERROR("+rule.cell+")")
	case CFNoErrors:
		rule.writeFormulaRule(xw, "notContainsErrors", "NOT(ISERROR("+rule.cell+"))")
	case CFFormula:
		rule.writeFormulaRule(xw, "expression", formula.Strip(rule.ValueString))

	case CF2ColorScale, CF3ColorScale:
		rule.writeColorScale(xw)

	case CFDataBar:
		rule.writeDataBar(xw)

	case CFIconSet:
		rule.writeIconSet(xw)
	}
}

func (rule *cfRule) writeFormulaRule(xw *xmlwriter.Writer, typ, f string) {
	xw.StartTag("cfRule", rule.head(typ)...)
	xw.DataElement("formula", f)
	xw.EndTag("cfRule")
}

func (rule *cfRule) writeText(xw *xmlwriter.Writer) {
	text := rule.ValueString
	quoted := strings.ReplaceAll(text, `"`, `""`)
	n := strconv.Itoa(utf8.RuneCountInString(text))

	var typ, op, f string
	switch rule.Criteria {
	case CFTextContaining:
		typ, op = "containsText", "containsText"
		f = `NOT(ISERROR(SEARCH("` + quoted + `",` + rule.cell + `)))`
	case CFTextNotContaining:
		typ, op = "notContainsText", "notContains"
		f = `ISERROR(SEARCH("` + quoted + `",` + rule.cell + `))`
	case CFTextBeginsWith:
		typ, op = "beginsWith", "beginsWith"
		f = `LEFT(` + rule.cell + `,` + n + `)="` + quoted + `"`
	case CFTextEndsWith:
		typ, op = "endsWith", "endsWith"
		f = `RIGHT(` + rule.cell + `,` + n + `)="` + quoted + `"`
	}
	attrs := append(rule.head(typ),
		xmlwriter.Attr{Key: "operator", Value: op},
		xmlwriter.Attr{Key: "text", Value: text})
	xw.StartTag("cfRule", attrs...)
	xw.DataElement("formula", f)
	xw.EndTag("cfRule")
}

func timePeriodFormula(c CFCriteria, cell string) string {
	var f string
	switch c {
	case CFYesterday:
		f = "FLOOR(%[1]s,1)=TODAY()-1"
	case CFToday:
		f = "FLOOR(%[1]s,1)=TODAY()"
	case CFTomorrow:
		f = "FLOOR(%[1]s,1)=TODAY()+1"
	case CFLast7Days:
		f = "AND(TODAY()-FLOOR(%[1]s,1)<=6,FLOOR(%[1]s,1)<=TODAY())"
	case CFLastWeek:
		f = "AND(TODAY()-ROUNDDOWN(%[1]s,0)>=(WEEKDAY(TODAY())),TODAY()-ROUNDDOWN(%[1]s,0)<(WEEKDAY(TODAY())+7))"
	case CFThisWeek:
		f = "AND(TODAY()-ROUNDDOWN(%[1]s,0)<=WEEKDAY(TODAY())-1,ROUNDDOWN(%[1]s,0)-TODAY()<=7-WEEKDAY(TODAY()))"
	case CFNextWeek:
		f = "AND(ROUNDDOWN(%[1]s,0)-TODAY()>(7-WEEKDAY(TODAY())),ROUNDDOWN(%[1]s,0)-TODAY()<(15-WEEKDAY(TODAY())))"
	case CFLastMonth:
		f = "AND(MONTH(%[1]s)=MONTH(TODAY())-1,OR(YEAR(%[1]s)=YEAR(TODAY()),AND(MONTH(%[1]s)=1,YEAR(%[1]s)=YEAR(TODAY())-1)))"
	case CFThisMonth:
		f = "AND(MONTH(%[1]s)=MONTH(TODAY()),YEAR(%[1]s)=YEAR(TODAY()))"
	case CFNextMonth:
		f = "AND(MONTH(%[1]s)=MONTH(TODAY())+1,OR(YEAR(%[1]s)=YEAR(TODAY()),AND(MONTH(%[1]s)=12,YEAR(%[1]s)=YEAR(TODAY())+1)))"
	}
	return fmt.Sprintf(f, cell)
}

func averageAttrs(c CFCriteria) []xmlwriter.Attr {
	below := xmlwriter.Attr{Key: "aboveAverage", Value: "0"}
	equal := xmlwriter.Attr{Key: "equalAverage", Value: "1"}
	stdDev := func(n int) xmlwriter.Attr { return xmlwriter.IntAttr("stdDev", n) }
	switch c {
	case CFAverageBelow:
		return []xmlwriter.Attr{below}
	case CFAverageAboveOrEqual:
		return []xmlwriter.Attr{equal}
	case CFAverageBelowOrEqual:
		return []xmlwriter.Attr{below, equal}
	case CFAverage1StdDevAbove:
		return []xmlwriter.Attr{stdDev(1)}
	case CFAverage1StdDevBelow:
		return []xmlwriter.Attr{below, stdDev(1)}
	case CFAverage2StdDevAbove:
		return []xmlwriter.Attr{stdDev(2)}
	case CFAverage2StdDevBelow:
		return []xmlwriter.Attr{below, stdDev(2)}
	case CFAverage3StdDevAbove:
		return []xmlwriter.Attr{stdDev(3)}
	case CFAverage3StdDevBelow:
		return []xmlwriter.Attr{below, stdDev(3)}
	}
	return nil
}

// operand renders a rule value: the string form without a leading "=" when
// set, otherwise the number.
func operand(s string, v float64) string {
	if s != "" {
		return formula.Strip(s)
	}
	return xmlwriter.FormatFloat(v)
}

// cfvo is one color scale or data bar threshold.
type cfvo struct {
	typ   CFRuleType
	value string
}

func endPoint(typ, def CFRuleType, s string, v float64) cfvo {
	if typ == CFRuleNone {
		typ = def
	}
	if typ == CFRuleMinimum || typ == CFRuleMaximum {
		return cfvo{typ: typ, value: "0"}
	}
	return cfvo{typ: typ, value: operand(s, v)}
}

func writeCfvo(xw *xmlwriter.Writer, c cfvo, withValue bool) {
	attrs := []xmlwriter.Attr{{Key: "type", Value: cfvoTypes[c.typ]}}
	if withValue {
		attrs = append(attrs, xmlwriter.Attr{Key: "val", Value: c.value})
	}
	xw.EmptyTag("cfvo", attrs...)
}

func colorOr(c, def string) string {
	if c == "" {
		return def
	}
	return argb(c)
}

func (rule *cfRule) writeColorScale(xw *xmlwriter.Writer) {
	minColor, maxColor := "FFFF7128", "FFFFEF9C"
	if rule.Type == CF3ColorScale {
		minColor, maxColor = "FFF8696B", "FF63BE7B"
	}
	xw.StartTag("cfRule", rule.head("colorScale")...)
	xw.StartTag("colorScale")
	writeCfvo(xw, endPoint(rule.MinRuleType, CFRuleMinimum, rule.MinValueString, rule.MinValue), true)
	if rule.Type == CF3ColorScale {
		mid := rule.MidValue
		if rule.MidRuleType == CFRuleNone && mid == 0 && rule.MidValueString == "" {
			mid = 50
		}
		writeCfvo(xw, endPoint(rule.MidRuleType, CFRulePercentile, rule.MidValueString, mid), true)
	}
	writeCfvo(xw, endPoint(rule.MaxRuleType, CFRuleMaximum, rule.MaxValueString, rule.MaxValue), true)
	xw.EmptyTag("color", xmlwriter.Attr{Key: "rgb", Value: colorOr(rule.MinColor, minColor)})
	if rule.Type == CF3ColorScale {
		xw.EmptyTag("color", xmlwriter.Attr{Key: "rgb", Value: colorOr(rule.MidColor, "FFFFEB84")})
	}
	xw.EmptyTag("color", xmlwriter.Attr{Key: "rgb", Value: colorOr(rule.MaxColor, maxColor)})
	xw.EndTag("colorScale")
	xw.EndTag("cfRule")
}

func (rule *cfRule) barEnds() (cfvo, cfvo) {
	return endPoint(rule.MinRuleType, CFRuleMinimum, rule.MinValueString, rule.MinValue),
		endPoint(rule.MaxRuleType, CFRuleMaximum, rule.MaxValueString, rule.MaxValue)
}

func (rule *cfRule) writeDataBar(xw *xmlwriter.Writer) {
	lo, hi := rule.barEnds()
	ext := rule.guid != ""
	xw.StartTag("cfRule", rule.head("dataBar")...)
	if rule.BarOnly {
		xw.StartTag("dataBar", xmlwriter.Attr{Key: "showValue", Value: "0"})
	} else {
		xw.StartTag("dataBar")
	}
	// The 2010 form leaves min and max to the extension element.
	writeCfvo(xw, lo, !ext || lo.typ != CFRuleMinimum)
	writeCfvo(xw, hi, !ext || hi.typ != CFRuleMaximum)
	xw.EmptyTag("color", xmlwriter.Attr{Key: "rgb", Value: colorOr(rule.BarColor, "FF638EC6")})
	xw.EndTag("dataBar")
	if ext {
		xw.StartTag("extLst")
		xw.StartTag("ext",
			xmlwriter.Attr{Key: "xmlns:x14", Value: xmlwriter.NSX14},
			xmlwriter.Attr{Key: "uri", Value: "{B025F937-C7B1-47D3-B67F-A62EFF666E3E}"})
		xw.DataElement("x14:id", rule.guid)
		xw.EndTag("ext")
		xw.EndTag("extLst")
	}
	xw.EndTag("cfRule")
}

func (rule *cfRule) writeIconSet(xw *xmlwriter.Writer) {
	set := iconSets[rule.IconStyle]
	var attrs []xmlwriter.Attr
	if rule.IconStyle != Icons3TrafficLightsUnrimmed {
		attrs = append(attrs, xmlwriter.Attr{Key: "iconSet", Value: set.name})
	}
	if rule.IconsOnly {
		attrs = append(attrs, xmlwriter.Attr{Key: "showValue", Value: "0"})
	}
	if rule.ReverseIcons {
		attrs = append(attrs, xmlwriter.Attr{Key: "reverse", Value: "1"})
	}
	xw.StartTag("cfRule", rule.head("iconSet")...)
	xw.StartTag("iconSet", attrs...)
	for i := range set.count {
		// Thresholds split 0..100 evenly: 0/33/67, 0/25/50/75, 0/20/40/60/80.
		pct := int(float64(i*100)/float64(set.count) + 0.5)
		writeCfvo(xw, cfvo{typ: CFRulePercent, value: strconv.Itoa(pct)}, true)
	}
	xw.EndTag("iconSet")
	xw.EndTag("cfRule")
}

// ── x14 extension ─────────────────────────────────────────────────────────────

// writeDataBarExt writes the worksheet <extLst> holding the 2010 data bar
// definitions.
func (ws *Worksheet) writeDataBarExt(xw *xmlwriter.Writer) {
	if !ws.has2010DataBars() {
		return
	}
	xw.StartTag("extLst")
	xw.StartTag("ext",
		xmlwriter.Attr{Key: "xmlns:x14", Value: xmlwriter.NSX14},
		xmlwriter.Attr{Key: "uri", Value: "{78C0D931-6437-407d-A8EE-F0AAD7539E65}"})
	xw.StartTag("x14:conditionalFormattings")
	for _, g := range ws.cfGroups {
		for _, rule := range g.rules {
			if rule.guid == "" {
				continue
			}
			xw.StartTag("x14:conditionalFormatting", xmlwriter.Attr{Key: "xmlns:xm", Value: xmlwriter.NSXM})
			xw.StartTag("x14:cfRule", xmlwriter.Attr{Key: "type", Value: "dataBar"}, xmlwriter.Attr{Key: "id", Value: rule.guid})
			rule.writeX14DataBar(xw)
			xw.EndTag("x14:cfRule")
			xw.DataElement("xm:sqref", rule.sqref)
			xw.EndTag("x14:conditionalFormatting")
		}
	}
	xw.EndTag("x14:conditionalFormattings")
	xw.EndTag("ext")
	xw.EndTag("extLst")
}

func (rule *cfRule) writeX14DataBar(xw *xmlwriter.Writer) {
	attrs := []xmlwriter.Attr{{Key: "minLength", Value: "0"}, {Key: "maxLength", Value: "100"}}
	if !rule.BarNoBorder {
		attrs = append(attrs, xmlwriter.Attr{Key: "border", Value: "1"})
	}
	if rule.BarSolid {
		attrs = append(attrs, xmlwriter.Attr{Key: "gradient", Value: "0"})
	}
	switch rule.BarDirection {
	case BarDirectionLeftToRight:
		attrs = append(attrs, xmlwriter.Attr{Key: "direction", Value: "leftToRight"})
	case BarDirectionRightToLeft:
		attrs = append(attrs, xmlwriter.Attr{Key: "direction", Value: "rightToLeft"})
	}
	if rule.BarNegativeColorSame {
		attrs = append(attrs, xmlwriter.Attr{Key: "negativeBarColorSameAsPositive", Value: "1"})
	}
	if !rule.BarNoBorder && !rule.BarNegativeBorderColorSame {
		attrs = append(attrs, xmlwriter.Attr{Key: "negativeBarBorderColorSameAsPositive", Value: "0"})
	}
	switch rule.BarAxisPosition {
	case BarAxisMidpoint:
		attrs = append(attrs, xmlwriter.Attr{Key: "axisPosition", Value: "middle"})
	case BarAxisNone:
		attrs = append(attrs, xmlwriter.Attr{Key: "axisPosition", Value: "none"})
	}

	xw.StartTag("x14:dataBar", attrs...)
	lo, hi := rule.barEnds()
	writeX14Cfvo(xw, lo, rule.MinRuleType == CFRuleNone, "autoMin")
	writeX14Cfvo(xw, hi, rule.MaxRuleType == CFRuleNone, "autoMax")

	barColor := colorOr(rule.BarColor, "FF638EC6")
	if !rule.BarNoBorder {
		xw.EmptyTag("x14:borderColor", xmlwriter.Attr{Key: "rgb", Value: colorOr(rule.BarBorderColor, barColor)})
	}
	if !rule.BarNegativeColorSame {
		xw.EmptyTag("x14:negativeFillColor", xmlwriter.Attr{Key: "rgb", Value: colorOr(rule.BarNegativeColor, "FFFF0000")})
	}
	if !rule.BarNoBorder && !rule.BarNegativeBorderColorSame {
		xw.EmptyTag("x14:negativeBorderColor", xmlwriter.Attr{Key: "rgb", Value: colorOr(rule.BarNegativeBorderColor, "FFFF0000")})
	}
	if rule.BarAxisPosition != BarAxisNone {
		xw.EmptyTag("x14:axisColor", xmlwriter.Attr{Key: "rgb", Value: colorOr(rule.BarAxisColor, "FF000000")})
	}
	xw.EndTag("x14:dataBar")
}

func writeX14Cfvo(xw *xmlwriter.Writer, c cfvo, auto bool, autoType string) {
	if auto {
		xw.EmptyTag("x14:cfvo", xmlwriter.Attr{Key: "type", Value: autoType})
		return
	}
	typ := xmlwriter.Attr{Key: "type", Value: cfvoTypes[c.typ]}
	if c.typ == CFRuleMinimum || c.typ == CFRuleMaximum {
		xw.EmptyTag("x14:cfvo", typ)
		return
	}
	xw.StartTag("x14:cfvo", typ)
	xw.DataElement("xm:f", c.value)
	xw.EndTag("x14:cfvo")
}
