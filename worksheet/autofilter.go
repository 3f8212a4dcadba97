package worksheet

import (
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/TsubasaBE/go-xlsxw/cellref"
	"github.com/TsubasaBE/go-xlsxw/internal/xmlwriter"
)

// FilterCriteria is the comparison of a FilterRule.
type FilterCriteria uint8

const (
	FilterNone FilterCriteria = iota
	FilterEqualTo
	FilterNotEqualTo
	FilterGreaterThan
	FilterLessThan
	FilterGreaterThanOrEqualTo
	FilterLessThanOrEqualTo
	FilterBlanks
	FilterNonBlanks
)

var filterOperators = map[FilterCriteria]string{
	FilterNotEqualTo:           "notEqual",
	FilterGreaterThan:          "greaterThan",
	FilterLessThan:             "lessThan",
	FilterGreaterThanOrEqualTo: "greaterThanOrEqual",
	FilterLessThanOrEqualTo:    "lessThanOrEqual",
}

// FilterRule is one autofilter condition.  ValueString, when set, takes
// precedence over Value and may contain "*" and "?" wildcards.
type FilterRule struct {
	Criteria    FilterCriteria
	Value       float64
	ValueString string
}

func (fr FilterRule) value() string {
	if fr.ValueString != "" {
		return fr.ValueString
	}
	return xmlwriter.FormatFloat(fr.Value)
}

func (fr FilterRule) hasWildcard() bool {
	return strings.ContainsAny(fr.ValueString, "*?")
}

// listable reports whether the rule can be written as a plain <filter>.
func (fr FilterRule) listable() bool {
	return fr.Criteria == FilterEqualTo && !fr.hasWildcard()
}

type filterColumn struct {
	col   int
	rules []FilterRule
	and   bool
	list  []string
}

type autoFilter struct {
	rng     cellref.Range
	columns map[int]*filterColumn
}

// Autofilter adds filter buttons to the header row of the range.
func (ws *Worksheet) Autofilter(r1, c1, r2, c2 int) error {
	rng := cellref.NewRange(r1, c1, r2, c2)
	if err := rng.CheckBounds(); err != nil {
		return errors.WithMessage(err, "worksheet: autofilter")
	}
	ws.filter = &autoFilter{rng: rng, columns: make(map[int]*filterColumn)}
	return nil
}

func (ws *Worksheet) filterColumn(op string, col int) (*filterColumn, error) {
	if ws.filter == nil {
		return nil, errors.Wrapf(ErrInvalidArgument, "worksheet: %s: no autofilter range", op)
	}
	if col < ws.filter.rng.FirstCol || col > ws.filter.rng.LastCol {
		return nil, errors.Wrapf(ErrIndexOutOfRange, "worksheet: %s: column %d outside autofilter %s", op, col, ws.filter.rng)
	}
	fc := &filterColumn{col: col}
	ws.filter.columns[col] = fc
	return fc, nil
}

// FilterColumn sets a single filter condition on column col.
func (ws *Worksheet) FilterColumn(col int, rule FilterRule) error {
	if rule.Criteria == FilterNone {
		return errors.Wrap(ErrInvalidArgument, "worksheet: filter column: no criteria")
	}
	fc, err := ws.filterColumn("filter column", col)
	if err != nil {
		return err
	}
	fc.rules = []FilterRule{rule}
	return nil
}

// FilterColumn2 sets two conditions on column col, joined with AND when and
// is true, otherwise OR.
func (ws *Worksheet) FilterColumn2(col int, rule1, rule2 FilterRule, and bool) error {
	if rule1.Criteria == FilterNone || rule2.Criteria == FilterNone {
		return errors.Wrap(ErrInvalidArgument, "worksheet: filter column: no criteria")
	}
	fc, err := ws.filterColumn("filter column", col)
	if err != nil {
		return err
	}
	fc.rules = []FilterRule{rule1, rule2}
	fc.and = and
	return nil
}

// FilterList shows only rows whose value in col is one of values.  The
// value "Blanks" matches empty cells.
func (ws *Worksheet) FilterList(col int, values []string) error {
	if len(values) == 0 {
		return errors.Wrap(ErrInvalidArgument, "worksheet: filter list: no values")
	}
	fc, err := ws.filterColumn("filter list", col)
	if err != nil {
		return err
	}
	fc.list = append([]string(nil), values...)
	return nil
}

func (af *autoFilter) filtered() bool {
	return af != nil && len(af.columns) > 0
}

func (ws *Worksheet) writeAutoFilter(xw *xmlwriter.Writer) {
	af := ws.filter
	if af == nil {
		return
	}
	ref := xmlwriter.Attr{Key: "ref", Value: af.rng.String()}
	if len(af.columns) == 0 {
		xw.EmptyTag("autoFilter", ref)
		return
	}
	xw.StartTag("autoFilter", ref)
	cols := make([]int, 0, len(af.columns))
	for c := range af.columns {
		cols = append(cols, c)
	}
	sort.Ints(cols)
	for _, c := range cols {
		fc := af.columns[c]
		xw.StartTag("filterColumn", xmlwriter.IntAttr("colId", c-af.rng.FirstCol))
		switch {
		case fc.list != nil:
			writeFilterList(xw, fc.list)
		case len(fc.rules) == 1:
			writeSingleFilter(xw, fc.rules[0])
		default:
			writeDoubleFilter(xw, fc)
		}
		xw.EndTag("filterColumn")
	}
	xw.EndTag("autoFilter")
}

func writeFilterList(xw *xmlwriter.Writer, values []string) {
	var attrs []xmlwriter.Attr
	var vals []string
	for _, v := range values {
		if v == "Blanks" {
			attrs = []xmlwriter.Attr{{Key: "blank", Value: "1"}}
			continue
		}
		vals = append(vals, v)
	}
	if len(vals) == 0 {
		xw.EmptyTag("filters", attrs...)
		return
	}
	xw.StartTag("filters", attrs...)
	for _, v := range vals {
		xw.EmptyTag("filter", xmlwriter.Attr{Key: "val", Value: v})
	}
	xw.EndTag("filters")
}

func writeSingleFilter(xw *xmlwriter.Writer, fr FilterRule) {
	switch {
	case fr.Criteria == FilterBlanks:
		xw.EmptyTag("filters", xmlwriter.Attr{Key: "blank", Value: "1"})
	case fr.Criteria == FilterNonBlanks:
		xw.StartTag("customFilters")
		xw.EmptyTag("customFilter", xmlwriter.Attr{Key: "operator", Value: "notEqual"}, xmlwriter.Attr{Key: "val", Value: " "})
		xw.EndTag("customFilters")
	case fr.listable():
		xw.StartTag("filters")
		xw.EmptyTag("filter", xmlwriter.Attr{Key: "val", Value: fr.value()})
		xw.EndTag("filters")
	default:
		xw.StartTag("customFilters")
		writeCustomFilter(xw, fr)
		xw.EndTag("customFilters")
	}
}

func writeDoubleFilter(xw *xmlwriter.Writer, fc *filterColumn) {
	a, b := fc.rules[0], fc.rules[1]
	if !fc.and && a.listable() && b.listable() {
		xw.StartTag("filters")
		xw.EmptyTag("filter", xmlwriter.Attr{Key: "val", Value: a.value()})
		xw.EmptyTag("filter", xmlwriter.Attr{Key: "val", Value: b.value()})
		xw.EndTag("filters")
		return
	}
	if fc.and {
		xw.StartTag("customFilters", xmlwriter.Attr{Key: "and", Value: "1"})
	} else {
		xw.StartTag("customFilters")
	}
	writeCustomFilter(xw, a)
	writeCustomFilter(xw, b)
	xw.EndTag("customFilters")
}

func writeCustomFilter(xw *xmlwriter.Writer, fr FilterRule) {
	val := xmlwriter.Attr{Key: "val", Value: fr.value()}
	switch fr.Criteria {
	case FilterBlanks:
		val.Value = ""
		xw.EmptyTag("customFilter", val)
	case FilterNonBlanks:
		xw.EmptyTag("customFilter", xmlwriter.Attr{Key: "operator", Value: "notEqual"}, xmlwriter.Attr{Key: "val", Value: " "})
	default:
		if op, ok := filterOperators[fr.Criteria]; ok {
			xw.EmptyTag("customFilter", xmlwriter.Attr{Key: "operator", Value: op}, val)
			return
		}
		xw.EmptyTag("customFilter", val)
	}
}
