package worksheet

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/tiendc/go-deepcopy"

	"github.com/TsubasaBE/go-xlsxw/cellref"
	"github.com/TsubasaBE/go-xlsxw/formula"
	"github.com/TsubasaBE/go-xlsxw/internal/xmlwriter"
	"github.com/TsubasaBE/go-xlsxw/numfmt"
)

// ValidationType selects what a data validation accepts.
type ValidationType uint8

const (
	ValidateAny ValidationType = iota
	ValidateWhole
	ValidateDecimal
	ValidateList
	ValidateDate
	ValidateTime
	ValidateLength
	ValidateCustom
)

var validationTypes = [...]string{
	ValidateWhole:   "whole",
	ValidateDecimal: "decimal",
	ValidateList:    "list",
	ValidateDate:    "date",
	ValidateTime:    "time",
	ValidateLength:  "textLength",
	ValidateCustom:  "custom",
}

// ValidationCriteria is the comparison applied to the value.  The zero
// value means between.
type ValidationCriteria uint8

const (
	CriteriaBetween ValidationCriteria = iota
	CriteriaNotBetween
	CriteriaEqualTo
	CriteriaNotEqualTo
	CriteriaGreaterThan
	CriteriaLessThan
	CriteriaGreaterThanOrEqualTo
	CriteriaLessThanOrEqualTo
)

var validationOperators = [...]string{
	CriteriaNotBetween:           "notBetween",
	CriteriaEqualTo:              "equal",
	CriteriaNotEqualTo:           "notEqual",
	CriteriaGreaterThan:          "greaterThan",
	CriteriaLessThan:             "lessThan",
	CriteriaGreaterThanOrEqualTo: "greaterThanOrEqual",
	CriteriaLessThanOrEqualTo:    "lessThanOrEqual",
}

// ValidationError is the style of the message shown for invalid input.
type ValidationError uint8

const (
	ErrorStop ValidationError = iota
	ErrorWarning
	ErrorInformation
)

// DataValidation describes the input restriction for a range.
//
// Values are taken from the first field set in this order: the *Formula
// string, the *Time (date and time types only), then the number.  Between
// and not-between use Minimum and Maximum; other criteria use Value.
type DataValidation struct {
	Type     ValidationType
	Criteria ValidationCriteria

	Value   float64
	Minimum float64
	Maximum float64

	ValueFormula   string
	MinimumFormula string
	MaximumFormula string

	ValueTime   time.Time
	MinimumTime time.Time
	MaximumTime time.Time

	// ValueList is the allowed values of a list validation.
	ValueList []string

	DisallowBlank    bool
	HideInputMessage bool
	HideErrorMessage bool
	// HideDropdown suppresses the in-cell dropdown of a list validation.
	HideDropdown bool

	ErrorType    ValidationError
	InputTitle   string
	InputMessage string
	ErrorTitle   string
	ErrorMessage string
}

type validation struct {
	DataValidation
	sqref string
}

// DataValidationCell applies v to a single cell.
func (ws *Worksheet) DataValidationCell(r, c int, v *DataValidation) error {
	return ws.DataValidationRange(r, c, r, c, v)
}

// DataValidationRange applies v to the range.  v is copied, so the caller
// may reuse it.  An "any" validation without an input message adds
// nothing.
func (ws *Worksheet) DataValidationRange(r1, c1, r2, c2 int, v *DataValidation) error {
	rng := cellref.NewRange(r1, c1, r2, c2)
	if err := rng.CheckBounds(); err != nil {
		return errors.WithMessage(err, "worksheet: data validation")
	}
	if v == nil {
		return errors.Wrap(ErrInvalidArgument, "worksheet: data validation: nil validation")
	}
	if v.Type == ValidateAny && v.InputTitle == "" && v.InputMessage == "" {
		return nil
	}
	if err := checkValidationLimits(v); err != nil {
		return err
	}
	dv := &validation{DataValidation: *v, sqref: rng.String()}
	dv.ValueList = nil
	if err := deepcopy.Copy(&dv.ValueList, v.ValueList); err != nil {
		return errors.Wrapf(ErrAllocation, "worksheet: data validation: copy list: %v", err)
	}
	ws.validations = append(ws.validations, dv)
	return nil
}

func checkValidationLimits(v *DataValidation) error {
	limits := []struct {
		name string
		s    string
		max  int
	}{
		{"input title", v.InputTitle, 32},
		{"error title", v.ErrorTitle, 32},
		{"input message", v.InputMessage, 255},
		{"error message", v.ErrorMessage, 255},
	}
	for _, l := range limits {
		if n := utf8.RuneCountInString(l.s); n > l.max {
			return errors.Wrapf(ErrSheetLimit, "worksheet: data validation: %s has %d characters", l.name, n)
		}
	}
	if v.Type == ValidateList && v.ValueFormula == "" {
		if len(v.ValueList) == 0 {
			return errors.Wrap(ErrInvalidArgument, "worksheet: data validation: empty list")
		}
		if n := utf8.RuneCountInString(strings.Join(v.ValueList, ",")); n > MaxValidationList {
			return errors.Wrapf(ErrSheetLimit, "worksheet: data validation: list has %d characters", n)
		}
	}
	return nil
}

func (dv *validation) attrs() []xmlwriter.Attr {
	var attrs []xmlwriter.Attr
	if dv.Type != ValidateAny {
		attrs = append(attrs, xmlwriter.Attr{Key: "type", Value: validationTypes[dv.Type]})
		if dv.Criteria != CriteriaBetween && dv.Type != ValidateList && dv.Type != ValidateCustom {
			attrs = append(attrs, xmlwriter.Attr{Key: "operator", Value: validationOperators[dv.Criteria]})
		}
	}
	switch dv.ErrorType {
	case ErrorWarning:
		attrs = append(attrs, xmlwriter.Attr{Key: "errorStyle", Value: "warning"})
	case ErrorInformation:
		attrs = append(attrs, xmlwriter.Attr{Key: "errorStyle", Value: "information"})
	}
	if !dv.DisallowBlank {
		attrs = append(attrs, xmlwriter.Attr{Key: "allowBlank", Value: "1"})
	}
	if dv.HideDropdown {
		attrs = append(attrs, xmlwriter.Attr{Key: "showDropDown", Value: "1"})
	}
	if !dv.HideInputMessage {
		attrs = append(attrs, xmlwriter.Attr{Key: "showInputMessage", Value: "1"})
	}
	if !dv.HideErrorMessage {
		attrs = append(attrs, xmlwriter.Attr{Key: "showErrorMessage", Value: "1"})
	}
	optional := []xmlwriter.Attr{
		{Key: "errorTitle", Value: dv.ErrorTitle},
		{Key: "error", Value: dv.ErrorMessage},
		{Key: "promptTitle", Value: dv.InputTitle},
		{Key: "prompt", Value: dv.InputMessage},
	}
	for _, a := range optional {
		if a.Value != "" {
			attrs = append(attrs, a)
		}
	}
	return append(attrs, xmlwriter.Attr{Key: "sqref", Value: dv.sqref})
}

// formulas returns the formula1 and optional formula2 text.
func (dv *validation) formulas(date1904 bool) (string, string) {
	if dv.Type == ValidateAny {
		return "", ""
	}
	if dv.Type == ValidateList && dv.ValueFormula == "" {
		return `"` + strings.Join(dv.ValueList, ",") + `"`, ""
	}
	if dv.Type == ValidateList || dv.Type == ValidateCustom {
		return formula.Strip(dv.ValueFormula), ""
	}
	if dv.Criteria == CriteriaBetween || dv.Criteria == CriteriaNotBetween {
		return dv.operand(dv.MinimumFormula, dv.MinimumTime, dv.Minimum, date1904),
			dv.operand(dv.MaximumFormula, dv.MaximumTime, dv.Maximum, date1904)
	}
	return dv.operand(dv.ValueFormula, dv.ValueTime, dv.Value, date1904), ""
}

func (dv *validation) operand(f string, t time.Time, v float64, date1904 bool) string {
	switch {
	case f != "":
		return formula.Strip(f)
	case !t.IsZero() && dv.Type == ValidateDate:
		return xmlwriter.FormatFloat(numfmt.TimeToSerial(t, date1904))
	case !t.IsZero() && dv.Type == ValidateTime:
		return xmlwriter.FormatFloat(timeOfDay(t))
	}
	return xmlwriter.FormatFloat(v)
}

// timeOfDay returns the fraction of a day elapsed at t's wall clock time.
func timeOfDay(t time.Time) float64 {
	h, m, s := t.Clock()
	secs := float64(h*3600+m*60+s) + float64(t.Nanosecond())/1e9
	return secs / 86400
}

func (ws *Worksheet) writeDataValidations(xw *xmlwriter.Writer) {
	if len(ws.validations) == 0 {
		return
	}
	xw.StartTag("dataValidations", xmlwriter.IntAttr("count", len(ws.validations)))
	for _, dv := range ws.validations {
		f1, f2 := dv.formulas(ws.opts.Date1904)
		if f1 == "" {
			xw.EmptyTag("dataValidation", dv.attrs()...)
			continue
		}
		xw.StartTag("dataValidation", dv.attrs()...)
		xw.DataElement("formula1", f1)
		if f2 != "" {
			xw.DataElement("formula2", f2)
		}
		xw.EndTag("dataValidation")
	}
	xw.EndTag("dataValidations")
}
