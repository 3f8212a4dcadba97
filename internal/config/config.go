// Package config loads the sheet layout used by the xlsxw command from a
// YAML or TOML file.
//
//	log_level: debug
//	constant_memory: true
//	sheet:
//	  name: Sales
//	  freeze: {row: 1}
//	  autofilter: true
//	  header: {bold: true}
//	  columns:
//	    - {cols: "A:B", width: 14}
//	    - {cols: "C", width: 10, num_format: "0.00"}
//	  validations:
//	    - {range: "D2:D1000", type: list, values: [open, closed]}
//	  conditional_formats:
//	    - {range: "C2:C1000", type: data_bar}
package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/TsubasaBE/go-xlsxw/cellref"
	"github.com/TsubasaBE/go-xlsxw/numfmt"
	"github.com/TsubasaBE/go-xlsxw/styles"
	"github.com/TsubasaBE/go-xlsxw/worksheet"
)

// ErrConfig is returned (wrapped) for unreadable or invalid configuration.
var ErrConfig = errors.New("invalid configuration")

// Config is the top-level configuration document.
type Config struct {
	LogLevel        string `yaml:"log_level" toml:"log_level"`
	ConstantMemory  bool   `yaml:"constant_memory" toml:"constant_memory"`
	TmpDir          string `yaml:"tmp_dir" toml:"tmp_dir"`
	Date1904        bool   `yaml:"date1904" toml:"date1904"`
	FutureFunctions bool   `yaml:"future_functions" toml:"future_functions"`
	// Encoding names the character set of CSV input, e.g. "windows-1252".
	Encoding string `yaml:"encoding" toml:"encoding"`
	Sheet    Sheet  `yaml:"sheet" toml:"sheet"`
}

// Sheet describes the layout applied to the generated worksheet.
type Sheet struct {
	Name       string   `yaml:"name" toml:"name"`
	Freeze     *Freeze  `yaml:"freeze" toml:"freeze"`
	Autofilter bool     `yaml:"autofilter" toml:"autofilter"`
	Header     *Header  `yaml:"header" toml:"header"`
	Columns    []Column `yaml:"columns" toml:"columns"`
	TabColor   string   `yaml:"tab_color" toml:"tab_color"`
	Zoom       int      `yaml:"zoom" toml:"zoom"`
	PageHeader string   `yaml:"page_header" toml:"page_header"`
	PageFooter string   `yaml:"page_footer" toml:"page_footer"`

	Validations        []Validation  `yaml:"validations" toml:"validations"`
	ConditionalFormats []Conditional `yaml:"conditional_formats" toml:"conditional_formats"`
}

// Freeze is the number of frozen rows and columns.
type Freeze struct {
	Row int `yaml:"row" toml:"row"`
	Col int `yaml:"col" toml:"col"`
}

// Header formats the first row.
type Header struct {
	Bold      bool   `yaml:"bold" toml:"bold"`
	NumFormat string `yaml:"num_format" toml:"num_format"`
}

// Column sets the width and number format of one column or a span
// "A:C".
type Column struct {
	Cols      string  `yaml:"cols" toml:"cols"`
	Width     float64 `yaml:"width" toml:"width"`
	NumFormat string  `yaml:"num_format" toml:"num_format"`
	Hidden    bool    `yaml:"hidden" toml:"hidden"`
}

// Validation is a data validation over a range.
type Validation struct {
	Range    string   `yaml:"range" toml:"range"`
	Type     string   `yaml:"type" toml:"type"`
	Criteria string   `yaml:"criteria" toml:"criteria"`
	Value    float64  `yaml:"value" toml:"value"`
	Min      float64  `yaml:"min" toml:"min"`
	Max      float64  `yaml:"max" toml:"max"`
	Formula  string   `yaml:"formula" toml:"formula"`
	Values   []string `yaml:"values" toml:"values"`

	InputTitle   string `yaml:"input_title" toml:"input_title"`
	InputMessage string `yaml:"input_message" toml:"input_message"`
	ErrorTitle   string `yaml:"error_title" toml:"error_title"`
	ErrorMessage string `yaml:"error_message" toml:"error_message"`
}

// Conditional is a conditional format over a range.  Only the rule kinds
// that need no differential format are supported.
type Conditional struct {
	Range    string  `yaml:"range" toml:"range"`
	Type     string  `yaml:"type" toml:"type"`
	Criteria string  `yaml:"criteria" toml:"criteria"`
	Value    float64 `yaml:"value" toml:"value"`
	MinColor string  `yaml:"min_color" toml:"min_color"`
	MaxColor string  `yaml:"max_color" toml:"max_color"`
	BarColor string  `yaml:"bar_color" toml:"bar_color"`
	Icons    string  `yaml:"icons" toml:"icons"`
}

// Load reads path, choosing the decoder by extension: .yaml, .yml or
// .toml.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(ErrConfig, "config: read %s: %v", path, err)
	}
	return Parse(data, strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."))
}

// Parse decodes data in the given format ("yaml", "yml" or "toml").
// Unknown keys are errors.
func Parse(data []byte, format string) (*Config, error) {
	var cfg Config
	switch format {
	case "yaml", "yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, errors.Wrapf(ErrConfig, "config: yaml: %v", err)
		}
	case "toml":
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return nil, errors.Wrapf(ErrConfig, "config: toml: %v", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.Wrapf(ErrConfig, "config: toml: unknown key %q", undecoded[0].String())
		}
	default:
		return nil, errors.Wrapf(ErrConfig, "config: unsupported format %q", format)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the fields that can be checked without a worksheet.
func (c *Config) Validate() error {
	if c.LogLevel != "" {
		if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
			return errors.Wrapf(ErrConfig, "config: log_level: %v", err)
		}
	}
	for _, col := range c.Sheet.Columns {
		if _, _, err := parseCols(col.Cols); err != nil {
			return err
		}
		if col.NumFormat != "" {
			if err := numfmt.Validate(col.NumFormat); err != nil {
				return errors.Wrapf(ErrConfig, "config: column %s: %v", col.Cols, err)
			}
		}
	}
	for _, v := range c.Sheet.Validations {
		if _, _, err := v.build(); err != nil {
			return err
		}
	}
	for _, cf := range c.Sheet.ConditionalFormats {
		if _, _, err := cf.build(); err != nil {
			return err
		}
	}
	return nil
}

// Level returns the configured log level, Info when unset.
func (c *Config) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// HeaderFormat registers and returns the header row format, or nil when no
// header formatting is configured.
func (s *Sheet) HeaderFormat(table *styles.Table) (*styles.Format, error) {
	if s.Header == nil {
		return nil, nil
	}
	f := styles.New()
	f.Bold = s.Header.Bold
	f.NumFormat = s.Header.NumFormat
	return table.Add(f)
}

// Apply sets the layout on ws.  lastRow and lastCol bound the written data
// and size the autofilter; formats are registered in table.
func (s *Sheet) Apply(ws *worksheet.Worksheet, table *styles.Table, lastRow, lastCol int) error {
	for _, col := range s.Columns {
		c1, c2, err := parseCols(col.Cols)
		if err != nil {
			return err
		}
		var f *styles.Format
		if col.NumFormat != "" {
			f = styles.New()
			f.NumFormat = col.NumFormat
			if f, err = table.Add(f); err != nil {
				return errors.WithMessagef(err, "config: column %s", col.Cols)
			}
		}
		width := col.Width
		if width == 0 {
			width = 8.43
		}
		var opts *worksheet.RowColOptions
		if col.Hidden {
			opts = &worksheet.RowColOptions{Hidden: true}
		}
		if err := ws.SetColumn(c1, c2, width, f, opts); err != nil {
			return errors.WithMessagef(err, "config: column %s", col.Cols)
		}
	}
	if s.Freeze != nil {
		if err := ws.FreezePanes(s.Freeze.Row, s.Freeze.Col); err != nil {
			return errors.WithMessage(err, "config: freeze")
		}
	}
	if s.Autofilter && lastCol >= 0 {
		if err := ws.Autofilter(0, 0, max(lastRow, 0), lastCol); err != nil {
			return errors.WithMessage(err, "config: autofilter")
		}
	}
	if s.TabColor != "" {
		ws.SetTabColor(s.TabColor)
	}
	if s.Zoom != 0 {
		ws.SetZoom(s.Zoom)
	}
	if s.PageHeader != "" {
		if err := ws.SetHeader(s.PageHeader); err != nil {
			return errors.WithMessage(err, "config: page_header")
		}
	}
	if s.PageFooter != "" {
		if err := ws.SetFooter(s.PageFooter); err != nil {
			return errors.WithMessage(err, "config: page_footer")
		}
	}
	for _, v := range s.Validations {
		rng, dv, err := v.build()
		if err != nil {
			return err
		}
		if err := ws.DataValidationRange(rng.FirstRow, rng.FirstCol, rng.LastRow, rng.LastCol, dv); err != nil {
			return errors.WithMessagef(err, "config: validation %s", v.Range)
		}
	}
	for _, c := range s.ConditionalFormats {
		rng, cf, err := c.build()
		if err != nil {
			return err
		}
		if err := ws.ConditionalFormatRange(rng.FirstRow, rng.FirstCol, rng.LastRow, rng.LastCol, cf); err != nil {
			return errors.WithMessagef(err, "config: conditional format %s", c.Range)
		}
	}
	return nil
}

// parseCols parses "C" or "A:C" into 0-based column indices.
func parseCols(s string) (int, int, error) {
	first, last, found := strings.Cut(s, ":")
	if !found {
		last = first
	}
	c1, err := cellref.NameToCol(first)
	if err != nil {
		return 0, 0, errors.Wrapf(ErrConfig, "config: columns %q: %v", s, err)
	}
	c2, err := cellref.NameToCol(last)
	if err != nil {
		return 0, 0, errors.Wrapf(ErrConfig, "config: columns %q: %v", s, err)
	}
	return c1, c2, nil
}

func parseRange(s string) (cellref.Range, error) {
	rng, err := cellref.ParseRange(s)
	if err != nil {
		return cellref.Range{}, errors.Wrapf(ErrConfig, "config: range %q: %v", s, err)
	}
	return rng, nil
}

var validationTypes = map[string]worksheet.ValidationType{
	"any":         worksheet.ValidateAny,
	"whole":       worksheet.ValidateWhole,
	"decimal":     worksheet.ValidateDecimal,
	"list":        worksheet.ValidateList,
	"date":        worksheet.ValidateDate,
	"time":        worksheet.ValidateTime,
	"text_length": worksheet.ValidateLength,
	"custom":      worksheet.ValidateCustom,
}

var validationCriteria = map[string]worksheet.ValidationCriteria{
	"":                         worksheet.CriteriaBetween,
	"between":                  worksheet.CriteriaBetween,
	"not_between":              worksheet.CriteriaNotBetween,
	"equal_to":                 worksheet.CriteriaEqualTo,
	"not_equal_to":             worksheet.CriteriaNotEqualTo,
	"greater_than":             worksheet.CriteriaGreaterThan,
	"less_than":                worksheet.CriteriaLessThan,
	"greater_than_or_equal_to": worksheet.CriteriaGreaterThanOrEqualTo,
	"less_than_or_equal_to":    worksheet.CriteriaLessThanOrEqualTo,
}

func (v *Validation) build() (cellref.Range, *worksheet.DataValidation, error) {
	rng, err := parseRange(v.Range)
	if err != nil {
		return rng, nil, err
	}
	typ, ok := validationTypes[v.Type]
	if !ok {
		return rng, nil, errors.Wrapf(ErrConfig, "config: validation %s: unknown type %q", v.Range, v.Type)
	}
	crit, ok := validationCriteria[v.Criteria]
	if !ok {
		return rng, nil, errors.Wrapf(ErrConfig, "config: validation %s: unknown criteria %q", v.Range, v.Criteria)
	}
	return rng, &worksheet.DataValidation{
		Type:         typ,
		Criteria:     crit,
		Value:        v.Value,
		Minimum:      v.Min,
		Maximum:      v.Max,
		ValueFormula: v.Formula,
		ValueList:    v.Values,
		InputTitle:   v.InputTitle,
		InputMessage: v.InputMessage,
		ErrorTitle:   v.ErrorTitle,
		ErrorMessage: v.ErrorMessage,
	}, nil
}

var conditionalTypes = map[string]worksheet.CFType{
	"cell":          worksheet.CFCell,
	"average":       worksheet.CFAverage,
	"duplicate":     worksheet.CFDuplicate,
	"unique":        worksheet.CFUnique,
	"top":           worksheet.CFTop,
	"bottom":        worksheet.CFBottom,
	"blanks":        worksheet.CFBlanks,
	"no_blanks":     worksheet.CFNoBlanks,
	"errors":        worksheet.CFErrors,
	"no_errors":     worksheet.CFNoErrors,
	"2_color_scale": worksheet.CF2ColorScale,
	"3_color_scale": worksheet.CF3ColorScale,
	"data_bar":      worksheet.CFDataBar,
	"icon_set":      worksheet.CFIconSet,
}

var conditionalCriteria = map[string]worksheet.CFCriteria{
	"":                         worksheet.CFCriteriaNone,
	"equal_to":                 worksheet.CFEqualTo,
	"not_equal_to":             worksheet.CFNotEqualTo,
	"greater_than":             worksheet.CFGreaterThan,
	"less_than":                worksheet.CFLessThan,
	"greater_than_or_equal_to": worksheet.CFGreaterThanOrEqualTo,
	"less_than_or_equal_to":    worksheet.CFLessThanOrEqualTo,
	"above":                    worksheet.CFAverageAbove,
	"below":                    worksheet.CFAverageBelow,
	"percent":                  worksheet.CFTopOrBottomPercent,
}

var iconStyles = map[string]worksheet.IconStyle{
	"":                 worksheet.Icons3TrafficLightsUnrimmed,
	"3_arrows":         worksheet.Icons3ArrowsColored,
	"3_flags":          worksheet.Icons3Flags,
	"3_traffic_lights": worksheet.Icons3TrafficLightsUnrimmed,
	"3_symbols":        worksheet.Icons3SymbolsCircled,
	"4_arrows":         worksheet.Icons4ArrowsColored,
	"4_ratings":        worksheet.Icons4Ratings,
	"5_arrows":         worksheet.Icons5ArrowsColored,
	"5_quarters":       worksheet.Icons5Quarters,
}

func (c *Conditional) build() (cellref.Range, *worksheet.ConditionalFormat, error) {
	rng, err := parseRange(c.Range)
	if err != nil {
		return rng, nil, err
	}
	typ, ok := conditionalTypes[c.Type]
	if !ok {
		return rng, nil, errors.Wrapf(ErrConfig, "config: conditional format %s: unknown type %q", c.Range, c.Type)
	}
	crit, ok := conditionalCriteria[c.Criteria]
	if !ok {
		return rng, nil, errors.Wrapf(ErrConfig, "config: conditional format %s: unknown criteria %q", c.Range, c.Criteria)
	}
	icons, ok := iconStyles[c.Icons]
	if !ok {
		return rng, nil, errors.Wrapf(ErrConfig, "config: conditional format %s: unknown icons %q", c.Range, c.Icons)
	}
	if typ == worksheet.CFCell && crit == worksheet.CFCriteriaNone {
		return rng, nil, errors.Wrapf(ErrConfig, "config: conditional format %s: cell rule needs a criteria", c.Range)
	}
	return rng, &worksheet.ConditionalFormat{
		Type:      typ,
		Criteria:  crit,
		Value:     c.Value,
		MinColor:  c.MinColor,
		MaxColor:  c.MaxColor,
		BarColor:  c.BarColor,
		IconStyle: icons,
	}, nil
}
