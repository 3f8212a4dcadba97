// Package numfmt classifies number format strings and converts between
// time.Time and the serial day numbers that spreadsheet cells store.
//
// Format-string tokenising is delegated to [github.com/xuri/nfp].
package numfmt

import (
	"math"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/xuri/nfp"

	"github.com/TsubasaBE/go-xlsxw/internal/dateformat"
)

// BuiltIn maps built-in numFmtId values to their canonical format strings
// (ECMA-376 §18.8.30).  Locale-specific ids 27–36 and 50–58 are omitted:
// their strings differ per install and a writer never needs to emit them.
var BuiltIn = map[int]string{
	0:  "General",
	1:  "0",
	2:  "0.00",
	3:  "#,##0",
	4:  "#,##0.00",
	5:  `($#,##0_);($#,##0)`,
	6:  `($#,##0_);[Red]($#,##0)`,
	7:  `($#,##0.00_);($#,##0.00)`,
	8:  `($#,##0.00_);[Red]($#,##0.00)`,
	9:  "0%",
	10: "0.00%",
	11: "0.00E+00",
	12: "# ?/?",
	13: "# ??/??",
	14: "m/d/yy",
	15: "d-mmm-yy",
	16: "d-mmm",
	17: "mmm-yy",
	18: "h:mm AM/PM",
	19: "h:mm:ss AM/PM",
	20: "h:mm",
	21: "h:mm:ss",
	22: "m/d/yy h:mm",
	37: `(#,##0_);(#,##0)`,
	38: `(#,##0_);[Red](#,##0)`,
	39: `(#,##0.00_);(#,##0.00)`,
	40: `(#,##0.00_);[Red](#,##0.00)`,
	41: `_(* #,##0_);_(* (#,##0);_(* "-"_);_(@_)`,
	42: `_($* #,##0_);_($* (#,##0);_($* "-"_);_(@_)`,
	43: `_(* #,##0.00_);_(* (#,##0.00);_(* "-"??_);_(@_)`,
	44: `_($* #,##0.00_);_($* (#,##0.00);_($* "-"??_);_(@_)`,
	45: "mm:ss",
	46: "[h]:mm:ss",
	47: "mm:ss.0",
	48: "##0.0E+0",
	49: "@",
}

var builtInByString = func() map[string]int {
	m := make(map[string]int, len(BuiltIn))
	for id, s := range BuiltIn {
		m[s] = id
	}
	return m
}()

// BuiltInID returns the built-in id for format, if it has one.  The empty
// string maps to General (0).
func BuiltInID(format string) (int, bool) {
	if format == "" {
		return 0, true
	}
	id, ok := builtInByString[format]
	return id, ok
}

// ErrInvalidFormat is returned by Validate.
var ErrInvalidFormat = errors.New("invalid number format")

// Validate checks that format tokenises into one to four sections.
func Validate(format string) error {
	if format == "" {
		return nil
	}
	ps := nfp.NumberFormatParser()
	if n := len(ps.Parse(format)); n == 0 || n > 4 {
		return errors.Wrapf(ErrInvalidFormat, "numfmt: %q has %d sections", format, n)
	}
	return nil
}

// IsDateFormat reports whether a number format displays its value as a
// date, time or elapsed time.  Built-in ids are looked up directly; custom
// formats (id >= 164 or id < 0 when unknown) are tokenised.
func IsDateFormat(id int, format string) bool {
	if id >= 0 && id < dateformat.FirstCustomID {
		return dateformat.IsBuiltInDateID(id)
	}
	if format == "" {
		return false
	}
	ps := nfp.NumberFormatParser()
	for _, sec := range ps.Parse(format) {
		for _, tok := range sec.Items {
			switch tok.TType {
			case nfp.TokenTypeDateTimes, nfp.TokenTypeElapsedDateTimes:
				return true
			}
		}
	}
	return false
}

// ── serial dates ──────────────────────────────────────────────────────────────

var (
	epoch1900 = time.Date(1899, 12, 31, 0, 0, 0, 0, time.UTC)
	epoch1904 = time.Date(1904, 1, 1, 0, 0, 0, 0, time.UTC)
)

const secondsPerDay = 86400

// TimeToSerial converts t to a serial day number.  The wall clock of t is
// used as is; its location is ignored.
//
// In the 1900 system day 60 is the phantom 1900-02-29, so dates from
// 1900-03-01 on are shifted by one.  Dates before the epoch keep only their
// time of day, which is how time-only values are written.
func TimeToSerial(t time.Time, date1904 bool) float64 {
	wall := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	midnight := time.Date(wall.Year(), wall.Month(), wall.Day(), 0, 0, 0, 0, time.UTC)
	frac := (float64(wall.Unix()-midnight.Unix()) + float64(wall.Nanosecond())/1e9) / secondsPerDay

	epoch := epoch1900
	if date1904 {
		epoch = epoch1904
	}
	if midnight.Before(epoch) {
		return frac
	}
	days := float64((midnight.Unix() - epoch.Unix()) / secondsPerDay)
	if !date1904 && days >= 60 {
		days++
	}
	return days + frac
}

// SerialToTime is the inverse of TimeToSerial, rounded to the nearest
// second.
func SerialToTime(serial float64, date1904 bool) (time.Time, error) {
	if math.IsNaN(serial) || math.IsInf(serial, 0) || serial < 0 {
		return time.Time{}, errors.Errorf("numfmt: invalid serial %v", serial)
	}
	const maxSerial = 2_958_466
	if serial >= maxSerial {
		return time.Time{}, errors.Errorf("numfmt: serial %v beyond 9999-12-31", serial)
	}
	days := math.Floor(serial)
	secs := math.Round((serial - days) * 86400)
	epoch := epoch1904
	if !date1904 {
		epoch = epoch1900
		if days >= 61 {
			days--
		}
	}
	return epoch.AddDate(0, 0, int(days)).Add(time.Duration(secs) * time.Second), nil
}

// Lookup returns the format string for a built-in id, or "" if unknown.
func Lookup(id int) string {
	return BuiltIn[id]
}

// Normalize trims surrounding whitespace.  A format equal to a built-in
// string (case-insensitively for "General") is returned in canonical form.
func Normalize(format string) string {
	format = strings.TrimSpace(format)
	if strings.EqualFold(format, "general") {
		return "General"
	}
	return format
}
