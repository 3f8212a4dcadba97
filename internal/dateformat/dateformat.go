// Package dateformat classifies the built-in number format ids that render
// a serial number as a date or time.
package dateformat

// IsBuiltInDateID reports whether id is a built-in numFmtId that displays a
// date, time, datetime or elapsed time (ECMA-376 §18.8.30):
//
//	14–22   date and time formats
//	27–36   locale-specific CJK date formats
//	45–47   elapsed-time / seconds formats
//	50–58   locale-specific CJK date formats (variant set)
func IsBuiltInDateID(id int) bool {
	switch {
	case id >= 14 && id <= 22:
		return true
	case id >= 27 && id <= 36:
		return true
	case id >= 45 && id <= 47:
		return true
	case id >= 50 && id <= 58:
		return true
	}
	return false
}

// FirstCustomID is the lowest numFmtId available to custom formats.
const FirstCustomID = 164
