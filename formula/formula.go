// Package formula normalises formula text before it is stored in a cell.
//
// Cell XML carries formulas without the leading "=" that users type, and
// array formulas without their "{=...}" braces.  Functions added to the file
// format after 2007 must additionally be written with an "_xlfn." prefix,
// otherwise readers show #NAME?; Prepare applies that prefix on request.
package formula

import (
	"strings"

	"github.com/xuri/efp"
)

// Strip removes the user-facing decoration from a formula: a surrounding
// "{=...}" for array formulas, otherwise a single leading "=".
func Strip(text string) string {
	if IsArray(text) {
		text = text[1 : len(text)-1]
	}
	return strings.TrimPrefix(text, "=")
}

// IsArray reports whether text is written in "{=...}" array form.
func IsArray(text string) bool {
	return strings.HasPrefix(text, "{") && strings.HasSuffix(text, "}")
}

// Prepare strips text and, when future is true, prefixes every call to a
// post-2007 function with "_xlfn." (or "_xlfn._xlws." for the worksheet
// functions that need it).  Names inside string literals are left alone.
func Prepare(text string, future bool) string {
	text = Strip(text)
	if !future {
		return text
	}
	calls := functionCalls(text)
	if len(calls) == 0 {
		return text
	}
	return addPrefixes(text, calls)
}

// functionCalls returns the upper-cased names of the functions called in
// text that have a future prefix.
func functionCalls(text string) map[string]string {
	ps := efp.ExcelParser()
	var found map[string]string
	for _, tok := range ps.Parse("=" + text) {
		if tok.TType != efp.TokenTypeFunction || tok.TSubType != efp.TokenSubTypeStart {
			continue
		}
		name := strings.ToUpper(tok.TValue)
		if prefix, ok := futureFunctions[name]; ok {
			if found == nil {
				found = make(map[string]string)
			}
			found[name] = prefix
		}
	}
	return found
}

// addPrefixes rewrites text, inserting the prefix in front of each
// identifier in calls that is immediately followed by "(".
func addPrefixes(text string, calls map[string]string) string {
	var sb strings.Builder
	sb.Grow(len(text) + 8*len(calls))
	inString := false
	for i := 0; i < len(text); {
		ch := text[i]
		if ch == '"' {
			inString = !inString
			sb.WriteByte(ch)
			i++
			continue
		}
		if inString || !isIdentStart(ch) || (i > 0 && isIdentPart(text[i-1])) {
			sb.WriteByte(ch)
			i++
			continue
		}
		j := i
		for j < len(text) && isIdentPart(text[j]) {
			j++
		}
		name := text[i:j]
		if j < len(text) && text[j] == '(' {
			if prefix, ok := calls[strings.ToUpper(name)]; ok {
				sb.WriteString(prefix)
			}
		}
		sb.WriteString(name)
		i = j
	}
	return sb.String()
}

func isIdentStart(b byte) bool {
	return b >= 'A' && b <= 'Z' || b >= 'a' && b <= 'z' || b == '_'
}

func isIdentPart(b byte) bool {
	return isIdentStart(b) || b >= '0' && b <= '9' || b == '.'
}

const (
	xlfn = "_xlfn."
	xlws = "_xlfn._xlws."
)

// futureFunctions maps function names introduced after Excel 2007 to the
// prefix they are stored with.
var futureFunctions = map[string]string{
	"ACOT": xlfn, "ACOTH": xlfn, "AGGREGATE": xlfn, "ARABIC": xlfn,
	"ARRAYTOTEXT": xlfn, "BASE": xlfn, "BETA.DIST": xlfn, "BETA.INV": xlfn,
	"BINOM.DIST": xlfn, "BINOM.DIST.RANGE": xlfn, "BINOM.INV": xlfn,
	"BITAND": xlfn, "BITLSHIFT": xlfn, "BITOR": xlfn, "BITRSHIFT": xlfn,
	"BITXOR": xlfn, "BYCOL": xlfn, "BYROW": xlfn, "CEILING.MATH": xlfn,
	"CEILING.PRECISE": xlfn, "CHISQ.DIST": xlfn, "CHISQ.DIST.RT": xlfn,
	"CHISQ.INV": xlfn, "CHISQ.INV.RT": xlfn, "CHISQ.TEST": xlfn,
	"CHOOSECOLS": xlfn, "CHOOSEROWS": xlfn, "COMBINA": xlfn, "CONCAT": xlfn,
	"CONFIDENCE.NORM": xlfn, "CONFIDENCE.T": xlfn, "COT": xlfn, "COTH": xlfn,
	"COVARIANCE.P": xlfn, "COVARIANCE.S": xlfn, "CSC": xlfn, "CSCH": xlfn,
	"DAYS": xlfn, "DECIMAL": xlfn, "DROP": xlfn, "ERF.PRECISE": xlfn,
	"ERFC.PRECISE": xlfn, "EXPAND": xlfn, "EXPON.DIST": xlfn, "F.DIST": xlfn,
	"F.DIST.RT": xlfn, "F.INV": xlfn, "F.INV.RT": xlfn, "F.TEST": xlfn,
	"FILTER": xlws, "FILTERXML": xlfn, "FLOOR.MATH": xlfn,
	"FLOOR.PRECISE": xlfn, "FORECAST.ETS": xlfn, "FORECAST.LINEAR": xlfn,
	"FORMULATEXT": xlfn, "GAMMA": xlfn, "GAMMA.DIST": xlfn, "GAMMA.INV": xlfn,
	"GAMMALN.PRECISE": xlfn, "GAUSS": xlfn, "HSTACK": xlfn,
	"HYPGEOM.DIST": xlfn, "IFNA": xlfn, "IFS": xlfn, "IMAGE": xlfn,
	"IMCOSH": xlfn, "IMCOT": xlfn, "IMCSC": xlfn, "IMCSCH": xlfn,
	"IMSEC": xlfn, "IMSECH": xlfn, "IMSINH": xlfn, "IMTAN": xlfn,
	"ISFORMULA": xlfn, "ISOMITTED": xlfn, "ISOWEEKNUM": xlfn, "LAMBDA": xlfn,
	"LET": xlfn, "LOGNORM.DIST": xlfn, "LOGNORM.INV": xlfn, "MAKEARRAY": xlfn,
	"MAP": xlfn, "MAXIFS": xlfn, "MINIFS": xlfn, "MODE.MULT": xlfn,
	"MODE.SNGL": xlfn, "MUNIT": xlfn, "NEGBINOM.DIST": xlfn,
	"NORM.DIST": xlfn, "NORM.INV": xlfn, "NORM.S.DIST": xlfn,
	"NORM.S.INV": xlfn, "NUMBERVALUE": xlfn, "PDURATION": xlfn,
	"PERCENTILE.EXC": xlfn, "PERCENTILE.INC": xlfn, "PERCENTRANK.EXC": xlfn,
	"PERCENTRANK.INC": xlfn, "PERMUTATIONA": xlfn, "PHI": xlfn,
	"POISSON.DIST": xlfn, "QUARTILE.EXC": xlfn, "QUARTILE.INC": xlfn,
	"QUERYSTRING": xlfn, "RANDARRAY": xlfn, "RANK.AVG": xlfn,
	"RANK.EQ": xlfn, "REDUCE": xlfn, "RRI": xlfn, "SCAN": xlfn, "SEC": xlfn,
	"SECH": xlfn, "SEQUENCE": xlfn, "SHEET": xlfn, "SHEETS": xlfn,
	"SKEW.P": xlfn, "SORT": xlws, "SORTBY": xlfn, "STDEV.P": xlfn,
	"STDEV.S": xlfn, "SWITCH": xlfn, "T.DIST": xlfn, "T.DIST.2T": xlfn,
	"T.DIST.RT": xlfn, "T.INV": xlfn, "T.INV.2T": xlfn, "T.TEST": xlfn,
	"TAKE": xlfn, "TEXTAFTER": xlfn, "TEXTBEFORE": xlfn, "TEXTJOIN": xlfn,
	"TEXTSPLIT": xlfn, "TOCOL": xlfn, "TOROW": xlfn, "UNICHAR": xlfn,
	"UNICODE": xlfn, "UNIQUE": xlfn, "VALUETOTEXT": xlfn, "VAR.P": xlfn,
	"VAR.S": xlfn, "VSTACK": xlfn, "WEBSERVICE": xlfn, "WEIBULL.DIST": xlfn,
	"WRAPCOLS": xlfn, "WRAPROWS": xlfn, "XLOOKUP": xlfn, "XMATCH": xlfn,
	"XOR": xlfn, "Z.TEST": xlfn,
}
