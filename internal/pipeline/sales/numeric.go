package sales

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	plainDecimalPattern = regexp.MustCompile(`^[\d.]+$`)
	numericJunkPattern  = regexp.MustCompile(`[^0-9.,\-]`)
)

// ParseNumeric converts a raw cell value into a float64. Finite numbers are
// returned unchanged; strings may use Indonesian ("1.234,56") or English
// ("1,234.56") separators. Anything unparseable yields 0.
func ParseNumeric(raw any) float64 {
	if v, ok := nativeNumber(raw); ok {
		return finiteOrZero(v)
	}

	s, ok := raw.(string)
	if !ok {
		return 0
	}

	return parseNumericString(s)
}

func nativeNumber(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case uint32:
		return float64(v), true
	}
	return 0, false
}

func parseNumericString(raw string) float64 {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0
	}

	// "1234.56" and plain integers; "1.500.000" falls through to the
	// separator heuristics below.
	if plainDecimalPattern.MatchString(trimmed) {
		if v, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return finiteOrZero(v)
		}
	}

	sanitized := numericJunkPattern.ReplaceAllString(trimmed, "")
	negative := strings.HasPrefix(sanitized, "-")
	unsigned := strings.ReplaceAll(sanitized, "-", "")
	if unsigned == "" {
		return 0
	}

	intPart, fracPart := splitDecimal(unsigned)
	normalized := intPart
	if fracPart != "" {
		normalized += "." + fracPart
	}

	v, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0
	}
	if negative {
		v = -v
	}

	return finiteOrZero(v)
}

// splitDecimal decides which separator, if any, is the decimal point and
// returns the digit-only integer and fractional parts.
func splitDecimal(s string) (string, string) {
	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")

	var decimalAt int
	switch {
	case lastComma >= 0 && lastDot >= 0:
		decimalAt = max(lastComma, lastDot)
	case lastComma >= 0:
		groups := strings.Split(s, ",")
		if len(groups) == 2 && len(groups[1]) <= 2 {
			decimalAt = lastComma
		} else {
			decimalAt = -1
		}
	case lastDot >= 0:
		if strings.Count(s, ".") == 1 {
			decimalAt = lastDot
		} else {
			decimalAt = -1
		}
	default:
		decimalAt = -1
	}

	if decimalAt < 0 {
		return digitsOrZero(s), ""
	}

	return digitsOrZero(s[:decimalAt]), stripSeparators(s[decimalAt+1:])
}

func stripSeparators(s string) string {
	return strings.NewReplacer(".", "", ",", "").Replace(s)
}

func digitsOrZero(s string) string {
	s = stripSeparators(s)
	if s == "" {
		return "0"
	}
	return s
}

func finiteOrZero(v float64) float64 {
	if isNonFinite(v) {
		return 0
	}
	return v
}

func isNonFinite(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}

// hasDigit reports whether a raw cell carries anything ParseNumeric could
// read as a number.
func hasDigit(s string) bool {
	return strings.ContainsAny(s, "0123456789")
}
