package sales

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

var indonesianMonths = map[string]string{
	"januari":   "january",
	"jan":       "jan",
	"februari":  "february",
	"feb":       "feb",
	"maret":     "march",
	"mar":       "mar",
	"april":     "april",
	"apr":       "apr",
	"mei":       "may",
	"juni":      "june",
	"jun":       "jun",
	"juli":      "july",
	"jul":       "jul",
	"agustus":   "august",
	"agu":       "aug",
	"ags":       "aug",
	"aug":       "aug",
	"september": "september",
	"sep":       "sep",
	"sept":      "sep",
	"oktober":   "october",
	"okt":       "oct",
	"oct":       "oct",
	"november":  "november",
	"nov":       "nov",
	"desember":  "december",
	"des":       "dec",
	"dec":       "dec",
}

var (
	dayNamePrefixPattern = regexp.MustCompile(`(?i)^(senin|selasa|rabu|kamis|jumat|jum'at|sabtu|minggu)\s*,\s*`)
	whitespacePattern    = regexp.MustCompile(`\s+`)
	monthNamePattern     = buildMonthNamePattern()
	dayFirstPattern      = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{2}|\d{4})$`)
	yearFirstPattern     = regexp.MustCompile(`^(\d{4})[/-](\d{1,2})[/-](\d{1,2})$`)
	timeOfDaySuffix      = regexp.MustCompile(`(?i) \d{1,2}[:.]\d{2}(?:[:.]\d{2})?(?: ?[ap]m)?$`)
)

// Layouts tried after month names are translated. Purely numeric slash
// layouts are left to the day-first matcher so "01/02/2024" is 1 February.
var generalDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2 January 2006",
	"2 Jan 2006",
	"2 Jan 06",
	"2-Jan-2006",
	"2-Jan-06",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"Jan 2 2006",
	"Monday, 2 January 2006",
	"Mon, 2 Jan 2006",
	time.RFC1123,
	time.RFC1123Z,
}

func buildMonthNamePattern() *regexp.Regexp {
	names := make([]string, 0, len(indonesianMonths))
	for name := range indonesianMonths {
		names = append(names, regexp.QuoteMeta(name))
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	return regexp.MustCompile(`(?i)\b(` + strings.Join(names, "|") + `)\b`)
}

// ParseDate converts a raw cell into a calendar date. Spreadsheet-native
// dates are returned as they are; strings may carry an Indonesian day name
// prefix and Indonesian or English month names. ok is false when no date can
// be derived.
func ParseDate(raw any) (time.Time, bool) {
	switch v := raw.(type) {
	case time.Time:
		return v, !v.IsZero()
	case *time.Time:
		if v == nil || v.IsZero() {
			return time.Time{}, false
		}
		return *v, true
	case string:
		return parseDateString(v)
	}
	return time.Time{}, false
}

func parseDateString(raw string) (time.Time, bool) {
	normalized := strings.TrimSpace(strings.Trim(strings.TrimSpace(raw), `"'`))
	if normalized == "" {
		return time.Time{}, false
	}

	normalized = strings.TrimSpace(dayNamePrefixPattern.ReplaceAllString(normalized, ""))
	normalized = whitespacePattern.ReplaceAllString(normalized, " ")
	normalized = translateMonthNames(normalized)
	if trimmed := timeOfDaySuffix.ReplaceAllString(normalized, ""); trimmed != "" {
		normalized = trimmed
	}

	for _, layout := range generalDateLayouts {
		if t, err := time.Parse(layout, normalized); err == nil {
			return dateOnly(t), true
		}
	}

	if m := dayFirstPattern.FindStringSubmatch(normalized); m != nil {
		year := atoi(m[3])
		if len(m[3]) == 2 {
			year += 2000
		}
		return buildDate(year, atoi(m[2]), atoi(m[1]))
	}

	if m := yearFirstPattern.FindStringSubmatch(normalized); m != nil {
		return buildDate(atoi(m[1]), atoi(m[2]), atoi(m[3]))
	}

	return time.Time{}, false
}

func translateMonthNames(s string) string {
	return monthNamePattern.ReplaceAllStringFunc(s, func(match string) string {
		if translated, ok := indonesianMonths[strings.ToLower(match)]; ok {
			return translated
		}
		return match
	})
}

// buildDate rejects out-of-range parts instead of letting time.Date roll
// them over into the next month.
func buildDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
