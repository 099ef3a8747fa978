package sales

import "time"

// ReconcileWeekYear corrects dates typed into the wrong year around the
// year boundary: a week 52 row dated in January belongs to the previous
// year and a week 1 row dated in December to the next one. Any other
// combination is returned unchanged.
func ReconcileWeekYear(week int, date time.Time) time.Time {
	switch {
	case week == 52 && date.Month() == time.January:
		return date.AddDate(-1, 0, 0)
	case week == 1 && date.Month() == time.December:
		return date.AddDate(1, 0, 0)
	}
	return date
}
