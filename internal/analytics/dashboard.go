// internal/analytics/dashboard.go
package analytics

import (
	"math"
	"sort"

	"github.com/Hafiizherdian/dashboard2y2/internal/domain"
)

const (
	weeksPerYear    = 52
	weeksPerQuarter = 13

	// targetUplift estimates a target from actuals when no area target is configured.
	targetUplift = 1.1
	// fallbackQuarterTarget is used for quarters with neither sales nor a configured target.
	fallbackQuarterTarget = 100000
)

// Options selects the years to compare and, optionally, the configured
// quarter targets of the selected area. Zero years are derived from the data.
type Options struct {
	Year1   int
	Year2   int
	Targets *domain.QuarterlyTargets
}

type weekKey struct {
	year int
	week int
}

// BuildDashboard aggregates stored sales records into the dashboard payload.
func BuildDashboard(records []domain.SalesRecord, opts Options) domain.SalesDashboard {
	if len(records) == 0 {
		return emptyDashboard()
	}

	weekly := make(map[weekKey]float64)
	yearSet := make(map[int]struct{})
	for _, r := range records {
		year := r.Date.Year()
		yearSet[year] = struct{}{}
		weekly[weekKey{year, r.Week}] += r.Omzet
	}

	years := make([]int, 0, len(yearSet))
	for y := range yearSet {
		years = append(years, y)
	}
	sort.Ints(years)

	currentYear := years[len(years)-1]
	if opts.Year2 > 0 {
		currentYear = opts.Year2
	}
	previousYear := currentYear
	if opts.Year1 > 0 {
		previousYear = opts.Year1
	} else if len(years) > 1 {
		previousYear = years[len(years)-2]
	}

	dashboard := domain.SalesDashboard{
		WeeklyData:      make([]domain.WeeklySales, 0),
		WeekComparisons: make([]domain.WeekComparison, 0),
		ComparisonYears: domain.ComparisonYears{
			PreviousYear: &previousYear,
			CurrentYear:  &currentYear,
		},
	}

	for week := 1; week <= weeksPerYear; week++ {
		prev := weekly[weekKey{previousYear, week}]
		curr := weekly[weekKey{currentYear, week}]

		if prev > 0 || curr > 0 {
			comparison := domain.WeekComparison{
				Week:         week,
				PreviousYear: prev,
				CurrentYear:  curr,
				Variance:     curr - prev,
			}
			if prev > 0 {
				comparison.VariancePercentage = (curr - prev) / prev * 100
			}
			dashboard.WeekComparisons = append(dashboard.WeekComparisons, comparison)
		}

		if curr > 0 {
			dashboard.WeeklyData = append(dashboard.WeeklyData, domain.WeeklySales{
				Week: week, Year: currentYear, Sales: curr, Target: curr * targetUplift,
			})
		}
		if prev > 0 {
			dashboard.WeeklyData = append(dashboard.WeeklyData, domain.WeeklySales{
				Week: week, Year: previousYear, Sales: prev, Target: prev * targetUplift,
			})
		}
	}

	dashboard.QuarterlyData = quarterlyData(records, currentYear, opts.Targets)
	dashboard.L4WC4WData = l4wc4w(records, currentYear)
	dashboard.YearOnYearGrowth = yearOnYear(records, previousYear, currentYear)

	return dashboard
}

// quarterlyData splits the year into four 13-week quarters.
func quarterlyData(records []domain.SalesRecord, year int, targets *domain.QuarterlyTargets) []domain.QuarterlyData {
	var actuals [4]float64
	for _, r := range records {
		if r.Date.Year() != year || r.Week < 1 || r.Week > weeksPerYear {
			continue
		}
		actuals[(r.Week-1)/weeksPerQuarter] += r.Omzet
	}

	quarters := make([]domain.QuarterlyData, 0, 4)
	for i, actual := range actuals {
		q := i + 1

		var target float64
		switch {
		case targets != nil && targets.ForQuarter(q) > 0:
			target = targets.ForQuarter(q)
		case actual > 0:
			target = actual * targetUplift
		default:
			target = fallbackQuarterTarget
		}

		variance := actual - target
		data := domain.QuarterlyData{
			Quarter:  quarterLabel(q),
			Target:   round(target),
			Actual:   round(actual),
			Variance: round(variance),
		}
		if target > 0 {
			data.VariancePercentage = round1(variance / target * 100)
		}
		quarters = append(quarters, data)
	}
	return quarters
}

type weekTotal struct {
	total  float64
	latest int64
}

// l4wc4w compares the average weekly omzet of the four most recent weeks
// (C4W) with the four weeks before them (L4W).
func l4wc4w(records []domain.SalesRecord, currentYear int) domain.L4WC4WData {
	effective := make([]domain.SalesRecord, 0, len(records))
	for _, r := range records {
		if r.Date.Year() == currentYear {
			effective = append(effective, r)
		}
	}
	if len(effective) == 0 {
		effective = records
	}

	totals := make(map[weekKey]*weekTotal)
	for _, r := range effective {
		if r.Week <= 0 || r.Date.IsZero() {
			continue
		}
		key := weekKey{r.Date.Year(), r.Week}
		ts := r.Date.Unix()
		if t, ok := totals[key]; ok {
			t.total += r.Omzet
			t.latest = max(t.latest, ts)
			continue
		}
		totals[key] = &weekTotal{total: r.Omzet, latest: ts}
	}

	ordered := make([]*weekTotal, 0, len(totals))
	for _, t := range totals {
		ordered = append(ordered, t)
	}
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].latest < ordered[j].latest })

	if len(ordered) < 4 {
		n := max(len(ordered), 1)
		return domain.L4WC4WData{C4WAverage: round(sumTotals(ordered) / float64(n))}
	}

	c4w := ordered[len(ordered)-4:]
	l4w := ordered[max(len(ordered)-8, 0) : len(ordered)-4]

	var l4wAverage float64
	if len(l4w) > 0 {
		l4wAverage = sumTotals(l4w) / float64(len(l4w))
	}
	c4wAverage := sumTotals(c4w) / float64(len(c4w))
	variance := c4wAverage - l4wAverage

	data := domain.L4WC4WData{
		L4WAverage: round(l4wAverage),
		C4WAverage: round(c4wAverage),
		Variance:   round(variance),
	}
	if l4wAverage > 0 {
		data.VariancePercentage = round1(variance / l4wAverage * 100)
	}
	return data
}

func yearOnYear(records []domain.SalesRecord, previousYear, currentYear int) domain.YearOnYearGrowth {
	var prevTotal, currTotal float64
	for _, r := range records {
		if r.Date.Year() == previousYear {
			prevTotal += r.Omzet
		}
		if r.Date.Year() == currentYear {
			currTotal += r.Omzet
		}
	}

	variance := currTotal - prevTotal
	growth := domain.YearOnYearGrowth{
		PreviousYearTotal: round(prevTotal),
		CurrentYearTotal:  round(currTotal),
		Variance:          round(variance),
	}
	if prevTotal > 0 {
		growth.VariancePercentage = round1(variance / prevTotal * 100)
	}
	return growth
}

func emptyDashboard() domain.SalesDashboard {
	quarters := make([]domain.QuarterlyData, 0, 4)
	for q := 1; q <= 4; q++ {
		quarters = append(quarters, domain.QuarterlyData{Quarter: quarterLabel(q)})
	}
	return domain.SalesDashboard{
		WeeklyData:      make([]domain.WeeklySales, 0),
		QuarterlyData:   quarters,
		WeekComparisons: make([]domain.WeekComparison, 0),
	}
}

func sumTotals(totals []*weekTotal) float64 {
	var sum float64
	for _, t := range totals {
		sum += t.total
	}
	return sum
}

func quarterLabel(q int) string {
	return [...]string{"Q1", "Q2", "Q3", "Q4"}[q-1]
}

// round rounds half up, so -2.5 becomes -2.
func round(v float64) float64 {
	return math.Floor(v + 0.5)
}

func round1(v float64) float64 {
	return math.Floor(v*10+0.5) / 10
}
