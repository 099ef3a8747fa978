package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hafiizherdian/dashboard2y2/internal/domain"
)

func rec(year, week int, omzet float64) domain.SalesRecord {
	// Week w of a year starts on day 7*(w-1)+1.
	date := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 7*(week-1))
	return domain.SalesRecord{Week: week, Date: date, Omzet: omzet, Product: "p", Customer: "c"}
}

func TestBuildDashboardEmpty(t *testing.T) {
	d := BuildDashboard(nil, Options{})

	assert.Empty(t, d.WeeklyData)
	assert.NotNil(t, d.WeeklyData)
	assert.Empty(t, d.WeekComparisons)
	require.Len(t, d.QuarterlyData, 4)
	assert.Equal(t, "Q4", d.QuarterlyData[3].Quarter)
	assert.Nil(t, d.ComparisonYears.CurrentYear)
}

func TestBuildDashboardComparesYears(t *testing.T) {
	records := []domain.SalesRecord{
		rec(2023, 1, 1000),
		rec(2023, 2, 2000),
		rec(2024, 1, 1500),
		rec(2024, 1, 500),
		rec(2024, 3, 400),
	}

	d := BuildDashboard(records, Options{})

	require.NotNil(t, d.ComparisonYears.PreviousYear)
	assert.Equal(t, 2023, *d.ComparisonYears.PreviousYear)
	assert.Equal(t, 2024, *d.ComparisonYears.CurrentYear)

	require.Len(t, d.WeekComparisons, 3)
	assert.Equal(t, domain.WeekComparison{Week: 1, PreviousYear: 1000, CurrentYear: 2000, Variance: 1000, VariancePercentage: 100}, d.WeekComparisons[0])
	assert.Equal(t, -100.0, d.WeekComparisons[1].VariancePercentage)
	assert.Zero(t, d.WeekComparisons[2].VariancePercentage, "no previous sales means no percentage")

	require.Len(t, d.WeeklyData, 4)
	assert.Equal(t, 2024, d.WeeklyData[0].Year)
	assert.InDelta(t, 2200, d.WeeklyData[0].Target, 1e-9)

	assert.Equal(t, 3000.0, d.YearOnYearGrowth.PreviousYearTotal)
	assert.Equal(t, 2400.0, d.YearOnYearGrowth.CurrentYearTotal)
	assert.Equal(t, -600.0, d.YearOnYearGrowth.Variance)
	assert.Equal(t, -20.0, d.YearOnYearGrowth.VariancePercentage)
}

func TestBuildDashboardExplicitYears(t *testing.T) {
	records := []domain.SalesRecord{rec(2022, 5, 10), rec(2023, 5, 20), rec(2024, 5, 30)}

	d := BuildDashboard(records, Options{Year1: 2022, Year2: 2023})

	assert.Equal(t, 2022, *d.ComparisonYears.PreviousYear)
	assert.Equal(t, 2023, *d.ComparisonYears.CurrentYear)
	require.Len(t, d.WeekComparisons, 1)
	assert.Equal(t, 10.0, d.WeekComparisons[0].PreviousYear)
	assert.Equal(t, 20.0, d.WeekComparisons[0].CurrentYear)
}

func TestQuarterlyData(t *testing.T) {
	records := []domain.SalesRecord{rec(2024, 1, 1000), rec(2024, 13, 1000), rec(2024, 14, 500), rec(2023, 2, 9999)}

	t.Run("estimated targets", func(t *testing.T) {
		q := quarterlyData(records, 2024, nil)
		require.Len(t, q, 4)
		assert.Equal(t, domain.QuarterlyData{Quarter: "Q1", Target: 2200, Actual: 2000, Variance: -200, VariancePercentage: -9.1}, q[0])
		assert.Equal(t, 550.0, q[1].Target)
		assert.Equal(t, 100000.0, q[2].Target)
		assert.Equal(t, -100.0, q[2].VariancePercentage)
	})

	t.Run("area targets", func(t *testing.T) {
		targets := &domain.QuarterlyTargets{Q1: 4000, Q2: 500, Q3: 0, Q4: 1000}
		q := quarterlyData(records, 2024, targets)
		assert.Equal(t, 4000.0, q[0].Target)
		assert.Equal(t, -50.0, q[0].VariancePercentage)
		assert.Equal(t, 0.0, q[1].Variance)
		assert.Equal(t, 100000.0, q[2].Target, "unset quarter target falls back")
		assert.Equal(t, 1000.0, q[3].Target)
	})
}

func TestL4WC4W(t *testing.T) {
	var records []domain.SalesRecord
	for week := 1; week <= 8; week++ {
		omzet := 100.0
		if week > 4 {
			omzet = 150
		}
		records = append(records, rec(2024, week, omzet))
	}

	data := l4wc4w(records, 2024)
	assert.Equal(t, domain.L4WC4WData{L4WAverage: 100, C4WAverage: 150, Variance: 50, VariancePercentage: 50}, data)
}

func TestL4WC4WFewWeeks(t *testing.T) {
	records := []domain.SalesRecord{rec(2024, 1, 100), rec(2024, 2, 201)}

	data := l4wc4w(records, 2024)
	assert.Equal(t, domain.L4WC4WData{C4WAverage: 151}, data)
}

func TestL4WC4WFallsBackToAllRecords(t *testing.T) {
	records := []domain.SalesRecord{rec(2023, 1, 100)}

	data := l4wc4w(records, 2024)
	assert.Equal(t, 100.0, data.C4WAverage)
}

func TestRoundHalfUp(t *testing.T) {
	assert.Equal(t, 3.0, round(2.5))
	assert.Equal(t, -2.0, round(-2.5))
	assert.Equal(t, -9.1, round1(-9.0909))
}
