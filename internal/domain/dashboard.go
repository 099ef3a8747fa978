package domain

// WeeklySales is the omzet of one week in one year.
type WeeklySales struct {
	Week   int     `json:"week"`
	Year   int     `json:"year"`
	Sales  float64 `json:"sales"`
	Target float64 `json:"target,omitempty"`
}

// QuarterlyData compares actual omzet with the quarter target.
type QuarterlyData struct {
	Quarter            string  `json:"quarter"`
	Target             float64 `json:"target"`
	Actual             float64 `json:"actual"`
	Variance           float64 `json:"variance"`
	VariancePercentage float64 `json:"variancePercentage"`
}

// WeekComparison compares the same week across the two selected years.
type WeekComparison struct {
	Week               int     `json:"week"`
	PreviousYear       float64 `json:"previousYear"`
	CurrentYear        float64 `json:"currentYear"`
	Variance           float64 `json:"variance"`
	VariancePercentage float64 `json:"variancePercentage"`
}

// L4WC4WData compares the average of the last four weeks with the four before.
type L4WC4WData struct {
	L4WAverage         float64 `json:"l4wAverage"`
	C4WAverage         float64 `json:"c4wAverage"`
	Variance           float64 `json:"variance"`
	VariancePercentage float64 `json:"variancePercentage"`
}

// YearOnYearGrowth compares yearly totals.
type YearOnYearGrowth struct {
	PreviousYearTotal  float64 `json:"previousYearTotal"`
	CurrentYearTotal   float64 `json:"currentYearTotal"`
	Variance           float64 `json:"variance"`
	VariancePercentage float64 `json:"variancePercentage"`
}

// ComparisonYears names the two years a dashboard compares.
type ComparisonYears struct {
	PreviousYear *int `json:"previousYear"`
	CurrentYear  *int `json:"currentYear"`
}

// SalesDashboard is the aggregate payload rendered by the dashboard.
type SalesDashboard struct {
	WeeklyData       []WeeklySales    `json:"weeklyData"`
	QuarterlyData    []QuarterlyData  `json:"quarterlyData"`
	WeekComparisons  []WeekComparison `json:"weekComparisons"`
	L4WC4WData       L4WC4WData       `json:"l4wc4wData"`
	YearOnYearGrowth YearOnYearGrowth `json:"yearOnYearGrowth"`
	ComparisonYears  ComparisonYears  `json:"comparisonYears"`
}
