package domain

// QuarterlyTargets holds the omzet target per quarter.
type QuarterlyTargets struct {
	Q1 float64 `json:"Q1"`
	Q2 float64 `json:"Q2"`
	Q3 float64 `json:"Q3"`
	Q4 float64 `json:"Q4"`
}

// ForQuarter returns the target for quarter 1..4, or 0.
func (t QuarterlyTargets) ForQuarter(q int) float64 {
	switch q {
	case 1:
		return t.Q1
	case 2:
		return t.Q2
	case 3:
		return t.Q3
	case 4:
		return t.Q4
	}
	return 0
}

// Area is a distributor region an upload is assigned to.
type Area struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Description      string            `json:"description,omitempty"`
	QuarterlyTargets *QuarterlyTargets `json:"quarterlyTargets,omitempty"`
}

// AreaAction is the mutation requested on the areas endpoint.
type AreaAction string

const (
	AreaActionAdd    AreaAction = "add"
	AreaActionUpdate AreaAction = "update"
	AreaActionDelete AreaAction = "delete"
)

// DefaultAreas seeds the area store when no file exists yet.
func DefaultAreas() []Area {
	return []Area{
		{ID: "banyuwangi", Name: "Area Banyuwangi", Description: "Wilayah Banyuwangi dan sekitarnya",
			QuarterlyTargets: &QuarterlyTargets{Q1: 50000, Q2: 60000, Q3: 55000, Q4: 70000}},
		{ID: "jember", Name: "Area Jember", Description: "Wilayah Jember dan sekitarnya",
			QuarterlyTargets: &QuarterlyTargets{Q1: 45000, Q2: 52000, Q3: 48000, Q4: 65000}},
		{ID: "surabaya", Name: "Area Surabaya", Description: "Wilayah Surabaya Raya",
			QuarterlyTargets: &QuarterlyTargets{Q1: 80000, Q2: 90000, Q3: 85000, Q4: 100000}},
		{ID: "malang", Name: "Area Malang", Description: "Wilayah Malang Raya",
			QuarterlyTargets: &QuarterlyTargets{Q1: 65000, Q2: 72000, Q3: 68000, Q4: 82000}},
		{ID: "pasuruan", Name: "Area Pasuruan", Description: "Wilayah Pasuruan Raya",
			QuarterlyTargets: &QuarterlyTargets{Q1: 38000, Q2: 42000, Q3: 40000, Q4: 52000}},
	}
}
