package sales

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRow() RawRow {
	return RawRow{Number: 2, Values: map[string]any{
		"Grand Total":     "1.500.000",
		"Minggu":          "W12",
		"Tanggal":         "Kamis, 21 Maret 2024",
		"Produk":          "Rokok A",
		"Kategori":        "SKM",
		"No. Customer":    "C-001",
		"Customer":        "Toko X",
		"Tipe Customer":   "Retail",
		"Salesman":        "Budi",
		"Desa":            "Sukorejo",
		"Kecamatan":       "Genteng",
		"Kota":            "Banyuwangi",
		"Jual (Bks Net)":  "120",
		"Jual (Slop Net)": "12",
		"Jual (Bal Net)":  "0,5",
		"Jual (Dos Net)":  "-1",
		"Omzet (Nett)":    "1.500.000",
	}}
}

func TestNormalizeValidRow(t *testing.T) {
	area := "banyuwangi"
	record, diag := NewNormalizer().Normalize(validRow(), &area)
	require.Nil(t, diag)

	assert.Equal(t, 12, record.Week)
	assert.True(t, record.Date.Equal(time.Date(2024, time.March, 21, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Rokok A", record.Product)
	assert.Equal(t, "SKM", record.Category)
	assert.Equal(t, "C-001", record.CustomerNo)
	assert.Equal(t, "Toko X", record.Customer)
	assert.Equal(t, "Retail", record.CustomerType)
	assert.Equal(t, "Budi", record.Salesman)
	assert.Equal(t, "Sukorejo", record.Village)
	assert.Equal(t, "Genteng", record.District)
	assert.Equal(t, "Banyuwangi", record.City)
	assert.Equal(t, 120.0, record.UnitsBks)
	assert.Equal(t, 12.0, record.UnitsSlop)
	assert.Equal(t, 0.5, record.UnitsBal)
	assert.Equal(t, -1.0, record.UnitsDos)
	assert.Equal(t, 1500000.0, record.Omzet)
	assert.Equal(t, 1500000.0, record.GrandTotal)
	require.NotNil(t, record.Area)
	assert.Equal(t, "banyuwangi", *record.Area)
}

func TestNormalizeEnglishHeaders(t *testing.T) {
	row := RawRow{Number: 5, Values: map[string]any{
		"Week":     "7",
		"Date":     "2024-02-14",
		"Product":  "Rokok B",
		"Customer": "Toko Y",
		"City":     "Jember",
		"Omzet":    "2,500.75",
	}}

	record, diag := NewNormalizer().Normalize(row, nil)
	require.Nil(t, diag)
	assert.Equal(t, 7, record.Week)
	assert.Equal(t, "Rokok B", record.Product)
	assert.Equal(t, "Jember", record.City)
	assert.Equal(t, 2500.75, record.Omzet)
	assert.Nil(t, record.Area)
}

func TestNormalizeLooseHeaderMatch(t *testing.T) {
	row := RawRow{Number: 2, Values: map[string]any{
		"MINGGU":       "W3",
		"tanggal":      "15/01/2024",
		"produk":       "Rokok C",
		"CUSTOMER":     "Toko Z",
		"omzet_nett":   "1000",
		"jual bks net": "10",
	}}

	record, diag := NewNormalizer().Normalize(row, nil)
	require.Nil(t, diag)
	assert.Equal(t, 3, record.Week)
	assert.Equal(t, "Rokok C", record.Product)
	assert.Equal(t, "Toko Z", record.Customer)
	assert.Equal(t, 1000.0, record.Omzet)
	assert.Equal(t, 10.0, record.UnitsBks)
}

func TestNormalizeLooseHeaderMatchFollowsColumnOrder(t *testing.T) {
	values := map[string]any{
		"Tanggal":      "15/01/2024",
		"Produk":       "Rokok C",
		"Customer":     "Toko Z",
		"Omzet (Nett)": "1000",
		"CUSTOMER_NO":  "C-1",
		"customer-no":  "C-2",
	}

	tests := []struct {
		name    string
		headers []string
		want    string
	}{
		{"first column wins", []string{"Tanggal", "Produk", "Customer", "CUSTOMER_NO", "customer-no", "Omzet (Nett)"}, "C-1"},
		{"reordered columns", []string{"Tanggal", "Produk", "Customer", "customer-no", "CUSTOMER_NO", "Omzet (Nett)"}, "C-2"},
		{"no header order falls back to sorted keys", nil, "C-1"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			row := RawRow{Number: 2, Headers: tc.headers, Values: values}
			for i := 0; i < 20; i++ {
				record, diag := NewNormalizer().Normalize(row, nil)
				require.Nil(t, diag)
				require.Equal(t, tc.want, record.CustomerNo)
			}
		})
	}
}

func TestNormalizeIndonesianHeaderWins(t *testing.T) {
	row := validRow()
	row.Values["Product"] = "English Name"

	record, diag := NewNormalizer().Normalize(row, nil)
	require.Nil(t, diag)
	assert.Equal(t, "Rokok A", record.Product)
}

func TestNormalizeReconcilesWeekYear(t *testing.T) {
	row := validRow()
	row.Values["Minggu"] = "W52"
	row.Values["Tanggal"] = "03/01/2024"

	record, diag := NewNormalizer().Normalize(row, nil)
	require.Nil(t, diag)
	assert.Equal(t, 2023, record.Date.Year())
	assert.Equal(t, time.January, record.Date.Month())
}

func TestNormalizeRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(map[string]any)
		reason string
	}{
		{"empty product", func(v map[string]any) { v["Produk"] = "  " }, "missing product"},
		{"empty customer", func(v map[string]any) { delete(v, "Customer") }, "missing customer"},
		{"missing date", func(v map[string]any) { delete(v, "Tanggal") }, "missing date"},
		{"garbage date", func(v map[string]any) { v["Tanggal"] = "kemarin" }, `unparseable date "kemarin"`},
		{"garbage omzet", func(v map[string]any) { v["Omzet (Nett)"] = "n/a" }, `omzet is not a number: "n/a"`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			row := validRow()
			tc.mutate(row.Values)

			_, diag := NewNormalizer().Normalize(row, nil)
			require.NotNil(t, diag)
			assert.Equal(t, 2, diag.RowIndex)
			assert.Equal(t, tc.reason, diag.Reason)
		})
	}
}

func TestNormalizeEmptyOmzetIsZero(t *testing.T) {
	row := validRow()
	row.Values["Omzet (Nett)"] = ""

	record, diag := NewNormalizer().Normalize(row, nil)
	require.Nil(t, diag)
	assert.Zero(t, record.Omzet)
}

func TestParseWeek(t *testing.T) {
	tests := []struct {
		input any
		want  int
	}{
		{"W1", 1},
		{"w52", 52},
		{"W 7", 7},
		{"12", 12},
		{"25 (Juni)", 25},
		{3.0, 3},
		{"", 1},
		{"minggu", 1},
		{nil, 1},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, parseWeek(tc.input), "input %#v", tc.input)
	}
}
