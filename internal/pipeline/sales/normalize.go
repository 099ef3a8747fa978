package sales

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Hafiizherdian/dashboard2y2/internal/domain"
)

// Field names a canonical sales record column.
type Field string

const (
	FieldGrandTotal   Field = "grand_total"
	FieldWeek         Field = "week"
	FieldDate         Field = "date"
	FieldProduct      Field = "product"
	FieldCategory     Field = "category"
	FieldCustomerNo   Field = "customer_no"
	FieldCustomer     Field = "customer"
	FieldCustomerType Field = "customer_type"
	FieldSalesman     Field = "salesman"
	FieldVillage      Field = "village"
	FieldDistrict     Field = "district"
	FieldCity         Field = "city"
	FieldUnitsBks     Field = "units_bks"
	FieldUnitsSlop    Field = "units_slop"
	FieldUnitsBal     Field = "units_bal"
	FieldUnitsDos     Field = "units_dos"
	FieldOmzet        Field = "omzet"
)

// ColumnAlias lists the header spellings accepted for a field, Indonesian
// first.
type ColumnAlias struct {
	Field   Field
	Headers []string
}

// ColumnAliases is the default header table used by NewNormalizer.
var ColumnAliases = []ColumnAlias{
	{FieldGrandTotal, []string{"Grand Total", "Total"}},
	{FieldWeek, []string{"Minggu", "Week"}},
	{FieldDate, []string{"Tanggal", "Date"}},
	{FieldProduct, []string{"Produk", "Product"}},
	{FieldCategory, []string{"Kategori", "Category"}},
	{FieldCustomerNo, []string{"No. Customer", "Customer No", "No Customer", "Customer Number"}},
	{FieldCustomer, []string{"Customer", "Pelanggan", "Customer Name"}},
	{FieldCustomerType, []string{"Tipe Customer", "Customer Type"}},
	{FieldSalesman, []string{"Salesman", "Sales"}},
	{FieldVillage, []string{"Desa", "Village"}},
	{FieldDistrict, []string{"Kecamatan", "District"}},
	{FieldCity, []string{"Kota", "City"}},
	{FieldUnitsBks, []string{"Jual (Bks Net)", "Units Bks"}},
	{FieldUnitsSlop, []string{"Jual (Slop Net)", "Units Slop"}},
	{FieldUnitsBal, []string{"Jual (Bal Net)", "Units Bal"}},
	{FieldUnitsDos, []string{"Jual (Dos Net)", "Units Dos"}},
	{FieldOmzet, []string{"Omzet (Nett)", "Omzet", "Revenue"}},
}

// Diagnostic explains why a row was rejected.
type Diagnostic struct {
	RowIndex int    `json:"rowIndex"`
	Reason   string `json:"reason"`
}

// Normalizer maps raw rows onto sales records. It holds no mutable state and
// is safe for concurrent use.
type Normalizer struct {
	aliases    []ColumnAlias
	normalized map[Field][]string
}

// NewNormalizer builds a Normalizer over the given alias table, or over
// ColumnAliases when none is given.
func NewNormalizer(aliases ...ColumnAlias) *Normalizer {
	if len(aliases) == 0 {
		aliases = ColumnAliases
	}
	n := &Normalizer{
		aliases:    aliases,
		normalized: make(map[Field][]string, len(aliases)),
	}
	for _, a := range aliases {
		for _, h := range a.Headers {
			n.normalized[a.Field] = append(n.normalized[a.Field], normalizeColumnName(h))
		}
	}
	return n
}

// Normalize converts one raw row. A nil Diagnostic means the record is valid.
func (n *Normalizer) Normalize(row RawRow, area *string) (domain.SalesRecord, *Diagnostic) {
	reject := func(format string, args ...any) (domain.SalesRecord, *Diagnostic) {
		return domain.SalesRecord{}, &Diagnostic{RowIndex: row.Number, Reason: fmt.Sprintf(format, args...)}
	}

	rawDate := n.lookup(row, FieldDate)
	if isEmptyCell(rawDate) {
		return reject("missing date")
	}
	date, ok := ParseDate(rawDate)
	if !ok {
		return reject("unparseable date %q", cellString(rawDate))
	}

	week := parseWeek(n.lookup(row, FieldWeek))

	record := domain.SalesRecord{
		GrandTotal:   ParseNumeric(n.lookup(row, FieldGrandTotal)),
		Week:         week,
		Date:         ReconcileWeekYear(week, date),
		Product:      cellString(n.lookup(row, FieldProduct)),
		Category:     cellString(n.lookup(row, FieldCategory)),
		CustomerNo:   cellString(n.lookup(row, FieldCustomerNo)),
		Customer:     cellString(n.lookup(row, FieldCustomer)),
		CustomerType: cellString(n.lookup(row, FieldCustomerType)),
		Salesman:     cellString(n.lookup(row, FieldSalesman)),
		Village:      cellString(n.lookup(row, FieldVillage)),
		District:     cellString(n.lookup(row, FieldDistrict)),
		City:         cellString(n.lookup(row, FieldCity)),
		Area:         area,
		UnitsBks:     ParseNumeric(n.lookup(row, FieldUnitsBks)),
		UnitsSlop:    ParseNumeric(n.lookup(row, FieldUnitsSlop)),
		UnitsBal:     ParseNumeric(n.lookup(row, FieldUnitsBal)),
		UnitsDos:     ParseNumeric(n.lookup(row, FieldUnitsDos)),
	}

	omzet, ok := parseOmzet(n.lookup(row, FieldOmzet))
	if !ok {
		return reject("omzet is not a number: %q", cellString(n.lookup(row, FieldOmzet)))
	}
	record.Omzet = omzet

	if reason := Validate(record); reason != "" {
		return reject("%s", reason)
	}

	return record, nil
}

// Validate applies the record validity rule and returns the reason a record
// is invalid, or "" when it is valid.
func Validate(record domain.SalesRecord) string {
	switch {
	case strings.TrimSpace(record.Product) == "":
		return "missing product"
	case strings.TrimSpace(record.Customer) == "":
		return "missing customer"
	case record.Date.IsZero():
		return "missing date"
	case isNonFinite(record.Omzet):
		return "omzet is not a number"
	}
	return ""
}

// lookup returns the first non-empty value among the field's headers, first
// by exact header text, then by a case and punctuation insensitive match
// over the row's columns in file order.
func (n *Normalizer) lookup(row RawRow, field Field) any {
	var headers []string
	for _, a := range n.aliases {
		if a.Field == field {
			headers = a.Headers
			break
		}
	}

	for _, h := range headers {
		if v, ok := row.Values[h]; ok && !isEmptyCell(v) {
			return v
		}
	}

	keys := row.Headers
	if len(keys) == 0 {
		keys = make([]string, 0, len(row.Values))
		for key := range row.Values {
			keys = append(keys, key)
		}
		sort.Strings(keys)
	}
	for _, want := range n.normalized[field] {
		for _, key := range keys {
			if normalizeColumnName(key) != want {
				continue
			}
			if v, ok := row.Values[key]; ok && !isEmptyCell(v) {
				return v
			}
		}
	}

	return ""
}

var columnNameSanitizer = strings.NewReplacer(" ", "", "_", "", ".", "", "-", "", "/", "", "(", "", ")", "")

func normalizeColumnName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	return columnNameSanitizer.Replace(name)
}

// parseWeek reads "W12", "w12", "12" or a native number. Anything else is
// week 1.
func parseWeek(raw any) int {
	if v, ok := nativeNumber(raw); ok {
		if isNonFinite(v) {
			return 1
		}
		return int(v)
	}

	s, ok := raw.(string)
	if !ok {
		return 1
	}
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "W") || strings.HasPrefix(s, "w") {
		s = strings.TrimSpace(s[1:])
	}

	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	week, err := strconv.Atoi(s[:end])
	if err != nil {
		return 1
	}
	return week
}

// parseOmzet is ParseNumeric with one difference: a non-empty cell holding
// no digits at all is reported as not a number instead of zero.
func parseOmzet(raw any) (float64, bool) {
	if _, ok := nativeNumber(raw); ok {
		return ParseNumeric(raw), true
	}
	switch v := raw.(type) {
	case nil:
		return 0, true
	case string:
		if strings.TrimSpace(v) == "" {
			return 0, true
		}
		if !hasDigit(v) {
			return 0, false
		}
		return ParseNumeric(v), true
	}
	return 0, false
}

func cellString(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case time.Time:
		if v.IsZero() {
			return ""
		}
		return v.Format("2006-01-02")
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.TrimSpace(fmt.Sprint(raw))
}
