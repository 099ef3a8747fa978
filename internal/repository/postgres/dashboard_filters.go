package postgres

import (
	"fmt"
	"strings"

	"github.com/Hafiizherdian/dashboard2y2/internal/domain"
)

// buildSalesFilterClause constructs SQL filter clauses for sales queries
func buildSalesFilterClause(filter domain.SalesFilter, alias string, startIndex int) (string, []interface{}) {
	var (
		clauses []string
		args    []interface{}
	)
	idx := startIndex
	alias = normalizeAlias(alias)

	if years := filter.Years(); len(years) > 0 {
		placeholders := make([]string, len(years))
		for i, year := range years {
			placeholders[i] = fmt.Sprintf("$%d", idx)
			args = append(args, year)
			idx++
		}
		clauses = append(clauses, fmt.Sprintf("EXTRACT(YEAR FROM %sdate) IN (%s)", alias, strings.Join(placeholders, ",")))
	}

	if product := strings.TrimSpace(filter.Product); product != "" {
		clauses = append(clauses, fmt.Sprintf("%sproduct ILIKE $%d", alias, idx))
		args = append(args, "%"+product+"%")
		idx++
	}

	if area := strings.TrimSpace(filter.Area); area != "" {
		clauses = append(clauses, fmt.Sprintf("%sarea = $%d", alias, idx))
		args = append(args, area)
		idx++
	}

	if city := strings.TrimSpace(filter.City); city != "" {
		clauses = append(clauses, fmt.Sprintf("%scity = $%d", alias, idx))
		args = append(args, city)
	}

	if len(clauses) == 0 {
		return "", nil
	}

	return " AND " + strings.Join(clauses, " AND "), args
}

func normalizeAlias(alias string) string {
	if alias == "" {
		return ""
	}
	if !strings.HasSuffix(alias, ".") {
		return alias + "."
	}
	return alias
}
