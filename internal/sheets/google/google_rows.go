package google

import (
	"fmt"
	"strconv"
	"strings"

	"urenlogger/internal/report"
)

// reportRows converts a report into sheet rows: one row per entry, followed
// by one total row per user and a grand total. Columns are
// Periode, Medewerker, Datum, Uren, Omschrijving, Type.
func reportRows(r report.MonthlyReport) [][]any {
	period := r.Period.StartKey() + " - " + r.Period.EndKey()
	rows := make([][]any, 0, len(r.Summaries)*4+1)

	for _, s := range r.Summaries {
		for _, e := range s.Entries {
			rows = append(rows, []any{period, s.DisplayName, e.Date.Key(), roundHours(e.Hours), e.Description, "entry"})
		}
		rows = append(rows, []any{period, s.DisplayName, "", roundHours(s.TotalHours), "", "total"})
	}
	rows = append(rows, []any{period, "Totaal", "", roundHours(r.TotalHours), fmt.Sprintf("%d medewerkers", r.TotalUsers), "grand_total"})
	return rows
}

func roundHours(h float64) float64 {
	v, _ := strconv.ParseFloat(strconv.FormatFloat(h, 'f', 2, 64), 64)
	return v
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
