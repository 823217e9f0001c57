package report

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"strings"

	"urenlogger/internal/dates"
)

const (
	// Title is the heading of both renderings and the prefix of the mail subject.
	Title = "Maandelijks Urenrapport"
	// NoHoursText marks an empty report.
	NoHoursText = "Geen uren gelogd in deze periode"

	rule     = "═══════════════════════════════════════════════════"
	thinRule = "───────────────────────────────────────────────"
)

//go:embed templates/report.html.tmpl
var reportHTML string

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"hours":     formatHours,
	"short":     dates.FormatShort,
	"long":      dates.FormatLong,
	"timestamp": dates.FormatTimestamp,
	"inc":       func(i int) int { return i + 1 },
	"orDash":    orDash,
}).Parse(reportHTML))

func formatHours(h float64) string {
	return fmt.Sprintf("%.2f", h)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// periodLine renders "22 oktober 2025 t/m 21 november 2025".
func periodLine(r MonthlyReport) string {
	return dates.FormatLong(r.Period.Start) + " t/m " + dates.FormatLong(r.Period.End)
}

// RenderPlainText renders the report as the plain text mail body.
func RenderPlainText(r MonthlyReport) string {
	var b strings.Builder

	b.WriteString(rule + "\n")
	b.WriteString("  " + strings.ToUpper(Title) + "\n")
	b.WriteString(rule + "\n\n")
	fmt.Fprintf(&b, "Facturatieperiode: %s\n", periodLine(r))
	b.WriteString(rule + "\n\n")

	if r.IsEmpty() {
		b.WriteString(NoHoursText + ".\n\n")
	}

	for i, s := range r.Summaries {
		fmt.Fprintf(&b, "%d. %s\n", i+1, s.DisplayName)
		fmt.Fprintf(&b, "   Totaal: %s uur\n", formatHours(s.TotalHours))
		b.WriteString("   " + thinRule + "\n")
		for _, e := range s.Entries {
			fmt.Fprintf(&b, "   %s  |  %su  |  %s\n", dates.FormatShort(e.Date), formatHours(e.Hours), orDash(e.Description))
		}
		b.WriteString("\n")
	}

	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Totaal: %s uur (%d medewerkers)\n", formatHours(r.TotalHours), r.TotalUsers)
	b.WriteString("Einde Rapport\n")
	b.WriteString(rule + "\n")
	return b.String()
}

// RenderHTML renders the report as a self-contained HTML document. Every
// user-supplied string is escaped by html/template.
func RenderHTML(r MonthlyReport) (string, error) {
	var buf bytes.Buffer
	data := struct {
		MonthlyReport
		Title       string
		NoHoursText string
		PeriodLine  string
	}{
		MonthlyReport: r,
		Title:         Title,
		NoHoursText:   NoHoursText,
		PeriodLine:    periodLine(r),
	}
	if err := htmlTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render html report: %w", err)
	}
	return buf.String(), nil
}
