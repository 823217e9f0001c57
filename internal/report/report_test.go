package report

import (
	"strings"
	"testing"
	"time"

	"urenlogger/internal/core"
	"urenlogger/internal/dates"
)

var testPeriod = dates.NewPeriod(core.NewDate(2025, 9, 22), core.NewDate(2025, 10, 21))

func entry(userID, name string, hours float64, day int, desc string) core.HourEntry {
	return core.HourEntry{
		UserID:      userID,
		DisplayName: name,
		Hours:       hours,
		Date:        core.NewDate(2025, 10, day),
		Description: desc,
	}
}

func TestAggregateOrdersByTotalDescending(t *testing.T) {
	entries := []core.HourEntry{
		entry("a", "Anna", 2, 1, ""),
		entry("a", "Anna", 3, 2, ""),
		entry("b", "Bram", 5, 1, ""),
		entry("a", "Anna", 1.5, 3, ""),
		entry("b", "Bram", 5, 2, ""),
	}

	got := Aggregate(entries)
	if len(got) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(got))
	}
	if got[0].UserID != "b" || got[0].TotalHours != 10 {
		t.Errorf("first = %s %.2f, want b 10.00", got[0].UserID, got[0].TotalHours)
	}
	if got[1].UserID != "a" || got[1].TotalHours != 6.5 {
		t.Errorf("second = %s %.2f, want a 6.50", got[1].UserID, got[1].TotalHours)
	}
	if len(got[1].Entries) != 3 || got[1].Entries[2].Hours != 1.5 {
		t.Errorf("entries not kept in input order: %+v", got[1].Entries)
	}
}

func TestAggregateDisplayNameFromFirstEntry(t *testing.T) {
	got := Aggregate([]core.HourEntry{
		entry("a", "Anna", 1, 1, ""),
		entry("a", "Anna de Vries", 1, 2, ""),
	})
	if got[0].DisplayName != "Anna" {
		t.Errorf("DisplayName = %q, want Anna", got[0].DisplayName)
	}
}

func TestAggregateTieBreaksOnUserID(t *testing.T) {
	got := Aggregate([]core.HourEntry{
		entry("z", "Zoe", 4, 1, ""),
		entry("m", "Mo", 4, 1, ""),
		entry("c", "Cas", 4, 1, ""),
	})
	var ids []string
	for _, s := range got {
		ids = append(ids, s.UserID)
	}
	if strings.Join(ids, ",") != "c,m,z" {
		t.Errorf("order = %v, want c,m,z", ids)
	}
}

func TestAggregateIsPermutationInvariant(t *testing.T) {
	base := []core.HourEntry{
		entry("a", "Anna", 2, 1, ""),
		entry("b", "Bram", 1, 1, ""),
		entry("c", "Cas", 3, 2, ""),
		entry("a", "Anna", 2, 3, ""),
		entry("b", "Bram", 4, 4, ""),
	}
	reversed := make([]core.HourEntry, len(base))
	for i, e := range base {
		reversed[len(base)-1-i] = e
	}
	rotated := append(append([]core.HourEntry{}, base[2:]...), base[:2]...)

	want := totals(Aggregate(base))
	for name, in := range map[string][]core.HourEntry{"reversed": reversed, "rotated": rotated} {
		if got := totals(Aggregate(in)); got != want {
			t.Errorf("%s: got %q, want %q", name, got, want)
		}
	}
}

func totals(summaries []UserSummary) string {
	var parts []string
	for _, s := range summaries {
		parts = append(parts, s.UserID+"="+formatHours(s.TotalHours))
	}
	return strings.Join(parts, ",")
}

func TestAggregateEmpty(t *testing.T) {
	if got := Aggregate(nil); len(got) != 0 {
		t.Errorf("expected no summaries, got %d", len(got))
	}
}

func TestBuildTotals(t *testing.T) {
	r := Build(testPeriod, []core.HourEntry{
		entry("a", "Anna", 2, 1, ""),
		entry("b", "Bram", 5.25, 1, ""),
	}, time.Date(2025, 10, 21, 9, 0, 0, 0, time.UTC))

	if r.TotalUsers != 2 {
		t.Errorf("TotalUsers = %d", r.TotalUsers)
	}
	if r.TotalHours != 7.25 {
		t.Errorf("TotalHours = %v", r.TotalHours)
	}
}

func TestRenderPlainTextEmpty(t *testing.T) {
	text := RenderPlainText(Build(testPeriod, nil, time.Now()))
	if !strings.Contains(text, NoHoursText) {
		t.Errorf("empty report does not mention %q:\n%s", NoHoursText, text)
	}
	if !strings.Contains(text, "22 september 2025 t/m 21 oktober 2025") {
		t.Errorf("period line missing:\n%s", text)
	}
}

func TestRenderPlainText(t *testing.T) {
	text := RenderPlainText(Build(testPeriod, []core.HourEntry{
		entry("a", "Anna", 2, 1, "Frontend"),
		entry("b", "Bram", 5, 3, ""),
	}, time.Now()))

	for _, want := range []string{
		"1. Bram",
		"Totaal: 5.00 uur",
		"03-10-2025  |  5.00u  |  -",
		"2. Anna",
		"01-10-2025  |  2.00u  |  Frontend",
		"Totaal: 7.00 uur (2 medewerkers)",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in:\n%s", want, text)
		}
	}
	if strings.Contains(text, NoHoursText) {
		t.Error("non-empty report claims no hours")
	}
	if strings.Index(text, "Bram") > strings.Index(text, "Anna") {
		t.Error("users not in summary order")
	}
}

func TestRenderHTMLEscapesUserInput(t *testing.T) {
	html, err := RenderHTML(Build(testPeriod, []core.HourEntry{
		entry("a", "<b>Anna</b>", 2, 1, `<script>alert("x")</script>`),
	}, time.Date(2025, 10, 21, 9, 0, 0, 0, time.UTC)))
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	if strings.Contains(html, "<script>") || strings.Contains(html, "<b>Anna</b>") {
		t.Errorf("user input not escaped:\n%s", html)
	}
	if !strings.Contains(html, "&lt;script&gt;") {
		t.Errorf("expected escaped description in output")
	}
	if !strings.Contains(html, "<style>") {
		t.Error("stylesheet missing")
	}
	if !strings.Contains(html, "2.00u") {
		t.Error("hours not rendered with two decimals")
	}
}

func TestRenderHTMLEmpty(t *testing.T) {
	html, err := RenderHTML(Build(testPeriod, nil, time.Now()))
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	if !strings.Contains(html, NoHoursText) {
		t.Errorf("empty report does not mention %q", NoHoursText)
	}
}
