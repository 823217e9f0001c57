// Package report aggregates hour entries per user and renders the billing
// period report that is mailed to the supervisor.
package report

import (
	"sort"
	"time"

	"urenlogger/internal/core"
	"urenlogger/internal/dates"
)

// UserSummary is the per-user block of a report.
type UserSummary struct {
	UserID      string
	DisplayName string
	TotalHours  float64
	Entries     []core.HourEntry
}

// MonthlyReport is everything the renderers need.
type MonthlyReport struct {
	Period      dates.Period
	Summaries   []UserSummary
	TotalHours  float64
	TotalUsers  int
	GeneratedAt time.Time
}

// IsEmpty reports whether nobody logged hours in the period.
func (r MonthlyReport) IsEmpty() bool {
	return len(r.Summaries) == 0
}

// Aggregate groups entries by user. The display name comes from the first
// entry seen for a user and entries keep their input order. Summaries are
// ordered by total hours descending, then by user ID.
func Aggregate(entries []core.HourEntry) []UserSummary {
	index := make(map[string]int)
	summaries := make([]UserSummary, 0)

	for _, e := range entries {
		i, ok := index[e.UserID]
		if !ok {
			i = len(summaries)
			index[e.UserID] = i
			summaries = append(summaries, UserSummary{
				UserID:      e.UserID,
				DisplayName: e.DisplayName,
			})
		}
		summaries[i].TotalHours += e.Hours
		summaries[i].Entries = append(summaries[i].Entries, e)
	}

	sort.SliceStable(summaries, func(a, b int) bool {
		if summaries[a].TotalHours != summaries[b].TotalHours {
			return summaries[a].TotalHours > summaries[b].TotalHours
		}
		return summaries[a].UserID < summaries[b].UserID
	})
	return summaries
}

// Build aggregates entries into a report for period.
func Build(period dates.Period, entries []core.HourEntry, generatedAt time.Time) MonthlyReport {
	summaries := Aggregate(entries)
	var total float64
	for _, s := range summaries {
		total += s.TotalHours
	}
	return MonthlyReport{
		Period:      period,
		Summaries:   summaries,
		TotalHours:  total,
		TotalUsers:  len(summaries),
		GeneratedAt: generatedAt,
	}
}
