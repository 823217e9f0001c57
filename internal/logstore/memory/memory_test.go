package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"urenlogger/internal/core"
	"urenlogger/internal/logstore"
)

func hourEntry(user string, hours float64, day int, desc string) core.HourEntry {
	return core.HourEntry{
		UserID:      user,
		DisplayName: "User " + user,
		Hours:       hours,
		Date:        core.NewDate(2025, 10, day),
		Description: desc,
	}
}

func TestMemoryStoreEntriesOrdering(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, e := range []core.HourEntry{
		hourEntry("a", 2, 10, ""),
		hourEntry("a", 3, 5, ""),
		hourEntry("b", 4, 7, ""),
		hourEntry("a", 1, 25, ""),
	} {
		if _, err := s.CreateEntry(ctx, e); err != nil {
			t.Fatalf("CreateEntry: %v", err)
		}
	}

	all, _ := s.EntriesByRange(ctx, "2025-10-01", "2025-10-21")
	if len(all) != 3 {
		t.Fatalf("range returned %d entries, want 3", len(all))
	}
	if all[0].Date.Day() != 5 || all[2].Date.Day() != 10 {
		t.Errorf("range not ascending: %v %v %v", all[0].Date.Key(), all[1].Date.Key(), all[2].Date.Key())
	}

	mine, _ := s.EntriesByUserAndRange(ctx, "a", "2025-10-01", "2025-10-31")
	if len(mine) != 3 || mine[0].Date.Day() != 25 || mine[2].Date.Day() != 5 {
		t.Errorf("user range not descending: %+v", mine)
	}
}

func TestMemoryStoreRejectsInvalidEntry(t *testing.T) {
	s := New()
	_, err := s.CreateEntry(context.Background(), hourEntry("a", 30, 1, ""))
	if !errors.Is(err, core.ErrInvalidHours) {
		t.Fatalf("expected ErrInvalidHours, got %v", err)
	}
}

func TestMemoryStoreUpdateAndDeleteDay(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, _ = s.CreateEntry(ctx, hourEntry("a", 2, 10, "old"))
	_, _ = s.CreateEntry(ctx, hourEntry("a", 3, 10, "old"))
	_, _ = s.CreateEntry(ctx, hourEntry("b", 3, 10, "other"))

	n, err := s.UpdateEntriesForDay(ctx, "a", "2025-10-10", 6, nil)
	if err != nil || n != 2 {
		t.Fatalf("update: n=%d err=%v", n, err)
	}
	day, _ := s.EntriesByUserAndDay(ctx, "a", "2025-10-10")
	for _, e := range day {
		if e.Hours != 6 || e.Description != "old" {
			t.Errorf("unexpected entry after update: %+v", e)
		}
	}

	desc := "new"
	_, _ = s.UpdateEntriesForDay(ctx, "a", "2025-10-10", 6, &desc)
	day, _ = s.EntriesByUserAndDay(ctx, "a", "2025-10-10")
	if day[0].Description != "new" {
		t.Errorf("description not updated: %q", day[0].Description)
	}

	n, _ = s.DeleteEntriesForDay(ctx, "a", "2025-10-10")
	if n != 2 {
		t.Errorf("deleted %d, want 2", n)
	}
	other, _ := s.EntriesByUserAndDay(ctx, "b", "2025-10-10")
	if len(other) != 1 {
		t.Error("delete touched another user's entries")
	}
}

func TestMemoryStoreDeleteTestEntries(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, _ = s.CreateEntry(ctx, hourEntry("a", 1, 1, "TEST run"))
	_, _ = s.CreateEntry(ctx, hourEntry("a", 1, 2, "Real work"))
	_, _ = s.CreateEntry(ctx, hourEntry("b", 1, 3, "TESTING"))

	n, _ := s.DeleteTestEntries(ctx)
	if n != 2 {
		t.Errorf("deleted %d, want 2", n)
	}
	rest, _ := s.EntriesByRange(ctx, "2025-01-01", "2025-12-31")
	if len(rest) != 1 || rest[0].Description != "Real work" {
		t.Errorf("unexpected remaining entries: %+v", rest)
	}
}

func TestMemoryStoreUsers(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, err := s.GetUser(ctx, "x"); !errors.Is(err, core.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if err := s.SetUserEmail(ctx, "x", "a@b.nl"); !errors.Is(err, core.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	if err := s.RegisterUser(ctx, core.User{ID: "x", Name: "Anna"}); err != nil {
		t.Fatal(err)
	}
	_ = s.SetUserEmail(ctx, "x", "anna@example.nl")
	_ = s.UpdateUserName(ctx, "x", "Anna de Vries")

	u, err := s.GetUser(ctx, "x")
	if err != nil || u.Name != "Anna de Vries" || u.Email != "anna@example.nl" {
		t.Fatalf("unexpected user %+v err=%v", u, err)
	}

	_ = s.RemoveUserEmail(ctx, "x")
	u, _ = s.GetUser(ctx, "x")
	if u.HasEmail() {
		t.Error("email not removed")
	}
}

func TestMemoryStoreReportRuns(t *testing.T) {
	ctx := context.Background()
	s := New()
	run, err := s.LastReportRun(ctx, "2025-09-22")
	if err != nil || run != nil {
		t.Fatalf("expected no run, got %+v err=%v", run, err)
	}
	_ = s.RecordReportRun(ctx, logstore.ReportRun{PeriodStart: "2025-09-22", PeriodEnd: "2025-10-21", Recipients: 3})
	run, _ = s.LastReportRun(ctx, "2025-09-22")
	if run == nil || run.Recipients != 3 || run.SentAt.IsZero() {
		t.Fatalf("unexpected run %+v", run)
	}
}

func TestNewFromFilesSeedsUsers(t *testing.T) {
	dir := t.TempDir()
	seed := "# id|name|email\n1|Anna|anna@example.nl\n2|Bram\nbroken\n"
	if err := os.WriteFile(filepath.Join(dir, "seed_users.txt"), []byte(seed), 0o644); err != nil {
		t.Fatal(err)
	}
	s := NewFromFiles(dir)
	users, _ := s.ListUsers(context.Background())
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	if users[0].Name != "Anna" || users[0].Email != "anna@example.nl" {
		t.Errorf("unexpected first user %+v", users[0])
	}
}
