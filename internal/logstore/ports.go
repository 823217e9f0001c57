// Package logstore declares the persistence ports for hour entries, users and
// report runs. internal/storage implements them on SQLite and
// internal/logstore/memory keeps everything in process.
package logstore

import (
	"context"
	"time"

	"urenlogger/internal/core"
)

// ReportRun records that the report for a period went out.
type ReportRun struct {
	PeriodStart string
	PeriodEnd   string
	Recipients  int
	TotalHours  float64
	SentAt      time.Time
}

// Ports for outbound adapters. Date arguments are YYYY-MM-DD keys and both
// range bounds are inclusive.
type (
	EntryReader interface {
		// EntriesByRange returns all entries in the range, oldest first.
		EntriesByRange(ctx context.Context, startKey, endKey string) ([]core.HourEntry, error)
		// EntriesByUserAndRange returns one user's entries, newest first.
		EntriesByUserAndRange(ctx context.Context, userID, startKey, endKey string) ([]core.HourEntry, error)
		EntriesByUserAndDay(ctx context.Context, userID, dayKey string) ([]core.HourEntry, error)
	}

	EntryWriter interface {
		CreateEntry(ctx context.Context, e core.HourEntry) (int64, error)
		// UpdateEntriesForDay sets the hours (and the description when desc is
		// non-nil) on every entry of the user's day and returns how many changed.
		UpdateEntriesForDay(ctx context.Context, userID, dayKey string, hours float64, desc *string) (int, error)
		DeleteEntriesForDay(ctx context.Context, userID, dayKey string) (int, error)
		// DeleteTestEntries removes entries whose description starts with "TEST".
		DeleteTestEntries(ctx context.Context) (int, error)
	}

	UserDirectory interface {
		// GetUser returns core.ErrUserNotFound for unknown IDs.
		GetUser(ctx context.Context, id string) (core.User, error)
		RegisterUser(ctx context.Context, u core.User) error
		UpdateUserName(ctx context.Context, id, name string) error
		SetUserEmail(ctx context.Context, id, email string) error
		RemoveUserEmail(ctx context.Context, id string) error
		ListUsers(ctx context.Context) ([]core.User, error)
	}

	RunRecorder interface {
		// LastReportRun returns nil when no run exists for the period.
		LastReportRun(ctx context.Context, periodStartKey string) (*ReportRun, error)
		RecordReportRun(ctx context.Context, run ReportRun) error
	}

	// Store is everything the services need from one backend.
	Store interface {
		EntryReader
		EntryWriter
		UserDirectory
		RunRecorder
		Close() error
	}
)
