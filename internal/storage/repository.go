package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"urenlogger/internal/core"
	"urenlogger/internal/logstore"

	_ "modernc.org/sqlite"
)

const timeLayout = time.RFC3339Nano

// SQLiteRepository implements logstore.Store on a SQLite file.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

var _ logstore.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("SQLite schema ready", "path", dbPath, "version", version)

	return &SQLiteRepository{db: db, now: time.Now}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping is used by the readiness probe.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

const entryColumns = `id, user_id, display_name, hours, date_key, description, logged_at`

func (r *SQLiteRepository) CreateEntry(ctx context.Context, e core.HourEntry) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}
	if e.LoggedAt.IsZero() {
		e.LoggedAt = r.now()
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO hour_entries (user_id, display_name, hours, date_key, description, logged_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.UserID, e.DisplayName, e.Hours, e.Date.Key(), e.Description, e.LoggedAt.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("insert hour entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read hour entry id: %w", err)
	}

	slog.InfoContext(ctx, "Hour entry saved to SQLite",
		"id", id,
		"user_id", e.UserID,
		"hours", e.Hours,
		"date", e.Date.Key())
	return id, nil
}

func (r *SQLiteRepository) EntriesByRange(ctx context.Context, startKey, endKey string) ([]core.HourEntry, error) {
	return r.queryEntries(ctx,
		`SELECT `+entryColumns+` FROM hour_entries
		 WHERE date_key >= ? AND date_key <= ?
		 ORDER BY date_key ASC, id ASC`,
		startKey, endKey)
}

func (r *SQLiteRepository) EntriesByUserAndRange(ctx context.Context, userID, startKey, endKey string) ([]core.HourEntry, error) {
	return r.queryEntries(ctx,
		`SELECT `+entryColumns+` FROM hour_entries
		 WHERE user_id = ? AND date_key >= ? AND date_key <= ?
		 ORDER BY date_key DESC, id DESC`,
		userID, startKey, endKey)
}

func (r *SQLiteRepository) EntriesByUserAndDay(ctx context.Context, userID, dayKey string) ([]core.HourEntry, error) {
	return r.queryEntries(ctx,
		`SELECT `+entryColumns+` FROM hour_entries
		 WHERE user_id = ? AND date_key = ?
		 ORDER BY id ASC`,
		userID, dayKey)
}

func (r *SQLiteRepository) UpdateEntriesForDay(ctx context.Context, userID, dayKey string, hours float64, desc *string) (int, error) {
	if err := core.ValidateHours(hours); err != nil {
		return 0, err
	}
	var (
		res sql.Result
		err error
	)
	if desc != nil {
		res, err = r.db.ExecContext(ctx,
			`UPDATE hour_entries SET hours = ?, description = ? WHERE user_id = ? AND date_key = ?`,
			hours, *desc, userID, dayKey)
	} else {
		res, err = r.db.ExecContext(ctx,
			`UPDATE hour_entries SET hours = ? WHERE user_id = ? AND date_key = ?`,
			hours, userID, dayKey)
	}
	if err != nil {
		return 0, fmt.Errorf("update hour entries: %w", err)
	}
	return affected(res)
}

func (r *SQLiteRepository) DeleteEntriesForDay(ctx context.Context, userID, dayKey string) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM hour_entries WHERE user_id = ? AND date_key = ?`, userID, dayKey)
	if err != nil {
		return 0, fmt.Errorf("delete hour entries: %w", err)
	}
	return affected(res)
}

func (r *SQLiteRepository) DeleteTestEntries(ctx context.Context) (int, error) {
	// LIKE is case-insensitive in SQLite; substr keeps the prefix match exact.
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM hour_entries WHERE substr(description, 1, 4) = 'TEST'`)
	if err != nil {
		return 0, fmt.Errorf("delete test entries: %w", err)
	}
	n, err := affected(res)
	if err == nil && n > 0 {
		slog.InfoContext(ctx, "Removed test entries", "count", n)
	}
	return n, err
}

func (r *SQLiteRepository) GetUser(ctx context.Context, id string) (core.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, registered_at, updated_at FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.ErrUserNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user %s: %w", id, err)
	}
	return u, nil
}

// RegisterUser inserts the user or, when the ID exists, replaces the name
// while keeping the email and registration time.
func (r *SQLiteRepository) RegisterUser(ctx context.Context, u core.User) error {
	if err := u.Validate(); err != nil {
		return err
	}
	now := r.now().UTC().Format(timeLayout)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, registered_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, updated_at = excluded.updated_at`,
		u.ID, u.Name, u.Email, now, now)
	if err != nil {
		return fmt.Errorf("register user %s: %w", u.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) UpdateUserName(ctx context.Context, id, name string) error {
	return r.updateUser(ctx, `UPDATE users SET name = ?, updated_at = ? WHERE id = ?`, name, id)
}

func (r *SQLiteRepository) SetUserEmail(ctx context.Context, id, email string) error {
	return r.updateUser(ctx, `UPDATE users SET email = ?, updated_at = ? WHERE id = ?`, email, id)
}

func (r *SQLiteRepository) RemoveUserEmail(ctx context.Context, id string) error {
	return r.updateUser(ctx, `UPDATE users SET email = ?, updated_at = ? WHERE id = ?`, "", id)
}

func (r *SQLiteRepository) ListUsers(ctx context.Context) ([]core.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, email, registered_at, updated_at FROM users ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []core.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *SQLiteRepository) LastReportRun(ctx context.Context, periodStartKey string) (*logstore.ReportRun, error) {
	var (
		run    logstore.ReportRun
		sentAt string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT period_start, period_end, recipients, total_hours, sent_at
		 FROM report_runs WHERE period_start = ?`, periodStartKey).
		Scan(&run.PeriodStart, &run.PeriodEnd, &run.Recipients, &run.TotalHours, &sentAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get report run %s: %w", periodStartKey, err)
	}
	if run.SentAt, err = time.Parse(timeLayout, sentAt); err != nil {
		return nil, fmt.Errorf("parse sent_at %q: %w", sentAt, err)
	}
	return &run, nil
}

func (r *SQLiteRepository) RecordReportRun(ctx context.Context, run logstore.ReportRun) error {
	if run.SentAt.IsZero() {
		run.SentAt = r.now()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO report_runs (period_start, period_end, recipients, total_hours, sent_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(period_start) DO UPDATE SET
		   period_end = excluded.period_end,
		   recipients = excluded.recipients,
		   total_hours = excluded.total_hours,
		   sent_at = excluded.sent_at`,
		run.PeriodStart, run.PeriodEnd, run.Recipients, run.TotalHours, run.SentAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("record report run %s: %w", run.PeriodStart, err)
	}
	return nil
}

func (r *SQLiteRepository) updateUser(ctx context.Context, query, value, id string) error {
	res, err := r.db.ExecContext(ctx, query, value, r.now().UTC().Format(timeLayout), id)
	if err != nil {
		return fmt.Errorf("update user %s: %w", id, err)
	}
	n, err := affected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return core.ErrUserNotFound
	}
	return nil
}

func (r *SQLiteRepository) queryEntries(ctx context.Context, query string, args ...any) ([]core.HourEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query hour entries: %w", err)
	}
	defer rows.Close()

	entries := make([]core.HourEntry, 0)
	for rows.Next() {
		var (
			e        core.HourEntry
			dateKey  string
			loggedAt string
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.DisplayName, &e.Hours, &dateKey, &e.Description, &loggedAt); err != nil {
			return nil, fmt.Errorf("scan hour entry: %w", err)
		}
		if e.Date, err = core.ParseKey(dateKey); err != nil {
			return nil, fmt.Errorf("hour entry %d: %w", e.ID, err)
		}
		if e.LoggedAt, err = time.Parse(timeLayout, loggedAt); err != nil {
			return nil, fmt.Errorf("hour entry %d logged_at: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(s rowScanner) (core.User, error) {
	var (
		u                   core.User
		registered, updated string
	)
	if err := s.Scan(&u.ID, &u.Name, &u.Email, &registered, &updated); err != nil {
		return core.User{}, err
	}
	var err error
	if u.RegisteredAt, err = time.Parse(timeLayout, registered); err != nil {
		return core.User{}, fmt.Errorf("parse registered_at: %w", err)
	}
	if u.UpdatedAt, err = time.Parse(timeLayout, updated); err != nil {
		return core.User{}, fmt.Errorf("parse updated_at: %w", err)
	}
	return u, nil
}

func affected(res sql.Result) (int, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}
