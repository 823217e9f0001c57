package memory

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"urenlogger/internal/core"
	"urenlogger/internal/logstore"
)

// Store keeps entries, users and report runs in memory. It is used by the
// memory backend and as a fake in tests.
type Store struct {
	mu      sync.Mutex
	nextID  int64
	entries []core.HourEntry
	users   map[string]core.User
	runs    map[string]logstore.ReportRun
	now     func() time.Time
}

var _ logstore.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		users: make(map[string]core.User),
		runs:  make(map[string]logstore.ReportRun),
		now:   time.Now,
	}
}

// NewFromFiles seeds users from base/seed_users.txt, one "id|name|email" per
// line. A missing file yields an empty store.
func NewFromFiles(base string) *Store {
	s := New()
	now := s.now()
	for _, line := range readLines(filepath.Join(base, "seed_users.txt")) {
		parts := strings.Split(line, "|")
		if len(parts) < 2 {
			continue
		}
		u := core.User{
			ID:           strings.TrimSpace(parts[0]),
			Name:         strings.TrimSpace(parts[1]),
			RegisteredAt: now,
			UpdatedAt:    now,
		}
		if len(parts) > 2 {
			u.Email = strings.TrimSpace(parts[2])
		}
		if u.Validate() == nil {
			s.users[u.ID] = u
		}
	}
	return s
}

func (s *Store) CreateEntry(_ context.Context, e core.HourEntry) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	e.ID = s.nextID
	if e.LoggedAt.IsZero() {
		e.LoggedAt = s.now()
	}
	s.entries = append(s.entries, e)
	return e.ID, nil
}

func (s *Store) EntriesByRange(_ context.Context, startKey, endKey string) ([]core.HourEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.filter(func(e core.HourEntry) bool {
		k := e.Date.Key()
		return k >= startKey && k <= endKey
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *Store) EntriesByUserAndRange(_ context.Context, userID, startKey, endKey string) ([]core.HourEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.filter(func(e core.HourEntry) bool {
		k := e.Date.Key()
		return e.UserID == userID && k >= startKey && k <= endKey
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (s *Store) EntriesByUserAndDay(_ context.Context, userID, dayKey string) ([]core.HourEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter(func(e core.HourEntry) bool {
		return e.UserID == userID && e.Date.Key() == dayKey
	}), nil
}

func (s *Store) UpdateEntriesForDay(_ context.Context, userID, dayKey string, hours float64, desc *string) (int, error) {
	if err := core.ValidateHours(hours); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for i := range s.entries {
		e := &s.entries[i]
		if e.UserID != userID || e.Date.Key() != dayKey {
			continue
		}
		e.Hours = hours
		if desc != nil {
			e.Description = *desc
		}
		n++
	}
	return n, nil
}

func (s *Store) DeleteEntriesForDay(_ context.Context, userID, dayKey string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remove(func(e core.HourEntry) bool {
		return e.UserID == userID && e.Date.Key() == dayKey
	}), nil
}

func (s *Store) DeleteTestEntries(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remove(func(e core.HourEntry) bool {
		return strings.HasPrefix(e.Description, "TEST")
	}), nil
}

func (s *Store) GetUser(_ context.Context, id string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return core.User{}, core.ErrUserNotFound
	}
	return u, nil
}

func (s *Store) RegisterUser(_ context.Context, u core.User) error {
	if err := u.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if existing, ok := s.users[u.ID]; ok {
		u.RegisteredAt = existing.RegisteredAt
		if u.Email == "" {
			u.Email = existing.Email
		}
	} else if u.RegisteredAt.IsZero() {
		u.RegisteredAt = now
	}
	u.UpdatedAt = now
	s.users[u.ID] = u
	return nil
}

func (s *Store) UpdateUserName(_ context.Context, id, name string) error {
	return s.updateUser(id, func(u *core.User) { u.Name = name })
}

func (s *Store) SetUserEmail(_ context.Context, id, email string) error {
	return s.updateUser(id, func(u *core.User) { u.Email = email })
}

func (s *Store) RemoveUserEmail(_ context.Context, id string) error {
	return s.updateUser(id, func(u *core.User) { u.Email = "" })
}

func (s *Store) ListUsers(_ context.Context) ([]core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) LastReportRun(_ context.Context, periodStartKey string) (*logstore.ReportRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[periodStartKey]
	if !ok {
		return nil, nil
	}
	return &run, nil
}

func (s *Store) RecordReportRun(_ context.Context, run logstore.ReportRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if run.SentAt.IsZero() {
		run.SentAt = s.now()
	}
	s.runs[run.PeriodStart] = run
	return nil
}

func (s *Store) Close() error { return nil }

func (s *Store) updateUser(id string, fn func(*core.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return core.ErrUserNotFound
	}
	fn(&u)
	u.UpdatedAt = s.now()
	s.users[id] = u
	return nil
}

// filter must be called with mu held.
func (s *Store) filter(keep func(core.HourEntry) bool) []core.HourEntry {
	out := make([]core.HourEntry, 0)
	for _, e := range s.entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

// remove must be called with mu held.
func (s *Store) remove(drop func(core.HourEntry) bool) int {
	kept := s.entries[:0]
	n := 0
	for _, e := range s.entries {
		if drop(e) {
			n++
			continue
		}
		kept = append(kept, e)
	}
	s.entries = kept
	return n
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}
