package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"urenlogger/internal/core"
	"urenlogger/internal/dates"
	"urenlogger/internal/logstore"
)

var (
	// ErrInvalidMonth is returned by ListHours for an unknown month token.
	ErrInvalidMonth = errors.New("invalid month")
	// ErrMissingOption reports a required command option that was not sent.
	ErrMissingOption = errors.New("missing option")
)

// DuplicateDayError is returned by LogHours when the user already logged
// hours on the day. It wraps core.ErrDuplicateEntry.
type DuplicateDayError struct {
	Date          core.Date
	ExistingHours float64
}

func (e *DuplicateDayError) Error() string {
	return fmt.Sprintf("%.2f hours already logged on %s", e.ExistingHours, e.Date.Key())
}

func (e *DuplicateDayError) Unwrap() error { return core.ErrDuplicateEntry }

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*\.[a-zA-Z]{2,}$`)

// ValidEmail reports whether addr looks like a deliverable address.
func ValidEmail(addr string) bool {
	return emailPattern.MatchString(addr)
}

type (
	RegisterResult struct {
		Name         string
		PreviousName string
		Updated      bool
	}

	LogRequest struct {
		UserID      string
		Hours       float64
		Description string
		DateToken   string
	}

	EditRequest struct {
		UserID    string
		Hours     float64
		DateToken string
		// Description is left untouched when nil.
		Description *string
	}

	EditResult struct {
		Date           core.Date
		OldHours       float64
		NewHours       float64
		OldDescription string
		NewDescription string
	}

	DeleteResult struct {
		Date        core.Date
		Hours       float64
		Description string
		Removed     int
	}

	HoursOverview struct {
		Period     dates.Period
		Entries    []core.HourEntry
		TotalHours float64
	}

	EmailResult struct {
		Email    string
		Previous string
	}
)

// HoursService implements the slash command use cases on top of a log store.
type HoursService struct {
	store    logstore.Store
	location *time.Location
	clock    func() time.Time
}

func NewHoursService(store logstore.Store, location *time.Location) *HoursService {
	if location == nil {
		location = time.Local
	}
	return &HoursService{store: store, location: location, clock: time.Now}
}

// Now returns the current instant in the configured time zone, which is
// what "today" is resolved against.
func (s *HoursService) Now() time.Time {
	return s.clock().In(s.location)
}

// Register creates the user or renames an existing one.
func (s *HoursService) Register(ctx context.Context, userID, name string) (RegisterResult, error) {
	name = core.CapitalizeFirst(strings.TrimSpace(name))
	if name == "" {
		return RegisterResult{}, fmt.Errorf("%w: naam", ErrMissingOption)
	}

	existing, err := s.store.GetUser(ctx, userID)
	switch {
	case err == nil:
		if err := s.store.UpdateUserName(ctx, userID, name); err != nil {
			return RegisterResult{}, fmt.Errorf("update user name: %w", err)
		}
		slog.InfoContext(ctx, "User renamed", "user_id", userID, "old_name", existing.Name, "new_name", name)
		return RegisterResult{Name: name, PreviousName: existing.Name, Updated: true}, nil
	case errors.Is(err, core.ErrUserNotFound):
		if err := s.store.RegisterUser(ctx, core.User{ID: userID, Name: name}); err != nil {
			return RegisterResult{}, fmt.Errorf("register user: %w", err)
		}
		slog.InfoContext(ctx, "User registered", "user_id", userID, "name", name)
		return RegisterResult{Name: name}, nil
	default:
		return RegisterResult{}, fmt.Errorf("get user: %w", err)
	}
}

// LogHours stores a new entry for a registered user. It refuses future
// dates and days that already have hours.
func (s *HoursService) LogHours(ctx context.Context, req LogRequest) (core.HourEntry, error) {
	user, err := s.store.GetUser(ctx, req.UserID)
	if err != nil {
		return core.HourEntry{}, err
	}
	if err := core.ValidateHours(req.Hours); err != nil {
		return core.HourEntry{}, err
	}

	now := s.Now()
	day, err := dates.ParseDate(req.DateToken, now)
	if err != nil {
		return core.HourEntry{}, err
	}
	if err := dates.ValidateNotFuture(day, now); err != nil {
		return core.HourEntry{}, err
	}

	existing, err := s.store.EntriesByUserAndDay(ctx, req.UserID, day.Key())
	if err != nil {
		return core.HourEntry{}, fmt.Errorf("check existing entries: %w", err)
	}
	if len(existing) > 0 {
		var total float64
		for _, e := range existing {
			total += e.Hours
		}
		return core.HourEntry{}, &DuplicateDayError{Date: day, ExistingHours: total}
	}

	entry := core.HourEntry{
		UserID:      req.UserID,
		DisplayName: user.Name,
		Hours:       req.Hours,
		Date:        day,
		Description: core.CapitalizeFirst(strings.TrimSpace(req.Description)),
		LoggedAt:    now,
	}
	id, err := s.store.CreateEntry(ctx, entry)
	if err != nil {
		return core.HourEntry{}, fmt.Errorf("save entry: %w", err)
	}
	entry.ID = id
	return entry, nil
}

// EditHours replaces the hours (and optionally the description) of every
// entry the user has on the given day.
func (s *HoursService) EditHours(ctx context.Context, req EditRequest) (EditResult, error) {
	if _, err := s.store.GetUser(ctx, req.UserID); err != nil {
		return EditResult{}, err
	}
	if strings.TrimSpace(req.DateToken) == "" {
		return EditResult{}, fmt.Errorf("%w: datum", ErrMissingOption)
	}
	if err := core.ValidateHours(req.Hours); err != nil {
		return EditResult{}, err
	}
	day, err := dates.ParseDate(req.DateToken, s.Now())
	if err != nil {
		return EditResult{}, err
	}

	existing, err := s.store.EntriesByUserAndDay(ctx, req.UserID, day.Key())
	if err != nil {
		return EditResult{}, fmt.Errorf("load entries: %w", err)
	}
	if len(existing) == 0 {
		return EditResult{Date: day}, core.ErrNoEntriesForDay
	}

	var desc *string
	if req.Description != nil {
		d := core.CapitalizeFirst(strings.TrimSpace(*req.Description))
		desc = &d
	}
	if _, err := s.store.UpdateEntriesForDay(ctx, req.UserID, day.Key(), req.Hours, desc); err != nil {
		return EditResult{}, fmt.Errorf("update entries: %w", err)
	}

	res := EditResult{
		Date:           day,
		OldHours:       existing[0].Hours,
		NewHours:       req.Hours,
		OldDescription: existing[0].Description,
	}
	if desc != nil {
		res.NewDescription = *desc
	}
	return res, nil
}

// DeleteHours removes every entry the user has on the given day.
func (s *HoursService) DeleteHours(ctx context.Context, userID, dateToken string) (DeleteResult, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return DeleteResult{}, err
	}
	if strings.TrimSpace(dateToken) == "" {
		return DeleteResult{}, fmt.Errorf("%w: datum", ErrMissingOption)
	}
	day, err := dates.ParseDate(dateToken, s.Now())
	if err != nil {
		return DeleteResult{}, err
	}

	existing, err := s.store.EntriesByUserAndDay(ctx, userID, day.Key())
	if err != nil {
		return DeleteResult{}, fmt.Errorf("load entries: %w", err)
	}
	if len(existing) == 0 {
		return DeleteResult{Date: day}, core.ErrNoEntriesForDay
	}

	n, err := s.store.DeleteEntriesForDay(ctx, userID, day.Key())
	if err != nil {
		return DeleteResult{}, fmt.Errorf("delete entries: %w", err)
	}
	return DeleteResult{
		Date:        day,
		Hours:       existing[0].Hours,
		Description: existing[0].Description,
		Removed:     n,
	}, nil
}

// ListHours returns the user's entries for the current billing period or,
// when monthToken is set, for the period starting in that month.
func (s *HoursService) ListHours(ctx context.Context, userID, monthToken string) (HoursOverview, error) {
	now := s.Now()
	period := dates.CurrentPeriod(now)
	if strings.TrimSpace(monthToken) != "" {
		p, ok := dates.PeriodForMonth(monthToken, now)
		if !ok {
			return HoursOverview{}, ErrInvalidMonth
		}
		period = p
	}

	entries, err := s.store.EntriesByUserAndRange(ctx, userID, period.StartKey(), period.EndKey())
	if err != nil {
		return HoursOverview{}, fmt.Errorf("load entries: %w", err)
	}
	var total float64
	for _, e := range entries {
		total += e.Hours
	}
	return HoursOverview{Period: period, Entries: entries, TotalHours: total}, nil
}

// SetEmail stores the address that receives a copy of the monthly report.
func (s *HoursService) SetEmail(ctx context.Context, userID, addr string) (EmailResult, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return EmailResult{}, err
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return EmailResult{}, fmt.Errorf("%w: address", ErrMissingOption)
	}
	if !ValidEmail(addr) {
		return EmailResult{}, core.ErrInvalidEmail
	}
	if err := s.store.SetUserEmail(ctx, userID, addr); err != nil {
		return EmailResult{}, fmt.Errorf("set email: %w", err)
	}
	return EmailResult{Email: addr, Previous: user.Email}, nil
}

// RemoveEmail clears the user's address and returns the one removed.
func (s *HoursService) RemoveEmail(ctx context.Context, userID string) (EmailResult, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return EmailResult{}, err
	}
	if !user.HasEmail() {
		return EmailResult{}, core.ErrNoEmailOnAccount
	}
	if err := s.store.RemoveUserEmail(ctx, userID); err != nil {
		return EmailResult{}, fmt.Errorf("remove email: %w", err)
	}
	return EmailResult{Previous: user.Email}, nil
}

// ShowEmail returns the user's registered address.
func (s *HoursService) ShowEmail(ctx context.Context, userID string) (EmailResult, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return EmailResult{}, err
	}
	if !user.HasEmail() {
		return EmailResult{}, core.ErrNoEmailOnAccount
	}
	return EmailResult{Email: user.Email}, nil
}
