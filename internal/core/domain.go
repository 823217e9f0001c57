package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const (
	// MinHours and MaxHours bound a single logged entry.
	MinHours = 0.1
	MaxHours = 24.0

	// MaxDescriptionLength matches the limit Discord puts on string options.
	MaxDescriptionLength = 200

	// KeyLayout is the layout of the YYYY-MM-DD key used to store and query entries.
	KeyLayout = "2006-01-02"
)

type (
	// Date is a calendar date. The wrapped time is always midnight UTC so that
	// two Dates compare equal exactly when they name the same day.
	Date struct {
		time.Time
	}

	// HourEntry is one logged unit of work attributed to one user.
	HourEntry struct {
		ID          int64
		UserID      string
		DisplayName string
		Hours       float64
		Date        Date
		Description string
		LoggedAt    time.Time
	}

	// User is a registered Discord user.
	User struct {
		ID           string
		Name         string
		Email        string
		RegisteredAt time.Time
		UpdatedAt    time.Time
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidHours     = errors.New("invalid hours")
	ErrEmptyUserID      = errors.New("empty user id")
	ErrEmptyName        = errors.New("empty name")
	ErrDescriptionLong  = fmt.Errorf("description too long (max %d characters)", MaxDescriptionLength)
	ErrUserNotFound     = errors.New("user not found")
	ErrDuplicateEntry   = errors.New("hours already logged for this day")
	ErrNoEntriesForDay  = errors.New("no hours logged for this day")
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrNoEmailOnAccount = errors.New("no email registered")
)

// NewDate creates a new Date from year, month, day. Out of range values are
// normalized the way time.Date normalizes them.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseKey parses a YYYY-MM-DD key.
func ParseKey(key string) (Date, error) {
	t, err := time.Parse(KeyLayout, strings.TrimSpace(key))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, key)
	}
	return Date{Time: t}, nil
}

// Key returns the YYYY-MM-DD key of the date.
func (d Date) Key() string {
	return d.Format(KeyLayout)
}

// AddDays returns the date n days later (or earlier for negative n).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.AddDate(0, 0, n)}
}

// After reports whether d is a later day than o.
func (d Date) After(o Date) bool {
	return d.Time.After(o.Time)
}

// Before reports whether d is an earlier day than o.
func (d Date) Before(o Date) bool {
	return d.Time.Before(o.Time)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return fmt.Errorf("%w: date cannot be zero", ErrInvalidDate)
	}
	return nil
}

func (e HourEntry) Validate() error {
	if strings.TrimSpace(e.UserID) == "" {
		return ErrEmptyUserID
	}
	if strings.TrimSpace(e.DisplayName) == "" {
		return ErrEmptyName
	}
	if err := ValidateHours(e.Hours); err != nil {
		return err
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if utf8.RuneCountInString(e.Description) > MaxDescriptionLength {
		return ErrDescriptionLong
	}
	return nil
}

// ValidateHours checks that h lies within [MinHours, MaxHours].
func ValidateHours(h float64) error {
	if h < MinHours || h > MaxHours {
		return fmt.Errorf("%w: %.2f not in [%.1f, %.0f]", ErrInvalidHours, h, MinHours, MaxHours)
	}
	return nil
}

func (u User) Validate() error {
	if strings.TrimSpace(u.ID) == "" {
		return ErrEmptyUserID
	}
	if strings.TrimSpace(u.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

// HasEmail reports whether the user registered an address for report copies.
func (u User) HasEmail() bool {
	return strings.TrimSpace(u.Email) != ""
}

// CapitalizeFirst upper-cases the first letter of s and leaves the rest untouched.
func CapitalizeFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
