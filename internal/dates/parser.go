package dates

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"urenlogger/internal/core"
)

var (
	// ErrInvalidDate is wrapped by every ParseError.
	ErrInvalidDate = core.ErrInvalidDate
	// ErrFutureDate is returned by ValidateNotFuture.
	ErrFutureDate = errors.New("date lies in the future")
)

// ParseError reports a token that could not be resolved to a date.
type ParseError struct {
	Token string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid date %q", e.Token)
}

func (e *ParseError) Unwrap() error {
	return ErrInvalidDate
}

// Message is the user-facing text shown in Discord.
func (e *ParseError) Message() string {
	return fmt.Sprintf("Ongeldige datum: %q. Gebruik formaten zoals \"vandaag\", \"gisteren\", \"22 okt\", of \"2025-10-22\".", e.Token)
}

var (
	dayMonthPattern = regexp.MustCompile(`^(\d{1,2})\s*([a-z]+)$`)
	monthDayPattern = regexp.MustCompile(`^([a-z]+)\s*(\d{1,2})$`)
	isoPattern      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	slashPattern    = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	dashPattern     = regexp.MustCompile(`^(\d{1,2})-(\d{1,2})-(\d{4})$`)
)

// fallbackLayouts are tried in order after the keyword, ISO and Dutch forms.
// Layouts without a year take the year of the reference date.
var fallbackLayouts = []struct {
	layout  string
	hasYear bool
}{
	{"2 Jan", false},
	{"Jan 2", false},
	{"2 January", false},
	{"January 2", false},
	{"2006-01-02", true},
}

// maxMonthsAhead is how far into the future a year-less day+month may point
// before it is read as last year's date instead.
const maxMonthsAhead = 3

// ParseDate resolves a free-text date token against now.
//
// An empty token means today. Failures are returned as *ParseError; the
// function never falls back to today for input it does not understand.
func ParseDate(token string, now time.Time) (core.Date, error) {
	today := core.DateOf(now)
	trimmed := strings.ToLower(strings.TrimSpace(token))

	switch trimmed {
	case "", "vandaag", "today":
		return today, nil
	case "gisteren", "yesterday":
		return today.AddDays(-1), nil
	case "morgen", "tomorrow":
		return today.AddDays(1), nil
	}

	if isoPattern.MatchString(trimmed) {
		if d, err := core.ParseKey(trimmed); err == nil {
			return d, nil
		}
		return core.Date{}, &ParseError{Token: token}
	}

	if d, ok := parseDayMonth(trimmed, today); ok {
		return d, nil
	}

	if d, ok := parseFallback(strings.TrimSpace(token), today); ok {
		return d, nil
	}

	if d, ok := parseNumeric(trimmed); ok {
		return d, nil
	}

	return core.Date{}, &ParseError{Token: token}
}

// parseDayMonth handles "22 okt", "22okt", "okt 22" and "15 januari".
func parseDayMonth(input string, today core.Date) (core.Date, bool) {
	var dayStr, monthStr string
	if m := dayMonthPattern.FindStringSubmatch(input); m != nil {
		dayStr, monthStr = m[1], m[2]
	} else if m := monthDayPattern.FindStringSubmatch(input); m != nil {
		monthStr, dayStr = m[1], m[2]
	} else {
		return core.Date{}, false
	}

	month, ok := LookupMonth(monthStr)
	if !ok {
		return core.Date{}, false
	}
	day, err := strconv.Atoi(dayStr)
	if err != nil || day < 1 || day > 31 {
		return core.Date{}, false
	}

	year := today.Year()
	monthsAhead := int(month) - int(today.Month())
	if monthsAhead > maxMonthsAhead {
		year--
	}
	if day > daysIn(year, month) {
		return core.Date{}, false
	}
	return core.NewDate(year, month, day), true
}

func parseFallback(input string, today core.Date) (core.Date, bool) {
	for _, f := range fallbackLayouts {
		t, err := time.Parse(f.layout, input)
		if err != nil {
			continue
		}
		year := t.Year()
		if !f.hasYear {
			year = today.Year()
		}
		if t.Day() > daysIn(year, t.Month()) {
			continue
		}
		return core.NewDate(year, t.Month(), t.Day()), true
	}
	return core.Date{}, false
}

// parseNumeric handles slash and dash dates with one or two digit parts.
// Slash dates are read month first (10/22/2025) and fall back to day first
// (22/10/2025) when that is not a calendar date. Dash dates are day first.
func parseNumeric(input string) (core.Date, bool) {
	if m := slashPattern.FindStringSubmatch(input); m != nil {
		a, b, year := atoi(m[1]), atoi(m[2]), atoi(m[3])
		if d, ok := calendarDate(year, a, b); ok {
			return d, true
		}
		return calendarDate(year, b, a)
	}
	if m := dashPattern.FindStringSubmatch(input); m != nil {
		return calendarDate(atoi(m[3]), atoi(m[2]), atoi(m[1]))
	}
	return core.Date{}, false
}

// calendarDate builds a date only when year, month and day name a real day.
func calendarDate(year, month, day int) (core.Date, bool) {
	if year < 1 || month < 1 || month > 12 || day < 1 || day > daysIn(year, time.Month(month)) {
		return core.Date{}, false
	}
	return core.NewDate(year, time.Month(month), day), true
}

// atoi is only called on strings matched as digits.
func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// FormatKey returns the YYYY-MM-DD key used as store query bound.
func FormatKey(d core.Date) string {
	return d.Key()
}

// ParseKey is the inverse of FormatKey.
func ParseKey(key string) (core.Date, error) {
	return core.ParseKey(key)
}

// ValidateNotFuture rejects dates after today. Today itself is accepted up
// to its last instant, which for calendar dates means any d <= today.
func ValidateNotFuture(d core.Date, now time.Time) error {
	if d.After(core.DateOf(now)) {
		return ErrFutureDate
	}
	return nil
}
