package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"urenlogger/internal/core"
)

// Billing periods run from StartDay of one month through EndDay of the next.
const (
	StartDay = 22
	EndDay   = 21
)

// Period is a billing period. Start and End are both inclusive.
type Period struct {
	Start core.Date
	End   core.Date
	Label string
}

// StartKey is the lower store query bound.
func (p Period) StartKey() string { return p.Start.Key() }

// EndKey is the upper store query bound.
func (p Period) EndKey() string { return p.End.Key() }

// Contains reports whether d falls inside the period.
func (p Period) Contains(d core.Date) bool {
	return !d.Before(p.Start) && !d.After(p.End)
}

// NewPeriod builds a period with its Dutch label.
func NewPeriod(start, end core.Date) Period {
	return Period{
		Start: start,
		End:   end,
		Label: FormatLong(start) + " - " + FormatLong(end),
	}
}

// periodStartingIn returns the period that starts in the given month.
func periodStartingIn(year int, month time.Month) Period {
	return NewPeriod(
		core.NewDate(year, month, StartDay),
		core.NewDate(year, month+1, EndDay),
	)
}

// CurrentPeriod returns the billing period that contains now.
func CurrentPeriod(now time.Time) Period {
	today := core.DateOf(now)
	if today.Day() >= StartDay {
		return periodStartingIn(today.Year(), today.Month())
	}
	return periodStartingIn(today.Year(), today.Month()-1)
}

// PreviousPeriod returns the billing period that ends on EndDay of now's
// month, i.e. the one the monthly report covers.
func PreviousPeriod(now time.Time) Period {
	today := core.DateOf(now)
	return periodStartingIn(today.Year(), today.Month()-1)
}

var monthTokenPattern = regexp.MustCompile(`^([a-z]+)\s*(\d{4})?$`)

// PeriodForMonth resolves tokens like "feb 2024", "maart" or "dec" to the
// billing period that starts in that month. The year defaults to now's year.
// It reports false when the token does not name a month.
func PeriodForMonth(token string, now time.Time) (Period, bool) {
	m := monthTokenPattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(token)))
	if m == nil {
		return Period{}, false
	}
	month, ok := LookupMonth(m[1])
	if !ok {
		return Period{}, false
	}
	year := now.Year()
	if m[2] != "" {
		y, err := strconv.Atoi(m[2])
		if err != nil || y < 1 {
			return Period{}, false
		}
		year = y
	}
	return periodStartingIn(year, month), true
}
