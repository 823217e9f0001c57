// Package dates turns free-text date and month tokens typed into slash
// commands into calendar dates and billing periods.
//
// Every function takes the reference instant explicitly, so callers decide
// what "today" means (and tests can pin it).
package dates

import (
	"strings"
	"time"
)

// dutchMonths maps lower-case Dutch month names and abbreviations to months.
var dutchMonths = map[string]time.Month{
	"januari": time.January, "jan": time.January,
	"februari": time.February, "feb": time.February,
	"maart": time.March, "mrt": time.March,
	"april": time.April, "apr": time.April,
	"mei":  time.May,
	"juni": time.June, "jun": time.June,
	"juli": time.July, "jul": time.July,
	"augustus": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"oktober": time.October, "okt": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

var dutchMonthNames = [...]string{
	"januari", "februari", "maart", "april", "mei", "juni",
	"juli", "augustus", "september", "oktober", "november", "december",
}

var dutchWeekdayNames = [...]string{
	"zondag", "maandag", "dinsdag", "woensdag", "donderdag", "vrijdag", "zaterdag",
}

// LookupMonth resolves a month name or abbreviation, case-insensitively.
func LookupMonth(name string) (time.Month, bool) {
	m, ok := dutchMonths[strings.ToLower(strings.TrimSpace(name))]
	return m, ok
}

// MonthName returns the Dutch name of m, e.g. "oktober".
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return dutchMonthNames[m-1]
}

// WeekdayName returns the Dutch name of wd, e.g. "woensdag".
func WeekdayName(wd time.Weekday) string {
	return dutchWeekdayNames[wd]
}

// daysIn returns the number of days in month m of year y.
func daysIn(y int, m time.Month) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
