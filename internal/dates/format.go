package dates

import (
	"fmt"
	"time"

	"urenlogger/internal/core"
)

// FormatLong renders "22 oktober 2025".
func FormatLong(d core.Date) string {
	return fmt.Sprintf("%d %s %d", d.Day(), MonthName(d.Month()), d.Year())
}

// FormatWithWeekday renders "woensdag 22 oktober".
func FormatWithWeekday(d core.Date) string {
	return fmt.Sprintf("%s %d %s", WeekdayName(d.Weekday()), d.Day(), MonthName(d.Month()))
}

// FormatShort renders "22-10-2025".
func FormatShort(d core.Date) string {
	return d.Format("02-01-2006")
}

// FormatMonthYear renders "november 2025".
func FormatMonthYear(d core.Date) string {
	return fmt.Sprintf("%s %d", MonthName(d.Month()), d.Year())
}

// FormatTimestamp renders "22 oktober 2025 14:05" in t's location.
func FormatTimestamp(t time.Time) string {
	return fmt.Sprintf("%s %s", FormatLong(core.DateOf(t)), t.Format("15:04"))
}
