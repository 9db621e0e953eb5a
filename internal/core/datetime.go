package core

import (
	"strings"
	"time"
)

// DefaultAppointmentLayout renders "Saturday, December 20".
// Use "Monday, January 2, 2006" to include the year.
const DefaultAppointmentLayout = "Monday, January 2"

// TwoDigitYearPivot defines how 2-digit years are interpreted.
// Years that would result in dates more than this many years in the future
// are assumed to be in the previous century.
var TwoDigitYearPivot = 20

var (
	fourDigitYearLayouts = []string{
		"1/2/2006", "01/02/2006", "2006-01-02", "1-2-2006", "01-02-2006",
		"January 2, 2006", "Jan 2, 2006", "Monday, January 2, 2006",
	}
	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06",
	}
	timeLayouts = []string{
		"3:04:05 PM", "3:04 PM", "3:04:05PM", "3:04PM",
	}
)

// ParseDate parses the calendar dates found in CRM exports.
func ParseDate(s string) (time.Time, bool) {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	pivotYear := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return t, true
		}
	}

	return time.Time{}, false
}

// ParseClock parses a 12-hour clock time. The meridiem is mandatory.
func ParseClock(s string) (time.Time, bool) {
	s = strings.ToUpper(strings.Join(strings.Fields(s), " "))
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SplitDateTime separates a combined "12/20/2025 9:30:00 AM" value. A value
// that parses as a date on its own has no time part. Otherwise the time is
// taken from the end, so dates written with spaces keep their clock.
func SplitDateTime(s string) (date, clock string) {
	s = strings.TrimSpace(s)
	if _, ok := ParseDate(s); ok {
		return s, ""
	}

	fields := strings.Fields(s)
	for n := 2; n >= 1; n-- {
		if len(fields) <= n {
			continue
		}
		tail := strings.Join(fields[len(fields)-n:], " ")
		if _, ok := ParseClock(tail); ok {
			return strings.Join(fields[:len(fields)-n], " "), tail
		}
	}

	date, clock, _ = strings.Cut(s, " ")
	return date, strings.TrimSpace(clock)
}

// FormatAppointment renders the appointment date with layout and the time as
// 24-hour HH:MM. Either result is empty when its source does not parse.
// When clock is empty, a time carried inside date is used.
func FormatAppointment(date, clock, layout string) (appointment, hhmm string) {
	if layout == "" {
		layout = DefaultAppointmentLayout
	}

	d, c := SplitDateTime(date)
	if strings.TrimSpace(clock) == "" {
		clock = c
	}

	if t, ok := ParseDate(d); ok {
		appointment = t.Format(layout)
	}
	if t, ok := ParseClock(clock); ok {
		hhmm = t.Format("15:04")
	}
	return appointment, hhmm
}
