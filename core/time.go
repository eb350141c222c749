/*
time.go - Clock-time and weekday helpers

PURPOSE:

	TimeOfDay is a wall-clock time without a date (minutes since midnight).
	Weekly schedules are defined in terms of these: "Monday 09:00-13:00".
	Keeping them date-free makes the recurring-schedule math trivial and
	avoids timezone pitfalls that full time.Time values drag in.

KEY CONCEPTS:
  - TimeOfDay: minutes since midnight, parsed from "HH:MM"
  - BandDuration: end-start, wrapping past midnight when end < start
  - ISOWeekday: Monday=1 .. Sunday=7 (schedule entries are keyed by this)

SEE ALSO:
  - hr/schedule.go: Uses BandDuration for contracted day hours
*/
package core

import (
	"fmt"
	"time"
)

// =============================================================================
// TIME OF DAY - Clock time without a date
// =============================================================================

// TimeOfDay is a wall-clock time expressed as minutes since midnight.
// The zero value is 00:00; use a *TimeOfDay when "absent" must be distinct.
type TimeOfDay int

const minutesPerDay = 24 * 60

// NewTimeOfDay builds a TimeOfDay from hour and minute.
func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

// ParseTimeOfDay parses "HH:MM" (24-hour clock, zero-padded). Anything
// but exactly five characters of digits around a colon is rejected.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, Invalid("time", fmt.Sprintf("invalid time %q, want HH:MM", s))
	}
	for i, c := range s {
		if i != 2 && (c < '0' || c > '9') {
			return 0, Invalid("time", fmt.Sprintf("invalid time %q, want HH:MM", s))
		}
	}
	hour := 10*int(s[0]-'0') + int(s[1]-'0')
	minute := 10*int(s[3]-'0') + int(s[4]-'0')
	if hour > 23 || minute > 59 {
		return 0, Invalid("time", fmt.Sprintf("time %q out of range", s))
	}
	return NewTimeOfDay(hour, minute), nil
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// Ptr is a convenience for optional band endpoints.
func (t TimeOfDay) Ptr() *TimeOfDay { return &t }

// =============================================================================
// BAND DURATION - The midnight-crossing rule
// =============================================================================

// BandDuration returns the duration of a (start, end) band.
// Either endpoint missing yields zero. An end earlier than its start is
// treated as crossing midnight: 22:00-02:00 is four hours, never negative.
func BandDuration(start, end *TimeOfDay) time.Duration {
	if start == nil || end == nil {
		return 0
	}
	minutes := int(*end) - int(*start)
	if minutes < 0 {
		minutes += minutesPerDay
	}
	return time.Duration(minutes) * time.Minute
}

// =============================================================================
// WEEKDAYS - ISO numbering (Monday=1 .. Sunday=7)
// =============================================================================

// ISOWeekday converts a date's weekday to ISO numbering, Monday=1 to Sunday=7.
func ISOWeekday(date time.Time) int {
	wd := int(date.Weekday()) // Sunday=0
	if wd == 0 {
		return 7
	}
	return wd
}

// ValidWeekday reports whether d is a valid ISO weekday number.
func ValidWeekday(d int) bool { return d >= 1 && d <= 7 }
