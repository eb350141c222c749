/*
schedule.go - Weekly recurring schedules with time bands

PURPOSE:

	A contract's working week is described by up to one ScheduleEntry per
	weekday, each holding up to three (start, end) time bands. Contracted
	hours for a weekday are derived from the bands, never stored.

THE MIDNIGHT RULE:

	A band whose end is earlier than its start spans midnight: 22:00-02:00
	is four hours. Durations are never negative. A band with either
	endpoint missing contributes zero.

PRECISION:

	Day totals are decimal.Decimal hours (seconds/3600) so 7h30m is exactly
	7.5, not a float approximation.

SEE ALSO:
  - core/time.go: TimeOfDay and BandDuration
  - hours.go: Consumes DayHours for full-day absences
*/
package hr

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/workforce/core"
)

// =============================================================================
// TIME BANDS
// =============================================================================

// Band is one contiguous time-of-day interval within a working day.
// Either endpoint may be absent; such a band counts as unused.
type Band struct {
	Start *core.TimeOfDay
	End   *core.TimeOfDay
}

// Duration applies the midnight-crossing rule from core.BandDuration.
func (b Band) Duration() time.Duration {
	return core.BandDuration(b.Start, b.End)
}

// Empty reports whether the band has no usable endpoints.
func (b Band) Empty() bool { return b.Start == nil && b.End == nil }

// BandsPerDay is the maximum number of split shifts in one day.
const BandsPerDay = 3

// =============================================================================
// SCHEDULE ENTRY - One weekday of a contract's recurring week
// =============================================================================

// ScheduleEntry holds the time bands for one (contract, weekday) pair.
// Weekday numbering is ISO: 1=Monday .. 7=Sunday. At most one entry may
// exist per pair; the storage layer enforces the uniqueness.
type ScheduleEntry struct {
	ID         string
	ContractID string
	Weekday    int
	Bands      [BandsPerDay]Band
}

// Validate checks the weekday range and each band's endpoints.
func (s *ScheduleEntry) Validate() error {
	if !core.ValidWeekday(s.Weekday) {
		return core.Invalid("weekday", "must be between 1 (Monday) and 7 (Sunday)")
	}
	for _, b := range s.Bands {
		if (b.Start == nil) != (b.End == nil) {
			return core.Invalid("bands", "a band needs both start and end, or neither")
		}
	}
	return nil
}

// DayHours returns the total contracted hours for this weekday,
// in decimal hours: the sum of the three band durations.
func (s *ScheduleEntry) DayHours() decimal.Decimal {
	var total time.Duration
	for _, b := range s.Bands {
		total += b.Duration()
	}
	return decimalHours(total)
}

// decimalHours converts a duration to decimal hours (seconds/3600).
func decimalHours(d time.Duration) decimal.Decimal {
	if d <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(d / time.Second)).Div(decimal.NewFromInt(3600))
}

// =============================================================================
// SCHEDULE LOOKUP - Read boundary consumed by the hours calculator
// =============================================================================

// ScheduleLookup resolves the unique entry for a (contract, weekday) pair.
// Implementations return core.ErrNotFound when no entry exists; callers
// computing hours treat that as zero contracted hours.
type ScheduleLookup interface {
	ScheduleEntry(ctx context.Context, contractID string, weekday int) (*ScheduleEntry, error)
}
