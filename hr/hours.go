/*
hours.go - Decimal-hour computation for absences and overtime

PURPOSE:

	Turns one Absence or Overtime record into decimal hours. This is the
	time-accounting heart of the system, and the branch ORDER below is
	load-bearing - see the policy note.

ABSENCE POLICY (in order):
 1. No date                                    -> 0
 2. Not full-day, valid start/end interval     -> end - start
 3. Full-day                                   -> contracted hours for the
    absence weekday, or 0 when
    no schedule entry exists
 4. Otherwise (malformed partial)              -> 0

POLICY NOTE:

	When an absence is not marked full-day, a populated valid interval wins
	before the full-day flag is ever consulted. Domain owners have been asked
	to confirm whether that precedence is intended; until then it is kept
	exactly as the payroll team relies on it.

FAILURE POLICY:

	A missing schedule entry is NOT an error here. Hour computation always
	yields a bounded number; gaps map to zero and should be surfaced by
	monitoring, not by failing the read.

OVERTIME:

	end - start when end is strictly after start, else 0. Malformed data
	clamps to zero rather than producing negative hours.

SEE ALSO:
  - schedule.go: ScheduleLookup and DayHours
*/
package hr

import (
	"context"

	"github.com/shopspring/decimal"
)

// HoursCalculator computes decimal hours for absence and overtime records,
// consulting the weekly schedule for full-day absences.
type HoursCalculator struct {
	Schedules ScheduleLookup
}

// NewHoursCalculator wires a calculator to a schedule source.
func NewHoursCalculator(schedules ScheduleLookup) *HoursCalculator {
	return &HoursCalculator{Schedules: schedules}
}

// AbsenceHours computes the decimal hours of one absence record.
// See the policy at the top of this file; the branch order matters.
func (c *HoursCalculator) AbsenceHours(ctx context.Context, a *Absence) decimal.Decimal {
	if a == nil || a.Date.IsZero() {
		return decimal.Zero
	}

	if !a.FullDay && a.Start != nil && a.End != nil && a.End.After(*a.Start) {
		return decimalHours(a.End.Sub(*a.Start))
	}

	if a.FullDay {
		entry, err := c.Schedules.ScheduleEntry(ctx, a.ContractID, a.Weekday())
		if err != nil {
			// Missing entry or any lookup failure: zero contracted hours.
			return decimal.Zero
		}
		return entry.DayHours()
	}

	// Partial absence with missing or non-positive interval.
	return decimal.Zero
}

// OvertimeHours computes the decimal hours of one overtime record.
func (c *HoursCalculator) OvertimeHours(o *Overtime) decimal.Decimal {
	if o == nil || !o.End.After(o.Start) {
		return decimal.Zero
	}
	return decimalHours(o.End.Sub(o.Start))
}
