package hr_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/warp/workforce/core"
	"github.com/warp/workforce/hr"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// fakeSchedules is an in-memory ScheduleLookup keyed by (contract, weekday).
type fakeSchedules map[string]map[int]*hr.ScheduleEntry

func (f fakeSchedules) ScheduleEntry(_ context.Context, contractID string, weekday int) (*hr.ScheduleEntry, error) {
	if entry, ok := f[contractID][weekday]; ok {
		return entry, nil
	}
	return nil, core.ErrNotFound
}

// monday2025 is 2025-06-02, a Monday.
var monday2025 = time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)

func mondaySchedule() fakeSchedules {
	// Monday 09:00-13:00 + 14:00-18:00 = 8 contracted hours.
	return fakeSchedules{
		"ct-1": {
			1: {
				ContractID: "ct-1",
				Weekday:    1,
				Bands:      [hr.BandsPerDay]hr.Band{band(9, 0, 13, 0), band(14, 0, 18, 0)},
			},
		},
	}
}

func at(hour, minute int) *time.Time {
	t := time.Date(2025, time.June, 2, hour, minute, 0, 0, time.UTC)
	return &t
}

// =============================================================================
// ABSENCE HOURS - Branch order
// =============================================================================

func TestAbsenceHours_NoDate_Zero(t *testing.T) {
	calc := hr.NewHoursCalculator(mondaySchedule())

	a := &hr.Absence{ContractID: "ct-1", FullDay: true}
	assert.True(t, calc.AbsenceHours(context.Background(), a).IsZero())
}

func TestAbsenceHours_FullDay_UsesSchedule(t *testing.T) {
	// GIVEN: A full-day absence on a Monday with 8 contracted hours
	// THEN: Hours equal the schedule's day total

	calc := hr.NewHoursCalculator(mondaySchedule())

	a := &hr.Absence{ContractID: "ct-1", Date: monday2025, FullDay: true}
	got := calc.AbsenceHours(context.Background(), a)

	assert.True(t, got.Equal(hours("8")), "expected 8, got %s", got)
}

func TestAbsenceHours_FullDay_NoScheduleEntry_Zero(t *testing.T) {
	// GIVEN: A full-day absence on a Sunday with no schedule entry
	// THEN: Hours are zero; the lookup failure never propagates

	calc := hr.NewHoursCalculator(mondaySchedule())
	sunday := time.Date(2025, time.June, 8, 0, 0, 0, 0, time.UTC)

	a := &hr.Absence{ContractID: "ct-1", Date: sunday, FullDay: true}
	assert.True(t, calc.AbsenceHours(context.Background(), a).IsZero())
}

func TestAbsenceHours_Partial_ValidInterval(t *testing.T) {
	calc := hr.NewHoursCalculator(mondaySchedule())

	a := &hr.Absence{
		ContractID: "ct-1",
		Date:       monday2025,
		FullDay:    false,
		Start:      at(10, 0),
		End:        at(12, 30),
	}

	got := calc.AbsenceHours(context.Background(), a)
	assert.True(t, got.Equal(hours("2.5")), "expected 2.5, got %s", got)
}

func TestAbsenceHours_PartialIntervalWinsOverSchedule(t *testing.T) {
	// GIVEN: A not-full-day absence with a valid interval on a scheduled day
	// THEN: The interval is used; the schedule is never consulted.
	// The interval branch runs before the full-day branch - kept as the
	// payroll team relies on it.

	calc := hr.NewHoursCalculator(fakeSchedules{}) // empty: a lookup would yield zero

	a := &hr.Absence{
		ContractID: "ct-1",
		Date:       monday2025,
		FullDay:    false,
		Start:      at(9, 0),
		End:        at(11, 0),
	}

	got := calc.AbsenceHours(context.Background(), a)
	assert.True(t, got.Equal(hours("2")), "expected 2, got %s", got)
}

func TestAbsenceHours_MalformedPartial_Zero(t *testing.T) {
	calc := hr.NewHoursCalculator(mondaySchedule())
	ctx := context.Background()

	// Missing interval entirely.
	a := &hr.Absence{ContractID: "ct-1", Date: monday2025, FullDay: false}
	assert.True(t, calc.AbsenceHours(ctx, a).IsZero())

	// End before start clamps to zero, never negative.
	b := &hr.Absence{ContractID: "ct-1", Date: monday2025, FullDay: false, Start: at(12, 0), End: at(10, 0)}
	assert.True(t, calc.AbsenceHours(ctx, b).IsZero())

	// End equal to start is non-positive too.
	c := &hr.Absence{ContractID: "ct-1", Date: monday2025, FullDay: false, Start: at(12, 0), End: at(12, 0)}
	assert.True(t, calc.AbsenceHours(ctx, c).IsZero())
}

// =============================================================================
// OVERTIME HOURS
// =============================================================================

func TestOvertimeHours(t *testing.T) {
	calc := hr.NewHoursCalculator(fakeSchedules{})

	o := &hr.Overtime{
		ContractID: "ct-1",
		Start:      time.Date(2025, time.June, 2, 18, 0, 0, 0, time.UTC),
		End:        time.Date(2025, time.June, 2, 20, 15, 0, 0, time.UTC),
	}
	assert.True(t, calc.OvertimeHours(o).Equal(hours("2.25")))
}

func TestOvertimeHours_MalformedInterval_Zero(t *testing.T) {
	calc := hr.NewHoursCalculator(fakeSchedules{})

	// End before start.
	o := &hr.Overtime{
		Start: time.Date(2025, time.June, 2, 20, 0, 0, 0, time.UTC),
		End:   time.Date(2025, time.June, 2, 18, 0, 0, 0, time.UTC),
	}
	assert.True(t, calc.OvertimeHours(o).IsZero())

	// Zero-length interval.
	o.End = o.Start
	assert.True(t, calc.OvertimeHours(o).IsZero())
}
