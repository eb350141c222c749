package hr_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/workforce/core"
	"github.com/warp/workforce/hr"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func tod(hour, minute int) *core.TimeOfDay {
	t := core.NewTimeOfDay(hour, minute)
	return &t
}

func band(startH, startM, endH, endM int) hr.Band {
	return hr.Band{Start: tod(startH, startM), End: tod(endH, endM)}
}

func hours(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// =============================================================================
// BAND DURATION
// =============================================================================

func TestBand_Duration_Normal(t *testing.T) {
	assert.Equal(t, 4*time.Hour, band(9, 0, 13, 0).Duration())
	assert.Equal(t, 7*time.Hour+30*time.Minute, band(8, 30, 16, 0).Duration())
}

func TestBand_Duration_CrossesMidnight(t *testing.T) {
	// GIVEN: A night-shift band ending before it starts
	// THEN: The band spans midnight, duration stays positive

	assert.Equal(t, 8*time.Hour, band(22, 0, 6, 0).Duration())
	assert.Equal(t, 23*time.Hour, band(1, 0, 0, 0).Duration())
}

func TestBand_Duration_MissingEndpoint(t *testing.T) {
	assert.Equal(t, time.Duration(0), hr.Band{Start: tod(9, 0)}.Duration())
	assert.Equal(t, time.Duration(0), hr.Band{End: tod(13, 0)}.Duration())
	assert.Equal(t, time.Duration(0), hr.Band{}.Duration())
}

// =============================================================================
// DAY HOURS
// =============================================================================

func TestScheduleEntry_DayHours_SplitShift(t *testing.T) {
	// GIVEN: Monday 09:00-13:00 and 14:00-18:00, third band empty
	// THEN: Contracted hours for the day are exactly 8

	entry := hr.ScheduleEntry{
		ContractID: "ct-1",
		Weekday:    1,
		Bands:      [hr.BandsPerDay]hr.Band{band(9, 0, 13, 0), band(14, 0, 18, 0)},
	}

	assert.True(t, entry.DayHours().Equal(hours("8")),
		"expected 8 hours, got %s", entry.DayHours())
}

func TestScheduleEntry_DayHours_FractionalExact(t *testing.T) {
	// 09:00-12:45 is exactly 3.75 decimal hours, no float drift.
	entry := hr.ScheduleEntry{Weekday: 2, Bands: [hr.BandsPerDay]hr.Band{band(9, 0, 12, 45)}}

	assert.True(t, entry.DayHours().Equal(hours("3.75")),
		"expected 3.75 hours, got %s", entry.DayHours())
}

func TestScheduleEntry_DayHours_ThreeBandsWithNightWrap(t *testing.T) {
	entry := hr.ScheduleEntry{
		Weekday: 5,
		Bands: [hr.BandsPerDay]hr.Band{
			band(6, 0, 10, 0),  // 4h
			band(12, 0, 16, 0), // 4h
			band(22, 0, 1, 0),  // 3h across midnight
		},
	}

	assert.True(t, entry.DayHours().Equal(hours("11")))
}

func TestScheduleEntry_DayHours_AllBandsEmpty(t *testing.T) {
	entry := hr.ScheduleEntry{Weekday: 6}
	assert.True(t, entry.DayHours().IsZero())
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestScheduleEntry_Validate(t *testing.T) {
	valid := hr.ScheduleEntry{ContractID: "ct-1", Weekday: 3, Bands: [hr.BandsPerDay]hr.Band{band(9, 0, 17, 0)}}
	require.NoError(t, valid.Validate())

	badDay := valid
	badDay.Weekday = 8
	err := badDay.Validate()
	assert.ErrorIs(t, err, core.ErrValidation)

	halfBand := valid
	halfBand.Bands[1] = hr.Band{Start: tod(18, 0)}
	err = halfBand.Validate()
	require.ErrorIs(t, err, core.ErrValidation)
	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "bands", verr.Field)
}
