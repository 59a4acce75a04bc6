package workcal_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obralink/cost-engine/workcal"
)

// =============================================================================
// GENERATION
// =============================================================================

func TestGenerate_OneRecordPerCalendarDay(t *testing.T) {
	// GIVEN: Any month
	// WHEN: Generating its calendar
	// THEN: Every calendar day appears exactly once, in order

	cal := workcal.NewHolidayCalendar()
	mc := workcal.Generate("emp-1", 2025, time.June, cal)

	require.Len(t, mc.Days, workcal.DaysInMonth(2025, time.June))
	for i, day := range mc.Days {
		assert.True(t, day.Date.Equal(workcal.NewDate(2025, time.June, i+1)))
		assert.Equal(t, day.Date.Weekday(), day.Weekday)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	cal := workcal.NewHolidayCalendar()

	a := workcal.Generate("emp-1", 2025, time.January, cal)
	b := workcal.Generate("emp-1", 2025, time.January, cal)

	require.Equal(t, len(a.Days), len(b.Days))
	for i := range a.Days {
		assert.Equal(t, a.Days[i], b.Days[i])
	}
}

func TestGenerate_DefaultHoursByDayType(t *testing.T) {
	// GIVEN: January 2025 (contains weekday holidays on the 1st and 6th)
	// WHEN: Generating
	// THEN: Laborable days carry 8 default hours, everything else carries 0,
	//       and ActualHours starts equal to DefaultHours

	cal := workcal.NewHolidayCalendar()
	mc := workcal.Generate("emp-1", 2025, time.January, cal)

	for _, day := range mc.Days {
		if day.Type == workcal.DayLaborable {
			assert.True(t, day.DefaultHours.Equal(decimal.NewFromInt(8)), "day %s", day.Date)
		} else {
			assert.True(t, day.DefaultHours.IsZero(), "day %s", day.Date)
		}
		assert.True(t, day.ActualHours.Equal(day.DefaultHours), "day %s", day.Date)
		assert.Nil(t, day.Absence)
	}

	// Jan 1 is a holiday even though it is a Wednesday.
	first := mc.Day(workcal.NewDate(2025, time.January, 1))
	require.NotNil(t, first)
	assert.Equal(t, workcal.DayHoliday, first.Type)
	assert.True(t, first.DefaultHours.IsZero())
}

func TestMonthCalendar_Day_OutsideMonth(t *testing.T) {
	cal := workcal.NewHolidayCalendar()
	mc := workcal.Generate("emp-1", 2025, time.June, cal)

	assert.Nil(t, mc.Day(workcal.NewDate(2025, time.July, 1)))
	assert.NotNil(t, mc.Day(workcal.NewDate(2025, time.June, 30)))
}

// =============================================================================
// ABSENCE KINDS
// =============================================================================

func TestAbsenceKind_ClosedEnum(t *testing.T) {
	valid := []workcal.AbsenceKind{
		workcal.AbsenceVacation,
		workcal.AbsenceSickLeave,
		workcal.AbsenceWorkLeave,
		workcal.AbsencePersonalLeave,
		workcal.AbsenceUnexcused,
	}
	for _, k := range valid {
		assert.True(t, k.Valid(), "kind %s", k)
	}
	assert.False(t, workcal.AbsenceKind("sabbatical").Valid())
	assert.False(t, workcal.AbsenceKind("").Valid())
}

func TestAbsenceKind_DefaultHours(t *testing.T) {
	// Unexcused absences zero the day; excused ones keep the standard workday.
	assert.True(t, workcal.AbsenceUnexcused.DefaultHours().IsZero())
	assert.True(t, workcal.AbsenceVacation.DefaultHours().Equal(decimal.NewFromInt(8)))
	assert.True(t, workcal.AbsenceSickLeave.DefaultHours().Equal(decimal.NewFromInt(8)))
}

func TestAbsenceKind_BillingExclusion(t *testing.T) {
	assert.True(t, workcal.AbsenceVacation.ExcludedFromBilling())
	assert.True(t, workcal.AbsenceSickLeave.ExcludedFromBilling())
	assert.True(t, workcal.AbsenceWorkLeave.ExcludedFromBilling())
	assert.True(t, workcal.AbsencePersonalLeave.ExcludedFromBilling())

	// Unexcused days already carry zero hours; they are not excluded.
	assert.False(t, workcal.AbsenceUnexcused.ExcludedFromBilling())
}
