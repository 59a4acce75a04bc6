/*
calendar.go - Per-employee month calendars

PURPOSE:
  A MonthCalendar is the editable day-by-day record of one employee's month:
  what type each day is, the default hours it carries, the hours actually
  worked, and any recorded absence. Calendars are generated deterministically
  from the holiday table and then mutated only through explicit day edits.

DEFAULT-HOURS RULE:
  A laborable day carries 8 default hours; saturdays, sundays and holidays
  carry 0. ActualHours starts equal to DefaultHours and is edited from there.

ABSENCES:
  An absence is a day-level override with a closed set of kinds. Setting an
  absence forces ActualHours to the kind's default (0 for unexcused, 8
  otherwise); the hours remain independently editable afterwards. Clearing
  the absence resets ActualHours to DefaultHours, not to the pre-absence
  value.

SEE ALSO:
  - store.go: Caching, day patching, persistence
  - summary.go: Hour totals derived from a calendar
*/
package workcal

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultLaborableHours is the workday length assumed for laborable days.
var DefaultLaborableHours = decimal.NewFromInt(8)

// =============================================================================
// ABSENCE - Day-level override
// =============================================================================

// AbsenceKind is a closed enum. Every switch over it handles all kinds so a
// new kind is a compile-surface change everywhere it matters.
type AbsenceKind string

const (
	AbsenceVacation      AbsenceKind = "vacation"
	AbsenceSickLeave     AbsenceKind = "sick_leave"
	AbsenceWorkLeave     AbsenceKind = "work_leave"
	AbsencePersonalLeave AbsenceKind = "personal_leave"
	AbsenceUnexcused     AbsenceKind = "unexcused_absence"
)

// Valid reports whether k is one of the known kinds.
func (k AbsenceKind) Valid() bool {
	switch k {
	case AbsenceVacation, AbsenceSickLeave, AbsenceWorkLeave, AbsencePersonalLeave, AbsenceUnexcused:
		return true
	}
	return false
}

// DefaultHours returns the hours forced onto a day when this absence is set.
func (k AbsenceKind) DefaultHours() decimal.Decimal {
	switch k {
	case AbsenceUnexcused:
		return decimal.Zero
	case AbsenceVacation, AbsenceSickLeave, AbsenceWorkLeave, AbsencePersonalLeave:
		return DefaultLaborableHours
	default:
		return decimal.Zero
	}
}

// ExcludedFromBilling reports whether hours on a day with this absence are
// excluded from hourly revenue recognition. Unexcused days are not excluded;
// they already carry zero hours.
func (k AbsenceKind) ExcludedFromBilling() bool {
	switch k {
	case AbsenceVacation, AbsenceSickLeave, AbsenceWorkLeave, AbsencePersonalLeave:
		return true
	case AbsenceUnexcused:
		return false
	default:
		return false
	}
}

// Absence is the recorded override on a single day.
type Absence struct {
	Kind AbsenceKind `json:"kind"`
}

// =============================================================================
// DAY RECORD / MONTH CALENDAR
// =============================================================================

// DayRecord is one day of one employee's month. Type is a pure function of the
// date and is never mutated after generation.
type DayRecord struct {
	Date         Date            `json:"date"`
	Weekday      time.Weekday    `json:"weekday"`
	Type         DayType         `json:"day_type"`
	DefaultHours decimal.Decimal `json:"default_hours"`
	ActualHours  decimal.Decimal `json:"actual_hours"`
	Absence      *Absence        `json:"absence,omitempty"`
}

// MonthCalendar holds one employee's days for one month. One instance exists
// per (employee, year, month); it is created once and then edited in place.
type MonthCalendar struct {
	EmployeeID string      `json:"employee_id"`
	Year       int         `json:"year"`
	Month      time.Month  `json:"month"`
	Days       []DayRecord `json:"days"`
}

// Generate builds a fresh calendar for one employee-month. Deterministic given
// the holiday table: same inputs, bit-identical output.
func Generate(employeeID string, year int, month time.Month, holidays *HolidayCalendar) *MonthCalendar {
	period := MonthPeriod(year, month)
	days := make([]DayRecord, 0, DaysInMonth(year, month))
	for d := period.Start; d.BeforeOrEqual(period.End); d = d.AddDays(1) {
		dayType := holidays.Classify(d)
		defaultHours := decimal.Zero
		if dayType == DayLaborable {
			defaultHours = DefaultLaborableHours
		}
		days = append(days, DayRecord{
			Date:         d,
			Weekday:      d.Weekday(),
			Type:         dayType,
			DefaultHours: defaultHours,
			ActualHours:  defaultHours,
		})
	}
	return &MonthCalendar{EmployeeID: employeeID, Year: year, Month: month, Days: days}
}

// Period returns the full-month period the calendar covers.
func (mc *MonthCalendar) Period() Period {
	return MonthPeriod(mc.Year, mc.Month)
}

// Clone returns a deep copy of the calendar. Day records are values, but
// Absence is a pointer and is copied so the clone shares no mutable state
// with the original.
func (mc *MonthCalendar) Clone() *MonthCalendar {
	out := *mc
	out.Days = make([]DayRecord, len(mc.Days))
	for i, day := range mc.Days {
		out.Days[i] = day.clone()
	}
	return &out
}

func (d DayRecord) clone() DayRecord {
	if d.Absence != nil {
		a := *d.Absence
		d.Absence = &a
	}
	return d
}

// Day returns the record for an exact date, or nil if the date is outside the
// month.
func (mc *MonthCalendar) Day(d Date) *DayRecord {
	for i := range mc.Days {
		if mc.Days[i].Date.Equal(d) {
			return &mc.Days[i]
		}
	}
	return nil
}
