package workcal

import "github.com/shopspring/decimal"

// =============================================================================
// HOURS SUMMARY - Derived month totals
// =============================================================================

// HoursSummary is computed from a MonthCalendar on demand; it is never stored.
type HoursSummary struct {
	// OrdinaryHours is the month's default workload: default hours over
	// laborable days.
	OrdinaryHours decimal.Decimal `json:"ordinary_hours"`

	// RealOrdinaryHours is actual hours over laborable and saturday days.
	RealOrdinaryHours decimal.Decimal `json:"real_ordinary_hours"`

	// RealHolidayHours is actual hours over holiday and sunday days.
	RealHolidayHours decimal.Decimal `json:"real_holiday_hours"`

	// OvertimeHours is real ordinary hours over the ordinary workload,
	// floored at zero.
	OvertimeHours decimal.Decimal `json:"overtime_hours"`
}

// Summarize reduces a calendar into categorized hour totals. Absence days are
// not special-cased: they already carry zero or standard actual hours by
// construction, so the reduction runs uniformly over all days.
func Summarize(mc *MonthCalendar) HoursSummary {
	ordinary := decimal.Zero
	realOrdinary := decimal.Zero
	realHoliday := decimal.Zero

	for i := range mc.Days {
		day := &mc.Days[i]
		switch day.Type {
		case DayLaborable:
			ordinary = ordinary.Add(day.DefaultHours)
			realOrdinary = realOrdinary.Add(day.ActualHours)
		case DaySaturday:
			realOrdinary = realOrdinary.Add(day.ActualHours)
		case DaySunday, DayHoliday:
			realHoliday = realHoliday.Add(day.ActualHours)
		}
	}

	overtime := realOrdinary.Sub(ordinary)
	if overtime.IsNegative() {
		overtime = decimal.Zero
	}

	return HoursSummary{
		OrdinaryHours:     ordinary,
		RealOrdinaryHours: realOrdinary,
		RealHolidayHours:  realHoliday,
		OvertimeHours:     overtime,
	}
}
