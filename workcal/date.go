/*
Package workcal provides the day-level work-calendar core.

PURPOSE:
  This package contains the date arithmetic and calendar primitives used by
  the cost-imputation side of the system: date-only time points, inclusive
  date ranges, holiday classification, per-employee month calendars, and the
  hour summaries derived from them.

KEY CONCEPTS IN THIS FILE (date.go):
  - Date: A date with no time-of-day component (used everywhere as keys)
  - Period: An inclusive [start, end] date range with intersection support
  - Weekday counting: The labor-day denominator used for cost proration

DESIGN PRINCIPLES:
  1. Dates are values: no timezone, no clock, compare by calendar day
  2. Determinism: nothing in this package reads the wall clock; reference
     dates are always passed in by the caller
  3. Round-tripping: JSON encoding is "2006-01-02" exactly, so persisted
     calendars reload bit-identical

SEE ALSO:
  - holidays.go: Fixed national/regional holiday tables and day classification
  - calendar.go: DayRecord and MonthCalendar generation
  - store.go: Calendar caching and persistence boundary
*/
package workcal

import (
	"fmt"
	"time"
)

// =============================================================================
// DATE - Date-only time point
// =============================================================================

// Date is a calendar date with day granularity. The zero value is the zero date.
type Date struct {
	t time.Time
}

// NewDate builds a Date in UTC with no time-of-day component.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateLayout is the wire format for dates. Date-only, no timezone.
const DateLayout = "2006-01-02"

// ParseDate parses a "2006-01-02" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{t: t.UTC()}, nil
}

// DateOf truncates an arbitrary time.Time to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// Properties
func (d Date) Year() int             { return d.t.Year() }
func (d Date) Month() time.Month     { return d.t.Month() }
func (d Date) Day() int              { return d.t.Day() }
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }
func (d Date) IsZero() bool          { return d.t.IsZero() }

func (d Date) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
func (d Date) IsWeekday() bool { return !d.IsWeekend() }

// Comparison
func (d Date) Before(o Date) bool        { return d.t.Before(o.t) }
func (d Date) After(o Date) bool         { return d.t.After(o.t) }
func (d Date) Equal(o Date) bool         { return d.t.Equal(o.t) }
func (d Date) BeforeOrEqual(o Date) bool { return !d.After(o) }
func (d Date) AfterOrEqual(o Date) bool  { return !d.Before(o) }

func MinDate(a, b Date) Date {
	if a.Before(b) {
		return a
	}
	return b
}

func MaxDate(a, b Date) Date {
	if a.After(b) {
		return a
	}
	return b
}

// Arithmetic
func (d Date) AddDays(n int) Date   { return Date{t: d.t.AddDate(0, 0, n)} }
func (d Date) AddMonths(n int) Date { return Date{t: d.t.AddDate(0, n, 0)} }

func (d Date) String() string { return d.t.Format(DateLayout) }

// MarshalJSON encodes as "2006-01-02". Dates must round-trip exactly.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.t.Format(DateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid date literal %s", s)
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// =============================================================================
// MONTH HELPERS
// =============================================================================

// DaysInMonth returns the number of calendar days in a month.
func DaysInMonth(year int, month time.Month) int {
	return NewDate(year, month+1, 1).AddDays(-1).Day()
}

// FirstOfMonth returns the first day of a month.
func FirstOfMonth(year int, month time.Month) Date { return NewDate(year, month, 1) }

// LastOfMonth returns the last day of a month.
func LastOfMonth(year int, month time.Month) Date {
	return NewDate(year, month+1, 1).AddDays(-1)
}

// MonthPeriod returns the inclusive period covering a whole month.
func MonthPeriod(year int, month time.Month) Period {
	return Period{Start: FirstOfMonth(year, month), End: LastOfMonth(year, month)}
}

// =============================================================================
// PERIOD - Inclusive date range
// =============================================================================

// Period is an inclusive [Start, End] date range.
type Period struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

// Valid reports whether End is not before Start.
func (p Period) Valid() bool { return !p.End.Before(p.Start) }

// Contains reports whether d falls within [Start, End].
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Intersect returns the overlap of two periods, if any.
func (p Period) Intersect(o Period) (Period, bool) {
	out := Period{Start: MaxDate(p.Start, o.Start), End: MinDate(p.End, o.End)}
	if !out.Valid() {
		return Period{}, false
	}
	return out, true
}

// Days returns every day in the period in order.
func (p Period) Days() []Date {
	var days []Date
	for d := p.Start; d.BeforeOrEqual(p.End); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// =============================================================================
// WEEKDAY COUNTING - Labor-day denominator and numerator
// =============================================================================

// LaborDayCountIncludesHolidays marks a deliberate asymmetry: weekday counting
// does NOT consult the holiday table, while the calendar assigns holidays zero
// default hours. The proration denominator therefore counts holidays falling
// Monday-Friday as labor days. Kept as-is from the original behavior; flip this
// in one place if the asymmetry is ever resolved.
const LaborDayCountIncludesHolidays = true

// CountWeekdays counts Monday-Friday days in the period, inclusive.
// Used both for "labor days in month" and "days worked in project".
func (p Period) CountWeekdays() int {
	if !p.Valid() {
		return 0
	}
	count := 0
	for d := p.Start; d.BeforeOrEqual(p.End); d = d.AddDays(1) {
		if d.IsWeekday() {
			count++
		}
	}
	return count
}
