package workcal

import "time"

// =============================================================================
// DAY TYPE - Classification of a calendar date
// =============================================================================

// DayType classifies a date for default-hours and summary purposes.
// Exactly one type applies to any date.
type DayType string

const (
	DayLaborable DayType = "laborable"
	DaySaturday  DayType = "saturday"
	DaySunday    DayType = "sunday"
	DayHoliday   DayType = "holiday"
)

// =============================================================================
// HOLIDAY CALENDAR - Fixed national + regional tables
// =============================================================================

// Holiday is one fixed entry in the holiday table.
type Holiday struct {
	Date     Date   `json:"date"`
	Name     string `json:"name"`
	Regional bool   `json:"regional"`
}

// HolidayCalendar classifies dates against a fixed table of national and
// regional holidays. The table is static data, not computed: moveable feasts
// (Easter week) are listed per year. Dates in years outside the table are
// classified by weekday only.
type HolidayCalendar struct {
	byDate map[Date]Holiday
}

// Years covered by the built-in table.
const (
	holidayTableFirstYear = 2024
	holidayTableLastYear  = 2026
)

// national holidays observed every covered year (month, day).
var nationalFixed = []struct {
	Month time.Month
	Day   int
	Name  string
}{
	{time.January, 1, "Año Nuevo"},
	{time.January, 6, "Epifanía del Señor"},
	{time.May, 1, "Fiesta del Trabajo"},
	{time.August, 15, "Asunción de la Virgen"},
	{time.October, 12, "Fiesta Nacional de España"},
	{time.November, 1, "Todos los Santos"},
	{time.December, 6, "Día de la Constitución"},
	{time.December, 8, "Inmaculada Concepción"},
	{time.December, 25, "Natividad del Señor"},
}

// Moveable feasts, listed explicitly per year.
var nationalByYear = map[int][]struct {
	Month time.Month
	Day   int
	Name  string
}{
	2024: {{time.March, 29, "Viernes Santo"}},
	2025: {{time.April, 18, "Viernes Santo"}},
	2026: {{time.April, 3, "Viernes Santo"}},
}

// Comunidad de Madrid regional holidays.
var regionalByYear = map[int][]struct {
	Month time.Month
	Day   int
	Name  string
}{
	2024: {
		{time.March, 28, "Jueves Santo"},
		{time.May, 2, "Fiesta de la Comunidad de Madrid"},
	},
	2025: {
		{time.April, 17, "Jueves Santo"},
		{time.May, 2, "Fiesta de la Comunidad de Madrid"},
	},
	2026: {
		{time.April, 2, "Jueves Santo"},
		{time.May, 2, "Fiesta de la Comunidad de Madrid"},
	},
}

// NewHolidayCalendar builds the calendar from the built-in tables.
func NewHolidayCalendar() *HolidayCalendar {
	c := &HolidayCalendar{byDate: make(map[Date]Holiday)}
	for year := holidayTableFirstYear; year <= holidayTableLastYear; year++ {
		for _, h := range nationalFixed {
			c.add(Holiday{Date: NewDate(year, h.Month, h.Day), Name: h.Name})
		}
		for _, h := range nationalByYear[year] {
			c.add(Holiday{Date: NewDate(year, h.Month, h.Day), Name: h.Name})
		}
		for _, h := range regionalByYear[year] {
			c.add(Holiday{Date: NewDate(year, h.Month, h.Day), Name: h.Name, Regional: true})
		}
	}
	return c
}

func (c *HolidayCalendar) add(h Holiday) {
	// National entries win over regional duplicates on the same date.
	if existing, ok := c.byDate[h.Date]; ok && !existing.Regional {
		return
	}
	c.byDate[h.Date] = h
}

// IsHoliday reports whether the date appears in the table for that exact year.
func (c *HolidayCalendar) IsHoliday(d Date) bool {
	_, ok := c.byDate[d]
	return ok
}

// Classify returns the DayType for any date. Total function: dates outside the
// populated years fall back to weekend/laborable classification.
func (c *HolidayCalendar) Classify(d Date) DayType {
	if c.IsHoliday(d) {
		return DayHoliday
	}
	switch d.Weekday() {
	case time.Saturday:
		return DaySaturday
	case time.Sunday:
		return DaySunday
	default:
		return DayLaborable
	}
}

// HolidaysInYear returns the table entries for one year, in date order.
func (c *HolidayCalendar) HolidaysInYear(year int) []Holiday {
	var out []Holiday
	for d := NewDate(year, time.January, 1); d.Year() == year; d = d.AddDays(1) {
		if h, ok := c.byDate[d]; ok {
			out = append(out, h)
		}
	}
	return out
}
