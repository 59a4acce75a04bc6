package workcal

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrDayOutOfRange is returned when a day edit targets a date outside the
	// resolved calendar month. The original behavior silently ignored these;
	// here the caller must handle the failure.
	ErrDayOutOfRange = errors.New("date outside calendar month")

	// ErrInvalidAbsenceKind is returned for an absence kind outside the enum.
	ErrInvalidAbsenceKind = errors.New("invalid absence kind")

	// ErrCalendarCorrupt is returned when a persisted calendar document cannot
	// be decoded.
	ErrCalendarCorrupt = errors.New("corrupt calendar document")
)

// DayNotFoundError reports a patch against a date the month does not contain.
type DayNotFoundError struct {
	EmployeeID string
	Year       int
	Month      time.Month
	Date       Date
}

func (e *DayNotFoundError) Error() string {
	return fmt.Sprintf("day %s not in calendar %s %d-%02d", e.Date, e.EmployeeID, e.Year, e.Month)
}

func (e *DayNotFoundError) Unwrap() error { return ErrDayOutOfRange }
