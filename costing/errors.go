package costing

import (
	"errors"
	"fmt"

	"github.com/obralink/cost-engine/registry"
	"github.com/obralink/cost-engine/workcal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidRange marks an assignment whose entry date is after its exit
	// date. Such assignments are flagged and skipped, never silently corrected.
	ErrInvalidRange = errors.New("invalid assignment range: entry after exit")
)

// InvalidRangeError carries the offending assignment's details.
type InvalidRangeError struct {
	EmployeeID string
	ProjectID  string
	Entry      workcal.Date
	Exit       workcal.Date
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("assignment %s/%s: entry %s after exit %s",
		e.EmployeeID, e.ProjectID, e.Entry, e.Exit)
}

func (e *InvalidRangeError) Unwrap() error { return ErrInvalidRange }

// IsNotFound reports whether err traces back to an unresolvable id.
func IsNotFound(err error) bool {
	return errors.Is(err, registry.ErrNotFound)
}

// IsClientError reports whether err is due to bad input rather than a
// system failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, registry.ErrNotFound) ||
		errors.Is(err, workcal.ErrDayOutOfRange) ||
		errors.Is(err, workcal.ErrInvalidAbsenceKind)
}
