package costing

import (
	"context"
	"time"

	"github.com/obralink/cost-engine/registry"
	"github.com/obralink/cost-engine/workcal"
)

// =============================================================================
// ASSIGNMENT RESOLVER - Which assignments touch a month, and where
// =============================================================================

// ResolvedAssignment is an assignment that overlaps the queried month, with
// the effective intersection of its date range and the month. The effective
// period is what the weekday counter works on.
type ResolvedAssignment struct {
	Assignment registry.Assignment
	Effective  workcal.Period
}

// SkippedAssignment reports an assignment excluded from a computation and why.
// Partial results are preferred over total failure: callers render what
// resolved and surface the rest.
type SkippedAssignment struct {
	Assignment registry.Assignment
	Reason     error
}

// AssignmentResolver intersects an employee's assignments with a month.
type AssignmentResolver struct {
	Projects registry.ProjectRegistry
}

// Resolve returns every assignment for the employee whose effective range
// overlaps the month. Open-ended entry/exit dates default to the month's
// first/last day. Assignments with entry after exit are flagged and skipped.
func (r *AssignmentResolver) Resolve(ctx context.Context, employeeID string, year int, month time.Month) ([]ResolvedAssignment, []SkippedAssignment, error) {
	assignments, err := r.Projects.AssignmentsByEmployee(ctx, employeeID)
	if err != nil {
		return nil, nil, err
	}

	monthPeriod := workcal.MonthPeriod(year, month)
	var resolved []ResolvedAssignment
	var skipped []SkippedAssignment

	for _, a := range assignments {
		if a.EntryDate != nil && a.ExitDate != nil && a.EntryDate.After(*a.ExitDate) {
			skipped = append(skipped, SkippedAssignment{
				Assignment: a,
				Reason: &InvalidRangeError{
					EmployeeID: a.EmployeeID,
					ProjectID:  a.ProjectID,
					Entry:      *a.EntryDate,
					Exit:       *a.ExitDate,
				},
			})
			continue
		}

		effective, ok := effectiveRange(a, monthPeriod)
		if !ok {
			continue
		}
		resolved = append(resolved, ResolvedAssignment{Assignment: a, Effective: effective})
	}

	return resolved, skipped, nil
}

// effectiveRange intersects an assignment's [entry, exit] with the month,
// defaulting open ends to the month edges.
func effectiveRange(a registry.Assignment, month workcal.Period) (workcal.Period, bool) {
	entry := month.Start
	if a.EntryDate != nil {
		entry = *a.EntryDate
	}
	exit := month.End
	if a.ExitDate != nil {
		exit = *a.ExitDate
	}
	return workcal.Period{Start: entry, End: exit}.Intersect(month)
}

// Covers reports whether an assignment's range (open ends defaulted to the
// month edges of the date's month) contains the given date.
func Covers(a registry.Assignment, d workcal.Date) bool {
	month := workcal.MonthPeriod(d.Year(), d.Month())
	effective, ok := effectiveRange(a, month)
	if !ok {
		return false
	}
	return effective.Contains(d)
}
