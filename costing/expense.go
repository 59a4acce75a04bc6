/*
expense.go - Routing of miscellaneous employee expenses

PURPOSE:
  When an expense is recorded for an employee, it may belong to a project.
  The router decides between three outcomes based on the employee's active
  assignments on the expense date:

    0 candidates -> unattached (recorded only against the employee)
    1 candidate  -> auto-imputed into that project's variable expenses
    2+ candidates -> needs selection; the caller follows up with Attach or
                     LeaveUnattached

  A candidate is an assignment whose date range contains the expense date and
  whose project is in the active state. Attached expenses are cloned into the
  project with a synthesized reference id; the original is never mutated.
  When an imputation record already exists for the expense's
  (employee, project, month), the clone is also appended to it so the record's
  total reflects the expense.
*/
package costing

import (
	"context"

	"github.com/google/uuid"

	"github.com/obralink/cost-engine/registry"
	"github.com/obralink/cost-engine/workcal"
)

// =============================================================================
// ROUTE RESULT
// =============================================================================

type RouteOutcome string

const (
	RouteAutoImputed    RouteOutcome = "auto_imputed"
	RouteNeedsSelection RouteOutcome = "needs_selection"
	RouteUnattached     RouteOutcome = "unattached"
)

// RouteResult is the routing decision for one expense.
type RouteResult struct {
	Outcome RouteOutcome `json:"outcome"`

	// ProjectID is set when the expense was auto-imputed.
	ProjectID string `json:"project_id,omitempty"`

	// Attached is the clone written into the project, when one was.
	Attached *registry.VariableExpense `json:"attached,omitempty"`

	// Candidates lists the project ids to choose from on needs_selection.
	Candidates []string `json:"candidates,omitempty"`
}

// =============================================================================
// EXPENSE ROUTER
// =============================================================================

// ExpenseRouter decides where a miscellaneous expense belongs.
type ExpenseRouter struct {
	Projects registry.ProjectRegistry
	Resolver *AssignmentResolver

	// Ledger, when set, receives attached expenses on any matching
	// imputation record.
	Ledger *ImputationLedger
}

// Route classifies the expense against the employee's assignments on the
// expense date. With exactly one candidate the expense is attached
// immediately; with several the caller must pick via Attach.
func (r *ExpenseRouter) Route(ctx context.Context, employeeID string, date workcal.Date, expense registry.VariableExpense) (RouteResult, error) {
	resolved, _, err := r.Resolver.Resolve(ctx, employeeID, date.Year(), date.Month())
	if err != nil {
		return RouteResult{}, err
	}

	var candidates []string
	seen := make(map[string]bool)
	for _, ra := range resolved {
		if !ra.Effective.Contains(date) {
			continue
		}
		if seen[ra.Assignment.ProjectID] {
			continue
		}
		project, err := r.Projects.Project(ctx, ra.Assignment.ProjectID)
		if err != nil {
			if IsNotFound(err) {
				continue
			}
			return RouteResult{}, err
		}
		if project.State != registry.StateActive {
			continue
		}
		seen[ra.Assignment.ProjectID] = true
		candidates = append(candidates, ra.Assignment.ProjectID)
	}

	switch len(candidates) {
	case 0:
		return RouteResult{Outcome: RouteUnattached}, nil
	case 1:
		attached, err := r.Attach(ctx, candidates[0], expense)
		if err != nil {
			return RouteResult{}, err
		}
		return RouteResult{Outcome: RouteAutoImputed, ProjectID: candidates[0], Attached: &attached}, nil
	default:
		return RouteResult{Outcome: RouteNeedsSelection, Candidates: candidates}, nil
	}
}

// Attach clones the expense into the project's variable expenses with a fresh
// reference id. The amount and concept are carried over unchanged. If an
// imputation record exists for the expense's employee-project-month, the
// clone is appended to it as well.
func (r *ExpenseRouter) Attach(ctx context.Context, projectID string, expense registry.VariableExpense) (registry.VariableExpense, error) {
	if _, err := r.Projects.Project(ctx, projectID); err != nil {
		return registry.VariableExpense{}, err
	}

	clone := expense
	clone.ReferenceID = uuid.NewString()
	if err := r.Projects.AddVariableExpense(ctx, projectID, clone); err != nil {
		return registry.VariableExpense{}, err
	}

	if r.Ledger != nil {
		k := ImputationKey{
			EmployeeID: expense.EmployeeID,
			ProjectID:  projectID,
			Year:       expense.Date.Year(),
			Month:      expense.Date.Month(),
		}
		if _, err := r.Ledger.AttachExpense(ctx, k, clone); err != nil {
			return registry.VariableExpense{}, err
		}
	}
	return clone, nil
}

// LeaveUnattached is the explicit follow-up to a needs_selection routing when
// the user declines every candidate. The expense stays recorded against the
// employee only; no registry or ledger state changes.
func (r *ExpenseRouter) LeaveUnattached(expense registry.VariableExpense) RouteResult {
	return RouteResult{Outcome: RouteUnattached}
}
