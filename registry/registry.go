/*
Package registry holds the employee and project registries.

PURPOSE:
  Employees and projects are owned outside the costing core; the core reads
  them through these interfaces and references them by id only. A proration
  run takes a snapshot of an employee record and never writes back. The only
  indirect mutations the core performs are expense auto-attachment and
  explicit certification/assignment edits, both expressed as registry
  operations here.

TYPES:
  Employee:        Personnel record with the monthly salary/withholding figures
  Project:         Either fixed-budget (certified monthly) or administration
                   (billed by worked hours)
  Assignment:      Employee-to-project link with an effective date range
  Certification:   Recognized revenue for one (month, year) of a fixed-budget
                   project; at most one per period
  VariableExpense: Miscellaneous expense, recorded against an employee and
                   optionally cloned into a project

SEE ALSO:
  - memory.go: In-memory implementation
  - costing/: Consumers of these interfaces
*/
package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/obralink/cost-engine/workcal"
)

// =============================================================================
// EMPLOYEE
// =============================================================================

// Employee is the personnel record. Monetary fields are monthly figures.
type Employee struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`

	GrossSalaryMonth            decimal.Decimal `json:"gross_salary_month"`
	EmployerSocialSecurityMonth decimal.Decimal `json:"employer_social_security_month"`
	WorkerSocialSecurityMonth   decimal.Decimal `json:"worker_social_security_month"`
	IncomeTaxWithholdingMonth   decimal.Decimal `json:"income_tax_withholding_month"`
	GarnishmentMonth            decimal.Decimal `json:"garnishment_month"`
	OvertimeHourRate            decimal.Decimal `json:"overtime_hour_rate"`
	HolidayHourRate             decimal.Decimal `json:"holiday_hour_rate"`
}

// =============================================================================
// PROJECT
// =============================================================================

// ProjectKind selects the revenue recognition model.
type ProjectKind string

const (
	// KindFixedBudget recognizes revenue via discrete monthly certifications.
	KindFixedBudget ProjectKind = "fixed_budget"
	// KindAdministration recognizes revenue as worked hours times an agreed rate.
	KindAdministration ProjectKind = "administration"
)

type ProjectState string

const (
	StateActive    ProjectState = "active"
	StateCompleted ProjectState = "completed"
	StatePaused    ProjectState = "paused"
)

// Certification is the recognized revenue for one month of a fixed-budget
// project.
type Certification struct {
	Year   int             `json:"year"`
	Month  time.Month      `json:"month"`
	Amount decimal.Decimal `json:"amount"`
}

// VariableExpense is a miscellaneous expense. ReferenceID is synthesized when
// the expense is cloned into a project.
type VariableExpense struct {
	ID          string          `json:"id"`
	EmployeeID  string          `json:"employee_id"`
	Date        workcal.Date    `json:"date"`
	Concept     string          `json:"concept"`
	Amount      decimal.Decimal `json:"amount"`
	ReferenceID string          `json:"reference_id,omitempty"`
}

// Assignment links an employee to a project over an effective date range.
// Nil entry/exit dates are open ends: they extend to the edges of whatever
// month is being queried. HourlyRate is set only on administration projects.
type Assignment struct {
	EmployeeID string           `json:"employee_id"`
	ProjectID  string           `json:"project_id"`
	EntryDate  *workcal.Date    `json:"entry_date,omitempty"`
	ExitDate   *workcal.Date    `json:"exit_date,omitempty"`
	HourlyRate *decimal.Decimal `json:"hourly_rate,omitempty"`
}

// Project is a construction job or service contract.
type Project struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Kind             ProjectKind       `json:"kind"`
	State            ProjectState      `json:"state"`
	HourlyRate       *decimal.Decimal  `json:"hourly_rate,omitempty"`
	Certifications   []Certification   `json:"certifications,omitempty"`
	Assignments      []Assignment      `json:"assignments,omitempty"`
	VariableExpenses []VariableExpense `json:"variable_expenses,omitempty"`
}

// CertificationFor returns the certification recorded for (year, month).
func (p *Project) CertificationFor(year int, month time.Month) (Certification, bool) {
	for _, c := range p.Certifications {
		if c.Year == year && c.Month == month {
			return c, true
		}
	}
	return Certification{}, false
}

// ExpensesInMonth sums the project's variable expenses dated in (year, month).
func (p *Project) ExpensesInMonth(year int, month time.Month) decimal.Decimal {
	total := decimal.Zero
	for _, e := range p.VariableExpenses {
		if e.Date.Year() == year && e.Date.Month() == month {
			total = total.Add(e.Amount)
		}
	}
	return total
}

// =============================================================================
// REGISTRY INTERFACES
// =============================================================================

// EmployeeRegistry is a read-only lookup of personnel records.
type EmployeeRegistry interface {
	Employee(ctx context.Context, id string) (*Employee, error)
	ActiveEmployees(ctx context.Context) ([]*Employee, error)
}

// ProjectRegistry is the project lookup plus the narrow mutations the core
// drives (expense attachment, certification and assignment edits).
type ProjectRegistry interface {
	Project(ctx context.Context, id string) (*Project, error)
	Projects(ctx context.Context) ([]*Project, error)
	AssignmentsByEmployee(ctx context.Context, employeeID string) ([]Assignment, error)

	AddVariableExpense(ctx context.Context, projectID string, e VariableExpense) error
	SetCertification(ctx context.Context, projectID string, c Certification) error
	AddAssignment(ctx context.Context, a Assignment) error
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrNotFound is the sentinel for unresolvable ids.
var ErrNotFound = errors.New("not found")

// NotFoundError names what failed to resolve.
type NotFoundError struct {
	Kind string // "employee" or "project"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }
