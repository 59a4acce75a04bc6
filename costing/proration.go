/*
proration.go - Monthly cost proration across project assignments

PURPOSE:
  Computes what an employee costs per labor day and allocates that cost to
  the projects they worked on during a month, weighted by weekdays worked in
  each project's effective range. Overtime and holiday hours are distributed
  by the same factor and priced at the employee's personal rates.

PRORATION:
  factor          = daysWorked / laborDaysInMonth
  salaryProrated  = grossSalaryMonth * factor
  ssProrated      = employerSSMonth  * factor
  overtimeHours_p = round(overtimeHoursTotal * factor)
  holidayHours_p  = round(holidayHoursTotal  * factor)

OVERLAPPING ASSIGNMENTS:
  Factors are NOT normalized across simultaneous assignments. An employee on
  two full-month projects is costed fully against each, so the imputed total
  can exceed 100% of the monthly cost. Known property of the original
  behavior, kept and covered by tests rather than guessed away.

OVERTIME SOURCES:
  ImputeToProjects takes caller-supplied overtime/holiday totals (manual
  entry). ImputeFromCalendar derives them from the month's hour summary.
  The two sources are never reconciled; the caller picks one explicitly.
*/
package costing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/obralink/cost-engine/registry"
	"github.com/obralink/cost-engine/workcal"
)

// =============================================================================
// BASE COST
// =============================================================================

// BaseCost is an employee's monthly company cost broken down per labor day.
type BaseCost struct {
	EmployeeID       string          `json:"employee_id"`
	Year             int             `json:"year"`
	Month            time.Month      `json:"month"`
	SalaryMonth      decimal.Decimal `json:"salary_month"`
	EmployerSSMonth  decimal.Decimal `json:"employer_ss_month"`
	LaborDaysInMonth int             `json:"labor_days_in_month"`
	CostPerLaborDay  decimal.Decimal `json:"cost_per_labor_day"`
}

// ImputationRun is the outcome of one proration run: the records written plus
// the assignments that could not participate.
type ImputationRun struct {
	BaseCost    BaseCost         `json:"base_cost"`
	Imputations []CostImputation `json:"imputations"`
	Skipped     []SkippedAssignment
}

// =============================================================================
// PRORATION ENGINE
// =============================================================================

// ProrationEngine computes base costs and writes imputations to the ledger.
type ProrationEngine struct {
	Employees registry.EmployeeRegistry
	Resolver  *AssignmentResolver
	Ledger    *ImputationLedger
	Calendars *workcal.CalendarStore
}

// ComputeBaseCost snapshots the employee's cost profile and derives the
// per-labor-day cost for the month. The labor-day denominator is a plain
// weekday count (see workcal.LaborDayCountIncludesHolidays).
func (e *ProrationEngine) ComputeBaseCost(ctx context.Context, employeeID string, year int, month time.Month) (BaseCost, error) {
	emp, err := e.Employees.Employee(ctx, employeeID)
	if err != nil {
		return BaseCost{}, err
	}
	profile := ProfileOf(emp)

	laborDays := workcal.MonthPeriod(year, month).CountWeekdays()
	costPerDay := safeDiv(profile.CompanyCostMonth(), decimal.NewFromInt(int64(laborDays)))

	return BaseCost{
		EmployeeID:       employeeID,
		Year:             year,
		Month:            month,
		SalaryMonth:      profile.GrossSalaryMonth,
		EmployerSSMonth:  profile.EmployerSocialSecurityMonth,
		LaborDaysInMonth: laborDays,
		CostPerLaborDay:  costPerDay,
	}, nil
}

// ImputeToProjects prorates the employee's monthly cost across every resolved
// assignment with at least one weekday worked, writing one imputation per
// (employee, project, year, month). Re-running replaces existing records for
// the same keys. Unresolvable or invalid assignments are skipped and
// reported; the rest of the batch proceeds.
func (e *ProrationEngine) ImputeToProjects(ctx context.Context, employeeID string, year int, month time.Month, overtimeHoursTotal, holidayHoursTotal decimal.Decimal) (ImputationRun, error) {
	base, err := e.ComputeBaseCost(ctx, employeeID, year, month)
	if err != nil {
		return ImputationRun{}, err
	}

	emp, err := e.Employees.Employee(ctx, employeeID)
	if err != nil {
		return ImputationRun{}, err
	}
	profile := ProfileOf(emp)

	resolved, skipped, err := e.Resolver.Resolve(ctx, employeeID, year, month)
	if err != nil {
		return ImputationRun{}, err
	}

	run := ImputationRun{BaseCost: base, Skipped: skipped}
	laborDays := decimal.NewFromInt(int64(base.LaborDaysInMonth))

	for _, ra := range resolved {
		daysWorked := ra.Effective.CountWeekdays()
		if daysWorked <= 0 {
			continue
		}

		// No normalization across overlapping assignments: each one gets the
		// full factor for its own range.
		factor := safeDiv(decimal.NewFromInt(int64(daysWorked)), laborDays)

		overtimeHours := overtimeHoursTotal.Mul(factor).Round(0)
		holidayHours := holidayHoursTotal.Mul(factor).Round(0)

		ci := CostImputation{
			EmployeeID:         employeeID,
			ProjectID:          ra.Assignment.ProjectID,
			Year:               year,
			Month:              month,
			DaysWorked:         daysWorked,
			LaborDaysInMonth:   base.LaborDaysInMonth,
			SalaryProrated:     base.SalaryMonth.Mul(factor),
			EmployerSSProrated: base.EmployerSSMonth.Mul(factor),
			OvertimeHours:      overtimeHours,
			HolidayHours:       holidayHours,
			OvertimeAmount:     overtimeHours.Mul(profile.OvertimeHourRate),
			HolidayAmount:      holidayHours.Mul(profile.HolidayHourRate),
		}

		if err := e.Ledger.Put(ctx, ci); err != nil {
			return run, err
		}
		run.Imputations = append(run.Imputations, ci)
	}

	return run, nil
}

// ImputeFromCalendar runs ImputeToProjects with overtime/holiday totals taken
// from the employee's month calendar summary instead of manual entry.
func (e *ProrationEngine) ImputeFromCalendar(ctx context.Context, employeeID string, year int, month time.Month) (ImputationRun, error) {
	mc, err := e.Calendars.Get(ctx, employeeID, year, month)
	if err != nil {
		return ImputationRun{}, err
	}
	summary := workcal.Summarize(mc)
	return e.ImputeToProjects(ctx, employeeID, year, month, summary.OvertimeHours, summary.RealHolidayHours)
}

// ImputeAllActive runs ImputeToProjects for every active employee with
// calendar-derived hour totals. Employees that fail to resolve are skipped so
// one bad record does not abort the batch; their errors are returned keyed by
// employee id.
func (e *ProrationEngine) ImputeAllActive(ctx context.Context, year int, month time.Month) ([]ImputationRun, map[string]error, error) {
	employees, err := e.Employees.ActiveEmployees(ctx)
	if err != nil {
		return nil, nil, err
	}

	var runs []ImputationRun
	failures := make(map[string]error)
	for _, emp := range employees {
		run, err := e.ImputeFromCalendar(ctx, emp.ID, year, month)
		if err != nil {
			failures[emp.ID] = err
			continue
		}
		runs = append(runs, run)
	}
	return runs, failures, nil
}
