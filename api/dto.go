/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Decimal fields are
  rendered as float64 in responses so dashboards consume plain numbers;
  internally everything stays decimal.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Request types carry validate tags, checked in handlers with
  go-playground/validator before any work happens.
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/obralink/cost-engine/costing"
	"github.com/obralink/cost-engine/registry"
	"github.com/obralink/cost-engine/workcal"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// PatchDayRequest edits one day of one employee's month.
type PatchDayRequest struct {
	Date         string   `json:"date" validate:"required,datetime=2006-01-02"`
	ActualHours  *float64 `json:"actual_hours,omitempty" validate:"omitempty,gte=0,lte=24"`
	Absence      *string  `json:"absence,omitempty"`
	ClearAbsence bool     `json:"clear_absence,omitempty"`
}

// RunImputationRequest triggers a proration run for one employee-month.
// FromCalendar derives overtime/holiday totals from the month calendar;
// otherwise the manual totals are used as given.
type RunImputationRequest struct {
	EmployeeID    string  `json:"employee_id" validate:"required"`
	Year          int     `json:"year" validate:"required,min=2000,max=2100"`
	Month         int     `json:"month" validate:"required,min=1,max=12"`
	FromCalendar  bool    `json:"from_calendar,omitempty"`
	OvertimeHours float64 `json:"overtime_hours,omitempty" validate:"gte=0"`
	HolidayHours  float64 `json:"holiday_hours,omitempty" validate:"gte=0"`
}

// RouteExpenseRequest records and routes a miscellaneous expense.
type RouteExpenseRequest struct {
	EmployeeID string  `json:"employee_id" validate:"required"`
	Date       string  `json:"date" validate:"required,datetime=2006-01-02"`
	Concept    string  `json:"concept" validate:"required"`
	Amount     float64 `json:"amount" validate:"required,gt=0"`
}

// AttachExpenseRequest resolves a needs_selection routing.
type AttachExpenseRequest struct {
	ProjectID  string  `json:"project_id" validate:"required"`
	EmployeeID string  `json:"employee_id" validate:"required"`
	Date       string  `json:"date" validate:"required,datetime=2006-01-02"`
	Concept    string  `json:"concept" validate:"required"`
	Amount     float64 `json:"amount" validate:"required,gt=0"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// SummaryDTO is the month's categorized hour totals.
type SummaryDTO struct {
	EmployeeID        string  `json:"employee_id"`
	Year              int     `json:"year"`
	Month             int     `json:"month"`
	OrdinaryHours     float64 `json:"ordinary_hours"`
	RealOrdinaryHours float64 `json:"real_ordinary_hours"`
	RealHolidayHours  float64 `json:"real_holiday_hours"`
	OvertimeHours     float64 `json:"overtime_hours"`
}

// BaseCostDTO is the per-labor-day cost breakdown.
type BaseCostDTO struct {
	EmployeeID       string  `json:"employee_id"`
	Year             int     `json:"year"`
	Month            int     `json:"month"`
	SalaryMonth      float64 `json:"salary_month"`
	EmployerSSMonth  float64 `json:"employer_ss_month"`
	LaborDaysInMonth int     `json:"labor_days_in_month"`
	CostPerLaborDay  float64 `json:"cost_per_labor_day"`
}

// ImputationDTO is one persisted imputation record.
type ImputationDTO struct {
	EmployeeID         string  `json:"employee_id"`
	ProjectID          string  `json:"project_id"`
	Year               int     `json:"year"`
	Month              int     `json:"month"`
	DaysWorked         int     `json:"days_worked"`
	LaborDaysInMonth   int     `json:"labor_days_in_month"`
	SalaryProrated     float64 `json:"salary_prorated"`
	EmployerSSProrated float64 `json:"employer_ss_prorated"`
	OvertimeHours      float64 `json:"overtime_hours"`
	HolidayHours       float64 `json:"holiday_hours"`
	OvertimeAmount     float64 `json:"overtime_amount"`
	HolidayAmount      float64 `json:"holiday_amount"`
	Total              float64 `json:"total"`
}

// MonthlyProfitDTO is one row of the annual profit report.
type MonthlyProfitDTO struct {
	Year                int      `json:"year"`
	Month               int      `json:"month"`
	GrossRevenue        float64  `json:"gross_revenue"`
	VariableExpenses    float64  `json:"variable_expenses"`
	ImputedCosts        float64  `json:"imputed_costs"`
	FixedOverhead       float64  `json:"fixed_overhead"`
	NetProfit           float64  `json:"net_profit"`
	MarginPercent       float64  `json:"margin_percent"`
	UnavailableProjects []string `json:"unavailable_projects,omitempty"`
}

// EmployeeDTO is the personnel record in API responses.
type EmployeeDTO struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Active           bool    `json:"active"`
	GrossSalaryMonth float64 `json:"gross_salary_month"`
	OvertimeHourRate float64 `json:"overtime_hour_rate"`
	HolidayHourRate  float64 `json:"holiday_hour_rate"`
}

// ProjectDTO is the project record in API responses.
type ProjectDTO struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Kind       string   `json:"kind"`
	State      string   `json:"state"`
	HourlyRate *float64 `json:"hourly_rate,omitempty"`
}

// SetCertificationRequest records recognized revenue for one project-month.
type SetCertificationRequest struct {
	Year   int     `json:"year" validate:"required,min=2000,max=2100"`
	Month  int     `json:"month" validate:"required,min=1,max=12"`
	Amount float64 `json:"amount" validate:"gte=0"`
}

// AddAssignmentRequest links an employee to a project. Empty dates are open
// ends.
type AddAssignmentRequest struct {
	EmployeeID string   `json:"employee_id" validate:"required"`
	EntryDate  string   `json:"entry_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ExitDate   string   `json:"exit_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	HourlyRate *float64 `json:"hourly_rate,omitempty" validate:"omitempty,gt=0"`
}

// ScenarioDTO describes one loadable demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toSummaryDTO(employeeID string, year int, month time.Month, s workcal.HoursSummary) SummaryDTO {
	return SummaryDTO{
		EmployeeID:        employeeID,
		Year:              year,
		Month:             int(month),
		OrdinaryHours:     s.OrdinaryHours.InexactFloat64(),
		RealOrdinaryHours: s.RealOrdinaryHours.InexactFloat64(),
		RealHolidayHours:  s.RealHolidayHours.InexactFloat64(),
		OvertimeHours:     s.OvertimeHours.InexactFloat64(),
	}
}

func toBaseCostDTO(b costing.BaseCost) BaseCostDTO {
	return BaseCostDTO{
		EmployeeID:       b.EmployeeID,
		Year:             b.Year,
		Month:            int(b.Month),
		SalaryMonth:      b.SalaryMonth.InexactFloat64(),
		EmployerSSMonth:  b.EmployerSSMonth.InexactFloat64(),
		LaborDaysInMonth: b.LaborDaysInMonth,
		CostPerLaborDay:  b.CostPerLaborDay.InexactFloat64(),
	}
}

func toImputationDTO(ci costing.CostImputation) ImputationDTO {
	return ImputationDTO{
		EmployeeID:         ci.EmployeeID,
		ProjectID:          ci.ProjectID,
		Year:               ci.Year,
		Month:              int(ci.Month),
		DaysWorked:         ci.DaysWorked,
		LaborDaysInMonth:   ci.LaborDaysInMonth,
		SalaryProrated:     ci.SalaryProrated.InexactFloat64(),
		EmployerSSProrated: ci.EmployerSSProrated.InexactFloat64(),
		OvertimeHours:      ci.OvertimeHours.InexactFloat64(),
		HolidayHours:       ci.HolidayHours.InexactFloat64(),
		OvertimeAmount:     ci.OvertimeAmount.InexactFloat64(),
		HolidayAmount:      ci.HolidayAmount.InexactFloat64(),
		Total:              ci.Total().InexactFloat64(),
	}
}

func toMonthlyProfitDTO(p costing.MonthlyProfit) MonthlyProfitDTO {
	return MonthlyProfitDTO{
		Year:                p.Year,
		Month:               int(p.Month),
		GrossRevenue:        p.GrossRevenue.InexactFloat64(),
		VariableExpenses:    p.VariableExpenses.InexactFloat64(),
		ImputedCosts:        p.ImputedCosts.InexactFloat64(),
		FixedOverhead:       p.FixedOverhead.InexactFloat64(),
		NetProfit:           p.NetProfit.InexactFloat64(),
		MarginPercent:       p.MarginPercent.InexactFloat64(),
		UnavailableProjects: p.UnavailableProjects,
	}
}

func toEmployeeDTO(e *registry.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:               e.ID,
		Name:             e.Name,
		Active:           e.Active,
		GrossSalaryMonth: e.GrossSalaryMonth.InexactFloat64(),
		OvertimeHourRate: e.OvertimeHourRate.InexactFloat64(),
		HolidayHourRate:  e.HolidayHourRate.InexactFloat64(),
	}
}

func toProjectDTO(p *registry.Project) ProjectDTO {
	dto := ProjectDTO{
		ID:    p.ID,
		Name:  p.Name,
		Kind:  string(p.Kind),
		State: string(p.State),
	}
	if p.HourlyRate != nil {
		rate := p.HourlyRate.InexactFloat64()
		dto.HourlyRate = &rate
	}
	return dto
}

func decimalFromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}
