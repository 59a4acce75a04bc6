/*
Package costing prorates monthly employer cost across project assignments and
derives project and company-wide profitability.

PURPOSE:
  Given the work calendars from workcal and the employee/project registries,
  this package answers three questions per month:
  1. What does an employee cost the company, per labor day?
  2. How is that cost split across the projects they worked on?
  3. What did each project earn, and what is left after costs?

KEY CONCEPTS:
  EmployeeCostProfile: Snapshot of an employee's monthly figures, recomputed
                       fresh for every query - never persisted
  ProrationEngine:     Base cost + per-assignment imputation
  ImputationLedger:    Persisted imputation results, idempotent by key
  ExpenseRouter:       Attaches miscellaneous expenses to the right project
  RevenueCalculator:   Certification- or hours-based monthly revenue
  ProfitAnalyzer:      12-month profit/margin series

PRECISION:
  All money and hour arithmetic uses decimal.Decimal. Ratios with a zero
  denominator resolve to zero; no computation divides by zero or emits NaN.
*/
package costing

import (
	"github.com/shopspring/decimal"

	"github.com/obralink/cost-engine/registry"
)

// =============================================================================
// EMPLOYEE COST PROFILE - Snapshot view of the employee record
// =============================================================================

// EmployeeCostProfile is the monthly cost snapshot taken from an employee
// record at query time. It is a view, not an entity: every (month, year)
// query rebuilds it from the registry.
type EmployeeCostProfile struct {
	EmployeeID                  string          `json:"employee_id"`
	GrossSalaryMonth            decimal.Decimal `json:"gross_salary_month"`
	EmployerSocialSecurityMonth decimal.Decimal `json:"employer_social_security_month"`
	WorkerSocialSecurityMonth   decimal.Decimal `json:"worker_social_security_month"`
	IncomeTaxWithholdingMonth   decimal.Decimal `json:"income_tax_withholding_month"`
	GarnishmentMonth            decimal.Decimal `json:"garnishment_month"`
	OvertimeHourRate            decimal.Decimal `json:"overtime_hour_rate"`
	HolidayHourRate             decimal.Decimal `json:"holiday_hour_rate"`
}

// ProfileOf snapshots the cost figures from an employee record.
func ProfileOf(e *registry.Employee) EmployeeCostProfile {
	return EmployeeCostProfile{
		EmployeeID:                  e.ID,
		GrossSalaryMonth:            e.GrossSalaryMonth,
		EmployerSocialSecurityMonth: e.EmployerSocialSecurityMonth,
		WorkerSocialSecurityMonth:   e.WorkerSocialSecurityMonth,
		IncomeTaxWithholdingMonth:   e.IncomeTaxWithholdingMonth,
		GarnishmentMonth:            e.GarnishmentMonth,
		OvertimeHourRate:            e.OvertimeHourRate,
		HolidayHourRate:             e.HolidayHourRate,
	}
}

// CompanyCostMonth is what the employee costs the company: gross salary plus
// employer social security.
func (p EmployeeCostProfile) CompanyCostMonth() decimal.Decimal {
	return p.GrossSalaryMonth.Add(p.EmployerSocialSecurityMonth)
}

// NetSalaryMonth is the take-home figure after worker-side deductions.
func (p EmployeeCostProfile) NetSalaryMonth() decimal.Decimal {
	return p.GrossSalaryMonth.
		Sub(p.WorkerSocialSecurityMonth).
		Sub(p.IncomeTaxWithholdingMonth).
		Sub(p.GarnishmentMonth)
}

// safeDiv returns a/b, or zero when b is zero. Ratios never divide by zero.
func safeDiv(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return a.Div(b)
}
