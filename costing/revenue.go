/*
revenue.go - Monthly gross revenue per project

RECOGNITION MODELS:
  fixed_budget:    The certification amount recorded for (month, year), or 0
                   when none exists. Costs incurred never influence it.
  administration:  Worked hours times the agreed hourly rate, summed over the
                   project's assignees. Hours come from each assignee's month
                   calendar restricted to the assignment's effective range;
                   days under a vacation/sick/work/personal absence are
                   excluded from billing (unexcused days carry zero hours and
                   pass through unchanged).
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
// REVENUE CALCULATOR
// =============================================================================

// RevenueCalculator computes monthly gross revenue per project.
type RevenueCalculator struct {
	Projects  registry.ProjectRegistry
	Calendars *workcal.CalendarStore
}

// Revenue returns the project's gross revenue for (year, month).
func (c *RevenueCalculator) Revenue(ctx context.Context, projectID string, year int, month time.Month) (decimal.Decimal, error) {
	project, err := c.Projects.Project(ctx, projectID)
	if err != nil {
		return decimal.Zero, err
	}

	switch project.Kind {
	case registry.KindFixedBudget:
		if cert, ok := project.CertificationFor(year, month); ok {
			return cert.Amount, nil
		}
		return decimal.Zero, nil
	case registry.KindAdministration:
		return c.administrationRevenue(ctx, project, year, month)
	default:
		return decimal.Zero, nil
	}
}

func (c *RevenueCalculator) administrationRevenue(ctx context.Context, project *registry.Project, year int, month time.Month) (decimal.Decimal, error) {
	monthPeriod := workcal.MonthPeriod(year, month)
	total := decimal.Zero

	for _, a := range project.Assignments {
		if a.EntryDate != nil && a.ExitDate != nil && a.EntryDate.After(*a.ExitDate) {
			continue
		}
		effective, ok := effectiveRange(a, monthPeriod)
		if !ok {
			continue
		}

		hours, err := c.billableHours(ctx, a.EmployeeID, year, month, effective)
		if err != nil {
			return decimal.Zero, err
		}

		rate := decimal.Zero
		switch {
		case a.HourlyRate != nil:
			rate = *a.HourlyRate
		case project.HourlyRate != nil:
			rate = *project.HourlyRate
		}
		total = total.Add(hours.Mul(rate))
	}

	return total, nil
}

// billableHours sums actual hours over the effective range, skipping days
// whose absence kind is excluded from billing.
func (c *RevenueCalculator) billableHours(ctx context.Context, employeeID string, year int, month time.Month, effective workcal.Period) (decimal.Decimal, error) {
	mc, err := c.Calendars.Get(ctx, employeeID, year, month)
	if err != nil {
		return decimal.Zero, err
	}

	hours := decimal.Zero
	for i := range mc.Days {
		day := &mc.Days[i]
		if !effective.Contains(day.Date) {
			continue
		}
		if day.Absence != nil && day.Absence.Kind.ExcludedFromBilling() {
			continue
		}
		hours = hours.Add(day.ActualHours)
	}
	return hours, nil
}
