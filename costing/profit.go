/*
profit.go - Company-wide 12-month profit and margin series

PURPOSE:
  For a target year, combines per-project revenue, the month's imputed labor
  costs, project variable expenses, and an externally supplied fixed monthly
  overhead into one profit/margin row per month.

PARTIAL RESULTS:
  A project that fails to resolve is marked unavailable for that month and
  the rest of the report still renders; the report never fails wholesale.

GUARANTEES:
  Margin is net/gross*100 with a zero-gross month reporting 0; every numeric
  field is a finite decimal, never a NaN or a division by zero.
*/
package costing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/obralink/cost-engine/registry"
)

// =============================================================================
// MONTHLY PROFIT
// =============================================================================

// MonthlyProfit is one row of the annual series.
type MonthlyProfit struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`

	GrossRevenue     decimal.Decimal `json:"gross_revenue"`
	VariableExpenses decimal.Decimal `json:"variable_expenses"`
	ImputedCosts     decimal.Decimal `json:"imputed_costs"`
	FixedOverhead    decimal.Decimal `json:"fixed_overhead"`
	NetProfit        decimal.Decimal `json:"net_profit"`
	MarginPercent    decimal.Decimal `json:"margin_percent"`

	// UnavailableProjects lists project ids that could not be included.
	UnavailableProjects []string `json:"unavailable_projects,omitempty"`
}

// =============================================================================
// PROFIT ANALYZER
// =============================================================================

// ProfitAnalyzer assembles the 12-month series for a year.
type ProfitAnalyzer struct {
	Projects registry.ProjectRegistry
	Revenue  *RevenueCalculator
	Ledger   *ImputationLedger
}

// AnalyzeYear returns one MonthlyProfit per month of the target year. The
// fixed monthly overhead is an external input applied uniformly.
func (a *ProfitAnalyzer) AnalyzeYear(ctx context.Context, year int, fixedOverheadMonth decimal.Decimal) ([]MonthlyProfit, error) {
	projects, err := a.Projects.Projects(ctx)
	if err != nil {
		return nil, err
	}

	series := make([]MonthlyProfit, 0, 12)
	for month := time.January; month <= time.December; month++ {
		row := MonthlyProfit{
			Year:          year,
			Month:         month,
			GrossRevenue:  decimal.Zero,
			FixedOverhead: fixedOverheadMonth,
		}

		variableExpenses := decimal.Zero
		for _, p := range projects {
			revenue, err := a.Revenue.Revenue(ctx, p.ID, year, month)
			if err != nil {
				row.UnavailableProjects = append(row.UnavailableProjects, p.ID)
				continue
			}
			row.GrossRevenue = row.GrossRevenue.Add(revenue)
			variableExpenses = variableExpenses.Add(p.ExpensesInMonth(year, month))
		}

		row.VariableExpenses = variableExpenses
		row.ImputedCosts = a.Ledger.MonthCostTotal(year, month)

		costs := row.VariableExpenses.Add(row.FixedOverhead).Add(row.ImputedCosts)
		row.NetProfit = row.GrossRevenue.Sub(costs)
		row.MarginPercent = safeDiv(row.NetProfit, row.GrossRevenue).Mul(decimal.NewFromInt(100))

		series = append(series, row)
	}

	return series, nil
}
