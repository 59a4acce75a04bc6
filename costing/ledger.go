/*
ledger.go - Persisted cost-imputation results

PURPOSE:
  The ImputationLedger owns every CostImputation: the persisted outcome of
  allocating a slice of one employee's monthly cost to one project for one
  month. Exactly one record exists per (employee, project, year, month);
  re-running an imputation replaces the record for its key - idempotent by
  key, never cumulative.

PERSISTENCE:
  Records mirror into the key-value port on every write. If a save fails the
  in-memory entry stays authoritative for the session and the failure is
  surfaced to the caller.

DELETION:
  Unlike calendars, imputations are deleted individually by explicit user
  action.
*/
package costing

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/obralink/cost-engine/persist"
	"github.com/obralink/cost-engine/registry"
)

// =============================================================================
// COST IMPUTATION - One proration result
// =============================================================================

// ImputationKey identifies one imputation record.
type ImputationKey struct {
	EmployeeID string
	ProjectID  string
	Year       int
	Month      time.Month
}

func (k ImputationKey) String() string {
	return fmt.Sprintf("%s/%s/%04d-%02d", k.EmployeeID, k.ProjectID, k.Year, k.Month)
}

// CostImputation is the persisted result of one proration run for one
// employee-project-month.
type CostImputation struct {
	EmployeeID string     `json:"employee_id"`
	ProjectID  string     `json:"project_id"`
	Year       int        `json:"year"`
	Month      time.Month `json:"month"`

	DaysWorked       int `json:"days_worked"`
	LaborDaysInMonth int `json:"labor_days_in_month"`

	SalaryProrated     decimal.Decimal `json:"salary_prorated"`
	EmployerSSProrated decimal.Decimal `json:"employer_ss_prorated"`
	OvertimeHours      decimal.Decimal `json:"overtime_hours"`
	HolidayHours       decimal.Decimal `json:"holiday_hours"`
	OvertimeAmount     decimal.Decimal `json:"overtime_amount"`
	HolidayAmount      decimal.Decimal `json:"holiday_amount"`

	VariableExpenses []registry.VariableExpense `json:"variable_expenses,omitempty"`
}

func (ci CostImputation) Key() ImputationKey {
	return ImputationKey{EmployeeID: ci.EmployeeID, ProjectID: ci.ProjectID, Year: ci.Year, Month: ci.Month}
}

// Total is the full imputed cost: prorated salary and social security,
// overtime and holiday surcharges, and any attached variable expenses.
func (ci CostImputation) Total() decimal.Decimal {
	total := ci.SalaryProrated.
		Add(ci.EmployerSSProrated).
		Add(ci.OvertimeAmount).
		Add(ci.HolidayAmount)
	for _, e := range ci.VariableExpenses {
		total = total.Add(e.Amount)
	}
	return total
}

// =============================================================================
// IMPUTATION LEDGER
// =============================================================================

const imputationKeyPrefix = "imputation/"

func imputationDocKey(k ImputationKey) string {
	return imputationKeyPrefix + k.String()
}

// ImputationLedger holds imputation records, keyed and idempotently
// replaceable, mirrored into the persistence port.
type ImputationLedger struct {
	mu      sync.RWMutex
	port    persist.Port
	entries map[ImputationKey]CostImputation
}

func NewImputationLedger(port persist.Port) *ImputationLedger {
	return &ImputationLedger{
		port:    port,
		entries: make(map[ImputationKey]CostImputation),
	}
}

// Put replaces the record for the imputation's key and saves it through the
// port. On save failure the in-memory record remains and the error is
// returned.
func (l *ImputationLedger) Put(ctx context.Context, ci CostImputation) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	k := ci.Key()
	l.entries[k] = ci

	raw, err := json.Marshal(ci)
	if err != nil {
		return fmt.Errorf("encode imputation %s: %w", k, err)
	}
	docKey := imputationDocKey(k)
	if err := l.port.Save(ctx, docKey, raw); err != nil {
		return persist.Wrap("save", docKey, err)
	}
	return nil
}

// AttachExpense appends an expense to the record for k, when one exists, and
// saves the updated record through the port. It reports whether a record was
// found; attaching against a month that was never imputed is not an error,
// the expense simply stays on the project only.
func (l *ImputationLedger) AttachExpense(ctx context.Context, k ImputationKey, e registry.VariableExpense) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ci, ok := l.entries[k]
	if !ok {
		return false, nil
	}

	expenses := make([]registry.VariableExpense, 0, len(ci.VariableExpenses)+1)
	expenses = append(expenses, ci.VariableExpenses...)
	ci.VariableExpenses = append(expenses, e)
	l.entries[k] = ci

	raw, err := json.Marshal(ci)
	if err != nil {
		return true, fmt.Errorf("encode imputation %s: %w", k, err)
	}
	docKey := imputationDocKey(k)
	if err := l.port.Save(ctx, docKey, raw); err != nil {
		return true, persist.Wrap("save", docKey, err)
	}
	return true, nil
}

// Get returns the record for a key.
func (l *ImputationLedger) Get(k ImputationKey) (CostImputation, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ci, ok := l.entries[k]
	return ci, ok
}

// Delete removes one record, in memory and in the port.
func (l *ImputationLedger) Delete(ctx context.Context, k ImputationKey) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.entries, k)
	docKey := imputationDocKey(k)
	if err := l.port.Delete(ctx, docKey); err != nil {
		return persist.Wrap("delete", docKey, err)
	}
	return nil
}

// ByMonth returns every imputation for (year, month), ordered by key.
func (l *ImputationLedger) ByMonth(year int, month time.Month) []CostImputation {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []CostImputation
	for k, ci := range l.entries {
		if k.Year == year && k.Month == month {
			out = append(out, ci)
		}
	}
	sortImputations(out)
	return out
}

// ByEmployee returns an employee's imputations for (year, month).
func (l *ImputationLedger) ByEmployee(employeeID string, year int, month time.Month) []CostImputation {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []CostImputation
	for k, ci := range l.entries {
		if k.EmployeeID == employeeID && k.Year == year && k.Month == month {
			out = append(out, ci)
		}
	}
	sortImputations(out)
	return out
}

// MonthCostTotal sums the full imputed cost for one month across all records.
func (l *ImputationLedger) MonthCostTotal(year int, month time.Month) decimal.Decimal {
	total := decimal.Zero
	for _, ci := range l.ByMonth(year, month) {
		total = total.Add(ci.Total())
	}
	return total
}

// Load warms the ledger from the port. Existing in-memory entries win over
// persisted ones.
func (l *ImputationLedger) Load(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	keys, err := l.port.List(ctx, imputationKeyPrefix)
	if err != nil {
		return persist.Wrap("list", imputationKeyPrefix, err)
	}

	for _, docKey := range keys {
		raw, found, err := l.port.Load(ctx, docKey)
		if err != nil {
			return persist.Wrap("load", docKey, err)
		}
		if !found {
			continue
		}
		var ci CostImputation
		if err := json.Unmarshal(raw, &ci); err != nil {
			return fmt.Errorf("decode imputation %s: %w", docKey, err)
		}
		if _, exists := l.entries[ci.Key()]; !exists {
			l.entries[ci.Key()] = ci
		}
	}
	return nil
}

func sortImputations(list []CostImputation) {
	sort.Slice(list, func(i, j int) bool {
		return strings.Compare(list[i].Key().String(), list[j].Key().String()) < 0
	})
}
