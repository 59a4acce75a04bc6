/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the registry with realistic
	data for testing and demos. Each scenario creates employees, projects,
	assignments and calendar edits that demonstrate specific features.

AVAILABLE SCENARIOS:

	single-project:       One worker, one fixed-budget site, mid-month entry
	overlapping-projects: One worker on two simultaneous sites (imputed total
	                      exceeds the monthly cost, on purpose)
	admin-billing:        Administration contract billed by worked hours, with
	                      a vacation week excluded from billing

HOW SCENARIOS WORK:
 1. Reset the registry (clear all data)
 2. Create employees and projects
 3. Add assignments and certifications
 4. Patch calendar days (absences, overtime)
 5. Run the proration so the ledger has data to show

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "overlapping-projects"}

NOTE:

	Scenarios reset the registry. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Remaining handler implementations
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/obralink/cost-engine/registry"
	"github.com/obralink/cost-engine/workcal"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "single-project",
		Name:        "Single Project",
		Description: "One worker entering a fixed-budget site mid-month, cost prorated by weekdays",
	},
	{
		ID:          "overlapping-projects",
		Name:        "Overlapping Projects",
		Description: "One worker on two simultaneous sites; each carries the full factor for its range",
	},
	{
		ID:          "admin-billing",
		Name:        "Administration Billing",
		Description: "Hours-times-rate revenue with a vacation week excluded from billing",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScenarioID string `json:"scenario_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	h.Registry.Reset()

	var err error
	switch req.ScenarioID {
	case "single-project":
		err = loadSingleProjectScenario(ctx, h)
	case "overlapping-projects":
		err = loadOverlappingProjectsScenario(ctx, h)
	case "admin-billing":
		err = loadAdminBillingScenario(ctx, h)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown scenario: %s", req.ScenarioID), nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	h.currentScenario = req.ScenarioID
	writeJSON(w, http.StatusOK, map[string]any{"loaded": req.ScenarioID})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func datePtr(d workcal.Date) *workcal.Date { return &d }

func decPtr(d decimal.Decimal) *decimal.Decimal { return &d }

// loadSingleProjectScenario: a site worker joins the Calle Mayor refurbishment
// on June 16th, 2025. Eleven of the month's twenty-one weekdays fall in the
// assignment, so roughly half the monthly cost lands on the project.
func loadSingleProjectScenario(ctx context.Context, h *Handler) error {
	h.Registry.PutEmployee(registry.Employee{
		ID:                          "emp-garcia",
		Name:                        "Luis Garcia",
		Active:                      true,
		GrossSalaryMonth:            decimal.NewFromInt(2000),
		EmployerSocialSecurityMonth: decimal.NewFromInt(300),
		WorkerSocialSecurityMonth:   decimal.NewFromInt(127),
		IncomeTaxWithholdingMonth:   decimal.NewFromInt(240),
		OvertimeHourRate:            decimal.NewFromInt(18),
		HolidayHourRate:             decimal.NewFromInt(25),
	})
	h.Registry.PutProject(registry.Project{
		ID:    "prj-mayor",
		Name:  "Calle Mayor Refurbishment",
		Kind:  registry.KindFixedBudget,
		State: registry.StateActive,
		Assignments: []registry.Assignment{{
			EmployeeID: "emp-garcia",
			ProjectID:  "prj-mayor",
			EntryDate:  datePtr(workcal.NewDate(2025, time.June, 16)),
		}},
		Certifications: []registry.Certification{
			{Year: 2025, Month: time.June, Amount: decimal.NewFromInt(18500)},
		},
	})

	_, err := h.Engine.ImputeFromCalendar(ctx, "emp-garcia", 2025, time.June)
	return err
}

// loadOverlappingProjectsScenario: a site manager covers two sites for the
// whole of June 2025. Both projects get the full monthly cost imputed, so the
// ledger total is twice the employee's cost. That is the intended behavior,
// not a bug in the demo.
func loadOverlappingProjectsScenario(ctx context.Context, h *Handler) error {
	h.Registry.PutEmployee(registry.Employee{
		ID:                          "emp-ruiz",
		Name:                        "Carmen Ruiz",
		Active:                      true,
		GrossSalaryMonth:            decimal.NewFromInt(3200),
		EmployerSocialSecurityMonth: decimal.NewFromInt(480),
		WorkerSocialSecurityMonth:   decimal.NewFromInt(203),
		IncomeTaxWithholdingMonth:   decimal.NewFromInt(512),
		OvertimeHourRate:            decimal.NewFromInt(28),
		HolidayHourRate:             decimal.NewFromInt(40),
	})
	for _, id := range []string{"prj-norte", "prj-sur"} {
		h.Registry.PutProject(registry.Project{
			ID:    id,
			Name:  fmt.Sprintf("Site %s", id),
			Kind:  registry.KindFixedBudget,
			State: registry.StateActive,
			Assignments: []registry.Assignment{{
				EmployeeID: "emp-ruiz",
				ProjectID:  id,
			}},
		})
	}

	_, err := h.Engine.ImputeFromCalendar(ctx, "emp-ruiz", 2025, time.June)
	return err
}

// loadAdminBillingScenario: a technician on an administration contract billed
// at 35/hour, off on vacation the second week of June. The vacation days carry
// eight paid hours but are excluded from billing, so revenue drops while the
// imputed cost does not.
func loadAdminBillingScenario(ctx context.Context, h *Handler) error {
	h.Registry.PutEmployee(registry.Employee{
		ID:                          "emp-vidal",
		Name:                        "Marta Vidal",
		Active:                      true,
		GrossSalaryMonth:            decimal.NewFromInt(2600),
		EmployerSocialSecurityMonth: decimal.NewFromInt(390),
		WorkerSocialSecurityMonth:   decimal.NewFromInt(165),
		IncomeTaxWithholdingMonth:   decimal.NewFromInt(364),
		OvertimeHourRate:            decimal.NewFromInt(22),
		HolidayHourRate:             decimal.NewFromInt(32),
	})
	h.Registry.PutProject(registry.Project{
		ID:         "prj-mantenimiento",
		Name:       "Facilities Maintenance Contract",
		Kind:       registry.KindAdministration,
		State:      registry.StateActive,
		HourlyRate: decPtr(decimal.NewFromInt(35)),
		Assignments: []registry.Assignment{{
			EmployeeID: "emp-vidal",
			ProjectID:  "prj-mantenimiento",
		}},
	})

	// Vacation week: June 9th to 13th, 2025.
	for day := 9; day <= 13; day++ {
		date := workcal.NewDate(2025, time.June, day)
		_, err := h.Calendars.PatchDay(ctx, "emp-vidal", 2025, time.June, date, workcal.DayPatch{
			SetAbsence: &workcal.Absence{Kind: workcal.AbsenceVacation},
		})
		if err != nil {
			return err
		}
	}

	_, err := h.Engine.ImputeFromCalendar(ctx, "emp-vidal", 2025, time.June)
	return err
}
