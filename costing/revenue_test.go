package costing_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obralink/cost-engine/costing"
	"github.com/obralink/cost-engine/persist/memory"
	"github.com/obralink/cost-engine/registry"
	"github.com/obralink/cost-engine/workcal"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newRevenueCalc(reg *registry.Memory) (*costing.RevenueCalculator, *workcal.CalendarStore) {
	calendars := workcal.NewCalendarStore(workcal.NewHolidayCalendar(), memory.New())
	return &costing.RevenueCalculator{Projects: reg, Calendars: calendars}, calendars
}

// =============================================================================
// FIXED BUDGET - Certifications
// =============================================================================

func TestRevenue_FixedBudget_CertifiedMonth(t *testing.T) {
	reg := registry.NewMemory()
	p := activeProject("prj-1")
	p.Certifications = []registry.Certification{
		{Year: 2025, Month: time.June, Amount: dec(18500)},
	}
	reg.PutProject(p)
	calc, _ := newRevenueCalc(reg)

	revenue, err := calc.Revenue(context.Background(), "prj-1", 2025, time.June)
	require.NoError(t, err)
	assert.True(t, revenue.Equal(dec(18500)))
}

func TestRevenue_FixedBudget_UncertifiedMonthIsZero(t *testing.T) {
	// GIVEN: A fixed-budget project certified in June only
	// WHEN: Querying July
	// THEN: Revenue is zero; costs incurred never influence it

	reg := registry.NewMemory()
	p := activeProject("prj-1")
	p.Certifications = []registry.Certification{
		{Year: 2025, Month: time.June, Amount: dec(18500)},
	}
	reg.PutProject(p)
	calc, _ := newRevenueCalc(reg)

	revenue, err := calc.Revenue(context.Background(), "prj-1", 2025, time.July)
	require.NoError(t, err)
	assert.True(t, revenue.IsZero())
}

// =============================================================================
// ADMINISTRATION - Hours times rate
// =============================================================================

func TestRevenue_Administration_HoursTimesRate(t *testing.T) {
	// GIVEN: A full June 2025 assignment on a 35/hour contract
	// WHEN: Querying June (21 laborable days, 168 default hours)
	// THEN: Revenue is 168 * 35 = 5880

	reg := registry.NewMemory()
	reg.PutProject(registry.Project{
		ID:         "prj-adm",
		Name:       "Maintenance",
		Kind:       registry.KindAdministration,
		State:      registry.StateActive,
		HourlyRate: decPtr(dec(35)),
		Assignments: []registry.Assignment{
			{EmployeeID: "emp-1", ProjectID: "prj-adm"},
		},
	})
	calc, _ := newRevenueCalc(reg)

	revenue, err := calc.Revenue(context.Background(), "prj-adm", 2025, time.June)
	require.NoError(t, err)
	assert.True(t, revenue.Equal(dec(5880)), "got %s", revenue)
}

func TestRevenue_Administration_AbsenceDaysExcluded(t *testing.T) {
	// GIVEN: A vacation week (5 laborable days) in the billed month
	// WHEN: Querying revenue
	// THEN: Vacation hours are paid but not billed: (168-40) * 35

	reg := registry.NewMemory()
	reg.PutProject(registry.Project{
		ID:         "prj-adm",
		Name:       "Maintenance",
		Kind:       registry.KindAdministration,
		State:      registry.StateActive,
		HourlyRate: decPtr(dec(35)),
		Assignments: []registry.Assignment{
			{EmployeeID: "emp-1", ProjectID: "prj-adm"},
		},
	})
	calc, calendars := newRevenueCalc(reg)
	ctx := context.Background()

	for day := 9; day <= 13; day++ {
		_, err := calendars.PatchDay(ctx, "emp-1", 2025, time.June, workcal.NewDate(2025, time.June, day),
			workcal.DayPatch{SetAbsence: &workcal.Absence{Kind: workcal.AbsenceVacation}})
		require.NoError(t, err)
	}

	revenue, err := calc.Revenue(ctx, "prj-adm", 2025, time.June)
	require.NoError(t, err)
	assert.True(t, revenue.Equal(dec(4480)), "got %s", revenue)
}

func TestRevenue_Administration_AssignmentRateWins(t *testing.T) {
	// An assignment-level rate overrides the project rate.
	reg := registry.NewMemory()
	reg.PutProject(registry.Project{
		ID:         "prj-adm",
		Name:       "Maintenance",
		Kind:       registry.KindAdministration,
		State:      registry.StateActive,
		HourlyRate: decPtr(dec(35)),
		Assignments: []registry.Assignment{
			{EmployeeID: "emp-1", ProjectID: "prj-adm", HourlyRate: decPtr(dec(40))},
		},
	})
	calc, _ := newRevenueCalc(reg)

	revenue, err := calc.Revenue(context.Background(), "prj-adm", 2025, time.June)
	require.NoError(t, err)
	assert.True(t, revenue.Equal(dec(6720)), "got %s", revenue)
}

func TestRevenue_Administration_PartialRangeBillsPartialHours(t *testing.T) {
	// Entry June 16th: only the 11 remaining weekdays bill.
	reg := registry.NewMemory()
	reg.PutProject(registry.Project{
		ID:         "prj-adm",
		Name:       "Maintenance",
		Kind:       registry.KindAdministration,
		State:      registry.StateActive,
		HourlyRate: decPtr(dec(35)),
		Assignments: []registry.Assignment{
			{
				EmployeeID: "emp-1",
				ProjectID:  "prj-adm",
				EntryDate:  datePtr(workcal.NewDate(2025, time.June, 16)),
			},
		},
	})
	calc, _ := newRevenueCalc(reg)

	revenue, err := calc.Revenue(context.Background(), "prj-adm", 2025, time.June)
	require.NoError(t, err)
	// 11 days * 8 hours * 35
	assert.True(t, revenue.Equal(dec(3080)), "got %s", revenue)
}

func TestRevenue_UnknownProject(t *testing.T) {
	calc, _ := newRevenueCalc(registry.NewMemory())

	_, err := calc.Revenue(context.Background(), "ghost", 2025, time.June)
	assert.True(t, costing.IsNotFound(err))
}
