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

type world struct {
	reg       *registry.Memory
	calendars *workcal.CalendarStore
	ledger    *costing.ImputationLedger
	engine    *costing.ProrationEngine
}

func newWorld() *world {
	port := memory.New()
	reg := registry.NewMemory()
	calendars := workcal.NewCalendarStore(workcal.NewHolidayCalendar(), port)
	ledger := costing.NewImputationLedger(port)
	resolver := &costing.AssignmentResolver{Projects: reg}
	return &world{
		reg:       reg,
		calendars: calendars,
		ledger:    ledger,
		engine: &costing.ProrationEngine{
			Employees: reg,
			Resolver:  resolver,
			Ledger:    ledger,
			Calendars: calendars,
		},
	}
}

// =============================================================================
// BASE COST
// =============================================================================

func TestComputeBaseCost_June2025(t *testing.T) {
	// GIVEN: 2000 gross + 300 employer SS over June 2025 (21 weekdays)
	// WHEN: Computing the base cost
	// THEN: costPerLaborDay = 2300 / 21

	w := newWorld()
	w.reg.PutEmployee(testEmployee())

	base, err := w.engine.ComputeBaseCost(context.Background(), "emp-1", 2025, time.June)
	require.NoError(t, err)

	assert.Equal(t, 21, base.LaborDaysInMonth)
	assert.True(t, base.SalaryMonth.Equal(dec(2000)))
	assert.True(t, base.EmployerSSMonth.Equal(dec(300)))
	assert.Equal(t, "109.52", base.CostPerLaborDay.Round(2).String())
}

func TestComputeBaseCost_UnknownEmployee(t *testing.T) {
	w := newWorld()

	_, err := w.engine.ComputeBaseCost(context.Background(), "ghost", 2025, time.June)
	assert.True(t, costing.IsNotFound(err))
}

// =============================================================================
// PRORATION
// =============================================================================

func TestImpute_FullMonth_CarriesWholeCost(t *testing.T) {
	// GIVEN: One open-ended assignment covering all of June
	// WHEN: Imputing with no overtime
	// THEN: factor = 21/21; the project carries the exact monthly cost

	w := newWorld()
	w.reg.PutEmployee(testEmployee())
	w.reg.PutProject(activeProject("prj-1", registry.Assignment{EmployeeID: "emp-1", ProjectID: "prj-1"}))

	run, err := w.engine.ImputeToProjects(context.Background(), "emp-1", 2025, time.June, dec(0), dec(0))
	require.NoError(t, err)
	require.Len(t, run.Imputations, 1)

	ci := run.Imputations[0]
	assert.Equal(t, 21, ci.DaysWorked)
	assert.True(t, ci.SalaryProrated.Equal(dec(2000)), "got %s", ci.SalaryProrated)
	assert.True(t, ci.EmployerSSProrated.Equal(dec(300)))
	assert.True(t, ci.Total().Equal(dec(2300)))
}

func TestImpute_MidMonthEntry_ProratesByWeekdays(t *testing.T) {
	// GIVEN: Entry on June 16th (11 of June's 21 weekdays remain)
	// WHEN: Imputing
	// THEN: salary and SS scale by 11/21

	w := newWorld()
	w.reg.PutEmployee(testEmployee())
	w.reg.PutProject(activeProject("prj-1", registry.Assignment{
		EmployeeID: "emp-1",
		ProjectID:  "prj-1",
		EntryDate:  datePtr(workcal.NewDate(2025, time.June, 16)),
	}))

	run, err := w.engine.ImputeToProjects(context.Background(), "emp-1", 2025, time.June, dec(0), dec(0))
	require.NoError(t, err)
	require.Len(t, run.Imputations, 1)

	ci := run.Imputations[0]
	assert.Equal(t, 11, ci.DaysWorked)
	assert.Equal(t, 21, ci.LaborDaysInMonth)
	assert.Equal(t, "1047.62", ci.SalaryProrated.Round(2).String())
	assert.Equal(t, "157.14", ci.EmployerSSProrated.Round(2).String())
}

func TestImpute_TenOfTwentyOneWeekdays(t *testing.T) {
	// GIVEN: An assignment covering 10 of June's 21 weekdays (16th to 27th)
	// WHEN: Imputing
	// THEN: salaryProrated = 2000*10/21, ssProrated = 300*10/21

	w := newWorld()
	w.reg.PutEmployee(testEmployee())
	w.reg.PutProject(activeProject("prj-1", registry.Assignment{
		EmployeeID: "emp-1",
		ProjectID:  "prj-1",
		EntryDate:  datePtr(workcal.NewDate(2025, time.June, 16)),
		ExitDate:   datePtr(workcal.NewDate(2025, time.June, 27)),
	}))

	run, err := w.engine.ImputeToProjects(context.Background(), "emp-1", 2025, time.June, dec(0), dec(0))
	require.NoError(t, err)
	require.Len(t, run.Imputations, 1)

	ci := run.Imputations[0]
	assert.Equal(t, 10, ci.DaysWorked)
	assert.Equal(t, "952.38", ci.SalaryProrated.Round(2).String())
	assert.Equal(t, "142.86", ci.EmployerSSProrated.Round(2).String())
}

func TestImpute_OverlappingAssignments_NotNormalized(t *testing.T) {
	// GIVEN: Two full-month assignments at once
	// WHEN: Imputing
	// THEN: Each project carries the full monthly cost; the ledger total for
	//       the month is double the employee's cost. Deliberate behavior.

	w := newWorld()
	w.reg.PutEmployee(testEmployee())
	w.reg.PutProject(activeProject("prj-a", registry.Assignment{EmployeeID: "emp-1", ProjectID: "prj-a"}))
	w.reg.PutProject(activeProject("prj-b", registry.Assignment{EmployeeID: "emp-1", ProjectID: "prj-b"}))

	run, err := w.engine.ImputeToProjects(context.Background(), "emp-1", 2025, time.June, dec(0), dec(0))
	require.NoError(t, err)
	require.Len(t, run.Imputations, 2)

	for _, ci := range run.Imputations {
		assert.True(t, ci.SalaryProrated.Equal(dec(2000)), "project %s", ci.ProjectID)
	}
	assert.True(t, w.ledger.MonthCostTotal(2025, time.June).Equal(dec(4600)))
}

func TestImpute_OvertimeAndHolidayPricing(t *testing.T) {
	// GIVEN: 10 overtime hours at 18 and 4 holiday hours at 25, full month
	// WHEN: Imputing with manual totals
	// THEN: Hours distribute by factor 1 and are priced at personal rates

	w := newWorld()
	w.reg.PutEmployee(testEmployee())
	w.reg.PutProject(activeProject("prj-1", registry.Assignment{EmployeeID: "emp-1", ProjectID: "prj-1"}))

	run, err := w.engine.ImputeToProjects(context.Background(), "emp-1", 2025, time.June, dec(10), dec(4))
	require.NoError(t, err)
	require.Len(t, run.Imputations, 1)

	ci := run.Imputations[0]
	assert.True(t, ci.OvertimeHours.Equal(dec(10)))
	assert.True(t, ci.HolidayHours.Equal(dec(4)))
	assert.True(t, ci.OvertimeAmount.Equal(dec(180)))
	assert.True(t, ci.HolidayAmount.Equal(dec(100)))
	assert.True(t, ci.Total().Equal(dec(2580)))
}

func TestImpute_ProratedHoursAreRounded(t *testing.T) {
	// GIVEN: 10 overtime hours and a half-month assignment (11/21 factor)
	// WHEN: Imputing
	// THEN: Prorated hours are rounded to whole hours (10 * 11/21 ~ 5.24 -> 5)

	w := newWorld()
	w.reg.PutEmployee(testEmployee())
	w.reg.PutProject(activeProject("prj-1", registry.Assignment{
		EmployeeID: "emp-1",
		ProjectID:  "prj-1",
		EntryDate:  datePtr(workcal.NewDate(2025, time.June, 16)),
	}))

	run, err := w.engine.ImputeToProjects(context.Background(), "emp-1", 2025, time.June, dec(10), dec(0))
	require.NoError(t, err)
	require.Len(t, run.Imputations, 1)

	ci := run.Imputations[0]
	assert.True(t, ci.OvertimeHours.Equal(dec(5)), "got %s", ci.OvertimeHours)
	assert.True(t, ci.OvertimeAmount.Equal(dec(90)))
}

func TestImpute_Rerun_ReplacesNotAccumulates(t *testing.T) {
	// GIVEN: An imputation already on the ledger
	// WHEN: Re-running for the same employee-month
	// THEN: The record is replaced, the ledger does not grow

	w := newWorld()
	w.reg.PutEmployee(testEmployee())
	w.reg.PutProject(activeProject("prj-1", registry.Assignment{EmployeeID: "emp-1", ProjectID: "prj-1"}))
	ctx := context.Background()

	_, err := w.engine.ImputeToProjects(ctx, "emp-1", 2025, time.June, dec(0), dec(0))
	require.NoError(t, err)
	_, err = w.engine.ImputeToProjects(ctx, "emp-1", 2025, time.June, dec(10), dec(0))
	require.NoError(t, err)

	records := w.ledger.ByEmployee("emp-1", 2025, time.June)
	require.Len(t, records, 1)
	assert.True(t, records[0].OvertimeHours.Equal(dec(10)))
}

func TestImpute_InvalidAssignmentSkipped_RestProceeds(t *testing.T) {
	// One broken assignment must not poison the batch.
	w := newWorld()
	w.reg.PutEmployee(testEmployee())
	w.reg.PutProject(activeProject("prj-good", registry.Assignment{EmployeeID: "emp-1", ProjectID: "prj-good"}))
	w.reg.PutProject(activeProject("prj-bad", registry.Assignment{
		EmployeeID: "emp-1",
		ProjectID:  "prj-bad",
		EntryDate:  datePtr(workcal.NewDate(2025, time.June, 20)),
		ExitDate:   datePtr(workcal.NewDate(2025, time.June, 10)),
	}))

	run, err := w.engine.ImputeToProjects(context.Background(), "emp-1", 2025, time.June, dec(0), dec(0))
	require.NoError(t, err)
	require.Len(t, run.Imputations, 1)
	assert.Equal(t, "prj-good", run.Imputations[0].ProjectID)
	require.Len(t, run.Skipped, 1)
	assert.ErrorIs(t, run.Skipped[0].Reason, costing.ErrInvalidRange)
}

// =============================================================================
// CALENDAR-DERIVED RUNS
// =============================================================================

func TestImputeFromCalendar_UsesSummaryTotals(t *testing.T) {
	// GIVEN: Two 10-hour days (4h overtime) and a worked Sunday (6h holiday)
	// WHEN: Imputing from the calendar
	// THEN: The summary totals feed the run instead of manual entry

	w := newWorld()
	w.reg.PutEmployee(testEmployee())
	w.reg.PutProject(activeProject("prj-1", registry.Assignment{EmployeeID: "emp-1", ProjectID: "prj-1"}))
	ctx := context.Background()

	for _, day := range []int{16, 17} {
		_, err := w.calendars.PatchDay(ctx, "emp-1", 2025, time.June, workcal.NewDate(2025, time.June, day),
			workcal.DayPatch{ActualHours: decPtr(dec(10))})
		require.NoError(t, err)
	}
	_, err := w.calendars.PatchDay(ctx, "emp-1", 2025, time.June, workcal.NewDate(2025, time.June, 8),
		workcal.DayPatch{ActualHours: decPtr(dec(6))})
	require.NoError(t, err)

	run, err := w.engine.ImputeFromCalendar(ctx, "emp-1", 2025, time.June)
	require.NoError(t, err)
	require.Len(t, run.Imputations, 1)

	ci := run.Imputations[0]
	assert.True(t, ci.OvertimeHours.Equal(dec(4)), "got %s", ci.OvertimeHours)
	assert.True(t, ci.HolidayHours.Equal(dec(6)), "got %s", ci.HolidayHours)
}

func TestImputeAllActive_BadEmployeeDoesNotAbortBatch(t *testing.T) {
	w := newWorld()
	w.reg.PutEmployee(testEmployee())
	inactive := testEmployee()
	inactive.ID = "emp-2"
	inactive.Active = false
	w.reg.PutEmployee(inactive)
	w.reg.PutProject(activeProject("prj-1", registry.Assignment{EmployeeID: "emp-1", ProjectID: "prj-1"}))

	runs, failures, err := w.engine.ImputeAllActive(context.Background(), 2025, time.June)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
	assert.Empty(t, failures)
}
