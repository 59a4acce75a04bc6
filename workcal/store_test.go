package workcal_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obralink/cost-engine/persist/memory"
	"github.com/obralink/cost-engine/workcal"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newTestStore() (*workcal.CalendarStore, *memory.Port) {
	port := memory.New()
	return workcal.NewCalendarStore(workcal.NewHolidayCalendar(), port), port
}

func decPtr(d decimal.Decimal) *decimal.Decimal { return &d }

// =============================================================================
// GET - Generate on miss, cache afterwards
// =============================================================================

func TestCalendarStore_Get_GeneratesOnce(t *testing.T) {
	// GIVEN: An empty store
	// WHEN: Getting the same month twice
	// THEN: Each call returns its own snapshot of the one generated month

	store, _ := newTestStore()
	ctx := context.Background()

	first, err := store.Get(ctx, "emp-1", 2025, time.June)
	require.NoError(t, err)

	second, err := store.Get(ctx, "emp-1", 2025, time.June)
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, store.DirtyCount())
}

func TestCalendarStore_Get_SnapshotIsolatedFromPatches(t *testing.T) {
	// GIVEN: A snapshot taken before a patch
	// WHEN: Patching the day and mutating the snapshot directly
	// THEN: Neither side sees the other's change

	store, _ := newTestStore()
	ctx := context.Background()
	date := workcal.NewDate(2025, time.June, 16)

	before, err := store.Get(ctx, "emp-1", 2025, time.June)
	require.NoError(t, err)

	_, err = store.PatchDay(ctx, "emp-1", 2025, time.June, date,
		workcal.DayPatch{SetAbsence: &workcal.Absence{Kind: workcal.AbsenceVacation}})
	require.NoError(t, err)

	assert.Nil(t, before.Day(date).Absence)

	// Scribbling on the snapshot must not leak back into the store.
	before.Day(date).ActualHours = decimal.NewFromInt(99)

	after, err := store.Get(ctx, "emp-1", 2025, time.June)
	require.NoError(t, err)
	require.NotNil(t, after.Day(date).Absence)
	assert.True(t, after.Day(date).ActualHours.Equal(decimal.NewFromInt(8)))
}

func TestCalendarStore_ConcurrentReadersAndPatches(t *testing.T) {
	// GIVEN: One month under concurrent load
	// WHEN: Readers marshal snapshots while a writer patches days in a loop
	// THEN: No interleaving is observable (run with -race to enforce)

	store, _ := newTestStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				mc, err := store.Get(ctx, "emp-1", 2025, time.June)
				assert.NoError(t, err)
				_, err = json.Marshal(mc)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			day := 2 + i%20
			_, err := store.PatchDay(ctx, "emp-1", 2025, time.June, workcal.NewDate(2025, time.June, day),
				workcal.DayPatch{ActualHours: decPtr(decimal.NewFromInt(int64(1 + i%10)))})
			assert.NoError(t, err)
		}
	}()
	wg.Wait()
}

func TestCalendarStore_Get_LoadsPersistedOverGenerating(t *testing.T) {
	// GIVEN: A month edited, flushed, and a fresh store over the same port
	// WHEN: Getting that month
	// THEN: The persisted edit survives instead of a fresh generation

	store, port := newTestStore()
	ctx := context.Background()

	_, err := store.PatchDay(ctx, "emp-1", 2025, time.June, workcal.NewDate(2025, time.June, 16),
		workcal.DayPatch{ActualHours: decPtr(decimal.NewFromInt(10))})
	require.NoError(t, err)
	require.NoError(t, store.Flush(ctx))

	reloaded := workcal.NewCalendarStore(workcal.NewHolidayCalendar(), port)
	mc, err := reloaded.Get(ctx, "emp-1", 2025, time.June)
	require.NoError(t, err)

	day := mc.Day(workcal.NewDate(2025, time.June, 16))
	require.NotNil(t, day)
	assert.True(t, day.ActualHours.Equal(decimal.NewFromInt(10)))
}

// =============================================================================
// PATCH DAY
// =============================================================================

func TestPatchDay_OutsideMonth_FailsLoudly(t *testing.T) {
	// GIVEN: The June calendar
	// WHEN: Patching a July date against it
	// THEN: A DayNotFoundError is returned, nothing is silently ignored

	store, _ := newTestStore()
	ctx := context.Background()

	_, err := store.PatchDay(ctx, "emp-1", 2025, time.June, workcal.NewDate(2025, time.July, 1),
		workcal.DayPatch{ActualHours: decPtr(decimal.NewFromInt(4))})

	require.Error(t, err)
	var dayErr *workcal.DayNotFoundError
	require.ErrorAs(t, err, &dayErr)
	assert.ErrorIs(t, err, workcal.ErrDayOutOfRange)
	assert.Equal(t, "emp-1", dayErr.EmployeeID)
}

func TestPatchDay_SetAbsence_ForcesKindHours(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	// Vacation keeps the 8-hour day.
	day, err := store.PatchDay(ctx, "emp-1", 2025, time.June, workcal.NewDate(2025, time.June, 16),
		workcal.DayPatch{SetAbsence: &workcal.Absence{Kind: workcal.AbsenceVacation}})
	require.NoError(t, err)
	require.NotNil(t, day.Absence)
	assert.Equal(t, workcal.AbsenceVacation, day.Absence.Kind)
	assert.True(t, day.ActualHours.Equal(decimal.NewFromInt(8)))

	// Unexcused zeroes it.
	day, err = store.PatchDay(ctx, "emp-1", 2025, time.June, workcal.NewDate(2025, time.June, 17),
		workcal.DayPatch{SetAbsence: &workcal.Absence{Kind: workcal.AbsenceUnexcused}})
	require.NoError(t, err)
	assert.True(t, day.ActualHours.IsZero())
}

func TestPatchDay_ClearAbsence_ResetsToDefault(t *testing.T) {
	// GIVEN: A vacation day whose hours were then manually edited
	// WHEN: Clearing the absence
	// THEN: Hours reset to the day's DefaultHours, not to the edited value

	store, _ := newTestStore()
	ctx := context.Background()
	date := workcal.NewDate(2025, time.June, 16)

	_, err := store.PatchDay(ctx, "emp-1", 2025, time.June, date,
		workcal.DayPatch{SetAbsence: &workcal.Absence{Kind: workcal.AbsenceVacation}})
	require.NoError(t, err)

	_, err = store.PatchDay(ctx, "emp-1", 2025, time.June, date,
		workcal.DayPatch{ActualHours: decPtr(decimal.NewFromInt(3))})
	require.NoError(t, err)

	day, err := store.PatchDay(ctx, "emp-1", 2025, time.June, date,
		workcal.DayPatch{ClearAbsence: true})
	require.NoError(t, err)
	assert.Nil(t, day.Absence)
	assert.True(t, day.ActualHours.Equal(day.DefaultHours))
}

func TestPatchDay_ExplicitHoursWinOverAbsence(t *testing.T) {
	// Setting an absence and hours in one patch: the explicit hours apply last.
	store, _ := newTestStore()
	ctx := context.Background()

	day, err := store.PatchDay(ctx, "emp-1", 2025, time.June, workcal.NewDate(2025, time.June, 16),
		workcal.DayPatch{
			SetAbsence:  &workcal.Absence{Kind: workcal.AbsenceVacation},
			ActualHours: decPtr(decimal.NewFromInt(4)),
		})
	require.NoError(t, err)
	assert.True(t, day.ActualHours.Equal(decimal.NewFromInt(4)))
	require.NotNil(t, day.Absence)
}

func TestPatchDay_InvalidAbsenceKind_Rejected(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	_, err := store.PatchDay(ctx, "emp-1", 2025, time.June, workcal.NewDate(2025, time.June, 16),
		workcal.DayPatch{SetAbsence: &workcal.Absence{Kind: "sabbatical"}})

	assert.ErrorIs(t, err, workcal.ErrInvalidAbsenceKind)
}

// =============================================================================
// FLUSH
// =============================================================================

func TestFlush_SavesDirtyMonthsOnly(t *testing.T) {
	store, port := newTestStore()
	ctx := context.Background()

	_, err := store.Get(ctx, "emp-1", 2025, time.June)
	require.NoError(t, err)
	_, err = store.Get(ctx, "emp-2", 2025, time.June)
	require.NoError(t, err)

	assert.Equal(t, 2, store.DirtyCount())
	require.NoError(t, store.Flush(ctx))
	assert.Equal(t, 0, store.DirtyCount())
	assert.Equal(t, 2, port.Len())

	// Nothing dirty: flushing again writes nothing new.
	require.NoError(t, store.Flush(ctx))
	assert.Equal(t, 2, port.Len())
}

func TestRegenerate_DiscardsEdits(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()
	date := workcal.NewDate(2025, time.June, 16)

	_, err := store.PatchDay(ctx, "emp-1", 2025, time.June, date,
		workcal.DayPatch{ActualHours: decPtr(decimal.NewFromInt(12))})
	require.NoError(t, err)

	mc, err := store.Regenerate(ctx, "emp-1", 2025, time.June)
	require.NoError(t, err)

	day := mc.Day(date)
	require.NotNil(t, day)
	assert.True(t, day.ActualHours.Equal(day.DefaultHours))
}
