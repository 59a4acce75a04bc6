/*
store.go - Calendar cache and persistence boundary

PURPOSE:
  CalendarStore owns every MonthCalendar in the process: a single
  authoritative in-memory map keyed by (employee, year, month), loaded from
  and flushed to the persistence port as JSON month documents. Callers get an
  explicit store instance injected; there is no package-level state.

GENERATION:
  Get() is generate-on-miss and idempotent: a cached or persisted calendar is
  returned as-is so user edits survive, and a fresh one is generated only when
  neither exists.

MUTATION:
  PatchDay is the only edit operation. Writes are last-writer-wins at
  DayRecord granularity; the store serializes them behind one mutex since
  concurrent callers would otherwise interleave destructively. Everything the
  store hands out is a deep copy taken under the lock, so a caller never
  observes a month while a patch is mutating it.

PERSISTENCE:
  Edits mark the owning month dirty. Flush() saves dirty months through the
  port; on a save failure the in-memory copy stays authoritative for the
  session and the failure is surfaced as a persist error.
*/
package workcal

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/obralink/cost-engine/persist"
)

// =============================================================================
// CALENDAR STORE
// =============================================================================

type calendarKey struct {
	EmployeeID string
	Year       int
	Month      time.Month
}

// CalendarStore holds generated and edited calendars per (employee, year, month).
type CalendarStore struct {
	mu        sync.Mutex
	holidays  *HolidayCalendar
	port      persist.Port
	calendars map[calendarKey]*MonthCalendar
	dirty     map[calendarKey]bool
}

func NewCalendarStore(holidays *HolidayCalendar, port persist.Port) *CalendarStore {
	return &CalendarStore{
		holidays:  holidays,
		port:      port,
		calendars: make(map[calendarKey]*MonthCalendar),
		dirty:     make(map[calendarKey]bool),
	}
}

func calendarDocKey(employeeID string, year int, month time.Month) string {
	return fmt.Sprintf("calendar/%s/%04d-%02d", employeeID, year, month)
}

// Get returns the calendar for an employee-month, loading it from the port or
// generating it on first access. The result is a snapshot: later patches do
// not show through it, and callers edit only through PatchDay.
func (s *CalendarStore) Get(ctx context.Context, employeeID string, year int, month time.Month) (*MonthCalendar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mc, err := s.getLocked(ctx, employeeID, year, month)
	if err != nil {
		return nil, err
	}
	return mc.Clone(), nil
}

func (s *CalendarStore) getLocked(ctx context.Context, employeeID string, year int, month time.Month) (*MonthCalendar, error) {
	k := calendarKey{EmployeeID: employeeID, Year: year, Month: month}
	if mc, ok := s.calendars[k]; ok {
		return mc, nil
	}

	docKey := calendarDocKey(employeeID, year, month)
	raw, found, err := s.port.Load(ctx, docKey)
	if err != nil {
		return nil, persist.Wrap("load", docKey, err)
	}
	if found {
		var mc MonthCalendar
		if err := json.Unmarshal(raw, &mc); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrCalendarCorrupt, docKey, err)
		}
		s.calendars[k] = &mc
		return &mc, nil
	}

	mc := Generate(employeeID, year, month, s.holidays)
	s.calendars[k] = mc
	s.dirty[k] = true
	return mc, nil
}

// =============================================================================
// DAY PATCHING
// =============================================================================

// DayPatch is a partial edit of one DayRecord. Zero-value fields are left
// untouched. SetAbsence and ClearAbsence are mutually exclusive; absence
// handling runs before the hours override so explicit hours always win.
type DayPatch struct {
	ActualHours  *decimal.Decimal
	SetAbsence   *Absence
	ClearAbsence bool
}

// PatchDay merges a patch into the day record for an exact date within the
// resolved (year, month). A date outside that month fails with
// DayNotFoundError instead of being silently ignored.
func (s *CalendarStore) PatchDay(ctx context.Context, employeeID string, year int, month time.Month, date Date, patch DayPatch) (*DayRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if patch.SetAbsence != nil && !patch.SetAbsence.Kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAbsenceKind, patch.SetAbsence.Kind)
	}

	mc, err := s.getLocked(ctx, employeeID, year, month)
	if err != nil {
		return nil, err
	}

	day := mc.Day(date)
	if day == nil {
		return nil, &DayNotFoundError{EmployeeID: employeeID, Year: year, Month: month, Date: date}
	}

	switch {
	case patch.SetAbsence != nil:
		day.Absence = &Absence{Kind: patch.SetAbsence.Kind}
		day.ActualHours = patch.SetAbsence.Kind.DefaultHours()
	case patch.ClearAbsence:
		day.Absence = nil
		day.ActualHours = day.DefaultHours
	}

	if patch.ActualHours != nil {
		day.ActualHours = *patch.ActualHours
	}

	k := calendarKey{EmployeeID: employeeID, Year: year, Month: month}
	s.dirty[k] = true

	out := day.clone()
	return &out, nil
}

// Regenerate discards the stored month and rebuilds it from the holiday
// table. Whole-month regeneration is the only way day records are deleted.
func (s *CalendarStore) Regenerate(ctx context.Context, employeeID string, year int, month time.Month) (*MonthCalendar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := calendarKey{EmployeeID: employeeID, Year: year, Month: month}
	mc := Generate(employeeID, year, month, s.holidays)
	s.calendars[k] = mc
	s.dirty[k] = true
	return mc.Clone(), nil
}

// =============================================================================
// FLUSH / WARM-UP
// =============================================================================

// Flush saves every dirty month through the port. The first failure is
// returned; months saved before it are no longer dirty, the failed one stays
// dirty and the cache remains authoritative.
func (s *CalendarStore) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k := range s.dirty {
		mc := s.calendars[k]
		if mc == nil {
			delete(s.dirty, k)
			continue
		}
		raw, err := json.Marshal(mc)
		if err != nil {
			return fmt.Errorf("encode calendar %s %d-%02d: %w", k.EmployeeID, k.Year, k.Month, err)
		}
		docKey := calendarDocKey(k.EmployeeID, k.Year, k.Month)
		if err := s.port.Save(ctx, docKey, raw); err != nil {
			return persist.Wrap("save", docKey, err)
		}
		delete(s.dirty, k)
	}
	return nil
}

// DirtyCount reports how many months have unsaved edits.
func (s *CalendarStore) DirtyCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.dirty)
}
