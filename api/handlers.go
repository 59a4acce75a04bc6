/*
handlers.go - HTTP API handlers for the cost imputation engine

PURPOSE:
  Exposes the calendar and costing engines via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Employees:
    GET    /api/employees                              List active employees
    GET    /api/employees/{id}                         Get employee details
    GET    /api/employees/{id}/calendar/{year}/{month} Get month calendar
    POST   /api/employees/{id}/calendar/{year}/{month}/days  Patch one day
    GET    /api/employees/{id}/summary/{year}/{month}  Hour summary
    GET    /api/employees/{id}/basecost/{year}/{month} Base cost breakdown

  Projects:
    GET    /api/projects                               List projects
    GET    /api/projects/{id}                          Get project details
    GET    /api/projects/{id}/revenue/{year}/{month}   Monthly gross revenue
    POST   /api/projects/{id}/certifications           Record recognized revenue
    POST   /api/projects/{id}/assignments              Link an employee

  Imputations:
    POST   /api/imputations/run                        Run proration for one employee-month
    POST   /api/imputations/run-all/{year}/{month}     Run for all active employees
    GET    /api/imputations/{year}/{month}             List month's imputations
    DELETE /api/imputations/{employee}/{project}/{year}/{month}  Delete one record

  Expenses:
    POST   /api/expenses/route                         Record and route an expense
    POST   /api/expenses/attach                        Attach after needs_selection

  Reports:
    GET    /api/reports/profit/{year}?overhead=N       12-month profit series

  Misc:
    GET    /api/holidays/{year}                        Holiday table for a year
    POST   /api/admin/flush                            Flush dirty calendars
    GET    /api/scenarios                              List demo scenarios
    POST   /api/scenarios/load                         Load a demo scenario

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input, day outside the resolved month
  - 404: Employee or project not found
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/obralink/cost-engine/costing"
	"github.com/obralink/cost-engine/persist"
	"github.com/obralink/cost-engine/registry"
	"github.com/obralink/cost-engine/workcal"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Registry  *registry.Memory
	Holidays  *workcal.HolidayCalendar
	Calendars *workcal.CalendarStore
	Ledger    *costing.ImputationLedger
	Engine    *costing.ProrationEngine
	Expenses  *costing.ExpenseRouter
	Revenue   *costing.RevenueCalculator
	Profit    *costing.ProfitAnalyzer

	validate *validator.Validate

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler wires the full engine on top of a registry and a persistence
// port.
func NewHandler(reg *registry.Memory, port persist.Port) *Handler {
	holidays := workcal.NewHolidayCalendar()
	calendars := workcal.NewCalendarStore(holidays, port)
	ledger := costing.NewImputationLedger(port)
	resolver := &costing.AssignmentResolver{Projects: reg}

	revenue := &costing.RevenueCalculator{Projects: reg, Calendars: calendars}

	return &Handler{
		Registry:  reg,
		Holidays:  holidays,
		Calendars: calendars,
		Ledger:    ledger,
		Engine: &costing.ProrationEngine{
			Employees: reg,
			Resolver:  resolver,
			Ledger:    ledger,
			Calendars: calendars,
		},
		Expenses: &costing.ExpenseRouter{Projects: reg, Resolver: resolver, Ledger: ledger},
		Revenue:  revenue,
		Profit:   &costing.ProfitAnalyzer{Projects: reg, Revenue: revenue, Ledger: ledger},
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// EMPLOYEE ENDPOINTS
// =============================================================================

// ListEmployees returns all active employees.
// GET /api/employees
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Registry.ActiveEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, 0, len(employees))
	for _, e := range employees {
		dtos = append(dtos, toEmployeeDTO(e))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns one employee.
// GET /api/employees/{id}
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	e, err := h.Registry.Employee(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to get employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(e))
}

// GetCalendar returns the employee's month calendar, generating it on first
// access.
// GET /api/employees/{id}/calendar/{year}/{month}
func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	year, month, ok := parseYearMonth(w, r)
	if !ok {
		return
	}

	mc, err := h.Calendars.Get(r.Context(), chi.URLParam(r, "id"), year, month)
	if err != nil {
		writeDomainError(w, "Failed to get calendar", err)
		return
	}
	writeJSON(w, http.StatusOK, mc)
}

// PatchCalendarDay edits one day of the month calendar.
// POST /api/employees/{id}/calendar/{year}/{month}/days
func (h *Handler) PatchCalendarDay(w http.ResponseWriter, r *http.Request) {
	year, month, ok := parseYearMonth(w, r)
	if !ok {
		return
	}

	var req PatchDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	date, err := workcal.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	patch := workcal.DayPatch{ClearAbsence: req.ClearAbsence}
	if req.ActualHours != nil {
		hours := decimalFromFloat(*req.ActualHours)
		patch.ActualHours = &hours
	}
	if req.Absence != nil {
		patch.SetAbsence = &workcal.Absence{Kind: workcal.AbsenceKind(*req.Absence)}
	}

	day, err := h.Calendars.PatchDay(r.Context(), chi.URLParam(r, "id"), year, month, date, patch)
	if err != nil {
		writeDomainError(w, "Failed to patch day", err)
		return
	}
	writeJSON(w, http.StatusOK, day)
}

// GetSummary returns the month's categorized hour totals.
// GET /api/employees/{id}/summary/{year}/{month}
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	year, month, ok := parseYearMonth(w, r)
	if !ok {
		return
	}

	employeeID := chi.URLParam(r, "id")
	mc, err := h.Calendars.Get(r.Context(), employeeID, year, month)
	if err != nil {
		writeDomainError(w, "Failed to get calendar", err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryDTO(employeeID, year, month, workcal.Summarize(mc)))
}

// GetBaseCost returns the employee's per-labor-day cost for a month.
// GET /api/employees/{id}/basecost/{year}/{month}
func (h *Handler) GetBaseCost(w http.ResponseWriter, r *http.Request) {
	year, month, ok := parseYearMonth(w, r)
	if !ok {
		return
	}

	base, err := h.Engine.ComputeBaseCost(r.Context(), chi.URLParam(r, "id"), year, month)
	if err != nil {
		writeDomainError(w, "Failed to compute base cost", err)
		return
	}
	writeJSON(w, http.StatusOK, toBaseCostDTO(base))
}

// =============================================================================
// PROJECT ENDPOINTS
// =============================================================================

// ListProjects returns all projects.
// GET /api/projects
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.Registry.Projects(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list projects", err)
		return
	}

	dtos := make([]ProjectDTO, 0, len(projects))
	for _, p := range projects {
		dtos = append(dtos, toProjectDTO(p))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetProject returns one project including certifications and assignments.
// GET /api/projects/{id}
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	p, err := h.Registry.Project(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to get project", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// SetCertification records the recognized revenue for one month of a
// fixed-budget project, replacing any existing certification for the period.
// POST /api/projects/{id}/certifications
func (h *Handler) SetCertification(w http.ResponseWriter, r *http.Request) {
	var req SetCertificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	cert := registry.Certification{
		Year:   req.Year,
		Month:  time.Month(req.Month),
		Amount: decimalFromFloat(req.Amount),
	}
	if err := h.Registry.SetCertification(r.Context(), chi.URLParam(r, "id"), cert); err != nil {
		writeDomainError(w, "Failed to set certification", err)
		return
	}
	writeJSON(w, http.StatusOK, cert)
}

// AddAssignment links an employee to the project over an optional date range.
// POST /api/projects/{id}/assignments
func (h *Handler) AddAssignment(w http.ResponseWriter, r *http.Request) {
	var req AddAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	assignment := registry.Assignment{
		EmployeeID: req.EmployeeID,
		ProjectID:  chi.URLParam(r, "id"),
	}
	if req.EntryDate != "" {
		entry, err := workcal.ParseDate(req.EntryDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid entry_date", err)
			return
		}
		assignment.EntryDate = &entry
	}
	if req.ExitDate != "" {
		exit, err := workcal.ParseDate(req.ExitDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid exit_date", err)
			return
		}
		assignment.ExitDate = &exit
	}
	if req.HourlyRate != nil {
		rate := decimalFromFloat(*req.HourlyRate)
		assignment.HourlyRate = &rate
	}

	if _, err := h.Registry.Employee(r.Context(), req.EmployeeID); err != nil {
		writeDomainError(w, "Failed to add assignment", err)
		return
	}
	if err := h.Registry.AddAssignment(r.Context(), assignment); err != nil {
		writeDomainError(w, "Failed to add assignment", err)
		return
	}
	writeJSON(w, http.StatusCreated, assignment)
}

// GetRevenue returns the project's gross revenue for a month.
// GET /api/projects/{id}/revenue/{year}/{month}
func (h *Handler) GetRevenue(w http.ResponseWriter, r *http.Request) {
	year, month, ok := parseYearMonth(w, r)
	if !ok {
		return
	}

	projectID := chi.URLParam(r, "id")
	revenue, err := h.Revenue.Revenue(r.Context(), projectID, year, month)
	if err != nil {
		writeDomainError(w, "Failed to compute revenue", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"project_id": projectID,
		"year":       year,
		"month":      int(month),
		"revenue":    revenue.InexactFloat64(),
	})
}

// =============================================================================
// IMPUTATION ENDPOINTS
// =============================================================================

// RunImputation prorates one employee's monthly cost across their projects.
// POST /api/imputations/run
func (h *Handler) RunImputation(w http.ResponseWriter, r *http.Request) {
	var req RunImputationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	var run costing.ImputationRun
	var err error
	if req.FromCalendar {
		run, err = h.Engine.ImputeFromCalendar(r.Context(), req.EmployeeID, req.Year, time.Month(req.Month))
	} else {
		run, err = h.Engine.ImputeToProjects(r.Context(), req.EmployeeID, req.Year, time.Month(req.Month),
			decimalFromFloat(req.OvertimeHours), decimalFromFloat(req.HolidayHours))
	}
	if err != nil {
		writeDomainError(w, "Failed to run imputation", err)
		return
	}

	dtos := make([]ImputationDTO, 0, len(run.Imputations))
	for _, ci := range run.Imputations {
		dtos = append(dtos, toImputationDTO(ci))
	}
	skipped := make([]string, 0, len(run.Skipped))
	for _, s := range run.Skipped {
		skipped = append(skipped, s.Assignment.ProjectID)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"base_cost":   toBaseCostDTO(run.BaseCost),
		"imputations": dtos,
		"skipped":     skipped,
	})
}

// RunAllImputations prorates every active employee for a month using
// calendar-derived hour totals. Per-employee failures are reported without
// aborting the batch.
// POST /api/imputations/run-all/{year}/{month}
func (h *Handler) RunAllImputations(w http.ResponseWriter, r *http.Request) {
	year, month, ok := parseYearMonth(w, r)
	if !ok {
		return
	}

	runs, failures, err := h.Engine.ImputeAllActive(r.Context(), year, month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to run imputations", err)
		return
	}

	failed := make(map[string]string, len(failures))
	for id, ferr := range failures {
		failed[id] = ferr.Error()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"runs":     len(runs),
		"failures": failed,
	})
}

// ListImputations returns the month's imputation records, optionally filtered
// by employee via ?employee_id=.
// GET /api/imputations/{year}/{month}
func (h *Handler) ListImputations(w http.ResponseWriter, r *http.Request) {
	year, month, ok := parseYearMonth(w, r)
	if !ok {
		return
	}

	var records []costing.CostImputation
	if employeeID := r.URL.Query().Get("employee_id"); employeeID != "" {
		records = h.Ledger.ByEmployee(employeeID, year, month)
	} else {
		records = h.Ledger.ByMonth(year, month)
	}

	dtos := make([]ImputationDTO, 0, len(records))
	for _, ci := range records {
		dtos = append(dtos, toImputationDTO(ci))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// DeleteImputation removes one imputation record.
// DELETE /api/imputations/{employee}/{project}/{year}/{month}
func (h *Handler) DeleteImputation(w http.ResponseWriter, r *http.Request) {
	year, month, ok := parseYearMonth(w, r)
	if !ok {
		return
	}

	key := costing.ImputationKey{
		EmployeeID: chi.URLParam(r, "employee"),
		ProjectID:  chi.URLParam(r, "project"),
		Year:       year,
		Month:      month,
	}
	if _, found := h.Ledger.Get(key); !found {
		writeError(w, http.StatusNotFound, "Imputation not found", nil)
		return
	}
	if err := h.Ledger.Delete(r.Context(), key); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete imputation", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": key.String()})
}

// =============================================================================
// EXPENSE ENDPOINTS
// =============================================================================

// RouteExpense records a miscellaneous expense and routes it against the
// employee's assignments on the expense date.
// POST /api/expenses/route
func (h *Handler) RouteExpense(w http.ResponseWriter, r *http.Request) {
	var req RouteExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	date, err := workcal.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	expense := registry.VariableExpense{
		EmployeeID: req.EmployeeID,
		Date:       date,
		Concept:    req.Concept,
		Amount:     decimalFromFloat(req.Amount),
	}
	result, err := h.Expenses.Route(r.Context(), req.EmployeeID, date, expense)
	if err != nil {
		writeDomainError(w, "Failed to route expense", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// AttachExpense attaches an expense to an explicitly chosen project, the
// follow-up to a needs_selection routing.
// POST /api/expenses/attach
func (h *Handler) AttachExpense(w http.ResponseWriter, r *http.Request) {
	var req AttachExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	date, err := workcal.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	expense := registry.VariableExpense{
		EmployeeID: req.EmployeeID,
		Date:       date,
		Concept:    req.Concept,
		Amount:     decimalFromFloat(req.Amount),
	}
	attached, err := h.Expenses.Attach(r.Context(), req.ProjectID, expense)
	if err != nil {
		writeDomainError(w, "Failed to attach expense", err)
		return
	}
	writeJSON(w, http.StatusOK, attached)
}

// =============================================================================
// REPORT ENDPOINTS
// =============================================================================

// ProfitReport returns the 12-month profit series for a year. The fixed
// monthly overhead comes from the ?overhead= query parameter, defaulting to 0.
// GET /api/reports/profit/{year}
func (h *Handler) ProfitReport(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	overhead := decimal.Zero
	if raw := r.URL.Query().Get("overhead"); raw != "" {
		overhead, err = decimal.NewFromString(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid overhead", err)
			return
		}
	}

	series, err := h.Profit.AnalyzeYear(r.Context(), year, overhead)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build report", err)
		return
	}

	dtos := make([]MonthlyProfitDTO, 0, len(series))
	for _, row := range series {
		dtos = append(dtos, toMonthlyProfitDTO(row))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// MISC ENDPOINTS
// =============================================================================

// ListHolidays returns the holiday table for a year.
// GET /api/holidays/{year}
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}
	writeJSON(w, http.StatusOK, h.Holidays.HolidaysInYear(year))
}

// FlushCalendars saves every dirty calendar through the persistence port.
// POST /api/admin/flush
func (h *Handler) FlushCalendars(w http.ResponseWriter, r *http.Request) {
	dirty := h.Calendars.DirtyCount()
	if err := h.Calendars.Flush(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to flush calendars", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"flushed": dirty})
}

// =============================================================================
// HELPERS
// =============================================================================

// parseYearMonth extracts and validates {year}/{month} path parameters,
// writing the error response itself on failure.
func parseYearMonth(w http.ResponseWriter, r *http.Request) (int, time.Month, bool) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return 0, 0, false
	}
	monthNum, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || monthNum < 1 || monthNum > 12 {
		writeError(w, http.StatusBadRequest, "Invalid month (use 1-12)", err)
		return 0, 0, false
	}
	return year, time.Month(monthNum), true
}

// writeDomainError maps domain errors to HTTP statuses: not-found to 404,
// client mistakes to 400, everything else to 500.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case costing.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case costing.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
