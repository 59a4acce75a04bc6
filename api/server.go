/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. CORS:       Cross-origin requests for the dashboard frontend
  3. httplog:    Structured request logging (slog, ECS field names)
  4. Recoverer:  Panic recovery (500 instead of crash)

ROUTE GROUPS:
  /api/employees/*      Calendars, summaries, base costs
  /api/projects/*       Projects and revenue
  /api/imputations/*    Proration runs and the imputation ledger
  /api/expenses/*       Expense routing
  /api/reports/*        Profit series
  /api/admin/*          Flush and maintenance
  /api/scenarios/*      Demo scenarios

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "cost-engine"),
	)

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/health"))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Employee routes
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Get("/{id}", h.GetEmployee)
			r.Get("/{id}/calendar/{year}/{month}", h.GetCalendar)
			r.Post("/{id}/calendar/{year}/{month}/days", h.PatchCalendarDay)
			r.Get("/{id}/summary/{year}/{month}", h.GetSummary)
			r.Get("/{id}/basecost/{year}/{month}", h.GetBaseCost)
		})

		// Project routes
		r.Route("/projects", func(r chi.Router) {
			r.Get("/", h.ListProjects)
			r.Get("/{id}", h.GetProject)
			r.Get("/{id}/revenue/{year}/{month}", h.GetRevenue)
			r.Post("/{id}/certifications", h.SetCertification)
			r.Post("/{id}/assignments", h.AddAssignment)
		})

		// Imputation routes
		r.Route("/imputations", func(r chi.Router) {
			r.Post("/run", h.RunImputation)
			r.Post("/run-all/{year}/{month}", h.RunAllImputations)
			r.Get("/{year}/{month}", h.ListImputations)
			r.Delete("/{employee}/{project}/{year}/{month}", h.DeleteImputation)
		})

		// Expense routes
		r.Route("/expenses", func(r chi.Router) {
			r.Post("/route", h.RouteExpense)
			r.Post("/attach", h.AttachExpense)
		})

		// Reports
		r.Get("/reports/profit/{year}", h.ProfitReport)

		// Holidays
		r.Get("/holidays/{year}", h.ListHolidays)

		// Admin
		r.Post("/admin/flush", h.FlushCalendars)

		// Scenarios
		r.Get("/scenarios", h.ListScenarios)
		r.Post("/scenarios/load", h.LoadScenario)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Route not found", nil)
	})

	return r
}
