/*
server.go - HTTP router and middleware configuration

PURPOSE:

	Configures the chi router, middleware stack, and route definitions.
	This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
 1. RequestID:     Unique ID per request for tracing
 2. RealIP:        Client address behind proxies
 3. requestLogger: One structured line per request (method, path,
    status, duration)
 4. Recoverer:     Panic recovery (500 instead of crash)
 5. Authenticate:  Bearer token to Principal resolution

AUTHORIZATION LAYOUT:

	Login and registration are public. Everything else requires a token.
	HR data routes additionally require the staff flag; account item
	routes enforce their own finer-grained rules in the service layer.

SEE ALSO:
  - handlers.go, users.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

// requestLogger emits a structured log line for every handled request.
// It wraps the response writer to capture the status the handler wrote.
func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("request")
		})
	}
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.Log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(h.Authenticate)

	r.Route("/api", func(r chi.Router) {
		// Public account surface
		r.Post("/users/register", h.Register)

		// Self-service profile
		r.Group(func(r chi.Router) {
			r.Use(RequireAuth)
			r.Get("/users/me", h.GetSelf)
			r.Patch("/users/me", h.UpdateSelf)

			// Admin rules live in the accounts service; routes only
			// require a token here.
			r.Get("/users", h.ListAccounts)
			r.Route("/users/{id}", func(r chi.Router) {
				r.Get("/", h.GetAccount)
				r.Patch("/", h.UpdateAccount)
				r.Delete("/", h.DeleteAccount)
				r.Post("/activate", h.ActivateAccount)
				r.Post("/deactivate", h.DeactivateAccount)
				r.Post("/set-password", h.SetPassword)
			})
		})

		// HR records are staff-only
		r.Group(func(r chi.Router) {
			r.Use(RequireStaff)

			r.Route("/employees", func(r chi.Router) {
				r.Get("/", h.ListEmployees)
				r.Post("/", h.CreateEmployee)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.GetEmployee)
					r.Put("/", h.UpdateEmployee)
					r.Delete("/", h.DeleteEmployee)

					r.Get("/addresses", h.ListAddresses)
					r.Post("/addresses", h.CreateAddress)
					r.Delete("/addresses/{recordID}", h.DeleteAddress)
					r.Get("/ibans", h.ListIBANs)
					r.Post("/ibans", h.CreateIBAN)
					r.Delete("/ibans/{recordID}", h.DeleteIBAN)
					r.Get("/emails", h.ListEmails)
					r.Post("/emails", h.CreateEmail)
					r.Delete("/emails/{recordID}", h.DeleteEmail)
					r.Get("/phones", h.ListPhones)
					r.Post("/phones", h.CreatePhone)
					r.Delete("/phones/{recordID}", h.DeletePhone)

					r.Get("/contracts", h.ListContracts)
					r.Post("/contracts", h.CreateContract)
				})
			})

			r.Route("/agreements", func(r chi.Router) {
				r.Get("/", h.ListAgreements)
				r.Post("/", h.CreateAgreement)
				r.Get("/{id}", h.GetAgreement)
				r.Put("/{id}", h.UpdateAgreement)
				r.Delete("/{id}", h.DeleteAgreement)
			})

			r.Route("/contracts/{id}", func(r chi.Router) {
				r.Get("/", h.GetContract)
				r.Put("/", h.UpdateContract)
				r.Delete("/", h.DeleteContract)

				r.Get("/schedule", h.ListSchedule)
				r.Post("/schedule", h.UpsertScheduleEntry)
				r.Delete("/schedule/{entryID}", h.DeleteScheduleEntry)

				r.Get("/absences", h.ListAbsences)
				r.Post("/absences", h.CreateAbsence)

				r.Get("/overtime", h.ListOvertime)
				r.Post("/overtime", h.CreateOvertime)

				r.Get("/payslips", h.ListPayslips)
				r.Post("/payslips", h.UploadPayslip)

				r.Get("/hours", h.GetHoursSummary)
			})

			r.Route("/absences/{id}", func(r chi.Router) {
				r.Get("/", h.GetAbsence)
				r.Delete("/", h.DeleteAbsence)
				r.Post("/approve", h.ApproveAbsence)
			})

			r.Delete("/overtime/{id}", h.DeleteOvertime)
			r.Delete("/payslips/{id}", h.DeletePayslip)

			r.Route("/absence-types", func(r chi.Router) {
				r.Get("/", h.ListAbsenceTypes)
				r.Post("/", h.CreateAbsenceType)
				r.Get("/{id}", h.GetAbsenceType)
				r.Put("/{id}", h.UpdateAbsenceType)
				r.Delete("/{id}", h.DeleteAbsenceType)
			})
		})
	})

	return r
}
