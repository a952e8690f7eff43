/*
server.go - HTTP router, middleware, and manager authentication

PURPOSE:
  Configures the chi router, the middleware stack, and the route tree.
  The manager subtree is gated here: the department in the path and the
  bearer token from the request are resolved into an auth.Grant before
  any manager handler runs.

MIDDLEWARE STACK:
  1. RequestID:  unique ID per request for tracing
  2. Logger:     request logging
  3. Recoverer:  panic recovery (500 instead of crash)
  4. CORS:       cross-origin requests for the frontend

TOKEN TRANSPORT:
  The manager token arrives in the X-Manager-Token header, or as a
  ?token= query parameter so manager links stay pasteable.

ROUTE GROUPS:
  /api/health                      Liveness
  /api/vacations                   Public submissions and listing
  /api/schedule                    Public Gantt payload
  /api/manager/{department}/*      Token-gated manager console

SEE ALSO:
  - handlers.go: handler implementations
  - auth package: token-to-grant resolution
  - cmd/server/main.go: server startup
*/
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/eigida/vacations/auth"
	"github.com/eigida/vacations/vacation"
)

type contextKey string

const grantKey contextKey = "manager-grant"

func grantFrom(ctx context.Context) auth.Grant {
	grant, _ := ctx.Value(grantKey).(auth.Grant)
	return grant
}

// NewRouter creates the router with all routes configured.
func NewRouter(h *Handler, corsOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Manager-Token"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Route("/vacations", func(r chi.Router) {
			r.Get("/", h.ListVacations)
			r.Post("/", h.CreateVacation)
		})

		r.Get("/schedule", h.Schedule)

		r.Route("/manager/{department}", func(r chi.Router) {
			r.Use(h.requireManager)

			r.Get("/session", h.Session)
			r.Route("/vacations", func(r chi.Router) {
				r.Get("/", h.ManagerListVacations)
				r.Route("/{id}", func(r chi.Router) {
					r.Patch("/", h.UpdateVacation)
					r.Post("/approve", h.ApproveVacation)
					r.Post("/reject", h.RejectVacation)
				})
			})
		})
	})

	return r
}

// requireManager resolves the path department and the supplied token
// into a Grant, or rejects the request. An unknown department path is a
// client error, same as an unknown ?department= filter value.
func (h *Handler) requireManager(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dept, ok := vacation.ParseDepartment(chi.URLParam(r, "department"))
		if !ok {
			httpError(w, vacation.ErrInvalidDepartment)
			return
		}

		token := r.Header.Get("X-Manager-Token")
		if token == "" {
			token = r.URL.Query().Get("token")
		}

		grant, err := auth.Authorize(h.Tokens, dept, token)
		if err != nil {
			httpError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), grantKey, grant)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
