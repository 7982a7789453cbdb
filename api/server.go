/*
server.go - HTTP router and middleware configuration

ROUTER: chi

MIDDLEWARE STACK:
  1. CorrelationID: X-Correlation-ID in/out, request-scoped logger
  2. Logger:        Access logging
  3. Recoverer:     Panic recovery (500 instead of crash)
  4. RateLimit:     Token bucket over the whole API
  5. CORS:          Cross-origin requests for frontends

ROUTE GROUPS:
  /api/tax/*      Tax computation
  /api/regimes    Regime tables
  /api/people/*   Person directory

SECURITY NOTE:
  No authentication middleware. All endpoints are public.
*/
package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterOptions configures cross-cutting middleware.
type RouterOptions struct {
	Logger       *slog.Logger
	CORSOrigins  []string
	RateLimitRPS float64
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	r := chi.NewRouter()

	// Middleware
	r.Use(CorrelationID(opts.Logger))
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(RateLimit(opts.RateLimitRPS))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Correlation-ID"},
		ExposedHeaders:   []string{"X-Correlation-ID"},
		AllowCredentials: false,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/tax", func(r chi.Router) {
			r.Post("/calculate", h.CalculateTax)
			r.Get("/calculate/{personId}", h.CalculateTaxForPerson)
			r.Post("/compare", h.CompareRegimes)
		})

		r.Get("/regimes", h.ListRegimes)

		r.Route("/people", func(r chi.Router) {
			r.Get("/", h.ListPeople)
			r.Post("/", h.CreatePerson)
			r.Get("/{id}", h.GetPerson)
			r.Delete("/{id}", h.DeletePerson)
			r.Get("/{id}/income", h.GetMonthlyIncome)
		})
	})

	return r
}
