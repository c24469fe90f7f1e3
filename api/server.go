/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Request logging
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/state, /api/checking      Whole state and checking pool
  /api/caixinhas/*               Savings pools
  /api/vouchers/*                Vouchers
  /api/salary, /api/credit-card  Recurring configuration
  /api/transactions/*            Recurring events
  /api/simulations/*             Simulated events
  /api/balances, /api/insights,
  /api/variations, /api/range/*  Projections
  /api/scenarios/*               Demo scenarios
  /                              Landing page

SECURITY NOTE:
  No authentication middleware. All endpoints are public; bind to
  localhost outside development.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// DefaultAllowedOrigins are the dev frontends allowed by CORS.
var DefaultAllowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	if len(allowedOrigins) == 0 {
		allowedOrigins = DefaultAllowedOrigins
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", h.GetState)
		r.Post("/state/save", h.SaveState)
		r.Put("/checking", h.UpdateChecking)

		r.Route("/caixinhas", func(r chi.Router) {
			r.Post("/", h.CreateCaixinha)
			r.Put("/{id}", h.UpdateCaixinha)
			r.Delete("/{id}", h.DeleteCaixinha)
		})

		r.Route("/vouchers", func(r chi.Router) {
			r.Post("/", h.CreateVoucher)
			r.Put("/{id}", h.UpdateVoucher)
			r.Delete("/{id}", h.DeleteVoucher)
		})

		r.Put("/salary", h.UpdateSalary)
		r.Get("/salary/next", h.NextSalary)
		r.Put("/credit-card", h.UpdateCreditCard)

		r.Get("/transactions", h.ListTransactions)
		r.Get("/transactions/upcoming", h.UpcomingTransactions)

		r.Route("/simulations", func(r chi.Router) {
			r.Get("/", h.ListSimulations)
			r.Post("/", h.CreateSimulation)
			r.Delete("/", h.ClearSimulations)
			r.Delete("/{id}", h.DeleteSimulation)
		})

		r.Get("/balances", h.GetBalances)
		r.Get("/insights", h.GetInsights)
		r.Get("/variations", h.GetVariations)
		r.Get("/range/default", h.DefaultRange)

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
		})
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Cash-flow Planner</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Cash-flow Planner API</h1>
<h2>API Endpoints</h2>
<ul>
<li><a href="/api/state">/api/state</a> - Current state</li>
<li><a href="/api/balances">/api/balances</a> - Daily balances for the default range</li>
<li><a href="/api/insights">/api/insights</a> - Dashboard insights</li>
<li><a href="/api/transactions/upcoming">/api/transactions/upcoming</a> - Recurring events</li>
<li><a href="/api/scenarios">/api/scenarios</a> - Demo scenarios</li>
</ul>
</body>
</html>`))
	})

	return r
}
