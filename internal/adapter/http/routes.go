package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Strob0t/OpsPlane/internal/middleware"
)

// MountRoutes registers all API routes on the given chi router.
func MountRoutes(r chi.Router, h *Handlers, cronSecret string) {
	r.Get("/health", h.Health)
	r.Get("/ws", h.ServeWS)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"version":"0.1.0"}`))
		})

		// Task board
		r.Post("/tasks", h.CreateTask)
		r.Get("/tasks", h.ListTasks)
		r.Get("/tasks/{id}", h.GetTask)
		r.Patch("/tasks/{id}", h.UpdateTask)
		r.Post("/tasks/{id}/claim", h.ClaimTask)
		r.Get("/board", h.GetBoard)

		// Cost ledger
		r.Post("/costs", h.RecordCost)
		r.Get("/costs/daily", h.DailyCosts)
		r.Get("/costs/total", h.TotalSpend)

		// Connector sync registry (read-only view)
		r.Get("/connectors", h.ConnectorStatus)
		r.Get("/connectors/{sourceId}/history", h.ConnectorHistory)

		// Tier manager
		r.Get("/tier", h.GetTier)
		r.Put("/tier", h.SetTier)
		r.Put("/tier/agents/{name}", h.SetAgentEnabled)
		r.Get("/tier/estimate", h.EstimateCost)

		// Policy monitor, driven by an external scheduler
		r.With(middleware.CronSecret(cronSecret)).
			Post("/cron/policies", h.RunPolicies)
	})
}
