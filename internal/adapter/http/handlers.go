package http

import (
	"context"
	"net/http"
	"time"

	"github.com/Strob0t/OpsPlane/internal/adapter/ws"
	"github.com/Strob0t/OpsPlane/internal/port/connector"
	"github.com/Strob0t/OpsPlane/internal/port/messagequeue"
	"github.com/Strob0t/OpsPlane/internal/service"
)

// Handlers holds the HTTP handler dependencies.
type Handlers struct {
	Board   *service.TaskBoardService
	Costs   *service.CostService
	Tiers   *service.TierService
	Monitor *service.PolicyMonitorService
	Sync    connector.SyncRegistry
	Hub     *ws.Hub
	Queue   messagequeue.Queue

	StartedAt time.Time
}

type healthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
	NATS   bool   `json:"nats_connected"`
}

// Health reports process liveness and broker connectivity.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{
		Status: "ok",
		Uptime: time.Since(h.StartedAt).Round(time.Second).String(),
	}
	if h.Queue != nil {
		resp.NATS = h.Queue.IsConnected()
	}
	writeJSON(w, http.StatusOK, resp)
}

// ServeWS upgrades the connection and registers it with the hub.
func (h *Handlers) ServeWS(w http.ResponseWriter, r *http.Request) {
	h.Hub.HandleWS(w, r)
}

// requestContext bounds handler work independently of client patience.
func requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), 30*time.Second)
}
