package http

import (
	"net/http"

	"github.com/Strob0t/OpsPlane/internal/domain/cost"
)

// RecordCost handles POST /api/v1/costs.
func (h *Handlers) RecordCost(w http.ResponseWriter, r *http.Request) {
	e, ok := readJSON[cost.Event](w, r)
	if !ok {
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	recorded, err := h.Costs.Record(ctx, e)
	if err != nil {
		writeDomainError(w, err, "cost event rejected")
		return
	}
	writeJSON(w, http.StatusCreated, recorded)
}

// DailyCosts handles GET /api/v1/costs/daily?days=N.
func (h *Handlers) DailyCosts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	daily, err := h.Costs.DailyCosts(ctx, queryInt(r, "days", 7))
	if err != nil {
		writeDomainError(w, err, "cost ledger unavailable")
		return
	}
	writeJSON(w, http.StatusOK, daily)
}

// TotalSpend handles GET /api/v1/costs/total?days=N.
func (h *Handlers) TotalSpend(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	summary, err := h.Costs.TotalSpend(ctx, queryInt(r, "days", 7))
	if err != nil {
		writeDomainError(w, err, "cost ledger unavailable")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
