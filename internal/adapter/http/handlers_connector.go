package http

import "net/http"

// ConnectorStatus handles GET /api/v1/connectors. The view is read-only;
// the sync pipeline owns the underlying log.
func (h *Handlers) ConnectorStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	statuses, err := h.Sync.Status(ctx)
	if err != nil {
		writeDomainError(w, err, "sync registry unavailable")
		return
	}
	writeJSON(w, http.StatusOK, statuses)
}

// ConnectorHistory handles GET /api/v1/connectors/{sourceId}/history.
func (h *Handlers) ConnectorHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	history, err := h.Sync.History(ctx, urlParam(r, "sourceId"), queryInt(r, "limit", 20))
	if err != nil {
		writeDomainError(w, err, "source not found")
		return
	}
	writeJSON(w, http.StatusOK, history)
}
