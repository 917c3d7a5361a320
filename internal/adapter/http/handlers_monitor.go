package http

import "net/http"

// RunPolicies handles POST /api/v1/cron/policies. Guarded by the cron
// secret middleware; overlapping sweeps return 409.
func (h *Handlers) RunPolicies(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	report, err := h.Monitor.RunPolicies(ctx)
	if err != nil {
		writeDomainError(w, err, "policy sweep failed")
		return
	}
	writeJSON(w, http.StatusOK, report)
}
