package http

import "net/http"

// GetTier handles GET /api/v1/tier.
func (h *Handlers) GetTier(w http.ResponseWriter, _ *http.Request) {
	info := h.Tiers.Info()
	writeJSON(w, http.StatusOK, info)
}

type setTierRequest struct {
	Tier string `json:"tier"`
}

// SetTier handles PUT /api/v1/tier.
func (h *Handlers) SetTier(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[setTierRequest](w, r)
	if !ok {
		return
	}
	info, err := h.Tiers.SetTier(req.Tier)
	if err != nil {
		writeDomainError(w, err, "tier not found")
		return
	}
	writeJSON(w, http.StatusOK, info)
}

type setAgentRequest struct {
	Enabled bool `json:"enabled"`
}

// SetAgentEnabled handles PUT /api/v1/tier/agents/{name}.
func (h *Handlers) SetAgentEnabled(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[setAgentRequest](w, r)
	if !ok {
		return
	}
	info, err := h.Tiers.SetAgentEnabled(urlParam(r, "name"), req.Enabled)
	if err != nil {
		writeDomainError(w, err, "agent not found")
		return
	}
	writeJSON(w, http.StatusOK, info)
}

type estimateResponse struct {
	EstimatedRunUSD float64 `json:"estimated_run_usd"`
}

// EstimateCost handles GET /api/v1/tier/estimate.
func (h *Handlers) EstimateCost(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, estimateResponse{EstimatedRunUSD: h.Tiers.EstimateCost()})
}
