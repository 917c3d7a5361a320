// Package cost defines domain types for the agent cost ledger.
package cost

import "time"

// Event is a single per-call cost record. Events are append-only and
// immutable once written.
type Event struct {
	AgentName    string    `json:"agent_name"`
	Provider     string    `json:"provider"`
	Model        string    `json:"model"`
	CostUSD      float64   `json:"cost_usd"`
	InputTokens  int64     `json:"input_tokens"`
	OutputTokens int64     `json:"output_tokens"`
	DurationMS   int64     `json:"duration_ms"`
	UsedFallback bool      `json:"used_fallback"`
	SessionType  string    `json:"session_type,omitempty"`
	CallID       string    `json:"call_id"`
	Timestamp    time.Time `json:"timestamp"`
}

// DayBucket holds aggregated cost for a single UTC calendar day.
// Days with no events appear with zero totals.
type DayBucket struct {
	Date       string             `json:"date"` // YYYY-MM-DD
	TotalUSD   float64            `json:"total_usd"`
	Calls      int                `json:"calls"`
	ByAgent    map[string]float64 `json:"by_agent,omitempty"`
	ByProvider map[string]float64 `json:"by_provider,omitempty"`
}

// DailyCosts is the response envelope for the daily view.
type DailyCosts struct {
	Days  int         `json:"days"`
	Daily []DayBucket `json:"daily"`
}

// GroupTotal holds cost and call count for one grouping key.
type GroupTotal struct {
	CostUSD float64 `json:"cost_usd"`
	Calls   int     `json:"calls"`
}

// SpendSummary aggregates spend over a trailing window.
// AvgPerCall is 0 when Calls is 0.
type SpendSummary struct {
	TotalUSD     float64               `json:"total_usd"`
	Calls        int                   `json:"calls"`
	AvgPerCall   float64               `json:"avg_per_call"`
	ByAgent      map[string]GroupTotal `json:"by_agent"`
	ByProvider   map[string]GroupTotal `json:"by_provider"`
	FallbackRate float64               `json:"fallback_rate"`
}
