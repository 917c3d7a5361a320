// Package connector defines the read-only view of the ingestion pipeline's
// per-source sync lifecycle. This core never writes to it.
package connector

import "time"

// Lifecycle is the stage of a data source's ingestion pipeline.
type Lifecycle string

const (
	LifecycleUnconfigured Lifecycle = "unconfigured"
	LifecycleConfigured   Lifecycle = "configured"
	LifecycleLoaded       Lifecycle = "loaded"
	LifecycleDeltaActive  Lifecycle = "delta-active"
	LifecycleError        Lifecycle = "error"
)

// SyncAttempt describes one sync run for a source.
type SyncAttempt struct {
	StartedAt    time.Time  `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	Status       string     `json:"status"` // "running", "completed", "failed"
	ItemsFetched int        `json:"items_fetched"`
}

// SyncStatus is the per-source status snapshot exposed by the registry.
// LastSync is the newest successfully completed run, or nil when the source
// has never finished one.
type SyncStatus struct {
	SourceID   string       `json:"source_id"`
	Lifecycle  Lifecycle    `json:"lifecycle"`
	LastSync   *SyncAttempt `json:"last_sync,omitempty"`
	TotalSyncs int          `json:"total_syncs"`
}
