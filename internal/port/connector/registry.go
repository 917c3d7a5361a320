// Package connector defines the port for the external ingestion pipeline's
// sync registry. The core only ever reads from it.
package connector

import (
	"context"

	"github.com/Strob0t/OpsPlane/internal/domain/connector"
)

// SyncRegistry exposes the per-source sync status of the ingestion pipeline.
// Implementations must set LastSync.CompletedAt only for syncs that actually
// finished, never for ones still running.
type SyncRegistry interface {
	Status(ctx context.Context) ([]connector.SyncStatus, error)

	// History returns the most recent sync attempts for one source,
	// newest first, capped at limit.
	History(ctx context.Context, sourceID string, limit int) ([]connector.SyncAttempt, error)
}
