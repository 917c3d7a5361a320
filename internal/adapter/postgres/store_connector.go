package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Strob0t/OpsPlane/internal/domain"
	"github.com/Strob0t/OpsPlane/internal/domain/connector"
)

// SyncRegistry reads the ingestion pipeline's connector_sync_log table.
// Read-only: the pipeline owns every write.
type SyncRegistry struct {
	store *Store
}

// NewSyncRegistry creates a registry over the same pool as the store.
func NewSyncRegistry(store *Store) *SyncRegistry {
	return &SyncRegistry{store: store}
}

// Status returns one snapshot per source. LastSync is the newest attempt
// that finished with status 'completed'; a source whose attempts all failed
// or are still running reports LastSync = nil. The lifecycle stage follows
// the latest attempt regardless of outcome, and TotalSyncs counts every row.
func (r *SyncRegistry) Status(ctx context.Context) ([]connector.SyncStatus, error) {
	rows, err := r.store.pool.Query(ctx,
		`SELECT src.source_id, src.total,
		        latest.sync_type, latest.status,
		        done.items_fetched, done.started_at, done.completed_at
		 FROM (
		   SELECT source_id, COUNT(*) AS total
		   FROM connector_sync_log
		   GROUP BY source_id
		 ) src
		 JOIN LATERAL (
		   SELECT sync_type, status
		   FROM connector_sync_log
		   WHERE source_id = src.source_id
		   ORDER BY started_at DESC
		   LIMIT 1
		 ) latest ON true
		 LEFT JOIN LATERAL (
		   SELECT items_fetched, started_at, completed_at
		   FROM connector_sync_log
		   WHERE source_id = src.source_id AND status = 'completed'
		   ORDER BY completed_at DESC
		   LIMIT 1
		 ) done ON true
		 ORDER BY src.source_id`)
	if err != nil {
		return nil, fmt.Errorf("connector status: %v: %w", err, domain.ErrUpstream)
	}
	defer rows.Close()

	var statuses []connector.SyncStatus
	for rows.Next() {
		var (
			s             connector.SyncStatus
			total         int64
			syncType      string
			latestStatus  string
			doneItems     *int
			doneStarted   *time.Time
			doneCompleted *time.Time
		)
		if err := rows.Scan(&s.SourceID, &total, &syncType, &latestStatus,
			&doneItems, &doneStarted, &doneCompleted); err != nil {
			return nil, fmt.Errorf("scan connector status: %w", err)
		}
		s.TotalSyncs = int(total)
		if doneStarted != nil {
			s.LastSync = &connector.SyncAttempt{
				Status:       "completed",
				ItemsFetched: *doneItems,
				StartedAt:    doneStarted.UTC(),
				CompletedAt:  timePtr(doneCompleted),
			}
		}
		s.Lifecycle = deriveLifecycle(syncType, latestStatus, s.LastSync)
		statuses = append(statuses, s)
	}
	return statuses, rows.Err()
}

// History returns the most recent attempts for one source, newest first.
func (r *SyncRegistry) History(ctx context.Context, sourceID string, limit int) ([]connector.SyncAttempt, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.store.pool.Query(ctx,
		`SELECT status, items_fetched, started_at, completed_at
		 FROM connector_sync_log
		 WHERE source_id = $1
		 ORDER BY started_at DESC
		 LIMIT $2`, sourceID, limit)
	if err != nil {
		return nil, fmt.Errorf("sync history %s: %v: %w", sourceID, err, domain.ErrUpstream)
	}
	defer rows.Close()

	var attempts []connector.SyncAttempt
	for rows.Next() {
		var a connector.SyncAttempt
		if err := rows.Scan(&a.Status, &a.ItemsFetched, &a.StartedAt, &a.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan sync attempt: %w", err)
		}
		a.StartedAt = a.StartedAt.UTC()
		a.CompletedAt = timePtr(a.CompletedAt)
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// deriveLifecycle maps the latest attempt's outcome onto the pipeline
// lifecycle. lastDone is the newest completed sync, if any. A source with no
// log rows never appears here, so "unconfigured" is only produced by other
// registry implementations.
func deriveLifecycle(syncType, latestStatus string, lastDone *connector.SyncAttempt) connector.Lifecycle {
	switch {
	case latestStatus == "failed":
		return connector.LifecycleError
	case lastDone == nil:
		return connector.LifecycleConfigured // running, or never finished a sync
	case syncType == "delta":
		return connector.LifecycleDeltaActive
	default:
		return connector.LifecycleLoaded
	}
}
