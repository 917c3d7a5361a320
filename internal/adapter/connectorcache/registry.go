// Package connectorcache decorates a SyncRegistry with a short-TTL cache.
// The registry backs both the dashboard pipeline view and the policy
// monitor; caching keeps repeated reads off the pipeline's table.
package connectorcache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	domconn "github.com/Strob0t/OpsPlane/internal/domain/connector"
	"github.com/Strob0t/OpsPlane/internal/port/cache"
	"github.com/Strob0t/OpsPlane/internal/port/connector"
)

const statusKey = "connector.status"

// Registry wraps an inner SyncRegistry with cached Status reads. Misses
// collapse through a singleflight group so a cold cache triggers one
// upstream query, not one per caller. History calls pass through uncached.
type Registry struct {
	inner connector.SyncRegistry
	cache cache.Cache
	ttl   time.Duration
	group singleflight.Group
}

// New creates a caching registry decorator.
func New(inner connector.SyncRegistry, c cache.Cache, ttl time.Duration) *Registry {
	return &Registry{inner: inner, cache: c, ttl: ttl}
}

func (r *Registry) Status(ctx context.Context) ([]domconn.SyncStatus, error) {
	if data, ok, err := r.cache.Get(ctx, statusKey); err == nil && ok {
		var statuses []domconn.SyncStatus
		if err := json.Unmarshal(data, &statuses); err == nil {
			return statuses, nil
		}
		// Corrupt entry: drop it and fall through to the source.
		_ = r.cache.Delete(ctx, statusKey)
	}

	v, err, _ := r.group.Do(statusKey, func() (any, error) {
		statuses, err := r.inner.Status(ctx)
		if err != nil {
			return nil, err
		}
		if data, err := json.Marshal(statuses); err == nil {
			if err := r.cache.Set(ctx, statusKey, data, r.ttl); err != nil {
				slog.Debug("connector status cache set failed", "error", err)
			}
		}
		return statuses, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domconn.SyncStatus), nil
}

func (r *Registry) History(ctx context.Context, sourceID string, limit int) ([]domconn.SyncAttempt, error) {
	return r.inner.History(ctx, sourceID, limit)
}
