package memory

import (
	"context"
	"sync"

	"github.com/Strob0t/OpsPlane/internal/domain/connector"
)

// SyncRegistry is a static in-memory connector.SyncRegistry.
type SyncRegistry struct {
	mu       sync.Mutex
	statuses []connector.SyncStatus
	history  map[string][]connector.SyncAttempt
	err      error
}

// NewSyncRegistry creates an empty registry.
func NewSyncRegistry() *SyncRegistry {
	return &SyncRegistry{history: make(map[string][]connector.SyncAttempt)}
}

// SetStatuses replaces the registry contents.
func (r *SyncRegistry) SetStatuses(statuses []connector.SyncStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = statuses
}

// SetHistory replaces the recorded attempts for one source.
func (r *SyncRegistry) SetHistory(sourceID string, attempts []connector.SyncAttempt) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history[sourceID] = attempts
}

// Fail makes every subsequent read return err. Test hook for the monitor's
// degradation path.
func (r *SyncRegistry) Fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *SyncRegistry) Status(_ context.Context) ([]connector.SyncStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]connector.SyncStatus, len(r.statuses))
	copy(out, r.statuses)
	return out, nil
}

func (r *SyncRegistry) History(_ context.Context, sourceID string, limit int) ([]connector.SyncAttempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	attempts := r.history[sourceID]
	if limit > 0 && len(attempts) > limit {
		attempts = attempts[:limit]
	}
	out := make([]connector.SyncAttempt, len(attempts))
	copy(out, attempts)
	return out, nil
}
