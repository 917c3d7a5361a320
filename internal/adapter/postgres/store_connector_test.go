package postgres

import (
	"testing"
	"time"

	"github.com/Strob0t/OpsPlane/internal/domain/connector"
)

func TestDeriveLifecycle(t *testing.T) {
	done := time.Date(2026, 8, 14, 6, 0, 0, 0, time.UTC)
	completed := &connector.SyncAttempt{
		Status:      "completed",
		StartedAt:   done.Add(-time.Hour),
		CompletedAt: &done,
	}

	cases := []struct {
		name         string
		syncType     string
		latestStatus string
		lastDone     *connector.SyncAttempt
		want         connector.Lifecycle
	}{
		{"latest failed", "full", "failed", completed, connector.LifecycleError},
		{"never completed", "full", "running", nil, connector.LifecycleConfigured},
		// A running attempt must not hide the source's earlier success.
		{"running with prior full sync", "full", "running", completed, connector.LifecycleLoaded},
		{"running with prior delta sync", "delta", "running", completed, connector.LifecycleDeltaActive},
		{"completed full", "full", "completed", completed, connector.LifecycleLoaded},
		{"completed delta", "delta", "completed", completed, connector.LifecycleDeltaActive},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := deriveLifecycle(tc.syncType, tc.latestStatus, tc.lastDone); got != tc.want {
				t.Errorf("deriveLifecycle(%s, %s) = %s, want %s", tc.syncType, tc.latestStatus, got, tc.want)
			}
		})
	}
}
