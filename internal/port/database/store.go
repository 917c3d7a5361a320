// Package database defines the storage port for the task board and cost ledger.
package database

import (
	"context"
	"time"

	"github.com/Strob0t/OpsPlane/internal/domain/cost"
	"github.com/Strob0t/OpsPlane/internal/domain/task"
)

// Store is the port interface consumed by the services. Implementations must
// honor the claim atomicity contract documented on ClaimTask.
type Store interface {
	TaskStore
	CostStore
}

// TaskStore covers the task board.
type TaskStore interface {
	CreateTask(ctx context.Context, t *task.Task) error
	GetTask(ctx context.Context, id string) (*task.Task, error)
	ListTasks(ctx context.Context, f task.Filter) ([]task.Task, error)
	UpdateTask(ctx context.Context, t *task.Task) error

	// ClaimTask atomically transitions the task from open to in_progress and
	// assigns it to agentName. It must be a single conditional update at the
	// storage layer, never a read followed by a write: exactly one of N
	// concurrent claimants may succeed. Returns domain.ErrClaimConflict when
	// the task exists but is not open, domain.ErrNotFound when it does not
	// exist.
	ClaimTask(ctx context.Context, id, agentName string, at time.Time) (*task.Task, error)
}

// CostStore covers the append-only cost ledger. Aggregation reads operate
// over committed history; no coordination with writers is required.
type CostStore interface {
	AppendCostEvent(ctx context.Context, e *cost.Event) error
	// CostEventsSince returns all events with Timestamp >= since, oldest first.
	CostEventsSince(ctx context.Context, since time.Time) ([]cost.Event, error)
}
