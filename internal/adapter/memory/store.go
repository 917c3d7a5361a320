// Package memory provides in-memory implementations of the storage and
// registry ports for tests. Not durable.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Strob0t/OpsPlane/internal/domain"
	"github.com/Strob0t/OpsPlane/internal/domain/cost"
	"github.com/Strob0t/OpsPlane/internal/domain/task"
)

// Store is a mutex-guarded in-memory database.Store.
type Store struct {
	mu     sync.Mutex
	tasks  map[string]task.Task
	order  []string // task ids in creation order
	events []cost.Event
	now    func() time.Time
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		tasks: make(map[string]task.Task),
		now:   time.Now,
	}
}

// SetClock overrides the store's clock. Test hook.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) CreateTask(_ context.Context, t *task.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.now().UTC()
	}
	s.tasks[t.ID] = *t
	s.order = append(s.order, t.ID)
	return nil
}

func (s *Store) GetTask(_ context.Context, id string) (*task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, fmt.Errorf("get task %s: %w", id, domain.ErrNotFound)
	}
	cp := t
	return &cp, nil
}

func (s *Store) ListTasks(_ context.Context, f task.Filter) ([]task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var tasks []task.Task
	for _, id := range s.order {
		t := s.tasks[id]
		if f.Department != "" && t.Department != f.Department {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.CreatedBy != "" && t.CreatedBy != f.CreatedBy {
			continue
		}
		tasks = append(tasks, t)
	}
	// Newest first, matching the postgres store's ordering.
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	if f.Limit > 0 && len(tasks) > f.Limit {
		tasks = tasks[:f.Limit]
	}
	return tasks, nil
}

func (s *Store) UpdateTask(_ context.Context, t *task.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[t.ID]; !ok {
		return fmt.Errorf("update task %s: %w", t.ID, domain.ErrNotFound)
	}
	s.tasks[t.ID] = *t
	return nil
}

// ClaimTask serializes the test-and-set under the store mutex, giving the
// same winner-takes-all semantics as the conditional UPDATE in postgres.
func (s *Store) ClaimTask(_ context.Context, id, agentName string, at time.Time) (*task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, fmt.Errorf("claim task %s: %w", id, domain.ErrNotFound)
	}
	if t.Status != task.StatusOpen {
		return nil, fmt.Errorf("claim task %s: %w", id, domain.ErrClaimConflict)
	}
	t.Status = task.StatusInProgress
	t.AssignedTo = agentName
	started := at.UTC()
	t.StartedAt = &started
	s.tasks[id] = t
	cp := t
	return &cp, nil
}

func (s *Store) AppendCostEvent(_ context.Context, e *cost.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.Timestamp.IsZero() {
		e.Timestamp = s.now().UTC()
	}
	s.events = append(s.events, *e)
	return nil
}

func (s *Store) CostEventsSince(_ context.Context, since time.Time) ([]cost.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []cost.Event
	for _, e := range s.events {
		if !e.Timestamp.Before(since) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}
