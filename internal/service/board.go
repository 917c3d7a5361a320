// Package service contains the business logic of the operations control
// plane: task board, cost ledger, tier manager and policy monitor.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Strob0t/OpsPlane/internal/adapter/otel"
	"github.com/Strob0t/OpsPlane/internal/adapter/ws"
	"github.com/Strob0t/OpsPlane/internal/domain"
	"github.com/Strob0t/OpsPlane/internal/domain/task"
	"github.com/Strob0t/OpsPlane/internal/port/database"
	"github.com/Strob0t/OpsPlane/internal/port/messagequeue"
)

// TaskBoardService handles task board business logic including event fan-out.
type TaskBoardService struct {
	store   database.Store
	queue   messagequeue.Queue
	hub     *ws.Hub
	metrics *otel.Metrics
	now     func() time.Time
}

// NewTaskBoardService creates a TaskBoardService. queue, hub and metrics
// are optional; nil disables the corresponding fan-out.
func NewTaskBoardService(store database.Store, queue messagequeue.Queue, hub *ws.Hub, metrics *otel.Metrics) *TaskBoardService {
	return &TaskBoardService{
		store:   store,
		queue:   queue,
		hub:     hub,
		metrics: metrics,
		now:     time.Now,
	}
}

// SetClock overrides the service clock. Test hook.
func (s *TaskBoardService) SetClock(now func() time.Time) { s.now = now }

// Create validates req and persists a new task. Title, department and
// createdBy are required. A task created with an assignee starts directly
// in_progress, mirroring how agents spawn subtasks for themselves.
func (s *TaskBoardService) Create(ctx context.Context, req task.CreateRequest) (*task.Task, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("title is required: %w", domain.ErrValidation)
	}
	if req.CreatedBy == "" {
		return nil, fmt.Errorf("created_by is required: %w", domain.ErrValidation)
	}
	if req.Department == "" {
		return nil, fmt.Errorf("department is required: %w", domain.ErrValidation)
	}
	if !req.Department.Valid() {
		return nil, fmt.Errorf("unknown department %q: %w", req.Department, domain.ErrValidation)
	}
	priority := req.Priority
	if priority == "" {
		priority = task.PriorityMedium
	}
	if !priority.Valid() {
		return nil, fmt.Errorf("unknown priority %q: %w", priority, domain.ErrValidation)
	}

	t := &task.Task{
		Title:        req.Title,
		Description:  req.Description,
		Department:   req.Department,
		Status:       task.StatusOpen,
		Priority:     priority,
		CreatedBy:    req.CreatedBy,
		AssignedTo:   req.AssignedTo,
		ParentTaskID: req.ParentTaskID,
		BlockedBy:    req.BlockedBy,
		Labels:       req.Labels,
	}
	if req.AssignedTo != "" {
		t.Status = task.StatusInProgress
		started := s.now().UTC()
		t.StartedAt = &started
	}

	if err := s.store.CreateTask(ctx, t); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.TasksCreated.Add(ctx, 1)
	}
	s.publish(ctx, messagequeue.SubjectTaskCreated, t)
	s.broadcast(ctx, ws.EventTaskCreated, t)
	return t, nil
}

// Get returns a task by ID.
func (s *TaskBoardService) Get(ctx context.Context, id string) (*task.Task, error) {
	return s.store.GetTask(ctx, id)
}

// List returns tasks matching the filter, newest first.
func (s *TaskBoardService) List(ctx context.Context, f task.Filter) ([]task.Task, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, fmt.Errorf("unknown status %q: %w", f.Status, domain.ErrValidation)
	}
	if f.Department != "" && !f.Department.Valid() {
		return nil, fmt.Errorf("unknown department %q: %w", f.Department, domain.ErrValidation)
	}
	return s.store.ListTasks(ctx, f)
}

// Update applies a partial patch. Transition legality is not enforced —
// the board deliberately allows any edge, including reopening a done task —
// but the CompletedAt/StatusDone invariant holds at every observable point.
func (s *TaskBoardService) Update(ctx context.Context, id string, patch task.UpdateRequest) (*task.Task, error) {
	t, err := s.store.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Status != nil {
		next := *patch.Status
		if !next.Valid() {
			return nil, fmt.Errorf("unknown status %q: %w", next, domain.ErrValidation)
		}
		if next != t.Status {
			now := s.now().UTC()
			switch {
			case next == task.StatusDone:
				t.CompletedAt = &now
			case t.Status == task.StatusDone:
				t.CompletedAt = nil
			}
			if next == task.StatusInProgress && t.StartedAt == nil {
				t.StartedAt = &now
			}
			t.Status = next
		}
	}
	if patch.AssignedTo != nil {
		t.AssignedTo = *patch.AssignedTo
	}
	if patch.ResultSummary != nil {
		t.ResultSummary = *patch.ResultSummary
	}
	if patch.ResultData != nil {
		t.ResultData = *patch.ResultData
	}
	if patch.Labels != nil {
		t.Labels = *patch.Labels
	}

	if err := s.store.UpdateTask(ctx, t); err != nil {
		return nil, err
	}

	s.publish(ctx, messagequeue.SubjectTaskStatus, t)
	s.broadcast(ctx, ws.EventTaskStatus, t)
	return t, nil
}

// Claim atomically transitions the task from open to in_progress on behalf
// of agentName. Exactly one of N concurrent claimants succeeds; the rest
// get domain.ErrClaimConflict, which callers must not blindly retry.
func (s *TaskBoardService) Claim(ctx context.Context, id, agentName string) (*task.Task, error) {
	if agentName == "" {
		return nil, fmt.Errorf("agent name is required: %w", domain.ErrValidation)
	}

	t, err := s.store.ClaimTask(ctx, id, agentName, s.now().UTC())
	if err != nil {
		if s.metrics != nil && isClaimConflict(err) {
			s.metrics.ClaimConflicts.Add(ctx, 1)
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ClaimsWon.Add(ctx, 1)
	}
	s.publish(ctx, messagequeue.SubjectTaskClaimed, t)
	s.broadcast(ctx, ws.EventTaskClaimed, t)
	return t, nil
}

// Board returns the dashboard summary of the whole board.
func (s *TaskBoardService) Board(ctx context.Context) (*task.Board, error) {
	tasks, err := s.store.ListTasks(ctx, task.Filter{})
	if err != nil {
		return nil, err
	}

	board := &task.Board{
		Total:         len(tasks),
		ByStatus:      make(map[task.Status]int),
		ByDepartment:  make(map[task.Department]task.DeptCounts),
		Recent:        []task.Task{},
		InProgress:    []task.Task{},
		ReviewPending: []task.Task{},
	}
	for _, st := range []task.Status{task.StatusOpen, task.StatusInProgress, task.StatusBlocked, task.StatusReview, task.StatusDone} {
		board.ByStatus[st] = 0
	}

	for _, t := range tasks {
		board.ByStatus[t.Status]++
		counts := board.ByDepartment[t.Department]
		counts.Total++
		switch t.Status {
		case task.StatusOpen:
			counts.Open++
		case task.StatusInProgress:
			counts.InProgress++
		case task.StatusDone:
			counts.Done++
		}
		board.ByDepartment[t.Department] = counts

		if t.Status == task.StatusInProgress {
			board.InProgress = append(board.InProgress, t)
		}
		if t.Status == task.StatusReview {
			board.ReviewPending = append(board.ReviewPending, t)
		}
	}

	if len(tasks) > 10 {
		board.Recent = tasks[:10]
	} else {
		board.Recent = tasks
	}
	return board, nil
}

func (s *TaskBoardService) publish(ctx context.Context, subject string, t *task.Task) {
	if s.queue == nil {
		return
	}
	data, err := json.Marshal(t)
	if err != nil {
		slog.Error("marshal task for queue", "task_id", t.ID, "error", err)
		return
	}
	if err := s.queue.Publish(ctx, subject, data); err != nil {
		// The task is saved; event delivery is best-effort.
		slog.Error("publish task event", "subject", subject, "task_id", t.ID, "error", err)
	}
}

func (s *TaskBoardService) broadcast(ctx context.Context, event string, t *task.Task) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastEvent(ctx, event, ws.TaskEvent{
		TaskID:     t.ID,
		Department: string(t.Department),
		Status:     string(t.Status),
		AssignedTo: t.AssignedTo,
	})
}

func isClaimConflict(err error) bool {
	return errors.Is(err, domain.ErrClaimConflict)
}
