package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Strob0t/OpsPlane/internal/domain"
	"github.com/Strob0t/OpsPlane/internal/domain/cost"
	"github.com/Strob0t/OpsPlane/internal/domain/task"
)

// Store implements the database port backed by PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a Store over an existing connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const taskColumns = `id, title, description, department, status, priority,
	created_by, assigned_to, parent_task_id, blocked_by, labels,
	result_summary, result_data, created_at, started_at, completed_at`

func scanTask(row scannable) (task.Task, error) {
	var (
		t        task.Task
		parentID *string
	)
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.Department, &t.Status, &t.Priority,
		&t.CreatedBy, &t.AssignedTo, &parentID, &t.BlockedBy, &t.Labels,
		&t.ResultSummary, &t.ResultData, &t.CreatedAt, &t.StartedAt, &t.CompletedAt,
	)
	if err != nil {
		return task.Task{}, err
	}
	if parentID != nil {
		t.ParentTaskID = *parentID
	}
	t.CreatedAt = t.CreatedAt.UTC()
	t.StartedAt = timePtr(t.StartedAt)
	t.CompletedAt = timePtr(t.CompletedAt)
	return t, nil
}

// --- Tasks ---

// CreateTask inserts t and fills in its generated ID and CreatedAt.
func (s *Store) CreateTask(ctx context.Context, t *task.Task) error {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO tasks (title, description, department, status, priority,
		   created_by, assigned_to, parent_task_id, blocked_by, labels, started_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id, created_at`,
		t.Title, t.Description, string(t.Department), string(t.Status), string(t.Priority),
		t.CreatedBy, t.AssignedTo, nullIfEmpty(t.ParentTaskID),
		pgTextArray(t.BlockedBy), pgTextArray(t.Labels), t.StartedAt)

	if err := row.Scan(&t.ID, &t.CreatedAt); err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	t.CreatedAt = t.CreatedAt.UTC()
	return nil
}

func (s *Store) GetTask(ctx context.Context, id string) (*task.Task, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)

	t, err := scanTask(row)
	if err != nil {
		return nil, notFoundWrap(err, "get task %s", id)
	}
	return &t, nil
}

// ListTasks returns tasks in creation order, newest first. Filter zero
// values are ignored; Limit caps the result size.
func (s *Store) ListTasks(ctx context.Context, f task.Filter) ([]task.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE 1=1`
	args := []any{}

	if f.Department != "" {
		args = append(args, string(f.Department))
		query += fmt.Sprintf(" AND department = $%d", len(args))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if f.CreatedBy != "" {
		args = append(args, f.CreatedBy)
		query += fmt.Sprintf(" AND created_by = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// UpdateTask persists every mutable field of t (last-write-wins).
func (s *Store) UpdateTask(ctx context.Context, t *task.Task) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE tasks SET status = $2, assigned_to = $3, result_summary = $4,
		   result_data = $5, labels = $6, started_at = $7, completed_at = $8
		 WHERE id = $1`,
		t.ID, string(t.Status), t.AssignedTo, t.ResultSummary,
		t.ResultData, pgTextArray(t.Labels), t.StartedAt, t.CompletedAt)
	return execExpectOne(tag, err, "update task %s", t.ID)
}

// ClaimTask performs the open -> in_progress transition as a single
// conditional UPDATE so that exactly one of N concurrent claimants wins.
func (s *Store) ClaimTask(ctx context.Context, id, agentName string, at time.Time) (*task.Task, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE tasks SET status = $3, assigned_to = $2, started_at = $4
		 WHERE id = $1 AND status = $5
		 RETURNING `+taskColumns,
		id, agentName, string(task.StatusInProgress), at, string(task.StatusOpen))

	t, err := scanTask(row)
	if err == nil {
		return &t, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("claim task %s: %w", id, err)
	}

	// Zero rows: the task is either absent or already past open.
	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("claim task %s: %w", id, err)
	}
	if !exists {
		return nil, fmt.Errorf("claim task %s: %w", id, domain.ErrNotFound)
	}
	return nil, fmt.Errorf("claim task %s: %w", id, domain.ErrClaimConflict)
}

// --- Cost ledger ---

func (s *Store) AppendCostEvent(ctx context.Context, e *cost.Event) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	row := s.pool.QueryRow(ctx,
		`INSERT INTO cost_events (agent_name, provider, model, cost_usd,
		   input_tokens, output_tokens, duration_ms, used_fallback, session_type, call_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING created_at`,
		e.AgentName, e.Provider, e.Model, e.CostUSD,
		e.InputTokens, e.OutputTokens, e.DurationMS, e.UsedFallback, e.SessionType, e.CallID,
		e.Timestamp)

	if err := row.Scan(&e.Timestamp); err != nil {
		return fmt.Errorf("append cost event: %w", err)
	}
	e.Timestamp = e.Timestamp.UTC()
	return nil
}

func (s *Store) CostEventsSince(ctx context.Context, since time.Time) ([]cost.Event, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT agent_name, provider, model, cost_usd, input_tokens, output_tokens,
		   duration_ms, used_fallback, session_type, call_id, created_at
		 FROM cost_events WHERE created_at >= $1 ORDER BY created_at ASC`, since)
	if err != nil {
		return nil, fmt.Errorf("cost events since %s: %w", since, err)
	}
	defer rows.Close()

	var events []cost.Event
	for rows.Next() {
		var e cost.Event
		if err := rows.Scan(
			&e.AgentName, &e.Provider, &e.Model, &e.CostUSD,
			&e.InputTokens, &e.OutputTokens, &e.DurationMS,
			&e.UsedFallback, &e.SessionType, &e.CallID, &e.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("scan cost event: %w", err)
		}
		e.Timestamp = e.Timestamp.UTC()
		events = append(events, e)
	}
	return events, rows.Err()
}
