package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Strob0t/OpsPlane/internal/adapter/memory"
	"github.com/Strob0t/OpsPlane/internal/domain"
	"github.com/Strob0t/OpsPlane/internal/domain/task"
)

func newBoard() (*TaskBoardService, *memory.Store) {
	store := memory.NewStore()
	return NewTaskBoardService(store, nil, nil, nil), store
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newBoard()
	ctx := context.Background()

	cases := []struct {
		name string
		req  task.CreateRequest
	}{
		{"missing title", task.CreateRequest{Department: task.DeptLegal, CreatedBy: "leader"}},
		{"missing department", task.CreateRequest{Title: "t", CreatedBy: "leader"}},
		{"missing created_by", task.CreateRequest{Title: "t", Department: task.DeptLegal}},
		{"unknown department", task.CreateRequest{Title: "t", Department: "janitorial", CreatedBy: "leader"}},
		{"unknown priority", task.CreateRequest{Title: "t", Department: task.DeptLegal, CreatedBy: "leader", Priority: "urgent"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, tc.req); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestCreateDefaults(t *testing.T) {
	svc, _ := newBoard()
	ctx := context.Background()

	created, err := svc.Create(ctx, task.CreateRequest{
		Title:      "review contract",
		Department: task.DeptLegal,
		CreatedBy:  "leader",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Error("expected generated ID")
	}
	if created.Status != task.StatusOpen {
		t.Errorf("status = %q, want open", created.Status)
	}
	if created.Priority != task.PriorityMedium {
		t.Errorf("priority = %q, want medium", created.Priority)
	}
	if created.StartedAt != nil || created.CompletedAt != nil {
		t.Error("new open task must have no started/completed timestamps")
	}
}

func TestCreateWithAssigneeStartsInProgress(t *testing.T) {
	svc, _ := newBoard()

	created, err := svc.Create(context.Background(), task.CreateRequest{
		Title:      "classify batch",
		Department: task.DeptDataEngineering,
		CreatedBy:  "leader",
		AssignedTo: "classifier",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != task.StatusInProgress {
		t.Errorf("status = %q, want in_progress", created.Status)
	}
	if created.StartedAt == nil {
		t.Error("expected StartedAt to be set")
	}
}

func TestClaimExactlyOneWinner(t *testing.T) {
	svc, _ := newBoard()
	ctx := context.Background()

	created, err := svc.Create(ctx, task.CreateRequest{
		Title:      "contested",
		Department: task.DeptOperations,
		CreatedBy:  "leader",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	const claimants = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		wins      int
		conflicts int
		winner    string
	)
	start := make(chan struct{})
	for i := 0; i < claimants; i++ {
		wg.Add(1)
		agent := string(rune('a' + i))
		go func() {
			defer wg.Done()
			<-start
			claimed, err := svc.Claim(ctx, created.ID, agent)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
				winner = claimed.AssignedTo
			case errors.Is(err, domain.ErrClaimConflict):
				conflicts++
			default:
				t.Errorf("unexpected claim error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	if wins != 1 {
		t.Fatalf("wins = %d, want exactly 1", wins)
	}
	if conflicts != claimants-1 {
		t.Fatalf("conflicts = %d, want %d", conflicts, claimants-1)
	}

	final, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if final.Status != task.StatusInProgress || final.AssignedTo != winner {
		t.Errorf("final task = %q/%q, want in_progress/%q", final.Status, final.AssignedTo, winner)
	}
}

func TestClaimErrors(t *testing.T) {
	svc, _ := newBoard()
	ctx := context.Background()

	if _, err := svc.Claim(ctx, "no-such-id", "analyzer"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing task: expected ErrNotFound, got %v", err)
	}

	created, _ := svc.Create(ctx, task.CreateRequest{
		Title: "x", Department: task.DeptFinance, CreatedBy: "leader",
	})
	if _, err := svc.Claim(ctx, created.ID, ""); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("empty agent: expected ErrValidation, got %v", err)
	}

	if _, err := svc.Claim(ctx, created.ID, "analyzer"); err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if _, err := svc.Claim(ctx, created.ID, "advisor"); !errors.Is(err, domain.ErrClaimConflict) {
		t.Errorf("second claim: expected ErrClaimConflict, got %v", err)
	}
}

func TestUpdateCompletedAtInvariant(t *testing.T) {
	svc, _ := newBoard()
	ctx := context.Background()

	created, _ := svc.Create(ctx, task.CreateRequest{
		Title: "finish me", Department: task.DeptStrategy, CreatedBy: "leader",
	})

	done := task.StatusDone
	updated, err := svc.Update(ctx, created.ID, task.UpdateRequest{Status: &done})
	if err != nil {
		t.Fatalf("update to done: %v", err)
	}
	if updated.CompletedAt == nil {
		t.Fatal("done task must carry CompletedAt")
	}

	open := task.StatusOpen
	updated, err = svc.Update(ctx, created.ID, task.UpdateRequest{Status: &open})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if updated.CompletedAt != nil {
		t.Error("reopened task must not carry CompletedAt")
	}

	bad := task.Status("abandoned")
	if _, err := svc.Update(ctx, created.ID, task.UpdateRequest{Status: &bad}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("unknown status: expected ErrValidation, got %v", err)
	}
}

func TestUpdateSetsStartedAtOnce(t *testing.T) {
	svc, _ := newBoard()
	ctx := context.Background()

	created, _ := svc.Create(ctx, task.CreateRequest{
		Title: "two phase", Department: task.DeptSecurity, CreatedBy: "leader",
	})

	inProgress := task.StatusInProgress
	first, err := svc.Update(ctx, created.ID, task.UpdateRequest{Status: &inProgress})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if first.StartedAt == nil {
		t.Fatal("expected StartedAt after first in_progress transition")
	}
	startedAt := *first.StartedAt

	blocked := task.StatusBlocked
	if _, err := svc.Update(ctx, created.ID, task.UpdateRequest{Status: &blocked}); err != nil {
		t.Fatalf("block: %v", err)
	}
	second, err := svc.Update(ctx, created.ID, task.UpdateRequest{Status: &inProgress})
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if !second.StartedAt.Equal(startedAt) {
		t.Error("StartedAt must survive the blocked round-trip")
	}
}

func TestUpdatePartialPatch(t *testing.T) {
	svc, _ := newBoard()
	ctx := context.Background()

	created, _ := svc.Create(ctx, task.CreateRequest{
		Title: "patchable", Department: task.DeptMarketing, CreatedBy: "leader",
		Labels: []string{"campaign"},
	})

	summary := "draft shipped"
	updated, err := svc.Update(ctx, created.ID, task.UpdateRequest{ResultSummary: &summary})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ResultSummary != summary {
		t.Errorf("summary = %q, want %q", updated.ResultSummary, summary)
	}
	if updated.Status != task.StatusOpen {
		t.Error("untouched fields must survive a partial patch")
	}
	if len(updated.Labels) != 1 || updated.Labels[0] != "campaign" {
		t.Errorf("labels = %v, want [campaign]", updated.Labels)
	}
}

func TestBoardSummary(t *testing.T) {
	svc, store := newBoard()
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	store.SetClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	})

	for i := 0; i < 3; i++ {
		if _, err := svc.Create(ctx, task.CreateRequest{
			Title: "legal", Department: task.DeptLegal, CreatedBy: "leader",
		}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	claimed, _ := svc.Create(ctx, task.CreateRequest{
		Title: "ops", Department: task.DeptOperations, CreatedBy: "leader",
	})
	if _, err := svc.Claim(ctx, claimed.ID, "analyzer"); err != nil {
		t.Fatalf("claim: %v", err)
	}

	board, err := svc.Board(ctx)
	if err != nil {
		t.Fatalf("board: %v", err)
	}
	if board.Total != 4 {
		t.Errorf("total = %d, want 4", board.Total)
	}
	if board.ByStatus[task.StatusOpen] != 3 || board.ByStatus[task.StatusInProgress] != 1 {
		t.Errorf("by status = %v", board.ByStatus)
	}
	if got := board.ByDepartment[task.DeptLegal]; got.Total != 3 || got.Open != 3 {
		t.Errorf("legal counts = %+v", got)
	}
	if len(board.InProgress) != 1 || board.InProgress[0].ID != claimed.ID {
		t.Errorf("in progress = %v", board.InProgress)
	}
	if len(board.Recent) != 4 {
		t.Errorf("recent = %d, want 4", len(board.Recent))
	}
	// Newest first.
	if board.Recent[0].ID != claimed.ID {
		t.Error("recent must be ordered newest first")
	}
}

func TestListFilterValidation(t *testing.T) {
	svc, _ := newBoard()

	if _, err := svc.List(context.Background(), task.Filter{Status: "weird"}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
	if _, err := svc.List(context.Background(), task.Filter{Department: "weird"}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}
