package http

import (
	"net/http"

	"github.com/Strob0t/OpsPlane/internal/domain/task"
)

// CreateTask handles POST /api/v1/tasks.
func (h *Handlers) CreateTask(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[task.CreateRequest](w, r)
	if !ok {
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	t, err := h.Board.Create(ctx, req)
	if err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// ListTasks handles GET /api/v1/tasks with optional department, status,
// created_by and limit query filters.
func (h *Handlers) ListTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := task.Filter{
		Department: task.Department(q.Get("department")),
		Status:     task.Status(q.Get("status")),
		CreatedBy:  q.Get("created_by"),
		Limit:      queryInt(r, "limit", 0),
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	tasks, err := h.Board.List(ctx, f)
	if err != nil {
		writeDomainError(w, err, "tasks not found")
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// GetTask handles GET /api/v1/tasks/{id}.
func (h *Handlers) GetTask(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	t, err := h.Board.Get(ctx, urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// UpdateTask handles PATCH /api/v1/tasks/{id}. Absent fields are untouched.
func (h *Handlers) UpdateTask(w http.ResponseWriter, r *http.Request) {
	patch, ok := readJSON[task.UpdateRequest](w, r)
	if !ok {
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	t, err := h.Board.Update(ctx, urlParam(r, "id"), patch)
	if err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

type claimRequest struct {
	AgentName string `json:"agent_name"`
}

// ClaimTask handles POST /api/v1/tasks/{id}/claim. Exactly one concurrent
// claimant wins; losers receive 409.
func (h *Handlers) ClaimTask(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[claimRequest](w, r)
	if !ok {
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	t, err := h.Board.Claim(ctx, urlParam(r, "id"), req.AgentName)
	if err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// GetBoard handles GET /api/v1/board.
func (h *Handlers) GetBoard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	board, err := h.Board.Board(ctx)
	if err != nil {
		writeDomainError(w, err, "board unavailable")
		return
	}
	writeJSON(w, http.StatusOK, board)
}
