// Package task defines the Task domain entity for the operations board.
package task

import (
	"encoding/json"
	"time"
)

// Status represents the current state of a task on the board.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusBlocked    Status = "blocked"
	StatusReview     Status = "review"
	StatusDone       Status = "done"
)

// Valid returns true if the status is a known value.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusBlocked, StatusReview, StatusDone:
		return true
	default:
		return false
	}
}

// Priority represents task urgency.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid returns true if the priority is a known value.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// Department is a fixed business-unit tag used for task routing.
type Department string

const (
	DeptLegal            Department = "legal"
	DeptDataEngineering  Department = "data-engineering"
	DeptQualityAssurance Department = "quality-assurance"
	DeptArchitecture     Department = "architecture"
	DeptFinance          Department = "finance"
	DeptOperations       Department = "operations"
	DeptSecurity         Department = "security"
	DeptStrategy         Department = "strategy"
	DeptMarketing        Department = "marketing"
)

// Departments lists every known department.
var Departments = []Department{
	DeptLegal, DeptDataEngineering, DeptQualityAssurance, DeptArchitecture,
	DeptFinance, DeptOperations, DeptSecurity, DeptStrategy, DeptMarketing,
}

// Valid returns true if the department is a known value.
func (d Department) Valid() bool {
	for _, known := range Departments {
		if d == known {
			return true
		}
	}
	return false
}

// Task represents a unit of work routed to a department and worked by an agent.
// Tasks are never physically deleted; done is terminal but retained for audit.
type Task struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Description   string          `json:"description,omitempty"`
	Department    Department      `json:"department"`
	Status        Status          `json:"status"`
	Priority      Priority        `json:"priority"`
	CreatedBy     string          `json:"created_by"`
	AssignedTo    string          `json:"assigned_to,omitempty"`
	ParentTaskID  string          `json:"parent_task_id,omitempty"`
	BlockedBy     []string        `json:"blocked_by,omitempty"`
	Labels        []string        `json:"labels,omitempty"`
	ResultSummary string          `json:"result_summary,omitempty"`
	ResultData    json.RawMessage `json:"result_data,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	StartedAt     *time.Time      `json:"started_at,omitempty"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
}

// CreateRequest holds the fields needed to create a new task.
// Title, Department and CreatedBy are required.
type CreateRequest struct {
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Department   Department `json:"department"`
	Priority     Priority   `json:"priority,omitempty"`
	CreatedBy    string     `json:"created_by"`
	AssignedTo   string     `json:"assigned_to,omitempty"`
	ParentTaskID string     `json:"parent_task_id,omitempty"`
	BlockedBy    []string   `json:"blocked_by,omitempty"`
	Labels       []string   `json:"labels,omitempty"`
}

// UpdateRequest is a partial field patch. Nil pointers leave the field
// untouched; transition legality is not enforced beyond the
// CompletedAt/StatusDone invariant.
type UpdateRequest struct {
	Status        *Status          `json:"status,omitempty"`
	AssignedTo    *string          `json:"assigned_to,omitempty"`
	ResultSummary *string          `json:"result_summary,omitempty"`
	ResultData    *json.RawMessage `json:"result_data,omitempty"`
	Labels        *[]string        `json:"labels,omitempty"`
}

// Filter narrows List results. Zero values mean "no constraint".
type Filter struct {
	Department Department
	Status     Status
	CreatedBy  string
	Limit      int
}

// DeptCounts holds per-department task counts for the board summary.
type DeptCounts struct {
	Total      int `json:"total"`
	Open       int `json:"open"`
	InProgress int `json:"in_progress"`
	Done       int `json:"done"`
}

// Board is the dashboard summary of the whole task board.
type Board struct {
	Total         int                       `json:"total"`
	ByStatus      map[Status]int            `json:"by_status"`
	ByDepartment  map[Department]DeptCounts `json:"by_department"`
	Recent        []Task                    `json:"recent"`
	InProgress    []Task                    `json:"in_progress"`
	ReviewPending []Task                    `json:"review_pending"`
}
