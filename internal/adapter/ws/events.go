package ws

import (
	"context"
	"encoding/json"
	"log/slog"
)

// Event type constants for WebSocket messages.
const (
	EventTaskCreated = "task.created"
	EventTaskClaimed = "task.claimed"
	EventTaskStatus  = "task.status"
	EventOpsAlert    = "ops.alert"
)

// TaskEvent is broadcast when a task is created, claimed, or updated.
type TaskEvent struct {
	TaskID     string `json:"task_id"`
	Department string `json:"department"`
	Status     string `json:"status"`
	AssignedTo string `json:"assigned_to,omitempty"`
}

// AlertEvent is broadcast when the policy monitor fires an alert.
type AlertEvent struct {
	Policy string `json:"policy"`
	Alert  string `json:"alert"`
	TaskID string `json:"task_id"`
}

// BroadcastEvent marshals a typed event and broadcasts it.
func (h *Hub) BroadcastEvent(ctx context.Context, eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal ws event payload", "type", eventType, "error", err)
		return
	}

	h.Broadcast(ctx, Message{
		Type:    eventType,
		Payload: json.RawMessage(data),
	})
}
