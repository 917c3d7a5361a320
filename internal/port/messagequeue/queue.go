// Package messagequeue defines the message queue port (interface).
package messagequeue

import "context"

// Handler processes a message received from the queue.
type Handler func(ctx context.Context, subject string, data []byte) error

// Queue is the port interface for publishing and subscribing to messages.
type Queue interface {
	// Publish sends a message to the given subject.
	Publish(ctx context.Context, subject string, data []byte) error

	// Subscribe registers a handler for messages on the given subject.
	// The returned function cancels the subscription.
	Subscribe(ctx context.Context, subject string, handler Handler) (cancel func(), err error)

	// Close shuts down the queue connection.
	Close() error

	// IsConnected reports whether the queue is currently connected.
	IsConnected() bool
}

// Subject constants for the NATS subjects used by OpsPlane.
const (
	SubjectTaskCreated = "tasks.created" // board create → agent pickup
	SubjectTaskClaimed = "tasks.claimed" // claim won by an agent
	SubjectTaskStatus  = "tasks.status"  // any status change via update
	SubjectOpsAlert    = "ops.alerts"    // policy monitor fired an alert task
)
