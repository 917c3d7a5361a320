package logger

import "context"

// contextKey is private so no other package can collide with our keys.
type contextKey struct{}

var requestIDKey = contextKey{}

// WithRequestID stashes a request ID on the context for log correlation.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID returns the request ID from the context, or "" when unset.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
