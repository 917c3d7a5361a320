// Package middleware provides HTTP middleware for OpsPlane.
package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/Strob0t/OpsPlane/internal/logger"
)

const headerRequestID = "X-Request-ID"

// RequestID propagates the caller's X-Request-ID, minting one when absent.
// The ID rides the request context for log correlation and is echoed on the
// response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}

		ctx := logger.WithRequestID(r.Context(), id)
		w.Header().Set(headerRequestID, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
