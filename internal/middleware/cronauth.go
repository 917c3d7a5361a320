package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// CronSecret returns middleware that validates the shared-secret bearer
// credential on scheduler-triggered endpoints. This is the only credential
// check in the core; everything else is authenticated upstream.
func CronSecret(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				http.Error(w, `{"error":"cron secret not configured"}`, http.StatusServiceUnavailable)
				return
			}

			got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
				http.Error(w, `{"error":"invalid cron credential"}`, http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
