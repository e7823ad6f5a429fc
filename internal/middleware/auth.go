package middleware

import (
	"crypto/subtle"
	"net/http"
)

// APIKey rejects requests whose key header does not match the shared secret.
// An empty expected key disables enforcement entirely; the open-by-default
// posture for local development.
func APIKey(header, expected string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if expected == "" {
				next.ServeHTTP(w, r)
				return
			}

			got := r.Header.Get(header)
			if subtle.ConstantTimeCompare([]byte(got), []byte(expected)) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error": "Unauthorized"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
