// Package auth provides HTTP middleware for webhook secret and admin API key authentication.
package auth

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
)

const (
	// APIKeyHeader is the header carrying the admin API key
	APIKeyHeader = "X-API-Key"

	// WebhookSecretHeader is the header Telegram sets on webhook deliveries
	WebhookSecretHeader = "X-Telegram-Bot-Api-Secret-Token"
)

// WebhookSecret rejects requests whose secret token header does not match
// secret. An empty secret disables the check.
func WebhookSecret(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if secret == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !equal(r.Header.Get(WebhookSecretHeader), secret) {
				writeError(w, http.StatusUnauthorized, "invalid webhook secret")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AdminAPIKey requires the admin key in X-API-Key or as a bearer token.
// With an empty key every request is refused.
func AdminAPIKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key == "" {
				writeError(w, http.StatusForbidden, "admin API key not configured")
				return
			}

			apiKey := extractAPIKey(r)
			if apiKey == "" {
				writeError(w, http.StatusUnauthorized, "missing API key")
				return
			}
			if !equal(apiKey, key) {
				writeError(w, http.StatusForbidden, "invalid admin API key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// extractAPIKey extracts the API key from the request headers
func extractAPIKey(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get(APIKeyHeader)); v != "" {
		return v
	}
	if v, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
