package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/corpuslex/corpuslex/internal/auth/apikey"
	"github.com/corpuslex/corpuslex/internal/auth/ratelimit"
)

type apiKeyInfoCtxKey struct{}

// RateLimitAPIKey returns middleware that validates an X-Api-Key header
// against validator and enforces the key's token-bucket limit via
// limiter. Health and metrics endpoints are exempt. A nil validator
// disables auth entirely, letting search_server run without Postgres
// configured.
func RateLimitAPIKey(validator *apikey.Validator, limiter *ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if validator == nil || strings.HasPrefix(r.URL.Path, "/health") || r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			key := extractAPIKey(r)
			if key == "" {
				writeAuthError(w, http.StatusUnauthorized, "missing api key")
				return
			}

			info, err := validator.Validate(r.Context(), key)
			if err != nil {
				switch err {
				case apikey.ErrInvalidKey:
					writeAuthError(w, http.StatusUnauthorized, "invalid api key")
				case apikey.ErrExpiredKey:
					writeAuthError(w, http.StatusUnauthorized, "expired api key")
				default:
					writeAuthError(w, http.StatusInternalServerError, "authentication error")
				}
				return
			}

			if limiter != nil && !limiter.Allow(info.ID, info.RateLimit) {
				w.Header().Set("Retry-After", "60")
				writeAuthError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			ctx := context.WithValue(r.Context(), apiKeyInfoCtxKey{}, info)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetKeyInfo retrieves the validated KeyInfo from the request context.
func GetKeyInfo(ctx context.Context) *apikey.KeyInfo {
	info, _ := ctx.Value(apiKeyInfoCtxKey{}).(*apikey.KeyInfo)
	return info
}

func extractAPIKey(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if key := r.Header.Get("X-Api-Key"); key != "" {
		return key
	}
	return r.URL.Query().Get("api_key")
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":"` + message + `"}`))
}
