// Package identity verifies bearer credentials against the external
// identity provider and exposes the authenticated user to request handlers.
package identity

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// ErrUnauthorized collapses every provider-side verification failure
// (expired, revoked, malformed, disabled, unverifiable) into one outcome.
var ErrUnauthorized = errors.New("invalid or expired token")

type contextKey int

const (
	userIDKey contextKey = iota
	tokenKey
)

// Verifier checks a bearer credential and returns the stable user ID.
type Verifier interface {
	VerifyToken(ctx context.Context, idToken string) (string, error)
}

// UserIDFromContext extracts the authenticated user ID from the request
// context.
func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(userIDKey).(string); ok {
		return v
	}
	return ""
}

// TokenFromContext extracts the raw bearer token from the request context.
// Profile operations replay it to the provider.
func TokenFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(tokenKey).(string); ok {
		return v
	}
	return ""
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Middleware authenticates every request with the given verifier. Missing or
// rejected credentials end the request with a 401.
func Middleware(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"missing authorization header"}`))
				return
			}

			uid, err := v.VerifyToken(r.Context(), token)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"invalid or expired token"}`))
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, uid)
			ctx = context.WithValue(ctx, tokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
