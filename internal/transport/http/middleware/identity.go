package middleware

import (
	"context"
	"net/http"

	"github.com/omarwdev/feedhub/internal/auth"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity classifies every request as authenticated or anonymous and
// annotates the context with the result. It never rejects: read endpoints
// stay open to anonymous callers, and each write operation performs its own
// authorization check against the annotation.
func Identity(verifier *auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident := verifier.Verify(r.Header.Get("Authorization"))
			ctx := context.WithValue(r.Context(), identityKey, ident)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetIdentity extracts the trust decision from the request context. The zero
// value (anonymous) is returned when no middleware ran.
func GetIdentity(ctx context.Context) auth.Identity {
	ident, _ := ctx.Value(identityKey).(auth.Identity)
	return ident
}
