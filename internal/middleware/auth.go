package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/bryanwahyu/labsight/internal/domain/identity"
	"github.com/bryanwahyu/labsight/internal/infra/httpserver/respond"
)

// SessionCookie carries the access token for browser clients without an
// Authorization header.
const SessionCookie = "sb-access-token"

// Authenticator resolves a bearer token; session.Gate implements it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (context.Context, *identity.Identity, error)
}

// BearerToken extracts the token from the Authorization header, falling
// back to the session cookie.
func BearerToken(r *http.Request) string {
	if auth := strings.TrimSpace(r.Header.Get("Authorization")); auth != "" {
		if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
			return strings.TrimSpace(auth[7:])
		}
		return ""
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return strings.TrimSpace(c.Value)
	}
	return ""
}

// RequireSession rejects requests without a valid credential. On success the
// request context carries the credential and the caller's identity.
func RequireSession(gate Authenticator, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, _, err := gate.Authenticate(r.Context(), BearerToken(r))
			if err != nil {
				respond.Error(w, log, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
