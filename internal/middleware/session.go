package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/homelet/homelet/internal/auth"
	"github.com/homelet/homelet/internal/model"
)

// TokenResolver resolves a session token to an Identity.
// Implemented by *auth.Resolver.
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (*model.Identity, error)
}

// SessionConfig holds configuration for the session middleware.
type SessionConfig struct {
	Logger     *slog.Logger
	Resolver   TokenResolver
	CookieName string
}

// Session returns middleware that resolves the caller's session token
// into an Identity on the request context. Resolution is best-effort:
// a missing or dead session leaves the request anonymous rather than
// rejecting it, because public pages and the public feed need no
// session. Handlers and page resolvers decide what anonymity means.
func Session(cfg SessionConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractSessionToken(r, cfg.CookieName)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			ident, err := cfg.Resolver.ResolveToken(r.Context(), token)
			if err != nil {
				cfg.Logger.Debug("session resolution failed",
					slog.String("reason", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				next.ServeHTTP(w, r)
				return
			}

			ctx := auth.ContextWithIdentity(r.Context(), ident)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractSessionToken pulls the session token from the request.
// Supports the session cookie and "Authorization: Bearer <token>".
func extractSessionToken(r *http.Request, cookieName string) string {
	if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	return ""
}
