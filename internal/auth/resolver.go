package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/homelet/homelet/internal/model"
	"github.com/homelet/homelet/internal/repository"
)

// Resolver errors.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
	ErrInvalidToken    = errors.New("invalid session token")
)

// SessionSource provides session records and their users. Session
// records are written by the external identity provider; the resolver
// only reads them.
type SessionSource interface {
	GetSessionByFingerprint(ctx context.Context, fingerprint string) (*model.Session, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// IdentityCache caches resolved identities keyed by token fingerprint.
// GetIdentity returns (nil, nil) on a cache miss.
type IdentityCache interface {
	GetIdentity(ctx context.Context, fingerprint string) (*model.Identity, error)
	SetIdentity(ctx context.Context, fingerprint string, ident *model.Identity) error
}

// Resolver turns a session token into an authenticated Identity.
// Lookup is by SHA-256 fingerprint; the full token is verified against
// the stored Argon2id hash on every cache miss.
type Resolver struct {
	store  SessionSource
	cache  IdentityCache
	logger *slog.Logger
}

// NewResolver creates a session resolver.
func NewResolver(store SessionSource, cache IdentityCache, logger *slog.Logger) *Resolver {
	return &Resolver{
		store:  store,
		cache:  cache,
		logger: logger,
	}
}

// ResolveToken resolves a session token to an Identity.
// Returns ErrSessionNotFound, ErrSessionExpired or ErrInvalidToken when
// the token does not map to a live session.
func (r *Resolver) ResolveToken(ctx context.Context, token string) (*model.Identity, error) {
	fingerprint := Fingerprint(token)

	if r.cache != nil {
		ident, _ := r.cache.GetIdentity(ctx, fingerprint)
		if ident != nil {
			return ident, nil
		}
	}

	session, err := r.store.GetSessionByFingerprint(ctx, fingerprint)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("lookup session: %w", err)
	}

	if session.IsExpired() {
		return nil, ErrSessionExpired
	}

	match, err := VerifyToken(token, session.TokenHash)
	if err != nil || !match {
		// Fingerprint matched but the full token did not. Either a
		// truncated-hash collision or a forged token.
		return nil, ErrInvalidToken
	}

	user, err := r.store.GetUserByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("lookup session user: %w", err)
	}

	ident := user.Identity()

	if r.cache != nil {
		if err := r.cache.SetIdentity(ctx, fingerprint, ident); err != nil {
			r.logger.Warn("failed to cache identity", "error", err)
		}
	}

	return ident, nil
}
