package auth

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/homelet/homelet/internal/model"
	"github.com/homelet/homelet/internal/repository"
)

type stubSessionSource struct {
	sessions map[string]*model.Session
	users    map[string]*model.User
}

func (s *stubSessionSource) GetSessionByFingerprint(_ context.Context, fingerprint string) (*model.Session, error) {
	sess, ok := s.sessions[fingerprint]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	return sess, nil
}

func (s *stubSessionSource) GetUserByID(_ context.Context, id string) (*model.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

type memIdentityCache struct {
	idents map[string]*model.Identity
	sets   int
}

func (c *memIdentityCache) GetIdentity(_ context.Context, fingerprint string) (*model.Identity, error) {
	return c.idents[fingerprint], nil
}

func (c *memIdentityCache) SetIdentity(_ context.Context, fingerprint string, ident *model.Identity) error {
	if c.idents == nil {
		c.idents = make(map[string]*model.Identity)
	}
	c.idents[fingerprint] = ident
	c.sets++
	return nil
}

func newStubSession(t *testing.T, token, userID string, expiresAt time.Time) (*stubSessionSource, string) {
	t.Helper()

	hash, err := HashToken(token)
	if err != nil {
		t.Fatalf("HashToken failed: %v", err)
	}

	fingerprint := Fingerprint(token)
	source := &stubSessionSource{
		sessions: map[string]*model.Session{
			fingerprint: {
				Fingerprint: fingerprint,
				TokenHash:   hash,
				UserID:      userID,
				ExpiresAt:   expiresAt,
				CreatedAt:   time.Now().UTC(),
			},
		},
		users: map[string]*model.User{
			userID: {ID: userID, Email: userID + "@example.com"},
		},
	}
	return source, fingerprint
}

func TestResolveToken(t *testing.T) {
	source, fingerprint := newStubSession(t, "tok-valid", "user-1", time.Now().Add(time.Hour))
	cache := &memIdentityCache{}
	r := NewResolver(source, cache, slog.Default())

	ident, err := r.ResolveToken(context.Background(), "tok-valid")
	if err != nil {
		t.Fatalf("ResolveToken failed: %v", err)
	}
	if ident.ID != "user-1" {
		t.Errorf("identity = %q, want user-1", ident.ID)
	}
	if cache.idents[fingerprint] == nil {
		t.Error("resolved identity not cached")
	}
}

func TestResolveTokenServesFromCache(t *testing.T) {
	// Empty store: a hit proves the cache short-circuited the lookup.
	source := &stubSessionSource{sessions: map[string]*model.Session{}, users: map[string]*model.User{}}
	cache := &memIdentityCache{idents: map[string]*model.Identity{
		Fingerprint("tok-cached"): {ID: "user-1"},
	}}
	r := NewResolver(source, cache, slog.Default())

	ident, err := r.ResolveToken(context.Background(), "tok-cached")
	if err != nil {
		t.Fatalf("ResolveToken failed: %v", err)
	}
	if ident.ID != "user-1" {
		t.Errorf("identity = %q, want user-1", ident.ID)
	}
}

func TestResolveTokenUnknown(t *testing.T) {
	source := &stubSessionSource{sessions: map[string]*model.Session{}, users: map[string]*model.User{}}
	r := NewResolver(source, nil, slog.Default())

	_, err := r.ResolveToken(context.Background(), "tok-unknown")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestResolveTokenExpired(t *testing.T) {
	source, _ := newStubSession(t, "tok-old", "user-1", time.Now().Add(-time.Minute))
	r := NewResolver(source, nil, slog.Default())

	_, err := r.ResolveToken(context.Background(), "tok-old")
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
}

func TestResolveTokenHashMismatch(t *testing.T) {
	source, fingerprint := newStubSession(t, "tok-real", "user-1", time.Now().Add(time.Hour))

	// Re-key the session under a forged token's fingerprint. The
	// stored hash still belongs to the real token, so verification
	// must fail.
	sess := source.sessions[fingerprint]
	delete(source.sessions, fingerprint)
	source.sessions[Fingerprint("tok-forged")] = sess

	r := NewResolver(source, nil, slog.Default())

	_, err := r.ResolveToken(context.Background(), "tok-forged")
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestResolveTokenMissingUser(t *testing.T) {
	source, _ := newStubSession(t, "tok-orphan", "user-gone", time.Now().Add(time.Hour))
	source.users = map[string]*model.User{}

	r := NewResolver(source, nil, slog.Default())

	_, err := r.ResolveToken(context.Background(), "tok-orphan")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}
