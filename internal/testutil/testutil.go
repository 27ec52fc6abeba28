// Package testutil provides helpers for integration and unit tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/homelet/homelet/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 731731

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// schemaMigrations maps a schema name to its migration file prefix.
var schemaMigrations = map[string]string{
	"users":    "000001_users",
	"sessions": "000002_sessions",
	"homes":    "000003_homes",
}

// ResetSchema drops and recreates one schema from its migration files.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool, name string) error {
	prefix, ok := schemaMigrations[name]
	if !ok {
		return fmt.Errorf("unknown schema %q", name)
	}

	root, err := ProjectRoot()
	if err != nil {
		return err
	}

	downSQL, err := os.ReadFile(filepath.Join(root, "migrations", prefix+".down.sql"))
	if err != nil {
		return fmt.Errorf("read down migration: %w", err)
	}
	if _, err := pool.Exec(ctx, string(downSQL)); err != nil {
		return fmt.Errorf("apply down migration: %w", err)
	}

	upSQL, err := os.ReadFile(filepath.Join(root, "migrations", prefix+".up.sql"))
	if err != nil {
		return fmt.Errorf("read up migration: %w", err)
	}
	if _, err := pool.Exec(ctx, string(upSQL)); err != nil {
		return fmt.Errorf("apply up migration: %w", err)
	}

	return nil
}

// ResetAllSchemas rebuilds users, sessions and homes in dependency order.
func ResetAllSchemas(ctx context.Context, pool *pgxpool.Pool) error {
	// Down in reverse dependency order, up in forward order.
	for _, name := range []string{"homes", "sessions", "users"} {
		prefix := schemaMigrations[name]
		root, err := ProjectRoot()
		if err != nil {
			return err
		}
		downSQL, err := os.ReadFile(filepath.Join(root, "migrations", prefix+".down.sql"))
		if err != nil {
			return fmt.Errorf("read down migration: %w", err)
		}
		if _, err := pool.Exec(ctx, string(downSQL)); err != nil {
			return fmt.Errorf("apply down migration: %w", err)
		}
	}

	for _, name := range []string{"users", "sessions", "homes"} {
		prefix := schemaMigrations[name]
		root, err := ProjectRoot()
		if err != nil {
			return err
		}
		upSQL, err := os.ReadFile(filepath.Join(root, "migrations", prefix+".up.sql"))
		if err != nil {
			return fmt.Errorf("read up migration: %w", err)
		}
		if _, err := pool.Exec(ctx, string(upSQL)); err != nil {
			return fmt.Errorf("apply up migration: %w", err)
		}
	}

	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ProjectRoot returns the project root directory.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to resolve testutil path")
	}
	root := filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
	return root, nil
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestUser creates a test user with a unique email.
func NewTestUser(t testing.TB) *model.User {
	t.Helper()
	id := ulid.Make().String()
	return &model.User{
		ID:        id,
		Email:     fmt.Sprintf("user-%s@example.com", id),
		CreatedAt: time.Now().UTC(),
	}
}

// NewTestHome creates a test home owned by ownerID with sensible defaults.
func NewTestHome(t testing.TB, ownerID string) *model.Home {
	t.Helper()
	now := time.Now().UTC()
	return &model.Home{
		ID:          ulid.Make().String(),
		OwnerID:     ownerID,
		Title:       "Test Home",
		Description: "A cozy place",
		Image:       "https://example.com/home.jpg",
		Guests:      4,
		Beds:        2,
		Baths:       1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NewTestSession creates an unexpired session for userID.
func NewTestSession(t testing.TB, userID, fingerprint, tokenHash string) *model.Session {
	t.Helper()
	now := time.Now().UTC()
	return &model.Session{
		Fingerprint: fingerprint,
		TokenHash:   tokenHash,
		UserID:      userID,
		ExpiresAt:   now.Add(24 * time.Hour),
		CreatedAt:   now,
	}
}

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
