//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/homelet/homelet/internal/model"
	"github.com/homelet/homelet/internal/testutil"
)

func newHomeTestEnv(t *testing.T) (context.Context, *Repository) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	repo, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.ResetAllSchemas(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset schemas: %v", err)
	}

	return ctx, repo
}

func mustCreateUser(t *testing.T, ctx context.Context, repo *Repository) *model.User {
	t.Helper()
	user := testutil.NewTestUser(t)
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return user
}

func TestIntegrationHomeRepository_CreateAndGet(t *testing.T) {
	ctx, repo := newHomeTestEnv(t)
	owner := mustCreateUser(t, ctx, repo)

	home := testutil.NewTestHome(t, owner.ID)
	if err := repo.CreateHome(ctx, home); err != nil {
		t.Fatalf("CreateHome failed: %v", err)
	}

	retrieved, err := repo.GetHomeByID(ctx, home.ID)
	if err != nil {
		t.Fatalf("GetHomeByID failed: %v", err)
	}

	if retrieved.OwnerID != owner.ID {
		t.Errorf("OwnerID mismatch: got %q, want %q", retrieved.OwnerID, owner.ID)
	}
	if retrieved.Title != home.Title {
		t.Errorf("Title mismatch: got %q, want %q", retrieved.Title, home.Title)
	}
	if retrieved.Guests != home.Guests {
		t.Errorf("Guests mismatch: got %d, want %d", retrieved.Guests, home.Guests)
	}
}

func TestIntegrationHomeRepository_GetNotFound(t *testing.T) {
	ctx, repo := newHomeTestEnv(t)

	_, err := repo.GetHomeByID(ctx, "nonexistent-home-id")
	if !errors.Is(err, ErrHomeNotFound) {
		t.Errorf("Expected ErrHomeNotFound, got: %v", err)
	}
}

func TestIntegrationHomeRepository_ListNewestFirst(t *testing.T) {
	ctx, repo := newHomeTestEnv(t)
	owner := mustCreateUser(t, ctx, repo)

	base := time.Now().UTC().Truncate(time.Millisecond)
	var ids []string
	for i := 0; i < 3; i++ {
		home := testutil.NewTestHome(t, owner.ID)
		home.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		home.UpdatedAt = home.CreatedAt
		if err := repo.CreateHome(ctx, home); err != nil {
			t.Fatalf("CreateHome failed: %v", err)
		}
		ids = append(ids, home.ID)
	}

	homes, err := repo.ListHomes(ctx)
	if err != nil {
		t.Fatalf("ListHomes failed: %v", err)
	}
	if len(homes) != 3 {
		t.Fatalf("got %d homes, want 3", len(homes))
	}

	// Newest first: creation order reversed.
	for i := 0; i < 3; i++ {
		want := ids[2-i]
		if homes[i].ID != want {
			t.Errorf("position %d: got %s, want %s", i, homes[i].ID, want)
		}
	}
}

func TestIntegrationHomeRepository_ListByOwner(t *testing.T) {
	ctx, repo := newHomeTestEnv(t)
	alice := mustCreateUser(t, ctx, repo)
	bob := mustCreateUser(t, ctx, repo)

	mine := testutil.NewTestHome(t, alice.ID)
	theirs := testutil.NewTestHome(t, bob.ID)
	for _, h := range []*model.Home{mine, theirs} {
		if err := repo.CreateHome(ctx, h); err != nil {
			t.Fatalf("CreateHome failed: %v", err)
		}
	}

	homes, err := repo.ListHomesByOwner(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListHomesByOwner failed: %v", err)
	}
	if len(homes) != 1 || homes[0].ID != mine.ID {
		t.Errorf("got %d homes, want only %s", len(homes), mine.ID)
	}
}

func TestIntegrationHomeRepository_ListHomeIDs(t *testing.T) {
	ctx, repo := newHomeTestEnv(t)
	owner := mustCreateUser(t, ctx, repo)

	for i := 0; i < 2; i++ {
		if err := repo.CreateHome(ctx, testutil.NewTestHome(t, owner.ID)); err != nil {
			t.Fatalf("CreateHome failed: %v", err)
		}
	}

	ids, err := repo.ListHomeIDs(ctx)
	if err != nil {
		t.Fatalf("ListHomeIDs failed: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("got %d ids, want 2", len(ids))
	}
}

func TestIntegrationHomeRepository_Update(t *testing.T) {
	ctx, repo := newHomeTestEnv(t)
	owner := mustCreateUser(t, ctx, repo)

	home := testutil.NewTestHome(t, owner.ID)
	if err := repo.CreateHome(ctx, home); err != nil {
		t.Fatalf("CreateHome failed: %v", err)
	}

	home.Title = "Updated Title"
	home.Guests = 8
	home.UpdatedAt = time.Now().UTC()
	if err := repo.UpdateHome(ctx, home); err != nil {
		t.Fatalf("UpdateHome failed: %v", err)
	}

	retrieved, err := repo.GetHomeByID(ctx, home.ID)
	if err != nil {
		t.Fatalf("GetHomeByID failed: %v", err)
	}
	if retrieved.Title != "Updated Title" {
		t.Errorf("Title = %q", retrieved.Title)
	}
	if retrieved.Guests != 8 {
		t.Errorf("Guests = %d, want 8", retrieved.Guests)
	}
}

func TestIntegrationHomeRepository_UpdateNotFound(t *testing.T) {
	ctx, repo := newHomeTestEnv(t)
	owner := mustCreateUser(t, ctx, repo)

	home := testutil.NewTestHome(t, owner.ID)
	if err := repo.UpdateHome(ctx, home); !errors.Is(err, ErrHomeNotFound) {
		t.Errorf("Expected ErrHomeNotFound, got: %v", err)
	}
}

func TestIntegrationHomeRepository_Delete(t *testing.T) {
	ctx, repo := newHomeTestEnv(t)
	owner := mustCreateUser(t, ctx, repo)

	home := testutil.NewTestHome(t, owner.ID)
	if err := repo.CreateHome(ctx, home); err != nil {
		t.Fatalf("CreateHome failed: %v", err)
	}

	if err := repo.DeleteHome(ctx, home.ID); err != nil {
		t.Fatalf("DeleteHome failed: %v", err)
	}

	if _, err := repo.GetHomeByID(ctx, home.ID); !errors.Is(err, ErrHomeNotFound) {
		t.Errorf("Expected ErrHomeNotFound after delete, got: %v", err)
	}

	// Second delete of the same id reports not found.
	if err := repo.DeleteHome(ctx, home.ID); !errors.Is(err, ErrHomeNotFound) {
		t.Errorf("Expected ErrHomeNotFound on second delete, got: %v", err)
	}
}
