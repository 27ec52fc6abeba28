package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/homelet/homelet/internal/model"
	"github.com/homelet/homelet/internal/testutil"
)

type invalidationRecorder struct {
	mu  sync.Mutex
	ids []string
}

func (r *invalidationRecorder) Invalidate(_ context.Context, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, id)
}

func (r *invalidationRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ids)
}

func newTestService(store HomeStore) (*HomeService, *invalidationRecorder) {
	inv := &invalidationRecorder{}
	svc := NewHomeService(store, inv, nil, slog.Default())
	return svc, inv
}

func ident(id string) *model.Identity {
	return &model.Identity{ID: id, Email: id + "@example.com"}
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func TestCreateHome(t *testing.T) {
	store := testutil.NewMemStore()
	svc, _ := newTestService(store)

	home, err := svc.CreateHome(context.Background(), ident("user-1"), CreateHomeInput{
		Title:  "  Beach House  ",
		Image:  "https://example.com/pic.jpg",
		Guests: 4,
		Beds:   2,
		Baths:  1,
	})
	if err != nil {
		t.Fatalf("CreateHome failed: %v", err)
	}

	if home.ID == "" {
		t.Error("expected generated id")
	}
	if home.OwnerID != "user-1" {
		t.Errorf("owner = %q, want %q", home.OwnerID, "user-1")
	}
	if home.Title != "Beach House" {
		t.Errorf("title = %q, want trimmed", home.Title)
	}
	if store.Len() != 1 {
		t.Errorf("store has %d homes, want 1", store.Len())
	}
}

func TestCreateHomeRequiresIdentity(t *testing.T) {
	svc, _ := newTestService(testutil.NewMemStore())

	_, err := svc.CreateHome(context.Background(), nil, CreateHomeInput{Title: "Cabin"})
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestCreateHomeValidation(t *testing.T) {
	svc, _ := newTestService(testutil.NewMemStore())

	longTitle := make([]byte, maxTitleLength+1)
	for i := range longTitle {
		longTitle[i] = 'a'
	}

	tests := []struct {
		name    string
		input   CreateHomeInput
		wantErr error
	}{
		{"empty_title", CreateHomeInput{Title: ""}, ErrTitleRequired},
		{"whitespace_title", CreateHomeInput{Title: "   "}, ErrTitleRequired},
		{"title_too_long", CreateHomeInput{Title: string(longTitle)}, ErrTitleTooLong},
		{"bad_image_scheme", CreateHomeInput{Title: "Cabin", Image: "ftp://example.com/x.jpg"}, ErrInvalidImage},
		{"image_missing_host", CreateHomeInput{Title: "Cabin", Image: "https://"}, ErrInvalidImage},
		{"negative_guests", CreateHomeInput{Title: "Cabin", Guests: -1}, ErrNegativeCount},
		{"negative_beds", CreateHomeInput{Title: "Cabin", Beds: -2}, ErrNegativeCount},
		{"no_image_is_fine", CreateHomeInput{Title: "Cabin"}, nil},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := svc.CreateHome(context.Background(), ident("user-1"), test.input)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("expected %v, got %v", test.wantErr, err)
			}
		})
	}
}

func TestGetHomeNotFound(t *testing.T) {
	svc, _ := newTestService(testutil.NewMemStore())

	_, err := svc.GetHome(context.Background(), "missing")
	if !errors.Is(err, ErrHomeNotFound) {
		t.Fatalf("expected ErrHomeNotFound, got %v", err)
	}
}

func TestListHomesNewestFirst(t *testing.T) {
	store := testutil.NewMemStore()
	base := time.Now().UTC()

	old := testutil.NewTestHome(t, "user-1")
	old.ID = "01AAAAAAAAAAAAAAAAAAAAAAAA"
	old.CreatedAt = base.Add(-2 * time.Hour)
	mid := testutil.NewTestHome(t, "user-2")
	mid.ID = "01BBBBBBBBBBBBBBBBBBBBBBBB"
	mid.CreatedAt = base.Add(-time.Hour)
	newest := testutil.NewTestHome(t, "user-1")
	newest.ID = "01CCCCCCCCCCCCCCCCCCCCCCCC"
	newest.CreatedAt = base
	store.Seed(old, mid, newest)

	svc, _ := newTestService(store)

	homes, err := svc.ListHomes(context.Background())
	if err != nil {
		t.Fatalf("ListHomes failed: %v", err)
	}

	wantOrder := []string{newest.ID, mid.ID, old.ID}
	if len(homes) != len(wantOrder) {
		t.Fatalf("got %d homes, want %d", len(homes), len(wantOrder))
	}
	for i, want := range wantOrder {
		if homes[i].ID != want {
			t.Errorf("position %d: got %s, want %s", i, homes[i].ID, want)
		}
	}
}

func TestListOwnedHomesFiltersByOwner(t *testing.T) {
	store := testutil.NewMemStore()
	mine := testutil.NewTestHome(t, "user-1")
	theirs := testutil.NewTestHome(t, "user-2")
	store.Seed(mine, theirs)

	svc, _ := newTestService(store)

	homes, err := svc.ListOwnedHomes(context.Background(), ident("user-1"))
	if err != nil {
		t.Fatalf("ListOwnedHomes failed: %v", err)
	}
	if len(homes) != 1 || homes[0].ID != mine.ID {
		t.Errorf("got %d homes, want only %s", len(homes), mine.ID)
	}

	if _, err := svc.ListOwnedHomes(context.Background(), nil); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("anonymous: expected ErrUnauthenticated, got %v", err)
	}
}

func TestUpdateHome(t *testing.T) {
	store := testutil.NewMemStore()
	home := testutil.NewTestHome(t, "user-1")
	home.UpdatedAt = home.UpdatedAt.Add(-time.Hour)
	store.Seed(home)

	svc, inv := newTestService(store)

	updated, err := svc.UpdateHome(context.Background(), ident("user-1"), home.ID, model.HomePatch{
		Title:  strPtr("Renovated Cabin"),
		Guests: intPtr(6),
	})
	if err != nil {
		t.Fatalf("UpdateHome failed: %v", err)
	}

	if updated.Title != "Renovated Cabin" {
		t.Errorf("title = %q", updated.Title)
	}
	if updated.Guests != 6 {
		t.Errorf("guests = %d, want 6", updated.Guests)
	}
	if updated.OwnerID != "user-1" {
		t.Errorf("owner changed to %q", updated.OwnerID)
	}
	if !updated.UpdatedAt.After(home.UpdatedAt) {
		t.Error("UpdatedAt not bumped")
	}
	if inv.count() != 1 {
		t.Errorf("prerender invalidations = %d, want 1", inv.count())
	}
}

func TestUpdateHomeGates(t *testing.T) {
	store := testutil.NewMemStore()
	home := testutil.NewTestHome(t, "user-1")
	store.Seed(home)

	svc, inv := newTestService(store)
	patch := model.HomePatch{Title: strPtr("Hacked")}

	tests := []struct {
		name    string
		ident   *model.Identity
		id      string
		patch   model.HomePatch
		wantErr error
	}{
		{"anonymous", nil, home.ID, patch, ErrUnauthenticated},
		{"empty_patch", ident("user-1"), home.ID, model.HomePatch{}, ErrEmptyPatch},
		{"unknown_id", ident("user-1"), "missing", patch, ErrHomeNotFound},
		{"foreign_owner", ident("user-2"), home.ID, patch, ErrForbidden},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := svc.UpdateHome(context.Background(), test.ident, test.id, test.patch)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("expected %v, got %v", test.wantErr, err)
			}
		})
	}

	if inv.count() != 0 {
		t.Errorf("denied updates must not invalidate, got %d", inv.count())
	}

	got, err := svc.GetHome(context.Background(), home.ID)
	if err != nil {
		t.Fatalf("GetHome failed: %v", err)
	}
	if got.Title != home.Title {
		t.Errorf("denied update still changed title to %q", got.Title)
	}
}

func TestUpdateHomeEmailNeverGrantsOwnership(t *testing.T) {
	store := testutil.NewMemStore()
	home := testutil.NewTestHome(t, "user-1")
	store.Seed(home)

	svc, _ := newTestService(store)

	// Same email as the owner but a different stable id. Ownership is
	// decided on the id alone, so this caller is a stranger.
	impostor := &model.Identity{ID: "user-9", Email: "user-1@example.com"}

	_, err := svc.UpdateHome(context.Background(), impostor, home.ID, model.HomePatch{Title: strPtr("Mine Now")})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestUpdateHomePatchValidation(t *testing.T) {
	store := testutil.NewMemStore()
	home := testutil.NewTestHome(t, "user-1")
	store.Seed(home)

	svc, _ := newTestService(store)

	tests := []struct {
		name    string
		patch   model.HomePatch
		wantErr error
	}{
		{"blank_title", model.HomePatch{Title: strPtr("  ")}, ErrTitleRequired},
		{"bad_image", model.HomePatch{Image: strPtr("not a url")}, ErrInvalidImage},
		{"negative_baths", model.HomePatch{Baths: intPtr(-1)}, ErrNegativeCount},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := svc.UpdateHome(context.Background(), ident("user-1"), home.ID, test.patch)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("expected %v, got %v", test.wantErr, err)
			}
		})
	}
}

func TestDeleteHome(t *testing.T) {
	store := testutil.NewMemStore()
	home := testutil.NewTestHome(t, "user-1")
	store.Seed(home)

	svc, inv := newTestService(store)

	if err := svc.DeleteHome(context.Background(), ident("user-1"), home.ID); err != nil {
		t.Fatalf("DeleteHome failed: %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("store has %d homes after delete", store.Len())
	}
	if inv.count() != 1 {
		t.Errorf("prerender invalidations = %d, want 1", inv.count())
	}

	// Deletes are not idempotent: the record is gone, so a repeat
	// reports not found.
	err := svc.DeleteHome(context.Background(), ident("user-1"), home.ID)
	if !errors.Is(err, ErrHomeNotFound) {
		t.Fatalf("second delete: expected ErrHomeNotFound, got %v", err)
	}
}

func TestDeleteHomeGates(t *testing.T) {
	store := testutil.NewMemStore()
	home := testutil.NewTestHome(t, "user-1")
	store.Seed(home)

	svc, inv := newTestService(store)

	tests := []struct {
		name    string
		ident   *model.Identity
		id      string
		wantErr error
	}{
		{"anonymous", nil, home.ID, ErrUnauthenticated},
		{"unknown_id", ident("user-1"), "missing", ErrHomeNotFound},
		{"foreign_owner", ident("user-2"), home.ID, ErrForbidden},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := svc.DeleteHome(context.Background(), test.ident, test.id)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("expected %v, got %v", test.wantErr, err)
			}
		})
	}

	if store.Len() != 1 {
		t.Error("denied deletes must leave the record in place")
	}
	if inv.count() != 0 {
		t.Errorf("denied deletes must not invalidate, got %d", inv.count())
	}
}

func TestGetHomeOwner(t *testing.T) {
	store := testutil.NewMemStore()
	home := testutil.NewTestHome(t, "user-1")
	store.Seed(home)

	svc, _ := newTestService(store)

	owner, err := svc.GetHomeOwner(context.Background(), home.ID)
	if err != nil {
		t.Fatalf("GetHomeOwner failed: %v", err)
	}
	if owner != "user-1" {
		t.Errorf("owner = %q, want user-1", owner)
	}

	if _, err := svc.GetHomeOwner(context.Background(), "missing"); !errors.Is(err, ErrHomeNotFound) {
		t.Errorf("expected ErrHomeNotFound, got %v", err)
	}
}
