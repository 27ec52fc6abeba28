package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/homelet/homelet/internal/auth"
	"github.com/homelet/homelet/internal/model"
	"github.com/homelet/homelet/internal/repository"
	"github.com/homelet/homelet/internal/service"
)

// HomeProps is the payload for pages showing one home.
type HomeProps struct {
	Home *model.Home `json:"home"`
}

// HomeListProps is the payload for pages showing many homes.
type HomeListProps struct {
	Homes []*model.Home `json:"homes"`
}

// Renderer resolves page data per the strategy in PlanFor. Gated pages
// redirect to the landing page on any auth or ownership failure; they
// never produce an explicit error page.
type Renderer struct {
	store   service.HomeStore
	cache   *Cache
	landing string
	logger  *slog.Logger
}

// NewRenderer creates a Renderer. landing is the redirect destination
// for denied or unresolvable pages.
func NewRenderer(store service.HomeStore, cache *Cache, landing string, logger *slog.Logger) *Renderer {
	if landing == "" {
		landing = "/"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		store:   store,
		cache:   cache,
		landing: landing,
		logger:  logger,
	}
}

// redirect builds the landing-page redirect shared by every denial path.
// Using one shape everywhere is what keeps "missing" and "not yours"
// indistinguishable from outside.
func (r *Renderer) redirect() *Result {
	return &Result{Redirect: &Redirect{Destination: r.landing, Permanent: false}}
}

// IndexPage resolves the public feed. Server-side, no auth.
func (r *Renderer) IndexPage(ctx context.Context) (*Result, error) {
	homes, err := r.store.ListHomes(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve index page: %w", err)
	}
	return &Result{Props: HomeListProps{Homes: homes}}, nil
}

// OwnedHomesPage resolves the caller's listings page. Server-side;
// anonymous viewers are redirected to the landing page.
func (r *Renderer) OwnedHomesPage(ctx context.Context, ident *model.Identity) (*Result, error) {
	if ident == nil {
		return r.redirect(), nil
	}

	homes, err := r.store.ListHomesByOwner(ctx, ident.ID)
	if err != nil {
		return nil, fmt.Errorf("resolve owned homes page: %w", err)
	}
	return &Result{Props: HomeListProps{Homes: homes}}, nil
}

// HomeDetailPage resolves a detail page through the prerender cache.
// An id with no record resolves to a landing redirect, not a 404: a
// stale or guessed link bounces silently.
func (r *Renderer) HomeDetailPage(ctx context.Context, id string) (*Result, error) {
	home, found, cached, err := r.cache.Resolve(ctx, id, func(ctx context.Context) (*model.Home, bool, error) {
		h, err := r.store.GetHomeByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrHomeNotFound) {
				return nil, false, nil
			}
			return nil, false, err
		}
		return h, true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("resolve home detail page: %w", err)
	}

	if !found {
		return r.redirect(), nil
	}

	return &Result{Props: HomeProps{Home: home}, Fallback: !cached}, nil
}

// EditHomePage resolves the edit page against the live session.
// Resolution order: identity, then the caller's owned set, then the
// requested id within it. A missing id and someone else's id fall out
// at the same step with the same redirect.
func (r *Renderer) EditHomePage(ctx context.Context, ident *model.Identity, id string) (*Result, error) {
	if ident == nil {
		return r.redirect(), nil
	}

	owned, err := r.store.ListHomesByOwner(ctx, ident.ID)
	if err != nil {
		return nil, fmt.Errorf("resolve edit page: %w", err)
	}

	home := auth.FindOwned(owned, id)
	if home == nil {
		return r.redirect(), nil
	}

	return &Result{Props: HomeProps{Home: home}}, nil
}

// CreatePage resolves the new-listing page: an identity gate with no
// data fetch.
func (r *Renderer) CreatePage(ctx context.Context, ident *model.Identity) (*Result, error) {
	if ident == nil {
		return r.redirect(), nil
	}
	return &Result{Props: struct{}{}}, nil
}

// StaticPaths enumerates all known home ids for build-time path
// generation.
func (r *Renderer) StaticPaths(ctx context.Context) ([]string, error) {
	ids, err := r.store.ListHomeIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("enumerate static paths: %w", err)
	}
	return ids, nil
}

// Warm pre-renders every known id, the build-time half of
// static-with-fallback. Returns how many pages were built. Individual
// build failures are logged and skipped so one bad record cannot block
// startup.
func (r *Renderer) Warm(ctx context.Context) (int, error) {
	ids, err := r.StaticPaths(ctx)
	if err != nil {
		return 0, err
	}

	built := 0
	for _, id := range ids {
		if _, err := r.HomeDetailPage(ctx, id); err != nil {
			r.logger.Warn("prerender warm failed", "home_id", id, "error", err)
			continue
		}
		built++
	}

	r.logger.Info("prerender cache warmed", "paths", len(ids), "built", built)
	return built, nil
}
