// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/homelet/homelet/internal/auth"
	"github.com/homelet/homelet/internal/metrics"
	"github.com/homelet/homelet/internal/model"
	"github.com/homelet/homelet/internal/repository"
)

// Service errors.
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("caller does not own this home")
	ErrHomeNotFound    = errors.New("home not found")
	ErrTitleRequired   = errors.New("title is required")
	ErrTitleTooLong    = errors.New("title exceeds maximum length")
	ErrInvalidImage    = errors.New("image must be an http(s) URL")
	ErrNegativeCount   = errors.New("guests, beds and baths must not be negative")
	ErrEmptyPatch      = errors.New("no fields to update")
)

const maxTitleLength = 200

// HomeStore is the listing store consumed by the service. Implemented
// by *repository.Repository; implementations signal a missing record
// with repository.ErrHomeNotFound.
type HomeStore interface {
	CreateHome(ctx context.Context, home *model.Home) error
	GetHomeByID(ctx context.Context, id string) (*model.Home, error)
	ListHomes(ctx context.Context) ([]*model.Home, error)
	ListHomesByOwner(ctx context.Context, ownerID string) ([]*model.Home, error)
	ListHomeIDs(ctx context.Context) ([]string, error)
	UpdateHome(ctx context.Context, home *model.Home) error
	DeleteHome(ctx context.Context, id string) error
}

// PrerenderInvalidator evicts a prerendered detail page after a
// mutation. May be nil when no prerender cache is wired.
type PrerenderInvalidator interface {
	Invalidate(ctx context.Context, id string)
}

// HomeService handles home listing business logic.
type HomeService struct {
	store     HomeStore
	prerender PrerenderInvalidator
	metrics   metrics.Recorder
	logger    *slog.Logger
}

// NewHomeService creates a new HomeService.
func NewHomeService(store HomeStore, prerender PrerenderInvalidator, recorder metrics.Recorder, logger *slog.Logger) *HomeService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HomeService{
		store:     store,
		prerender: prerender,
		metrics:   recorder,
		logger:    logger,
	}
}

// CreateHomeInput defines input for listing a new home.
type CreateHomeInput struct {
	Title       string
	Description string
	Image       string
	Guests      int
	Beds        int
	Baths       int
}

// CreateHome lists a new home owned by the calling identity.
func (s *HomeService) CreateHome(ctx context.Context, ident *model.Identity, input CreateHomeInput) (*model.Home, error) {
	if ident == nil {
		return nil, ErrUnauthenticated
	}

	if err := validateTitle(input.Title); err != nil {
		return nil, err
	}
	if err := validateImage(input.Image); err != nil {
		return nil, err
	}
	if input.Guests < 0 || input.Beds < 0 || input.Baths < 0 {
		return nil, ErrNegativeCount
	}

	now := time.Now().UTC()
	home := &model.Home{
		ID:          ulid.Make().String(),
		OwnerID:     ident.ID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Image:       input.Image,
		Guests:      input.Guests,
		Beds:        input.Beds,
		Baths:       input.Baths,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.CreateHome(ctx, home); err != nil {
		return nil, fmt.Errorf("failed to create home: %w", err)
	}

	s.metrics.IncHomeCreated()

	return home, nil
}

// GetHome retrieves a home by ID. Publicly accessible, no ownership check.
func (s *HomeService) GetHome(ctx context.Context, id string) (*model.Home, error) {
	home, err := s.store.GetHomeByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrHomeNotFound) {
			return nil, ErrHomeNotFound
		}
		return nil, err
	}

	return home, nil
}

// ListHomes retrieves the public feed of all homes, newest first.
func (s *HomeService) ListHomes(ctx context.Context) ([]*model.Home, error) {
	return s.store.ListHomes(ctx)
}

// ListOwnedHomes retrieves the calling identity's homes, newest first.
func (s *HomeService) ListOwnedHomes(ctx context.Context, ident *model.Identity) ([]*model.Home, error) {
	if ident == nil {
		return nil, ErrUnauthenticated
	}
	return s.store.ListHomesByOwner(ctx, ident.ID)
}

// GetHomeOwner returns the owner id of a home. This backs the UI
// affordance hint only; the authoritative check happens inside every
// mutation.
func (s *HomeService) GetHomeOwner(ctx context.Context, id string) (string, error) {
	home, err := s.GetHome(ctx, id)
	if err != nil {
		return "", err
	}
	return home.OwnerID, nil
}

// UpdateHome applies a patch to a home owned by the calling identity.
// The ownership check completes before the store write is issued, and
// runs here regardless of any earlier page-load check.
func (s *HomeService) UpdateHome(ctx context.Context, ident *model.Identity, id string, patch model.HomePatch) (*model.Home, error) {
	if ident == nil {
		return nil, ErrUnauthenticated
	}
	if patch.IsZero() {
		return nil, ErrEmptyPatch
	}

	home, err := s.store.GetHomeByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrHomeNotFound) {
			return nil, ErrHomeNotFound
		}
		return nil, err
	}

	if !auth.IsOwner(ident, home) {
		s.logger.Warn("update denied",
			"home_id", id,
			"user_id", ident.ID,
		)
		return nil, ErrForbidden
	}

	if patch.Title != nil {
		if err := validateTitle(*patch.Title); err != nil {
			return nil, err
		}
	}
	if patch.Image != nil {
		if err := validateImage(*patch.Image); err != nil {
			return nil, err
		}
	}
	if (patch.Guests != nil && *patch.Guests < 0) ||
		(patch.Beds != nil && *patch.Beds < 0) ||
		(patch.Baths != nil && *patch.Baths < 0) {
		return nil, ErrNegativeCount
	}

	home.Apply(patch)

	if err := s.store.UpdateHome(ctx, home); err != nil {
		if errors.Is(err, repository.ErrHomeNotFound) {
			return nil, ErrHomeNotFound
		}
		return nil, err
	}

	s.metrics.IncHomeUpdated()

	if s.prerender != nil {
		s.prerender.Invalidate(ctx, home.ID)
	}

	return home, nil
}

// DeleteHome removes a home owned by the calling identity. Deletes are
// not idempotent: a second delete of the same id reports ErrHomeNotFound.
func (s *HomeService) DeleteHome(ctx context.Context, ident *model.Identity, id string) error {
	if ident == nil {
		return ErrUnauthenticated
	}

	home, err := s.store.GetHomeByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrHomeNotFound) {
			return ErrHomeNotFound
		}
		return err
	}

	if !auth.IsOwner(ident, home) {
		s.logger.Warn("delete denied",
			"home_id", id,
			"user_id", ident.ID,
		)
		return ErrForbidden
	}

	if err := s.store.DeleteHome(ctx, id); err != nil {
		if errors.Is(err, repository.ErrHomeNotFound) {
			return ErrHomeNotFound
		}
		return err
	}

	s.metrics.IncHomeDeleted()

	if s.prerender != nil {
		s.prerender.Invalidate(ctx, id)
	}

	return nil
}

func validateTitle(title string) error {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return ErrTitleRequired
	}
	if len(trimmed) > maxTitleLength {
		return ErrTitleTooLong
	}
	return nil
}

func validateImage(image string) error {
	if image == "" {
		return nil
	}

	parsed, err := url.Parse(image)
	if err != nil {
		return ErrInvalidImage
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ErrInvalidImage
	}
	if parsed.Host == "" {
		return ErrInvalidImage
	}

	return nil
}
