// Package dto defines request and response shapes for the HTTP API.
package dto

import (
	"time"

	"github.com/homelet/homelet/internal/model"
)

// CreateHomeRequest is the payload for listing a new home.
type CreateHomeRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	Guests      int    `json:"guests"`
	Beds        int    `json:"beds"`
	Baths       int    `json:"baths"`
}

// UpdateHomeRequest is the payload for editing a home. Absent fields
// are left untouched.
type UpdateHomeRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Image       *string `json:"image,omitempty"`
	Guests      *int    `json:"guests,omitempty"`
	Beds        *int    `json:"beds,omitempty"`
	Baths       *int    `json:"baths,omitempty"`
}

// Patch converts the request into a model patch.
func (r UpdateHomeRequest) Patch() model.HomePatch {
	return model.HomePatch{
		Title:       r.Title,
		Description: r.Description,
		Image:       r.Image,
		Guests:      r.Guests,
		Beds:        r.Beds,
		Baths:       r.Baths,
	}
}

// HomeResponse is the API representation of a home.
type HomeResponse struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Image       string    `json:"image,omitempty"`
	Guests      int       `json:"guests"`
	Beds        int       `json:"beds"`
	Baths       int       `json:"baths"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HomeListResponse wraps a list of homes.
type HomeListResponse struct {
	Homes []HomeResponse `json:"homes"`
	Count int            `json:"count"`
}

// OwnerResponse carries the ownership hint for a home.
type OwnerResponse struct {
	HomeID  string `json:"home_id"`
	OwnerID string `json:"owner_id"`
	IsOwner bool   `json:"is_owner"`
}

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// NewHomeResponse converts a model home into its API representation.
func NewHomeResponse(h *model.Home) HomeResponse {
	return HomeResponse{
		ID:          h.ID,
		OwnerID:     h.OwnerID,
		Title:       h.Title,
		Description: h.Description,
		Image:       h.Image,
		Guests:      h.Guests,
		Beds:        h.Beds,
		Baths:       h.Baths,
		CreatedAt:   h.CreatedAt,
		UpdatedAt:   h.UpdatedAt,
	}
}

// NewHomeListResponse converts model homes preserving order.
func NewHomeListResponse(homes []*model.Home) HomeListResponse {
	out := make([]HomeResponse, 0, len(homes))
	for _, h := range homes {
		out = append(out, NewHomeResponse(h))
	}
	return HomeListResponse{Homes: out, Count: len(out)}
}
