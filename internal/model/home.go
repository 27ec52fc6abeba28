package model

import "time"

// Home represents a rental home listing.
// Every home has exactly one owner, fixed at creation. There is no
// ownership transfer operation anywhere in the system.
type Home struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	Guests      int       `json:"guests"`
	Beds        int       `json:"beds"`
	Baths       int       `json:"baths"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HomePatch carries the editable subset of a home's fields.
// Nil pointers mean "leave unchanged".
type HomePatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Image       *string `json:"image,omitempty"`
	Guests      *int    `json:"guests,omitempty"`
	Beds        *int    `json:"beds,omitempty"`
	Baths       *int    `json:"baths,omitempty"`
}

// Apply copies the set fields of the patch onto the home and bumps
// UpdatedAt. OwnerID, ID and CreatedAt are never touched.
func (h *Home) Apply(patch HomePatch) {
	if patch.Title != nil {
		h.Title = *patch.Title
	}
	if patch.Description != nil {
		h.Description = *patch.Description
	}
	if patch.Image != nil {
		h.Image = *patch.Image
	}
	if patch.Guests != nil {
		h.Guests = *patch.Guests
	}
	if patch.Beds != nil {
		h.Beds = *patch.Beds
	}
	if patch.Baths != nil {
		h.Baths = *patch.Baths
	}
	h.UpdatedAt = time.Now().UTC()
}

// IsZero reports whether the patch would change nothing.
func (p HomePatch) IsZero() bool {
	return p.Title == nil && p.Description == nil && p.Image == nil &&
		p.Guests == nil && p.Beds == nil && p.Baths == nil
}
