// Package model defines domain entities for the application.
package model

import "time"

// User represents a registered account that can own home listings.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Identity is the authenticated principal resolved from a session.
// It is supplied entirely by the session layer; the core never creates
// or destroys identities.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Identity returns the user's identity view.
func (u *User) Identity() *Identity {
	return &Identity{ID: u.ID, Email: u.Email}
}
