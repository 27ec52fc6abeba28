package model

import "time"

// Session is a server-side session record written by the external
// identity provider and consumed read-only by the session resolver.
// The raw token is never stored: Fingerprint is a SHA-256 lookup key
// and TokenHash is an Argon2id hash verified on resolution.
type Session struct {
	Fingerprint string    `json:"fingerprint"`
	TokenHash   string    `json:"-"`
	UserID      string    `json:"user_id"`
	ExpiresAt   time.Time `json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// IsExpired reports whether the session is past its expiry.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
