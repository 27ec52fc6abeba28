package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/homelet/homelet/internal/model"
)

// ErrSessionNotFound indicates no session record matched the fingerprint.
var ErrSessionNotFound = errors.New("session not found")

// CreateSession inserts a session record. In production this is the
// identity provider's side of the contract; tests use it to seed
// resolvable sessions.
func (r *Repository) CreateSession(ctx context.Context, session *model.Session) error {
	query := `
		INSERT INTO sessions (fingerprint, token_hash, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		session.Fingerprint,
		session.TokenHash,
		session.UserID,
		session.ExpiresAt,
		session.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// GetSessionByFingerprint retrieves a session record by token fingerprint.
func (r *Repository) GetSessionByFingerprint(ctx context.Context, fingerprint string) (*model.Session, error) {
	query := `
		SELECT fingerprint, token_hash, user_id, expires_at, created_at
		FROM sessions
		WHERE fingerprint = $1
	`

	var session model.Session
	err := r.pool.QueryRow(ctx, query, fingerprint).Scan(
		&session.Fingerprint,
		&session.TokenHash,
		&session.UserID,
		&session.ExpiresAt,
		&session.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return &session, nil
}

// DeleteSession removes a session record (sign-out path).
func (r *Repository) DeleteSession(ctx context.Context, fingerprint string) error {
	query := `DELETE FROM sessions WHERE fingerprint = $1`

	result, err := r.pool.Exec(ctx, query, fingerprint)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrSessionNotFound
	}

	return nil
}

// DeleteExpiredSessions removes all sessions past their expiry.
// Intended for a periodic cleanup job.
func (r *Repository) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	query := `DELETE FROM sessions WHERE expires_at < $1`

	result, err := r.pool.Exec(ctx, query, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	return result.RowsAffected(), nil
}
