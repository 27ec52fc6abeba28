package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/homelet/homelet/internal/model"
)

// ErrHomeNotFound indicates the home id has no record.
var ErrHomeNotFound = errors.New("home not found")

// CreateHome inserts a new home listing.
func (r *Repository) CreateHome(ctx context.Context, home *model.Home) error {
	query := `
		INSERT INTO homes (id, owner_id, title, description, image, guests, beds, baths, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		home.ID,
		home.OwnerID,
		home.Title,
		home.Description,
		home.Image,
		home.Guests,
		home.Beds,
		home.Baths,
		home.CreatedAt,
		home.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create home: %w", err)
	}

	return nil
}

// GetHomeByID retrieves a home by its ID.
func (r *Repository) GetHomeByID(ctx context.Context, id string) (*model.Home, error) {
	query := `
		SELECT id, owner_id, title, description, image, guests, beds, baths, created_at, updated_at
		FROM homes
		WHERE id = $1
	`

	home, err := scanHome(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrHomeNotFound
		}
		return nil, fmt.Errorf("failed to get home by ID: %w", err)
	}

	return home, nil
}

// ListHomes retrieves all homes, newest first.
func (r *Repository) ListHomes(ctx context.Context) ([]*model.Home, error) {
	query := `
		SELECT id, owner_id, title, description, image, guests, beds, baths, created_at, updated_at
		FROM homes
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list homes: %w", err)
	}
	defer rows.Close()

	return collectHomes(rows)
}

// ListHomesByOwner retrieves the owner's homes, newest first.
func (r *Repository) ListHomesByOwner(ctx context.Context, ownerID string) ([]*model.Home, error) {
	query := `
		SELECT id, owner_id, title, description, image, guests, beds, baths, created_at, updated_at
		FROM homes
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list homes by owner: %w", err)
	}
	defer rows.Close()

	return collectHomes(rows)
}

// ListHomeIDs enumerates all known home ids for static path generation.
func (r *Repository) ListHomeIDs(ctx context.Context) ([]string, error) {
	query := `SELECT id FROM homes ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list home ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan home id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating home ids: %w", err)
	}

	return ids, nil
}

// UpdateHome updates a home's editable fields.
func (r *Repository) UpdateHome(ctx context.Context, home *model.Home) error {
	query := `
		UPDATE homes
		SET title = $2, description = $3, image = $4, guests = $5, beds = $6, baths = $7, updated_at = $8
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		home.ID,
		home.Title,
		home.Description,
		home.Image,
		home.Guests,
		home.Beds,
		home.Baths,
		home.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update home: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrHomeNotFound
	}

	return nil
}

// DeleteHome removes a home record. The delete is hard: a second
// delete of the same id reports ErrHomeNotFound, never silent success.
func (r *Repository) DeleteHome(ctx context.Context, id string) error {
	query := `DELETE FROM homes WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete home: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrHomeNotFound
	}

	return nil
}

// scanHome scans a single row into a Home model.
func scanHome(row pgx.Row) (*model.Home, error) {
	var home model.Home
	err := row.Scan(
		&home.ID,
		&home.OwnerID,
		&home.Title,
		&home.Description,
		&home.Image,
		&home.Guests,
		&home.Beds,
		&home.Baths,
		&home.CreatedAt,
		&home.UpdatedAt,
	)
	return &home, err
}

// collectHomes drains rows into Home models.
func collectHomes(rows pgx.Rows) ([]*model.Home, error) {
	var homes []*model.Home
	for rows.Next() {
		home, err := scanHome(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan home: %w", err)
		}
		homes = append(homes, home)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating homes: %w", err)
	}

	return homes, nil
}
