package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/swiftslot/swiftslot/internal/model"
)

// OrganizationSlugExists reports whether an organization already uses slug.
func (r *Repository) OrganizationSlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM organizations WHERE slug = $1)`, slug,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return exists, nil
}

// GetOrganizationByID retrieves an organization by its ID.
func (r *Repository) GetOrganizationByID(ctx context.Context, id string) (*model.Organization, error) {
	query := `
		SELECT id, name, slug, email, timezone, created_at, updated_at
		FROM organizations
		WHERE id = $1
	`

	org, err := scanOrganization(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to get organization by ID: %w", err)
	}
	return org, nil
}

// GetOrganizationBySlug retrieves an organization by its slug.
func (r *Repository) GetOrganizationBySlug(ctx context.Context, slug string) (*model.Organization, error) {
	query := `
		SELECT id, name, slug, email, timezone, created_at, updated_at
		FROM organizations
		WHERE slug = $1
	`

	org, err := scanOrganization(r.pool.QueryRow(ctx, query, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to get organization by slug: %w", err)
	}
	return org, nil
}

func scanOrganization(row pgx.Row) (*model.Organization, error) {
	var org model.Organization
	err := row.Scan(
		&org.ID,
		&org.Name,
		&org.Slug,
		&org.Email,
		&org.Timezone,
		&org.CreatedAt,
		&org.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &org, nil
}
