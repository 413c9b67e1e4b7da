package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/swiftslot/swiftslot/internal/model"
)

// ProvisionTenant inserts an organization and its founding user in a single
// transaction. Either both rows are committed or neither is.
//
// A concurrent registration with the same slug or email fails on the unique
// constraint and returns ErrSlugExists or ErrEmailExists.
func (r *Repository) ProvisionTenant(ctx context.Context, org *model.Organization, user *model.User) error {
	err := pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO organizations (id, name, slug, email, timezone, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`,
			org.ID,
			org.Name,
			org.Slug,
			org.Email,
			org.Timezone,
			org.CreatedAt,
			org.UpdatedAt,
		)
		if err != nil {
			return mapPostgresError(err)
		}

		return insertUser(ctx, tx, user)
	})
	if err != nil {
		return fmt.Errorf("provision tenant: %w", err)
	}
	return nil
}
