package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/swiftslot/swiftslot/internal/model"
)

// IdentityEventRepository provides database access for identity events.
type IdentityEventRepository struct {
	repo *Repository
}

// NewIdentityEventRepository creates a new IdentityEventRepository.
func NewIdentityEventRepository(repo *Repository) *IdentityEventRepository {
	return &IdentityEventRepository{repo: repo}
}

// BulkInsert inserts identity events with idempotency via ON CONFLICT DO NOTHING.
// Redelivered stream messages therefore never produce duplicate rows.
func (r *IdentityEventRepository) BulkInsert(ctx context.Context, events []*model.IdentityEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch := &pgx.Batch{}

	query := `
		INSERT INTO identity_events (
			id, event_id, type, organization_id, user_id, subject_hash, ip, occurred_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (event_id) DO NOTHING
	`

	for _, event := range events {
		batch.Queue(query,
			event.ID,
			event.EventID,
			string(event.Type),
			nullableString(event.OrganizationID),
			nullableString(event.UserID),
			nullableString(event.SubjectHash),
			nullableString(event.IP),
			event.OccurredAt,
		)
	}

	results := r.repo.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(events); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("batch insert event %d: %w", i, err)
		}
	}

	return nil
}

// ListByOrganization returns the most recent events of an organization.
func (r *IdentityEventRepository) ListByOrganization(ctx context.Context, organizationID string, limit int) ([]*model.IdentityEvent, error) {
	rows, err := r.repo.pool.Query(ctx, `
		SELECT id, event_id, type, COALESCE(organization_id::text, ''), COALESCE(user_id::text, ''),
		       COALESCE(subject_hash, ''), COALESCE(ip, ''), occurred_at, created_at
		FROM identity_events
		WHERE organization_id = $1
		ORDER BY occurred_at DESC, id DESC
		LIMIT $2
	`, organizationID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list identity events: %w", err)
	}
	defer rows.Close()

	events := make([]*model.IdentityEvent, 0)
	for rows.Next() {
		var (
			e         model.IdentityEvent
			eventType string
		)
		if err := rows.Scan(&e.ID, &e.EventID, &eventType, &e.OrganizationID, &e.UserID,
			&e.SubjectHash, &e.IP, &e.OccurredAt, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan identity event: %w", err)
		}
		e.Type = model.IdentityEventType(eventType)
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating identity events: %w", err)
	}
	return events, nil
}
