package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/swiftslot/swiftslot/internal/model"
)

const customerColumns = `
	c.id, c.organization_id, c.email, c.first_name, c.last_name,
	COALESCE(c.phone, ''), c.tags, COALESCE(c.notes, ''),
	(SELECT COUNT(*) FROM appointments a WHERE a.customer_id = c.id) AS appointment_count,
	c.created_at, c.updated_at`

// CustomerFilter narrows a customer listing. OrganizationID is mandatory.
type CustomerFilter struct {
	OrganizationID string
	Search         string
	Limit          int
}

// ListCustomers returns an organization's customers, newest first.
// Search matches first name, last name or email case-insensitively.
func (r *Repository) ListCustomers(ctx context.Context, filter CustomerFilter) ([]*model.Customer, error) {
	if filter.OrganizationID == "" {
		return nil, errors.New("list customers: organization id is required")
	}

	query := `SELECT ` + customerColumns + ` FROM customers c WHERE c.organization_id = $1`
	args := []any{filter.OrganizationID}

	if filter.Search != "" {
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		query += fmt.Sprintf(
			` AND (c.first_name ILIKE $%[1]d OR c.last_name ILIKE $%[1]d OR c.email ILIKE $%[1]d)`,
			len(args),
		)
	}

	query += ` ORDER BY c.created_at DESC, c.id DESC`

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	customers := make([]*model.Customer, 0)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating customers: %w", err)
	}
	return customers, nil
}

// GetCustomer retrieves a customer owned by organizationID.
func (r *Repository) GetCustomer(ctx context.Context, organizationID, id string) (*model.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers c WHERE c.id = $1 AND c.organization_id = $2`

	c, err := scanCustomer(r.pool.QueryRow(ctx, query, id, organizationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return c, nil
}

// ListRecentAppointments returns a customer's most recent appointments by start time.
func (r *Repository) ListRecentAppointments(ctx context.Context, organizationID, customerID string, limit int) ([]model.Appointment, error) {
	query := `
		SELECT id, organization_id, customer_id, title, start_time, end_time, status
		FROM appointments
		WHERE organization_id = $1 AND customer_id = $2
		ORDER BY start_time DESC
		LIMIT $3
	`

	rows, err := r.pool.Query(ctx, query, organizationID, customerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	defer rows.Close()

	appointments := make([]model.Appointment, 0)
	for rows.Next() {
		var (
			a      model.Appointment
			status string
		)
		if err := rows.Scan(&a.ID, &a.OrganizationID, &a.CustomerID, &a.Title, &a.StartTime, &a.EndTime, &status); err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		a.Status = model.AppointmentStatus(status)
		appointments = append(appointments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating appointments: %w", err)
	}
	return appointments, nil
}

// CreateAppointment inserts an appointment. Used by seeding and tests.
func (r *Repository) CreateAppointment(ctx context.Context, a *model.Appointment) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO appointments (id, organization_id, customer_id, title, start_time, end_time, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, a.ID, a.OrganizationID, a.CustomerID, a.Title, a.StartTime, a.EndTime, string(a.Status))
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", mapPostgresError(err))
	}
	return nil
}

// CreateCustomer inserts a customer. Email must be unique within the organization.
func (r *Repository) CreateCustomer(ctx context.Context, c *model.Customer) error {
	query := `
		INSERT INTO customers (id, organization_id, email, first_name, last_name, phone, tags, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		c.ID,
		c.OrganizationID,
		c.Email,
		c.FirstName,
		c.LastName,
		nullableString(c.Phone),
		pq.Array(nonNilTags(c.Tags)),
		nullableString(c.Notes),
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		if mapped := mapPostgresError(err); errors.Is(mapped, ErrCustomerEmailExists) {
			return ErrCustomerEmailExists
		}
		return fmt.Errorf("failed to create customer: %w", err)
	}
	return nil
}

// UpdateCustomer overwrites the mutable fields of a customer owned by
// c.OrganizationID.
func (r *Repository) UpdateCustomer(ctx context.Context, c *model.Customer) error {
	query := `
		UPDATE customers
		SET email = $3, first_name = $4, last_name = $5, phone = $6, tags = $7, notes = $8, updated_at = $9
		WHERE id = $1 AND organization_id = $2
	`

	tag, err := r.pool.Exec(ctx, query,
		c.ID,
		c.OrganizationID,
		c.Email,
		c.FirstName,
		c.LastName,
		nullableString(c.Phone),
		pq.Array(nonNilTags(c.Tags)),
		nullableString(c.Notes),
		c.UpdatedAt,
	)
	if err != nil {
		if mapped := mapPostgresError(err); errors.Is(mapped, ErrCustomerEmailExists) {
			return ErrCustomerEmailExists
		}
		return fmt.Errorf("failed to update customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCustomerNotFound
	}
	return nil
}

// DeleteCustomer removes a customer owned by organizationID.
func (r *Repository) DeleteCustomer(ctx context.Context, organizationID, id string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM customers WHERE id = $1 AND organization_id = $2`, id, organizationID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCustomerNotFound
	}
	return nil
}

func scanCustomer(row pgx.Row) (*model.Customer, error) {
	var c model.Customer
	var tags []string
	err := row.Scan(
		&c.ID,
		&c.OrganizationID,
		&c.Email,
		&c.FirstName,
		&c.LastName,
		&c.Phone,
		pq.Array(&tags),
		&c.Notes,
		&c.AppointmentCount,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Tags = nonNilTags(tags)
	return &c, nil
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

// escapeLike escapes LIKE wildcards so search input matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
