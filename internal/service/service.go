// Package service provides business logic for the application.
package service

import (
	"context"

	"github.com/swiftslot/swiftslot/internal/model"
	"github.com/swiftslot/swiftslot/internal/repository"
)

// IdentityStore is the persistence used by registration and login.
// Both repository.Repository and memory.Store implement it.
type IdentityStore interface {
	OrganizationSlugExists(ctx context.Context, slug string) (bool, error)
	ProvisionTenant(ctx context.Context, org *model.Organization, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// OrganizationStore reads organization profiles and members.
type OrganizationStore interface {
	GetOrganizationByID(ctx context.Context, id string) (*model.Organization, error)
	ListUsersByOrganization(ctx context.Context, organizationID string) ([]*model.User, error)
}

// CustomerStore is the tenant-scoped customer persistence.
type CustomerStore interface {
	ListCustomers(ctx context.Context, filter repository.CustomerFilter) ([]*model.Customer, error)
	GetCustomer(ctx context.Context, organizationID, id string) (*model.Customer, error)
	ListRecentAppointments(ctx context.Context, organizationID, customerID string, limit int) ([]model.Appointment, error)
	CreateCustomer(ctx context.Context, c *model.Customer) error
	UpdateCustomer(ctx context.Context, c *model.Customer) error
	DeleteCustomer(ctx context.Context, organizationID, id string) error
}

// EventSink receives identity events. Recording must not block or fail the caller.
type EventSink interface {
	Record(event *model.IdentityEvent)
}

// NoopSink discards identity events.
type NoopSink struct{}

// Record is a no-op.
func (NoopSink) Record(*model.IdentityEvent) {}
