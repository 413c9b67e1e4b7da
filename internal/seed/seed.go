// Package seed creates the demo tenant used for local development.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/swiftslot/swiftslot/internal/auth"
	"github.com/swiftslot/swiftslot/internal/model"
	"github.com/swiftslot/swiftslot/internal/repository"
	"github.com/swiftslot/swiftslot/internal/service"
)

// Demo tenant identity.
const (
	DemoSlug     = "demo-salon"
	DemoName     = "Demo Salon"
	DemoEmail    = "demo@swiftslot.com"
	DemoTimezone = "America/New_York"
	AdminEmail   = "admin@demo.com"
	StaffEmail   = "staff@demo.com"
)

// Store is the persistence the seeder writes through.
type Store interface {
	service.IdentityStore
	GetOrganizationBySlug(ctx context.Context, slug string) (*model.Organization, error)
	CreateUser(ctx context.Context, user *model.User) error
	CreateCustomer(ctx context.Context, c *model.Customer) error
}

// Options carries the demo passwords. They have no defaults.
type Options struct {
	AdminPassword string
	StaffPassword string
}

// Result describes what the seeder did.
type Result struct {
	Organization *model.Organization
	Created      bool
	Customers    int
}

// Run creates the demo organization with an ADMIN and a STAFF user and two
// sample customers. It is a no-op when the demo organization already exists.
func Run(ctx context.Context, store Store, vault *auth.Vault, opts Options, logger *slog.Logger) (*Result, error) {
	if err := service.ValidatePassword(opts.AdminPassword); err != nil {
		return nil, fmt.Errorf("admin password: %w", err)
	}
	if err := service.ValidatePassword(opts.StaffPassword); err != nil {
		return nil, fmt.Errorf("staff password: %w", err)
	}

	existing, err := store.GetOrganizationBySlug(ctx, DemoSlug)
	switch {
	case err == nil:
		logger.Info("demo organization already exists", slog.String("organization_id", existing.ID))
		return &Result{Organization: existing}, nil
	case !errors.Is(err, repository.ErrOrganizationNotFound):
		return nil, fmt.Errorf("lookup demo organization: %w", err)
	}

	org, admin, err := service.NewTenantProvisioner(store, vault).Provision(ctx,
		service.OrganizationInput{
			Name:     DemoName,
			Slug:     DemoSlug,
			Email:    DemoEmail,
			Timezone: DemoTimezone,
		},
		service.AdminInput{
			Email:     AdminEmail,
			Password:  opts.AdminPassword,
			FirstName: "Admin",
			LastName:  "User",
		},
	)
	if err != nil {
		return nil, fmt.Errorf("provision demo organization: %w", err)
	}
	logger.Info("created demo organization",
		slog.String("organization_id", org.ID),
		slog.String("admin_id", admin.ID),
	)

	if err := createStaff(ctx, store, vault, org, opts.StaffPassword); err != nil {
		return nil, err
	}

	customers := demoCustomers(org.ID)
	for _, c := range customers {
		if err := store.CreateCustomer(ctx, c); err != nil {
			return nil, fmt.Errorf("create customer %s: %w", c.Email, err)
		}
	}
	logger.Info("created demo customers", slog.Int("count", len(customers)))

	return &Result{Organization: org, Created: true, Customers: len(customers)}, nil
}

func createStaff(ctx context.Context, store Store, vault *auth.Vault, org *model.Organization, password string) error {
	digest, err := vault.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash staff password: %w", err)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generate staff id: %w", err)
	}

	now := time.Now().UTC()
	staff := &model.User{
		ID:             id.String(),
		Email:          StaffEmail,
		PasswordHash:   digest,
		FirstName:      "Staff",
		LastName:       "Member",
		Role:           model.RoleStaff,
		OrganizationID: org.ID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := store.CreateUser(ctx, staff); err != nil {
		return fmt.Errorf("create staff user: %w", err)
	}
	return nil
}

func demoCustomers(organizationID string) []*model.Customer {
	now := time.Now().UTC()
	return []*model.Customer{
		{
			ID:             ulid.Make().String(),
			OrganizationID: organizationID,
			Email:          "john@example.com",
			FirstName:      "John",
			LastName:       "Doe",
			Phone:          "+1234567890",
			Tags:           []string{"vip", "regular"},
			CreatedAt:      now,
			UpdatedAt:      now,
		},
		{
			ID:             ulid.Make().String(),
			OrganizationID: organizationID,
			Email:          "jane@example.com",
			FirstName:      "Jane",
			LastName:       "Smith",
			Phone:          "+1987654321",
			Tags:           []string{"new"},
			CreatedAt:      now.Add(time.Millisecond),
			UpdatedAt:      now.Add(time.Millisecond),
		},
	}
}
