package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/swiftslot/swiftslot/internal/apperror"
	"github.com/swiftslot/swiftslot/internal/auth"
	"github.com/swiftslot/swiftslot/internal/model"
	"github.com/swiftslot/swiftslot/internal/repository"
)

// Conflict messages returned by provisioning.
const (
	msgSlugExists  = "Organization slug already exists"
	msgEmailExists = "Email already registered"
)

// OrganizationInput describes a new tenant.
type OrganizationInput struct {
	Name     string
	Slug     string
	Email    string
	Timezone string
}

// AdminInput describes the founding administrator of a new tenant.
type AdminInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// TenantProvisioner creates a tenant and its first administrator atomically.
type TenantProvisioner struct {
	store IdentityStore
	vault *auth.Vault
	now   func() time.Time
}

// NewTenantProvisioner creates a new TenantProvisioner.
func NewTenantProvisioner(store IdentityStore, vault *auth.Vault) *TenantProvisioner {
	return &TenantProvisioner{
		store: store,
		vault: vault,
		now:   time.Now,
	}
}

// Provision creates the organization and an ADMIN user in one unit of work.
// Inputs are expected to be validated and normalized by the caller.
//
// The slug pre-check only gives an early answer. Under concurrency the
// store's unique constraint decides, and its sentinel is mapped to the same
// Conflict.
func (p *TenantProvisioner) Provision(ctx context.Context, orgIn OrganizationInput, adminIn AdminInput) (*model.Organization, *model.User, error) {
	exists, err := p.store.OrganizationSlugExists(ctx, orgIn.Slug)
	if err != nil {
		return nil, nil, fmt.Errorf("check slug: %w", err)
	}
	if exists {
		return nil, nil, apperror.Conflict(msgSlugExists)
	}

	digest, err := p.vault.HashPassword(adminIn.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, nil, apperror.Invalid("password must be at most 72 bytes")
		}
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	orgID, err := uuid.NewV7()
	if err != nil {
		return nil, nil, fmt.Errorf("generate organization id: %w", err)
	}
	userID, err := uuid.NewV7()
	if err != nil {
		return nil, nil, fmt.Errorf("generate user id: %w", err)
	}

	now := p.now().UTC()
	org := &model.Organization{
		ID:        orgID.String(),
		Name:      orgIn.Name,
		Slug:      orgIn.Slug,
		Email:     orgIn.Email,
		Timezone:  orgIn.Timezone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if org.Timezone == "" {
		org.Timezone = model.DefaultTimezone
	}

	user := &model.User{
		ID:             userID.String(),
		Email:          adminIn.Email,
		PasswordHash:   digest,
		FirstName:      adminIn.FirstName,
		LastName:       adminIn.LastName,
		Role:           model.RoleAdmin,
		OrganizationID: org.ID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := p.store.ProvisionTenant(ctx, org, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrSlugExists):
			return nil, nil, apperror.Conflict(msgSlugExists)
		case errors.Is(err, repository.ErrEmailExists):
			return nil, nil, apperror.Conflict(msgEmailExists)
		default:
			return nil, nil, fmt.Errorf("provision tenant: %w", err)
		}
	}

	return org, user, nil
}
