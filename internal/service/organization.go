package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/swiftslot/swiftslot/internal/apperror"
	"github.com/swiftslot/swiftslot/internal/cache"
	"github.com/swiftslot/swiftslot/internal/metrics"
	"github.com/swiftslot/swiftslot/internal/model"
	"github.com/swiftslot/swiftslot/internal/repository"
)

// OrganizationCache is a read-through cache for organization profiles.
// Implemented by cache.Cache.
type OrganizationCache interface {
	GetOrganization(ctx context.Context, id string) (*model.Organization, error)
	SetOrganization(ctx context.Context, org *model.Organization, ttl time.Duration) error
	IsNegativelyCached(ctx context.Context, id string) (bool, error)
	SetNegativeCache(ctx context.Context, id string) error
}

// OrganizationService reads the caller's organization and its members.
type OrganizationService struct {
	store   OrganizationStore
	cache   OrganizationCache
	ttl     time.Duration
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewOrganizationService creates a new OrganizationService. cache may be nil.
func NewOrganizationService(store OrganizationStore, orgCache OrganizationCache, ttl time.Duration, recorder metrics.Recorder, logger *slog.Logger) *OrganizationService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OrganizationService{
		store:   store,
		cache:   orgCache,
		ttl:     ttl,
		metrics: recorder,
		logger:  logger.With("component", "organization"),
	}
}

// GetOrganization returns the organization profile, cache first.
// Cache errors fall through to the store.
func (s *OrganizationService) GetOrganization(ctx context.Context, organizationID string) (*model.Organization, error) {
	if s.cache != nil {
		cached, err := s.cache.GetOrganization(ctx, organizationID)
		if err == nil {
			s.metrics.IncOrgCacheHit()
			return cached, nil
		}
		if errors.Is(err, cache.ErrCacheMiss) {
			s.metrics.IncOrgCacheMiss()
			if neg, _ := s.cache.IsNegativelyCached(ctx, organizationID); neg {
				return nil, apperror.NotFound("Organization not found")
			}
		} else {
			s.logger.Warn("organization cache read failed", slog.String("error", err.Error()))
		}
	}

	org, err := s.store.GetOrganizationByID(ctx, organizationID)
	if err != nil {
		if errors.Is(err, repository.ErrOrganizationNotFound) {
			if s.cache != nil {
				_ = s.cache.SetNegativeCache(ctx, organizationID)
			}
			return nil, apperror.NotFound("Organization not found")
		}
		return nil, fmt.Errorf("get organization: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetOrganization(ctx, org, s.ttl); err != nil {
			s.logger.Warn("organization cache backfill failed", slog.String("error", err.Error()))
		}
	}
	return org, nil
}

// ListUsers returns the members of the organization. Password digests are
// never serialized.
func (s *OrganizationService) ListUsers(ctx context.Context, organizationID string) ([]*model.User, error) {
	users, err := s.store.ListUsersByOrganization(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
