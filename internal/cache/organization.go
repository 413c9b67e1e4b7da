package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/swiftslot/swiftslot/internal/model"
)

// Cache key prefixes and TTLs.
const (
	orgKeyPrefix      = "org:"
	negCacheKeySuffix = ":neg"

	// DefaultOrganizationTTL is the TTL for cached organization profiles.
	DefaultOrganizationTTL = 5 * time.Minute

	// NegativeCacheTTL is the TTL for negative cache entries.
	NegativeCacheTTL = 1 * time.Minute
)

// Common cache errors.
var (
	ErrCacheMiss = errors.New("cache miss")
)

func organizationKey(id string) string {
	return orgKeyPrefix + id
}

// organizationFields flattens an organization into hash fields.
func organizationFields(org *model.Organization) map[string]any {
	return map[string]any{
		"id":         org.ID,
		"name":       org.Name,
		"slug":       org.Slug,
		"email":      org.Email,
		"timezone":   org.Timezone,
		"created_at": org.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updated_at": org.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// organizationFromFields rebuilds an organization from hash fields.
func organizationFromFields(fields map[string]string) (*model.Organization, error) {
	if fields["id"] == "" {
		return nil, errors.New("cached organization missing id")
	}

	createdAt, err := time.Parse(time.RFC3339Nano, fields["created_at"])
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, fields["updated_at"])
	if err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	return &model.Organization{
		ID:        fields["id"],
		Name:      fields["name"],
		Slug:      fields["slug"],
		Email:     fields["email"],
		Timezone:  fields["timezone"],
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

// GetOrganization retrieves an organization profile from cache.
// Returns ErrCacheMiss if not found.
func (c *Cache) GetOrganization(ctx context.Context, id string) (*model.Organization, error) {
	result, err := c.client.HGetAll(ctx, organizationKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall failed: %w", err)
	}
	if len(result) == 0 {
		return nil, ErrCacheMiss
	}

	org, err := organizationFromFields(result)
	if err != nil {
		// Corrupt entry; drop it and treat as a miss.
		c.client.Del(ctx, organizationKey(id))
		return nil, ErrCacheMiss
	}
	return org, nil
}

// SetOrganization stores an organization profile in cache.
func (c *Cache) SetOrganization(ctx context.Context, org *model.Organization, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultOrganizationTTL
	}
	key := organizationKey(org.ID)

	pipe := c.client.Pipeline()
	pipe.HSet(ctx, key, organizationFields(org))
	pipe.Expire(ctx, key, ttl)
	pipe.Del(ctx, key+negCacheKeySuffix)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to cache organization: %w", err)
	}
	return nil
}

// IsNegativelyCached checks if an organization id is in the negative cache.
func (c *Cache) IsNegativelyCached(ctx context.Context, id string) (bool, error) {
	exists, err := c.client.Exists(ctx, organizationKey(id)+negCacheKeySuffix).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check negative cache: %w", err)
	}
	return exists > 0, nil
}

// SetNegativeCache marks an organization id as not found.
func (c *Cache) SetNegativeCache(ctx context.Context, id string) error {
	err := c.client.SetEx(ctx, organizationKey(id)+negCacheKeySuffix, "", NegativeCacheTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to set negative cache: %w", err)
	}
	return nil
}
