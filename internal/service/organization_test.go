package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swiftslot/swiftslot/internal/apperror"
	"github.com/swiftslot/swiftslot/internal/cache"
	"github.com/swiftslot/swiftslot/internal/metrics"
	"github.com/swiftslot/swiftslot/internal/model"
)

type fakeOrgCache struct {
	mu       sync.Mutex
	orgs     map[string]*model.Organization
	negative map[string]bool
	getErr   error
}

func newFakeOrgCache() *fakeOrgCache {
	return &fakeOrgCache{
		orgs:     make(map[string]*model.Organization),
		negative: make(map[string]bool),
	}
}

func (c *fakeOrgCache) GetOrganization(ctx context.Context, id string) (*model.Organization, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	org, ok := c.orgs[id]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	out := *org
	return &out, nil
}

func (c *fakeOrgCache) SetOrganization(ctx context.Context, org *model.Organization, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := *org
	c.orgs[org.ID] = &out
	delete(c.negative, org.ID)
	return nil
}

func (c *fakeOrgCache) IsNegativelyCached(ctx context.Context, id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.negative[id], nil
}

func (c *fakeOrgCache) SetNegativeCache(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.negative[id] = true
	return nil
}

func TestGetOrganization_ReadThrough(t *testing.T) {
	f := newIdentityFixture(t)
	ctx := context.Background()

	reg, err := f.svc.Register(ctx, acmeRegistration())
	require.NoError(t, err)

	orgCache := newFakeOrgCache()
	recorder := metrics.NewInMemory()
	svc := NewOrganizationService(f.store, orgCache, time.Minute, recorder, nil)

	org, err := svc.GetOrganization(ctx, reg.Organization.ID)
	require.NoError(t, err)
	assert.Equal(t, "acme", org.Slug)

	org, err = svc.GetOrganization(ctx, reg.Organization.ID)
	require.NoError(t, err)
	assert.Equal(t, "acme", org.Slug)

	snap := recorder.Snapshot()
	assert.Equal(t, uint64(1), snap.OrgCacheMisses)
	assert.Equal(t, uint64(1), snap.OrgCacheHits)
}

func TestGetOrganization_NotFoundIsNegativelyCached(t *testing.T) {
	f := newIdentityFixture(t)
	orgCache := newFakeOrgCache()
	svc := NewOrganizationService(f.store, orgCache, time.Minute, nil, nil)
	ctx := context.Background()

	_, err := svc.GetOrganization(ctx, "0190c8d4-0000-7000-8000-000000000000")
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	assert.True(t, orgCache.negative["0190c8d4-0000-7000-8000-000000000000"])

	_, err = svc.GetOrganization(ctx, "0190c8d4-0000-7000-8000-000000000000")
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestGetOrganization_CacheFailureFallsThrough(t *testing.T) {
	f := newIdentityFixture(t)
	ctx := context.Background()

	reg, err := f.svc.Register(ctx, acmeRegistration())
	require.NoError(t, err)

	orgCache := newFakeOrgCache()
	orgCache.getErr = errors.New("redis down")
	svc := NewOrganizationService(f.store, orgCache, time.Minute, nil, nil)

	org, err := svc.GetOrganization(ctx, reg.Organization.ID)
	require.NoError(t, err)
	assert.Equal(t, reg.Organization.ID, org.ID)
}

func TestGetOrganization_NoCache(t *testing.T) {
	f := newIdentityFixture(t)
	ctx := context.Background()

	reg, err := f.svc.Register(ctx, acmeRegistration())
	require.NoError(t, err)

	svc := NewOrganizationService(f.store, nil, 0, nil, nil)
	org, err := svc.GetOrganization(ctx, reg.Organization.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Salon", org.Name)
}

func TestListUsers_OmitsPasswordDigest(t *testing.T) {
	f := newIdentityFixture(t)
	ctx := context.Background()

	reg, err := f.svc.Register(ctx, acmeRegistration())
	require.NoError(t, err)

	svc := NewOrganizationService(f.store, nil, 0, nil, nil)
	users, err := svc.ListUsers(ctx, reg.Organization.ID)
	require.NoError(t, err)
	require.Len(t, users, 1)

	body, err := json.Marshal(users)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "$2a$")
	assert.NotContains(t, string(body), "passwordHash")
}
