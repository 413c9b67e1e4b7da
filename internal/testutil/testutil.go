// Package testutil holds helpers shared by integration and e2e tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/swiftslot/swiftslot/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 420420

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// TruncateTenantData empties every tenant-owned table.
func TruncateTenantData(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `TRUNCATE identity_events, appointments, customers, users, organizations CASCADE`)
	if err != nil {
		return fmt.Errorf("truncate tenant data: %w", err)
	}
	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ProjectRoot returns the project root directory.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to resolve testutil path")
	}
	root := filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
	return root, nil
}

// ============================================================================
// Test Data Factories
// ============================================================================

// placeholderDigest is a well-formed bcrypt digest that matches no password
// used in tests.
const placeholderDigest = "$2a$04$placeholderplaceholderplaceholderplaceholderplaceho"

// NewTestTenant creates an organization and its ADMIN user with sensible
// defaults. Nothing is persisted.
func NewTestTenant(t testing.TB, slug, email string) (*model.Organization, *model.User) {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	org := &model.Organization{
		ID:        uuid.NewString(),
		Name:      "Org " + slug,
		Slug:      slug,
		Email:     email,
		Timezone:  model.DefaultTimezone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	user := &model.User{
		ID:             uuid.NewString(),
		Email:          email,
		PasswordHash:   placeholderDigest,
		FirstName:      "Admin",
		LastName:       "User",
		Role:           model.RoleAdmin,
		OrganizationID: org.ID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return org, user
}

// UniqueSlug generates a unique organization slug for tests.
func UniqueSlug(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

// UniqueEmail generates a unique email address for tests.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@example.test", prefix, time.Now().UnixNano())
}

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
