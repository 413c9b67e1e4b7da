package cache

import (
	"testing"
	"time"

	"github.com/swiftslot/swiftslot/internal/model"
)

func TestOrganizationFields_RoundTrip(t *testing.T) {
	t.Parallel()

	created := time.Date(2026, 1, 15, 12, 0, 0, 123456000, time.UTC)
	org := &model.Organization{
		ID:        "0190a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a5b",
		Name:      "Acme",
		Slug:      "acme",
		Email:     "admin@acme.test",
		Timezone:  "America/New_York",
		CreatedAt: created,
		UpdatedAt: created.Add(time.Hour),
	}

	raw := organizationFields(org)
	fields := make(map[string]string, len(raw))
	for k, v := range raw {
		fields[k] = v.(string)
	}

	got, err := organizationFromFields(fields)
	if err != nil {
		t.Fatalf("organizationFromFields failed: %v", err)
	}
	if got.ID != org.ID || got.Slug != org.Slug || got.Timezone != org.Timezone {
		t.Errorf("got %+v, want %+v", got, org)
	}
	if !got.CreatedAt.Equal(org.CreatedAt) || !got.UpdatedAt.Equal(org.UpdatedAt) {
		t.Errorf("timestamps not preserved: %v / %v", got.CreatedAt, got.UpdatedAt)
	}
}

func TestOrganizationFromFields_Corrupt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		fields map[string]string
	}{
		{"missing id", map[string]string{"name": "Acme"}},
		{"bad created_at", map[string]string{"id": "x", "created_at": "yesterday", "updated_at": "2026-01-01T00:00:00Z"}},
		{"bad updated_at", map[string]string{"id": "x", "created_at": "2026-01-01T00:00:00Z", "updated_at": ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := organizationFromFields(tt.fields); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestOrganizationKey(t *testing.T) {
	t.Parallel()

	if got := organizationKey("abc"); got != "org:abc" {
		t.Errorf("organizationKey() = %q", got)
	}
}
