package model

import "time"

// DefaultTimezone is used when an organization registers without one.
const DefaultTimezone = "UTC"

// Organization is a tenant. All tenant data is partitioned by its ID.
// The slug is globally unique and never changes after creation.
type Organization struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Email     string    `json:"email"`
	Timezone  string    `json:"timezone"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
