package model

import "time"

// IdentityEventType names an identity event.
type IdentityEventType string

const (
	EventOrganizationRegistered IdentityEventType = "organization_registered"
	EventLoginSucceeded         IdentityEventType = "login_succeeded"
	EventLoginFailed            IdentityEventType = "login_failed"
	EventTokenRefreshed         IdentityEventType = "token_refreshed"
	EventRefreshRejected        IdentityEventType = "refresh_rejected"
	EventTenantAccessDenied     IdentityEventType = "tenant_access_denied"
)

// ValidIdentityEventTypes contains all valid event types.
var ValidIdentityEventTypes = []IdentityEventType{
	EventOrganizationRegistered,
	EventLoginSucceeded,
	EventLoginFailed,
	EventTokenRefreshed,
	EventRefreshRejected,
	EventTenantAccessDenied,
}

// IdentityEvent is a persisted audit record of an identity operation.
// It never contains credentials or tokens.
type IdentityEvent struct {
	ID      string `json:"id"`       // ULID (time-sortable)
	EventID string `json:"event_id"` // Idempotency key (Redis stream ID)

	Type           IdentityEventType `json:"type"`
	OrganizationID string            `json:"organization_id,omitempty"`
	UserID         string            `json:"user_id,omitempty"`

	// SubjectHash identifies the attempted account of a failed login
	// without storing the email.
	SubjectHash string `json:"subject_hash,omitempty"`
	IP          string `json:"ip,omitempty"`

	OccurredAt time.Time `json:"occurred_at"`
	CreatedAt  time.Time `json:"created_at"`
}
