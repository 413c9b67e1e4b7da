package events

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/swiftslot/swiftslot/internal/model"
)

const (
	subjectHashLength = 32
	maxIPLength       = 64
)

// ValidatePayload validates identity event payload fields.
func ValidatePayload(payload Payload) error {
	if !slices.Contains(model.ValidIdentityEventTypes, model.IdentityEventType(payload.Type)) {
		return fmt.Errorf("unknown event type %q", payload.Type)
	}
	if payload.OccurredAt <= 0 {
		return fmt.Errorf("occurred_at must be set")
	}
	if payload.OrganizationID != "" && uuid.Validate(payload.OrganizationID) != nil {
		return fmt.Errorf("organization_id must be a UUID")
	}
	if payload.UserID != "" && uuid.Validate(payload.UserID) != nil {
		return fmt.Errorf("user_id must be a UUID")
	}
	if payload.SubjectHash != "" && (len(payload.SubjectHash) != subjectHashLength || !isHex(payload.SubjectHash)) {
		return fmt.Errorf("subject_hash must be %d hex chars", subjectHashLength)
	}
	if len(payload.IP) > maxIPLength {
		return fmt.Errorf("ip too long")
	}
	return nil
}

func isHex(value string) bool {
	for i := 0; i < len(value); i++ {
		ch := value[i]
		if (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F') {
			continue
		}
		return false
	}
	return true
}
