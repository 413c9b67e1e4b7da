package auth

import "errors"

// ErrTenantMismatch indicates a request for another organization's data.
var ErrTenantMismatch = errors.New("tenant mismatch")

// ResolveTenant decides which organization a request may act on.
// An empty requested id means the request names no tenant and is scoped to
// the caller's own organization. Any other value must equal the caller's.
func ResolveTenant(authenticatedOrgID, requestedOrgID string) (string, error) {
	if authenticatedOrgID == "" {
		return "", ErrTenantMismatch
	}
	if requestedOrgID != "" && requestedOrgID != authenticatedOrgID {
		return "", ErrTenantMismatch
	}
	return authenticatedOrgID, nil
}
