package model

import (
	"strings"
	"time"
)

// Customer is a CRM contact owned by one organization.
type Customer struct {
	ID               string    `json:"id"`
	OrganizationID   string    `json:"organizationId"`
	Email            string    `json:"email"`
	FirstName        string    `json:"firstName"`
	LastName         string    `json:"lastName"`
	Phone            string    `json:"phone,omitempty"`
	Tags             []string  `json:"tags"`
	Notes            string    `json:"notes,omitempty"`
	AppointmentCount int64     `json:"appointmentCount"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Matches reports whether the customer matches a case-insensitive search
// over first name, last name and email.
func (c *Customer) Matches(search string) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(c.FirstName), needle) ||
		strings.Contains(strings.ToLower(c.LastName), needle) ||
		strings.Contains(strings.ToLower(c.Email), needle)
}

// NormalizeTags trims, lowercases and de-duplicates tags, preserving order.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		t := strings.ToLower(strings.TrimSpace(tag))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
