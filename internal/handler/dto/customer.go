package dto

// CreateCustomerRequest represents the request body for creating a customer.
// OrganizationID is read only by the tenant boundary.
type CreateCustomerRequest struct {
	OrganizationID string   `json:"organizationId,omitempty"`
	Email          string   `json:"email"`
	FirstName      string   `json:"firstName"`
	LastName       string   `json:"lastName"`
	Phone          string   `json:"phone,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	Notes          string   `json:"notes,omitempty"`
}

// UpdateCustomerRequest represents a partial customer update.
type UpdateCustomerRequest struct {
	OrganizationID string    `json:"organizationId,omitempty"`
	Email          *string   `json:"email,omitempty"`
	FirstName      *string   `json:"firstName,omitempty"`
	LastName       *string   `json:"lastName,omitempty"`
	Phone          *string   `json:"phone,omitempty"`
	Tags           *[]string `json:"tags,omitempty"`
	Notes          *string   `json:"notes,omitempty"`
}
