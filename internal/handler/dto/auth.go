package dto

import "github.com/swiftslot/swiftslot/internal/model"

// RegisterRequest represents the request body for registering an organization.
type RegisterRequest struct {
	OrganizationName string `json:"organizationName"`
	Slug             string `json:"organizationSlug"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	Timezone         string `json:"timezone,omitempty"`
}

// LoginRequest represents the request body for logging in.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest represents the request body for refreshing tokens.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// OrganizationSummary is the organization part of a registration response.
type OrganizationSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// UserSummary is the user part of auth responses.
type UserSummary struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Role      model.Role `json:"role,omitempty"`
}

// RegisterResponse is the data of a successful registration.
type RegisterResponse struct {
	Organization OrganizationSummary `json:"organization"`
	User         UserSummary         `json:"user"`
	Tokens       *model.TokenPair    `json:"tokens"`
}

// LoginResponse is the data of a successful login.
type LoginResponse struct {
	User   UserSummary      `json:"user"`
	Tokens *model.TokenPair `json:"tokens"`
}

// ToRegisterResponse converts a registration outcome to its DTO.
func ToRegisterResponse(org *model.Organization, user *model.User, tokens *model.TokenPair) *RegisterResponse {
	return &RegisterResponse{
		Organization: OrganizationSummary{ID: org.ID, Name: org.Name, Slug: org.Slug},
		User: UserSummary{
			ID:        user.ID,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
		},
		Tokens: tokens,
	}
}

// ToLoginResponse converts a login outcome to its DTO.
func ToLoginResponse(user *model.User, tokens *model.TokenPair) *LoginResponse {
	return &LoginResponse{
		User: UserSummary{
			ID:        user.ID,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Role:      user.Role,
		},
		Tokens: tokens,
	}
}
