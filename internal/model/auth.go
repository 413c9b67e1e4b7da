package model

// AuthContext holds the authenticated identity of a request.
// It is injected into the request context by the auth middleware from the
// validated access token's claims.
type AuthContext struct {
	UserID         string
	OrganizationID string
	TokenID        string
}

// TokenPair is the access/refresh pair returned by every successful
// registration, login and refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"` // access token lifetime in seconds
}
