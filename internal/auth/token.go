package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/swiftslot/swiftslot/internal/model"
)

const (
	// DefaultAccessTTL is the access token lifetime when none is configured.
	DefaultAccessTTL = 24 * time.Hour
	// RefreshTTL is the fixed refresh token lifetime.
	RefreshTTL = 7 * 24 * time.Hour
)

var (
	// ErrInvalidToken is returned for every token validation failure.
	// The cause is intentionally not exposed.
	ErrInvalidToken = errors.New("invalid token")
	// ErrMissingSecret indicates an empty signing secret.
	ErrMissingSecret = errors.New("token signing secret not provided")
	// ErrSharedSecret indicates access and refresh tokens would share a secret.
	ErrSharedSecret = errors.New("access and refresh secrets must differ")
)

// Claims is the payload of both access and refresh tokens.
type Claims struct {
	OrganizationID string `json:"organizationId"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and validates HS256 access/refresh token pairs.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	now           func() time.Time
}

// IssuerOption configures a TokenIssuer.
type IssuerOption func(*TokenIssuer)

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) IssuerOption {
	return func(t *TokenIssuer) {
		t.now = now
	}
}

// NewTokenIssuer creates an issuer. A non-positive accessTTL uses DefaultAccessTTL.
func NewTokenIssuer(accessSecret, refreshSecret string, accessTTL time.Duration, opts ...IssuerOption) (*TokenIssuer, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, ErrMissingSecret
	}
	if accessSecret == refreshSecret {
		return nil, ErrSharedSecret
	}
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}

	t := &TokenIssuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// AccessTTL returns the configured access token lifetime.
func (t *TokenIssuer) AccessTTL() time.Duration {
	return t.accessTTL
}

// Issue creates a new access/refresh pair for the subject.
func (t *TokenIssuer) Issue(subject, organizationID string) (*model.TokenPair, error) {
	if subject == "" || organizationID == "" {
		return nil, errors.New("issue token: subject and organization are required")
	}

	now := t.now()
	access, err := t.sign(subject, organizationID, now, t.accessTTL, t.accessSecret)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := t.sign(subject, organizationID, now, RefreshTTL, t.refreshSecret)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	return &model.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(t.accessTTL / time.Second),
	}, nil
}

// ValidateAccess verifies an access token and returns its claims.
func (t *TokenIssuer) ValidateAccess(token string) (*Claims, error) {
	return t.validate(token, t.accessSecret)
}

// ValidateRefresh verifies a refresh token and returns its claims.
func (t *TokenIssuer) ValidateRefresh(token string) (*Claims, error) {
	return t.validate(token, t.refreshSecret)
}

func (t *TokenIssuer) sign(subject, organizationID string, now time.Time, ttl time.Duration, secret []byte) (string, error) {
	claims := &Claims{
		OrganizationID: organizationID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (t *TokenIssuer) validate(token string, secret []byte) (*Claims, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(tok *jwt.Token) (any, error) {
		if tok.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("invalid signing method")
		}
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || claims.Subject == "" || claims.OrganizationID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
