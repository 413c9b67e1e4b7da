package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const (
	testAccessSecret  = "access-secret-0123456789abcdefghijklmnop"
	testRefreshSecret = "refresh-secret-0123456789abcdefghijklmno"
)

func newTestIssuer(t *testing.T, opts ...IssuerOption) *TokenIssuer {
	t.Helper()
	issuer, err := NewTokenIssuer(testAccessSecret, testRefreshSecret, 0, opts...)
	require.NoError(t, err)
	return issuer
}

func TestNewTokenIssuer(t *testing.T) {
	t.Run("empty access secret", func(t *testing.T) {
		_, err := NewTokenIssuer("", testRefreshSecret, time.Hour)
		require.ErrorIs(t, err, ErrMissingSecret)
	})

	t.Run("empty refresh secret", func(t *testing.T) {
		_, err := NewTokenIssuer(testAccessSecret, "", time.Hour)
		require.ErrorIs(t, err, ErrMissingSecret)
	})

	t.Run("identical secrets", func(t *testing.T) {
		_, err := NewTokenIssuer(testAccessSecret, testAccessSecret, time.Hour)
		require.ErrorIs(t, err, ErrSharedSecret)
	})

	t.Run("default ttl", func(t *testing.T) {
		issuer := newTestIssuer(t)
		require.Equal(t, DefaultAccessTTL, issuer.AccessTTL())
	})
}

func TestIssue_RoundTrip(t *testing.T) {
	issuer := newTestIssuer(t)

	pair, err := issuer.Issue("user-1", "org-1")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.NotEqual(t, pair.AccessToken, pair.RefreshToken)
	require.Equal(t, int64(86400), pair.ExpiresIn)

	access, err := issuer.ValidateAccess(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "user-1", access.Subject)
	require.Equal(t, "org-1", access.OrganizationID)
	require.NotEmpty(t, access.ID)

	refresh, err := issuer.ValidateRefresh(pair.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, "user-1", refresh.Subject)
	require.Equal(t, "org-1", refresh.OrganizationID)
	require.Equal(t, access.IssuedAt.Unix()+int64(RefreshTTL/time.Second), refresh.ExpiresAt.Unix())
}

func TestIssue_RequiresSubjectAndOrganization(t *testing.T) {
	issuer := newTestIssuer(t)

	_, err := issuer.Issue("", "org-1")
	require.Error(t, err)
	_, err = issuer.Issue("user-1", "")
	require.Error(t, err)
}

func TestValidate_SecretSeparation(t *testing.T) {
	issuer := newTestIssuer(t)
	pair, err := issuer.Issue("user-1", "org-1")
	require.NoError(t, err)

	_, err = issuer.ValidateRefresh(pair.AccessToken)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.ValidateAccess(pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_Expired(t *testing.T) {
	issued := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	now := issued
	issuer := newTestIssuer(t, WithClock(func() time.Time { return now }))

	pair, err := issuer.Issue("user-1", "org-1")
	require.NoError(t, err)

	now = issued.Add(DefaultAccessTTL + time.Minute)
	_, err = issuer.ValidateAccess(pair.AccessToken)
	require.ErrorIs(t, err, ErrInvalidToken)

	// Refresh is still within its 7 day window.
	_, err = issuer.ValidateRefresh(pair.RefreshToken)
	require.NoError(t, err)

	now = issued.Add(RefreshTTL + time.Minute)
	_, err = issuer.ValidateRefresh(pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_Rejects(t *testing.T) {
	issuer := newTestIssuer(t)
	now := time.Now()

	sign := func(method jwt.SigningMethod, key any, claims jwt.Claims) string {
		t.Helper()
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}

	valid := func() *Claims {
		return &Claims{
			OrganizationID: "org-1",
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "user-1",
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			},
		}
	}

	noOrg := valid()
	noOrg.OrganizationID = ""
	noSubject := valid()
	noSubject.Subject = ""
	noExpiry := valid()
	noExpiry.ExpiresAt = nil

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.token"},
		{"wrong secret", sign(jwt.SigningMethodHS256, []byte("some-other-secret-0123456789abcdef"), valid())},
		{"wrong algorithm", sign(jwt.SigningMethodHS512, []byte(testAccessSecret), valid())},
		{"unsigned", sign(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, valid())},
		{"missing organization", sign(jwt.SigningMethodHS256, []byte(testAccessSecret), noOrg)},
		{"missing subject", sign(jwt.SigningMethodHS256, []byte(testAccessSecret), noSubject)},
		{"missing expiry", sign(jwt.SigningMethodHS256, []byte(testAccessSecret), noExpiry)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := issuer.ValidateAccess(tt.token)
			require.ErrorIs(t, err, ErrInvalidToken)
			require.Nil(t, claims)
		})
	}
}

func TestIssue_RotationProducesNewPair(t *testing.T) {
	issuer := newTestIssuer(t)

	first, err := issuer.Issue("user-1", "org-1")
	require.NoError(t, err)
	second, err := issuer.Issue("user-1", "org-1")
	require.NoError(t, err)

	require.NotEqual(t, first.AccessToken, second.AccessToken)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)
}
