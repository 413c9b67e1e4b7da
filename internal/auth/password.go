// Package auth provides credential hashing, token issuance and tenant
// scoping for authenticated requests.
package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used for stored credentials.
const DefaultCost = 12

// ErrPasswordTooLong indicates the plaintext exceeds bcrypt's 72 byte input.
var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

// Vault hashes and verifies passwords with bcrypt.
type Vault struct {
	cost int

	dummyDigest []byte
}

// NewVault creates a vault with the given bcrypt cost.
// Costs outside bcrypt's range fall back to DefaultCost.
func NewVault(cost int) *Vault {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	// The dummy digest is built here so that the first unknown-email login
	// costs the same as every later one.
	dummy, _ := bcrypt.GenerateFromPassword([]byte("swiftslot-dummy-credential"), cost)
	return &Vault{cost: cost, dummyDigest: dummy}
}

// Cost returns the work factor used for new digests.
func (v *Vault) Cost() int {
	return v.cost
}

// HashPassword returns a salted bcrypt digest of the plaintext.
func (v *Vault) HashPassword(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), v.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrPasswordTooLong
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(digest), nil
}

// VerifyPassword reports whether plaintext matches digest.
// A malformed digest is treated as a mismatch.
func (v *Vault) VerifyPassword(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

// BurnCompare performs a comparison against a fixed digest of the vault's
// cost and discards the result. Used when there is no account to check so
// that the response takes as long as a real mismatch.
func (v *Vault) BurnCompare(plaintext string) {
	_ = bcrypt.CompareHashAndPassword(v.dummyDigest, []byte(plaintext))
}

// QuickHash returns a SHA256 hash of the input for cache keys and audit
// subjects. This is NOT for password storage.
func QuickHash(input string) string {
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:16]) // Use first 16 bytes (32 hex chars)
}
