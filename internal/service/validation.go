package service

import (
	"net/mail"
	"regexp"
	"strings"
	"time"
	_ "time/tzdata" // IANA zones without relying on the host's zoneinfo

	"github.com/swiftslot/swiftslot/internal/apperror"
	"github.com/swiftslot/swiftslot/internal/model"
)

// Validation limits.
const (
	MinPasswordLength = 8
	// MaxPasswordLength is bcrypt's input limit in bytes.
	MaxPasswordLength = 72
	MaxNameLength     = 100
	MaxEmailLength    = 254
)

// slugPattern allows 3-64 lowercase alphanumerics and inner hyphens.
var slugPattern = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]{1,62}[a-z0-9])$`)

// ReservedSlugs cannot be registered as organization slugs.
var ReservedSlugs = map[string]bool{
	"api":     true,
	"admin":   true,
	"auth":    true,
	"healthz": true,
	"readyz":  true,
	"metrics": true,
	"static":  true,
	"www":     true,
}

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateSlug checks an organization slug.
func ValidateSlug(slug string) error {
	if slug == "" {
		return apperror.Invalid("slug is required")
	}
	if !slugPattern.MatchString(slug) {
		return apperror.Invalid("slug must be 3-64 lowercase letters, digits or hyphens")
	}
	if ReservedSlugs[slug] {
		return apperror.Invalid("slug is reserved")
	}
	return nil
}

// ValidateEmail checks that email is a bare address.
func ValidateEmail(email string) error {
	if email == "" {
		return apperror.Invalid("email is required")
	}
	if len(email) > MaxEmailLength {
		return apperror.Invalid("email is too long")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return apperror.Invalid("email is invalid")
	}
	return nil
}

// ValidatePassword checks password length bounds.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return apperror.Invalid("password must be at least 8 characters")
	}
	if len(password) > MaxPasswordLength {
		return apperror.Invalid("password must be at most 72 bytes")
	}
	return nil
}

// NormalizeTimezone returns tz if it is a valid IANA zone, or UTC when empty.
func NormalizeTimezone(tz string) (string, error) {
	tz = strings.TrimSpace(tz)
	if tz == "" {
		return model.DefaultTimezone, nil
	}
	if _, err := time.LoadLocation(tz); err != nil || strings.EqualFold(tz, "local") {
		return "", apperror.Invalid("timezone is invalid")
	}
	return tz, nil
}

func validateName(field, value string, required bool) error {
	if required && strings.TrimSpace(value) == "" {
		return apperror.Invalid(field + " is required")
	}
	if len(value) > MaxNameLength {
		return apperror.Invalid(field + " is too long")
	}
	return nil
}
