package repository

import (
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapPostgresError(t *testing.T) {
	t.Parallel()

	plain := errors.New("boom")

	tests := []struct {
		name   string
		err    error
		target error
	}{
		{"slug", &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "organizations_slug_key"}, ErrSlugExists},
		{"user email", &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_key"}, ErrEmailExists},
		{"customer email", &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "customers_organization_id_email_key"}, ErrCustomerEmailExists},
		{"plain error passes through", plain, plain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := mapPostgresError(tt.err); !errors.Is(got, tt.target) {
				t.Errorf("mapPostgresError() = %v, want %v", got, tt.target)
			}
		})
	}
}

func TestMapPostgresError_UnknownConstraintKeepsCause(t *testing.T) {
	t.Parallel()

	pgErr := &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "other_key"}
	got := mapPostgresError(pgErr)

	if errors.Is(got, ErrSlugExists) || errors.Is(got, ErrEmailExists) {
		t.Errorf("unexpected sentinel for unknown constraint: %v", got)
	}
	var target *pgconn.PgError
	if !errors.As(got, &target) {
		t.Error("expected wrapped PgError")
	}
}

func TestMapPostgresError_Nil(t *testing.T) {
	t.Parallel()
	if mapPostgresError(nil) != nil {
		t.Error("nil should map to nil")
	}
}

func TestEscapeLike(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"john", "john"},
		{"50%", `50\%`},
		{"a_b", `a\_b`},
		{`c:\path`, `c:\\path`},
	}
	for _, tt := range tests {
		if got := escapeLike(tt.in); got != tt.want {
			t.Errorf("escapeLike(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
