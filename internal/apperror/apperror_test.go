package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"conflict", Conflict("slug exists"), KindConflict},
		{"unauthorized", Unauthorized("Invalid credentials"), KindUnauthorized},
		{"forbidden", Forbidden(), KindForbidden},
		{"invalid", Invalid("email is required"), KindInvalid},
		{"not found", NotFound("Customer not found"), KindNotFound},
		{"wrapped", fmt.Errorf("register: %w", Conflict("slug exists")), KindConflict},
		{"plain", errors.New("boom"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorsIsMatchesByKind(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("login: %w", Unauthorized("Invalid credentials"))
	if !errors.Is(err, ErrUnauthorized) {
		t.Error("expected wrapped unauthorized to match ErrUnauthorized")
	}
	if errors.Is(err, ErrForbidden) {
		t.Error("unauthorized must not match ErrForbidden")
	}
}

func TestMessageOf_HidesInternalDetail(t *testing.T) {
	t.Parallel()

	if got := MessageOf(errors.New("pq: connection refused to 10.0.0.3")); got != "Internal server error" {
		t.Errorf("MessageOf() = %q", got)
	}
	if got := MessageOf(Forbidden()); got != "Access denied" {
		t.Errorf("MessageOf(Forbidden()) = %q", got)
	}
}
