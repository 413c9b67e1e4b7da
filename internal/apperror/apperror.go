// Package apperror defines the error kinds returned by service operations.
// The HTTP layer maps each kind to a status code; callers only ever observe
// the kind and a fixed message, never the underlying cause.
package apperror

import "errors"

// Kind classifies a service error.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalid
	KindNotFound
	KindConflict
	KindUnauthorized
	KindForbidden
)

// String returns the wire code for the kind.
func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "INVALID_REQUEST"
	case KindNotFound:
		return "NOT_FOUND"
	case KindConflict:
		return "CONFLICT"
	case KindUnauthorized:
		return "UNAUTHORIZED"
	case KindForbidden:
		return "FORBIDDEN"
	default:
		return "INTERNAL_ERROR"
	}
}

// Error is a classified service error.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Kind.String() + ": " + e.Message
}

// Is reports whether target is an *Error of the same kind, so that
// errors.Is(err, ErrConflict) matches any conflict.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Kind sentinels for use with errors.Is.
var (
	ErrInvalid      = &Error{Kind: KindInvalid, Message: "invalid request"}
	ErrNotFound     = &Error{Kind: KindNotFound, Message: "not found"}
	ErrConflict     = &Error{Kind: KindConflict, Message: "conflict"}
	ErrUnauthorized = &Error{Kind: KindUnauthorized, Message: "unauthorized"}
	ErrForbidden    = &Error{Kind: KindForbidden, Message: "Access denied"}
)

// Invalid returns a KindInvalid error.
func Invalid(msg string) error {
	return &Error{Kind: KindInvalid, Message: msg}
}

// NotFound returns a KindNotFound error.
func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// Conflict returns a KindConflict error.
func Conflict(msg string) error {
	return &Error{Kind: KindConflict, Message: msg}
}

// Unauthorized returns a KindUnauthorized error. It never carries a cause.
func Unauthorized(msg string) error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

// Forbidden returns the KindForbidden error. The message is fixed.
func Forbidden() error {
	return &Error{Kind: KindForbidden, Message: "Access denied"}
}

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the public message of err. Unclassified errors get a
// generic message so internal details are not leaked.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "Internal server error"
}
