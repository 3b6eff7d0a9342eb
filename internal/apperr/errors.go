// Package apperr carries the failure taxonomy every service error is mapped into
// before it reaches the transport.
package apperr

import (
	"errors"
	"strings"
)

// Error codes. Each one is a failure class the transport knows how to render.
const (
	EInternal     = "internal error"
	ENotFound     = "not found"
	EConflict     = "conflict"
	EInvalid      = "invalid"
	EForbidden    = "forbidden"
	EUnauthorized = "unauthorized"
)

// Specific failures. They travel in Error.Err so callers can match them with errors.Is.
var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrMissingTenantSelector = errors.New("missing tenant selector")
	ErrUnknownTenant         = errors.New("unknown tenant")
	ErrDuplicateStoreName    = errors.New("duplicate store name")

	ErrMissingAuthorization = errors.New("missing authorization")
	ErrInvalidToken         = errors.New("invalid token")
	ErrTenantMismatch       = errors.New("tenant mismatch")
	ErrPrincipalNotFound    = errors.New("principal not found")
	ErrInsufficientRank     = errors.New("insufficient rank")
	ErrMissingSecurityKey   = errors.New("missing security key")
	ErrInvalidSecurityKey   = errors.New("invalid security key")

	ErrDuplicateLoginID   = errors.New("duplicate login id")
	ErrDuplicateEmail     = errors.New("duplicate email")
	ErrPasswordMismatch   = errors.New("password confirmation mismatch")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")

	ErrDuplicateCategoryName   = errors.New("duplicate category name")
	ErrCategoryNotFound        = errors.New("category not found")
	ErrDuplicateProductName    = errors.New("duplicate product name")
	ErrProductNotFound         = errors.New("product not found")
	ErrInvalidProductReference = errors.New("invalid product reference")
)

// Error is a classified failure.
//
// Code selects how the transport renders it. Msg is safe to show to the caller.
// Op names where it happened and Err keeps the cause for logs and errors.Is.
type Error struct {
	Code string
	Msg  string
	Op   string
	Err  error
}

// New builds a classified error around a specific failure
func New(code, op string, cause error, msg string) *Error {
	return &Error{Code: code, Op: op, Err: cause, Msg: msg}
}

// Internal wraps an unexpected store or library failure. The cause is never rendered.
func Internal(op string, err error) *Error {
	return &Error{Code: EInternal, Op: op, Err: err}
}

// Error implements the error interface by writing out the recursive messages.
func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	switch {
	case e.Msg != "" && e.Err != nil:
		b.WriteString(e.Msg)
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	case e.Msg != "":
		b.WriteString(e.Msg)
	case e.Err != nil:
		b.WriteString(e.Err.Error())
	default:
		b.WriteString("<" + e.Code + ">")
	}
	return b.String()
}

// Unwrap exposes the cause
func (e *Error) Unwrap() error {
	return e.Err
}

// Code returns the code of the first classified error in the chain, or EInternal.
func Code(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if !errors.As(err, &e) {
		return EInternal
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Err != nil {
		return Code(e.Err)
	}
	return EInternal
}

// Message returns the caller-facing message. Internal failures always get a generic one.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if !errors.As(err, &e) || e.Code == EInternal {
		return "An internal error has occurred."
	}
	if e.Msg != "" {
		return e.Msg
	}
	return e.Code
}
