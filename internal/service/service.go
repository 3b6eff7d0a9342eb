// Package service is the tenant-scoped core: it resolves the store a request is
// bound to, authorizes the caller inside that store and runs catalog and account
// operations. Every failure leaving this package is an *apperr.Error.
package service

import (
	"errors"
	"strings"

	"storefront-service/internal/apperr"
	"storefront-service/internal/repository"
)

// Credentials are the request attributes the core acts on. The transport extracts
// them once; nothing below it reads headers.
type Credentials struct {
	StoreName   string
	BearerToken string
	SecurityKey string
}

// Caller-facing messages for the authorization classes. One message per class so a
// response never tells which individual check failed.
const (
	msgUnauthorized = "Missing or invalid credentials"
	msgForbidden    = "You do not have permission to perform this action"
)

const maxNameLength = 100

func invalid(op, msg string) *apperr.Error {
	return apperr.New(apperr.EInvalid, op, apperr.ErrInvalidInput, msg)
}

// validName trims s and checks it fits a name column
func validName(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && len(s) <= maxNameLength
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}

func isDuplicate(err error) bool {
	return errors.Is(err, repository.ErrDuplicate)
}
