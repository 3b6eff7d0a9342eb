package service

import (
	"context"
	"errors"
	"testing"

	"storefront-service/internal/apperr"
	"storefront-service/internal/model"
	"storefront-service/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	f := newFixture(t)
	acme := f.store(t, "acme")
	globex := f.store(t, "globex")
	ctx := context.Background()

	reg := Registration{LoginID: "alice", Email: "Alice@Example.com", Password: "pw", ConfirmPassword: "pw"}
	user, token, err := f.accounts.Register(ctx, acme, reg)
	require.NoError(t, err)
	assert.Equal(t, model.RankCustomer, user.Rank)
	assert.Equal(t, acme.ID, user.StoreID)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEqual(t, "pw", user.Password)

	claims, err := f.tokens.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.PrincipalID())
	assert.Equal(t, acme.ID, claims.StoreID)

	tests := []struct {
		name     string
		reg      Registration
		sentinel error
		code     string
	}{
		{
			name:     "missing login id",
			reg:      Registration{Email: "x@example.com", Password: "pw", ConfirmPassword: "pw"},
			sentinel: apperr.ErrInvalidInput, code: apperr.EInvalid,
		},
		{
			name:     "malformed email",
			reg:      Registration{LoginID: "x", Email: "nope", Password: "pw", ConfirmPassword: "pw"},
			sentinel: apperr.ErrInvalidInput, code: apperr.EInvalid,
		},
		{
			name:     "confirmation mismatch",
			reg:      Registration{LoginID: "x", Email: "x@example.com", Password: "pw", ConfirmPassword: "wp"},
			sentinel: apperr.ErrPasswordMismatch, code: apperr.EInvalid,
		},
		{
			name:     "login id taken",
			reg:      Registration{LoginID: "alice", Email: "x@example.com", Password: "pw", ConfirmPassword: "pw"},
			sentinel: apperr.ErrDuplicateLoginID, code: apperr.EConflict,
		},
		{
			name:     "email taken",
			reg:      Registration{LoginID: "x", Email: "alice@example.com", Password: "pw", ConfirmPassword: "pw"},
			sentinel: apperr.ErrDuplicateEmail, code: apperr.EConflict,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := f.accounts.Register(ctx, acme, tt.reg)
			requireFailure(t, err, tt.sentinel, tt.code)
		})
	}

	// uniqueness is per store
	_, _, err = f.accounts.Register(ctx, globex, reg)
	require.NoError(t, err)
}

type failingHasher struct{}

func (failingHasher) Hash(string) (string, error)         { return "", errors.New("entropy exhausted") }
func (failingHasher) Verify(string, string) (bool, error) { return false, errors.New("entropy exhausted") }

func TestRegisterHashFailureIsInternal(t *testing.T) {
	f := newFixtureWith(t, memory.New().Repositories(), failingHasher{})
	acme := f.store(t, "acme")

	_, _, err := f.accounts.Register(context.Background(), acme,
		Registration{LoginID: "alice", Email: "alice@example.com", Password: "pw", ConfirmPassword: "pw"})
	require.Error(t, err)
	assert.Equal(t, apperr.EInternal, apperr.Code(err))
	assert.NotContains(t, apperr.Message(err), "entropy")
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	acme := f.store(t, "acme")
	globex := f.store(t, "globex")
	alice, _ := f.principal(t, acme, "alice", model.RankCustomer)
	ctx := context.Background()

	user, token, err := f.accounts.Login(ctx, acme, "alice", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, user.ID)

	principalID, err := f.gate.Authenticate(ctx, acme, token)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, principalID)

	_, _, wrongPassword := f.accounts.Login(ctx, acme, "alice", "letmein")
	requireFailure(t, wrongPassword, apperr.ErrInvalidCredentials, apperr.EUnauthorized)

	_, _, unknownUser := f.accounts.Login(ctx, acme, "mallory", "hunter22")
	requireFailure(t, unknownUser, apperr.ErrInvalidCredentials, apperr.EUnauthorized)
	assert.Equal(t, apperr.Message(wrongPassword), apperr.Message(unknownUser))

	// alice does not exist in globex
	_, _, err = f.accounts.Login(ctx, globex, "alice", "hunter22")
	requireFailure(t, err, apperr.ErrInvalidCredentials, apperr.EUnauthorized)

	_, _, err = f.accounts.Login(ctx, acme, "", "")
	requireFailure(t, err, apperr.ErrInvalidInput, apperr.EInvalid)
}

func TestSetRank(t *testing.T) {
	f := newFixture(t)
	acme := f.store(t, "acme")
	globex := f.store(t, "globex")
	alice, _ := f.principal(t, acme, "alice", model.RankCustomer)
	ctx := context.Background()

	user, err := f.accounts.SetRank(ctx, acme, alice.ID, model.RankVip)
	require.NoError(t, err)
	assert.Equal(t, model.RankVip, user.Rank)

	_, err = f.accounts.SetRank(ctx, acme, alice.ID, model.Rank(9))
	requireFailure(t, err, apperr.ErrInvalidInput, apperr.EInvalid)

	_, err = f.accounts.SetRank(ctx, globex, alice.ID, model.RankAdministrator)
	requireFailure(t, err, apperr.ErrUserNotFound, apperr.ENotFound)
}
