package service

import (
	"context"
	"errors"
	"testing"

	"storefront-service/internal/apperr"
	"storefront-service/internal/model"
	"storefront-service/internal/repository"
	"storefront-service/internal/repository/memory"
	"storefront-service/pkg/jwtutil"
	"storefront-service/pkg/password"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecurityKey = "open-sesame"

type fixture struct {
	repos    repository.Repositories
	tokens   *jwtutil.JWTUtil
	resolver *Resolver
	gate     *Gate
	accounts *AccountService
	stores   *StoreService
	catalog  *Catalog
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, memory.New().Repositories(), password.NewBcryptHasher(bcrypt.MinCost))
}

func newFixtureWith(t *testing.T, repos repository.Repositories, hasher password.Hasher) *fixture {
	t.Helper()

	tokens := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 720})
	accounts := NewAccountService(repos.Users, hasher, tokens)
	return &fixture{
		repos:    repos,
		tokens:   tokens,
		resolver: NewResolver(repos.Stores),
		gate:     NewGate(tokens, repos.Users, testSecurityKey),
		accounts: accounts,
		stores:   NewStoreService(repos.Stores, accounts, tokens),
		catalog:  NewCatalog(repos.Categories),
	}
}

func (f *fixture) store(t *testing.T, name string) *model.Store {
	t.Helper()
	created, err := f.stores.CreateStore(context.Background(), name, nil)
	require.NoError(t, err)
	return created.Store
}

// principal registers a user in store, sets its rank and returns it with a token
func (f *fixture) principal(t *testing.T, store *model.Store, loginID string, rank model.Rank) (*model.User, string) {
	t.Helper()
	ctx := context.Background()

	user, token, err := f.accounts.Register(ctx, store, Registration{
		LoginID:         loginID,
		Email:           loginID + "@example.com",
		Password:        "hunter22",
		ConfirmPassword: "hunter22",
	})
	require.NoError(t, err)

	if rank != model.RankCustomer {
		user, err = f.accounts.SetRank(ctx, store, user.ID, rank)
		require.NoError(t, err)
	}
	return user, token
}

// requireFailure asserts err carries both the failure sentinel and the code
func requireFailure(t *testing.T, err error, sentinel error, code string) {
	t.Helper()
	require.Error(t, err)
	require.True(t, errors.Is(err, sentinel), "expected %v, got %v", sentinel, err)
	require.Equal(t, code, apperr.Code(err))
}
