// Package repotest holds behavior every repository backend must share.
package repotest

import (
	"context"
	"sync"
	"testing"

	"storefront-service/internal/model"
	"storefront-service/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises a backend. newRepos must return repositories over an empty database.
func Run(t *testing.T, newRepos func(t *testing.T) repository.Repositories) {
	t.Run("stores", func(t *testing.T) { testStores(t, newRepos(t)) })
	t.Run("users", func(t *testing.T) { testUsers(t, newRepos(t)) })
	t.Run("categories", func(t *testing.T) { testCategories(t, newRepos(t)) })
	t.Run("products", func(t *testing.T) { testProducts(t, newRepos(t)) })
	t.Run("concurrent pushes", func(t *testing.T) { testConcurrentPushes(t, newRepos(t)) })
	t.Run("store deletion cascades", func(t *testing.T) { testDeleteStoreCascade(t, newRepos(t)) })
}

// NewStore creates a store record with a fresh id
func NewStore(t *testing.T, repos repository.Repositories, name string) *model.Store {
	t.Helper()
	s := &model.Store{ID: uuid.NewString(), Name: name}
	require.NoError(t, repos.Stores.CreateStore(context.Background(), s))
	return s
}

func newCategory(storeID, name string) *model.Category {
	return &model.Category{ID: uuid.NewString(), StoreID: storeID, Name: name, Description: name + " aisle"}
}

func newProduct(name string) model.Product {
	return model.Product{ID: uuid.NewString(), Name: name, Price: 1, Stock: []string{}}
}

func testStores(t *testing.T, repos repository.Repositories) {
	ctx := context.Background()
	acme := NewStore(t, repos, "acme")

	err := repos.Stores.CreateStore(ctx, &model.Store{ID: uuid.NewString(), Name: "acme"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	found, err := repos.Stores.FindStoreByName(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, acme.ID, found.ID)
	assert.False(t, found.CreatedAt.IsZero())

	_, err = repos.Stores.FindStoreByName(ctx, "globex")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	deleted, err := repos.Stores.DeleteStore(ctx, "acme")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repos.Stores.DeleteStore(ctx, "acme")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func testUsers(t *testing.T, repos repository.Repositories) {
	ctx := context.Background()
	acme := NewStore(t, repos, "acme")
	globex := NewStore(t, repos, "globex")

	alice := &model.User{ID: uuid.NewString(), StoreID: acme.ID, LoginID: "alice", Email: "alice@example.com", Password: "x", Rank: model.RankCustomer}
	require.NoError(t, repos.Users.CreateUser(ctx, alice))

	sameLogin := &model.User{ID: uuid.NewString(), StoreID: acme.ID, LoginID: "alice", Email: "other@example.com", Password: "x", Rank: model.RankCustomer}
	assert.ErrorIs(t, repos.Users.CreateUser(ctx, sameLogin), repository.ErrDuplicate)

	sameEmail := &model.User{ID: uuid.NewString(), StoreID: acme.ID, LoginID: "alice2", Email: "alice@example.com", Password: "x", Rank: model.RankCustomer}
	assert.ErrorIs(t, repos.Users.CreateUser(ctx, sameEmail), repository.ErrDuplicate)

	// the same login and email are free in another store
	otherAlice := &model.User{ID: uuid.NewString(), StoreID: globex.ID, LoginID: "alice", Email: "alice@example.com", Password: "x", Rank: model.RankVip}
	require.NoError(t, repos.Users.CreateUser(ctx, otherAlice))

	found, err := repos.Users.FindUserByLoginID(ctx, acme.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, found.ID)
	assert.Equal(t, model.RankCustomer, found.Rank)

	found, err = repos.Users.FindUserByEmail(ctx, globex.ID, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, otherAlice.ID, found.ID)

	_, err = repos.Users.FindUserByID(ctx, globex.ID, alice.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	updated, err := repos.Users.UpdateUserRank(ctx, acme.ID, alice.ID, model.RankAdministrator)
	require.NoError(t, err)
	assert.True(t, updated)

	found, err = repos.Users.FindUserByID(ctx, acme.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RankAdministrator, found.Rank)

	updated, err = repos.Users.UpdateUserRank(ctx, globex.ID, alice.ID, model.RankCustomer)
	require.NoError(t, err)
	assert.False(t, updated)
}

func testCategories(t *testing.T, repos repository.Repositories) {
	ctx := context.Background()
	acme := NewStore(t, repos, "acme")
	globex := NewStore(t, repos, "globex")

	require.NoError(t, repos.Categories.CreateCategory(ctx, newCategory(acme.ID, "fruits")))
	assert.ErrorIs(t, repos.Categories.CreateCategory(ctx, newCategory(acme.ID, "fruits")), repository.ErrDuplicate)
	require.NoError(t, repos.Categories.CreateCategory(ctx, newCategory(globex.ID, "fruits")))
	require.NoError(t, repos.Categories.CreateCategory(ctx, newCategory(acme.ID, "bakery")))

	found, err := repos.Categories.FindCategory(ctx, acme.ID, "fruits")
	require.NoError(t, err)
	assert.Equal(t, acme.ID, found.StoreID)
	assert.NotNil(t, found.Products)
	assert.Empty(t, found.Products)

	list, err := repos.Categories.ListCategories(ctx, acme.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "bakery", list[0].Name)
	assert.Equal(t, "fruits", list[1].Name)

	deleted, err := repos.Categories.DeleteCategory(ctx, acme.ID, "fruits")
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = repos.Categories.FindCategory(ctx, acme.ID, "fruits")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	// the other store's category is untouched
	_, err = repos.Categories.FindCategory(ctx, globex.ID, "fruits")
	require.NoError(t, err)

	deleted, err = repos.Categories.DeleteCategory(ctx, acme.ID, "fruits")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func testProducts(t *testing.T, repos repository.Repositories) {
	ctx := context.Background()
	acme := NewStore(t, repos, "acme")
	globex := NewStore(t, repos, "globex")
	require.NoError(t, repos.Categories.CreateCategory(ctx, newCategory(acme.ID, "fruits")))

	apple := newProduct("apple")
	rate := 0.1
	apple.Price = 10
	apple.DiscountRate = &rate
	pear := newProduct("pear")

	ok, err := repos.Categories.PushProduct(ctx, acme.ID, "fruits", apple)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repos.Categories.PushProduct(ctx, acme.ID, "fruits", pear)
	require.NoError(t, err)
	assert.True(t, ok)

	// duplicate name, missing category and foreign store are all refused
	ok, err = repos.Categories.PushProduct(ctx, acme.ID, "fruits", newProduct("apple"))
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = repos.Categories.PushProduct(ctx, acme.ID, "vegetables", newProduct("leek"))
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = repos.Categories.PushProduct(ctx, globex.ID, "fruits", newProduct("plum"))
	require.NoError(t, err)
	assert.False(t, ok)

	c, err := repos.Categories.FindCategory(ctx, acme.ID, "fruits")
	require.NoError(t, err)
	require.Len(t, c.Products, 2)
	assert.Equal(t, "apple", c.Products[0].Name)
	assert.Equal(t, "pear", c.Products[1].Name)
	require.NotNil(t, c.Products[0].DiscountRate)
	assert.InDelta(t, 9.0, c.Products[0].FinalPrice(), 1e-9)

	for i := 0; i < 2; i++ {
		ok, err = repos.Categories.SetProductStock(ctx, acme.ID, "fruits", "apple", []string{"lot-1", "lot-2"})
		require.NoError(t, err)
		assert.True(t, ok)

		c, err = repos.Categories.FindCategory(ctx, acme.ID, "fruits")
		require.NoError(t, err)
		assert.Equal(t, []string{"lot-1", "lot-2"}, c.Products[0].Stock)
		assert.Empty(t, c.Products[1].Stock)
	}

	ok, err = repos.Categories.SetProductStock(ctx, acme.ID, "fruits", "plum", []string{"lot-9"})
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = repos.Categories.SetProductStock(ctx, globex.ID, "fruits", "apple", []string{"lot-9"})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repos.Categories.PullProduct(ctx, acme.ID, "fruits", apple.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repos.Categories.PullProduct(ctx, acme.ID, "fruits", apple.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = repos.Categories.PullProduct(ctx, globex.ID, "fruits", pear.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	c, err = repos.Categories.FindCategory(ctx, acme.ID, "fruits")
	require.NoError(t, err)
	require.Len(t, c.Products, 1)
	assert.Equal(t, pear.ID, c.Products[0].ID)
}

func testConcurrentPushes(t *testing.T, repos repository.Repositories) {
	ctx := context.Background()
	acme := NewStore(t, repos, "acme")
	require.NoError(t, repos.Categories.CreateCategory(ctx, newCategory(acme.ID, "fruits")))

	const n = 16
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name := "fruit-" + uuid.NewString()
			if _, err := repos.Categories.PushProduct(ctx, acme.ID, "fruits", newProduct(name)); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	c, err := repos.Categories.FindCategory(ctx, acme.ID, "fruits")
	require.NoError(t, err)
	assert.Len(t, c.Products, n)
}

func testDeleteStoreCascade(t *testing.T, repos repository.Repositories) {
	ctx := context.Background()
	acme := NewStore(t, repos, "acme")
	require.NoError(t, repos.Categories.CreateCategory(ctx, newCategory(acme.ID, "fruits")))
	user := &model.User{ID: uuid.NewString(), StoreID: acme.ID, LoginID: "bob", Email: "bob@example.com", Password: "x", Rank: model.RankCustomer}
	require.NoError(t, repos.Users.CreateUser(ctx, user))

	deleted, err := repos.Stores.DeleteStore(ctx, "acme")
	require.NoError(t, err)
	require.True(t, deleted)

	_, err = repos.Categories.FindCategory(ctx, acme.ID, "fruits")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = repos.Users.FindUserByID(ctx, acme.ID, user.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
