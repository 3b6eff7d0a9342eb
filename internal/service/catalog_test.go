package service

import (
	"context"
	"math"
	"testing"

	"storefront-service/internal/apperr"
	"storefront-service/internal/model"
	"storefront-service/internal/repository"
	"storefront-service/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

func TestCatalogScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acme := f.store(t, "acme")
	globex := f.store(t, "globex")

	_, err := f.catalog.CreateCategory(ctx, acme.ID, "fruits", "fresh")
	require.NoError(t, err)

	_, err = f.catalog.CreateCategory(ctx, acme.ID, "fruits", "again")
	requireFailure(t, err, apperr.ErrDuplicateCategoryName, apperr.EConflict)

	_, err = f.catalog.CreateCategory(ctx, globex.ID, "fruits", "")
	require.NoError(t, err)

	apple, err := f.catalog.AddProduct(ctx, acme.ID, "fruits", NewProduct{Name: "apple", Price: 10.0, DiscountRate: ptr(0.1)})
	require.NoError(t, err)
	assert.InDelta(t, 9.0, apple.FinalPrice(), 1e-9)
	assert.NotNil(t, apple.Stock)
	assert.Empty(t, apple.Stock)

	require.NoError(t, f.catalog.UpdateStock(ctx, acme.ID, "fruits", "apple", []string{"lot-1", "lot-2"}))

	got, err := f.catalog.GetProduct(ctx, acme.ID, "fruits", apple.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"lot-1", "lot-2"}, got.Stock)

	// globex's fruits never sees acme's apple
	_, err = f.catalog.GetProduct(ctx, globex.ID, "fruits", apple.ID)
	requireFailure(t, err, apperr.ErrProductNotFound, apperr.ENotFound)
}

func TestStockReplacementIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acme := f.store(t, "acme")
	_, err := f.catalog.CreateCategory(ctx, acme.ID, "fruits", "")
	require.NoError(t, err)
	apple, err := f.catalog.AddProduct(ctx, acme.ID, "fruits", NewProduct{Name: "apple", Price: 1})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		require.NoError(t, f.catalog.UpdateStock(ctx, acme.ID, "fruits", "apple", []string{"lot-1", "lot-2"}))
		got, err := f.catalog.GetProduct(ctx, acme.ID, "fruits", apple.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"lot-1", "lot-2"}, got.Stock)
	}

	require.NoError(t, f.catalog.UpdateStock(ctx, acme.ID, "fruits", "apple", nil))
	got, err := f.catalog.GetProduct(ctx, acme.ID, "fruits", apple.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.Stock)
	assert.Empty(t, got.Stock)

	err = f.catalog.UpdateStock(ctx, acme.ID, "fruits", "pear", []string{"lot-3"})
	requireFailure(t, err, apperr.ErrProductNotFound, apperr.ENotFound)

	err = f.catalog.UpdateStock(ctx, acme.ID, "vegetables", "apple", []string{"lot-3"})
	requireFailure(t, err, apperr.ErrCategoryNotFound, apperr.ENotFound)
}

func TestAddThenRemoveRestoresProductList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acme := f.store(t, "acme")
	_, err := f.catalog.CreateCategory(ctx, acme.ID, "fruits", "")
	require.NoError(t, err)
	for _, name := range []string{"apple", "banana", "cherry"} {
		_, err := f.catalog.AddProduct(ctx, acme.ID, "fruits", NewProduct{Name: name, Price: 1})
		require.NoError(t, err)
	}

	before, err := f.catalog.FindCategory(ctx, acme.ID, "fruits")
	require.NoError(t, err)

	durian, err := f.catalog.AddProduct(ctx, acme.ID, "fruits", NewProduct{Name: "durian", Price: 30})
	require.NoError(t, err)
	require.NoError(t, f.catalog.RemoveProduct(ctx, acme.ID, "fruits", durian.ID))

	after, err := f.catalog.FindCategory(ctx, acme.ID, "fruits")
	require.NoError(t, err)
	assert.Equal(t, before.Products, after.Products)
}

func TestRemoveProductFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acme := f.store(t, "acme")
	_, err := f.catalog.CreateCategory(ctx, acme.ID, "fruits", "")
	require.NoError(t, err)

	err = f.catalog.RemoveProduct(ctx, acme.ID, "fruits", "apple")
	requireFailure(t, err, apperr.ErrInvalidProductReference, apperr.EInvalid)

	err = f.catalog.RemoveProduct(ctx, acme.ID, "fruits", uuid.NewString())
	requireFailure(t, err, apperr.ErrProductNotFound, apperr.ENotFound)

	err = f.catalog.RemoveProduct(ctx, acme.ID, "vegetables", uuid.NewString())
	requireFailure(t, err, apperr.ErrCategoryNotFound, apperr.ENotFound)

	_, err = f.catalog.GetProduct(ctx, acme.ID, "fruits", "apple")
	requireFailure(t, err, apperr.ErrInvalidProductReference, apperr.EInvalid)
}

func TestAddProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acme := f.store(t, "acme")
	_, err := f.catalog.CreateCategory(ctx, acme.ID, "fruits", "")
	require.NoError(t, err)
	_, err = f.catalog.AddProduct(ctx, acme.ID, "fruits", NewProduct{Name: "apple", Price: 1})
	require.NoError(t, err)

	tests := []struct {
		name     string
		category string
		product  NewProduct
		sentinel error
		code     string
	}{
		{name: "duplicate name", category: "fruits", product: NewProduct{Name: "apple", Price: 2}, sentinel: apperr.ErrDuplicateProductName, code: apperr.EConflict},
		{name: "missing category", category: "vegetables", product: NewProduct{Name: "leek", Price: 2}, sentinel: apperr.ErrCategoryNotFound, code: apperr.ENotFound},
		{name: "empty name", category: "fruits", product: NewProduct{Name: " ", Price: 2}, sentinel: apperr.ErrInvalidInput, code: apperr.EInvalid},
		{name: "negative price", category: "fruits", product: NewProduct{Name: "pear", Price: -1}, sentinel: apperr.ErrInvalidInput, code: apperr.EInvalid},
		{name: "nan price", category: "fruits", product: NewProduct{Name: "pear", Price: math.NaN()}, sentinel: apperr.ErrInvalidInput, code: apperr.EInvalid},
		{name: "full discount", category: "fruits", product: NewProduct{Name: "pear", Price: 1, DiscountRate: ptr(1)}, sentinel: apperr.ErrInvalidInput, code: apperr.EInvalid},
		{name: "negative discount", category: "fruits", product: NewProduct{Name: "pear", Price: 1, DiscountRate: ptr(-0.5)}, sentinel: apperr.ErrInvalidInput, code: apperr.EInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.catalog.AddProduct(ctx, acme.ID, tt.category, tt.product)
			requireFailure(t, err, tt.sentinel, tt.code)
		})
	}

	free, err := f.catalog.AddProduct(ctx, acme.ID, "fruits", NewProduct{Name: "pear", Price: 0, DiscountRate: ptr(0)})
	require.NoError(t, err)
	assert.Equal(t, 0.0, free.FinalPrice())
}

func TestCategoryListingAndDeletion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acme := f.store(t, "acme")
	globex := f.store(t, "globex")
	for _, name := range []string{"fruits", "bakery"} {
		_, err := f.catalog.CreateCategory(ctx, acme.ID, name, "")
		require.NoError(t, err)
	}

	list, err := f.catalog.ListCategories(ctx, acme.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "bakery", list[0].Name)

	list, err = f.catalog.ListCategories(ctx, globex.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	err = f.catalog.DeleteCategory(ctx, globex.ID, "fruits")
	requireFailure(t, err, apperr.ErrCategoryNotFound, apperr.ENotFound)

	require.NoError(t, f.catalog.DeleteCategory(ctx, acme.ID, "fruits"))
	_, err = f.catalog.FindCategory(ctx, acme.ID, "fruits")
	requireFailure(t, err, apperr.ErrCategoryNotFound, apperr.ENotFound)
}

// racingCategories loses every guarded push, as if a concurrent writer got there first
type racingCategories struct {
	repository.CategoryRepository
	vanish bool
}

func (r *racingCategories) PushProduct(ctx context.Context, storeID, categoryName string, _ model.Product) (bool, error) {
	if r.vanish {
		if _, err := r.CategoryRepository.DeleteCategory(ctx, storeID, categoryName); err != nil {
			return false, err
		}
	}
	return false, nil
}

func TestAddProductLostRace(t *testing.T) {
	for _, tt := range []struct {
		name     string
		vanish   bool
		sentinel error
	}{
		{name: "name taken concurrently", vanish: false, sentinel: apperr.ErrDuplicateProductName},
		{name: "category deleted concurrently", vanish: true, sentinel: apperr.ErrCategoryNotFound},
	} {
		t.Run(tt.name, func(t *testing.T) {
			repos := memory.New().Repositories()
			repos.Categories = &racingCategories{CategoryRepository: repos.Categories, vanish: tt.vanish}
			f := newFixtureWith(t, repos, failingHasher{})
			acme := f.store(t, "acme")
			_, err := f.catalog.CreateCategory(context.Background(), acme.ID, "fruits", "")
			require.NoError(t, err)

			_, err = f.catalog.AddProduct(context.Background(), acme.ID, "fruits", NewProduct{Name: "apple", Price: 1})
			require.ErrorIs(t, err, tt.sentinel)
		})
	}
}
