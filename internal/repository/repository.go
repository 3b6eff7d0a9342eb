// Package repository declares the persistence ports. Every read and write takes the
// owning store id as part of its filter; no backend may look a user or category up
// by any other key alone.
package repository

import (
	"context"
	"errors"

	"storefront-service/internal/model"
)

var (
	// ErrNotFound is returned by single-record lookups that matched nothing
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when an insert violates a uniqueness constraint
	ErrDuplicate = errors.New("duplicate record")
)

// StoreRepository persists tenants
type StoreRepository interface {
	CreateStore(ctx context.Context, store *model.Store) error
	FindStoreByName(ctx context.Context, name string) (*model.Store, error)
	// DeleteStore removes the store with its users and categories. It reports whether the store existed.
	DeleteStore(ctx context.Context, name string) (bool, error)
}

// UserRepository persists principals
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	FindUserByID(ctx context.Context, storeID, id string) (*model.User, error)
	FindUserByLoginID(ctx context.Context, storeID, loginID string) (*model.User, error)
	FindUserByEmail(ctx context.Context, storeID, email string) (*model.User, error)
	UpdateUserRank(ctx context.Context, storeID, id string, rank model.Rank) (bool, error)
}

// CategoryRepository persists categories and mutates their embedded products.
//
// The product operations are single atomic updates on the category record.
// They never read, modify, and write back the whole product list.
type CategoryRepository interface {
	CreateCategory(ctx context.Context, category *model.Category) error
	FindCategory(ctx context.Context, storeID, name string) (*model.Category, error)
	ListCategories(ctx context.Context, storeID string) ([]model.Category, error)
	DeleteCategory(ctx context.Context, storeID, name string) (bool, error)

	// PushProduct appends product unless the category is missing or already holds a product with that name.
	PushProduct(ctx context.Context, storeID, categoryName string, product model.Product) (bool, error)
	// PullProduct removes the product with the given id. It reports whether one was removed.
	PullProduct(ctx context.Context, storeID, categoryName, productID string) (bool, error)
	// SetProductStock replaces the stock list of the product with the given name.
	SetProductStock(ctx context.Context, storeID, categoryName, productName string, stock []string) (bool, error)
}

// Repositories bundles one backend's implementations
type Repositories struct {
	Stores     StoreRepository
	Users      UserRepository
	Categories CategoryRepository
}
