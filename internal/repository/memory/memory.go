// Package memory is an in-process backend used by tests and DB_DRIVER=memory.
// One mutex serializes every write, which gives the same per-record atomicity the
// document store provides.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"storefront-service/internal/model"
	"storefront-service/internal/repository"
)

// DB holds all records
type DB struct {
	mu         sync.RWMutex
	stores     map[string]*model.Store
	users      map[string]*model.User
	categories map[string]*model.Category
	now        func() time.Time
}

// New returns an empty database
func New() *DB {
	return &DB{
		stores:     make(map[string]*model.Store),
		users:      make(map[string]*model.User),
		categories: make(map[string]*model.Category),
		now:        time.Now,
	}
}

// Repositories exposes the database through the repository ports
func (db *DB) Repositories() repository.Repositories {
	return repository.Repositories{Stores: db, Users: db, Categories: db}
}

// CreateStore implements repository.StoreRepository
func (db *DB) CreateStore(_ context.Context, store *model.Store) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, s := range db.stores {
		if s.Name == store.Name {
			return repository.ErrDuplicate
		}
	}
	now := db.now()
	store.CreatedAt, store.UpdatedAt = now, now
	cp := *store
	db.stores[store.ID] = &cp
	return nil
}

// FindStoreByName implements repository.StoreRepository
func (db *DB) FindStoreByName(_ context.Context, name string) (*model.Store, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	for _, s := range db.stores {
		if s.Name == name {
			cp := *s
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

// DeleteStore implements repository.StoreRepository
func (db *DB) DeleteStore(_ context.Context, name string) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var storeID string
	for id, s := range db.stores {
		if s.Name == name {
			storeID = id
			break
		}
	}
	if storeID == "" {
		return false, nil
	}

	delete(db.stores, storeID)
	for id, u := range db.users {
		if u.StoreID == storeID {
			delete(db.users, id)
		}
	}
	for id, c := range db.categories {
		if c.StoreID == storeID {
			delete(db.categories, id)
		}
	}
	return true, nil
}

// CreateUser implements repository.UserRepository
func (db *DB) CreateUser(_ context.Context, user *model.User) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.StoreID == user.StoreID && (u.LoginID == user.LoginID || u.Email == user.Email) {
			return repository.ErrDuplicate
		}
	}
	now := db.now()
	user.CreatedAt, user.UpdatedAt = now, now
	cp := *user
	db.users[user.ID] = &cp
	return nil
}

func (db *DB) findUser(match func(*model.User) bool) (*model.User, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	for _, u := range db.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

// FindUserByID implements repository.UserRepository
func (db *DB) FindUserByID(_ context.Context, storeID, id string) (*model.User, error) {
	return db.findUser(func(u *model.User) bool { return u.StoreID == storeID && u.ID == id })
}

// FindUserByLoginID implements repository.UserRepository
func (db *DB) FindUserByLoginID(_ context.Context, storeID, loginID string) (*model.User, error) {
	return db.findUser(func(u *model.User) bool { return u.StoreID == storeID && u.LoginID == loginID })
}

// FindUserByEmail implements repository.UserRepository
func (db *DB) FindUserByEmail(_ context.Context, storeID, email string) (*model.User, error) {
	return db.findUser(func(u *model.User) bool { return u.StoreID == storeID && u.Email == email })
}

// UpdateUserRank implements repository.UserRepository
func (db *DB) UpdateUserRank(_ context.Context, storeID, id string, rank model.Rank) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	u, ok := db.users[id]
	if !ok || u.StoreID != storeID {
		return false, nil
	}
	u.Rank = rank
	u.UpdatedAt = db.now()
	return true, nil
}

// CreateCategory implements repository.CategoryRepository
func (db *DB) CreateCategory(_ context.Context, category *model.Category) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.categoryLocked(category.StoreID, category.Name) != nil {
		return repository.ErrDuplicate
	}
	now := db.now()
	category.CreatedAt, category.UpdatedAt = now, now
	if category.Products == nil {
		category.Products = model.ProductList{}
	}
	db.categories[category.ID] = cloneCategory(category)
	return nil
}

// FindCategory implements repository.CategoryRepository
func (db *DB) FindCategory(_ context.Context, storeID, name string) (*model.Category, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	c := db.categoryLocked(storeID, name)
	if c == nil {
		return nil, repository.ErrNotFound
	}
	return cloneCategory(c), nil
}

// ListCategories implements repository.CategoryRepository
func (db *DB) ListCategories(_ context.Context, storeID string) ([]model.Category, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	out := []model.Category{}
	for _, c := range db.categories {
		if c.StoreID == storeID {
			out = append(out, *cloneCategory(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// DeleteCategory implements repository.CategoryRepository
func (db *DB) DeleteCategory(_ context.Context, storeID, name string) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	c := db.categoryLocked(storeID, name)
	if c == nil {
		return false, nil
	}
	delete(db.categories, c.ID)
	return true, nil
}

// PushProduct implements repository.CategoryRepository
func (db *DB) PushProduct(_ context.Context, storeID, categoryName string, product model.Product) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	c := db.categoryLocked(storeID, categoryName)
	if c == nil {
		return false, nil
	}
	if _, exists := c.ProductByName(product.Name); exists {
		return false, nil
	}
	c.Products = append(c.Products, cloneProduct(product))
	c.UpdatedAt = db.now()
	return true, nil
}

// PullProduct implements repository.CategoryRepository
func (db *DB) PullProduct(_ context.Context, storeID, categoryName, productID string) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	c := db.categoryLocked(storeID, categoryName)
	if c == nil {
		return false, nil
	}
	kept := make(model.ProductList, 0, len(c.Products))
	for _, p := range c.Products {
		if p.ID != productID {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(c.Products) {
		return false, nil
	}
	c.Products = kept
	c.UpdatedAt = db.now()
	return true, nil
}

// SetProductStock implements repository.CategoryRepository
func (db *DB) SetProductStock(_ context.Context, storeID, categoryName, productName string, stock []string) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	c := db.categoryLocked(storeID, categoryName)
	if c == nil {
		return false, nil
	}
	p, ok := c.ProductByName(productName)
	if !ok {
		return false, nil
	}
	p.Stock = append([]string{}, stock...)
	c.UpdatedAt = db.now()
	return true, nil
}

func (db *DB) categoryLocked(storeID, name string) *model.Category {
	for _, c := range db.categories {
		if c.StoreID == storeID && c.Name == name {
			return c
		}
	}
	return nil
}

func cloneCategory(c *model.Category) *model.Category {
	cp := *c
	cp.Products = make(model.ProductList, len(c.Products))
	for i, p := range c.Products {
		cp.Products[i] = cloneProduct(p)
	}
	return &cp
}

func cloneProduct(p model.Product) model.Product {
	p.Stock = append([]string{}, p.Stock...)
	if p.DiscountRate != nil {
		rate := *p.DiscountRate
		p.DiscountRate = &rate
	}
	return p
}
