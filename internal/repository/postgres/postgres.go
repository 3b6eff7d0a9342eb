// Package postgres stores tenants, principals and categories through gorm.
//
// A category's products live in a jsonb column. Product mutations are single UPDATE
// statements whose SET expression rewrites the array in place, so concurrent writers
// on one category serialize on its row lock instead of overwriting each other.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"storefront-service/internal/model"
	"storefront-service/internal/repository"
	"storefront-service/prometheus"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const uniqueViolation = "23505"

// Models lists every table this backend owns, for migrations
func Models() []interface{} {
	return []interface{}{&model.Store{}, &model.User{}, &model.Category{}}
}

// Repository implements the repository ports on PostgreSQL
type Repository struct {
	db *gorm.DB
}

// New wraps an open gorm connection
func New(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Repositories exposes the backend through the repository ports
func (r *Repository) Repositories() repository.Repositories {
	return repository.Repositories{Stores: r, Users: r, Categories: r}
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repository.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return repository.ErrDuplicate
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return repository.ErrDuplicate
	}
	return err
}

// CreateStore implements repository.StoreRepository
func (r *Repository) CreateStore(ctx context.Context, store *model.Store) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())
	return translate(r.db.WithContext(ctx).Create(store).Error)
}

// FindStoreByName implements repository.StoreRepository
func (r *Repository) FindStoreByName(ctx context.Context, name string) (*model.Store, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var store model.Store
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&store).Error; err != nil {
		return nil, translate(err)
	}
	return &store, nil
}

// DeleteStore implements repository.StoreRepository
func (r *Repository) DeleteStore(ctx context.Context, name string) (bool, error) {
	defer prometheus.TrackDBOperation("delete")(time.Now())

	deleted := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var store model.Store
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("name = ?", name).First(&store).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := tx.Where("store_id = ?", store.ID).Delete(&model.Category{}).Error; err != nil {
			return err
		}
		if err := tx.Where("store_id = ?", store.ID).Delete(&model.User{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&store)
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected > 0
		return nil
	})
	return deleted, translate(err)
}

// CreateUser implements repository.UserRepository
func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

func (r *Repository) findUser(ctx context.Context, query string, args ...interface{}) (*model.User, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var user model.User
	if err := r.db.WithContext(ctx).Where(query, args...).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// FindUserByID implements repository.UserRepository
func (r *Repository) FindUserByID(ctx context.Context, storeID, id string) (*model.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, repository.ErrNotFound
	}
	return r.findUser(ctx, "store_id = ? AND id = ?", storeID, id)
}

// FindUserByLoginID implements repository.UserRepository
func (r *Repository) FindUserByLoginID(ctx context.Context, storeID, loginID string) (*model.User, error) {
	return r.findUser(ctx, "store_id = ? AND login_id = ?", storeID, loginID)
}

// FindUserByEmail implements repository.UserRepository
func (r *Repository) FindUserByEmail(ctx context.Context, storeID, email string) (*model.User, error) {
	return r.findUser(ctx, "store_id = ? AND email = ?", storeID, email)
}

// UpdateUserRank implements repository.UserRepository
func (r *Repository) UpdateUserRank(ctx context.Context, storeID, id string, rank model.Rank) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}
	defer prometheus.TrackDBOperation("update")(time.Now())

	result := r.db.WithContext(ctx).Model(&model.User{}).
		Where("store_id = ? AND id = ?", storeID, id).
		Updates(map[string]interface{}{"rank": rank, "updated_at": time.Now()})
	return result.RowsAffected > 0, translate(result.Error)
}

// CreateCategory implements repository.CategoryRepository
func (r *Repository) CreateCategory(ctx context.Context, category *model.Category) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())

	if category.Products == nil {
		category.Products = model.ProductList{}
	}
	return translate(r.db.WithContext(ctx).Create(category).Error)
}

// FindCategory implements repository.CategoryRepository
func (r *Repository) FindCategory(ctx context.Context, storeID, name string) (*model.Category, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var category model.Category
	if err := r.db.WithContext(ctx).Where("store_id = ? AND name = ?", storeID, name).First(&category).Error; err != nil {
		return nil, translate(err)
	}
	return &category, nil
}

// ListCategories implements repository.CategoryRepository
func (r *Repository) ListCategories(ctx context.Context, storeID string) ([]model.Category, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	categories := []model.Category{}
	if err := r.db.WithContext(ctx).Where("store_id = ?", storeID).Order("name").Find(&categories).Error; err != nil {
		return nil, translate(err)
	}
	return categories, nil
}

// DeleteCategory implements repository.CategoryRepository
func (r *Repository) DeleteCategory(ctx context.Context, storeID, name string) (bool, error) {
	defer prometheus.TrackDBOperation("delete")(time.Now())

	result := r.db.WithContext(ctx).Where("store_id = ? AND name = ?", storeID, name).Delete(&model.Category{})
	return result.RowsAffected > 0, translate(result.Error)
}

// PushProduct implements repository.CategoryRepository
func (r *Repository) PushProduct(ctx context.Context, storeID, categoryName string, product model.Product) (bool, error) {
	if product.Stock == nil {
		product.Stock = []string{}
	}
	payload, err := json.Marshal(product)
	if err != nil {
		return false, err
	}
	probe, err := containsProbe("name", product.Name)
	if err != nil {
		return false, err
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	result := r.db.WithContext(ctx).Model(&model.Category{}).
		Where("store_id = ? AND name = ?", storeID, categoryName).
		Where("NOT (products @> ?::jsonb)", probe).
		Updates(map[string]interface{}{
			"products":   gorm.Expr("products || jsonb_build_array(?::jsonb)", string(payload)),
			"updated_at": time.Now(),
		})
	return result.RowsAffected > 0, translate(result.Error)
}

// PullProduct implements repository.CategoryRepository
func (r *Repository) PullProduct(ctx context.Context, storeID, categoryName, productID string) (bool, error) {
	probe, err := containsProbe("id", productID)
	if err != nil {
		return false, err
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	result := r.db.WithContext(ctx).Model(&model.Category{}).
		Where("store_id = ? AND name = ?", storeID, categoryName).
		Where("products @> ?::jsonb", probe).
		Updates(map[string]interface{}{
			"products": gorm.Expr(`COALESCE((
				SELECT jsonb_agg(elem ORDER BY ord)
				FROM jsonb_array_elements(products) WITH ORDINALITY AS t(elem, ord)
				WHERE elem->>'id' <> ?
			), '[]'::jsonb)`, productID),
			"updated_at": time.Now(),
		})
	return result.RowsAffected > 0, translate(result.Error)
}

// SetProductStock implements repository.CategoryRepository
func (r *Repository) SetProductStock(ctx context.Context, storeID, categoryName, productName string, stock []string) (bool, error) {
	if stock == nil {
		stock = []string{}
	}
	stockJSON, err := json.Marshal(stock)
	if err != nil {
		return false, err
	}
	probe, err := containsProbe("name", productName)
	if err != nil {
		return false, err
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	result := r.db.WithContext(ctx).Model(&model.Category{}).
		Where("store_id = ? AND name = ?", storeID, categoryName).
		Where("products @> ?::jsonb", probe).
		Updates(map[string]interface{}{
			"products": gorm.Expr(`(
				SELECT jsonb_agg(
					CASE WHEN elem->>'name' = ? THEN jsonb_set(elem, '{stock}', ?::jsonb) ELSE elem END
					ORDER BY ord)
				FROM jsonb_array_elements(products) WITH ORDINALITY AS t(elem, ord)
			)`, productName, string(stockJSON)),
			"updated_at": time.Now(),
		})
	return result.RowsAffected > 0, translate(result.Error)
}

// containsProbe builds a jsonb containment operand matching any element with field = value
func containsProbe(field, value string) (string, error) {
	b, err := json.Marshal([]map[string]string{{field: value}})
	if err != nil {
		return "", err
	}
	return string(b), nil
}
