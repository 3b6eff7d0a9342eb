// Package mongo stores tenants, principals and categories in MongoDB. Products are
// embedded in their category document and mutated with $push, $pull and the
// positional $ operator.
package mongo

import (
	"context"
	"errors"
	"time"

	"storefront-service/internal/model"
	"storefront-service/internal/repository"
	"storefront-service/prometheus"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	storesCollection     = "stores"
	usersCollection      = "users"
	categoriesCollection = "categories"
)

// Repository implements the repository ports on a MongoDB database
type Repository struct {
	stores     *mongo.Collection
	users      *mongo.Collection
	categories *mongo.Collection
}

// New binds the repository to db
func New(db *mongo.Database) *Repository {
	return &Repository{
		stores:     db.Collection(storesCollection),
		users:      db.Collection(usersCollection),
		categories: db.Collection(categoriesCollection),
	}
}

// Repositories exposes the backend through the repository ports
func (r *Repository) Repositories() repository.Repositories {
	return repository.Repositories{Stores: r, Users: r, Categories: r}
}

// EnsureIndexes creates the unique indexes the uniqueness rules rely on
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	unique := func(name string, keys bson.D) mongo.IndexModel {
		return mongo.IndexModel{Keys: keys, Options: options.Index().SetName(name).SetUnique(true)}
	}

	if _, err := r.stores.Indexes().CreateOne(ctx, unique("idx_stores_name", bson.D{{Key: "name", Value: 1}})); err != nil {
		return err
	}
	if _, err := r.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		unique("idx_users_store_login", bson.D{{Key: "store_id", Value: 1}, {Key: "user_id", Value: 1}}),
		unique("idx_users_store_email", bson.D{{Key: "store_id", Value: 1}, {Key: "email", Value: 1}}),
	}); err != nil {
		return err
	}
	_, err := r.categories.Indexes().CreateOne(ctx,
		unique("idx_categories_store_name", bson.D{{Key: "store_id", Value: 1}, {Key: "name", Value: 1}}))
	return err
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return repository.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return repository.ErrDuplicate
	default:
		return err
	}
}

func stamp(createdAt, updatedAt *time.Time) {
	now := time.Now().UTC()
	if createdAt.IsZero() {
		*createdAt = now
	}
	*updatedAt = now
}

// CreateStore implements repository.StoreRepository
func (r *Repository) CreateStore(ctx context.Context, store *model.Store) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())

	stamp(&store.CreatedAt, &store.UpdatedAt)
	_, err := r.stores.InsertOne(ctx, store)
	return translate(err)
}

// FindStoreByName implements repository.StoreRepository
func (r *Repository) FindStoreByName(ctx context.Context, name string) (*model.Store, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var store model.Store
	if err := r.stores.FindOne(ctx, bson.M{"name": name}).Decode(&store); err != nil {
		return nil, translate(err)
	}
	return &store, nil
}

// DeleteStore implements repository.StoreRepository. The store's users and
// categories are removed first so a partial failure never leaves orphans behind
// a missing store.
func (r *Repository) DeleteStore(ctx context.Context, name string) (bool, error) {
	defer prometheus.TrackDBOperation("delete")(time.Now())

	var store model.Store
	if err := r.stores.FindOne(ctx, bson.M{"name": name}).Decode(&store); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, err
	}

	owned := bson.M{"store_id": store.ID}
	if _, err := r.categories.DeleteMany(ctx, owned); err != nil {
		return false, err
	}
	if _, err := r.users.DeleteMany(ctx, owned); err != nil {
		return false, err
	}
	res, err := r.stores.DeleteOne(ctx, bson.M{"_id": store.ID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// CreateUser implements repository.UserRepository
func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())

	stamp(&user.CreatedAt, &user.UpdatedAt)
	_, err := r.users.InsertOne(ctx, user)
	return translate(err)
}

func (r *Repository) findUser(ctx context.Context, filter bson.M) (*model.User, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var user model.User
	if err := r.users.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// FindUserByID implements repository.UserRepository
func (r *Repository) FindUserByID(ctx context.Context, storeID, id string) (*model.User, error) {
	return r.findUser(ctx, bson.M{"store_id": storeID, "_id": id})
}

// FindUserByLoginID implements repository.UserRepository
func (r *Repository) FindUserByLoginID(ctx context.Context, storeID, loginID string) (*model.User, error) {
	return r.findUser(ctx, bson.M{"store_id": storeID, "user_id": loginID})
}

// FindUserByEmail implements repository.UserRepository
func (r *Repository) FindUserByEmail(ctx context.Context, storeID, email string) (*model.User, error) {
	return r.findUser(ctx, bson.M{"store_id": storeID, "email": email})
}

// UpdateUserRank implements repository.UserRepository
func (r *Repository) UpdateUserRank(ctx context.Context, storeID, id string, rank model.Rank) (bool, error) {
	defer prometheus.TrackDBOperation("update")(time.Now())

	res, err := r.users.UpdateOne(ctx,
		bson.M{"store_id": storeID, "_id": id},
		bson.M{"$set": bson.M{"rank": rank, "updated_at": time.Now().UTC()}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// CreateCategory implements repository.CategoryRepository
func (r *Repository) CreateCategory(ctx context.Context, category *model.Category) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())

	if category.Products == nil {
		category.Products = model.ProductList{}
	}
	stamp(&category.CreatedAt, &category.UpdatedAt)
	_, err := r.categories.InsertOne(ctx, category)
	return translate(err)
}

// FindCategory implements repository.CategoryRepository
func (r *Repository) FindCategory(ctx context.Context, storeID, name string) (*model.Category, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var category model.Category
	if err := r.categories.FindOne(ctx, bson.M{"store_id": storeID, "name": name}).Decode(&category); err != nil {
		return nil, translate(err)
	}
	if category.Products == nil {
		category.Products = model.ProductList{}
	}
	return &category, nil
}

// ListCategories implements repository.CategoryRepository
func (r *Repository) ListCategories(ctx context.Context, storeID string) ([]model.Category, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	cursor, err := r.categories.Find(ctx, bson.M{"store_id": storeID},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}

	categories := []model.Category{}
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// DeleteCategory implements repository.CategoryRepository
func (r *Repository) DeleteCategory(ctx context.Context, storeID, name string) (bool, error) {
	defer prometheus.TrackDBOperation("delete")(time.Now())

	res, err := r.categories.DeleteOne(ctx, bson.M{"store_id": storeID, "name": name})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// PushProduct implements repository.CategoryRepository
func (r *Repository) PushProduct(ctx context.Context, storeID, categoryName string, product model.Product) (bool, error) {
	defer prometheus.TrackDBOperation("update")(time.Now())

	if product.Stock == nil {
		product.Stock = []string{}
	}
	res, err := r.categories.UpdateOne(ctx,
		bson.M{"store_id": storeID, "name": categoryName, "products.name": bson.M{"$ne": product.Name}},
		bson.M{
			"$push": bson.M{"products": product},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// PullProduct implements repository.CategoryRepository
func (r *Repository) PullProduct(ctx context.Context, storeID, categoryName, productID string) (bool, error) {
	defer prometheus.TrackDBOperation("update")(time.Now())

	res, err := r.categories.UpdateOne(ctx,
		bson.M{"store_id": storeID, "name": categoryName, "products._id": productID},
		bson.M{
			"$pull": bson.M{"products": bson.M{"_id": productID}},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// SetProductStock implements repository.CategoryRepository
func (r *Repository) SetProductStock(ctx context.Context, storeID, categoryName, productName string, stock []string) (bool, error) {
	defer prometheus.TrackDBOperation("update")(time.Now())

	if stock == nil {
		stock = []string{}
	}
	res, err := r.categories.UpdateOne(ctx,
		bson.M{"store_id": storeID, "name": categoryName, "products.name": productName},
		bson.M{"$set": bson.M{"products.$.stock": stock, "updated_at": time.Now().UTC()}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}
