package service

import (
	"context"
	"math"
	"strings"

	"storefront-service/internal/apperr"
	"storefront-service/internal/model"
	"storefront-service/internal/repository"
	"storefront-service/pkg/logger"
	"storefront-service/prometheus"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NewProduct is the payload for adding a product to a category
type NewProduct struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Price        float64  `json:"price"`
	DiscountRate *float64 `json:"discount_rate,omitempty"`
}

func (p *NewProduct) validate(op string) error {
	name, ok := validName(p.Name)
	if !ok {
		return invalid(op, "product name is required")
	}
	p.Name = name

	if math.IsNaN(p.Price) || math.IsInf(p.Price, 0) || p.Price < 0 {
		return invalid(op, "price must be a non-negative number")
	}
	if d := p.DiscountRate; d != nil && (math.IsNaN(*d) || *d < 0 || *d >= 1) {
		return invalid(op, "discount_rate must be at least 0 and below 1")
	}
	return nil
}

// Catalog runs category and product operations. Every call takes the owning store id
// and passes it to the repository with every filter.
type Catalog struct {
	categories repository.CategoryRepository
}

// NewCatalog creates a catalog over the category repository
func NewCatalog(categories repository.CategoryRepository) *Catalog {
	return &Catalog{categories: categories}
}

func categoryNotFound(op string) error {
	return apperr.New(apperr.ENotFound, op, apperr.ErrCategoryNotFound, "Category not found")
}

func productNotFound(op string) error {
	return apperr.New(apperr.ENotFound, op, apperr.ErrProductNotFound, "Product not found")
}

// category loads a category or maps its absence to CategoryNotFound
func (s *Catalog) category(ctx context.Context, op, storeID, name string) (*model.Category, error) {
	category, err := s.categories.FindCategory(ctx, storeID, name)
	if isNotFound(err) {
		return nil, categoryNotFound(op)
	}
	if err != nil {
		return nil, apperr.Internal(op, err)
	}
	return category, nil
}

// CreateCategory inserts an empty category under storeID
func (s *Catalog) CreateCategory(ctx context.Context, storeID, name, description string) (*model.Category, error) {
	const op = "service.CreateCategory"

	name, ok := validName(name)
	if !ok {
		return nil, invalid(op, "category name is required")
	}

	log := logger.FromGoContext(ctx).With(zap.String("store_id", storeID), zap.String("category", name))
	duplicate := apperr.New(apperr.EConflict, op, apperr.ErrDuplicateCategoryName, "Category "+name+" already exists")

	if _, err := s.categories.FindCategory(ctx, storeID, name); err == nil {
		log.Warn("Category already exists")
		return nil, duplicate
	} else if !isNotFound(err) {
		return nil, apperr.Internal(op, err)
	}

	category := &model.Category{
		ID:          uuid.NewString(),
		StoreID:     storeID,
		Name:        name,
		Description: strings.TrimSpace(description),
		Products:    model.ProductList{},
	}
	if err := s.categories.CreateCategory(ctx, category); err != nil {
		if isDuplicate(err) {
			return nil, duplicate
		}
		return nil, apperr.Internal(op, err)
	}

	prometheus.RecordCatalogOperation("create_category")
	log.Info("Category created", zap.String("category_id", category.ID))
	return category, nil
}

// DeleteCategory removes the category and its products
func (s *Catalog) DeleteCategory(ctx context.Context, storeID, name string) error {
	const op = "service.DeleteCategory"

	deleted, err := s.categories.DeleteCategory(ctx, storeID, name)
	if err != nil {
		return apperr.Internal(op, err)
	}
	if !deleted {
		return categoryNotFound(op)
	}

	prometheus.RecordCatalogOperation("delete_category")
	logger.FromGoContext(ctx).Info("Category deleted", zap.String("store_id", storeID), zap.String("category", name))
	return nil
}

// FindCategory returns one category of storeID
func (s *Catalog) FindCategory(ctx context.Context, storeID, name string) (*model.Category, error) {
	return s.category(ctx, "service.FindCategory", storeID, name)
}

// ListCategories returns every category of storeID ordered by name
func (s *Catalog) ListCategories(ctx context.Context, storeID string) ([]model.Category, error) {
	categories, err := s.categories.ListCategories(ctx, storeID)
	if err != nil {
		return nil, apperr.Internal("service.ListCategories", err)
	}
	return categories, nil
}

// AddProduct appends a product to a category. The product gets a fresh id and an empty stock.
func (s *Catalog) AddProduct(ctx context.Context, storeID, categoryName string, in NewProduct) (*model.Product, error) {
	const op = "service.AddProduct"

	if err := in.validate(op); err != nil {
		return nil, err
	}

	log := logger.FromGoContext(ctx).With(
		zap.String("store_id", storeID),
		zap.String("category", categoryName),
		zap.String("product", in.Name))
	duplicate := apperr.New(apperr.EConflict, op, apperr.ErrDuplicateProductName, "Product "+in.Name+" already exists in "+categoryName)

	category, err := s.category(ctx, op, storeID, categoryName)
	if err != nil {
		return nil, err
	}
	if _, exists := category.ProductByName(in.Name); exists {
		log.Warn("Product already exists")
		return nil, duplicate
	}

	product := model.Product{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Description:  strings.TrimSpace(in.Description),
		Price:        in.Price,
		DiscountRate: in.DiscountRate,
		Stock:        []string{},
	}

	pushed, err := s.categories.PushProduct(ctx, storeID, categoryName, product)
	if err != nil {
		return nil, apperr.Internal(op, err)
	}
	if !pushed {
		// the guard refused: either the category went away or a concurrent add took the name
		if _, err := s.category(ctx, op, storeID, categoryName); err != nil {
			return nil, err
		}
		log.Warn("Product already exists")
		return nil, duplicate
	}

	prometheus.RecordCatalogOperation("add_product")
	log.Info("Product added", zap.String("product_id", product.ID))
	return &product, nil
}

// RemoveProduct pulls the product with productID out of its category
func (s *Catalog) RemoveProduct(ctx context.Context, storeID, categoryName, productID string) error {
	const op = "service.RemoveProduct"

	if _, err := uuid.Parse(productID); err != nil {
		return apperr.New(apperr.EInvalid, op, apperr.ErrInvalidProductReference, "Product id is not a valid identifier")
	}
	if _, err := s.category(ctx, op, storeID, categoryName); err != nil {
		return err
	}

	pulled, err := s.categories.PullProduct(ctx, storeID, categoryName, productID)
	if err != nil {
		return apperr.Internal(op, err)
	}
	if !pulled {
		if _, err := s.category(ctx, op, storeID, categoryName); err != nil {
			return err
		}
		return productNotFound(op)
	}

	prometheus.RecordCatalogOperation("remove_product")
	logger.FromGoContext(ctx).Info("Product removed",
		zap.String("store_id", storeID),
		zap.String("category", categoryName),
		zap.String("product_id", productID))
	return nil
}

// GetProduct returns one product of a category
func (s *Catalog) GetProduct(ctx context.Context, storeID, categoryName, productID string) (*model.Product, error) {
	const op = "service.GetProduct"

	if _, err := uuid.Parse(productID); err != nil {
		return nil, apperr.New(apperr.EInvalid, op, apperr.ErrInvalidProductReference, "Product id is not a valid identifier")
	}

	category, err := s.category(ctx, op, storeID, categoryName)
	if err != nil {
		return nil, err
	}
	product, ok := category.ProductByID(productID)
	if !ok {
		return nil, productNotFound(op)
	}
	return product, nil
}

// UpdateStock replaces the stock list of the product named productName. It does not merge.
func (s *Catalog) UpdateStock(ctx context.Context, storeID, categoryName, productName string, stock []string) error {
	const op = "service.UpdateStock"

	if stock == nil {
		stock = []string{}
	}
	if _, err := s.category(ctx, op, storeID, categoryName); err != nil {
		return err
	}

	updated, err := s.categories.SetProductStock(ctx, storeID, categoryName, productName, stock)
	if err != nil {
		return apperr.Internal(op, err)
	}
	if !updated {
		if _, err := s.category(ctx, op, storeID, categoryName); err != nil {
			return err
		}
		return productNotFound(op)
	}

	prometheus.RecordCatalogOperation("update_stock")
	logger.FromGoContext(ctx).Info("Stock replaced",
		zap.String("store_id", storeID),
		zap.String("category", categoryName),
		zap.String("product", productName),
		zap.Int("units", len(stock)))
	return nil
}
