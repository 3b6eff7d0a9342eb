package service

import (
	"context"
	"strings"

	"storefront-service/internal/apperr"
	"storefront-service/internal/model"
	"storefront-service/internal/repository"
	"storefront-service/pkg/logger"

	"go.uber.org/zap"
)

// Resolver binds a request to exactly one store
type Resolver struct {
	stores repository.StoreRepository
}

// NewResolver creates a resolver over the store repository
func NewResolver(stores repository.StoreRepository) *Resolver {
	return &Resolver{stores: stores}
}

// Resolve looks the store up by its selector. It never writes.
func (r *Resolver) Resolve(ctx context.Context, selector string) (*model.Store, error) {
	const op = "service.Resolve"

	selector = strings.TrimSpace(selector)
	if selector == "" {
		return nil, apperr.New(apperr.EInvalid, op, apperr.ErrMissingTenantSelector, "Store name header is required")
	}

	store, err := r.stores.FindStoreByName(ctx, selector)
	if isNotFound(err) {
		logger.FromGoContext(ctx).Warn("Unknown store", zap.String("store_name", selector))
		return nil, apperr.New(apperr.ENotFound, op, apperr.ErrUnknownTenant, "Store not found")
	}
	if err != nil {
		return nil, apperr.Internal(op, err)
	}

	return store, nil
}
