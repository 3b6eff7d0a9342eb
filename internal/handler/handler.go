// Package handler is the HTTP surface. Handlers decode the request, call one service
// operation and render its outcome; they never touch a repository.
package handler

import (
	"storefront-service/internal/apperr"
	"storefront-service/internal/middleware"
	"storefront-service/internal/model"
	"storefront-service/internal/service"

	"github.com/labstack/echo/v4"
)

// Handler serves the storefront API
type Handler struct {
	stores   *service.StoreService
	accounts *service.AccountService
	catalog  *service.Catalog
}

// New creates a handler over the services
func New(stores *service.StoreService, accounts *service.AccountService, catalog *service.Catalog) *Handler {
	return &Handler{stores: stores, accounts: accounts, catalog: catalog}
}

// store returns the store ResolveStore bound to the request
func store(c echo.Context, op string) (*model.Store, error) {
	s, ok := middleware.StoreFromContext(c)
	if !ok {
		return nil, apperr.Internal(op, errNoStore)
	}
	return s, nil
}
