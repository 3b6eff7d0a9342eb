package handler

import (
	"storefront-service/internal/middleware"
	"storefront-service/internal/model"
	"storefront-service/internal/service"
	"storefront-service/pkg/logger"
	"storefront-service/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

// Services are the collaborators the router wires into routes
type Services struct {
	Resolver *service.Resolver
	Gate     *service.Gate
	Stores   *service.StoreService
	Accounts *service.AccountService
	Catalog  *service.Catalog
}

// NewRouter builds the echo instance with every route and middleware
func NewRouter(s Services) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = HTTPErrorHandler

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
			middleware.HeaderStoreName,
			middleware.HeaderSecurityKey,
		},
	}))
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware())
	e.Use(prometheus.MetricsMiddleware())

	h := New(s.Stores, s.Accounts, s.Catalog)

	// Public routes
	e.GET("/health", HealthCheck)
	e.GET("/metrics", MetricsHandler)

	api := e.Group("/api")

	// Store administration - guarded by the shared security key
	stores := api.Group("/store", middleware.RequireSecurityKey(s.Gate))
	stores.POST("/:store_name", h.CreateStore)
	stores.DELETE("/:store_name", h.DeleteStore)

	resolveStore := middleware.ResolveStore(s.Resolver)
	anyPrincipal := middleware.RequireRank(s.Gate, model.RankCustomer)
	adminOnly := middleware.RequireRank(s.Gate, model.RankAdministrator)

	// Accounts - scoped to the store named by X-Store-Name
	users := api.Group("/user", resolveStore)
	users.POST("/register", h.Register)
	users.POST("/login", h.Login)
	users.GET("/me", h.Profile, anyPrincipal)
	users.PATCH("/:user_id/rank", h.SetRank, adminOnly)

	// Catalog - reads need a store, writes need an administrator of that store
	categories := api.Group("/category", resolveStore)
	categories.GET("", h.ListCategories)
	categories.POST("", h.CreateCategory, adminOnly)
	categories.GET("/:category_name", h.GetCategory)
	categories.DELETE("/:category_name", h.DeleteCategory, adminOnly)
	categories.POST("/:category_name/product", h.AddProduct, adminOnly)
	categories.GET("/:category_name/product/:product", h.GetProduct)
	categories.DELETE("/:category_name/product/:product", h.RemoveProduct, adminOnly)
	categories.PATCH("/:category_name/product/:product/stock", h.UpdateStock, adminOnly)

	return e
}
