package middleware

import (
	"storefront-service/internal/service"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ResolveStore binds the request to the store named by the X-Store-Name header.
// Every tenant-scoped route runs behind it.
func ResolveStore(resolver *service.Resolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			store, err := resolver.Resolve(c.Request().Context(), Credentials(c).StoreName)
			if err != nil {
				return err
			}

			c.Set(storeKey, store)
			withFields(c, zap.String("store_id", store.ID))
			return next(c)
		}
	}
}
