package middleware

import (
	"errors"

	"storefront-service/internal/apperr"
	"storefront-service/internal/model"
	"storefront-service/internal/service"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

var errStoreNotResolved = errors.New("rank check before store resolution")

// RequireRank admits the request only when the bearer token belongs to a principal
// of the resolved store whose rank is at least minimum. It must run after ResolveStore.
func RequireRank(gate *service.Gate, minimum model.Rank) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			store, ok := StoreFromContext(c)
			if !ok {
				return apperr.Internal("middleware.RequireRank", errStoreNotResolved)
			}

			user, err := gate.Authorize(c.Request().Context(), store, Credentials(c).BearerToken, minimum)
			if err != nil {
				return err
			}

			c.Set(userKey, user)
			withFields(c, zap.String("user_id", user.ID))
			return next(c)
		}
	}
}

// RequireSecurityKey admits the request only when it carries the store administration key
func RequireSecurityKey(gate *service.Gate) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := gate.ValidateSecurityKey(c.Request().Context(), Credentials(c).SecurityKey); err != nil {
				return err
			}
			return next(c)
		}
	}
}
