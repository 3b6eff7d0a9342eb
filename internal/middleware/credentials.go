package middleware

import (
	"strings"

	"storefront-service/internal/model"
	"storefront-service/internal/service"
	"storefront-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Request headers the core's inputs are read from
const (
	HeaderStoreName   = "X-Store-Name"
	HeaderSecurityKey = "X-Security-Key"
)

// Context keys
const (
	storeKey = "store"
	userKey  = "user"
)

// Credentials extracts the store selector, bearer token and security key from the request
func Credentials(c echo.Context) service.Credentials {
	h := c.Request().Header
	return service.Credentials{
		StoreName:   strings.TrimSpace(h.Get(HeaderStoreName)),
		BearerToken: bearerToken(h.Get(echo.HeaderAuthorization)),
		SecurityKey: h.Get(HeaderSecurityKey),
	}
}

// bearerToken returns the token of a "Bearer <token>" header. Any other non-empty
// value comes back unchanged so that verification rejects it as an invalid token.
func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	scheme, token, ok := strings.Cut(header, " ")
	if ok && strings.EqualFold(scheme, "bearer") {
		if token = strings.TrimSpace(token); token != "" {
			return token
		}
	}
	return header
}

// StoreFromContext returns the store resolved for this request
func StoreFromContext(c echo.Context) (*model.Store, bool) {
	store, ok := c.Get(storeKey).(*model.Store)
	return store, ok
}

// UserFromContext returns the principal authorized for this request
func UserFromContext(c echo.Context) (*model.User, bool) {
	user, ok := c.Get(userKey).(*model.User)
	return user, ok
}

// withFields extends the request-scoped logger
func withFields(c echo.Context, fields ...zap.Field) {
	log := logger.FromContext(c).With(fields...)
	c.Set(logger.EchoKey, log)
	c.SetRequest(c.Request().WithContext(logger.WithLogger(c.Request().Context(), log)))
}
