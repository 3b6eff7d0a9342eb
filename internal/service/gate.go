package service

import (
	"context"
	"crypto/subtle"
	"errors"

	"storefront-service/internal/apperr"
	"storefront-service/internal/model"
	"storefront-service/internal/repository"
	"storefront-service/pkg/jwtutil"
	"storefront-service/pkg/logger"
	"storefront-service/prometheus"

	"go.uber.org/zap"
)

// TokenCodec issues and verifies store-bound credential tokens
type TokenCodec interface {
	GenerateToken(principalID, storeID string) (string, error)
	ValidateToken(token string) (*jwtutil.Claims, error)
}

// Gate decides who the caller is inside a resolved store and whether their rank suffices.
//
// The checks run in a fixed order: token present, token verified, token issued for
// this store, principal exists in this store, principal rank at least the minimum.
// The first failing check ends the request.
type Gate struct {
	tokens      TokenCodec
	users       repository.UserRepository
	securityKey []byte
}

// NewGate creates a gate. securityKey guards store administration.
func NewGate(tokens TokenCodec, users repository.UserRepository, securityKey string) *Gate {
	return &Gate{tokens: tokens, users: users, securityKey: []byte(securityKey)}
}

func (g *Gate) deny(ctx context.Context, op, code string, cause error, kind string, fields ...zap.Field) error {
	prometheus.RecordAuthError(kind)
	logger.FromGoContext(ctx).Warn("Request denied", append(fields, zap.String("reason", cause.Error()))...)

	msg := msgUnauthorized
	if code == apperr.EForbidden {
		msg = msgForbidden
	}
	return apperr.New(code, op, cause, msg)
}

// Authenticate verifies the bearer token and that it was issued for store. It returns the principal id.
func (g *Gate) Authenticate(ctx context.Context, store *model.Store, bearerToken string) (string, error) {
	const op = "service.Authenticate"

	if bearerToken == "" {
		return "", g.deny(ctx, op, apperr.EUnauthorized, apperr.ErrMissingAuthorization, "missing_authorization")
	}

	claims, err := g.tokens.ValidateToken(bearerToken)
	if err != nil {
		return "", g.deny(ctx, op, apperr.EUnauthorized, apperr.ErrInvalidToken, "invalid_token", zap.Error(err))
	}

	if claims.StoreID != store.ID {
		return "", g.deny(ctx, op, apperr.EUnauthorized, apperr.ErrTenantMismatch, "tenant_mismatch",
			zap.String("store_id", store.ID),
			zap.String("token_store_id", claims.StoreID))
	}

	return claims.PrincipalID(), nil
}

// Authorize authenticates the caller and loads them from store. It fails unless their rank is at least minimum.
func (g *Gate) Authorize(ctx context.Context, store *model.Store, bearerToken string, minimum model.Rank) (*model.User, error) {
	const op = "service.Authorize"

	principalID, err := g.Authenticate(ctx, store, bearerToken)
	if err != nil {
		return nil, err
	}

	user, err := g.users.FindUserByID(ctx, store.ID, principalID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, g.deny(ctx, op, apperr.EForbidden, apperr.ErrPrincipalNotFound, "principal_not_found",
			zap.String("store_id", store.ID),
			zap.String("user_id", principalID))
	}
	if err != nil {
		return nil, apperr.Internal(op, err)
	}

	if !user.Rank.AtLeast(minimum) {
		return nil, g.deny(ctx, op, apperr.EForbidden, apperr.ErrInsufficientRank, "insufficient_rank",
			zap.String("store_id", store.ID),
			zap.String("user_id", user.ID),
			zap.Stringer("rank", user.Rank),
			zap.Stringer("required", minimum))
	}

	return user, nil
}

// ValidateSecurityKey checks the shared secret that guards store creation and deletion
func (g *Gate) ValidateSecurityKey(ctx context.Context, key string) error {
	const op = "service.ValidateSecurityKey"

	if key == "" {
		prometheus.RecordAuthError("missing_security_key")
		return apperr.New(apperr.EInvalid, op, apperr.ErrMissingSecurityKey, "Security key header is required")
	}
	if subtle.ConstantTimeCompare([]byte(key), g.securityKey) != 1 {
		return g.deny(ctx, op, apperr.EUnauthorized, apperr.ErrInvalidSecurityKey, "invalid_security_key")
	}
	return nil
}
