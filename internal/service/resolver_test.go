package service

import (
	"context"
	"testing"

	"storefront-service/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	f := newFixture(t)
	acme := f.store(t, "acme")
	ctx := context.Background()

	_, err := f.resolver.Resolve(ctx, "")
	requireFailure(t, err, apperr.ErrMissingTenantSelector, apperr.EInvalid)

	_, err = f.resolver.Resolve(ctx, "   ")
	requireFailure(t, err, apperr.ErrMissingTenantSelector, apperr.EInvalid)

	_, err = f.resolver.Resolve(ctx, "globex")
	requireFailure(t, err, apperr.ErrUnknownTenant, apperr.ENotFound)

	for i := 0; i < 2; i++ {
		store, err := f.resolver.Resolve(ctx, "acme")
		require.NoError(t, err)
		assert.Equal(t, acme.ID, store.ID)
	}
}
