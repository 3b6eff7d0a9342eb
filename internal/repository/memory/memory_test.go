package memory_test

import (
	"testing"

	"storefront-service/internal/repository"
	"storefront-service/internal/repository/memory"
	"storefront-service/internal/repository/repotest"
)

func TestMemoryRepositories(t *testing.T) {
	repotest.Run(t, func(t *testing.T) repository.Repositories {
		return memory.New().Repositories()
	})
}
