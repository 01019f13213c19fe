package usecase

import (
	"go.uber.org/fx"

	"signflow/internal/infrastructure/redis"
)

func provideStatusCache(c *redis.StatusCache) StatusCache {
	return c
}

var Module = fx.Module("usecase",
	fx.Provide(provideStatusCache),
	fx.Provide(NewSignatureUsecase),
)
