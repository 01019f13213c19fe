package redis

import (
	"context"

	"go.uber.org/fx"
)

func registerClose(lc fx.Lifecycle, client *RedisClient) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
}

var Module = fx.Module("redis",
	fx.Provide(NewRedisClient),
	fx.Provide(NewStatusCache),
	fx.Invoke(registerClose),
)
