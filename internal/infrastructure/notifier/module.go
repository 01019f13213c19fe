package notifier

import (
	"context"

	"go.uber.org/fx"
)

func registerClose(lc fx.Lifecycle, publisher Publisher) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return publisher.Close()
		},
	})
}

var Module = fx.Module("notifier",
	fx.Provide(NewPublisher),
	fx.Invoke(registerClose),
)
