package database

import (
	"context"

	"go.uber.org/fx"
)

func registerClose(lc fx.Lifecycle, db *Database) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return db.Close()
		},
	})
}

var Module = fx.Module("database",
	fx.Provide(NewDatabase),
	fx.Invoke(registerClose),
)
