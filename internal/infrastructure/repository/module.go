package repository

import (
	"go.uber.org/fx"

	"signflow/internal/domain/repository"
	"signflow/internal/infrastructure/database"
	"signflow/internal/infrastructure/stamper"
)

func newTransactor(db *database.Database) repository.Transactor {
	return db
}

var Module = fx.Module("repository",
	fx.Provide(newTransactor),
	fx.Provide(NewSignatureRepository),
	fx.Provide(NewDocumentRepository),
	fx.Provide(
		fx.Annotate(
			NewAPILogRepository,
			fx.As(new(repository.APILogRepository)),
			fx.As(new(stamper.APILogSaver)),
		),
	),
)
