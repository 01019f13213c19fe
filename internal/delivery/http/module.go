package http

import (
	"go.uber.org/fx"

	"signflow/internal/delivery/http/handler"
	"signflow/internal/delivery/http/router"
)

var Module = fx.Module("http",
	fx.Provide(
		handler.NewSignatureHandler,
		handler.NewHealthHandler,
		handler.NewLogHandler,
		router.NewRouter,
	),
)
