package stamper

import "go.uber.org/fx"

var Module = fx.Module("stamper",
	fx.Provide(NewDocumentStamper),
)
