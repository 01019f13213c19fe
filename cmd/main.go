package main

import (
	"go.uber.org/fx"

	"signflow/internal/service"
)

func main() {
	fx.New(service.Modules()).Run()
}
