package service

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/fx"

	"signflow/internal/config"
	deliveryhttp "signflow/internal/delivery/http"
	"signflow/internal/infrastructure/database"
	"signflow/internal/infrastructure/logger"
	"signflow/internal/infrastructure/notifier"
	"signflow/internal/infrastructure/redis"
	"signflow/internal/infrastructure/repository"
	"signflow/internal/infrastructure/resilience"
	"signflow/internal/infrastructure/stamper"
	"signflow/internal/infrastructure/storage"
	"signflow/internal/observability/metrics"
	"signflow/internal/server"
	"signflow/internal/usecase"
)

// Modules is the full dependency graph shared by the console and service entrypoints
func Modules() fx.Option {
	return fx.Options(
		// Configuration
		config.Module,

		// Infrastructure
		logger.Module,
		database.Module,
		redis.Module,
		storage.Module,
		resilience.Module,
		stamper.Module,
		notifier.Module,
		repository.Module,
		metrics.Module,

		// Business Logic
		usecase.Module,

		// Delivery
		deliveryhttp.Module,

		// Server
		server.Module,
	)
}

// Application wraps the fx.App for service management
type Application struct {
	app      *fx.App
	ctx      context.Context
	cancel   context.CancelFunc
	doneChan chan struct{}
}

// NewApplication creates a new Application instance
func NewApplication() *Application {
	ctx, cancel := context.WithCancel(context.Background())
	return &Application{
		ctx:      ctx,
		cancel:   cancel,
		doneChan: make(chan struct{}),
	}
}

// Run starts the application and blocks until a signal or Shutdown.
// Wait returns once Run does, including when startup fails.
func (a *Application) Run() error {
	defer close(a.doneChan)

	a.app = fx.New(
		// Provide context
		fx.Provide(func() context.Context { return a.ctx }),
		Modules(),
	)

	if err := a.app.Start(a.ctx); err != nil {
		return fmt.Errorf("failed to start %s: %w", ServiceName, err)
	}

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-sigChan:
		a.Shutdown()
	case <-a.ctx.Done():
		// Context was cancelled
	}
	return nil
}

// Shutdown gracefully shuts down the application
func (a *Application) Shutdown() {
	a.cancel()
	if a.app != nil {
		ctx, cancel := context.WithTimeout(context.Background(), fx.DefaultTimeout)
		defer cancel()
		a.app.Stop(ctx)
	}
}

// Wait blocks until the application exits
func (a *Application) Wait() {
	<-a.doneChan
}
