package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"signflow/internal/config"
	"signflow/internal/domain/entity"
	"signflow/internal/infrastructure/resilience"
)

// Publisher delivers signature lifecycle events to downstream consumers
type Publisher interface {
	Publish(ctx context.Context, event entity.SignatureEvent) error
	Close() error
}

// NewPublisher picks the driver named in notifier.driver
func NewPublisher(cfg *config.Config, executor *resilience.Executor, logger *zap.Logger) (Publisher, error) {
	switch cfg.Notifier.Driver {
	case config.NotifierDriverNone, "":
		logger.Info("Event notifications disabled")
		return noopPublisher{}, nil
	case config.NotifierDriverNATS:
		return newNATSPublisher(cfg.Notifier, executor, logger)
	case config.NotifierDriverAMQP:
		return newAMQPPublisher(cfg.Notifier, executor, logger)
	default:
		return nil, fmt.Errorf("unknown notifier driver %q", cfg.Notifier.Driver)
	}
}

func encodeEvent(event entity.SignatureEvent) ([]byte, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event: %w", err)
	}
	return body, nil
}

// topic joins the configured prefix and the event type, e.g. signflow.signature.completed
func topic(prefix, eventType string) string {
	if prefix == "" {
		return eventType
	}
	return prefix + "." + eventType
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, entity.SignatureEvent) error { return nil }
func (noopPublisher) Close() error                                       { return nil }
