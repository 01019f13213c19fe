package notifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"signflow/internal/config"
	"signflow/internal/domain/entity"
	"signflow/internal/infrastructure/resilience"
)

type natsPublisher struct {
	conn     *nats.Conn
	prefix   string
	executor *resilience.Executor
	logger   *zap.Logger
}

func newNATSPublisher(cfg config.NotifierConfig, executor *resilience.Executor, logger *zap.Logger) (*natsPublisher, error) {
	conn, err := nats.Connect(
		cfg.URL,
		nats.Name("signflow"),
		nats.Timeout(2*time.Second),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(60),
		nats.RetryOnFailedConnect(true),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect nats: %w", err)
	}

	logger.Info("NATS publisher connected",
		zap.String("url", cfg.URL),
		zap.String("subject_prefix", cfg.SubjectPrefix),
	)

	return &natsPublisher{
		conn:     conn,
		prefix:   cfg.SubjectPrefix,
		executor: executor,
		logger:   logger,
	}, nil
}

func (p *natsPublisher) Publish(ctx context.Context, event entity.SignatureEvent) error {
	body, err := encodeEvent(event)
	if err != nil {
		return err
	}
	subject := topic(p.prefix, event.Type)

	return p.executor.Execute(ctx, "notifier.nats.publish", func(context.Context) error {
		if err := p.conn.Publish(subject, body); err != nil {
			return fmt.Errorf("nats publish: %w", err)
		}
		return nil
	}, classifyNATSError)
}

func (p *natsPublisher) Close() error {
	if p.conn != nil {
		return p.conn.Drain()
	}
	return nil
}

func classifyNATSError(err error) resilience.ErrorClassification {
	if errors.Is(err, nats.ErrNoServers) ||
		errors.Is(err, nats.ErrTimeout) ||
		errors.Is(err, nats.ErrConnectionClosed) ||
		errors.Is(err, nats.ErrDisconnected) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	return resilience.ClassifyTransport(err)
}
