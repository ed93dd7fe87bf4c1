package jetstream

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/feral-file/ff-vault/internal/adapter"
	"github.com/feral-file/ff-vault/internal/domain"
	"github.com/feral-file/ff-vault/internal/logger"
	"github.com/feral-file/ff-vault/internal/messaging"
)

const (
	DEFAULT_PUBLISH_TIMEOUT = 30 * time.Second
	DEFAULT_WORKERS         = 4
	DEFAULT_QUEUE_SIZE      = 256
	DEFAULT_MAX_DELIVER     = 10
	DEFAULT_ACK_WAIT        = 5 * time.Minute
)

// Config holds the configuration for NATS JetStream connection
type Config struct {
	URL            string
	StreamName     string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectionName string

	// PublishTimeout bounds the retries of one event
	PublishTimeout time.Duration

	// ConsumerName is the durable name of the custody notification consumer
	ConsumerName string
	// Workers is the number of notifications handled concurrently
	Workers   int
	QueueSize int
	// MaxDeliver is the number of deliveries before a notification is given up
	MaxDeliver int
	AckWait    time.Duration
}

type publisher struct {
	nc             adapter.NatsConn
	js             adapter.JetStream
	json           adapter.JSON
	publishTimeout time.Duration
}

// connect opens a NATS connection with the shared reconnect handlers
func connect(cfg Config, natsJS adapter.NatsJetStream) (adapter.NatsConn, adapter.JetStream, error) {
	opts := []nats.Option{
		nats.Name(cfg.ConnectionName),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Error(err, zap.String("message", "Disconnected from NATS"))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("Reconnected to NATS", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	}

	nc, js, err := natsJS.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to NATS and create JetStream: %w", err)
	}
	return nc, js, nil
}

// EnsureStream creates or updates the stream carrying vault events and custody notifications
func EnsureStream(ctx context.Context, js adapter.JetStream, streamName string) error {
	err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name: streamName,
		Subjects: []string{
			messaging.VAULT_EVENT_SUBJECTS,
			messaging.CUSTODY_RECEIVED_SUBJECT + ".>",
		},
		Retention:  jetstream.LimitsPolicy,
		Storage:    jetstream.FileStorage,
		Duplicates: 10 * time.Minute,
	})
	if err != nil {
		return fmt.Errorf("failed to create stream %s: %w", streamName, err)
	}
	return nil
}

// NewPublisher creates a new NATS JetStream publisher and makes sure the stream exists
func NewPublisher(ctx context.Context, cfg Config, natsJS adapter.NatsJetStream, jsonAdapter adapter.JSON) (messaging.Publisher, error) {
	nc, js, err := connect(cfg, natsJS)
	if err != nil {
		return nil, err
	}

	if err := EnsureStream(ctx, js, cfg.StreamName); err != nil {
		nc.Close()
		return nil, err
	}

	timeout := cfg.PublishTimeout
	if timeout <= 0 {
		timeout = DEFAULT_PUBLISH_TIMEOUT
	}

	return &publisher{
		nc:             nc,
		js:             js,
		json:           jsonAdapter,
		publishTimeout: timeout,
	}, nil
}

// PublishEvents publishes vault events to NATS JetStream in order.
// Each event carries its ulid as message id so retried publishes are deduplicated by the stream.
func (p *publisher) PublishEvents(ctx context.Context, events []domain.VaultEvent) error {
	for i := range events {
		if err := p.publishEvent(ctx, &events[i]); err != nil {
			return err
		}
	}
	return nil
}

func (p *publisher) publishEvent(ctx context.Context, event *domain.VaultEvent) error {
	logger.DebugCtx(ctx, "Publishing Nats event", zap.String("id", event.ID), zap.String("type", string(event.Type)))

	data, err := p.json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	subject := event.Subject()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = p.publishTimeout

	operation := func() error {
		_, err := p.js.Publish(ctx, subject, data, jetstream.WithMsgID(event.ID))
		if err != nil {
			logger.WarnCtx(ctx, "Failed to publish event, retrying", zap.Error(err), zap.String("subject", subject))
		}
		return err
	}

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.ID, err)
	}

	return nil
}

// Close closes the NATS connection
func (p *publisher) Close() {
	if p.nc == nil {
		return
	}

	p.nc.Close()
}
