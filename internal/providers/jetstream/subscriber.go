package jetstream

import (
	"context"
	"errors"
	"fmt"

	"github.com/alitto/pond/v2"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/feral-file/ff-vault/internal/adapter"
	"github.com/feral-file/ff-vault/internal/logger"
	"github.com/feral-file/ff-vault/internal/messaging"
)

type subscriber struct {
	nc   adapter.NatsConn
	js   adapter.JetStream
	json adapter.JSON
	cfg  Config
}

// NewSubscriber creates a JetStream consumer of custody notifications
func NewSubscriber(ctx context.Context, cfg Config, natsJS adapter.NatsJetStream, jsonAdapter adapter.JSON) (messaging.Subscriber, error) {
	nc, js, err := connect(cfg, natsJS)
	if err != nil {
		return nil, err
	}

	if err := EnsureStream(ctx, js, cfg.StreamName); err != nil {
		nc.Close()
		return nil, err
	}

	if cfg.Workers <= 0 {
		cfg.Workers = DEFAULT_WORKERS
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DEFAULT_QUEUE_SIZE
	}
	if cfg.MaxDeliver <= 0 {
		cfg.MaxDeliver = DEFAULT_MAX_DELIVER
	}
	if cfg.AckWait <= 0 {
		cfg.AckWait = DEFAULT_ACK_WAIT
	}

	return &subscriber{
		nc:   nc,
		js:   js,
		json: jsonAdapter,
		cfg:  cfg,
	}, nil
}

// SubscribeNotifications consumes custody notifications until ctx is cancelled
func (s *subscriber) SubscribeNotifications(ctx context.Context, handler messaging.NotificationHandler) error {
	consumer, err := s.js.CreateOrUpdateConsumer(ctx, s.cfg.StreamName, jetstream.ConsumerConfig{
		Durable:       s.cfg.ConsumerName,
		FilterSubject: messaging.CUSTODY_RECEIVED_SUBJECT + ".>",
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       s.cfg.AckWait,
		MaxDeliver:    s.cfg.MaxDeliver,
		DeliverPolicy: jetstream.DeliverAllPolicy,
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer %s: %w", s.cfg.ConsumerName, err)
	}

	// Create worker pool for concurrent notification handling
	pool := pond.NewPool(
		s.cfg.Workers,
		pond.WithQueueSize(s.cfg.QueueSize),
		pond.WithContext(ctx),
	)

	logger.InfoCtx(ctx, "Custody notification consumer started",
		zap.String("consumer", s.cfg.ConsumerName),
		zap.Int("workers", s.cfg.Workers))

	cc, err := consumer.Consume(func(msg adapter.Message) {
		// blocks while the queue is full
		pool.Submit(func() {
			s.handle(ctx, msg, handler)
		})
	})
	if err != nil {
		pool.StopAndWait()
		return fmt.Errorf("failed to consume notifications: %w", err)
	}

	<-ctx.Done()

	cc.Stop()
	pool.StopAndWait()

	logger.InfoCtx(ctx, "Custody notification consumer stopped",
		zap.Uint64("submitted", pool.SubmittedTasks()),
		zap.Uint64("completed", pool.CompletedTasks()),
		zap.Uint64("failed", pool.FailedTasks()))

	return nil
}

// handle decodes one message, runs the handler and settles the message
func (s *subscriber) handle(ctx context.Context, msg adapter.Message, handler messaging.NotificationHandler) {
	var n messaging.CustodyNotification
	if err := s.json.Unmarshal(msg.Data(), &n); err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to decode custody notification: %w", err))
		s.settle(ctx, msg.Term, "term")
		return
	}

	err := handler(ctx, &n)
	switch {
	case err == nil:
		s.settle(ctx, msg.Ack, "ack")
	case errors.Is(err, messaging.ErrDropMessage):
		logger.InfoCtx(ctx, "Custody notification dropped",
			zap.Error(err),
			logger.Collection(n.Collection),
			logger.TokenID(n.TokenID))
		s.settle(ctx, msg.Term, "term")
	default:
		logger.WarnCtx(ctx, "Custody notification failed, redelivering",
			zap.Error(err),
			logger.Collection(n.Collection),
			logger.TokenID(n.TokenID))
		s.settle(ctx, msg.Nak, "nak")
	}
}

func (s *subscriber) settle(ctx context.Context, fn func() error, action string) {
	if err := fn(); err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to %s message: %w", action, err))
	}
}

// Close closes the NATS connection
func (s *subscriber) Close() {
	if s.nc == nil {
		return
	}

	s.nc.Close()
}
