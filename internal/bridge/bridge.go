package bridge

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/feral-file/ff-vault/internal/domain"
	"github.com/feral-file/ff-vault/internal/logger"
	"github.com/feral-file/ff-vault/internal/messaging"
	"github.com/feral-file/ff-vault/internal/registry"
)

// Bridge defines the interface for the custody notification bridge
type Bridge interface {
	// Run consumes custody notifications until ctx is cancelled
	Run(ctx context.Context) error
	// HandleNotification accounts for a single custody notification.
	// A rejected nft is sent back to its sender and messaging.ErrDropMessage is returned.
	HandleNotification(ctx context.Context, n *messaging.CustodyNotification) error
	// Close closes the bridge and cleans up resources
	Close()
}

type bridge struct {
	subscriber messaging.Subscriber
	hub        registry.Hub
}

// NewBridge creates a bridge turning custody notifications into vault deposits
func NewBridge(subscriber messaging.Subscriber, hub registry.Hub) Bridge {
	return &bridge{
		subscriber: subscriber,
		hub:        hub,
	}
}

// Run starts the custody notification bridge
func (b *bridge) Run(ctx context.Context) error {
	logger.InfoCtx(ctx, "Starting custody notification bridge")
	return b.subscriber.SubscribeNotifications(ctx, b.HandleNotification)
}

// HandleNotification accounts for an nft safe-transferred into a vault
func (b *bridge) HandleNotification(ctx context.Context, n *messaging.CustodyNotification) error {
	ctx = logger.WithOperation(ctx, "custody_notification")
	fields := []zap.Field{
		logger.Collection(n.Collection),
		logger.Address("from", n.From),
		logger.TokenID(n.TokenID),
	}

	engine, err := b.hub.Vault(n.Collection)
	if err != nil {
		if errors.Is(err, domain.ErrVaultNotFound) {
			logger.WarnCtx(ctx, "Notification for a collection without vault", fields...)
			return messaging.Drop(err)
		}
		return err
	}

	receipt, err := engine.DepositReceived(ctx, n.Collection, n.Operator, n.From, n.TokenID, n.Data)
	if err == nil {
		logger.InfoCtx(ctx, "Custody notification deposited", append(fields, zap.Int("events", len(receipt.Events)))...)
		return nil
	}
	if !domain.IsRejection(err) {
		return fmt.Errorf("failed to account deposit of %s: %w", n.TokenID, err)
	}

	// a redelivered notification of an accounted deposit
	if errors.Is(err, domain.ErrAlreadyDeposited) {
		return messaging.Drop(err)
	}
	if n.From == domain.ZeroAddress || n.From == engine.Address() {
		logger.WarnCtx(ctx, "Rejected nft has no refund recipient", append(fields, zap.Error(err))...)
		return messaging.Drop(err)
	}

	logger.InfoCtx(ctx, "Deposit rejected, refunding", append(fields, zap.Error(err))...)

	if refundErr := engine.Refund(ctx, n.TokenID, n.From); refundErr != nil {
		if domain.IsRejection(refundErr) {
			logger.WarnCtx(ctx, "Rejected nft cannot be refunded", append(fields, zap.Error(refundErr))...)
			return messaging.Drop(err)
		}
		return fmt.Errorf("failed to refund %s: %w", n.TokenID, refundErr)
	}

	return messaging.Drop(err)
}

// Close closes the bridge and cleans up resources
func (b *bridge) Close() {
	b.subscriber.Close()
}
