package messaging

import (
	"context"
	"errors"
	"fmt"
)

// ErrDropMessage marks a notification that must not be redelivered
var ErrDropMessage = errors.New("drop message")

// Drop wraps err so the subscriber terminates the message instead of retrying it
func Drop(err error) error {
	return fmt.Errorf("%w: %w", ErrDropMessage, err)
}

// NotificationHandler is called for every custody notification.
// A nil error acknowledges the message, an error wrapped by Drop terminates it and any other error retries it.
type NotificationHandler func(ctx context.Context, n *CustodyNotification) error

// Subscriber defines the interface for consuming custody notifications
//
//go:generate mockgen -source=subscriber.go -destination=../mocks/subscriber.go -package=mocks -mock_names=Subscriber=MockSubscriber
type Subscriber interface {
	// SubscribeNotifications consumes notifications until ctx is cancelled
	SubscribeNotifications(ctx context.Context, handler NotificationHandler) error

	// Close stops consuming and cleans up resources
	Close()
}
