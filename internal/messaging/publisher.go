package messaging

import (
	"context"

	"github.com/feral-file/ff-vault/internal/domain"
)

// Publisher defines the interface for publishing vault events to message queue.
// A Publisher is the vault.EventSink of the daemon.
type Publisher interface {
	// PublishEvents publishes the events of one committed operation in order
	PublishEvents(ctx context.Context, events []domain.VaultEvent) error
	// Close closes the connection
	Close()
}
