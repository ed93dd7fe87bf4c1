package store

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/feral-file/ff-vault/internal/domain"
	"github.com/feral-file/ff-vault/internal/registry"
)

// Store defines the interface for database operations
type Store interface {
	registry.Store

	// ListEvents returns the committed events of the vault of a collection, newest first
	ListEvents(ctx context.Context, collection common.Address, filter EventFilter) ([]domain.VaultEvent, error)
}

// EventFilter narrows ListEvents
type EventFilter struct {
	Types  []domain.EventType
	Limit  int
	Offset int
}

const (
	DEFAULT_EVENT_LIMIT = 50
	MAX_EVENT_LIMIT     = 500
)
