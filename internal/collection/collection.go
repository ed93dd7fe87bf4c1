package collection

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/feral-file/ff-vault/internal/domain"
)

// Collection is the ERC-721 contract a vault holds custody on
//
//go:generate mockgen -source=collection.go -destination=../mocks/collection.go -package=mocks -mock_names=Collection=MockCollection
type Collection interface {
	// Address returns the collection contract address
	Address() common.Address

	// OwnerOf returns the current owner of a token
	OwnerOf(ctx context.Context, tokenID domain.TokenID) (common.Address, error)

	// TransferFrom moves a token without notifying the recipient
	TransferFrom(ctx context.Context, operator, from, to common.Address, tokenID domain.TokenID) error

	// SafeTransferFrom moves a token and notifies the recipient if it is a receiver
	SafeTransferFrom(ctx context.Context, operator, from, to common.Address, tokenID domain.TokenID, data []byte) error
}

// Receiver is notified when a token is safe-transferred to its address
type Receiver interface {
	OnERC721Received(ctx context.Context, notifier, operator, from common.Address, tokenID domain.TokenID, data []byte) error
}

// Metadata is implemented by collections that expose ERC-721 name and symbol
type Metadata interface {
	Name(ctx context.Context) (string, error)
	Symbol(ctx context.Context) (string, error)
}

// BatchOwnerReader is implemented by collections that can resolve many owners in one call
type BatchOwnerReader interface {
	OwnersOf(ctx context.Context, tokenIDs []domain.TokenID) (map[domain.TokenID]common.Address, error)
}
