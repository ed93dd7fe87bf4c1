package vault

import (
	"context"
	"slices"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/feral-file/ff-vault/internal/domain"
)

// Committer persists the outcome of an operation. A commit error aborts the operation.
//
//go:generate mockgen -source=receipt.go -destination=../mocks/vault.go -package=mocks -mock_names=Committer=MockCommitter,EventSink=MockEventSink
type Committer interface {
	Commit(ctx context.Context, receipt *Receipt) error
}

// EventSink receives the events of committed operations
type EventSink interface {
	PublishEvents(ctx context.Context, events []domain.VaultEvent) error
}

// HolderState is the post-operation view of a holder touched by an operation
type HolderState struct {
	Address common.Address
	Balance *uint256.Int
	Tokens  []domain.TokenID
}

// DepositChange is the post-operation record of a token. A nil Record means the deposit was removed.
type DepositChange struct {
	TokenID domain.TokenID
	Record  *domain.DepositRecord
}

// AllowanceState is the post-operation allowance of an owner/spender pair
type AllowanceState struct {
	Owner   common.Address
	Spender common.Address
	Amount  *uint256.Int
}

// Receipt describes everything an operation changed
type Receipt struct {
	Operation     string
	Collection    common.Address
	Vault         common.Address
	Timestamp     time.Time
	Events        []domain.VaultEvent
	Holders       []HolderState
	Deposits      []DepositChange
	Allowances    []AllowanceState
	TotalSupply   *uint256.Int
	NFTSupply     uint64
	Minted        uint64
	MaxNFTTokenID domain.TokenID
}

// receipt must be called with the lock held
func (e *Engine) receipt(op string, tx *txn) *Receipt {
	r := &Receipt{
		Operation:     op,
		Collection:    e.custody.Address(),
		Vault:         e.address,
		Timestamp:     tx.now,
		Events:        tx.events,
		TotalSupply:   e.balances.TotalSupply(),
		NFTSupply:     e.balances.NFTSupply(),
		Minted:        e.minted,
		MaxNFTTokenID: e.maxTokenID,
	}

	for holder := range tx.holders {
		r.Holders = append(r.Holders, HolderState{
			Address: holder,
			Balance: e.balances.BalanceOf(holder),
			Tokens:  e.queues.Tokens(holder),
		})
	}
	slices.SortFunc(r.Holders, func(a, b HolderState) int {
		return a.Address.Cmp(b.Address)
	})

	for id := range tx.tokens {
		change := DepositChange{TokenID: id}
		if rec, ok := e.deposits.Get(id); ok {
			change.Record = &rec
		}
		r.Deposits = append(r.Deposits, change)
	}
	slices.SortFunc(r.Deposits, func(a, b DepositChange) int {
		return a.TokenID.Cmp(b.TokenID)
	})

	for key := range tx.allowances {
		r.Allowances = append(r.Allowances, AllowanceState{
			Owner:   key.owner,
			Spender: key.spender,
			Amount:  e.balances.Allowance(key.owner, key.spender),
		})
	}

	return r
}
