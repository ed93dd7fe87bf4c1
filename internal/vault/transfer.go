package vault

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/feral-file/ff-vault/internal/domain"
)

// maxAllowance is treated as an unlimited approval and never decremented
var maxAllowance = new(uint256.Int).SetAllOne()

// Transfer moves amount from caller to to, moving nfts between queues as whole-unit boundaries are crossed
func (e *Engine) Transfer(ctx context.Context, caller, to common.Address, amount *uint256.Int) (*Receipt, error) {
	return e.run(ctx, OperationTransfer, func(_ context.Context, tx *txn) error {
		return e.transfer(tx, caller, to, amount)
	})
}

// TransferFrom moves amount from from to to on behalf of spender, spending spender's allowance
func (e *Engine) TransferFrom(ctx context.Context, spender, from, to common.Address, amount *uint256.Int) (*Receipt, error) {
	return e.run(ctx, OperationTransferFrom, func(_ context.Context, tx *txn) error {
		allowance := e.balances.Allowance(from, spender)
		if allowance.Lt(amount) {
			return fmt.Errorf("%w: %s < %s", domain.ErrInsufficientAllowance, allowance.Dec(), amount.Dec())
		}
		if !allowance.Eq(maxAllowance) {
			e.setAllowance(tx, from, spender, allowance.Sub(allowance, amount))
		}
		return e.transfer(tx, from, to, amount)
	})
}

// Approve sets the amount spender may move out of owner's balance
func (e *Engine) Approve(ctx context.Context, owner, spender common.Address, amount *uint256.Int) (*Receipt, error) {
	return e.run(ctx, OperationApprove, func(_ context.Context, tx *txn) error {
		if spender == domain.ZeroAddress {
			return domain.ErrInvalidSpender
		}
		e.setAllowance(tx, owner, spender, amount)

		ev := e.event(tx, domain.EventTypeApproval, &owner, &spender)
		ev.Amount = amount.Dec()
		tx.emit(ev)
		return nil
	})
}

// transfer must be called with the lock held.
// The sender gives up the tail of its queue for every whole unit it loses. The recipient takes
// those tokens first for every whole unit it gains; surplus goes to the reserve queue and any
// shortfall is served from the reserve tail.
func (e *Engine) transfer(tx *txn, from, to common.Address, amount *uint256.Int) error {
	if to == domain.ZeroAddress || to == e.address {
		return fmt.Errorf("%w: %s", domain.ErrInvalidRecipient, to.Hex())
	}

	balance := e.balances.BalanceOf(from)
	if balance.Lt(amount) {
		return fmt.Errorf("%w: %s < %s", domain.ErrInsufficientBalance, balance.Dec(), amount.Dec())
	}
	if from == to {
		e.emitTransfer(tx, from, to, amount.Dec())
		return nil
	}

	lost := e.units.Lost(balance, amount)
	gained := e.units.Gained(e.balances.BalanceOf(to), amount)

	if err := e.debit(tx, from, amount); err != nil {
		return err
	}
	e.credit(tx, to, amount)

	for i := uint64(0); i < lost; i++ {
		dest := e.address
		if i < gained {
			dest = to
		}
		id, err := e.moveToken(tx, from, dest)
		if err != nil {
			return fmt.Errorf("failed to move nft from %s: %w", from.Hex(), err)
		}
		e.emitERC721Transfer(tx, from, dest, id)
	}
	for i := lost; i < gained; i++ {
		id, err := e.moveToken(tx, e.address, to)
		if err != nil {
			return fmt.Errorf("failed to take nft from reserve: %w", err)
		}
		e.emitERC721Transfer(tx, e.address, to, id)
	}

	e.emitTransfer(tx, from, to, amount.Dec())
	return nil
}
