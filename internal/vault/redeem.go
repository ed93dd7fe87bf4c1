package vault

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/feral-file/ff-vault/internal/domain"
)

// Redeem burns one whole unit per nft from caller and releases the nfts from custody to caller.
// A token may be redeemed by its depositor or current holder, or by anyone once its deadline passed.
// When a redeemed token sat in another holder's queue, that holder is refilled from the tail of caller's queue.
func (e *Engine) Redeem(ctx context.Context, caller common.Address, tokenIDs []domain.TokenID) (*Receipt, error) {
	return e.run(ctx, OperationRedeem, func(ctx context.Context, tx *txn) error {
		if err := uniqueTokenIDs(tokenIDs); err != nil {
			return err
		}

		required := e.units.ToAmount(uint64(len(tokenIDs)))
		if e.balances.BalanceOf(caller).Lt(required) {
			return fmt.Errorf("%w: redeeming %d nfts needs %s", domain.ErrInsufficientBalance, len(tokenIDs), required.Dec())
		}

		for _, id := range tokenIDs {
			rec, ok := e.deposits.Get(id)
			if !ok {
				return fmt.Errorf("%w: %s", domain.ErrNotDeposited, id)
			}
			if caller != rec.Depositor && caller != rec.CurrentHolder && !tx.now.After(rec.RedeemDeadline) {
				return fmt.Errorf("%w: %s", domain.ErrNFTCannotRedeem, id)
			}
		}

		for _, id := range tokenIDs {
			if err := e.stageRedeem(tx, caller, id); err != nil {
				return err
			}
		}
		for _, id := range tokenIDs {
			if err := e.transferCustody(ctx, tx, e.address, caller, id, true); err != nil {
				return err
			}
		}
		return nil
	})
}

// stageRedeem must be called with the lock held
func (e *Engine) stageRedeem(tx *txn, caller common.Address, id domain.TokenID) error {
	unit := e.units.UnitSize()
	rec, _ := e.deposits.Get(id)
	holder := rec.CurrentHolder

	if err := e.debit(tx, caller, unit); err != nil {
		return err
	}
	if !e.removeToken(tx, holder, id) {
		return fmt.Errorf("token %s missing from queue of %s", id, holder.Hex())
	}
	if holder != caller {
		moved, err := e.moveToken(tx, caller, holder)
		if err != nil {
			return fmt.Errorf("failed to refill queue of %s: %w", holder.Hex(), err)
		}
		e.emitERC721Transfer(tx, caller, holder, moved)
	}
	e.deleteDeposit(tx, id)
	e.adjustSupply(tx, 1, false)

	ev := e.event(tx, domain.EventTypeRedeem, &caller, nil)
	ev.TokenID = &id
	ev.Amount = unit.Dec()
	tx.emit(ev)
	e.emitTransfer(tx, caller, domain.ZeroAddress, unit.Dec())
	e.emitERC721Transfer(tx, holder, domain.ZeroAddress, id)
	return nil
}
