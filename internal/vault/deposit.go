package vault

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/feral-file/ff-vault/internal/collection"
	"github.com/feral-file/ff-vault/internal/domain"
)

// Deposit pulls the given nfts from caller into custody and credits caller one whole unit per nft.
// The caller keeps exclusive redemption rights on them until deadline.
func (e *Engine) Deposit(ctx context.Context, caller common.Address, tokenIDs []domain.TokenID, deadline time.Time) (*Receipt, error) {
	return e.run(ctx, OperationDeposit, func(ctx context.Context, tx *txn) error {
		if e.halted {
			return domain.ErrEmergencyClose
		}
		if err := uniqueTokenIDs(tokenIDs); err != nil {
			return err
		}
		if err := e.checkDepositor(caller); err != nil {
			return err
		}
		if err := e.checkDeadline(tx.now, deadline); err != nil {
			return err
		}
		for _, id := range tokenIDs {
			if e.deposits.Exists(id) {
				return fmt.Errorf("%w: %s", domain.ErrAlreadyDeposited, id)
			}
		}

		owners, err := e.ownersOf(ctx, tokenIDs)
		if err != nil {
			return err
		}
		for _, id := range tokenIDs {
			if owners[id] != caller {
				return fmt.Errorf("%w: %s", domain.ErrNotTokenOwner, id)
			}
		}

		for _, id := range tokenIDs {
			e.stageDeposit(tx, caller, id, deadline)
		}
		for _, id := range tokenIDs {
			if err := e.transferCustody(ctx, tx, caller, e.address, id, false); err != nil {
				return err
			}
		}
		return nil
	})
}

// OnERC721Received accounts for an nft that was safe-transferred into custody.
// data carries the abi-encoded redeem deadline.
func (e *Engine) OnERC721Received(ctx context.Context, notifier, operator, from common.Address, tokenID domain.TokenID, data []byte) error {
	_, err := e.DepositReceived(ctx, notifier, operator, from, tokenID, data)
	return err
}

// DepositReceived is OnERC721Received returning the receipt of the deposit
func (e *Engine) DepositReceived(ctx context.Context, notifier, _, from common.Address, tokenID domain.TokenID, data []byte) (*Receipt, error) {
	if notifier != e.custody.Address() {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidNFTAddress, notifier.Hex())
	}
	ts, err := DecodeDeadline(data)
	if err != nil {
		return nil, err
	}

	return e.run(ctx, OperationNotification, func(ctx context.Context, tx *txn) error {
		if e.halted {
			return domain.ErrEmergencyClose
		}
		deadline, err := deadlineFromUnix(ts)
		if err != nil {
			return err
		}
		if err := e.checkDeadline(tx.now, deadline); err != nil {
			return err
		}
		if err := e.checkDepositor(from); err != nil {
			return err
		}
		if e.deposits.Exists(tokenID) {
			return fmt.Errorf("%w: %s", domain.ErrAlreadyDeposited, tokenID)
		}

		owner, err := e.custody.OwnerOf(ctx, tokenID)
		if err != nil {
			return fmt.Errorf("failed to read owner of %s: %w", tokenID, err)
		}
		if owner != e.address {
			return fmt.Errorf("%w: %s not in custody", domain.ErrNotTokenOwner, tokenID)
		}

		e.stageDeposit(tx, from, tokenID, deadline)
		return nil
	})
}

// Refund sends back an nft that reached custody without being accounted for
func (e *Engine) Refund(ctx context.Context, tokenID domain.TokenID, to common.Address) error {
	_, err := e.run(ctx, OperationRefund, func(ctx context.Context, tx *txn) error {
		if e.deposits.Exists(tokenID) {
			return fmt.Errorf("%w: %s", domain.ErrAlreadyDeposited, tokenID)
		}
		owner, err := e.custody.OwnerOf(ctx, tokenID)
		if err != nil {
			return fmt.Errorf("failed to read owner of %s: %w", tokenID, err)
		}
		if owner != e.address {
			return fmt.Errorf("%w: %s not in custody", domain.ErrNotTokenOwner, tokenID)
		}
		return e.transferCustody(ctx, tx, e.address, to, tokenID, false)
	})
	return err
}

// stageDeposit must be called with the lock held
func (e *Engine) stageDeposit(tx *txn, depositor common.Address, id domain.TokenID, deadline time.Time) {
	unit := e.units.UnitSize()

	e.putDeposit(tx, id, domain.DepositRecord{
		Depositor:      depositor,
		CurrentHolder:  depositor,
		RedeemDeadline: deadline,
	})
	e.pushToken(tx, depositor, id)
	e.credit(tx, depositor, unit)
	e.adjustSupply(tx, 1, true)
	e.recordMint(tx, id)

	ev := e.event(tx, domain.EventTypeDeposit, &depositor, nil)
	ev.TokenID = &id
	ev.Deadline = &deadline
	ev.Amount = unit.Dec()
	tx.emit(ev)
	e.emitTransfer(tx, domain.ZeroAddress, depositor, unit.Dec())
	e.emitERC721Transfer(tx, domain.ZeroAddress, depositor, id)
}

func (e *Engine) checkDepositor(depositor common.Address) error {
	if depositor == domain.ZeroAddress || depositor == e.address {
		return fmt.Errorf("%w: %s", domain.ErrInvalidRecipient, depositor.Hex())
	}
	return nil
}

// ownersOf resolves the owner of every token, in one call when the collection supports it
func (e *Engine) ownersOf(ctx context.Context, tokenIDs []domain.TokenID) (map[domain.TokenID]common.Address, error) {
	if batch, ok := e.custody.(collection.BatchOwnerReader); ok {
		owners, err := batch.OwnersOf(ctx, tokenIDs)
		if err != nil {
			return nil, ownerError(err)
		}
		return owners, nil
	}

	owners := make(map[domain.TokenID]common.Address, len(tokenIDs))
	for _, id := range tokenIDs {
		owner, err := e.custody.OwnerOf(ctx, id)
		if err != nil {
			return nil, ownerError(err)
		}
		owners[id] = owner
	}
	return owners, nil
}

func ownerError(err error) error {
	if errors.Is(err, domain.ErrTokenNotFound) {
		return fmt.Errorf("%w: %w", domain.ErrNotTokenOwner, err)
	}
	return fmt.Errorf("failed to read token owners: %w", err)
}

