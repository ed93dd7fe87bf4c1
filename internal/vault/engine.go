package vault

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/oklog/ulid/v2"
	"github.com/sasha-s/go-deadlock"
	"go.uber.org/zap"

	"github.com/feral-file/ff-vault/internal/adapter"
	"github.com/feral-file/ff-vault/internal/collection"
	"github.com/feral-file/ff-vault/internal/domain"
	"github.com/feral-file/ff-vault/internal/logger"
)

const (
	OperationDeposit      = "deposit"
	OperationNotification = "deposit_notification"
	OperationRedeem       = "redeem"
	OperationTransfer     = "transfer"
	OperationTransferFrom = "transfer_from"
	OperationApprove      = "approve"
	OperationRefund       = "refund"
)

// Config describes one vault
type Config struct {
	// Address is the custody address of the vault. It also owns the reserve queue.
	Address           common.Address
	Name              string
	Symbol            string
	NFTUnits          uint64
	MaxRedeemDeadline time.Duration
	ContractURI       string
	TokenURI          string
	Halted            bool
}

// Engine is the accounting core of a vault: it keeps the fungible balances, the per-holder
// nft queues and the deposit records in step with the custody held on the collection.
// All operations are serialized. Custody callbacks that run inside an operation must pass on
// the context they were handed: a call made with any other context waits for the lock.
type Engine struct {
	mu deadlock.Mutex

	address  common.Address
	name     string
	symbol   string
	nftUnits uint64
	units    UnitConverter

	custody   collection.Collection
	clock     adapter.Clock
	committer Committer
	sink      EventSink

	deposits *DepositLedger
	queues   *OwnershipQueue
	balances *BalanceLedger

	minted            uint64
	maxTokenID        domain.TokenID
	maxRedeemDeadline time.Duration
	contractURI       string
	tokenURI          string
	halted            bool
}

// New creates an empty vault. committer and sink may be nil.
func New(cfg Config, custody collection.Collection, clock adapter.Clock, committer Committer, sink EventSink) (*Engine, error) {
	units, err := NewUnitConverter(cfg.NFTUnits, domain.DECIMALS)
	if err != nil {
		return nil, err
	}
	if cfg.MaxRedeemDeadline <= 0 {
		return nil, domain.ErrInvalidRedeemMaxDeadline
	}

	return &Engine{
		address:           cfg.Address,
		name:              cfg.Name,
		symbol:            cfg.Symbol,
		nftUnits:          cfg.NFTUnits,
		units:             units,
		custody:           custody,
		clock:             clock,
		committer:         committer,
		sink:              sink,
		deposits:          NewDepositLedger(),
		queues:            NewOwnershipQueue(),
		balances:          NewBalanceLedger(),
		maxRedeemDeadline: cfg.MaxRedeemDeadline,
		contractURI:       cfg.ContractURI,
		tokenURI:          cfg.TokenURI,
		halted:            cfg.Halted,
	}, nil
}

type activeKey struct{}

// activeOp marks a context as running inside an engine operation
type activeOp struct {
	engine *Engine
	parent *activeOp
}

func (e *Engine) entered(ctx context.Context) bool {
	op, _ := ctx.Value(activeKey{}).(*activeOp)
	for ; op != nil; op = op.parent {
		if op.engine == e {
			return true
		}
	}
	return false
}

func (e *Engine) enter(ctx context.Context) context.Context {
	parent, _ := ctx.Value(activeKey{}).(*activeOp)
	return context.WithValue(ctx, activeKey{}, &activeOp{engine: e, parent: parent})
}

// run executes fn as one atomic operation. Either every staged change, custody transfer and
// commit succeeds, or the ledger is restored and completed custody transfers are compensated.
func (e *Engine) run(ctx context.Context, op string, fn func(ctx context.Context, tx *txn) error) (*Receipt, error) {
	if e.entered(ctx) {
		return nil, domain.ErrReentrantCall
	}
	ctx = logger.WithOperation(e.enter(ctx), op)

	e.mu.Lock()
	receipt, err := e.execute(ctx, op, fn)
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}

	if e.sink != nil && len(receipt.Events) > 0 {
		if err := e.sink.PublishEvents(ctx, receipt.Events); err != nil {
			logger.ErrorCtx(ctx, fmt.Errorf("failed to publish vault events: %w", err),
				logger.Collection(receipt.Collection),
				zap.Int("events", len(receipt.Events)))
		}
	}
	return receipt, nil
}

// guard takes the lock for a call made outside any operation
func (e *Engine) guard() func() {
	e.mu.Lock()
	return e.mu.Unlock
}

// guardCtx skips the lock when ctx belongs to an operation of this engine
func (e *Engine) guardCtx(ctx context.Context) func() {
	if e.entered(ctx) {
		return func() {}
	}
	return e.guard()
}

// execute must be called with the lock held
func (e *Engine) execute(ctx context.Context, op string, fn func(ctx context.Context, tx *txn) error) (*Receipt, error) {
	tx := newTxn(e.clock.Now())
	if err := fn(ctx, tx); err != nil {
		e.rollback(ctx, tx)
		return nil, err
	}

	receipt := e.receipt(op, tx)
	if e.committer != nil {
		if err := e.committer.Commit(ctx, receipt); err != nil {
			e.rollback(ctx, tx)
			return nil, fmt.Errorf("failed to commit %s: %w", op, err)
		}
	}
	return receipt, nil
}

// rollback must be called with the lock held
func (e *Engine) rollback(ctx context.Context, tx *txn) {
	for i := len(tx.moves) - 1; i >= 0; i-- {
		m := tx.moves[i]
		if err := e.custody.TransferFrom(ctx, e.address, m.to, m.from, m.tokenID); err != nil {
			logger.ErrorCtx(ctx, fmt.Errorf("failed to compensate custody transfer: %w", err),
				logger.TokenID(m.tokenID),
				logger.Address("from", m.to),
				logger.Address("to", m.from))
		}
	}
	tx.revert()
}

// transferCustody moves an nft on the collection and records the move for compensation
func (e *Engine) transferCustody(ctx context.Context, tx *txn, from, to common.Address, id domain.TokenID, safe bool) error {
	var err error
	if safe {
		err = e.custody.SafeTransferFrom(ctx, e.address, from, to, id, nil)
	} else {
		err = e.custody.TransferFrom(ctx, e.address, from, to, id)
	}
	if err != nil {
		return fmt.Errorf("%w: token %s: %w", domain.ErrTransferFailed, id, err)
	}
	tx.moves = append(tx.moves, custodyMove{from: from, to: to, tokenID: id})
	return nil
}

// checkDeadline must be called with the lock held
func (e *Engine) checkDeadline(now, deadline time.Time) error {
	if !deadline.After(now) || deadline.After(now.Add(e.maxRedeemDeadline)) {
		return fmt.Errorf("%w: %s", domain.ErrInvalidDeadline, deadline.UTC().Format(time.RFC3339))
	}
	return nil
}

func (e *Engine) event(tx *txn, eventType domain.EventType, from, to *common.Address) domain.VaultEvent {
	return domain.VaultEvent{
		ID:         ulid.MustNewDefault(tx.now).String(),
		Collection: e.custody.Address(),
		Vault:      e.address,
		Type:       eventType,
		From:       from,
		To:         to,
		Timestamp:  tx.now,
	}
}

func (e *Engine) emitTransfer(tx *txn, from, to common.Address, amount string) {
	ev := e.event(tx, domain.EventTypeTransfer, &from, &to)
	ev.Amount = amount
	tx.emit(ev)
}

func (e *Engine) emitERC721Transfer(tx *txn, from, to common.Address, id domain.TokenID) {
	ev := e.event(tx, domain.EventTypeERC721Transfer, &from, &to)
	ev.TokenID = &id
	tx.emit(ev)
}

func uniqueTokenIDs(ids []domain.TokenID) error {
	if len(ids) == 0 {
		return domain.ErrInvalidLength
	}
	seen := make(map[domain.TokenID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateTokenID, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
