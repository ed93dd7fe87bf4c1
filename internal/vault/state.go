package vault

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/feral-file/ff-vault/internal/adapter"
	"github.com/feral-file/ff-vault/internal/collection"
	"github.com/feral-file/ff-vault/internal/domain"
)

// State is the persisted ledger of a vault
type State struct {
	Deposits      map[domain.TokenID]domain.DepositRecord
	Queues        map[common.Address][]domain.TokenID
	Balances      map[common.Address]*uint256.Int
	Allowances    map[common.Address]map[common.Address]*uint256.Int
	Minted        uint64
	MaxNFTTokenID domain.TokenID
}

// Restore rebuilds a vault from persisted state, refusing state that breaks the ledger invariants
func Restore(cfg Config, custody collection.Collection, clock adapter.Clock, committer Committer, sink EventSink, state *State) (*Engine, error) {
	e, err := New(cfg, custody, clock, committer, sink)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return e, nil
	}

	for id, rec := range state.Deposits {
		e.deposits.Put(id, rec)
	}
	for holder, ids := range state.Queues {
		for _, id := range ids {
			e.queues.Push(holder, id)
		}
	}
	total := new(uint256.Int)
	for holder, balance := range state.Balances {
		e.balances.SetBalance(holder, balance)
		total.Add(total, balance)
	}
	for owner, spenders := range state.Allowances {
		for spender, amount := range spenders {
			e.balances.SetAllowance(owner, spender, amount)
		}
	}
	e.balances.SetSupply(total, uint64(e.deposits.Len()))
	e.minted = state.Minted
	e.maxTokenID = state.MaxNFTTokenID

	if err := e.CheckInvariants(); err != nil {
		return nil, err
	}
	return e, nil
}

// Snapshot returns a deep copy of the vault ledger
func (e *Engine) Snapshot() *State {
	defer e.guard()()

	s := &State{
		Deposits:      make(map[domain.TokenID]domain.DepositRecord, e.deposits.Len()),
		Queues:        make(map[common.Address][]domain.TokenID),
		Balances:      make(map[common.Address]*uint256.Int),
		Allowances:    make(map[common.Address]map[common.Address]*uint256.Int),
		Minted:        e.minted,
		MaxNFTTokenID: e.maxTokenID,
	}
	e.deposits.Each(func(id domain.TokenID, rec domain.DepositRecord) bool {
		s.Deposits[id] = rec
		return true
	})
	for _, holder := range e.queues.Holders() {
		s.Queues[holder] = e.queues.Tokens(holder)
	}
	for _, holder := range e.balances.Holders() {
		s.Balances[holder] = e.balances.BalanceOf(holder)
	}
	for owner, spenders := range e.balances.allowances {
		s.Allowances[owner] = make(map[common.Address]*uint256.Int, len(spenders))
		for spender, amount := range spenders {
			s.Allowances[owner][spender] = amount.Clone()
		}
	}
	return s
}

// CheckInvariants verifies that every holder's queue length equals its whole-unit balance,
// that queues and deposit records describe the same tokens, and that supply matches custody.
func (e *Engine) CheckInvariants() error {
	defer e.guard()()

	for _, holder := range e.balances.Holders() {
		if holder == e.address {
			return fmt.Errorf("%w: reserve holds a balance", domain.ErrInvariantViolation)
		}
		if want, got := e.units.WholeUnits(e.balances.BalanceOf(holder)), uint64(e.queues.Length(holder)); want != got {
			return fmt.Errorf("%w: holder %s has %d whole units and %d queued nfts",
				domain.ErrInvariantViolation, holder.Hex(), want, got)
		}
	}

	queued := 0
	for _, holder := range e.queues.Holders() {
		if holder != e.address && e.units.WholeUnits(e.balances.BalanceOf(holder)) != uint64(e.queues.Length(holder)) {
			return fmt.Errorf("%w: holder %s has queued nfts without balance", domain.ErrInvariantViolation, holder.Hex())
		}
		for _, id := range e.queues.Tokens(holder) {
			rec, ok := e.deposits.Get(id)
			if !ok {
				return fmt.Errorf("%w: queued token %s has no deposit", domain.ErrInvariantViolation, id)
			}
			if rec.CurrentHolder != holder {
				return fmt.Errorf("%w: token %s queued for %s but held by %s",
					domain.ErrInvariantViolation, id, holder.Hex(), rec.CurrentHolder.Hex())
			}
			queued++
		}
	}
	if queued != e.deposits.Len() {
		return fmt.Errorf("%w: %d queued tokens for %d deposits", domain.ErrInvariantViolation, queued, e.deposits.Len())
	}

	if want := e.units.ToAmount(uint64(e.deposits.Len())); !e.balances.TotalSupply().Eq(want) {
		return fmt.Errorf("%w: total supply %s does not match %d deposits",
			domain.ErrInvariantViolation, e.balances.TotalSupply().Dec(), e.deposits.Len())
	}
	return nil
}
