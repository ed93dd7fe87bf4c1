package vault

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/feral-file/ff-vault/internal/domain"
)

// The helpers below are the only writers of engine state during an operation.
// All of them must be called with the lock held.

func (e *Engine) pushToken(tx *txn, holder common.Address, id domain.TokenID) {
	e.queues.Push(holder, id)
	tx.touchHolder(holder)
	tx.touchToken(id)
	tx.append(func() {
		_, _ = e.queues.PopTail(holder)
	})
}

func (e *Engine) popToken(tx *txn, holder common.Address) (domain.TokenID, error) {
	id, err := e.queues.PopTail(holder)
	if err != nil {
		return domain.TokenID{}, err
	}
	tx.touchHolder(holder)
	tx.touchToken(id)
	tx.append(func() {
		e.queues.Push(holder, id)
	})
	return id, nil
}

func (e *Engine) removeToken(tx *txn, holder common.Address, id domain.TokenID) bool {
	i := e.queues.Remove(holder, id)
	if i < 0 {
		return false
	}
	tx.touchHolder(holder)
	tx.touchToken(id)
	tx.append(func() {
		e.queues.insert(holder, i, id)
	})
	return true
}

func (e *Engine) putDeposit(tx *txn, id domain.TokenID, rec domain.DepositRecord) {
	prev, existed := e.deposits.Get(id)
	e.deposits.Put(id, rec)
	tx.touchToken(id)
	tx.append(func() {
		if existed {
			e.deposits.Put(id, prev)
		} else {
			e.deposits.Delete(id)
		}
	})
}

func (e *Engine) deleteDeposit(tx *txn, id domain.TokenID) {
	prev, existed := e.deposits.Get(id)
	if !existed {
		return
	}
	e.deposits.Delete(id)
	tx.touchToken(id)
	tx.append(func() {
		e.deposits.Put(id, prev)
	})
}

// moveToken pops the tail of from's queue onto to's queue and records the new holder
func (e *Engine) moveToken(tx *txn, from, to common.Address) (domain.TokenID, error) {
	id, err := e.popToken(tx, from)
	if err != nil {
		return domain.TokenID{}, err
	}
	e.assignToken(tx, to, id)
	return id, nil
}

// assignToken appends id to holder's queue and records holder as its current holder
func (e *Engine) assignToken(tx *txn, holder common.Address, id domain.TokenID) {
	e.pushToken(tx, holder, id)
	if rec, ok := e.deposits.Get(id); ok {
		rec.CurrentHolder = holder
		e.putDeposit(tx, id, rec)
	}
}

func (e *Engine) setBalance(tx *txn, holder common.Address, amount *uint256.Int) {
	prev := e.balances.BalanceOf(holder)
	e.balances.SetBalance(holder, amount)
	tx.touchHolder(holder)
	tx.append(func() {
		e.balances.SetBalance(holder, prev)
	})
}

func (e *Engine) credit(tx *txn, holder common.Address, amount *uint256.Int) {
	e.setBalance(tx, holder, new(uint256.Int).Add(e.balances.BalanceOf(holder), amount))
}

func (e *Engine) debit(tx *txn, holder common.Address, amount *uint256.Int) error {
	balance := e.balances.BalanceOf(holder)
	if balance.Lt(amount) {
		return domain.ErrInsufficientBalance
	}
	e.setBalance(tx, holder, balance.Sub(balance, amount))
	return nil
}

// adjustSupply adds (mint) or removes (burn) one whole unit per nft from the supply counters
func (e *Engine) adjustSupply(tx *txn, nfts uint64, mint bool) {
	prevTotal, prevNFT := e.balances.TotalSupply(), e.balances.NFTSupply()

	amount := e.units.ToAmount(nfts)
	if mint {
		e.balances.SetSupply(new(uint256.Int).Add(prevTotal, amount), prevNFT+nfts)
	} else {
		e.balances.SetSupply(new(uint256.Int).Sub(prevTotal, amount), prevNFT-nfts)
	}

	tx.append(func() {
		e.balances.SetSupply(prevTotal, prevNFT)
	})
}

func (e *Engine) setAllowance(tx *txn, owner, spender common.Address, amount *uint256.Int) {
	prev := e.balances.Allowance(owner, spender)
	e.balances.SetAllowance(owner, spender, amount)
	tx.allowances[allowanceKey{owner: owner, spender: spender}] = struct{}{}
	tx.append(func() {
		e.balances.SetAllowance(owner, spender, prev)
	})
}

func (e *Engine) recordMint(tx *txn, id domain.TokenID) {
	prevMinted := e.minted
	prevMax := e.maxTokenID

	e.minted++
	if id.Cmp(e.maxTokenID) > 0 {
		e.maxTokenID = id
	}

	tx.append(func() {
		e.minted = prevMinted
		e.maxTokenID = prevMax
	})
}
