package vault

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// BalanceLedger holds fungible balances, allowances and supply counters
type BalanceLedger struct {
	balances    map[common.Address]*uint256.Int
	allowances  map[common.Address]map[common.Address]*uint256.Int
	totalSupply *uint256.Int
	nftSupply   uint64
}

// NewBalanceLedger creates an empty ledger
func NewBalanceLedger() *BalanceLedger {
	return &BalanceLedger{
		balances:    make(map[common.Address]*uint256.Int),
		allowances:  make(map[common.Address]map[common.Address]*uint256.Int),
		totalSupply: new(uint256.Int),
	}
}

// BalanceOf returns a copy of the holder's balance
func (l *BalanceLedger) BalanceOf(holder common.Address) *uint256.Int {
	if b, ok := l.balances[holder]; ok {
		return b.Clone()
	}
	return new(uint256.Int)
}

// SetBalance overwrites the holder's balance. Supply counters are not touched.
func (l *BalanceLedger) SetBalance(holder common.Address, amount *uint256.Int) {
	if amount.IsZero() {
		delete(l.balances, holder)
		return
	}
	l.balances[holder] = amount.Clone()
}

// TotalSupply returns the fungible total supply
func (l *BalanceLedger) TotalSupply() *uint256.Int {
	return l.totalSupply.Clone()
}

// NFTSupply returns the number of whole units in circulation
func (l *BalanceLedger) NFTSupply() uint64 {
	return l.nftSupply
}

// SetSupply overwrites both supply counters
func (l *BalanceLedger) SetSupply(total *uint256.Int, nfts uint64) {
	l.totalSupply = total.Clone()
	l.nftSupply = nfts
}

func (l *BalanceLedger) Allowance(owner, spender common.Address) *uint256.Int {
	if a, ok := l.allowances[owner][spender]; ok {
		return a.Clone()
	}
	return new(uint256.Int)
}

func (l *BalanceLedger) SetAllowance(owner, spender common.Address, amount *uint256.Int) {
	if amount.IsZero() {
		delete(l.allowances[owner], spender)
		if len(l.allowances[owner]) == 0 {
			delete(l.allowances, owner)
		}
		return
	}
	if l.allowances[owner] == nil {
		l.allowances[owner] = make(map[common.Address]*uint256.Int)
	}
	l.allowances[owner][spender] = amount.Clone()
}

// Holders returns every address with a non-zero balance
func (l *BalanceLedger) Holders() []common.Address {
	holders := make([]common.Address, 0, len(l.balances))
	for h := range l.balances {
		holders = append(holders, h)
	}
	return holders
}
