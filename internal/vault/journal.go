package vault

import (
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/feral-file/ff-vault/internal/domain"
)

type allowanceKey struct {
	owner   common.Address
	spender common.Address
}

// custodyMove is an external nft transfer performed during an operation
type custodyMove struct {
	from    common.Address
	to      common.Address
	tokenID domain.TokenID
}

// txn stages the mutations of one operation. Every ledger change registers an undo entry
// so a failed operation leaves no trace; the dirty sets feed the receipt.
type txn struct {
	now        time.Time
	undo       []func()
	holders    map[common.Address]struct{}
	tokens     map[domain.TokenID]struct{}
	allowances map[allowanceKey]struct{}
	events     []domain.VaultEvent
	moves      []custodyMove
}

func newTxn(now time.Time) *txn {
	return &txn{
		now:        now,
		holders:    make(map[common.Address]struct{}),
		tokens:     make(map[domain.TokenID]struct{}),
		allowances: make(map[allowanceKey]struct{}),
	}
}

func (t *txn) append(undo func()) {
	t.undo = append(t.undo, undo)
}

// revert undoes every staged change in reverse order
func (t *txn) revert() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
	t.events = nil
}

func (t *txn) touchHolder(holder common.Address) {
	t.holders[holder] = struct{}{}
}

func (t *txn) touchToken(id domain.TokenID) {
	t.tokens[id] = struct{}{}
}

func (t *txn) emit(event domain.VaultEvent) {
	t.events = append(t.events, event)
}
