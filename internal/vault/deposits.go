package vault

import (
	"github.com/feral-file/ff-vault/internal/domain"
)

// DepositLedger holds one record per nft currently held in custody
type DepositLedger struct {
	records map[domain.TokenID]domain.DepositRecord
}

// NewDepositLedger creates an empty ledger
func NewDepositLedger() *DepositLedger {
	return &DepositLedger{records: make(map[domain.TokenID]domain.DepositRecord)}
}

func (l *DepositLedger) Get(id domain.TokenID) (domain.DepositRecord, bool) {
	rec, ok := l.records[id]
	return rec, ok
}

func (l *DepositLedger) Exists(id domain.TokenID) bool {
	_, ok := l.records[id]
	return ok
}

func (l *DepositLedger) Put(id domain.TokenID, rec domain.DepositRecord) {
	l.records[id] = rec
}

func (l *DepositLedger) Delete(id domain.TokenID) {
	delete(l.records, id)
}

func (l *DepositLedger) Len() int {
	return len(l.records)
}

// Each calls fn for every record until fn returns false
func (l *DepositLedger) Each(fn func(id domain.TokenID, rec domain.DepositRecord) bool) {
	for id, rec := range l.records {
		if !fn(id, rec) {
			return
		}
	}
}
