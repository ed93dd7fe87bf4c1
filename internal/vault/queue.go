package vault

import (
	"slices"

	"github.com/ethereum/go-ethereum/common"

	"github.com/feral-file/ff-vault/internal/domain"
)

// OwnershipQueue keeps, per holder, the ordered list of nfts attributed to that holder.
// Tokens are appended at the tail and transfers take from the tail.
type OwnershipQueue struct {
	queues map[common.Address][]domain.TokenID
}

// NewOwnershipQueue creates an empty queue set
func NewOwnershipQueue() *OwnershipQueue {
	return &OwnershipQueue{queues: make(map[common.Address][]domain.TokenID)}
}

// Push appends id at the tail of the holder's queue
func (q *OwnershipQueue) Push(holder common.Address, id domain.TokenID) {
	q.queues[holder] = append(q.queues[holder], id)
}

// PopTail removes and returns the last token of the holder's queue
func (q *OwnershipQueue) PopTail(holder common.Address) (domain.TokenID, error) {
	items := q.queues[holder]
	if len(items) == 0 {
		return domain.TokenID{}, domain.ErrEmptyQueue
	}

	id := items[len(items)-1]
	q.set(holder, items[:len(items)-1])
	return id, nil
}

// Remove deletes id from the holder's queue keeping the order of the others.
// It returns the position id occupied, or -1 if absent.
func (q *OwnershipQueue) Remove(holder common.Address, id domain.TokenID) int {
	items := q.queues[holder]
	i := slices.Index(items, id)
	if i < 0 {
		return -1
	}
	q.set(holder, slices.Delete(items, i, i+1))
	return i
}

// insert puts id back at position i of the holder's queue
func (q *OwnershipQueue) insert(holder common.Address, i int, id domain.TokenID) {
	q.queues[holder] = slices.Insert(q.queues[holder], i, id)
}

// Length returns the number of tokens attributed to holder
func (q *OwnershipQueue) Length(holder common.Address) int {
	return len(q.queues[holder])
}

// Range returns up to count tokens starting at offset. An offset past the end yields an empty slice.
func (q *OwnershipQueue) Range(holder common.Address, offset, count int) []domain.TokenID {
	items := q.queues[holder]
	if offset < 0 || count <= 0 || offset >= len(items) {
		return []domain.TokenID{}
	}

	count = min(count, len(items)-offset)
	return slices.Clone(items[offset : offset+count])
}

// Tokens returns a copy of the holder's whole queue
func (q *OwnershipQueue) Tokens(holder common.Address) []domain.TokenID {
	return slices.Clone(q.queues[holder])
}

// Holders returns every address with a non-empty queue
func (q *OwnershipQueue) Holders() []common.Address {
	holders := make([]common.Address, 0, len(q.queues))
	for h := range q.queues {
		holders = append(holders, h)
	}
	return holders
}

func (q *OwnershipQueue) set(holder common.Address, items []domain.TokenID) {
	if len(items) == 0 {
		delete(q.queues, holder)
		return
	}
	q.queues[holder] = items
}
