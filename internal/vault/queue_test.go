package vault

import (
	"math"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-vault/internal/domain"
)

func ids(values ...uint64) []domain.TokenID {
	out := make([]domain.TokenID, len(values))
	for i, v := range values {
		out[i] = domain.NewTokenID(v)
	}
	return out
}

func TestOwnershipQueue_PushPopTail(t *testing.T) {
	q := NewOwnershipQueue()
	holder := common.HexToAddress("0x1")

	for _, id := range ids(1, 2, 3) {
		q.Push(holder, id)
	}
	assert.Equal(t, 3, q.Length(holder))

	id, err := q.PopTail(holder)
	require.NoError(t, err)
	assert.Equal(t, domain.NewTokenID(3), id)
	assert.Equal(t, ids(1, 2), q.Tokens(holder))

	_, _ = q.PopTail(holder)
	_, _ = q.PopTail(holder)
	_, err = q.PopTail(holder)
	assert.ErrorIs(t, err, domain.ErrEmptyQueue)
	assert.Empty(t, q.Holders())
}

func TestOwnershipQueue_Remove(t *testing.T) {
	q := NewOwnershipQueue()
	holder := common.HexToAddress("0x1")
	for _, id := range ids(10, 11, 12, 13) {
		q.Push(holder, id)
	}

	assert.Equal(t, 1, q.Remove(holder, domain.NewTokenID(11)))
	assert.Equal(t, ids(10, 12, 13), q.Tokens(holder))

	assert.Equal(t, -1, q.Remove(holder, domain.NewTokenID(11)))
	assert.Equal(t, -1, q.Remove(common.HexToAddress("0x2"), domain.NewTokenID(10)))

	q.insert(holder, 1, domain.NewTokenID(11))
	assert.Equal(t, ids(10, 11, 12, 13), q.Tokens(holder))
}

func TestOwnershipQueue_Range(t *testing.T) {
	q := NewOwnershipQueue()
	holder := common.HexToAddress("0x1")
	for _, id := range ids(0, 1, 2) {
		q.Push(holder, id)
	}

	tests := []struct {
		name   string
		offset int
		count  int
		want   []domain.TokenID
	}{
		{name: "whole queue", offset: 0, count: 3, want: ids(0, 1, 2)},
		{name: "middle", offset: 1, count: 2, want: ids(1, 2)},
		{name: "count past end", offset: 2, count: 5, want: ids(2)},
		{name: "max count", offset: 1, count: math.MaxInt, want: ids(1, 2)},
		{name: "offset at end", offset: 3, count: 1, want: []domain.TokenID{}},
		{name: "offset past end", offset: 7, count: 2, want: []domain.TokenID{}},
		{name: "zero count", offset: 0, count: 0, want: []domain.TokenID{}},
		{name: "negative offset", offset: -1, count: 2, want: []domain.TokenID{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, q.Range(holder, tt.offset, tt.count))
		})
	}

	// the returned slice is a copy
	got := q.Range(holder, 0, 3)
	got[0] = domain.NewTokenID(99)
	assert.Equal(t, ids(0, 1, 2), q.Tokens(holder))
}
