package collection_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-vault/internal/collection"
	"github.com/feral-file/ff-vault/internal/domain"
)

var (
	nftAddr  = common.HexToAddress("0xc1")
	alice    = common.HexToAddress("0xa1")
	bob      = common.HexToAddress("0xb0")
	operator = common.HexToAddress("0x0b")
)

type receiverFunc func(ctx context.Context, notifier, operator, from common.Address, tokenID domain.TokenID, data []byte) error

func (f receiverFunc) OnERC721Received(ctx context.Context, notifier, operator, from common.Address, tokenID domain.TokenID, data []byte) error {
	return f(ctx, notifier, operator, from, tokenID, data)
}

func TestMemory_TransferAuthorization(t *testing.T) {
	ctx := context.Background()
	id := domain.NewTokenID(1)

	tests := []struct {
		name    string
		setup   func(m *collection.Memory)
		op      common.Address
		from    common.Address
		wantErr error
	}{
		{name: "owner", op: alice, from: alice},
		{name: "unapproved operator", op: operator, from: alice, wantErr: collection.ErrNotAuthorized},
		{
			name:  "approved for all",
			setup: func(m *collection.Memory) { m.SetApprovalForAll(alice, operator, true) },
			op:    operator,
			from:  alice,
		},
		{
			name:  "approved for token",
			setup: func(m *collection.Memory) { require.NoError(t, m.Approve(alice, operator, id)) },
			op:    operator,
			from:  alice,
		},
		{name: "wrong owner", op: bob, from: bob, wantErr: collection.ErrWrongOwner},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := collection.NewMemory(nftAddr, "Blue Chip", "BC")
			require.NoError(t, m.Mint(alice, id))
			if tt.setup != nil {
				tt.setup(m)
			}

			err := m.TransferFrom(ctx, tt.op, tt.from, bob, id)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			owner, err := m.OwnerOf(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, bob, owner)
		})
	}
}

func TestMemory_SafeTransferHooks(t *testing.T) {
	ctx := context.Background()
	m := collection.NewMemory(nftAddr, "Blue Chip", "BC")
	require.NoError(t, m.Mint(alice, domain.NewTokenID(1)))
	require.NoError(t, m.Mint(alice, domain.NewTokenID(2)))

	var notified []domain.TokenID
	m.RegisterReceiver(bob, receiverFunc(func(ctx context.Context, notifier, _, from common.Address, tokenID domain.TokenID, data []byte) error {
		assert.Equal(t, nftAddr, notifier)
		assert.Equal(t, alice, from)
		// the collection is readable from inside the hook
		owner, err := m.OwnerOf(ctx, tokenID)
		require.NoError(t, err)
		assert.Equal(t, bob, owner)

		notified = append(notified, tokenID)
		if string(data) == "reject" {
			return errors.New("no thanks")
		}
		return nil
	}))

	require.NoError(t, m.SafeTransferFrom(ctx, alice, alice, bob, domain.NewTokenID(1), nil))

	err := m.SafeTransferFrom(ctx, alice, alice, bob, domain.NewTokenID(2), []byte("reject"))
	assert.ErrorIs(t, err, collection.ErrReceiverRejected)

	owners, err := m.OwnersOf(ctx, []domain.TokenID{domain.NewTokenID(1), domain.NewTokenID(2)})
	require.NoError(t, err)
	assert.Equal(t, bob, owners[domain.NewTokenID(1)])
	assert.Equal(t, alice, owners[domain.NewTokenID(2)])
	assert.Len(t, notified, 2)

	_, err = m.OwnerOf(ctx, domain.NewTokenID(3))
	assert.ErrorIs(t, err, domain.ErrTokenNotFound)
}
