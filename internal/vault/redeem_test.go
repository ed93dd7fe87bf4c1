package vault_test

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-vault/internal/domain"
)

func TestRedeem_ByDepositor(t *testing.T) {
	tm := setupTestVault(t)
	defer tearDownTestVault(t, tm)

	tm.deposit(t, userOne, tokens(1, 2)...)

	receipt, err := tm.engine.Redeem(context.Background(), userOne, tokens(1))
	require.NoError(t, err)

	assert.Equal(t, userOne, tm.ownerOf(t, domain.NewTokenID(1)))
	assert.Equal(t, tm.units(1), tm.engine.BalanceOf(userOne))
	assert.Equal(t, tokens(2), tm.engine.OwnedTokens(userOne, 0, 10))
	assert.False(t, tm.engine.CheckTokenIDExists(domain.NewTokenID(1)))
	assert.Equal(t, tm.units(1), tm.engine.TotalSupply())
	assert.Equal(t, uint64(1), tm.engine.ERC721TotalSupply())
	// minted is a lifetime counter
	assert.Equal(t, uint64(2), tm.engine.Minted())

	var removed bool
	for _, change := range receipt.Deposits {
		if change.TokenID == domain.NewTokenID(1) {
			removed = change.Record == nil
		}
	}
	assert.True(t, removed)
}

// userOne deposits two nfts and gives one whole unit to userTwo, who deposited one nft of its own.
// userTwo may only take userOne's remaining nft after its redeem deadline.
func TestRedeem_OtherDepositorAfterDeadline(t *testing.T) {
	tm := setupTestVault(t)
	defer tearDownTestVault(t, tm)

	tm.deposit(t, userOne, tokens(0, 1)...)
	tm.deposit(t, userTwo, tokens(2)...)

	_, err := tm.engine.Transfer(context.Background(), userOne, userTwo, tm.units(1))
	require.NoError(t, err)
	assert.Equal(t, tokens(0), tm.engine.OwnedTokens(userOne, 0, 10))
	assert.Equal(t, tokens(2, 1), tm.engine.OwnedTokens(userTwo, 0, 10))

	_, err = tm.engine.Redeem(context.Background(), userTwo, tokens(0))
	assert.ErrorIs(t, err, domain.ErrNFTCannotRedeem)

	tm.now = tm.now.Add(48 * time.Hour)

	_, err = tm.engine.Redeem(context.Background(), userTwo, tokens(0))
	require.NoError(t, err)

	assert.Equal(t, userTwo, tm.ownerOf(t, domain.NewTokenID(0)))
	// userOne keeps one whole unit, refilled from the tail of userTwo's queue
	assert.Equal(t, tokens(1), tm.engine.OwnedTokens(userOne, 0, 10))
	assert.Equal(t, tokens(2), tm.engine.OwnedTokens(userTwo, 0, 10))
	assert.Equal(t, tm.units(1), tm.engine.BalanceOf(userOne))
	assert.Equal(t, tm.units(1), tm.engine.BalanceOf(userTwo))

	holder, ok := tm.engine.OwnerOfNFT(domain.NewTokenID(1))
	require.True(t, ok)
	assert.Equal(t, userOne, holder)
}

// userOne deposits two nfts and sends half a unit to userTwo, which parks token 2 in the reserve.
// userThree can take the reserve-held token once its deadline passed and refills the reserve.
func TestRedeem_ReserveHeldToken(t *testing.T) {
	tests := []struct {
		name    string
		advance time.Duration
		wantErr error
	}{
		{name: "before deadline", advance: 30 * time.Minute, wantErr: domain.ErrNFTCannotRedeem},
		{name: "after deadline", advance: 2 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := setupTestVault(t)
			defer tearDownTestVault(t, tm)

			tm.deposit(t, userOne, tokens(1, 2)...)
			half := new(uint256.Int).Div(tm.units(1), uint256.NewInt(2))
			_, err := tm.engine.Transfer(context.Background(), userOne, userTwo, half)
			require.NoError(t, err)
			tm.deposit(t, userThree, tokens(3)...)

			holder, ok := tm.engine.OwnerOfNFT(domain.NewTokenID(2))
			require.True(t, ok)
			require.Equal(t, vaultAddr, holder)

			tm.now = tm.now.Add(tt.advance)
			_, err = tm.engine.Redeem(context.Background(), userThree, tokens(2))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tokens(2), tm.engine.OwnedTokens(vaultAddr, 0, 10))
				assert.Equal(t, tokens(3), tm.engine.OwnedTokens(userThree, 0, 10))
				return
			}
			require.NoError(t, err)

			assert.Equal(t, userThree, tm.ownerOf(t, domain.NewTokenID(2)))
			assert.Equal(t, tokens(3), tm.engine.OwnedTokens(vaultAddr, 0, 10))
			assert.Empty(t, tm.engine.OwnedTokens(userThree, 0, 10))
			assert.True(t, tm.engine.BalanceOf(userThree).IsZero())
			assert.False(t, tm.engine.CheckTokenIDExists(domain.NewTokenID(2)))

			holder, ok = tm.engine.OwnerOfNFT(domain.NewTokenID(3))
			require.True(t, ok)
			assert.Equal(t, vaultAddr, holder)
			assert.Equal(t, tm.units(2), tm.engine.TotalSupply())
		})
	}
}

func TestRedeem_ByCurrentHolder(t *testing.T) {
	tm := setupTestVault(t)
	defer tearDownTestVault(t, tm)

	tm.deposit(t, userOne, tokens(1)...)
	_, err := tm.engine.Transfer(context.Background(), userOne, userTwo, tm.units(1))
	require.NoError(t, err)

	holder, _ := tm.engine.OwnerOfNFT(domain.NewTokenID(1))
	require.Equal(t, userTwo, holder)

	_, err = tm.engine.Redeem(context.Background(), userTwo, tokens(1))
	require.NoError(t, err)
	assert.Equal(t, userTwo, tm.ownerOf(t, domain.NewTokenID(1)))
	assert.True(t, tm.engine.TotalSupply().IsZero())
}

func TestRedeem_Errors(t *testing.T) {
	tests := []struct {
		name    string
		caller  common.Address
		ids     []domain.TokenID
		wantErr error
	}{
		{name: "empty list", caller: userOne, ids: nil, wantErr: domain.ErrInvalidLength},
		{name: "duplicate ids", caller: userOne, ids: tokens(1, 1), wantErr: domain.ErrDuplicateTokenID},
		{name: "insufficient balance", caller: userOne, ids: tokens(1, 2, 3), wantErr: domain.ErrInsufficientBalance},
		{name: "not deposited", caller: userOne, ids: tokens(42), wantErr: domain.ErrNotDeposited},
		{name: "no balance", caller: userThree, ids: tokens(1), wantErr: domain.ErrInsufficientBalance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := setupTestVault(t)
			defer tearDownTestVault(t, tm)

			tm.deposit(t, userOne, tokens(1, 2)...)

			_, err := tm.engine.Redeem(context.Background(), tt.caller, tt.ids)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tm.units(2), tm.engine.BalanceOf(userOne))
			assert.Equal(t, tokens(1, 2), tm.engine.OwnedTokens(userOne, 0, 10))
		})
	}
}

func TestRedeem_ReentrantDepositFromHookIsRejected(t *testing.T) {
	tm := setupTestVault(t)
	defer tearDownTestVault(t, tm)

	tm.deposit(t, userOne, tokens(1)...)
	tm.mint(t, userOne, tokens(9)...)

	var hookErr error
	tm.nft.RegisterReceiver(userOne, receiverFunc(func(ctx context.Context, _, _, _ common.Address, _ domain.TokenID, _ []byte) error {
		_, hookErr = tm.engine.Deposit(ctx, userOne, tokens(9), tm.now.Add(time.Hour))
		return hookErr
	}))

	_, err := tm.engine.Redeem(context.Background(), userOne, tokens(1))
	assert.ErrorIs(t, hookErr, domain.ErrReentrantCall)
	assert.ErrorIs(t, err, domain.ErrTransferFailed)
	assert.ErrorIs(t, err, domain.ErrReentrantCall)

	// nothing changed
	assert.Equal(t, vaultAddr, tm.ownerOf(t, domain.NewTokenID(1)))
	assert.Equal(t, userOne, tm.ownerOf(t, domain.NewTokenID(9)))
	assert.Equal(t, tm.units(1), tm.engine.BalanceOf(userOne))
	assert.True(t, tm.engine.CheckTokenIDExists(domain.NewTokenID(1)))
}

func TestRedeem_ReentrantCallWithDerivedContextIsRejected(t *testing.T) {
	tm := setupTestVault(t)
	defer tearDownTestVault(t, tm)

	tm.deposit(t, userOne, tokens(1, 2)...)

	var hookErr error
	tm.nft.RegisterReceiver(userOne, receiverFunc(func(ctx context.Context, _, _, _ common.Address, _ domain.TokenID, _ []byte) error {
		ctx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		_, hookErr = tm.engine.Redeem(ctx, userOne, tokens(2))
		return hookErr
	}))

	_, err := tm.engine.Redeem(context.Background(), userOne, tokens(1))
	assert.ErrorIs(t, hookErr, domain.ErrReentrantCall)
	assert.ErrorIs(t, err, domain.ErrTransferFailed)
	assert.Equal(t, tm.units(2), tm.engine.BalanceOf(userOne))
}

func TestRedeem_HookObservesStagedState(t *testing.T) {
	tm := setupTestVault(t)
	defer tearDownTestVault(t, tm)

	tm.deposit(t, userOne, tokens(1, 2)...)

	var seenBalance string
	var seenQueue []domain.TokenID
	tm.nft.RegisterReceiver(userOne, receiverFunc(func(ctx context.Context, _, _, _ common.Address, _ domain.TokenID, _ []byte) error {
		view := tm.engine.View(ctx)
		seenBalance = view.BalanceOf(userOne).Dec()
		seenQueue = view.OwnedTokens(userOne, 0, 10)
		return nil
	}))

	_, err := tm.engine.Redeem(context.Background(), userOne, tokens(2))
	require.NoError(t, err)
	assert.Equal(t, tm.units(1).Dec(), seenBalance)
	assert.Equal(t, tokens(1), seenQueue)
}

func TestRedeem_SecondCustodyFailureCompensatesFirst(t *testing.T) {
	tm := setupTestVault(t)
	defer tearDownTestVault(t, tm)

	tm.deposit(t, userOne, tokens(1, 2)...)

	calls := 0
	tm.nft.RegisterReceiver(userOne, receiverFunc(func(_ context.Context, _, _, _ common.Address, _ domain.TokenID, _ []byte) error {
		calls++
		if calls == 2 {
			return assert.AnError
		}
		return nil
	}))

	_, err := tm.engine.Redeem(context.Background(), userOne, tokens(1, 2))
	assert.ErrorIs(t, err, domain.ErrTransferFailed)

	assert.Equal(t, vaultAddr, tm.ownerOf(t, domain.NewTokenID(1)))
	assert.Equal(t, vaultAddr, tm.ownerOf(t, domain.NewTokenID(2)))
	assert.Equal(t, tm.units(2), tm.engine.BalanceOf(userOne))
	assert.Equal(t, tokens(1, 2), tm.engine.OwnedTokens(userOne, 0, 10))
}
