package ethereum

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-vault/internal/mocks"
)

func setupTestCustody(t *testing.T) (*gomock.Controller, *mocks.MockEthClient, *Custody) {
	ctrl := gomock.NewController(t)

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	auth, err := newTransactor(key, big.NewInt(1))
	require.NoError(t, err)

	client := mocks.NewMockEthClient(ctrl)
	return ctrl, client, NewCustody(client, auth, mocks.NewMockClock(ctrl), CollectionConfig{})
}

func TestCustody_Open(t *testing.T) {
	tests := []struct {
		name        string
		vault       func(c *Custody) common.Address
		setupMocks  func(client *mocks.MockEthClient)
		expectedErr string
	}{
		{
			name:  "success",
			vault: func(c *Custody) common.Address { return c.VaultAddress(3) },
			setupMocks: func(client *mocks.MockEthClient) {
				client.EXPECT().CodeAt(gomock.Any(), testCollectionAddr, gomock.Nil()).Return([]byte{0x60, 0x80}, nil)
			},
		},
		{
			name:        "foreign vault address",
			vault:       func(_ *Custody) common.Address { return common.HexToAddress("0x1") },
			setupMocks:  func(_ *mocks.MockEthClient) {},
			expectedErr: "is not held by signer",
		},
		{
			name:  "no contract",
			vault: func(c *Custody) common.Address { return c.VaultAddress(0) },
			setupMocks: func(client *mocks.MockEthClient) {
				client.EXPECT().CodeAt(gomock.Any(), testCollectionAddr, gomock.Nil()).Return(nil, nil)
			},
			expectedErr: "no contract at",
		},
		{
			name:  "rpc error",
			vault: func(c *Custody) common.Address { return c.VaultAddress(0) },
			setupMocks: func(client *mocks.MockEthClient) {
				client.EXPECT().CodeAt(gomock.Any(), testCollectionAddr, gomock.Nil()).Return(nil, errors.New("connection refused"))
			},
			expectedErr: "connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl, client, custody := setupTestCustody(t)
			defer ctrl.Finish()

			tt.setupMocks(client)

			got, err := custody.Open(context.Background(), testCollectionAddr, tt.vault(custody))
			if tt.expectedErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testCollectionAddr, got.Address())
		})
	}
}
