package vault

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-vault/internal/domain"
)

func TestDeadlineCalldata(t *testing.T) {
	deadline := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)

	data, err := EncodeDeadline(deadline)
	require.NoError(t, err)
	assert.Len(t, data, 32)

	ts, err := DecodeDeadline(data)
	require.NoError(t, err)
	assert.Equal(t, deadline.Unix(), ts.Int64())

	got, err := deadlineFromUnix(ts)
	require.NoError(t, err)
	assert.True(t, deadline.Equal(got))
}

func TestDecodeDeadline_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "short", data: make([]byte, 31)},
		{name: "two words", data: make([]byte, 64)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeDeadline(tt.data)
			assert.ErrorIs(t, err, domain.ErrInvalidCallData)
		})
	}
}

func TestDecodeDeadline_AddressPayload(t *testing.T) {
	// an abi-encoded address decodes as a uint256 far beyond any usable deadline
	data := common.LeftPadBytes(common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3").Bytes(), 32)

	ts, err := DecodeDeadline(data)
	require.NoError(t, err)

	_, err = deadlineFromUnix(ts)
	assert.ErrorIs(t, err, domain.ErrInvalidDeadline)

	_, err = deadlineFromUnix(new(big.Int).Lsh(big.NewInt(1), 64))
	assert.ErrorIs(t, err, domain.ErrInvalidDeadline)
}
