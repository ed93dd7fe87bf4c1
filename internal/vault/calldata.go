package vault

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"

	"github.com/feral-file/ff-vault/internal/domain"
)

// deadlineArguments is the abi layout of a deposit notification payload: one uint256 unix timestamp
var deadlineArguments = func() abi.Arguments {
	uint256Type, err := abi.NewType("uint256", "", nil)
	if err != nil {
		panic(err)
	}
	return abi.Arguments{{Name: "deadline", Type: uint256Type}}
}()

// EncodeDeadline abi-encodes a redeem deadline for a deposit notification
func EncodeDeadline(deadline time.Time) ([]byte, error) {
	return deadlineArguments.Pack(big.NewInt(deadline.Unix()))
}

// DecodeDeadline decodes a deposit notification payload into a unix timestamp.
// The payload must be exactly one abi word.
func DecodeDeadline(data []byte) (*big.Int, error) {
	if len(data) != 32 {
		return nil, fmt.Errorf("%w: expected 32 bytes, got %d", domain.ErrInvalidCallData, len(data))
	}

	values, err := deadlineArguments.Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidCallData, err)
	}

	deadline, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected type %T", domain.ErrInvalidCallData, values[0])
	}
	return deadline, nil
}

// deadlineFromUnix converts a decoded timestamp into a time, rejecting values outside int64 seconds
func deadlineFromUnix(ts *big.Int) (time.Time, error) {
	if !ts.IsInt64() {
		return time.Time{}, domain.ErrInvalidDeadline
	}
	return time.Unix(ts.Int64(), 0), nil
}
