package vault

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-vault/internal/domain"
)

func TestNewUnitConverter(t *testing.T) {
	c, err := NewUnitConverter(10000, 18)
	require.NoError(t, err)

	want, err := uint256.FromDecimal("10000000000000000000000")
	require.NoError(t, err)
	assert.Equal(t, want, c.UnitSize())
	assert.Equal(t, new(uint256.Int).Mul(want, uint256.NewInt(3)), c.ToAmount(3))

	_, err = NewUnitConverter(0, 18)
	assert.ErrorIs(t, err, domain.ErrInvalidUnits)
}

func TestUnitConverter_Crossings(t *testing.T) {
	c, err := NewUnitConverter(1, 0)
	require.NoError(t, err)

	tests := []struct {
		name    string
		balance uint64
		amount  uint64
		lost    uint64
		gained  uint64
	}{
		{name: "whole to whole", balance: 3, amount: 1, lost: 1, gained: 1},
		{name: "nothing", balance: 3, amount: 0, lost: 0, gained: 0},
		{name: "everything", balance: 3, amount: 3, lost: 3, gained: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, a := uint256.NewInt(tt.balance), uint256.NewInt(tt.amount)
			assert.Equal(t, tt.lost, c.Lost(b, a))
			assert.Equal(t, tt.gained, c.Gained(b, a))
		})
	}
}

func TestUnitConverter_FractionalCrossings(t *testing.T) {
	c, err := NewUnitConverter(10, 0)
	require.NoError(t, err)

	// 25 -> 20 stays above two whole units
	assert.Equal(t, uint64(0), c.Lost(uint256.NewInt(25), uint256.NewInt(5)))
	// 25 -> 19 drops below two
	assert.Equal(t, uint64(1), c.Lost(uint256.NewInt(25), uint256.NewInt(6)))
	// 5 + 5 reaches one
	assert.Equal(t, uint64(1), c.Gained(uint256.NewInt(5), uint256.NewInt(5)))
	// 5 + 4 does not
	assert.Equal(t, uint64(0), c.Gained(uint256.NewInt(5), uint256.NewInt(4)))
	assert.Equal(t, uint64(2), c.WholeUnits(uint256.NewInt(29)))
}
