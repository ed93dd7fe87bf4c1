package vault

import (
	"github.com/holiman/uint256"

	"github.com/feral-file/ff-vault/internal/domain"
)

// UnitConverter maps between whole nfts and fungible amounts
type UnitConverter struct {
	unit *uint256.Int
}

// NewUnitConverter returns a converter where one nft equals nftUnits * 10^decimals
func NewUnitConverter(nftUnits uint64, decimals uint8) (UnitConverter, error) {
	if nftUnits == 0 {
		return UnitConverter{}, domain.ErrInvalidUnits
	}

	scale := new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(decimals)))
	unit, overflow := new(uint256.Int).MulOverflow(uint256.NewInt(nftUnits), scale)
	if overflow {
		return UnitConverter{}, domain.ErrInvalidUnits
	}
	return UnitConverter{unit: unit}, nil
}

// UnitSize returns the fungible amount backing one nft
func (c UnitConverter) UnitSize() *uint256.Int {
	return c.unit.Clone()
}

// ToAmount returns the fungible amount backing n nfts
func (c UnitConverter) ToAmount(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(c.unit, uint256.NewInt(n))
}

// WholeUnits returns floor(amount / unitSize)
func (c UnitConverter) WholeUnits(amount *uint256.Int) uint64 {
	return new(uint256.Int).Div(amount, c.unit).Uint64()
}

// Lost returns how many whole units a balance drops below when amount is removed from it
func (c UnitConverter) Lost(balance, amount *uint256.Int) uint64 {
	after := new(uint256.Int).Sub(balance, amount)
	return c.WholeUnits(balance) - c.WholeUnits(after)
}

// Gained returns how many whole units a balance crosses when amount is added to it
func (c UnitConverter) Gained(balance, amount *uint256.Int) uint64 {
	after := new(uint256.Int).Add(balance, amount)
	return c.WholeUnits(after) - c.WholeUnits(balance)
}
