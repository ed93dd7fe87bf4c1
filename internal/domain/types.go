package domain

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Chain represents the blockchain network identifier using CAIP-2 format
type Chain string

const (
	ChainEthereumMainnet Chain = "eip155:1"
	ChainEthereumSepolia Chain = "eip155:11155111"
)

// IsValidChain checks if a chain is valid
func IsValidChain(chain Chain) bool {
	return chain == ChainEthereumMainnet ||
		chain == ChainEthereumSepolia
}

// TokenID is an ERC-721 token identifier. It covers the full uint256 range and is comparable,
// so it can be used directly as a map key.
type TokenID uint256.Int

// NewTokenID creates a TokenID from a uint64
func NewTokenID(v uint64) TokenID {
	return TokenID(*uint256.NewInt(v))
}

// ParseTokenID parses a base-10 token id
func ParseTokenID(s string) (TokenID, error) {
	if s == "" {
		return TokenID{}, fmt.Errorf("empty token id")
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return TokenID{}, fmt.Errorf("invalid token id %q: %w", s, err)
	}
	return TokenID(*v), nil
}

// TokenIDFromBig converts a big.Int token id, rejecting negative and overflowing values
func TokenIDFromBig(b *big.Int) (TokenID, error) {
	if b == nil || b.Sign() < 0 {
		return TokenID{}, fmt.Errorf("invalid token id %v", b)
	}
	v, overflow := uint256.FromBig(b)
	if overflow {
		return TokenID{}, fmt.Errorf("token id %s overflows uint256", b.String())
	}
	return TokenID(*v), nil
}

// Uint256 returns a copy of the token id as a uint256
func (t TokenID) Uint256() *uint256.Int {
	v := uint256.Int(t)
	return &v
}

// Big returns the token id as a big.Int
func (t TokenID) Big() *big.Int {
	return t.Uint256().ToBig()
}

// Cmp compares two token ids
func (t TokenID) Cmp(o TokenID) int {
	return t.Uint256().Cmp(o.Uint256())
}

// String returns the base-10 representation of the token id
func (t TokenID) String() string {
	return t.Uint256().Dec()
}

// MarshalText implements encoding.TextMarshaler
func (t TokenID) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (t *TokenID) UnmarshalText(b []byte) error {
	v, err := ParseTokenID(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// EventType represents the type of vault event
type EventType string

const (
	EventTypeTransfer       EventType = "transfer"
	EventTypeERC721Transfer EventType = "erc721_transfer"
	EventTypeDeposit        EventType = "deposit"
	EventTypeRedeem         EventType = "redeem"
	EventTypeApproval       EventType = "approval"
	EventTypeVaultCreated   EventType = "vault_created"
)

// IsValidEventType checks if an event type is known
func IsValidEventType(t EventType) bool {
	switch t {
	case EventTypeTransfer, EventTypeERC721Transfer, EventTypeDeposit,
		EventTypeRedeem, EventTypeApproval, EventTypeVaultCreated:
		return true
	}
	return false
}

// VaultEvent is an observable state change of a vault
type VaultEvent struct {
	ID         string          `json:"id"`
	Collection common.Address  `json:"collection"`
	Vault      common.Address  `json:"vault"`
	Type       EventType       `json:"type"`
	From       *common.Address `json:"from,omitempty"`
	To         *common.Address `json:"to,omitempty"`
	Amount     string          `json:"amount,omitempty"`
	TokenID    *TokenID        `json:"token_id,omitempty"`
	Deadline   *time.Time      `json:"deadline,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}

// Subject returns the messaging subject the event is published on
func (e VaultEvent) Subject() string {
	return fmt.Sprintf("vaults.%s.%s", NormalizeAddress(e.Collection), e.Type)
}

// DepositRecord is the redemption metadata of a deposited nft
type DepositRecord struct {
	Depositor      common.Address `json:"depositor"`
	CurrentHolder  common.Address `json:"current_holder"`
	RedeemDeadline time.Time      `json:"redeem_deadline"`
}

// ZeroAddress is the ethereum zero address
var ZeroAddress = common.HexToAddress(ETHEREUM_ZERO_ADDRESS)

// NormalizeAddress returns the lowercase hex form of an address used in subjects and keys
func NormalizeAddress(address common.Address) string {
	return fmt.Sprintf("0x%x", address.Bytes())
}
