package registry

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/sasha-s/go-deadlock"

	"github.com/feral-file/ff-vault/internal/collection"
)

// CustodyFactory opens the collection custody a vault operates on
//
//go:generate mockgen -source=custody.go -destination=../mocks/custody_factory.go -package=mocks -mock_names=CustodyFactory=MockCustodyFactory
type CustodyFactory interface {
	// VaultAddress returns the custody address of the vault created with the given nonce
	VaultAddress(nonce uint64) common.Address

	// Open returns the custody of a collection held by vaultAddress
	Open(ctx context.Context, collectionAddress, vaultAddress common.Address) (collection.Collection, error)
}

// MemoryCustody keeps every collection in process. Vault addresses are derived from the hub
// address and creation nonce the same way contract addresses are.
type MemoryCustody struct {
	mu          deadlock.Mutex
	hub         common.Address
	collections map[common.Address]*collection.Memory
}

// NewMemoryCustody creates an in-process custody factory for the hub at address
func NewMemoryCustody(hub common.Address) *MemoryCustody {
	return &MemoryCustody{
		hub:         hub,
		collections: make(map[common.Address]*collection.Memory),
	}
}

func (m *MemoryCustody) VaultAddress(nonce uint64) common.Address {
	return crypto.CreateAddress(m.hub, nonce)
}

func (m *MemoryCustody) Open(_ context.Context, collectionAddress, _ common.Address) (collection.Collection, error) {
	return m.Collection(collectionAddress), nil
}

// Collection returns the in-memory collection at address, creating it if needed
func (m *MemoryCustody) Collection(address common.Address) *collection.Memory {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.collections[address]
	if !ok {
		c = collection.NewMemory(address, "", "")
		m.collections[address] = c
	}
	return c
}

// Register installs a pre-built collection
func (m *MemoryCustody) Register(c *collection.Memory) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections[c.Address()] = c
}
