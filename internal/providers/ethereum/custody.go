package ethereum

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"github.com/feral-file/ff-vault/internal/adapter"
	"github.com/feral-file/ff-vault/internal/collection"
)

// Custody opens on-chain collections held by a single custodial account.
// Every vault shares the account, so the vault address is the signer address.
type Custody struct {
	client adapter.EthClient
	auth   *bind.TransactOpts
	clock  adapter.Clock
	cfg    CollectionConfig
}

// NewCustody creates a custody factory signing with auth
func NewCustody(client adapter.EthClient, auth *bind.TransactOpts, clock adapter.Clock, cfg CollectionConfig) *Custody {
	return &Custody{
		client: client,
		auth:   auth,
		clock:  clock,
		cfg:    cfg,
	}
}

func (c *Custody) VaultAddress(_ uint64) common.Address {
	return c.auth.From
}

func (c *Custody) Open(ctx context.Context, collectionAddress, vaultAddress common.Address) (collection.Collection, error) {
	if vaultAddress != c.auth.From {
		return nil, fmt.Errorf("vault %s is not held by signer %s", vaultAddress.Hex(), c.auth.From.Hex())
	}

	code, err := c.client.CodeAt(ctx, collectionAddress, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read code of %s: %w", collectionAddress.Hex(), err)
	}
	if len(code) == 0 {
		return nil, fmt.Errorf("no contract at %s", collectionAddress.Hex())
	}

	return NewERC721Collection(c.client, collectionAddress, c.auth, c.clock, c.cfg), nil
}
