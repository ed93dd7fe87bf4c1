package ethereum

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"github.com/feral-file/ff-vault/internal/adapter"
	"github.com/feral-file/ff-vault/internal/collection"
	"github.com/feral-file/ff-vault/internal/domain"
	"github.com/feral-file/ff-vault/internal/logger"
)

const (
	DEFAULT_OWNER_WORKERS   = 8
	DEFAULT_CONFIRM_TIMEOUT = 3 * time.Minute
)

// erc721ABI covers the subset of ERC-721 the vault custody needs
const erc721ABI = `[
{"constant":true,"inputs":[{"name":"tokenId","type":"uint256"}],"name":"ownerOf","outputs":[{"name":"","type":"address"}],"stateMutability":"view","type":"function"},
{"constant":true,"inputs":[],"name":"name","outputs":[{"name":"","type":"string"}],"stateMutability":"view","type":"function"},
{"constant":true,"inputs":[],"name":"symbol","outputs":[{"name":"","type":"string"}],"stateMutability":"view","type":"function"},
{"inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"tokenId","type":"uint256"}],"name":"transferFrom","outputs":[],"stateMutability":"nonpayable","type":"function"},
{"inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"tokenId","type":"uint256"},{"name":"data","type":"bytes"}],"name":"safeTransferFrom","outputs":[],"stateMutability":"nonpayable","type":"function"}
]`

var parsedERC721ABI = func() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(erc721ABI))
	if err != nil {
		panic(err)
	}
	return parsed
}()

// CollectionConfig tunes the on-chain collection
type CollectionConfig struct {
	OwnerWorkers   int
	ConfirmTimeout time.Duration
}

// erc721Collection is a vault custody backed by an ERC-721 contract. Reads go through eth_call;
// transfers are signed by the custody key and waited on until mined.
type erc721Collection struct {
	address        common.Address
	client         adapter.EthClient
	contract       *bind.BoundContract
	auth           *bind.TransactOpts
	clock          adapter.Clock
	pool           pond.ResultPool[common.Address]
	confirmTimeout time.Duration
}

// NewTransactor builds the signer of the custody key
func NewTransactor(ctx context.Context, client adapter.EthClient, hexKey string) (*bind.TransactOpts, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid custody key: %w", err)
	}
	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain id: %w", err)
	}
	return newTransactor(key, chainID)
}

func newTransactor(key *ecdsa.PrivateKey, chainID *big.Int) (*bind.TransactOpts, error) {
	return bind.NewKeyedTransactorWithChainID(key, chainID)
}

// NewERC721Collection creates a custody over the collection at address. The vault address is auth.From.
func NewERC721Collection(client adapter.EthClient, address common.Address, auth *bind.TransactOpts, clock adapter.Clock, cfg CollectionConfig) collection.Collection {
	workers := cfg.OwnerWorkers
	if workers <= 0 {
		workers = DEFAULT_OWNER_WORKERS
	}
	timeout := cfg.ConfirmTimeout
	if timeout <= 0 {
		timeout = DEFAULT_CONFIRM_TIMEOUT
	}

	return &erc721Collection{
		address:        address,
		client:         client,
		contract:       bind.NewBoundContract(address, parsedERC721ABI, client, client, client),
		auth:           auth,
		clock:          clock,
		pool:           pond.NewResultPool[common.Address](workers),
		confirmTimeout: timeout,
	}
}

func (c *erc721Collection) Address() common.Address {
	return c.address
}

// OwnerOf fetches the current owner of a token
func (c *erc721Collection) OwnerOf(ctx context.Context, tokenID domain.TokenID) (common.Address, error) {
	var owner common.Address
	if err := c.call(ctx, &owner, "ownerOf", tokenID.Big()); err != nil {
		return common.Address{}, err
	}
	return owner, nil
}

// OwnersOf fetches the owners of many tokens concurrently
func (c *erc721Collection) OwnersOf(ctx context.Context, tokenIDs []domain.TokenID) (map[domain.TokenID]common.Address, error) {
	group := c.pool.NewGroup()
	for _, id := range tokenIDs {
		group.SubmitErr(func() (common.Address, error) {
			return c.OwnerOf(ctx, id)
		})
	}

	results, err := group.Wait()
	if err != nil {
		return nil, err
	}

	owners := make(map[domain.TokenID]common.Address, len(tokenIDs))
	for i, id := range tokenIDs {
		owners[id] = results[i]
	}
	return owners, nil
}

func (c *erc721Collection) Name(ctx context.Context) (string, error) {
	var name string
	err := c.call(ctx, &name, "name")
	return name, err
}

func (c *erc721Collection) Symbol(ctx context.Context) (string, error) {
	var symbol string
	err := c.call(ctx, &symbol, "symbol")
	return symbol, err
}

func (c *erc721Collection) TransferFrom(ctx context.Context, operator, from, to common.Address, tokenID domain.TokenID) error {
	if operator != c.auth.From {
		return fmt.Errorf("%w: %s", collection.ErrNotAuthorized, operator.Hex())
	}
	return c.transact(ctx, "transferFrom", from, to, tokenID.Big())
}

func (c *erc721Collection) SafeTransferFrom(ctx context.Context, operator, from, to common.Address, tokenID domain.TokenID, data []byte) error {
	if operator != c.auth.From {
		return fmt.Errorf("%w: %s", collection.ErrNotAuthorized, operator.Hex())
	}
	if data == nil {
		data = []byte{}
	}
	return c.transact(ctx, "safeTransferFrom", from, to, tokenID.Big(), data)
}

// call packs an eth_call for a view method and unpacks its single output into out
func (c *erc721Collection) call(ctx context.Context, out interface{}, method string, args ...interface{}) error {
	data, err := parsedERC721ABI.Pack(method, args...)
	if err != nil {
		return fmt.Errorf("failed to pack data: %w", err)
	}

	result, err := c.client.CallContract(ctx, ethereum.CallMsg{
		To:   &c.address,
		Data: data,
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", method, err)
	}

	if err := parsedERC721ABI.UnpackIntoInterface(out, method, result); err != nil {
		return fmt.Errorf("failed to unpack %s result: %w", method, err)
	}
	return nil
}

// transact signs and sends a transaction, then waits until it is mined successfully
func (c *erc721Collection) transact(ctx context.Context, method string, args ...interface{}) error {
	opts := *c.auth
	opts.Context = ctx

	tx, err := c.contract.Transact(&opts, method, args...)
	if err != nil {
		return fmt.Errorf("failed to send %s: %w", method, err)
	}

	logger.InfoCtx(ctx, "Custody transaction sent",
		zap.String("method", method),
		zap.String("tx_hash", tx.Hash().Hex()),
		logger.Collection(c.address))

	receipt, err := c.waitMined(ctx, tx.Hash())
	if err != nil {
		return err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return fmt.Errorf("%s reverted in transaction %s", method, tx.Hash().Hex())
	}
	return nil
}

// waitMined polls for the receipt of a transaction using backoff retry
func (c *erc721Collection) waitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	var receipt *types.Receipt

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.MaxInterval = 15 * time.Second
	b.MaxElapsedTime = c.confirmTimeout
	b.Multiplier = 1.5
	b.RandomizationFactor = 0.5

	start := c.clock.Now()
	operation := func() error {
		r, err := c.client.TransactionReceipt(ctx, hash)
		if err != nil {
			if errors.Is(err, ethereum.NotFound) {
				return fmt.Errorf("transaction %s not mined yet", hash.Hex())
			}
			logger.WarnCtx(ctx, "Failed to fetch receipt, retrying", zap.Error(err))
			return err
		}
		receipt = r
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return nil, fmt.Errorf("timeout or error waiting for transaction %s: %w", hash.Hex(), err)
	}

	logger.DebugCtx(ctx, "Custody transaction mined",
		zap.String("tx_hash", hash.Hex()),
		zap.Duration("elapsed", c.clock.Since(start)))
	return receipt, nil
}
