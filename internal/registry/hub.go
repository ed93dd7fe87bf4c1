package registry

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/oklog/ulid/v2"
	"github.com/sasha-s/go-deadlock"
	"go.uber.org/zap"

	"github.com/feral-file/ff-vault/internal/adapter"
	"github.com/feral-file/ff-vault/internal/collection"
	"github.com/feral-file/ff-vault/internal/domain"
	"github.com/feral-file/ff-vault/internal/logger"
	"github.com/feral-file/ff-vault/internal/vault"
)

// SwapRoute is a DEX route advertised for a vault token. The hub only stores it.
type SwapRoute struct {
	Name   string           `json:"name"`
	Router common.Address   `json:"router"`
	Path   []common.Address `json:"path"`
}

// Settings is the persisted administrative state of the hub
type Settings struct {
	Owner             common.Address   `json:"owner"`
	Whitelist         []common.Address `json:"whitelist"`
	RedeemMaxDeadline time.Duration    `json:"redeem_max_deadline"`
	EmergencyClose    bool             `json:"emergency_close"`
	SwapRoutes        []SwapRoute      `json:"swap_routes"`
	Nonce             uint64           `json:"nonce"`
}

// VaultRecord is the persisted identity of a vault
type VaultRecord struct {
	Address     common.Address
	Collection  common.Address
	Name        string
	Symbol      string
	NFTUnits    uint64
	ContractURI string
	TokenURI    string
	CreatedAt   time.Time
}

// Store persists the hub and the ledgers of its vaults
//
//go:generate mockgen -source=hub.go -destination=../mocks/hub.go -package=mocks -mock_names=Store=MockHubStore,Hub=MockHub
type Store interface {
	vault.Committer

	// LoadSettings returns the saved settings, or nil when none were saved yet
	LoadSettings(ctx context.Context) (*Settings, error)

	// SaveSettings overwrites the saved settings
	SaveSettings(ctx context.Context, settings *Settings) error

	// CreateVault saves a new vault together with the settings carrying the advanced nonce
	CreateVault(ctx context.Context, record *VaultRecord, settings *Settings) error

	// UpdateVault saves the mutable fields of a vault
	UpdateVault(ctx context.Context, record *VaultRecord) error

	// ListVaults returns every vault in creation order
	ListVaults(ctx context.Context) ([]VaultRecord, error)

	// LoadVaultState returns the ledger of the vault of a collection
	LoadVaultState(ctx context.Context, collectionAddress common.Address) (*vault.State, error)
}

// Hub creates vaults for whitelisted collections and holds their shared configuration
type Hub interface {
	Address() common.Address
	Owner() common.Address
	SetOwner(ctx context.Context, caller, owner common.Address) error

	IsWhitelisted(collection common.Address) bool
	Whitelist() []common.Address
	SetWhitelist(ctx context.Context, caller common.Address, collections []common.Address, enabled bool) error

	CreateVault(ctx context.Context, caller, collection common.Address, nftUnits uint64) (*vault.Engine, error)
	Vault(collection common.Address) (*vault.Engine, error)
	Vaults() []*vault.Engine

	RedeemMaxDeadline() time.Duration
	SetRedeemMaxDeadline(ctx context.Context, caller common.Address, d time.Duration) error

	SetContractURI(ctx context.Context, caller, collection common.Address, uri string) error
	SetTokenURI(ctx context.Context, caller, collection common.Address, uri string) error

	EmergencyClosed() bool
	SetEmergencyClose(ctx context.Context, caller common.Address, closed bool) error

	SwapRoutes() []SwapRoute
	SetSwapRoutes(ctx context.Context, caller common.Address, routes []SwapRoute) error
}

// Config is the bootstrap configuration of a hub. Persisted settings take precedence.
type Config struct {
	Address           common.Address
	Owner             common.Address
	Whitelist         []common.Address
	RedeemMaxDeadline time.Duration
}

type hub struct {
	mu deadlock.RWMutex

	address  common.Address
	settings Settings
	vaults   map[common.Address]*vault.Engine
	records  map[common.Address]*VaultRecord
	order    []common.Address

	factory CustodyFactory
	store   Store
	sink    vault.EventSink
	clock   adapter.Clock
}

// NewHub loads the hub from store, or bootstraps it from cfg, and restores every vault.
// store and sink may be nil.
func NewHub(ctx context.Context, cfg Config, factory CustodyFactory, store Store, sink vault.EventSink, clock adapter.Clock) (Hub, error) {
	h := &hub{
		address: cfg.Address,
		vaults:  make(map[common.Address]*vault.Engine),
		records: make(map[common.Address]*VaultRecord),
		factory: factory,
		store:   store,
		sink:    sink,
		clock:   clock,
	}

	var saved *Settings
	if store != nil {
		var err error
		saved, err = store.LoadSettings(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load hub settings: %w", err)
		}
	}

	if saved != nil {
		h.settings = *saved
	} else {
		if cfg.RedeemMaxDeadline <= 0 {
			return nil, domain.ErrInvalidRedeemMaxDeadline
		}
		h.settings = Settings{
			Owner:             cfg.Owner,
			Whitelist:         dedupe(cfg.Whitelist),
			RedeemMaxDeadline: cfg.RedeemMaxDeadline,
		}
		if store != nil {
			if err := store.SaveSettings(ctx, &h.settings); err != nil {
				return nil, fmt.Errorf("failed to save hub settings: %w", err)
			}
		}
	}

	if err := h.restoreVaults(ctx); err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "Hub loaded",
		logger.Address("hub", h.address),
		logger.Address("owner", h.settings.Owner),
		zap.Int("vaults", len(h.vaults)),
		zap.Int("whitelist", len(h.settings.Whitelist)))

	return h, nil
}

func (h *hub) restoreVaults(ctx context.Context) error {
	if h.store == nil {
		return nil
	}

	records, err := h.store.ListVaults(ctx)
	if err != nil {
		return fmt.Errorf("failed to list vaults: %w", err)
	}

	for i := range records {
		rec := records[i]
		custody, err := h.factory.Open(ctx, rec.Collection, rec.Address)
		if err != nil {
			return fmt.Errorf("failed to open custody of %s: %w", rec.Collection.Hex(), err)
		}
		state, err := h.store.LoadVaultState(ctx, rec.Collection)
		if err != nil {
			return fmt.Errorf("failed to load state of vault %s: %w", rec.Address.Hex(), err)
		}

		engine, err := vault.Restore(h.vaultConfig(&rec), custody, h.clock, h.committer(), h.sink, state)
		if err != nil {
			return fmt.Errorf("failed to restore vault %s: %w", rec.Address.Hex(), err)
		}
		h.register(&rec, engine, custody)
	}
	return nil
}

func (h *hub) Address() common.Address {
	return h.address
}

func (h *hub) Owner() common.Address {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.settings.Owner
}

func (h *hub) SetOwner(ctx context.Context, caller, owner common.Address) error {
	return h.updateSettings(ctx, caller, func(s *Settings) error {
		if owner == domain.ZeroAddress {
			return fmt.Errorf("%w: zero owner", domain.ErrInvalidRecipient)
		}
		s.Owner = owner
		return nil
	}, nil)
}

func (h *hub) IsWhitelisted(collection common.Address) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Contains(h.settings.Whitelist, collection)
}

func (h *hub) Whitelist() []common.Address {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.settings.Whitelist)
}

func (h *hub) SetWhitelist(ctx context.Context, caller common.Address, collections []common.Address, enabled bool) error {
	return h.updateSettings(ctx, caller, func(s *Settings) error {
		if enabled {
			s.Whitelist = dedupe(append(slices.Clone(s.Whitelist), collections...))
			return nil
		}
		s.Whitelist = slices.DeleteFunc(slices.Clone(s.Whitelist), func(c common.Address) bool {
			return slices.Contains(collections, c)
		})
		return nil
	}, nil)
}

// CreateVault creates the vault of a whitelisted collection. Anyone may call it.
func (h *hub) CreateVault(ctx context.Context, caller, collectionAddress common.Address, nftUnits uint64) (*vault.Engine, error) {
	h.mu.Lock()

	if h.settings.EmergencyClose {
		h.mu.Unlock()
		return nil, domain.ErrEmergencyClose
	}
	if !slices.Contains(h.settings.Whitelist, collectionAddress) {
		h.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", domain.ErrNotWhitelisted, collectionAddress.Hex())
	}
	if _, ok := h.vaults[collectionAddress]; ok {
		h.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", domain.ErrVaultExists, collectionAddress.Hex())
	}
	if nftUnits == 0 {
		h.mu.Unlock()
		return nil, domain.ErrInvalidUnits
	}

	vaultAddress := h.factory.VaultAddress(h.settings.Nonce)
	custody, err := h.factory.Open(ctx, collectionAddress, vaultAddress)
	if err != nil {
		h.mu.Unlock()
		return nil, fmt.Errorf("failed to open custody of %s: %w", collectionAddress.Hex(), err)
	}

	name, symbol := vaultNaming(ctx, custody)
	now := h.clock.Now()
	rec := &VaultRecord{
		Address:    vaultAddress,
		Collection: collectionAddress,
		Name:       name,
		Symbol:     symbol,
		NFTUnits:   nftUnits,
		CreatedAt:  now,
	}

	engine, err := vault.New(h.vaultConfig(rec), custody, h.clock, h.committer(), h.sink)
	if err != nil {
		h.mu.Unlock()
		return nil, err
	}

	settings := h.settings
	settings.Nonce++
	if h.store != nil {
		if err := h.store.CreateVault(ctx, rec, &settings); err != nil {
			h.mu.Unlock()
			return nil, fmt.Errorf("failed to save vault: %w", err)
		}
	}
	h.settings = settings
	h.register(rec, engine, custody)
	h.mu.Unlock()

	logger.InfoCtx(ctx, "Vault created",
		logger.Collection(collectionAddress),
		logger.Address("vault", vaultAddress),
		logger.Address("caller", caller),
		zap.Uint64("nft_units", nftUnits))

	if h.sink != nil {
		event := domain.VaultEvent{
			ID:         ulid.MustNewDefault(now).String(),
			Collection: collectionAddress,
			Vault:      vaultAddress,
			Type:       domain.EventTypeVaultCreated,
			From:       &caller,
			Timestamp:  now,
		}
		if err := h.sink.PublishEvents(ctx, []domain.VaultEvent{event}); err != nil {
			logger.ErrorCtx(ctx, fmt.Errorf("failed to publish vault created event: %w", err), logger.Collection(collectionAddress))
		}
	}

	return engine, nil
}

func (h *hub) Vault(collectionAddress common.Address) (*vault.Engine, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	engine, ok := h.vaults[collectionAddress]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrVaultNotFound, collectionAddress.Hex())
	}
	return engine, nil
}

func (h *hub) Vaults() []*vault.Engine {
	h.mu.RLock()
	defer h.mu.RUnlock()

	engines := make([]*vault.Engine, 0, len(h.order))
	for _, c := range h.order {
		engines = append(engines, h.vaults[c])
	}
	return engines
}

func (h *hub) RedeemMaxDeadline() time.Duration {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.settings.RedeemMaxDeadline
}

func (h *hub) SetRedeemMaxDeadline(ctx context.Context, caller common.Address, d time.Duration) error {
	return h.updateSettings(ctx, caller, func(s *Settings) error {
		if d <= 0 {
			return domain.ErrInvalidRedeemMaxDeadline
		}
		s.RedeemMaxDeadline = d
		return nil
	}, func(engine *vault.Engine) error {
		return engine.SetMaxRedeemDeadline(d)
	})
}

func (h *hub) SetContractURI(ctx context.Context, caller, collectionAddress common.Address, uri string) error {
	return h.updateVault(ctx, caller, collectionAddress, func(rec *VaultRecord, engine *vault.Engine) {
		rec.ContractURI = uri
		engine.SetContractURI(uri)
	})
}

func (h *hub) SetTokenURI(ctx context.Context, caller, collectionAddress common.Address, uri string) error {
	return h.updateVault(ctx, caller, collectionAddress, func(rec *VaultRecord, engine *vault.Engine) {
		rec.TokenURI = uri
		engine.SetTokenURI(uri)
	})
}

func (h *hub) EmergencyClosed() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.settings.EmergencyClose
}

// SetEmergencyClose stops vault creation and deposits on every vault. Redemptions and transfers keep working.
func (h *hub) SetEmergencyClose(ctx context.Context, caller common.Address, closed bool) error {
	return h.updateSettings(ctx, caller, func(s *Settings) error {
		s.EmergencyClose = closed
		return nil
	}, func(engine *vault.Engine) error {
		engine.SetHalted(closed)
		return nil
	})
}

func (h *hub) SwapRoutes() []SwapRoute {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.settings.SwapRoutes)
}

func (h *hub) SetSwapRoutes(ctx context.Context, caller common.Address, routes []SwapRoute) error {
	return h.updateSettings(ctx, caller, func(s *Settings) error {
		s.SwapRoutes = slices.Clone(routes)
		return nil
	}, nil)
}

// updateSettings applies an owner-only change to a copy of the settings, persists it,
// then propagates it to every vault
func (h *hub) updateSettings(ctx context.Context, caller common.Address, mutate func(s *Settings) error, apply func(engine *vault.Engine) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if caller != h.settings.Owner {
		return domain.ErrNotOwner
	}

	settings := h.settings
	if err := mutate(&settings); err != nil {
		return err
	}
	if h.store != nil {
		if err := h.store.SaveSettings(ctx, &settings); err != nil {
			return fmt.Errorf("failed to save hub settings: %w", err)
		}
	}
	h.settings = settings

	if apply != nil {
		for addr, engine := range h.vaults {
			if err := apply(engine); err != nil {
				return fmt.Errorf("failed to apply hub settings to vault of %s: %w", addr.Hex(), err)
			}
		}
	}
	return nil
}

// updateVault applies an owner-only change to one vault and persists its record
func (h *hub) updateVault(ctx context.Context, caller, collectionAddress common.Address, apply func(rec *VaultRecord, engine *vault.Engine)) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if caller != h.settings.Owner {
		return domain.ErrNotOwner
	}
	engine, ok := h.vaults[collectionAddress]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrVaultNotFound, collectionAddress.Hex())
	}

	rec := *h.records[collectionAddress]
	apply(&rec, engine)
	if h.store != nil {
		if err := h.store.UpdateVault(ctx, &rec); err != nil {
			// restore the engine from the unchanged record
			prev := h.records[collectionAddress]
			engine.SetContractURI(prev.ContractURI)
			engine.SetTokenURI(prev.TokenURI)
			return fmt.Errorf("failed to save vault: %w", err)
		}
	}
	h.records[collectionAddress] = &rec
	return nil
}

// register must be called with the lock held or before the hub is shared
func (h *hub) register(rec *VaultRecord, engine *vault.Engine, custody collection.Collection) {
	h.vaults[rec.Collection] = engine
	h.records[rec.Collection] = rec
	h.order = append(h.order, rec.Collection)

	// in-process collections notify the vault directly on safe transfers
	if receivers, ok := custody.(interface {
		RegisterReceiver(address common.Address, receiver collection.Receiver)
	}); ok {
		receivers.RegisterReceiver(rec.Address, engine)
	}
}

func (h *hub) vaultConfig(rec *VaultRecord) vault.Config {
	return vault.Config{
		Address:           rec.Address,
		Name:              rec.Name,
		Symbol:            rec.Symbol,
		NFTUnits:          rec.NFTUnits,
		MaxRedeemDeadline: h.settings.RedeemMaxDeadline,
		ContractURI:       rec.ContractURI,
		TokenURI:          rec.TokenURI,
		Halted:            h.settings.EmergencyClose,
	}
}

// committer returns the store as a committer, or nil without a store
func (h *hub) committer() vault.Committer {
	if h.store == nil {
		return nil
	}
	return h.store
}

// vaultNaming derives the vault token name and symbol from the collection metadata
func vaultNaming(ctx context.Context, custody collection.Collection) (string, string) {
	fallbackName := domain.VAULT_NAME_PREFIX + domain.NormalizeAddress(custody.Address())
	fallbackSymbol := domain.VAULT_SYMBOL_PREFIX + "404"

	meta, ok := custody.(collection.Metadata)
	if !ok {
		return fallbackName, fallbackSymbol
	}

	name, err := meta.Name(ctx)
	if err != nil || name == "" {
		if err != nil {
			logger.WarnCtx(ctx, "Failed to read collection name", zap.Error(err), logger.Collection(custody.Address()))
		}
		return fallbackName, fallbackSymbol
	}
	symbol, err := meta.Symbol(ctx)
	if err != nil || symbol == "" {
		return domain.VAULT_NAME_PREFIX + name, fallbackSymbol
	}
	return domain.VAULT_NAME_PREFIX + name, domain.VAULT_SYMBOL_PREFIX + symbol
}

func dedupe(addresses []common.Address) []common.Address {
	out := make([]common.Address, 0, len(addresses))
	for _, a := range addresses {
		if !slices.Contains(out, a) {
			out = append(out, a)
		}
	}
	return out
}
