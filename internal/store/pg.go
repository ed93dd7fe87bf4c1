package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/feral-file/ff-vault/internal/domain"
	"github.com/feral-file/ff-vault/internal/logger"
	"github.com/feral-file/ff-vault/internal/registry"
	"github.com/feral-file/ff-vault/internal/store/schema"
	"github.com/feral-file/ff-vault/internal/vault"
)

type pgStore struct {
	SettingsStore
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{
		SettingsStore: NewSettingsStore(db),
		db:            db,
	}
}

// Migrate creates or updates the vault tables
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&schema.Vault{},
		&schema.NFTDeposit{},
		&schema.QueueEntry{},
		&schema.Balance{},
		&schema.Allowance{},
		&schema.VaultEvent{},
		&schema.KeyValueStore{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// ConfigureConnectionPool configures the connection pool settings for a GORM database connection.
// It accesses the underlying *sql.DB and sets the pool configuration.
// If any of the pool settings are 0 or empty, reasonable defaults are used:
//   - MaxOpenConns: 20 (if 0)
//   - MaxIdleConns: 5 (if 0)
//   - ConnMaxLifetime: 5 minutes (if 0)
//   - ConnMaxIdleTime: 10 minutes (if 0)
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime =
		NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// NormalizeConnectionPoolSettings applies defaults and clamps pool settings into safe values.
//
// Defaults (when zero):
//   - MaxOpenConns: 20
//   - MaxIdleConns: 5
//   - ConnMaxLifetime: 5 minutes
//   - ConnMaxIdleTime: 10 minutes
//
// Notes:
//   - database/sql treats MaxOpenConns=0 as "unlimited"
//   - database/sql treats MaxIdleConns=0 as "no idle connections"
func NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (int, int, time.Duration, time.Duration) {
	// Set defaults if not provided
	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}

	// Ensure MaxIdleConns doesn't exceed MaxOpenConns
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	return maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime
}

// calculateSafeBatchSize computes the optimal batch size for bulk inserts to avoid
// PostgreSQL's "extended protocol limited to 65535 parameters" error.
//
// PostgreSQL's extended protocol has a hard limit of 65535 parameters per query.
// When doing batch inserts with GORM, each record consumes multiple parameters
// (one per field being inserted), and ON CONFLICT clauses may add additional parameters.
//
// Parameters:
//   - totalRecords: total number of records to insert
//   - fieldsPerRecord: number of fields/parameters per record
//
// Returns the safe batch size that won't exceed the parameter limit.
//
// Example with headroom of 1000:
//   - QueueEntry struct: 4 fields → (65,535 - 1,000) / 4 = 16,133 records/batch
//   - VaultEvent struct: 6 fields → (65,535 - 1,000) / 6 = 10,755 records/batch
//
// The function uses a total headroom to account for batch-level overhead:
//   - GORM-added timestamp fields (created_at, updated_at) across all records
//   - ON CONFLICT clause parameters (can be significant with multi-column conflicts)
//   - Query metadata and internal GORM bookkeeping
//
// Total headroom is more accurate than per-record overhead because some costs
// are fixed per batch, not scaled per record.
func calculateSafeBatchSize(totalRecords int, fieldsPerRecord int) int {
	const maxParams = 65535
	const totalHeadroom = 1000 // Total parameter headroom for batch-level overhead

	// Reserve headroom from total available parameters
	availableParams := maxParams - totalHeadroom
	safeBatchSize := max(availableParams/fieldsPerRecord, 1)

	if safeBatchSize > totalRecords {
		return totalRecords
	}

	return safeBatchSize
}

// CreateVault inserts a vault and saves the hub settings carrying the advanced nonce in one transaction
func (s *pgStore) CreateVault(ctx context.Context, record *registry.VaultRecord, settings *registry.Settings) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		v := schema.Vault{
			Address:       domain.NormalizeAddress(record.Address),
			Collection:    domain.NormalizeAddress(record.Collection),
			Name:          record.Name,
			Symbol:        record.Symbol,
			NFTUnits:      record.NFTUnits,
			ContractURI:   record.ContractURI,
			TokenURI:      record.TokenURI,
			TotalSupply:   "0",
			MaxNFTTokenID: "0",
			CreatedAt:     record.CreatedAt,
			UpdatedAt:     record.CreatedAt,
		}
		if err := tx.Create(&v).Error; err != nil {
			return fmt.Errorf("failed to create vault: %w", err)
		}

		return saveSettings(tx, settings)
	})
}

// UpdateVault saves the metadata uris of a vault
func (s *pgStore) UpdateVault(ctx context.Context, record *registry.VaultRecord) error {
	result := s.db.WithContext(ctx).
		Model(&schema.Vault{}).
		Where("collection = ?", domain.NormalizeAddress(record.Collection)).
		Updates(map[string]interface{}{
			"contract_uri": record.ContractURI,
			"token_uri":    record.TokenURI,
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update vault: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", domain.ErrVaultNotFound, record.Collection.Hex())
	}
	return nil
}

// ListVaults returns every vault in creation order
func (s *pgStore) ListVaults(ctx context.Context) ([]registry.VaultRecord, error) {
	var vaults []schema.Vault
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&vaults).Error; err != nil {
		return nil, fmt.Errorf("failed to list vaults: %w", err)
	}

	records := make([]registry.VaultRecord, 0, len(vaults))
	for _, v := range vaults {
		records = append(records, registry.VaultRecord{
			Address:     common.HexToAddress(v.Address),
			Collection:  common.HexToAddress(v.Collection),
			Name:        v.Name,
			Symbol:      v.Symbol,
			NFTUnits:    v.NFTUnits,
			ContractURI: v.ContractURI,
			TokenURI:    v.TokenURI,
			CreatedAt:   v.CreatedAt,
		})
	}
	return records, nil
}

func (s *pgStore) getVault(db *gorm.DB, collection common.Address) (*schema.Vault, error) {
	var v schema.Vault
	err := db.Where("collection = ?", domain.NormalizeAddress(collection)).First(&v).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrVaultNotFound, collection.Hex())
		}
		return nil, fmt.Errorf("failed to get vault: %w", err)
	}
	return &v, nil
}

// Commit writes everything an operation changed in one transaction
func (s *pgStore) Commit(ctx context.Context, receipt *vault.Receipt) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		v, err := s.getVault(tx.Clauses(clause.Locking{Strength: "UPDATE"}), receipt.Collection)
		if err != nil {
			return err
		}

		err = tx.Model(v).Updates(map[string]interface{}{
			"total_supply":     receipt.TotalSupply.Dec(),
			"nft_supply":       receipt.NFTSupply,
			"minted":           receipt.Minted,
			"max_nft_token_id": receipt.MaxNFTTokenID.String(),
			"updated_at":       receipt.Timestamp,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to update vault counters: %w", err)
		}

		for _, h := range receipt.Holders {
			if err := s.writeHolder(tx, v.ID, h, receipt.Timestamp); err != nil {
				return err
			}
		}
		for _, d := range receipt.Deposits {
			if err := s.writeDeposit(tx, v.ID, d, receipt.Timestamp); err != nil {
				return err
			}
		}
		for _, a := range receipt.Allowances {
			if err := s.writeAllowance(tx, v.ID, a, receipt.Timestamp); err != nil {
				return err
			}
		}
		if err := s.writeEvents(tx, v.ID, receipt); err != nil {
			return err
		}

		logger.DebugCtx(ctx, "Receipt committed",
			zap.String("operation", receipt.Operation),
			logger.Collection(receipt.Collection),
			zap.Int("holders", len(receipt.Holders)),
			zap.Int("deposits", len(receipt.Deposits)),
			zap.Int("events", len(receipt.Events)))
		return nil
	})
}

// writeHolder upserts the balance of a holder and rewrites its queue
func (s *pgStore) writeHolder(tx *gorm.DB, vaultID int64, h vault.HolderState, now time.Time) error {
	holder := domain.NormalizeAddress(h.Address)

	if h.Balance == nil || h.Balance.IsZero() {
		err := tx.Where("vault_id = ? AND holder = ?", vaultID, holder).Delete(&schema.Balance{}).Error
		if err != nil {
			return fmt.Errorf("failed to delete balance: %w", err)
		}
	} else {
		balance := schema.Balance{
			VaultID:   vaultID,
			Holder:    holder,
			Amount:    h.Balance.Dec(),
			CreatedAt: now,
			UpdatedAt: now,
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "vault_id"}, {Name: "holder"}},
			DoUpdates: clause.AssignmentColumns([]string{"amount", "updated_at"}),
		}).Create(&balance).Error
		if err != nil {
			return fmt.Errorf("failed to upsert balance: %w", err)
		}
	}

	err := tx.Where("vault_id = ? AND holder = ?", vaultID, holder).Delete(&schema.QueueEntry{}).Error
	if err != nil {
		return fmt.Errorf("failed to clear queue: %w", err)
	}
	if len(h.Tokens) == 0 {
		return nil
	}

	entries := make([]schema.QueueEntry, 0, len(h.Tokens))
	for i, id := range h.Tokens {
		entries = append(entries, schema.QueueEntry{
			VaultID:  vaultID,
			Holder:   holder,
			Position: i,
			TokenID:  id.String(),
		})
	}
	// QueueEntry has 4 insertable fields
	if err := tx.CreateInBatches(entries, calculateSafeBatchSize(len(entries), 4)).Error; err != nil {
		return fmt.Errorf("failed to write queue: %w", err)
	}
	return nil
}

func (s *pgStore) writeDeposit(tx *gorm.DB, vaultID int64, d vault.DepositChange, now time.Time) error {
	if d.Record == nil {
		err := tx.Where("vault_id = ? AND token_id = ?", vaultID, d.TokenID.String()).Delete(&schema.NFTDeposit{}).Error
		if err != nil {
			return fmt.Errorf("failed to delete deposit %s: %w", d.TokenID, err)
		}
		return nil
	}

	deposit := schema.NFTDeposit{
		VaultID:        vaultID,
		TokenID:        d.TokenID.String(),
		Depositor:      domain.NormalizeAddress(d.Record.Depositor),
		CurrentHolder:  domain.NormalizeAddress(d.Record.CurrentHolder),
		RedeemDeadline: d.Record.RedeemDeadline,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "vault_id"}, {Name: "token_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"depositor", "current_holder", "redeem_deadline", "updated_at"}),
	}).Create(&deposit).Error
	if err != nil {
		return fmt.Errorf("failed to upsert deposit %s: %w", d.TokenID, err)
	}
	return nil
}

func (s *pgStore) writeAllowance(tx *gorm.DB, vaultID int64, a vault.AllowanceState, now time.Time) error {
	owner := domain.NormalizeAddress(a.Owner)
	spender := domain.NormalizeAddress(a.Spender)

	if a.Amount == nil || a.Amount.IsZero() {
		err := tx.Where("vault_id = ? AND owner = ? AND spender = ?", vaultID, owner, spender).
			Delete(&schema.Allowance{}).Error
		if err != nil {
			return fmt.Errorf("failed to delete allowance: %w", err)
		}
		return nil
	}

	allowance := schema.Allowance{
		VaultID:   vaultID,
		Owner:     owner,
		Spender:   spender,
		Amount:    a.Amount.Dec(),
		UpdatedAt: now,
	}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "vault_id"}, {Name: "owner"}, {Name: "spender"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount", "updated_at"}),
	}).Create(&allowance).Error
	if err != nil {
		return fmt.Errorf("failed to upsert allowance: %w", err)
	}
	return nil
}

func (s *pgStore) writeEvents(tx *gorm.DB, vaultID int64, receipt *vault.Receipt) error {
	if len(receipt.Events) == 0 {
		return nil
	}

	rows := make([]schema.VaultEvent, 0, len(receipt.Events))
	for _, ev := range receipt.Events {
		payload, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("failed to marshal event %s: %w", ev.ID, err)
		}
		rows = append(rows, schema.VaultEvent{
			ID:        ev.ID,
			VaultID:   vaultID,
			Type:      ev.Type,
			Operation: receipt.Operation,
			Payload:   payload,
			Timestamp: ev.Timestamp,
		})
	}

	// VaultEvent has 6 insertable fields
	if err := tx.CreateInBatches(rows, calculateSafeBatchSize(len(rows), 6)).Error; err != nil {
		return fmt.Errorf("failed to write events: %w", err)
	}
	return nil
}

// LoadVaultState reads the ledger of the vault of a collection
func (s *pgStore) LoadVaultState(ctx context.Context, collection common.Address) (*vault.State, error) {
	db := s.db.WithContext(ctx)

	v, err := s.getVault(db, collection)
	if err != nil {
		return nil, err
	}

	state := &vault.State{
		Deposits:   make(map[domain.TokenID]domain.DepositRecord),
		Queues:     make(map[common.Address][]domain.TokenID),
		Balances:   make(map[common.Address]*uint256.Int),
		Allowances: make(map[common.Address]map[common.Address]*uint256.Int),
		Minted:     v.Minted,
	}
	if state.MaxNFTTokenID, err = domain.ParseTokenID(v.MaxNFTTokenID); err != nil {
		return nil, fmt.Errorf("invalid max token id of vault %d: %w", v.ID, err)
	}

	var deposits []schema.NFTDeposit
	if err := db.Where("vault_id = ?", v.ID).Find(&deposits).Error; err != nil {
		return nil, fmt.Errorf("failed to load deposits: %w", err)
	}
	for _, d := range deposits {
		id, err := domain.ParseTokenID(d.TokenID)
		if err != nil {
			return nil, fmt.Errorf("invalid deposit token id %q: %w", d.TokenID, err)
		}
		state.Deposits[id] = domain.DepositRecord{
			Depositor:      common.HexToAddress(d.Depositor),
			CurrentHolder:  common.HexToAddress(d.CurrentHolder),
			RedeemDeadline: d.RedeemDeadline.UTC(),
		}
	}

	var entries []schema.QueueEntry
	if err := db.Where("vault_id = ?", v.ID).Order("holder ASC, position ASC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to load queues: %w", err)
	}
	for _, e := range entries {
		id, err := domain.ParseTokenID(e.TokenID)
		if err != nil {
			return nil, fmt.Errorf("invalid queue token id %q: %w", e.TokenID, err)
		}
		holder := common.HexToAddress(e.Holder)
		state.Queues[holder] = append(state.Queues[holder], id)
	}

	var balances []schema.Balance
	if err := db.Where("vault_id = ?", v.ID).Find(&balances).Error; err != nil {
		return nil, fmt.Errorf("failed to load balances: %w", err)
	}
	for _, b := range balances {
		amount, err := uint256.FromDecimal(b.Amount)
		if err != nil {
			return nil, fmt.Errorf("invalid balance %q: %w", b.Amount, err)
		}
		state.Balances[common.HexToAddress(b.Holder)] = amount
	}

	var allowances []schema.Allowance
	if err := db.Where("vault_id = ?", v.ID).Find(&allowances).Error; err != nil {
		return nil, fmt.Errorf("failed to load allowances: %w", err)
	}
	for _, a := range allowances {
		amount, err := uint256.FromDecimal(a.Amount)
		if err != nil {
			return nil, fmt.Errorf("invalid allowance %q: %w", a.Amount, err)
		}
		owner := common.HexToAddress(a.Owner)
		if state.Allowances[owner] == nil {
			state.Allowances[owner] = make(map[common.Address]*uint256.Int)
		}
		state.Allowances[owner][common.HexToAddress(a.Spender)] = amount
	}

	return state, nil
}

// ListEvents returns the committed events of the vault of a collection, newest first
func (s *pgStore) ListEvents(ctx context.Context, collection common.Address, filter EventFilter) ([]domain.VaultEvent, error) {
	db := s.db.WithContext(ctx)

	v, err := s.getVault(db, collection)
	if err != nil {
		return nil, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DEFAULT_EVENT_LIMIT
	}
	limit = min(limit, MAX_EVENT_LIMIT)

	query := db.Where("vault_id = ?", v.ID)
	if len(filter.Types) > 0 {
		query = query.Where("type IN ?", filter.Types)
	}

	var rows []schema.VaultEvent
	err = query.Order("timestamp DESC, id DESC").Limit(limit).Offset(max(filter.Offset, 0)).Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	events := make([]domain.VaultEvent, 0, len(rows))
	for _, row := range rows {
		var ev domain.VaultEvent
		if err := json.Unmarshal(row.Payload, &ev); err != nil {
			return nil, fmt.Errorf("failed to parse event %s: %w", row.ID, err)
		}
		events = append(events, ev)
	}
	return events, nil
}
