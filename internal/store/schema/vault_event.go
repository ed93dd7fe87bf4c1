package schema

import (
	"time"

	"gorm.io/datatypes"

	"github.com/feral-file/ff-vault/internal/domain"
)

// VaultEvent represents the vault_events table - audit trail of committed vault operations
type VaultEvent struct {
	// ID is the ulid of the event
	ID string `gorm:"column:id;primaryKey;type:text"`
	// VaultID references the vault that emitted the event
	VaultID int64 `gorm:"column:vault_id;not null;index:idx_vault_events_vault_timestamp,priority:1"`
	// Type identifies the event (transfer, erc721_transfer, deposit, redeem, approval, vault_created)
	Type domain.EventType `gorm:"column:type;not null;type:text"`
	// Operation is the vault operation that emitted the event
	Operation string `gorm:"column:operation;not null;type:text"`
	// Payload contains the complete event as JSON
	Payload datatypes.JSON `gorm:"column:payload;type:jsonb;not null"`
	// Timestamp is when the operation was committed
	Timestamp time.Time `gorm:"column:timestamp;not null;type:timestamptz;index:idx_vault_events_vault_timestamp,priority:2"`

	// Associations
	Vault Vault `gorm:"foreignKey:VaultID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the VaultEvent model
func (VaultEvent) TableName() string {
	return "vault_events"
}
