package schema

import (
	"time"
)

// Balance represents the balances table - fungible balances of vault holders
type Balance struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// VaultID references the vault
	VaultID int64 `gorm:"column:vault_id;not null;uniqueIndex:idx_balances_vault_holder,priority:1"`
	// Holder is the blockchain address of the holder
	Holder string `gorm:"column:holder;not null;type:text;uniqueIndex:idx_balances_vault_holder,priority:2"`
	// Amount is the fungible balance (stored as string to support up to 78 digits for blockchain compatibility)
	Amount string `gorm:"column:amount;not null;type:numeric(78,0)"`
	// CreatedAt is the timestamp when this balance was created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp when this balance was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`

	// Associations
	Vault Vault `gorm:"foreignKey:VaultID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the Balance model
func (Balance) TableName() string {
	return "balances"
}
