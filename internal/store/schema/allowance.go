package schema

import "time"

// Allowance represents the allowances table
type Allowance struct {
	ID      int64  `gorm:"column:id;primaryKey;autoIncrement"`
	VaultID int64  `gorm:"column:vault_id;not null;uniqueIndex:idx_allowances_vault_owner_spender,priority:1"`
	Owner   string `gorm:"column:owner;not null;type:text;uniqueIndex:idx_allowances_vault_owner_spender,priority:2"`
	Spender string `gorm:"column:spender;not null;type:text;uniqueIndex:idx_allowances_vault_owner_spender,priority:3"`
	// Amount is stored as string to support up to 78 digits
	Amount    string    `gorm:"column:amount;not null;type:numeric(78,0)"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`

	// Associations
	Vault Vault `gorm:"foreignKey:VaultID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the Allowance model
func (Allowance) TableName() string {
	return "allowances"
}
