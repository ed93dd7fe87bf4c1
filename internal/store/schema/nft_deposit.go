package schema

import "time"

// NFTDeposit represents the nft_deposits table - one row per nft in custody
type NFTDeposit struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// VaultID references the vault holding the nft
	VaultID int64 `gorm:"column:vault_id;not null;uniqueIndex:idx_nft_deposits_vault_token,priority:1"`
	// TokenID is the ERC-721 token id
	TokenID string `gorm:"column:token_id;not null;type:numeric(78,0);uniqueIndex:idx_nft_deposits_vault_token,priority:2"`
	// Depositor holds the exclusive redemption right until RedeemDeadline
	Depositor string `gorm:"column:depositor;not null;type:text"`
	// CurrentHolder is the holder whose queue contains the nft
	CurrentHolder string `gorm:"column:current_holder;not null;type:text"`
	// RedeemDeadline is the end of the depositor's exclusive window
	RedeemDeadline time.Time `gorm:"column:redeem_deadline;not null;type:timestamptz"`
	// CreatedAt is the timestamp when this deposit was recorded
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp when this deposit was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`

	// Associations
	Vault Vault `gorm:"foreignKey:VaultID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the NFTDeposit model
func (NFTDeposit) TableName() string {
	return "nft_deposits"
}
