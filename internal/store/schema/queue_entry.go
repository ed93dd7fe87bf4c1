package schema

// QueueEntry represents the queue_entries table - the ordered ownership queue of each holder
type QueueEntry struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// VaultID references the vault
	VaultID int64 `gorm:"column:vault_id;not null;uniqueIndex:idx_queue_entries_holder_position,priority:1"`
	// Holder owns the queue
	Holder string `gorm:"column:holder;not null;type:text;uniqueIndex:idx_queue_entries_holder_position,priority:2"`
	// Position is the zero-based index from the head of the queue
	Position int `gorm:"column:position;not null;uniqueIndex:idx_queue_entries_holder_position,priority:3"`
	// TokenID is the nft at this position
	TokenID string `gorm:"column:token_id;not null;type:numeric(78,0)"`

	// Associations
	Vault Vault `gorm:"foreignKey:VaultID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the QueueEntry model
func (QueueEntry) TableName() string {
	return "queue_entries"
}
