package schema

import "time"

// Vault represents the vaults table - one fractional vault per whitelisted collection
type Vault struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// Address is the custody address of the vault
	Address string `gorm:"column:address;not null;type:text;index"`
	// Collection is the ERC-721 contract the vault fractionalizes
	Collection string `gorm:"column:collection;not null;type:text;uniqueIndex"`
	// Name is the fungible token name
	Name string `gorm:"column:name;not null;type:text"`
	// Symbol is the fungible token symbol
	Symbol string `gorm:"column:symbol;not null;type:text"`
	// NFTUnits is the number of whole fungible units backing one nft
	NFTUnits uint64 `gorm:"column:nft_units;not null;type:bigint"`
	// ContractURI is the collection-level metadata uri
	ContractURI string `gorm:"column:contract_uri;not null;type:text;default:''"`
	// TokenURI is the base uri of token metadata
	TokenURI string `gorm:"column:token_uri;not null;type:text;default:''"`
	// TotalSupply is the fungible supply (stored as string to support up to 78 digits)
	TotalSupply string `gorm:"column:total_supply;not null;type:numeric(78,0);default:0"`
	// NFTSupply is the number of nfts in custody
	NFTSupply uint64 `gorm:"column:nft_supply;not null;type:bigint;default:0"`
	// Minted is the number of deposits ever accounted for
	Minted uint64 `gorm:"column:minted;not null;type:bigint;default:0"`
	// MaxNFTTokenID is the highest token id ever deposited
	MaxNFTTokenID string `gorm:"column:max_nft_token_id;not null;type:numeric(78,0);default:0"`
	// CreatedAt is the timestamp when the vault was created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp when the vault was last committed
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Vault model
func (Vault) TableName() string {
	return "vaults"
}
