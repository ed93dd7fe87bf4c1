package domain

const (
	// Blockchain constants
	ETHEREUM_ZERO_ADDRESS = "0x0000000000000000000000000000000000000000"

	// Vault token constants
	DECIMALS            uint8 = 18
	VAULT_NAME_PREFIX         = "X404-"
	VAULT_SYMBOL_PREFIX       = "X"
)
