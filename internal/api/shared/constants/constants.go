package constants

const (
	MAX_TOKEN_IDS_PER_REQUEST   = 50
	MAX_COLLECTIONS_PER_REQUEST = 20
	MAX_SWAP_ROUTES             = 10
	MAX_PAGE_SIZE               = 100
)
