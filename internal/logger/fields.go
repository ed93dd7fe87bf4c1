package logger

import (
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/feral-file/ff-vault/internal/domain"
)

// Address returns a zap field for an ethereum address
func Address(key string, address common.Address) zap.Field {
	return zap.String(key, address.Hex())
}

// Collection returns a zap field for a collection address
func Collection(address common.Address) zap.Field {
	return Address("collection", address)
}

// TokenID returns a zap field for a token id
func TokenID(id domain.TokenID) zap.Field {
	return zap.Stringer("token_id", id)
}

// TokenIDs returns a zap field for a list of token ids
func TokenIDs(ids []domain.TokenID) zap.Field {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return zap.Strings("token_ids", out)
}
