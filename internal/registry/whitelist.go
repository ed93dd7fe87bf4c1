package registry

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/feral-file/ff-vault/internal/adapter"
	"github.com/feral-file/ff-vault/internal/domain"
)

// WhitelistData represents the structure of the whitelist.json file
// Key format: "chain_id" -> list of collection addresses
type WhitelistData map[string][]string

// WhitelistLoader reads the initial collection whitelist
//
//go:generate mockgen -source=whitelist.go -destination=../mocks/whitelist_loader.go -package=mocks -mock_names=WhitelistLoader=MockWhitelistLoader
type WhitelistLoader interface {
	// Load returns the whitelisted collections of a chain
	Load(filePath string, chainID domain.Chain) ([]common.Address, error)
}

type whitelistLoader struct {
	fs   adapter.FileSystem
	json adapter.JSON
}

// NewWhitelistLoader creates a whitelist loader
func NewWhitelistLoader(fs adapter.FileSystem, json adapter.JSON) WhitelistLoader {
	return &whitelistLoader{fs: fs, json: json}
}

// Load reads the whitelist file and returns the collections listed for chainID.
// Chain ids are matched case-insensitively and duplicate addresses are dropped.
func (l *whitelistLoader) Load(filePath string, chainID domain.Chain) ([]common.Address, error) {
	data, err := l.fs.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read whitelist file: %w", err)
	}

	var whitelistData WhitelistData
	if err := l.json.Unmarshal(data, &whitelistData); err != nil {
		return nil, fmt.Errorf("failed to parse whitelist JSON: %w", err)
	}

	seen := make(map[common.Address]bool)
	collections := []common.Address{}
	for chain, addresses := range whitelistData {
		if !strings.EqualFold(chain, string(chainID)) {
			continue
		}
		for _, addr := range addresses {
			if !common.IsHexAddress(addr) {
				return nil, fmt.Errorf("invalid collection address %q for chain %s", addr, chain)
			}
			address := common.HexToAddress(addr)
			if seen[address] {
				continue
			}
			seen[address] = true
			collections = append(collections, address)
		}
	}

	return collections, nil
}
