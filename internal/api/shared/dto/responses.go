package dto

import (
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/feral-file/ff-vault/internal/domain"
	"github.com/feral-file/ff-vault/internal/registry"
	"github.com/feral-file/ff-vault/internal/vault"
)

// VaultResponse represents a vault summary
type VaultResponse struct {
	Address                  common.Address `json:"address"`
	Collection               common.Address `json:"collection"`
	Name                     string         `json:"name"`
	Symbol                   string         `json:"symbol"`
	Decimals                 uint8          `json:"decimals"`
	NFTUnits                 uint64         `json:"nft_units"`
	UnitSize                 string         `json:"unit_size"`
	TotalSupply              string         `json:"total_supply"`
	NFTSupply                uint64         `json:"nft_supply"`
	Minted                   uint64         `json:"minted"`
	MaxNFTTokenID            domain.TokenID `json:"max_nft_token_id"`
	ReserveLength            int            `json:"reserve_length"`
	MaxRedeemDeadlineSeconds int64          `json:"max_redeem_deadline_seconds"`
	ContractURI              string         `json:"contract_uri,omitempty"`
	TokenURI                 string         `json:"token_uri,omitempty"`
	Halted                   bool           `json:"halted"`
}

// NewVaultResponse maps a vault summary to its response
func NewVaultResponse(info vault.Info) VaultResponse {
	return VaultResponse{
		Address:                  info.Address,
		Collection:               info.Collection,
		Name:                     info.Name,
		Symbol:                   info.Symbol,
		Decimals:                 info.Decimals,
		NFTUnits:                 info.NFTUnits,
		UnitSize:                 info.UnitSize.Dec(),
		TotalSupply:              info.TotalSupply.Dec(),
		NFTSupply:                info.NFTSupply,
		Minted:                   info.Minted,
		MaxNFTTokenID:            info.MaxNFTTokenID,
		ReserveLength:            info.ReserveLength,
		MaxRedeemDeadlineSeconds: int64(info.MaxRedeemDeadline / time.Second),
		ContractURI:              info.ContractURI,
		TokenURI:                 info.TokenURI,
		Halted:                   info.Halted,
	}
}

// ListVaultsResponse represents the list of vaults of the hub
type ListVaultsResponse struct {
	Vaults []VaultResponse `json:"vaults"`
}

// HubResponse represents the hub settings
type HubResponse struct {
	Address                  common.Address       `json:"address"`
	Owner                    common.Address       `json:"owner"`
	Whitelist                []common.Address     `json:"whitelist"`
	RedeemMaxDeadlineSeconds int64                `json:"redeem_max_deadline_seconds"`
	EmergencyClose           bool                 `json:"emergency_close"`
	SwapRoutes               []registry.SwapRoute `json:"swap_routes"`
	VaultCount               int                  `json:"vault_count"`
}

// NewHubResponse maps the hub settings to its response
func NewHubResponse(h registry.Hub) HubResponse {
	return HubResponse{
		Address:                  h.Address(),
		Owner:                    h.Owner(),
		Whitelist:                h.Whitelist(),
		RedeemMaxDeadlineSeconds: int64(h.RedeemMaxDeadline() / time.Second),
		EmergencyClose:           h.EmergencyClosed(),
		SwapRoutes:               h.SwapRoutes(),
		VaultCount:               len(h.Vaults()),
	}
}

// HolderResponse represents the balances and a page of the nft queue of a holder
type HolderResponse struct {
	Holder        common.Address   `json:"holder"`
	Balance       string           `json:"balance"`
	ERC721Balance int              `json:"erc721_balance"`
	Tokens        []domain.TokenID `json:"tokens"`
	Offset        int              `json:"offset"`
}

// AllowanceResponse represents the allowance of an owner/spender pair
type AllowanceResponse struct {
	Owner   common.Address `json:"owner"`
	Spender common.Address `json:"spender"`
	Amount  string         `json:"amount"`
}

// TokenResponse represents the deposit state of an nft
type TokenResponse struct {
	TokenID        domain.TokenID  `json:"token_id"`
	Deposited      bool            `json:"deposited"`
	Owner          *common.Address `json:"owner,omitempty"`
	Depositor      *common.Address `json:"depositor,omitempty"`
	RedeemDeadline *time.Time      `json:"redeem_deadline,omitempty"`
	TokenURI       string          `json:"token_uri,omitempty"`
}

// NewTokenResponse maps the deposit record of a token to its response
func NewTokenResponse(id domain.TokenID, rec domain.DepositRecord, deposited bool, tokenURI string) TokenResponse {
	resp := TokenResponse{
		TokenID:   id,
		Deposited: deposited,
		TokenURI:  tokenURI,
	}
	if deposited {
		resp.Owner = &rec.CurrentHolder
		resp.Depositor = &rec.Depositor
		resp.RedeemDeadline = &rec.RedeemDeadline
	}
	return resp
}

// ReceiptResponse represents the outcome of a vault operation
type ReceiptResponse struct {
	Operation string              `json:"operation"`
	Vault     common.Address      `json:"vault"`
	Timestamp time.Time           `json:"timestamp"`
	Events    []domain.VaultEvent `json:"events"`
}

// NewReceiptResponse maps an operation receipt to its response
func NewReceiptResponse(r *vault.Receipt) ReceiptResponse {
	return ReceiptResponse{
		Operation: r.Operation,
		Vault:     r.Vault,
		Timestamp: r.Timestamp,
		Events:    r.Events,
	}
}

// EventsResponse represents a page of vault events
type EventsResponse struct {
	Events []domain.VaultEvent `json:"events"`
	Limit  int                 `json:"limit"`
	Offset int                 `json:"offset"`
}

// NotificationResponse represents the outcome of a custody notification
type NotificationResponse struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
}
