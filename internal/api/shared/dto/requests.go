package dto

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/feral-file/ff-vault/internal/api/shared/constants"
	apierrors "github.com/feral-file/ff-vault/internal/api/shared/errors"
	"github.com/feral-file/ff-vault/internal/domain"
	"github.com/feral-file/ff-vault/internal/registry"
)

// DepositRequest represents the request body for depositing nfts into a vault
type DepositRequest struct {
	TokenIDs []domain.TokenID `json:"token_ids"`
	Deadline time.Time        `json:"deadline"`
}

// Validate validates the request body
func (r *DepositRequest) Validate() error {
	if err := validateTokenIDs(r.TokenIDs); err != nil {
		return err
	}
	if r.Deadline.IsZero() {
		return apierrors.NewValidationError("deadline is required")
	}
	return nil
}

// RedeemRequest represents the request body for redeeming nfts from a vault
type RedeemRequest struct {
	TokenIDs []domain.TokenID `json:"token_ids"`
}

// Validate validates the request body
func (r *RedeemRequest) Validate() error {
	return validateTokenIDs(r.TokenIDs)
}

func validateTokenIDs(ids []domain.TokenID) error {
	// Validate: token ids must be provided
	if len(ids) == 0 {
		return apierrors.NewValidationError("token_ids is required")
	}

	// Validate: maximum number of token ids allowed
	if len(ids) > constants.MAX_TOKEN_IDS_PER_REQUEST {
		return apierrors.NewValidationError(fmt.Sprintf("maximum %d token ids allowed", constants.MAX_TOKEN_IDS_PER_REQUEST))
	}

	return nil
}

// TransferRequest represents the request body for a fungible transfer from the caller
type TransferRequest struct {
	To     common.Address `json:"to"`
	Amount string         `json:"amount"`
}

// Validate validates the request body and returns the parsed amount
func (r *TransferRequest) Validate() (*uint256.Int, error) {
	return ParseAmount(r.Amount)
}

// TransferFromRequest represents the request body for a fungible transfer spending the caller's allowance
type TransferFromRequest struct {
	From   common.Address `json:"from"`
	To     common.Address `json:"to"`
	Amount string         `json:"amount"`
}

// Validate validates the request body and returns the parsed amount
func (r *TransferFromRequest) Validate() (*uint256.Int, error) {
	return ParseAmount(r.Amount)
}

// ApproveRequest represents the request body for setting an allowance of the caller
type ApproveRequest struct {
	Spender common.Address `json:"spender"`
	Amount  string         `json:"amount"`
}

// Validate validates the request body and returns the parsed amount
func (r *ApproveRequest) Validate() (*uint256.Int, error) {
	return ParseAmount(r.Amount)
}

// ParseAmount parses a base-10 amount of base units
func ParseAmount(amount string) (*uint256.Int, error) {
	if amount == "" {
		return nil, apierrors.NewValidationError("amount is required")
	}
	v, err := uint256.FromDecimal(amount)
	if err != nil {
		return nil, apierrors.NewValidationError(fmt.Sprintf("invalid amount: %s", amount))
	}
	return v, nil
}

// CreateVaultRequest represents the request body for creating a vault
type CreateVaultRequest struct {
	Collection common.Address `json:"collection"`
	NFTUnits   uint64         `json:"nft_units"`
}

// Validate validates the request body
func (r *CreateVaultRequest) Validate() error {
	if r.Collection == (common.Address{}) {
		return apierrors.NewValidationError("collection is required")
	}
	return nil
}

// SetWhitelistRequest represents the request body for updating the collection whitelist
type SetWhitelistRequest struct {
	Collections []common.Address `json:"collections"`
	Enabled     bool             `json:"enabled"`
}

// Validate validates the request body
func (r *SetWhitelistRequest) Validate() error {
	if len(r.Collections) == 0 {
		return apierrors.NewValidationError("collections is required")
	}
	if len(r.Collections) > constants.MAX_COLLECTIONS_PER_REQUEST {
		return apierrors.NewValidationError(fmt.Sprintf("maximum %d collections allowed", constants.MAX_COLLECTIONS_PER_REQUEST))
	}
	return nil
}

// SetRedeemMaxDeadlineRequest represents the request body for updating the maximum redeem deadline
type SetRedeemMaxDeadlineRequest struct {
	Seconds int64 `json:"redeem_max_deadline_seconds"`
}

// Duration returns the requested deadline bound
func (r *SetRedeemMaxDeadlineRequest) Duration() time.Duration {
	return time.Duration(r.Seconds) * time.Second
}

// SetEmergencyCloseRequest represents the request body for toggling emergency close
type SetEmergencyCloseRequest struct {
	Closed bool `json:"closed"`
}

// SetOwnerRequest represents the request body for transferring hub ownership
type SetOwnerRequest struct {
	Owner common.Address `json:"owner"`
}

// Validate validates the request body
func (r *SetOwnerRequest) Validate() error {
	if r.Owner == (common.Address{}) {
		return apierrors.NewValidationError("owner is required")
	}
	return nil
}

// SetSwapRoutesRequest represents the request body for replacing the advertised swap routes
type SetSwapRoutesRequest struct {
	Routes []registry.SwapRoute `json:"routes"`
}

// Validate validates the request body
func (r *SetSwapRoutesRequest) Validate() error {
	if len(r.Routes) > constants.MAX_SWAP_ROUTES {
		return apierrors.NewValidationError(fmt.Sprintf("maximum %d swap routes allowed", constants.MAX_SWAP_ROUTES))
	}
	for _, route := range r.Routes {
		if route.Name == "" {
			return apierrors.NewValidationError("swap route name is required")
		}
		if len(route.Path) < 2 {
			return apierrors.NewValidationError(fmt.Sprintf("swap route %s needs at least two tokens", route.Name))
		}
	}
	return nil
}

// SetURIRequest represents the request body for updating a vault metadata uri
type SetURIRequest struct {
	URI string `json:"uri"`
}
