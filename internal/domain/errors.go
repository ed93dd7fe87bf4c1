package domain

import "errors"

var (
	// ErrSubscriptionFailed is returned when subscription to events fails
	ErrSubscriptionFailed = errors.New("subscription failed")

	// ErrTokenNotFound is returned when a token is not found
	ErrTokenNotFound = errors.New("token not found")

	// ErrInvalidDeadline is returned when a redeem deadline is not strictly in the future or exceeds the configured maximum
	ErrInvalidDeadline = errors.New("invalid redeem deadline")

	// ErrInvalidCallData is returned when the deposit notification payload cannot be decoded into a deadline
	ErrInvalidCallData = errors.New("invalid call data")

	// ErrInvalidNFTAddress is returned when a deposit notification comes from a contract other than the vault's collection
	ErrInvalidNFTAddress = errors.New("invalid nft address")

	// ErrInvalidLength is returned when a batch operation receives an empty token list
	ErrInvalidLength = errors.New("invalid length")

	// ErrDuplicateTokenID is returned when the same token id appears twice in one request
	ErrDuplicateTokenID = errors.New("duplicate token id")

	// ErrAlreadyDeposited is returned when a token already has an active deposit record
	ErrAlreadyDeposited = errors.New("token already deposited")

	// ErrNotDeposited is returned when a token has no active deposit record
	ErrNotDeposited = errors.New("token not deposited")

	// ErrNotTokenOwner is returned when the collection does not report the expected owner for a token
	ErrNotTokenOwner = errors.New("not token owner")

	// ErrInsufficientBalance is returned when a holder's fungible balance does not cover the requested amount
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInsufficientAllowance is returned when a spender's allowance does not cover the requested amount
	ErrInsufficientAllowance = errors.New("insufficient allowance")

	// ErrNFTCannotRedeem is returned when the caller is neither depositor nor current holder and the deadline has not passed
	ErrNFTCannotRedeem = errors.New("nft cannot be redeemed")

	// ErrInvalidRecipient is returned when a transfer targets the zero address or the vault itself
	ErrInvalidRecipient = errors.New("invalid recipient")

	// ErrInvalidSpender is returned when an approval targets the zero address
	ErrInvalidSpender = errors.New("invalid spender")

	// ErrTransferFailed is returned when a custody transfer on the collection fails
	ErrTransferFailed = errors.New("custody transfer failed")

	// ErrReentrantCall is returned when a vault operation is entered again from inside its own custody callback
	ErrReentrantCall = errors.New("reentrant call")

	// ErrEmptyQueue is returned when popping from a holder queue that has no tokens
	ErrEmptyQueue = errors.New("empty queue")

	// ErrEmergencyClose is returned when the registry is in emergency close
	ErrEmergencyClose = errors.New("emergency close")

	// ErrNotOwner is returned when an administrative call does not come from the registry owner
	ErrNotOwner = errors.New("caller is not the owner")

	// ErrNotWhitelisted is returned when creating a vault for a collection that is not whitelisted
	ErrNotWhitelisted = errors.New("collection not whitelisted")

	// ErrVaultExists is returned when a vault already exists for a collection
	ErrVaultExists = errors.New("vault already exists")

	// ErrVaultNotFound is returned when no vault exists for a collection
	ErrVaultNotFound = errors.New("vault not found")

	// ErrInvalidUnits is returned when a vault is created with zero units per nft
	ErrInvalidUnits = errors.New("invalid nft units")

	// ErrInvalidRedeemMaxDeadline is returned when the maximum redeem deadline is set to zero
	ErrInvalidRedeemMaxDeadline = errors.New("invalid redeem max deadline")

	// ErrInvariantViolation is returned when restored vault state does not satisfy the queue/balance invariant
	ErrInvariantViolation = errors.New("vault invariant violation")
)

// rejections are the errors a vault returns when a request is refused on its merits,
// as opposed to infrastructure failures that may succeed on retry
var rejections = []error{
	ErrInvalidDeadline,
	ErrInvalidCallData,
	ErrInvalidNFTAddress,
	ErrInvalidLength,
	ErrDuplicateTokenID,
	ErrAlreadyDeposited,
	ErrNotDeposited,
	ErrNotTokenOwner,
	ErrInsufficientBalance,
	ErrInsufficientAllowance,
	ErrNFTCannotRedeem,
	ErrInvalidRecipient,
	ErrInvalidSpender,
	ErrReentrantCall,
	ErrEmergencyClose,
	ErrNotOwner,
	ErrNotWhitelisted,
	ErrVaultExists,
	ErrVaultNotFound,
	ErrInvalidUnits,
	ErrInvalidRedeemMaxDeadline,
}

// IsRejection reports whether err is a request rejection rather than a transient failure
func IsRejection(err error) bool {
	for _, r := range rejections {
		if errors.Is(err, r) {
			return true
		}
	}
	return false
}
