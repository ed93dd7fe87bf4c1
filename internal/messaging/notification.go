package messaging

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/feral-file/ff-vault/internal/domain"
)

const (
	// VAULT_EVENT_SUBJECTS matches every vault event subject
	VAULT_EVENT_SUBJECTS = "vaults.>"
	// CUSTODY_RECEIVED_SUBJECT prefixes custody notifications, one subject per collection
	CUSTODY_RECEIVED_SUBJECT = "custody.received"
)

// CustodyNotification reports an ERC-721 safe transfer into a vault custody address
type CustodyNotification struct {
	Collection common.Address `json:"collection"`
	Operator   common.Address `json:"operator"`
	From       common.Address `json:"from"`
	TokenID    domain.TokenID `json:"token_id"`
	Data       hexutil.Bytes  `json:"data"`
	TxHash     *common.Hash   `json:"tx_hash,omitempty"`
}

// Subject returns the subject the notification is published on
func (n *CustodyNotification) Subject() string {
	return fmt.Sprintf("%s.%s", CUSTODY_RECEIVED_SUBJECT, domain.NormalizeAddress(n.Collection))
}
