package collection

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sasha-s/go-deadlock"

	"github.com/feral-file/ff-vault/internal/domain"
)

var (
	// ErrNotAuthorized is returned when the operator may not move the token
	ErrNotAuthorized = errors.New("operator not authorized")

	// ErrWrongOwner is returned when from is not the token owner
	ErrWrongOwner = errors.New("from is not the token owner")

	// ErrReceiverRejected is returned when the recipient hook fails
	ErrReceiverRejected = errors.New("receiver rejected token")
)

// Memory is an in-process ERC-721 collection with receiver hooks
type Memory struct {
	mu deadlock.RWMutex

	address        common.Address
	name           string
	symbol         string
	owners         map[domain.TokenID]common.Address
	tokenApprovals map[domain.TokenID]common.Address
	operators      map[common.Address]map[common.Address]bool
	receivers      map[common.Address]Receiver
}

// NewMemory creates an empty in-memory collection
func NewMemory(address common.Address, name, symbol string) *Memory {
	return &Memory{
		address:        address,
		name:           name,
		symbol:         symbol,
		owners:         make(map[domain.TokenID]common.Address),
		tokenApprovals: make(map[domain.TokenID]common.Address),
		operators:      make(map[common.Address]map[common.Address]bool),
		receivers:      make(map[common.Address]Receiver),
	}
}

func (m *Memory) Address() common.Address {
	return m.address
}

func (m *Memory) Name(_ context.Context) (string, error) {
	return m.name, nil
}

func (m *Memory) Symbol(_ context.Context) (string, error) {
	return m.symbol, nil
}

// Mint assigns a new token to an owner
func (m *Memory) Mint(to common.Address, tokenID domain.TokenID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.owners[tokenID]; ok {
		return fmt.Errorf("token %s already minted", tokenID)
	}
	m.owners[tokenID] = to
	return nil
}

// RegisterReceiver installs the hook invoked when tokens are safe-transferred to address
func (m *Memory) RegisterReceiver(address common.Address, receiver Receiver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.receivers[address] = receiver
}

// Approve lets operator move a single token on behalf of its owner
func (m *Memory) Approve(owner, operator common.Address, tokenID domain.TokenID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.owners[tokenID] != owner {
		return ErrWrongOwner
	}
	m.tokenApprovals[tokenID] = operator
	return nil
}

// SetApprovalForAll lets operator move every token of owner
func (m *Memory) SetApprovalForAll(owner, operator common.Address, approved bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.operators[owner] == nil {
		m.operators[owner] = make(map[common.Address]bool)
	}
	m.operators[owner][operator] = approved
}

func (m *Memory) OwnerOf(_ context.Context, tokenID domain.TokenID) (common.Address, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	owner, ok := m.owners[tokenID]
	if !ok {
		return common.Address{}, domain.ErrTokenNotFound
	}
	return owner, nil
}

func (m *Memory) OwnersOf(ctx context.Context, tokenIDs []domain.TokenID) (map[domain.TokenID]common.Address, error) {
	owners := make(map[domain.TokenID]common.Address, len(tokenIDs))
	for _, id := range tokenIDs {
		owner, err := m.OwnerOf(ctx, id)
		if err != nil {
			return nil, err
		}
		owners[id] = owner
	}
	return owners, nil
}

func (m *Memory) TransferFrom(_ context.Context, operator, from, to common.Address, tokenID domain.TokenID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.move(operator, from, to, tokenID)
}

// SafeTransferFrom moves the token, then calls the recipient hook without holding the collection lock.
// A failing hook reverts the move.
func (m *Memory) SafeTransferFrom(ctx context.Context, operator, from, to common.Address, tokenID domain.TokenID, data []byte) error {
	m.mu.Lock()
	if err := m.move(operator, from, to, tokenID); err != nil {
		m.mu.Unlock()
		return err
	}
	receiver := m.receivers[to]
	m.mu.Unlock()

	if receiver == nil {
		return nil
	}

	if err := receiver.OnERC721Received(ctx, m.address, operator, from, tokenID, data); err != nil {
		m.mu.Lock()
		if m.owners[tokenID] == to {
			m.owners[tokenID] = from
		}
		m.mu.Unlock()
		return fmt.Errorf("%w: %w", ErrReceiverRejected, err)
	}
	return nil
}

// move must be called with the lock held
func (m *Memory) move(operator, from, to common.Address, tokenID domain.TokenID) error {
	owner, ok := m.owners[tokenID]
	if !ok {
		return domain.ErrTokenNotFound
	}
	if owner != from {
		return ErrWrongOwner
	}
	if to == domain.ZeroAddress {
		return fmt.Errorf("transfer to zero address")
	}
	if operator != from && !m.operators[from][operator] && m.tokenApprovals[tokenID] != operator {
		return ErrNotAuthorized
	}

	delete(m.tokenApprovals, tokenID)
	m.owners[tokenID] = to
	return nil
}
