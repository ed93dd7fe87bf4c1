package vault

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/feral-file/ff-vault/internal/domain"
)

// Info is a point-in-time summary of a vault
type Info struct {
	Address           common.Address
	Collection        common.Address
	Name              string
	Symbol            string
	Decimals          uint8
	NFTUnits          uint64
	UnitSize          *uint256.Int
	TotalSupply       *uint256.Int
	NFTSupply         uint64
	Minted            uint64
	MaxNFTTokenID     domain.TokenID
	ReserveLength     int
	MaxRedeemDeadline time.Duration
	ContractURI       string
	TokenURI          string
	Halted            bool
}

func (e *Engine) Address() common.Address {
	return e.address
}

func (e *Engine) Collection() common.Address {
	return e.custody.Address()
}

func (e *Engine) Name() string {
	return e.name
}

func (e *Engine) Symbol() string {
	return e.symbol
}

func (e *Engine) Decimals() uint8 {
	return domain.DECIMALS
}

func (e *Engine) NFTUnits() uint64 {
	return e.nftUnits
}

func (e *Engine) UnitSize() *uint256.Int {
	return e.units.UnitSize()
}

// Info returns a summary of the vault
func (e *Engine) Info() Info {
	defer e.guard()()
	return Info{
		Address:           e.address,
		Collection:        e.custody.Address(),
		Name:              e.name,
		Symbol:            e.symbol,
		Decimals:          domain.DECIMALS,
		NFTUnits:          e.nftUnits,
		UnitSize:          e.units.UnitSize(),
		TotalSupply:       e.balances.TotalSupply(),
		NFTSupply:         e.balances.NFTSupply(),
		Minted:            e.minted,
		MaxNFTTokenID:     e.maxTokenID,
		ReserveLength:     e.queues.Length(e.address),
		MaxRedeemDeadline: e.maxRedeemDeadline,
		ContractURI:       e.contractURI,
		TokenURI:          e.tokenURI,
		Halted:            e.halted,
	}
}

// BalanceOf returns the fungible balance of holder
func (e *Engine) BalanceOf(holder common.Address) *uint256.Int {
	defer e.guard()()
	return e.balances.BalanceOf(holder)
}

// ERC721BalanceOf returns how many nfts are attributed to holder
func (e *Engine) ERC721BalanceOf(holder common.Address) int {
	defer e.guard()()
	return e.queues.Length(holder)
}

func (e *Engine) TotalSupply() *uint256.Int {
	defer e.guard()()
	return e.balances.TotalSupply()
}

// ERC721TotalSupply returns the number of nfts in custody
func (e *Engine) ERC721TotalSupply() uint64 {
	defer e.guard()()
	return e.balances.NFTSupply()
}

// Minted returns how many deposits have ever been accounted
func (e *Engine) Minted() uint64 {
	defer e.guard()()
	return e.minted
}

// MaxNFTTokenID returns the highest token id ever deposited
func (e *Engine) MaxNFTTokenID() domain.TokenID {
	defer e.guard()()
	return e.maxTokenID
}

func (e *Engine) Allowance(owner, spender common.Address) *uint256.Int {
	defer e.guard()()
	return e.balances.Allowance(owner, spender)
}

// OwnedTokens returns up to count tokens of holder's queue starting at offset
func (e *Engine) OwnedTokens(holder common.Address, offset, count int) []domain.TokenID {
	defer e.guard()()
	return e.queues.Range(holder, offset, count)
}

// NFTDepositInfo returns the deposit record of a token in custody
func (e *Engine) NFTDepositInfo(id domain.TokenID) (domain.DepositRecord, bool) {
	defer e.guard()()
	return e.deposits.Get(id)
}

// CheckTokenIDExists reports whether a token is currently deposited
func (e *Engine) CheckTokenIDExists(id domain.TokenID) bool {
	defer e.guard()()
	return e.deposits.Exists(id)
}

// OwnerOfNFT returns the holder whose queue contains the token
func (e *Engine) OwnerOfNFT(id domain.TokenID) (common.Address, bool) {
	defer e.guard()()
	rec, ok := e.deposits.Get(id)
	return rec.CurrentHolder, ok
}

// View reads holdings on behalf of a context. Inside a custody callback of a running operation
// it sees the staged state; any other caller waits for the running operation to finish.
type View struct {
	ctx    context.Context
	engine *Engine
}

func (e *Engine) View(ctx context.Context) View {
	return View{ctx: ctx, engine: e}
}

func (v View) BalanceOf(holder common.Address) *uint256.Int {
	defer v.engine.guardCtx(v.ctx)()
	return v.engine.balances.BalanceOf(holder)
}

func (v View) ERC721BalanceOf(holder common.Address) int {
	defer v.engine.guardCtx(v.ctx)()
	return v.engine.queues.Length(holder)
}

func (v View) OwnedTokens(holder common.Address, offset, count int) []domain.TokenID {
	defer v.engine.guardCtx(v.ctx)()
	return v.engine.queues.Range(holder, offset, count)
}

func (v View) NFTDepositInfo(id domain.TokenID) (domain.DepositRecord, bool) {
	defer v.engine.guardCtx(v.ctx)()
	return v.engine.deposits.Get(id)
}

func (e *Engine) ContractURI() string {
	defer e.guard()()
	return e.contractURI
}

// TokenURI returns the base token uri followed by the token id, or an empty string when no base is set
func (e *Engine) TokenURI(id domain.TokenID) string {
	defer e.guard()()
	if e.tokenURI == "" {
		return ""
	}
	return e.tokenURI + id.String()
}

func (e *Engine) MaxRedeemDeadline() time.Duration {
	defer e.guard()()
	return e.maxRedeemDeadline
}

func (e *Engine) Halted() bool {
	defer e.guard()()
	return e.halted
}

// SetMaxRedeemDeadline updates the bound on new redeem deadlines
func (e *Engine) SetMaxRedeemDeadline(d time.Duration) error {
	if d <= 0 {
		return domain.ErrInvalidRedeemMaxDeadline
	}
	defer e.guard()()
	e.maxRedeemDeadline = d
	return nil
}

func (e *Engine) SetContractURI(uri string) {
	defer e.guard()()
	e.contractURI = uri
}

func (e *Engine) SetTokenURI(uri string) {
	defer e.guard()()
	e.tokenURI = uri
}

// SetHalted stops or resumes deposits
func (e *Engine) SetHalted(halted bool) {
	defer e.guard()()
	e.halted = halted
}
