package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/feral-file/ff-vault/internal/api/middleware"
	"github.com/feral-file/ff-vault/internal/api/shared/dto"
	apierrors "github.com/feral-file/ff-vault/internal/api/shared/errors"
	"github.com/feral-file/ff-vault/internal/domain"
	"github.com/feral-file/ff-vault/internal/logger"
	"github.com/feral-file/ff-vault/internal/messaging"
	"github.com/feral-file/ff-vault/internal/registry"
	"github.com/feral-file/ff-vault/internal/store"
	"github.com/feral-file/ff-vault/internal/vault"
)

// EventReader reads the committed events of a vault
//
//go:generate mockgen -source=handler.go -destination=../../mocks/api.go -package=mocks -mock_names=EventReader=MockEventReader
type EventReader interface {
	ListEvents(ctx context.Context, collection common.Address, filter store.EventFilter) ([]domain.VaultEvent, error)
}

// Handler defines the interface for REST API handlers
// This interface allows for easy mocking and testing
type Handler interface {
	// GetHub retrieves the hub settings
	// GET /api/v1/hub
	GetHub(c *gin.Context)

	// ListVaults retrieves every vault of the hub
	// GET /api/v1/vaults
	ListVaults(c *gin.Context)

	// GetVault retrieves the summary of the vault of a collection
	// GET /api/v1/vaults/:collection
	GetVault(c *gin.Context)

	// GetHolder retrieves the balances and nft queue of a holder
	// GET /api/v1/vaults/:collection/holders/:holder?limit=<limit>&offset=<offset>
	GetHolder(c *gin.Context)

	// GetAllowance retrieves the allowance of an owner/spender pair
	// GET /api/v1/vaults/:collection/allowances/:owner/:spender
	GetAllowance(c *gin.Context)

	// GetToken retrieves the deposit state of an nft
	// GET /api/v1/vaults/:collection/tokens/:token_id
	GetToken(c *gin.Context)

	// ListEvents retrieves the committed events of a vault, newest first
	// GET /api/v1/vaults/:collection/events?type=<type1>,<type2>&limit=<limit>&offset=<offset>
	ListEvents(c *gin.Context)

	// Deposit pulls nfts of the caller into the vault (requires JWT authentication)
	// POST /api/v1/vaults/:collection/deposit
	Deposit(c *gin.Context)

	// Redeem returns nfts from the vault to the caller (requires JWT authentication)
	// POST /api/v1/vaults/:collection/redeem
	Redeem(c *gin.Context)

	// Transfer moves fungible units from the caller (requires JWT authentication)
	// POST /api/v1/vaults/:collection/transfer
	Transfer(c *gin.Context)

	// TransferFrom moves fungible units spending the caller's allowance (requires JWT authentication)
	// POST /api/v1/vaults/:collection/transfer-from
	TransferFrom(c *gin.Context)

	// Approve sets an allowance of the caller (requires JWT authentication)
	// POST /api/v1/vaults/:collection/approve
	Approve(c *gin.Context)

	// CreateVault creates the vault of a whitelisted collection (requires JWT authentication)
	// POST /api/v1/vaults
	CreateVault(c *gin.Context)

	// SetContractURI updates the contract metadata uri of a vault (hub owner only)
	// PUT /api/v1/vaults/:collection/contract-uri
	SetContractURI(c *gin.Context)

	// SetTokenURI updates the base token uri of a vault (hub owner only)
	// PUT /api/v1/vaults/:collection/token-uri
	SetTokenURI(c *gin.Context)

	// SetWhitelist enables or disables collections (hub owner only)
	// PUT /api/v1/hub/whitelist
	SetWhitelist(c *gin.Context)

	// SetRedeemMaxDeadline updates the bound on redeem deadlines (hub owner only)
	// PUT /api/v1/hub/redeem-max-deadline
	SetRedeemMaxDeadline(c *gin.Context)

	// SetEmergencyClose toggles emergency close (hub owner only)
	// PUT /api/v1/hub/emergency-close
	SetEmergencyClose(c *gin.Context)

	// SetSwapRoutes replaces the advertised swap routes (hub owner only)
	// PUT /api/v1/hub/swap-routes
	SetSwapRoutes(c *gin.Context)

	// SetOwner transfers hub ownership (hub owner only)
	// PUT /api/v1/hub/owner
	SetOwner(c *gin.Context)

	// ReceiveCustodyNotification accounts for an nft safe-transferred into a vault (requires API key authentication)
	// POST /api/v1/custody/notifications
	ReceiveCustodyNotification(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	hub           registry.Hub
	events        EventReader
	notifications messaging.NotificationHandler
}

// NewHandler creates a new REST API handler.
// events and notifications may be nil, in which case their endpoints report the service as unavailable.
func NewHandler(hub registry.Hub, events EventReader, notifications messaging.NotificationHandler) Handler {
	return &handler{
		hub:           hub,
		events:        events,
		notifications: notifications,
	}
}

// GetHub retrieves the hub settings
func (h *handler) GetHub(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewHubResponse(h.hub))
}

// ListVaults retrieves every vault of the hub
func (h *handler) ListVaults(c *gin.Context) {
	engines := h.hub.Vaults()
	resp := dto.ListVaultsResponse{Vaults: make([]dto.VaultResponse, 0, len(engines))}
	for _, engine := range engines {
		resp.Vaults = append(resp.Vaults, dto.NewVaultResponse(engine.Info()))
	}
	c.JSON(http.StatusOK, resp)
}

// GetVault retrieves the summary of the vault of a collection
func (h *handler) GetVault(c *gin.Context) {
	engine, ok := h.vault(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.NewVaultResponse(engine.Info()))
}

// GetHolder retrieves the balances and nft queue of a holder
func (h *handler) GetHolder(c *gin.Context) {
	engine, ok := h.vault(c)
	if !ok {
		return
	}

	holder, ok := addressParam(c, "holder")
	if !ok {
		return
	}

	queryParams, err := ParseGetHolderQuery(c)
	if err != nil {
		respondValidationError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.HolderResponse{
		Holder:        holder,
		Balance:       engine.BalanceOf(holder).Dec(),
		ERC721Balance: engine.ERC721BalanceOf(holder),
		Tokens:        engine.OwnedTokens(holder, queryParams.Offset, queryParams.Limit),
		Offset:        queryParams.Offset,
	})
}

// GetAllowance retrieves the allowance of an owner/spender pair
func (h *handler) GetAllowance(c *gin.Context) {
	engine, ok := h.vault(c)
	if !ok {
		return
	}

	owner, ok := addressParam(c, "owner")
	if !ok {
		return
	}
	spender, ok := addressParam(c, "spender")
	if !ok {
		return
	}

	c.JSON(http.StatusOK, dto.AllowanceResponse{
		Owner:   owner,
		Spender: spender,
		Amount:  engine.Allowance(owner, spender).Dec(),
	})
}

// GetToken retrieves the deposit state of an nft
func (h *handler) GetToken(c *gin.Context) {
	engine, ok := h.vault(c)
	if !ok {
		return
	}

	tokenID, err := domain.ParseTokenID(c.Param("token_id"))
	if err != nil {
		respondBadRequest(c, "Invalid token ID", err.Error())
		return
	}

	rec, deposited := engine.NFTDepositInfo(tokenID)
	c.JSON(http.StatusOK, dto.NewTokenResponse(tokenID, rec, deposited, engine.TokenURI(tokenID)))
}

// ListEvents retrieves the committed events of a vault
func (h *handler) ListEvents(c *gin.Context) {
	collection, ok := addressParam(c, "collection")
	if !ok {
		return
	}

	queryParams, err := ParseListEventsQuery(c)
	if err != nil {
		respondValidationError(c, err)
		return
	}

	if h.events == nil {
		respondWithError(c, http.StatusServiceUnavailable, apierrors.NewServiceError("Event history is not available"))
		return
	}

	events, err := h.events.ListEvents(c.Request.Context(), collection, store.EventFilter{
		Types:  queryParams.EventTypes(),
		Limit:  queryParams.Limit,
		Offset: queryParams.Offset,
	})
	if err != nil {
		respondDomainError(c, err, "Failed to list events", logger.Collection(collection))
		return
	}

	c.JSON(http.StatusOK, dto.EventsResponse{
		Events: events,
		Limit:  queryParams.Limit,
		Offset: queryParams.Offset,
	})
}

// Deposit pulls nfts of the caller into the vault
func (h *handler) Deposit(c *gin.Context) {
	var req dto.DepositRequest
	if !bindJSON(c, &req) {
		return
	}

	// Validate request body
	if err := req.Validate(); err != nil {
		respondValidationError(c, err)
		return
	}

	h.operate(c, "Failed to deposit", func(ctx context.Context, engine *vault.Engine, caller common.Address) (*vault.Receipt, error) {
		return engine.Deposit(ctx, caller, req.TokenIDs, req.Deadline)
	})
}

// Redeem returns nfts from the vault to the caller
func (h *handler) Redeem(c *gin.Context) {
	var req dto.RedeemRequest
	if !bindJSON(c, &req) {
		return
	}

	// Validate request body
	if err := req.Validate(); err != nil {
		respondValidationError(c, err)
		return
	}

	h.operate(c, "Failed to redeem", func(ctx context.Context, engine *vault.Engine, caller common.Address) (*vault.Receipt, error) {
		return engine.Redeem(ctx, caller, req.TokenIDs)
	})
}

// Transfer moves fungible units from the caller
func (h *handler) Transfer(c *gin.Context) {
	var req dto.TransferRequest
	if !bindJSON(c, &req) {
		return
	}

	// Validate request body
	amount, err := req.Validate()
	if err != nil {
		respondValidationError(c, err)
		return
	}

	h.operate(c, "Failed to transfer", func(ctx context.Context, engine *vault.Engine, caller common.Address) (*vault.Receipt, error) {
		return engine.Transfer(ctx, caller, req.To, amount)
	})
}

// TransferFrom moves fungible units spending the caller's allowance
func (h *handler) TransferFrom(c *gin.Context) {
	var req dto.TransferFromRequest
	if !bindJSON(c, &req) {
		return
	}

	// Validate request body
	amount, err := req.Validate()
	if err != nil {
		respondValidationError(c, err)
		return
	}

	h.operate(c, "Failed to transfer", func(ctx context.Context, engine *vault.Engine, caller common.Address) (*vault.Receipt, error) {
		return engine.TransferFrom(ctx, caller, req.From, req.To, amount)
	})
}

// Approve sets an allowance of the caller
func (h *handler) Approve(c *gin.Context) {
	var req dto.ApproveRequest
	if !bindJSON(c, &req) {
		return
	}

	// Validate request body
	amount, err := req.Validate()
	if err != nil {
		respondValidationError(c, err)
		return
	}

	h.operate(c, "Failed to approve", func(ctx context.Context, engine *vault.Engine, caller common.Address) (*vault.Receipt, error) {
		return engine.Approve(ctx, caller, req.Spender, amount)
	})
}

// CreateVault creates the vault of a whitelisted collection
func (h *handler) CreateVault(c *gin.Context) {
	caller, ok := authenticatedCaller(c)
	if !ok {
		return
	}

	var req dto.CreateVaultRequest
	if !bindJSON(c, &req) {
		return
	}

	// Validate request body
	if err := req.Validate(); err != nil {
		respondValidationError(c, err)
		return
	}

	engine, err := h.hub.CreateVault(c.Request.Context(), caller, req.Collection, req.NFTUnits)
	if err != nil {
		respondDomainError(c, err, "Failed to create vault", logger.Collection(req.Collection))
		return
	}

	c.JSON(http.StatusCreated, dto.NewVaultResponse(engine.Info()))
}

// SetContractURI updates the contract metadata uri of a vault
func (h *handler) SetContractURI(c *gin.Context) {
	h.setURI(c, h.hub.SetContractURI)
}

// SetTokenURI updates the base token uri of a vault
func (h *handler) SetTokenURI(c *gin.Context) {
	h.setURI(c, h.hub.SetTokenURI)
}

func (h *handler) setURI(c *gin.Context, set func(ctx context.Context, caller, collection common.Address, uri string) error) {
	caller, ok := authenticatedCaller(c)
	if !ok {
		return
	}

	collection, ok := addressParam(c, "collection")
	if !ok {
		return
	}

	var req dto.SetURIRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := set(c.Request.Context(), caller, collection, req.URI); err != nil {
		respondDomainError(c, err, "Failed to update vault uri", logger.Collection(collection))
		return
	}

	engine, err := h.hub.Vault(collection)
	if err != nil {
		respondDomainError(c, err, "Failed to get vault", logger.Collection(collection))
		return
	}
	c.JSON(http.StatusOK, dto.NewVaultResponse(engine.Info()))
}

// SetWhitelist enables or disables collections
func (h *handler) SetWhitelist(c *gin.Context) {
	var req dto.SetWhitelistRequest
	if !bindJSON(c, &req) {
		return
	}

	// Validate request body
	if err := req.Validate(); err != nil {
		respondValidationError(c, err)
		return
	}

	h.administer(c, "Failed to update whitelist", func(ctx context.Context, caller common.Address) error {
		return h.hub.SetWhitelist(ctx, caller, req.Collections, req.Enabled)
	})
}

// SetRedeemMaxDeadline updates the bound on redeem deadlines
func (h *handler) SetRedeemMaxDeadline(c *gin.Context) {
	var req dto.SetRedeemMaxDeadlineRequest
	if !bindJSON(c, &req) {
		return
	}

	h.administer(c, "Failed to update redeem max deadline", func(ctx context.Context, caller common.Address) error {
		return h.hub.SetRedeemMaxDeadline(ctx, caller, req.Duration())
	})
}

// SetEmergencyClose toggles emergency close
func (h *handler) SetEmergencyClose(c *gin.Context) {
	var req dto.SetEmergencyCloseRequest
	if !bindJSON(c, &req) {
		return
	}

	h.administer(c, "Failed to update emergency close", func(ctx context.Context, caller common.Address) error {
		return h.hub.SetEmergencyClose(ctx, caller, req.Closed)
	})
}

// SetSwapRoutes replaces the advertised swap routes
func (h *handler) SetSwapRoutes(c *gin.Context) {
	var req dto.SetSwapRoutesRequest
	if !bindJSON(c, &req) {
		return
	}

	// Validate request body
	if err := req.Validate(); err != nil {
		respondValidationError(c, err)
		return
	}

	h.administer(c, "Failed to update swap routes", func(ctx context.Context, caller common.Address) error {
		return h.hub.SetSwapRoutes(ctx, caller, req.Routes)
	})
}

// SetOwner transfers hub ownership
func (h *handler) SetOwner(c *gin.Context) {
	var req dto.SetOwnerRequest
	if !bindJSON(c, &req) {
		return
	}

	// Validate request body
	if err := req.Validate(); err != nil {
		respondValidationError(c, err)
		return
	}

	h.administer(c, "Failed to update owner", func(ctx context.Context, caller common.Address) error {
		return h.hub.SetOwner(ctx, caller, req.Owner)
	})
}

// ReceiveCustodyNotification accounts for an nft safe-transferred into a vault.
// A rejected nft is refunded and reported as not accepted; any other failure asks the sender to retry.
func (h *handler) ReceiveCustodyNotification(c *gin.Context) {
	var req messaging.CustodyNotification
	if !bindJSON(c, &req) {
		return
	}

	if req.Collection == (common.Address{}) {
		respondValidationError(c, apierrors.NewValidationError("collection is required"))
		return
	}

	if h.notifications == nil {
		respondWithError(c, http.StatusServiceUnavailable, apierrors.NewServiceError("Custody notifications are not available"))
		return
	}

	err := h.notifications(c.Request.Context(), &req)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, dto.NotificationResponse{Accepted: true})
	case errors.Is(err, messaging.ErrDropMessage):
		c.JSON(http.StatusOK, dto.NotificationResponse{Accepted: false, Reason: err.Error()})
	default:
		respondDomainError(c, err, "Failed to handle custody notification",
			logger.Collection(req.Collection),
			logger.TokenID(req.TokenID),
		)
	}
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "ff-vault-api",
	})
}

// operate runs a vault operation on behalf of the authenticated caller
func (h *handler) operate(c *gin.Context, message string, op func(ctx context.Context, engine *vault.Engine, caller common.Address) (*vault.Receipt, error)) {
	caller, ok := authenticatedCaller(c)
	if !ok {
		return
	}

	engine, ok := h.vault(c)
	if !ok {
		return
	}

	receipt, err := op(c.Request.Context(), engine, caller)
	if err != nil {
		respondDomainError(c, err, message,
			logger.Collection(engine.Collection()),
			logger.Address("caller", caller),
		)
		return
	}

	c.JSON(http.StatusOK, dto.NewReceiptResponse(receipt))
}

// administer runs a hub update on behalf of the authenticated caller and responds with the hub settings
func (h *handler) administer(c *gin.Context, message string, update func(ctx context.Context, caller common.Address) error) {
	caller, ok := authenticatedCaller(c)
	if !ok {
		return
	}

	if err := update(c.Request.Context(), caller); err != nil {
		respondDomainError(c, err, message, logger.Address("caller", caller))
		return
	}

	c.JSON(http.StatusOK, dto.NewHubResponse(h.hub))
}

// vault resolves the vault of the collection path parameter
func (h *handler) vault(c *gin.Context) (*vault.Engine, bool) {
	collection, ok := addressParam(c, "collection")
	if !ok {
		return nil, false
	}

	engine, err := h.hub.Vault(collection)
	if err != nil {
		respondDomainError(c, err, "Failed to get vault", logger.Collection(collection))
		return nil, false
	}
	return engine, true
}

func authenticatedCaller(c *gin.Context) (common.Address, bool) {
	caller, ok := middleware.Caller(c)
	if !ok {
		respondWithError(c, http.StatusUnauthorized, apierrors.NewUnauthorizedError("Caller address is required"))
		return common.Address{}, false
	}
	return caller, true
}

func addressParam(c *gin.Context, name string) (common.Address, bool) {
	value := c.Param(name)
	if !common.IsHexAddress(value) {
		respondBadRequest(c, fmt.Sprintf("Invalid %s address", name), value)
		return common.Address{}, false
	}
	return common.HexToAddress(value), true
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		logger.DebugCtx(c.Request.Context(), "Invalid request body", zap.Error(err))
		respondValidationError(c, apierrors.NewValidationError(fmt.Sprintf("Invalid request body: %v", err)))
		return false
	}
	return true
}
