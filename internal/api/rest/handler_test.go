package rest_test

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-vault/internal/api/middleware"
	"github.com/feral-file/ff-vault/internal/api/rest"
	"github.com/feral-file/ff-vault/internal/api/shared/dto"
	"github.com/feral-file/ff-vault/internal/collection"
	"github.com/feral-file/ff-vault/internal/domain"
	"github.com/feral-file/ff-vault/internal/logger"
	"github.com/feral-file/ff-vault/internal/messaging"
	"github.com/feral-file/ff-vault/internal/mocks"
	"github.com/feral-file/ff-vault/internal/registry"
	"github.com/feral-file/ff-vault/internal/store"
)

const (
	oneUnit  = "1000000000000000000"
	halfUnit = "500000000000000000"
	apiKey   = "watcher-key"
)

var (
	hubAddr   = common.HexToAddress("0x00000000000000000000000000000000000000ab")
	ownerAddr = common.HexToAddress("0x00000000000000000000000000000000000000ee")
	nftAddr   = common.HexToAddress("0x00000000000000000000000000000000000000c1")
	otherNFT  = common.HexToAddress("0x00000000000000000000000000000000000000c2")
	alice     = common.HexToAddress("0x0000000000000000000000000000000000000001")
	bob       = common.HexToAddress("0x0000000000000000000000000000000000000002")
)

func TestMain(m *testing.M) {
	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}
	gin.SetMode(gin.TestMode)

	code := m.Run()
	os.Exit(code)
}

// testHandlerMocks contains the router under test and its dependencies
type testHandlerMocks struct {
	ctrl     *gomock.Controller
	clock    *mocks.MockClock
	events   *mocks.MockEventReader
	custody  *registry.MemoryCustody
	nft      *collection.Memory
	hub      registry.Hub
	router   *gin.Engine
	key      *rsa.PrivateKey
	notified []*messaging.CustodyNotification
	notifyFn func(ctx context.Context, n *messaging.CustodyNotification) error

	now       time.Time
	vaultAddr common.Address
}

// setupTestHandler creates a hub whitelisting nftAddr and the REST routes around it
func setupTestHandler(t *testing.T) *testHandlerMocks {
	ctrl := gomock.NewController(t)

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)

	tm := &testHandlerMocks{
		ctrl:      ctrl,
		clock:     mocks.NewMockClock(ctrl),
		events:    mocks.NewMockEventReader(ctrl),
		custody:   registry.NewMemoryCustody(hubAddr),
		nft:       collection.NewMemory(nftAddr, "Blue Chip", "BC"),
		key:       key,
		now:       time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		vaultAddr: crypto.CreateAddress(hubAddr, 0),
	}
	tm.custody.Register(tm.nft)
	tm.clock.EXPECT().Now().Return(tm.now).AnyTimes()

	tm.hub, err = registry.NewHub(context.Background(), registry.Config{
		Address:           hubAddr,
		Owner:             ownerAddr,
		Whitelist:         []common.Address{nftAddr},
		RedeemMaxDeadline: 30 * 24 * time.Hour,
	}, tm.custody, nil, nil, tm.clock)
	require.NoError(t, err)

	notifications := func(ctx context.Context, n *messaging.CustodyNotification) error {
		tm.notified = append(tm.notified, n)
		if tm.notifyFn != nil {
			return tm.notifyFn(ctx, n)
		}
		return nil
	}

	tm.router = gin.New()
	rest.SetupRoutes(tm.router, rest.NewHandler(tm.hub, tm.events, notifications), middleware.AuthConfig{
		JWTPublicKey: string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})),
		APIKeys:      []string{apiKey},
	}, tm.clock)

	return tm
}

// tearDownTestHandler cleans up the mocks
func tearDownTestHandler(tm *testHandlerMocks) {
	tm.ctrl.Finish()
}

func (tm *testHandlerMocks) bearer(t *testing.T, subject common.Address) string {
	claims := jwt.RegisteredClaims{
		Subject:   subject.Hex(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(tm.key)
	require.NoError(t, err)
	return "Bearer " + signed
}

func (tm *testHandlerMocks) do(t *testing.T, method, path, auth string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	tm.router.ServeHTTP(rec, req)
	return rec
}

// createVault creates the vault of nftAddr with one unit per nft
func (tm *testHandlerMocks) createVault(t *testing.T) {
	rec := tm.do(t, http.MethodPost, "/api/v1/vaults", tm.bearer(t, ownerAddr), dto.CreateVaultRequest{
		Collection: nftAddr,
		NFTUnits:   1,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

// deposit mints token ids to alice and deposits them through the API
func (tm *testHandlerMocks) deposit(t *testing.T, ids ...uint64) {
	tokenIDs := make([]domain.TokenID, 0, len(ids))
	for _, id := range ids {
		tokenID := domain.NewTokenID(id)
		require.NoError(t, tm.nft.Mint(alice, tokenID))
		tokenIDs = append(tokenIDs, tokenID)
	}
	tm.nft.SetApprovalForAll(alice, tm.vaultAddr, true)

	rec := tm.do(t, http.MethodPost, vaultPath("/deposit"), tm.bearer(t, alice), dto.DepositRequest{
		TokenIDs: tokenIDs,
		Deadline: tm.now.Add(time.Hour),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func vaultPath(suffix string) string {
	return fmt.Sprintf("/api/v1/vaults/%s%s", nftAddr.Hex(), suffix)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	body := decode[map[string]map[string]any](t, rec)
	code, _ := body["error"]["code"].(string)
	return code
}

func TestHealthCheck(t *testing.T) {
	tm := setupTestHandler(t)
	defer tearDownTestHandler(tm)

	rec := tm.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestGetHub(t *testing.T) {
	tm := setupTestHandler(t)
	defer tearDownTestHandler(tm)

	rec := tm.do(t, http.MethodGet, "/api/v1/hub", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[dto.HubResponse](t, rec)
	assert.Equal(t, hubAddr, resp.Address)
	assert.Equal(t, ownerAddr, resp.Owner)
	assert.Equal(t, []common.Address{nftAddr}, resp.Whitelist)
	assert.Equal(t, int64(30*24*3600), resp.RedeemMaxDeadlineSeconds)
	assert.Equal(t, 0, resp.VaultCount)
}

func TestCreateVault(t *testing.T) {
	tm := setupTestHandler(t)
	defer tearDownTestHandler(tm)

	rec := tm.do(t, http.MethodPost, "/api/v1/vaults", tm.bearer(t, alice), dto.CreateVaultRequest{
		Collection: nftAddr,
		NFTUnits:   1,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	resp := decode[dto.VaultResponse](t, rec)
	assert.Equal(t, tm.vaultAddr, resp.Address)
	assert.Equal(t, nftAddr, resp.Collection)
	assert.Equal(t, "X404-Blue Chip", resp.Name)
	assert.Equal(t, "XBC", resp.Symbol)
	assert.Equal(t, oneUnit, resp.UnitSize)
	assert.Equal(t, "0", resp.TotalSupply)

	rec = tm.do(t, http.MethodGet, "/api/v1/vaults", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[dto.ListVaultsResponse](t, rec).Vaults, 1)
}

func TestCreateVault_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		auth       func(tm *testHandlerMocks, t *testing.T) string
		body       any
		wantStatus int
		wantCode   string
	}{
		{
			name:       "missing token",
			auth:       func(*testHandlerMocks, *testing.T) string { return "" },
			body:       dto.CreateVaultRequest{Collection: nftAddr, NFTUnits: 1},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "unauthorized",
		},
		{
			name:       "api key",
			auth:       func(*testHandlerMocks, *testing.T) string { return "ApiKey " + apiKey },
			body:       dto.CreateVaultRequest{Collection: nftAddr, NFTUnits: 1},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "unauthorized",
		},
		{
			name:       "not whitelisted",
			auth:       func(tm *testHandlerMocks, t *testing.T) string { return tm.bearer(t, alice) },
			body:       dto.CreateVaultRequest{Collection: otherNFT, NFTUnits: 1},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "rejected",
		},
		{
			name:       "zero units",
			auth:       func(tm *testHandlerMocks, t *testing.T) string { return tm.bearer(t, alice) },
			body:       dto.CreateVaultRequest{Collection: nftAddr},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "rejected",
		},
		{
			name:       "missing collection",
			auth:       func(tm *testHandlerMocks, t *testing.T) string { return tm.bearer(t, alice) },
			body:       map[string]any{"nft_units": 1},
			wantStatus: http.StatusBadRequest,
			wantCode:   "validation_failed",
		},
		{
			name:       "malformed body",
			auth:       func(tm *testHandlerMocks, t *testing.T) string { return tm.bearer(t, alice) },
			body:       map[string]any{"collection": "not-an-address"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "validation_failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := setupTestHandler(t)
			defer tearDownTestHandler(tm)

			rec := tm.do(t, http.MethodPost, "/api/v1/vaults", tt.auth(tm, t), tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantCode, errorCode(t, rec))
		})
	}
}

func TestCreateVault_Duplicate(t *testing.T) {
	tm := setupTestHandler(t)
	defer tearDownTestHandler(tm)

	tm.createVault(t)

	rec := tm.do(t, http.MethodPost, "/api/v1/vaults", tm.bearer(t, alice), dto.CreateVaultRequest{
		Collection: nftAddr,
		NFTUnits:   1,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "conflict", errorCode(t, rec))
}

func TestDeposit(t *testing.T) {
	tm := setupTestHandler(t)
	defer tearDownTestHandler(tm)

	tm.createVault(t)
	tm.nft.SetApprovalForAll(alice, tm.vaultAddr, true)
	require.NoError(t, tm.nft.Mint(alice, domain.NewTokenID(7)))

	rec := tm.do(t, http.MethodPost, vaultPath("/deposit"), tm.bearer(t, alice), dto.DepositRequest{
		TokenIDs: []domain.TokenID{domain.NewTokenID(7)},
		Deadline: tm.now.Add(time.Hour),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	receipt := decode[dto.ReceiptResponse](t, rec)
	assert.Equal(t, tm.vaultAddr, receipt.Vault)
	assert.NotEmpty(t, receipt.Events)

	rec = tm.do(t, http.MethodGet, vaultPath("/holders/"+alice.Hex()), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	holder := decode[dto.HolderResponse](t, rec)
	assert.Equal(t, oneUnit, holder.Balance)
	assert.Equal(t, 1, holder.ERC721Balance)
	assert.Equal(t, []domain.TokenID{domain.NewTokenID(7)}, holder.Tokens)

	rec = tm.do(t, http.MethodGet, vaultPath("/tokens/7"), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	token := decode[dto.TokenResponse](t, rec)
	assert.True(t, token.Deposited)
	require.NotNil(t, token.Owner)
	assert.Equal(t, alice, *token.Owner)
	require.NotNil(t, token.RedeemDeadline)
	assert.True(t, tm.now.Add(time.Hour).Equal(*token.RedeemDeadline))
}

func TestDeposit_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantCode   string
	}{
		{
			name:       "empty token ids",
			body:       dto.DepositRequest{Deadline: time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC)},
			wantStatus: http.StatusBadRequest,
			wantCode:   "validation_failed",
		},
		{
			name:       "missing deadline",
			body:       dto.DepositRequest{TokenIDs: []domain.TokenID{domain.NewTokenID(1)}},
			wantStatus: http.StatusBadRequest,
			wantCode:   "validation_failed",
		},
		{
			name: "deadline in the past",
			body: dto.DepositRequest{
				TokenIDs: []domain.TokenID{domain.NewTokenID(1)},
				Deadline: time.Date(2024, 5, 1, 11, 0, 0, 0, time.UTC),
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "rejected",
		},
		{
			name: "not token owner",
			body: dto.DepositRequest{
				TokenIDs: []domain.TokenID{domain.NewTokenID(99)},
				Deadline: time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC),
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "rejected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := setupTestHandler(t)
			defer tearDownTestHandler(tm)

			tm.createVault(t)
			require.NoError(t, tm.nft.Mint(alice, domain.NewTokenID(1)))
			tm.nft.SetApprovalForAll(alice, tm.vaultAddr, true)

			rec := tm.do(t, http.MethodPost, vaultPath("/deposit"), tm.bearer(t, alice), tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantCode, errorCode(t, rec))
		})
	}
}

func TestTransferAndApprove(t *testing.T) {
	tm := setupTestHandler(t)
	defer tearDownTestHandler(tm)

	tm.createVault(t)
	tm.deposit(t, 1)

	rec := tm.do(t, http.MethodPost, vaultPath("/approve"), tm.bearer(t, alice), dto.ApproveRequest{
		Spender: bob,
		Amount:  halfUnit,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = tm.do(t, http.MethodGet, vaultPath(fmt.Sprintf("/allowances/%s/%s", alice.Hex(), bob.Hex())), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, halfUnit, decode[dto.AllowanceResponse](t, rec).Amount)

	rec = tm.do(t, http.MethodPost, vaultPath("/transfer-from"), tm.bearer(t, bob), dto.TransferFromRequest{
		From:   alice,
		To:     bob,
		Amount: halfUnit,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = tm.do(t, http.MethodGet, vaultPath("/holders/"+bob.Hex()), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, halfUnit, decode[dto.HolderResponse](t, rec).Balance)

	// allowance is spent
	rec = tm.do(t, http.MethodPost, vaultPath("/transfer-from"), tm.bearer(t, bob), dto.TransferFromRequest{
		From:   alice,
		To:     bob,
		Amount: "1",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = tm.do(t, http.MethodPost, vaultPath("/transfer"), tm.bearer(t, bob), dto.TransferRequest{
		To:     alice,
		Amount: halfUnit,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = tm.do(t, http.MethodGet, vaultPath("/holders/"+alice.Hex()), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	holder := decode[dto.HolderResponse](t, rec)
	assert.Equal(t, oneUnit, holder.Balance)
	assert.Equal(t, 1, holder.ERC721Balance)
}

func TestTransfer_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantCode   string
	}{
		{"insufficient balance", dto.TransferRequest{To: bob, Amount: "2" + oneUnit}, http.StatusUnprocessableEntity, "rejected"},
		{"zero recipient", dto.TransferRequest{Amount: "1"}, http.StatusUnprocessableEntity, "rejected"},
		{"missing amount", dto.TransferRequest{To: bob}, http.StatusBadRequest, "validation_failed"},
		{"negative amount", dto.TransferRequest{To: bob, Amount: "-1"}, http.StatusBadRequest, "validation_failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := setupTestHandler(t)
			defer tearDownTestHandler(tm)

			tm.createVault(t)
			tm.deposit(t, 1)

			rec := tm.do(t, http.MethodPost, vaultPath("/transfer"), tm.bearer(t, alice), tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantCode, errorCode(t, rec))
		})
	}
}

func TestRedeem(t *testing.T) {
	tm := setupTestHandler(t)
	defer tearDownTestHandler(tm)

	tm.createVault(t)
	tm.deposit(t, 1, 2)

	// bob is neither depositor nor holder before the deadline
	rec := tm.do(t, http.MethodPost, vaultPath("/redeem"), tm.bearer(t, bob), dto.RedeemRequest{
		TokenIDs: []domain.TokenID{domain.NewTokenID(1)},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = tm.do(t, http.MethodPost, vaultPath("/redeem"), tm.bearer(t, alice), dto.RedeemRequest{
		TokenIDs: []domain.TokenID{domain.NewTokenID(1)},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	owner, err := tm.nft.OwnerOf(context.Background(), domain.NewTokenID(1))
	require.NoError(t, err)
	assert.Equal(t, alice, owner)

	rec = tm.do(t, http.MethodGet, vaultPath("/tokens/1"), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[dto.TokenResponse](t, rec).Deposited)

	rec = tm.do(t, http.MethodGet, vaultPath(""), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	info := decode[dto.VaultResponse](t, rec)
	assert.Equal(t, oneUnit, info.TotalSupply)
	assert.Equal(t, uint64(1), info.NFTSupply)
	assert.Equal(t, uint64(2), info.Minted)
}

func TestVaultLookup(t *testing.T) {
	tm := setupTestHandler(t)
	defer tearDownTestHandler(tm)

	rec := tm.do(t, http.MethodGet, vaultPath(""), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", errorCode(t, rec))

	rec = tm.do(t, http.MethodGet, "/api/v1/vaults/0x123", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad_request", errorCode(t, rec))

	tm.createVault(t)
	rec = tm.do(t, http.MethodGet, vaultPath("/tokens/abc"), "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListEvents(t *testing.T) {
	tm := setupTestHandler(t)
	defer tearDownTestHandler(tm)

	events := []domain.VaultEvent{
		{ID: "01HX", Collection: nftAddr, Vault: tm.vaultAddr, Type: domain.EventTypeDeposit, Timestamp: tm.now},
	}
	tm.events.EXPECT().ListEvents(gomock.Any(), nftAddr, store.EventFilter{
		Types:  []domain.EventType{domain.EventTypeDeposit, domain.EventTypeRedeem},
		Limit:  10,
		Offset: 5,
	}).Return(events, nil)

	rec := tm.do(t, http.MethodGet, vaultPath("/events?type=deposit,redeem&limit=10&offset=5"), "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[dto.EventsResponse](t, rec)
	assert.Equal(t, 10, resp.Limit)
	assert.Equal(t, 5, resp.Offset)
	require.Len(t, resp.Events, 1)
	assert.Equal(t, "01HX", resp.Events[0].ID)
}

func TestListEvents_Errors(t *testing.T) {
	tm := setupTestHandler(t)
	defer tearDownTestHandler(tm)

	rec := tm.do(t, http.MethodGet, vaultPath("/events?type=mint"), "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = tm.do(t, http.MethodGet, vaultPath("/events?limit=-1"), "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	tm.events.EXPECT().ListEvents(gomock.Any(), nftAddr, gomock.Any()).Return(nil, domain.ErrVaultNotFound)
	rec = tm.do(t, http.MethodGet, vaultPath("/events"), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	tm.events.EXPECT().ListEvents(gomock.Any(), nftAddr, gomock.Any()).Return(nil, errors.New("connection refused"))
	rec = tm.do(t, http.MethodGet, vaultPath("/events"), "", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestHubAdministration(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		body   any
		check  func(t *testing.T, resp dto.HubResponse)
	}{
		{
			name:   "emergency close",
			method: http.MethodPut,
			path:   "/api/v1/hub/emergency-close",
			body:   dto.SetEmergencyCloseRequest{Closed: true},
			check: func(t *testing.T, resp dto.HubResponse) {
				assert.True(t, resp.EmergencyClose)
			},
		},
		{
			name:   "whitelist",
			method: http.MethodPut,
			path:   "/api/v1/hub/whitelist",
			body:   dto.SetWhitelistRequest{Collections: []common.Address{otherNFT}, Enabled: true},
			check: func(t *testing.T, resp dto.HubResponse) {
				assert.ElementsMatch(t, []common.Address{nftAddr, otherNFT}, resp.Whitelist)
			},
		},
		{
			name:   "redeem max deadline",
			method: http.MethodPut,
			path:   "/api/v1/hub/redeem-max-deadline",
			body:   dto.SetRedeemMaxDeadlineRequest{Seconds: 3600},
			check: func(t *testing.T, resp dto.HubResponse) {
				assert.Equal(t, int64(3600), resp.RedeemMaxDeadlineSeconds)
			},
		},
		{
			name:   "swap routes",
			method: http.MethodPut,
			path:   "/api/v1/hub/swap-routes",
			body: dto.SetSwapRoutesRequest{Routes: []registry.SwapRoute{
				{Name: "uniswap", Router: bob, Path: []common.Address{nftAddr, otherNFT}},
			}},
			check: func(t *testing.T, resp dto.HubResponse) {
				require.Len(t, resp.SwapRoutes, 1)
				assert.Equal(t, "uniswap", resp.SwapRoutes[0].Name)
			},
		},
		{
			name:   "owner",
			method: http.MethodPut,
			path:   "/api/v1/hub/owner",
			body:   dto.SetOwnerRequest{Owner: bob},
			check: func(t *testing.T, resp dto.HubResponse) {
				assert.Equal(t, bob, resp.Owner)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := setupTestHandler(t)
			defer tearDownTestHandler(tm)

			rec := tm.do(t, tt.method, tt.path, tm.bearer(t, alice), tt.body)
			assert.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())
			assert.Equal(t, "forbidden", errorCode(t, rec))

			rec = tm.do(t, tt.method, tt.path, tm.bearer(t, ownerAddr), tt.body)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			tt.check(t, decode[dto.HubResponse](t, rec))
		})
	}
}

func TestHubAdministration_InvalidDeadline(t *testing.T) {
	tm := setupTestHandler(t)
	defer tearDownTestHandler(tm)

	rec := tm.do(t, http.MethodPut, "/api/v1/hub/redeem-max-deadline", tm.bearer(t, ownerAddr), dto.SetRedeemMaxDeadlineRequest{})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, time.Duration(30*24)*time.Hour, tm.hub.RedeemMaxDeadline())
}

func TestSetVaultURIs(t *testing.T) {
	tm := setupTestHandler(t)
	defer tearDownTestHandler(tm)

	tm.createVault(t)

	rec := tm.do(t, http.MethodPut, vaultPath("/token-uri"), tm.bearer(t, alice), dto.SetURIRequest{URI: "ipfs://x/"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = tm.do(t, http.MethodPut, vaultPath("/token-uri"), tm.bearer(t, ownerAddr), dto.SetURIRequest{URI: "ipfs://x/"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "ipfs://x/", decode[dto.VaultResponse](t, rec).TokenURI)

	rec = tm.do(t, http.MethodPut, vaultPath("/contract-uri"), tm.bearer(t, ownerAddr), dto.SetURIRequest{URI: "ipfs://c"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "ipfs://c", decode[dto.VaultResponse](t, rec).ContractURI)

	rec = tm.do(t, http.MethodGet, vaultPath("/tokens/5"), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	token := decode[dto.TokenResponse](t, rec)
	assert.False(t, token.Deposited)
	assert.Equal(t, "ipfs://x/5", token.TokenURI)
}

func TestReceiveCustodyNotification(t *testing.T) {
	tests := []struct {
		name         string
		auth         string
		result       error
		wantStatus   int
		wantAccepted bool
	}{
		{"accepted", "ApiKey " + apiKey, nil, http.StatusOK, true},
		{"rejected and refunded", "ApiKey " + apiKey, messaging.Drop(domain.ErrInvalidDeadline), http.StatusOK, false},
		{"transient failure", "ApiKey " + apiKey, errors.New("commit failed"), http.StatusInternalServerError, false},
		{"wrong key", "ApiKey nope", nil, http.StatusUnauthorized, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := setupTestHandler(t)
			defer tearDownTestHandler(tm)

			tm.notifyFn = func(context.Context, *messaging.CustodyNotification) error {
				return tt.result
			}

			rec := tm.do(t, http.MethodPost, "/api/v1/custody/notifications", tt.auth, messaging.CustodyNotification{
				Collection: nftAddr,
				Operator:   alice,
				From:       alice,
				TokenID:    domain.NewTokenID(3),
				Data:       []byte{0x01},
			})
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantAccepted, decode[dto.NotificationResponse](t, rec).Accepted)
				require.Len(t, tm.notified, 1)
				assert.Equal(t, domain.NewTokenID(3), tm.notified[0].TokenID)
			}
		})
	}
}

func TestReceiveCustodyNotification_MissingCollection(t *testing.T) {
	tm := setupTestHandler(t)
	defer tearDownTestHandler(tm)

	rec := tm.do(t, http.MethodPost, "/api/v1/custody/notifications", "ApiKey "+apiKey, map[string]any{"token_id": "1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, tm.notified)
}
