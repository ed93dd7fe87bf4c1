package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/feral-file/ff-vault/internal/adapter"
	"github.com/feral-file/ff-vault/internal/api/middleware"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler, authCfg middleware.AuthConfig, clock adapter.Clock) {
	// Health check endpoint (no auth, no version prefix)
	router.GET("/health", handler.HealthCheck)

	jwtAuth := middleware.JWTAuth(authCfg)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Hub endpoints (public read access)
		v1.GET("/hub", handler.GetHub)

		// Hub administration (requires authentication, the hub checks ownership)
		admin := v1.Group("/hub", jwtAuth)
		admin.PUT("/whitelist", handler.SetWhitelist)
		admin.PUT("/redeem-max-deadline", handler.SetRedeemMaxDeadline)
		admin.PUT("/emergency-close", handler.SetEmergencyClose)
		admin.PUT("/swap-routes", handler.SetSwapRoutes)
		admin.PUT("/owner", handler.SetOwner)

		// Vault endpoints (public read access)
		v1.GET("/vaults", handler.ListVaults)
		v1.GET("/vaults/:collection", handler.GetVault)
		v1.GET("/vaults/:collection/holders/:holder", handler.GetHolder)
		v1.GET("/vaults/:collection/allowances/:owner/:spender", handler.GetAllowance)
		v1.GET("/vaults/:collection/tokens/:token_id", handler.GetToken)
		v1.GET("/vaults/:collection/events", handler.ListEvents)

		// Vault operations on behalf of the token subject (requires authentication)
		v1.POST("/vaults", jwtAuth, handler.CreateVault)
		v1.POST("/vaults/:collection/deposit", jwtAuth, handler.Deposit)
		v1.POST("/vaults/:collection/redeem", jwtAuth, handler.Redeem)
		v1.POST("/vaults/:collection/transfer", jwtAuth, handler.Transfer)
		v1.POST("/vaults/:collection/transfer-from", jwtAuth, handler.TransferFrom)
		v1.POST("/vaults/:collection/approve", jwtAuth, handler.Approve)
		v1.PUT("/vaults/:collection/contract-uri", jwtAuth, handler.SetContractURI)
		v1.PUT("/vaults/:collection/token-uri", jwtAuth, handler.SetTokenURI)

		// Custody notifications from the chain watcher (API key, plus a signature when a webhook secret is set)
		v1.POST("/custody/notifications",
			middleware.APIKeyAuth(authCfg),
			middleware.SignedWebhook(authCfg.WebhookSecret, clock),
			handler.ReceiveCustodyNotification,
		)
	}
}
