package middleware

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/feral-file/ff-vault/internal/adapter"
	apierrors "github.com/feral-file/ff-vault/internal/api/shared/errors"
	"github.com/feral-file/ff-vault/internal/logger"
	"github.com/feral-file/ff-vault/internal/webhook"
)

// SignedWebhook verifies the HMAC signature of a webhook delivery.
// With an empty secret every delivery passes through unchecked.
func SignedWebhook(secret string, clock adapter.Clock) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			apiErr := apierrors.NewValidationError("Failed to read request body")
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": apiErr})
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		err = webhook.Verify(
			secret,
			c.GetHeader(webhook.SignatureHeader),
			c.GetHeader(webhook.TimestampHeader),
			body,
			clock.Now(),
			webhook.DEFAULT_TOLERANCE,
		)
		if err != nil {
			logger.WarnCtx(c.Request.Context(), "Webhook signature rejected",
				zap.Error(err),
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
			)
			apiErr := apierrors.NewUnauthorizedError("Invalid webhook signature", err.Error())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": apiErr})
			return
		}

		c.Next()
	}
}
