package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-vault/internal/mocks"
	"github.com/feral-file/ff-vault/internal/webhook"
)

func TestSignedWebhook(t *testing.T) {
	const secret = "webhook-secret"
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	body := []byte(`{"collection":"0x00000000000000000000000000000000000000c1","token_id":"1"}`)
	ts := strconv.FormatInt(now.Unix(), 10)

	tests := []struct {
		name           string
		secret         string
		signature      string
		timestamp      string
		expectedStatus int
	}{
		{
			name:           "valid signature",
			secret:         secret,
			signature:      webhook.Sign(secret, now.Unix(), body),
			timestamp:      ts,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "no secret configured",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing signature",
			secret:         secret,
			timestamp:      ts,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "signed with another secret",
			secret:         secret,
			signature:      webhook.Sign("other", now.Unix(), body),
			timestamp:      ts,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "stale delivery",
			secret:         secret,
			signature:      webhook.Sign(secret, now.Add(-time.Hour).Unix(), body),
			timestamp:      strconv.FormatInt(now.Add(-time.Hour).Unix(), 10),
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			clock := mocks.NewMockClock(ctrl)
			clock.EXPECT().Now().Return(now).AnyTimes()

			var received []byte
			router := gin.New()
			router.POST("/hook", SignedWebhook(tt.secret, clock), func(c *gin.Context) {
				received, _ = io.ReadAll(c.Request.Body)
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPost, "/hook", bytes.NewReader(body))
			if tt.signature != "" {
				req.Header.Set(webhook.SignatureHeader, tt.signature)
			}
			if tt.timestamp != "" {
				req.Header.Set(webhook.TimestampHeader, tt.timestamp)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			require.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedStatus == http.StatusOK {
				// the handler still sees the full body
				assert.Equal(t, body, received)
			} else {
				assert.Contains(t, rec.Body.String(), "Invalid webhook signature")
			}
		})
	}
}
