package webhook_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/feral-file/ff-vault/internal/webhook"
)

const testSecret = "746573742d7365637265742d6b6579"

func TestSign(t *testing.T) {
	t.Run("signature can be verified by sender", func(t *testing.T) {
		body := []byte(`{"collection":"0x00000000000000000000000000000000000000c1","token_id":"1"}`)
		timestamp := int64(1714564800)

		signature := webhook.Sign(testSecret, timestamp, body)

		h := hmac.New(sha256.New, []byte(testSecret))
		h.Write([]byte(fmt.Sprintf("%d.%s", timestamp, body)))
		assert.Equal(t, "sha256="+hex.EncodeToString(h.Sum(nil)), signature)
	})

	t.Run("different timestamps produce different signatures", func(t *testing.T) {
		body := []byte(`{}`)
		assert.NotEqual(t, webhook.Sign(testSecret, 1, body), webhook.Sign(testSecret, 2, body))
	})

	t.Run("different secrets produce different signatures", func(t *testing.T) {
		body := []byte(`{}`)
		assert.NotEqual(t, webhook.Sign("73656372657431", 1, body), webhook.Sign("73656372657432", 1, body))
	})
}

func TestVerify(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	body := []byte(`{"token_id":"7"}`)
	signedAt := now.Add(-time.Minute).Unix()
	signature := webhook.Sign(testSecret, signedAt, body)

	tests := []struct {
		name      string
		signature string
		timestamp string
		body      []byte
		expectErr error
	}{
		{
			name:      "valid signature",
			signature: signature,
			timestamp: strconv.FormatInt(signedAt, 10),
			body:      body,
		},
		{
			name:      "missing signature",
			timestamp: strconv.FormatInt(signedAt, 10),
			body:      body,
			expectErr: webhook.ErrMissingSignature,
		},
		{
			name:      "missing timestamp",
			signature: signature,
			body:      body,
			expectErr: webhook.ErrMissingSignature,
		},
		{
			name:      "malformed timestamp",
			signature: signature,
			timestamp: "yesterday",
			body:      body,
			expectErr: webhook.ErrInvalidSignature,
		},
		{
			name:      "tampered body",
			signature: signature,
			timestamp: strconv.FormatInt(signedAt, 10),
			body:      []byte(`{"token_id":"8"}`),
			expectErr: webhook.ErrInvalidSignature,
		},
		{
			name:      "replayed with new timestamp",
			signature: signature,
			timestamp: strconv.FormatInt(now.Unix(), 10),
			body:      body,
			expectErr: webhook.ErrInvalidSignature,
		},
		{
			name:      "stale timestamp",
			signature: webhook.Sign(testSecret, now.Add(-time.Hour).Unix(), body),
			timestamp: strconv.FormatInt(now.Add(-time.Hour).Unix(), 10),
			body:      body,
			expectErr: webhook.ErrStaleTimestamp,
		},
		{
			name:      "timestamp from the future",
			signature: webhook.Sign(testSecret, now.Add(time.Hour).Unix(), body),
			timestamp: strconv.FormatInt(now.Add(time.Hour).Unix(), 10),
			body:      body,
			expectErr: webhook.ErrStaleTimestamp,
		},
		{
			name:      "unsupported algorithm",
			signature: "md5=abc",
			timestamp: strconv.FormatInt(signedAt, 10),
			body:      body,
			expectErr: webhook.ErrInvalidSignature,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := webhook.Verify(testSecret, tt.signature, tt.timestamp, tt.body, now, webhook.DEFAULT_TOLERANCE)
			if tt.expectErr != nil {
				assert.ErrorIs(t, err, tt.expectErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}
