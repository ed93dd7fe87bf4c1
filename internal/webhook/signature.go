package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// SignatureHeader carries "sha256=<hex hmac>" of the signed payload
	SignatureHeader = "X-Webhook-Signature"
	// TimestampHeader carries the unix timestamp the sender signed with
	TimestampHeader = "X-Webhook-Timestamp"

	// DEFAULT_TOLERANCE is how far a signed timestamp may drift from the receiver clock
	DEFAULT_TOLERANCE = 5 * time.Minute

	signaturePrefix = "sha256="
)

var (
	// ErrMissingSignature is returned when the signature or timestamp header is absent
	ErrMissingSignature = errors.New("missing webhook signature")
	// ErrInvalidSignature is returned when the signature does not match the payload
	ErrInvalidSignature = errors.New("invalid webhook signature")
	// ErrStaleTimestamp is returned when the signed timestamp is outside the tolerance
	ErrStaleTimestamp = errors.New("webhook timestamp outside tolerance")
)

// Sign returns the signature header value of body signed at timestamp.
// The signed payload is "{timestamp}.{body}".
func Sign(secret string, timestamp int64, body []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(strconv.FormatInt(timestamp, 10)))
	h.Write([]byte("."))
	h.Write(body)
	return signaturePrefix + hex.EncodeToString(h.Sum(nil))
}

// Verify checks a signed webhook delivery against secret.
// timestamp is the raw TimestampHeader value.
func Verify(secret, signature, timestamp string, body []byte, now time.Time, tolerance time.Duration) error {
	if signature == "" || timestamp == "" {
		return ErrMissingSignature
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: malformed timestamp %q", ErrInvalidSignature, timestamp)
	}

	drift := now.Sub(time.Unix(ts, 0))
	if drift < 0 {
		drift = -drift
	}
	if drift > tolerance {
		return fmt.Errorf("%w: signed %s ago", ErrStaleTimestamp, now.Sub(time.Unix(ts, 0)))
	}

	if !strings.HasPrefix(signature, signaturePrefix) {
		return fmt.Errorf("%w: unsupported algorithm", ErrInvalidSignature)
	}
	expected := Sign(secret, ts, body)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrInvalidSignature
	}

	return nil
}
