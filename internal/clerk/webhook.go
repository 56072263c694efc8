package clerk

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// The provider signs webhook deliveries with the svix scheme: an
// HMAC-SHA256 over "{msg-id}.{timestamp}.{body}" keyed by the secret's
// base64 payload, carried in the svix-signature header as one or more
// space-separated "v1,<base64 mac>" candidates.

const (
	webhookSecretPrefix = "whsec_"

	// webhookTolerance bounds timestamp skew to defeat replayed deliveries.
	webhookTolerance = 5 * time.Minute
)

var (
	// ErrMissingSignatureHeaders is returned when a delivery lacks the svix headers
	ErrMissingSignatureHeaders = errors.New("missing webhook signature headers")

	// ErrInvalidSignature is returned when no signature candidate matches
	ErrInvalidSignature = errors.New("webhook signature mismatch")

	// ErrStaleTimestamp is returned when the delivery timestamp is outside tolerance
	ErrStaleTimestamp = errors.New("webhook timestamp outside tolerance")
)

// VerifyWebhook checks a webhook delivery's signature and timestamp against
// the configured signing secret.
func VerifyWebhook(secret string, header http.Header, body []byte) error {
	msgID := header.Get("svix-id")
	timestamp := header.Get("svix-timestamp")
	signatures := header.Get("svix-signature")
	if msgID == "" || timestamp == "" || signatures == "" {
		return ErrMissingSignatureHeaders
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("parse webhook timestamp: %w", err)
	}
	skew := time.Since(time.Unix(ts, 0))
	if skew > webhookTolerance || skew < -webhookTolerance {
		return ErrStaleTimestamp
	}

	key, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(secret, webhookSecretPrefix))
	if err != nil {
		return fmt.Errorf("decode webhook secret: %w", err)
	}

	mac := hmac.New(sha256.New, key)
	fmt.Fprintf(mac, "%s.%s.", msgID, timestamp)
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	for _, candidate := range strings.Fields(signatures) {
		version, sig, found := strings.Cut(candidate, ",")
		if !found || version != "v1" {
			continue
		}
		if hmac.Equal([]byte(sig), []byte(expected)) {
			return nil
		}
	}

	return ErrInvalidSignature
}

// Sign produces the signature header value for the given delivery, in the
// same format VerifyWebhook accepts. Used by tests and local tooling.
func Sign(secret, msgID, timestamp string, body []byte) (string, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(secret, webhookSecretPrefix))
	if err != nil {
		return "", fmt.Errorf("decode webhook secret: %w", err)
	}

	mac := hmac.New(sha256.New, key)
	fmt.Fprintf(mac, "%s.%s.", msgID, timestamp)
	mac.Write(body)

	return "v1," + base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}
