package clerk

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

var testSecret = "whsec_" + base64.StdEncoding.EncodeToString([]byte("webhook-test-key"))

func signedHeaders(t *testing.T, secret string, body []byte) http.Header {
	t.Helper()
	timestamp := fmt.Sprintf("%d", time.Now().Unix())
	sig, err := Sign(secret, "msg_1", timestamp, body)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	header := http.Header{}
	header.Set("svix-id", "msg_1")
	header.Set("svix-timestamp", timestamp)
	header.Set("svix-signature", sig)
	return header
}

func TestVerifyWebhook_Roundtrip(t *testing.T) {
	body := []byte(`{"type":"user.created"}`)
	header := signedHeaders(t, testSecret, body)

	if err := VerifyWebhook(testSecret, header, body); err != nil {
		t.Errorf("valid signature rejected: %v", err)
	}
}

func TestVerifyWebhook_TamperedBody(t *testing.T) {
	header := signedHeaders(t, testSecret, []byte(`{"type":"user.created"}`))

	err := VerifyWebhook(testSecret, header, []byte(`{"type":"user.deleted"}`))
	if !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("error = %v, want %v", err, ErrInvalidSignature)
	}
}

func TestVerifyWebhook_WrongSecret(t *testing.T) {
	body := []byte(`{}`)
	header := signedHeaders(t, testSecret, body)

	otherSecret := "whsec_" + base64.StdEncoding.EncodeToString([]byte("another-key"))
	err := VerifyWebhook(otherSecret, header, body)
	if !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("error = %v, want %v", err, ErrInvalidSignature)
	}
}

func TestVerifyWebhook_MissingHeaders(t *testing.T) {
	err := VerifyWebhook(testSecret, http.Header{}, []byte(`{}`))
	if !errors.Is(err, ErrMissingSignatureHeaders) {
		t.Errorf("error = %v, want %v", err, ErrMissingSignatureHeaders)
	}
}

func TestVerifyWebhook_StaleTimestamp(t *testing.T) {
	body := []byte(`{}`)
	stale := fmt.Sprintf("%d", time.Now().Add(-time.Hour).Unix())
	sig, err := Sign(testSecret, "msg_1", stale, body)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	header := http.Header{}
	header.Set("svix-id", "msg_1")
	header.Set("svix-timestamp", stale)
	header.Set("svix-signature", sig)

	if err := VerifyWebhook(testSecret, header, body); !errors.Is(err, ErrStaleTimestamp) {
		t.Errorf("error = %v, want %v", err, ErrStaleTimestamp)
	}
}
