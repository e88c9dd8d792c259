package util

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// Meta signs webhook deliveries with the app secret:
// https://developers.facebook.com/docs/graph-api/webhooks/getting-started
// The X-Hub-Signature-256 header carries "sha256=<hex hmac of the body>".

func VerifyMetaWebhook(body []byte, signatureHeader, appSecret string) (bool, error) {
	if signatureHeader == "" {
		return false, errors.New("missing X-Hub-Signature-256 header")
	}
	if appSecret == "" {
		return false, errors.New("webhook app secret is not configured")
	}

	expected := strings.TrimPrefix(signatureHeader, "sha256=")
	if expected == signatureHeader {
		return false, errors.New("unexpected signature format (want sha256=...)")
	}

	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write(body)
	computed := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(computed), []byte(expected)) {
		return false, errors.New("signature mismatch")
	}
	return true, nil
}
