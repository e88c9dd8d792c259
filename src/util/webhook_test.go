package util

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyMetaWebhook(t *testing.T) {
	body := []byte(`{"object":"ad_account","entry":[]}`)
	secret := "app-secret"

	ok, err := VerifyMetaWebhook(body, sign(body, secret), secret)
	assert.True(t, ok)
	assert.NoError(t, err)
}

func TestVerifyMetaWebhookRejects(t *testing.T) {
	body := []byte(`{"object":"ad_account"}`)

	ok, err := VerifyMetaWebhook(body, sign(body, "wrong-secret"), "app-secret")
	assert.False(t, ok)
	assert.Error(t, err)

	ok, _ = VerifyMetaWebhook(body, "", "app-secret")
	assert.False(t, ok)

	ok, _ = VerifyMetaWebhook(body, sign(body, "app-secret"), "")
	assert.False(t, ok)

	ok, _ = VerifyMetaWebhook(body, "md5=abc123", "app-secret")
	assert.False(t, ok)

	// Tampered body fails against the original signature.
	sig := sign(body, "app-secret")
	ok, _ = VerifyMetaWebhook([]byte(`{"object":"page"}`), sig, "app-secret")
	assert.False(t, ok)
}

func TestValidateName(t *testing.T) {
	assert.True(t, ValidateName("Low ROI pause"))
	assert.True(t, ValidateName("  padded  "))
	assert.False(t, ValidateName(""))
	assert.False(t, ValidateName("   "))

	long := make([]byte, 121)
	for i := range long {
		long[i] = 'a'
	}
	assert.False(t, ValidateName(string(long)))
}
