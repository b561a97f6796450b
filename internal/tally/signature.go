package tally

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// SignatureHeader is the header Tally sets on signed webhook deliveries.
const SignatureHeader = "Tally-Signature"

// VerifySignature checks the webhook body against the base64-encoded
// HMAC-SHA256 signature Tally computes with the form's signing secret.
func VerifySignature(body []byte, signature, secret string) bool {
	if signature == "" || secret == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
