// Package approval validates guardian approval codes. Code issuance lives
// with the guardian-outreach service; this verifier only checks that a
// presented code matches the one derivable for the teen account.
package approval

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"github.com/altdap/identity-service/internal/core/domain"
)

const codeLength = 12

// HMACVerifier derives per-teen approval codes from a shared secret, so the
// identity service can check codes without a round trip to the issuing
// service.
type HMACVerifier struct {
	secret []byte
}

func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret)}
}

// Code returns the approval code for a teen account. Exposed so the
// outreach tooling and tests can mint codes.
func (v *HMACVerifier) Code(teenUserID string) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(teenUserID))
	return hex.EncodeToString(mac.Sum(nil))[:codeLength]
}

// Verify checks the presented code in constant time. A mismatch is a
// Forbidden outcome, not an authentication failure.
func (v *HMACVerifier) Verify(_ context.Context, teenUserID, approvalCode string) error {
	expected := v.Code(teenUserID)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(approvalCode)) != 1 {
		return domain.ErrForbidden
	}
	return nil
}
