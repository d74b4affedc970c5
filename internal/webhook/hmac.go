// Package webhook holds provider-agnostic webhook primitives: HMAC
// signature validation and JSON path extraction, both reused by every
// source adapter (currently Jira; see internal/source/jira).
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/relaywire/connector/internal/connectorerr"
)

const signaturePrefix = "sha256="

// HMACValidator verifies that a raw request body was signed with a shared
// secret, using constant-time comparison so validation time does not leak
// information about how many signature bytes matched.
type HMACValidator struct {
	secret     string
	headerName string
	log        *zap.Logger
}

// NewHMACValidator returns a validator bound to secret and the header name
// the caller should read the signature from.
func NewHMACValidator(secret, headerName string, log *zap.Logger) *HMACValidator {
	if log == nil {
		log = zap.NewNop()
	}
	return &HMACValidator{secret: secret, headerName: headerName, log: log}
}

// HeaderName returns the signature header name this validator expects.
func (v *HMACValidator) HeaderName() string {
	return v.headerName
}

// Validate checks signatureHeader (the full "sha256=<hex>" header value)
// against the HMAC-SHA256 of body under the configured secret.
func (v *HMACValidator) Validate(body []byte, signatureHeader string) error {
	v.log.Debug("validating hmac signature", zap.String("header_value", signatureHeader))

	signature, ok := strings.CutPrefix(signatureHeader, signaturePrefix)
	if !ok {
		v.log.Debug("signature header missing sha256= prefix", zap.String("header_value", signatureHeader))
		return connectorerr.ErrInvalidSignatureFormat
	}

	computed := v.compute(body)
	v.log.Debug("computed signature",
		zap.String("computed", computed),
		zap.String("expected", signature),
		zap.Int("body_len", len(body)),
	)

	if !constantTimeEqual(computed, signature) {
		v.log.Debug("signature mismatch")
		return connectorerr.ErrHMACValidation
	}
	return nil
}

// compute returns the lower-case hex HMAC-SHA256 digest of body.
func (v *HMACValidator) compute(body []byte) string {
	mac := hmac.New(sha256.New, []byte(v.secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// constantTimeEqual compares two ASCII strings with hmac.Equal: for inputs
// of equal length the time taken does not depend on where (or whether)
// they first differ; inputs of different lengths are rejected at once.
func constantTimeEqual(a, b string) bool {
	return hmac.Equal([]byte(a), []byte(b))
}

// SignatureHeaderValue is a small test/debug helper that computes the
// HMAC-SHA256 of body under secret and returns it in the wire header format
// ("sha256=<hex>"), mirroring how a provider signs a body.
func SignatureHeaderValue(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return fmt.Sprintf("%s%s", signaturePrefix, hex.EncodeToString(mac.Sum(nil)))
}
