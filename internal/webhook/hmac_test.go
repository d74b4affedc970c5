package webhook

import (
	"errors"
	"testing"

	"github.com/relaywire/connector/internal/connectorerr"
)

func TestHMACValidator_ValidSignature(t *testing.T) {
	body := []byte(`{"webhookEvent":"jira:issue_created"}`)
	v := NewHMACValidator("shared-secret", "X-Hub-Signature", nil)

	sig := SignatureHeaderValue("shared-secret", body)
	if err := v.Validate(body, sig); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestHMACValidator_MismatchedSecret(t *testing.T) {
	body := []byte(`{"webhookEvent":"jira:issue_created"}`)
	v := NewHMACValidator("shared-secret", "X-Hub-Signature", nil)

	sig := SignatureHeaderValue("wrong-secret", body)
	err := v.Validate(body, sig)
	if !errors.Is(err, connectorerr.ErrHMACValidation) {
		t.Fatalf("err = %v, want ErrHMACValidation", err)
	}
}

func TestHMACValidator_MalformedPrefix(t *testing.T) {
	body := []byte(`{}`)
	v := NewHMACValidator("shared-secret", "X-Hub-Signature", nil)

	err := v.Validate(body, "md5=deadbeef")
	if !errors.Is(err, connectorerr.ErrInvalidSignatureFormat) {
		t.Fatalf("err = %v, want ErrInvalidSignatureFormat", err)
	}
}

func TestHMACValidator_TamperedBodyFailsValidation(t *testing.T) {
	body := []byte(`{"amount":1}`)
	v := NewHMACValidator("shared-secret", "X-Hub-Signature", nil)
	sig := SignatureHeaderValue("shared-secret", body)

	tampered := []byte(`{"amount":2}`)
	err := v.Validate(tampered, sig)
	if !errors.Is(err, connectorerr.ErrHMACValidation) {
		t.Fatalf("err = %v, want ErrHMACValidation", err)
	}
}

func TestHMACValidator_HeaderName(t *testing.T) {
	v := NewHMACValidator("s", "X-Custom-Signature", nil)
	if v.HeaderName() != "X-Custom-Signature" {
		t.Errorf("HeaderName() = %q", v.HeaderName())
	}
}
