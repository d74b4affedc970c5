// Package connectorerr defines the sentinel errors the HTTP layer maps to
// status codes, mirroring the taxonomy the connector's error handling is
// built around: auth, payload, processing, transport, storage, and config.
package connectorerr

import "errors"

var (
	// ErrMissingSignature is returned when the configured signature header
	// was not present on the request at all.
	ErrMissingSignature = errors.New("missing signature header")
	// ErrInvalidSignatureFormat is returned when the signature header value
	// does not begin with "sha256=".
	ErrInvalidSignatureFormat = errors.New("invalid signature format")
	// ErrHMACValidation is returned when the computed MAC does not match
	// the one presented in the signature header.
	ErrHMACValidation = errors.New("hmac validation failed")

	// ErrEventTypeNotFound is returned when a webhook body has no
	// "webhookEvent" string field.
	ErrEventTypeNotFound = errors.New("event type not found in payload")
	// ErrPrimaryKeyPathNotFound is returned when a configured primary-key
	// path cannot be resolved against the parsed body.
	ErrPrimaryKeyPathNotFound = errors.New("primary key path not found")

	// ErrPipelineSend is returned when the ingest channel's receiver has
	// gone away and an event could not be submitted.
	ErrPipelineSend = errors.New("failed to send event to pipeline")

	// ErrProcessing covers CEL evaluation, template rendering, and cast
	// failures in the processor stages.
	ErrProcessing = errors.New("processing error")
	// ErrDatabase covers sink write/delete failures.
	ErrDatabase = errors.New("database error")
	// ErrSecretNotFound is returned when a FromEnv/FromFile secret source
	// cannot be resolved at startup.
	ErrSecretNotFound = errors.New("secret not found")
)
