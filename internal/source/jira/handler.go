package jira

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/relaywire/connector/internal/connectorerr"
	"github.com/relaywire/connector/internal/event"
	"github.com/relaywire/connector/internal/metrics"
	"github.com/relaywire/connector/internal/webhook"
)

// sourceName labels metrics recorded by this adapter.
const sourceName = "jira"

// maxBodyBytes caps the request body read; a Jira webhook payload this
// large is almost certainly malformed or abusive.
const maxBodyBytes = 25 * 1024 * 1024

// Sender submits a canonical event to the pipeline executor. It is
// satisfied by *pipeline.Channel; declared here so this package does not
// import pipeline.
type Sender interface {
	Send(ctx context.Context, evt *event.CanonicalEvent) error
}

// Handler implements http.Handler for a single Jira integration's webhook
// endpoint.
type Handler struct {
	validator *webhook.HMACValidator
	sender    Sender
	log       *zap.Logger
}

// NewHandler returns a Handler that validates requests with validator and
// forwards recognized events to sender.
func NewHandler(validator *webhook.HMACValidator, sender Sender, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{validator: validator, sender: sender, log: log}
}

// ServeHTTP implements the handler algorithm: read → authenticate → parse
// → dispatch → extract → submit → respond. The response is written before
// any processor or sink runs; everything downstream of the channel send
// happens asynchronously in the executor.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := readLimitedBody(r, maxBodyBytes)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	signature := r.Header.Get(h.validator.HeaderName())
	if signature == "" {
		h.log.Debug("missing signature header", zap.String("header", h.validator.HeaderName()))
		http.Error(w, connectorerr.ErrMissingSignature.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validator.Validate(body, signature); err != nil {
		status := http.StatusUnauthorized
		if errors.Is(err, connectorerr.ErrInvalidSignatureFormat) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	var parsed interface{}
	if err := json.Unmarshal(body, &parsed); err != nil {
		http.Error(w, fmt.Sprintf("invalid json body: %v", err), http.StatusBadRequest)
		return
	}

	eventType, ok := extractEventType(parsed)
	if !ok {
		http.Error(w, connectorerr.ErrEventTypeNotFound.Error(), http.StatusBadRequest)
		return
	}

	def, known := lookupEvent(eventType)
	if !known {
		h.log.Debug("ignoring unrecognized jira event", zap.String("event_type", eventType))
		metrics.RecordIngest(sourceName, eventType, "unknown")
		w.WriteHeader(http.StatusOK)
		return
	}

	pkFields, err := def.Extractor(parsed)
	if err != nil {
		metrics.RecordIngest(sourceName, eventType, "rejected")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	canonical := event.New(parsed, eventType, pkFields, def.Operation)
	if err := h.sender.Send(r.Context(), canonical); err != nil {
		h.log.Error("failed to submit event to pipeline", zap.Error(err), zap.String("event_id", canonical.ID))
		metrics.RecordIngest(sourceName, eventType, "rejected")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.log.Debug("accepted jira webhook event",
		zap.String("event_type", eventType),
		zap.String("event_id", canonical.ID),
		zap.String("operation", canonical.Operation.String()),
	)
	metrics.RecordIngest(sourceName, eventType, "accepted")
	w.WriteHeader(http.StatusOK)
}

// extractEventType reads the top-level "webhookEvent" string field.
func extractEventType(parsed interface{}) (string, bool) {
	obj, ok := parsed.(map[string]interface{})
	if !ok {
		return "", false
	}
	v, ok := obj["webhookEvent"]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// readLimitedBody reads up to maxBytes from the request body, returning an
// error if the body exceeds the cap.
func readLimitedBody(r *http.Request, maxBytes int64) ([]byte, error) {
	lr := io.LimitReader(r.Body, maxBytes+1)
	buf, err := io.ReadAll(lr)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	if int64(len(buf)) > maxBytes {
		return nil, fmt.Errorf("request body exceeds %d bytes", maxBytes)
	}
	return buf, nil
}
