package pipeline

import (
	"context"
	"fmt"

	"github.com/relaywire/connector/internal/connectorerr"
	"github.com/relaywire/connector/internal/event"
)

// DefaultCapacity is the ingest channel's buffer size: enough to absorb a
// burst of concurrent webhook deliveries without the HTTP layer blocking
// on every request.
const DefaultCapacity = 100

// Channel is the bounded handoff between source adapters (producers) and
// the Executor (the single consumer). A send blocks once the buffer is
// full, back-pressuring the HTTP handler that produced the event.
type Channel struct {
	ch chan *event.CanonicalEvent
}

// NewChannel returns a Channel with the given buffer capacity.
func NewChannel(capacity int) *Channel {
	return &Channel{ch: make(chan *event.CanonicalEvent, capacity)}
}

// Send submits evt to the channel, blocking while the buffer is full.
// It returns connectorerr.ErrPipelineSend if ctx is cancelled before the
// send completes, modeling a receiver that has gone away.
func (c *Channel) Send(ctx context.Context, evt *event.CanonicalEvent) error {
	select {
	case c.ch <- evt:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", connectorerr.ErrPipelineSend, ctx.Err())
	}
}

// Receive blocks until an event is available or ctx is cancelled.
func (c *Channel) Receive(ctx context.Context) (*event.CanonicalEvent, bool) {
	select {
	case evt, ok := <-c.ch:
		return evt, ok
	case <-ctx.Done():
		return nil, false
	}
}

// Close ends the stream; Receive observes ok=false once the buffer drains.
// Send must not be called after Close: sending on the closed underlying
// channel panics.
func (c *Channel) Close() {
	close(c.ch)
}
