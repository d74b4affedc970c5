package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/relaywire/connector/internal/event"
)

func TestChannel_SendReceive(t *testing.T) {
	ch := NewChannel(1)
	evt := event.New(map[string]interface{}{"a": 1}, "jira:issue_created", nil, event.OpWrite)

	if err := ch.Send(context.Background(), evt); err != nil {
		t.Fatalf("Send: %v", err)
	}

	got, ok := ch.Receive(context.Background())
	if !ok {
		t.Fatal("Receive: ok = false")
	}
	if got.ID != evt.ID {
		t.Errorf("got ID %q, want %q", got.ID, evt.ID)
	}
}

func TestChannel_SendAbortsOnContextCancel(t *testing.T) {
	ch := NewChannel(0)
	evt := event.New(map[string]interface{}{}, "jira:issue_created", nil, event.OpWrite)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := ch.Send(ctx, evt); err == nil {
		t.Fatal("expected an error once the context is cancelled and no receiver is draining the channel")
	}
}

func TestChannel_ReceiveReturnsFalseOnClose(t *testing.T) {
	ch := NewChannel(1)
	ch.Close()

	_, ok := ch.Receive(context.Background())
	if ok {
		t.Error("expected ok=false after Close")
	}
}
