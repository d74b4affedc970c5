package pipeline

import (
	"context"

	"github.com/relaywire/connector/internal/event"
)

// Processor is one stage of a pipeline. It may drop the event (keep=false,
// err=nil), fail (err!=nil, pipeline abandoned and the failure logged), or
// pass the event through — possibly after mutating its body in place.
type Processor interface {
	Process(ctx context.Context, evt *event.CanonicalEvent) (keep bool, err error)
}
