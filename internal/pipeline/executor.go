package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/relaywire/connector/internal/event"
	"github.com/relaywire/connector/internal/metrics"
)

// Sink persists a canonical event. Satisfied by *sink.MongoSink.
type Sink interface {
	Write(ctx context.Context, evt *event.CanonicalEvent) error
}

// Instance is one configured pipeline: an ordered processor chain and the
// sinks it feeds once every processor has passed the event through.
type Instance struct {
	Processors []Processor
	Sinks      []Sink
}

// Executor owns the receiver end of the ingest Channel and fans every
// event out across all configured pipeline instances, in configuration
// order, isolating failures per pipeline and per sink.
type Executor struct {
	channel   *Channel
	instances []Instance
	log       *zap.Logger
}

// NewExecutor returns an Executor reading from channel and running events
// through instances.
func NewExecutor(channel *Channel, instances []Instance, log *zap.Logger) *Executor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Executor{channel: channel, instances: instances, log: log}
}

// Run consumes events from the channel until ctx is cancelled or the
// channel is closed and drained. It is meant to be run in its own
// goroutine for the lifetime of the process.
func (e *Executor) Run(ctx context.Context) {
	e.log.Info("pipeline executor started", zap.Int("pipelines", len(e.instances)))
	defer e.log.Info("pipeline executor stopped")

	for {
		evt, ok := e.channel.Receive(ctx)
		if !ok {
			return
		}
		e.log.Debug("received event",
			zap.String("event_id", evt.ID),
			zap.String("event_type", evt.EventType),
			zap.String("operation", evt.Operation.String()),
		)

		for idx, inst := range e.instances {
			e.runInstance(ctx, evt, inst, idx)
		}
	}
}

// runInstance processes a private clone of evt through one pipeline
// instance's processors, then writes the surviving event to every sink.
func (e *Executor) runInstance(ctx context.Context, evt *event.CanonicalEvent, inst Instance, idx int) {
	start := time.Now()
	defer func() { metrics.RecordPipelineDuration(idx, time.Since(start)) }()

	current, err := evt.Clone()
	if err != nil {
		e.log.Error("failed to clone event for pipeline", zap.Int("pipeline", idx), zap.Error(err))
		return
	}

	for pidx, proc := range inst.Processors {
		keep, err := proc.Process(ctx, current)
		if err != nil {
			e.log.Error("processor failed, abandoning pipeline for this event",
				zap.Int("pipeline", idx), zap.Int("processor", pidx), zap.Error(err))
			metrics.RecordProcessorError(idx, pidx)
			return
		}
		if !keep {
			e.log.Debug("event dropped by filter",
				zap.Int("pipeline", idx), zap.Int("processor", pidx), zap.String("event_id", evt.ID))
			metrics.RecordProcessorDrop(idx)
			return
		}
	}

	for sidx, s := range inst.Sinks {
		if err := s.Write(ctx, current); err != nil {
			e.log.Error("sink write failed, continuing to remaining sinks",
				zap.Int("pipeline", idx), zap.Int("sink", sidx), zap.Error(err))
			metrics.RecordSinkWrite(idx, sidx, false)
			continue
		}
		metrics.RecordSinkWrite(idx, sidx, true)
	}
}
