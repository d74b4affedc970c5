// Package metrics defines the connector's Prometheus counters and
// histograms: ingest outcomes, processor drops/errors, and sink write
// results. Every metric is a package-level promauto registration against
// the default registry, mirroring the pack's metrics packages (one file
// of Record* functions wrapping package-level vars, no metrics struct to
// thread through every call site).
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// IngestTotal counts webhook deliveries whose event type the source
	// handler has read, labeled by source, event type, and outcome
	// (accepted, unknown, rejected). Deliveries refused earlier (body,
	// signature, JSON, or missing event type) are not counted.
	IngestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connector_ingest_total",
		Help: "Total webhook deliveries received, by source, event type, and outcome.",
	}, []string{"source", "event_type", "outcome"})

	// ProcessorDropsTotal counts events a filter processor dropped,
	// labeled by pipeline index.
	ProcessorDropsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connector_processor_drops_total",
		Help: "Total events dropped by a filter processor, by pipeline index.",
	}, []string{"pipeline"})

	// ProcessorErrorsTotal counts processor evaluation/render failures,
	// labeled by pipeline index and processor index.
	ProcessorErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connector_processor_errors_total",
		Help: "Total processor errors, by pipeline and processor index.",
	}, []string{"pipeline", "processor"})

	// SinkWritesTotal counts sink write attempts, labeled by pipeline
	// index, sink index, and result (ok, error).
	SinkWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connector_sink_writes_total",
		Help: "Total sink write attempts, by pipeline, sink index, and result.",
	}, []string{"pipeline", "sink", "result"})

	// PipelineDuration observes the wall-clock time spent running one
	// pipeline instance (processors plus sinks) for a single event.
	PipelineDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "connector_pipeline_duration_seconds",
		Help:    "Time spent running one pipeline instance for a single event.",
		Buckets: prometheus.DefBuckets,
	}, []string{"pipeline"})
)

// RecordIngest records a webhook delivery outcome for a source.
func RecordIngest(source, eventType, outcome string) {
	IngestTotal.WithLabelValues(source, eventType, outcome).Inc()
}

// RecordProcessorDrop records a filter-dropped event for pipeline idx.
func RecordProcessorDrop(idx int) {
	ProcessorDropsTotal.WithLabelValues(pipelineLabel(idx)).Inc()
}

// RecordProcessorError records a processor failure for pipeline/processor
// indices.
func RecordProcessorError(pipelineIdx, processorIdx int) {
	ProcessorErrorsTotal.WithLabelValues(pipelineLabel(pipelineIdx), pipelineLabel(processorIdx)).Inc()
}

// RecordSinkWrite records a sink write attempt's result for pipeline/sink
// indices.
func RecordSinkWrite(pipelineIdx, sinkIdx int, ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	SinkWritesTotal.WithLabelValues(pipelineLabel(pipelineIdx), pipelineLabel(sinkIdx), result).Inc()
}

// RecordPipelineDuration observes how long pipeline idx took to run for
// one event.
func RecordPipelineDuration(idx int, d time.Duration) {
	PipelineDuration.WithLabelValues(pipelineLabel(idx)).Observe(d.Seconds())
}

func pipelineLabel(idx int) string {
	return strconv.Itoa(idx)
}
