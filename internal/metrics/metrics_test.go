package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordIngest_IncrementsCounter(t *testing.T) {
	before := testutil.ToFloat64(IngestTotal.WithLabelValues("jira", "jira:issue_created", "accepted"))

	RecordIngest("jira", "jira:issue_created", "accepted")

	after := testutil.ToFloat64(IngestTotal.WithLabelValues("jira", "jira:issue_created", "accepted"))
	if after != before+1 {
		t.Errorf("IngestTotal = %v, want %v", after, before+1)
	}
}

func TestRecordProcessorDrop_IncrementsCounter(t *testing.T) {
	before := testutil.ToFloat64(ProcessorDropsTotal.WithLabelValues("0"))

	RecordProcessorDrop(0)

	after := testutil.ToFloat64(ProcessorDropsTotal.WithLabelValues("0"))
	if after != before+1 {
		t.Errorf("ProcessorDropsTotal = %v, want %v", after, before+1)
	}
}

func TestRecordSinkWrite_LabelsResult(t *testing.T) {
	beforeOK := testutil.ToFloat64(SinkWritesTotal.WithLabelValues("1", "0", "ok"))
	beforeErr := testutil.ToFloat64(SinkWritesTotal.WithLabelValues("1", "0", "error"))

	RecordSinkWrite(1, 0, true)
	RecordSinkWrite(1, 0, false)

	if got := testutil.ToFloat64(SinkWritesTotal.WithLabelValues("1", "0", "ok")); got != beforeOK+1 {
		t.Errorf("ok result = %v, want %v", got, beforeOK+1)
	}
	if got := testutil.ToFloat64(SinkWritesTotal.WithLabelValues("1", "0", "error")); got != beforeErr+1 {
		t.Errorf("error result = %v, want %v", got, beforeErr+1)
	}
}

func TestRecordPipelineDuration_ObservesHistogram(t *testing.T) {
	RecordPipelineDuration(2, 50*time.Millisecond)

	if count := testutil.CollectAndCount(PipelineDuration); count == 0 {
		t.Error("expected at least one histogram series registered")
	}
}
