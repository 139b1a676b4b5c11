package metrics

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveStageDuration("extract", 150*time.Millisecond)
	pr.ObserveRenderDuration("lesson-guide", 500*time.Millisecond)
	pr.ObservePageCount("lesson-guide", 2)
	pr.IncStageResult("extract", ResultSuccess)
	pr.IncRenderOutcome("lesson-guide", OutcomeSuccess)
	pr.SetRenderConcurrency(4)
	pr.IncRenderRetry("rubric")
	pr.IncRenderRetryExhausted("rubric")
	// Basic scrape to ensure metrics encode without panic
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(mfs) == 0 {
		t.Fatalf("expected metrics, got none")
	}
}

func TestNoopRecorder_SatisfiesInterface(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveStageDuration("extract", time.Second)
	r.ObserveRenderDuration("lesson-guide", time.Second)
	r.ObservePageCount("lesson-guide", 1)
	r.IncStageResult("extract", ResultWarning)
	r.IncRenderOutcome("lesson-guide", OutcomeFailed)
	r.SetRenderConcurrency(1)
	r.IncRenderRetry("exit-ticket")
	r.IncRenderRetryExhausted("exit-ticket")
}

func TestPrometheusRecorder_NilSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.ObserveStageDuration("extract", time.Second)
	pr.IncRenderOutcome("lesson-guide", OutcomeSuccess)
	pr.SetRenderConcurrency(2)
}
