package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultWarning  ResultLabel = "warning"
	ResultFatal    ResultLabel = "fatal"
	ResultCanceled ResultLabel = "canceled"
)

// OutcomeLabel enumerates final render outcomes.
type OutcomeLabel string

const (
	OutcomeSuccess  OutcomeLabel = "success"
	OutcomeFailed   OutcomeLabel = "failed"
	OutcomeSkipped  OutcomeLabel = "skipped"
	OutcomeCanceled OutcomeLabel = "canceled"
)

// Recorder defines observability hooks for render and stage metrics.
// Implementations may forward to Prometheus, OpenTelemetry, etc. All methods
// must be safe for nil receivers when using the NoopRecorder (allowing
// optional injection).
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveRenderDuration(template string, d time.Duration)
	ObservePageCount(template string, pages int)
	IncStageResult(stage string, result ResultLabel)
	IncRenderOutcome(template string, outcome OutcomeLabel)
	SetRenderConcurrency(n int)
	IncRenderRetry(template string)
	IncRenderRetryExhausted(template string)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration)  {}
func (NoopRecorder) ObserveRenderDuration(string, time.Duration) {}
func (NoopRecorder) ObservePageCount(string, int)                {}
func (NoopRecorder) IncStageResult(string, ResultLabel)          {}
func (NoopRecorder) IncRenderOutcome(string, OutcomeLabel)       {}
func (NoopRecorder) SetRenderConcurrency(int)                    {}
func (NoopRecorder) IncRenderRetry(string)                       {}
func (NoopRecorder) IncRenderRetryExhausted(string)              {}
