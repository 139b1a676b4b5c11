package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	stageDuration    *prom.HistogramVec
	renderDuration   *prom.HistogramVec
	pageCount        *prom.HistogramVec
	stageResults     *prom.CounterVec
	renderOutcome    *prom.CounterVec
	concurrency      prom.Gauge
	retries          *prom.CounterVec
	retriesExhausted *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics on the
// given registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "lessonpress",
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual render stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		renderDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "lessonpress",
			Name:      "render_duration_seconds",
			Help:      "Total render duration per template",
			Buckets:   prom.DefBuckets,
		}, []string{"template"}),
		pageCount: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "lessonpress",
			Name:      "document_pages",
			Help:      "Finished document page counts per template",
			Buckets:   []float64{1, 2, 3, 4, 5, 6, 8, 10, 14},
		}, []string{"template"}),
		stageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "lessonpress",
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"}),
		renderOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "lessonpress",
			Name:      "render_outcomes_total",
			Help:      "Render outcomes by final status",
		}, []string{"template", "outcome"}),
		concurrency: prom.NewGauge(prom.GaugeOpts{
			Namespace: "lessonpress",
			Name:      "render_concurrency",
			Help:      "Configured render concurrency for the current run",
		}),
		retries: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "lessonpress",
			Name:      "render_retries_total",
			Help:      "Total render retries (transient failures)",
		}, []string{"template"}),
		retriesExhausted: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "lessonpress",
			Name:      "render_retry_exhausted_total",
			Help:      "Count of renders where retries were exhausted",
		}, []string{"template"}),
	}
	reg.MustRegister(pr.stageDuration, pr.renderDuration, pr.pageCount, pr.stageResults,
		pr.renderOutcome, pr.concurrency, pr.retries, pr.retriesExhausted)
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveRenderDuration(template string, d time.Duration) {
	if p == nil || p.renderDuration == nil {
		return
	}
	p.renderDuration.WithLabelValues(template).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObservePageCount(template string, pages int) {
	if p == nil || p.pageCount == nil {
		return
	}
	p.pageCount.WithLabelValues(template).Observe(float64(pages))
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil || p.stageResults == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) IncRenderOutcome(template string, outcome OutcomeLabel) {
	if p == nil || p.renderOutcome == nil {
		return
	}
	p.renderOutcome.WithLabelValues(template, string(outcome)).Inc()
}

func (p *PrometheusRecorder) SetRenderConcurrency(n int) {
	if p == nil || p.concurrency == nil {
		return
	}
	p.concurrency.Set(float64(n))
}

func (p *PrometheusRecorder) IncRenderRetry(template string) {
	if p == nil || p.retries == nil {
		return
	}
	p.retries.WithLabelValues(template).Inc()
}

func (p *PrometheusRecorder) IncRenderRetryExhausted(template string) {
	if p == nil || p.retriesExhausted == nil {
		return
	}
	p.retriesExhausted.WithLabelValues(template).Inc()
}
