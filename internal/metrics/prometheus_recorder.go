package metrics

import (
	"strconv"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once        sync.Once
	duration    *prom.HistogramVec
	outcomes    *prom.CounterVec
	exitCodes   *prom.CounterVec
	lastSuccess *prom.GaugeVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.duration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "sphinxbuild",
			Name:      "invocation_duration_seconds",
			Help:      "Wall time of sphinx-build invocations",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
		}, []string{"builder"})
		pr.outcomes = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sphinxbuild",
			Name:      "invocation_outcomes_total",
			Help:      "Invocation outcomes by builder",
		}, []string{"builder", "outcome"})
		pr.exitCodes = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sphinxbuild",
			Name:      "invocation_exit_codes_total",
			Help:      "External tool exit codes by builder",
		}, []string{"builder", "code"})
		pr.lastSuccess = prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: "sphinxbuild",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful invocation",
		}, []string{"builder"})
		reg.MustRegister(pr.duration, pr.outcomes, pr.exitCodes, pr.lastSuccess)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveInvocationDuration(builder string, d time.Duration) {
	if p == nil || p.duration == nil {
		return
	}
	p.duration.WithLabelValues(builder).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncInvocationOutcome(builder string, outcome OutcomeLabel) {
	if p == nil || p.outcomes == nil {
		return
	}
	p.outcomes.WithLabelValues(builder, string(outcome)).Inc()
}

func (p *PrometheusRecorder) ObserveExitCode(builder string, code int) {
	if p == nil || p.exitCodes == nil {
		return
	}
	p.exitCodes.WithLabelValues(builder, strconv.Itoa(code)).Inc()
}

func (p *PrometheusRecorder) SetLastSuccess(builder string, t time.Time) {
	if p == nil || p.lastSuccess == nil {
		return
	}
	p.lastSuccess.WithLabelValues(builder).Set(float64(t.Unix()))
}
