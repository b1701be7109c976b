package analysis

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors updated by a Service.
//
//   - outcomed_analyses_total{kind}
//   - outcomed_analysis_duration_seconds{kind}
//   - outcomed_verdicts_total{result}
//   - outcomed_signals_total{signal_type}
//   - outcomed_intents_total{kind,intent}
//   - outcomed_redactions_total
//   - outcomed_event_publish_failures_total{kind}
type Metrics struct {
	Analyses        *prometheus.CounterVec
	Duration        *prometheus.HistogramVec
	Verdicts        *prometheus.CounterVec
	Signals         *prometheus.CounterVec
	Intents         *prometheus.CounterVec
	Redactions      prometheus.Counter
	PublishFailures *prometheus.CounterVec
}

// Analysis kinds used as label values.
const (
	kindOutput       = "output"
	kindIntent       = "intent"
	kindConversation = "conversation"
	kindSession      = "session"
)

// NewMetrics registers collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Analyses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "outcomed_analyses_total",
			Help: "Analyses performed, by kind (output, intent, conversation, session).",
		}, []string{"kind"}),
		Duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "outcomed_analysis_duration_seconds",
			Help:    "Analysis latency in seconds, by kind.",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"kind"}),
		Verdicts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "outcomed_verdicts_total",
			Help: "Execution verdicts, by result (success, failure).",
		}, []string{"result"}),
		Signals: f.NewCounterVec(prometheus.CounterOpts{
			Name: "outcomed_signals_total",
			Help: "Signals extracted from command output, by signal type.",
		}, []string{"signal_type"}),
		Intents: f.NewCounterVec(prometheus.CounterOpts{
			Name: "outcomed_intents_total",
			Help: "Intent classifications, by kind (intent, conversation) and intent.",
		}, []string{"kind", "intent"}),
		Redactions: f.NewCounter(prometheus.CounterOpts{
			Name: "outcomed_redactions_total",
			Help: "Secrets redacted from signal excerpts.",
		}),
		PublishFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "outcomed_event_publish_failures_total",
			Help: "Events that could not be published, by event kind.",
		}, []string{"kind"}),
	}
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns collectors registered once with the default
// Prometheus registerer, which /metrics serves.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		defaultMetrics = NewMetrics(prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}

func verdictLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
