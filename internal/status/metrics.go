package status

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes Prometheus counters for the digest pipeline.
type Metrics struct {
	runs         *prometheus.CounterVec
	messages     prometheus.Counter
	sendFailures prometheus.Counter
	pushes       *prometheus.CounterVec
	duration     prometheus.Histogram
}

// NewMetrics registers the pipeline collectors on the given registerer.
// A nil registerer uses the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dailynews_runs_total",
			Help: "Digest runs by outcome.",
		}, []string{"outcome"}),
		messages: factory.NewCounter(prometheus.CounterOpts{
			Name: "dailynews_messages_sent_total",
			Help: "Telegram messages delivered.",
		}),
		sendFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "dailynews_send_failures_total",
			Help: "Digest units that failed to send.",
		}),
		pushes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dailynews_pushes_total",
			Help: "Archive pushes by outcome.",
		}, []string{"outcome"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "dailynews_run_duration_seconds",
			Help:    "Wall-clock duration of digest runs.",
			Buckets: prometheus.ExponentialBuckets(10, 2, 7), // 10s .. ~10m
		}),
	}
}

// RecordRun records one finished run with its delivery counts.
func (m *Metrics) RecordRun(ok bool, sent, failed int, seconds float64) {
	m.runs.WithLabelValues(outcomeLabel(ok)).Inc()
	m.messages.Add(float64(sent))
	m.sendFailures.Add(float64(failed))
	m.duration.Observe(seconds)
}

// RecordPush records one attempted archive push.
func (m *Metrics) RecordPush(ok bool) {
	m.pushes.WithLabelValues(outcomeLabel(ok)).Inc()
}

func outcomeLabel(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}
