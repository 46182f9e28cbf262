package health

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is the bot's private Prometheus registry. It implements
// conversation.Metrics.
type Metrics struct {
	registry   *prometheus.Registry
	dispatches *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewMetrics registers the dispatch collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		dispatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "themebot",
				Name:      "dispatch_total",
				Help:      "Conversation events handled, by action and outcome.",
			},
			[]string{"action", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "themebot",
				Name:      "dispatch_duration_seconds",
				Help:      "Time spent applying one event to a session.",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"action"},
		),
	}
	m.registry.MustRegister(m.dispatches, m.duration)
	return m
}

// ObserveDispatch records one handled event.
func (m *Metrics) ObserveDispatch(action, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.dispatches.WithLabelValues(action, outcome).Inc()
	m.duration.WithLabelValues(action).Observe(took.Seconds())
}

// gauge registers a value sampled at scrape time.
func (m *Metrics) gauge(name, help string, fn func() float64) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "themebot",
		Name:      name,
		Help:      help,
	}, fn))
}

// SenderCounters reports outbound message totals.
type SenderCounters interface {
	SentCount() uint64
	ErrorCount() uint64
}

// WatchSender exposes the outbound dispatcher's totals. Call it once per Metrics.
func (m *Metrics) WatchSender(s SenderCounters) {
	if m == nil || s == nil {
		return
	}
	m.registry.MustRegister(
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "themebot",
			Name:      "messages_sent_total",
			Help:      "Outbound Telegram requests that succeeded.",
		}, func() float64 { return float64(s.SentCount()) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "themebot",
			Name:      "messages_failed_total",
			Help:      "Outbound Telegram requests that failed after retries.",
		}, func() float64 { return float64(s.ErrorCount()) }),
	)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
