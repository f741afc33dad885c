package mp2c

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "mp2c"

// Metrics is a prometheus.Collector recording carousel activity.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	puts       prometheus.Counter
	deliveries *prometheus.CounterVec
	failures   *prometheus.CounterVec
	panics     *prometheus.CounterVec
	discards   *prometheus.CounterVec
	pending    *prometheus.GaugeVec
	duration   *prometheus.HistogramVec
}

// NewMetrics returns a new Metrics collector. Register it with a
// prometheus.Registerer and pass it to New through WithMetrics.
// The constant labels distinguish several carousels in one process.
func NewMetrics(constLabels prometheus.Labels) *Metrics {
	return &Metrics{
		puts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Name:        "messages_put_total",
			Help:        "The number of messages submitted with Put.",
			ConstLabels: constLabels,
		}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Name:        "deliveries_total",
			Help:        "The number of messages consumed.",
			ConstLabels: constLabels,
		}, []string{"consumer"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Name:        "delivery_failures_total",
			Help:        "The number of messages that could not be enqueued for a consumer.",
			ConstLabels: constLabels,
		}, []string{"consumer"}),
		panics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Name:        "consumer_panics_total",
			Help:        "The number of recovered consumer panics.",
			ConstLabels: constLabels,
		}, []string{"consumer"}),
		discards: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Name:        "discarded_messages_total",
			Help:        "The number of queued messages dropped when a consumer task terminated.",
			ConstLabels: constLabels,
		}, []string{"consumer"}),
		pending: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   metricsNamespace,
			Name:        "pending_messages",
			Help:        "The number of messages waiting in a dispatch channel.",
			ConstLabels: constLabels,
		}, []string{"consumer"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   metricsNamespace,
			Name:        "consume_duration_seconds",
			Help:        "The time spent in Consume.",
			Buckets:     prometheus.ExponentialBuckets(0.0001, 4, 10),
			ConstLabels: constLabels,
		}, []string{"consumer"}),
	}
}

// Describe is part of the prometheus.Collector interface.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.puts.Describe(ch)
	m.deliveries.Describe(ch)
	m.failures.Describe(ch)
	m.panics.Describe(ch)
	m.discards.Describe(ch)
	m.pending.Describe(ch)
	m.duration.Describe(ch)
}

// Collect is part of the prometheus.Collector interface.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.puts.Collect(ch)
	m.deliveries.Collect(ch)
	m.failures.Collect(ch)
	m.panics.Collect(ch)
	m.discards.Collect(ch)
	m.pending.Collect(ch)
	m.duration.Collect(ch)
}

func (m *Metrics) put() {
	if m == nil {
		return
	}
	m.puts.Inc()
}

func (m *Metrics) enqueued(consumer string) {
	if m == nil {
		return
	}
	m.pending.WithLabelValues(consumer).Inc()
}

func (m *Metrics) dequeued(consumer string) {
	if m == nil {
		return
	}
	m.pending.WithLabelValues(consumer).Dec()
}

func (m *Metrics) consumed(consumer string, d time.Duration) {
	if m == nil {
		return
	}
	m.deliveries.WithLabelValues(consumer).Inc()
	m.duration.WithLabelValues(consumer).Observe(d.Seconds())
}

func (m *Metrics) failed(consumer string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(consumer).Inc()
}

func (m *Metrics) panicked(consumer string) {
	if m == nil {
		return
	}
	m.panics.WithLabelValues(consumer).Inc()
}

func (m *Metrics) discarded(consumer string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.discards.WithLabelValues(consumer).Add(float64(n))
	m.pending.WithLabelValues(consumer).Sub(float64(n))
}

// consumerLabel formats a consumer index as a label value.
func consumerLabel(index int) string {
	return strconv.Itoa(index)
}
