package metrics

import "github.com/prometheus/client_golang/prometheus"

type Counter interface {
	Inc(labels ...string)
}

type Gauge interface {
	Inc(labels ...string)
	Dec(labels ...string)
}

type Counters struct {
	LogsAdded Counter

	StreamEvents Counter

	PushDeliveries Counter

	ActiveStreams Gauge
}

type PrometheusCounter struct {
	counter *prometheus.CounterVec
}

func NewPrometheusCounter(name, help string, labels []string) *PrometheusCounter {
	return &PrometheusCounter{
		counter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: name,
			Help: help,
		}, labels),
	}
}

func (p *PrometheusCounter) Inc(labels ...string) {
	p.counter.WithLabelValues(labels...).Inc()
}

type PrometheusGauge struct {
	gauge *prometheus.GaugeVec
}

func NewPrometheusGauge(name, help string, labels []string) *PrometheusGauge {
	return &PrometheusGauge{
		gauge: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: name,
			Help: help,
		}, labels),
	}
}

func (p *PrometheusGauge) Inc(labels ...string) {
	p.gauge.WithLabelValues(labels...).Inc()
}

func (p *PrometheusGauge) Dec(labels ...string) {
	p.gauge.WithLabelValues(labels...).Dec()
}

func newCounters(reg prometheus.Registerer) *Counters {
	logsAdded := NewPrometheusCounter(
		"logstream_logs_added_total",
		"Number of entries appended to the log store",
		[]string{"level", "source"},
	)
	streamEvents := NewPrometheusCounter(
		"logstream_stream_events_total",
		"Number of events pushed to stream connections",
		[]string{"type", "status"},
	)
	pushDeliveries := NewPrometheusCounter(
		"logstream_push_deliveries_total",
		"Number of web push delivery attempts",
		[]string{"status"},
	)
	activeStreams := NewPrometheusGauge(
		"logstream_active_streams",
		"Number of open stream connections",
		nil,
	)

	reg.MustRegister(logsAdded.counter, streamEvents.counter, pushDeliveries.counter, activeStreams.gauge)

	return &Counters{
		LogsAdded:      logsAdded,
		StreamEvents:   streamEvents,
		PushDeliveries: pushDeliveries,
		ActiveStreams:  activeStreams,
	}
}

func New() *Counters {
	return newCounters(prometheus.DefaultRegisterer)
}

// NewTestCounters registers on a private registry so tests can build many instances.
func NewTestCounters() *Counters {
	return newCounters(prometheus.NewRegistry())
}
