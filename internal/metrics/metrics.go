// Package metrics exposes a handful of prometheus counters/gauges for the
// engine's indexing and watch pipeline. Every method is nil-safe: an
// embedder that never calls Register gets a Metrics value that costs
// nothing and records nothing.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the engine's counters and gauges. The zero value is usable
// and records nothing; call Register to wire it to a real registerer.
type Metrics struct {
	filesIndexed      prometheus.Counter
	scanDuration      prometheus.Histogram
	eventsProcessed   *prometheus.CounterVec
	eventsDropped     prometheus.Counter
	activeSubscribers prometheus.Gauge
}

// Register creates and registers the engine's metrics against reg and
// returns a Metrics ready to use. Passing a nil reg is equivalent to never
// calling Register: all methods become no-ops.
func Register(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	m := &Metrics{
		filesIndexed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fileindexer_files_indexed_total",
			Help: "Number of files successfully (re-)indexed.",
		}),
		scanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "fileindexer_scan_duration_seconds",
			Help: "Duration of the initial directory scan.",
		}),
		eventsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fileindexer_watch_events_processed_total",
			Help: "Filesystem change events processed by kind.",
		}, []string{"kind"}),
		eventsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fileindexer_bus_events_dropped_total",
			Help: "Events dropped because a subscriber's buffer was full.",
		}),
		activeSubscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fileindexer_active_subscriptions",
			Help: "Number of currently attached event-bus subscriptions.",
		}),
	}
	reg.MustRegister(m.filesIndexed, m.scanDuration, m.eventsProcessed, m.eventsDropped, m.activeSubscribers)
	return m
}

func (m *Metrics) IncFilesIndexed() {
	if m == nil || m.filesIndexed == nil {
		return
	}
	m.filesIndexed.Inc()
}

func (m *Metrics) ObserveScanSeconds(seconds float64) {
	if m == nil || m.scanDuration == nil {
		return
	}
	m.scanDuration.Observe(seconds)
}

func (m *Metrics) IncEventProcessed(kind string) {
	if m == nil || m.eventsProcessed == nil {
		return
	}
	m.eventsProcessed.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncEventsDropped() {
	if m == nil || m.eventsDropped == nil {
		return
	}
	m.eventsDropped.Inc()
}

func (m *Metrics) SetActiveSubscribers(n int) {
	if m == nil || m.activeSubscribers == nil {
		return
	}
	m.activeSubscribers.Set(float64(n))
}
