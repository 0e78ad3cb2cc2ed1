package layer

import "github.com/prometheus/client_golang/prometheus"

// StatsCollector exposes a Manager's counters as prometheus metrics.
//
// Register it with a prometheus registry; scrapes are safe while the
// manager reconciles on another goroutine.
//
//	prometheus.MustRegister(layer.NewStatsCollector(m.Stats()))
type StatsCollector struct {
	stats *Stats

	reconciles      *prometheus.Desc
	matched         *prometheus.Desc
	initialized     *prometheus.Desc
	finalized       *prometheus.Desc
	layerErrors     *prometheus.Desc
	asyncStarted    *prometheus.Desc
	asyncCompleted  *prometheus.Desc
	asyncSuperseded *prometheus.Desc
	asyncFailed     *prometheus.Desc
	liveLayers      *prometheus.Desc
}

// NewStatsCollector creates a collector over the given counters.
func NewStatsCollector(stats *Stats) *StatsCollector {
	return &StatsCollector{
		stats: stats,

		reconciles: prometheus.NewDesc(
			"deck_reconcile_total",
			"Total number of completed reconciliation passes",
			nil, nil,
		),
		matched: prometheus.NewDesc(
			"deck_layers_matched_total",
			"Total number of layers matched to a predecessor",
			nil, nil,
		),
		initialized: prometheus.NewDesc(
			"deck_layers_initialized_total",
			"Total number of freshly initialized layers",
			nil, nil,
		),
		finalized: prometheus.NewDesc(
			"deck_layers_finalized_total",
			"Total number of finalized layers",
			nil, nil,
		),
		layerErrors: prometheus.NewDesc(
			"deck_layer_errors_total",
			"Total number of caught layer lifecycle errors",
			nil, nil,
		),
		asyncStarted: prometheus.NewDesc(
			"deck_async_loads_started_total",
			"Total number of async property loads started",
			nil, nil,
		),
		asyncCompleted: prometheus.NewDesc(
			"deck_async_loads_completed_total",
			"Total number of async property loads that installed a result",
			nil, nil,
		),
		asyncSuperseded: prometheus.NewDesc(
			"deck_async_loads_superseded_total",
			"Total number of async property loads discarded as stale",
			nil, nil,
		),
		asyncFailed: prometheus.NewDesc(
			"deck_async_loads_failed_total",
			"Total number of async property loads that failed",
			nil, nil,
		),
		liveLayers: prometheus.NewDesc(
			"deck_live_layers",
			"Number of live layers after the most recent pass",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *StatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.reconciles
	ch <- c.matched
	ch <- c.initialized
	ch <- c.finalized
	ch <- c.layerErrors
	ch <- c.asyncStarted
	ch <- c.asyncCompleted
	ch <- c.asyncSuperseded
	ch <- c.asyncFailed
	ch <- c.liveLayers
}

// Collect implements prometheus.Collector.
func (c *StatsCollector) Collect(ch chan<- prometheus.Metric) {
	counter := func(d *prometheus.Desc, v uint64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v))
	}
	counter(c.reconciles, c.stats.Reconciles.Load())
	counter(c.matched, c.stats.Matched.Load())
	counter(c.initialized, c.stats.Initialized.Load())
	counter(c.finalized, c.stats.Finalized.Load())
	counter(c.layerErrors, c.stats.LayerErrors.Load())
	counter(c.asyncStarted, c.stats.AsyncStarted.Load())
	counter(c.asyncCompleted, c.stats.AsyncCompleted.Load())
	counter(c.asyncSuperseded, c.stats.AsyncSuperseded.Load())
	counter(c.asyncFailed, c.stats.AsyncFailed.Load())

	ch <- prometheus.MustNewConstMetric(c.liveLayers, prometheus.GaugeValue,
		float64(c.stats.LiveLayers.Load()))
}

// Ensure StatsCollector implements prometheus.Collector.
var _ prometheus.Collector = (*StatsCollector)(nil)
