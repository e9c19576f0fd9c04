package prometheus

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authgate "github.com/narinote/authgate"
	"github.com/narinote/authgate/metrics/export/internaldefs"
)

// Source is anything that can produce a metrics snapshot. The engine
// satisfies it; tests substitute fakes.
type Source interface {
	MetricsSnapshot() authgate.MetricsSnapshot
	AuditDropped() uint64
}

// Collector adapts engine metrics to a prometheus.Collector. It reads a
// fresh snapshot on every scrape and emits const metrics, so it carries
// no state of its own and a single instance serves any registry.
type Collector struct {
	source         Source
	counterDescs   map[authgate.MetricID]*prometheus.Desc
	histogramDescs map[authgate.MetricID]*prometheus.Desc
	droppedDesc    *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector builds a Collector over the given source.
func NewCollector(source Source) *Collector {
	c := &Collector{
		source:         source,
		counterDescs:   make(map[authgate.MetricID]*prometheus.Desc, len(internaldefs.CounterDefs)),
		histogramDescs: make(map[authgate.MetricID]*prometheus.Desc, len(internaldefs.HistogramDefs)),
		droppedDesc: prometheus.NewDesc(
			internaldefs.AuditDroppedName,
			"Dropped audit events due to dispatcher backpressure.",
			nil, nil,
		),
	}

	for _, def := range internaldefs.CounterDefs {
		c.counterDescs[def.ID] = prometheus.NewDesc(def.Name, def.Help, nil, nil)
	}
	for _, def := range internaldefs.HistogramDefs {
		c.histogramDescs[def.ID] = prometheus.NewDesc(def.Name, def.Help, nil, nil)
	}

	return c
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, desc := range c.counterDescs {
		ch <- desc
	}
	for _, desc := range c.histogramDescs {
		ch <- desc
	}
	ch <- c.droppedDesc
}

// Collect implements prometheus.Collector. Counters are always emitted,
// zeros included, so series exist from the first scrape. Latency sums
// are not tracked by the engine and are reported as zero.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	if c == nil || c.source == nil {
		return
	}

	snapshot := c.source.MetricsSnapshot()

	for _, def := range internaldefs.CounterDefs {
		ch <- prometheus.MustNewConstMetric(
			c.counterDescs[def.ID],
			prometheus.CounterValue,
			float64(snapshot.Counters[def.ID]),
		)
	}

	for _, def := range internaldefs.HistogramDefs {
		cumulative := internaldefs.CumulativeBuckets(
			internaldefs.NormalizeBuckets(snapshot.Histograms[def.ID]),
		)

		buckets := make(map[float64]uint64, len(internaldefs.HistogramBounds))
		for i, bound := range internaldefs.HistogramBounds {
			buckets[bound] = cumulative[i]
		}
		count := cumulative[len(cumulative)-1]

		ch <- prometheus.MustNewConstHistogram(
			c.histogramDescs[def.ID],
			count,
			0,
			buckets,
		)
	}

	ch <- prometheus.MustNewConstMetric(
		c.droppedDesc,
		prometheus.CounterValue,
		float64(c.source.AuditDropped()),
	)
}

// Handler returns an http.Handler serving the source's metrics from a
// private registry. Nothing is registered globally; callers mount the
// handler wherever they expose /metrics.
func Handler(source Source) http.Handler {
	registry := prometheus.NewRegistry()
	registry.MustRegister(NewCollector(source))
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
