// Package metrics exports classification counters for Prometheus.
package metrics

import (
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mediumgate/pkg/db"
)

var (
	detectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediumgate_detections_total",
			Help: "Classification answers by serving source and outcome",
		},
		[]string{"source", "outcome"},
	)
	cacheEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediumgate_cache_events_total",
			Help: "Hostname cache hits and misses",
		},
		[]string{"event"},
	)
	probeFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediumgate_probe_failures_total",
			Help: "Head probes that produced no scoreable markup, by kind",
		},
		[]string{"kind"},
	)
	probeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mediumgate_probe_duration_seconds",
			Help:    "Wall time of head probes, successful or not",
			Buckets: prometheus.DefBuckets,
		},
	)

	historyDesc = prometheus.NewDesc(
		"mediumgate_history_detections",
		"Detections recorded in the history store by outcome",
		[]string{"outcome"},
		nil,
	)
)

// HistoryCollector is a custom Prometheus collector that reads stored
// detection totals from the database on each scrape.
type HistoryCollector struct {
	db *db.DB
}

// Describe sends the metric descriptor to the channel.
func (c *HistoryCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- historyDesc
}

// Collect queries the history store and emits per-outcome totals.
func (c *HistoryCollector) Collect(ch chan<- prometheus.Metric) {
	stats, err := c.db.HistoryStats()
	if err != nil {
		slog.Error("failed to collect history metrics", "error", err)
		return
	}
	ch <- prometheus.MustNewConstMetric(
		historyDesc,
		prometheus.CounterValue,
		float64(stats.Medium),
		"medium",
	)
	ch <- prometheus.MustNewConstMetric(
		historyDesc,
		prometheus.CounterValue,
		float64(stats.Total-stats.Medium),
		"other",
	)
}

var (
	registry *prometheus.Registry
	initOnce sync.Once
)

// Init builds the registry and registers every metric. Must be called
// once at startup; database may be nil when no history store is open.
func Init(database *db.DB) *prometheus.Registry {
	initOnce.Do(func() {
		registry = prometheus.NewRegistry()
		registry.MustRegister(detectionsTotal, cacheEventsTotal, probeFailuresTotal, probeDuration)
		if database != nil {
			registry.MustRegister(&HistoryCollector{db: database})
		}
	})
	return registry
}

// RecordDetection counts one classification answer. Safe before Init;
// uncollected increments are simply never scraped.
func RecordDetection(source string, isMedium bool) {
	outcome := "other"
	if isMedium {
		outcome = "medium"
	}
	detectionsTotal.WithLabelValues(source, outcome).Inc()
}

// RecordCacheEvent counts a hostname cache hit or miss.
func RecordCacheEvent(event string) {
	cacheEventsTotal.WithLabelValues(event).Inc()
}

// RecordProbeFailure counts a probe that yielded nothing to score.
func RecordProbeFailure(kind string) {
	probeFailuresTotal.WithLabelValues(kind).Inc()
}

// ObserveProbe records how long a head probe took.
func ObserveProbe(d time.Duration) {
	probeDuration.Observe(d.Seconds())
}
