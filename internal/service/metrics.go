package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics names as constants for consistency.
const (
	MetricRankedItemsTotal     = "bewatu_ranked_items_total"
	MetricRankingDuration      = "bewatu_ranking_duration_seconds"
	MetricGenerationsTotal     = "bewatu_generations_total"
	MetricSessionCacheTotal    = "bewatu_session_cache_total"
	MetricRankingFallbackTotal = "bewatu_ranking_fallback_total"
)

// Ranking kinds used as label values.
const (
	KindFeed       = "feed"
	KindCircle     = "circle"
	KindCandidates = "candidates"
)

// Cache results used as label values.
const (
	CacheHit  = "hit"
	CacheMiss = "miss"
)

// Generation statuses used as label values.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Metrics contains Prometheus metrics for ranking and generation.
// All operations are thread-safe.
type Metrics struct {
	rankedItems     *prometheus.CounterVec
	rankingDuration *prometheus.HistogramVec
	generations     *prometheus.CounterVec
	sessionCache    *prometheus.CounterVec
	rankingFallback *prometheus.CounterVec
}

// NewMetrics creates a Metrics instance. Collectors are not registered; call Register.
func NewMetrics() *Metrics {
	return &Metrics{
		rankedItems: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricRankedItemsTotal,
				Help: "Total number of items returned by ranking, by kind",
			},
			[]string{"kind"},
		),
		rankingDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricRankingDuration,
				Help:    "Histogram of ranking duration in seconds by kind",
				Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
			},
			[]string{"kind"},
		),
		generations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricGenerationsTotal,
				Help: "Total number of model generations by kind and status",
			},
			[]string{"kind", "status"},
		),
		sessionCache: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricSessionCacheTotal,
				Help: "Total number of session cache lookups by result",
			},
			[]string{"result"},
		),
		rankingFallback: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricRankingFallbackTotal,
				Help: "Total number of rankings that failed and fell back to insertion order",
			},
			[]string{"kind"},
		),
	}
}

// Register registers all metrics with the given registry.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Collectors returns all Prometheus collectors.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.rankedItems,
		m.rankingDuration,
		m.generations,
		m.sessionCache,
		m.rankingFallback,
	}
}

func (m *Metrics) observeRanking(kind string, items int, seconds float64) {
	if m == nil {
		return
	}
	m.rankedItems.WithLabelValues(kind).Add(float64(items))
	m.rankingDuration.WithLabelValues(kind).Observe(seconds)
}

func (m *Metrics) incGeneration(kind, status string) {
	if m == nil {
		return
	}
	m.generations.WithLabelValues(kind, status).Inc()
}

func (m *Metrics) incCache(result string) {
	if m == nil {
		return
	}
	m.sessionCache.WithLabelValues(result).Inc()
}

func (m *Metrics) incFallback(kind string) {
	if m == nil {
		return
	}
	m.rankingFallback.WithLabelValues(kind).Inc()
}
