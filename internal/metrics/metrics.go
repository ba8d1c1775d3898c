// Package metrics holds the Prometheus instruments shared across the desk.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "desk"

// Metrics groups every instrument. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
	PriceLookups     *prometheus.CounterVec
	BreakerState     *prometheus.GaugeVec
	PoolsFetched     *prometheus.GaugeVec
	PoolFetchDur     *prometheus.HistogramVec
	SnapshotsWritten prometheus.Counter
	RefreshErrors    prometheus.Counter
	DepositOutcomes  *prometheus.CounterVec
	CacheSize        *prometheus.GaugeVec
}

// New creates and registers all instruments with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_client_requests_total",
			Help:      "Outbound HTTP requests by provider and result.",
		}, []string{"provider", "success"}),

		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_client_request_duration_seconds",
			Help:      "Outbound HTTP request latency by provider.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider"}),

		PriceLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "price_lookups_total",
			Help:      "Price lookups by source and result.",
		}, []string{"source", "result"}),

		BreakerState: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "price_breaker_state",
			Help:      "Circuit breaker state per price source (0 closed, 1 half-open, 2 open).",
		}, []string{"source"}),

		PoolsFetched: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pools_fetched",
			Help:      "Number of pools returned by the last fetch per DEX.",
		}, []string{"dex"}),

		PoolFetchDur: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pool_fetch_duration_seconds",
			Help:      "Time to build the merged pool list per DEX.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"dex"}),

		SnapshotsWritten: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pool_snapshots_written_total",
			Help:      "Pool snapshots persisted by the refresher.",
		}),

		RefreshErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_errors_total",
			Help:      "Refresh cycles that ended with an error.",
		}),

		DepositOutcomes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deposit_outcomes_total",
			Help:      "Deposit submissions by outcome.",
		}, []string{"outcome"}),

		CacheSize: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cache_entries",
			Help:      "Entries held per in-memory cache.",
		}, []string{"cache"}),
	}
}

func (m *Metrics) ObserveHTTP(provider string, success bool, seconds float64) {
	if m == nil {
		return
	}
	label := "false"
	if success {
		label = "true"
	}
	m.HTTPRequests.WithLabelValues(provider, label).Inc()
	m.HTTPDuration.WithLabelValues(provider).Observe(seconds)
}

func (m *Metrics) ObservePriceLookup(source, result string) {
	if m == nil {
		return
	}
	m.PriceLookups.WithLabelValues(source, result).Inc()
}

func (m *Metrics) SetBreakerState(source string, state float64) {
	if m == nil {
		return
	}
	m.BreakerState.WithLabelValues(source).Set(state)
}

func (m *Metrics) ObservePoolFetch(dex string, pools int, seconds float64) {
	if m == nil {
		return
	}
	m.PoolsFetched.WithLabelValues(dex).Set(float64(pools))
	m.PoolFetchDur.WithLabelValues(dex).Observe(seconds)
}

func (m *Metrics) AddSnapshots(n int) {
	if m == nil {
		return
	}
	m.SnapshotsWritten.Add(float64(n))
}

func (m *Metrics) IncRefreshError() {
	if m == nil {
		return
	}
	m.RefreshErrors.Inc()
}

func (m *Metrics) ObserveDeposit(outcome string) {
	if m == nil {
		return
	}
	m.DepositOutcomes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SetCacheSize(cache string, n int) {
	if m == nil {
		return
	}
	m.CacheSize.WithLabelValues(cache).Set(float64(n))
}
