package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Rate lookup outcomes.
const (
	LookupIdentity = "identity"
	LookupCacheHit = "cache_hit"
	LookupFetched  = "fetched"
	LookupFallback = "fallback"
	LookupMiss     = "miss"
)

// Conversion outcomes.
const (
	ConversionOK       = "ok"
	ConversionRejected = "rejected"
)

type Metrics struct {
	RateLookups           *prometheus.CounterVec
	ProviderFetchDuration *prometheus.HistogramVec
	CacheEntries          prometheus.Gauge
	Conversions           *prometheus.CounterVec
}

// New registers all collectors on reg. Tests pass a fresh prometheus.NewRegistry().
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		RateLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_lookups_total",
				Help: "Rate resolutions by outcome",
			},
			[]string{"outcome"},
		),
		ProviderFetchDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rate_provider_fetch_duration_seconds",
				Help:    "Latency of rate provider requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"base", "result"},
		),
		CacheEntries: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "rate_cache_entries",
				Help: "Entries currently held by the rate cache, stale ones included",
			},
		),
		Conversions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "currency_conversions_total",
				Help: "Conversion requests by outcome",
			},
			[]string{"outcome"},
		),
	}
}
