// Package metrics holds Prometheus instruments used across the service.
// All collectors are registered with the global registry, so importing
// this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SearchTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "offer_search_total",
			Help: "Cumulative number of offer search requests served.",
		})

	SearchBestRanked = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "offer_search_best_ranked_total",
			Help: "Searches that went through the best-match re-rank pass.",
		})

	SearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "offer_search_duration_seconds",
			Help:    "Wall time of one search invocation, store round-trips included.",
			Buckets: prometheus.DefBuckets,
		})

	CacheHitTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "read_cache_hit_total",
			Help: "TTL cache hits on read-heavy lookups.",
		})

	CacheMissTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "read_cache_miss_total",
			Help: "TTL cache misses on read-heavy lookups.",
		})

	CacheEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "read_cache_entries",
			Help: "Entries currently held by the TTL cache.",
		})

	LeadTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lead_created_total",
			Help: "Cumulative number of leads recorded.",
		})

	LeadHoneypotTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lead_honeypot_total",
			Help: "Lead submissions discarded by the honeypot field.",
		})

	RateLimitedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rate_limited_total",
			Help: "Requests rejected with 429 by the per-IP limiter.",
		})
)

func init() {
	prometheus.MustRegister(
		SearchTotal,
		SearchBestRanked,
		SearchDuration,
		CacheHitTotal,
		CacheMissTotal,
		CacheEntries,
		LeadTotal,
		LeadHoneypotTotal,
		RateLimitedTotal,
	)
}
