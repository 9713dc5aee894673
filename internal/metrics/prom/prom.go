// Package prom exports cache metrics to Prometheus.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/parley-cli/parley/internal/cache"
)

// Adapter implements cache.Metrics on top of Prometheus collectors. All
// Prometheus metric types are goroutine-safe, so the adapter is too.
type Adapter struct {
	hits         prometheus.Counter
	misses       prometheus.Counter
	evictions    *prometheus.CounterVec
	compressions prometheus.Counter
	entries      *prometheus.GaugeVec
	sizeBytes    *prometheus.GaugeVec
}

// New constructs an Adapter and registers its collectors. A nil reg uses
// prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	a := &Adapter{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "parley",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Cache lookups that returned a value.",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "parley",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Cache lookups that found nothing live.",
		}),
		evictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "parley",
			Subsystem: "cache",
			Name:      "evictions_total",
			Help:      "Entries removed to satisfy a tier budget.",
		}, []string{"tier"}),
		compressions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "parley",
			Subsystem: "cache",
			Name:      "compressions_total",
			Help:      "Payloads stored compressed.",
		}),
		entries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "parley",
			Subsystem: "cache",
			Name:      "entries",
			Help:      "Resident entries per tier.",
		}, []string{"tier"}),
		sizeBytes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "parley",
			Subsystem: "cache",
			Name:      "size_bytes",
			Help:      "Resident payload bytes per tier.",
		}, []string{"tier"}),
	}
	reg.MustRegister(a.hits, a.misses, a.evictions, a.compressions, a.entries, a.sizeBytes)
	return a
}

// Hit increments the hit counter.
func (a *Adapter) Hit() { a.hits.Inc() }

// Miss increments the miss counter.
func (a *Adapter) Miss() { a.misses.Inc() }

// Evict increments the eviction counter for the given tier.
func (a *Adapter) Evict(tier cache.Tier) {
	a.evictions.WithLabelValues(string(tier)).Inc()
}

// Compression increments the compression counter.
func (a *Adapter) Compression() { a.compressions.Inc() }

// Size updates the per-tier occupancy gauges.
func (a *Adapter) Size(memEntries, diskEntries int, memBytes, diskBytes int64) {
	a.entries.WithLabelValues(string(cache.TierMemory)).Set(float64(memEntries))
	a.entries.WithLabelValues(string(cache.TierDisk)).Set(float64(diskEntries))
	a.sizeBytes.WithLabelValues(string(cache.TierMemory)).Set(float64(memBytes))
	a.sizeBytes.WithLabelValues(string(cache.TierDisk)).Set(float64(diskBytes))
}

var _ cache.Metrics = (*Adapter)(nil)
