package cache

// Metrics receives cache lifecycle events. The store calls these under its
// lock; implementations must be cheap and must not call back into the store.
// A NoopMetrics is used when no backend is configured.
type Metrics interface {
	// Hit is called when a lookup (exact or semantic) returns a value.
	Hit()

	// Miss is called when a lookup finds nothing live.
	Miss()

	// Evict is called when an entry is removed to satisfy a tier budget.
	Evict(tier Tier)

	// Compression is called when a payload is stored compressed.
	Compression()

	// Size reports resident entry counts and byte totals after a mutation.
	Size(memEntries, diskEntries int, memBytes, diskBytes int64)
}

// NoopMetrics ignores all events. It keeps the store free of nil checks
// when no observability backend is wired up.
type NoopMetrics struct{}

func (NoopMetrics) Hit()                      {}
func (NoopMetrics) Miss()                     {}
func (NoopMetrics) Evict(Tier)                {}
func (NoopMetrics) Compression()              {}
func (NoopMetrics) Size(_, _ int, _, _ int64) {}

var _ Metrics = NoopMetrics{}
