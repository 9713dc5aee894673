// Package cache provides a two-tier, compressed response cache for LLM
// completions with TTL expiry and approximate (token-overlap) matching for
// near-duplicate queries.
//
// Entries are keyed by a SHA-256 hash of the caller's key string (typically
// a serialized chat request). Small entries live in the memory tier, which
// evicts least-recently-used first; entries too large for the memory budget
// go to the disk tier, which evicts oldest-created first. A disk-tier hit
// promotes the entry back into the memory tier. Payloads above a size
// threshold are stored gzip-compressed.
//
// SemanticGet serves near-duplicate queries by scanning the memory tier and
// scoring each entry's original key against the query with a Jaccard index
// over lower-cased word sets. The disk tier is not scanned; it is the cold
// overflow tier and the scan is kept cheap on purpose.
//
// A Store is safe for concurrent use. Counters (hits, misses, evictions,
// compressions) are per-instance and reset only by Clear. Observability
// backends plug in through the Metrics interface; see metrics/prom for the
// Prometheus adapter.
package cache
