package cache

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sync"
	"time"
)

// Defaults applied by New when the corresponding Options field is zero.
const (
	DefaultMemoryBudget      = 8 << 20  // 8 MiB
	DefaultDiskBudget        = 64 << 20 // 64 MiB
	DefaultTTL               = 24 * time.Hour
	DefaultCompressThreshold = 1 << 10 // 1 KiB
)

// Options configures a Store. Zero values get sane defaults in New.
type Options struct {
	// MemoryBudget caps the summed stored size of memory-tier entries, in
	// bytes.
	MemoryBudget int64

	// MemoryEntryLimit is the largest stored entry size Set places directly
	// in the memory tier; larger entries start in the disk tier. Promotion
	// on a disk hit ignores this limit and only requires the entry to fit
	// the memory budget. Zero means MemoryBudget/4.
	MemoryEntryLimit int64

	// DiskBudget caps the summed stored size of disk-tier entries, in bytes.
	DiskBudget int64

	// DefaultTTL applies to Set when no per-entry TTL is given.
	// Non-positive means entries never expire.
	DefaultTTL time.Duration

	// CompressThreshold is the serialized size, in bytes, at or above which
	// a payload is stored gzip-compressed.
	CompressThreshold int

	// Metrics receives lifecycle events. Nil means NoopMetrics.
	Metrics Metrics

	// Now overrides the time source for deterministic tests. Nil means
	// time.Now.
	Now func() time.Time
}

// Store is a two-tier response cache. All methods are safe for concurrent
// use. Counters are owned by the instance and reset only by Clear, so
// independent Stores never interfere with each other.
type Store struct {
	mu     sync.Mutex
	memory map[string]*Entry
	disk   map[string]*Entry

	memBytes  int64
	diskBytes int64

	hits         uint64
	misses       uint64
	compressions uint64
	evictions    uint64

	opt Options
}

// Stats is a point-in-time snapshot of cache counters and occupancy.
type Stats struct {
	Hits            uint64  `json:"hits"`
	Misses          uint64  `json:"misses"`
	HitRate         float64 `json:"hitRate"`
	Compressions    uint64  `json:"compressions"`
	Evictions       uint64  `json:"evictions"`
	MemoryEntries   int     `json:"memoryEntries"`
	DiskEntries     int     `json:"diskEntries"`
	MemorySizeBytes int64   `json:"memorySizeBytes"`
	DiskSizeBytes   int64   `json:"diskSizeBytes"`
}

// Match is the result of a successful SemanticGet.
type Match struct {
	// Key is the matched entry's original key, not the query.
	Key        string
	Value      json.RawMessage
	Similarity float64
}

// New constructs a Store with defaults applied for unset Options fields.
func New(opt Options) *Store {
	if opt.MemoryBudget <= 0 {
		opt.MemoryBudget = DefaultMemoryBudget
	}
	if opt.DiskBudget <= 0 {
		opt.DiskBudget = DefaultDiskBudget
	}
	if opt.MemoryEntryLimit <= 0 {
		opt.MemoryEntryLimit = opt.MemoryBudget / 4
	}
	if opt.MemoryEntryLimit > opt.MemoryBudget {
		opt.MemoryEntryLimit = opt.MemoryBudget
	}
	if opt.DefaultTTL == 0 {
		opt.DefaultTTL = DefaultTTL
	}
	if opt.CompressThreshold <= 0 {
		opt.CompressThreshold = DefaultCompressThreshold
	}
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}
	if opt.Now == nil {
		opt.Now = time.Now
	}
	return &Store{
		memory: make(map[string]*Entry),
		disk:   make(map[string]*Entry),
		opt:    opt,
	}
}

// SetOption customizes a single Set call.
type SetOption func(*setConfig)

type setConfig struct {
	ttl      time.Duration
	ttlSet   bool
	metadata map[string]string
}

// WithTTL overrides the store's default TTL for one entry. Non-positive
// disables expiry for that entry.
func WithTTL(d time.Duration) SetOption {
	return func(c *setConfig) {
		c.ttl = d
		c.ttlSet = true
	}
}

// WithMetadata attaches caller-owned side-channel data to the entry.
func WithMetadata(m map[string]string) SetOption {
	return func(c *setConfig) { c.metadata = m }
}

// Set serializes value and stores it under key, overwriting any previous
// entry for the same key. A value that cannot be JSON-serialized is not
// cached and the marshal error is returned.
func (s *Store) Set(key string, value any, opts ...SetOption) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("serializing cache value: %w", err)
	}

	var cfg setConfig
	for _, o := range opts {
		o(&cfg)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.opt.Now()
	ttl := s.opt.DefaultTTL
	if cfg.ttlSet {
		ttl = cfg.ttl
	}

	e := &Entry{
		Key:            key,
		ContentHash:    HashKey(key),
		Data:           data,
		Metadata:       cfg.metadata,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	if ttl > 0 {
		e.ExpiresAt = now.Add(ttl)
	}

	if len(data) >= s.opt.CompressThreshold {
		packed, err := compress(data)
		if err != nil {
			return err
		}
		e.Data = packed
		e.Compressed = true
		s.compressions++
		s.opt.Metrics.Compression()
	}

	// Drop any prior entry for this hash so the tiers stay mutually
	// exclusive and byte accounting stays exact.
	s.removeLocked(e.ContentHash)

	if e.size() <= s.opt.MemoryEntryLimit {
		s.insertMemoryLocked(e)
	} else {
		s.insertDiskLocked(e)
	}
	s.publishSizeLocked()
	return nil
}

// Get returns the decompressed value stored under key. A miss (absent or
// expired) is (nil, false, nil), never an error. A disk-tier hit promotes
// the entry into the memory tier. A non-nil error means the stored payload
// failed its compression round trip.
func (s *Store) Get(key string) (json.RawMessage, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.opt.Now()
	hash := HashKey(key)

	if e, ok := s.memory[hash]; ok {
		if e.expired(now) {
			s.deleteMemoryLocked(e)
			s.publishSizeLocked()
		} else {
			value, err := e.payload()
			if err != nil {
				return nil, false, err
			}
			e.AccessCount++
			e.LastAccessedAt = now
			s.hits++
			s.opt.Metrics.Hit()
			return value, true, nil
		}
	}

	if e, ok := s.disk[hash]; ok {
		if e.expired(now) {
			s.deleteDiskLocked(e)
			s.publishSizeLocked()
		} else {
			value, err := e.payload()
			if err != nil {
				return nil, false, err
			}
			e.AccessCount++
			e.LastAccessedAt = now
			s.promoteLocked(e)
			s.hits++
			s.opt.Metrics.Hit()
			s.publishSizeLocked()
			return value, true, nil
		}
	}

	s.misses++
	s.opt.Metrics.Miss()
	return nil, false, nil
}

// SemanticGet scans live memory-tier entries for the key most similar to
// query (Jaccard index over lower-cased word sets) and returns it when the
// best score reaches threshold. Ties break to the most recently created
// entry. Expired entries found along the way are removed. The disk tier
// is never scanned.
func (s *Store) SemanticGet(query string, threshold float64) (Match, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.opt.Now()
	queryTokens := tokenize(query)

	var best *Entry
	var bestScore float64
	removedExpired := false
	for _, e := range s.memory {
		if e.expired(now) {
			s.deleteMemoryLocked(e)
			removedExpired = true
			continue
		}
		score := jaccard(queryTokens, tokenize(e.Key))
		switch {
		case best == nil, score > bestScore:
			best, bestScore = e, score
		case score == bestScore && e.CreatedAt.After(best.CreatedAt):
			best = e
		}
	}
	if removedExpired {
		s.publishSizeLocked()
	}

	if best == nil || bestScore < threshold {
		s.misses++
		s.opt.Metrics.Miss()
		return Match{}, false, nil
	}

	value, err := best.payload()
	if err != nil {
		return Match{}, false, err
	}
	best.AccessCount++
	best.LastAccessedAt = now
	s.hits++
	s.opt.Metrics.Hit()
	return Match{Key: best.Key, Value: value, Similarity: bestScore}, true, nil
}

// Invalidate removes key from both tiers and reports whether an entry was
// present.
func (s *Store) Invalidate(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := s.removeLocked(HashKey(key))
	s.publishSizeLocked()
	return removed
}

// InvalidatePattern removes every entry in both tiers whose original key
// matches the regular expression and returns the number removed. A
// malformed pattern is a caller error and propagates unchanged.
func (s *Store) InvalidatePattern(pattern string) (int, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for _, e := range s.memory {
		if re.MatchString(e.Key) {
			s.deleteMemoryLocked(e)
			removed++
		}
	}
	for _, e := range s.disk {
		if re.MatchString(e.Key) {
			s.deleteDiskLocked(e)
			removed++
		}
	}
	s.publishSizeLocked()
	return removed, nil
}

// Clear drops both tiers and resets every counter to zero.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.memory = make(map[string]*Entry)
	s.disk = make(map[string]*Entry)
	s.memBytes = 0
	s.diskBytes = 0
	s.hits = 0
	s.misses = 0
	s.compressions = 0
	s.evictions = 0
	s.publishSizeLocked()
}

// Stats returns a snapshot of the store's counters and occupancy. HitRate
// is 0 before any lookup has been made.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{
		Hits:            s.hits,
		Misses:          s.misses,
		Compressions:    s.compressions,
		Evictions:       s.evictions,
		MemoryEntries:   len(s.memory),
		DiskEntries:     len(s.disk),
		MemorySizeBytes: s.memBytes,
		DiskSizeBytes:   s.diskBytes,
	}
	if total := s.hits + s.misses; total > 0 {
		st.HitRate = float64(s.hits) / float64(total)
	}
	return st
}

// ---- internal, caller holds s.mu ----

func (s *Store) insertMemoryLocked(e *Entry) {
	s.memory[e.ContentHash] = e
	s.memBytes += e.size()
	for s.memBytes > s.opt.MemoryBudget && len(s.memory) > 0 {
		s.evictMemoryLocked()
	}
}

func (s *Store) insertDiskLocked(e *Entry) {
	s.disk[e.ContentHash] = e
	s.diskBytes += e.size()
	for s.diskBytes > s.opt.DiskBudget && len(s.disk) > 0 {
		s.evictDiskLocked()
	}
}

// promoteLocked moves a live disk-tier entry into the memory tier
// (cache-through). An entry too large for the memory budget stays on disk
// and is served from there.
func (s *Store) promoteLocked(e *Entry) {
	if e.size() > s.opt.MemoryBudget {
		return
	}
	s.deleteDiskLocked(e)
	s.insertMemoryLocked(e)
}

// evictMemoryLocked removes the least-recently-used memory entry. One entry
// per call; the insert loop re-checks the budget between calls.
func (s *Store) evictMemoryLocked() {
	var victim *Entry
	for _, e := range s.memory {
		if victim == nil || e.LastAccessedAt.Before(victim.LastAccessedAt) {
			victim = e
		}
	}
	if victim == nil {
		return
	}
	s.deleteMemoryLocked(victim)
	s.evictions++
	s.opt.Metrics.Evict(TierMemory)
}

// evictDiskLocked removes the oldest-created disk entry. Creation age
// approximates coldness on the overflow tier; access order is not tracked
// there.
func (s *Store) evictDiskLocked() {
	var victim *Entry
	for _, e := range s.disk {
		if victim == nil || e.CreatedAt.Before(victim.CreatedAt) {
			victim = e
		}
	}
	if victim == nil {
		return
	}
	s.deleteDiskLocked(victim)
	s.evictions++
	s.opt.Metrics.Evict(TierDisk)
}

func (s *Store) deleteMemoryLocked(e *Entry) {
	delete(s.memory, e.ContentHash)
	s.memBytes -= e.size()
}

func (s *Store) deleteDiskLocked(e *Entry) {
	delete(s.disk, e.ContentHash)
	s.diskBytes -= e.size()
}

func (s *Store) removeLocked(hash string) bool {
	removed := false
	if e, ok := s.memory[hash]; ok {
		s.deleteMemoryLocked(e)
		removed = true
	}
	if e, ok := s.disk[hash]; ok {
		s.deleteDiskLocked(e)
		removed = true
	}
	return removed
}

func (s *Store) publishSizeLocked() {
	s.opt.Metrics.Size(len(s.memory), len(s.disk), s.memBytes, s.diskBytes)
}
