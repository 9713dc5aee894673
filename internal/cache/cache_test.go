package cache

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

// fakeClock drives the store's time source so TTL and LRU tests are
// deterministic.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore(opt Options) (*Store, *fakeClock) {
	clk := newFakeClock()
	opt.Now = clk.now
	return New(opt), clk
}

func mustGet(t *testing.T, s *Store, key string) json.RawMessage {
	t.Helper()
	v, ok, err := s.Get(key)
	if err != nil {
		t.Fatalf("Get(%q) error: %v", key, err)
	}
	if !ok {
		t.Fatalf("Get(%q) = miss, want hit", key)
	}
	return v
}

func mustMiss(t *testing.T, s *Store, key string) {
	t.Helper()
	if _, ok, err := s.Get(key); err != nil {
		t.Fatalf("Get(%q) error: %v", key, err)
	} else if ok {
		t.Fatalf("Get(%q) = hit, want miss", key)
	}
}

func TestStore_RoundTrip(t *testing.T) {
	s, _ := newTestStore(Options{})

	values := map[string]any{
		"string": "a short answer",
		"object": map[string]any{"role": "assistant", "tokens": float64(42)},
		"array":  []any{"one", "two", float64(3)},
	}

	for name, want := range values {
		t.Run(name, func(t *testing.T) {
			if err := s.Set(name, want); err != nil {
				t.Fatalf("Set error: %v", err)
			}
			raw := mustGet(t, s, name)
			var got any
			if err := json.Unmarshal(raw, &got); err != nil {
				t.Fatalf("Unmarshal error: %v", err)
			}
			wantJSON, _ := json.Marshal(want)
			gotJSON, _ := json.Marshal(got)
			if string(gotJSON) != string(wantJSON) {
				t.Errorf("round trip = %s, want %s", gotJSON, wantJSON)
			}
		})
	}
}

func TestStore_RoundTripCompressed(t *testing.T) {
	s, _ := newTestStore(Options{CompressThreshold: 64})

	want := strings.Repeat("the quick brown fox ", 50)
	if err := s.Set("big", want); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	if got := s.Stats().Compressions; got != 1 {
		t.Errorf("Compressions = %d, want 1", got)
	}

	raw := mustGet(t, s, "big")
	var got string
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if got != want {
		t.Error("compressed round trip did not reconstruct the value")
	}
}

func TestStore_TTLExpiry(t *testing.T) {
	s, clk := newTestStore(Options{})

	if err := s.Set("k", "v", WithTTL(50*time.Millisecond)); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	clk.advance(49 * time.Millisecond)
	mustGet(t, s, "k")

	clk.advance(1 * time.Millisecond) // exactly at the deadline
	mustMiss(t, s, "k")

	if got := s.Stats().MemoryEntries; got != 0 {
		t.Errorf("MemoryEntries after expiry = %d, want 0", got)
	}
}

func TestStore_PromotionFromDisk(t *testing.T) {
	s, _ := newTestStore(Options{
		MemoryBudget:      4096,
		MemoryEntryLimit:  64,
		CompressThreshold: 1 << 20, // keep sizes predictable
	})

	big := strings.Repeat("x", 100) // stored size 102 > entry limit
	if err := s.Set("big", big); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	st := s.Stats()
	if st.DiskEntries != 1 || st.MemoryEntries != 0 {
		t.Fatalf("placement = %d memory / %d disk, want 0/1", st.MemoryEntries, st.DiskEntries)
	}

	mustGet(t, s, "big")

	// The disk hit must have moved the entry to the memory tier, and to
	// only the memory tier.
	st = s.Stats()
	if st.MemoryEntries != 1 || st.DiskEntries != 0 {
		t.Fatalf("after promotion = %d memory / %d disk, want 1/0", st.MemoryEntries, st.DiskEntries)
	}
	if st.DiskSizeBytes != 0 {
		t.Errorf("DiskSizeBytes after promotion = %d, want 0", st.DiskSizeBytes)
	}

	mustGet(t, s, "big")
	if got := s.Stats().Hits; got != 2 {
		t.Errorf("Hits = %d, want 2", got)
	}
}

func TestStore_MemoryBudgetInvariant(t *testing.T) {
	s, _ := newTestStore(Options{
		MemoryBudget:      120,
		MemoryEntryLimit:  120,
		DiskBudget:        1 << 20,
		CompressThreshold: 1 << 20,
	})

	// Ten entries of 42 stored bytes each; the budget holds two.
	for _, key := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"} {
		if err := s.Set(key, strings.Repeat("v", 40)); err != nil {
			t.Fatalf("Set error: %v", err)
		}
		if st := s.Stats(); st.MemorySizeBytes > 120 {
			t.Fatalf("MemorySizeBytes = %d exceeds budget after Set(%q)", st.MemorySizeBytes, key)
		}
	}

	st := s.Stats()
	if st.Evictions == 0 {
		t.Error("expected evictions once the budget overflowed")
	}
	// Early entries were evicted, late ones survive.
	mustMiss(t, s, "a")
	mustGet(t, s, "j")
}

func TestStore_EvictionOrderLRU(t *testing.T) {
	// Three 12-byte entries fit exactly; a fourth forces one eviction.
	s, clk := newTestStore(Options{
		MemoryBudget:      36,
		MemoryEntryLimit:  36,
		CompressThreshold: 1 << 20,
	})

	v := strings.Repeat("x", 10)
	for _, key := range []string{"A", "B", "C"} {
		if err := s.Set(key, v); err != nil {
			t.Fatalf("Set error: %v", err)
		}
		clk.advance(time.Second)
	}

	// Touch A so B becomes least recently used.
	mustGet(t, s, "A")
	clk.advance(time.Second)

	if err := s.Set("D", v); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	mustMiss(t, s, "B") // LRU victim, not the oldest-inserted A
	mustGet(t, s, "A")
	mustGet(t, s, "C")
	mustGet(t, s, "D")

	if got := s.Stats().Evictions; got != 1 {
		t.Errorf("Evictions = %d, want 1", got)
	}
}

func TestStore_DiskEvictionOldestFirst(t *testing.T) {
	// A tiny memory budget forces everything to disk and blocks promotion.
	s, clk := newTestStore(Options{
		MemoryBudget:      8,
		DiskBudget:        24,
		CompressThreshold: 1 << 20,
	})

	v := strings.Repeat("x", 10) // stored size 12; disk holds two
	for _, key := range []string{"old", "mid", "new"} {
		if err := s.Set(key, v); err != nil {
			t.Fatalf("Set error: %v", err)
		}
		clk.advance(time.Second)
	}

	st := s.Stats()
	if st.DiskEntries != 2 {
		t.Fatalf("DiskEntries = %d, want 2", st.DiskEntries)
	}
	if st.Evictions != 1 {
		t.Errorf("Evictions = %d, want 1", st.Evictions)
	}

	mustMiss(t, s, "old") // oldest-created goes first on the disk tier
	mustGet(t, s, "mid")
	mustGet(t, s, "new")
}

func TestStore_InvalidateKey(t *testing.T) {
	s, _ := newTestStore(Options{})

	s.Set("k", "v")
	if !s.Invalidate("k") {
		t.Error("Invalidate = false, want true for present key")
	}
	mustMiss(t, s, "k")

	if s.Invalidate("absent") {
		t.Error("Invalidate = true, want false for absent key")
	}
}

func TestStore_InvalidatePattern(t *testing.T) {
	s, _ := newTestStore(Options{})

	s.Set("userA-query", "v1")
	s.Set("userB-query", "v2")

	n, err := s.InvalidatePattern("userA.*")
	if err != nil {
		t.Fatalf("InvalidatePattern error: %v", err)
	}
	if n != 1 {
		t.Errorf("removed = %d, want 1", n)
	}

	mustMiss(t, s, "userA-query")

	raw := mustGet(t, s, "userB-query")
	var got string
	json.Unmarshal(raw, &got)
	if got != "v2" {
		t.Errorf("userB-query = %q, want %q", got, "v2")
	}
}

func TestStore_InvalidatePatternMalformed(t *testing.T) {
	s, _ := newTestStore(Options{})
	if _, err := s.InvalidatePattern("("); err == nil {
		t.Error("expected error for malformed pattern")
	}
}

func TestStore_SemanticMatch(t *testing.T) {
	s, _ := newTestStore(Options{})

	if err := s.Set("What is the capital of France?", "Paris"); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	m, ok, err := s.SemanticGet("what is the capital of france", 0.5)
	if err != nil {
		t.Fatalf("SemanticGet error: %v", err)
	}
	if !ok {
		t.Fatal("SemanticGet = miss, want hit")
	}
	if m.Similarity <= 0 || m.Similarity > 1 {
		t.Errorf("Similarity = %v, want in (0,1]", m.Similarity)
	}
	var got string
	if err := json.Unmarshal(m.Value, &got); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if got != "Paris" {
		t.Errorf("value = %q, want %q", got, "Paris")
	}
	if m.Key != "What is the capital of France?" {
		t.Errorf("Key = %q, want the original key", m.Key)
	}
}

func TestStore_SemanticBelowThreshold(t *testing.T) {
	s, _ := newTestStore(Options{})

	s.Set("how do I reverse a linked list", "walk and relink")

	if _, ok, err := s.SemanticGet("best pizza in naples", 0.5); err != nil {
		t.Fatalf("SemanticGet error: %v", err)
	} else if ok {
		t.Error("SemanticGet = hit, want miss below threshold")
	}
	if got := s.Stats().Misses; got != 1 {
		t.Errorf("Misses = %d, want 1", got)
	}
}

func TestStore_SemanticTieBreakNewest(t *testing.T) {
	s, clk := newTestStore(Options{})

	// Both keys score 3/4 against the query; the newer entry must win.
	s.Set("alpha beta gamma one", "first")
	clk.advance(time.Second)
	s.Set("alpha beta gamma two", "second")

	m, ok, err := s.SemanticGet("alpha beta gamma", 0.5)
	if err != nil {
		t.Fatalf("SemanticGet error: %v", err)
	}
	if !ok {
		t.Fatal("SemanticGet = miss, want hit")
	}
	var got string
	json.Unmarshal(m.Value, &got)
	if got != "second" {
		t.Errorf("tie-break value = %q, want %q", got, "second")
	}
}

func TestStore_SemanticSkipsExpired(t *testing.T) {
	s, clk := newTestStore(Options{})

	s.Set("what time is it", "noon", WithTTL(time.Minute))
	clk.advance(2 * time.Minute)

	if _, ok, err := s.SemanticGet("what time is it", 0.5); err != nil {
		t.Fatalf("SemanticGet error: %v", err)
	} else if ok {
		t.Error("SemanticGet matched an expired entry")
	}
}

// gaugeRecorder captures the latest Size publication.
type gaugeRecorder struct {
	NoopMetrics
	memEntries, diskEntries int
	memBytes, diskBytes     int64
}

func (g *gaugeRecorder) Size(memEntries, diskEntries int, memBytes, diskBytes int64) {
	g.memEntries, g.diskEntries = memEntries, diskEntries
	g.memBytes, g.diskBytes = memBytes, diskBytes
}

func TestStore_ExpiryUpdatesSizeGauges(t *testing.T) {
	rec := &gaugeRecorder{}
	s, clk := newTestStore(Options{Metrics: rec})

	s.Set("k", "v", WithTTL(time.Minute))
	if rec.memEntries != 1 || rec.memBytes == 0 {
		t.Fatalf("gauges after Set = %+v", *rec)
	}

	clk.advance(2 * time.Minute)
	mustMiss(t, s, "k")
	if rec.memEntries != 0 || rec.memBytes != 0 {
		t.Errorf("gauges after expired Get = %+v, want empty", *rec)
	}

	// Same for an expired entry swept out by a semantic scan.
	s.Set("what time is it", "noon", WithTTL(time.Minute))
	clk.advance(2 * time.Minute)
	if _, ok, err := s.SemanticGet("what time is it", 0.5); err != nil || ok {
		t.Fatalf("SemanticGet = %v, %v, want expired miss", ok, err)
	}
	if rec.memEntries != 0 || rec.memBytes != 0 {
		t.Errorf("gauges after semantic scan = %+v, want empty", *rec)
	}
}

func TestStore_HitRate(t *testing.T) {
	s, _ := newTestStore(Options{})

	if got := s.Stats().HitRate; got != 0 {
		t.Errorf("HitRate before any lookup = %v, want 0", got)
	}

	s.Set("k", "v")
	for i := 0; i < 3; i++ {
		mustGet(t, s, "k")
	}
	mustMiss(t, s, "absent")

	if got := s.Stats().HitRate; got != 0.75 {
		t.Errorf("HitRate = %v, want 0.75", got)
	}
}

func TestStore_ClearResets(t *testing.T) {
	s, _ := newTestStore(Options{CompressThreshold: 16})

	s.Set("k", strings.Repeat("v", 64))
	mustGet(t, s, "k")
	mustMiss(t, s, "absent")

	s.Clear()

	st := s.Stats()
	if st.Hits != 0 || st.Misses != 0 || st.Evictions != 0 || st.Compressions != 0 {
		t.Errorf("counters after Clear = %+v, want all zero", st)
	}
	if st.MemoryEntries != 0 || st.DiskEntries != 0 || st.MemorySizeBytes != 0 || st.DiskSizeBytes != 0 {
		t.Errorf("occupancy after Clear = %+v, want empty", st)
	}
	mustMiss(t, s, "k")
}

func TestStore_OverwriteSameKey(t *testing.T) {
	s, _ := newTestStore(Options{})

	s.Set("k", "first")
	s.Set("k", "second")

	raw := mustGet(t, s, "k")
	var got string
	json.Unmarshal(raw, &got)
	if got != "second" {
		t.Errorf("value = %q, want %q (last write wins)", got, "second")
	}
	if st := s.Stats(); st.MemoryEntries != 1 {
		t.Errorf("MemoryEntries = %d, want 1", st.MemoryEntries)
	}
}

func TestStore_SerializationError(t *testing.T) {
	s, _ := newTestStore(Options{})

	if err := s.Set("k", make(chan int)); err == nil {
		t.Error("expected error for unserializable value")
	}
	mustMiss(t, s, "k")
}

func TestStore_CorruptedPayload(t *testing.T) {
	s, _ := newTestStore(Options{CompressThreshold: 16})

	s.Set("k", strings.Repeat("v", 64))

	// Corrupt the stored bytes behind the store's back.
	e := s.memory[HashKey("k")]
	if e == nil || !e.Compressed {
		t.Fatal("expected a compressed memory-tier entry")
	}
	for i := range e.Data {
		e.Data[i] ^= 0xff
	}

	if _, _, err := s.Get("k"); err == nil {
		t.Error("expected corruption error from Get")
	}
}

func TestHashKey(t *testing.T) {
	if HashKey("test") != HashKey("test") {
		t.Error("same key must hash identically")
	}
	if HashKey("test") == HashKey("other") {
		t.Error("different keys should not collide")
	}
	if len(HashKey("test")) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(HashKey("test")))
	}
}
