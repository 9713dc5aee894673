package cache

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"
)

// Tier identifies one of the two storage levels an entry can live in.
type Tier string

const (
	TierMemory Tier = "memory"
	TierDisk   Tier = "disk"
)

// Entry is a single cached payload. An entry lives in exactly one tier at a
// time and is reached through the SHA-256 hash of its original key.
type Entry struct {
	// Key is the original lookup key, immutable after creation. It is kept
	// alongside the hash so pattern invalidation and semantic matching can
	// operate on the caller's own text.
	Key string

	// ContentHash is sha256(Key) in hex and indexes the tier maps. Hash
	// collisions are treated as the same entry; last write wins.
	ContentHash string

	// Data is the JSON serialization of the value, gzip-compressed when
	// Compressed is true.
	Data       []byte
	Compressed bool

	// Metadata is caller-supplied side-channel data. The store never
	// interprets it.
	Metadata map[string]string

	CreatedAt      time.Time
	ExpiresAt      time.Time // zero means no expiry
	LastAccessedAt time.Time
	AccessCount    uint64
}

// size is the entry's budget footprint: the stored (possibly compressed)
// byte length.
func (e *Entry) size() int64 { return int64(len(e.Data)) }

// expired reports whether the entry is logically dead at now.
func (e *Entry) expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && !now.Before(e.ExpiresAt)
}

// payload returns the entry's uncompressed JSON value. A failed gzip round
// trip indicates corruption and surfaces as an error.
func (e *Entry) payload() (json.RawMessage, error) {
	if !e.Compressed {
		return e.Data, nil
	}
	data, err := decompress(e.Data)
	if err != nil {
		return nil, fmt.Errorf("cache: corrupted entry %s: %w", e.ContentHash, err)
	}
	return data, nil
}

// HashKey returns the hex SHA-256 digest used to index an entry.
func HashKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%x", h)
}
