package chunking

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
)

// Hash returns the deterministic dedup digest of a chunk's text.
// Whitespace runs are collapsed before hashing so that formatting
// variants of the same content share an identity.
func Hash(text string) string {
	sum := sha256.Sum256([]byte(normalise(text)))
	return hex.EncodeToString(sum[:])
}

// normalise collapses whitespace runs to single spaces and trims.
func normalise(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// DedupSet tracks content hashes seen within one ingestion scope.
// It is safe for concurrent use: correctness does not depend on the
// order files are processed in, only on the hashes themselves.
type DedupSet struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewDedupSet creates an empty dedup set.
func NewDedupSet() *DedupSet {
	return &DedupSet{seen: make(map[string]struct{})}
}

// Seen records the hash and reports whether it was already present.
// A repeat hash means the chunk is a duplicate and should be skipped
// rather than re-embedded.
func (d *DedupSet) Seen(hash string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.seen[hash]; ok {
		return true
	}
	d.seen[hash] = struct{}{}
	return false
}

// Add records hashes without reporting, used to preload the set with
// hashes already present in the store.
func (d *DedupSet) Add(hashes ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, h := range hashes {
		d.seen[h] = struct{}{}
	}
}

// Len returns the number of distinct hashes recorded.
func (d *DedupSet) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
