package syntax

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// Cache stores parsed files keyed by the content hash of their source.
// Caching applies only to this ingestion layer; the type model built from
// the trees is never cached across runs. Implementations must be safe for
// concurrent use, since function documents parse in parallel.
type Cache interface {
	// Get retrieves a parsed file. The second result reports a hit.
	Get(key string) (*File, bool)

	// Set stores a parsed file under the given key.
	Set(key string, f *File)
}

// cacheKey derives the cache key for a source document.
func cacheKey(src []byte) string {
	sum := sha256.Sum256(src)
	return hex.EncodeToString(sum[:])
}

// MemoryCache is an in-process Cache. Entries are stored msgpack-encoded so
// that cached trees are isolated from later mutation by callers; a decode
// failure is treated as a miss.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string][]byte)}
}

// Get implements Cache.
func (c *MemoryCache) Get(key string) (*File, bool) {
	c.mu.RLock()
	buf, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	var f File
	if err := msgpack.Unmarshal(buf, &f); err != nil {
		return nil, false
	}
	return &f, true
}

// Set implements Cache.
func (c *MemoryCache) Set(key string, f *File) {
	buf, err := msgpack.Marshal(f)
	if err != nil {
		return
	}
	c.mu.Lock()
	c.entries[key] = buf
	c.mu.Unlock()
}

// Len returns the number of cached documents.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
