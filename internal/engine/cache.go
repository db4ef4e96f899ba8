package engine

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/buildscope/assetmatch/internal/model"
)

// cacheEntry represents one cached batch resolution.
type cacheEntry struct {
	created time.Time
	results []model.AssetMatch
}

// resultCache provides thread-safe, time- and size-bounded caching of whole
// batch results. Expiry is enforced on read; size pressure evicts the entry
// with the oldest timestamp. The cache is an optimization, never a source of
// truth.
type resultCache struct {
	entries    map[string]cacheEntry
	ttl        time.Duration
	maxEntries int
	mu         sync.Mutex
}

func newResultCache(ttl time.Duration, maxEntries int) *resultCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if maxEntries <= 0 {
		maxEntries = 50
	}
	return &resultCache{
		entries:    make(map[string]cacheEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
	}
}

// get retrieves a batch result if present and unexpired. Expired entries are
// evicted on the spot.
func (c *resultCache) get(key string) ([]model.AssetMatch, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.entries[key]
	if !exists {
		return nil, false
	}

	if time.Since(entry.created) > c.ttl {
		delete(c.entries, key)
		return nil, false
	}

	return entry.results, true
}

// put stores a batch result, evicting the oldest entry when over capacity.
func (c *resultCache) put(key string, results []model.AssetMatch) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		results: results,
		created: time.Now(),
	}

	if len(c.entries) <= c.maxEntries {
		return
	}

	oldestKey := ""
	var oldest time.Time
	for k, entry := range c.entries {
		if oldestKey == "" || entry.created.Before(oldest) {
			oldestKey = k
			oldest = entry.created
		}
	}
	delete(c.entries, oldestKey)
}

// clear removes all entries from the cache.
func (c *resultCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// size returns the number of entries in the cache.
func (c *resultCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// batchKey builds the deterministic signature of a resolution request: the
// organization plus each row's identifying fields, hashed.
func batchKey(organizationID string, rows []model.UploadedAssetRow) string {
	var b strings.Builder
	b.WriteString(organizationID)
	for _, row := range rows {
		b.WriteString("|")
		b.WriteString(row.AssetType)
		b.WriteString(":")
		b.WriteString(row.Brand)
		b.WriteString(":")
		b.WriteString(row.Model)
	}
	sum := sha256.Sum256([]byte(b.String()))
	return fmt.Sprintf("%x", sum)
}
