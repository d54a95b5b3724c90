// Package cache memoizes analysis results keyed by the set of source URLs.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"

	"github.com/samvad-hq/position-parser/internal/crawler"
	"github.com/samvad-hq/position-parser/internal/domain"
	"github.com/samvad-hq/position-parser/internal/logger"
	"github.com/samvad-hq/position-parser/internal/metrics"
	"github.com/samvad-hq/position-parser/internal/storage"
)

// FingerprintLen is the number of hex characters kept from the digest.
const FingerprintLen = 16

// Cache reads and writes AnalysisResults through a Store. It never returns errors;
// a failed read is a miss and a failed write is logged and dropped.
type Cache struct {
	store storage.Store
	log   logger.Logger
}

// New wraps store. A nil store behaves as an always-empty cache.
func New(store storage.Store, log logger.Logger) *Cache {
	if store == nil {
		store, _ = storage.NewStore("none", storage.Options{})
	}
	return &Cache{store: store, log: logger.Ensure(log)}
}

// Fingerprint derives the cache key for a URL set. Order does not matter.
func Fingerprint(urls []string) string {
	sorted := make([]string, len(urls))
	for i, u := range urls {
		sorted[i] = crawler.NormalizeURL(u)
	}
	sort.Strings(sorted)

	quoted := make([]string, len(sorted))
	for i, u := range sorted {
		b, _ := json.Marshal(u)
		quoted[i] = string(b)
	}
	canonical := "[" + strings.Join(quoted, ", ") + "]"

	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])[:FingerprintLen]
}

// Get returns the cached result for urls, if any.
func (c *Cache) Get(urls []string) (domain.AnalysisResult, bool) {
	key := Fingerprint(urls)

	data, ok, err := c.store.Get(key)
	if err != nil {
		c.log.WarnObj("cache read failed", "cache_error", map[string]any{"key": key, "error": err.Error()})
	}
	if err != nil || !ok {
		metrics.ObserveCacheLookup(false)
		return domain.AnalysisResult{}, false
	}

	var res domain.AnalysisResult
	if err := json.Unmarshal(data, &res); err != nil {
		c.log.WarnObj("cache entry unreadable", "cache_error", map[string]any{"key": key, "error": err.Error()})
		metrics.ObserveCacheLookup(false)
		return domain.AnalysisResult{}, false
	}

	metrics.ObserveCacheLookup(true)
	c.log.DebugObj("cache hit", "cache_key", key)
	return res.Normalize(), true
}

// Set stores result under the fingerprint of urls.
func (c *Cache) Set(urls []string, result domain.AnalysisResult) {
	key := Fingerprint(urls)

	data, err := json.MarshalIndent(result.Normalize(), "", "  ")
	if err != nil {
		c.log.WarnObj("cache encode failed", "cache_error", map[string]any{"key": key, "error": err.Error()})
		return
	}
	if err := c.store.Put(key, data); err != nil {
		c.log.WarnObj("cache write failed", "cache_error", map[string]any{"key": key, "error": err.Error()})
		return
	}
	c.log.DebugObj("cache stored", "cache_key", key)
}

// Clear drops every entry and returns how many were removed.
func (c *Cache) Clear() int {
	n, err := c.store.Clear()
	if err != nil {
		c.log.WarnObj("cache clear incomplete", "cache_error", map[string]any{"removed": n, "error": err.Error()})
	}
	c.log.InfoObj("cache cleared", "removed", n)
	return n
}
