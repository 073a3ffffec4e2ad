package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/agora-platform/agora/internal/model"
)

// VerdictCache is an in-memory TTL cache of verification verdicts, keyed by
// argument content. Re-verifying an unchanged argument costs two remote
// round-trips; the cache makes the repeat free.
type VerdictCache struct {
	store *gocache.Cache
}

// NewVerdictCache creates a verdict cache with the given TTL and cleanup interval
func NewVerdictCache(ttl, cleanupInterval time.Duration) *VerdictCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if cleanupInterval <= 0 {
		cleanupInterval = 10 * time.Minute
	}
	return &VerdictCache{
		store: gocache.New(ttl, cleanupInterval),
	}
}

// Key derives a stable cache key from the verification inputs.
func Key(title, content, question string) string {
	h := sha256.New()
	h.Write([]byte(title))
	h.Write([]byte{0})
	h.Write([]byte(content))
	h.Write([]byte{0})
	h.Write([]byte(question))
	return hex.EncodeToString(h.Sum(nil))
}

// Get retrieves a cached verdict
func (c *VerdictCache) Get(key string) (model.Verdict, bool) {
	v, found := c.store.Get(key)
	if !found {
		return model.Verdict{}, false
	}
	verdict, ok := v.(model.Verdict)
	return verdict, ok
}

// Set stores a verdict under the cache's default TTL
func (c *VerdictCache) Set(key string, verdict model.Verdict) {
	c.store.SetDefault(key, verdict)
}

// Flush removes all cached verdicts
func (c *VerdictCache) Flush() {
	c.store.Flush()
}
