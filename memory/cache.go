package memory

import (
	"context"

	"github.com/dgraph-io/ristretto"
)

// CachedEmbedder decorates an Embedder with a ristretto cache keyed by input
// text. Turns frequently re-embed the same strings (retrieval queries built
// from short histories, repeated user phrasings), so a hit skips the
// embedding backend entirely.
type CachedEmbedder struct {
	inner Embedder
	cache *ristretto.Cache
}

// NewCachedEmbedder wraps inner with a cache holding up to maxEntries
// embeddings.
func NewCachedEmbedder(inner Embedder, maxEntries int64) (*CachedEmbedder, error) {
	if maxEntries <= 0 {
		maxEntries = 4096
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
		// Each entry is stored with cost 1 so MaxCost counts entries; without
		// this, ristretto adds its per-item overhead to the cost and rejects
		// every entry when maxEntries is small.
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}
	return &CachedEmbedder{inner: inner, cache: cache}, nil
}

// Embed returns the cached vector for text, embedding and caching on a miss.
// Errors from the inner embedder are never cached.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := c.cache.Get(text); ok {
		return v.([]float32), nil
	}
	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Set(text, vec, 1)
	return vec, nil
}

// Dimensions returns the inner embedder's vector size.
func (c *CachedEmbedder) Dimensions() int {
	return c.inner.Dimensions()
}

// Wait blocks until pending cache writes are applied. Ristretto admits
// entries asynchronously; tests call this before asserting on hits.
func (c *CachedEmbedder) Wait() {
	c.cache.Wait()
}

// Close releases the cache's resources.
func (c *CachedEmbedder) Close() {
	c.cache.Close()
}
