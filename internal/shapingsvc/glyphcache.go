package shapingsvc

import "github.com/gogpu/termatlas/internal/cache"

// numShards is the number of cache shards for reduced lock contention.
const numShards = 16

// DesignMetricsKey identifies a cached per-glyph design-space result.
type DesignMetricsKey struct {
	Font FontFaceHandle
	GID  GlyphID
}

// designMetricsCache is a sharded cache.Cache of per-glyph design
// advances, adapted from the teacher's glyph-outline cache: each shard is
// a generic soft-limit LRU from internal/cache, repurposed
// here to cache GetDesignGlyphAdvances results instead of rasterized
// outlines, sharded by (font, glyph) hash to spread lock contention
// across concurrent shaping calls.
type designMetricsCache struct {
	shards [numShards]*cache.Cache[DesignMetricsKey, float32]
}

func newDesignMetricsCache(maxEntries int) *designMetricsCache {
	if maxEntries <= 0 {
		maxEntries = 4096
	}
	perShard := (maxEntries + numShards - 1) / numShards
	c := &designMetricsCache{}
	for i := range c.shards {
		c.shards[i] = cache.New[DesignMetricsKey, float32](perShard)
	}
	return c
}

func (c *designMetricsCache) shardFor(key DesignMetricsKey) *cache.Cache[DesignMetricsKey, float32] {
	h := uint64(key.Font)*31 + uint64(key.GID)
	return c.shards[h%numShards]
}

// Get returns the cached advance for key, if present.
func (c *designMetricsCache) Get(key DesignMetricsKey) (float32, bool) {
	return c.shardFor(key).Get(key)
}

// Set stores advance for key, evicting the shard's least-recently-used
// entries if it is over its soft limit.
func (c *designMetricsCache) Set(key DesignMetricsKey, advance float32) {
	c.shardFor(key).Set(key, advance)
}

// Clear drops every cached entry in every shard, used on font change.
func (c *designMetricsCache) Clear() {
	for _, shard := range c.shards {
		shard.Clear()
	}
}
