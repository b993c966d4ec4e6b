// Package cache provides a generic, thread-safe LRU cache with a soft
// entry limit.
//
//	c := cache.New[string, int](100)
//	c.Set("key", 42)
//	value, ok := c.Get("key")
//
// Callers that need reduced lock contention under concurrent access
// shard a cache themselves, keyed across several *Cache instances (see
// internal/shapingsvc's designMetricsCache), rather than this package
// providing sharding internally.
//
// Cache is safe for concurrent use and must not be copied after
// creation (it contains a mutex).
package cache
