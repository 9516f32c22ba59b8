// Package cache provides bounded memoization for line lookups.
//
// It defines a generic Cache interface, an LRU implementation backed by
// hashicorp/golang-lru, a pass-through NopCache, and Middleware, which
// implements cache-aside reads: hits are served from the cache, misses call a
// loader once (concurrent misses for one key share a single load) and store
// whatever the loader returns.
package cache
