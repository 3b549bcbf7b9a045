// File: pool/recycler.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Bounded recycling cache of mapped receive buffers.
//
// A cached buffer keeps its device translation valid, so reuse costs
// neither a map nor an invalidation. The cache holds live translations
// regardless of domain-wide invalidations issued for removed entries:
// a domain sync covers removals only, never entries still installed.

package pool

import (
	"sync/atomic"

	"github.com/momentics/hioload-iotlb/api"
)

// Cache is a fixed-capacity api.Recycler backed by a buffered channel.
// TryPut and TryGet never block.
type Cache struct {
	ch chan *api.MappedBuffer

	puts    atomic.Uint64
	rejects atomic.Uint64
	hits    atomic.Uint64
	misses  atomic.Uint64
}

// NewCache allocates a cache holding up to capacity mapped buffers.
func NewCache(capacity int) (*Cache, error) {
	if capacity < 0 {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "cache capacity must not be negative").
			WithContext("capacity", capacity)
	}
	return &Cache{ch: make(chan *api.MappedBuffer, capacity)}, nil
}

// TryPut offers a mapped buffer; returns false when the cache is full.
func (c *Cache) TryPut(b *api.MappedBuffer) bool {
	select {
	case c.ch <- b:
		c.puts.Add(1)
		return true
	default:
		c.rejects.Add(1)
		return false
	}
}

// TryGet returns a cached mapped buffer, or false when empty.
func (c *Cache) TryGet() (*api.MappedBuffer, bool) {
	select {
	case b := <-c.ch:
		c.hits.Add(1)
		return b, true
	default:
		c.misses.Add(1)
		return nil, false
	}
}

// Len reports the number of cached buffers.
func (c *Cache) Len() int { return len(c.ch) }

// Cap reports the fixed capacity.
func (c *Cache) Cap() int { return cap(c.ch) }

// Drain hands every cached buffer to fn and empties the cache. Drained
// buffers still carry live translations: the caller owns unmapping them
// and syncing their domain before the memory is reused. Used on teardown.
func (c *Cache) Drain(fn func(*api.MappedBuffer)) {
	for {
		select {
		case b := <-c.ch:
			fn(b)
		default:
			return
		}
	}
}

// Probe returns cache state for debug registries.
func (c *Cache) Probe() map[string]any {
	return map[string]any{
		"len":     c.Len(),
		"cap":     c.Cap(),
		"puts":    c.puts.Load(),
		"rejects": c.rejects.Load(),
		"hits":    c.hits.Load(),
		"misses":  c.misses.Load(),
	}
}

var _ api.Recycler = (*Cache)(nil)
