// File: api/recycler.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Fast-path recycling cache and end-of-life sinks for receive buffers.

package api

// Recycler is the hot-path cache of still-mapped buffers. A buffer the
// recycler accepts keeps its translation valid and never interacts with
// the invalidation coordinator.
type Recycler interface {
	// TryPut offers a mapped buffer to the cache. Returns false when the
	// cache is full; ownership stays with the caller in that case.
	TryPut(b *MappedBuffer) bool

	// TryGet returns a cached mapped buffer, or false when empty.
	TryGet() (*MappedBuffer, bool)

	// Len reports the number of cached buffers.
	Len() int
}

// ReleaseSink receives buffers after their translations have been removed
// and a covering domain invalidation has completed. The split mirrors the
// two dispositions of a deferred release: back to the recycling pool, or
// back to the system allocator.
type ReleaseSink interface {
	// Recycle returns an unmapped buffer to the recycling pool.
	Recycle(b *MappedBuffer)

	// Free returns an unmapped buffer to the system allocator.
	Free(b *MappedBuffer)
}

// Arena allocates DMA-able backing storage for mapped buffers.
type Arena interface {
	// Alloc returns a zeroed region of at least size bytes.
	Alloc(size int) ([]byte, error)

	// Free releases a region previously returned by Alloc.
	Free(buf []byte) error
}
