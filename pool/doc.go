// Package pool
// Author: momentics <momentics@gmail.com>
//
// Memory layer for hioload-iotlb: the recycling cache of still-mapped
// receive buffers (the fast path that avoids unmap entirely) and the
// DMA-able backing arena, mmap-based on Linux with a heap fallback
// elsewhere. See recycler.go and arena_linux.go for implementation details.
package pool
