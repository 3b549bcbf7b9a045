// File: policy/rx.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Receive pending-release policy: cache-first release of receive buffers
// with sync deferred to the end of the processing cycle or to a capacity
// threshold.

package policy

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/momentics/hioload-iotlb/api"
	"github.com/momentics/hioload-iotlb/iotlb"
)

// RxConfig wires a receive releaser to its domain and collaborators.
type RxConfig struct {
	// Coordinator drives unmap and sync. Required.
	Coordinator *iotlb.Coordinator
	// Domain is the invalidation domain of this receive queue. Required.
	Domain *iotlb.Domain
	// Sink receives buffers after their covering sync completed. Required.
	Sink api.ReleaseSink
	// Cache is the fast-path recycler of still-mapped buffers. Optional;
	// nil disables the fast path and every release goes through unmap.
	Cache api.Recycler
	// Capacity bounds the pending queue; 0 means DefaultPendingCapacity.
	Capacity int
	// Strict disables batching: unmap and sync per buffer, disposition
	// applied immediately. Resolved once at startup and injected here.
	Strict bool
	// Logger defaults to a no-op logger.
	Logger *zerolog.Logger
}

// RxStats aggregates receive policy counters.
type RxStats struct {
	CacheHits      uint64 // releases absorbed by the recycling cache
	Deferred       uint64 // releases queued pending a sync
	Flushes        uint64 // completed flushes (sync + dispositions)
	CapacityFlush  uint64 // flushes forced by a full pending queue
	StrictReleases uint64 // releases handled in strict mode
}

// RxReleaser is the receive-side release policy. Single-owner: one
// receive context drives Release and FlushCycle sequentially, so the
// pending queue needs no internal locking.
type RxReleaser struct {
	coord  *iotlb.Coordinator
	dom    *iotlb.Domain
	cache  api.Recycler
	sink   api.ReleaseSink
	queue  *PendingQueue
	strict bool
	log    zerolog.Logger

	stats RxStats
}

// NewRxReleaser validates cfg and returns a receive releaser.
func NewRxReleaser(cfg RxConfig) (*RxReleaser, error) {
	if cfg.Coordinator == nil || cfg.Domain == nil || cfg.Sink == nil {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "rx releaser requires coordinator, domain and sink")
	}
	capacity := cfg.Capacity
	if capacity == 0 {
		capacity = DefaultPendingCapacity
	}
	queue, err := NewPendingQueue(capacity)
	if err != nil {
		return nil, err
	}
	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}
	return &RxReleaser{
		coord:  cfg.Coordinator,
		dom:    cfg.Domain,
		cache:  cfg.Cache,
		sink:   cfg.Sink,
		queue:  queue,
		strict: cfg.Strict,
		log:    log,
	}, nil
}

// Release decides a receive buffer's fate.
//
// Cache-eligible and accepted: the buffer keeps its translation, the
// coordinator is never involved, and no pending entry exists. Otherwise
// the translation is removed without sync and the buffer waits in the
// pending queue until the next flush; when the queue is at capacity the
// flush happens first.
func (r *RxReleaser) Release(b *api.MappedBuffer, recyclable bool) error {
	if b == nil {
		return api.NewError(api.ErrCodeInvalidArgument, "release of nil buffer")
	}

	if recyclable && r.cache != nil && r.cache.TryPut(b) {
		r.stats.CacheHits++
		return nil
	}

	disp := DispositionFree
	if recyclable {
		// Cache-eligible but the cache was full: after the covering sync
		// the buffer goes back to the recycling pool, not the allocator.
		disp = DispositionRecycle
	}

	if r.strict {
		if err := r.coord.UnmapStrict(r.dom, b.Handle); err != nil {
			return fmt.Errorf("strict release: %w", err)
		}
		r.dispose(PendingRelease{Buf: b, Disposition: disp})
		r.stats.StrictReleases++
		return nil
	}

	if err := r.coord.UnmapNoSync(r.dom, b.Handle); err != nil {
		return fmt.Errorf("deferred release: %w", err)
	}

	if r.queue.Full() {
		r.stats.CapacityFlush++
		if err := r.flush(); err != nil {
			return err
		}
	}
	if err := r.queue.Push(PendingRelease{Buf: b, Disposition: disp}); err != nil {
		// Unreachable unless the capacity guard above is broken; treat as
		// a defect and force a flush rather than dropping the entry.
		r.log.Warn().Int("pending", r.queue.Len()).Msg("pending queue overflow past capacity guard")
		if ferr := r.flush(); ferr != nil {
			return ferr
		}
		return r.queue.Push(PendingRelease{Buf: b, Disposition: disp})
	}
	r.stats.Deferred++
	return nil
}

// FlushCycle is the unconditional end-of-cycle flush. The end of a
// processing cycle is a safe point: nothing later in the cycle references
// the held buffers.
func (r *RxReleaser) FlushCycle() error {
	return r.flush()
}

// Pending returns the current pending-queue length.
func (r *RxReleaser) Pending() int {
	return r.queue.Len()
}

// flush issues one sync covering every queued unmap, then applies each
// entry's disposition in FIFO order and clears the queue. On sync failure
// the queue is left intact: ownership must not transfer while the domain
// is dirty, and a later flush retries.
func (r *RxReleaser) flush() error {
	if r.queue.Len() == 0 {
		return nil
	}
	if err := r.coord.Sync(r.dom); err != nil {
		r.log.Error().
			Uint32("domain", uint32(r.dom.ID())).
			Int("pending", r.queue.Len()).
			Err(err).
			Msg("receive flush sync failed; pending releases retained")
		return err
	}
	r.queue.Drain(r.dispose)
	r.stats.Flushes++
	return nil
}

// dispose applies one entry's disposition. Only called after a covering
// sync returned nil.
func (r *RxReleaser) dispose(e PendingRelease) {
	switch e.Disposition {
	case DispositionRecycle:
		r.sink.Recycle(e.Buf)
	case DispositionFree:
		r.sink.Free(e.Buf)
	}
}

// Stats returns a snapshot of policy counters.
func (r *RxReleaser) Stats() RxStats {
	return r.stats
}

// Probe returns receive policy state for debug registries.
func (r *RxReleaser) Probe() map[string]any {
	return map[string]any{
		"cache_hits":     r.stats.CacheHits,
		"deferred":       r.stats.Deferred,
		"flushes":        r.stats.Flushes,
		"capacity_flush": r.stats.CapacityFlush,
		"pending":        r.queue.Len(),
		"capacity":       r.queue.Cap(),
		"strict":         r.strict,
	}
}
