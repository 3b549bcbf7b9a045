// File: policy/pending.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Fixed-capacity FIFO of deferred buffer releases. NOT thread-safe: the
// queue is exclusively owned by one receive context and avoids locks in
// the hot path.

package policy

import (
	"github.com/momentics/hioload-iotlb/api"
)

// DefaultPendingCapacity is the pending-queue capacity used when a
// receive releaser is configured with Capacity 0.
const DefaultPendingCapacity = 1024

// Disposition says where a buffer goes once its covering sync completed.
type Disposition uint8

const (
	// DispositionFree returns the buffer to the system allocator.
	DispositionFree Disposition = iota
	// DispositionRecycle returns the buffer to the recycling pool. Chosen
	// for buffers that were cache-eligible but found the cache full.
	DispositionRecycle
)

// String returns the canonical short name of the disposition.
func (d Disposition) String() string {
	switch d {
	case DispositionFree:
		return "free"
	case DispositionRecycle:
		return "recycle"
	}
	return "unknown"
}

// PendingRelease holds one unmapped-but-not-yet-synced buffer together
// with its post-sync disposition.
type PendingRelease struct {
	Buf         *api.MappedBuffer
	Disposition Disposition
}

// PendingQueue is a bounded FIFO of PendingRelease entries. Capacity is
// fixed at construction; Push on a full queue is refused so the owner can
// flush first — the queue never silently grows or drops entries.
type PendingQueue struct {
	entries  []PendingRelease
	capacity int
}

// NewPendingQueue allocates a queue with the given fixed capacity.
func NewPendingQueue(capacity int) (*PendingQueue, error) {
	if capacity <= 0 {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "pending queue capacity must be positive").
			WithContext("capacity", capacity)
	}
	return &PendingQueue{
		entries:  make([]PendingRelease, 0, capacity),
		capacity: capacity,
	}, nil
}

// Full reports whether a Push would exceed capacity.
func (q *PendingQueue) Full() bool {
	return len(q.entries) >= q.capacity
}

// Push appends an entry. Returns ErrQueueOverflow when full; the caller
// must flush before retrying.
func (q *PendingQueue) Push(e PendingRelease) error {
	if q.Full() {
		return api.ErrQueueOverflow
	}
	q.entries = append(q.entries, e)
	return nil
}

// Len returns the number of queued entries.
func (q *PendingQueue) Len() int { return len(q.entries) }

// Cap returns the fixed capacity.
func (q *PendingQueue) Cap() int { return q.capacity }

// Drain applies fn to every entry in FIFO order, then clears the queue
// retaining its storage. FIFO order is not needed for correctness (the
// covering sync is domain-wide) but keeps release traces deterministic.
func (q *PendingQueue) Drain(fn func(PendingRelease)) {
	for i := range q.entries {
		fn(q.entries[i])
		q.entries[i] = PendingRelease{}
	}
	q.entries = q.entries[:0]
}
