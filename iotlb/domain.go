// File: iotlb/domain.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Invalidation domain state. A Domain is process-wide for the lifetime of
// its device attachment and is shared by every transmit and receive context
// using that attachment.

package iotlb

import (
	"sync"
	"sync/atomic"

	"github.com/momentics/hioload-iotlb/api"
)

// Domain tracks unsynced-removal state for one hardware invalidation domain.
//
// Dirtiness is kept as a pair of monotonic counters:
// pending counts recorded unmaps, synced is the highest pending value known
// to be covered by a completed hardware invalidation. pending > synced means
// dirty. The counter form lets overlapping Sync callers decide whether an
// invalidation that completed while they waited already covers their unmaps.
type Domain struct {
	id      api.DomainID
	pending atomic.Uint64
	synced  atomic.Uint64

	// submitMu serializes hardware submissions for this domain.
	submitMu sync.Mutex
}

// ID returns the hardware domain identifier.
func (d *Domain) ID() api.DomainID { return d.id }

// Dirty reports whether at least one unsynced removal is outstanding.
func (d *Domain) Dirty() bool {
	return d.pending.Load() > d.synced.Load()
}

// noteUnmap records one removed translation. Called after the mapper has
// destroyed the entry, so any sync observing the new pending value covers it.
func (d *Domain) noteUnmap() {
	d.pending.Add(1)
}
