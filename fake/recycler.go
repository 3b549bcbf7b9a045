// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake recycler with a fixed acceptance budget for testing cache
// interaction of the receive release policy.

package fake

import (
	"github.com/momentics/hioload-iotlb/api"
)

// Recycler is a fake implementation of api.Recycler that accepts at most
// Capacity buffers. Single-context use only, like the policy that owns it.
type Recycler struct {
	Capacity int
	items    []*api.MappedBuffer
	putCalls int
	rejects  int
}

// TryPut accepts the buffer while capacity remains.
func (r *Recycler) TryPut(b *api.MappedBuffer) bool {
	r.putCalls++
	if len(r.items) >= r.Capacity {
		r.rejects++
		return false
	}
	r.items = append(r.items, b)
	return true
}

// TryGet returns the most recently cached buffer.
func (r *Recycler) TryGet() (*api.MappedBuffer, bool) {
	if len(r.items) == 0 {
		return nil, false
	}
	b := r.items[len(r.items)-1]
	r.items = r.items[:len(r.items)-1]
	return b, true
}

// Len reports the number of cached buffers.
func (r *Recycler) Len() int { return len(r.items) }

// PutCalls returns the number of TryPut attempts.
func (r *Recycler) PutCalls() int { return r.putCalls }

// Rejects returns the number of TryPut refusals.
func (r *Recycler) Rejects() int { return r.rejects }
