// Package policy — zero-alloc send-unit batching without locks.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// SendUnit groups the mapping handles of one logical send unit (all
// fragments of one transmitted message). Ephemeral: alive only while the
// unit's completion is processed. NOT thread-safe.

package policy

import "github.com/momentics/hioload-iotlb/api"

// SendUnit is a minimal zero-alloc batch of api.MappingHandle.
type SendUnit struct {
	handles []api.MappingHandle
}

// NewSendUnit creates a new unit with given fragment capacity.
func NewSendUnit(capacity int) *SendUnit {
	return &SendUnit{
		handles: make([]api.MappingHandle, 0, capacity),
	}
}

// Append adds a fragment's handle to the unit.
func (u *SendUnit) Append(h api.MappingHandle) {
	u.handles = append(u.handles, h)
}

// Len returns number of fragments in the unit.
func (u *SendUnit) Len() int {
	return len(u.handles)
}

// Get retrieves the handle at index.
func (u *SendUnit) Get(idx int) api.MappingHandle {
	return u.handles[idx]
}

// Slice returns the underlying slice.
func (u *SendUnit) Slice() []api.MappingHandle {
	return u.handles
}

// Reset clears the unit retaining underlying storage.
func (u *SendUnit) Reset() {
	u.handles = u.handles[:0]
}

var _ api.Batch[api.MappingHandle] = (*SendUnit)(nil)
