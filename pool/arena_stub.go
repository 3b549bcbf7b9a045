// File: pool/arena_stub.go
//go:build !linux
// +build !linux

//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Heap arena fallback for platforms without the mmap path.

package pool

import (
	"github.com/momentics/hioload-iotlb/api"
)

type heapArena struct{}

// NewArena returns the platform arena. Off Linux it is plain heap
// allocation; the garbage collector reclaims freed regions.
func NewArena() api.Arena {
	return heapArena{}
}

func (heapArena) Alloc(size int) ([]byte, error) {
	if size <= 0 {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "arena alloc size must be positive").
			WithContext("size", size)
	}
	return make([]byte, size), nil
}

func (heapArena) Free(buf []byte) error { return nil }
