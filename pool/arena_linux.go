// File: pool/arena_linux.go
//go:build linux
// +build linux

//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// mmap-backed arena for DMA-able buffers. Page-granular anonymous
// mappings keep regions individually returnable to the kernel and give
// the mapper page-aligned addresses to translate.

package pool

import (
	"fmt"
	"os"
	"sync/atomic"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-iotlb/api"
)

type mmapArena struct {
	pageSize int

	allocs   atomic.Uint64
	frees    atomic.Uint64
	liveSize atomic.Int64
}

// NewArena returns the platform arena. On Linux every allocation is an
// anonymous private mapping rounded up to whole pages.
func NewArena() api.Arena {
	return &mmapArena{pageSize: os.Getpagesize()}
}

func (a *mmapArena) Alloc(size int) ([]byte, error) {
	if size <= 0 {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "arena alloc size must be positive").
			WithContext("size", size)
	}
	rounded := (size + a.pageSize - 1) &^ (a.pageSize - 1)
	buf, err := unix.Mmap(-1, 0, rounded,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("arena mmap %d bytes: %w: %w", rounded, api.ErrArenaExhausted, err)
	}
	a.allocs.Add(1)
	a.liveSize.Add(int64(rounded))
	return buf, nil
}

func (a *mmapArena) Free(buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	if err := unix.Munmap(buf); err != nil {
		return fmt.Errorf("arena munmap: %w", err)
	}
	a.frees.Add(1)
	a.liveSize.Add(-int64(len(buf)))
	return nil
}
