// File: internal/sim/mapper.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// In-memory translation table standing in for the IOMMU page-table layer.
// Creates and destroys entries only; invalidation visibility is the
// coordinator's concern, exactly like the real split.

package sim

import (
	"os"
	"sync"

	"github.com/momentics/hioload-iotlb/api"
)

// Mapper is a thread-safe in-memory api.Mapper.
type Mapper struct {
	mu       sync.Mutex
	nextAddr uint64
	live     map[api.DeviceAddr]struct{}
	pageSize uint64
}

// NewMapper creates an empty translation table.
func NewMapper() *Mapper {
	return &Mapper{
		nextAddr: 0x10000,
		live:     make(map[api.DeviceAddr]struct{}),
		pageSize: uint64(os.Getpagesize()),
	}
}

// Map installs a translation and returns its handle.
func (m *Mapper) Map(domain api.DomainID, buf []byte, dir api.Direction, kind api.MappingKind) (api.MappingHandle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	addr := m.nextAddr
	span := uint64(len(buf))
	switch kind {
	case api.KindPage:
		// Page mappings get page-aligned device addresses spanning
		// whole pages.
		addr = (addr + m.pageSize - 1) &^ (m.pageSize - 1)
		span = (span + m.pageSize - 1) &^ (m.pageSize - 1)
	case api.KindSingle:
		// Byte-granular, no alignment requirement.
	default:
		return api.MappingHandle{}, api.NewError(api.ErrCodeInvalidArgument, "unknown mapping kind").
			WithContext("kind", kind)
	}
	m.nextAddr = addr + span

	h := api.MappingHandle{
		Domain: domain,
		Addr:   api.DeviceAddr(addr),
		Len:    len(buf),
		Dir:    dir,
		Kind:   kind,
	}
	m.live[h.Addr] = struct{}{}
	return h, nil
}

// Unmap destroys a translation entry.
func (m *Mapper) Unmap(h api.MappingHandle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.live[h.Addr]; !ok {
		return api.ErrDoubleUnmap
	}
	delete(m.live, h.Addr)
	return nil
}

// Live returns the number of installed translations.
func (m *Mapper) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.live)
}

var _ api.Mapper = (*Mapper)(nil)
