// File: internal/sim/sink.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Release sink for the simulated receive path. Freed buffers go back to
// the arena; recycled buffers land on a freelist the workload remaps for
// later cycles. Single-owner like the releaser that drives it.

package sim

import (
	"github.com/momentics/hioload-iotlb/api"
)

type releaseSink struct {
	arena    api.Arena
	freelist [][]byte
	recycled uint64
	freed    uint64
}

func newReleaseSink(arena api.Arena) *releaseSink {
	return &releaseSink{arena: arena}
}

// Recycle keeps the backing storage for reuse. The translation is gone
// at this point, so reuse goes through a fresh Map.
func (s *releaseSink) Recycle(b *api.MappedBuffer) {
	s.freelist = append(s.freelist, b.Data)
	s.recycled++
}

// Free returns the backing storage to the arena.
func (s *releaseSink) Free(b *api.MappedBuffer) {
	_ = s.arena.Free(b.Data)
	s.freed++
}

// takeBuffer pops a freelisted region, if any.
func (s *releaseSink) takeBuffer() ([]byte, bool) {
	if len(s.freelist) == 0 {
		return nil, false
	}
	buf := s.freelist[len(s.freelist)-1]
	s.freelist = s.freelist[:len(s.freelist)-1]
	return buf, true
}

var _ api.ReleaseSink = (*releaseSink)(nil)
