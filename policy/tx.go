// File: policy/tx.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Transmit batch policy: one sync per completed send unit instead of one
// per fragment, with release of the unit's backing storage sequenced
// strictly after that sync.

package policy

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/momentics/hioload-iotlb/api"
	"github.com/momentics/hioload-iotlb/iotlb"
)

// TxConfig wires a transmit batcher to its domain.
type TxConfig struct {
	// Coordinator drives unmap and sync. Required.
	Coordinator *iotlb.Coordinator
	// Domain is the invalidation domain all fragments belong to. Required.
	Domain *iotlb.Domain
	// Strict disables batching: every fragment is unmapped and synced
	// individually. Resolved once at startup and injected here.
	Strict bool
	// Logger defaults to a no-op logger.
	Logger *zerolog.Logger
}

// TxStats aggregates transmit policy counters.
type TxStats struct {
	Units     uint64 // completed send units
	Fragments uint64 // fragments unmapped
}

// TxBatcher completes send units. Single-owner: one transmit context
// drives one batcher sequentially.
type TxBatcher struct {
	coord  *iotlb.Coordinator
	dom    *iotlb.Domain
	strict bool
	log    zerolog.Logger

	units     uint64
	fragments uint64
}

// NewTxBatcher validates cfg and returns a transmit batcher.
func NewTxBatcher(cfg TxConfig) (*TxBatcher, error) {
	if cfg.Coordinator == nil || cfg.Domain == nil {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "tx batcher requires coordinator and domain")
	}
	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}
	return &TxBatcher{
		coord:  cfg.Coordinator,
		dom:    cfg.Domain,
		strict: cfg.Strict,
		log:    log,
	}, nil
}

// CompleteSendUnit unmaps every fragment of the unit, issues one sync if
// the unit was non-empty, and only then invokes release. The release
// callback stands for freeing the object owning the fragments; running it
// before the sync returned would leave hardware able to translate
// addresses of freed memory, so CompleteSendUnit never does.
//
// Error and cleanup paths go through this same entry point: on any error
// release is not invoked and the caller must keep the unit alive until a
// later sync on the domain succeeds.
func (b *TxBatcher) CompleteSendUnit(unit *SendUnit, release func()) error {
	if unit == nil || unit.Len() == 0 {
		if release != nil {
			release()
		}
		return nil
	}

	for i, h := range unit.Slice() {
		var err error
		if b.strict {
			err = b.coord.UnmapStrict(b.dom, h)
		} else {
			err = b.coord.UnmapNoSync(b.dom, h)
		}
		if err != nil {
			return fmt.Errorf("send unit fragment %d/%d: %w", i+1, unit.Len(), err)
		}
		b.fragments++
	}

	if !b.strict {
		if err := b.coord.Sync(b.dom); err != nil {
			b.log.Error().
				Uint32("domain", uint32(b.dom.ID())).
				Int("fragments", unit.Len()).
				Err(err).
				Msg("send unit sync failed; backing storage retained")
			return err
		}
	}

	b.units++
	if release != nil {
		release()
	}
	return nil
}

// Stats returns a snapshot of policy counters.
func (b *TxBatcher) Stats() TxStats {
	return TxStats{Units: b.units, Fragments: b.fragments}
}

// Probe returns transmit policy state for debug registries.
func (b *TxBatcher) Probe() map[string]any {
	return map[string]any{
		"units":     b.units,
		"fragments": b.fragments,
		"strict":    b.strict,
	}
}
