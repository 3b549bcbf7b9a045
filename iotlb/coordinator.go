// File: iotlb/coordinator.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Domain invalidation coordinator: UnmapNoSync / Sync plus the strict
// per-operation variant used when batching is disabled.

package iotlb

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/momentics/hioload-iotlb/api"
)

// Config wires the coordinator's collaborators.
type Config struct {
	// Mapper destroys translation entries. Required.
	Mapper api.Mapper
	// Backend submits domain-selective invalidations. Required.
	Backend api.InvalidationBackend
	// Logger receives safety-relevant events. Defaults to a no-op logger.
	Logger *zerolog.Logger
}

// Stats aggregates coordinator activity counters.
type Stats struct {
	Unmaps       uint64 // translations removed via UnmapNoSync/UnmapStrict
	Syncs        uint64 // Sync calls that found the domain dirty
	SyncNoops    uint64 // Sync calls on a clean domain
	SyncElided   uint64 // dirty Sync calls coalesced into another caller's submission
	HardwareOps  uint64 // invalidations actually submitted to the backend
	SyncFailures uint64 // submissions the backend rejected
}

// Coordinator tracks per-domain unsynced-removal state and drives the
// invalidation backend. Safe for concurrent use from independent transmit
// and receive contexts sharing a domain.
type Coordinator struct {
	mapper  api.Mapper
	backend api.InvalidationBackend
	log     zerolog.Logger

	mu      sync.Mutex
	domains map[api.DomainID]*Domain

	unmaps       atomic.Uint64
	syncs        atomic.Uint64
	syncNoops    atomic.Uint64
	syncElided   atomic.Uint64
	hardwareOps  atomic.Uint64
	syncFailures atomic.Uint64
}

// New validates cfg and returns a coordinator.
func New(cfg Config) (*Coordinator, error) {
	if cfg.Mapper == nil {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "coordinator requires a mapper")
	}
	if cfg.Backend == nil {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "coordinator requires an invalidation backend")
	}
	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}
	return &Coordinator{
		mapper:  cfg.Mapper,
		backend: cfg.Backend,
		log:     log,
		domains: make(map[api.DomainID]*Domain),
	}, nil
}

// AttachDomain returns the shared Domain for id, creating it on first use.
// The same *Domain is handed to every context using the attachment.
func (c *Coordinator) AttachDomain(id api.DomainID) *Domain {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.domains[id]
	if !ok {
		d = &Domain{id: id}
		c.domains[id] = d
	}
	return d
}

// UnmapNoSync removes the translation for h without touching hardware
// invalidation state and marks the domain dirty. The backing memory must
// not be released until a Sync on d issued after this call returns nil.
func (c *Coordinator) UnmapNoSync(d *Domain, h api.MappingHandle) error {
	if h.Domain != d.ID() {
		return api.NewError(api.ErrCodeInvalidArgument, "handle does not belong to domain").
			WithContext("handle_domain", h.Domain).
			WithContext("domain", d.ID())
	}
	if err := c.mapper.Unmap(h); err != nil {
		return fmt.Errorf("unmap %s @%#x: %w", h.Kind, uint64(h.Addr), err)
	}
	d.noteUnmap()
	c.unmaps.Add(1)
	return nil
}

// UnmapStrict is the synchronous variant used when batching is disabled:
// the removal is made visible to hardware before UnmapStrict returns, so
// the backing memory is immediately releasable.
func (c *Coordinator) UnmapStrict(d *Domain, h api.MappingHandle) error {
	if err := c.UnmapNoSync(d, h); err != nil {
		return err
	}
	return c.Sync(d)
}

// Sync makes every removal recorded on d before this call visible to
// hardware. On a clean domain it returns immediately without a hardware
// operation. Overlapping calls on one domain coalesce: a caller whose
// removals were covered by a submission that completed while it waited
// returns without submitting again.
//
// A non-nil return means the backend refused or failed the invalidation;
// the domain stays dirty and the caller must not release any held memory.
func (c *Coordinator) Sync(d *Domain) error {
	goal := d.pending.Load()
	if d.synced.Load() >= goal {
		c.syncNoops.Add(1)
		return nil
	}
	c.syncs.Add(1)

	d.submitMu.Lock()
	defer d.submitMu.Unlock()
	if d.synced.Load() >= goal {
		c.syncElided.Add(1)
		return nil
	}

	// Everything unmapped before this point is covered by the submission.
	covered := d.pending.Load()
	c.hardwareOps.Add(1)
	if err := c.backend.Invalidate(d.ID(), api.HintSkipWalkCache); err != nil {
		c.syncFailures.Add(1)
		c.log.Error().
			Uint32("domain", uint32(d.ID())).
			Str("backend", c.backend.Name()).
			Err(err).
			Msg("domain invalidation failed; memory release must not proceed")
		return fmt.Errorf("invalidate domain %d: %w: %w", d.ID(), api.ErrInvalidationFailed, err)
	}
	d.synced.Store(covered)
	return nil
}

// Stats returns a snapshot of activity counters.
func (c *Coordinator) Stats() Stats {
	return Stats{
		Unmaps:       c.unmaps.Load(),
		Syncs:        c.syncs.Load(),
		SyncNoops:    c.syncNoops.Load(),
		SyncElided:   c.syncElided.Load(),
		HardwareOps:  c.hardwareOps.Load(),
		SyncFailures: c.syncFailures.Load(),
	}
}

// Probe returns coordinator state for debug registries.
func (c *Coordinator) Probe() map[string]any {
	s := c.Stats()
	return map[string]any{
		"backend":       c.backend.Name(),
		"unmaps":        s.Unmaps,
		"syncs":         s.Syncs,
		"sync_noops":    s.SyncNoops,
		"sync_elided":   s.SyncElided,
		"hardware_ops":  s.HardwareOps,
		"sync_failures": s.SyncFailures,
	}
}
