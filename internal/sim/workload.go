// File: internal/sim/workload.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Workload drives one transmit context and one receive context over a
// shared invalidation domain, the way a NIC driver drives one tx and one
// rx queue of the same device attachment.

package sim

import (
	"fmt"

	"github.com/eapache/queue"
	"github.com/rs/zerolog"

	"github.com/momentics/hioload-iotlb/api"
	"github.com/momentics/hioload-iotlb/control"
	"github.com/momentics/hioload-iotlb/iotlb"
	"github.com/momentics/hioload-iotlb/policy"
	"github.com/momentics/hioload-iotlb/pool"
)

// Config shapes one simulation run.
type Config struct {
	// Backend is the invalidation backend under test. Required.
	Backend api.InvalidationBackend
	// Strict selects per-operation invalidation for both policies.
	Strict bool
	// DomainID is the simulated device attachment's domain.
	DomainID api.DomainID

	PendingCap int
	CacheCap   int
	BufferSize int

	TxUnits     int
	TxFragments int

	RxCycles      int
	RxPerCycle    int
	RecyclablePct int

	// Logger defaults to a no-op logger.
	Logger *zerolog.Logger
	// Runtime, when set, receives debug probes and metrics.
	Runtime *control.Runtime
}

// Report summarizes one run.
type Report struct {
	TxUnits     uint64
	TxFragments uint64
	RxBuffers   uint64
	CacheHits   uint64
	Deferred    uint64

	Unmaps      uint64
	HardwareOps uint64

	// SyncsPerKBuffers is the amortization figure: completed hardware
	// invalidations per thousand processed buffers.
	SyncsPerKBuffers float64
}

// Workload owns the full simulated device stack.
type Workload struct {
	cfg   Config
	log   zerolog.Logger
	arena api.Arena

	mapper *Mapper
	coord  *iotlb.Coordinator
	dom    *iotlb.Domain
	tx     *policy.TxBatcher
	rx     *policy.RxReleaser
	cache  *pool.Cache
	sink   *releaseSink
}

// txEvent is one completed send unit waiting in the completion queue.
type txEvent struct {
	unit *policy.SendUnit
	data [][]byte
}

// New builds the workload stack around cfg.Backend.
func New(cfg Config) (*Workload, error) {
	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}

	mapper := NewMapper()
	coord, err := iotlb.New(iotlb.Config{Mapper: mapper, Backend: cfg.Backend, Logger: &log})
	if err != nil {
		return nil, err
	}
	dom := coord.AttachDomain(cfg.DomainID)

	tx, err := policy.NewTxBatcher(policy.TxConfig{
		Coordinator: coord,
		Domain:      dom,
		Strict:      cfg.Strict,
		Logger:      &log,
	})
	if err != nil {
		return nil, err
	}

	cache, err := pool.NewCache(cfg.CacheCap)
	if err != nil {
		return nil, err
	}
	arena := pool.NewArena()
	sink := newReleaseSink(arena)

	rx, err := policy.NewRxReleaser(policy.RxConfig{
		Coordinator: coord,
		Domain:      dom,
		Sink:        sink,
		Cache:       cache,
		Capacity:    cfg.PendingCap,
		Strict:      cfg.Strict,
		Logger:      &log,
	})
	if err != nil {
		return nil, err
	}

	w := &Workload{
		cfg:    cfg,
		log:    log,
		arena:  arena,
		mapper: mapper,
		coord:  coord,
		dom:    dom,
		tx:     tx,
		rx:     rx,
		cache:  cache,
		sink:   sink,
	}
	if cfg.Runtime != nil {
		cfg.Runtime.RegisterDebugProbe("coordinator", func() any { return coord.Probe() })
		cfg.Runtime.RegisterDebugProbe("tx", func() any { return tx.Probe() })
		cfg.Runtime.RegisterDebugProbe("rx", func() any { return rx.Probe() })
		cfg.Runtime.RegisterDebugProbe("cache", func() any { return cache.Probe() })
	}
	return w, nil
}

// Run executes the transmit phase and then the receive cycles.
func (w *Workload) Run() (Report, error) {
	if err := w.runTx(); err != nil {
		return Report{}, fmt.Errorf("tx phase: %w", err)
	}
	if err := w.runRx(); err != nil {
		return Report{}, fmt.Errorf("rx phase: %w", err)
	}
	return w.report(), nil
}

// runTx maps send units, parks their completions on a FIFO the way a
// completion ring would, then drains it through the batcher.
func (w *Workload) runTx() error {
	completions := queue.New()

	for u := 0; u < w.cfg.TxUnits; u++ {
		unit := policy.NewSendUnit(w.cfg.TxFragments)
		data := make([][]byte, 0, w.cfg.TxFragments)
		for f := 0; f < w.cfg.TxFragments; f++ {
			buf, err := w.arena.Alloc(w.cfg.BufferSize)
			if err != nil {
				return err
			}
			h, err := w.mapper.Map(w.cfg.DomainID, buf, api.DirToDevice, api.KindSingle)
			if err != nil {
				return err
			}
			unit.Append(h)
			data = append(data, buf)
		}
		completions.Add(txEvent{unit: unit, data: data})
	}

	for completions.Length() > 0 {
		ev := completions.Remove().(txEvent)
		err := w.tx.CompleteSendUnit(ev.unit, func() {
			for _, buf := range ev.data {
				_ = w.arena.Free(buf)
			}
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// runRx processes receive cycles: buffers come from the recycling cache
// when possible, are "filled" by the simulated device, and released.
func (w *Workload) runRx() error {
	for cycle := 0; cycle < w.cfg.RxCycles; cycle++ {
		for i := 0; i < w.cfg.RxPerCycle; i++ {
			buf, err := w.nextRxBuffer()
			if err != nil {
				return err
			}
			recyclable := (i*100)/w.cfg.RxPerCycle < w.cfg.RecyclablePct
			if err := w.rx.Release(buf, recyclable); err != nil {
				return err
			}
		}
		if err := w.rx.FlushCycle(); err != nil {
			return err
		}
	}
	return nil
}

// nextRxBuffer prefers a cached mapped buffer, then freelisted storage,
// then the arena.
func (w *Workload) nextRxBuffer() (*api.MappedBuffer, error) {
	if b, ok := w.cache.TryGet(); ok {
		return b, nil
	}
	data, ok := w.sink.takeBuffer()
	if !ok {
		var err error
		data, err = w.arena.Alloc(w.cfg.BufferSize)
		if err != nil {
			return nil, err
		}
	}
	h, err := w.mapper.Map(w.cfg.DomainID, data, api.DirFromDevice, api.KindPage)
	if err != nil {
		return nil, err
	}
	return &api.MappedBuffer{Handle: h, Data: data}, nil
}

// Close unwinds the recycling cache: cached buffers still carry live
// translations that must be removed and synced before their memory is
// returned.
func (w *Workload) Close() error {
	var firstErr error
	w.cache.Drain(func(b *api.MappedBuffer) {
		if err := w.coord.UnmapNoSync(w.dom, b.Handle); err != nil && firstErr == nil {
			firstErr = err
		}
	})
	if firstErr != nil {
		return firstErr
	}
	if err := w.coord.Sync(w.dom); err != nil {
		return err
	}
	// Covered by the sync above; storage may now be reclaimed.
	return nil
}

func (w *Workload) report() Report {
	cs := w.coord.Stats()
	ts := w.tx.Stats()
	rs := w.rx.Stats()

	total := ts.Fragments + rs.CacheHits + rs.Deferred + rs.StrictReleases
	rep := Report{
		TxUnits:     ts.Units,
		TxFragments: ts.Fragments,
		RxBuffers:   rs.CacheHits + rs.Deferred + rs.StrictReleases,
		CacheHits:   rs.CacheHits,
		Deferred:    rs.Deferred,
		Unmaps:      cs.Unmaps,
		HardwareOps: cs.HardwareOps,
	}
	if total > 0 {
		rep.SyncsPerKBuffers = float64(cs.HardwareOps) * 1000 / float64(total)
	}

	if w.cfg.Runtime != nil {
		m := w.cfg.Runtime.Metrics
		m.Inc("sim.tx_units", int64(ts.Units))
		m.Inc("sim.rx_buffers", int64(rep.RxBuffers))
		m.Inc("iotlb.unmaps", int64(cs.Unmaps))
		m.Inc("iotlb.hardware_ops", int64(cs.HardwareOps))
		m.Set("sim.syncs_per_k_buffers", rep.SyncsPerKBuffers)
	}
	return rep
}
