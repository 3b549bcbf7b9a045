package sim

import (
	"testing"

	"github.com/momentics/hioload-iotlb/backend"
	"github.com/momentics/hioload-iotlb/control"
)

func testConfig(strict bool) Config {
	return Config{
		Backend:       backend.NewSoftware(backend.SoftwareConfig{}),
		Strict:        strict,
		DomainID:      1,
		PendingCap:    128,
		CacheCap:      32,
		BufferSize:    1024,
		TxUnits:       50,
		TxFragments:   3,
		RxCycles:      10,
		RxPerCycle:    64,
		RecyclablePct: 75,
	}
}

func TestWorkloadBatchedAmortizesSyncs(t *testing.T) {
	w, err := New(testConfig(false))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rep, err := w.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.TxUnits != 50 || rep.TxFragments != 150 {
		t.Errorf("tx = %d units / %d fragments, want 50/150", rep.TxUnits, rep.TxFragments)
	}
	if rep.RxBuffers != 640 {
		t.Errorf("rx buffers = %d, want 640", rep.RxBuffers)
	}
	// Batching must beat one hardware op per unmap by a wide margin.
	if rep.HardwareOps >= rep.Unmaps {
		t.Errorf("no amortization: %d hardware ops for %d unmaps", rep.HardwareOps, rep.Unmaps)
	}
	// Ceiling: one sync per send unit plus at most two per rx cycle.
	maxOps := rep.TxUnits + uint64(2*10)
	if rep.HardwareOps > maxOps {
		t.Errorf("hardware ops = %d, want at most %d", rep.HardwareOps, maxOps)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if live := w.mapper.Live(); live != 0 {
		t.Errorf("%d translations leaked after Close", live)
	}
}

func TestWorkloadStrictSyncsPerOperation(t *testing.T) {
	w, err := New(testConfig(true))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rep, err := w.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// Strict mode issues one hardware op per unmap; nothing coalesces in
	// a single-threaded run.
	if rep.HardwareOps != rep.Unmaps {
		t.Errorf("strict mode: %d hardware ops for %d unmaps", rep.HardwareOps, rep.Unmaps)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestWorkloadPublishesProbes(t *testing.T) {
	cfg := testConfig(false)
	cfg.Runtime = control.NewRuntime()
	w, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := w.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	stats := cfg.Runtime.Stats()
	for _, key := range []string{"coordinator", "tx", "rx", "cache", "iotlb.unmaps"} {
		if _, ok := stats[key]; !ok {
			t.Errorf("runtime stats missing %q", key)
		}
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
