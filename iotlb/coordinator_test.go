package iotlb_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/momentics/hioload-iotlb/api"
	"github.com/momentics/hioload-iotlb/fake"
	"github.com/momentics/hioload-iotlb/iotlb"
)

func newCoordinator(t *testing.T, dev *fake.Device) *iotlb.Coordinator {
	t.Helper()
	c, err := iotlb.New(iotlb.Config{Mapper: dev, Backend: dev})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func mapOne(t *testing.T, dev *fake.Device, domain api.DomainID) api.MappingHandle {
	t.Helper()
	h, err := dev.Map(domain, make([]byte, 2048), api.DirFromDevice, api.KindPage)
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	return h
}

func TestNewValidatesCollaborators(t *testing.T) {
	dev := fake.NewDevice()
	if _, err := iotlb.New(iotlb.Config{Backend: dev}); err == nil {
		t.Error("expected error for missing mapper")
	}
	if _, err := iotlb.New(iotlb.Config{Mapper: dev}); err == nil {
		t.Error("expected error for missing backend")
	}
}

func TestSyncCleanDomainIsNoop(t *testing.T) {
	dev := fake.NewDevice()
	c := newCoordinator(t, dev)
	dom := c.AttachDomain(1)

	for i := 0; i < 3; i++ {
		if err := c.Sync(dom); err != nil {
			t.Fatalf("Sync on clean domain: %v", err)
		}
	}
	if got := dev.InvalidateCalls(1); got != 0 {
		t.Errorf("expected 0 hardware ops on clean domain, got %d", got)
	}
	if s := c.Stats(); s.SyncNoops != 3 {
		t.Errorf("expected 3 sync noops, got %d", s.SyncNoops)
	}
}

func TestUnmapNoSyncThenSync(t *testing.T) {
	dev := fake.NewDevice()
	c := newCoordinator(t, dev)
	dom := c.AttachDomain(1)
	h := mapOne(t, dev, 1)

	if err := c.UnmapNoSync(dom, h); err != nil {
		t.Fatalf("UnmapNoSync: %v", err)
	}
	if got := dev.InvalidateCalls(1); got != 0 {
		t.Errorf("UnmapNoSync must not touch hardware, got %d ops", got)
	}
	if !dom.Dirty() {
		t.Error("domain should be dirty after UnmapNoSync")
	}

	if err := c.Sync(dom); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if dom.Dirty() {
		t.Error("domain should be clean after Sync")
	}
	if got := dev.InvalidateCalls(1); got != 1 {
		t.Errorf("expected exactly 1 hardware op, got %d", got)
	}
	if got := dev.UnsyncedCount(1); got != 0 {
		t.Errorf("expected empty unsynced set, got %d entries", got)
	}

	dev.Free(&api.MappedBuffer{Handle: h})
	if v := dev.Violations(); len(v) != 0 {
		t.Errorf("release after sync flagged as violation: %v", v)
	}
}

func TestSyncUsesSkipWalkCacheHint(t *testing.T) {
	dev := fake.NewDevice()
	c := newCoordinator(t, dev)
	dom := c.AttachDomain(7)
	h := mapOne(t, dev, 7)

	if err := c.UnmapNoSync(dom, h); err != nil {
		t.Fatalf("UnmapNoSync: %v", err)
	}
	if err := c.Sync(dom); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	for _, hint := range dev.Hints() {
		if hint != api.HintSkipWalkCache {
			t.Errorf("expected HintSkipWalkCache, got %v", hint)
		}
	}
}

func TestUnmapStrict(t *testing.T) {
	dev := fake.NewDevice()
	c := newCoordinator(t, dev)
	dom := c.AttachDomain(1)
	h := mapOne(t, dev, 1)

	if err := c.UnmapStrict(dom, h); err != nil {
		t.Fatalf("UnmapStrict: %v", err)
	}
	if got := dev.UnmapCalls(); got != 1 {
		t.Errorf("expected 1 unmap, got %d", got)
	}
	if got := dev.InvalidateCalls(1); got != 1 {
		t.Errorf("expected 1 hardware op, got %d", got)
	}
	dev.Free(&api.MappedBuffer{Handle: h})
	if v := dev.Violations(); len(v) != 0 {
		t.Errorf("strict unmap must leave memory releasable: %v", v)
	}
}

func TestSyncFailureKeepsDomainDirty(t *testing.T) {
	dev := fake.NewDevice()
	c := newCoordinator(t, dev)
	dom := c.AttachDomain(1)
	h := mapOne(t, dev, 1)

	if err := c.UnmapNoSync(dom, h); err != nil {
		t.Fatalf("UnmapNoSync: %v", err)
	}
	dev.FailInvalidate = errors.New("queue timeout")
	err := c.Sync(dom)
	if err == nil {
		t.Fatal("expected Sync to propagate backend failure")
	}
	if !errors.Is(err, api.ErrInvalidationFailed) {
		t.Errorf("error should wrap ErrInvalidationFailed, got %v", err)
	}
	if !dom.Dirty() {
		t.Error("failed sync must leave domain dirty")
	}

	// Releasing now is the exact bug the coordinator exists to prevent.
	dev.Free(&api.MappedBuffer{Handle: h})
	if v := dev.Violations(); len(v) == 0 {
		t.Error("release after failed sync should be flagged by the harness")
	}

	// A later sync may retry and then release is safe.
	dev.FailInvalidate = nil
	if err := c.Sync(dom); err != nil {
		t.Fatalf("retry Sync: %v", err)
	}
	if dom.Dirty() {
		t.Error("domain should be clean after successful retry")
	}
}

func TestUnmapRejectsForeignDomain(t *testing.T) {
	dev := fake.NewDevice()
	c := newCoordinator(t, dev)
	dom := c.AttachDomain(1)
	h := mapOne(t, dev, 2)

	if err := c.UnmapNoSync(dom, h); err == nil {
		t.Error("expected error for handle from another domain")
	}
	if got := dev.UnmapCalls(); got != 0 {
		t.Errorf("rejected handle must not reach the mapper, got %d unmaps", got)
	}
}

func TestAttachDomainIsShared(t *testing.T) {
	dev := fake.NewDevice()
	c := newCoordinator(t, dev)
	if c.AttachDomain(3) != c.AttachDomain(3) {
		t.Error("AttachDomain must return the same Domain for one id")
	}
}

func TestConcurrentSyncCoalesces(t *testing.T) {
	dev := fake.NewDevice()
	c := newCoordinator(t, dev)
	dom := c.AttachDomain(1)

	const workers = 16
	handles := make([]api.MappingHandle, workers)
	for i := range handles {
		handles[i] = mapOne(t, dev, 1)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(h api.MappingHandle) {
			defer wg.Done()
			if err := c.UnmapNoSync(dom, h); err != nil {
				t.Errorf("UnmapNoSync: %v", err)
				return
			}
			if err := c.Sync(dom); err != nil {
				t.Errorf("Sync: %v", err)
				return
			}
			// Each caller's unmap is covered once its own Sync returns.
			dev.Free(&api.MappedBuffer{Handle: h})
		}(handles[i])
	}
	wg.Wait()

	if v := dev.Violations(); len(v) != 0 {
		t.Errorf("safety violations under concurrent sync: %v", v)
	}
	ops := dev.InvalidateCalls(1)
	if ops < 1 || ops > workers {
		t.Errorf("expected between 1 and %d hardware ops, got %d", workers, ops)
	}
	if dom.Dirty() {
		t.Error("domain should be clean after all syncs")
	}
}
