// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake mapper, invalidation backend and release sink for testing.
//
// Device models the hardware-visible truth the production code must respect:
// it tracks which translations are live, which have been removed but not yet
// covered by a completed domain invalidation (the unsynced set), and records
// a violation whenever memory is released while its removal is still
// unsynced. Tests assert Violations() is empty — or, for the known
// sync-after-release regression, that it is not.

package fake

import (
	"fmt"
	"sync"

	"github.com/momentics/hioload-iotlb/api"
)

// Device is a fake implementation of api.Mapper, api.InvalidationBackend
// and api.ReleaseSink backed by an explicit unsynced-set model.
type Device struct {
	mu sync.Mutex

	nextAddr uint64
	live     map[api.DeviceAddr]api.MappingHandle
	unsynced map[api.DomainID]map[api.DeviceAddr]struct{}

	mapCalls    int
	unmapCalls  int
	invalidates map[api.DomainID]int
	hints       []api.InvalidateHint
	recycles    int
	frees       int

	violations []string

	// FailInvalidate, when non-nil, is returned by the next Invalidate
	// calls and leaves the unsynced set untouched.
	FailInvalidate error
}

// NewDevice creates an empty fake device.
func NewDevice() *Device {
	return &Device{
		nextAddr:    0x1000,
		live:        make(map[api.DeviceAddr]api.MappingHandle),
		unsynced:    make(map[api.DomainID]map[api.DeviceAddr]struct{}),
		invalidates: make(map[api.DomainID]int),
	}
}

// Map creates a translation and returns its handle.
func (d *Device) Map(domain api.DomainID, buf []byte, dir api.Direction, kind api.MappingKind) (api.MappingHandle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	h := api.MappingHandle{
		Domain: domain,
		Addr:   api.DeviceAddr(d.nextAddr),
		Len:    len(buf),
		Dir:    dir,
		Kind:   kind,
	}
	d.nextAddr += 0x1000
	d.live[h.Addr] = h
	d.mapCalls++
	return h, nil
}

// Unmap removes the translation entry and moves it to the unsynced set.
func (d *Device) Unmap(h api.MappingHandle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.live[h.Addr]; !ok {
		return api.ErrDoubleUnmap
	}
	delete(d.live, h.Addr)
	set, ok := d.unsynced[h.Domain]
	if !ok {
		set = make(map[api.DeviceAddr]struct{})
		d.unsynced[h.Domain] = set
	}
	set[h.Addr] = struct{}{}
	d.unmapCalls++
	return nil
}

// Invalidate clears the domain's unsynced set, or fails when injected.
func (d *Device) Invalidate(domain api.DomainID, hint api.InvalidateHint) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.invalidates[domain]++
	d.hints = append(d.hints, hint)
	if d.FailInvalidate != nil {
		return d.FailInvalidate
	}
	d.unsynced[domain] = make(map[api.DeviceAddr]struct{})
	return nil
}

// Name reports the backend family.
func (d *Device) Name() string { return "fake" }

// Recycle models returning an unmapped buffer to the recycling pool.
func (d *Device) Recycle(b *api.MappedBuffer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.recycles++
	d.checkReleasable("recycle", b.Handle)
}

// Free models returning an unmapped buffer to the system allocator.
func (d *Device) Free(b *api.MappedBuffer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.frees++
	d.checkReleasable("free", b.Handle)
}

// ObserveRelease records the release of any object owning the given
// handles, e.g. a transmitted message's backing storage.
func (d *Device) ObserveRelease(handles ...api.MappingHandle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, h := range handles {
		d.checkReleasable("release", h)
	}
}

// checkReleasable records a violation when h's removal is still unsynced
// or when its translation is still live. Callers hold d.mu.
func (d *Device) checkReleasable(action string, h api.MappingHandle) {
	if _, ok := d.live[h.Addr]; ok {
		d.violations = append(d.violations,
			fmt.Sprintf("%s of %#x (domain %d) with translation still live", action, uint64(h.Addr), h.Domain))
		return
	}
	if set, ok := d.unsynced[h.Domain]; ok {
		if _, bad := set[h.Addr]; bad {
			d.violations = append(d.violations,
				fmt.Sprintf("%s of %#x (domain %d) before covering sync", action, uint64(h.Addr), h.Domain))
		}
	}
}

// Violations returns every safety violation recorded so far.
func (d *Device) Violations() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.violations))
	copy(out, d.violations)
	return out
}

// MapCalls returns the number of Map calls.
func (d *Device) MapCalls() int { d.mu.Lock(); defer d.mu.Unlock(); return d.mapCalls }

// UnmapCalls returns the number of Unmap calls.
func (d *Device) UnmapCalls() int { d.mu.Lock(); defer d.mu.Unlock(); return d.unmapCalls }

// InvalidateCalls returns the number of Invalidate calls for a domain.
func (d *Device) InvalidateCalls(domain api.DomainID) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.invalidates[domain]
}

// Hints returns the invalidation hints seen, in submission order.
func (d *Device) Hints() []api.InvalidateHint {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]api.InvalidateHint, len(d.hints))
	copy(out, d.hints)
	return out
}

// Recycles returns the number of Recycle sink calls.
func (d *Device) Recycles() int { d.mu.Lock(); defer d.mu.Unlock(); return d.recycles }

// Frees returns the number of Free sink calls.
func (d *Device) Frees() int { d.mu.Lock(); defer d.mu.Unlock(); return d.frees }

// LiveTranslations returns the number of currently live translations.
func (d *Device) LiveTranslations() int { d.mu.Lock(); defer d.mu.Unlock(); return len(d.live) }

// UnsyncedCount returns the size of a domain's unsynced set.
func (d *Device) UnsyncedCount(domain api.DomainID) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.unsynced[domain])
}
