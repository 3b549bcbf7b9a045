package backend

import (
	"errors"
	"testing"
	"time"

	"github.com/momentics/hioload-iotlb/api"
)

func TestSoftwareInvalidateCounts(t *testing.T) {
	s := NewSoftware(SoftwareConfig{})
	for i := 0; i < 3; i++ {
		if err := s.Invalidate(1, api.HintSkipWalkCache); err != nil {
			t.Fatalf("Invalidate: %v", err)
		}
	}
	if err := s.Invalidate(2, api.HintNone); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if got := s.Invalidations(1); got != 3 {
		t.Errorf("domain 1 invalidations = %d, want 3", got)
	}
	if got := s.Invalidations(2); got != 1 {
		t.Errorf("domain 2 invalidations = %d, want 1", got)
	}
	if got := s.Total(); got != 4 {
		t.Errorf("total = %d, want 4", got)
	}
}

func TestSoftwareInjectFailureFiresOnce(t *testing.T) {
	s := NewSoftware(SoftwareConfig{})
	boom := errors.New("queue stall")
	s.InjectFailure(boom)

	if err := s.Invalidate(1, api.HintSkipWalkCache); !errors.Is(err, boom) {
		t.Errorf("expected injected failure, got %v", err)
	}
	if got := s.Invalidations(1); got != 0 {
		t.Errorf("failed submission must not count, got %d", got)
	}
	if err := s.Invalidate(1, api.HintSkipWalkCache); err != nil {
		t.Errorf("failure should fire once, got %v", err)
	}
}

func TestRegistryResolvesSoftware(t *testing.T) {
	b, err := New("software", map[string]any{"ack_latency": "1ms"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if b.Name() != "software" {
		t.Errorf("name = %q, want software", b.Name())
	}
	sw, ok := b.(*Software)
	if !ok {
		t.Fatalf("unexpected backend type %T", b)
	}
	if sw.ackLatency != time.Millisecond {
		t.Errorf("ack latency = %v, want 1ms", sw.ackLatency)
	}
}

func TestRegistryUnknownFamily(t *testing.T) {
	if _, err := New("no-such-family", nil); err == nil {
		t.Error("expected error for unknown family")
	}
}

func TestFamiliesListed(t *testing.T) {
	found := false
	for _, name := range Families() {
		if name == "software" {
			found = true
		}
	}
	if !found {
		t.Errorf("software family missing from %v", Families())
	}
}
