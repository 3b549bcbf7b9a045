package policy

import (
	"errors"
	"testing"

	"github.com/momentics/hioload-iotlb/api"
)

func TestPendingQueueCapacityValidation(t *testing.T) {
	if _, err := NewPendingQueue(0); err == nil {
		t.Error("expected error for zero capacity")
	}
	if _, err := NewPendingQueue(-5); err == nil {
		t.Error("expected error for negative capacity")
	}
}

func TestPendingQueueOverflowGuard(t *testing.T) {
	q, err := NewPendingQueue(4)
	if err != nil {
		t.Fatalf("NewPendingQueue: %v", err)
	}
	for i := 0; i < 4; i++ {
		if q.Full() {
			t.Fatalf("queue full at %d entries, capacity 4", i)
		}
		if err := q.Push(PendingRelease{Buf: &api.MappedBuffer{}}); err != nil {
			t.Fatalf("Push %d: %v", i, err)
		}
	}
	if !q.Full() {
		t.Error("queue should be full at capacity")
	}
	if err := q.Push(PendingRelease{Buf: &api.MappedBuffer{}}); !errors.Is(err, api.ErrQueueOverflow) {
		t.Errorf("expected ErrQueueOverflow, got %v", err)
	}
	if q.Len() != 4 {
		t.Errorf("overflowing push must not grow the queue, len=%d", q.Len())
	}
}

func TestPendingQueueDrainFIFO(t *testing.T) {
	q, err := NewPendingQueue(8)
	if err != nil {
		t.Fatalf("NewPendingQueue: %v", err)
	}
	for i := 0; i < 5; i++ {
		h := api.MappingHandle{Addr: api.DeviceAddr(i)}
		if err := q.Push(PendingRelease{Buf: &api.MappedBuffer{Handle: h}}); err != nil {
			t.Fatalf("Push: %v", err)
		}
	}

	var order []api.DeviceAddr
	q.Drain(func(e PendingRelease) {
		order = append(order, e.Buf.Handle.Addr)
	})
	for i, addr := range order {
		if addr != api.DeviceAddr(i) {
			t.Errorf("drain order[%d] = %d, want %d", i, addr, i)
		}
	}
	if q.Len() != 0 {
		t.Errorf("queue not empty after drain, len=%d", q.Len())
	}

	// Queue is reusable after a drain.
	if err := q.Push(PendingRelease{Buf: &api.MappedBuffer{}}); err != nil {
		t.Errorf("Push after drain: %v", err)
	}
}
