package pool_test

import (
	"testing"

	"github.com/momentics/hioload-iotlb/api"
	"github.com/momentics/hioload-iotlb/pool"
)

func TestCachePutGetRoundtrip(t *testing.T) {
	c, err := pool.NewCache(4)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	in := &api.MappedBuffer{Handle: api.MappingHandle{Addr: 0x4000, Domain: 1}}
	if !c.TryPut(in) {
		t.Fatal("TryPut rejected with free capacity")
	}
	out, ok := c.TryGet()
	if !ok {
		t.Fatal("TryGet empty after put")
	}
	// Same buffer, same handle: the translation survived the cache.
	if out != in || out.Handle.Addr != 0x4000 {
		t.Errorf("cache returned different buffer: %+v", out.Handle)
	}
}

func TestCacheCapacityBound(t *testing.T) {
	c, err := pool.NewCache(2)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	if !c.TryPut(&api.MappedBuffer{}) || !c.TryPut(&api.MappedBuffer{}) {
		t.Fatal("puts within capacity rejected")
	}
	if c.TryPut(&api.MappedBuffer{}) {
		t.Error("TryPut must reject at capacity")
	}
	if got := c.Len(); got != 2 {
		t.Errorf("len = %d, want 2", got)
	}
}

func TestCacheTryGetEmpty(t *testing.T) {
	c, err := pool.NewCache(1)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	if _, ok := c.TryGet(); ok {
		t.Error("TryGet on empty cache returned a buffer")
	}
}

func TestCacheDrain(t *testing.T) {
	c, err := pool.NewCache(8)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	for i := 0; i < 5; i++ {
		c.TryPut(&api.MappedBuffer{})
	}
	var drained int
	c.Drain(func(*api.MappedBuffer) { drained++ })
	if drained != 5 {
		t.Errorf("drained %d buffers, want 5", drained)
	}
	if c.Len() != 0 {
		t.Errorf("cache not empty after drain, len=%d", c.Len())
	}
}

func TestArenaAllocFree(t *testing.T) {
	a := pool.NewArena()
	buf, err := a.Alloc(2048)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if len(buf) < 2048 {
		t.Errorf("alloc returned %d bytes, want at least 2048", len(buf))
	}
	buf[0] = 0xA5
	buf[len(buf)-1] = 0x5A
	if err := a.Free(buf); err != nil {
		t.Errorf("Free: %v", err)
	}
	if _, err := a.Alloc(0); err == nil {
		t.Error("expected error for zero-size alloc")
	}
}
