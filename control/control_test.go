package control

import (
	"testing"
)

func TestConfigStoreSnapshotIsolation(t *testing.T) {
	cs := NewConfigStore()
	cs.SetConfig(map[string]any{"log_level": "info"})

	snap := cs.GetSnapshot()
	snap["log_level"] = "debug"

	if v, _ := cs.Get("log_level"); v != "info" {
		t.Errorf("snapshot mutation leaked into store: %v", v)
	}
}

func TestConfigStoreReloadListeners(t *testing.T) {
	cs := NewConfigStore()
	var seen []string
	cs.OnReload(func(cfg map[string]any) {
		seen = append(seen, cfg["log_level"].(string))
	})

	cs.SetConfig(map[string]any{"log_level": "warn"})
	cs.SetConfig(map[string]any{"log_level": "debug"})

	if len(seen) != 2 || seen[0] != "warn" || seen[1] != "debug" {
		t.Errorf("listener calls = %v, want [warn debug]", seen)
	}
}

func TestMetricsRegistryCounters(t *testing.T) {
	mr := NewMetricsRegistry()
	mr.Inc("iotlb.syncs", 1)
	mr.Inc("iotlb.syncs", 2)
	mr.Set("rx.pending", 7)

	if got := mr.Counter("iotlb.syncs"); got != 3 {
		t.Errorf("counter = %d, want 3", got)
	}
	snap := mr.GetSnapshot()
	if snap["iotlb.syncs"] != int64(3) {
		t.Errorf("snapshot counter = %v, want 3", snap["iotlb.syncs"])
	}
	if snap["rx.pending"] != 7 {
		t.Errorf("snapshot gauge = %v, want 7", snap["rx.pending"])
	}
}

func TestRuntimeProbes(t *testing.T) {
	rt := NewRuntime()
	rt.RegisterDebugProbe("coordinator", func() any {
		return map[string]any{"syncs": uint64(4)}
	})
	stats := rt.Stats()
	if _, ok := stats["coordinator"]; !ok {
		t.Error("registered probe missing from stats")
	}
	if _, ok := stats["platform.cpus"]; !ok {
		t.Error("platform probes not registered")
	}
}
