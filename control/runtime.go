// control/runtime.go
// Author: momentics <momentics@gmail.com>
//
// Runtime объединяет конфиг, метрики и debug-пробы в одну точку
// управления, реализующую api.Control.

package control

import (
	"github.com/momentics/hioload-iotlb/api"
)

// Runtime bundles the config store, metrics registry and debug probes.
type Runtime struct {
	Config  *ConfigStore
	Metrics *MetricsRegistry
	Probes  *DebugProbes
}

// NewRuntime creates an empty runtime control plane with platform
// probes pre-registered.
func NewRuntime() *Runtime {
	rt := &Runtime{
		Config:  NewConfigStore(),
		Metrics: NewMetricsRegistry(),
		Probes:  NewDebugProbes(),
	}
	RegisterPlatformProbes(rt.Probes)
	return rt
}

// GetConfig returns a config snapshot.
func (rt *Runtime) GetConfig() map[string]any {
	return rt.Config.GetSnapshot()
}

// SetConfig merges config values and triggers reload listeners.
func (rt *Runtime) SetConfig(cfg map[string]any) error {
	rt.Config.SetConfig(cfg)
	return nil
}

// Stats merges metrics with probe output.
func (rt *Runtime) Stats() map[string]any {
	out := rt.Metrics.GetSnapshot()
	for k, v := range rt.Probes.DumpState() {
		out[k] = v
	}
	return out
}

// OnReload registers a config reload listener.
func (rt *Runtime) OnReload(fn func()) {
	rt.Config.OnReload(func(map[string]any) { fn() })
}

// RegisterDebugProbe dynamically registers a new debug probe.
func (rt *Runtime) RegisterDebugProbe(name string, fn func() any) {
	rt.Probes.RegisterProbe(name, fn)
}

var _ api.Control = (*Runtime)(nil)
