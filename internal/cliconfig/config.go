// Package cliconfig holds configuration for the iotlbsim binary.
// Author: momentics <momentics@gmail.com>
//
// Precedence: config file < environment (IOTLB_*) < flags. Flags that
// were explicitly set on the command line win; the changed-flags map from
// cobra decides which ones those are.
package cliconfig

import (
	"fmt"
	"time"

	"github.com/momentics/hioload-iotlb/policy"
)

// Config carries every knob of the simulator.
type Config struct {
	// Backend selects the invalidation backend family.
	Backend string
	// AckLatency is the software backend's simulated hardware latency.
	AckLatency time.Duration
	// VFIOContainer is the container node for the vfio family.
	VFIOContainer string

	// Mode selects "batched" or "strict" invalidation. Resolved once at
	// startup; changing it requires a restart.
	Mode string

	// PendingCap bounds the receive pending queue.
	PendingCap int
	// CacheCap bounds the recycling cache.
	CacheCap int
	// BufferSize is the size of each simulated receive buffer.
	BufferSize int

	// TxUnits and TxFragments shape the transmit workload.
	TxUnits     int
	TxFragments int

	// RxCycles, RxPerCycle and RecyclablePct shape the receive workload.
	RxCycles      int
	RxPerCycle    int
	RecyclablePct int

	// LogLevel is reloadable at runtime through the config watcher.
	LogLevel string
	// Watch enables the config file watcher.
	Watch bool
}

// DefaultConfig returns the simulator defaults.
func DefaultConfig() Config {
	return Config{
		Backend:       "software",
		AckLatency:    50 * time.Microsecond,
		Mode:          "batched",
		PendingCap:    policy.DefaultPendingCapacity,
		CacheCap:      256,
		BufferSize:    2048,
		TxUnits:       1000,
		TxFragments:   3,
		RxCycles:      100,
		RxPerCycle:    64,
		RecyclablePct: 90,
		LogLevel:      "info",
	}
}

// Validate rejects configurations the simulator cannot run.
func (c *Config) Validate() error {
	switch c.Mode {
	case "batched", "strict":
	default:
		return fmt.Errorf("mode must be batched or strict, got %q", c.Mode)
	}
	if c.PendingCap <= 0 {
		return fmt.Errorf("pending-cap must be positive, got %d", c.PendingCap)
	}
	if c.CacheCap < 0 {
		return fmt.Errorf("cache-cap must not be negative, got %d", c.CacheCap)
	}
	if c.BufferSize <= 0 {
		return fmt.Errorf("buffer-size must be positive, got %d", c.BufferSize)
	}
	if c.RecyclablePct < 0 || c.RecyclablePct > 100 {
		return fmt.Errorf("recyclable-pct must be within 0..100, got %d", c.RecyclablePct)
	}
	return nil
}

// Strict reports whether strict per-operation invalidation is selected.
func (c *Config) Strict() bool { return c.Mode == "strict" }
