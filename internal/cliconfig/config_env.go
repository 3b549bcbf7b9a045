// Author: momentics <momentics@gmail.com>

package cliconfig

import (
	"os"
	"strconv"
	"time"
)

// ApplyEnvConfig applies IOTLB_* environment variables. Env overrides
// file config but is overridden by explicitly set flags.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) {
	s := newSetter(changed)

	s.setString("backend", os.Getenv("IOTLB_BACKEND"), &cfg.Backend)
	s.setString("vfio-container", os.Getenv("IOTLB_VFIO_CONTAINER"), &cfg.VFIOContainer)
	s.setString("mode", os.Getenv("IOTLB_MODE"), &cfg.Mode)
	s.setString("log-level", os.Getenv("IOTLB_LOG_LEVEL"), &cfg.LogLevel)

	if v := os.Getenv("IOTLB_ACK_LATENCY"); v != "" && !changed["ack-latency"] {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.AckLatency = d
		}
	}

	envInt(changed, "pending-cap", "IOTLB_PENDING_CAP", &cfg.PendingCap)
	envInt(changed, "cache-cap", "IOTLB_CACHE_CAP", &cfg.CacheCap)
	envInt(changed, "buffer-size", "IOTLB_BUFFER_SIZE", &cfg.BufferSize)
	envInt(changed, "tx-units", "IOTLB_TX_UNITS", &cfg.TxUnits)
	envInt(changed, "tx-fragments", "IOTLB_TX_FRAGMENTS", &cfg.TxFragments)
	envInt(changed, "rx-cycles", "IOTLB_RX_CYCLES", &cfg.RxCycles)
	envInt(changed, "rx-per-cycle", "IOTLB_RX_PER_CYCLE", &cfg.RxPerCycle)
	envInt(changed, "recyclable-pct", "IOTLB_RECYCLABLE_PCT", &cfg.RecyclablePct)

	if v := os.Getenv("IOTLB_WATCH"); v != "" && !changed["watch"] {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Watch = b
		}
	}
}

func envInt(changed map[string]bool, flag, env string, dst *int) {
	if v := os.Getenv(env); v != "" && !changed[flag] {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
