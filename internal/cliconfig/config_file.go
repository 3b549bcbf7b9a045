// Author: momentics <momentics@gmail.com>

package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// fileConfig mirrors Config but uses strings for durations to make TOML
// friendly.
type fileConfig struct {
	Backend       string `toml:"backend"`
	AckLatency    string `toml:"ack_latency"`
	VFIOContainer string `toml:"vfio_container"`
	Mode          string `toml:"mode"`
	PendingCap    int    `toml:"pending_cap"`
	CacheCap      int    `toml:"cache_cap"`
	BufferSize    int    `toml:"buffer_size"`
	TxUnits       int    `toml:"tx_units"`
	TxFragments   int    `toml:"tx_fragments"`
	RxCycles      int    `toml:"rx_cycles"`
	RxPerCycle    int    `toml:"rx_per_cycle"`
	RecyclablePct int    `toml:"recyclable_pct"`
	LogLevel      string `toml:"log_level"`
	Watch         *bool  `toml:"watch"`
}

// LoadFileConfig reads and parses a TOML config file.
func LoadFileConfig(path string) (fileConfig, error) {
	var fc fileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.iotlbsim/config.toml when the user home
// directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".iotlbsim", "config.toml")
	}
	return ""
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

// ApplyFileConfig applies file values to cfg, respecting flags that were
// explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc fileConfig, changed map[string]bool) error {
	s := newSetter(changed)

	s.setString("backend", fc.Backend, &cfg.Backend)
	s.setString("vfio-container", fc.VFIOContainer, &cfg.VFIOContainer)
	s.setString("mode", fc.Mode, &cfg.Mode)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	if err := s.setDuration("ack-latency", fc.AckLatency, &cfg.AckLatency); err != nil {
		return err
	}

	s.setInt("pending-cap", fc.PendingCap, &cfg.PendingCap)
	s.setInt("cache-cap", fc.CacheCap, &cfg.CacheCap)
	s.setInt("buffer-size", fc.BufferSize, &cfg.BufferSize)
	s.setInt("tx-units", fc.TxUnits, &cfg.TxUnits)
	s.setInt("tx-fragments", fc.TxFragments, &cfg.TxFragments)
	s.setInt("rx-cycles", fc.RxCycles, &cfg.RxCycles)
	s.setInt("rx-per-cycle", fc.RxPerCycle, &cfg.RxPerCycle)
	s.setInt("recyclable-pct", fc.RecyclablePct, &cfg.RecyclablePct)

	s.setBool("watch", fc.Watch, &cfg.Watch)
	return nil
}

// ReloadableValues extracts the live-safe knobs from a config file for
// the control watcher.
func ReloadableValues(path string) (map[string]any, error) {
	fc, err := LoadFileConfig(path)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any)
	if fc.LogLevel != "" {
		out["log_level"] = fc.LogLevel
	}
	// Mode and capacities deliberately excluded: restart-only.
	return out, nil
}
