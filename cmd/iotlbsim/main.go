// File: cmd/iotlbsim/main.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// iotlbsim runs a synthetic transmit/receive workload against a selected
// invalidation backend and reports how far deferred invalidation
// amortizes hardware operations.

package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/momentics/hioload-iotlb/backend"
	"github.com/momentics/hioload-iotlb/control"
	"github.com/momentics/hioload-iotlb/internal/cliconfig"
	"github.com/momentics/hioload-iotlb/internal/sim"
)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	log := cliconfig.Logger()

	root := &cobra.Command{
		Use:     "iotlbsim",
		Short:   "Simulate deferred IOTLB invalidation workloads",
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}
			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}
			cliconfig.ApplyEnvConfig(&cfg, changed)
			if err := cfg.Validate(); err != nil {
				return err
			}
			cliconfig.SetLogLevel(cfg.LogLevel)

			return run(cfg, cfgFile)
		},
	}

	flags := root.Flags()
	flags.StringVarP(&cfgPath, "config", "c", "", "config file path (default $HOME/.iotlbsim/config.toml)")
	flags.StringVar(&cfg.Backend, "backend", cfg.Backend, "invalidation backend family")
	flags.DurationVar(&cfg.AckLatency, "ack-latency", cfg.AckLatency, "software backend acknowledgment latency")
	flags.StringVar(&cfg.VFIOContainer, "vfio-container", cfg.VFIOContainer, "vfio container node")
	flags.StringVar(&cfg.Mode, "mode", cfg.Mode, "invalidation mode: batched or strict")
	flags.IntVar(&cfg.PendingCap, "pending-cap", cfg.PendingCap, "receive pending queue capacity")
	flags.IntVar(&cfg.CacheCap, "cache-cap", cfg.CacheCap, "recycling cache capacity")
	flags.IntVar(&cfg.BufferSize, "buffer-size", cfg.BufferSize, "receive buffer size in bytes")
	flags.IntVar(&cfg.TxUnits, "tx-units", cfg.TxUnits, "send units to complete")
	flags.IntVar(&cfg.TxFragments, "tx-fragments", cfg.TxFragments, "fragments per send unit")
	flags.IntVar(&cfg.RxCycles, "rx-cycles", cfg.RxCycles, "receive processing cycles")
	flags.IntVar(&cfg.RxPerCycle, "rx-per-cycle", cfg.RxPerCycle, "buffers per receive cycle")
	flags.IntVar(&cfg.RecyclablePct, "recyclable-pct", cfg.RecyclablePct, "share of cache-eligible receive buffers")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	flags.BoolVar(&cfg.Watch, "watch", cfg.Watch, "watch the config file for reloadable knobs")

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("iotlbsim failed")
		os.Exit(1)
	}
}

func run(cfg cliconfig.Config, cfgFile string) error {
	log := cliconfig.Logger()

	backendCfg := map[string]any{
		"ack_latency": cfg.AckLatency,
		"container":   cfg.VFIOContainer,
	}
	be, err := backend.New(cfg.Backend, backendCfg)
	if err != nil {
		return fmt.Errorf("backend %q: %w", cfg.Backend, err)
	}

	rt := control.NewRuntime()
	rt.Config.OnReload(func(vals map[string]any) {
		if lvl, ok := vals["log_level"].(string); ok {
			cliconfig.SetLogLevel(lvl)
			log.Info().Str("log_level", lvl).Msg("applied reloaded log level")
		}
	})

	if cfg.Watch && cfgFile != "" && cliconfig.FileExists(cfgFile) {
		watcher, err := control.NewWatcher(control.WatcherConfig{
			Path:   cfgFile,
			Load:   cliconfig.ReloadableValues,
			Logger: &log,
		}, rt.Config)
		if err != nil {
			return err
		}
		if err := watcher.Start(); err != nil {
			return err
		}
		defer watcher.Stop()
	}

	w, err := sim.New(sim.Config{
		Backend:       be,
		Strict:        cfg.Strict(),
		DomainID:      1,
		PendingCap:    cfg.PendingCap,
		CacheCap:      cfg.CacheCap,
		BufferSize:    cfg.BufferSize,
		TxUnits:       cfg.TxUnits,
		TxFragments:   cfg.TxFragments,
		RxCycles:      cfg.RxCycles,
		RxPerCycle:    cfg.RxPerCycle,
		RecyclablePct: cfg.RecyclablePct,
		Logger:        &log,
		Runtime:       rt,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := w.Close(); err != nil {
			log.Error().Err(err).Msg("workload teardown failed")
		}
	}()

	log.Info().
		Str("backend", be.Name()).
		Str("mode", cfg.Mode).
		Int("tx_units", cfg.TxUnits).
		Int("rx_cycles", cfg.RxCycles).
		Msg("starting workload")

	start := time.Now()
	rep, err := w.Run()
	if err != nil {
		return err
	}

	log.Info().
		Dur("elapsed", time.Since(start)).
		Uint64("tx_units", rep.TxUnits).
		Uint64("tx_fragments", rep.TxFragments).
		Uint64("rx_buffers", rep.RxBuffers).
		Uint64("cache_hits", rep.CacheHits).
		Uint64("unmaps", rep.Unmaps).
		Uint64("hardware_ops", rep.HardwareOps).
		Float64("syncs_per_k_buffers", rep.SyncsPerKBuffers).
		Msg("workload complete")
	return nil
}
