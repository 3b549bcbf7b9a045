// control/watcher.go
// Author: momentics <momentics@gmail.com>
//
// fsnotify-driven config file watcher. Reload events re-read the file
// through an injected loader and merge the result into the config store,
// which fans out to reload listeners. Only live-safe knobs belong here;
// mode and capacity changes require a restart and are ignored by the
// listeners that receive them.

package control

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// WatcherConfig configures a config file watcher.
type WatcherConfig struct {
	// Path to the watched config file. Required.
	Path string
	// Load re-reads the file into a config map. Required.
	Load func(path string) (map[string]any, error)
	// DebounceDelay coalesces editor write bursts. Default 100ms.
	DebounceDelay time.Duration
	// Logger defaults to a no-op logger.
	Logger *zerolog.Logger
}

// Watcher monitors one config file and feeds changes to a ConfigStore.
type Watcher struct {
	path     string
	load     func(string) (map[string]any, error)
	debounce time.Duration
	log      zerolog.Logger
	store    *ConfigStore

	fsw  *fsnotify.Watcher
	stop chan struct{}
	wg   sync.WaitGroup

	mu    sync.Mutex
	timer *time.Timer
}

// NewWatcher validates cfg and binds the watcher to store.
func NewWatcher(cfg WatcherConfig, store *ConfigStore) (*Watcher, error) {
	if cfg.Path == "" || cfg.Load == nil || store == nil {
		return nil, fmt.Errorf("watcher requires path, loader and store")
	}
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}
	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}
	return &Watcher{
		path:     cfg.Path,
		load:     cfg.Load,
		debounce: cfg.DebounceDelay,
		log:      log,
		store:    store,
		stop:     make(chan struct{}),
	}, nil
}

// Start begins watching the file's directory. Watching the directory
// instead of the file survives rename-based atomic saves.
func (w *Watcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		fsw.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}
	w.fsw = fsw

	w.wg.Add(1)
	go w.run()
	return nil
}

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.scheduleReload()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("config watcher error")
		case <-w.stop:
			return
		}
	}
}

// scheduleReload coalesces bursts of write events into one reload.
func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	cfg, err := w.load(w.path)
	if err != nil {
		w.log.Warn().Str("path", w.path).Err(err).Msg("config reload failed; keeping previous values")
		return
	}
	w.store.SetConfig(cfg)
	w.log.Info().Str("path", w.path).Msg("config reloaded")
}

// Stop ends watching and waits for the event loop to exit.
func (w *Watcher) Stop() {
	close(w.stop)
	if w.fsw != nil {
		w.fsw.Close()
	}
	w.wg.Wait()
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
}
