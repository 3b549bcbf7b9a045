// Package control
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics, configuration snapshots, and debug introspection for
// hioload-iotlb. Provides concurrent-safe state handling primitives:
//   - Immutable snapshot config reads and atomic updates
//   - Counter registry for sync/unmap/flush telemetry
//   - Debug probe registration and state export
//   - fsnotify-driven config file watching for reloadable knobs
//
// Safety-relevant settings (batched vs strict mode, queue capacity) are
// resolved once at startup and injected into the coordinator and the
// policies; the watcher only services knobs that are safe to change live.
package control
