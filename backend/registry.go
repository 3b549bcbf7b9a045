// File: backend/registry.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Backend family registry. Families register themselves in init; the
// application resolves one family by name at startup.

package backend

import (
	"sort"
	"sync"

	"github.com/momentics/hioload-iotlb/api"
)

// Factory builds a backend from a free-form configuration map.
type Factory func(cfg map[string]any) (api.InvalidationBackend, error)

var (
	regMu    sync.RWMutex
	registry = make(map[string]Factory)
)

// Register adds a backend family. Later registrations of the same name
// replace earlier ones.
func Register(name string, f Factory) {
	regMu.Lock()
	registry[name] = f
	regMu.Unlock()
}

// New resolves a family by name and builds its backend.
func New(name string, cfg map[string]any) (api.InvalidationBackend, error) {
	regMu.RLock()
	f, ok := registry[name]
	regMu.RUnlock()
	if !ok {
		return nil, api.NewError(api.ErrCodeInvalidArgument, api.ErrBackendUnknown.Error()).
			WithContext("family", name).
			WithContext("known", Families())
	}
	return f(cfg)
}

// Families lists registered family names, sorted.
func Families() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
