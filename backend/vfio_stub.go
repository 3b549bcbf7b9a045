// File: backend/vfio_stub.go
//go:build !linux
// +build !linux

//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Non-Linux stub for the VFIO family: registration is kept so family
// resolution errors are uniform, construction always fails.

package backend

import (
	"github.com/momentics/hioload-iotlb/api"
)

func init() {
	Register("vfio", func(cfg map[string]any) (api.InvalidationBackend, error) {
		return nil, api.NewError(api.ErrCodeNotSupported, api.ErrNotSupported.Error()).
			WithContext("family", "vfio").
			WithContext("reason", "requires linux")
	})
}
