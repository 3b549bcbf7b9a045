// File: api/backend.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Hardware invalidation submission contract. One implementation exists per
// hardware family and is selected once at configuration time; there is no
// runtime dispatch table.

package api

// InvalidateHint tunes a domain invalidation submission.
type InvalidateHint uint8

const (
	// HintNone requests a full invalidation including page-walk caches.
	HintNone InvalidateHint = 0
	// HintSkipWalkCache skips the secondary page-walk cache invalidation
	// step. The deferred-unmap path always passes this hint: walk caches
	// never hold entries for removed translations at finer granularity
	// than the domain-selective flush already covers.
	HintSkipWalkCache InvalidateHint = 1 << iota
)

// InvalidationBackend submits domain-selective invalidations to hardware.
type InvalidationBackend interface {
	// Invalidate flushes every IOTLB entry belonging to the domain and
	// blocks until hardware acknowledges completion. A nil return means
	// every translation removed before this call was issued is no longer
	// device-visible.
	//
	// A non-nil return is a safety-critical condition: callers must treat
	// the domain as still dirty and must not release any memory whose
	// unmap this call was meant to cover.
	Invalidate(domain DomainID, hint InvalidateHint) error

	// Name reports the backend family, e.g. "software" or "vfio".
	Name() string
}
