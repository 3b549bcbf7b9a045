// File: backend/software.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Software invalidation backend: simulates a blocking domain-selective
// invalidation with configurable acknowledgment latency. Used by the
// workload simulator and wherever no IOMMU hardware is present.

package backend

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/momentics/hioload-iotlb/api"
)

// SoftwareConfig tunes the simulated hardware.
type SoftwareConfig struct {
	// AckLatency is slept on every submission to model the hardware
	// acknowledgment wait. Zero means immediate completion.
	AckLatency time.Duration
}

// Software is an in-process api.InvalidationBackend. Safe for concurrent
// use from multiple domains and contexts.
type Software struct {
	ackLatency time.Duration

	mu        sync.Mutex
	perDomain map[api.DomainID]uint64
	injected  error

	total atomic.Uint64
}

// NewSoftware creates a software backend.
func NewSoftware(cfg SoftwareConfig) *Software {
	return &Software{
		ackLatency: cfg.AckLatency,
		perDomain:  make(map[api.DomainID]uint64),
	}
}

// Invalidate simulates one blocking domain-selective invalidation.
func (s *Software) Invalidate(domain api.DomainID, hint api.InvalidateHint) error {
	if s.ackLatency > 0 {
		time.Sleep(s.ackLatency)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.injected != nil {
		err := s.injected
		s.injected = nil
		return err
	}
	s.perDomain[domain]++
	s.total.Add(1)
	return nil
}

// Name reports the backend family.
func (s *Software) Name() string { return "software" }

// InjectFailure makes the next Invalidate fail once with err.
func (s *Software) InjectFailure(err error) {
	s.mu.Lock()
	s.injected = err
	s.mu.Unlock()
}

// Invalidations returns completed submissions for a domain.
func (s *Software) Invalidations(domain api.DomainID) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.perDomain[domain]
}

// Total returns completed submissions across all domains.
func (s *Software) Total() uint64 {
	return s.total.Load()
}

func init() {
	Register("software", func(cfg map[string]any) (api.InvalidationBackend, error) {
		var sc SoftwareConfig
		if v, ok := cfg["ack_latency"]; ok {
			switch lat := v.(type) {
			case time.Duration:
				sc.AckLatency = lat
			case string:
				d, err := time.ParseDuration(lat)
				if err != nil {
					return nil, api.NewError(api.ErrCodeInvalidArgument, "bad ack_latency").
						WithContext("value", lat)
				}
				sc.AckLatency = d
			}
		}
		return NewSoftware(sc), nil
	})
}
