// File: api/mapper.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Abstraction over the address-translation map/unmap primitive. The mapper
// creates and destroys translation entries but never talks to the hardware
// invalidation queue; making a removal visible to hardware is the
// coordinator's job.

package api

// Mapper establishes and tears down device-visible translations.
//
// Implementations may be called concurrently from independent transmit and
// receive contexts.
type Mapper interface {
	// Map creates a translation for buf in the given domain and returns
	// its handle.
	Map(domain DomainID, buf []byte, dir Direction, kind MappingKind) (MappingHandle, error)

	// Unmap destroys the translation entry for h. Hardware may still hold
	// the translation in its IOTLB until the domain is invalidated; callers
	// must not recycle or free the backing memory on the strength of Unmap
	// alone.
	Unmap(h MappingHandle) error
}
