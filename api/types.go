// File: api/types.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Core value types shared by the coordinator, the release policies and
// the hardware backends.

package api

// DeviceAddr is an address as seen by the device through the IOMMU.
type DeviceAddr uint64

// DomainID identifies one hardware invalidation domain. All translations
// created for a device attachment share the attachment's domain.
type DomainID uint32

// Direction describes the DMA direction a mapping was created for.
type Direction uint8

const (
	// DirToDevice marks memory the device only reads (transmit path).
	DirToDevice Direction = iota
	// DirFromDevice marks memory the device only writes (receive path).
	DirFromDevice
	// DirBidirectional marks memory the device both reads and writes.
	DirBidirectional
)

// String returns the canonical short name of the direction.
func (d Direction) String() string {
	switch d {
	case DirToDevice:
		return "to-device"
	case DirFromDevice:
		return "from-device"
	case DirBidirectional:
		return "bidirectional"
	}
	return "unknown"
}

// MappingKind distinguishes how a translation was established. Unmap
// behavior differs per kind, so every switch over MappingKind must cover
// all constants.
type MappingKind uint8

const (
	// KindSingle is a byte-granular mapping of an arbitrary region.
	KindSingle MappingKind = iota
	// KindPage is a page-granular mapping of one or more whole pages.
	KindPage
)

// String returns the canonical short name of the mapping kind.
func (k MappingKind) String() string {
	switch k {
	case KindSingle:
		return "single"
	case KindPage:
		return "page"
	}
	return "unknown"
}

// MappingHandle identifies one outstanding device-visible translation.
// It is immutable once returned by Mapper.Map and is consumed exactly once
// by an unmap call; the handle value itself stays valid for bookkeeping
// after the translation is gone.
type MappingHandle struct {
	Domain DomainID
	Addr   DeviceAddr
	Len    int
	Dir    Direction
	Kind   MappingKind
}

// MappedBuffer couples a live translation with the host memory backing it.
// This is the unit the receive path recycles, holds pending, and finally
// returns to the arena.
type MappedBuffer struct {
	Handle MappingHandle
	Data   []byte
}
