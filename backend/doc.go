// Package backend
// Author: momentics <momentics@gmail.com>
//
// Invalidation backend families. One api.InvalidationBackend implementation
// exists per hardware family; the family is selected by name once at
// configuration time through the registry in registry.go. There is no
// runtime dispatch table and no global mutable selection state.
//
// Families: "software" (in-process simulation, cross-platform) and "vfio"
// (ioctl submission through a VFIO container, Linux only).
package backend
