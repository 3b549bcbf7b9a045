// Package iotlb
// Author: momentics <momentics@gmail.com>
//
// Deferred IOTLB invalidation coordinator. Decouples "remove a translation"
// (Mapper.Unmap, cheap, no hardware traffic) from "make the removal visible
// to hardware" (a blocking domain-selective invalidation), so release
// policies can amortize one invalidation over many unmaps.
//
// Safety contract: memory backing an unmapped translation must not be
// recycled or freed until a Sync on the mapping's domain, issued after the
// unmap, has returned nil. Granularity is deliberately coarse: a sync
// covers the whole domain, so correctness never depends on tracking the
// exact set of removed addresses.
package iotlb
