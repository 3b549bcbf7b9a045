// Package policy
// Author: momentics <momentics@gmail.com>
//
// Batching policies deciding when the invalidation coordinator runs.
//
// Transmit side: one sync per completed send unit, sequenced before the
// unit's backing storage is released. Receive side: releases accumulate in
// a bounded pending queue, flushed once per processing cycle or when the
// queue reaches capacity, with a recycling-cache fast path that avoids the
// coordinator entirely.
//
// Both policies are single-owner: one transmit or receive context drives
// one policy instance sequentially. Running one instance from concurrent
// workers requires external serialization.
package policy
