// Package sim
// Author: momentics <momentics@gmail.com>
//
// Synthetic device workload for the iotlbsim binary: drives the transmit
// batcher and the receive releaser against a configurable invalidation
// backend and reports how far the deferred path amortizes hardware
// invalidations compared to strict mode.
package sim
