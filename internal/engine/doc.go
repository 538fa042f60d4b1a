// Package engine implements the paged list, lazy selection, and fractional
// reorder machinery behind every list-of-items view.
//
// Key Implementations:
//   - [Controller] : Owns the visible item window, the authoritative ordered
//     id sequence, and sequential background prefetch
//   - [Selection] : Complement-based selection supporting O(1) select-all
//     without materializing the list
//   - [ComputeOrderKey] : Fractional position assignment for single moves,
//     with precision-exhaustion detection
//   - [Scheduler] : Immediate single-move persistence plus debounced,
//     target-scoped full renormalization
//   - [Dispatcher] / [BoundList] : The single UI-affinity execution context
//     and the observable ordered sequence it mutates
//
// Concurrency model: the id sequence, position map, and paging cursor are
// guarded by a reader-writer lock that is never held across a blocking call.
// Every refresh starts a new generation identified by a monotonic counter and
// a cancellable context; in-flight completions from a stale generation are
// discarded by comparing the counter before mutating shared state. All bound
// list mutations are posted to the Dispatcher goroutine and applied in post
// order, so pages always land in ascending page-number order.
package engine
