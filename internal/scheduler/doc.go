// Package scheduler implements the process-wide render queue.
//
// ARCHITECTURE:
//
// Single-Writer Render Loop:
// All tree mutation (scheduler passes, diffing, patching, component
// scope state) happens on one goroutine, the UI goroutine. This ensures:
//   - No locking on the node trees themselves
//   - Deterministic pass ordering
//   - Simple reasoning about partially-patched states (there are none:
//     a pass runs to exhaustion before control returns to the driver)
//
// Work arrives two ways:
//  1. Schedule(r) enqueues a render unit, deduplicated by TaskID. The
//     queue orders units by (tree depth, enqueue seq): a parent's render
//     always completes, producing updated child props, before its
//     affected children render; siblings run in enqueue order.
//  2. Post(fn) is the cross-thread mailbox. Asynchronous completions
//     (suspension resumes, component callbacks) hand work to the UI
//     goroutine here instead of mutating the tree in place.
//
// Flush drains the mailbox, then drains the render queue to exhaustion:
// renders enqueued during the pass (child re-renders triggered by prop
// changes) run within the same pass. Run wraps Flush in a blocking loop
// for drivers that dedicate a goroutine to the UI.
//
// CRITICAL PATTERNS:
//
// Logical clock: every enqueue is stamped with a monotonic seq from
// Clock.Next(). Ordering never consults wall-clock time.
//
// Pass quota: a pass that executes more than MaxTasksPerFlush units is
// assumed to be a render loop (a component unconditionally re-scheduling
// itself); the pass aborts with ErrPassQuota and the queue is dropped.
package scheduler
