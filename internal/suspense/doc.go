// Package suspense tracks suspended boundaries and turns suspension
// resolutions into scheduler enqueues.
//
// The controller does not mount or unmount anything itself: the
// reconciler owns boundary mode flips and hands the controller a retry
// unit to schedule when the boundary's blocking operation completes.
// The controller's job is the wake-up protocol:
//   - exactly one enqueue per suspension generation (epoch), no matter
//     how many suspensions were registered for it or how resolution and
//     registration race
//   - stale handles (from an earlier generation) never resume a
//     boundary twice
//   - resolutions arriving after the boundary is destroyed are benign
//     no-ops
//
// Resolution may happen on any goroutine; the hand-off to the UI
// goroutine goes through the scheduler queue, never by touching the tree.
package suspense
