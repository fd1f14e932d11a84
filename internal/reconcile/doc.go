// Package reconcile computes and applies the minimal edit sequence
// between two vnode trees through the abstract surface mutation
// interface.
//
// ARCHITECTURE:
//
// Shadow tree (the arena): every mounted tree is mirrored by a tree of
// mount records ("bundles") holding the surface handles, the live
// component scopes, and the boundary modes. Nodes stay pure values;
// back-references run through the bundle tree, parent links are plain
// container lookups, and no record is owned by two places at once.
//
// Diff rules, in order:
//  1. Same variant (and same tag for elements): diff in place, with
//     attributes by key set difference, children recursively. Anything
//     else: unmount the old record entirely, mount the new node fresh.
//  2. Unkeyed children diff position by position; trailing surplus on
//     either side mounts or unmounts.
//  3. Keyed lists reuse records by key. A record moves only when the
//     relative order of keys common to both sides changed; the kept
//     subsequence is computed via longest increasing subsequence over
//     old positions, so an order-preserving update emits zero moves.
//  4. Component placeholders reuse the mounted scope when the blueprint
//     type matches; only the props snapshot swaps, and the scope's
//     changed-props policy decides whether that re-renders. A type
//     change destroys the scope and remounts.
//  5. A suspense boundary diffs the subtree for its current mode;
//     flipping modes is a full subtree replace.
//
// ERROR HANDLING:
//
// Malformed keyed lists (duplicate or missing keys) are recovered
// locally: the list falls back to positional diffing and a diagnostic is
// recorded, never a hard failure. Surface errors are fatal for the
// patch application in progress and propagate to the caller unretried.
// Render failures from scheduled re-renders are reported through the
// failure handler, since there is no caller to return them to.
//
// CRITICAL: every entry point runs on the UI goroutine. The reconciler
// holds no locks; single-writer discipline is inherited from the
// scheduler.
package reconcile
