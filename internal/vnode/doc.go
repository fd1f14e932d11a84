// Package vnode provides the tree value model for loom.
//
// This package contains the node variants, the props contract, the
// tri-state render result, and the suspension token. All other internal
// packages import vnode; vnode imports nothing internal. This ensures the
// node model remains the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Nodes are pure values. A mounted tree is never mutated in place;
//     render logic always produces a fresh tree and the previous version
//     is retained until diffing completes. This is what makes concurrent
//     inspection of a retained tree safe without locking.
//   - The variant set is closed (sealed interface). The reconciler
//     switches over exactly these kinds and nothing else.
//   - Text content is NFC-normalized on construction so structural
//     equality is not sensitive to Unicode representation.
package vnode
