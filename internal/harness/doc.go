// Package harness runs declarative reconciliation scenarios.
//
// A scenario is a YAML file naming a sequence of trees. The harness
// mounts the first tree onto a recorded in-memory surface, patches
// through the remaining trees, and produces a deterministic patch
// trace: one section of mutation ops per step plus the final surface
// rendition. Traces are compared against golden files, and scenarios
// can carry their own assertions on op counts, the final rendition,
// and emitted diagnostics.
//
// The trace is stable because the recorder names handles in creation
// order, node attributes are applied in sorted key order, and the
// reconciler itself is deterministic for a given input sequence.
package harness
