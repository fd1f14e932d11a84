// Package surface defines the abstract mutation interface the reconciler
// patches through, plus two in-module implementations: an in-memory
// element tree used for structural round-trip tests, and a recording
// wrapper that captures a deterministic patch trace for golden
// comparison.
//
// The production rendering surface (the platform binding layer) lives
// outside this module; the reconciler only ever sees the Surface
// interface and opaque handles.
//
// Index semantics: InsertChild inserts at index, shifting later siblings
// right. MoveChild first detaches the child, then inserts at index as
// interpreted after the detach. RemoveChild detaches and discards.
// A surface error is fatal for the patch application in progress; the
// reconciler propagates it to the external driver without retrying.
package surface
