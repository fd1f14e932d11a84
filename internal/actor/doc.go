// Package actor runs background workers and connects them to the host
// thread through typed channels.
//
// ARCHITECTURE:
//
// A Definition names a worker type and fixes its reach, the sharing and
// placement policy for its instances:
//
//   - Context: one shared instance on the host executor
//   - Job: a fresh instance per bridge on the host executor
//   - Public: one shared instance on a dedicated worker goroutine
//   - Private: a fresh instance per bridge on a dedicated worker goroutine
//
// A Bridge is a bidirectional typed channel between host code and one
// instance; a Dispatcher is the send-only variant. Shared instances are
// reference-counted through an explicit Registry: the first bridge
// creates the instance, the last one to disconnect tears it down.
//
// Host-executor instances (Context, Job) exchange messages by value.
// Worker instances (Public, Private) share no memory with the host:
// every crossing is an owned, serialized envelope, and replies re-enter
// the host through the executor's cross-thread mailbox.
//
// Ordering: messages sent on one bridge reach the instance in send
// order. Nothing is guaranteed across different bridges to the same
// instance.
//
// ERROR HANDLING: envelope decode failures are fatal for the affected
// bridge. The host side learns of any instance-initiated closure
// through the bridge's terminal closed callback; nothing is retried.
package actor
