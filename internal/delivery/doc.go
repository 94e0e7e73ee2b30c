// Package delivery owns the in-memory transition handoff registry.
//
// Ownership boundary:
// - token allocation
// - single-consume envelope retrieval
// - idempotent purge of unconsumed envelopes
//
// One mutex guards the map. Absence is a normal outcome (cold start,
// cross-process restore) and is never reported as an error.
package delivery
