// Package state owns the restoration key/value channel handed between screens.
//
// Ownership boundary:
// - typed, size-constrained key/value bundle
// - fixed handoff keys
// - on-disk form used to survive process death
package state
