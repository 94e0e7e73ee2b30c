// Package recovery owns provider reconstruction from persisted hints.
//
// Ownership boundary:
// - identifier -> reconstructor registration table
// - per-item reconstruction with loss degradation
// - ordered, optionally parallel reconstruction of a record list
//
// Reconstruction never returns an error to callers. Every failure is reported as
// a Degraded outcome carrying photo.Loss so one bad item cannot block the rest.
package recovery
