// Package viewer owns both ends of a photo handoff.
//
// Ownership boundary:
// - sender launch: envelope registration + launch extras
// - receiving controller: resolve (delivered -> recovered -> empty) and dispose
//
// Lifecycle order:
// - uninitialized -> resolved -> disposed
//
// - disposal always removes the held token, consumed or not.
package viewer
