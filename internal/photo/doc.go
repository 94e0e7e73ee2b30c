// Package photo owns the handoff payload shapes shared by sender and receiver.
//
// Ownership boundary:
// - provider capability (metadata + recover identifier)
// - compact metadata and its binary blob form
// - handoff envelope (items, selected index, background snapshot)
// - the shared loss placeholder
//
// Recovery and delivery machinery never look past the Provider capability.
package photo
