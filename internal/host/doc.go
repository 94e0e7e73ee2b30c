// Package host owns the in-process screen lifecycle host.
//
// Ownership boundary:
// - process-scoped delivery and recovery registries
// - screen creation (launch, restore) and destruction
// - restoration bundle persistence for process-death restore
//
// Lifecycle order:
// - NewProcess -> Launch/Restore -> Destroy -> Shutdown
package host
