// Package support implements the RFC 7950 statements on top of the reactor.
//
// Each keyword has a support value that declares its argument, its allowed
// substatements and how it takes part in the schema tree. Supports that need
// information from elsewhere in the model (typedefs, groupings, identities,
// augment targets) schedule inference actions that retry until the
// information is available.
//
// Module registers every support with a registry:
//
//	reg := registry.New(&support.Module{})
package support
