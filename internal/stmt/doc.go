// Package stmt holds the raw statement tree handed to the resolution engine
// by source adapters, and the copy history recorded on statements that were
// inherited rather than declared.
//
// A Node is plain data: keyword, raw argument, ordered substatements and the
// source range it came from. It carries no resolution state; the reactor
// wraps each node in a statement context for that.
package stmt
