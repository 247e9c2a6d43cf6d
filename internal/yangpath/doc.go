// Package yangpath parses the small argument languages embedded in YANG
// statements: schema node identifiers (augment, refine, deviation targets),
// leafref path expressions and if-feature boolean expressions.
//
// Parsers only check syntax and return prefixed references unresolved; the
// reactor binds prefixes to modules once imports are linked.
package yangpath
