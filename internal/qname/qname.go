// Package qname defines qualified names used to key statements, schema nodes
// and namespace entries, together with the interning table that deduplicates
// them within a resolution run.
package qname

import (
	"fmt"
	"regexp"
	"strings"
)

// YANGNamespace is the namespace every RFC 7950 statement keyword lives in.
const YANGNamespace = "urn:ietf:params:xml:ns:yang:1"

// identifierRegex matches a YANG identifier.
var identifierRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.\-]*$`)

// Module identifies a module by its namespace URI and revision. An empty
// revision denotes a module without revision statements.
type Module struct {
	Namespace string
	Revision  string
}

// String renders the module the way QName.String embeds it.
func (m Module) String() string {
	if m.Revision == "" {
		return m.Namespace
	}
	return m.Namespace + "?revision=" + m.Revision
}

// QName is a qualified name: a local identifier inside a module.
type QName struct {
	Module Module
	Local  string
}

// New builds a QName without going through an interner.
func New(namespace, revision, local string) QName {
	return QName{Module: Module{Namespace: namespace, Revision: revision}, Local: local}
}

// Keyword builds the QName of a base YANG statement keyword.
func Keyword(local string) QName {
	return QName{Module: Module{Namespace: YANGNamespace}, Local: local}
}

// IsZero reports whether q is the zero value.
func (q QName) IsZero() bool {
	return q.Local == "" && q.Module.Namespace == ""
}

// IsYANG reports whether q names a base YANG statement.
func (q QName) IsYANG() bool {
	return q.Module.Namespace == YANGNamespace
}

// WithModule returns a copy of q re-homed into another module.
func (q QName) WithModule(m Module) QName {
	return QName{Module: m, Local: q.Local}
}

// String returns "(namespace?revision=rev)local".
func (q QName) String() string {
	return "(" + q.Module.String() + ")" + q.Local
}

// Compare orders QNames by namespace, revision, then local name.
func Compare(a, b QName) int {
	if c := strings.Compare(a.Module.Namespace, b.Module.Namespace); c != 0 {
		return c
	}
	if c := strings.Compare(a.Module.Revision, b.Module.Revision); c != 0 {
		return c
	}
	return strings.Compare(a.Local, b.Local)
}

// Ref is an identifier as written in source: an optional prefix and a local
// name. It is resolved into a QName once prefixes are bound.
type Ref struct {
	Prefix string
	Local  string
}

// String returns the source form "prefix:local" or "local".
func (r Ref) String() string {
	if r.Prefix == "" {
		return r.Local
	}
	return r.Prefix + ":" + r.Local
}

// IsIdentifier reports whether s is a valid YANG identifier.
func IsIdentifier(s string) bool {
	return identifierRegex.MatchString(s)
}

// ParseIdentifier validates an unprefixed identifier.
func ParseIdentifier(s string) (string, error) {
	s = strings.TrimSpace(s)
	if !IsIdentifier(s) {
		return "", fmt.Errorf("invalid identifier %q", s)
	}
	return s, nil
}

// ParseRef parses "prefix:local" or "local".
func ParseRef(s string) (Ref, error) {
	s = strings.TrimSpace(s)
	prefix, local, found := strings.Cut(s, ":")
	if !found {
		if !IsIdentifier(s) {
			return Ref{}, fmt.Errorf("invalid identifier %q", s)
		}
		return Ref{Local: s}, nil
	}
	if !IsIdentifier(prefix) {
		return Ref{}, fmt.Errorf("invalid prefix %q in %q", prefix, s)
	}
	if !IsIdentifier(local) {
		return Ref{}, fmt.Errorf("invalid identifier %q in %q", local, s)
	}
	return Ref{Prefix: prefix, Local: local}, nil
}
