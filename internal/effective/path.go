// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package effective

import (
	"slices"
	"strings"

	"github.com/specialistvlad/yangreactor/internal/qname"
)

// SchemaPath is the absolute path of a schema node: one QName per schema
// tree level, choice and case nodes included.
type SchemaPath []qname.QName

// Append returns a new path with q added at the end.
func (p SchemaPath) Append(q qname.QName) SchemaPath {
	out := make(SchemaPath, len(p), len(p)+1)
	copy(out, p)
	return append(out, q)
}

// Parent returns the path without its last element.
func (p SchemaPath) Parent() SchemaPath {
	if len(p) == 0 {
		return nil
	}
	return slices.Clone(p[:len(p)-1])
}

// Last returns the final element, or the zero QName for an empty path.
func (p SchemaPath) Last() qname.QName {
	if len(p) == 0 {
		return qname.QName{}
	}
	return p[len(p)-1]
}

// Equal reports whether both paths hold the same QNames.
func (p SchemaPath) Equal(o SchemaPath) bool {
	return slices.Equal(p, o)
}

// String renders the path with fully qualified names. It doubles as the key
// of the schema context's node index.
func (p SchemaPath) String() string {
	var b strings.Builder
	for _, q := range p {
		b.WriteByte('/')
		b.WriteString(q.String())
	}
	return b.String()
}

// LocalString renders the path with local names only, e.g. "/top/inner".
func (p SchemaPath) LocalString() string {
	var b strings.Builder
	for _, q := range p {
		b.WriteByte('/')
		b.WriteString(q.Local)
	}
	return b.String()
}
