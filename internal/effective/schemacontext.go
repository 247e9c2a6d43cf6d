// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package effective

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/specialistvlad/yangreactor/internal/qname"
)

// Index collects lookup tables while the builder walks the context tree.
type Index struct {
	nodes      map[string]SchemaNode
	identities []*Identity
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{nodes: make(map[string]SchemaNode)}
}

// AddNode records a data tree node under its path.
func (x *Index) AddNode(n SchemaNode) {
	x.nodes[n.Path().String()] = n
}

// AddIdentity records an identity for derived-identity queries.
func (x *Index) AddIdentity(i *Identity) {
	x.identities = append(x.identities, i)
}

// SchemaContext is the frozen result of a successful resolution run.
type SchemaContext struct {
	modules    []*Module
	byName     map[string][]*Module
	byNS       map[qname.Module]*Module
	latestByNS map[string]*Module
	nodes      map[string]SchemaNode
	identities map[qname.QName]*Identity
	derived    map[*Identity][]*Identity
}

// NewSchemaContext freezes the built modules and the index gathered while
// building them. Submodules are reachable through their including module.
func NewSchemaContext(modules []*Module, idx *Index) *SchemaContext {
	sc := &SchemaContext{
		byName:     make(map[string][]*Module),
		byNS:       make(map[qname.Module]*Module),
		latestByNS: make(map[string]*Module),
		nodes:      make(map[string]SchemaNode, len(idx.nodes)),
		identities: make(map[qname.QName]*Identity, len(idx.identities)),
		derived:    make(map[*Identity][]*Identity),
	}
	for _, m := range modules {
		if m.IsSubmodule() {
			continue
		}
		sc.modules = append(sc.modules, m)
	}
	slices.SortStableFunc(sc.modules, func(a, b *Module) int {
		if c := cmp.Compare(a.Name(), b.Name()); c != 0 {
			return c
		}
		return cmp.Compare(b.Revision(), a.Revision())
	})
	for _, m := range sc.modules {
		sc.byName[m.Name()] = append(sc.byName[m.Name()], m)
		sc.byNS[m.QNameModule()] = m
		if cur, ok := sc.latestByNS[m.Namespace()]; !ok || m.Revision() > cur.Revision() {
			sc.latestByNS[m.Namespace()] = m
		}
	}
	for k, n := range idx.nodes {
		sc.nodes[k] = n
	}
	for _, id := range idx.identities {
		sc.identities[id.QName()] = id
	}
	for _, id := range idx.identities {
		for _, base := range idx.identities {
			if id != base && id.DerivesFrom(base) {
				sc.derived[base] = append(sc.derived[base], id)
			}
		}
	}
	for base, list := range sc.derived {
		slices.SortFunc(list, func(a, b *Identity) int { return qname.Compare(a.QName(), b.QName()) })
		sc.derived[base] = list
	}
	return sc
}

// Modules returns every module ordered by name, newest revision first.
func (sc *SchemaContext) Modules() []*Module { return slices.Clone(sc.modules) }

// FindModule looks a module up by namespace and revision. An empty revision
// selects the newest revision of the namespace.
func (sc *SchemaContext) FindModule(namespace, revision string) (*Module, bool) {
	if revision == "" {
		m, ok := sc.latestByNS[namespace]
		return m, ok
	}
	m, ok := sc.byNS[qname.Module{Namespace: namespace, Revision: revision}]
	return m, ok
}

// FindModuleByName looks a module up by name and revision. An empty revision
// selects the newest one.
func (sc *SchemaContext) FindModuleByName(name, revision string) (*Module, bool) {
	for _, m := range sc.byName[name] {
		if revision == "" || m.Revision() == revision {
			return m, true
		}
	}
	return nil, false
}

// FindNode looks a data tree node up by absolute schema path.
func (sc *SchemaContext) FindNode(path SchemaPath) (SchemaNode, bool) {
	n, ok := sc.nodes[path.String()]
	return n, ok
}

// FindNodeByString resolves a path written with module names as prefixes,
// "/mod:top/inner". Unprefixed steps inherit the previous step's module.
func (sc *SchemaContext) FindNodeByString(s string) (SchemaNode, error) {
	if !strings.HasPrefix(s, "/") {
		return nil, fmt.Errorf("path %q must be absolute", s)
	}
	var path SchemaPath
	var mod *Module
	for _, step := range strings.Split(s[1:], "/") {
		name, local, found := strings.Cut(step, ":")
		if found {
			m, ok := sc.FindModuleByName(name, "")
			if !ok {
				return nil, fmt.Errorf("path %q: unknown module %q", s, name)
			}
			mod = m
		} else {
			local = name
		}
		if mod == nil {
			return nil, fmt.Errorf("path %q: first step must name a module", s)
		}
		path = append(path, qname.QName{Module: mod.QNameModule(), Local: local})
	}
	n, ok := sc.FindNode(path)
	if !ok {
		return nil, fmt.Errorf("path %q: no such node", s)
	}
	return n, nil
}

// FindIdentity looks an identity up by name.
func (sc *SchemaContext) FindIdentity(q qname.QName) (*Identity, bool) {
	id, ok := sc.identities[q]
	return id, ok
}

// DerivedIdentities returns every identity derived, directly or transitively,
// from base, ordered by name.
func (sc *SchemaContext) DerivedIdentities(base *Identity) []*Identity {
	return slices.Clone(sc.derived[base])
}

// Walk visits every data tree node depth-first in schema order. Returning
// false from fn skips the node's children.
func (sc *SchemaContext) Walk(fn func(SchemaNode) bool) {
	var walk func(n SchemaNode)
	walk = func(n SchemaNode) {
		if !fn(n) {
			return
		}
		if c, ok := n.(DataNodeContainer); ok {
			for _, ch := range c.Children() {
				walk(ch)
			}
		}
	}
	for _, m := range sc.modules {
		for _, ch := range m.Children() {
			walk(ch)
		}
	}
}
