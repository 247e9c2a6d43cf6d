package reactor

import (
	"fmt"

	"github.com/specialistvlad/yangreactor/internal/qname"
	"github.com/specialistvlad/yangreactor/internal/yangerr"
)

// Scope says where a namespace's entries are stored and which stores a
// lookup consults.
type Scope int

const (
	// ScopeGlobal entries live in the run and are visible everywhere.
	ScopeGlobal Scope = iota
	// ScopeRoot entries live on the root of the writer's tree. Lookups see
	// the whole module: the module and every submodule it includes.
	ScopeRoot
	// ScopeLocal entries live on one context and are seen only there.
	ScopeLocal
	// ScopeLexical entries live on one context and are seen by it and all
	// its descendants. At the top level they are shared by the module and
	// its submodules.
	ScopeLexical
)

func (s Scope) String() string {
	switch s {
	case ScopeGlobal:
		return "global"
	case ScopeRoot:
		return "root"
	case ScopeLocal:
		return "local"
	case ScopeLexical:
		return "lexical"
	default:
		return "unknown"
	}
}

// WriteMode says how a second write for an existing key is treated.
type WriteMode int

const (
	// WriteUnique rejects any second write with a different value.
	WriteUnique WriteMode = iota
	// WriteIdempotent accepts rewriting the same value. A different value is
	// still a duplicate definition.
	WriteIdempotent
)

// Namespace is a kind of scoped key-value table used during resolution.
// Values are compared with ==, so they must be comparable.
type Namespace struct {
	name  string
	scope Scope
	mode  WriteMode
}

// NewNamespace declares a namespace kind.
func NewNamespace(name string, scope Scope, mode WriteMode) *Namespace {
	return &Namespace{name: name, scope: scope, mode: mode}
}

func (ns *Namespace) Name() string    { return ns.name }
func (ns *Namespace) Scope() Scope    { return ns.scope }
func (ns *Namespace) Mode() WriteMode { return ns.mode }
func (ns *Namespace) String() string  { return ns.name }

// ModuleKey identifies a module or submodule source.
type ModuleKey struct {
	Name     string
	Revision string
}

func (k ModuleKey) String() string {
	if k.Revision == "" {
		return k.Name
	}
	return k.Name + "@" + k.Revision
}

// Built-in namespaces. Unless stated otherwise values are *Context.
var (
	// ModuleNamespace maps ModuleKey to module roots.
	ModuleNamespace = NewNamespace("module", ScopeGlobal, WriteUnique)
	// ModuleByNamespace maps qname.Module to module roots.
	ModuleByNamespace = NewNamespace("module namespace", ScopeGlobal, WriteUnique)
	// SubmoduleNamespace maps ModuleKey to submodule roots.
	SubmoduleNamespace = NewNamespace("submodule", ScopeGlobal, WriteUnique)
	// PrefixToModule maps a prefix usable in a source to a module root.
	PrefixToModule = NewNamespace("prefix", ScopeLocal, WriteUnique)
	// ImportedModules maps an imported module name to its root.
	ImportedModules = NewNamespace("import", ScopeLocal, WriteUnique)
	// ImportByPrefix maps an import prefix to the import statement.
	ImportByPrefix = NewNamespace("import prefix", ScopeLocal, WriteUnique)
	// IncludedSubmodules maps a submodule name to its root.
	IncludedSubmodules = NewNamespace("include", ScopeLocal, WriteUnique)
	// ExtensionNamespace maps extension QNames to extension statements.
	ExtensionNamespace = NewNamespace("extension", ScopeGlobal, WriteUnique)
	// FeatureNamespace maps feature QNames to feature statements.
	FeatureNamespace = NewNamespace("feature", ScopeGlobal, WriteUnique)
	// IdentityNamespace maps identity QNames to identity statements.
	IdentityNamespace = NewNamespace("identity", ScopeGlobal, WriteUnique)
	// GroupingNamespace maps grouping names to grouping statements.
	GroupingNamespace = NewNamespace("grouping", ScopeLexical, WriteUnique)
	// TypedefNamespace maps typedef names to typedef statements.
	TypedefNamespace = NewNamespace("typedef", ScopeLexical, WriteUnique)
	// SchemaTreeNamespace maps a child schema node QName to the child.
	SchemaTreeNamespace = NewNamespace("schema node", ScopeLocal, WriteIdempotent)
	// TopLevelNamespace maps top-level schema node names across a module and
	// its submodules.
	TopLevelNamespace = NewNamespace("top-level node", ScopeRoot, WriteIdempotent)
	// SemanticVersionNamespace maps ModuleKey to the module's semantic
	// version string.
	SemanticVersionNamespace = NewNamespace("semantic version", ScopeGlobal, WriteIdempotent)
	// ImportVersionNamespace maps an import prefix to the semantic version
	// the importing module requires.
	ImportVersionNamespace = NewNamespace("import version", ScopeLocal, WriteIdempotent)
)

type entry struct {
	value any
	owner Handle
}

// store is one namespace's table in one scope. Keys keep insertion order so
// iteration is deterministic.
type store struct {
	entries map[any]entry
	order   []any
}

func newStore() *store {
	return &store{entries: make(map[any]entry)}
}

func (s *store) get(key any) (entry, bool) {
	if s == nil {
		return entry{}, false
	}
	e, ok := s.entries[key]
	return e, ok
}

func (s *store) put(key, value any, owner Handle) {
	if _, ok := s.entries[key]; !ok {
		s.order = append(s.order, key)
	}
	s.entries[key] = entry{value: value, owner: owner}
}

// Entry is one key-value pair of a namespace.
type Entry struct {
	Key   any
	Value any
}

func (s *store) list() []Entry {
	if s == nil {
		return nil
	}
	out := make([]Entry, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, Entry{Key: k, Value: s.entries[k].value})
	}
	return out
}

// home returns the context whose store holds ns entries written through c,
// or nil for global namespaces.
func (c *Context) home(ns *Namespace) *Context {
	switch ns.scope {
	case ScopeGlobal:
		return nil
	case ScopeRoot:
		return c.Root()
	default:
		return c
	}
}

func (c *Context) storeFor(ns *Namespace, create bool) *store {
	var stores map[*Namespace]*store
	if h := c.home(ns); h != nil {
		if h.stores == nil {
			if !create {
				return nil
			}
			h.stores = make(map[*Namespace]*store)
		}
		stores = h.stores
	} else {
		stores = c.run.global
	}
	s := stores[ns]
	if s == nil && create {
		s = newStore()
		stores[ns] = s
	}
	return s
}

// lookup resolves key in ns as seen from c.
func (c *Context) lookup(ns *Namespace, key any) (entry, bool) {
	switch ns.scope {
	case ScopeGlobal:
		return c.run.global[ns].get(key)
	case ScopeLocal:
		return c.stores[ns].get(key)
	case ScopeRoot:
		for _, r := range c.Root().family() {
			if e, ok := r.stores[ns].get(key); ok {
				return e, true
			}
		}
		return entry{}, false
	case ScopeLexical:
		for cur := c; cur != nil; cur = cur.Parent() {
			if cur.IsRoot() {
				for _, r := range cur.family() {
					if e, ok := r.stores[ns].get(key); ok {
						return e, true
					}
				}
				break
			}
			if e, ok := cur.stores[ns].get(key); ok {
				return e, true
			}
		}
		return entry{}, false
	default:
		panic(internalError("namespace %s has unknown scope %d", ns, ns.scope))
	}
}

// AddToNamespace stores key -> value in ns. A second definition of key with a
// different value is a DuplicateDefinition error naming both sources.
func (c *Context) AddToNamespace(ns *Namespace, key, value any) error {
	if prev, ok := c.lookup(ns, key); ok {
		if prev.value == value {
			return nil
		}
		return c.duplicate(ns, key, value, prev)
	}
	if ns.scope == ScopeLexical {
		if inner, ok := c.shadowed(ns, key); ok && inner.value != value {
			return c.duplicate(ns, key, value, inner)
		}
	}
	c.storeFor(ns, true).put(key, value, c.handle)
	return nil
}

// shadowed finds an entry for key already stored below c, which a lexical
// write on c would otherwise hide. Writes on a root search the subtrees of
// its whole family.
func (c *Context) shadowed(ns *Namespace, key any) (entry, bool) {
	starts := []*Context{c}
	if c.IsRoot() {
		starts = c.family()
	}
	var stack []*Context
	for _, s := range starts {
		stack = append(stack, s.DeclaredChildren()...)
	}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if e, ok := cur.stores[ns].get(key); ok {
			return e, true
		}
		stack = append(stack, cur.DeclaredChildren()...)
	}
	return entry{}, false
}

func (c *Context) duplicate(ns *Namespace, key, value any, prev entry) *yangerr.Error {
	src := c
	if v, ok := value.(*Context); ok {
		src = v
	}
	first := c.run.ctx(prev.owner)
	if v, ok := prev.value.(*Context); ok {
		first = v
	}
	e := src.Error(yangerr.DuplicateDefinition, "%s %s is already defined at %s",
		ns.name, keyString(key), yangerr.FormatRange(first.Source()))
	e.Related = append(e.Related, first.Source())
	return e
}

func keyString(key any) string {
	switch k := key.(type) {
	case string:
		return fmt.Sprintf("%q", k)
	case qname.QName:
		return fmt.Sprintf("%q", k.Local)
	case fmt.Stringer:
		return fmt.Sprintf("%q", k.String())
	default:
		return fmt.Sprintf("%v", k)
	}
}

// FromNamespace looks key up in ns as seen from c.
func (c *Context) FromNamespace(ns *Namespace, key any) (any, bool) {
	e, ok := c.lookup(ns, key)
	if !ok {
		return nil, false
	}
	return e.value, true
}

// ContextFromNamespace looks up a statement-valued entry.
func (c *Context) ContextFromNamespace(ns *Namespace, key any) (*Context, bool) {
	v, ok := c.FromNamespace(ns, key)
	if !ok {
		return nil, false
	}
	sc, ok := v.(*Context)
	return sc, ok
}

// NamespaceEntries lists the entries of ns stored in c's scope, in insertion
// order. For global namespaces it lists the run's entries.
func (c *Context) NamespaceEntries(ns *Namespace) []Entry {
	return c.storeFor(ns, false).list()
}

// family returns the roots sharing a module's definitions: the module
// itself, then the submodules it includes, directly or through other
// submodules. A submodule whose module is not known yet is its own family.
func (c *Context) family() []*Context {
	owner := c.ModuleRoot()
	out := []*Context{owner}
	seen := map[*Context]bool{owner: true}
	for i := 0; i < len(out); i++ {
		for _, e := range out[i].NamespaceEntries(IncludedSubmodules) {
			if sub, ok := e.Value.(*Context); ok && !seen[sub] {
				seen[sub] = true
				out = append(out, sub)
			}
		}
	}
	if !seen[c] {
		out = append(out, c)
	}
	return out
}
