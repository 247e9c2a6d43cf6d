package reactor

import (
	"github.com/specialistvlad/yangreactor/internal/qname"
	"github.com/specialistvlad/yangreactor/internal/yangerr"
)

type moduleBinding struct {
	module qname.Module
	owner  Handle
}

var moduleKey = NewKey[moduleBinding]("module")

// BindModule records, on a root, the namespace its definitions live in and
// the module root that owns them: the root itself for a module, the
// belonged-to module for a submodule.
func (c *Context) BindModule(m qname.Module, owner *Context) {
	if !c.IsRoot() {
		panic(internalError("module bound on non-root statement %s", c))
	}
	m.Namespace = c.run.interner.String(m.Namespace)
	m.Revision = c.run.interner.String(m.Revision)
	moduleKey.Set(c, moduleBinding{module: m, owner: owner.handle})
	c.run.progress = true
}

// ModuleBound reports whether c's root has been bound to a module.
func (c *Context) ModuleBound() bool {
	if c.module != nil {
		return true
	}
	_, ok := moduleKey.Get(c.Root())
	return ok
}

// ModuleRoot returns the root of the module owning c's definitions.
func (c *Context) ModuleRoot() *Context {
	root := c.Root()
	if b, ok := moduleKey.Get(root); ok {
		return c.run.ctx(b.owner)
	}
	return root
}

// QNameModule returns the module qualifying names defined by c. Copies are
// re-homed into the module that instantiated them.
func (c *Context) QNameModule() qname.Module {
	if c.module != nil {
		return *c.module
	}
	b, _ := moduleKey.Get(c.Root())
	return b.module
}

// QName qualifies local with c's module.
func (c *Context) QName(local string) qname.QName {
	return c.run.interner.QName(c.QNameModule(), local)
}

// ArgumentQName qualifies c's raw argument with c's module. Statements
// without an argument, such as input and output, are named by their keyword.
func (c *Context) ArgumentQName() qname.QName {
	if !c.HasArgument() {
		return c.QName(c.keyword.Local)
	}
	return c.QName(c.RawArgument())
}

// ResolvePrefix returns the module root bound to prefix in the source c was
// written in.
func (c *Context) ResolvePrefix(prefix string) (*Context, bool) {
	return c.Origin().Root().ContextFromNamespace(PrefixToModule, prefix)
}

// ResolveRef qualifies a possibly prefixed reference. An empty prefix means
// the module the reference was written in.
func (c *Context) ResolveRef(ref qname.Ref) (qname.QName, error) {
	origin := c.Origin()
	if ref.Prefix == "" {
		return origin.QName(ref.Local), nil
	}
	mod, ok := c.ResolvePrefix(ref.Prefix)
	if !ok {
		return qname.QName{}, c.Error(yangerr.Inference, "prefix %q is not bound to any module", ref.Prefix)
	}
	return c.run.interner.QName(mod.QNameModule(), ref.Local), nil
}

// DefinitionScope returns the context lexical lookups of a reference written
// with ref's prefix start from: c's original for local references, the
// imported module's root otherwise.
func (c *Context) DefinitionScope(ref qname.Ref) (*Context, error) {
	origin := c.Origin()
	if ref.Prefix == "" {
		return origin, nil
	}
	mod, ok := c.ResolvePrefix(ref.Prefix)
	if !ok {
		return nil, c.Error(yangerr.Inference, "prefix %q is not bound to any module", ref.Prefix)
	}
	if mod == origin.ModuleRoot() {
		return origin, nil
	}
	return mod, nil
}

// FindModule returns the module root with the given name and revision. An
// empty revision selects the latest revision.
func (c *Context) FindModule(name, revision string) (*Context, bool) {
	return c.run.findSource(ModuleNamespace, name, revision)
}

// FindSubmodule is FindModule for submodules.
func (c *Context) FindSubmodule(name, revision string) (*Context, bool) {
	return c.run.findSource(SubmoduleNamespace, name, revision)
}

func (r *Run) findSource(ns *Namespace, name, revision string) (*Context, bool) {
	if revision != "" {
		e, ok := r.global[ns].get(ModuleKey{Name: name, Revision: revision})
		if !ok {
			return nil, false
		}
		return e.value.(*Context), true
	}
	var best *Context
	bestRev := ""
	for _, e := range r.global[ns].list() {
		k := e.Key.(ModuleKey)
		if k.Name != name {
			continue
		}
		if best == nil || k.Revision > bestRev {
			best, bestRev = e.Value.(*Context), k.Revision
		}
	}
	return best, best != nil
}
