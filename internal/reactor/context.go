package reactor

import (
	"fmt"
	"log/slog"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/yangreactor/internal/qname"
	"github.com/specialistvlad/yangreactor/internal/stmt"
	"github.com/specialistvlad/yangreactor/internal/yangerr"
)

// Context is the mutable, in-resolution form of one statement. Contexts are
// owned by the run's arena and refer to each other by Handle.
type Context struct {
	run    *Run
	handle Handle
	parent Handle
	root   Handle
	node   *stmt.Node

	keyword  qname.QName
	support  StatementSupport
	argument any

	phase  Phase
	hooked Phase

	history  stmt.CopyHistory
	original Handle
	// module re-homes copies into the module that instantiated them.
	module *qname.Module

	declared  []Handle
	effective []Handle

	stores  map[*Namespace]*store
	actions []*action
	values  map[any]any

	pending bool
	failed  bool
	pruned  bool
}

func (c *Context) Handle() Handle               { return c.handle }
func (c *Context) Keyword() qname.QName         { return c.keyword }
func (c *Context) Support() StatementSupport    { return c.support }
func (c *Context) Argument() any                { return c.argument }
func (c *Context) RawArgument() string          { return c.node.Argument }
func (c *Context) HasArgument() bool            { return c.node.HasArgument }
func (c *Context) Source() hcl.Range            { return c.node.Source }
func (c *Context) Phase() Phase                 { return c.phase }
func (c *Context) History() stmt.CopyHistory    { return c.history }
func (c *Context) IsCopy() bool                 { return c.original != NoHandle }
func (c *Context) IsRoot() bool                 { return c.parent == NoHandle }
func (c *Context) Failed() bool                 { return c.failed }
func (c *Context) Options() *Options            { return &c.run.opts }
func (c *Context) Interner() *qname.Interner    { return c.run.interner }
func (c *Context) Logger() *slog.Logger         { return c.run.logger }

// Definition returns the support's definition, or nil while the keyword is
// unresolved.
func (c *Context) Definition() *Definition {
	if c.support == nil {
		return nil
	}
	return c.support.Definition()
}

// Is reports whether c is the YANG statement with the given keyword.
func (c *Context) Is(keyword string) bool {
	return c.keyword.IsYANG() && c.keyword.Local == keyword
}

func (c *Context) deferred() bool { return c.pending }

// Parent returns the parent context, nil for roots.
func (c *Context) Parent() *Context {
	if c.parent == NoHandle {
		return nil
	}
	return c.run.ctx(c.parent)
}

// Root returns the module or submodule context c belongs to.
func (c *Context) Root() *Context { return c.run.ctx(c.root) }

// Original returns the context c was copied from, nil for declared
// statements.
func (c *Context) Original() *Context {
	if c.original == NoHandle {
		return nil
	}
	return c.run.ctx(c.original)
}

// Origin follows the copy chain back to the declared statement.
func (c *Context) Origin() *Context {
	cur := c
	for cur.original != NoHandle {
		cur = cur.run.ctx(cur.original)
	}
	return cur
}

// DeclaredChildren returns the children written in the source (or, for a
// copy, the copies of its original's declared children).
func (c *Context) DeclaredChildren() []*Context { return c.run.ctxs(c.declared) }

// EffectiveChildren returns the children added by inference: copies made by
// uses, augment and deviate.
func (c *Context) EffectiveChildren() []*Context { return c.run.ctxs(c.effective) }

// Children returns declared then effective children.
func (c *Context) Children() []*Context {
	out := make([]*Context, 0, len(c.declared)+len(c.effective))
	out = append(out, c.DeclaredChildren()...)
	return append(out, c.EffectiveChildren()...)
}

// LiveChildren returns the children that were not pruned.
func (c *Context) LiveChildren() []*Context {
	var out []*Context
	for _, ch := range c.Children() {
		if !ch.pruned {
			out = append(out, ch)
		}
	}
	return out
}

// Find returns the first live child with the YANG keyword.
func (c *Context) Find(keyword string) *Context {
	for _, ch := range c.LiveChildren() {
		if ch.Is(keyword) {
			return ch
		}
	}
	return nil
}

// FindAll returns every live child with the YANG keyword.
func (c *Context) FindAll(keyword string) []*Context {
	var out []*Context
	for _, ch := range c.LiveChildren() {
		if ch.Is(keyword) {
			out = append(out, ch)
		}
	}
	return out
}

// Prune removes c from the effective model. Pruning is permanent.
func (c *Context) Prune() {
	if !c.pruned {
		c.pruned = true
		c.run.progress = true
	}
}

// Pruned reports whether c was pruned.
func (c *Context) Pruned() bool { return c.pruned }

// PrunedInTree reports whether c or any ancestor was pruned.
func (c *Context) PrunedInTree() bool {
	for cur := c; cur != nil; cur = cur.Parent() {
		if cur.pruned {
			return true
		}
	}
	return false
}

// Instantiated reports whether c is part of the schema tree rather than a
// template inside a grouping, augment, uses or deviation.
func (c *Context) Instantiated() bool {
	for p := c.Parent(); p != nil; p = p.Parent() {
		if d := p.Definition(); d != nil && d.Template {
			return false
		}
	}
	return true
}

// String renders the statement as keyword and argument.
func (c *Context) String() string {
	kw := c.node.Keyword
	if !c.node.HasArgument {
		return kw
	}
	return fmt.Sprintf("%s %q", kw, c.node.Argument)
}

// Error creates an error of the given kind located at c.
func (c *Context) Error(kind yangerr.Kind, format string, args ...any) *yangerr.Error {
	return yangerr.New(kind, c.Source(), c.String(), format, args...)
}

// Key is a typed slot for support-specific state kept on a context.
type Key[T any] struct {
	name string
}

// NewKey declares a state slot.
func NewKey[T any](name string) *Key[T] {
	return &Key[T]{name: name}
}

func (k *Key[T]) String() string { return k.name }

// Get returns the value stored on c.
func (k *Key[T]) Get(c *Context) (T, bool) {
	v, ok := c.values[k]
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}

// Set stores v on c.
func (k *Key[T]) Set(c *Context, v T) {
	if c.values == nil {
		c.values = make(map[any]any)
	}
	c.values[k] = v
}

// Inherited returns the value stored on c or on the nearest original in its
// copy chain.
func (k *Key[T]) Inherited(c *Context) (T, bool) {
	for cur := c; cur != nil; cur = cur.Original() {
		if v, ok := k.Get(cur); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}
