package reactor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/specialistvlad/yangreactor/internal/ctxlog"
	"github.com/specialistvlad/yangreactor/internal/effective"
	"github.com/specialistvlad/yangreactor/internal/qname"
	"github.com/specialistvlad/yangreactor/internal/stmt"
	"github.com/specialistvlad/yangreactor/internal/yangerr"
)

// Reactor resolves sets of statement trees into effective models. It holds
// only configuration and may be used by several goroutines at once; all
// resolution state lives in a Run.
type Reactor struct {
	lookup SupportLookup
	opts   Options
}

// New creates a reactor serving keywords through lookup.
func New(lookup SupportLookup, opts Options) *Reactor {
	return &Reactor{lookup: lookup, opts: opts}
}

// Resolve runs all phases over sources and builds the effective model. On
// failure it returns a yangerr.List holding every fatal error and no model.
func (r *Reactor) Resolve(ctx context.Context, sources []*stmt.Node) (*effective.SchemaContext, error) {
	return r.resolve(ctx, sources, r.opts)
}

func (r *Reactor) resolve(ctx context.Context, sources []*stmt.Node, opts Options) (*effective.SchemaContext, error) {
	start := time.Now()
	run := newRun(ctx, r.lookup, opts)
	sc, err := run.execute(ctx, sources)
	stats := Stats{Roots: len(run.roots), Contexts: run.arena.len(), Sweeps: run.sweeps, Duration: time.Since(start)}
	if opts.Observer != nil {
		opts.Observer.RunCompleted(stats, err)
	}
	if err != nil {
		run.logger.Debug("Resolution failed.", "error", err, "contexts", stats.Contexts, "sweeps", stats.Sweeps)
		return nil, err
	}
	run.logger.Debug("Resolution complete.", "modules", len(sc.Modules()), "contexts", stats.Contexts, "sweeps", stats.Sweeps, "duration", stats.Duration)
	return sc, nil
}

// Run is the state of one resolution: the arena of contexts, the global
// namespaces and the interner. It is confined to one goroutine.
type Run struct {
	opts     Options
	lookup   SupportLookup
	interner *qname.Interner
	logger   *slog.Logger

	arena  arena
	roots  []Handle
	global map[*Namespace]*store

	phase    Phase
	sweeps   int
	progress bool
	building bool
	errs     yangerr.List
}

func newRun(ctx context.Context, lookup SupportLookup, opts Options) *Run {
	in := opts.Interner
	if in == nil {
		in = qname.NewInterner()
	}
	return &Run{
		opts:     opts,
		lookup:   lookup,
		interner: in,
		logger:   ctxlog.FromContext(ctx).With("component", "reactor"),
		global:   make(map[*Namespace]*store),
	}
}

func (r *Run) ctx(h Handle) *Context { return r.arena.get(h) }

func (r *Run) ctxs(hs []Handle) []*Context {
	out := make([]*Context, len(hs))
	for i, h := range hs {
		out[i] = r.arena.get(h)
	}
	return out
}

// Phase returns the phase the run is currently completing.
func (r *Run) Phase() Phase { return r.phase }

func (r *Run) record(e *yangerr.Error) {
	if e.Kind == yangerr.Internal {
		panic(e)
	}
	r.errs.Add(e)
}

func (r *Run) recordErr(c *Context, err error) {
	if err == nil {
		return
	}
	var list yangerr.List
	if errors.As(err, &list) {
		for _, e := range list {
			r.record(e)
		}
		return
	}
	r.record(c.asError(err))
}

func (r *Run) failure() error {
	r.errs.Sort()
	return r.errs
}

func (r *Run) execute(ctx context.Context, sources []*stmt.Node) (*effective.SchemaContext, error) {
	for _, src := range sources {
		if err := src.Validate(); err != nil {
			return nil, fmt.Errorf("invalid statement tree: %w", err)
		}
		root := r.newContext(nil, src)
		r.roots = append(r.roots, root.handle)
		if root.failed {
			continue
		}
		if !root.Is("module") && !root.Is("submodule") {
			r.record(root.Error(yangerr.InvalidSubstatement, "top-level statement must be module or submodule"))
		}
	}
	r.logger.Debug("Statement trees loaded.", "roots", len(r.roots), "contexts", r.arena.len())
	if len(r.errs) > 0 {
		return nil, r.failure()
	}

	for _, phase := range resolutionPhases {
		if err := r.completePhase(ctx, phase); err != nil {
			return nil, err
		}
		if phase == PhaseSourceLinkage {
			r.checkImportCycles()
		}
		if len(r.errs) > 0 {
			return nil, r.failure()
		}
	}

	r.finalize()
	if len(r.errs) > 0 {
		return nil, r.failure()
	}

	r.phase = PhaseFrozen
	return r.build(), nil
}

// newContext creates the context for n and, recursively, its children.
func (r *Run) newContext(parent *Context, n *stmt.Node) *Context {
	c := &Context{
		run:      r,
		parent:   NoHandle,
		node:     n,
		original: NoHandle,
		phase:    r.phase,
		hooked:   r.phase,
	}
	r.arena.alloc(c)
	c.root = c.handle
	if parent != nil {
		c.parent = parent.handle
		c.root = parent.root
		parent.declared = append(parent.declared, c.handle)
	}
	r.progress = true

	prefix, local := n.Prefix()
	switch {
	case prefix != "" || (parent != nil && (parent.pending || parent.isUnrecognized())):
		c.pending = true
		c.keyword = qname.QName{Local: n.Keyword}
		c.actions = append(c.actions, &action{
			name:  "resolve keyword",
			phase: PhaseStatementDefinition,
			fn:    r.resolveKeyword,
		})
	default:
		q := r.interner.Intern(qname.Keyword(local))
		s, ok := r.lookup.Lookup(q)
		if !ok {
			c.keyword = q
			c.failed = true
			r.record(c.Error(yangerr.UnsupportedStatement, "unknown statement %q", n.Keyword))
			return c
		}
		r.bind(c, q, s)
	}

	for _, sub := range n.Substatements {
		r.newContext(c, sub)
	}
	return c
}

// bind attaches the support serving q to c and parses the argument.
func (r *Run) bind(c *Context, q qname.QName, s StatementSupport) {
	c.keyword = q
	c.support = s
	c.pending = false
	r.progress = true

	def := s.Definition()
	if !def.ArgumentOptional {
		switch {
		case def.ArgumentName != "" && !c.HasArgument():
			c.failed = true
			r.record(c.Error(yangerr.ArgumentSyntax, "missing %s argument", def.ArgumentName))
			return
		case def.ArgumentName == "" && c.HasArgument():
			c.failed = true
			r.record(c.Error(yangerr.ArgumentSyntax, "%s takes no argument", c.node.Keyword))
			return
		}
	}
	arg, err := s.ParseArgument(c, c.RawArgument())
	if err != nil {
		c.failed = true
		var e *yangerr.Error
		if !errors.As(err, &e) {
			e = c.Error(yangerr.ArgumentSyntax, "%s", err)
		}
		r.record(e)
		return
	}
	c.argument = arg
	s.OnStatementAdded(c)
}

// resolveKeyword binds a prefixed keyword, or any keyword inside an
// extension instance, once prefixes and extensions are known.
func (r *Run) resolveKeyword(c *Context) Outcome {
	parent := c.Parent()
	if parent != nil {
		switch {
		case parent.pending:
			return Retry(c.Error(yangerr.Inference, "enclosing statement %s is unresolved", parent), parent)
		case parent.failed && parent.support == nil:
			c.pending = false
			c.failed = true
			return Done()
		case parent.isUnrecognized():
			r.bind(c, r.looseKeyword(c), unrecognized)
			return Done()
		}
	}

	prefix, local := c.node.Prefix()
	if prefix == "" {
		q := r.interner.Intern(qname.Keyword(local))
		s, ok := r.lookup.Lookup(q)
		if !ok {
			c.pending = false
			c.failed = true
			return Fail(c.Error(yangerr.UnsupportedStatement, "unknown statement %q", c.node.Keyword))
		}
		r.bind(c, q, s)
		return Done()
	}

	mod, ok := c.ResolvePrefix(prefix)
	if !ok {
		c.pending = false
		c.failed = true
		return Fail(c.Error(yangerr.UnsupportedStatement, "prefix %q of %q is not bound to any module", prefix, c.node.Keyword))
	}
	if !mod.ModuleBound() {
		return Retry(c.Error(yangerr.Inference, "module of prefix %q is not linked", prefix), mod)
	}
	q := r.interner.QName(mod.QNameModule(), local)
	ext, ok := c.run.global[ExtensionNamespace].get(q)
	if !ok {
		return Retry(c.Error(yangerr.Inference, "extension %s is not defined in module %s", local, mod.RawArgument()))
	}
	extensionKey.Set(c, ext.value.(*Context))
	if s, ok := r.lookup.Lookup(q); ok {
		r.bind(c, q, s)
		return Done()
	}
	r.bind(c, q, unrecognized)
	return Done()
}

// looseKeyword names a statement nested in an unrecognized extension
// instance, where prefixes may not resolve.
func (r *Run) looseKeyword(c *Context) qname.QName {
	prefix, local := c.node.Prefix()
	if prefix == "" {
		return r.interner.Intern(qname.Keyword(local))
	}
	if mod, ok := c.ResolvePrefix(prefix); ok && mod.ModuleBound() {
		return r.interner.QName(mod.QNameModule(), local)
	}
	return r.interner.QName(qname.Module{}, c.node.Keyword)
}

// Roots returns the module and submodule contexts in source order.
func (r *Run) Roots() []*Context { return r.ctxs(r.roots) }

// walk visits every context depth-first in statement order, declared
// children before effective ones.
func (r *Run) walk(fn func(c *Context) bool) {
	var visit func(c *Context)
	visit = func(c *Context) {
		if !fn(c) {
			return
		}
		for i := 0; i < len(c.declared); i++ {
			visit(r.ctx(c.declared[i]))
		}
		for i := 0; i < len(c.effective); i++ {
			visit(r.ctx(c.effective[i]))
		}
	}
	for _, h := range r.roots {
		visit(r.ctx(h))
	}
}
