package support

import (
	"github.com/specialistvlad/yangreactor/internal/effective"
	"github.com/specialistvlad/yangreactor/internal/qname"
	"github.com/specialistvlad/yangreactor/internal/reactor"
	"github.com/specialistvlad/yangreactor/internal/stmt"
	"github.com/specialistvlad/yangreactor/internal/yangerr"
)

var importTargetKey = reactor.NewKey[*reactor.Context]("import target")

func linkageSupports() []reactor.StatementSupport {
	header := rules().
		Optional("yang-version", "organization", "contact", "description", "reference").
		Any(linkageHeaders...).
		Any(bodyStatements...).
		Any(dataDefinitions...)
	return []reactor.StatementSupport{
		moduleSupport{reactor.BaseSupport{Def: define("module", "name", header.Required("namespace", "prefix"))}},
		submoduleSupport{reactor.BaseSupport{Def: define("submodule", "name", rules().
			Optional("yang-version", "organization", "contact", "description", "reference").
			Required("belongs-to").
			Any(linkageHeaders...).
			Any(bodyStatements...).
			Any(dataDefinitions...))}},
		importSupport{reactor.BaseSupport{Def: define("import", "module", rules().
			Required("prefix").
			Optional("revision-date", "description", "reference"))}},
		includeSupport{reactor.BaseSupport{Def: define("include", "module", rules().
			Optional("revision-date", "description", "reference"))}},
		belongsToSupport{reactor.BaseSupport{Def: define("belongs-to", "module", rules().Required("prefix"))}},
		newSimple(define("namespace", "uri", nil), parseNamespaceURI),
		newSimple(define("prefix", "value", nil), parseIdentifier),
		newSimple(define("yang-version", "value", nil), oneOf("1", "1.1")),
		newSimple(define("revision", "date", rules().Optional(docStatements...)), parseDate),
		newSimple(define("revision-date", "date", nil), parseDate),
	}
}

// latestRevision returns the newest revision date of a module or submodule.
// Dates compare correctly as strings.
func latestRevision(root *reactor.Context) string {
	latest := ""
	for _, r := range root.FindAll("revision") {
		if r.RawArgument() > latest {
			latest = r.RawArgument()
		}
	}
	return latest
}

// owningModuleName is the name of the module a root belongs to.
func owningModuleName(root *reactor.Context) string {
	if root.Is("submodule") {
		return childArgument(root, "belongs-to")
	}
	return root.RawArgument()
}

func moduleInfo(c *reactor.Context) effective.ModuleInfo {
	info := effective.ModuleInfo{
		Name:        c.RawArgument(),
		Namespace:   c.QNameModule().Namespace,
		Prefix:      childArgument(c, "prefix"),
		Revision:    latestRevision(c),
		YangVersion: childArgument(c, "yang-version"),
	}
	if info.YangVersion == "" {
		info.YangVersion = "1"
	}
	if c.Is("submodule") {
		info.Submodule = true
		info.BelongsTo = childArgument(c, "belongs-to")
		if bt := c.Find("belongs-to"); bt != nil {
			info.Prefix = childArgument(bt, "prefix")
		}
	}
	return info
}

type moduleSupport struct{ reactor.BaseSupport }

func (moduleSupport) ParseArgument(_ *reactor.Context, raw string) (any, error) {
	return parseIdentifier(raw)
}

func (moduleSupport) CopyPolicy(stmt.CopyType) reactor.CopyPolicy { return reactor.CopyReject }

// OnLinkageDeclared binds the module's namespace and registers it by name,
// namespace and its own prefix.
func (moduleSupport) OnLinkageDeclared(c *reactor.Context) error {
	ns := childArgument(c, "namespace")
	rev := latestRevision(c)
	c.BindModule(qname.Module{Namespace: ns, Revision: rev}, c)

	key := reactor.ModuleKey{Name: c.RawArgument(), Revision: rev}
	if err := c.AddToNamespace(reactor.ModuleNamespace, key, c); err != nil {
		return err
	}
	if ns != "" {
		if err := c.AddToNamespace(reactor.ModuleByNamespace, c.QNameModule(), c); err != nil {
			return err
		}
	}
	if prefix := childArgument(c, "prefix"); prefix != "" {
		if err := c.AddToNamespace(reactor.PrefixToModule, prefix, c); err != nil {
			return err
		}
	}
	c.Logger().Debug("Module linked.", "module", key.String(), "namespace", ns)
	return nil
}

func (moduleSupport) CreateEffective(c *reactor.Context, m effective.Meta, b reactor.EffectiveBuilder) (effective.Statement, error) {
	subs := builtEffective[*effective.Module](b, includedSubmodules(c))
	return effective.NewModule(m, moduleInfo(c), subs), nil
}

// includedSubmodules lists the submodules a module includes, directly or
// through other submodules, in inclusion order.
func includedSubmodules(c *reactor.Context) []*reactor.Context {
	var out []*reactor.Context
	seen := map[*reactor.Context]bool{}
	queue := []*reactor.Context{c}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range cur.NamespaceEntries(reactor.IncludedSubmodules) {
			sub := e.Value.(*reactor.Context)
			if !seen[sub] {
				seen[sub] = true
				out = append(out, sub)
				queue = append(queue, sub)
			}
		}
	}
	return out
}

type submoduleSupport struct{ reactor.BaseSupport }

func (submoduleSupport) ParseArgument(_ *reactor.Context, raw string) (any, error) {
	return parseIdentifier(raw)
}

func (submoduleSupport) CopyPolicy(stmt.CopyType) reactor.CopyPolicy { return reactor.CopyReject }

func (submoduleSupport) OnLinkageDeclared(c *reactor.Context) error {
	key := reactor.ModuleKey{Name: c.RawArgument(), Revision: latestRevision(c)}
	return c.AddToNamespace(reactor.SubmoduleNamespace, key, c)
}

func (submoduleSupport) CreateEffective(c *reactor.Context, m effective.Meta, _ reactor.EffectiveBuilder) (effective.Statement, error) {
	return effective.NewModule(m, moduleInfo(c), nil), nil
}

type belongsToSupport struct{ reactor.BaseSupport }

func (belongsToSupport) ParseArgument(_ *reactor.Context, raw string) (any, error) {
	return parseIdentifier(raw)
}

// OnLinkageDeclared waits for the parent module, then binds the submodule
// into the module's namespace and maps the belongs-to prefix to it.
func (belongsToSupport) OnLinkageDeclared(c *reactor.Context) error {
	return c.ScheduleAction(reactor.PhaseSourceLinkage, "bind submodule", func(c *reactor.Context) reactor.Outcome {
		mod, ok := c.FindModule(c.RawArgument(), "")
		if !ok {
			return reactor.Retry(c.Error(yangerr.Inference, "module %q that submodule %q belongs to is not loaded",
				c.RawArgument(), c.Root().RawArgument()))
		}
		if !mod.ModuleBound() {
			return reactor.Retry(c.Error(yangerr.Inference, "module %q is not linked yet", c.RawArgument()), mod)
		}
		root := c.Root()
		root.BindModule(mod.QNameModule(), mod)
		if prefix := childArgument(c, "prefix"); prefix != "" {
			if err := root.AddToNamespace(reactor.PrefixToModule, prefix, mod); err != nil {
				return reactor.Fail(err)
			}
		}
		return reactor.Done()
	})
}

type importSupport struct{ reactor.BaseSupport }

func (importSupport) ParseArgument(_ *reactor.Context, raw string) (any, error) {
	return parseIdentifier(raw)
}

// OnLinkageDeclared resolves the imported module and binds its prefix in the
// importing source.
func (importSupport) OnLinkageDeclared(c *reactor.Context) error {
	return c.ScheduleAction(reactor.PhaseSourceLinkage, "resolve import", func(c *reactor.Context) reactor.Outcome {
		name := c.RawArgument()
		rev := childArgument(c, "revision-date")
		target, ok := c.FindModule(name, rev)
		if !ok {
			if rev != "" {
				return reactor.Retry(c.Error(yangerr.Inference, "imported module %s@%s not found", name, rev))
			}
			return reactor.Retry(c.Error(yangerr.Inference, "imported module %s not found", name))
		}
		root := c.Root()
		prefix := childArgument(c, "prefix")
		var errs yangerr.List
		for _, add := range []struct {
			ns         *reactor.Namespace
			key, value any
		}{
			{reactor.PrefixToModule, prefix, target},
			{reactor.ImportedModules, name, target},
			{reactor.ImportByPrefix, prefix, c},
		} {
			if err := root.AddToNamespace(add.ns, add.key, add.value); err != nil {
				errs.Add(err.(*yangerr.Error))
			}
		}
		if err := errs.Err(); err != nil {
			return reactor.Fail(err)
		}
		importTargetKey.Set(c, target)
		return reactor.Done()
	})
}

func (importSupport) CreateEffective(c *reactor.Context, m effective.Meta, b reactor.EffectiveBuilder) (effective.Statement, error) {
	target, _ := importTargetKey.Get(c)
	mod, _ := b.EffectiveOf(target).(*effective.Module)
	return effective.NewImport(m, mod), nil
}

type includeSupport struct{ reactor.BaseSupport }

func (includeSupport) ParseArgument(_ *reactor.Context, raw string) (any, error) {
	return parseIdentifier(raw)
}

// OnLinkageDeclared resolves the included submodule and checks that it
// belongs to the including module.
func (includeSupport) OnLinkageDeclared(c *reactor.Context) error {
	return c.ScheduleAction(reactor.PhaseSourceLinkage, "resolve include", func(c *reactor.Context) reactor.Outcome {
		name := c.RawArgument()
		sub, ok := c.FindSubmodule(name, childArgument(c, "revision-date"))
		if !ok {
			return reactor.Retry(c.Error(yangerr.Inference, "included submodule %s not found", name))
		}
		owner := owningModuleName(c.Root())
		if got := owningModuleName(sub); got != owner {
			return reactor.Fail(c.Error(yangerr.Inference, "submodule %s belongs to module %s, not %s", name, got, owner))
		}
		if err := c.Root().AddToNamespace(reactor.IncludedSubmodules, name, sub); err != nil {
			return reactor.Fail(err)
		}
		return reactor.Done()
	})
}
