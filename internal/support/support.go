package support

import (
	"github.com/specialistvlad/yangreactor/internal/effective"
	"github.com/specialistvlad/yangreactor/internal/qname"
	"github.com/specialistvlad/yangreactor/internal/reactor"
	"github.com/specialistvlad/yangreactor/internal/registry"
)

// Module registers the statements of YANG 1.1.
type Module struct{}

// Register implements registry.Module.
func (m *Module) Register(r *registry.Registry) {
	for _, s := range Supports() {
		r.RegisterSupport(s)
	}
}

// Supports returns a fresh support for every YANG 1.1 statement.
func Supports() []reactor.StatementSupport {
	var out []reactor.StatementSupport
	out = append(out, linkageSupports()...)
	out = append(out, metaSupports()...)
	out = append(out, definitionSupports()...)
	out = append(out, typeSupports()...)
	out = append(out, schemaSupports()...)
	out = append(out, reuseSupports()...)
	return out
}

// Statement groups reused by the rules tables.
var (
	dataDefinitions = []string{"container", "leaf", "leaf-list", "list", "choice", "anydata", "anyxml", "uses"}
	shortCases      = []string{"choice", "container", "leaf", "leaf-list", "list", "anydata", "anyxml"}
	bodyStatements  = []string{"extension", "feature", "identity", "typedef", "grouping", "augment", "rpc", "notification", "deviation"}
	linkageHeaders  = []string{"import", "include", "revision"}
	docStatements   = []string{"description", "reference"}
)

func define(keyword, argument string, rules *reactor.SubstatementRules) *reactor.Definition {
	return &reactor.Definition{
		Keyword:      qname.Keyword(keyword),
		ArgumentName: argument,
		Rules:        rules,
	}
}

func rules() *reactor.SubstatementRules { return reactor.NewRules() }

// documented adds the optional status, description and reference.
func documented(r *reactor.SubstatementRules) *reactor.SubstatementRules {
	return r.Optional("status", "description", "reference")
}

// simple serves statements with no behavior beyond argument parsing.
type simple struct {
	reactor.BaseSupport
	parse func(raw string) (any, error)
}

func newSimple(def *reactor.Definition, parse func(string) (any, error)) simple {
	return simple{BaseSupport: reactor.BaseSupport{Def: def}, parse: parse}
}

func (s simple) ParseArgument(_ *reactor.Context, raw string) (any, error) {
	if s.parse == nil {
		return raw, nil
	}
	return s.parse(raw)
}

// childArgument returns the raw argument of c's first live child with the
// keyword, or "".
func childArgument(c *reactor.Context, keyword string) string {
	if ch := c.Find(keyword); ch != nil {
		return ch.RawArgument()
	}
	return ""
}

// builtEffective builds the effective form of every context and drops
// pruned ones.
func builtEffective[T effective.Statement](b reactor.EffectiveBuilder, cs []*reactor.Context) []T {
	var out []T
	for _, c := range cs {
		if s, ok := b.EffectiveOf(c).(T); ok {
			out = append(out, s)
		}
	}
	return out
}

// walkDeclared visits c's subtree in declaration order, skipping copies.
func walkDeclared(c *reactor.Context, fn func(*reactor.Context)) {
	for _, ch := range c.DeclaredChildren() {
		if ch.IsCopy() {
			continue
		}
		fn(ch)
		walkDeclared(ch, fn)
	}
}
