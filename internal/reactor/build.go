package reactor

import (
	"errors"

	"github.com/specialistvlad/yangreactor/internal/effective"
	"github.com/specialistvlad/yangreactor/internal/yangerr"
)

// builder turns resolved contexts into effective statements. Each context
// is built at most once; references to statements elsewhere in the model
// are built on demand through the same memo.
type builder struct {
	run      *Run
	built    map[Handle]effective.Statement
	declared map[Handle]*effective.Declared
	building map[Handle]bool
	index    *effective.Index
}

func (r *Run) build() *effective.SchemaContext {
	r.building = true
	b := &builder{
		run:      r,
		built:    make(map[Handle]effective.Statement),
		declared: make(map[Handle]*effective.Declared),
		building: make(map[Handle]bool),
		index:    effective.NewIndex(),
	}
	var modules []*effective.Module
	for _, root := range r.Roots() {
		mod, ok := b.EffectiveOf(root).(*effective.Module)
		if !ok {
			panic(internalError("root %s did not build into a module", root))
		}
		modules = append(modules, mod)
	}
	r.logger.Debug("Effective model built.", "statements", len(b.built))
	return effective.NewSchemaContext(modules, b.index)
}

// EffectiveOf implements EffectiveBuilder.
func (b *builder) EffectiveOf(c *Context) effective.Statement {
	if c == nil || c.pruned {
		return nil
	}
	if s, ok := b.built[c.handle]; ok {
		return s
	}
	if c.failed || c.support == nil {
		panic(internalError("building unresolved statement %s at %s", c, yangerr.FormatRange(c.Source())))
	}
	if b.building[c.handle] {
		panic(internalError("statement %s at %s re-entered while being built", c, yangerr.FormatRange(c.Source())))
	}
	b.building[c.handle] = true
	defer delete(b.building, c.handle)

	var subs []effective.Statement
	for _, ch := range c.Children() {
		if s := b.EffectiveOf(ch); s != nil {
			subs = append(subs, s)
		}
	}
	m := effective.Meta{
		Keyword:       c.keyword,
		Argument:      c.argument,
		RawArgument:   c.RawArgument(),
		Source:        c.Source(),
		Declared:      b.declaredOf(c.Origin()),
		History:       c.history,
		Substatements: subs,
	}
	s, err := c.support.CreateEffective(c, m, b)
	if err != nil {
		var ye *yangerr.Error
		if errors.As(err, &ye) {
			panic(internalError("creating effective %s: %s", c, ye.Message))
		}
		panic(internalError("creating effective %s: %v", c, err))
	}
	b.built[c.handle] = s

	if c.Instantiated() {
		if sn, ok := s.(effective.SchemaNode); ok && c.IsSchemaNode() {
			b.index.AddNode(sn)
		}
	}
	if id, ok := s.(*effective.Identity); ok {
		b.index.AddIdentity(id)
	}
	return s
}

// NodeInfo implements EffectiveBuilder.
func (b *builder) NodeInfo(c *Context) effective.NodeInfo { return c.NodeInfo() }

func (b *builder) declaredOf(c *Context) *effective.Declared {
	if d, ok := b.declared[c.handle]; ok {
		return d
	}
	var subs []*effective.Declared
	for _, ch := range c.DeclaredChildren() {
		if ch.support == nil {
			continue
		}
		subs = append(subs, b.declaredOf(ch))
	}
	d := c.support.CreateDeclared(c, subs)
	b.declared[c.handle] = d
	return d
}
