package reactor

import (
	"github.com/specialistvlad/yangreactor/internal/effective"
	"github.com/specialistvlad/yangreactor/internal/qname"
	"github.com/specialistvlad/yangreactor/internal/stmt"
)

var schemaPathKey = NewKey[effective.SchemaPath]("schema path")

// IsSchemaNode reports whether c is a node of the schema tree.
func (c *Context) IsSchemaNode() bool {
	d := c.Definition()
	return d != nil && d.Schema != NotSchema
}

// SchemaPath returns c's path in the schema tree. Statements that are not
// schema nodes share their parent's path unless their support says
// otherwise. Paths are memoized once the model is being built.
func (c *Context) SchemaPath() effective.SchemaPath {
	if p, ok := schemaPathKey.Get(c); ok {
		return p
	}
	var path effective.SchemaPath
	if pp, ok := c.support.(PathProvider); ok {
		path = pp.SchemaPathOf(c)
	} else if parent := c.Parent(); parent != nil {
		path = parent.SchemaPath()
		if c.IsSchemaNode() {
			path = path.Append(c.ArgumentQName())
		}
	}
	if c.run.building {
		schemaPathKey.Set(c, path)
	}
	return path
}

// Config returns the effective config flag of c: its own config statement,
// otherwise the nearest ancestor's, true at the top. Below operations and
// notifications config is false.
func (c *Context) Config() bool {
	for cur := c; cur != nil; cur = cur.Parent() {
		if d := cur.Definition(); d != nil && d.NoConfig {
			return false
		}
	}
	for cur := c; cur != nil; cur = cur.Parent() {
		if cfg := cur.Find("config"); cfg != nil {
			if v, ok := cfg.Argument().(bool); ok {
				return v
			}
		}
	}
	return true
}

// NodeInfo returns what the effective model records about a schema node's
// position.
func (c *Context) NodeInfo() effective.NodeInfo {
	return effective.NodeInfo{QName: c.ArgumentQName(), Path: c.SchemaPath(), Config: c.Config()}
}

// treeChildren returns c's children; for a root, the top-level statements of
// the module and all its submodules.
func (c *Context) treeChildren() []*Context {
	if !c.IsRoot() {
		return c.Children()
	}
	var out []*Context
	for _, r := range c.family() {
		out = append(out, r.Children()...)
	}
	return out
}

// SchemaChildren returns the live schema node children of c.
func (c *Context) SchemaChildren() []*Context {
	var out []*Context
	for _, ch := range c.treeChildren() {
		if ch.IsSchemaNode() && !ch.pruned {
			out = append(out, ch)
		}
	}
	return out
}

// SchemaChild finds the schema node child named q, pruned or not. A node
// added by augmentation is known by two identifiers: its direct id, the name
// it was declared with in the augmenting module, and its augmented id, the
// same local name in the namespace of the tree it was added to. The direct
// id is tried first over all children; the augmented id only if that finds
// nothing.
func (c *Context) SchemaChild(q qname.QName) (*Context, bool) {
	children := c.treeChildren()
	for _, ch := range children {
		if ch.IsSchemaNode() && ch.ArgumentQName() == q {
			return ch, true
		}
	}
	treeModule := c.QNameModule()
	for _, ch := range children {
		if !ch.IsSchemaNode() || !ch.AddedByAugmentation() {
			continue
		}
		if ch.ArgumentQName().Local == q.Local && treeModule == q.Module {
			return ch, true
		}
	}
	return nil, false
}

// AddedByAugmentation reports whether c was copied in by an augment.
func (c *Context) AddedByAugmentation() bool {
	return c.history.Contains(stmt.AddedByAugmentation) || c.history.Contains(stmt.AddedByUsesAugmentation)
}

// DataParent returns the nearest ancestor that is a data node, skipping
// choice, case and non-schema statements. It is nil at the top level.
func (c *Context) DataParent() *Context {
	for p := c.Parent(); p != nil; p = p.Parent() {
		if p.IsRoot() {
			return nil
		}
		if d := p.Definition(); d != nil && d.Schema == DataNode {
			return p
		}
	}
	return nil
}

// DataChildren returns the live data node children of c, looking through
// choice and case.
func (c *Context) DataChildren() []*Context {
	var out []*Context
	for _, ch := range c.SchemaChildren() {
		if ch.Definition().Schema == SchemaOnly {
			out = append(out, ch.DataChildren()...)
			continue
		}
		out = append(out, ch)
	}
	return out
}
