package reactor

import (
	"github.com/specialistvlad/yangreactor/internal/qname"
	"github.com/specialistvlad/yangreactor/internal/yangerr"
	"github.com/specialistvlad/yangreactor/internal/yangpath"
)

// ModuleRootOf returns the root of the module a prefix written in c refers
// to. The empty prefix is c's own module.
func (c *Context) ModuleRootOf(prefix string) (*Context, error) {
	if prefix == "" {
		return c.Origin().ModuleRoot(), nil
	}
	mod, ok := c.ResolvePrefix(prefix)
	if !ok {
		return nil, c.Error(yangerr.Inference, "prefix %q is not bound to any module", prefix)
	}
	return mod, nil
}

// FindSchemaNode resolves a schema node identifier written in c. Absolute
// identifiers start at the module named by their first step; descendant
// identifiers start at from. A missing node is an inference error suitable
// for Retry.
func (c *Context) FindSchemaNode(id yangpath.NodeID, from *Context) (*Context, error) {
	if len(id.Steps) == 0 {
		return nil, c.Error(yangerr.ArgumentSyntax, "empty schema node identifier")
	}
	cur := from
	if id.Absolute {
		root, err := c.ModuleRootOf(id.Steps[0].Prefix)
		if err != nil {
			return nil, err
		}
		cur = root
	}
	return c.WalkSchemaNodes(cur, id.Steps, id.String())
}

// WalkSchemaNodes follows steps from start through schema node children.
func (c *Context) WalkSchemaNodes(start *Context, steps []qname.Ref, display string) (*Context, error) {
	cur := start
	for i, step := range steps {
		q, err := c.ResolveRef(step)
		if err != nil {
			return nil, err
		}
		next, ok := cur.SchemaChild(q)
		if !ok {
			if i == 0 {
				return nil, c.Error(yangerr.Inference, "schema node %s not found", display)
			}
			return nil, c.Error(yangerr.Inference, "schema node %s not found: %s has no child %s", display, cur, step)
		}
		cur = next
	}
	return cur, nil
}
