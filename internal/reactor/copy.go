package reactor

import (
	"errors"

	"github.com/specialistvlad/yangreactor/internal/qname"
	"github.com/specialistvlad/yangreactor/internal/stmt"
	"github.com/specialistvlad/yangreactor/internal/yangerr"
)

// CopyInto copies c and its live subtree as a new effective child of
// parent. Names of copied schema nodes are qualified by module. Each
// substatement's CopyPolicy decides whether it is copied, left out or
// rejected. It returns nil and no error when c itself is left out.
//
// Copies enter at STATEMENT_DEFINITION and are driven through the remaining
// phases by later sweeps, so copying is safe at any point of a run.
func (c *Context) CopyInto(parent *Context, t stmt.CopyType, module qname.Module) (*Context, error) {
	var errs yangerr.List
	cp := c.run.copyTree(c, parent, false, t, module, &errs)
	if len(errs) > 0 {
		return cp, errs
	}
	return cp, nil
}

func (r *Run) copyTree(src, parent *Context, asDeclared bool, t stmt.CopyType, module qname.Module, errs *yangerr.List) *Context {
	if src.support == nil || src.failed {
		return nil
	}
	policy := src.support.CopyPolicy(t)
	switch policy {
	case CopyIgnore:
		return nil
	case CopyReject:
		errs.Add(src.Error(yangerr.InvalidSubstatement, "%s cannot be %s", src.node.Keyword, copyVerb(t)))
		return nil
	}

	m := module
	start := PhaseStatementDefinition
	if r.phase < start {
		start = r.phase
	}
	cp := &Context{
		run:      r,
		parent:   parent.handle,
		root:     parent.root,
		node:     src.node,
		keyword:  src.keyword,
		support:  src.support,
		argument: src.argument,
		phase:    start,
		hooked:   start,
		history:  src.history.Append(t),
		original: src.handle,
		module:   &m,
	}
	r.arena.alloc(cp)
	if asDeclared {
		parent.declared = append(parent.declared, cp.handle)
	} else {
		parent.effective = append(parent.effective, cp.handle)
	}
	r.progress = true

	for _, h := range src.declared {
		if ch := r.ctx(h); !ch.pruned {
			r.copyTree(ch, cp, true, t, module, errs)
		}
	}
	for _, h := range src.effective {
		if ch := r.ctx(h); !ch.pruned {
			r.copyTree(ch, cp, false, t, module, errs)
		}
	}

	if policy == CopyRevalidate && (t == stmt.AddedByAugmentation || t == stmt.AddedByUsesAugmentation) {
		if rv, ok := src.support.(Revalidator); ok {
			if err := rv.Revalidate(cp); err != nil {
				var ye *yangerr.Error
				if !errors.As(err, &ye) {
					ye = cp.Error(yangerr.InvalidSubstatement, "%s", err)
				}
				errs.Add(ye)
			}
		}
	}
	return cp
}

func copyVerb(t stmt.CopyType) string {
	switch t {
	case stmt.AddedByUses:
		return "instantiated by uses"
	case stmt.AddedByDeviation:
		return "added by deviation"
	default:
		return "augmented into another node"
	}
}

// AddEffective attaches a copy of src below c as an inferred child. It is
// CopyInto with c as the target.
func (c *Context) AddEffective(src *Context, t stmt.CopyType) (*Context, error) {
	return src.CopyInto(c, t, c.QNameModule())
}
