package support

import (
	"github.com/specialistvlad/yangreactor/internal/effective"
	"github.com/specialistvlad/yangreactor/internal/reactor"
	"github.com/specialistvlad/yangreactor/internal/stmt"
	"github.com/specialistvlad/yangreactor/internal/yangerr"
	"github.com/specialistvlad/yangreactor/internal/yangpath"
)

type deviationSupport struct{ reactor.BaseSupport }

func (deviationSupport) ParseArgument(_ *reactor.Context, raw string) (any, error) {
	return parseAbsoluteNodeID(raw)
}

func (deviationSupport) OnFullDefinitionDeclared(c *reactor.Context) error {
	if c.IsCopy() {
		return nil
	}
	return c.ScheduleAction(reactor.PhaseEffectiveModel, "apply deviation", applyDeviation)
}

func applyDeviation(c *reactor.Context) reactor.Outcome {
	target, err := c.FindSchemaNode(c.Argument().(yangpath.NodeID), nil)
	if err != nil {
		return reactor.Retry(err)
	}
	if waits := unexpandedUses(target); len(waits) > 0 {
		return reactor.Retry(c.Error(yangerr.Inference, "deviation target %s is not fully expanded yet", c.RawArgument()), waits...)
	}
	deviationTargetKey.Set(c, target)
	var errs yangerr.List
	for _, d := range c.FindAll("deviate") {
		addErr(&errs, applyDeviate(d, target))
	}
	if err := errs.Err(); err != nil {
		return reactor.Fail(err)
	}
	c.Logger().Debug("Deviation applied.", "target", c.RawArgument())
	return reactor.Done()
}

func (deviationSupport) SchemaPathOf(c *reactor.Context) effective.SchemaPath {
	if target, ok := deviationTargetKey.Get(c); ok {
		return target.SchemaPath()
	}
	return nil
}

func (deviationSupport) CreateEffective(c *reactor.Context, m effective.Meta, _ reactor.EffectiveBuilder) (effective.Statement, error) {
	return effective.NewDeviation(m, c.SchemaPath()), nil
}

type deviateSupport struct{ reactor.BaseSupport }

func (deviateSupport) ParseArgument(_ *reactor.Context, raw string) (any, error) {
	return oneOf("not-supported", "add", "replace", "delete")(raw)
}

func (deviateSupport) OnFullDefinitionDeclared(c *reactor.Context) error {
	if c.IsCopy() || c.RawArgument() != "not-supported" {
		return nil
	}
	if props := deviateProperties(c); len(props) > 0 {
		return props[0].Error(yangerr.InvalidSubstatement, "deviate not-supported takes no substatements")
	}
	return nil
}

// multiValued properties may appear more than once on a node.
var multiValued = map[string]bool{"must": true, "unique": true, "default": true}

func deviateProperties(d *reactor.Context) []*reactor.Context {
	var out []*reactor.Context
	for _, p := range d.LiveChildren() {
		if p.Keyword().IsYANG() {
			out = append(out, p)
		}
	}
	return out
}

// applyDeviate changes target as one deviate statement says. Properties
// added or replaced are copies of the deviate's substatements.
func applyDeviate(d, target *reactor.Context) error {
	props := deviateProperties(d)
	var errs yangerr.List
	switch d.RawArgument() {
	case "not-supported":
		target.Prune()
		return nil
	case "add":
		for _, p := range props {
			kw := p.Keyword().Local
			if !allows(target, kw) {
				errs.Add(p.Error(yangerr.InvalidSubstatement, "%s cannot be added to %s", kw, target))
				continue
			}
			single := !multiValued[kw] || (kw == "default" && !target.Is("leaf-list"))
			if single && target.Find(kw) != nil {
				errs.Add(p.Error(yangerr.InvalidSubstatement, "%s already has a %s statement", target, kw))
			}
		}
	case "replace":
		replaced := make(map[string]bool)
		for _, p := range props {
			kw := p.Keyword().Local
			if replaced[kw] {
				continue
			}
			existing := target.FindAll(kw)
			if len(existing) == 0 {
				errs.Add(p.Error(yangerr.Inference, "%s has no %s statement to replace", target, kw))
				continue
			}
			for _, old := range existing {
				old.Prune()
			}
			replaced[kw] = true
		}
	case "delete":
		for _, p := range props {
			kw := p.Keyword().Local
			var match *reactor.Context
			for _, cur := range target.FindAll(kw) {
				if cur.RawArgument() == p.RawArgument() {
					match = cur
					break
				}
			}
			if match == nil {
				errs.Add(p.Error(yangerr.Inference, "%s has no %s %q to delete", target, kw, p.RawArgument()))
				continue
			}
			match.Prune()
		}
		return errs.Err()
	}
	if err := errs.Err(); err != nil {
		return err
	}
	for _, p := range props {
		_, err := p.CopyInto(target, stmt.AddedByDeviation, target.QNameModule())
		addErr(&errs, err)
	}
	return errs.Err()
}

func allows(c *reactor.Context, keyword string) bool {
	d := c.Definition()
	return d != nil && d.Rules != nil && d.Rules.Allows(keyword)
}
