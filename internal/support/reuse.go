package support

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/yangreactor/internal/effective"
	"github.com/specialistvlad/yangreactor/internal/qname"
	"github.com/specialistvlad/yangreactor/internal/reactor"
	"github.com/specialistvlad/yangreactor/internal/stmt"
	"github.com/specialistvlad/yangreactor/internal/yangerr"
	"github.com/specialistvlad/yangreactor/internal/yangpath"
)

// usesState is the progress of one uses expansion.
type usesState struct {
	grouping *reactor.Context
	copies   []*reactor.Context
	applied  map[reactor.Handle]bool
}

var (
	usesStateKey       = reactor.NewKey[*usesState]("uses expansion")
	usesExpandedKey    = reactor.NewKey[bool]("uses expanded")
	augmentTargetKey   = reactor.NewKey[*reactor.Context]("augment target")
	augmentAddedKey    = reactor.NewKey[[]*reactor.Context]("augment added")
	deviationTargetKey = reactor.NewKey[*reactor.Context]("deviation target")
)

func reuseSupports() []reactor.StatementSupport {
	grouping := define("grouping", "name", documented(rules().
		Any("typedef", "grouping").
		Any(dataDefinitions...).
		Any("action", "notification")))
	grouping.Template = true

	uses := define("uses", "name", documented(rules().Optional("when").Any("if-feature", "refine", "augment")))
	uses.Template = true

	refine := define("refine", "target-node", rules().
		Any("if-feature", "must", "default").
		Optional("presence", "config", "mandatory", "min-elements", "max-elements", "description", "reference"))
	refine.Template = true

	augment := define("augment", "target-node", documented(rules().
		Optional("when").
		Any("if-feature", "case", "action", "notification").
		Any(dataDefinitions...)))
	augment.Template = true

	deviation := define("deviation", "target-node", rules().Optional(docStatements...).AtLeastOne("deviate"))
	deviation.Template = true

	deviate := define("deviate", "value", rules().
		Optional("config", "mandatory", "max-elements", "min-elements", "type", "units").
		Any("default", "must", "unique"))
	deviate.Template = true

	return []reactor.StatementSupport{
		groupingSupport{reactor.BaseSupport{Def: grouping}},
		usesSupport{reactor.BaseSupport{Def: uses}},
		newSimple(refine, func(raw string) (any, error) { return yangpath.ParseDescendantNodeID(raw) }),
		augmentSupport{reactor.BaseSupport{Def: augment}},
		deviationSupport{reactor.BaseSupport{Def: deviation}},
		deviateSupport{reactor.BaseSupport{Def: deviate}},
	}
}

type groupingSupport struct{ reactor.BaseSupport }

func (groupingSupport) ParseArgument(_ *reactor.Context, raw string) (any, error) {
	return parseIdentifier(raw)
}

func (groupingSupport) CopyPolicy(stmt.CopyType) reactor.CopyPolicy { return reactor.CopyIgnore }

func (groupingSupport) OnFullDefinitionDeclared(c *reactor.Context) error {
	if c.IsCopy() {
		return nil
	}
	return c.Parent().AddToNamespace(reactor.GroupingNamespace, c.RawArgument(), c)
}

func (groupingSupport) SchemaPathOf(c *reactor.Context) effective.SchemaPath {
	return c.Parent().SchemaPath().Append(c.ArgumentQName())
}

func (groupingSupport) CreateEffective(c *reactor.Context, m effective.Meta, _ reactor.EffectiveBuilder) (effective.Statement, error) {
	return effective.NewGrouping(m, c.ArgumentQName()), nil
}

// unexpandedUses lists the declared uses statements below c that have not
// finished expanding.
func unexpandedUses(c *reactor.Context) []*reactor.Context {
	var out []*reactor.Context
	walkDeclared(c, func(n *reactor.Context) {
		if n.Is("uses") && !n.Failed() && !n.PrunedInTree() {
			if done, _ := usesExpandedKey.Get(n); !done {
				out = append(out, n)
			}
		}
	})
	return out
}

type usesSupport struct{ reactor.BaseSupport }

func (usesSupport) ParseArgument(_ *reactor.Context, raw string) (any, error) { return parseRef(raw) }

// OnFullDefinitionDeclared schedules the expansion. Copies of a uses are
// already expanded: their original's result was copied with them.
func (usesSupport) OnFullDefinitionDeclared(c *reactor.Context) error {
	if c.IsCopy() {
		return nil
	}
	return c.ScheduleAction(reactor.PhaseEffectiveModel, "expand uses", expandUses)
}

// expandUses copies the grouping's schema nodes into the uses' parent,
// applies refines to the copies, then the uses' augments. Each copy gets its
// own subtree, so a grouping used twice yields independent nodes.
func expandUses(c *reactor.Context) reactor.Outcome {
	st, ok := usesStateKey.Get(c)
	if !ok {
		ref := c.Argument().(qname.Ref)
		scope, err := c.DefinitionScope(ref)
		if err != nil {
			return reactor.Fail(err)
		}
		g, ok := scope.ContextFromNamespace(reactor.GroupingNamespace, ref.Local)
		if !ok {
			return reactor.Retry(c.Error(yangerr.Inference, "grouping %s not found", ref))
		}
		if waits := unexpandedUses(g); len(waits) > 0 {
			return reactor.Retry(c.Error(yangerr.Inference, "grouping %s uses groupings that are not expanded yet", ref), waits...)
		}
		if err := checkSemanticVersion(c, g, ref); err != nil {
			return reactor.Fail(err)
		}

		st = &usesState{grouping: g, applied: make(map[reactor.Handle]bool)}
		module := c.QNameModule()
		var errs yangerr.List
		for _, ch := range g.LiveChildren() {
			if !ch.IsSchemaNode() {
				continue
			}
			cp, err := ch.CopyInto(c.Parent(), stmt.AddedByUses, module)
			addErr(&errs, err)
			if cp != nil {
				st.copies = append(st.copies, cp)
			}
		}
		usesStateKey.Set(c, st)
		for _, f := range c.FindAll("if-feature") {
			for _, cp := range st.copies {
				_, err := f.CopyInto(cp, stmt.AddedByUses, module)
				addErr(&errs, err)
			}
		}
		for _, rf := range c.FindAll("refine") {
			addErr(&errs, applyRefine(c, st, rf))
		}
		if err := errs.Err(); err != nil {
			return reactor.Fail(err)
		}
		c.Logger().Debug("Grouping instantiated.", "grouping", ref.String(), "nodes", len(st.copies))
	}

	for _, aug := range c.FindAll("augment") {
		if st.applied[aug.Handle()] {
			continue
		}
		id := aug.Argument().(yangpath.NodeID)
		target, err := findInCopies(c, st, id)
		if err != nil {
			return reactor.Retry(err)
		}
		if waits := unexpandedUses(aug); len(waits) > 0 {
			return reactor.Retry(aug.Error(yangerr.Inference, "augment content uses groupings that are not expanded yet"), waits...)
		}
		if out := applyAugment(aug, target, stmt.AddedByUsesAugmentation, c.QNameModule()); !out.IsDone() {
			return out
		}
		st.applied[aug.Handle()] = true
	}
	usesExpandedKey.Set(c, true)
	return reactor.Done()
}

func addErr(errs *yangerr.List, err error) {
	if err == nil {
		return
	}
	switch e := err.(type) {
	case *yangerr.Error:
		errs.Add(e)
	case yangerr.List:
		for _, x := range e {
			errs.Add(x)
		}
	default:
		errs.Add(yangerr.New(yangerr.Inference, hcl.Range{}, "", "%s", err))
	}
}

// findInCopies resolves a descendant schema node identifier of a refine or
// uses-augment against the nodes the uses added.
func findInCopies(c *reactor.Context, st *usesState, id yangpath.NodeID) (*reactor.Context, error) {
	first, err := c.ResolveRef(id.Steps[0])
	if err != nil {
		return nil, err
	}
	for _, cp := range st.copies {
		if cp.ArgumentQName() == first {
			return c.WalkSchemaNodes(cp, id.Steps[1:], id.String())
		}
	}
	return nil, c.Error(yangerr.Inference, "schema node %s not found in grouping %s", id, st.grouping.RawArgument())
}

// refineAdds lists the properties a refine adds to rather than replaces.
var refineAdds = map[string]bool{"must": true, "if-feature": true}

func applyRefine(c *reactor.Context, st *usesState, rf *reactor.Context) error {
	target, err := findInCopies(c, st, rf.Argument().(yangpath.NodeID))
	if err != nil {
		return rf.Error(yangerr.Inference, "refine target %s not found in grouping %s", rf.RawArgument(), st.grouping.RawArgument())
	}
	props := rf.LiveChildren()
	var errs yangerr.List
	for _, p := range props {
		if !p.Keyword().IsYANG() {
			continue
		}
		kw := p.Keyword().Local
		if d := target.Definition(); d == nil || d.Rules == nil || !d.Rules.Allows(kw) {
			errs.Add(p.Error(yangerr.InvalidSubstatement, "%s of %s cannot be refined", kw, target))
			continue
		}
		if !refineAdds[kw] {
			for _, old := range target.FindAll(kw) {
				old.Prune()
			}
		}
	}
	if err := errs.Err(); err != nil {
		return err
	}
	for _, p := range props {
		_, err := p.CopyInto(target, stmt.AddedByUses, target.QNameModule())
		addErr(&errs, err)
	}
	return errs.Err()
}

type augmentSupport struct{ reactor.BaseSupport }

// ParseArgument expects an absolute target at the top level and a
// descendant one inside uses.
func (augmentSupport) ParseArgument(c *reactor.Context, raw string) (any, error) {
	if p := c.Parent(); p != nil && p.Is("uses") {
		return yangpath.ParseDescendantNodeID(raw)
	}
	return yangpath.ParseAbsoluteNodeID(raw)
}

func (augmentSupport) OnFullDefinitionDeclared(c *reactor.Context) error {
	if c.IsCopy() || c.Parent().Is("uses") {
		return nil
	}
	return c.ScheduleAction(reactor.PhaseEffectiveModel, "apply augment", applyTopLevelAugment)
}

func applyTopLevelAugment(c *reactor.Context) reactor.Outcome {
	for _, f := range c.FindAll("if-feature") {
		if _, ok := ifFeatureResultKey.Get(f); !ok {
			return reactor.Retry(c.Error(yangerr.Inference, "condition %q is not evaluated yet", f.RawArgument()), f)
		}
	}
	if c.Pruned() {
		return reactor.Done()
	}
	target, err := c.FindSchemaNode(c.Argument().(yangpath.NodeID), nil)
	if err != nil {
		return reactor.Retry(err)
	}
	if target.PrunedInTree() {
		augmentTargetKey.Set(c, target)
		c.Logger().Debug("Augment of removed node dropped.", "target", c.RawArgument())
		return reactor.Done()
	}
	if waits := unexpandedUses(c); len(waits) > 0 {
		return reactor.Retry(c.Error(yangerr.Inference, "augment content uses groupings that are not expanded yet"), waits...)
	}
	return applyAugment(c, target, stmt.AddedByAugmentation, c.QNameModule())
}

func augmentable(target *reactor.Context) bool {
	for _, kw := range []string{"container", "list", "choice", "case", "input", "output", "notification"} {
		if target.Is(kw) {
			return true
		}
	}
	return false
}

// applyAugment copies the augment's schema nodes into target, qualified by
// module.
func applyAugment(aug, target *reactor.Context, t stmt.CopyType, module qname.Module) reactor.Outcome {
	if !augmentable(target) {
		return reactor.Fail(aug.Error(yangerr.InvalidSubstatement, "%s cannot be augmented", target))
	}
	var errs yangerr.List
	var added []*reactor.Context
	for _, ch := range aug.LiveChildren() {
		if !ch.IsSchemaNode() {
			continue
		}
		if target.Is("choice") && ch.Is("choice") {
			errs.Add(ch.Error(yangerr.InvalidSubstatement, "choice cannot be added directly to choice %s", target.RawArgument()))
			continue
		}
		cp, err := ch.CopyInto(target, t, module)
		addErr(&errs, err)
		if cp != nil {
			added = append(added, cp)
		}
	}
	augmentTargetKey.Set(aug, target)
	augmentAddedKey.Set(aug, added)
	if err := errs.Err(); err != nil {
		return reactor.Fail(err)
	}
	return reactor.Done()
}

func (augmentSupport) SchemaPathOf(c *reactor.Context) effective.SchemaPath {
	if target, ok := augmentTargetKey.Inherited(c); ok {
		return target.SchemaPath()
	}
	var path effective.SchemaPath
	if p := c.Parent(); p != nil && p.Is("uses") {
		path = p.SchemaPath()
	}
	for _, step := range c.Argument().(yangpath.NodeID).Steps {
		q, err := c.ResolveRef(step)
		if err != nil {
			q = qname.Keyword(step.Local)
		}
		path = path.Append(q)
	}
	return path
}

// Finalize rejects mandatory nodes added to another module's tree unless
// the augment is conditional. The target is in the augmenting module when
// either of its identifiers is: its direct id, or the id of the tree it
// lives in.
func (augmentSupport) Finalize(c *reactor.Context) error {
	if c.IsCopy() || c.Parent().Is("uses") || c.Find("when") != nil {
		return nil
	}
	target, ok := augmentTargetKey.Get(c)
	if !ok || target.PrunedInTree() {
		return nil
	}
	own := c.QNameModule()
	if target.ArgumentQName().Module == own || target.Root().ModuleRoot().QNameModule() == own {
		return nil
	}
	added, _ := augmentAddedKey.Get(c)
	var errs yangerr.List
	for _, n := range added {
		if n.Pruned() || n.Find("when") != nil {
			continue
		}
		if isMandatory(n) {
			errs.Add(n.Error(yangerr.Inference, "augment of %s in module %s adds mandatory node %s",
				c.RawArgument(), target.Root().ModuleRoot().RawArgument(), n.RawArgument()))
		}
	}
	return errs.Err()
}

func (augmentSupport) CreateEffective(c *reactor.Context, m effective.Meta, _ reactor.EffectiveBuilder) (effective.Statement, error) {
	return effective.NewAugment(m, c.SchemaPath()), nil
}

func isMandatory(n *reactor.Context) bool {
	switch {
	case n.Is("leaf"), n.Is("choice"), n.Is("anydata"), n.Is("anyxml"):
		if m := n.Find("mandatory"); m != nil {
			v, _ := m.Argument().(bool)
			return v
		}
	case n.Is("list"), n.Is("leaf-list"):
		if m := n.Find("min-elements"); m != nil {
			v, _ := m.Argument().(uint64)
			return v > 0
		}
	case n.Is("container"):
		if n.Find("presence") != nil {
			return false
		}
		for _, ch := range n.SchemaChildren() {
			if isMandatory(ch) {
				return true
			}
		}
	}
	return false
}

func (usesSupport) CreateEffective(c *reactor.Context, m effective.Meta, b reactor.EffectiveBuilder) (effective.Statement, error) {
	var g *effective.Grouping
	if st, ok := usesStateKey.Inherited(c); ok {
		g, _ = b.EffectiveOf(st.grouping).(*effective.Grouping)
	}
	return effective.NewUses(m, g), nil
}
