package support

import (
	"fmt"
	"slices"

	"github.com/specialistvlad/yangreactor/internal/effective"
	"github.com/specialistvlad/yangreactor/internal/qname"
	"github.com/specialistvlad/yangreactor/internal/reactor"
	"github.com/specialistvlad/yangreactor/internal/stmt"
	"github.com/specialistvlad/yangreactor/internal/yangerr"
	"github.com/specialistvlad/yangreactor/internal/yangpath"
)

// typeResolution is where a type statement's name led: a built-in type, or
// a typedef whose own type is already resolved.
type typeResolution struct {
	builtin string
	typedef *reactor.Context
	bases   []*reactor.Context
}

var (
	typeResolutionKey = reactor.NewKey[typeResolution]("type resolution")
	leafrefTargetKey  = reactor.NewKey[*reactor.Context]("leafref target")
)

func typeSupports() []reactor.StatementSupport {
	restriction := func() *reactor.SubstatementRules {
		return rules().Optional("error-message", "error-app-tag", "description", "reference")
	}
	return []reactor.StatementSupport{
		typedefSupport{reactor.BaseSupport{Def: define("typedef", "name", documented(rules().
			Required("type").
			Optional("units", "default")))}},
		typeSupport{reactor.BaseSupport{Def: define("type", "name", rules().
			Optional("fraction-digits", "length", "path", "range", "require-instance").
			Any("base", "bit", "enum", "pattern", "type"))}},
		newSimple(define("enum", "name", documented(rules().Any("if-feature").Optional("value"))), nil),
		newSimple(define("bit", "name", documented(rules().Any("if-feature").Optional("position"))), parseIdentifier),
		newSimple(define("value", "value", nil), parseInt),
		newSimple(define("position", "value", nil), parseUint),
		newSimple(define("fraction-digits", "value", nil), parseFractionDigits),
		newSimple(define("length", "value", restriction()), nil),
		newSimple(define("range", "value", restriction()), nil),
		newSimple(define("pattern", "value", restriction().Optional("modifier")), nil),
		newSimple(define("modifier", "value", nil), oneOf("invert-match")),
		newSimple(define("path", "value", nil), parseLeafrefPath),
		newSimple(define("require-instance", "value", nil), parseBool),
	}
}

type typedefSupport struct{ reactor.BaseSupport }

func (typedefSupport) ParseArgument(_ *reactor.Context, raw string) (any, error) {
	name, err := qname.ParseIdentifier(raw)
	if err != nil {
		return nil, err
	}
	if effective.IsBuiltinType(name) {
		return nil, fmt.Errorf("typedef %q shadows a built-in type", name)
	}
	return name, nil
}

func (typedefSupport) CopyPolicy(stmt.CopyType) reactor.CopyPolicy { return reactor.CopyIgnore }

func (typedefSupport) OnFullDefinitionDeclared(c *reactor.Context) error {
	if c.IsCopy() {
		return nil
	}
	if err := c.Parent().AddToNamespace(reactor.TypedefNamespace, c.RawArgument(), c); err != nil {
		return err
	}
	return scheduleDefaultCheck(c)
}

func (typedefSupport) CreateEffective(c *reactor.Context, m effective.Meta, _ reactor.EffectiveBuilder) (effective.Statement, error) {
	return effective.NewTypedef(m, c.ArgumentQName()), nil
}

type typeSupport struct{ reactor.BaseSupport }

func (typeSupport) ParseArgument(_ *reactor.Context, raw string) (any, error) { return parseRef(raw) }

// OnFullDefinitionDeclared checks the restrictions a built-in type needs and
// schedules the typedef lookup. Copies share their original's resolution;
// leafref targets are resolved per instance.
func (typeSupport) OnFullDefinitionDeclared(c *reactor.Context) error {
	if !c.IsCopy() {
		if err := checkBuiltinRestrictions(c); err != nil {
			return err
		}
		if err := c.ScheduleAction(reactor.PhaseEffectiveModel, "resolve type", resolveType); err != nil {
			return err
		}
	}
	if c.Instantiated() && leafHolder(c) != nil {
		return c.ScheduleAction(reactor.PhaseEffectiveModel, "resolve leafref", resolveLeafref)
	}
	return nil
}

func checkBuiltinRestrictions(c *reactor.Context) error {
	ref := c.Argument().(qname.Ref)
	if ref.Prefix != "" || !effective.IsBuiltinType(ref.Local) {
		return nil
	}
	need := map[string]string{
		"leafref":     "path",
		"enumeration": "enum",
		"identityref": "base",
		"union":       "type",
		"bits":        "bit",
		"decimal64":   "fraction-digits",
	}[ref.Local]
	if need == "" || c.Find(need) != nil {
		return nil
	}
	e := c.Error(yangerr.MissingSubstatement, "type %s requires a %s statement", ref.Local, need)
	e.Rule = need + " 1..n"
	return e
}

func resolveType(c *reactor.Context) reactor.Outcome {
	ref := c.Argument().(qname.Ref)
	if ref.Prefix == "" && effective.IsBuiltinType(ref.Local) {
		res := typeResolution{builtin: ref.Local}
		if ref.Local == "identityref" {
			for _, b := range c.FindAll("base") {
				id, out, ok := lookupIdentity(b, b.Argument().(qname.Ref))
				if !ok {
					return out
				}
				res.bases = append(res.bases, id)
			}
		}
		typeResolutionKey.Set(c, res)
		return reactor.Done()
	}

	scope, err := c.DefinitionScope(ref)
	if err != nil {
		return reactor.Fail(err)
	}
	td, ok := scope.ContextFromNamespace(reactor.TypedefNamespace, ref.Local)
	if !ok {
		return reactor.Retry(c.Error(yangerr.Inference, "typedef %s not found", ref))
	}
	base := td.Find("type")
	if base == nil {
		return reactor.Retry(c.Error(yangerr.Inference, "typedef %s has no type", ref))
	}
	res, ok := typeResolutionKey.Get(base)
	if !ok {
		return reactor.Retry(c.Error(yangerr.Inference, "typedef %s is not resolved", ref), base)
	}
	typeResolutionKey.Set(c, typeResolution{builtin: res.builtin, typedef: td, bases: res.bases})
	return reactor.Done()
}

func (typeSupport) CreateEffective(c *reactor.Context, m effective.Meta, b reactor.EffectiveBuilder) (effective.Statement, error) {
	res, ok := typeResolutionKey.Inherited(c)
	if !ok {
		return nil, fmt.Errorf("type %s is unresolved", c.RawArgument())
	}
	info := effective.TypeInfo{
		Builtin: res.builtin,
		Bases:   builtEffective[*effective.Identity](b, res.bases),
	}
	if res.typedef != nil {
		info.Name = res.typedef.ArgumentQName()
		info.Typedef, _ = b.EffectiveOf(res.typedef).(*effective.Typedef)
	} else {
		info.Name = qname.Keyword(res.builtin)
	}
	if target, ok := leafrefTargetKey.Get(c); ok {
		info.LeafrefTarget, _ = b.EffectiveOf(target).(effective.SchemaNode)
	}
	return effective.NewType(m, info), nil
}

// leafHolder returns the leaf or leaf-list whose type c is, looking through
// union member types. It is nil for types of typedefs.
func leafHolder(c *reactor.Context) *reactor.Context {
	for p := c.Parent(); p != nil; p = p.Parent() {
		switch {
		case p.Is("leaf"), p.Is("leaf-list"):
			return p
		case p.Is("type"):
			continue
		default:
			return nil
		}
	}
	return nil
}

// leafrefPath finds the path of a leafref type, following its typedef chain.
func leafrefPath(c *reactor.Context, res typeResolution) (yangpath.Path, bool) {
	if p := c.Find("path"); p != nil {
		return p.Argument().(yangpath.Path), true
	}
	for td := res.typedef; td != nil; {
		t := td.Find("type")
		if t == nil {
			break
		}
		if p := t.Find("path"); p != nil {
			return p.Argument().(yangpath.Path), true
		}
		r, _ := typeResolutionKey.Get(t)
		td = r.typedef
	}
	return yangpath.Path{}, false
}

func resolveLeafref(c *reactor.Context) reactor.Outcome {
	res, ok := typeResolutionKey.Inherited(c)
	if !ok {
		if origin := c.Origin(); origin != c {
			return reactor.Retry(c.Error(yangerr.Inference, "type %s is not resolved", c.RawArgument()), origin)
		}
		return reactor.Retry(c.Error(yangerr.Inference, "type %s is not resolved", c.RawArgument()))
	}
	if res.builtin != "leafref" {
		return reactor.Done()
	}
	path, ok := leafrefPath(c, res)
	if !ok {
		return reactor.Fail(c.Error(yangerr.MissingSubstatement, "leafref type has no path"))
	}
	holder := leafHolder(c)
	target, err := followLeafref(c, holder, path)
	if err != nil {
		return reactor.Retry(err)
	}
	if !target.Is("leaf") && !target.Is("leaf-list") {
		return reactor.Fail(c.Error(yangerr.Inference, "leafref path %s points to %s, which is not a leaf or leaf-list", path, target))
	}
	leafrefTargetKey.Set(c, target)
	return reactor.Done()
}

// followLeafref walks a leafref path through the data tree, starting at the
// module root for absolute paths and at the holding leaf otherwise.
// Predicates constrain instances and do not affect the target node.
func followLeafref(c, holder *reactor.Context, path yangpath.Path) (*reactor.Context, error) {
	var cur *reactor.Context
	if path.Absolute {
		if len(path.Steps) == 0 {
			return nil, c.Error(yangerr.ArgumentSyntax, "empty leafref path")
		}
		root, err := c.ModuleRootOf(path.Steps[0].Name.Prefix)
		if err != nil {
			return nil, err
		}
		cur = root
	} else {
		cur = holder
		for i := 0; i < path.Up; i++ {
			if cur.IsRoot() {
				return nil, c.Error(yangerr.Inference, "leafref path %s climbs above the data tree root", path)
			}
			if p := cur.DataParent(); p != nil {
				cur = p
			} else {
				cur = cur.Root().ModuleRoot()
			}
		}
	}
	for _, step := range path.Steps {
		next, err := leafrefStep(c, cur, step.Name)
		if err != nil {
			return nil, c.Error(yangerr.Inference, "leafref path %s: %v", path, err)
		}
		cur = next
	}
	return cur, nil
}

// leafrefStep finds the data child a path step names. A step in the module
// the path was written in matches by local name, so paths inside groupings
// keep working wherever the grouping is used. Other steps must match the
// child's direct id or, for nodes added by augmentation, its augmented id.
func leafrefStep(c, cur *reactor.Context, name qname.Ref) (*reactor.Context, error) {
	mod, err := c.ModuleRootOf(name.Prefix)
	if err != nil {
		return nil, err
	}
	children := cur.DataChildren()
	if mod == c.Origin().ModuleRoot() {
		for _, ch := range children {
			if ch.ArgumentQName().Local == name.Local {
				return ch, nil
			}
		}
		return nil, fmt.Errorf("%s has no child %s", describe(cur), name)
	}
	q := c.Interner().QName(mod.QNameModule(), name.Local)
	for _, ch := range children {
		if ch.ArgumentQName() == q {
			return ch, nil
		}
	}
	for _, ch := range children {
		if ch.AddedByAugmentation() && ch.ArgumentQName().Local == name.Local && ch.Parent().QNameModule() == q.Module {
			return ch, nil
		}
	}
	return nil, fmt.Errorf("%s has no child %s", describe(cur), name)
}

func describe(c *reactor.Context) string {
	if c.IsRoot() {
		return "module " + c.RawArgument()
	}
	return c.String()
}

// Finalize rejects leafrefs whose target was pruned and chains of leafrefs
// that lead back to where they started.
func (typeSupport) Finalize(c *reactor.Context) error {
	target, ok := leafrefTargetKey.Get(c)
	if !ok {
		return nil
	}
	holder := leafHolder(c)
	if holder.PrunedInTree() {
		return nil
	}
	if target.PrunedInTree() {
		return c.Error(yangerr.Inference, "leafref target %s is not part of the schema: it was removed by if-feature or deviation", target)
	}
	chain := []*reactor.Context{holder}
	for cur := target; ; {
		if cur == holder {
			if slices.ContainsFunc(chain, func(h *reactor.Context) bool { return h.Handle() < holder.Handle() }) {
				return nil
			}
			names := make([]string, len(chain))
			for i, h := range chain {
				names[i] = h.String()
			}
			e := c.Error(yangerr.Cycle, "leafref chain leads back to %s", holder)
			e.Members = names
			return e
		}
		if slices.Contains(chain, cur) {
			return nil
		}
		chain = append(chain, cur)
		t := cur.Find("type")
		if t == nil {
			return nil
		}
		next, ok := leafrefTargetKey.Get(t)
		if !ok {
			return nil
		}
		cur = next
	}
}

// scheduleDefaultCheck validates a default value of a leaf or typedef once
// its type is resolved.
func scheduleDefaultCheck(c *reactor.Context) error {
	if c.Find("default") == nil {
		return nil
	}
	return c.ScheduleAction(reactor.PhaseEffectiveModel, "check default", checkDefaults)
}

func checkDefaults(c *reactor.Context) reactor.Outcome {
	t := c.Find("type")
	if t == nil {
		return reactor.Done()
	}
	res, ok := typeResolutionKey.Inherited(t)
	if !ok {
		return reactor.Retry(c.Error(yangerr.Inference, "type of %s is not resolved", c), t.Origin())
	}
	var errs yangerr.List
	for _, d := range c.FindAll("default") {
		if err := checkValue(t, res, d.RawArgument()); err != nil {
			errs.Add(d.Error(yangerr.ArgumentSyntax, "invalid default value %q: %v", d.RawArgument(), err))
		}
	}
	if err := errs.Err(); err != nil {
		return reactor.Fail(err)
	}
	return reactor.Done()
}

// checkValue validates a lexical value against a resolved type. Types whose
// values depend on instance data or other nodes are accepted as written;
// range, length and pattern restrictions are not evaluated.
func checkValue(t *reactor.Context, res typeResolution, raw string) error {
	switch res.builtin {
	case "leafref", "identityref", "instance-identifier", "union":
		return nil
	case "empty":
		return fmt.Errorf("type empty cannot have a default")
	case "enumeration":
		if slices.Contains(members(t, res, "enum"), raw) {
			return nil
		}
		return fmt.Errorf("%q is not a member of the enumeration", raw)
	case "bits":
		names := members(t, res, "bit")
		v, err := effective.ValueOf("bits", raw)
		if err != nil {
			return err
		}
		for it := v.ElementIterator(); it.Next(); {
			_, bit := it.Element()
			if !slices.Contains(names, bit.AsString()) {
				return fmt.Errorf("%q is not a bit of the type", bit.AsString())
			}
		}
		return nil
	}
	_, err := effective.ValueOf(res.builtin, raw)
	return err
}

// members lists enum or bit names of t, from the nearest type in the typedef
// chain that declares any. Members pruned by if-feature are left out.
func members(t *reactor.Context, res typeResolution, keyword string) []string {
	cur, td := t, res.typedef
	for cur != nil {
		if found := cur.FindAll(keyword); len(found) > 0 {
			out := make([]string, len(found))
			for i, m := range found {
				out[i] = m.RawArgument()
			}
			return out
		}
		if td == nil {
			break
		}
		cur = td.Find("type")
		if cur == nil {
			break
		}
		r, _ := typeResolutionKey.Get(cur)
		td = r.typedef
	}
	return nil
}
