package support

import (
	"strings"

	"github.com/specialistvlad/yangreactor/internal/effective"
	"github.com/specialistvlad/yangreactor/internal/qname"
	"github.com/specialistvlad/yangreactor/internal/reactor"
	"github.com/specialistvlad/yangreactor/internal/yangerr"
	"github.com/specialistvlad/yangreactor/internal/yangpath"
)

var (
	featureStateKey    = reactor.NewKey[bool]("feature supported")
	ifFeatureResultKey = reactor.NewKey[bool]("if-feature result")
	identityBasesKey   = reactor.NewKey[[]*reactor.Context]("identity bases")
)

func definitionSupports() []reactor.StatementSupport {
	return []reactor.StatementSupport{
		extensionSupport{reactor.BaseSupport{Def: define("extension", "name", documented(rules().Optional("argument")))}},
		newSimple(define("argument", "name", rules().Optional("yin-element")), parseIdentifier),
		featureSupport{reactor.BaseSupport{Def: define("feature", "name", documented(rules().Any("if-feature")))}},
		ifFeatureSupport{reactor.BaseSupport{Def: define("if-feature", "name", nil)}},
		identitySupport{reactor.BaseSupport{Def: define("identity", "name", documented(rules().Any("if-feature", "base")))}},
		newSimple(define("base", "name", nil), parseRef),
	}
}

type extensionSupport struct{ reactor.BaseSupport }

func (extensionSupport) ParseArgument(_ *reactor.Context, raw string) (any, error) {
	return parseIdentifier(raw)
}

// OnStatementDefinitionDeclared makes the extension usable as a keyword
// before statements using it are resolved.
func (extensionSupport) OnStatementDefinitionDeclared(c *reactor.Context) error {
	if c.IsCopy() {
		return nil
	}
	return c.AddToNamespace(reactor.ExtensionNamespace, c.ArgumentQName(), c)
}

func (extensionSupport) CreateEffective(c *reactor.Context, m effective.Meta, _ reactor.EffectiveBuilder) (effective.Statement, error) {
	return effective.NewExtension(m, c.ArgumentQName()), nil
}

type featureSupport struct{ reactor.BaseSupport }

func (featureSupport) ParseArgument(_ *reactor.Context, raw string) (any, error) {
	return parseIdentifier(raw)
}

// OnFullDefinitionDeclared registers the feature and schedules evaluation of
// its support state: enabled in the run's feature set and all of its own
// if-feature conditions true.
func (featureSupport) OnFullDefinitionDeclared(c *reactor.Context) error {
	if c.IsCopy() {
		return nil
	}
	if err := c.AddToNamespace(reactor.FeatureNamespace, c.ArgumentQName(), c); err != nil {
		return err
	}
	return c.ScheduleAction(reactor.PhaseEffectiveModel, "evaluate feature", func(c *reactor.Context) reactor.Outcome {
		supported := c.Options().Features.Supports(c.ModuleRoot().RawArgument(), c.RawArgument())
		for _, f := range c.FindAll("if-feature") {
			v, ok := ifFeatureResultKey.Get(f)
			if !ok {
				return reactor.Retry(c.Error(yangerr.Inference, "condition %q is not evaluated yet", f.RawArgument()), f)
			}
			supported = supported && v
		}
		featureStateKey.Set(c, supported)
		return reactor.Done()
	})
}

func (featureSupport) CreateEffective(c *reactor.Context, m effective.Meta, _ reactor.EffectiveBuilder) (effective.Statement, error) {
	supported, _ := featureStateKey.Get(c)
	return effective.NewFeature(m, c.ArgumentQName(), supported), nil
}

type ifFeatureSupport struct{ reactor.BaseSupport }

func (ifFeatureSupport) ParseArgument(_ *reactor.Context, raw string) (any, error) {
	return parseFeatureExpr(raw)
}

// OnFullDefinitionDeclared evaluates the condition wherever the guarded
// statement is part of the schema tree. A false condition prunes the guarded
// statement, or fails it when unsupported features are errors.
func (ifFeatureSupport) OnFullDefinitionDeclared(c *reactor.Context) error {
	if !c.Parent().Instantiated() {
		return nil
	}
	return c.ScheduleAction(reactor.PhaseEffectiveModel, "evaluate if-feature", evaluateIfFeature)
}

func evaluateIfFeature(c *reactor.Context) reactor.Outcome {
	expr := c.Argument().(yangpath.FeatureExpr)
	states := make(map[qname.Ref]bool)
	for _, ref := range expr.Refs() {
		q, err := c.ResolveRef(ref)
		if err != nil {
			return reactor.Fail(err)
		}
		f, ok := c.ContextFromNamespace(reactor.FeatureNamespace, q)
		if !ok {
			return reactor.Retry(c.Error(yangerr.Inference, "feature %s not found", ref))
		}
		v, ok := featureStateKey.Get(f)
		if !ok {
			return reactor.Retry(c.Error(yangerr.Inference, "feature %s is not evaluated yet", ref), f)
		}
		states[ref] = v
	}
	result := expr.Eval(func(r qname.Ref) bool { return states[r] })
	ifFeatureResultKey.Set(c, result)

	guarded := c.Parent()
	if result || guarded.Is("feature") {
		return reactor.Done()
	}
	if c.Options().ErrorOnUnsupportedFeature {
		var off []string
		for _, ref := range expr.Refs() {
			if !states[ref] {
				off = append(off, ref.String())
			}
		}
		return reactor.Fail(guarded.Error(yangerr.UnsupportedStatement,
			"%s requires unsupported features: %s", guarded, strings.Join(off, ", ")))
	}
	guarded.Prune()
	c.Logger().Debug("Statement pruned by if-feature.", "statement", guarded.String(), "condition", expr.String())
	return reactor.Done()
}

type identitySupport struct{ reactor.BaseSupport }

func (identitySupport) ParseArgument(_ *reactor.Context, raw string) (any, error) {
	return parseIdentifier(raw)
}

// OnFullDefinitionDeclared registers the identity and schedules resolution
// of its bases. An identity becomes resolved only after all of its bases
// are, so derivation cycles surface as a cycle between waiting identities.
func (identitySupport) OnFullDefinitionDeclared(c *reactor.Context) error {
	if c.IsCopy() {
		return nil
	}
	if err := c.AddToNamespace(reactor.IdentityNamespace, c.ArgumentQName(), c); err != nil {
		return err
	}
	return c.ScheduleAction(reactor.PhaseEffectiveModel, "resolve identity bases", func(c *reactor.Context) reactor.Outcome {
		var bases []*reactor.Context
		for _, b := range c.FindAll("base") {
			ref := b.Argument().(qname.Ref)
			base, out, ok := lookupIdentity(b, ref)
			if !ok {
				return out
			}
			if _, resolved := identityBasesKey.Get(base); !resolved {
				return reactor.Retry(c.Error(yangerr.Inference, "base identity %s is not resolved", ref), base)
			}
			bases = append(bases, base)
		}
		identityBasesKey.Set(c, bases)
		return reactor.Done()
	})
}

func (identitySupport) CreateEffective(c *reactor.Context, m effective.Meta, b reactor.EffectiveBuilder) (effective.Statement, error) {
	bases, _ := identityBasesKey.Get(c)
	return effective.NewIdentity(m, c.ArgumentQName(), builtEffective[*effective.Identity](b, bases)), nil
}

// lookupIdentity finds the identity a base statement names. When it is not
// found the returned outcome says why.
func lookupIdentity(c *reactor.Context, ref qname.Ref) (*reactor.Context, reactor.Outcome, bool) {
	q, err := c.ResolveRef(ref)
	if err != nil {
		return nil, reactor.Fail(err), false
	}
	id, ok := c.ContextFromNamespace(reactor.IdentityNamespace, q)
	if !ok {
		return nil, reactor.Retry(c.Error(yangerr.Inference, "identity %s not found", ref)), false
	}
	return id, reactor.Outcome{}, true
}
