package support

import (
	"github.com/specialistvlad/yangreactor/internal/effective"
	"github.com/specialistvlad/yangreactor/internal/reactor"
	"github.com/specialistvlad/yangreactor/internal/yangerr"
)

func schemaSupports() []reactor.StatementSupport {
	dataNode := func() *reactor.SubstatementRules {
		return documented(rules().Optional("when").Any("if-feature"))
	}
	nested := func(r *reactor.SubstatementRules) *reactor.SubstatementRules {
		return r.Any("typedef", "grouping").Any(dataDefinitions...).Any("action", "notification")
	}
	operation := func(keyword string) *reactor.Definition {
		d := define(keyword, "name", documented(rules().
			Any("if-feature", "typedef", "grouping").
			Optional("input", "output")))
		d.Schema = reactor.DataNode
		d.NoConfig = true
		return d
	}
	inout := func(keyword string) *reactor.Definition {
		d := define(keyword, "", rules().Any("must", "typedef", "grouping").Any(dataDefinitions...))
		d.Schema = reactor.DataNode
		d.NoConfig = true
		return d
	}
	notification := define("notification", "name", nested(documented(rules().Any("if-feature", "must"))))
	notification.Schema = reactor.DataNode
	notification.NoConfig = true

	return []reactor.StatementSupport{
		node(define("container", "name", nested(dataNode().Any("must").Optional("presence", "config"))), reactor.DataNode, newContainer),
		leafSupport{node(define("leaf", "name", dataNode().
			Required("type").
			Any("must").
			Optional("units", "default", "config", "mandatory")), reactor.DataNode, newLeaf)},
		leafSupport{node(define("leaf-list", "name", dataNode().
			Required("type").
			Any("must", "default").
			Optional("units", "config", "min-elements", "max-elements", "ordered-by")), reactor.DataNode, newLeafList)},
		listSupport{node(define("list", "name", nested(dataNode().
			Any("must", "unique").
			Optional("key", "config", "min-elements", "max-elements", "ordered-by"))), reactor.DataNode, newList)},
		choiceSupport{node(define("choice", "name", dataNode().
			Optional("default", "config", "mandatory").
			Any("case").
			Any(shortCases...)), reactor.SchemaOnly, newChoice)},
		node(define("case", "name", dataNode().Any(dataDefinitions...)), reactor.SchemaOnly, newCase),
		node(define("anydata", "name", dataNode().Any("must").Optional("config", "mandatory")), reactor.DataNode, newAnyData),
		node(define("anyxml", "name", dataNode().Any("must").Optional("config", "mandatory")), reactor.DataNode, newAnyData),
		node(operation("rpc"), reactor.DataNode, newOperation),
		node(operation("action"), reactor.DataNode, newOperation),
		node(inout("input"), reactor.DataNode, newInOut),
		node(inout("output"), reactor.DataNode, newInOut),
		node(notification, reactor.DataNode, newNotification),
	}
}

type nodeConstructor func(effective.Meta, effective.NodeInfo) effective.Statement

func newContainer(m effective.Meta, i effective.NodeInfo) effective.Statement    { return effective.NewContainer(m, i) }
func newLeaf(m effective.Meta, i effective.NodeInfo) effective.Statement         { return effective.NewLeaf(m, i) }
func newLeafList(m effective.Meta, i effective.NodeInfo) effective.Statement     { return effective.NewLeafList(m, i) }
func newList(m effective.Meta, i effective.NodeInfo) effective.Statement         { return effective.NewList(m, i) }
func newChoice(m effective.Meta, i effective.NodeInfo) effective.Statement       { return effective.NewChoice(m, i) }
func newCase(m effective.Meta, i effective.NodeInfo) effective.Statement         { return effective.NewCase(m, i) }
func newAnyData(m effective.Meta, i effective.NodeInfo) effective.Statement      { return effective.NewAnyData(m, i) }
func newOperation(m effective.Meta, i effective.NodeInfo) effective.Statement    { return effective.NewOperation(m, i) }
func newInOut(m effective.Meta, i effective.NodeInfo) effective.Statement        { return effective.NewInOut(m, i) }
func newNotification(m effective.Meta, i effective.NodeInfo) effective.Statement { return effective.NewNotification(m, i) }

// nodeSupport serves schema node statements.
type nodeSupport struct {
	reactor.BaseSupport
	build nodeConstructor
}

func node(def *reactor.Definition, kind reactor.SchemaKind, build nodeConstructor) nodeSupport {
	def.Schema = kind
	return nodeSupport{BaseSupport: reactor.BaseSupport{Def: def}, build: build}
}

func (s nodeSupport) ParseArgument(_ *reactor.Context, raw string) (any, error) {
	if s.Def.ArgumentName == "" {
		return nil, nil
	}
	return parseIdentifier(raw)
}

func (s nodeSupport) CreateEffective(c *reactor.Context, m effective.Meta, b reactor.EffectiveBuilder) (effective.Statement, error) {
	return s.build(m, b.NodeInfo(c)), nil
}

type leafSupport struct{ nodeSupport }

// OnFullDefinitionDeclared rejects a mandatory leaf with a default and
// schedules the default value check.
func (leafSupport) OnFullDefinitionDeclared(c *reactor.Context) error {
	if c.IsCopy() {
		return nil
	}
	if c.Is("leaf") && c.Find("default") != nil {
		if m := c.Find("mandatory"); m != nil {
			if v, _ := m.Argument().(bool); v {
				return c.Error(yangerr.InvalidSubstatement, "mandatory leaf %s cannot have a default", c.RawArgument())
			}
		}
	}
	return scheduleDefaultCheck(c)
}

type listSupport struct{ nodeSupport }

// OnFullDefinitionDeclared schedules the key check for lists in the schema
// tree. Key leaves may be added by uses or augment, so the check waits
// until the end of the phase for them to appear.
func (listSupport) OnFullDefinitionDeclared(c *reactor.Context) error {
	if !c.Instantiated() {
		return nil
	}
	return c.ScheduleAction(reactor.PhaseEffectiveModel, "check list keys", checkListKeys)
}

func checkListKeys(c *reactor.Context) reactor.Outcome {
	key := c.Find("key")
	if key == nil {
		if c.Config() {
			e := c.Error(yangerr.MissingSubstatement, "config list %s has no key", c.RawArgument())
			e.Rule = "key 1..1"
			return reactor.Fail(e)
		}
		return reactor.Done()
	}
	names, _ := key.Argument().([]string)
	for _, name := range names {
		var leaf *reactor.Context
		for _, ch := range c.SchemaChildren() {
			if ch.ArgumentQName().Local == name {
				leaf = ch
				break
			}
		}
		if leaf == nil {
			return reactor.Retry(key.Error(yangerr.Inference, "key leaf %q is not a child of list %s", name, c.RawArgument()))
		}
		if !leaf.Is("leaf") {
			return reactor.Fail(key.Error(yangerr.InvalidSubstatement, "key %q of list %s names %s, not a leaf", name, c.RawArgument(), leaf))
		}
	}
	return reactor.Done()
}

type choiceSupport struct{ nodeSupport }

// OnFullDefinitionDeclared checks the default case of choices in the
// schema tree.
func (choiceSupport) OnFullDefinitionDeclared(c *reactor.Context) error {
	def := c.Find("default")
	if def == nil {
		return nil
	}
	if m := c.Find("mandatory"); m != nil && !c.IsCopy() {
		if v, _ := m.Argument().(bool); v {
			return c.Error(yangerr.InvalidSubstatement, "mandatory choice %s cannot have a default case", c.RawArgument())
		}
	}
	if !c.Instantiated() {
		return nil
	}
	return c.ScheduleAction(reactor.PhaseEffectiveModel, "check default case", func(c *reactor.Context) reactor.Outcome {
		def := c.Find("default")
		if def == nil {
			return reactor.Done()
		}
		for _, ch := range c.SchemaChildren() {
			if ch.ArgumentQName().Local == def.RawArgument() {
				return reactor.Done()
			}
		}
		return reactor.Retry(def.Error(yangerr.Inference, "default case %q is not a case of choice %s", def.RawArgument(), c.RawArgument()))
	})
}
