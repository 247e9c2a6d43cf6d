package reactor_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/yangreactor/internal/effective"
	"github.com/specialistvlad/yangreactor/internal/qname"
	"github.com/specialistvlad/yangreactor/internal/reactor"
	"github.com/specialistvlad/yangreactor/internal/stmt"
	"github.com/specialistvlad/yangreactor/internal/yangerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A small statement language exercising the engine without YANG semantics:
//
//	module  binds the module namespace urn:<name>
//	node    a schema node
//	thing   writes itself twice to an idempotent namespace
//	wait    completes only after the wait statement it names completed
//	late    schedules an action for a phase that is already over
//	explode reports an internal error
var (
	thingNS = reactor.NewNamespace("thing", reactor.ScopeGlobal, reactor.WriteIdempotent)
	waitNS  = reactor.NewNamespace("wait", reactor.ScopeGlobal, reactor.WriteUnique)
	doneKey = reactor.NewKey[bool]("wait done")
)

type lookup map[qname.QName]reactor.StatementSupport

func (l lookup) Lookup(q qname.QName) (reactor.StatementSupport, bool) {
	s, ok := l[q]
	return s, ok
}

func def(keyword, arg string) *reactor.Definition {
	return &reactor.Definition{Keyword: qname.Keyword(keyword), ArgumentName: arg}
}

type moduleSupport struct{ reactor.BaseSupport }

func (moduleSupport) OnLinkageDeclared(c *reactor.Context) error {
	c.BindModule(qname.Module{Namespace: "urn:" + c.RawArgument()}, c)
	return nil
}

func (moduleSupport) CreateEffective(c *reactor.Context, m effective.Meta, _ reactor.EffectiveBuilder) (effective.Statement, error) {
	info := effective.ModuleInfo{Name: c.RawArgument(), Namespace: "urn:" + c.RawArgument()}
	return effective.NewModule(m, info, nil), nil
}

type nodeSupport struct{ reactor.BaseSupport }

func (nodeSupport) CreateEffective(c *reactor.Context, m effective.Meta, b reactor.EffectiveBuilder) (effective.Statement, error) {
	return effective.NewContainer(m, b.NodeInfo(c)), nil
}

type thingSupport struct{ reactor.BaseSupport }

func (thingSupport) OnFullDefinitionDeclared(c *reactor.Context) error {
	if err := c.AddToNamespace(thingNS, c.RawArgument(), c); err != nil {
		return err
	}
	return c.AddToNamespace(thingNS, c.RawArgument(), c)
}

type waitSupport struct{ reactor.BaseSupport }

func (waitSupport) OnFullDefinitionDeclared(c *reactor.Context) error {
	if err := c.AddToNamespace(waitNS, c.RawArgument(), c); err != nil {
		return err
	}
	return c.ScheduleAction(reactor.PhaseEffectiveModel, "wait", func(c *reactor.Context) reactor.Outcome {
		target := c.Find("for")
		if target == nil {
			doneKey.Set(c, true)
			return reactor.Done()
		}
		other, ok := c.ContextFromNamespace(waitNS, target.RawArgument())
		if !ok {
			return reactor.Retry(c.Error(yangerr.Inference, "nothing named %s", target.RawArgument()))
		}
		if _, done := doneKey.Get(other); !done {
			return reactor.Retry(c.Error(yangerr.Inference, "waiting for %s", other), other)
		}
		doneKey.Set(c, true)
		return reactor.Done()
	})
}

type lateSupport struct{ reactor.BaseSupport }

func (lateSupport) OnFullDefinitionDeclared(c *reactor.Context) error {
	return c.ScheduleAction(reactor.PhaseSourceLinkage, "too late", func(c *reactor.Context) reactor.Outcome {
		return reactor.Retry(c.Error(yangerr.Inference, "linkage information is missing"))
	})
}

type explodeSupport struct{ reactor.BaseSupport }

func (explodeSupport) OnFullDefinitionDeclared(c *reactor.Context) error {
	return yangerr.New(yangerr.Internal, c.Source(), c.String(), "broken invariant")
}

func testLookup() lookup {
	node := def("node", "name")
	node.Schema = reactor.DataNode
	return lookup{
		qname.Keyword("module"):  moduleSupport{reactor.BaseSupport{Def: def("module", "name")}},
		qname.Keyword("node"):    nodeSupport{reactor.BaseSupport{Def: node}},
		qname.Keyword("thing"):   thingSupport{reactor.BaseSupport{Def: def("thing", "name")}},
		qname.Keyword("wait"):    waitSupport{reactor.BaseSupport{Def: def("wait", "name")}},
		qname.Keyword("for"):     reactor.BaseSupport{Def: def("for", "name")},
		qname.Keyword("late"):    lateSupport{reactor.BaseSupport{Def: def("late", "")}},
		qname.Keyword("explode"): explodeSupport{reactor.BaseSupport{Def: def("explode", "")}},
	}
}

func at(line int) hcl.Range {
	return hcl.Range{
		Filename: "test.yang",
		Start:    hcl.Pos{Line: line, Column: 1},
		End:      hcl.Pos{Line: line, Column: 2},
	}
}

func resolve(t *testing.T, opts reactor.Options, sources ...*stmt.Node) (*effective.SchemaContext, error) {
	t.Helper()
	return reactor.New(testLookup(), opts).Resolve(context.Background(), sources)
}

func TestResolve_BuildsSchemaTree(t *testing.T) {
	sc, err := resolve(t, reactor.Options{},
		stmt.New("module", "m",
			stmt.New("node", "a", stmt.New("node", "b")),
			stmt.New("node", "c"),
		),
	)
	require.NoError(t, err)

	n, err := sc.FindNodeByString("/m:a/b")
	require.NoError(t, err)
	assert.Equal(t, "/a/b", n.Path().LocalString())
	assert.Equal(t, "urn:m", n.QName().Module.Namespace)

	var paths []string
	sc.Walk(func(n effective.SchemaNode) bool {
		paths = append(paths, n.Path().LocalString())
		return true
	})
	assert.Equal(t, []string{"/a", "/a/b", "/c"}, paths)
}

func TestResolve_RejectsNonModuleRoot(t *testing.T) {
	_, err := resolve(t, reactor.Options{}, stmt.New("node", "a"))
	require.Error(t, err)
	assert.True(t, yangerr.HasKind(err, yangerr.InvalidSubstatement))
}

func TestResolve_UnknownStatement(t *testing.T) {
	_, err := resolve(t, reactor.Options{},
		stmt.New("module", "m", stmt.New("bogus", "x").At(at(2))),
	)
	errs := yangerr.OfKind(err, yangerr.UnsupportedStatement)
	require.Len(t, errs, 1)
	assert.Equal(t, 2, errs[0].Source.Start.Line)
}

func TestResolve_ArgumentPresence(t *testing.T) {
	_, err := resolve(t, reactor.Options{},
		stmt.New("module", "m",
			stmt.Bare("node").At(at(2)),
			stmt.New("late", "unexpected").At(at(3)),
		),
	)
	errs := yangerr.OfKind(err, yangerr.ArgumentSyntax)
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0].Message, "missing name argument")
	assert.Contains(t, errs[1].Message, "takes no argument")
}

func TestNamespace_IdempotentWrites(t *testing.T) {
	t.Run("same value twice", func(t *testing.T) {
		_, err := resolve(t, reactor.Options{}, stmt.New("module", "m", stmt.New("thing", "a")))
		require.NoError(t, err)
	})

	t.Run("conflicting value in either order", func(t *testing.T) {
		for _, order := range [][2]int{{3, 7}, {7, 3}} {
			_, err := resolve(t, reactor.Options{},
				stmt.New("module", "m",
					stmt.New("thing", "a").At(at(order[0])),
					stmt.New("thing", "a").At(at(order[1])),
				),
			)
			dups := yangerr.OfKind(err, yangerr.DuplicateDefinition)
			require.Len(t, dups, 1, "order %v", order)
			assert.Equal(t, order[1], dups[0].Source.Start.Line)
			require.Len(t, dups[0].Related, 1)
			assert.Equal(t, order[0], dups[0].Related[0].Start.Line)
		}
	})
}

func TestStuck_ReportsCyclesAndRootCauses(t *testing.T) {
	_, err := resolve(t, reactor.Options{},
		stmt.New("module", "m",
			stmt.New("wait", "free"),
			stmt.New("wait", "a", stmt.New("for", "b")).At(at(3)),
			stmt.New("wait", "b", stmt.New("for", "a")).At(at(4)),
			stmt.New("wait", "orphan", stmt.New("for", "missing")).At(at(5)),
			stmt.New("wait", "after", stmt.New("for", "free")),
		),
	)
	require.Error(t, err)

	var list yangerr.List
	require.True(t, errors.As(err, &list))
	require.Len(t, list, 2)

	cycles := yangerr.OfKind(err, yangerr.Cycle)
	require.Len(t, cycles, 1)
	assert.Equal(t, []string{`wait "a"`, `wait "b"`}, cycles[0].Members)
	assert.Len(t, cycles[0].Related, 2)

	missing := yangerr.OfKind(err, yangerr.Inference)
	require.Len(t, missing, 1)
	assert.Equal(t, 5, missing[0].Source.Start.Line)
	assert.Contains(t, missing[0].Message, "nothing named missing")
}

func TestStuck_SelfDependency(t *testing.T) {
	_, err := resolve(t, reactor.Options{},
		stmt.New("module", "m", stmt.New("wait", "self", stmt.New("for", "self"))),
	)
	cycles := yangerr.OfKind(err, yangerr.Cycle)
	require.Len(t, cycles, 1)
	assert.Equal(t, []string{`wait "self"`}, cycles[0].Members)
	assert.Contains(t, cycles[0].Message, "depends on itself")
}

func TestScheduleAction_PastPhaseRunsImmediately(t *testing.T) {
	_, err := resolve(t, reactor.Options{}, stmt.New("module", "m", stmt.Bare("late")))
	errs := yangerr.OfKind(err, yangerr.Inference)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "linkage information is missing")
}

func TestInternalErrorsPanic(t *testing.T) {
	assert.Panics(t, func() {
		_, _ = resolve(t, reactor.Options{}, stmt.New("module", "m", stmt.Bare("explode")))
	})
}

type recorder struct {
	phases []reactor.Phase
	runs   int
	stats  reactor.Stats
	err    error
}

func (r *recorder) SweepCompleted(reactor.Phase, bool) {}

func (r *recorder) PhaseCompleted(p reactor.Phase, sweeps int) {
	r.phases = append(r.phases, p)
}

func (r *recorder) RunCompleted(s reactor.Stats, err error) {
	r.runs++
	r.stats, r.err = s, err
}

func TestObserver(t *testing.T) {
	rec := &recorder{}
	_, err := resolve(t, reactor.Options{Observer: rec},
		stmt.New("module", "m", stmt.New("wait", "a"), stmt.New("wait", "b", stmt.New("for", "a"))),
	)
	require.NoError(t, err)
	assert.Equal(t, []reactor.Phase{
		reactor.PhaseSourceLinkage,
		reactor.PhaseStatementDefinition,
		reactor.PhaseFullDeclaration,
		reactor.PhaseEffectiveModel,
	}, rec.phases)
	assert.Equal(t, 1, rec.runs)
	assert.Equal(t, 1, rec.stats.Roots)
	assert.Equal(t, 4, rec.stats.Contexts)
	assert.NoError(t, rec.err)
}

func TestResolve_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := reactor.New(testLookup(), reactor.Options{}).Resolve(ctx, []*stmt.Node{stmt.New("module", "m")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestResolveAll(t *testing.T) {
	r := reactor.New(testLookup(), reactor.Options{})
	var inputs [][]*stmt.Node
	for i := range 5 {
		inputs = append(inputs, []*stmt.Node{stmt.New("module", fmt.Sprintf("m%d", i), stmt.New("node", "x"))})
	}

	results, err := r.ResolveAll(context.Background(), inputs, 2)
	require.NoError(t, err)
	require.Len(t, results, 5)
	for i, sc := range results {
		mods := sc.Modules()
		require.Len(t, mods, 1)
		assert.Equal(t, fmt.Sprintf("m%d", i), mods[0].Name())
	}

	inputs[3] = []*stmt.Node{stmt.New("module", "bad", stmt.New("bogus", "x"))}
	_, err = r.ResolveAll(context.Background(), inputs, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "module set 3")
	assert.True(t, yangerr.HasKind(err, yangerr.UnsupportedStatement))
}
