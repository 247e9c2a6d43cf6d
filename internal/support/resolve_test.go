package support_test

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/yangreactor/internal/effective"
	"github.com/specialistvlad/yangreactor/internal/hcl_adapter"
	"github.com/specialistvlad/yangreactor/internal/reactor"
	"github.com/specialistvlad/yangreactor/internal/registry"
	"github.com/specialistvlad/yangreactor/internal/stmt"
	"github.com/specialistvlad/yangreactor/internal/support"
	"github.com/specialistvlad/yangreactor/internal/yangerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resolve parses each source as its own HCL file and resolves them together.
func resolve(t *testing.T, opts reactor.Options, sources ...string) (*effective.SchemaContext, error) {
	t.Helper()
	ctx := context.Background()
	loader := hcl_adapter.NewLoader()
	var nodes []*stmt.Node
	for i, src := range sources {
		n, diags := loader.Parse(ctx, fmt.Sprintf("source%d.hcl", i), []byte(src))
		require.False(t, diags.HasErrors(), diags.Error())
		nodes = append(nodes, n...)
	}
	reg := registry.New(&support.Module{})
	return reactor.New(reg, opts).Resolve(ctx, nodes)
}

func mustResolve(t *testing.T, sources ...string) *effective.SchemaContext {
	t.Helper()
	sc, err := resolve(t, reactor.Options{}, sources...)
	require.NoError(t, err)
	return sc
}

func node(t *testing.T, sc *effective.SchemaContext, path string) effective.SchemaNode {
	t.Helper()
	n, err := sc.FindNodeByString(path)
	require.NoError(t, err)
	return n
}

func leaf(t *testing.T, sc *effective.SchemaContext, path string) *effective.Leaf {
	t.Helper()
	l, ok := node(t, sc, path).(*effective.Leaf)
	require.True(t, ok, "%s is not a leaf", path)
	return l
}

const groupingModule = `
module "a" {
  namespace = "urn:a"
  prefix    = "a"

  grouping "g" {
    leaf "x" {
      type        = "string"
      description = "original"
    }
  }

  container "c1" {
    uses "g" {}
  }
  container "c2" {
    uses "g" {}
  }
}
`

func TestUsesTwiceGivesIndependentCopies(t *testing.T) {
	sc := mustResolve(t, groupingModule)

	x1 := leaf(t, sc, "/a:c1/x")
	x2 := leaf(t, sc, "/a:c2/x")
	assert.NotSame(t, x1, x2)
	assert.Equal(t, "/c1/x", x1.Path().LocalString())
	assert.Equal(t, "/c2/x", x2.Path().LocalString())

	assert.Equal(t, "string", x1.Type().Builtin())
	assert.Equal(t, x1.Type().Builtin(), x2.Type().Builtin())
	assert.Equal(t, x1.Type().CtyType(), x2.Type().CtyType())

	for _, x := range []*effective.Leaf{x1, x2} {
		assert.Equal(t, []stmt.CopyType{stmt.AddedByUses}, x.CopyHistory().Ops())
		assert.Equal(t, "urn:a", x.QName().Module.Namespace)
	}

	mod, ok := sc.FindModuleByName("a", "")
	require.True(t, ok)
	require.Len(t, mod.Groupings(), 1)
	assert.Equal(t, "g", mod.Groupings()[0].QName().Local)
}

func TestRefineChangesOnlyItsOwnCopy(t *testing.T) {
	sc := mustResolve(t, `
module "a" {
  namespace = "urn:a"
  prefix    = "a"

  grouping "g" {
    leaf "x" {
      type        = "string"
      description = "original"
    }
  }

  container "c1" {
    uses "g" {
      refine "x" {
        description = "refined"
        mandatory   = true
      }
    }
  }
  container "c2" {
    uses "g" {}
  }
}
`)

	x1 := leaf(t, sc, "/a:c1/x")
	x2 := leaf(t, sc, "/a:c2/x")
	assert.Equal(t, "refined", x1.Description())
	assert.True(t, x1.Mandatory())
	assert.Equal(t, "original", x2.Description())
	assert.False(t, x2.Mandatory())

	mod, _ := sc.FindModuleByName("a", "")
	gx := mod.Groupings()[0].Find("leaf")
	require.NotNil(t, gx)
	var descs []string
	for _, s := range gx.Substatements() {
		if s.Keyword().Local == "description" {
			descs = append(descs, s.RawArgument())
		}
	}
	assert.Equal(t, []string{"original"}, descs)
}

func TestRefineRejectsUnknownTarget(t *testing.T) {
	_, err := resolve(t, reactor.Options{}, `
module "a" {
  namespace = "urn:a"
  prefix    = "a"
  grouping "g" {
    leaf "x" { type = "string" }
  }
  container "c" {
    uses "g" {
      refine "nope" { description = "x" }
    }
  }
}
`)
	require.Error(t, err)
	assert.True(t, yangerr.HasKind(err, yangerr.Inference))
}

func TestIdentityDerivation(t *testing.T) {
	sc := mustResolve(t, `
module "a" {
  namespace = "urn:a"
  prefix    = "a"

  identity "base" {}
  identity "derived" {
    base = "base"
  }
  identity "grandchild" {
    base = "a:derived"
  }

  leaf "kind" {
    type "identityref" {
      base = "base"
    }
  }
}
`)

	mod, _ := sc.FindModuleByName("a", "")
	ids := map[string]*effective.Identity{}
	for _, id := range mod.Identities() {
		ids[id.QName().Local] = id
	}
	require.Len(t, ids, 3)

	var derived []string
	for _, id := range sc.DerivedIdentities(ids["base"]) {
		derived = append(derived, id.QName().Local)
	}
	assert.Equal(t, []string{"derived", "grandchild"}, derived)
	assert.Empty(t, sc.DerivedIdentities(ids["grandchild"]))
	assert.True(t, ids["grandchild"].DerivesFrom(ids["base"]))

	kind := leaf(t, sc, "/a:kind")
	require.Len(t, kind.Type().IdentityBases(), 1)
	assert.Same(t, ids["base"], kind.Type().IdentityBases()[0])
}

func TestIdentityCycle(t *testing.T) {
	_, err := resolve(t, reactor.Options{}, `
module "a" {
  namespace = "urn:a"
  prefix    = "a"

  identity "cyclic" {
    base = "cyclic"
  }
}
`)
	cycles := yangerr.OfKind(err, yangerr.Cycle)
	require.Len(t, cycles, 1)
	assert.Equal(t, []string{`identity "cyclic"`}, cycles[0].Members)
	assert.Contains(t, cycles[0].Error(), "cyclic")
}

func TestLeafrefForwardReference(t *testing.T) {
	sc := mustResolve(t, `
module "a" {
  namespace = "urn:a"
  prefix    = "a"

  container "c" {
    leaf "ref" {
      type "leafref" {
        path = "../other"
      }
    }
    leaf "other" {
      type = "string"
    }
  }
}
`)

	ref := leaf(t, sc, "/a:c/ref")
	other := leaf(t, sc, "/a:c/other")
	assert.Equal(t, "leafref", ref.Type().Builtin())
	assert.Same(t, other, ref.Type().LeafrefTarget())
}

func TestLeafrefCycle(t *testing.T) {
	_, err := resolve(t, reactor.Options{}, `
module "a" {
  namespace = "urn:a"
  prefix    = "a"

  leaf "p" {
    type "leafref" { path = "/q" }
  }
  leaf "q" {
    type "leafref" { path = "/p" }
  }
}
`)
	cycles := yangerr.OfKind(err, yangerr.Cycle)
	require.Len(t, cycles, 1)
	assert.Equal(t, []string{`leaf "p"`, `leaf "q"`}, cycles[0].Members)
}

func TestDuplicateGrouping(t *testing.T) {
	_, err := resolve(t, reactor.Options{}, `
module "a" {
  namespace = "urn:a"
  prefix    = "a"

  grouping "dup" {}
  grouping "dup" {}
}
`)
	dups := yangerr.OfKind(err, yangerr.DuplicateDefinition)
	require.Len(t, dups, 1)
	assert.Equal(t, 7, dups[0].Source.Start.Line)
	require.Len(t, dups[0].Related, 1)
	assert.Equal(t, 6, dups[0].Related[0].Start.Line)
	assert.Equal(t, "source0.hcl", dups[0].Related[0].Filename)
}

// A nested definition may not reuse the name of one visible from an
// enclosing scope, whichever of the two comes first in the source.
func TestNestedDefinitionShadowing(t *testing.T) {
	testCases := []struct {
		name    string
		sources []string
		lines   []int
	}{
		{
			name: "grouping inner first",
			sources: []string{`
module "a" {
  namespace = "urn:a"
  prefix    = "a"

  container "c" {
    grouping "g" {}
  }
  grouping "g" {}
}
`},
			lines: []int{7, 9},
		},
		{
			name: "grouping outer first",
			sources: []string{`
module "a" {
  namespace = "urn:a"
  prefix    = "a"

  grouping "g" {}
  container "c" {
    grouping "g" {}
  }
}
`},
			lines: []int{6, 8},
		},
		{
			name: "typedef inner first",
			sources: []string{`
module "a" {
  namespace = "urn:a"
  prefix    = "a"

  container "c" {
    typedef "t" {
      type = "string"
    }
  }
  typedef "t" {
    type = "int8"
  }
}
`},
			lines: []int{7, 11},
		},
		{
			name: "typedef outer first",
			sources: []string{`
module "a" {
  namespace = "urn:a"
  prefix    = "a"

  typedef "t" {
    type = "int8"
  }
  container "c" {
    typedef "t" {
      type = "string"
    }
  }
}
`},
			lines: []int{6, 10},
		},
		{
			name: "grouping nested in submodule",
			sources: []string{`
module "a" {
  namespace = "urn:a"
  prefix    = "a"

  include "s" {}

  grouping "g" {}
}
`, `
submodule "s" {
  belongs-to "a" {
    prefix = "a"
  }

  container "c" {
    grouping "g" {}
  }
}
`},
			lines: []int{8, 8},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := resolve(t, reactor.Options{}, tc.sources...)
			dups := yangerr.OfKind(err, yangerr.DuplicateDefinition)
			require.Len(t, dups, 1)
			require.Len(t, dups[0].Related, 1)
			got := []int{dups[0].Source.Start.Line, dups[0].Related[0].Start.Line}
			assert.ElementsMatch(t, tc.lines, got)
		})
	}
}

func TestSiblingScopesMayReuseNames(t *testing.T) {
	mustResolve(t, `
module "a" {
  namespace = "urn:a"
  prefix    = "a"

  container "x" {
    grouping "g" {}
  }
  container "y" {
    grouping "g" {}
  }
}
`)
}

func TestAugmentOfMissingPath(t *testing.T) {
	_, err := resolve(t, reactor.Options{}, `
module "a" {
  namespace = "urn:a"
  prefix    = "a"

  augment "/a:missing" {
    leaf "y" { type = "string" }
  }
}
`)
	errs := yangerr.OfKind(err, yangerr.Inference)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "missing")
	assert.Equal(t, 6, errs[0].Source.Start.Line)
}

const augmentingModule = `
module "b" {
  namespace = "urn:b"
  prefix    = "b"

  import "a" {
    prefix = "a"
  }

  augment "/a:c1" {
    leaf "z" { type = "string" }
  }
}
`

func TestAugmentationVisibleExactlyOnce(t *testing.T) {
	sc := mustResolve(t, groupingModule, augmentingModule)

	z := leaf(t, sc, "/a:c1/b:z")
	assert.Equal(t, "urn:b", z.QName().Module.Namespace)
	assert.Equal(t, stmt.AddedByAugmentation, z.CopyHistory().Last())

	count := 0
	sc.Walk(func(n effective.SchemaNode) bool {
		if n.QName().Local == "z" {
			count++
		}
		return true
	})
	assert.Equal(t, 1, count)

	c2 := node(t, sc, "/a:c2").(effective.DataNodeContainer)
	assert.Len(t, c2.Children(), 1)

	t.Run("absent without the augmenting module", func(t *testing.T) {
		sc := mustResolve(t, groupingModule)
		c1 := node(t, sc, "/a:c1").(effective.DataNodeContainer)
		require.Len(t, c1.Children(), 1)
		assert.Equal(t, "x", c1.Children()[0].QName().Local)
	})
}

func TestAugmentAddingMandatoryNodeToForeignModule(t *testing.T) {
	_, err := resolve(t, reactor.Options{}, groupingModule, `
module "b" {
  namespace = "urn:b"
  prefix    = "b"
  import "a" { prefix = "a" }
  augment "/a:c1" {
    leaf "z" {
      type      = "string"
      mandatory = true
    }
  }
}
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mandatory node z")
}

func TestDeterminism(t *testing.T) {
	src := []string{groupingModule, augmentingModule}
	first := mustResolve(t, src...)
	second := mustResolve(t, src...)

	assert.Equal(t, first.Fingerprint(), second.Fingerprint())

	var a, b bytes.Buffer
	require.NoError(t, first.Dump(&a))
	require.NoError(t, second.Dump(&b))
	if diff := cmp.Diff(a.String(), b.String()); diff != "" {
		t.Errorf("Dump() mismatch (-first +second):\n%s", diff)
	}

	other := mustResolve(t, groupingModule)
	assert.NotEqual(t, first.Fingerprint(), other.Fingerprint())
}

const featureModule = `
module "a" {
  namespace = "urn:a"
  prefix    = "a"

  feature "fancy" {}

  container "c" {
    leaf "plain" { type = "string" }
    leaf "extra" {
      if-feature = "fancy"
      type       = "string"
    }
  }
}
`

func TestIfFeature(t *testing.T) {
	t.Run("all features supported by default", func(t *testing.T) {
		sc := mustResolve(t, featureModule)
		node(t, sc, "/a:c/extra")
	})

	disabled, err := reactor.ParseFeatureSet([]string{"a:"})
	require.NoError(t, err)

	t.Run("disabled feature prunes the node", func(t *testing.T) {
		sc, err := resolve(t, reactor.Options{Features: disabled}, featureModule)
		require.NoError(t, err)
		_, err = sc.FindNodeByString("/a:c/extra")
		require.Error(t, err)
		node(t, sc, "/a:c/plain")

		mod, _ := sc.FindModuleByName("a", "")
		require.Len(t, mod.Features(), 1)
		assert.False(t, mod.Features()[0].Supported())
	})

	t.Run("disabled feature is an error when asked", func(t *testing.T) {
		_, err := resolve(t, reactor.Options{Features: disabled, ErrorOnUnsupportedFeature: true}, featureModule)
		errs := yangerr.OfKind(err, yangerr.UnsupportedStatement)
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0].Message, "fancy")
	})
}

func TestTypedefChainsAndDefaults(t *testing.T) {
	sc := mustResolve(t, `
module "a" {
  namespace = "urn:a"
  prefix    = "a"

  typedef "percent" {
    type "uint8" {
      range = "0..100"
    }
    units = "percent"
  }
  typedef "load" {
    type    = "percent"
    default = 50
  }

  leaf "cpu" {
    type = "load"
  }
}
`)
	cpu := leaf(t, sc, "/a:cpu")
	assert.Equal(t, "uint8", cpu.Type().Builtin())
	assert.Equal(t, "load", cpu.Type().Name().Local)
	assert.Equal(t, "percent", cpu.Units())
	def, ok := cpu.Default()
	require.True(t, ok)
	assert.Equal(t, "50", def)

	t.Run("invalid default", func(t *testing.T) {
		_, err := resolve(t, reactor.Options{}, `
module "a" {
  namespace = "urn:a"
  prefix    = "a"
  leaf "small" {
    type    = "uint8"
    default = 300
  }
}
`)
		errs := yangerr.OfKind(err, yangerr.ArgumentSyntax)
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0].Message, "300")
	})

	t.Run("typedef cycle", func(t *testing.T) {
		_, err := resolve(t, reactor.Options{}, `
module "a" {
  namespace = "urn:a"
  prefix    = "a"
  typedef "t1" { type = "t2" }
  typedef "t2" { type = "t1" }
}
`)
		require.True(t, yangerr.HasKind(err, yangerr.Cycle))
	})
}

func TestCardinalityRules(t *testing.T) {
	_, err := resolve(t, reactor.Options{}, `
module "a" {
  namespace = "urn:a"
  leaf "l" {
    type = "string"
  }
}
`)
	errs := yangerr.OfKind(err, yangerr.MissingSubstatement)
	require.Len(t, errs, 1)
	assert.Equal(t, "prefix 1..1", errs[0].Rule)
}
