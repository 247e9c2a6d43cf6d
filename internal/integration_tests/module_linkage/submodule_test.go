package integration_tests

import (
	"testing"

	"github.com/specialistvlad/yangreactor/internal/testutil"
	"github.com/specialistvlad/yangreactor/internal/yangerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mainModule = `
module "m" {
  namespace = "urn:m"
  prefix    = "m"

  include "sub" {}

  container "top" {
    uses "shared" {}
  }
}
`

// Test for: submodule definitions are visible to the including module
func TestModuleLinkage_SubmoduleSharesDefinitions(t *testing.T) {
	result := testutil.RunIntegrationTest(t, map[string]string{
		"m.hcl": mainModule,
		"sub.hcl": `
submodule "sub" {
  belongs-to "m" {
    prefix = "m"
  }

  grouping "shared" {
    leaf "s" {
      type = "string"
    }
  }

  leaf "from-sub" {
    type = "string"
  }
}
`,
	})

	sc := testutil.AssertResolved(t, result)
	mod, ok := sc.FindModuleByName("m", "")
	require.True(t, ok)
	require.Len(t, mod.Submodules(), 1)
	assert.Equal(t, "sub", mod.Submodules()[0].Name())
	assert.Equal(t, "m", mod.Submodules()[0].BelongsTo())

	s := testutil.AssertNode(t, result, "/m:top/s")
	assert.Equal(t, "urn:m", s.QName().Module.Namespace)
	testutil.AssertNode(t, result, "/m:from-sub")
}

// Test for: a submodule included by a module it does not belong to is rejected
func TestModuleLinkage_SubmoduleOfAnotherModule(t *testing.T) {
	result := testutil.RunIntegrationTest(t, map[string]string{
		"m.hcl": mainModule,
		"other.hcl": `
module "other" {
  namespace = "urn:other"
  prefix    = "o"
}
`,
		"sub.hcl": `
submodule "sub" {
  belongs-to "other" {
    prefix = "o"
  }
  grouping "shared" {}
}
`,
	})

	errs := testutil.AssertErrorKind(t, result, yangerr.Inference)
	assert.Contains(t, errs[0].Message, "belongs to module other")
}

// Test for: an import of a module that is not in the set is reported
func TestModuleLinkage_MissingImport(t *testing.T) {
	result := testutil.RunHCLModuleTest(t, "a", `
		import "nowhere" {
		  prefix = "n"
		}
	`)

	errs := testutil.AssertErrorKind(t, result, yangerr.Inference)
	assert.Contains(t, errs[0].Message, "imported module nowhere not found")
}

// Test for: imports by revision-date select that revision, otherwise the latest
func TestModuleLinkage_ImportRevisions(t *testing.T) {
	lib := func(rev, leaf string) string {
		return `
module "lib" {
  namespace = "urn:lib"
  prefix    = "lib"
  revision "` + rev + `" {}
  grouping "g" {
    leaf "` + leaf + `" {
      type = "string"
    }
  }
}
`
	}
	files := map[string]string{
		"lib-old.hcl": lib("2020-01-01", "old"),
		"lib-new.hcl": lib("2024-01-01", "new"),
		"pinned.hcl": `
module "pinned" {
  namespace = "urn:pinned"
  prefix    = "p"
  import "lib" {
    prefix        = "l"
    revision-date = "2020-01-01"
  }
  container "c" {
    uses "l:g" {}
  }
}
`,
		"latest.hcl": `
module "latest" {
  namespace = "urn:latest"
  prefix    = "t"
  import "lib" {
    prefix = "l"
  }
  container "c" {
    uses "l:g" {}
  }
}
`,
	}

	result := testutil.RunIntegrationTest(t, files)

	testutil.AssertNode(t, result, "/pinned:c/old")
	testutil.AssertNode(t, result, "/latest:c/new")
	latest, ok := result.Model.FindModuleByName("lib", "")
	require.True(t, ok)
	assert.Equal(t, "2024-01-01", latest.Revision())
}
