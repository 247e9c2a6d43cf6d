package integration_tests

import (
	"testing"

	"github.com/specialistvlad/yangreactor/internal/effective"
	"github.com/specialistvlad/yangreactor/internal/stmt"
	"github.com/specialistvlad/yangreactor/internal/testutil"
	"github.com/specialistvlad/yangreactor/internal/yangerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseModule = `
module "base" {
  namespace = "urn:base"
  prefix    = "base"

  container "c" {
    leaf "a" {
      type = "string"
    }
    leaf "b" {
      type  = "string"
      units = "seconds"
    }
  }
}
`

func deviating(body string) map[string]string {
	return map[string]string{
		"base.hcl": baseModule,
		"dev.hcl": `
module "dev" {
  namespace = "urn:dev"
  prefix    = "dev"

  import "base" {
    prefix = "base"
  }
` + body + `
}
`,
	}
}

// Test for: deviate not-supported removes the target from the model
func TestDeviations_NotSupported(t *testing.T) {
	result := testutil.RunIntegrationTest(t, deviating(`
  deviation "/base:c/base:b" {
    deviate "not-supported" {}
  }
`))

	testutil.AssertNode(t, result, "/base:c/a")
	testutil.AssertNoNode(t, result, "/base:c/b")
}

// Test for: deviate add, replace and delete edit the target's properties
func TestDeviations_AddReplaceDelete(t *testing.T) {
	result := testutil.RunIntegrationTest(t, deviating(`
  deviation "/base:c/base:a" {
    deviate "add" {
      default = "x"
    }
  }

  deviation "/base:c/base:b" {
    deviate "replace" {
      type = "uint32"
    }
    deviate "delete" {
      units = "seconds"
    }
  }
`))

	a, ok := testutil.AssertNode(t, result, "/base:c/a").(*effective.Leaf)
	require.True(t, ok)
	def, ok := a.Default()
	require.True(t, ok)
	assert.Equal(t, "x", def)
	assert.Equal(t, stmt.AddedByDeviation, a.Find("default").CopyHistory().Last())

	b, ok := testutil.AssertNode(t, result, "/base:c/b").(*effective.Leaf)
	require.True(t, ok)
	assert.Equal(t, "uint32", b.Type().Builtin())
	assert.Empty(t, b.Units())
}

// Test for: invalid deviations are reported against the deviate statement
func TestDeviations_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		body    string
		kind    yangerr.Kind
		message string
	}{
		{
			name: "add existing single value",
			body: `
  deviation "/base:c/base:b" {
    deviate "add" {
      units = "minutes"
    }
  }
`,
			kind:    yangerr.InvalidSubstatement,
			message: "already has a units statement",
		},
		{
			name: "replace missing value",
			body: `
  deviation "/base:c/base:a" {
    deviate "replace" {
      units = "minutes"
    }
  }
`,
			kind:    yangerr.Inference,
			message: "no units statement to replace",
		},
		{
			name: "delete value that differs",
			body: `
  deviation "/base:c/base:b" {
    deviate "delete" {
      units = "hours"
    }
  }
`,
			kind:    yangerr.Inference,
			message: `no units "hours" to delete`,
		},
		{
			name: "missing target",
			body: `
  deviation "/base:c/base:nothing" {
    deviate "not-supported" {}
  }
`,
			kind:    yangerr.Inference,
			message: "not found",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := testutil.RunIntegrationTest(t, deviating(tc.body))

			errs := testutil.AssertErrorKind(t, result, tc.kind)
			assert.Contains(t, errs[0].Message, tc.message)
		})
	}
}
