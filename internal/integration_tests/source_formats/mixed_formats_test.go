package integration_tests

import (
	"testing"

	"github.com/specialistvlad/yangreactor/internal/effective"
	"github.com/specialistvlad/yangreactor/internal/stmt"
	"github.com/specialistvlad/yangreactor/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test for: modules written in different source formats link into one model
func TestSourceFormats_MixedFormatsResolveTogether(t *testing.T) {
	// --- Arrange ---
	files := map[string]string{
		"lib.yaml": `module: lib
substatements:
  - namespace: urn:lib
  - prefix: lib
  - grouping: endpoint
    substatements:
      - leaf: port
        substatements:
          - type: uint16
          - default: 830
`,
		"app.json": `{
  "module": "app",
  "substatements": [
    {"namespace": "urn:app"},
    {"prefix": "app"},
    {"import": "lib", "substatements": [{"prefix": "l"}]},
    {"container": "server", "substatements": [{"uses": "l:endpoint"}]}
  ]
}`,
		"models/ops.hcl": `
module "ops" {
  namespace = "urn:ops"
  prefix    = "ops"

  import "app" {
    prefix = "app"
  }

  augment "/app:server" {
    leaf "enabled" {
      type = "boolean"
    }
  }
}
`,
		"README.txt": "not a source",
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files)

	// --- Assert ---
	sc := testutil.AssertResolved(t, result)
	require.Len(t, sc.Modules(), 3)

	port, ok := testutil.AssertNode(t, result, "/app:server/port").(*effective.Leaf)
	require.True(t, ok)
	assert.Equal(t, "uint16", port.Type().Builtin())
	assert.Equal(t, "urn:app", port.QName().Module.Namespace)
	assert.Equal(t, []stmt.CopyType{stmt.AddedByUses}, port.CopyHistory().Ops())
	def, ok := port.Default()
	require.True(t, ok)
	assert.Equal(t, "830", def)

	enabled := testutil.AssertNode(t, result, "/app:server/ops:enabled")
	assert.Equal(t, stmt.AddedByAugmentation, enabled.CopyHistory().Last())

	assert.Contains(t, result.LogOutput, "Sources loaded.")
	assert.Len(t, result.App.Files(), 3)
}
