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

// Test for: an augment inside uses extends only the nodes that uses added
func TestReuse_AugmentInsideUses(t *testing.T) {
	result := testutil.RunHCLModuleTest(t, "r", `
		grouping "endpoint" {
		  container "address" {
		    leaf "host" {
		      type = "string"
		    }
		  }
		}

		container "primary" {
		  uses "endpoint" {
		    augment "address" {
		      leaf "port" {
		        type = "uint16"
		      }
		    }
		  }
		}

		container "backup" {
		  uses "endpoint" {}
		}
	`)

	port := testutil.AssertNode(t, result, "/r:primary/address/port")
	assert.Equal(t, []stmt.CopyType{stmt.AddedByUsesAugmentation}, port.CopyHistory().Ops())

	host := testutil.AssertNode(t, result, "/r:primary/address/host")
	assert.Equal(t, stmt.AddedByUses, host.CopyHistory().Last())

	testutil.AssertNode(t, result, "/r:backup/address/host")
	testutil.AssertNoNode(t, result, "/r:backup/address/port")
}

// Test for: nested groupings expand through every level of uses
func TestReuse_NestedGroupings(t *testing.T) {
	result := testutil.RunHCLModuleTest(t, "n", `
		grouping "inner" {
		  leaf "depth" {
		    type = "uint8"
		  }
		}

		grouping "outer" {
		  container "wrap" {
		    uses "inner" {}
		  }
		}

		container "top" {
		  uses "outer" {
		    refine "wrap/depth" {
		      default = "3"
		    }
		  }
		}
	`)

	depth, ok := testutil.AssertNode(t, result, "/n:top/wrap/depth").(*effective.Leaf)
	require.True(t, ok)
	def, ok := depth.Default()
	require.True(t, ok)
	assert.Equal(t, "3", def)
	assert.Equal(t, "/top/wrap/depth", depth.Path().LocalString())
}

// Test for: a grouping that uses itself through another grouping is a cycle
func TestReuse_GroupingCycle(t *testing.T) {
	result := testutil.RunHCLModuleTest(t, "c", `
		grouping "ping" {
		  container "p" {
		    uses "pong" {}
		  }
		}

		grouping "pong" {
		  container "q" {
		    uses "ping" {}
		  }
		}

		container "top" {
		  uses "ping" {}
		}
	`)

	require.Error(t, result.Err)
	assert.Nil(t, result.Model)
	assert.NotEmpty(t, yangerr.OfKind(result.Err, yangerr.Cycle), "got: %v", result.Err)
}
