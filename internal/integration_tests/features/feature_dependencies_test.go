package integration_tests

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/yangreactor/internal/effective"
	"github.com/specialistvlad/yangreactor/internal/testutil"
	"github.com/specialistvlad/yangreactor/internal/yangerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const featureModule = `
module "f" {
  namespace = "urn:f"
  prefix    = "f"

  feature "base" {}

  feature "advanced" {
    if-feature = "base"
  }

  container "settings" {
    leaf "simple" {
      type = "string"
    }
    leaf "tuned" {
      if-feature = "advanced"
      type       = "string"
    }
    leaf "either" {
      if-feature = "base or advanced"
      type       = "string"
    }
  }
}
`

func featureStates(t *testing.T, sc *effective.SchemaContext) map[string]bool {
	t.Helper()
	mod, ok := sc.FindModuleByName("f", "")
	require.True(t, ok)
	states := make(map[string]bool)
	for _, f := range mod.Features() {
		states[f.QName().Local] = f.Supported()
	}
	return states
}

// Test for: a feature is supported only when the features it depends on are
func TestFeatures_Dependencies(t *testing.T) {
	testCases := []struct {
		name     string
		features []string
		want     map[string]bool
		present  []string
		absent   []string
	}{
		{
			name:    "all supported by default",
			want:    map[string]bool{"base": true, "advanced": true},
			present: []string{"/f:settings/simple", "/f:settings/tuned", "/f:settings/either"},
		},
		{
			name:     "dependency disabled",
			features: []string{"f:advanced"},
			want:     map[string]bool{"base": false, "advanced": false},
			present:  []string{"/f:settings/simple"},
			absent:   []string{"/f:settings/tuned", "/f:settings/either"},
		},
		{
			name:     "only the dependency",
			features: []string{"f:base"},
			want:     map[string]bool{"base": true, "advanced": false},
			present:  []string{"/f:settings/either"},
			absent:   []string{"/f:settings/tuned"},
		},
		{
			name:     "none",
			features: []string{"f:"},
			want:     map[string]bool{"base": false, "advanced": false},
			absent:   []string{"/f:settings/tuned", "/f:settings/either"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := testutil.RunIntegrationTestWithContext(context.Background(), t,
				map[string]string{"f.hcl": featureModule},
				testutil.Options{Features: tc.features})

			sc := testutil.AssertResolved(t, result)
			assert.Equal(t, tc.want, featureStates(t, sc))
			for _, p := range tc.present {
				testutil.AssertNode(t, result, p)
			}
			for _, p := range tc.absent {
				testutil.AssertNoNode(t, result, p)
			}
		})
	}
}

// Test for: unsupported features fail the run when configured to
func TestFeatures_ErrorOnUnsupported(t *testing.T) {
	result := testutil.RunIntegrationTestWithContext(context.Background(), t,
		map[string]string{"f.hcl": featureModule},
		testutil.Options{Features: []string{"f:base"}, ErrorOnUnsupportedFeature: true})

	errs := testutil.AssertErrorKind(t, result, yangerr.UnsupportedStatement)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "advanced")
	assert.Equal(t, "f.hcl", filepath.Base(errs[0].Source.Filename))
}
