package testutil

import (
	"testing"

	"github.com/specialistvlad/yangreactor/internal/effective"
	"github.com/specialistvlad/yangreactor/internal/yangerr"
	"github.com/stretchr/testify/require"
)

// AssertResolved checks that the run succeeded and returns its model.
func AssertResolved(t *testing.T, result *HarnessResult) *effective.SchemaContext {
	t.Helper()
	require.NoError(t, result.Err, "expected the sources to resolve")
	require.NotNil(t, result.Model)
	return result.Model
}

// AssertNode checks that the model has a node at path, written as
// "/module:top/child", and returns it.
func AssertNode(t *testing.T, result *HarnessResult, path string) effective.SchemaNode {
	t.Helper()
	sc := AssertResolved(t, result)
	n, err := sc.FindNodeByString(path)
	require.NoError(t, err)
	return n
}

// AssertNoNode checks that the model has no node at path.
func AssertNoNode(t *testing.T, result *HarnessResult, path string) {
	t.Helper()
	sc := AssertResolved(t, result)
	_, err := sc.FindNodeByString(path)
	require.Error(t, err, "expected no node at %s", path)
}

// AssertErrorKind checks that the run failed without a model and reported at
// least one error of kind, and returns the errors of that kind.
func AssertErrorKind(t *testing.T, result *HarnessResult, kind yangerr.Kind) []*yangerr.Error {
	t.Helper()
	require.Error(t, result.Err)
	require.Nil(t, result.Model, "a failed run must not produce a model")
	errs := yangerr.OfKind(result.Err, kind)
	require.NotEmpty(t, errs, "expected a %s error, got: %v", kind, result.Err)
	return errs
}
