package yangpath

import (
	"testing"

	"github.com/specialistvlad/yangreactor/internal/qname"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNodeID(t *testing.T) {
	id, err := ParseAbsoluteNodeID("/a:top/a:inner")
	require.NoError(t, err)
	assert.True(t, id.Absolute)
	assert.Equal(t, []qname.Ref{{Prefix: "a", Local: "top"}, {Prefix: "a", Local: "inner"}}, id.Steps)
	assert.Equal(t, "/a:top/a:inner", id.String())

	id, err = ParseDescendantNodeID("x/y")
	require.NoError(t, err)
	assert.False(t, id.Absolute)
	assert.Len(t, id.Steps, 2)

	_, err = ParseAbsoluteNodeID("x")
	require.Error(t, err)
	_, err = ParseDescendantNodeID("/x")
	require.Error(t, err)
	_, err = ParseNodeID("/a//b")
	require.Error(t, err)
	_, err = ParseNodeID("  ")
	require.Error(t, err)
}

func TestParseLeafrefPath(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		absolute bool
		up       int
		steps    []string
		wantErr  bool
	}{
		{name: "sibling", input: "../other", up: 1, steps: []string{"other"}},
		{name: "two levels up", input: "../../a:x/a:y", up: 2, steps: []string{"a:x", "a:y"}},
		{name: "absolute", input: "/a:top/a:leaf", absolute: true, steps: []string{"a:top", "a:leaf"}},
		{name: "with predicate", input: "/a:list[a:k = current()/../k]/a:v", absolute: true, steps: []string{"a:list", "a:v"}},
		{name: "no up steps", input: "other", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "dangling slash", input: "/a:x/", wantErr: true},
		{name: "bad predicate", input: "/a:l[k = 1]/a:v", wantErr: true},
		{name: "deref", input: "deref(../x)/../y", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := ParseLeafrefPath(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.absolute, p.Absolute)
			assert.Equal(t, tc.up, p.Up)
			var steps []string
			for _, s := range p.Steps {
				steps = append(steps, s.Name.String())
			}
			assert.Equal(t, tc.steps, steps)
		})
	}

	t.Run("predicate detail", func(t *testing.T) {
		p, err := ParseLeafrefPath("/a:list[a:k = current()/../../a:key]/a:v")
		require.NoError(t, err)
		require.Len(t, p.Steps[0].Predicates, 1)
		pred := p.Steps[0].Predicates[0]
		assert.Equal(t, "a:k", pred.Key.String())
		assert.Equal(t, 2, pred.Up)
		assert.Equal(t, []qname.Ref{{Prefix: "a", Local: "key"}}, pred.Steps)
	})
}

func TestParseFeatureExpr(t *testing.T) {
	on := map[string]bool{"a": true, "b": false, "x:c": true}
	supported := func(r qname.Ref) bool { return on[r.String()] }

	testCases := []struct {
		input string
		want  bool
	}{
		{"a", true},
		{"b", false},
		{"not b", true},
		{"a and b", false},
		{"a or b", true},
		{"a and (b or x:c)", true},
		{"not (a and x:c)", false},
		{"b or a and x:c", true},
	}
	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			expr, err := ParseFeatureExpr(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, expr.Eval(supported))
		})
	}

	expr, err := ParseFeatureExpr("a and (b or x:c)")
	require.NoError(t, err)
	assert.Equal(t, []qname.Ref{{Local: "a"}, {Local: "b"}, {Prefix: "x", Local: "c"}}, expr.Refs())

	for _, bad := range []string{"", "a and", "(a", "a b", "and a", "a:"} {
		_, err := ParseFeatureExpr(bad)
		assert.Error(t, err, bad)
	}
}
