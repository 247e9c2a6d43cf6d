package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/yangreactor/internal/stmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ignoreSource = cmpopts.IgnoreFields(stmt.Node{}, "Source")

func exampleTree() []*stmt.Node {
	return []*stmt.Node{
		stmt.New("module", "example",
			stmt.New("namespace", "urn:example"),
			stmt.New("prefix", "ex"),
			stmt.New("container", "top",
				stmt.New("leaf", "count",
					stmt.New("type", "uint8"),
					stmt.New("default", "3"),
					stmt.New("mandatory", "false"),
				),
			),
			stmt.New("rpc", "reset", stmt.Bare("input")),
		),
	}
}

const exampleYAML = `module: example
substatements:
  - namespace: urn:example
  - prefix: ex
  - container: top
    substatements:
      - leaf: count
        substatements:
          - type: uint8
          - default: 3
          - mandatory: false
  - rpc: reset
    substatements:
      - input:
`

const exampleJSON = `{
  "module": "example",
  "substatements": [
    {"namespace": "urn:example"},
    {"prefix": "ex"},
    {"container": "top", "substatements": [
      {"leaf": "count", "substatements": [
        {"type": "uint8"},
        {"default": 3},
        {"mandatory": false}
      ]}
    ]},
    {"substatements": [{"input": null}], "rpc": "reset"}
  ]
}`

func TestYAML_Parse(t *testing.T) {
	got, diags := YAML{}.Parse(context.Background(), "example.yaml", []byte(exampleYAML))
	require.False(t, diags.HasErrors(), diags.Error())

	if diff := cmp.Diff(exampleTree(), got, ignoreSource, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}

	leaf := got[0].Find("container").Find("leaf")
	assert.Equal(t, "example.yaml", leaf.Source.Filename)
	assert.Equal(t, 7, leaf.Source.Start.Line)
	assert.Equal(t, 9, leaf.Source.Start.Column)
	assert.Equal(t, "leaf", string(leaf.Source.SliceBytes([]byte(exampleYAML))))
}

func TestYAML_MultipleDocuments(t *testing.T) {
	src := "module: a\n---\nsubmodule: b\nsubstatements:\n  - belongs-to: a\n"
	got, diags := YAML{}.Parse(context.Background(), "two.yaml", []byte(src))
	require.False(t, diags.HasErrors(), diags.Error())
	require.Len(t, got, 2)
	assert.Equal(t, "module", got[0].Keyword)
	assert.Equal(t, "submodule", got[1].Keyword)
	assert.Equal(t, 3, got[1].Source.Start.Line)
}

func TestJSON_Parse(t *testing.T) {
	got, diags := JSON{}.Parse(context.Background(), "example.json", []byte(exampleJSON))
	require.False(t, diags.HasErrors(), diags.Error())

	if diff := cmp.Diff(exampleTree(), got, ignoreSource, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "example.json", got[0].Source.Filename)
}

func TestParseErrors(t *testing.T) {
	testCases := []struct {
		name    string
		parser  Parser
		src     string
		summary string
	}{
		{"yaml two keywords", YAML{}, "module: a\nprefix: b\n", "Multiple keywords"},
		{"yaml no keyword", YAML{}, "substatements: []\n", "Missing keyword"},
		{"yaml mapping argument", YAML{}, "module:\n  x: y\n", "Invalid statement argument"},
		{"yaml substatements not a list", YAML{}, "module: a\nsubstatements: b\n", "Invalid substatements"},
		{"yaml scalar document", YAML{}, "just text\n", "Invalid statement"},
		{"yaml syntax", YAML{}, "module: [a\n", "Invalid YAML"},
		{"json two keywords", JSON{}, `{"module": "a", "prefix": "b"}`, "Invalid JSON source"},
		{"json object argument", JSON{}, `{"module": {"x": 1}}`, "Invalid JSON source"},
		{"json trailing data", JSON{}, `{"module": "a"} {"module": "b"}`, "Invalid JSON source"},
		{"json scalar document", JSON{}, `"module"`, "Invalid JSON source"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, diags := tc.parser.Parse(context.Background(), "bad", []byte(tc.src))
			require.True(t, diags.HasErrors(), "expected diagnostics")
			assert.Equal(t, tc.summary, diags[0].Summary)
		})
	}
}

func TestLoader_Load(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0600))
		return path
	}
	write("a.hcl", `module "a" { prefix = "a" }`)
	write("b.yaml", "module: b\n")
	write("c.json", `{"module": "c"}`)
	write("notes.txt", "ignored")

	l := NewLoader()
	assert.Equal(t, []string{".hcl", ".json", ".yaml", ".yml"}, l.Extensions())

	got, err := l.Load(context.Background(), dir)
	require.NoError(t, err)
	var names []string
	for _, n := range got {
		names = append(names, n.Argument)
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)
	assert.Len(t, l.Files(), 3)

	t.Run("explicit file with unknown extension", func(t *testing.T) {
		_, err := NewLoader().Load(context.Background(), filepath.Join(dir, "notes.txt"))
		var diags hcl.Diagnostics
		require.True(t, errors.As(err, &diags))
		assert.Equal(t, "Unsupported source file", diags[0].Summary)
	})

	t.Run("nothing to load", func(t *testing.T) {
		_, err := NewLoader().Load(context.Background(), filepath.Join(dir, "missing"))
		require.Error(t, err)
	})

	t.Run("errors from every file", func(t *testing.T) {
		bad := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(bad, "x.yaml"), []byte("module: a\nprefix: b\n"), 0600))
		require.NoError(t, os.WriteFile(filepath.Join(bad, "y.json"), []byte(`{"module": ["a"]}`), 0600))
		_, err := NewLoader().Load(context.Background(), bad)
		var diags hcl.Diagnostics
		require.True(t, errors.As(err, &diags))
		assert.Len(t, diags, 2)
	})
}
