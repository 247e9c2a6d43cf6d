package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/yangreactor/internal/ctxlog"
	"github.com/specialistvlad/yangreactor/internal/stmt"
	"gopkg.in/yaml.v3"
)

// substatementsKey holds the nested statements of a YAML or JSON statement.
const substatementsKey = "substatements"

// YAML parses statement trees from YAML documents. Source ranges point at
// the keyword of each statement.
type YAML struct{}

// Parse implements Parser.
func (YAML) Parse(ctx context.Context, filename string, src []byte) ([]*stmt.Node, hcl.Diagnostics) {
	lines := newLineIndex(filename, src)
	dec := yaml.NewDecoder(bytes.NewReader(src))

	var out []*stmt.Node
	var diags hcl.Diagnostics
	for {
		var doc yaml.Node
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid YAML",
				Detail:   err.Error(),
				Subject:  lines.whole().Ptr(),
			})
		}
		if len(doc.Content) == 0 {
			continue
		}
		y := yamlReader{lines: lines}
		out = append(out, y.statements(doc.Content[0])...)
		diags = append(diags, y.diags...)
	}
	if diags.HasErrors() {
		return nil, diags
	}
	ctxlog.FromContext(ctx).Debug("YAML file translated.", "file", filename, "sources", len(out))
	return out, diags
}

type yamlReader struct {
	lines *lineIndex
	diags hcl.Diagnostics
}

func (y *yamlReader) rangeOf(n *yaml.Node) hcl.Range {
	width := len(n.Value)
	if n.Kind != yaml.ScalarNode || width == 0 {
		width = 1
	}
	return y.lines.span(n.Line, n.Column, width)
}

func (y *yamlReader) errorf(n *yaml.Node, summary, format string, args ...any) {
	y.diags = append(y.diags, &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  summary,
		Detail:   fmt.Sprintf(format, args...),
		Subject:  y.rangeOf(n).Ptr(),
	})
}

// statements accepts one statement mapping or a sequence of them.
func (y *yamlReader) statements(n *yaml.Node) []*stmt.Node {
	n = resolveAlias(n)
	switch n.Kind {
	case yaml.MappingNode:
		if s := y.statement(n); s != nil {
			return []*stmt.Node{s}
		}
		return nil
	case yaml.SequenceNode:
		var out []*stmt.Node
		for _, item := range n.Content {
			item = resolveAlias(item)
			if item.Kind != yaml.MappingNode {
				y.errorf(item, "Invalid statement", "Expected a statement mapping, found %s.", kindName(item))
				continue
			}
			if s := y.statement(item); s != nil {
				out = append(out, s)
			}
		}
		return out
	default:
		y.errorf(n, "Invalid statement", "Expected a statement mapping or a list of them, found %s.", kindName(n))
		return nil
	}
}

func (y *yamlReader) statement(m *yaml.Node) *stmt.Node {
	var s *stmt.Node
	var subs *yaml.Node
	for i := 0; i+1 < len(m.Content); i += 2 {
		key, val := m.Content[i], resolveAlias(m.Content[i+1])
		if key.Value == substatementsKey {
			if subs != nil {
				y.errorf(key, "Duplicate substatements", "A statement has at most one %q list.", substatementsKey)
				return nil
			}
			subs = val
			continue
		}
		if s != nil {
			y.errorf(key, "Multiple keywords", "Statement %q also names keyword %q; each mapping holds one statement.", s.Keyword, key.Value)
			return nil
		}
		s = &stmt.Node{Keyword: key.Value, Source: y.rangeOf(key)}
		switch {
		case val.Kind != yaml.ScalarNode:
			y.errorf(val, "Invalid statement argument", "The argument of %q must be a scalar, found %s.", key.Value, kindName(val))
			return nil
		case val.Tag == "!!null":
		default:
			s.Argument, s.HasArgument = val.Value, true
		}
	}
	if s == nil {
		y.errorf(m, "Missing keyword", "A statement mapping needs one keyword key besides %q.", substatementsKey)
		return nil
	}
	if subs == nil || subs.Tag == "!!null" {
		return s
	}
	if subs.Kind != yaml.SequenceNode {
		y.errorf(subs, "Invalid substatements", "%q must be a list, found %s.", substatementsKey, kindName(subs))
		return nil
	}
	s.Substatements = y.statements(subs)
	return s
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func kindName(n *yaml.Node) string {
	switch n.Kind {
	case yaml.MappingNode:
		return "a mapping"
	case yaml.SequenceNode:
		return "a list"
	case yaml.ScalarNode:
		return "a scalar"
	default:
		return "an unsupported node"
	}
}
