package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/yangreactor/internal/ctxlog"
	"github.com/specialistvlad/yangreactor/internal/stmt"
)

// Top-level blocks that start a source.
const (
	moduleBlock    = "module"
	submoduleBlock = "submodule"
	// extensionBlock introduces a prefixed keyword, whose colon HCL
	// identifiers cannot carry: ext "prefix:keyword" "argument" { ... }
	extensionBlock = "ext"
)

// Loader reads YANG statement trees written in HCL syntax. Every block and
// attribute becomes one statement: the block type or attribute name is the
// keyword, the single block label or the attribute value is the argument.
//
//	module "example" {
//	  namespace = "urn:example"
//	  prefix    = "ex"
//	  container "top" {
//	    leaf "name" { type = "string" }
//	  }
//	}
//
// Parsed files are kept so diagnostics can be rendered with source snippets.
type Loader struct {
	parser *hclparse.Parser
}

// NewLoader creates a new HCL statement loader.
func NewLoader() *Loader {
	return &Loader{parser: hclparse.NewParser()}
}

// Files returns every file parsed so far, keyed by filename.
func (l *Loader) Files() map[string]*hcl.File {
	return l.parser.Files()
}

// LoadFile parses one file from disk.
func (l *Loader) LoadFile(ctx context.Context, filename string) ([]*stmt.Node, hcl.Diagnostics) {
	file, diags := l.parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, diags
	}
	return l.translateFile(ctx, filename, file)
}

// Parse parses src as if read from filename.
func (l *Loader) Parse(ctx context.Context, filename string, src []byte) ([]*stmt.Node, hcl.Diagnostics) {
	file, diags := l.parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, diags
	}
	return l.translateFile(ctx, filename, file)
}

func (l *Loader) translateFile(ctx context.Context, filename string, file *hcl.File) ([]*stmt.Node, hcl.Diagnostics) {
	logger := ctxlog.FromContext(ctx).With("file", filename)
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		panic(fmt.Sprintf("hcl file %s has body of type %T", filename, file.Body))
	}

	var diags hcl.Diagnostics
	for _, attr := range sortedAttributes(body) {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Unexpected top-level attribute",
			Detail:   fmt.Sprintf("Only %q and %q blocks may appear at the top level of a file.", moduleBlock, submoduleBlock),
			Subject:  attr.SrcRange.Ptr(),
		})
	}

	var sources []*stmt.Node
	for _, block := range body.Blocks {
		if block.Type != moduleBlock && block.Type != submoduleBlock {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Unexpected top-level block",
				Detail:   fmt.Sprintf("Only %q and %q blocks may appear at the top level of a file, found %q.", moduleBlock, submoduleBlock, block.Type),
				Subject:  block.TypeRange.Ptr(),
			})
			continue
		}
		n, blockDiags := translateBlock(block)
		diags = append(diags, blockDiags...)
		if n != nil {
			sources = append(sources, n)
		}
	}
	if diags.HasErrors() {
		return nil, diags
	}
	logger.Debug("HCL file translated.", "sources", len(sources))
	return sources, diags
}

// translateBlock converts one block and everything under it.
func translateBlock(block *hclsyntax.Block) (*stmt.Node, hcl.Diagnostics) {
	n := &stmt.Node{Keyword: block.Type, Source: block.DefRange()}
	labels := block.Labels
	if block.Type == extensionBlock {
		if len(labels) == 0 {
			return nil, hcl.Diagnostics{{
				Severity: hcl.DiagError,
				Summary:  "Missing extension keyword",
				Detail:   `An "ext" block needs the prefixed keyword as its first label, as in ext "prefix:keyword" "argument" {}.`,
				Subject:  block.TypeRange.Ptr(),
			}}
		}
		n.Keyword, labels = labels[0], labels[1:]
	}
	switch len(labels) {
	case 0:
	case 1:
		n.Argument, n.HasArgument = labels[0], true
	default:
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Too many labels",
			Detail:   fmt.Sprintf("A %q statement takes at most one argument, got %d labels.", n.Keyword, len(labels)),
			Subject:  hcl.RangeOver(block.LabelRanges[0], block.LabelRanges[len(block.LabelRanges)-1]).Ptr(),
		}}
	}

	subs, diags := translateBody(block.Body)
	n.Substatements = subs
	return n, diags
}

// translateBody converts the attributes and nested blocks of body into
// substatements, in the order they were written.
func translateBody(body *hclsyntax.Body) ([]*stmt.Node, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	var out []item
	for _, attr := range sortedAttributes(body) {
		values, attrDiags := argumentValues(attr.Expr)
		diags = append(diags, attrDiags...)
		for _, v := range values {
			out = append(out, item{
				offset: attr.SrcRange.Start.Byte,
				node:   &stmt.Node{Keyword: attr.Name, Argument: v, HasArgument: true, Source: attr.SrcRange},
			})
		}
	}
	for _, block := range body.Blocks {
		n, blockDiags := translateBlock(block)
		diags = append(diags, blockDiags...)
		if n != nil {
			out = append(out, item{offset: block.TypeRange.Start.Byte, node: n})
		}
	}
	return inSourceOrder(out), diags
}
