package hcl_adapter

import (
	"sort"

	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/yangreactor/internal/stmt"
)

// item is a translated statement with the byte offset it started at.
type item struct {
	offset int
	node   *stmt.Node
}

// sortedAttributes returns body's attributes in source order. hclsyntax
// keeps them in a map.
func sortedAttributes(body *hclsyntax.Body) []*hclsyntax.Attribute {
	attrs := make([]*hclsyntax.Attribute, 0, len(body.Attributes))
	for _, a := range body.Attributes {
		attrs = append(attrs, a)
	}
	sort.Slice(attrs, func(i, j int) bool {
		return attrs[i].SrcRange.Start.Byte < attrs[j].SrcRange.Start.Byte
	})
	return attrs
}

// inSourceOrder interleaves attributes and blocks back into the order they
// were written. Elements of one list attribute share an offset and keep
// their relative order.
func inSourceOrder(items []item) []*stmt.Node {
	sort.SliceStable(items, func(i, j int) bool { return items[i].offset < items[j].offset })
	out := make([]*stmt.Node, len(items))
	for i, it := range items {
		out[i] = it.node
	}
	return out
}
