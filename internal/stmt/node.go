package stmt

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
)

// Node is one raw statement as produced by a source adapter.
type Node struct {
	// Keyword as written, "prefix:name" for extension statements.
	Keyword string
	// Argument is the unparsed argument. HasArgument distinguishes an empty
	// argument from none at all.
	Argument    string
	HasArgument bool
	// Substatements in source order.
	Substatements []*Node
	// Source is where the statement was declared.
	Source hcl.Range
}

// New creates a node with an argument.
func New(keyword, argument string, subs ...*Node) *Node {
	return &Node{Keyword: keyword, Argument: argument, HasArgument: true, Substatements: subs}
}

// Bare creates a node without an argument.
func Bare(keyword string, subs ...*Node) *Node {
	return &Node{Keyword: keyword, Substatements: subs}
}

// At sets the source range and returns the node, for fluent construction.
func (n *Node) At(r hcl.Range) *Node {
	n.Source = r
	return n
}

// Prefix splits the keyword into its prefix and local part. The prefix is
// empty for base statements.
func (n *Node) Prefix() (prefix, local string) {
	p, l, found := strings.Cut(n.Keyword, ":")
	if !found {
		return "", n.Keyword
	}
	return p, l
}

// Find returns the first substatement with the keyword.
func (n *Node) Find(keyword string) *Node {
	for _, s := range n.Substatements {
		if s.Keyword == keyword {
			return s
		}
	}
	return nil
}

// FindAll returns every substatement with the keyword, in order.
func (n *Node) FindAll(keyword string) []*Node {
	var out []*Node
	for _, s := range n.Substatements {
		if s.Keyword == keyword {
			out = append(out, s)
		}
	}
	return out
}

// Walk visits n and its descendants depth-first in statement order. Returning
// false from fn skips the node's substatements.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, s := range n.Substatements {
		s.Walk(fn)
	}
}

// Validate checks the shape every adapter must produce: non-empty keywords
// and no nil substatements.
func (n *Node) Validate() error {
	var err error
	n.Walk(func(c *Node) bool {
		if err != nil {
			return false
		}
		if c.Keyword == "" {
			err = fmt.Errorf("%s: statement without keyword", c.Source)
			return false
		}
		for _, s := range c.Substatements {
			if s == nil {
				err = fmt.Errorf("%s: nil substatement of %q", c.Source, c.Keyword)
				return false
			}
		}
		return true
	})
	return err
}

// String renders "keyword argument" for diagnostics.
func (n *Node) String() string {
	if !n.HasArgument {
		return n.Keyword
	}
	return fmt.Sprintf("%s %q", n.Keyword, n.Argument)
}
