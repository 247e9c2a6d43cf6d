// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package effective

import (
	"slices"

	"github.com/specialistvlad/yangreactor/internal/qname"
	"github.com/zclconf/go-cty/cty"
)

// SchemaNode is a statement that occupies a position in the schema tree.
type SchemaNode interface {
	Statement
	QName() qname.QName
	Path() SchemaPath
	Config() bool
	Description() string
	Status() string
}

// DataNodeContainer is a schema node with schema node children.
type DataNodeContainer interface {
	SchemaNode
	Children() []SchemaNode
	Child(q qname.QName) (SchemaNode, bool)
}

// NodeInfo carries what the builder computes about a schema node from its
// position: its name, its path and its inherited config flag.
type NodeInfo struct {
	QName  qname.QName
	Path   SchemaPath
	Config bool
}

type schemaNode struct {
	Base
	info NodeInfo
}

func newSchemaNode(m Meta, info NodeInfo) schemaNode {
	info.Path = slices.Clone(info.Path)
	return schemaNode{Base: newBase(m), info: info}
}

func (n *schemaNode) QName() qname.QName { return n.info.QName }
func (n *schemaNode) Path() SchemaPath   { return slices.Clone(n.info.Path) }
func (n *schemaNode) Config() bool       { return n.info.Config }

// When returns the when condition, if any.
func (n *schemaNode) When() string { return n.stringArg("when") }

// Musts returns the must expressions in declaration order.
func (n *schemaNode) Musts() []string {
	var out []string
	for _, s := range n.FindAll("must") {
		out = append(out, s.RawArgument())
	}
	return out
}

// nodeChildren indexes schema node substatements.
type nodeChildren struct {
	children []SchemaNode
	byName   map[qname.QName]SchemaNode
}

func collectChildren(subs ...[]Statement) nodeChildren {
	nc := nodeChildren{byName: make(map[qname.QName]SchemaNode)}
	for _, list := range subs {
		for _, s := range list {
			if sn, ok := s.(SchemaNode); ok {
				nc.children = append(nc.children, sn)
				nc.byName[sn.QName()] = sn
			}
		}
	}
	return nc
}

// Children returns the schema node children in order.
func (c *nodeChildren) Children() []SchemaNode { return slices.Clone(c.children) }

// Child looks a child up by name.
func (c *nodeChildren) Child(q qname.QName) (SchemaNode, bool) {
	n, ok := c.byName[q]
	return n, ok
}

type containerNode struct {
	schemaNode
	nodeChildren
}

func newContainerNode(m Meta, info NodeInfo) containerNode {
	return containerNode{
		schemaNode:   newSchemaNode(m, info),
		nodeChildren: collectChildren(m.Substatements),
	}
}

// Container is an effective container statement.
type Container struct{ containerNode }

// NewContainer creates a container.
func NewContainer(m Meta, info NodeInfo) *Container {
	return &Container{containerNode: newContainerNode(m, info)}
}

// Presence returns the presence meaning, empty for non-presence containers.
func (c *Container) Presence() string { return c.stringArg("presence") }

// Case is a case of a choice. Shorthand cases are not materialised.
type Case struct{ containerNode }

// NewCase creates a case.
func NewCase(m Meta, info NodeInfo) *Case {
	return &Case{containerNode: newContainerNode(m, info)}
}

// InOut is the input or output of an operation.
type InOut struct{ containerNode }

// NewInOut creates an input or output node.
func NewInOut(m Meta, info NodeInfo) *InOut {
	return &InOut{containerNode: newContainerNode(m, info)}
}

// Notification is a notification statement.
type Notification struct{ containerNode }

// NewNotification creates a notification.
func NewNotification(m Meta, info NodeInfo) *Notification {
	return &Notification{containerNode: newContainerNode(m, info)}
}

// Choice is a choice statement. Its children are cases and shorthand nodes.
type Choice struct{ containerNode }

// NewChoice creates a choice.
func NewChoice(m Meta, info NodeInfo) *Choice {
	return &Choice{containerNode: newContainerNode(m, info)}
}

// Cases returns the explicit case children.
func (c *Choice) Cases() []*Case {
	var out []*Case
	for _, ch := range c.children {
		if cs, ok := ch.(*Case); ok {
			out = append(out, cs)
		}
	}
	return out
}

// DefaultCase returns the name of the default case, if declared.
func (c *Choice) DefaultCase() string { return c.stringArg("default") }

// Mandatory reports whether a case must exist.
func (c *Choice) Mandatory() bool {
	v, _ := c.boolArg("mandatory")
	return v
}

// Operation is an rpc or an action.
type Operation struct {
	containerNode
	input, output *InOut
}

// NewOperation creates an rpc or action.
func NewOperation(m Meta, info NodeInfo) *Operation {
	op := &Operation{containerNode: newContainerNode(m, info)}
	for _, ch := range op.children {
		io, ok := ch.(*InOut)
		if !ok {
			continue
		}
		if io.Keyword().Local == "input" {
			op.input = io
		} else {
			op.output = io
		}
	}
	return op
}

func (o *Operation) Input() *InOut  { return o.input }
func (o *Operation) Output() *InOut { return o.output }

func findType(subs []Statement) *Type {
	for _, s := range subs {
		if t, ok := s.(*Type); ok {
			return t
		}
	}
	return nil
}

// Leaf is an effective leaf statement.
type Leaf struct {
	schemaNode
	typ *Type
}

// NewLeaf creates a leaf. Its type is taken from its substatements.
func NewLeaf(m Meta, info NodeInfo) *Leaf {
	return &Leaf{schemaNode: newSchemaNode(m, info), typ: findType(m.Substatements)}
}

// Type returns the leaf's resolved type.
func (l *Leaf) Type() *Type { return l.typ }

// Units returns the leaf's units, falling back to the typedef chain.
func (l *Leaf) Units() string {
	if u := l.stringArg("units"); u != "" {
		return u
	}
	if l.typ != nil {
		return l.typ.Units()
	}
	return ""
}

// Default returns the leaf's default, falling back to the typedef chain.
func (l *Leaf) Default() (string, bool) {
	if d := l.Find("default"); d != nil {
		return d.RawArgument(), true
	}
	if l.typ != nil {
		return l.typ.Default()
	}
	return "", false
}

// DefaultValue converts the default into a typed value.
func (l *Leaf) DefaultValue() (cty.Value, error) {
	raw, ok := l.Default()
	if !ok || l.typ == nil {
		return cty.NullVal(cty.DynamicPseudoType), nil
	}
	return l.typ.Value(raw)
}

// Mandatory reports whether the leaf is mandatory.
func (l *Leaf) Mandatory() bool {
	v, _ := l.boolArg("mandatory")
	return v
}

// LeafList is an effective leaf-list statement.
type LeafList struct {
	schemaNode
	typ *Type
}

// NewLeafList creates a leaf-list.
func NewLeafList(m Meta, info NodeInfo) *LeafList {
	return &LeafList{schemaNode: newSchemaNode(m, info), typ: findType(m.Substatements)}
}

func (l *LeafList) Type() *Type { return l.typ }

// Defaults returns the declared defaults in order.
func (l *LeafList) Defaults() []string {
	var out []string
	for _, d := range l.FindAll("default") {
		out = append(out, d.RawArgument())
	}
	return out
}

func (l *LeafList) MinElements() uint64 {
	v, _ := l.uintArg("min-elements")
	return v
}

// MaxElements returns the upper bound, or false when unbounded.
func (l *LeafList) MaxElements() (uint64, bool) { return l.uintArg("max-elements") }

// OrderedBy returns "system" or "user".
func (l *LeafList) OrderedBy() string {
	if s := l.stringArg("ordered-by"); s != "" {
		return s
	}
	return "system"
}

// List is an effective list statement.
type List struct {
	containerNode
	keys []*Leaf
}

// NewList creates a list and binds its key leaves by local name.
func NewList(m Meta, info NodeInfo) *List {
	l := &List{containerNode: newContainerNode(m, info)}
	if k := l.Find("key"); k != nil {
		names, _ := k.Argument().([]string)
		for _, name := range names {
			for _, ch := range l.children {
				if leaf, ok := ch.(*Leaf); ok && leaf.QName().Local == name {
					l.keys = append(l.keys, leaf)
					break
				}
			}
		}
	}
	return l
}

// Keys returns the key leaves in key order.
func (l *List) Keys() []*Leaf { return slices.Clone(l.keys) }

func (l *List) MinElements() uint64 {
	v, _ := l.uintArg("min-elements")
	return v
}

// MaxElements returns the upper bound, or false when unbounded.
func (l *List) MaxElements() (uint64, bool) { return l.uintArg("max-elements") }

// OrderedBy returns "system" or "user".
func (l *List) OrderedBy() string {
	if s := l.stringArg("ordered-by"); s != "" {
		return s
	}
	return "system"
}

// AnyData is an anydata or anyxml node.
type AnyData struct {
	schemaNode
}

// NewAnyData creates an anydata or anyxml node.
func NewAnyData(m Meta, info NodeInfo) *AnyData {
	return &AnyData{schemaNode: newSchemaNode(m, info)}
}

func (a *AnyData) Mandatory() bool {
	v, _ := a.boolArg("mandatory")
	return v
}
