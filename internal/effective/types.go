// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package effective

import (
	"fmt"
	"slices"

	"github.com/specialistvlad/yangreactor/internal/qname"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// builtinTypes maps every YANG built-in type to the cty type of its values.
var builtinTypes = map[string]cty.Type{
	"binary":              cty.String,
	"bits":                cty.Set(cty.String),
	"boolean":             cty.Bool,
	"decimal64":           cty.Number,
	"empty":               cty.EmptyObject,
	"enumeration":         cty.String,
	"identityref":         cty.String,
	"instance-identifier": cty.String,
	"int8":                cty.Number,
	"int16":               cty.Number,
	"int32":               cty.Number,
	"int64":               cty.Number,
	"leafref":             cty.DynamicPseudoType,
	"string":              cty.String,
	"uint8":               cty.Number,
	"uint16":              cty.Number,
	"uint32":              cty.Number,
	"uint64":              cty.Number,
	"union":               cty.DynamicPseudoType,
}

// IsBuiltinType reports whether name is a YANG built-in type.
func IsBuiltinType(name string) bool {
	_, ok := builtinTypes[name]
	return ok
}

// CtyTypeOf returns the cty type values of a built-in type take.
func CtyTypeOf(builtin string) cty.Type {
	if t, ok := builtinTypes[builtin]; ok {
		return t
	}
	return cty.DynamicPseudoType
}

// ValueOf converts a lexical value of a built-in type into a cty value,
// enforcing the integer ranges of the sized integer types.
func ValueOf(builtin, raw string) (cty.Value, error) {
	switch builtin {
	case "empty":
		return cty.NilVal, fmt.Errorf("type empty cannot have a value")
	case "leafref", "union":
		return cty.StringVal(raw), nil
	case "bits":
		var elems []cty.Value
		for _, f := range splitFields(raw) {
			elems = append(elems, cty.StringVal(f))
		}
		if len(elems) == 0 {
			return cty.SetValEmpty(cty.String), nil
		}
		return cty.SetVal(elems), nil
	}
	target, ok := builtinTypes[builtin]
	if !ok {
		return cty.StringVal(raw), nil
	}
	v, err := convert.Convert(cty.StringVal(raw), target)
	if err != nil {
		return cty.NilVal, fmt.Errorf("%q is not a valid %s: %w", raw, builtin, err)
	}
	if err := checkIntegerRange(builtin, v); err != nil {
		return cty.NilVal, fmt.Errorf("%q is not a valid %s: %w", raw, builtin, err)
	}
	return v, nil
}

func checkIntegerRange(builtin string, v cty.Value) error {
	var err error
	switch builtin {
	case "int8":
		var n int8
		err = gocty.FromCtyValue(v, &n)
	case "int16":
		var n int16
		err = gocty.FromCtyValue(v, &n)
	case "int32":
		var n int32
		err = gocty.FromCtyValue(v, &n)
	case "int64":
		var n int64
		err = gocty.FromCtyValue(v, &n)
	case "uint8":
		var n uint8
		err = gocty.FromCtyValue(v, &n)
	case "uint16":
		var n uint16
		err = gocty.FromCtyValue(v, &n)
	case "uint32":
		var n uint32
		err = gocty.FromCtyValue(v, &n)
	case "uint64":
		var n uint64
		err = gocty.FromCtyValue(v, &n)
	}
	return err
}

func splitFields(s string) []string {
	var out []string
	start := -1
	for i, r := range s {
		space := r == ' ' || r == '\t' || r == '\n' || r == '\r'
		switch {
		case space && start >= 0:
			out = append(out, s[start:i])
			start = -1
		case !space && start < 0:
			start = i
		}
	}
	if start >= 0 {
		out = append(out, s[start:])
	}
	return out
}

// EnumValue is one member of an enumeration.
type EnumValue struct {
	Name  string
	Value int64
}

// Bit is one member of a bits type.
type Bit struct {
	Name     string
	Position uint64
}

// TypeInfo carries the references a type statement was resolved to.
type TypeInfo struct {
	// Name is the referenced type: a built-in name in the YANG namespace or a
	// typedef's QName.
	Name qname.QName
	// Builtin is the built-in type at the root of the typedef chain.
	Builtin string
	Typedef *Typedef
	// LeafrefTarget is the leaf or leaf-list a leafref points to.
	LeafrefTarget SchemaNode
	// Bases are the identities an identityref is restricted to.
	Bases []*Identity
}

// Type is a resolved type statement.
type Type struct {
	Base
	info  TypeInfo
	enums []EnumValue
	bits  []Bit
}

// NewType creates a type statement, assigning enum values and bit positions
// the way YANG numbers them implicitly.
func NewType(m Meta, info TypeInfo) *Type {
	info.Bases = slices.Clone(info.Bases)
	t := &Type{Base: newBase(m), info: info}

	next := int64(0)
	for _, e := range t.FindAll("enum") {
		v := next
		if s, ok := e.(*Generic); ok {
			if vs := s.Find("value"); vs != nil {
				if n, ok := vs.Argument().(int64); ok {
					v = n
				}
			}
		}
		t.enums = append(t.enums, EnumValue{Name: e.RawArgument(), Value: v})
		next = v + 1
	}

	pos := uint64(0)
	for _, b := range t.FindAll("bit") {
		p := pos
		if s, ok := b.(*Generic); ok {
			if ps := s.Find("position"); ps != nil {
				if n, ok := ps.Argument().(uint64); ok {
					p = n
				}
			}
		}
		t.bits = append(t.bits, Bit{Name: b.RawArgument(), Position: p})
		pos = p + 1
	}
	return t
}

func (t *Type) Name() qname.QName { return t.info.Name }
func (t *Type) Builtin() string   { return t.info.Builtin }
func (t *Type) Typedef() *Typedef { return t.info.Typedef }
func (t *Type) IsBuiltin() bool   { return t.info.Typedef == nil }

// CtyType returns the cty type of values of this type. Leafrefs take the
// type of their target.
func (t *Type) CtyType() cty.Type {
	if t.info.Builtin == "leafref" {
		if leaf, ok := t.info.LeafrefTarget.(*Leaf); ok && leaf.Type() != nil {
			return leaf.Type().CtyType()
		}
	}
	return CtyTypeOf(t.info.Builtin)
}

// LeafrefPath returns the path expression of a leafref, following typedefs.
func (t *Type) LeafrefPath() string {
	if p := t.stringArg("path"); p != "" {
		return p
	}
	if t.info.Typedef != nil && t.info.Typedef.Type() != nil {
		return t.info.Typedef.Type().LeafrefPath()
	}
	return ""
}

// LeafrefTarget returns the node a leafref points to.
func (t *Type) LeafrefTarget() SchemaNode { return t.info.LeafrefTarget }

// RequireInstance reports the require-instance setting, true by default.
func (t *Type) RequireInstance() bool {
	if v, ok := t.boolArg("require-instance"); ok {
		return v
	}
	return true
}

// IdentityBases returns the bases of an identityref.
func (t *Type) IdentityBases() []*Identity { return slices.Clone(t.info.Bases) }

// Union returns the member types of a union.
func (t *Type) Union() []*Type {
	var out []*Type
	for _, s := range t.meta.Substatements {
		if m, ok := s.(*Type); ok {
			out = append(out, m)
		}
	}
	return out
}

// Enums returns the enumeration members, inherited from the typedef when the
// type does not restrict them.
func (t *Type) Enums() []EnumValue {
	if len(t.enums) == 0 && t.info.Typedef != nil && t.info.Typedef.Type() != nil {
		return t.info.Typedef.Type().Enums()
	}
	return slices.Clone(t.enums)
}

// Bits returns the bits members, inherited from the typedef when absent.
func (t *Type) Bits() []Bit {
	if len(t.bits) == 0 && t.info.Typedef != nil && t.info.Typedef.Type() != nil {
		return t.info.Typedef.Type().Bits()
	}
	return slices.Clone(t.bits)
}

// Units returns the units inherited from the typedef chain.
func (t *Type) Units() string {
	if t.info.Typedef != nil {
		return t.info.Typedef.Units()
	}
	return ""
}

// Default returns the default inherited from the typedef chain.
func (t *Type) Default() (string, bool) {
	if t.info.Typedef != nil {
		return t.info.Typedef.Default()
	}
	return "", false
}

// Value converts a lexical value into a cty value of this type.
func (t *Type) Value(raw string) (cty.Value, error) {
	if t.info.Builtin == "enumeration" {
		for _, e := range t.Enums() {
			if e.Name == raw {
				return cty.StringVal(raw), nil
			}
		}
		return cty.NilVal, fmt.Errorf("%q is not a member of the enumeration", raw)
	}
	if t.info.Builtin == "leafref" {
		if leaf, ok := t.info.LeafrefTarget.(*Leaf); ok && leaf.Type() != nil {
			return leaf.Type().Value(raw)
		}
	}
	return ValueOf(t.info.Builtin, raw)
}
