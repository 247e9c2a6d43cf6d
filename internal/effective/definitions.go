// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package effective

import (
	"slices"

	"github.com/specialistvlad/yangreactor/internal/qname"
)

// Typedef is a derived type definition.
type Typedef struct {
	Base
	qname qname.QName
	typ   *Type
}

// NewTypedef creates a typedef; its base type is taken from the substatements.
func NewTypedef(m Meta, q qname.QName) *Typedef {
	return &Typedef{Base: newBase(m), qname: q, typ: findType(m.Substatements)}
}

func (t *Typedef) QName() qname.QName { return t.qname }
func (t *Typedef) Type() *Type        { return t.typ }

// Units returns the typedef's units, following the typedef chain.
func (t *Typedef) Units() string {
	if u := t.stringArg("units"); u != "" {
		return u
	}
	if t.typ != nil {
		return t.typ.Units()
	}
	return ""
}

// Default returns the typedef's default, following the typedef chain.
func (t *Typedef) Default() (string, bool) {
	if d := t.Find("default"); d != nil {
		return d.RawArgument(), true
	}
	if t.typ != nil {
		return t.typ.Default()
	}
	return "", false
}

// Grouping is a reusable set of schema nodes. Its children are templates and
// are not part of the data tree.
type Grouping struct {
	Base
	nodeChildren
	qname qname.QName
}

// NewGrouping creates a grouping.
func NewGrouping(m Meta, q qname.QName) *Grouping {
	return &Grouping{Base: newBase(m), nodeChildren: collectChildren(m.Substatements), qname: q}
}

func (g *Grouping) QName() qname.QName { return g.qname }

// Identity is an identity statement linked to its direct bases.
type Identity struct {
	Base
	qname qname.QName
	bases []*Identity
}

// NewIdentity creates an identity.
func NewIdentity(m Meta, q qname.QName, bases []*Identity) *Identity {
	return &Identity{Base: newBase(m), qname: q, bases: slices.Clone(bases)}
}

func (i *Identity) QName() qname.QName { return i.qname }

// Bases returns the direct base identities.
func (i *Identity) Bases() []*Identity { return slices.Clone(i.bases) }

// DerivesFrom reports whether base is a direct or transitive base of i.
func (i *Identity) DerivesFrom(base *Identity) bool {
	for _, b := range i.bases {
		if b == base || b.DerivesFrom(base) {
			return true
		}
	}
	return false
}

// Feature is a feature definition with its support state in this model.
type Feature struct {
	Base
	qname     qname.QName
	supported bool
}

// NewFeature creates a feature.
func NewFeature(m Meta, q qname.QName, supported bool) *Feature {
	return &Feature{Base: newBase(m), qname: q, supported: supported}
}

func (f *Feature) QName() qname.QName { return f.qname }
func (f *Feature) Supported() bool    { return f.supported }

// Extension is an extension definition.
type Extension struct {
	Base
	qname qname.QName
}

// NewExtension creates an extension definition.
func NewExtension(m Meta, q qname.QName) *Extension {
	return &Extension{Base: newBase(m), qname: q}
}

func (e *Extension) QName() qname.QName { return e.qname }

// ArgumentName returns the name of the extension's argument, if it takes one.
func (e *Extension) ArgumentName() string { return e.stringArg("argument") }

// Uses is a uses statement. The nodes it instantiated are children of its
// parent, not of the uses statement.
type Uses struct {
	Base
	grouping *Grouping
}

// NewUses creates a uses statement bound to its grouping.
func NewUses(m Meta, g *Grouping) *Uses {
	return &Uses{Base: newBase(m), grouping: g}
}

func (u *Uses) Grouping() *Grouping { return u.grouping }

// Refines returns the refine statements applied by this uses.
func (u *Uses) Refines() []Statement { return u.FindAll("refine") }

// Augment is an augment statement with its resolved target.
type Augment struct {
	Base
	nodeChildren
	targetPath SchemaPath
}

// NewAugment creates an augment statement.
func NewAugment(m Meta, target SchemaPath) *Augment {
	return &Augment{
		Base:         newBase(m),
		nodeChildren: collectChildren(m.Substatements),
		targetPath:   slices.Clone(target),
	}
}

// TargetPath returns the schema path of the augmented node.
func (a *Augment) TargetPath() SchemaPath { return slices.Clone(a.targetPath) }

// When returns the augment's when condition, if any.
func (a *Augment) When() string { return a.stringArg("when") }

// Deviation is a deviation statement.
type Deviation struct {
	Base
	targetPath SchemaPath
}

// NewDeviation creates a deviation statement.
func NewDeviation(m Meta, target SchemaPath) *Deviation {
	return &Deviation{Base: newBase(m), targetPath: slices.Clone(target)}
}

// TargetPath returns the schema path of the deviated node.
func (d *Deviation) TargetPath() SchemaPath { return slices.Clone(d.targetPath) }

// Deviates returns the deviate statements, in order.
func (d *Deviation) Deviates() []Statement { return d.FindAll("deviate") }
