// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package effective

import (
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/yangreactor/internal/qname"
	"github.com/specialistvlad/yangreactor/internal/stmt"
)

// Statement is any effective statement.
type Statement interface {
	Keyword() qname.QName
	Argument() any
	RawArgument() string
	Substatements() []Statement
	Source() hcl.Range
	Declared() *Declared
	CopyHistory() stmt.CopyHistory
}

// Meta carries the properties shared by every effective statement.
type Meta struct {
	Keyword       qname.QName
	Argument      any
	RawArgument   string
	Source        hcl.Range
	Declared      *Declared
	History       stmt.CopyHistory
	Substatements []Statement
}

// Base implements Statement and is embedded by every concrete type.
type Base struct {
	meta Meta
}

func newBase(m Meta) Base {
	m.Substatements = slices.Clone(m.Substatements)
	return Base{meta: m}
}

func (b *Base) Keyword() qname.QName { return b.meta.Keyword }
func (b *Base) Argument() any { return b.meta.Argument }
func (b *Base) RawArgument() string { return b.meta.RawArgument }
func (b *Base) Source() hcl.Range { return b.meta.Source }
func (b *Base) Declared() *Declared { return b.meta.Declared }
func (b *Base) CopyHistory() stmt.CopyHistory { return b.meta.History }
func (b *Base) Substatements() []Statement { return slices.Clone(b.meta.Substatements) }

// Find returns the first substatement with the YANG keyword.
func (b *Base) Find(keyword string) Statement {
	k := qname.Keyword(keyword)
	for _, s := range b.meta.Substatements {
		if s.Keyword() == k {
			return s
		}
	}
	return nil
}

// FindAll returns every substatement with the YANG keyword.
func (b *Base) FindAll(keyword string) []Statement {
	k := qname.Keyword(keyword)
	var out []Statement
	for _, s := range b.meta.Substatements {
		if s.Keyword() == k {
			out = append(out, s)
		}
	}
	return out
}

// Description returns the description substatement's text, if any.
func (b *Base) Description() string { return b.stringArg("description") }

// Reference returns the reference substatement's text, if any.
func (b *Base) Reference() string { return b.stringArg("reference") }

// Status returns the status substatement's value, "current" by default.
func (b *Base) Status() string {
	if s := b.stringArg("status"); s != "" {
		return s
	}
	return "current"
}

// IfFeatures returns the raw if-feature expressions guarding the statement.
func (b *Base) IfFeatures() []string {
	var out []string
	for _, s := range b.FindAll("if-feature") {
		out = append(out, s.RawArgument())
	}
	return out
}

func (b *Base) stringArg(keyword string) string {
	if s := b.Find(keyword); s != nil {
		return s.RawArgument()
	}
	return ""
}

func (b *Base) boolArg(keyword string) (bool, bool) {
	s := b.Find(keyword)
	if s == nil {
		return false, false
	}
	v, ok := s.Argument().(bool)
	return v, ok
}

func (b *Base) uintArg(keyword string) (uint64, bool) {
	s := b.Find(keyword)
	if s == nil {
		return 0, false
	}
	v, ok := s.Argument().(uint64)
	return v, ok
}

// Generic is an effective statement with no behavior beyond Base: the
// documentation statements, restrictions and extension instances.
type Generic struct {
	Base
}

// NewGeneric creates a Generic statement.
func NewGeneric(m Meta) *Generic {
	return &Generic{Base: newBase(m)}
}

// Unknown is an instance of an extension that has no dedicated support.
type Unknown struct {
	Base
	extension *Extension
}

// NewUnknown creates an extension instance bound to its definition.
func NewUnknown(m Meta, ext *Extension) *Unknown {
	return &Unknown{Base: newBase(m), extension: ext}
}

// Extension returns the extension definition the statement instantiates.
func (u *Unknown) Extension() *Extension { return u.extension }
