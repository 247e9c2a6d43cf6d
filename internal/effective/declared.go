// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package effective

import (
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/yangreactor/internal/qname"
)

// Declared is a statement as written in its source.
type Declared struct {
	keyword       qname.QName
	rawArgument   string
	argument      any
	substatements []*Declared
	source        hcl.Range
}

// NewDeclared creates a declared statement.
func NewDeclared(keyword qname.QName, rawArgument string, argument any, source hcl.Range, subs []*Declared) *Declared {
	return &Declared{
		keyword:       keyword,
		rawArgument:   rawArgument,
		argument:      argument,
		substatements: slices.Clone(subs),
		source:        source,
	}
}

func (d *Declared) Keyword() qname.QName { return d.keyword }
func (d *Declared) RawArgument() string { return d.rawArgument }
func (d *Declared) Argument() any { return d.argument }
func (d *Declared) Source() hcl.Range { return d.source }
func (d *Declared) Substatements() []*Declared { return slices.Clone(d.substatements) }
