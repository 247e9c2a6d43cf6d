// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package effective

import (
	"slices"

	"github.com/specialistvlad/yangreactor/internal/qname"
)

// ModuleInfo holds the header values of a module or submodule.
type ModuleInfo struct {
	Name        string
	Namespace   string
	Prefix      string
	Revision    string
	YangVersion string
	Submodule   bool
	// BelongsTo names the parent module of a submodule.
	BelongsTo string
}

// Module is an effective module or submodule. Definitions of included
// submodules are visible through the including module's accessors.
type Module struct {
	Base
	nodeChildren
	info       ModuleInfo
	submodules []*Module

	imports       []*Import
	typedefs      []*Typedef
	groupings     []*Grouping
	identities    []*Identity
	features      []*Feature
	extensions    []*Extension
	augments      []*Augment
	deviations    []*Deviation
	rpcs          []*Operation
	notifications []*Notification
}

// NewModule creates a module from its substatements and included submodules.
func NewModule(m Meta, info ModuleInfo, submodules []*Module) *Module {
	mod := &Module{Base: newBase(m), info: info, submodules: slices.Clone(submodules)}

	var subChildren [][]Statement
	subChildren = append(subChildren, m.Substatements)
	for _, sm := range submodules {
		subChildren = append(subChildren, sm.meta.Substatements)
	}
	mod.nodeChildren = collectChildren(subChildren...)

	for _, list := range subChildren {
		for _, s := range list {
			switch v := s.(type) {
			case *Import:
				mod.imports = append(mod.imports, v)
			case *Typedef:
				mod.typedefs = append(mod.typedefs, v)
			case *Grouping:
				mod.groupings = append(mod.groupings, v)
			case *Identity:
				mod.identities = append(mod.identities, v)
			case *Feature:
				mod.features = append(mod.features, v)
			case *Extension:
				mod.extensions = append(mod.extensions, v)
			case *Augment:
				mod.augments = append(mod.augments, v)
			case *Deviation:
				mod.deviations = append(mod.deviations, v)
			case *Operation:
				mod.rpcs = append(mod.rpcs, v)
			case *Notification:
				mod.notifications = append(mod.notifications, v)
			}
		}
	}
	return mod
}

func (m *Module) Name() string        { return m.info.Name }
func (m *Module) Namespace() string   { return m.info.Namespace }
func (m *Module) Prefix() string      { return m.info.Prefix }
func (m *Module) Revision() string    { return m.info.Revision }
func (m *Module) YangVersion() string { return m.info.YangVersion }
func (m *Module) IsSubmodule() bool   { return m.info.Submodule }
func (m *Module) BelongsTo() string   { return m.info.BelongsTo }

// QNameModule returns the namespace and revision that qualify the module's
// names.
func (m *Module) QNameModule() qname.Module {
	return qname.Module{Namespace: m.info.Namespace, Revision: m.info.Revision}
}

func (m *Module) Submodules() []*Module         { return slices.Clone(m.submodules) }
func (m *Module) Imports() []*Import            { return slices.Clone(m.imports) }
func (m *Module) Typedefs() []*Typedef          { return slices.Clone(m.typedefs) }
func (m *Module) Groupings() []*Grouping        { return slices.Clone(m.groupings) }
func (m *Module) Identities() []*Identity       { return slices.Clone(m.identities) }
func (m *Module) Features() []*Feature          { return slices.Clone(m.features) }
func (m *Module) Extensions() []*Extension      { return slices.Clone(m.extensions) }
func (m *Module) Augments() []*Augment          { return slices.Clone(m.augments) }
func (m *Module) Deviations() []*Deviation      { return slices.Clone(m.deviations) }
func (m *Module) RPCs() []*Operation            { return slices.Clone(m.rpcs) }
func (m *Module) Notifications() []*Notification { return slices.Clone(m.notifications) }

// Organization returns the organization statement, if any.
func (m *Module) Organization() string { return m.stringArg("organization") }

// Contact returns the contact statement, if any.
func (m *Module) Contact() string { return m.stringArg("contact") }

// Revisions returns every revision date, newest first.
func (m *Module) Revisions() []string {
	var out []string
	for _, r := range m.FindAll("revision") {
		out = append(out, r.RawArgument())
	}
	slices.Sort(out)
	slices.Reverse(out)
	return out
}

// Import is an import statement bound to the module it imports.
type Import struct {
	Base
	module *Module
}

// NewImport creates an import bound to its target.
func NewImport(m Meta, target *Module) *Import {
	return &Import{Base: newBase(m), module: target}
}

// ModuleName returns the imported module's name.
func (i *Import) ModuleName() string { return i.RawArgument() }

// Prefix returns the prefix bound by the import.
func (i *Import) Prefix() string { return i.stringArg("prefix") }

// RevisionDate returns the requested revision, if any.
func (i *Import) RevisionDate() string { return i.stringArg("revision-date") }

// Module returns the imported module.
func (i *Import) Module() *Module { return i.module }
