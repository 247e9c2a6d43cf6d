package nacm

import (
	"github.com/specialistvlad/yangreactor/internal/effective"
	"github.com/specialistvlad/yangreactor/internal/qname"
	"github.com/specialistvlad/yangreactor/internal/reactor"
	"github.com/specialistvlad/yangreactor/internal/registry"
	"github.com/specialistvlad/yangreactor/internal/yangerr"
)

// Namespace is the namespace of ietf-netconf-acm.
const Namespace = "urn:ietf:params:xml:ns:yang:ietf-netconf-acm"

var (
	DefaultDenyWrite = qname.New(Namespace, "", "default-deny-write")
	DefaultDenyAll   = qname.New(Namespace, "", "default-deny-all")
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the default-deny-write and default-deny-all supports.
func (m *Module) Register(r *registry.Registry) {
	for _, kw := range []qname.QName{DefaultDenyWrite, DefaultDenyAll} {
		r.RegisterSupport(denySupport{reactor.BaseSupport{Def: &reactor.Definition{
			Keyword: kw,
			Rules:   reactor.NewRules(),
		}}})
	}
}

type denySupport struct{ reactor.BaseSupport }

func (denySupport) ParseArgument(*reactor.Context, string) (any, error) { return nil, nil }

// Finalize accepts the markers only on data nodes and operations.
func (denySupport) Finalize(c *reactor.Context) error {
	p := c.Parent()
	if p.IsSchemaNode() || p.Is("augment") || p.Is("uses") || p.Is("grouping") {
		return nil
	}
	return c.Error(yangerr.InvalidSubstatement, "%s is only allowed on data nodes and operations", c.Keyword().Local)
}

func (denySupport) CreateEffective(c *reactor.Context, m effective.Meta, b reactor.EffectiveBuilder) (effective.Statement, error) {
	var ext *effective.Extension
	if def, ok := c.Extension(); ok {
		ext, _ = b.EffectiveOf(def).(*effective.Extension)
	}
	return effective.NewUnknown(m, ext), nil
}

// DefaultDeny reports the access-control markers of a schema node.
func DefaultDeny(n effective.SchemaNode) (write, all bool) {
	for _, s := range n.Substatements() {
		kw := s.Keyword()
		if kw.Module.Namespace != Namespace {
			continue
		}
		switch kw.Local {
		case DefaultDenyWrite.Local:
			write = true
		case DefaultDenyAll.Local:
			all = true
		}
	}
	return write, all
}
