package semver

import (
	"fmt"

	"github.com/specialistvlad/yangreactor/internal/effective"
	"github.com/specialistvlad/yangreactor/internal/qname"
	"github.com/specialistvlad/yangreactor/internal/reactor"
	"github.com/specialistvlad/yangreactor/internal/registry"
	"github.com/specialistvlad/yangreactor/internal/support"
	"github.com/specialistvlad/yangreactor/internal/yangerr"
)

// Namespace is the namespace of the openconfig-extensions module.
const Namespace = "http://openconfig.net/yang/openconfig-ext"

// Keyword is the openconfig-version extension.
var Keyword = qname.New(Namespace, "", "openconfig-version")

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the openconfig-version support.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterSupport(versionSupport{reactor.BaseSupport{Def: &reactor.Definition{
		Keyword:      Keyword,
		ArgumentName: "semver",
		Rules:        reactor.NewRules(),
	}}})
}

// versionSupport records the semantic version of a module, or the version a
// module requires of one of its imports. Versions are only recorded when
// semantic versioning is enabled.
type versionSupport struct{ reactor.BaseSupport }

func (versionSupport) ParseArgument(_ *reactor.Context, raw string) (any, error) {
	v := support.Canonical(raw)
	if v == "" {
		return nil, fmt.Errorf("%q is not a semantic version", raw)
	}
	return v, nil
}

func (versionSupport) OnStatementDefinitionDeclared(c *reactor.Context) error {
	if c.IsCopy() || !c.Options().EnableSemanticVersioning {
		return nil
	}
	v := c.Argument().(string)
	parent := c.Parent()
	switch {
	case parent.Is("module"):
		key := reactor.ModuleKey{Name: parent.RawArgument(), Revision: parent.QNameModule().Revision}
		c.Logger().Debug("Module version recorded.", "module", key.String(), "version", v)
		return c.AddToNamespace(reactor.SemanticVersionNamespace, key, v)
	case parent.Is("import"):
		prefix := parent.Find("prefix")
		if prefix == nil {
			return nil
		}
		return parent.Root().AddToNamespace(reactor.ImportVersionNamespace, prefix.RawArgument(), v)
	default:
		return c.Error(yangerr.InvalidSubstatement, "openconfig-version is only allowed in module and import")
	}
}

func (versionSupport) CreateEffective(c *reactor.Context, m effective.Meta, b reactor.EffectiveBuilder) (effective.Statement, error) {
	var ext *effective.Extension
	if def, ok := c.Extension(); ok {
		ext, _ = b.EffectiveOf(def).(*effective.Extension)
	}
	return effective.NewUnknown(m, ext), nil
}

// Of returns the semantic version a module declares, or "".
func Of(m *effective.Module) string {
	for _, s := range m.Substatements() {
		if s.Keyword().Module.Namespace == Namespace && s.Keyword().Local == Keyword.Local {
			return s.RawArgument()
		}
	}
	return ""
}
