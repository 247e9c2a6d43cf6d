package support

import (
	"github.com/specialistvlad/yangreactor/internal/qname"
	"github.com/specialistvlad/yangreactor/internal/reactor"
	"github.com/specialistvlad/yangreactor/internal/yangerr"
	"golang.org/x/mod/semver"
)

// checkSemanticVersion verifies, when semantic versioning is enabled, that
// a grouping imported with a required version comes from a module whose
// version is compatible: same major version, not older.
func checkSemanticVersion(c, grouping *reactor.Context, ref qname.Ref) error {
	if !c.Options().EnableSemanticVersioning || ref.Prefix == "" {
		return nil
	}
	v, ok := c.Origin().Root().FromNamespace(reactor.ImportVersionNamespace, ref.Prefix)
	if !ok {
		return nil
	}
	required := v.(string)
	mod := grouping.ModuleRoot()
	key := reactor.ModuleKey{Name: mod.RawArgument(), Revision: mod.QNameModule().Revision}
	a, ok := c.FromNamespace(reactor.SemanticVersionNamespace, key)
	if !ok {
		return c.Error(yangerr.Inference, "module %s has no semantic version, %s is required", key, required)
	}
	actual := a.(string)
	if !Compatible(required, actual) {
		return c.Error(yangerr.Inference, "grouping %s comes from %s version %s, which is not compatible with required version %s",
			ref, key.Name, actual, required)
	}
	return nil
}

// Compatible reports whether a module at version actual satisfies a
// requirement for version required. Versions may omit the leading "v".
func Compatible(required, actual string) bool {
	r, a := Canonical(required), Canonical(actual)
	if r == "" || a == "" {
		return false
	}
	return semver.Major(r) == semver.Major(a) && semver.Compare(a, r) >= 0
}

// Canonical normalizes a version to the "vMAJOR.MINOR.PATCH" form, or ""
// when it is not a semantic version.
func Canonical(v string) string {
	if len(v) > 0 && v[0] != 'v' {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return ""
	}
	return semver.Canonical(v)
}
