package reactor

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/specialistvlad/yangreactor/internal/qname"
)

// Options configure a resolution run.
type Options struct {
	// EnableSemanticVersioning turns on the semantic version side namespace
	// and the compatibility check on uses of imported groupings.
	EnableSemanticVersioning bool
	// ErrorOnUnsupportedFeature fails statements guarded by a disabled
	// feature instead of pruning them.
	ErrorOnUnsupportedFeature bool
	// Features selects the supported features. Nil supports every feature.
	Features FeatureSet
	// Interner is the qualified-name table. A fresh one is used per run when
	// nil. It must not be shared by concurrent runs.
	Interner *qname.Interner
	// Observer receives progress events. Optional.
	Observer Observer
}

// FeatureSet maps a module name to the names of its supported features.
// Modules that are not listed have all their features supported.
type FeatureSet map[string]map[string]bool

// ParseFeatureSet builds a FeatureSet from "module:feature" entries. An entry
// "module:" lists the module with no supported features.
func ParseFeatureSet(entries []string) (FeatureSet, error) {
	fs := make(FeatureSet)
	for _, e := range entries {
		mod, feat, ok := strings.Cut(e, ":")
		if !ok || mod == "" {
			return nil, fmt.Errorf("feature %q: expected module:feature", e)
		}
		if fs[mod] == nil {
			fs[mod] = make(map[string]bool)
		}
		if feat != "" {
			if !qname.IsIdentifier(feat) {
				return nil, fmt.Errorf("feature %q: %q is not an identifier", e, feat)
			}
			fs[mod][feat] = true
		}
	}
	return fs, nil
}

// Supports reports whether feature of module is enabled.
func (fs FeatureSet) Supports(module, feature string) bool {
	if fs == nil {
		return true
	}
	set, ok := fs[module]
	if !ok {
		return true
	}
	return set[feature]
}

// String renders the set in "module:feature" form, sorted.
func (fs FeatureSet) String() string {
	var out []string
	for mod, set := range fs {
		if len(set) == 0 {
			out = append(out, mod+":")
		}
		for f := range set {
			out = append(out, mod+":"+f)
		}
	}
	sort.Strings(out)
	return strings.Join(out, ",")
}

// Stats summarises a finished run.
type Stats struct {
	Roots    int
	Contexts int
	Sweeps   int
	Duration time.Duration
}

// Observer receives progress events from a run. Implementations used with
// ResolveAll must be safe for concurrent use.
type Observer interface {
	SweepCompleted(phase Phase, progress bool)
	PhaseCompleted(phase Phase, sweeps int)
	RunCompleted(stats Stats, err error)
}
