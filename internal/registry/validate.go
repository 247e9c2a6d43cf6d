package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/yangreactor/internal/ctxlog"
	"github.com/specialistvlad/yangreactor/internal/qname"
)

// bootstrap are the statements every set of sources needs to be linked.
var bootstrap = []string{"module", "submodule", "import", "include", "belongs-to", "prefix", "extension"}

// Validate performs a consistency check of the registered supports: the
// bootstrap statements are present and every YANG keyword named by a
// substatement rule is itself served.
func (r *Registry) Validate(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, kw := range bootstrap {
		if _, ok := r.supports[qname.Keyword(kw)]; !ok {
			errs = append(errs, fmt.Sprintf("bootstrap statement '%s' has no support", kw))
		}
	}

	for _, kw := range r.Keywords() {
		def := r.supports[kw].Definition()
		if def.Keyword != kw {
			errs = append(errs, fmt.Sprintf("support registered as '%s' defines keyword '%s'", kw, def.Keyword))
		}
		if def.Rules == nil {
			if kw.IsYANG() {
				logger.Debug("Statement accepts any substatement.", "keyword", kw.Local)
			}
			continue
		}
		for _, sub := range knownKeywords {
			if def.Rules.Allows(sub) {
				if _, ok := r.supports[qname.Keyword(sub)]; !ok {
					errs = append(errs, fmt.Sprintf("statement '%s' allows '%s' which has no support", kw.Local, sub))
				}
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	logger.Debug("Registry validated.", "supports", len(r.supports))
	return nil
}

// knownKeywords are the RFC 7950 statement keywords.
var knownKeywords = []string{
	"action", "anydata", "anyxml", "argument", "augment", "base", "belongs-to",
	"bit", "case", "choice", "config", "contact", "container", "default",
	"description", "deviate", "deviation", "enum", "error-app-tag",
	"error-message", "extension", "feature", "fraction-digits", "grouping",
	"identity", "if-feature", "import", "include", "input", "key", "leaf",
	"leaf-list", "length", "list", "mandatory", "max-elements", "min-elements",
	"modifier", "module", "must", "namespace", "notification", "ordered-by",
	"organization", "output", "path", "pattern", "position", "prefix",
	"presence", "range", "reference", "refine", "require-instance", "revision",
	"revision-date", "rpc", "status", "submodule", "type", "typedef", "unique",
	"units", "uses", "value", "when", "yang-version", "yin-element",
}
