package registry

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/specialistvlad/yangreactor/internal/qname"
	"github.com/specialistvlad/yangreactor/internal/reactor"
)

// Module is the interface that all support bundles must implement to be
// registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the statement supports of a single application instance.
// It is written during startup and read-only afterwards.
type Registry struct {
	supports map[qname.QName]reactor.StatementSupport
	order    []qname.QName
}

// New creates a registry populated by the given modules.
func New(modules ...Module) *Registry {
	r := &Registry{supports: make(map[qname.QName]reactor.StatementSupport)}
	for _, m := range modules {
		m.Register(r)
	}
	return r
}

// RegisterSupport registers the support for its definition's keyword. It
// panics when the keyword is already served: two supports for one keyword
// is a programming error.
func (r *Registry) RegisterSupport(s reactor.StatementSupport) {
	def := s.Definition()
	if def == nil || def.Keyword.IsZero() {
		panic("statement support registered without a keyword")
	}
	if _, exists := r.supports[def.Keyword]; exists {
		panic(fmt.Sprintf("statement support for '%s' already registered", def.Keyword))
	}
	slog.Debug("Registering statement support.", "keyword", def.Keyword.Local, "namespace", def.Keyword.Module.Namespace)
	r.supports[def.Keyword] = s
	r.order = append(r.order, def.Keyword)
}

// Lookup implements reactor.SupportLookup. Extension supports are
// registered without a revision and serve every revision of their module.
func (r *Registry) Lookup(keyword qname.QName) (reactor.StatementSupport, bool) {
	if s, ok := r.supports[keyword]; ok {
		return s, true
	}
	if keyword.Module.Revision == "" {
		return nil, false
	}
	keyword.Module.Revision = ""
	s, ok := r.supports[keyword]
	return s, ok
}

// Keywords returns the registered keywords, sorted.
func (r *Registry) Keywords() []qname.QName {
	out := slices.Clone(r.order)
	slices.SortFunc(out, qname.Compare)
	return out
}

// Len returns the number of registered supports.
func (r *Registry) Len() int { return len(r.supports) }
