package testutil

import (
	"github.com/specialistvlad/yangreactor/internal/reactor"
	"github.com/specialistvlad/yangreactor/internal/registry"
)

// SimpleModule is a test helper for registering a handful of statement
// supports next to the core bundles.
type SimpleModule struct {
	Supports []reactor.StatementSupport
}

// Register implements the registry.Module interface.
func (m *SimpleModule) Register(r *registry.Registry) {
	for _, s := range m.Supports {
		r.RegisterSupport(s)
	}
}
