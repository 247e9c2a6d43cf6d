package app

import (
	"context"
	"fmt"
	"maps"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/yangreactor/internal/ctxlog"
	"github.com/specialistvlad/yangreactor/internal/source"
	"github.com/specialistvlad/yangreactor/internal/stmt"
)

// Load reads every source under the configured paths. Each call uses a
// fresh loader so files changed since the last call are read again.
func (a *App) Load(ctx context.Context) ([]*stmt.Node, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading sources...", "paths", a.config.Paths)

	loader := source.NewLoader()
	nodes, err := loader.Load(ctx, a.config.Paths...)

	a.mu.Lock()
	a.files = loader.Files()
	a.mu.Unlock()

	if err != nil {
		return nil, fmt.Errorf("failed to load sources: %w", err)
	}
	logger.Info("Sources loaded.", "roots", len(nodes), "files", len(loader.Files()))
	return nodes, nil
}

// Files returns the contents of the files read by the last Load, for
// rendering diagnostics with source snippets.
func (a *App) Files() map[string]*hcl.File {
	a.mu.Lock()
	defer a.mu.Unlock()
	return maps.Clone(a.files)
}
