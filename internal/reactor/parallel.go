package reactor

import (
	"context"
	"fmt"

	"github.com/specialistvlad/yangreactor/internal/effective"
	"github.com/specialistvlad/yangreactor/internal/stmt"
	"golang.org/x/sync/errgroup"
)

// ResolveAll resolves independent module sets concurrently, at most limit at
// a time (no limit when limit <= 0). Every set gets its own run and interner.
// Results keep the order of inputs. The first failure cancels the remaining
// runs and is returned.
func (r *Reactor) ResolveAll(ctx context.Context, inputs [][]*stmt.Node, limit int) ([]*effective.SchemaContext, error) {
	results := make([]*effective.SchemaContext, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	opts := r.opts
	opts.Interner = nil
	for i, sources := range inputs {
		g.Go(func() error {
			sc, err := r.resolve(gctx, sources, opts)
			if err != nil {
				return fmt.Errorf("module set %d: %w", i, err)
			}
			results[i] = sc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
