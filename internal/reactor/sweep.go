package reactor

import (
	"context"
	"fmt"
)

// completePhase sweeps until every context reached phase or a sweep makes no
// progress. Fatal errors end the phase after the sweep that recorded them.
func (r *Run) completePhase(ctx context.Context, phase Phase) error {
	r.phase = phase
	sweeps := 0
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("resolution cancelled during %s: %w", phase, err)
		}
		r.progress = false
		complete := true
		for i := 0; i < len(r.roots); i++ {
			if !r.advance(r.ctx(r.roots[i]), phase, false) {
				complete = false
			}
		}
		sweeps++
		r.sweeps++
		if r.opts.Observer != nil {
			r.opts.Observer.SweepCompleted(phase, r.progress)
		}
		if len(r.errs) > 0 {
			r.logger.Debug("Phase failed.", "phase", phase, "sweeps", sweeps, "errors", len(r.errs))
			return nil
		}
		if complete {
			r.logger.Debug("Phase complete.", "phase", phase, "sweeps", sweeps, "contexts", r.arena.len())
			if r.opts.Observer != nil {
				r.opts.Observer.PhaseCompleted(phase, sweeps)
			}
			return nil
		}
		if !r.progress {
			r.logger.Debug("Phase reached a fixed point with pending work.", "phase", phase, "sweeps", sweeps)
			r.reportStuck(phase)
			return nil
		}
	}
}

// advance moves c and its subtree towards target. It reports whether the
// whole subtree reached target.
func (r *Run) advance(c *Context, target Phase, prunedAbove bool) bool {
	pruned := prunedAbove || c.pruned
	if c.phase < target {
		r.step(c, target, pruned)
	}

	done := true
	// Children may be appended while iterating: copies land in effective.
	for i := 0; i < len(c.declared); i++ {
		if !r.advance(r.ctx(c.declared[i]), target, pruned) {
			done = false
		}
	}
	for i := 0; i < len(c.effective); i++ {
		if !r.advance(r.ctx(c.effective[i]), target, pruned) {
			done = false
		}
	}

	if c.phase < target {
		if !done || c.hasPending(target) {
			return false
		}
		c.phase = target
		r.progress = true
	}
	return done
}

// step runs c's outstanding hooks up to target, then its actions due by
// target, until neither makes progress.
func (r *Run) step(c *Context, target Phase, pruned bool) {
	if c.failed || (pruned && target >= PhaseEffectiveModel) {
		// Failed statements and statements removed from the model do no
		// further work.
		for _, a := range c.actions {
			if !a.done {
				a.done = true
				r.progress = true
			}
		}
		if c.hooked < target {
			c.hooked = target
		}
		return
	}
	for {
		acted := false
		for c.support != nil && c.hooked < target && !c.failed {
			next := c.hooked + 1
			c.hooked = next
			r.runHook(c, next)
			acted = true
		}
		if r.runActions(c, target) {
			acted = true
		}
		if !acted || c.failed {
			return
		}
	}
}

func (r *Run) runHook(c *Context, p Phase) {
	r.progress = true
	var err error
	switch p {
	case PhaseSourceLinkage:
		err = c.support.OnLinkageDeclared(c)
	case PhaseStatementDefinition:
		err = c.support.OnStatementDefinitionDeclared(c)
	case PhaseFullDeclaration:
		if !c.IsCopy() {
			if rules := c.support.Definition().Rules; rules != nil {
				for _, e := range rules.Validate(c) {
					r.record(e)
				}
			}
		}
		if err = r.registerSchemaNode(c); err == nil {
			err = c.support.OnFullDefinitionDeclared(c)
		}
	}
	r.recordErr(c, err)
}

// runActions runs every pending action of c due by target once. It reports
// whether any of them finished.
func (r *Run) runActions(c *Context, target Phase) bool {
	finished := false
	for i := 0; i < len(c.actions); i++ {
		a := c.actions[i]
		if a.done || a.phase > target {
			continue
		}
		out := a.fn(c)
		switch out.kind {
		case outcomeDone:
			a.done = true
		case outcomeFail:
			a.done = true
			r.recordErr(c, c.asError(out.err))
		case outcomeRetry:
			a.lastErr = c.asError(out.err)
			a.waitingOn = a.waitingOn[:0]
			for _, w := range out.waitingOn {
				if w != nil {
					a.waitingOn = append(a.waitingOn, w.handle)
				}
			}
			continue
		}
		finished = true
		r.progress = true
	}
	return finished
}

// registerSchemaNode enters a schema node into its parent's schema tree
// namespace, and top-level nodes into the module-wide one.
func (r *Run) registerSchemaNode(c *Context) error {
	if c.support.Definition().Schema == NotSchema {
		return nil
	}
	parent := c.Parent()
	if parent == nil {
		return nil
	}
	q := c.ArgumentQName()
	if err := parent.AddToNamespace(SchemaTreeNamespace, q, c); err != nil {
		return err
	}
	if parent.IsRoot() && !c.IsCopy() {
		return parent.AddToNamespace(TopLevelNamespace, q, c)
	}
	return nil
}
