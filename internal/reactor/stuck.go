package reactor

import (
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/yangreactor/internal/dag"
	"github.com/specialistvlad/yangreactor/internal/yangerr"
)

type stuckAction struct {
	owner *Context
	act   *action
}

// reportStuck explains a fixed point reached before phase completed. Every
// pending action is a root cause; statements only waiting for their children
// are not reported. Root causes whose waits form a cycle are reported once,
// as a cycle listing every member.
func (r *Run) reportStuck(phase Phase) {
	var stuck []stuckAction
	r.walk(func(c *Context) bool {
		for _, a := range c.actions {
			if !a.done && a.phase <= phase {
				stuck = append(stuck, stuckAction{owner: c, act: a})
			}
		}
		return true
	})
	if len(stuck) == 0 {
		panic(internalError("phase %s stalled with no pending actions", phase))
	}

	g := dag.New[Handle]()
	waiting := make(map[Handle]bool)
	for _, s := range stuck {
		g.AddNode(s.owner.handle)
		waiting[s.owner.handle] = true
	}
	for _, s := range stuck {
		for _, w := range s.act.waitingOn {
			if waiting[w] {
				// Both ends were added above.
				_ = g.AddEdge(w, s.owner.handle)
			}
		}
	}

	inCycle := make(map[Handle]bool)
	for _, members := range g.Cycles() {
		for _, h := range members {
			inCycle[h] = true
		}
		r.record(r.cycleError(r.ctxs(members)))
	}

	for _, s := range stuck {
		if inCycle[s.owner.handle] {
			continue
		}
		e := s.act.lastErr
		if e == nil {
			e = s.owner.Error(yangerr.Inference, "%s could not complete in %s", s.act.name, phase)
		}
		r.record(e)
	}
}

// cycleError reports statements that wait on each other.
func (r *Run) cycleError(members []*Context) *yangerr.Error {
	names := make([]string, len(members))
	related := make([]hcl.Range, len(members))
	for i, m := range members {
		names[i] = m.String()
		related[i] = m.Source()
	}
	first := members[0]
	var e *yangerr.Error
	if len(members) == 1 {
		e = first.Error(yangerr.Cycle, "%s depends on itself", first)
	} else {
		e = first.Error(yangerr.Cycle, "circular dependency between %s", strings.Join(names, ", "))
	}
	e.Members = names
	e.Related = related
	return e
}

// checkImportCycles rejects modules that import each other, directly or
// through other modules.
func (r *Run) checkImportCycles() {
	g := dag.New[Handle]()
	for _, h := range r.roots {
		g.AddNode(h)
	}
	for _, root := range r.Roots() {
		for _, e := range root.NamespaceEntries(ImportedModules) {
			if target, ok := e.Value.(*Context); ok {
				_ = g.AddEdge(target.handle, root.handle)
			}
		}
	}
	for _, members := range g.Cycles() {
		r.record(r.cycleError(r.ctxs(members)))
	}
}
