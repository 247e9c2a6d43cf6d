package reactor

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/yangreactor/internal/yangerr"
)

// Handle addresses a context inside a run's arena.
type Handle int32

// NoHandle is the handle of a missing context.
const NoHandle Handle = -1

// arena owns every context of a run. It only grows; contexts are released
// together with the run.
type arena struct {
	contexts []*Context
}

func (a *arena) alloc(c *Context) Handle {
	h := Handle(len(a.contexts))
	c.handle = h
	a.contexts = append(a.contexts, c)
	return h
}

func (a *arena) get(h Handle) *Context {
	if h < 0 || int(h) >= len(a.contexts) {
		panic(internalError("handle %d out of range (arena holds %d contexts)", h, len(a.contexts)))
	}
	return a.contexts[h]
}

func (a *arena) len() int { return len(a.contexts) }

// internalError builds the value panicked with on invariant violations.
func internalError(format string, args ...any) *yangerr.Error {
	return yangerr.New(yangerr.Internal, hcl.Range{}, "", format, args...)
}
