package reactor

import (
	"errors"

	"github.com/specialistvlad/yangreactor/internal/yangerr"
)

type outcomeKind int

const (
	outcomeDone outcomeKind = iota
	outcomeFail
	outcomeRetry
)

// Outcome is the result of one attempt at an inference action.
type Outcome struct {
	kind      outcomeKind
	err       error
	waitingOn []*Context
}

// Done reports that the action completed.
func Done() Outcome { return Outcome{kind: outcomeDone} }

// Fail reports a fatal error. The action is not attempted again.
func Fail(err error) Outcome { return Outcome{kind: outcomeFail, err: err} }

// Retry reports that the action cannot complete yet. err explains what is
// missing and is surfaced only if the run reaches a fixed point with the
// action still pending. waitingOn names the statements whose progress would
// unblock it; they form the wait-for graph used to find cycles.
func Retry(err error, waitingOn ...*Context) Outcome {
	return Outcome{kind: outcomeRetry, err: err, waitingOn: waitingOn}
}

// IsDone reports whether o is Done.
func (o Outcome) IsDone() bool { return o.kind == outcomeDone }

// ActionFunc is an inference action bound to a context.
type ActionFunc func(c *Context) Outcome

type action struct {
	name      string
	phase     Phase
	fn        ActionFunc
	done      bool
	lastErr   *yangerr.Error
	waitingOn []Handle
}

// ScheduleAction queues fn to run during phase. If c already completed phase
// the action runs immediately; a retry is then an inference error since the
// information it waits for can no longer appear.
func (c *Context) ScheduleAction(phase Phase, name string, fn ActionFunc) error {
	if c.phase >= phase {
		out := fn(c)
		switch out.kind {
		case outcomeFail:
			return c.asError(out.err)
		case outcomeRetry:
			e := c.asError(out.err)
			e.Kind = yangerr.Inference
			return e
		}
		return nil
	}
	c.actions = append(c.actions, &action{name: name, phase: phase, fn: fn})
	return nil
}

// hasPending reports whether c has unfinished actions due by phase.
func (c *Context) hasPending(phase Phase) bool {
	for _, a := range c.actions {
		if !a.done && a.phase <= phase {
			return true
		}
	}
	return false
}

// asError converts err into a located error, defaulting to an inference
// error at c.
func (c *Context) asError(err error) *yangerr.Error {
	if err == nil {
		return c.Error(yangerr.Inference, "statement could not be resolved")
	}
	var ye *yangerr.Error
	if errors.As(err, &ye) {
		return ye
	}
	return c.Error(yangerr.Inference, "%s", err.Error())
}
