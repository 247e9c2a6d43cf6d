package reactor

import (
	"fmt"

	"github.com/specialistvlad/yangreactor/internal/yangerr"
)

// Unbounded is the maximum of a cardinality without an upper limit.
const Unbounded = -1

// Cardinality bounds how often a substatement may appear.
type Cardinality struct {
	Min, Max int
}

func (c Cardinality) String() string {
	if c.Max == Unbounded {
		return fmt.Sprintf("%d..n", c.Min)
	}
	return fmt.Sprintf("%d..%d", c.Min, c.Max)
}

// SubstatementRules lists the YANG substatements a statement accepts.
// Extension instances are always accepted.
type SubstatementRules struct {
	order []string
	rules map[string]Cardinality
}

// NewRules creates an empty rule set: no YANG substatement is allowed.
func NewRules() *SubstatementRules {
	return &SubstatementRules{rules: make(map[string]Cardinality)}
}

func (r *SubstatementRules) add(c Cardinality, keywords []string) *SubstatementRules {
	for _, k := range keywords {
		if _, ok := r.rules[k]; !ok {
			r.order = append(r.order, k)
		}
		r.rules[k] = c
	}
	return r
}

// Optional allows each keyword at most once.
func (r *SubstatementRules) Optional(keywords ...string) *SubstatementRules {
	return r.add(Cardinality{0, 1}, keywords)
}

// Required demands each keyword exactly once.
func (r *SubstatementRules) Required(keywords ...string) *SubstatementRules {
	return r.add(Cardinality{1, 1}, keywords)
}

// Any allows each keyword any number of times.
func (r *SubstatementRules) Any(keywords ...string) *SubstatementRules {
	return r.add(Cardinality{0, Unbounded}, keywords)
}

// AtLeastOne demands each keyword one or more times.
func (r *SubstatementRules) AtLeastOne(keywords ...string) *SubstatementRules {
	return r.add(Cardinality{1, Unbounded}, keywords)
}

// Allows reports whether keyword may appear at all.
func (r *SubstatementRules) Allows(keyword string) bool {
	_, ok := r.rules[keyword]
	return ok
}

// Cardinality returns the rule for keyword.
func (r *SubstatementRules) Cardinality(keyword string) (Cardinality, bool) {
	c, ok := r.rules[keyword]
	return c, ok
}

// Validate checks the declared substatements of c.
func (r *SubstatementRules) Validate(c *Context) []*yangerr.Error {
	var errs []*yangerr.Error
	counts := make(map[string]int)
	for _, ch := range c.DeclaredChildren() {
		if ch.deferred() || !ch.Keyword().IsYANG() {
			continue
		}
		if ch.support == nil {
			// Already reported as unsupported.
			continue
		}
		k := ch.Keyword().Local
		if _, ok := r.rules[k]; !ok {
			e := ch.Error(yangerr.InvalidSubstatement, "%s is not allowed in %s", k, c.Keyword().Local)
			errs = append(errs, e)
			continue
		}
		counts[k]++
	}
	for _, k := range r.order {
		card := r.rules[k]
		n := counts[k]
		rule := fmt.Sprintf("%s %s", k, card)
		switch {
		case n < card.Min:
			e := c.Error(yangerr.MissingSubstatement, "missing %s", k)
			e.Rule = rule
			errs = append(errs, e)
		case card.Max != Unbounded && n > card.Max:
			e := c.Error(yangerr.InvalidSubstatement, "%s appears %d times", k, n)
			e.Rule = rule
			errs = append(errs, e)
		}
	}
	return errs
}
