package reactor

// finalize runs the checks that need the complete model: every live
// statement whose support is a Finalizer is checked once, in tree order.
func (r *Run) finalize() {
	r.walk(func(c *Context) bool {
		if c.pruned || c.failed {
			return false
		}
		if f, ok := c.support.(Finalizer); ok {
			r.recordErr(c, f.Finalize(c))
		}
		return true
	})
}
