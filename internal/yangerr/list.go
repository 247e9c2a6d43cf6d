package yangerr

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/hashicorp/hcl/v2"
)

// List aggregates every fatal diagnostic of a run.
type List []*Error

// Error implements the error interface.
func (l List) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	default:
		return fmt.Sprintf("%s (and %d more)", l[0].Error(), len(l)-1)
	}
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (l List) Unwrap() []error {
	out := make([]error, len(l))
	for i, e := range l {
		out[i] = e
	}
	return out
}

// Add appends e when it is not nil.
func (l *List) Add(e *Error) {
	if e != nil {
		*l = append(*l, e)
	}
}

// Sort orders the list by file, position and kind so that diagnostics are
// reproducible.
func (l List) Sort() {
	slices.SortStableFunc(l, func(a, b *Error) int {
		if c := cmp.Compare(a.Source.Filename, b.Source.Filename); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Source.Start.Line, b.Source.Start.Line); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Source.Start.Column, b.Source.Start.Column); c != 0 {
			return c
		}
		return cmp.Compare(a.Kind, b.Kind)
	})
}

// Err returns nil for an empty list and the list itself otherwise.
func (l List) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

// Diagnostics converts the list into hcl diagnostics.
func (l List) Diagnostics() hcl.Diagnostics {
	diags := make(hcl.Diagnostics, 0, len(l))
	for _, e := range l {
		diags = append(diags, e.Diagnostic())
	}
	return diags
}
