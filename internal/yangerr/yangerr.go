// Package yangerr defines the error classification used by the resolution
// engine and the aggregate value a failed run returns.
package yangerr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
)

// Kind classifies a resolution failure.
type Kind int

const (
	// ArgumentSyntax is a malformed statement argument.
	ArgumentSyntax Kind = iota + 1
	// InvalidSubstatement is a substatement not permitted in its parent, or
	// one occurring more often than its cardinality allows.
	InvalidSubstatement
	// MissingSubstatement is a required substatement that is absent.
	MissingSubstatement
	// UnsupportedStatement is a statement no support is registered for.
	UnsupportedStatement
	// Inference is a cross-reference that stayed unresolved at the fixed
	// point.
	Inference
	// DuplicateDefinition is a second binding of a unique namespace key.
	DuplicateDefinition
	// Cycle is a set of statements waiting on one another.
	Cycle
	// Internal is a violated engine invariant. It is raised by panicking and
	// never travels through the normal error path.
	Internal
)

func (k Kind) String() string {
	switch k {
	case ArgumentSyntax:
		return "argument syntax"
	case InvalidSubstatement:
		return "invalid substatement"
	case MissingSubstatement:
		return "missing substatement"
	case UnsupportedStatement:
		return "unsupported statement"
	case Inference:
		return "unresolved reference"
	case DuplicateDefinition:
		return "duplicate definition"
	case Cycle:
		return "dependency cycle"
	case Internal:
		return "internal invariant violation"
	default:
		return "unknown"
	}
}

// Error is one diagnostic attached to a statement.
type Error struct {
	Kind Kind
	// Source is where the offending statement was declared.
	Source hcl.Range
	// Statement is the offending statement rendered as keyword and argument.
	Statement string
	Message   string
	// Rule is the violated cardinality rule, when there is one.
	Rule string
	// Related holds other ranges involved: the first definition of a
	// duplicate, or every member of a cycle.
	Related []hcl.Range
	// Members names every statement in a cycle.
	Members []string
}

// New creates an error of the given kind.
func New(kind Kind, src hcl.Range, statement, format string, args ...any) *Error {
	return &Error{Kind: kind, Source: src, Statement: statement, Message: fmt.Sprintf(format, args...)}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(FormatRange(e.Source))
	b.WriteString(": ")
	b.WriteString(e.Kind.String())
	if e.Statement != "" {
		b.WriteString(": ")
		b.WriteString(e.Statement)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Rule != "" {
		b.WriteString(" (rule: ")
		b.WriteString(e.Rule)
		b.WriteString(")")
	}
	return b.String()
}

// Diagnostic converts e into an hcl diagnostic so it can be rendered with
// source snippets.
func (e *Error) Diagnostic() *hcl.Diagnostic {
	var detail strings.Builder
	detail.WriteString(e.Message)
	if e.Rule != "" {
		fmt.Fprintf(&detail, "\nViolated rule: %s.", e.Rule)
	}
	if len(e.Members) > 0 {
		fmt.Fprintf(&detail, "\nStatements involved: %s.", strings.Join(e.Members, ", "))
	}
	for _, r := range e.Related {
		fmt.Fprintf(&detail, "\nSee also %s.", FormatRange(r))
	}

	summary := e.Kind.String()
	if e.Statement != "" {
		summary += ": " + e.Statement
	}
	d := &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  summary,
		Detail:   detail.String(),
	}
	if e.Source.Filename != "" {
		subject := e.Source
		d.Subject = &subject
	}
	return d
}

// FormatRange renders a range as "file:line:column".
func FormatRange(r hcl.Range) string {
	name := r.Filename
	if name == "" {
		name = "<unknown>"
	}
	if r.Start.Line == 0 {
		return name
	}
	return fmt.Sprintf("%s:%d:%d", name, r.Start.Line, r.Start.Column)
}

// HasKind reports whether err is, or aggregates, an error of the kind.
func HasKind(err error, kind Kind) bool {
	return len(OfKind(err, kind)) > 0
}

// OfKind returns every error of the kind found in err.
func OfKind(err error, kind Kind) []*Error {
	var out []*Error
	var list List
	if errors.As(err, &list) {
		for _, e := range list {
			if e.Kind == kind {
				out = append(out, e)
			}
		}
		return out
	}
	var single *Error
	if errors.As(err, &single) && single.Kind == kind {
		out = append(out, single)
	}
	return out
}
