package yangpath

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/specialistvlad/yangreactor/internal/qname"
)

// FeatureExpr is a parsed if-feature expression.
type FeatureExpr interface {
	// Eval evaluates the expression given the support state of each feature.
	Eval(supported func(qname.Ref) bool) bool
	// Refs lists every feature referenced, in source order.
	Refs() []qname.Ref
	String() string
}

type featureRef struct{ ref qname.Ref }

func (f featureRef) Eval(s func(qname.Ref) bool) bool { return s(f.ref) }
func (f featureRef) Refs() []qname.Ref { return []qname.Ref{f.ref} }
func (f featureRef) String() string { return f.ref.String() }

type notExpr struct{ inner FeatureExpr }

func (n notExpr) Eval(s func(qname.Ref) bool) bool { return !n.inner.Eval(s) }
func (n notExpr) Refs() []qname.Ref { return n.inner.Refs() }
func (n notExpr) String() string { return "not " + n.inner.String() }

type binaryExpr struct {
	and         bool
	left, right FeatureExpr
}

func (b binaryExpr) Eval(s func(qname.Ref) bool) bool {
	if b.and {
		return b.left.Eval(s) && b.right.Eval(s)
	}
	return b.left.Eval(s) || b.right.Eval(s)
}

func (b binaryExpr) Refs() []qname.Ref {
	return append(b.left.Refs(), b.right.Refs()...)
}

func (b binaryExpr) String() string {
	op := " or "
	if b.and {
		op = " and "
	}
	return "(" + b.left.String() + op + b.right.String() + ")"
}

// ParseFeatureExpr parses an if-feature argument:
//
//	expr   = term *("or" term)
//	term   = factor *("and" factor)
//	factor = "not" factor / "(" expr ")" / identifier-ref
func ParseFeatureExpr(s string) (FeatureExpr, error) {
	toks, err := tokenizeFeatureExpr(s)
	if err != nil {
		return nil, fmt.Errorf("if-feature %q: %w", s, err)
	}
	p := &featureParser{toks: toks}
	expr, err := p.expr()
	if err != nil {
		return nil, fmt.Errorf("if-feature %q: %w", s, err)
	}
	if p.pos != len(p.toks) {
		return nil, fmt.Errorf("if-feature %q: unexpected %q", s, p.toks[p.pos])
	}
	return expr, nil
}

func tokenizeFeatureExpr(s string) ([]string, error) {
	var toks []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			toks = append(toks, cur.String())
			cur.Reset()
		}
	}
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			flush()
		case r == '(' || r == ')':
			flush()
			toks = append(toks, string(r))
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	if len(toks) == 0 {
		return nil, fmt.Errorf("empty expression")
	}
	return toks, nil
}

type featureParser struct {
	toks []string
	pos  int
}

func (p *featureParser) next() string {
	if p.pos >= len(p.toks) {
		return ""
	}
	return p.toks[p.pos]
}

func (p *featureParser) expr() (FeatureExpr, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for p.next() == "or" {
		p.pos++
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = binaryExpr{left: left, right: right}
	}
	return left, nil
}

func (p *featureParser) term() (FeatureExpr, error) {
	left, err := p.factor()
	if err != nil {
		return nil, err
	}
	for p.next() == "and" {
		p.pos++
		right, err := p.factor()
		if err != nil {
			return nil, err
		}
		left = binaryExpr{and: true, left: left, right: right}
	}
	return left, nil
}

func (p *featureParser) factor() (FeatureExpr, error) {
	tok := p.next()
	switch tok {
	case "":
		return nil, fmt.Errorf("unexpected end of expression")
	case "not":
		p.pos++
		inner, err := p.factor()
		if err != nil {
			return nil, err
		}
		return notExpr{inner: inner}, nil
	case "(":
		p.pos++
		inner, err := p.expr()
		if err != nil {
			return nil, err
		}
		if p.next() != ")" {
			return nil, fmt.Errorf("missing ')'")
		}
		p.pos++
		return inner, nil
	case ")", "and", "or":
		return nil, fmt.Errorf("unexpected %q", tok)
	}
	p.pos++
	ref, err := qname.ParseRef(tok)
	if err != nil {
		return nil, err
	}
	return featureRef{ref: ref}, nil
}
