package yangpath

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/yangreactor/internal/qname"
)

// Path is a parsed leafref path expression.
type Path struct {
	Raw      string
	Absolute bool
	// Up counts the leading "../" steps of a relative path.
	Up    int
	Steps []PathStep
}

// PathStep is one node test with its key predicates.
type PathStep struct {
	Name       qname.Ref
	Predicates []Predicate
}

// Predicate is "[key = current()/../steps]".
type Predicate struct {
	Key   qname.Ref
	Up    int
	Steps []qname.Ref
}

// ParseLeafrefPath parses the argument of a "path" statement.
func ParseLeafrefPath(s string) (Path, error) {
	p := &pathParser{in: strings.TrimSpace(s)}
	path, err := p.parse()
	if err != nil {
		return Path{}, fmt.Errorf("path %q: %w", s, err)
	}
	path.Raw = strings.TrimSpace(s)
	return path, nil
}

func (p Path) String() string {
	return p.Raw
}

type pathParser struct {
	in  string
	pos int
}

func (p *pathParser) parse() (Path, error) {
	var path Path
	if p.in == "" {
		return path, fmt.Errorf("empty path")
	}
	if strings.HasPrefix(p.in, "deref(") {
		return path, fmt.Errorf("deref() is not supported")
	}
	if p.peek() == '/' {
		path.Absolute = true
	} else {
		for p.consume("../") {
			path.Up++
		}
		if path.Up == 0 {
			return path, fmt.Errorf("relative path must start with \"../\"")
		}
	}
	for {
		if path.Absolute || len(path.Steps) > 0 {
			if !p.consume("/") {
				break
			}
		}
		p.skipSpace()
		name, err := p.ident()
		if err != nil {
			return path, err
		}
		step := PathStep{Name: name}
		for {
			p.skipSpace()
			if p.peek() != '[' {
				break
			}
			pred, err := p.predicate()
			if err != nil {
				return path, err
			}
			step.Predicates = append(step.Predicates, pred)
		}
		path.Steps = append(path.Steps, step)
		if p.pos >= len(p.in) {
			break
		}
	}
	if p.pos != len(p.in) {
		return path, fmt.Errorf("unexpected %q at offset %d", p.in[p.pos:], p.pos)
	}
	if len(path.Steps) == 0 {
		return path, fmt.Errorf("path has no node steps")
	}
	return path, nil
}

func (p *pathParser) predicate() (Predicate, error) {
	var pred Predicate
	p.pos++ // '['
	p.skipSpace()
	key, err := p.ident()
	if err != nil {
		return pred, err
	}
	pred.Key = key
	p.skipSpace()
	if !p.consume("=") {
		return pred, fmt.Errorf("expected '=' in predicate at offset %d", p.pos)
	}
	p.skipSpace()
	if !p.consume("current()") {
		return pred, fmt.Errorf("predicate must compare against current()")
	}
	p.skipSpace()
	if !p.consume("/") {
		return pred, fmt.Errorf("expected '/' after current()")
	}
	p.skipSpace()
	for p.consume("../") {
		pred.Up++
		p.skipSpace()
	}
	if pred.Up == 0 {
		return pred, fmt.Errorf("predicate path must start with \"../\"")
	}
	for {
		p.skipSpace()
		step, err := p.ident()
		if err != nil {
			return pred, err
		}
		pred.Steps = append(pred.Steps, step)
		p.skipSpace()
		if !p.consume("/") {
			break
		}
	}
	if !p.consume("]") {
		return pred, fmt.Errorf("unterminated predicate at offset %d", p.pos)
	}
	return pred, nil
}

func (p *pathParser) ident() (qname.Ref, error) {
	start := p.pos
	for p.pos < len(p.in) {
		c := p.in[p.pos]
		if c == '/' || c == '[' || c == ']' || c == '=' || c == ' ' || c == '\t' || c == '\n' {
			break
		}
		p.pos++
	}
	if start == p.pos {
		return qname.Ref{}, fmt.Errorf("expected identifier at offset %d", start)
	}
	return qname.ParseRef(p.in[start:p.pos])
}

func (p *pathParser) peek() byte {
	if p.pos >= len(p.in) {
		return 0
	}
	return p.in[p.pos]
}

func (p *pathParser) consume(s string) bool {
	if strings.HasPrefix(p.in[p.pos:], s) {
		p.pos += len(s)
		return true
	}
	return false
}

func (p *pathParser) skipSpace() {
	for p.pos < len(p.in) {
		switch p.in[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}
