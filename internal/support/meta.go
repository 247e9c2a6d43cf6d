package support

import (
	"strings"

	"github.com/specialistvlad/yangreactor/internal/reactor"
	"github.com/specialistvlad/yangreactor/internal/stmt"
	"github.com/specialistvlad/yangreactor/internal/yangerr"
)

func metaSupports() []reactor.StatementSupport {
	constraint := func() *reactor.SubstatementRules {
		return rules().Optional("error-message", "error-app-tag", "description", "reference")
	}
	return []reactor.StatementSupport{
		newSimple(define("organization", "text", nil), nil),
		newSimple(define("contact", "text", nil), nil),
		newSimple(define("description", "text", nil), nil),
		newSimple(define("reference", "text", nil), nil),
		newSimple(define("units", "name", nil), nil),
		newSimple(define("presence", "value", nil), nil),
		newSimple(define("default", "value", nil), nil),
		newSimple(define("error-message", "value", nil), nil),
		newSimple(define("error-app-tag", "value", nil), nil),
		newSimple(define("status", "value", nil), oneOf("current", "deprecated", "obsolete")),
		newSimple(define("ordered-by", "value", nil), oneOf("system", "user")),
		newSimple(define("mandatory", "value", nil), parseBool),
		newSimple(define("yin-element", "value", nil), parseBool),
		newSimple(define("min-elements", "value", nil), parseUint),
		newSimple(define("max-elements", "value", nil), parseMaxElements),
		newSimple(define("key", "value", nil), parseNameList),
		newSimple(define("unique", "tag", nil), parseUnique),
		newSimple(define("must", "condition", constraint()), nil),
		configSupport{reactor.BaseSupport{Def: define("config", "value", nil)}},
		whenSupport{reactor.BaseSupport{Def: define("when", "condition", rules().Optional(docStatements...))}},
	}
}

type configSupport struct{ reactor.BaseSupport }

func (configSupport) ParseArgument(_ *reactor.Context, raw string) (any, error) { return parseBool(raw) }

// Finalize rejects config true below a node whose config is false.
func (configSupport) Finalize(c *reactor.Context) error {
	if v, _ := c.Argument().(bool); !v {
		return nil
	}
	node := c.Parent()
	if !node.IsSchemaNode() || !node.Instantiated() {
		return nil
	}
	for p := node.Parent(); p != nil && !p.IsRoot(); p = p.Parent() {
		if d := p.Definition(); d != nil && d.NoConfig {
			return nil
		}
		if p.IsSchemaNode() {
			if !p.Config() {
				return c.Error(yangerr.InvalidSubstatement, "config true is not allowed below %s, which is config false", p)
			}
			return nil
		}
	}
	return nil
}

type whenSupport struct{ reactor.BaseSupport }

func (whenSupport) CopyPolicy(stmt.CopyType) reactor.CopyPolicy { return reactor.CopyRevalidate }

// Revalidate checks that the condition's leading parent steps still stay
// inside the data tree once the node was moved by an augment.
func (whenSupport) Revalidate(c *reactor.Context) error {
	holder := c.Parent()
	if !holder.IsSchemaNode() {
		return nil
	}
	depth := 1
	for p := holder.DataParent(); p != nil; p = p.DataParent() {
		depth++
	}
	if ups := leadingParentSteps(c.RawArgument()); ups > depth {
		return c.Error(yangerr.InvalidSubstatement,
			"when condition climbs %d levels but %s is only %d levels deep after augmentation", ups, holder, depth)
	}
	return nil
}

func leadingParentSteps(expr string) int {
	s := strings.TrimSpace(expr)
	s = strings.TrimPrefix(s, "current()/")
	n := 0
	for strings.HasPrefix(s, "../") {
		n++
		s = strings.TrimPrefix(s, "../")
	}
	if s == ".." {
		n++
	}
	return n
}
