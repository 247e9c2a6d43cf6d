package reactor

import (
	"github.com/specialistvlad/yangreactor/internal/effective"
	"github.com/specialistvlad/yangreactor/internal/qname"
	"github.com/specialistvlad/yangreactor/internal/stmt"
)

// StatementSupport defines how one statement keyword is parsed, validated,
// linked and turned into its effective form. Hooks run once per context, in
// phase order, before the context's pending actions for that phase.
type StatementSupport interface {
	Definition() *Definition
	// ParseArgument converts the raw argument. A returned error is reported
	// as an argument syntax error on the statement.
	ParseArgument(c *Context, raw string) (any, error)
	OnStatementAdded(c *Context)
	OnLinkageDeclared(c *Context) error
	OnStatementDefinitionDeclared(c *Context) error
	OnFullDefinitionDeclared(c *Context) error
	// CopyPolicy tells how the statement behaves when its parent is copied.
	CopyPolicy(t stmt.CopyType) CopyPolicy
	CreateDeclared(c *Context, subs []*effective.Declared) *effective.Declared
	CreateEffective(c *Context, m effective.Meta, b EffectiveBuilder) (effective.Statement, error)
}

// SupportLookup finds the support serving a keyword.
type SupportLookup interface {
	Lookup(keyword qname.QName) (StatementSupport, bool)
}

// EffectiveBuilder gives supports access to other effective statements while
// they build their own.
type EffectiveBuilder interface {
	// EffectiveOf returns the effective form of c, building it first if
	// needed. It returns nil for pruned statements.
	EffectiveOf(c *Context) effective.Statement
	// NodeInfo returns the name, path and config flag of a schema node.
	NodeInfo(c *Context) effective.NodeInfo
}

// SchemaKind classifies how a statement takes part in the schema tree.
type SchemaKind int

const (
	// NotSchema statements are not schema nodes.
	NotSchema SchemaKind = iota
	// DataNode statements are schema nodes that also appear in the data
	// tree, or operations and their input and output.
	DataNode
	// SchemaOnly statements (choice, case) are named in schema node
	// identifiers but are transparent in data paths.
	SchemaOnly
)

// Definition describes a statement keyword.
type Definition struct {
	Keyword qname.QName
	// ArgumentName is empty when the statement takes no argument.
	ArgumentName string
	// ArgumentOptional disables the argument presence check.
	ArgumentOptional bool
	// Rules are the allowed substatements; nil disables validation.
	Rules  *SubstatementRules
	Schema SchemaKind
	// Template marks statements whose descendants are definitions to be
	// instantiated elsewhere rather than nodes of the schema tree.
	Template bool
	// NoConfig marks statements below which config does not apply.
	NoConfig bool
}

// CopyPolicy is how a statement is treated when it is copied along with its
// parent.
type CopyPolicy int

const (
	// CopyDeclared copies the statement verbatim.
	CopyDeclared CopyPolicy = iota
	// CopyIgnore leaves the statement out of the copy.
	CopyIgnore
	// CopyReject fails the copy.
	CopyReject
	// CopyRevalidate copies the statement and, for augmentation copies,
	// checks it again in its new location.
	CopyRevalidate
)

func (p CopyPolicy) String() string {
	switch p {
	case CopyDeclared:
		return "declared"
	case CopyIgnore:
		return "ignore"
	case CopyReject:
		return "reject"
	case CopyRevalidate:
		return "revalidate"
	default:
		return "unknown"
	}
}

// Revalidator is implemented by supports with a CopyRevalidate policy.
type Revalidator interface {
	Revalidate(c *Context) error
}

// Finalizer is implemented by supports that need the whole model resolved
// before they can check a statement. Finalize runs after EFFECTIVE_MODEL on
// every statement that was not pruned.
type Finalizer interface {
	Finalize(c *Context) error
}

// PathProvider is implemented by non-schema statements that still contribute
// to the schema path of their descendants, such as grouping and augment.
type PathProvider interface {
	SchemaPathOf(c *Context) effective.SchemaPath
}

// BaseSupport implements StatementSupport with no-op hooks, the raw argument
// and a generic effective statement. Supports embed it and override what
// they need.
type BaseSupport struct {
	Def *Definition
}

func (s BaseSupport) Definition() *Definition                            { return s.Def }
func (s BaseSupport) ParseArgument(_ *Context, raw string) (any, error)  { return raw, nil }
func (s BaseSupport) OnStatementAdded(*Context)                          {}
func (s BaseSupport) OnLinkageDeclared(*Context) error                   { return nil }
func (s BaseSupport) OnStatementDefinitionDeclared(*Context) error       { return nil }
func (s BaseSupport) OnFullDefinitionDeclared(*Context) error            { return nil }
func (s BaseSupport) CopyPolicy(stmt.CopyType) CopyPolicy                { return CopyDeclared }

func (s BaseSupport) CreateDeclared(c *Context, subs []*effective.Declared) *effective.Declared {
	return effective.NewDeclared(c.Keyword(), c.RawArgument(), c.Argument(), c.Source(), subs)
}

func (s BaseSupport) CreateEffective(_ *Context, m effective.Meta, _ EffectiveBuilder) (effective.Statement, error) {
	return effective.NewGeneric(m), nil
}
