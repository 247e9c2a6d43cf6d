package reactor

import (
	"github.com/specialistvlad/yangreactor/internal/effective"
)

var extensionKey = NewKey[*Context]("extension definition")

// unrecognizedSupport serves instances of extensions that are defined in a
// loaded module but have no dedicated support. The argument is kept raw and
// anything may appear inside.
type unrecognizedSupport struct {
	BaseSupport
}

var unrecognized StatementSupport = unrecognizedSupport{
	BaseSupport: BaseSupport{Def: &Definition{ArgumentOptional: true}},
}

func (unrecognizedSupport) CreateEffective(c *Context, m effective.Meta, b EffectiveBuilder) (effective.Statement, error) {
	var ext *effective.Extension
	if def, ok := extensionKey.Get(c); ok {
		ext, _ = b.EffectiveOf(def).(*effective.Extension)
	}
	return effective.NewUnknown(m, ext), nil
}

func (c *Context) isUnrecognized() bool {
	_, ok := c.support.(unrecognizedSupport)
	return ok
}

// Extension returns the extension definition an extension instance refers
// to.
func (c *Context) Extension() (*Context, bool) {
	return extensionKey.Get(c)
}
