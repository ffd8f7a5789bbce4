package checker

import (
	"github.com/horizonanalytic/stratum/internal/ast"
	"github.com/horizonanalytic/stratum/internal/symbols"
	"github.com/horizonanalytic/stratum/internal/token"
	"github.com/horizonanalytic/stratum/internal/types"
)

// narrowTarget inspects an `if` condition of the form `x != null` or
// `x == null`, where x is a variable, and returns the variable's name
// plus its then/else narrowed types. Returns an empty name if cond is
// not one of those two forms; `is` type tests are not recognized.
func (c *Checker) narrowTarget(cond ast.Expr) (thenType, elseType types.Type, name string) {
	bin, ok := cond.(*ast.BinaryExpr)
	if !ok {
		return nil, nil, ""
	}
	ident, ok := bin.Left.(*ast.Ident)
	if !ok {
		return nil, nil, ""
	}
	if _, isNull := bin.Right.(*ast.NullLit); !isNull {
		return nil, nil, ""
	}
	sym, found := c.scope.Resolve(ident.Name)
	if !found {
		return nil, nil, ""
	}
	nb, ok := sym.Type.(types.Nullable)
	if !ok {
		return nil, nil, ""
	}
	switch bin.Op {
	case token.NE:
		return nb.Inner, types.Null, ident.Name
	case token.EQ:
		return types.Null, nb.Inner, ident.Name
	}
	return nil, nil, ""
}

// withNarrow runs fn in a fresh block scope with name narrowed to
// narrowedType for its duration (no-op if name == "").
func (c *Checker) withNarrow(name string, narrowedType types.Type, fn func() types.Type) types.Type {
	if name == "" {
		return fn()
	}
	c.pushScope(symbols.ScopeBlock)
	if sym, ok := c.scope.Resolve(name); ok {
		shadow := *sym
		shadow.NarrowedAs = narrowedType
		c.scope.Define(&shadow)
	}
	res := fn()
	c.popScope()
	return res
}
