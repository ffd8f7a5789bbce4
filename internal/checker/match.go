package checker

import (
	"github.com/horizonanalytic/stratum/internal/ast"
	"github.com/horizonanalytic/stratum/internal/diagnostics"
	"github.com/horizonanalytic/stratum/internal/symbols"
	"github.com/horizonanalytic/stratum/internal/types"
)

// typeMatch types a match expression and checks exhaustiveness over
// enum variants per §4.3.2: arms seen so far must together cover every
// variant, wildcard/ident arms count as covering everything and must
// be last (a later arm is unreachable), and non-exhaustive coverage is
// a warning-level diagnostic.
func (c *Checker) typeMatch(n *ast.MatchExpr) types.Type {
	subjectT := c.resolve(c.typeExpr(n.Subject))
	enumDef, isEnum := subjectT.(types.Enum)
	var def *symbols.EnumDef
	if isEnum {
		def = c.table.Enums[enumDef.Name]
	}
	covered := map[string]bool{}
	catchAll := false

	var resultT types.Type
	for i, arm := range n.Arms {
		if catchAll {
			c.report(diagnostics.NewWarning(diagnostics.KindUnreachableMatchArm, arm.Body.Span(), "unreachable match arm"))
		}
		c.pushScope(symbols.ScopeBlock)
		c.bindPattern(arm.Pattern, subjectT)
		if arm.Guard == nil {
			markCovered(arm.Pattern, covered, &catchAll)
		}
		if arm.Guard != nil {
			c.unify(types.Bool, c.typeExpr(arm.Guard), arm.Guard)
			// A guarded arm never counts toward exhaustiveness: the
			// guard may reject the value at runtime.
		}
		bodyT := c.typeExpr(arm.Body)
		c.popScope()
		if i == 0 || resultT == nil {
			resultT = bodyT
			continue
		}
		if resultT == types.Never {
			resultT = bodyT
		} else if bodyT != types.Never {
			resultT = c.unify(resultT, bodyT, arm.Body)
		}
	}

	if isEnum && def != nil && !catchAll {
		for _, v := range def.Variants {
			if !covered[v.Name] {
				c.report(diagnostics.NewWarning(diagnostics.KindNonExhaustiveMatch, n.Span(),
					"non-exhaustive match: missing variant %q", v.Name))
			}
		}
	}
	if resultT == nil {
		return types.Unit
	}
	return resultT
}

func markCovered(pat ast.Pattern, covered map[string]bool, catchAll *bool) {
	switch p := pat.(type) {
	case *ast.WildcardPattern, *ast.IdentPattern:
		*catchAll = true
	case *ast.EnumVariantPattern:
		covered[p.VariantName] = true
	case *ast.OrPattern:
		for _, alt := range p.Alternatives {
			markCovered(alt, covered, catchAll)
		}
	}
}

// typeTry types `try { body } catch pat { handler } [finally { f }]`:
// the handler binds pat (typically the thrown value, checker treats it
// as Error-typed since the source spec leaves thrown-value typing
// dynamic) and its result must unify with the try body's result; the
// finally block is checked but never contributes to the expression's
// type (it runs for effect on both paths).
func (c *Checker) typeTry(n *ast.TryExpr) types.Type {
	bodyT := c.typeExpr(n.Body)
	c.pushScope(symbols.ScopeBlock)
	c.bindPattern(n.CatchPat, types.Error)
	handlerT := c.typeExpr(n.Handler)
	c.popScope()
	if n.Finally != nil {
		c.typeExpr(n.Finally)
	}
	if bodyT == types.Never {
		return handlerT
	}
	if handlerT == types.Never {
		return bodyT
	}
	return c.unify(bodyT, handlerT, n)
}
