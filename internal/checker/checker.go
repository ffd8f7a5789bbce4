// Package checker implements the two-phase Hindley-Milner type checker:
// declarations are registered first, then function/let bodies are
// walked and typed, producing diagnostics rather than panicking.
package checker

import (
	"github.com/horizonanalytic/stratum/internal/ast"
	"github.com/horizonanalytic/stratum/internal/diagnostics"
	"github.com/horizonanalytic/stratum/internal/symbols"
	"github.com/horizonanalytic/stratum/internal/types"
)

// Checker walks a parsed Module and types it, accumulating diagnostics.
type Checker struct {
	table   *symbols.Table
	scope   *symbols.Scope
	subst   types.Subst
	diags   []diagnostics.Diagnostic
	nextVar int
	inAsync bool
}

// New creates a Checker with an empty global scope.
func New() *Checker {
	return &Checker{
		table: symbols.NewTable(),
		scope: symbols.NewScope(symbols.ScopeGlobal, nil),
		subst: types.Subst{},
	}
}

// Check runs both phases over mod and returns all diagnostics collected
// (Phase 2 still runs even after Phase 1 errors, substituting Error
// where a declaration could not be resolved).
func (c *Checker) Check(mod *ast.Module) []diagnostics.Diagnostic {
	c.declarePhase(mod)
	c.bodyPhase(mod)
	return c.diags
}

func (c *Checker) freshVar() types.Type {
	c.nextVar++
	return types.TypeVar{ID: c.nextVar}
}

func (c *Checker) report(d diagnostics.Diagnostic) {
	c.diags = append(c.diags, d)
}

// unify attempts to unify a and b, reporting a CannotUnify (or
// OccursCheck) diagnostic at span on failure, and returns the resolved
// type to use going forward (Error on failure, so checking can
// continue without cascading spurious diagnostics).
func (c *Checker) unify(a, b types.Type, span ast.Node) types.Type {
	s, err := types.Unify(c.subst, a, b)
	if err != nil {
		if ue, ok := err.(*types.UnifyError); ok && ue.Reason != "" {
			c.report(diagnostics.New(diagnostics.KindOccursCheck, span.Span(),
				"infinite type: %s occurs in %s", ue.Left, ue.Right))
		} else {
			c.report(diagnostics.New(diagnostics.KindCannotUnify, span.Span(),
				"cannot unify %s with %s", a, b))
		}
		return types.Error
	}
	c.subst = s
	return types.Apply(c.subst, a)
}

// resolve fully applies the current substitution. A result that is
// itself a free type variable defaults to Error per §4.3.1; free type
// variables nested inside a compound type are left as they are.
func (c *Checker) resolve(t types.Type) types.Type {
	r := types.Apply(c.subst, t)
	if _, ok := r.(types.TypeVar); ok {
		return types.Error
	}
	return r
}

func (c *Checker) pushScope(kind symbols.ScopeKind) {
	c.scope = symbols.NewScope(kind, c.scope)
}

func (c *Checker) popScope() {
	c.scope = c.scope.Parent
}

// lookupVariant finds the enum declaring a variant named name, if any.
// Variant constructor names share the module's flat namespace the same
// way the parser's bare-name grammar does (see internal/parser/patterns.go).
func (c *Checker) lookupVariant(name string) (*symbols.EnumDef, symbols.EnumVariantDef, bool) {
	for _, def := range c.table.Enums {
		for _, v := range def.Variants {
			if v.Name == name {
				return def, v, true
			}
		}
	}
	return nil, symbols.EnumVariantDef{}, false
}
