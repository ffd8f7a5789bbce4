package checker

import (
	"github.com/horizonanalytic/stratum/internal/ast"
	"github.com/horizonanalytic/stratum/internal/diagnostics"
	"github.com/horizonanalytic/stratum/internal/symbols"
	"github.com/horizonanalytic/stratum/internal/token"
	"github.com/horizonanalytic/stratum/internal/types"
)

func (c *Checker) typeStructLit(n *ast.StructLit) types.Type {
	sd, ok := c.table.Structs[n.Name]
	if !ok {
		c.report(diagnostics.New(diagnostics.KindUndefinedStruct, n.Span(), "undefined struct %q", n.Name))
		for _, f := range n.Fields {
			c.typeExpr(f.Value)
		}
		return types.Error
	}
	given := map[string]bool{}
	for _, f := range n.Fields {
		fname := f.Key.(*ast.Ident).Name
		if given[fname] {
			c.report(diagnostics.New(diagnostics.KindDuplicateField, n.Span(), "duplicate field %q", fname))
			continue
		}
		given[fname] = true
		valT := c.typeExpr(f.Value)
		found := false
		for _, fd := range sd.Fields {
			if fd.Name == fname {
				found = true
				c.unify(fd.Type, valT, f.Value)
			}
		}
		if !found {
			c.report(diagnostics.New(diagnostics.KindExtraField, n.Span(), "struct %q has no field %q", n.Name, fname))
		}
	}
	for _, fd := range sd.Fields {
		if !given[fd.Name] {
			c.report(diagnostics.New(diagnostics.KindMissingField, n.Span(), "missing field %q in struct literal %q", fd.Name, n.Name))
		}
	}
	args := make([]types.Type, len(sd.TypeParams))
	for i := range args {
		args[i] = c.freshVar()
	}
	return types.Struct{ID: sd.ID, Name: sd.Name, TypeArgs: args}
}

// typeBinary implements §4.3.2's arithmetic/comparison/logical rules.
func (c *Checker) typeBinary(n *ast.BinaryExpr) types.Type {
	lt := c.typeExpr(n.Left)
	rt := c.typeExpr(n.Right)
	switch n.Op {
	case token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT:
		if lt == types.String && rt == types.String && n.Op == token.PLUS {
			return types.String
		}
		if isNumeric(lt) && isNumeric(rt) {
			return c.unify(lt, rt, n)
		}
		if lt == types.Error || rt == types.Error {
			return types.Error
		}
		c.report(diagnostics.New(diagnostics.KindInvalidBinaryOp, n.Span(),
			"invalid operand types for %s: %s, %s", n.Op, lt, rt))
		return types.Error
	case token.EQ, token.NE:
		c.unify(lt, rt, n)
		return types.Bool
	case token.LT, token.LE, token.GT, token.GE:
		if !isOrderable(lt) || !isOrderable(rt) {
			if lt != types.Error && rt != types.Error {
				c.report(diagnostics.New(diagnostics.KindInvalidBinaryOp, n.Span(),
					"operands of %s must be numeric or string", n.Op))
			}
			return types.Error
		}
		c.unify(lt, rt, n)
		return types.Bool
	case token.AND, token.OR:
		c.unify(types.Bool, lt, n.Left)
		c.unify(types.Bool, rt, n.Right)
		return types.Bool
	}
	return types.Error
}

func isNumeric(t types.Type) bool { return t == types.Int || t == types.Float }
func isOrderable(t types.Type) bool {
	return t == types.Int || t == types.Float || t == types.String
}

func (c *Checker) typeUnary(n *ast.UnaryExpr) types.Type {
	ot := c.typeExpr(n.Operand)
	switch n.Op {
	case token.MINUS:
		if isNumeric(ot) || ot == types.Error {
			return ot
		}
		c.report(diagnostics.New(diagnostics.KindInvalidUnaryOp, n.Span(), "unary - requires Int or Float, got %s", ot))
		return types.Error
	case token.NOT:
		c.unify(types.Bool, ot, n.Operand)
		return types.Bool
	}
	return types.Error
}

func (c *Checker) typeAssign(n *ast.AssignExpr) types.Type {
	switch n.Target.(type) {
	case *ast.Ident, *ast.FieldExpr, *ast.IndexExpr:
	default:
		c.report(diagnostics.New(diagnostics.KindInvalidAssignmentTarget, n.Span(), "invalid assignment target"))
	}
	tt := c.typeExpr(n.Target)
	vt := c.typeExpr(n.Value)
	c.unify(tt, vt, n)
	return types.Unit
}

func (c *Checker) typeCall(n *ast.CallExpr) types.Type {
	if id, ok := n.Callee.(*ast.Ident); ok {
		if _, ok := c.scope.Resolve(id.Name); !ok {
			if def, v, ok := c.lookupVariant(id.Name); ok && v.TupleTypes != nil {
				return c.typeVariantConstruct(def, v, n)
			}
		}
	}
	ft := c.resolve(c.typeExpr(n.Callee))
	fn, ok := ft.(types.Function)
	if !ok {
		if ft != types.Error {
			c.report(diagnostics.New(diagnostics.KindNotCallable, n.Span(), "cannot call value of type %s", ft))
		}
		for _, a := range n.Args {
			c.typeExpr(a)
		}
		return types.Error
	}
	if len(n.Args) != len(fn.Params) {
		c.report(diagnostics.New(diagnostics.KindWrongArgumentCount, n.Span(),
			"expected %d arguments, got %d", len(fn.Params), len(n.Args)))
	}
	for i, a := range n.Args {
		at := c.typeExpr(a)
		if i < len(fn.Params) {
			c.unify(fn.Params[i], at, a)
		}
	}
	return c.resolve(fn.Ret)
}

// typeVariantConstruct types a tuple-shaped enum variant construction
// call (e.g. `Some(42)`), unifying each argument against the variant's
// declared tuple element types and yielding the owning enum's type.
func (c *Checker) typeVariantConstruct(def *symbols.EnumDef, v symbols.EnumVariantDef, n *ast.CallExpr) types.Type {
	if len(n.Args) != len(v.TupleTypes) {
		c.report(diagnostics.New(diagnostics.KindWrongArgumentCount, n.Span(),
			"variant %q expects %d argument(s), got %d", v.Name, len(v.TupleTypes), len(n.Args)))
	}
	for i, a := range n.Args {
		at := c.typeExpr(a)
		if i < len(v.TupleTypes) {
			c.unify(v.TupleTypes[i], at, a)
		}
	}
	return types.Enum{ID: def.ID, Name: def.Name}
}

func (c *Checker) typeIndex(n *ast.IndexExpr) types.Type {
	rt := c.resolve(c.typeExpr(n.Receiver))
	it := c.typeExpr(n.Index)
	switch recv := rt.(type) {
	case types.List:
		c.unify(types.Int, it, n.Index)
		return recv.Elem
	case types.Map:
		c.unify(recv.Key, it, n.Index)
		return types.MakeNullable(recv.Value)
	default:
		if rt != types.Error {
			c.report(diagnostics.New(diagnostics.KindNotIndexable, n.Span(), "type %s is not indexable", rt))
		}
		return types.Error
	}
}

func (c *Checker) typeField(recv ast.Expr, field string, n ast.Node, nullSafe bool) types.Type {
	rt := c.resolve(c.typeExpr(recv))
	inner := rt
	wasNullable := false
	if nb, ok := rt.(types.Nullable); ok {
		inner = nb.Inner
		wasNullable = true
	}
	if nullSafe && !wasNullable && inner != types.Error {
		c.report(diagnostics.NewWarning(diagnostics.KindUnnecessaryNullSafe, n.Span(), "receiver is not nullable; ?. is unnecessary"))
	}
	if !nullSafe && wasNullable {
		c.report(diagnostics.New(diagnostics.KindNullabilityMismatch, n.Span(), "receiver is nullable; use ?. to access %q", field))
	}
	sd, ok := inner.(types.Struct)
	if !ok {
		if inner != types.Error {
			c.report(diagnostics.New(diagnostics.KindNotIndexable, n.Span(), "type %s has no fields", inner))
		}
		return types.Error
	}
	def, ok := c.table.Structs[sd.Name]
	if !ok {
		return types.Error
	}
	for _, fd := range def.Fields {
		if fd.Name == field {
			if nullSafe {
				return types.MakeNullable(fd.Type)
			}
			return fd.Type
		}
	}
	c.report(diagnostics.New(diagnostics.KindNoSuchField, n.Span(), "struct %q has no field %q", sd.Name, field))
	return types.Error
}

func (c *Checker) typeNullSafeIndex(n *ast.NullSafeIndexExpr) types.Type {
	rt := c.resolve(c.typeExpr(n.Receiver))
	inner := rt
	if nb, ok := rt.(types.Nullable); ok {
		inner = nb.Inner
	} else if inner != types.Error {
		c.report(diagnostics.NewWarning(diagnostics.KindUnnecessaryNullSafe, n.Span(), "receiver is not nullable; ?.[] is unnecessary"))
	}
	it := c.typeExpr(n.Index)
	switch recv := inner.(type) {
	case types.List:
		c.unify(types.Int, it, n.Index)
		return types.MakeNullable(recv.Elem)
	case types.Map:
		c.unify(recv.Key, it, n.Index)
		return types.MakeNullable(recv.Value)
	default:
		if inner != types.Error {
			c.report(diagnostics.New(diagnostics.KindNotIndexable, n.Span(), "type %s is not indexable", inner))
		}
		return types.Error
	}
}

// typeCoalesce implements `Nullable<T> ?? T -> T` and
// `Nullable<T> ?? Nullable<T> -> Nullable<T>`.
func (c *Checker) typeCoalesce(n *ast.CoalesceExpr) types.Type {
	lt := c.resolve(c.typeExpr(n.Left))
	rt := c.typeExpr(n.Right)
	nb, ok := lt.(types.Nullable)
	if !ok {
		if lt != types.Error {
			c.report(diagnostics.New(diagnostics.KindNullabilityMismatch, n.Span(), "left side of ?? must be nullable, got %s", lt))
		}
		return rt
	}
	if rnb, ok := rt.(types.Nullable); ok {
		c.unify(nb.Inner, rnb.Inner, n)
		return types.MakeNullable(nb.Inner)
	}
	return c.unify(nb.Inner, rt, n)
}

func (c *Checker) typeIf(n *ast.IfExpr) types.Type {
	c.unify(types.Bool, c.typeExpr(n.Cond), n.Cond)

	thenSym, elseSym, narrowName := c.narrowTarget(n.Cond)

	thenT := c.withNarrow(narrowName, thenSym, func() types.Type { return c.typeExpr(n.Then) })
	if n.Else == nil {
		return types.Unit
	}
	elseT := c.withNarrow(narrowName, elseSym, func() types.Type { return c.typeExpr(n.Else) })
	if thenT == types.Never {
		return elseT
	}
	if elseT == types.Never {
		return thenT
	}
	if _, err := types.Unify(c.subst, thenT, elseT); err != nil {
		c.report(diagnostics.New(diagnostics.KindIncompatibleBranches, n.Span(),
			"if branches have incompatible types: %s vs %s", thenT, elseT))
		return types.Error
	}
	return c.unify(thenT, elseT, n)
}
