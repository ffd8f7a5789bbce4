package checker

import (
	"github.com/horizonanalytic/stratum/internal/ast"
	"github.com/horizonanalytic/stratum/internal/diagnostics"
	"github.com/horizonanalytic/stratum/internal/symbols"
	"github.com/horizonanalytic/stratum/internal/types"
)

// bodyPhase is phase 2 of §4.3.2: function bodies, top-level lets, and
// impl methods are typed against the signatures phase 1 registered.
func (c *Checker) bodyPhase(mod *ast.Module) {
	for _, item := range mod.Items {
		switch it := item.(type) {
		case *ast.FunctionItem:
			c.checkFunctionBody(it)
		case *ast.LetItem:
			valT := c.typeExpr(it.Value)
			declT := c.resolveTypeAnn(it.Type, nil)
			if it.Type != nil {
				valT = c.unify(declT, valT, it)
			}
			c.bindPattern(it.Pattern, valT)
		case *ast.ExprStmtItem:
			c.typeExpr(it.Expr)
		case *ast.ImplItem:
			for _, m := range it.Methods {
				c.checkFunctionBody(m)
			}
		}
	}
}

func (c *Checker) checkFunctionBody(it *ast.FunctionItem) {
	sig := c.table.Functions[it.Name]
	if sig == nil {
		sig = c.signatureOf(it)
	}
	c.pushScope(symbols.ScopeFunction)
	prevAsync := c.inAsync
	c.inAsync = it.IsAsync
	retType := sig.Ret
	if it.IsAsync {
		if f, ok := retType.(types.Future); ok {
			retType = f.Inner
		}
	}
	prevReturn := c.table.CurrentReturn
	c.table.CurrentReturn = retType

	for i, p := range it.Params {
		c.bindPattern(p.Pattern, sig.Params[i])
	}
	bodyT := c.typeExpr(it.Body)
	c.unify(retType, bodyT, it.Body)

	c.table.CurrentReturn = prevReturn
	c.inAsync = prevAsync
	c.popScope()
}

// bindPattern introduces the names bound by pat into the current scope
// with type t, destructuring tuple/struct/enum/or patterns structurally.
func (c *Checker) bindPattern(pat ast.Pattern, t types.Type) {
	switch p := pat.(type) {
	case *ast.IdentPattern:
		c.scope.Define(&symbols.Symbol{Name: p.Name, Kind: symbols.VariableSymbol, Type: t, Node: p})
	case *ast.WildcardPattern:
	case *ast.TuplePattern:
		if tup, ok := t.(types.Tuple); ok && len(tup.Elems) == len(p.Elems) {
			for i, e := range p.Elems {
				c.bindPattern(e, tup.Elems[i])
			}
			return
		}
		for _, e := range p.Elems {
			c.bindPattern(e, types.Error)
		}
	case *ast.StructPattern:
		sd, ok := c.table.Structs[p.Name]
		for _, f := range p.Fields {
			ft := types.Type(types.Error)
			if ok {
				for _, fd := range sd.Fields {
					if fd.Name == f.Name {
						ft = fd.Type
					}
				}
			}
			c.bindPattern(f.Pattern, ft)
		}
	case *ast.EnumVariantPattern:
		_, vd, found := c.table.FindVariantEnum(p.VariantName)
		if !found {
			for _, e := range p.Tuple {
				c.bindPattern(e, types.Error)
			}
			for _, f := range p.Fields {
				c.bindPattern(f.Pattern, types.Error)
			}
			return
		}
		for i, e := range p.Tuple {
			if i < len(vd.TupleTypes) {
				c.bindPattern(e, vd.TupleTypes[i])
			} else {
				c.bindPattern(e, types.Error)
			}
		}
		for _, f := range p.Fields {
			ft := types.Type(types.Error)
			for _, fd := range vd.StructTypes {
				if fd.Name == f.Name {
					ft = fd.Type
				}
			}
			c.bindPattern(f.Pattern, ft)
		}
	case *ast.OrPattern:
		for _, alt := range p.Alternatives {
			c.bindPattern(alt, t)
		}
	case *ast.LiteralPattern:
	}
}

// typeExpr types a single expression, reporting diagnostics as needed,
// and returns its resolved Type.
func (c *Checker) typeExpr(e ast.Expr) types.Type {
	if e == nil {
		return types.Unit
	}
	switch n := e.(type) {
	case *ast.IntLit:
		return types.Int
	case *ast.FloatLit:
		return types.Float
	case *ast.BoolLit:
		return types.Bool
	case *ast.NullLit:
		return types.Null
	case *ast.StringLit:
		for _, sub := range n.Exprs {
			if sub != nil {
				c.typeExpr(sub)
			}
		}
		return types.String
	case *ast.Ident:
		if sym, ok := c.scope.Resolve(n.Name); ok {
			if sym.NarrowedAs != nil {
				return sym.NarrowedAs
			}
			return sym.Type
		}
		if def, v, ok := c.lookupVariant(n.Name); ok {
			if v.TupleTypes != nil {
				c.report(diagnostics.New(diagnostics.KindWrongArgumentCount, n.Span(),
					"variant %q takes %d argument(s); call it like a function", n.Name, len(v.TupleTypes)))
				return types.Error
			}
			return types.Enum{ID: def.ID, Name: def.Name}
		}
		c.report(diagnostics.New(diagnostics.KindUndefinedVariable, n.Span(), "undefined variable %q", n.Name))
		return types.Error
	case *ast.ListLit:
		elem := c.freshVar()
		for _, el := range n.Elems {
			elem = c.unify(elem, c.typeExpr(el), el)
		}
		return types.List{Elem: elem}
	case *ast.MapLit:
		key, val := c.freshVar(), c.freshVar()
		for _, entry := range n.Entries {
			key = c.unify(key, c.typeExpr(entry.Key), e)
			val = c.unify(val, c.typeExpr(entry.Value), e)
		}
		return types.Map{Key: key, Value: val}
	case *ast.TupleLit:
		elems := make([]types.Type, len(n.Elems))
		for i, el := range n.Elems {
			elems[i] = c.typeExpr(el)
		}
		return types.Tuple{Elems: elems}
	case *ast.StructLit:
		return c.typeStructLit(n)
	case *ast.BinaryExpr:
		return c.typeBinary(n)
	case *ast.UnaryExpr:
		return c.typeUnary(n)
	case *ast.AssignExpr:
		return c.typeAssign(n)
	case *ast.CallExpr:
		return c.typeCall(n)
	case *ast.IndexExpr:
		return c.typeIndex(n)
	case *ast.FieldExpr:
		return c.typeField(n.Receiver, n.Field, n, false)
	case *ast.NullSafeFieldExpr:
		return c.typeField(n.Receiver, n.Field, n, true)
	case *ast.NullSafeIndexExpr:
		return c.typeNullSafeIndex(n)
	case *ast.CoalesceExpr:
		return c.typeCoalesce(n)
	case *ast.PipeExpr:
		return c.typeCall(&ast.CallExpr{ExprBase: n.ExprBase, Callee: n.Func, Args: []ast.Expr{n.Arg}})
	case *ast.RangeExpr:
		c.unify(types.Int, c.typeExpr(n.Start), n.Start)
		c.unify(types.Int, c.typeExpr(n.End), n.End)
		return types.Range
	case *ast.IfExpr:
		return c.typeIf(n)
	case *ast.WhileExpr:
		c.unify(types.Bool, c.typeExpr(n.Cond), n.Cond)
		c.table.LoopDepth++
		c.typeExpr(n.Body)
		c.table.LoopDepth--
		return types.Unit
	case *ast.ForExpr:
		return c.typeFor(n)
	case *ast.MatchExpr:
		return c.typeMatch(n)
	case *ast.TryExpr:
		return c.typeTry(n)
	case *ast.ThrowExpr:
		c.typeExpr(n.Value)
		return types.Never
	case *ast.AwaitExpr:
		if !c.inAsync {
			c.report(diagnostics.New(diagnostics.KindInvalidUnaryOp, n.Span(), "await is only valid inside an async function"))
		}
		vt := c.typeExpr(n.Value)
		if f, ok := vt.(types.Future); ok {
			return f.Inner
		}
		if vt == types.Error {
			return types.Error
		}
		c.report(diagnostics.New(diagnostics.KindTypeMismatch, n.Span(), "await requires a Future, got %s", vt))
		return types.Error
	case *ast.ReturnExpr:
		var vt types.Type = types.Unit
		if n.Value != nil {
			vt = c.typeExpr(n.Value)
		}
		if c.scope.EnclosingFunction() == nil {
			c.report(diagnostics.New(diagnostics.KindReturnOutsideFunction, n.Span(), "return outside function"))
		} else if c.table.CurrentReturn != nil {
			c.unify(c.table.CurrentReturn, vt, n)
		}
		return types.Never
	case *ast.BreakExpr:
		if c.table.LoopDepth == 0 {
			c.report(diagnostics.New(diagnostics.KindBreakOutsideLoop, n.Span(), "break outside loop"))
		}
		return types.Never
	case *ast.ContinueExpr:
		if c.table.LoopDepth == 0 {
			c.report(diagnostics.New(diagnostics.KindContinueOutsideLoop, n.Span(), "continue outside loop"))
		}
		return types.Never
	case *ast.FuncLit:
		return c.typeFuncLit(n)
	case *ast.LetExpr:
		valT := c.typeExpr(n.Value)
		if n.Type != nil {
			valT = c.unify(c.resolveTypeAnn(n.Type, nil), valT, n)
		}
		c.bindPattern(n.Pattern, valT)
		return types.Unit
	case *ast.BlockExpr:
		return c.typeBlock(n)
	}
	return types.Error
}

func (c *Checker) typeBlock(b *ast.BlockExpr) types.Type {
	c.pushScope(symbols.ScopeBlock)
	defer c.popScope()
	for _, s := range b.Stmts {
		c.typeExpr(s)
	}
	if b.Tail != nil {
		return c.typeExpr(b.Tail)
	}
	return types.Unit
}

func (c *Checker) typeFuncLit(n *ast.FuncLit) types.Type {
	c.pushScope(symbols.ScopeFunction)
	defer c.popScope()
	params := make([]types.Type, len(n.Params))
	for i, p := range n.Params {
		pt := c.resolveTypeAnn(p.Type, nil)
		params[i] = pt
		c.bindPattern(p.Pattern, pt)
	}
	ret := c.resolveTypeAnn(n.ReturnType, nil)
	prevReturn, prevAsync := c.table.CurrentReturn, c.inAsync
	c.table.CurrentReturn, c.inAsync = ret, n.IsAsync
	bodyT := c.typeExpr(n.Body)
	ret = c.unify(ret, bodyT, n.Body)
	c.table.CurrentReturn, c.inAsync = prevReturn, prevAsync
	fn := types.Type(types.Function{Params: params, Ret: ret})
	if n.IsAsync {
		fn = types.Function{Params: params, Ret: types.Future{Inner: ret}}
	}
	return fn
}

func (c *Checker) typeFor(n *ast.ForExpr) types.Type {
	iterT := c.typeExpr(n.Iter)
	var elem types.Type = types.Error
	switch {
	case iterT == types.Range:
		elem = types.Int
	default:
		if it, ok := iterT.(types.List); ok {
			elem = it.Elem
		} else if iterT != types.Error {
			c.report(diagnostics.New(diagnostics.KindNotIndexable, n.Iter.Span(), "type %s is not iterable", iterT))
		}
	}
	c.pushScope(symbols.ScopeBlock)
	c.bindPattern(n.Pattern, elem)
	c.table.LoopDepth++
	c.typeExpr(n.Body)
	c.table.LoopDepth--
	c.popScope()
	return types.Unit
}
