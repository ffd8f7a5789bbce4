package vm

import (
	"strconv"

	"github.com/horizonanalytic/stratum/internal/ast"
	"github.com/horizonanalytic/stratum/internal/token"
)

// compileBlockBody compiles a block's statements followed by its tail
// expression (left on the stack as the block's value; Unit — pushed as
// Null — if there is no tail), inside the caller's already-open scope.
func (c *Compiler) compileBlockBody(b *ast.BlockExpr) {
	for _, s := range b.Stmts {
		c.compileStmt(s)
	}
	if b.Tail != nil {
		c.compileExpr(b.Tail)
	} else {
		c.emit(OpNull, b.Span().Line)
	}
}

// compileStmt compiles one block-level statement for effect, discarding
// any value it produces (let-bindings don't produce one).
func (c *Compiler) compileStmt(e ast.Expr) {
	switch n := e.(type) {
	case *ast.LetExpr:
		c.compileLetBinding(n.Pattern, n.Value, n.Span().Line, false)
	default:
		c.compileExpr(e)
		c.emit(OpPop, e.Span().Line)
	}
}

// compileLetBinding compiles value and binds it to pattern: as a
// global DefineGlobal at module scope, otherwise as a new local slot
// (destructuring patterns bind through a temporary local plus
// GetField/GetIndex extraction per §4.5.1).
func (c *Compiler) compileLetBinding(pat ast.Pattern, value ast.Expr, line int, global bool) {
	c.compileExpr(value)
	if global {
		if id, ok := pat.(*ast.IdentPattern); ok {
			idx := c.chunk().InternString(id.Name)
			c.emit(OpDefineGlobal, line)
			c.emitU16(idx, line)
			c.cur.globals[id.Name] = true
			return
		}
	}
	c.bindPatternFromStack(pat, line)
}

// bindPatternFromStack consumes the value on top of the stack and
// binds pat's names to new locals, recursing into tuple/struct/enum
// patterns via a temporary local holding the scrutinee.
func (c *Compiler) bindPatternFromStack(pat ast.Pattern, line int) {
	switch p := pat.(type) {
	case *ast.IdentPattern:
		c.addLocal(p.Name)
	case *ast.WildcardPattern:
		c.emit(OpPop, line)
	case *ast.TuplePattern:
		tmp := c.addLocal("<destructure>")
		for i, elem := range p.Elems {
			c.emit(OpLoadLocal, line)
			c.emitU16(uint16(tmp), line)
			idx := c.chunk().InternInt(int64(i))
			c.emit(OpGetIndex, line)
			_ = idx
			c.bindPatternFromStack(elem, line)
		}
	case *ast.StructPattern:
		tmp := c.addLocal("<destructure>")
		for _, f := range p.Fields {
			c.emit(OpLoadLocal, line)
			c.emitU16(uint16(tmp), line)
			nameIdx := c.chunk().InternString(f.Name)
			c.emit(OpGetField, line)
			c.emitU16(nameIdx, line)
			c.bindPatternFromStack(f.Pattern, line)
		}
	case *ast.EnumVariantPattern:
		if len(p.Tuple) == 0 && len(p.Fields) == 0 {
			c.emit(OpPop, line)
			break
		}
		tmp := c.addLocal("<destructure>")
		for i, elem := range p.Tuple {
			c.emit(OpLoadLocal, line)
			c.emitU16(uint16(tmp), line)
			nameIdx := c.chunk().InternString(strconv.Itoa(i))
			c.emit(OpGetField, line)
			c.emitU16(nameIdx, line)
			c.bindPatternFromStack(elem, line)
		}
		for _, f := range p.Fields {
			c.emit(OpLoadLocal, line)
			c.emitU16(uint16(tmp), line)
			nameIdx := c.chunk().InternString(f.Name)
			c.emit(OpGetField, line)
			c.emitU16(nameIdx, line)
			c.bindPatternFromStack(f.Pattern, line)
		}
	default:
		c.emit(OpPop, line)
	}
}

// compileExpr lowers e, leaving exactly one value on the operand
// stack.
func (c *Compiler) compileExpr(e ast.Expr) {
	line := e.Span().Line
	switch n := e.(type) {
	case *ast.IntLit:
		idx := c.chunk().InternInt(n.Value)
		c.emit(OpConst, line)
		c.emitU16(idx, line)
	case *ast.FloatLit:
		idx := c.chunk().InternFloat(floatBits(n.Value), n.Value)
		c.emit(OpConst, line)
		c.emitU16(idx, line)
	case *ast.BoolLit:
		if n.Value {
			c.emit(OpTrue, line)
		} else {
			c.emit(OpFalse, line)
		}
	case *ast.NullLit:
		c.emit(OpNull, line)
	case *ast.StringLit:
		c.compileStringLit(n, line)
	case *ast.Ident:
		if info, ok := c.variants[n.Name]; ok && info.isUnit {
			c.emitNewEnumVariant(info.enumName, n.Name, 0, line)
			break
		}
		c.compileIdentLoad(n.Name, line)
	case *ast.ListLit:
		for _, el := range n.Elems {
			c.compileExpr(el)
		}
		c.emit(OpNewList, line)
		c.emitU16(uint16(len(n.Elems)), line)
	case *ast.MapLit:
		for _, entry := range n.Entries {
			c.compileExpr(entry.Key)
			c.compileExpr(entry.Value)
		}
		c.emit(OpNewMap, line)
		c.emitU16(uint16(len(n.Entries)), line)
	case *ast.TupleLit:
		for _, el := range n.Elems {
			c.compileExpr(el)
		}
		c.emit(OpNewList, line) // tuple literals are built as a ListObj at runtime, not a TupleObj
		c.emitU16(uint16(len(n.Elems)), line)
	case *ast.StructLit:
		names := make([]string, len(n.Fields))
		for i, f := range n.Fields {
			c.compileExpr(f.Value)
			if id, ok := f.Key.(*ast.Ident); ok {
				names[i] = id.Name
			}
		}
		typeIdx := c.chunk().InternString(n.Name)
		c.emit(OpNewStruct, line)
		c.emitU16(typeIdx, line)
		c.emitU16(uint16(len(n.Fields)), line)
		for _, name := range names {
			c.emitU16(c.chunk().InternString(name), line)
		}
	case *ast.BinaryExpr:
		c.compileBinary(n, line)
	case *ast.UnaryExpr:
		c.compileExpr(n.Operand)
		switch n.Op {
		case token.MINUS:
			c.emit(OpNeg, line)
		case token.NOT:
			c.emit(OpNot, line)
		}
	case *ast.AssignExpr:
		c.compileAssign(n, line)
	case *ast.CallExpr:
		if id, ok := n.Callee.(*ast.Ident); ok {
			if info, ok := c.variants[id.Name]; ok && info.isTuple {
				for _, a := range n.Args {
					c.compileExpr(a)
				}
				c.emitNewEnumVariant(info.enumName, id.Name, len(n.Args), line)
				break
			}
		}
		c.compileExpr(n.Callee)
		for _, a := range n.Args {
			c.compileExpr(a)
		}
		c.emit(OpCall, line)
		c.emitU8(byte(len(n.Args)), line)
	case *ast.IndexExpr:
		c.compileExpr(n.Receiver)
		c.compileExpr(n.Index)
		c.emit(OpGetIndex, line)
	case *ast.FieldExpr:
		c.compileExpr(n.Receiver)
		idx := c.chunk().InternString(n.Field)
		c.emit(OpGetField, line)
		c.emitU16(idx, line)
	case *ast.NullSafeFieldExpr:
		c.compileExpr(n.Receiver)
		idx := c.chunk().InternString(n.Field)
		c.emit(OpNullSafeGetField, line)
		c.emitU16(idx, line)
	case *ast.NullSafeIndexExpr:
		c.compileExpr(n.Receiver)
		c.compileExpr(n.Index)
		c.emit(OpNullSafeGetIndex, line)
	case *ast.CoalesceExpr:
		c.compileCoalesce(n, line)
	case *ast.PipeExpr:
		c.compileExpr(n.Func)
		c.compileExpr(n.Arg)
		c.emit(OpCall, line)
		c.emitU8(1, line)
	case *ast.RangeExpr:
		c.compileExpr(n.Start)
		c.compileExpr(n.End)
		if n.Inclusive {
			c.emit(OpNewRangeInclusive, line)
		} else {
			c.emit(OpNewRange, line)
		}
	case *ast.IfExpr:
		c.compileIf(n, line)
	case *ast.WhileExpr:
		c.compileWhile(n, line)
	case *ast.ForExpr:
		c.compileFor(n, line)
	case *ast.MatchExpr:
		c.compileMatch(n, line)
	case *ast.TryExpr:
		c.compileTry(n, line)
	case *ast.ThrowExpr:
		c.compileExpr(n.Value)
		c.emit(OpThrow, line)
	case *ast.AwaitExpr:
		c.compileExpr(n.Value)
		c.emit(OpAwait, line)
	case *ast.ReturnExpr:
		if n.Value != nil {
			c.compileExpr(n.Value)
		} else {
			c.emit(OpNull, line)
		}
		c.emit(OpReturn, line)
	case *ast.BreakExpr:
		c.compileBreak(line)
	case *ast.ContinueExpr:
		c.compileContinue(line)
	case *ast.FuncLit:
		c.compileFunctionLiteral(n.Params, n.Body, "<anonymous>", n.IsAsync, line)
	case *ast.BlockExpr:
		c.beginScope()
		c.compileBlockBody(n)
		c.endScopePreserveTop(line)
	default:
		c.emit(OpNull, line)
	}
}

// endScopePreserveTop ends the current scope while preserving the
// value left on top of the stack by the block's tail expression,
// using PopBelow per §4.5.2.
func (c *Compiler) endScopePreserveTop(line int) {
	c.cur.scopeDepth--
	n := 0
	for len(c.cur.locals) > 0 && c.cur.locals[len(c.cur.locals)-1].depth > c.cur.scopeDepth {
		last := c.cur.locals[len(c.cur.locals)-1]
		if last.captured {
			// CloseUpvalue operates on the slot directly below top;
			// PopBelow below handles captured slots the same as plain
			// locals once closed.
			_ = last
		}
		c.cur.locals = c.cur.locals[:len(c.cur.locals)-1]
		n++
	}
	if n > 0 {
		c.emit(OpPopBelow, line)
		c.emitU8(byte(n), line)
	}
}

// emitNewEnumVariant emits OpNewEnumVariant for a variant constructor
// use, assuming argc values are already on the operand stack.
func (c *Compiler) emitNewEnumVariant(enumName, variantName string, argc int, line int) {
	enumIdx := c.chunk().InternString(enumName)
	variantIdx := c.chunk().InternString(variantName)
	c.emit(OpNewEnumVariant, line)
	c.emitU16(enumIdx, line)
	c.emitU16(variantIdx, line)
	c.emitU16(uint16(argc), line)
}

func (c *Compiler) compileIdentLoad(name string, line int) {
	if slot := resolveLocal(c.cur, name); slot >= 0 {
		c.emit(OpLoadLocal, line)
		c.emitU16(uint16(slot), line)
		return
	}
	if idx := resolveUpvalue(c.cur, name); idx >= 0 {
		c.emit(OpLoadUpvalue, line)
		c.emitU8(byte(idx), line)
		return
	}
	nameIdx := c.chunk().InternString(name)
	c.emit(OpLoadGlobal, line)
	c.emitU16(nameIdx, line)
}

func (c *Compiler) compileAssign(n *ast.AssignExpr, line int) {
	switch target := n.Target.(type) {
	case *ast.Ident:
		c.compileExpr(n.Value)
		c.emit(OpDup, line)
		if slot := resolveLocal(c.cur, target.Name); slot >= 0 {
			c.emit(OpStoreLocal, line)
			c.emitU16(uint16(slot), line)
			return
		}
		if idx := resolveUpvalue(c.cur, target.Name); idx >= 0 {
			c.emit(OpStoreUpvalue, line)
			c.emitU8(byte(idx), line)
			return
		}
		nameIdx := c.chunk().InternString(target.Name)
		c.emit(OpStoreGlobal, line)
		c.emitU16(nameIdx, line)
	case *ast.FieldExpr:
		c.compileExpr(target.Receiver)
		c.compileExpr(n.Value)
		idx := c.chunk().InternString(target.Field)
		c.emit(OpSetField, line)
		c.emitU16(idx, line)
	case *ast.IndexExpr:
		c.compileExpr(target.Receiver)
		c.compileExpr(target.Index)
		c.compileExpr(n.Value)
		c.emit(OpSetIndex, line)
	}
}

func (c *Compiler) compileStringLit(n *ast.StringLit, line int) {
	count := 0
	for i, part := range n.Parts {
		if part != "" {
			idx := c.chunk().InternString(part)
			c.emit(OpConst, line)
			c.emitU16(idx, line)
			count++
		}
		if i < len(n.Exprs) && n.Exprs[i] != nil {
			c.compileExpr(n.Exprs[i])
			count++
		}
	}
	if count == 0 {
		idx := c.chunk().InternString("")
		c.emit(OpConst, line)
		c.emitU16(idx, line)
		count = 1
	}
	c.emit(OpStringConcat, line)
	c.emitU16(uint16(count), line)
}

func (c *Compiler) compileBinary(n *ast.BinaryExpr, line int) {
	switch n.Op {
	case token.AND:
		c.compileExpr(n.Left)
		jf := c.emitJump(OpJumpIfFalse, line)
		c.emit(OpPop, line)
		c.compileExpr(n.Right)
		c.patchJump(jf)
		return
	case token.OR:
		c.compileExpr(n.Left)
		jt := c.emitJump(OpJumpIfTrue, line)
		c.emit(OpPop, line)
		c.compileExpr(n.Right)
		c.patchJump(jt)
		return
	}
	c.compileExpr(n.Left)
	c.compileExpr(n.Right)
	switch n.Op {
	case token.PLUS:
		c.emit(OpAdd, line)
	case token.MINUS:
		c.emit(OpSub, line)
	case token.STAR:
		c.emit(OpMul, line)
	case token.SLASH:
		c.emit(OpDiv, line)
	case token.PERCENT:
		c.emit(OpMod, line)
	case token.EQ:
		c.emit(OpEq, line)
	case token.NE:
		c.emit(OpNe, line)
	case token.LT:
		c.emit(OpLt, line)
	case token.LE:
		c.emit(OpLe, line)
	case token.GT:
		c.emit(OpGt, line)
	case token.GE:
		c.emit(OpGe, line)
	}
}

// compileCoalesce lowers `a ?? b` as §4.5.1 specifies: emit a,
// JumpIfNotNull -> keep, Pop, emit b, patch keep.
func (c *Compiler) compileCoalesce(n *ast.CoalesceExpr, line int) {
	c.compileExpr(n.Left)
	keep := c.emitJump(OpJumpIfNotNull, line)
	c.emit(OpPop, line)
	c.compileExpr(n.Right)
	c.patchJump(keep)
}

// emitJump emits a jump opcode with a placeholder offset and returns
// the offset of the operand to patch later.
func (c *Compiler) emitJump(op Opcode, line int) int {
	c.emit(op, line)
	pos := c.chunk().Len()
	c.emitU16(0xFFFF, line)
	return pos
}

// patchJump backpatches the jump operand at pos to land at the current
// code offset.
func (c *Compiler) patchJump(pos int) {
	target := c.chunk().Len()
	offset := target - (pos + 2)
	c.chunk().PatchU16(pos, uint16(int16(offset)))
}

func floatBits(f float64) uint64 {
	return FloatVal(f).Data
}
