package vm

import (
	"github.com/horizonanalytic/stratum/internal/ast"
)

// compileIf lowers §4.5.1's if/else rule: cond, JumpIfFalse -> else,
// then-branch, Jump -> end, patch else, else-branch (Null if absent),
// patch end.
func (c *Compiler) compileIf(n *ast.IfExpr, line int) {
	c.compileExpr(n.Cond)
	elseJump := c.emitJump(OpJumpIfFalse, line)
	c.emit(OpPop, line)
	c.compileExpr(n.Then)
	endJump := c.emitJump(OpJump, line)
	c.patchJump(elseJump)
	c.emit(OpPop, line)
	if n.Else != nil {
		c.compileExpr(n.Else)
	} else {
		c.emit(OpNull, line)
	}
	c.patchJump(endJump)
}

// compileWhile lowers §4.5.1's while rule with loop-stack bookkeeping
// for break/continue.
func (c *Compiler) compileWhile(n *ast.WhileExpr, line int) {
	loopStart := c.chunk().Len()
	lc := &loopCtx{start: loopStart, continueStart: loopStart}
	c.cur.loops = append(c.cur.loops, lc)

	c.compileExpr(n.Cond)
	exitJump := c.emitJump(OpJumpIfFalse, line)
	c.emit(OpPop, line)
	c.compileExpr(n.Body)
	c.emit(OpPop, line)
	c.emitLoop(loopStart, line)
	c.patchJump(exitJump)
	c.emit(OpPop, line)

	for _, p := range lc.breakPatches {
		c.patchJump(p)
	}
	c.cur.loops = c.cur.loops[:len(c.cur.loops)-1]
	c.emit(OpNull, line)
}

// compileFor lowers §4.5.1's for-in rule: emit iter, GetIter; loop
// start; IterNext -> exhausted; bind pattern; body; Loop -> start;
// patch exhausted to the iterator-cleanup point.
func (c *Compiler) compileFor(n *ast.ForExpr, line int) {
	c.compileExpr(n.Iter)
	c.emit(OpGetIter, line)

	loopStart := c.chunk().Len()
	exhausted := c.emitJump(OpIterNext, line)

	c.beginScope()
	c.bindPatternFromStack(n.Pattern, line)
	lc := &loopCtx{start: loopStart, continueStart: loopStart}
	c.cur.loops = append(c.cur.loops, lc)
	c.compileExpr(n.Body)
	c.emit(OpPop, line)
	c.endScope(line)
	c.emitLoop(loopStart, line)

	c.patchJump(exhausted)
	for _, p := range lc.breakPatches {
		c.patchJump(p)
	}
	c.cur.loops = c.cur.loops[:len(c.cur.loops)-1]
	c.emit(OpPop, line) // drop the iterator
	c.emit(OpNull, line)
}

func (c *Compiler) emitLoop(start int, line int) {
	c.emit(OpLoop, line)
	pos := c.chunk().Len()
	offset := (pos + 2) - start
	c.emitU16(uint16(int16(-offset)), line)
}

func (c *Compiler) compileBreak(line int) {
	if len(c.cur.loops) == 0 {
		return
	}
	lc := c.cur.loops[len(c.cur.loops)-1]
	pos := c.emitJump(OpJump, line)
	lc.breakPatches = append(lc.breakPatches, pos)
}

func (c *Compiler) compileContinue(line int) {
	if len(c.cur.loops) == 0 {
		return
	}
	lc := c.cur.loops[len(c.cur.loops)-1]
	c.emitLoop(lc.continueStart, line)
}

// compileMatch lowers §4.5.1's match rule: emit subject once into a
// temporary local, then for each arm emit a pattern test leaving a
// Bool, JumpIfFalse -> next arm, guard (if present), arm body,
// Jump -> end.
func (c *Compiler) compileMatch(n *ast.MatchExpr, line int) {
	c.compileExpr(n.Subject)
	subjSlot := c.addLocal("<match-subject>") // the subject stays on the stack as this local

	var endJumps []int
	var nextArmJump = -1
	for _, arm := range n.Arms {
		if nextArmJump >= 0 {
			c.patchJump(nextArmJump)
			c.emit(OpPop, line)
		}
		c.emit(OpLoadLocal, line)
		c.emitU16(uint16(subjSlot), line)
		c.compilePatternTest(arm.Pattern, line)
		nextArmJump = c.emitJump(OpJumpIfFalse, line)
		c.emit(OpPop, line)

		c.beginScope()
		c.emit(OpLoadLocal, line)
		c.emitU16(uint16(subjSlot), line)
		c.bindPatternFromStack(arm.Pattern, line)
		if arm.Guard != nil {
			c.compileExpr(arm.Guard)
			guardJump := c.emitJump(OpJumpIfFalse, line)
			c.emit(OpPop, line)
			c.compileExpr(arm.Body)
			c.endScopePreserveTop(line)
			endJumps = append(endJumps, c.emitJump(OpJump, line))
			c.patchJump(guardJump)
			c.emit(OpPop, line)
			c.endScope(line)
			continue
		}
		c.compileExpr(arm.Body)
		c.endScopePreserveTop(line)
		endJumps = append(endJumps, c.emitJump(OpJump, line))
	}
	if nextArmJump >= 0 {
		c.patchJump(nextArmJump)
		c.emit(OpPop, line)
	}
	// No arm matched (diagnostics already warned if non-exhaustive):
	// fall through with Null.
	c.emit(OpNull, line)
	for _, j := range endJumps {
		c.patchJump(j)
	}

	// Drop the subject local from below the match value.
	c.emit(OpPopBelow, line)
	c.emitU8(1, line)
	c.cur.locals = c.cur.locals[:len(c.cur.locals)-1]
}

// compilePatternTest emits code that consumes nothing extra (the
// scrutinee is already on top of stack from the caller) and leaves a
// Bool indicating whether pat matches it, without binding names.
func (c *Compiler) compilePatternTest(pat ast.Pattern, line int) {
	switch p := pat.(type) {
	case *ast.WildcardPattern, *ast.IdentPattern:
		c.emit(OpPop, line)
		c.emit(OpTrue, line)
	case *ast.LiteralPattern:
		c.compileExpr(p.Value)
		c.emit(OpEq, line)
	case *ast.EnumVariantPattern:
		idx := c.chunk().InternString(p.VariantName)
		c.emit(OpMatchVariant, line)
		c.emitU16(idx, line)
	case *ast.StructPattern:
		idx := c.chunk().InternString(p.Name)
		c.emit(OpIsInstance, line)
		c.emitU16(idx, line)
	case *ast.TuplePattern:
		c.emit(OpPop, line)
		c.emit(OpTrue, line)
	case *ast.OrPattern:
		var trueJumps []int
		for i, alt := range p.Alternatives {
			c.emit(OpDup, line)
			c.compilePatternTest(alt, line)
			if i < len(p.Alternatives)-1 {
				trueJumps = append(trueJumps, c.emitJump(OpJumpIfTrue, line))
				c.emit(OpPop, line)
			}
		}
		for _, j := range trueJumps {
			c.patchJump(j)
		}
		// Every path leaves the original scrutinee below the Bool; drop
		// it so this case, like the others, leaves only the Bool.
		c.emit(OpPopBelow, line)
		c.emitU8(1, line)
	default:
		c.emit(OpPop, line)
		c.emit(OpTrue, line)
	}
}

// compileTry lowers §4.5.1's try/catch/finally rule.
func (c *Compiler) compileTry(n *ast.TryExpr, line int) {
	pushPos := c.emit(OpPushHandler, line)
	handlerOperand := c.chunk().Len()
	c.emitU16(0, line)
	finallyOperand := c.chunk().Len()
	c.emitU16(0, line)
	_ = pushPos

	c.compileExpr(n.Body)
	c.emit(OpPopHandler, line)
	if n.Finally != nil {
		c.compileExpr(n.Finally)
		c.emit(OpPop, line)
	}
	afterJump := c.emitJump(OpJump, line)

	handlerAddr := c.chunk().Len()
	c.chunk().PatchU16(handlerOperand, uint16(handlerAddr-(handlerOperand+2)))
	c.beginScope()
	c.bindPatternFromStack(n.CatchPat, line)
	c.compileExpr(n.Handler)
	c.endScopePreserveTop(line)
	if n.Finally != nil {
		finallyAddr := c.chunk().Len()
		c.chunk().PatchU16(finallyOperand, uint16(finallyAddr-(finallyOperand+2)))
		c.compileExpr(n.Finally)
		c.emit(OpPop, line)
	}
	c.patchJump(afterJump)
}
