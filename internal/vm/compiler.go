package vm

import (
	"github.com/horizonanalytic/stratum/internal/ast"
	"github.com/horizonanalytic/stratum/internal/diagnostics"
	"github.com/horizonanalytic/stratum/internal/token"
)

// local is one compiler-tracked local variable slot.
type local struct {
	name     string
	depth    int
	captured bool
}

// upvalueDesc is one `(is_local, index)` descriptor emitted after
// Closure, per §4.4.1/§4.5.1.
type upvalueDesc struct {
	isLocal bool
	index   uint8
}

// loopCtx tracks a single loop's break/continue patch sites per
// §4.5's compiler-frame `loop_stack`.
type loopCtx struct {
	start         int
	breakPatches  []int
	continueStart int
}

// frame is one compiler-frame, one per function (or the top-level
// module) being compiled.
type frame struct {
	fn         *FunctionObj
	enclosing  *frame
	locals     []local
	scopeDepth int
	upvalues   []upvalueDesc
	loops      []*loopCtx
	globals    map[string]bool // names declared via `let` at module scope
}

// variantInfo records one enum variant's owning enum and shape, so the
// expression compiler can recognize a bare name or call as a variant
// constructor rather than an ordinary identifier load or function call.
type variantInfo struct {
	enumName string
	isTuple  bool // Circle(Int) — constructed via a call
	isUnit   bool // None — constructed via a bare name
}

// Compiler lowers a parsed, type-checked Module into bytecode.
type Compiler struct {
	cur      *frame
	diags    []diagnostics.Diagnostic
	variants map[string]variantInfo
}

// NewCompiler creates a Compiler ready to compile a module's top level.
func NewCompiler() *Compiler {
	top := &FunctionObj{Name: "<module>", Chunk: NewChunk()}
	// Slot 0 of every frame holds the callee (see CallFrame.base).
	return &Compiler{cur: &frame{fn: top, globals: map[string]bool{}, locals: []local{{}}}, variants: map[string]variantInfo{}}
}

// collectEnumVariants registers every unit- and tuple-shaped enum
// variant declared anywhere in mod, so compileExpr can recognize their
// constructor uses regardless of declaration order. Struct-shaped
// variants are left unregistered: their `Name { field: val }` literal
// syntax is indistinguishable from a plain struct literal, so they are
// constructed as a StructObj via the existing StructLit path instead of
// an EnumObj (see DESIGN.md).
func (c *Compiler) collectEnumVariants(mod *ast.Module) {
	for _, item := range mod.Items {
		en, ok := item.(*ast.EnumItem)
		if !ok {
			continue
		}
		for _, v := range en.Variants {
			switch {
			case v.Tuple != nil:
				c.variants[v.Name] = variantInfo{enumName: en.Name, isTuple: true}
			case v.Fields != nil:
				// struct-shaped: unregistered, see above.
			default:
				c.variants[v.Name] = variantInfo{enumName: en.Name, isUnit: true}
			}
		}
	}
}

// CompileModule compiles every top-level item into the module
// function's chunk and returns it along with any compiler diagnostics.
// CompileModule compiles every item of mod into the entry function's
// chunk. A trailing top-level expression statement (the script's "tail
// expression", mirroring a function block's tail expr) becomes the
// module's result instead of being popped and discarded; any other
// shape (the module ends in a declaration, or is empty) evaluates to
// Null, matching a function body with no tail expression.
func (c *Compiler) CompileModule(mod *ast.Module) (*FunctionObj, []diagnostics.Diagnostic) {
	c.collectEnumVariants(mod)
	for i, item := range mod.Items {
		if i == len(mod.Items)-1 {
			if es, ok := item.(*ast.ExprStmtItem); ok {
				c.compileExpr(es.Expr)
				c.emit(OpReturn, es.Span().Line)
				return c.cur.fn, c.diags
			}
		}
		c.compileItem(item)
	}
	c.emit(OpNull, 0)
	c.emit(OpReturn, 0)
	return c.cur.fn, c.diags
}

func (c *Compiler) chunk() *Chunk { return c.cur.fn.Chunk }

func (c *Compiler) emit(op Opcode, line int) int { return c.chunk().WriteOp(op, line) }

func (c *Compiler) emitU8(v byte, line int)   { c.chunk().WriteU8(v, line) }
func (c *Compiler) emitU16(v uint16, line int) { c.chunk().WriteU16(v, line) }

func (c *Compiler) report(kind diagnostics.Kind, span token.Span, format string, args ...interface{}) {
	c.diags = append(c.diags, diagnostics.New(kind, span, format, args...))
}

func (c *Compiler) compileItem(item ast.Item) {
	switch it := item.(type) {
	case *ast.FunctionItem:
		c.compileFunctionDecl(it)
	case *ast.LetItem:
		c.compileLetBinding(it.Pattern, it.Value, it.Span().Line, true)
	case *ast.ExprStmtItem:
		c.compileExpr(it.Expr)
		c.emit(OpPop, it.Span().Line)
	case *ast.StructItem, *ast.EnumItem, *ast.InterfaceItem, *ast.ImplItem, *ast.ImportItem:
		// Struct/enum/interface declarations carry no runtime bytecode
		// of their own; impl methods are compiled here as ordinary
		// global functions under their own names.
		if impl, ok := it.(*ast.ImplItem); ok {
			for _, m := range impl.Methods {
				c.compileFunctionDecl(m)
			}
		}
	}
}

func (c *Compiler) compileFunctionDecl(it *ast.FunctionItem) {
	fnObj := c.compileFunctionLiteral(it.Params, it.Body, it.Name, it.IsAsync, it.Span().Line)
	line := it.Span().Line
	nameIdx := c.chunk().InternString(it.Name)
	c.emit(OpDefineGlobal, line)
	c.emitU16(nameIdx, line)
	_ = fnObj
}

// compileFunctionLiteral compiles a function body in a fresh frame and
// emits a Closure instruction in the enclosing frame, returning the
// FunctionObj constant that was created.
func (c *Compiler) compileFunctionLiteral(params []ast.Param, body *ast.BlockExpr, name string, isAsync bool, line int) *FunctionObj {
	fnObj := &FunctionObj{Name: name, Arity: len(params), Chunk: NewChunk(), IsAsync: isAsync}
	fr := &frame{fn: fnObj, enclosing: c.cur, globals: c.cur.globals, locals: []local{{}}} // slot 0: the callee
	prev := c.cur
	c.cur = fr

	c.beginScope()
	for _, p := range params {
		c.declareParam(p.Pattern)
	}
	c.compileBlockBody(body)
	// Implicit return of the tail value if control falls through.
	c.emit(OpReturn, line)
	fnObj.UpvalCount = len(fr.upvalues)
	c.cur = prev

	constIdx := c.chunk().AddConstant(ObjVal(&ClosureObj{Fn: fnObj}))
	c.emit(OpClosure, line)
	c.emitU16(constIdx, line)
	for _, uv := range fr.upvalues {
		if uv.isLocal {
			c.emitU8(1, line)
		} else {
			c.emitU8(0, line)
		}
		c.emitU8(uv.index, line)
	}
	return fnObj
}

func (c *Compiler) declareParam(pat ast.Pattern) {
	if id, ok := pat.(*ast.IdentPattern); ok {
		c.addLocal(id.Name)
		return
	}
	// Destructuring parameters: bind to a synthetic slot and unpack.
	c.addLocal("<param>")
}

// beginScope/endScope bracket a lexical block (§4.5.2): locals above
// the new depth are popped (or closed, if captured) in reverse
// declaration order when the scope ends.
func (c *Compiler) beginScope() { c.cur.scopeDepth++ }

func (c *Compiler) endScope(line int) {
	c.cur.scopeDepth--
	n := 0
	for len(c.cur.locals) > 0 && c.cur.locals[len(c.cur.locals)-1].depth > c.cur.scopeDepth {
		last := c.cur.locals[len(c.cur.locals)-1]
		if last.captured {
			c.emit(OpCloseUpvalue, line)
		} else {
			c.emit(OpPop, line)
		}
		c.cur.locals = c.cur.locals[:len(c.cur.locals)-1]
		n++
	}
}

func (c *Compiler) addLocal(name string) int {
	c.cur.locals = append(c.cur.locals, local{name: name, depth: c.cur.scopeDepth})
	return len(c.cur.locals) - 1
}

// resolveLocal looks up name in fr's own locals, most-recently-declared
// first (so shadowing works).
func resolveLocal(fr *frame, name string) int {
	for i := len(fr.locals) - 1; i >= 0; i-- {
		if fr.locals[i].name == name {
			return i
		}
	}
	return -1
}

// resolveUpvalue walks enclosing frames to find name, adding upvalue
// descriptors along the chain and marking the owning local captured.
func resolveUpvalue(fr *frame, name string) int {
	if fr.enclosing == nil {
		return -1
	}
	if slot := resolveLocal(fr.enclosing, name); slot >= 0 {
		fr.enclosing.locals[slot].captured = true
		return addUpvalue(fr, true, uint8(slot))
	}
	if idx := resolveUpvalue(fr.enclosing, name); idx >= 0 {
		return addUpvalue(fr, false, uint8(idx))
	}
	return -1
}

func addUpvalue(fr *frame, isLocal bool, index uint8) int {
	for i, uv := range fr.upvalues {
		if uv.isLocal == isLocal && uv.index == index {
			return i
		}
	}
	fr.upvalues = append(fr.upvalues, upvalueDesc{isLocal: isLocal, index: index})
	return len(fr.upvalues) - 1
}
