package vm

import (
	"fmt"
)

const (
	defaultStackSize = 256 * 1024
	defaultFrameLimit = 1024
)

// CallFrame is one active function invocation.
type CallFrame struct {
	closure *ClosureObj
	ip      int
	base    int // operand-stack index of slot 0 (the callee/receiver slot)
}

// handlerRecord is one entry of the exception-handler stack pushed by
// PushHandler and consulted by Throw, per §4.6.3.
type handlerRecord struct {
	handlerIP  int
	finallyIP  int
	hasFinally bool
	stackDepth int
	frameDepth int
}

// DebugHook is consulted between instructions when debugging is
// enabled (§4.6.4); external tooling drives stepping through it.
type DebugHook interface {
	// BeforeInstruction is called with the current frame and
	// instruction pointer before each opcode executes. Returning false
	// requests the VM halt at a breakpoint.
	BeforeInstruction(vm *VM) bool
}

// VM is the single-threaded, cooperative bytecode interpreter.
type VM struct {
	stack   []Value
	sp      int
	frames  []*CallFrame
	globals map[string]Value
	handlers []handlerRecord
	openUpvalues []*Upvalue // ordered by descending stack slot

	FrameLimit int
	Debug      DebugHook
	Natives    map[string]*NativeFn
}

// New creates a VM with its operand stack pre-sized.
func New() *VM {
	return &VM{
		stack:      make([]Value, defaultStackSize),
		globals:    map[string]Value{},
		FrameLimit: defaultFrameLimit,
		Natives:    map[string]*NativeFn{},
	}
}

// RuntimeError is a fatal (non-catchable) VM failure per §4.6.5:
// stack overflow, corrupted constant pool, or an unknown opcode. A
// catchable error instead becomes an ExceptionObj thrown in-language.
type RuntimeError struct {
	Message string
}

func (e *RuntimeError) Error() string { return e.Message }

func (vm *VM) push(v Value) {
	vm.stack[vm.sp] = v
	vm.sp++
}

func (vm *VM) pop() Value {
	vm.sp--
	return vm.stack[vm.sp]
}

func (vm *VM) peek(distance int) Value {
	return vm.stack[vm.sp-1-distance]
}

func (vm *VM) currentFrame() *CallFrame { return vm.frames[len(vm.frames)-1] }

// Run executes fn from its first instruction to completion, returning
// its final value.
func (vm *VM) Run(fn *FunctionObj) (Value, error) {
	closure := &ClosureObj{Fn: fn}
	vm.push(ObjVal(closure))
	frame := &CallFrame{closure: closure, base: vm.sp - 1}
	vm.frames = append(vm.frames, frame)
	return vm.dispatch()
}

// DefineGlobal binds name to v in vm's global table, used by a host to
// install native functions before running a compiled program.
func (vm *VM) DefineGlobal(name string, v Value) {
	vm.globals[name] = v
}

// globalDefined reports whether DefineGlobal has ever bound name,
// distinguishing a never-declared global from one holding Null.
func (vm *VM) globalDefined(name string) bool {
	_, ok := vm.globals[name]
	return ok
}

func (vm *VM) String() string {
	return fmt.Sprintf("VM{sp=%d frames=%d}", vm.sp, len(vm.frames))
}
