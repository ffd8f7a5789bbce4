package vm

import (
	"math"
	"sort"
)

// execArith implements §4.6.3's arithmetic contract: Int stays Int,
// Float follows IEEE-754, mixed operands are a runtime type error, and
// `+` additionally concatenates strings.
func (vm *VM) execArith(op Opcode) error {
	b, a := vm.pop(), vm.pop()
	if op == OpAdd && isStringVal(a) && isStringVal(b) {
		vm.push(StringVal(stringify(a) + stringify(b)))
		return nil
	}
	if a.Kind == KInt && b.Kind == KInt {
		x, y := a.AsInt(), b.AsInt()
		switch op {
		case OpAdd:
			sum := x + y
			if (x > 0 && y > 0 && sum < 0) || (x < 0 && y < 0 && sum > 0) {
				return vm.runtimeException("IntegerOverflow", "integer overflow: %d + %d", x, y)
			}
			vm.push(IntVal(sum))
		case OpSub:
			diff := x - y
			if (x >= 0 && y < 0 && diff < 0) || (x < 0 && y > 0 && diff > 0) {
				return vm.runtimeException("IntegerOverflow", "integer overflow: %d - %d", x, y)
			}
			vm.push(IntVal(diff))
		case OpMul:
			// math.MinInt64 / -1 wraps back around to math.MinInt64, so
			// the division check below is blind to exactly this case.
			if (x == -1 && y == math.MinInt64) || (y == -1 && x == math.MinInt64) {
				return vm.runtimeException("IntegerOverflow", "integer overflow: %d * %d", x, y)
			}
			prod := x * y
			if x != 0 && prod/x != y {
				return vm.runtimeException("IntegerOverflow", "integer overflow: %d * %d", x, y)
			}
			vm.push(IntVal(prod))
		case OpDiv:
			if y == 0 {
				return vm.runtimeException("DivisionByZero", "integer division by zero")
			}
			vm.push(IntVal(x / y))
		case OpMod:
			if y == 0 {
				return vm.runtimeException("DivisionByZero", "integer modulo by zero")
			}
			vm.push(IntVal(x % y))
		}
		return nil
	}
	if a.Kind == KFloat && b.Kind == KFloat {
		x, y := a.AsFloat(), b.AsFloat()
		switch op {
		case OpAdd:
			vm.push(FloatVal(x + y))
		case OpSub:
			vm.push(FloatVal(x - y))
		case OpMul:
			vm.push(FloatVal(x * y))
		case OpDiv:
			vm.push(FloatVal(x / y))
		case OpMod:
			vm.push(FloatVal(floatMod(x, y)))
		}
		return nil
	}
	return vm.runtimeException("TypeError", "arithmetic requires matching Int or Float operands, got %s and %s", TypeName(a), TypeName(b))
}

func floatMod(x, y float64) float64 {
	r := x - y*float64(int64(x/y))
	return r
}

func isStringVal(v Value) bool {
	_, ok := v.Obj.(*StringObj)
	return ok && v.Kind == KObj
}

func (vm *VM) execCompare(op Opcode) error {
	b, a := vm.pop(), vm.pop()
	switch {
	case a.Kind == KInt && b.Kind == KInt:
		x, y := a.AsInt(), b.AsInt()
		vm.push(BoolVal(intCompare(op, x < y, x == y, x > y)))
	case a.Kind == KFloat && b.Kind == KFloat:
		x, y := a.AsFloat(), b.AsFloat()
		vm.push(BoolVal(intCompare(op, x < y, x == y, x > y)))
	case isStringVal(a) && isStringVal(b):
		x, y := stringify(a), stringify(b)
		vm.push(BoolVal(intCompare(op, x < y, x == y, x > y)))
	default:
		return vm.runtimeException("TypeError", "comparison requires matching numeric or string operands, got %s and %s", TypeName(a), TypeName(b))
	}
	return nil
}

func intCompare(op Opcode, lt, eq, gt bool) bool {
	switch op {
	case OpLt:
		return lt
	case OpLe:
		return lt || eq
	case OpGt:
		return gt
	case OpGe:
		return gt || eq
	}
	return false
}

// execCall implements §4.6.3's Call contract.
func (vm *VM) execCall(argc int) (Value, bool, error) {
	calleeSlot := vm.sp - argc - 1
	callee := vm.stack[calleeSlot]
	switch fn := callee.Obj.(type) {
	case *ClosureObj:
		if fn.Fn.Arity != argc {
			return Value{}, false, vm.runtimeException("ArityMismatch", "expected %d arguments, got %d", fn.Fn.Arity, argc)
		}
		if len(vm.frames) >= vm.FrameLimit {
			return Value{}, false, &RuntimeError{Message: "stack overflow: frame depth limit exceeded"}
		}
		newFrame := &CallFrame{closure: fn, base: calleeSlot}
		vm.frames = append(vm.frames, newFrame)
	case *NativeFn:
		args := make([]Value, argc)
		copy(args, vm.stack[calleeSlot+1:vm.sp])
		res, err := fn.Fn(args)
		vm.sp = calleeSlot
		if err != nil {
			if exc, ok := err.(*ExceptionObj); ok {
				return Value{}, false, exc
			}
			return Value{}, false, vm.runtimeException("NativeError", "%s", err.Error())
		}
		vm.push(res)
	default:
		return Value{}, false, vm.runtimeException("NotCallable", "cannot call value of type %s", TypeName(callee))
	}
	return Value{}, false, nil
}

// execReturn implements §4.6.3's Return contract: close upvalues owned
// by the returning frame, truncate the stack to the frame's base, push
// the return value, pop the frame. Ends execution if the frame stack
// empties.
func (vm *VM) execReturn(frame *CallFrame) (Value, bool, error) {
	retVal := vm.pop()
	vm.closeUpvalues(frame.base)
	vm.sp = frame.base
	vm.frames = vm.frames[:len(vm.frames)-1]
	if len(vm.frames) == 0 {
		return retVal, true, nil
	}
	vm.push(retVal)
	return Value{}, false, nil
}

// captureUpvalue returns an open Upvalue for stack slot, reusing an
// existing one if already open for that slot (kept ordered by
// descending slot for the O(log n) insertion §4.6.1 calls for).
func (vm *VM) captureUpvalue(slot int) *Upvalue {
	i := sort.Search(len(vm.openUpvalues), func(i int) bool {
		return vm.openUpvalues[i].Slot <= slot
	})
	if i < len(vm.openUpvalues) && vm.openUpvalues[i].Slot == slot {
		return vm.openUpvalues[i]
	}
	uv := &Upvalue{Slot: slot}
	vm.openUpvalues = append(vm.openUpvalues, nil)
	copy(vm.openUpvalues[i+1:], vm.openUpvalues[i:])
	vm.openUpvalues[i] = uv
	return uv
}

// closeUpvalues closes every open upvalue at or above fromSlot,
// snapshotting the stack value so it survives the frame popping.
func (vm *VM) closeUpvalues(fromSlot int) {
	n := 0
	for n < len(vm.openUpvalues) && vm.openUpvalues[n].Slot >= fromSlot {
		uv := vm.openUpvalues[n]
		uv.Value = vm.stack[uv.Slot]
		uv.Closed = true
		n++
	}
	vm.openUpvalues = vm.openUpvalues[n:]
}

// handleException implements §4.6.3's Throw contract: walk the
// handler stack from the top, pop frames/truncate the operand stack
// to the recorded depth, push the exception value, and resume at the
// handler address. Returns false if no handler remains.
func (vm *VM) handleException(exc *ExceptionObj) bool {
	for len(vm.handlers) > 0 {
		rec := vm.handlers[len(vm.handlers)-1]
		vm.handlers = vm.handlers[:len(vm.handlers)-1]
		if rec.frameDepth > len(vm.frames) {
			continue
		}
		for len(vm.frames) > rec.frameDepth {
			f := vm.frames[len(vm.frames)-1]
			vm.closeUpvalues(f.base)
			vm.frames = vm.frames[:len(vm.frames)-1]
		}
		vm.sp = rec.stackDepth
		var payload Value
		if exc.Payload.Kind != 0 || exc.Payload.Obj != nil {
			payload = exc.Payload
		} else {
			payload = StringVal(exc.Message)
		}
		vm.push(payload)
		vm.currentFrame().ip = rec.handlerIP
		return true
	}
	return false
}
