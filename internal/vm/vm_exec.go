package vm

import (
	"fmt"
	"strconv"
)

// dispatch runs the fetch-decode-execute loop (§4.6.2) until the
// initial frame returns, then yields its value.
func (vm *VM) dispatch() (Value, error) {
	for {
		if vm.Debug != nil {
			if !vm.Debug.BeforeInstruction(vm) {
				return Value{}, &RuntimeError{Message: "halted at breakpoint"}
			}
		}
		frame := vm.currentFrame()
		chunk := frame.closure.Fn.Chunk
		if frame.ip >= chunk.Len() {
			return Value{}, &RuntimeError{Message: "instruction pointer ran off the end of the chunk"}
		}
		op := Opcode(chunk.Code[frame.ip])
		frame.ip++

		result, done, err := vm.execOne(frame, chunk, op)
		if err != nil {
			if exc, ok := err.(*ExceptionObj); ok {
				if handled := vm.handleException(exc); handled {
					continue
				}
				return Value{}, exc
			}
			return Value{}, err
		}
		if done {
			return result, nil
		}
	}
}

func (vm *VM) readU16(chunk *Chunk, frame *CallFrame) uint16 {
	v := chunk.ReadU16(frame.ip)
	frame.ip += 2
	return v
}

func (vm *VM) readI16(chunk *Chunk, frame *CallFrame) int16 {
	v := chunk.ReadI16(frame.ip)
	frame.ip += 2
	return v
}

func (vm *VM) readU8(chunk *Chunk, frame *CallFrame) uint8 {
	v := chunk.Code[frame.ip]
	frame.ip++
	return v
}

// execOne executes a single already-fetched opcode. Returns (value,
// true, nil) when the outermost frame has returned and execution is
// over; (value, false, err) to signal a runtime error (catchable
// ExceptionObj or fatal RuntimeError); (Value{}, false, nil) otherwise.
func (vm *VM) execOne(frame *CallFrame, chunk *Chunk, op Opcode) (Value, bool, error) {
	switch op {
	case OpConst:
		idx := vm.readU16(chunk, frame)
		if int(idx) >= len(chunk.Constants) {
			return Value{}, false, &RuntimeError{Message: "constant-pool-corruption: index out of bounds"}
		}
		vm.push(chunk.Constants[idx])
	case OpNull:
		vm.push(NullVal())
	case OpTrue:
		vm.push(BoolVal(true))
	case OpFalse:
		vm.push(BoolVal(false))
	case OpPop:
		vm.pop()
	case OpDup:
		vm.push(vm.peek(0))
	case OpPopBelow:
		n := int(vm.readU8(chunk, frame))
		top := vm.pop()
		vm.sp -= n
		vm.push(top)

	case OpLoadLocal:
		slot := int(vm.readU16(chunk, frame))
		vm.push(vm.stack[frame.base+slot])
	case OpStoreLocal:
		slot := int(vm.readU16(chunk, frame))
		vm.stack[frame.base+slot] = vm.pop()

	case OpLoadGlobal:
		idx := vm.readU16(chunk, frame)
		name := chunk.Constants[idx].Obj.(*StringObj).S
		v, ok := vm.globals[name]
		if !ok {
			return Value{}, false, vm.runtimeException("UndefinedGlobal", "undefined global %q", name)
		}
		vm.push(v)
	case OpStoreGlobal:
		idx := vm.readU16(chunk, frame)
		name := chunk.Constants[idx].Obj.(*StringObj).S
		vm.globals[name] = vm.pop()
	case OpDefineGlobal:
		idx := vm.readU16(chunk, frame)
		name := chunk.Constants[idx].Obj.(*StringObj).S
		vm.globals[name] = vm.pop()

	case OpLoadUpvalue:
		idx := vm.readU8(chunk, frame)
		uv := frame.closure.Upvalues[idx]
		if uv.Closed {
			vm.push(uv.Value)
		} else {
			vm.push(vm.stack[uv.Slot])
		}
	case OpStoreUpvalue:
		idx := vm.readU8(chunk, frame)
		uv := frame.closure.Upvalues[idx]
		if uv.Closed {
			uv.Value = vm.pop()
		} else {
			vm.stack[uv.Slot] = vm.pop()
		}
	case OpCloseUpvalue:
		vm.closeUpvalues(vm.sp - 1)
		vm.pop()

	case OpAdd, OpSub, OpMul, OpDiv, OpMod:
		if err := vm.execArith(op); err != nil {
			return Value{}, false, err
		}
	case OpNeg:
		v := vm.pop()
		switch v.Kind {
		case KInt:
			vm.push(IntVal(-v.AsInt()))
		case KFloat:
			vm.push(FloatVal(-v.AsFloat()))
		default:
			return Value{}, false, vm.runtimeException("TypeError", "unary - requires Int or Float")
		}

	case OpEq:
		b, a := vm.pop(), vm.pop()
		vm.push(BoolVal(Equal(a, b)))
	case OpNe:
		b, a := vm.pop(), vm.pop()
		vm.push(BoolVal(!Equal(a, b)))
	case OpLt, OpLe, OpGt, OpGe:
		if err := vm.execCompare(op); err != nil {
			return Value{}, false, err
		}
	case OpNot:
		v := vm.pop()
		vm.push(BoolVal(!v.AsBool()))

	case OpJump:
		off := vm.readI16(chunk, frame)
		frame.ip += int(off)
	case OpJumpIfFalse:
		off := vm.readI16(chunk, frame)
		if !vm.peek(0).AsBool() {
			frame.ip += int(off)
		}
	case OpJumpIfTrue:
		off := vm.readI16(chunk, frame)
		if vm.peek(0).AsBool() {
			frame.ip += int(off)
		}
	case OpJumpIfNull:
		off := vm.readI16(chunk, frame)
		if vm.peek(0).IsNull() {
			frame.ip += int(off)
		}
	case OpJumpIfNotNull:
		off := vm.readI16(chunk, frame)
		if !vm.peek(0).IsNull() {
			frame.ip += int(off)
		}
	case OpPopJumpIfNull:
		off := vm.readI16(chunk, frame)
		v := vm.pop()
		if v.IsNull() {
			frame.ip += int(off)
		}
	case OpLoop:
		off := vm.readI16(chunk, frame)
		frame.ip += int(off)

	case OpCall:
		argc := int(vm.readU8(chunk, frame))
		return vm.execCall(argc)
	case OpReturn:
		return vm.execReturn(frame)
	case OpClosure:
		idx := vm.readU16(chunk, frame)
		proto := chunk.Constants[idx].Obj.(*ClosureObj)
		cl := &ClosureObj{Fn: proto.Fn}
		for i := 0; i < proto.Fn.UpvalCount; i++ {
			isLocal := vm.readU8(chunk, frame)
			index := vm.readU8(chunk, frame)
			if isLocal == 1 {
				cl.Upvalues = append(cl.Upvalues, vm.captureUpvalue(frame.base+int(index)))
			} else {
				cl.Upvalues = append(cl.Upvalues, frame.closure.Upvalues[index])
			}
		}
		vm.push(ObjVal(cl))

	case OpGetField:
		idx := vm.readU16(chunk, frame)
		name := chunk.Constants[idx].Obj.(*StringObj).S
		recv := vm.pop()
		v, err := vm.getField(recv, name)
		if err != nil {
			return Value{}, false, err
		}
		vm.push(v)
	case OpSetField:
		idx := vm.readU16(chunk, frame)
		name := chunk.Constants[idx].Obj.(*StringObj).S
		val := vm.pop()
		recv := vm.pop()
		so, ok := recv.Obj.(*StructObj)
		if !ok {
			return Value{}, false, vm.runtimeException("TypeError", "cannot set field on non-struct")
		}
		so.Fields[name] = val
		vm.push(val)
	case OpGetProperty:
		idx := vm.readU16(chunk, frame)
		name := chunk.Constants[idx].Obj.(*StringObj).S
		recv := vm.pop()
		v, err := vm.getField(recv, name)
		if err != nil {
			return Value{}, false, err
		}
		vm.push(v)
	case OpGetIndex:
		index := vm.pop()
		recv := vm.pop()
		v, err := vm.getIndex(recv, index)
		if err != nil {
			return Value{}, false, err
		}
		vm.push(v)
	case OpSetIndex:
		val := vm.pop()
		index := vm.pop()
		recv := vm.pop()
		if err := vm.setIndex(recv, index, val); err != nil {
			return Value{}, false, err
		}
		vm.push(val)
	case OpNewStruct:
		typeIdx := vm.readU16(chunk, frame)
		n := int(vm.readU16(chunk, frame))
		typeName := chunk.Constants[typeIdx].Obj.(*StringObj).S
		order := make([]string, n)
		for i := 0; i < n; i++ {
			nameIdx := vm.readU16(chunk, frame)
			order[i] = chunk.Constants[nameIdx].Obj.(*StringObj).S
		}
		vals := make([]Value, n)
		for i := n - 1; i >= 0; i-- {
			vals[i] = vm.pop()
		}
		fields := make(map[string]Value, n)
		for i := 0; i < n; i++ {
			fields[order[i]] = vals[i]
		}
		vm.push(ObjVal(&StructObj{TypeName: typeName, Fields: fields, Order: order}))
	case OpNewList:
		n := int(vm.readU16(chunk, frame))
		elems := make([]Value, n)
		for i := n - 1; i >= 0; i-- {
			elems[i] = vm.pop()
		}
		vm.push(ObjVal(&ListObj{Elems: elems}))
	case OpNewMap:
		n := int(vm.readU16(chunk, frame))
		m := NewMapObj()
		pairs := make([][2]Value, n)
		for i := n - 1; i >= 0; i-- {
			val := vm.pop()
			key := vm.pop()
			pairs[i] = [2]Value{key, val}
		}
		for _, p := range pairs {
			m.Set(p[0], p[1])
		}
		vm.push(ObjVal(m))
	case OpStringConcat:
		n := int(vm.readU16(chunk, frame))
		parts := make([]Value, n)
		for i := n - 1; i >= 0; i-- {
			parts[i] = vm.pop()
		}
		s := ""
		for _, p := range parts {
			s += stringify(p)
		}
		vm.push(StringVal(s))
	case OpNewRange:
		end := vm.pop()
		start := vm.pop()
		vm.push(ObjVal(&RangeObj{Start: start.AsInt(), End: end.AsInt()}))
	case OpNewRangeInclusive:
		end := vm.pop()
		start := vm.pop()
		vm.push(ObjVal(&RangeObj{Start: start.AsInt(), End: end.AsInt(), Inclusive: true}))

	case OpGetIter:
		src := vm.pop()
		vm.push(ObjVal(makeIterator(src)))
	case OpIterNext:
		off := vm.readI16(chunk, frame)
		it := vm.peek(0).Obj.(*IteratorObj)
		v, ok := it.Next()
		if !ok {
			frame.ip += int(off)
			return Value{}, false, nil
		}
		vm.push(v)

	case OpThrow:
		v := vm.pop()
		return Value{}, false, &ExceptionObj{Kind: "Thrown", Message: Inspect(v), Payload: v}
	case OpPushHandler:
		h := int(vm.readI16(chunk, frame))
		f := int(vm.readI16(chunk, frame))
		rec := handlerRecord{
			handlerIP:  frame.ip - 2 + h,
			stackDepth: vm.sp,
			frameDepth: len(vm.frames),
		}
		if f != 0 {
			rec.hasFinally = true
			rec.finallyIP = frame.ip + f
		}
		vm.handlers = append(vm.handlers, rec)
	case OpPopHandler:
		if len(vm.handlers) > 0 {
			vm.handlers = vm.handlers[:len(vm.handlers)-1]
		}

	case OpIsNull:
		v := vm.pop()
		vm.push(BoolVal(v.IsNull()))
	case OpIsInstance:
		idx := vm.readU16(chunk, frame)
		name := chunk.Constants[idx].Obj.(*StringObj).S
		v := vm.pop()
		vm.push(BoolVal(TypeName(v) == name))
	case OpNewEnumVariant:
		enumIdx := vm.readU16(chunk, frame)
		variantIdx := vm.readU16(chunk, frame)
		argc := int(vm.readU16(chunk, frame))
		enumName := chunk.Constants[enumIdx].Obj.(*StringObj).S
		variantName := chunk.Constants[variantIdx].Obj.(*StringObj).S
		tuple := make([]Value, argc)
		for i := argc - 1; i >= 0; i-- {
			tuple[i] = vm.pop()
		}
		fields := make(map[string]Value, argc)
		for i, v := range tuple {
			fields[strconv.Itoa(i)] = v
		}
		vm.push(ObjVal(&EnumObj{TypeName: enumName, VariantName: variantName, Tuple: tuple, Fields: fields}))
	case OpMatchVariant:
		idx := vm.readU16(chunk, frame)
		name := chunk.Constants[idx].Obj.(*StringObj).S
		v := vm.pop()
		if eo, ok := v.Obj.(*EnumObj); ok {
			vm.push(BoolVal(eo.VariantName == name))
		} else {
			vm.push(BoolVal(false))
		}

	case OpNullSafeGetField:
		idx := vm.readU16(chunk, frame)
		recv := vm.pop()
		if recv.IsNull() {
			vm.push(NullVal())
			break
		}
		name := chunk.Constants[idx].Obj.(*StringObj).S
		v, err := vm.getField(recv, name)
		if err != nil {
			return Value{}, false, err
		}
		vm.push(v)
	case OpNullSafeGetIndex:
		index := vm.pop()
		recv := vm.pop()
		if recv.IsNull() {
			vm.push(NullVal())
			break
		}
		v, err := vm.getIndex(recv, index)
		if err != nil {
			return Value{}, false, err
		}
		vm.push(v)

	case OpAwait:
		v := vm.pop()
		if fut, ok := v.Obj.(*FutureObj); ok {
			if fut.Err != nil {
				return Value{}, false, fut.Err
			}
			vm.push(fut.Value)
		} else {
			vm.push(v)
		}
	case OpBreakpoint:
		// Handled by the debug hook before this instruction executes.

	default:
		return Value{}, false, &RuntimeError{Message: fmt.Sprintf("unknown opcode %d", byte(op))}
	}
	return Value{}, false, nil
}

func (vm *VM) runtimeException(kind, format string, args ...interface{}) *ExceptionObj {
	return &ExceptionObj{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func stringify(v Value) string {
	if v.Kind == KObj {
		if s, ok := v.Obj.(*StringObj); ok {
			return s.S
		}
	}
	return Inspect(v)
}
