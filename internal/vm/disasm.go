package vm

import (
	"fmt"
	"strings"
)

// Disassemble renders chunk's bytecode as human-readable text, one
// instruction per line, for the `disasm` CLI subcommand and debugging.
func Disassemble(chunk *Chunk, name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "== %s ==\n", name)
	offset := 0
	for offset < chunk.Len() {
		offset = disassembleInstruction(&b, chunk, offset)
	}
	return b.String()
}

func disassembleInstruction(b *strings.Builder, chunk *Chunk, offset int) int {
	op := Opcode(chunk.Code[offset])
	line := chunk.LineAt(offset)
	fmt.Fprintf(b, "%04d %4d %-16s", offset, line, op.String())

	size := operandSize(op)
	switch op {
	case OpConst, OpLoadGlobal, OpStoreGlobal, OpDefineGlobal, OpGetField, OpSetField,
		OpGetProperty, OpNullSafeGetField, OpIsInstance, OpMatchVariant:
		idx := chunk.ReadU16(offset + 1)
		fmt.Fprintf(b, " %d", idx)
		if int(idx) < len(chunk.Constants) {
			fmt.Fprintf(b, " ; %s", Inspect(chunk.Constants[idx]))
		}
	case OpLoadLocal, OpStoreLocal, OpNewList, OpNewMap, OpStringConcat:
		idx := chunk.ReadU16(offset + 1)
		fmt.Fprintf(b, " %d", idx)
	case OpLoadUpvalue, OpStoreUpvalue, OpCall, OpPopBelow:
		fmt.Fprintf(b, " %d", chunk.Code[offset+1])
	case OpInvoke:
		a := chunk.ReadU16(offset + 1)
		bb := chunk.Code[offset+3]
		fmt.Fprintf(b, " %d %d", a, bb)
	case OpNewStruct:
		typeIdx := chunk.ReadU16(offset + 1)
		count := chunk.ReadU16(offset + 3)
		fmt.Fprintf(b, " %d %d", typeIdx, count)
		if int(typeIdx) < len(chunk.Constants) {
			fmt.Fprintf(b, " ; %s", Inspect(chunk.Constants[typeIdx]))
		}
		for i := 0; i < int(count); i++ {
			nameIdx := chunk.ReadU16(offset + 5 + i*2)
			if int(nameIdx) < len(chunk.Constants) {
				fmt.Fprintf(b, " %s", Inspect(chunk.Constants[nameIdx]))
			}
		}
	case OpNewEnumVariant:
		enumIdx := chunk.ReadU16(offset + 1)
		variantIdx := chunk.ReadU16(offset + 3)
		argc := chunk.ReadU16(offset + 5)
		fmt.Fprintf(b, " %d %d %d", enumIdx, variantIdx, argc)
		if int(enumIdx) < len(chunk.Constants) && int(variantIdx) < len(chunk.Constants) {
			fmt.Fprintf(b, " ; %s.%s", Inspect(chunk.Constants[enumIdx]), Inspect(chunk.Constants[variantIdx]))
		}
	case OpJump, OpJumpIfFalse, OpJumpIfTrue, OpJumpIfNull, OpJumpIfNotNull,
		OpPopJumpIfNull, OpLoop, OpIterNext:
		off := chunk.ReadI16(offset + 1)
		fmt.Fprintf(b, " %d -> %d", off, offset+3+int(off))
	case OpPushHandler:
		h := chunk.ReadI16(offset + 1)
		f := chunk.ReadI16(offset + 3)
		fmt.Fprintf(b, " h=%d f=%d", h, f)
	}
	fmt.Fprintln(b)
	if size == 0 && op != OpClosure {
		return offset + 1
	}
	if op == OpClosure {
		// Upvalue descriptor count isn't statically known from the
		// chunk alone without the referenced FunctionObj; callers that
		// need exact upvalue-descriptor skipping should use the
		// compiler's own offsets instead of this best-effort view.
		return offset + 1 + 2
	}
	if op == OpNewStruct {
		count := int(chunk.ReadU16(offset + 3))
		return offset + 1 + size + count*2
	}
	return offset + 1 + size
}
