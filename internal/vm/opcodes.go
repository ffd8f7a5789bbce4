// Package vm implements the stack-based bytecode virtual machine: the
// Chunk container, the Value representation, the AST-to-bytecode
// compiler, and the instruction dispatch loop.
package vm

// Opcode identifies a single bytecode instruction.
type Opcode byte

const (
	// Stack
	OpConst Opcode = iota
	OpNull
	OpTrue
	OpFalse
	OpPop
	OpDup
	OpPopBelow

	// Locals
	OpLoadLocal
	OpStoreLocal

	// Globals
	OpLoadGlobal
	OpStoreGlobal
	OpDefineGlobal

	// Upvalues
	OpLoadUpvalue
	OpStoreUpvalue
	OpCloseUpvalue

	// Arithmetic
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpNeg

	// Comparison
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe

	// Logical
	OpNot

	// Jumps
	OpJump
	OpJumpIfFalse
	OpJumpIfTrue
	OpJumpIfNull
	OpJumpIfNotNull
	OpPopJumpIfNull
	OpLoop

	// Calls
	OpCall
	OpInvoke
	OpReturn
	OpClosure

	// Objects
	OpGetField
	OpSetField
	OpGetProperty
	OpGetIndex
	OpSetIndex
	OpNewStruct
	OpNewList
	OpNewMap
	OpStringConcat
	OpNewRange
	OpNewRangeInclusive

	// Iteration
	OpGetIter
	OpIterNext

	// Exceptions
	OpThrow
	OpPushHandler
	OpPopHandler

	// Type
	OpIsNull
	OpIsInstance
	OpNewEnumVariant
	OpMatchVariant

	// Null-safe
	OpNullSafeGetField
	OpNullSafeGetIndex

	// Misc
	OpAwait
	OpBreakpoint
)

var opNames = map[Opcode]string{
	OpConst: "Const", OpNull: "Null", OpTrue: "True", OpFalse: "False",
	OpPop: "Pop", OpDup: "Dup", OpPopBelow: "PopBelow",
	OpLoadLocal: "LoadLocal", OpStoreLocal: "StoreLocal",
	OpLoadGlobal: "LoadGlobal", OpStoreGlobal: "StoreGlobal", OpDefineGlobal: "DefineGlobal",
	OpLoadUpvalue: "LoadUpvalue", OpStoreUpvalue: "StoreUpvalue", OpCloseUpvalue: "CloseUpvalue",
	OpAdd: "Add", OpSub: "Sub", OpMul: "Mul", OpDiv: "Div", OpMod: "Mod", OpNeg: "Neg",
	OpEq: "Eq", OpNe: "Ne", OpLt: "Lt", OpLe: "Le", OpGt: "Gt", OpGe: "Ge",
	OpNot: "Not",
	OpJump: "Jump", OpJumpIfFalse: "JumpIfFalse", OpJumpIfTrue: "JumpIfTrue",
	OpJumpIfNull: "JumpIfNull", OpJumpIfNotNull: "JumpIfNotNull",
	OpPopJumpIfNull: "PopJumpIfNull", OpLoop: "Loop",
	OpCall: "Call", OpInvoke: "Invoke", OpReturn: "Return", OpClosure: "Closure",
	OpGetField: "GetField", OpSetField: "SetField", OpGetProperty: "GetProperty",
	OpGetIndex: "GetIndex", OpSetIndex: "SetIndex",
	OpNewStruct: "NewStruct", OpNewList: "NewList", OpNewMap: "NewMap",
	OpStringConcat: "StringConcat", OpNewRange: "NewRange", OpNewRangeInclusive: "NewRangeInclusive",
	OpGetIter: "GetIter", OpIterNext: "IterNext",
	OpThrow: "Throw", OpPushHandler: "PushHandler", OpPopHandler: "PopHandler",
	OpIsNull: "IsNull", OpIsInstance: "IsInstance",
	OpNewEnumVariant: "NewEnumVariant", OpMatchVariant: "MatchVariant",
	OpNullSafeGetField: "NullSafeGetField", OpNullSafeGetIndex: "NullSafeGetIndex",
	OpAwait: "Await", OpBreakpoint: "Breakpoint",
}

func (op Opcode) String() string {
	if n, ok := opNames[op]; ok {
		return n
	}
	return "UnknownOp"
}

// operandSize returns the number of operand bytes following op's opcode
// byte, used by the disassembler and the dispatch loop's ip advance.
func operandSize(op Opcode) int {
	switch op {
	case OpConst, OpLoadLocal, OpStoreLocal, OpLoadGlobal, OpStoreGlobal, OpDefineGlobal,
		OpGetField, OpSetField, OpGetProperty, OpNewList, OpNewMap,
		OpStringConcat, OpIsInstance, OpMatchVariant,
		OpNullSafeGetField:
		return 2
	case OpLoadUpvalue, OpStoreUpvalue, OpCall, OpPopBelow:
		return 1
	case OpInvoke:
		return 3
	case OpNewStruct:
		return 4 // base (typeIdx u16, count u16); field-name constant indices follow, count*2 bytes
	case OpNewEnumVariant:
		return 6 // enumNameIdx u16, variantNameIdx u16, argc u16
	case OpJump, OpJumpIfFalse, OpJumpIfTrue, OpJumpIfNull, OpJumpIfNotNull,
		OpPopJumpIfNull, OpLoop, OpIterNext:
		return 2
	case OpPushHandler:
		return 4
	case OpClosure:
		return 2 // base; upvalue descriptors are read dynamically, see compiler/vm
	default:
		return 0
	}
}
