package vm

import (
	"fmt"
	"math"
	"strings"
)

// Kind identifies which alternative of Value is populated.
type Kind uint8

const (
	KNull Kind = iota
	KInt
	KFloat
	KBool
	KObj
)

// Value is a stack-allocated tagged union: primitives live in Data,
// heap-shaped values (strings, lists, maps, structs, enums, closures,
// native functions, futures, ranges, iterators) live in Obj. This
// mirrors the teacher's `{Type, Data uint64, Obj}` representation so
// primitives never allocate.
type Value struct {
	Kind Kind
	Data uint64
	Obj  interface{}
}

func NullVal() Value        { return Value{Kind: KNull} }
func IntVal(v int64) Value  { return Value{Kind: KInt, Data: uint64(v)} }
func BoolVal(v bool) Value {
	var d uint64
	if v {
		d = 1
	}
	return Value{Kind: KBool, Data: d}
}
func FloatVal(v float64) Value { return Value{Kind: KFloat, Data: math.Float64bits(v)} }
func StringVal(s string) Value { return Value{Kind: KObj, Obj: &StringObj{S: s}} }
func ObjVal(o interface{}) Value { return Value{Kind: KObj, Obj: o} }

func (v Value) AsInt() int64     { return int64(v.Data) }
func (v Value) AsFloat() float64 { return math.Float64frombits(v.Data) }
func (v Value) AsBool() bool     { return v.Data != 0 }
func (v Value) IsNull() bool     { return v.Kind == KNull }

// StringObj is the heap representation of a string value.
type StringObj struct{ S string }

// ListObj is a mutable, ordered, heap-allocated list.
type ListObj struct{ Elems []Value }

// MapEntryPair preserves map insertion order (the bytecode model's
// `GetIter` iterates map entries in insertion order).
type MapEntryPair struct {
	Key, Value Value
}

// MapObj is a mutable, insertion-ordered map keyed by a hashable
// scalar representation of Value (see hashKey).
type MapObj struct {
	order []string
	index map[string]int
	pairs []MapEntryPair
}

func NewMapObj() *MapObj {
	return &MapObj{index: map[string]int{}}
}

func (m *MapObj) Get(key Value) (Value, bool) {
	k := hashKey(key)
	if i, ok := m.index[k]; ok {
		return m.pairs[i].Value, true
	}
	return Value{}, false
}

func (m *MapObj) Set(key, val Value) {
	k := hashKey(key)
	if i, ok := m.index[k]; ok {
		m.pairs[i].Value = val
		return
	}
	m.index[k] = len(m.pairs)
	m.pairs = append(m.pairs, MapEntryPair{Key: key, Value: val})
}

func (m *MapObj) Pairs() []MapEntryPair { return m.pairs }

func hashKey(v Value) string {
	switch v.Kind {
	case KNull:
		return "n:"
	case KBool:
		return fmt.Sprintf("b:%v", v.AsBool())
	case KInt:
		return fmt.Sprintf("i:%d", v.AsInt())
	case KFloat:
		return fmt.Sprintf("f:%d", v.Data)
	case KObj:
		if s, ok := v.Obj.(*StringObj); ok {
			return "s:" + s.S
		}
	}
	return fmt.Sprintf("p:%p", v.Obj)
}

// TupleObj is an immutable fixed-size tuple.
type TupleObj struct{ Elems []Value }

// StructObj is a struct instance: field values indexed the same order
// as the declaration's field list.
type StructObj struct {
	TypeName string
	Fields   map[string]Value
	Order    []string
}

// EnumObj is an enum variant instance.
type EnumObj struct {
	TypeName    string
	VariantName string
	Tuple       []Value
	Fields      map[string]Value
}

// RangeObj is an integer range, exclusive unless Inclusive is set.
type RangeObj struct {
	Start, End int64
	Inclusive  bool
}

// ClosureObj is a compiled function bound to its captured upvalues.
type ClosureObj struct {
	Fn       *FunctionObj
	Upvalues []*Upvalue
}

// FunctionObj is a compiled function body: its Chunk plus arity and
// name, shared by every ClosureObj created from the same literal.
type FunctionObj struct {
	Name       string
	Arity      int
	Chunk      *Chunk
	UpvalCount int
	IsAsync    bool
}

// NativeFn is a host-implemented function exposed to Stratum code.
type NativeFn struct {
	Name string
	Fn   func(args []Value) (Value, error)
}

// Upvalue is an open or closed reference to a captured local. While
// Closed is false, Slot indexes into the owning frame's stack segment;
// once closed (the owning frame returned), Value holds the final
// value directly.
type Upvalue struct {
	Closed bool
	Slot   int
	Value  Value
}

// FutureObj is a cooperatively scheduled async result cell; see
// internal/scheduler.
type FutureObj struct {
	Done  bool
	Value Value
	Err   error
	// Waiters holds continuations to call when the future resolves;
	// internal/scheduler's Resolve runs them, the VM does not.
	Waiters []func(Value, error)
}

// IteratorObj is a single-pass iterator produced by GetIter.
type IteratorObj struct {
	Next func() (Value, bool)
}

// ExceptionObj wraps a thrown value with the diagnostic-style kind tag
// §4.6.5 names (DivisionByZero, OutOfBounds, NoSuchField, ...).
type ExceptionObj struct {
	Kind    string
	Message string
	Payload Value
}

func (e *ExceptionObj) Error() string { return e.Kind + ": " + e.Message }

// TypeName returns a human-readable name for v's runtime type, used in
// error messages and `IsInstance`.
func TypeName(v Value) string {
	switch v.Kind {
	case KNull:
		return "Null"
	case KInt:
		return "Int"
	case KFloat:
		return "Float"
	case KBool:
		return "Bool"
	case KObj:
		switch o := v.Obj.(type) {
		case *StringObj:
			return "String"
		case *ListObj:
			return "List"
		case *MapObj:
			return "Map"
		case *TupleObj:
			return "Tuple"
		case *StructObj:
			return o.TypeName
		case *EnumObj:
			return o.TypeName
		case *RangeObj:
			return "Range"
		case *ClosureObj:
			return "Function"
		case *NativeFn:
			return "Function"
		case *FutureObj:
			return "Future"
		}
	}
	return "Unknown"
}

// Equal implements §4.6.3's structural-equality contract for Eq/Ne:
// same primitive value, same string contents, same list/map reference
// or element-wise equal, Null == Null, otherwise false.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KNull:
		return true
	case KInt:
		return a.AsInt() == b.AsInt()
	case KFloat:
		return a.AsFloat() == b.AsFloat()
	case KBool:
		return a.AsBool() == b.AsBool()
	case KObj:
		return equalObj(a.Obj, b.Obj)
	}
	return false
}

func equalObj(a, b interface{}) bool {
	if a == b {
		return true
	}
	switch av := a.(type) {
	case *StringObj:
		bv, ok := b.(*StringObj)
		return ok && av.S == bv.S
	case *ListObj:
		bv, ok := b.(*ListObj)
		if !ok || len(av.Elems) != len(bv.Elems) {
			return false
		}
		for i := range av.Elems {
			if !Equal(av.Elems[i], bv.Elems[i]) {
				return false
			}
		}
		return true
	case *TupleObj:
		bv, ok := b.(*TupleObj)
		if !ok || len(av.Elems) != len(bv.Elems) {
			return false
		}
		for i := range av.Elems {
			if !Equal(av.Elems[i], bv.Elems[i]) {
				return false
			}
		}
		return true
	case *MapObj:
		bv, ok := b.(*MapObj)
		if !ok || len(av.pairs) != len(bv.pairs) {
			return false
		}
		for _, p := range av.pairs {
			bval, ok := bv.Get(p.Key)
			if !ok || !Equal(p.Value, bval) {
				return false
			}
		}
		return true
	case *StructObj:
		bv, ok := b.(*StructObj)
		if !ok || av.TypeName != bv.TypeName {
			return false
		}
		for k, v := range av.Fields {
			if !Equal(v, bv.Fields[k]) {
				return false
			}
		}
		return true
	case *EnumObj:
		bv, ok := b.(*EnumObj)
		if !ok || av.TypeName != bv.TypeName || av.VariantName != bv.VariantName {
			return false
		}
		for i := range av.Tuple {
			if !Equal(av.Tuple[i], bv.Tuple[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Inspect renders v for diagnostics and the `disasm` CLI
// output — not meant to be Stratum's user-facing string conversion.
func Inspect(v Value) string {
	switch v.Kind {
	case KNull:
		return "null"
	case KInt:
		return fmt.Sprintf("%d", v.AsInt())
	case KFloat:
		return fmt.Sprintf("%g", v.AsFloat())
	case KBool:
		return fmt.Sprintf("%v", v.AsBool())
	case KObj:
		switch o := v.Obj.(type) {
		case *StringObj:
			return o.S
		case *ListObj:
			parts := make([]string, len(o.Elems))
			for i, e := range o.Elems {
				parts[i] = Inspect(e)
			}
			return "[" + strings.Join(parts, ", ") + "]"
		case *StructObj:
			var b strings.Builder
			b.WriteString(o.TypeName)
			b.WriteString(" { ")
			for i, name := range o.Order {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(name)
				b.WriteString(": ")
				b.WriteString(Inspect(o.Fields[name]))
			}
			b.WriteString(" }")
			return b.String()
		case *EnumObj:
			if len(o.Tuple) == 0 {
				return o.VariantName
			}
			parts := make([]string, len(o.Tuple))
			for i, e := range o.Tuple {
				parts[i] = Inspect(e)
			}
			return o.VariantName + "(" + strings.Join(parts, ", ") + ")"
		case *ClosureObj:
			return fmt.Sprintf("<fn %s>", o.Fn.Name)
		case *NativeFn:
			return fmt.Sprintf("<native %s>", o.Name)
		}
	}
	return "<value>"
}
