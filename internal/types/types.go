// Package types defines the internal Type representation used by the
// Hindley-Milner inferencer, distinct from the syntactic ast.TypeAnn.
package types

import (
	"fmt"
	"strings"
)

// Type is implemented by every internal type. Types are immutable value
// types; substitution produces new Type values rather than mutating in
// place.
type Type interface {
	String() string
	isType()
}

type prim struct{ name string }

func (p prim) String() string { return p.name }
func (prim) isType()          {}

var (
	Int    Type = prim{"Int"}
	Float  Type = prim{"Float"}
	Bool   Type = prim{"Bool"}
	String Type = prim{"String"}
	Null   Type = prim{"Null"}
	Unit   Type = prim{"Unit"}
	Never  Type = prim{"Never"}
	Error  Type = prim{"Error"}
	Range  Type = prim{"Range"}
)

// List is `List<T>`.
type List struct{ Elem Type }

func (t List) String() string { return fmt.Sprintf("List<%s>", t.Elem) }
func (List) isType()          {}

// Map is `Map<K,V>`.
type Map struct{ Key, Value Type }

func (t Map) String() string { return fmt.Sprintf("Map<%s, %s>", t.Key, t.Value) }
func (Map) isType()          {}

// Nullable is `T?`. Invariant: Nullable<Nullable<T>> collapses to
// Nullable<T> — enforced by the MakeNullable constructor, not by this
// type alone.
type Nullable struct{ Inner Type }

func (t Nullable) String() string { return fmt.Sprintf("%s?", t.Inner) }
func (Nullable) isType()          {}

// MakeNullable builds Nullable<inner>, collapsing nested Nullables.
func MakeNullable(inner Type) Type {
	if n, ok := inner.(Nullable); ok {
		return n
	}
	return Nullable{Inner: inner}
}

// Future is `Future<T>`.
type Future struct{ Inner Type }

func (t Future) String() string { return fmt.Sprintf("Future<%s>", t.Inner) }
func (Future) isType()          {}

// Tuple is `(T1, T2, ...)`.
type Tuple struct{ Elems []Type }

func (t Tuple) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
func (Tuple) isType() {}

// Function is `(Params...) -> Ret`.
type Function struct {
	Params []Type
	Ret    Type
}

func (t Function) String() string {
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = p.String()
	}
	return fmt.Sprintf("(%s) -> %s", strings.Join(parts, ", "), t.Ret)
}
func (Function) isType() {}

// Struct is a nominal struct type, identified by ID (unique per
// declaration) plus display Name and instantiated TypeArgs.
type Struct struct {
	ID       int
	Name     string
	TypeArgs []Type
}

func (t Struct) String() string { return nominalString(t.Name, t.TypeArgs) }
func (Struct) isType()          {}

// Enum is a nominal enum type, identified by ID plus display Name and
// instantiated TypeArgs.
type Enum struct {
	ID       int
	Name     string
	TypeArgs []Type
}

func (t Enum) String() string { return nominalString(t.Name, t.TypeArgs) }
func (Enum) isType()          {}

func nominalString(name string, args []Type) string {
	if len(args) == 0 {
		return name
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s<%s>", name, strings.Join(parts, ", "))
}

// TypeVar is an unresolved type variable produced during inference.
type TypeVar struct{ ID int }

func (t TypeVar) String() string { return fmt.Sprintf("t%d", t.ID) }
func (TypeVar) isType()          {}

// SameNominalID reports whether a and b are both Struct (or both Enum)
// with the same declaration ID — the identity check §3 requires before
// comparing type-argument lists.
func SameNominalID(a, b Type) (sameKind bool, sameID bool) {
	switch av := a.(type) {
	case Struct:
		if bv, ok := b.(Struct); ok {
			return true, av.ID == bv.ID
		}
	case Enum:
		if bv, ok := b.(Enum); ok {
			return true, av.ID == bv.ID
		}
	}
	return false, false
}
