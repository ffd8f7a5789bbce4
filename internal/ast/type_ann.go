package ast

import "github.com/horizonanalytic/stratum/internal/token"

// TypeAnn is a syntactic type annotation, distinct from the internal
// inferred Type representation used by the type checker.
type TypeAnn interface {
	Node
	typeAnnNode()
}

type TypeAnnBase struct{ Sp token.Span }

func (b TypeAnnBase) Span() token.Span { return b.Sp }
func (TypeAnnBase) typeAnnNode()       {}

// NamedType is `Name` or `Name<Arg, ...>`.
type NamedType struct {
	TypeAnnBase
	Name string
	Args []TypeAnn
}

// NullableType is `T?`.
type NullableType struct {
	TypeAnnBase
	Inner TypeAnn
}

// FuncType is `(Param, ...) -> Ret`.
type FuncType struct {
	TypeAnnBase
	Params []TypeAnn
	Ret    TypeAnn
}

// TupleType is `(T1, T2, ...)` with at least two elements.
type TupleType struct {
	TypeAnnBase
	Elems []TypeAnn
}

// ListType is `[T]`.
type ListType struct {
	TypeAnnBase
	Elem TypeAnn
}

// UnitType is `()`.
type UnitType struct{ TypeAnnBase }

// NeverType is `!`.
type NeverType struct{ TypeAnnBase }

// InferredType is `_`: the checker must infer it.
type InferredType struct{ TypeAnnBase }
