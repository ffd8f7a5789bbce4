// Package ast defines the syntax tree produced by the parser: modules,
// items, expressions, patterns and type annotations. Every node carries a
// source Span; items may carry leading doc-comment trivia.
package ast

import "github.com/horizonanalytic/stratum/internal/token"

// Node is implemented by every AST node.
type Node interface {
	Span() token.Span
}

// Module is the root of a parsed source file: an ordered list of
// top-level items.
type Module struct {
	Items []Item
	Sp    token.Span
}

func (m *Module) Span() token.Span { return m.Sp }

// Item is a top-level declaration: a function, struct, enum, interface,
// impl, import, a top-level let, or a bare statement.
type Item interface {
	Node
	itemNode()
	Doc() string
}

type ItemBase struct {
	Sp      token.Span
	DocText string
}

func (b ItemBase) Span() token.Span { return b.Sp }
func (b ItemBase) Doc() string      { return b.DocText }
func (ItemBase) itemNode()          {}

// FunctionItem declares a named function (possibly async, possibly
// generic over TypeParams).
type FunctionItem struct {
	ItemBase
	Name       string
	TypeParams []string
	Params     []Param
	ReturnType TypeAnn // nil = inferred
	Body       *BlockExpr
	IsAsync    bool
}

// Param is a single function parameter: a pattern plus an optional type
// annotation.
type Param struct {
	Pattern Pattern
	Type    TypeAnn
}

// StructField describes one field of a struct definition.
type StructField struct {
	Name   string
	Type   TypeAnn
	Public bool
}

// StructItem declares a struct type.
type StructItem struct {
	ItemBase
	Name       string
	TypeParams []string
	Fields     []StructField
}

// EnumVariant is one constructor of an EnumItem: unit, tuple-shaped, or
// struct-shaped.
type EnumVariant struct {
	Name   string
	Tuple  []TypeAnn     // non-nil for tuple-shaped variants
	Fields []StructField // non-nil for struct-shaped variants
}

// EnumItem declares an enum type.
type EnumItem struct {
	ItemBase
	Name       string
	TypeParams []string
	Variants   []EnumVariant
}

// InterfaceMethod is one method signature inside an InterfaceItem.
type InterfaceMethod struct {
	Name       string
	Params     []TypeAnn
	ReturnType TypeAnn
}

// InterfaceItem declares an interface (a set of required method
// signatures).
type InterfaceItem struct {
	ItemBase
	Name    string
	Methods []InterfaceMethod
}

// ImplItem implements an interface (optional) for a concrete type.
type ImplItem struct {
	ItemBase
	TargetType    string
	InterfaceName string // "" if this is an inherent impl
	Methods       []*FunctionItem
}

// ImportItem imports a module path, with an optional alias.
type ImportItem struct {
	ItemBase
	Path  string
	Alias string // "" if none
}

// LetItem is a top-level `let` binding.
type LetItem struct {
	ItemBase
	Pattern Pattern
	Type    TypeAnn
	Value   Expr
}

// ExprStmtItem wraps a bare top-level expression statement.
type ExprStmtItem struct {
	ItemBase
	Expr Expr
}

