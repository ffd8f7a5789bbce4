package ast

import "github.com/horizonanalytic/stratum/internal/token"

// Expr is implemented by every expression node. Blocks are expressions:
// the last expression without a trailing semicolon is the block's value.
type Expr interface {
	Node
	exprNode()
}

type ExprBase struct{ Sp token.Span }

func (b ExprBase) Span() token.Span { return b.Sp }
func (ExprBase) exprNode()          {}

// IntLit is an integer literal.
type IntLit struct {
	ExprBase
	Value int64
}

// FloatLit is a floating-point literal.
type FloatLit struct {
	ExprBase
	Value float64
}

// BoolLit is `true` or `false`.
type BoolLit struct {
	ExprBase
	Value bool
}

// NullLit is the `null` literal.
type NullLit struct{ ExprBase }

// StringLit is a (possibly interpolated) string literal. Parts alternates
// between literal text (Exprs[i] == nil) and interpolated sub-expressions.
type StringLit struct {
	ExprBase
	Parts  []string
	Exprs  []Expr // len(Exprs) == len(Parts); nil entries are plain text runs
	Triple bool
}

// Ident is a bare identifier reference.
type Ident struct {
	ExprBase
	Name string
}

// ListLit is a list literal `[e1, e2, ...]`.
type ListLit struct {
	ExprBase
	Elems []Expr
}

// MapEntry is one `key: value` pair of a MapLit.
type MapEntry struct {
	Key   Expr
	Value Expr
}

// MapLit is a map literal.
type MapLit struct {
	ExprBase
	Entries []MapEntry
}

// TupleLit is a tuple literal `(e1, e2, ...)`.
type TupleLit struct {
	ExprBase
	Elems []Expr
}

// StructLit constructs a struct value: `Name { field: value, ... }`.
type StructLit struct {
	ExprBase
	Name   string
	Fields []MapEntry // Key must be an *Ident naming the field
}

// BinaryExpr is a binary operator application.
type BinaryExpr struct {
	ExprBase
	Op          token.Kind
	Left, Right Expr
}

// UnaryExpr is a prefix operator application (`-x`, `!x`).
type UnaryExpr struct {
	ExprBase
	Op      token.Kind
	Operand Expr
}

// AssignExpr is `target = value` (right-associative).
type AssignExpr struct {
	ExprBase
	Target Expr
	Value  Expr
}

// CallExpr applies Callee to Args.
type CallExpr struct {
	ExprBase
	Callee Expr
	Args   []Expr
}

// IndexExpr is `recv[index]`.
type IndexExpr struct {
	ExprBase
	Receiver Expr
	Index    Expr
}

// FieldExpr is `recv.field`.
type FieldExpr struct {
	ExprBase
	Receiver Expr
	Field    string
}

// NullSafeFieldExpr is `recv?.field`.
type NullSafeFieldExpr struct {
	ExprBase
	Receiver Expr
	Field    string
}

// NullSafeIndexExpr is `recv?.[index]`.
type NullSafeIndexExpr struct {
	ExprBase
	Receiver Expr
	Index    Expr
}

// CoalesceExpr is `left ?? right`.
type CoalesceExpr struct {
	ExprBase
	Left, Right Expr
}

// PipeExpr is `arg |> f`: sugar for `f(arg)`.
type PipeExpr struct {
	ExprBase
	Arg  Expr
	Func Expr
}

// RangeExpr is `start..end` or `start..=end`.
type RangeExpr struct {
	ExprBase
	Start, End Expr
	Inclusive  bool
}

// IfExpr is `if cond { then } else { else }` (Else may be nil).
type IfExpr struct {
	ExprBase
	Cond Expr
	Then *BlockExpr
	Else Expr // *BlockExpr or *IfExpr (else-if chain) or nil
}

// WhileExpr is `while cond { body }`.
type WhileExpr struct {
	ExprBase
	Cond Expr
	Body *BlockExpr
}

// ForExpr is `for pattern in iter { body }`.
type ForExpr struct {
	ExprBase
	Pattern Pattern
	Iter    Expr
	Body    *BlockExpr
}

// MatchArm is one `pattern [if guard] => body` arm of a MatchExpr.
type MatchArm struct {
	Pattern Pattern
	Guard   Expr // nil if no guard
	Body    Expr
}

// MatchExpr is `match subject { arm... }`.
type MatchExpr struct {
	ExprBase
	Subject Expr
	Arms    []MatchArm
}

// TryExpr is `try { body } catch p { handler } [finally { f }]`.
type TryExpr struct {
	ExprBase
	Body      *BlockExpr
	CatchPat  Pattern
	Handler   *BlockExpr
	Finally   *BlockExpr // nil if absent
}

// ThrowExpr is `throw e`.
type ThrowExpr struct {
	ExprBase
	Value Expr
}

// AwaitExpr is `await e`.
type AwaitExpr struct {
	ExprBase
	Value Expr
}

// ReturnExpr is `return [e]`.
type ReturnExpr struct {
	ExprBase
	Value Expr // nil for bare `return`
}

// BreakExpr is `break`.
type BreakExpr struct{ ExprBase }

// ContinueExpr is `continue`.
type ContinueExpr struct{ ExprBase }

// FuncLit is an anonymous function literal (a closure).
type FuncLit struct {
	ExprBase
	Params     []Param
	ReturnType TypeAnn
	Body       *BlockExpr
	IsAsync    bool
}

// LetExpr is a `let pattern [: type] = value` binding used as a
// statement inside a block.
type LetExpr struct {
	ExprBase
	Pattern Pattern
	Type    TypeAnn
	Value   Expr
}

// BlockExpr is `{ stmt...; [tail] }`. Stmts are evaluated for effect;
// Tail (if non-nil) is the block's value, otherwise the block evaluates
// to Unit.
type BlockExpr struct {
	ExprBase
	Stmts []Expr
	Tail  Expr
}
