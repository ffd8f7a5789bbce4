package parser

import (
	"testing"

	"github.com/horizonanalytic/stratum/internal/ast"
	"github.com/horizonanalytic/stratum/internal/lexer"
	"github.com/horizonanalytic/stratum/internal/token"
)

func parseOK(t *testing.T, src string) *ast.Module {
	t.Helper()
	mod, diags := Parse(src)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics for %q: %v", src, diags)
	}
	return mod
}

func lastExprItem(t *testing.T, mod *ast.Module) ast.Expr {
	t.Helper()
	if len(mod.Items) == 0 {
		t.Fatalf("module has no items")
	}
	es, ok := mod.Items[len(mod.Items)-1].(*ast.ExprStmtItem)
	if !ok {
		t.Fatalf("last item is %T, not an ExprStmtItem", mod.Items[len(mod.Items)-1])
	}
	return es.Expr
}

func TestParseArithmeticPrecedence(t *testing.T) {
	mod := parseOK(t, "1 + 2 * 3")
	bin, ok := lastExprItem(t, mod).(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("got %T, want *ast.BinaryExpr", lastExprItem(t, mod))
	}
	if bin.Op != token.PLUS {
		t.Fatalf("top-level op = %s, want +", bin.Op)
	}
	if _, ok := bin.Right.(*ast.BinaryExpr); !ok {
		t.Fatalf("right operand should be the higher-precedence 2 * 3, got %T", bin.Right)
	}
}

func TestParseParenthesesOverridePrecedence(t *testing.T) {
	mod := parseOK(t, "(1 + 2) * 3")
	bin := lastExprItem(t, mod).(*ast.BinaryExpr)
	if bin.Op != token.STAR {
		t.Fatalf("top-level op = %s, want *", bin.Op)
	}
	if _, ok := bin.Left.(*ast.BinaryExpr); !ok {
		t.Fatalf("left operand should be the parenthesized 1 + 2, got %T", bin.Left)
	}
}

func TestParseAssignIsRightAssociative(t *testing.T) {
	mod := parseOK(t, "a = b = 1")
	assign, ok := lastExprItem(t, mod).(*ast.AssignExpr)
	if !ok {
		t.Fatalf("got %T, want *ast.AssignExpr", lastExprItem(t, mod))
	}
	if _, ok := assign.Value.(*ast.AssignExpr); !ok {
		t.Fatalf("right-hand side should itself be an assignment, got %T", assign.Value)
	}
}

func TestParseFunctionItemWithParamsAndReturnType(t *testing.T) {
	mod := parseOK(t, `
fx add(a: Int, b: Int) -> Int {
    a + b
}
`)
	fn, ok := mod.Items[0].(*ast.FunctionItem)
	if !ok {
		t.Fatalf("got %T, want *ast.FunctionItem", mod.Items[0])
	}
	if fn.Name != "add" || len(fn.Params) != 2 {
		t.Fatalf("got name=%q params=%d, want add/2", fn.Name, len(fn.Params))
	}
}

func TestParseStructItemFields(t *testing.T) {
	mod := parseOK(t, `struct Point { x: Int, y: Int }`)
	sd, ok := mod.Items[0].(*ast.StructItem)
	if !ok {
		t.Fatalf("got %T, want *ast.StructItem", mod.Items[0])
	}
	if sd.Name != "Point" || len(sd.Fields) != 2 {
		t.Fatalf("got name=%q fields=%d, want Point/2", sd.Name, len(sd.Fields))
	}
}

func TestParseStructLiteralOnlyForCapitalizedNames(t *testing.T) {
	mod := parseOK(t, `struct Point { x: Int, y: Int }
Point { x: 1, y: 2 }`)
	lit, ok := mod.Items[len(mod.Items)-1].(*ast.ExprStmtItem).Expr.(*ast.StructLit)
	if !ok {
		t.Fatalf("got %T, want *ast.StructLit", mod.Items[len(mod.Items)-1])
	}
	if lit.Name != "Point" || len(lit.Fields) != 2 {
		t.Fatalf("got name=%q fields=%d, want Point/2", lit.Name, len(lit.Fields))
	}
}

func TestParseLowercaseBraceIsABlockNotAStructLiteral(t *testing.T) {
	mod := parseOK(t, "if x { 1 } else { 2 }")
	if _, ok := lastExprItem(t, mod).(*ast.IfExpr); !ok {
		t.Fatalf("got %T, want *ast.IfExpr (braces here are blocks, not a struct literal)", lastExprItem(t, mod))
	}
}

func TestParseEnumItemWithMixedVariantShapes(t *testing.T) {
	mod := parseOK(t, `
enum Shape {
    None,
    Circle(Int),
    Rect { w: Int, h: Int },
}
`)
	en, ok := mod.Items[0].(*ast.EnumItem)
	if !ok {
		t.Fatalf("got %T, want *ast.EnumItem", mod.Items[0])
	}
	if len(en.Variants) != 3 {
		t.Fatalf("got %d variants, want 3", len(en.Variants))
	}
	if en.Variants[0].Tuple != nil || en.Variants[0].Fields != nil {
		t.Errorf("unit variant should have neither Tuple nor Fields set")
	}
	if en.Variants[1].Tuple == nil {
		t.Errorf("tuple variant should have Tuple set")
	}
	if en.Variants[2].Fields == nil {
		t.Errorf("struct-shaped variant should have Fields set")
	}
}

func TestParseMatchExprWithEnumVariantPatterns(t *testing.T) {
	mod := parseOK(t, `
match s {
    Circle(r) => r,
    None => 0,
}
`)
	m, ok := lastExprItem(t, mod).(*ast.MatchExpr)
	if !ok {
		t.Fatalf("got %T, want *ast.MatchExpr", lastExprItem(t, mod))
	}
	if len(m.Arms) != 2 {
		t.Fatalf("got %d arms, want 2", len(m.Arms))
	}
	first, ok := m.Arms[0].Pattern.(*ast.EnumVariantPattern)
	if !ok || first.VariantName != "Circle" || len(first.Tuple) != 1 {
		t.Fatalf("got %#v, want EnumVariantPattern{VariantName: Circle, Tuple: [r]}", m.Arms[0].Pattern)
	}
}

func TestParseOrPatternInMatchArm(t *testing.T) {
	mod := parseOK(t, `
match n {
    1 | 2 | 3 => "small",
    _ => "large",
}
`)
	m := lastExprItem(t, mod).(*ast.MatchExpr)
	or, ok := m.Arms[0].Pattern.(*ast.OrPattern)
	if !ok || len(or.Alternatives) != 3 {
		t.Fatalf("got %#v, want an OrPattern with 3 alternatives", m.Arms[0].Pattern)
	}
}

func TestParseNullSafeChainAndCoalesce(t *testing.T) {
	mod := parseOK(t, "a?.b ?? c")
	coal, ok := lastExprItem(t, mod).(*ast.CoalesceExpr)
	if !ok {
		t.Fatalf("got %T, want *ast.CoalesceExpr", lastExprItem(t, mod))
	}
	if _, ok := coal.Left.(*ast.NullSafeFieldExpr); !ok {
		t.Fatalf("left side of ?? should be the null-safe field access, got %T", coal.Left)
	}
}

func TestParsePipeExprKeepsLeftSideAsArgument(t *testing.T) {
	mod := parseOK(t, "x |> f")
	pipe, ok := lastExprItem(t, mod).(*ast.PipeExpr)
	if !ok {
		t.Fatalf("got %T, want *ast.PipeExpr", lastExprItem(t, mod))
	}
	if _, ok := pipe.Arg.(*ast.Ident); !ok {
		t.Fatalf("pipe argument should be the left-hand identifier, got %T", pipe.Arg)
	}
}

func TestParseRangeExprInclusiveAndExclusive(t *testing.T) {
	mod := parseOK(t, "0..10")
	r, ok := lastExprItem(t, mod).(*ast.RangeExpr)
	if !ok {
		t.Fatalf("got %T, want *ast.RangeExpr", lastExprItem(t, mod))
	}
	if r.Inclusive {
		t.Errorf("0..10 should be exclusive")
	}
	mod = parseOK(t, "0..=10")
	r, ok = lastExprItem(t, mod).(*ast.RangeExpr)
	if !ok || !r.Inclusive {
		t.Fatalf("got %#v, want an inclusive *ast.RangeExpr", lastExprItem(t, mod))
	}
}

func TestParseSyntaxErrorRecoversAtNextItem(t *testing.T) {
	_, diags := Parse(`
let x =
let y = 2
`)
	if len(diags) == 0 {
		t.Fatalf("expected at least one syntax error")
	}
}

func TestParseTupleLiteralAndIndexing(t *testing.T) {
	mod := parseOK(t, "(1, 2, 3)[0]")
	idx, ok := lastExprItem(t, mod).(*ast.IndexExpr)
	if !ok {
		t.Fatalf("got %T, want *ast.IndexExpr", lastExprItem(t, mod))
	}
	if _, ok := idx.Receiver.(*ast.TupleLit); !ok {
		t.Fatalf("indexed receiver should be a tuple literal, got %T", idx.Receiver)
	}
}

func TestParseFromPrelexedTokenStream(t *testing.T) {
	toks := lexer.Tokenize("1 + 1")
	p := New(toks)
	mod := p.parseModule()
	if len(p.errors) != 0 {
		t.Fatalf("unexpected errors: %v", p.errors)
	}
	if len(mod.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(mod.Items))
	}
}
