package checker_test

import (
	"testing"

	"github.com/horizonanalytic/stratum/internal/checker"
	"github.com/horizonanalytic/stratum/internal/diagnostics"
	"github.com/horizonanalytic/stratum/internal/parser"
)

func check(t *testing.T, src string) []diagnostics.Diagnostic {
	t.Helper()
	mod, diags := parser.Parse(src)
	if len(diags) != 0 {
		t.Fatalf("unexpected parse errors: %v", diags)
	}
	return checker.New().Check(mod)
}

func assertNoDiags(t *testing.T, diags []diagnostics.Diagnostic) {
	t.Helper()
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
}

func assertHasKind(t *testing.T, diags []diagnostics.Diagnostic, kind diagnostics.Kind) {
	t.Helper()
	for _, d := range diags {
		if d.Kind == kind {
			return
		}
	}
	t.Fatalf("expected a diagnostic of kind %s, got %v", kind, diags)
}

func TestCheckSimpleArithmeticHasNoDiagnostics(t *testing.T) {
	assertNoDiags(t, check(t, `1 + 2 * 3`))
}

func TestCheckBinaryTypeMismatchReported(t *testing.T) {
	assertHasKind(t, check(t, `1 + "two"`), diagnostics.KindInvalidBinaryOp)
}

func TestCheckUndefinedVariableReported(t *testing.T) {
	assertHasKind(t, check(t, `x + 1`), diagnostics.KindUndefinedVariable)
}

func TestCheckLetBindingFlowsThroughUse(t *testing.T) {
	assertNoDiags(t, check(t, `
let x = 5
x + 1
`))
}

func TestCheckNullLiteralSatisfiesNullableAnnotation(t *testing.T) {
	assertNoDiags(t, check(t, `
struct Foo { x: Int }
let x: Foo? = null
`))
}

func TestCheckLetAnnotationMismatchReported(t *testing.T) {
	assertHasKind(t, check(t, `let x: String = 5`), diagnostics.KindCannotUnify)
}

func TestCheckFunctionCallArgumentTypeChecked(t *testing.T) {
	assertNoDiags(t, check(t, `
fx add(a: Int, b: Int) -> Int {
    a + b
}
add(1, 2)
`))
}

func TestCheckFunctionReturnTypeMismatchReported(t *testing.T) {
	assertHasKind(t, check(t, `
fx bad() -> Int {
    "not an int"
}
`), diagnostics.KindCannotUnify)
}

func TestCheckStructLiteralAndFieldAccess(t *testing.T) {
	assertNoDiags(t, check(t, `
struct Point { x: Int, y: Int }
let p = Point { x: 1, y: 2 }
p.x + p.y
`))
}

func TestCheckStructLiteralMissingFieldReported(t *testing.T) {
	assertHasKind(t, check(t, `
struct Point { x: Int, y: Int }
Point { x: 1 }
`), diagnostics.KindMissingField)
}

func TestCheckStructLiteralUnknownFieldReported(t *testing.T) {
	assertHasKind(t, check(t, `
struct Point { x: Int, y: Int }
Point { x: 1, y: 2, z: 3 }
`), diagnostics.KindExtraField)
}

func TestCheckEnumUnitVariantConstructsEnumType(t *testing.T) {
	assertNoDiags(t, check(t, `
enum Shape {
    None,
    Circle(Int),
}
let s = None
match s {
    None => 0,
    Circle(r) => r,
}
`))
}

func TestCheckEnumTupleVariantArgumentsTypeChecked(t *testing.T) {
	assertHasKind(t, check(t, `
enum Shape {
    Circle(Int),
}
Circle("not an int")
`), diagnostics.KindCannotUnify)
}

func TestCheckEnumVariantWrongArgumentCountReported(t *testing.T) {
	assertHasKind(t, check(t, `
enum Shape {
    Circle(Int),
}
Circle(1, 2)
`), diagnostics.KindWrongArgumentCount)
}

func TestCheckMatchNonExhaustiveWarns(t *testing.T) {
	assertHasKind(t, check(t, `
enum Shape {
    Circle(Int),
    Square(Int),
}
let s = Circle(1)
match s {
    Circle(r) => r,
}
`), diagnostics.KindNonExhaustiveMatch)
}

func TestCheckMatchWildcardSatisfiesExhaustiveness(t *testing.T) {
	assertNoDiags(t, check(t, `
enum Shape {
    Circle(Int),
    Square(Int),
}
let s = Circle(1)
match s {
    Circle(r) => r,
    _ => 0,
}
`))
}

func TestCheckMatchArmAfterCatchAllIsUnreachable(t *testing.T) {
	assertHasKind(t, check(t, `
enum Shape {
    Circle(Int),
    Square(Int),
}
let s = Circle(1)
match s {
    _ => 0,
    Circle(r) => r,
}
`), diagnostics.KindUnreachableMatchArm)
}

func TestCheckIfBranchesMustUnify(t *testing.T) {
	assertHasKind(t, check(t, `
if true { 1 } else { "two" }
`), diagnostics.KindIncompatibleBranches)
}

func TestCheckBreakOutsideLoopReported(t *testing.T) {
	assertHasKind(t, check(t, `break`), diagnostics.KindBreakOutsideLoop)
}

func TestCheckReturnOutsideFunctionReported(t *testing.T) {
	assertHasKind(t, check(t, `return 1`), diagnostics.KindReturnOutsideFunction)
}

func TestCheckWhileLoopAllowsBreakInBody(t *testing.T) {
	assertNoDiags(t, check(t, `
while true {
    break
}
`))
}

func TestCheckAwaitOutsideAsyncFunctionReported(t *testing.T) {
	assertHasKind(t, check(t, `
fx f() -> Int {
    await 1
}
`), diagnostics.KindInvalidUnaryOp)
}
