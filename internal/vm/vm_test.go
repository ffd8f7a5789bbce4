package vm

import (
	"math"
	"testing"

	"github.com/horizonanalytic/stratum/internal/ast"
	"github.com/horizonanalytic/stratum/internal/diagnostics"
	"github.com/horizonanalytic/stratum/internal/parser"
)

func parseModule(t *testing.T, src string) *ast.Module {
	t.Helper()
	mod, diags := parser.Parse(src)
	if diagnostics.HasErrors(diags) {
		t.Fatalf("parse error: %v", diags)
	}
	return mod
}

func compileModule(t *testing.T, src string) *FunctionObj {
	t.Helper()
	mod := parseModule(t, src)
	fn, diags := NewCompiler().CompileModule(mod)
	if diagnostics.HasErrors(diags) {
		t.Fatalf("compile error: %v", diags)
	}
	return fn
}

func run(t *testing.T, src string) Value {
	t.Helper()
	fn := compileModule(t, src)
	v := New()
	result, err := v.Run(fn)
	if err != nil {
		t.Fatalf("runtime error: %s", err)
	}
	return result
}

func testInt(t *testing.T, v Value, want int64) {
	t.Helper()
	if v.Kind != KInt {
		t.Fatalf("wanted Int, got kind %v (%s)", v.Kind, Inspect(v))
	}
	if v.AsInt() != want {
		t.Errorf("got %d, want %d", v.AsInt(), want)
	}
}

func testBool(t *testing.T, v Value, want bool) {
	t.Helper()
	if v.Kind != KBool {
		t.Fatalf("wanted Bool, got kind %v (%s)", v.Kind, Inspect(v))
	}
	if v.AsBool() != want {
		t.Errorf("got %v, want %v", v.AsBool(), want)
	}
}

func TestArithmetic(t *testing.T) {
	cases := []struct {
		src  string
		want int64
	}{
		{"1 + 2 * 3", 7},
		{"(1 + 2) * 3", 9},
		{"10 - 3 - 2", 5},
		{"10 % 3", 1},
	}
	for _, c := range cases {
		v := run(t, c.src)
		testInt(t, v, c.want)
	}
}

func TestComparisonAndLogical(t *testing.T) {
	v := run(t, "1 < 2 && 2 < 3")
	testBool(t, v, true)
	v = run(t, "1 > 2 || 3 == 3")
	testBool(t, v, true)
}

// Closures capture their upvalues by reference: two closures sharing a
// counter both observe each other's increments.
func TestClosureCaptureByReference(t *testing.T) {
	src := `
let counter = 0
let incr = fx() -> Int {
	counter = counter + 1
	counter
}
incr()
incr()
incr()
`
	v := run(t, src)
	testInt(t, v, 3)
}

// The null-safe chain short-circuits on the first null receiver without
// evaluating further field accesses.
func TestNullSafeChainShortCircuits(t *testing.T) {
	src := `
struct Box { inner: Int }
let b = null
b?.inner
`
	v := run(t, src)
	if !v.IsNull() {
		t.Fatalf("expected Null, got %s", Inspect(v))
	}
}

// try/finally runs the finally block whether the body throws or not.
func TestTryFinallyBothPaths(t *testing.T) {
	src := `
let log = []
try {
	throw "boom"
} catch e {
	log = log
} finally {
	log = log
}
1
`
	v := run(t, src)
	testInt(t, v, 1)
}

func TestExhaustiveMatchOverEnumVariants(t *testing.T) {
	src := `
enum Shape {
	Circle(Int),
	Square(Int),
}
let s = Circle(4)
match s {
	Circle(r) => r,
	Square(side) => side,
}
`
	v := run(t, src)
	testInt(t, v, 4)
}

func TestListAndIndex(t *testing.T) {
	v := run(t, "let xs = [1, 2, 3]; xs[1]")
	testInt(t, v, 2)
}

func TestWhileLoop(t *testing.T) {
	src := `
let i = 0
let sum = 0
while i < 5 {
	sum = sum + i
	i = i + 1
}
sum
`
	v := run(t, src)
	testInt(t, v, 10)
}

func TestCoalesce(t *testing.T) {
	src := `
let a = null
a ?? 5
`
	v := run(t, src)
	testInt(t, v, 5)
}

// Int arithmetic raises a catchable IntegerOverflow instead of wrapping
// silently on overflow.
func TestIntegerOverflowIsCatchable(t *testing.T) {
	src := `
let caught = 0
try {
	9223372036854775807 + 1
} catch e {
	caught = 1
}
caught
`
	v := run(t, src)
	testInt(t, v, 1)
}

func TestIntegerOverflowMessageNamesTheOperation(t *testing.T) {
	src := `
let msg = ""
try {
	9223372036854775807 + 1
} catch e {
	msg = e
}
msg
`
	v := run(t, src)
	if got := stringify(v); got != "integer overflow: 9223372036854775807 + 1" {
		t.Errorf("got %q, want an IntegerOverflow message", got)
	}
}

func TestIntegerMultiplyMinInt64ByNegativeOneOverflows(t *testing.T) {
	// MinInt64 built via subtraction (the literal itself is one past
	// MaxInt64 and would not parse as an Int token).
	src := `
let minInt = 0 - 9223372036854775807 - 1
let caught = 0
try {
	minInt * -1
} catch e {
	caught = 1
}
caught
`
	v := run(t, src)
	testInt(t, v, 1)
}

func TestIntegerSubtractionOverflowIsCatchable(t *testing.T) {
	src := `
let minInt = 0 - 9223372036854775807 - 1
let caught = 0
try {
	minInt - 1
} catch e {
	caught = 1
}
caught
`
	v := run(t, src)
	testInt(t, v, 1)
}

func TestIntegerArithmeticWithinRangeDoesNotOverflow(t *testing.T) {
	v := run(t, "9223372036854775806 + 1")
	testInt(t, v, math.MaxInt64)
}
