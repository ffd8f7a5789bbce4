package symbols

import (
	"testing"

	"github.com/horizonanalytic/stratum/internal/types"
)

func TestScopeResolveFindsOwnAndOuterBindings(t *testing.T) {
	global := NewScope(ScopeGlobal, nil)
	global.Define(&Symbol{Name: "x", Type: types.Int})
	fn := NewScope(ScopeFunction, global)
	fn.Define(&Symbol{Name: "y", Type: types.String})

	if sym, ok := fn.Resolve("y"); !ok || sym.Type != types.String {
		t.Errorf("expected to resolve y in its own scope")
	}
	if sym, ok := fn.Resolve("x"); !ok || sym.Type != types.Int {
		t.Errorf("expected to resolve x through the parent scope")
	}
	if _, ok := global.Resolve("y"); ok {
		t.Errorf("outer scope should not see inner bindings")
	}
}

func TestScopeDefineRejectsRedeclarationInSameScope(t *testing.T) {
	s := NewScope(ScopeBlock, nil)
	if !s.Define(&Symbol{Name: "x", Type: types.Int}) {
		t.Fatalf("first definition of x should succeed")
	}
	if s.Define(&Symbol{Name: "x", Type: types.Bool}) {
		t.Errorf("redefining x in the same scope should fail")
	}
}

func TestScopeDefineAllowsShadowingInChildScope(t *testing.T) {
	outer := NewScope(ScopeBlock, nil)
	outer.Define(&Symbol{Name: "x", Type: types.Int})
	inner := NewScope(ScopeBlock, outer)
	if !inner.Define(&Symbol{Name: "x", Type: types.String}) {
		t.Fatalf("a child scope should be able to shadow an outer binding")
	}
	sym, _ := inner.Resolve("x")
	if sym.Type != types.String {
		t.Errorf("inner resolve should see the shadowing binding, got %s", sym.Type)
	}
	sym, _ = outer.Resolve("x")
	if sym.Type != types.Int {
		t.Errorf("outer scope binding should be unaffected by shadowing, got %s", sym.Type)
	}
}

func TestScopeResolveMissingNameFails(t *testing.T) {
	s := NewScope(ScopeGlobal, nil)
	if _, ok := s.Resolve("nope"); ok {
		t.Errorf("resolving an undefined name should fail")
	}
}

func TestEnclosingFunctionFindsNearestFunctionScope(t *testing.T) {
	global := NewScope(ScopeGlobal, nil)
	fn := NewScope(ScopeFunction, global)
	block := NewScope(ScopeBlock, fn)
	nested := NewScope(ScopeBlock, block)

	if got := nested.EnclosingFunction(); got != fn {
		t.Errorf("expected to find the enclosing function scope from a nested block")
	}
	if got := global.EnclosingFunction(); got != nil {
		t.Errorf("top level should have no enclosing function scope, got %v", got)
	}
}

func TestTableNextIDAllocatesIncreasingUniqueIDs(t *testing.T) {
	table := NewTable()
	a := table.NextID()
	b := table.NextID()
	if a == b {
		t.Errorf("NextID should never repeat, got %d twice", a)
	}
	if b != a+1 {
		t.Errorf("got NextID sequence %d, %d, want consecutive", a, b)
	}
}

func TestFindVariantEnumLocatesOwningEnum(t *testing.T) {
	table := NewTable()
	def := &EnumDef{
		ID:   table.NextID(),
		Name: "Shape",
		Variants: []EnumVariantDef{
			{Name: "Circle", TupleTypes: []types.Type{types.Int}},
			{Name: "Square", TupleTypes: []types.Type{types.Int}},
		},
	}
	table.Enums["Shape"] = def

	owner, variant, ok := table.FindVariantEnum("Circle")
	if !ok {
		t.Fatalf("expected to find the enum owning variant Circle")
	}
	if owner.Name != "Shape" {
		t.Errorf("got owning enum %q, want Shape", owner.Name)
	}
	if variant.Name != "Circle" {
		t.Errorf("got variant %q, want Circle", variant.Name)
	}
}

func TestFindVariantEnumMissingVariantFails(t *testing.T) {
	table := NewTable()
	if _, _, ok := table.FindVariantEnum("Nonexistent"); ok {
		t.Errorf("expected no match for an undeclared variant name")
	}
}

func TestImplsForFiltersByTargetTypeName(t *testing.T) {
	table := NewTable()
	boxImpl := &ImplDef{InterfaceName: "Printable", TargetType: types.Struct{ID: 1, Name: "Box"}}
	otherImpl := &ImplDef{InterfaceName: "Printable", TargetType: types.Struct{ID: 2, Name: "Other"}}
	table.Impls = append(table.Impls, boxImpl, otherImpl)

	got := table.ImplsFor("Box")
	if len(got) != 1 || got[0] != boxImpl {
		t.Errorf("got %v, want only the Box impl", got)
	}
}

func TestImplsForIgnoresNonNominalTargetType(t *testing.T) {
	table := NewTable()
	table.Impls = append(table.Impls, &ImplDef{InterfaceName: "Printable", TargetType: types.Int})
	if got := table.ImplsFor("Int"); len(got) != 0 {
		t.Errorf("a primitive target type should never match a nominal lookup, got %v", got)
	}
}
