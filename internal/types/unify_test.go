package types

import "testing"

func TestUnifyPrimitivesMatch(t *testing.T) {
	if _, err := Unify(Subst{}, Int, Int); err != nil {
		t.Fatalf("Int should unify with itself: %v", err)
	}
}

func TestUnifyPrimitivesMismatch(t *testing.T) {
	if _, err := Unify(Subst{}, Int, String); err == nil {
		t.Fatalf("Int and String should not unify")
	}
}

func TestUnifyBindsTypeVar(t *testing.T) {
	v := TypeVar{ID: 1}
	s, err := Unify(Subst{}, v, Int)
	if err != nil {
		t.Fatalf("Unify: %v", err)
	}
	if got := Apply(s, v); got != Int {
		t.Errorf("got %s, want Int", got)
	}
}

func TestUnifyOccursCheckRejectsInfiniteType(t *testing.T) {
	v := TypeVar{ID: 1}
	_, err := Unify(Subst{}, v, List{Elem: v})
	if err == nil {
		t.Fatalf("expected an occurs-check error for t1 = List<t1>")
	}
}

func TestUnifyErrorAndNeverAreAbsorbing(t *testing.T) {
	if _, err := Unify(Subst{}, Error, String); err != nil {
		t.Errorf("Error should unify with anything: %v", err)
	}
	if _, err := Unify(Subst{}, Never, Int); err != nil {
		t.Errorf("Never should unify with anything: %v", err)
	}
}

func TestUnifyListsRecurseOnElement(t *testing.T) {
	v := TypeVar{ID: 1}
	s, err := Unify(Subst{}, List{Elem: v}, List{Elem: Bool})
	if err != nil {
		t.Fatalf("Unify: %v", err)
	}
	if got := Apply(s, v); got != Bool {
		t.Errorf("got %s, want Bool", got)
	}
}

func TestUnifyMapsRequireBothKeyAndValue(t *testing.T) {
	if _, err := Unify(Subst{}, Map{Key: String, Value: Int}, Map{Key: String, Value: Int}); err != nil {
		t.Errorf("identical maps should unify: %v", err)
	}
	if _, err := Unify(Subst{}, Map{Key: String, Value: Int}, Map{Key: Int, Value: Int}); err == nil {
		t.Errorf("maps with mismatched key types should not unify")
	}
}

func TestUnifyNominalTypesCompareByID(t *testing.T) {
	a := Struct{ID: 1, Name: "Box"}
	b := Struct{ID: 2, Name: "Box"}
	if _, err := Unify(Subst{}, a, b); err == nil {
		t.Errorf("structs with the same name but different declaration IDs should not unify")
	}
	c := Struct{ID: 1, Name: "Box"}
	if _, err := Unify(Subst{}, a, c); err != nil {
		t.Errorf("structs with the same declaration ID should unify: %v", err)
	}
}

func TestUnifyNominalWithNullableSelfReferenceSucceeds(t *testing.T) {
	// A struct with a field of its own nullable type (e.g.
	// `struct Node { next: Node? }`) unifies structurally through its
	// TypeArgs without tripping the recursive-pair guard.
	node := Struct{ID: 1, Name: "Node", TypeArgs: []Type{MakeNullable(Struct{ID: 1, Name: "Node"})}}
	other := Struct{ID: 1, Name: "Node", TypeArgs: []Type{MakeNullable(Struct{ID: 1, Name: "Node"})}}
	if _, err := Unify(Subst{}, node, other); err != nil {
		t.Errorf("structurally recursive nominal types should unify: %v", err)
	}
}

func TestUnifyNullMatchesNullableOnEitherSide(t *testing.T) {
	if _, err := Unify(Subst{}, Null, MakeNullable(Int)); err != nil {
		t.Errorf("Null should unify with Nullable<Int>: %v", err)
	}
	if _, err := Unify(Subst{}, MakeNullable(String), Null); err != nil {
		t.Errorf("Nullable<String> should unify with Null: %v", err)
	}
	if _, err := Unify(Subst{}, Null, Int); err == nil {
		t.Errorf("Null should not unify with a non-nullable Int")
	}
}

func TestUnifyFunctionsCompareParamsAndReturn(t *testing.T) {
	f1 := Function{Params: []Type{Int, String}, Ret: Bool}
	f2 := Function{Params: []Type{Int, String}, Ret: Bool}
	if _, err := Unify(Subst{}, f1, f2); err != nil {
		t.Errorf("identical function types should unify: %v", err)
	}
	f3 := Function{Params: []Type{Int}, Ret: Bool}
	if _, err := Unify(Subst{}, f1, f3); err == nil {
		t.Errorf("functions with different arity should not unify")
	}
}

func TestUnifyNullableRecursesOnInner(t *testing.T) {
	v := TypeVar{ID: 1}
	s, err := Unify(Subst{}, MakeNullable(v), MakeNullable(Int))
	if err != nil {
		t.Fatalf("Unify: %v", err)
	}
	if got := Apply(s, v); got != Int {
		t.Errorf("got %s, want Int", got)
	}
}

func TestMakeNullableCollapsesNesting(t *testing.T) {
	n := MakeNullable(MakeNullable(Int))
	nb, ok := n.(Nullable)
	if !ok {
		t.Fatalf("expected a Nullable, got %T", n)
	}
	if _, nested := nb.Inner.(Nullable); nested {
		t.Errorf("Nullable<Nullable<T>> should collapse to Nullable<T>")
	}
}
