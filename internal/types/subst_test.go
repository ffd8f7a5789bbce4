package types

import "testing"

func TestApplyResolvesChainedBindings(t *testing.T) {
	a := TypeVar{ID: 1}
	b := TypeVar{ID: 2}
	s := Subst{1: b, 2: Int}
	if got := Apply(s, a); got != Int {
		t.Errorf("got %s, want Int", got)
	}
}

func TestApplyLeavesUnboundVarsFree(t *testing.T) {
	v := TypeVar{ID: 9}
	if got := Apply(Subst{}, v); got != v {
		t.Errorf("got %s, want the unbound var itself", got)
	}
}

func TestApplyRecursesIntoCompoundTypes(t *testing.T) {
	v := TypeVar{ID: 1}
	s := Subst{1: Bool}
	compound := List{Elem: Map{Key: v, Value: Tuple{Elems: []Type{v, Int}}}}
	got := Apply(s, compound)
	want := List{Elem: Map{Key: Bool, Value: Tuple{Elems: []Type{Bool, Int}}}}
	if got.String() != want.String() {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestFreeTypeVariablesCollectsAllOccurrences(t *testing.T) {
	v1, v2 := TypeVar{ID: 1}, TypeVar{ID: 2}
	ft := FreeTypeVariables(Function{Params: []Type{v1, Int}, Ret: List{Elem: v2}})
	if !ft[1] || !ft[2] {
		t.Errorf("expected both t1 and t2 free, got %v", ft)
	}
	if len(ft) != 2 {
		t.Errorf("expected exactly 2 free variables, got %d", len(ft))
	}
}

func TestComposeAppliesLaterSubstToEarlierBindings(t *testing.T) {
	// s1: t1 -> t2 ; s2: t2 -> Int. Compose(s2, s1) should resolve t1
	// all the way to Int.
	s1 := Subst{1: TypeVar{ID: 2}}
	s2 := Subst{2: Int}
	composed := Compose(s2, s1)
	if got := Apply(composed, TypeVar{ID: 1}); got != Int {
		t.Errorf("got %s, want Int", got)
	}
}
