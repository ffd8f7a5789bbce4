package types

import "fmt"

// UnifyError reports two types that cannot be made equal.
type UnifyError struct {
	Left, Right Type
	Reason      string
}

func (e *UnifyError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("cannot unify %s with %s: %s", e.Left, e.Right, e.Reason)
	}
	return fmt.Sprintf("cannot unify %s with %s", e.Left, e.Right)
}

// pairKey tracks an in-progress (left, right) unification so structurally
// recursive types (a struct field that mentions a type built from the
// same pair of variables) don't recurse forever; revisiting a pair
// already on the stack is treated as success, co-inductively.
type pairKey struct{ a, b string }

// unifyState threads the substitution being built plus the seen-pairs
// guard through one Unify call tree.
type unifyState struct {
	seen map[pairKey]bool
}

// Unify computes the most general substitution making a and b equal
// types, starting from an existing substitution s0 (apply s0 to a and b
// before comparing). Error and Never are absorbing: Error unifies with
// anything without constraint, Never unifies with anything by taking
// the other side. Null unifies with any Nullable<T>, on either side, so
// `let x: Foo? = null` type-checks. Nullable<Nullable<T>> never arises
// because MakeNullable collapses it at construction.
func Unify(s0 Subst, a, b Type) (Subst, error) {
	st := &unifyState{seen: map[pairKey]bool{}}
	return st.unify(s0, a, b)
}

func (st *unifyState) unify(s0 Subst, a, b Type) (Subst, error) {
	a = Apply(s0, a)
	b = Apply(s0, b)

	if av, ok := a.(TypeVar); ok {
		if bv, ok := b.(TypeVar); ok && av.ID == bv.ID {
			return s0, nil
		}
		return bindVar(s0, av, b)
	}
	if bv, ok := b.(TypeVar); ok {
		return bindVar(s0, bv, a)
	}

	if a == Error || b == Error {
		return s0, nil
	}
	if a == Never {
		return s0, nil
	}
	if b == Never {
		return s0, nil
	}

	// Null unifies with any Nullable<T> (and with itself, via the prim
	// case below), per the language's null-safety rules.
	if a == Null {
		if _, ok := b.(Nullable); ok {
			return s0, nil
		}
	}
	if b == Null {
		if _, ok := a.(Nullable); ok {
			return s0, nil
		}
	}

	key := pairKey{a.String(), b.String()}
	if st.seen[key] {
		return s0, nil
	}
	st.seen[key] = true
	defer delete(st.seen, key)

	switch av := a.(type) {
	case prim:
		if bv, ok := b.(prim); ok && av.name == bv.name {
			return s0, nil
		}
	case List:
		if bv, ok := b.(List); ok {
			return st.unify(s0, av.Elem, bv.Elem)
		}
	case Map:
		if bv, ok := b.(Map); ok {
			s1, err := st.unify(s0, av.Key, bv.Key)
			if err != nil {
				return nil, err
			}
			return st.unify(s1, av.Value, bv.Value)
		}
	case Nullable:
		if bv, ok := b.(Nullable); ok {
			return st.unify(s0, av.Inner, bv.Inner)
		}
	case Future:
		if bv, ok := b.(Future); ok {
			return st.unify(s0, av.Inner, bv.Inner)
		}
	case Tuple:
		if bv, ok := b.(Tuple); ok && len(av.Elems) == len(bv.Elems) {
			s := s0
			var err error
			for i := range av.Elems {
				s, err = st.unify(s, av.Elems[i], bv.Elems[i])
				if err != nil {
					return nil, err
				}
			}
			return s, nil
		}
	case Function:
		if bv, ok := b.(Function); ok && len(av.Params) == len(bv.Params) {
			s := s0
			var err error
			for i := range av.Params {
				s, err = st.unify(s, av.Params[i], bv.Params[i])
				if err != nil {
					return nil, err
				}
			}
			return st.unify(s, av.Ret, bv.Ret)
		}
	case Struct:
		if bv, ok := b.(Struct); ok && av.ID == bv.ID && len(av.TypeArgs) == len(bv.TypeArgs) {
			s := s0
			var err error
			for i := range av.TypeArgs {
				s, err = st.unify(s, av.TypeArgs[i], bv.TypeArgs[i])
				if err != nil {
					return nil, err
				}
			}
			return s, nil
		}
	case Enum:
		if bv, ok := b.(Enum); ok && av.ID == bv.ID && len(av.TypeArgs) == len(bv.TypeArgs) {
			s := s0
			var err error
			for i := range av.TypeArgs {
				s, err = st.unify(s, av.TypeArgs[i], bv.TypeArgs[i])
				if err != nil {
					return nil, err
				}
			}
			return s, nil
		}
	}

	return nil, &UnifyError{Left: a, Right: b}
}

func bindVar(s0 Subst, v TypeVar, t Type) (Subst, error) {
	if tv, ok := t.(TypeVar); ok && tv.ID == v.ID {
		return s0, nil
	}
	if occurs(v.ID, t) {
		return nil, &UnifyError{Left: v, Right: t, Reason: "infinite type (occurs check)"}
	}
	out := make(Subst, len(s0)+1)
	for k, val := range s0 {
		out[k] = val
	}
	out[v.ID] = t
	return out, nil
}

func occurs(id int, t Type) bool {
	_, present := FreeTypeVariables(t)[id]
	return present
}
