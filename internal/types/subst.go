package types

// Subst maps type-variable IDs to their resolved Type. A TypeVar absent
// from the map is still free.
type Subst map[int]Type

// Apply walks t, replacing every TypeVar bound in s with its resolution,
// recursively, so chained bindings (a -> b, b -> Int) resolve fully.
func Apply(s Subst, t Type) Type {
	switch v := t.(type) {
	case TypeVar:
		if bound, ok := s[v.ID]; ok {
			return Apply(s, bound)
		}
		return v
	case List:
		return List{Elem: Apply(s, v.Elem)}
	case Map:
		return Map{Key: Apply(s, v.Key), Value: Apply(s, v.Value)}
	case Nullable:
		return MakeNullable(Apply(s, v.Inner))
	case Future:
		return Future{Inner: Apply(s, v.Inner)}
	case Tuple:
		elems := make([]Type, len(v.Elems))
		for i, e := range v.Elems {
			elems[i] = Apply(s, e)
		}
		return Tuple{Elems: elems}
	case Function:
		params := make([]Type, len(v.Params))
		for i, p := range v.Params {
			params[i] = Apply(s, p)
		}
		return Function{Params: params, Ret: Apply(s, v.Ret)}
	case Struct:
		args := make([]Type, len(v.TypeArgs))
		for i, a := range v.TypeArgs {
			args[i] = Apply(s, a)
		}
		return Struct{ID: v.ID, Name: v.Name, TypeArgs: args}
	case Enum:
		args := make([]Type, len(v.TypeArgs))
		for i, a := range v.TypeArgs {
			args[i] = Apply(s, a)
		}
		return Enum{ID: v.ID, Name: v.Name, TypeArgs: args}
	default:
		return t
	}
}

// FreeTypeVariables returns the set of TypeVar IDs occurring free in t.
func FreeTypeVariables(t Type) map[int]bool {
	out := map[int]bool{}
	collectFree(t, out)
	return out
}

func collectFree(t Type, out map[int]bool) {
	switch v := t.(type) {
	case TypeVar:
		out[v.ID] = true
	case List:
		collectFree(v.Elem, out)
	case Map:
		collectFree(v.Key, out)
		collectFree(v.Value, out)
	case Nullable:
		collectFree(v.Inner, out)
	case Future:
		collectFree(v.Inner, out)
	case Tuple:
		for _, e := range v.Elems {
			collectFree(e, out)
		}
	case Function:
		for _, p := range v.Params {
			collectFree(p, out)
		}
		collectFree(v.Ret, out)
	case Struct:
		for _, a := range v.TypeArgs {
			collectFree(a, out)
		}
	case Enum:
		for _, a := range v.TypeArgs {
			collectFree(a, out)
		}
	}
}

// Compose returns a substitution equivalent to applying s1 then s2.
func Compose(s2, s1 Subst) Subst {
	out := make(Subst, len(s1)+len(s2))
	for k, v := range s1 {
		out[k] = Apply(s2, v)
	}
	for k, v := range s2 {
		if _, ok := out[k]; !ok {
			out[k] = v
		}
	}
	return out
}
