package checker

import (
	"github.com/horizonanalytic/stratum/internal/ast"
	"github.com/horizonanalytic/stratum/internal/diagnostics"
	"github.com/horizonanalytic/stratum/internal/types"
)

// builtinNamed maps the primitive named-type spellings to their Type.
var builtinNamed = map[string]types.Type{
	"Int": types.Int, "Float": types.Float, "Bool": types.Bool,
	"String": types.String, "Null": types.Null, "Range": types.Range,
}

// resolveTypeAnn converts a syntactic TypeAnn into the internal Type
// representation, looking up named struct/enum declarations in the
// symbol table and binding type-parameter names against typeParams.
func (c *Checker) resolveTypeAnn(ann ast.TypeAnn, typeParams map[string]types.Type) types.Type {
	if ann == nil {
		return c.freshVar()
	}
	switch a := ann.(type) {
	case *ast.InferredType:
		return c.freshVar()
	case *ast.UnitType:
		return types.Unit
	case *ast.NeverType:
		return types.Never
	case *ast.NullableType:
		return types.MakeNullable(c.resolveTypeAnn(a.Inner, typeParams))
	case *ast.ListType:
		return types.List{Elem: c.resolveTypeAnn(a.Elem, typeParams)}
	case *ast.TupleType:
		elems := make([]types.Type, len(a.Elems))
		for i, e := range a.Elems {
			elems[i] = c.resolveTypeAnn(e, typeParams)
		}
		return types.Tuple{Elems: elems}
	case *ast.FuncType:
		params := make([]types.Type, len(a.Params))
		for i, p := range a.Params {
			params[i] = c.resolveTypeAnn(p, typeParams)
		}
		return types.Function{Params: params, Ret: c.resolveTypeAnn(a.Ret, typeParams)}
	case *ast.NamedType:
		return c.resolveNamedType(a, typeParams)
	}
	return types.Error
}

func (c *Checker) resolveNamedType(a *ast.NamedType, typeParams map[string]types.Type) types.Type {
	if tv, ok := typeParams[a.Name]; ok {
		return tv
	}
	if a.Name == "List" && len(a.Args) == 1 {
		return types.List{Elem: c.resolveTypeAnn(a.Args[0], typeParams)}
	}
	if a.Name == "Map" && len(a.Args) == 2 {
		return types.Map{Key: c.resolveTypeAnn(a.Args[0], typeParams), Value: c.resolveTypeAnn(a.Args[1], typeParams)}
	}
	if a.Name == "Future" && len(a.Args) == 1 {
		return types.Future{Inner: c.resolveTypeAnn(a.Args[0], typeParams)}
	}
	if prim, ok := builtinNamed[a.Name]; ok {
		return prim
	}
	args := make([]types.Type, len(a.Args))
	for i, arg := range a.Args {
		args[i] = c.resolveTypeAnn(arg, typeParams)
	}
	if sd, ok := c.table.Structs[a.Name]; ok {
		return types.Struct{ID: sd.ID, Name: sd.Name, TypeArgs: args}
	}
	if ed, ok := c.table.Enums[a.Name]; ok {
		return types.Enum{ID: ed.ID, Name: ed.Name, TypeArgs: args}
	}
	c.report(diagnostics.New(diagnostics.KindUndefinedType, a.Span(), "undefined type %q", a.Name))
	return types.Error
}

// typeParamVars builds fresh TypeVars for a generic declaration's
// TypeParams, keyed by name, for use while resolving its signature.
func (c *Checker) typeParamVars(names []string) map[string]types.Type {
	out := make(map[string]types.Type, len(names))
	for _, n := range names {
		out[n] = c.freshVar()
	}
	return out
}
