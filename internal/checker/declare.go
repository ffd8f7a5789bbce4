package checker

import (
	"github.com/horizonanalytic/stratum/internal/ast"
	"github.com/horizonanalytic/stratum/internal/diagnostics"
	"github.com/horizonanalytic/stratum/internal/symbols"
	"github.com/horizonanalytic/stratum/internal/types"
)

// declarePhase is phase 1 of §4.3.2: register every struct/enum/
// interface/impl/function signature before any body is checked, so
// forward references and mutual recursion resolve.
func (c *Checker) declarePhase(mod *ast.Module) {
	for _, item := range mod.Items {
		switch it := item.(type) {
		case *ast.StructItem:
			c.declareStruct(it)
		case *ast.EnumItem:
			c.declareEnum(it)
		case *ast.InterfaceItem:
			c.declareInterface(it)
		}
	}
	for _, item := range mod.Items {
		switch it := item.(type) {
		case *ast.FunctionItem:
			c.declareFunction(it)
		case *ast.ImplItem:
			c.declareImpl(it)
		}
	}
}

func (c *Checker) declareStruct(it *ast.StructItem) {
	if _, exists := c.table.Structs[it.Name]; exists {
		c.report(diagnostics.New(diagnostics.KindDuplicateDefinition, it.Span(), "struct %q already defined", it.Name))
		return
	}
	def := &symbols.StructDef{ID: c.table.NextID(), Name: it.Name, TypeParams: it.TypeParams, Node: it}
	tparams := c.typeParamVars(it.TypeParams)
	seen := map[string]bool{}
	for _, f := range it.Fields {
		if seen[f.Name] {
			c.report(diagnostics.New(diagnostics.KindDuplicateField, it.Span(), "duplicate field %q in struct %q", f.Name, it.Name))
			continue
		}
		seen[f.Name] = true
		def.Fields = append(def.Fields, symbols.FieldDef{Name: f.Name, Type: c.resolveTypeAnn(f.Type, tparams)})
	}
	c.table.Structs[it.Name] = def
}

func (c *Checker) declareEnum(it *ast.EnumItem) {
	if _, exists := c.table.Enums[it.Name]; exists {
		c.report(diagnostics.New(diagnostics.KindDuplicateDefinition, it.Span(), "enum %q already defined", it.Name))
		return
	}
	def := &symbols.EnumDef{ID: c.table.NextID(), Name: it.Name, TypeParams: it.TypeParams, Node: it}
	tparams := c.typeParamVars(it.TypeParams)
	for _, v := range it.Variants {
		vd := symbols.EnumVariantDef{Name: v.Name}
		if v.Tuple != nil {
			vd.TupleTypes = make([]types.Type, len(v.Tuple))
			for i, t := range v.Tuple {
				vd.TupleTypes[i] = c.resolveTypeAnn(t, tparams)
			}
		}
		if v.Fields != nil {
			for _, f := range v.Fields {
				vd.StructTypes = append(vd.StructTypes, symbols.FieldDef{Name: f.Name, Type: c.resolveTypeAnn(f.Type, tparams)})
			}
			// Struct-shaped variants are constructed and matched through
			// the same `Name { field: val }` syntax as a plain struct
			// (see DESIGN.md), so register one under the variant's own
			// name unless that name is already taken.
			if _, taken := c.table.Structs[v.Name]; !taken {
				sd := &symbols.StructDef{ID: c.table.NextID(), Name: v.Name}
				for _, fd := range vd.StructTypes {
					sd.Fields = append(sd.Fields, symbols.FieldDef{Name: fd.Name, Type: fd.Type})
				}
				c.table.Structs[v.Name] = sd
			}
		}
		def.Variants = append(def.Variants, vd)
	}
	c.table.Enums[it.Name] = def
}

func (c *Checker) declareInterface(it *ast.InterfaceItem) {
	def := &symbols.InterfaceDef{Name: it.Name}
	for _, m := range it.Methods {
		tparams := map[string]types.Type{}
		params := make([]types.Type, len(m.Params))
		for i, p := range m.Params {
			params[i] = c.resolveTypeAnn(p, tparams)
		}
		def.Methods = append(def.Methods, symbols.InterfaceMethodSig{
			Name: m.Name, Params: params, Ret: c.resolveTypeAnn(m.ReturnType, tparams),
		})
	}
	c.table.Interfaces[it.Name] = def
}

func (c *Checker) declareFunction(it *ast.FunctionItem) {
	sig := c.signatureOf(it)
	if _, exists := c.table.Functions[it.Name]; exists {
		c.report(diagnostics.New(diagnostics.KindDuplicateDefinition, it.Span(), "function %q already defined", it.Name))
	}
	c.table.Functions[it.Name] = sig
	c.scope.Define(&symbols.Symbol{Name: it.Name, Kind: symbols.FunctionSymbol, Node: it,
		Type: types.Function{Params: sig.Params, Ret: sig.Ret}})
}

func (c *Checker) signatureOf(it *ast.FunctionItem) *symbols.FuncSig {
	tparams := c.typeParamVars(it.TypeParams)
	params := make([]types.Type, len(it.Params))
	for i, p := range it.Params {
		params[i] = c.resolveTypeAnn(p.Type, tparams)
	}
	ret := c.resolveTypeAnn(it.ReturnType, tparams)
	if it.IsAsync {
		ret = types.Future{Inner: ret}
	}
	return &symbols.FuncSig{TypeParams: it.TypeParams, Params: params, Ret: ret, IsAsync: it.IsAsync}
}

// declareImpl registers the impl's methods and, when it targets a
// declared interface, validates the method set against the interface
// signature (§4.3.2: missing methods, signature mismatches, duplicate
// impl of the same (type, interface) pair are all reported here).
func (c *Checker) declareImpl(it *ast.ImplItem) {
	methods := map[string]*symbols.FuncSig{}
	for _, m := range it.Methods {
		methods[m.Name] = c.signatureOf(m)
	}
	targetType := c.namedTargetType(it.TargetType)

	if it.InterfaceName != "" {
		for _, existing := range c.table.Impls {
			if existing.InterfaceName == it.InterfaceName && sameTarget(existing.TargetType, targetType) {
				c.report(diagnostics.New(diagnostics.KindDuplicateImpl, it.Span(),
					"duplicate impl of %q for %s", it.InterfaceName, it.TargetType))
				break
			}
		}
		if iface, ok := c.table.Interfaces[it.InterfaceName]; ok {
			for _, reqSig := range iface.Methods {
				got, ok := methods[reqSig.Name]
				if !ok {
					c.report(diagnostics.New(diagnostics.KindMissingInterfaceMethod, it.Span(),
						"impl of %q for %s is missing method %q", it.InterfaceName, it.TargetType, reqSig.Name))
					continue
				}
				if len(got.Params) != len(reqSig.Params) {
					c.report(diagnostics.New(diagnostics.KindMethodSignatureMismatch, it.Span(),
						"method %q parameter count mismatch with interface %q", reqSig.Name, it.InterfaceName))
					continue
				}
				s := c.subst
				ok2 := true
				for i := range got.Params {
					var err error
					s, err = types.Unify(s, got.Params[i], reqSig.Params[i])
					if err != nil {
						ok2 = false
						break
					}
				}
				if ok2 {
					if _, err := types.Unify(s, got.Ret, reqSig.Ret); err != nil {
						ok2 = false
					}
				}
				if !ok2 {
					c.report(diagnostics.New(diagnostics.KindMethodSignatureMismatch, it.Span(),
						"method %q signature does not match interface %q", reqSig.Name, it.InterfaceName))
				}
			}
		} else {
			c.report(diagnostics.New(diagnostics.KindUndefinedInterface, it.Span(), "undefined interface %q", it.InterfaceName))
		}
	}

	c.table.Impls = append(c.table.Impls, &symbols.ImplDef{
		InterfaceName: it.InterfaceName, TargetType: targetType, Methods: methods,
	})
}

func (c *Checker) namedTargetType(name string) types.Type {
	if sd, ok := c.table.Structs[name]; ok {
		return types.Struct{ID: sd.ID, Name: sd.Name}
	}
	if ed, ok := c.table.Enums[name]; ok {
		return types.Enum{ID: ed.ID, Name: ed.Name}
	}
	if prim, ok := builtinNamed[name]; ok {
		return prim
	}
	return types.Error
}

func sameTarget(a, b types.Type) bool {
	if sameKind, sameID := types.SameNominalID(a, b); sameKind {
		return sameID
	}
	return a.String() == b.String()
}
