// Package symbols tracks lexical scoping and nominal-type declarations
// resolved while type-checking a module.
package symbols

import (
	"github.com/horizonanalytic/stratum/internal/ast"
	"github.com/horizonanalytic/stratum/internal/types"
)

// Kind classifies what a Symbol names.
type Kind int

const (
	VariableSymbol Kind = iota
	FunctionSymbol
	TypeSymbol
	StructSymbol
	EnumSymbol
	InterfaceSymbol
)

// ScopeKind distinguishes the nesting level a Scope was opened at.
type ScopeKind int

const (
	ScopeGlobal ScopeKind = iota
	ScopeFunction
	ScopeBlock
)

// Symbol is one name bound in a Scope.
type Symbol struct {
	Name       string
	Type       types.Type
	Kind       Kind
	IsMutable  bool
	Node       ast.Node
	NarrowedAs types.Type // set by flow-sensitive null narrowing, nil otherwise
}

// Scope is one lexical block; Scopes chain to a Parent to form the
// enclosing-scope stack a lookup walks outward through.
type Scope struct {
	Kind    ScopeKind
	Parent  *Scope
	symbols map[string]*Symbol
}

// NewScope opens a child scope of parent (nil for the outermost/global
// scope).
func NewScope(kind ScopeKind, parent *Scope) *Scope {
	return &Scope{Kind: kind, Parent: parent, symbols: map[string]*Symbol{}}
}

// Define binds name in this scope, shadowing any outer binding of the
// same name. Returns false if name is already bound in THIS scope
// (redeclaration within the same block).
func (s *Scope) Define(sym *Symbol) bool {
	if _, exists := s.symbols[sym.Name]; exists {
		return false
	}
	s.symbols[sym.Name] = sym
	return true
}

// Resolve looks up name in this scope, then outward through Parent
// scopes.
func (s *Scope) Resolve(name string) (*Symbol, bool) {
	for sc := s; sc != nil; sc = sc.Parent {
		if sym, ok := sc.symbols[name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// EnclosingFunction returns the nearest ScopeFunction ancestor, or nil
// at the top level (used to validate `return` outside a function).
func (s *Scope) EnclosingFunction() *Scope {
	for sc := s; sc != nil; sc = sc.Parent {
		if sc.Kind == ScopeFunction {
			return sc
		}
	}
	return nil
}

// StructDef is the registered shape of a `struct` declaration.
type StructDef struct {
	ID         int
	Name       string
	TypeParams []string
	Fields     []FieldDef
	Node       *ast.StructItem
}

// FieldDef is one struct field's declared name and type.
type FieldDef struct {
	Name string
	Type types.Type
}

// EnumVariantDef is one variant of an EnumDef.
type EnumVariantDef struct {
	Name        string
	TupleTypes  []types.Type // non-nil for tuple-style variants
	StructTypes []FieldDef   // non-nil for struct-style variants
}

// EnumDef is the registered shape of an `enum` declaration.
type EnumDef struct {
	ID         int
	Name       string
	TypeParams []string
	Variants   []EnumVariantDef
	Node       *ast.EnumItem
}

// InterfaceDef is the registered shape of an `interface` declaration.
type InterfaceDef struct {
	Name    string
	Methods []InterfaceMethodSig
}

// InterfaceMethodSig is one required method of an InterfaceDef.
type InterfaceMethodSig struct {
	Name   string
	Params []types.Type
	Ret    types.Type
}

// ImplDef registers that TargetType implements InterfaceName via the
// listed method function symbols.
type ImplDef struct {
	InterfaceName string
	TargetType    types.Type
	Methods       map[string]*FuncSig
}

// FuncSig is a resolved function signature.
type FuncSig struct {
	TypeParams []string
	Params     []types.Type
	Ret        types.Type
	IsAsync    bool
}

// Table is the module-wide registry of nominal-type and function
// declarations, separate from the lexical Scope chain used for local
// variable resolution.
type Table struct {
	Structs       map[string]*StructDef
	Enums         map[string]*EnumDef
	Interfaces    map[string]*InterfaceDef
	Impls         []*ImplDef
	Functions     map[string]*FuncSig
	nextID        int
	LoopDepth     int
	CurrentReturn types.Type
}

// NewTable creates an empty registry.
func NewTable() *Table {
	return &Table{
		Structs:    map[string]*StructDef{},
		Enums:      map[string]*EnumDef{},
		Interfaces: map[string]*InterfaceDef{},
		Functions:  map[string]*FuncSig{},
	}
}

// NextID allocates a fresh nominal-type ID, used to distinguish two
// structurally-identical struct/enum declarations.
func (t *Table) NextID() int {
	t.nextID++
	return t.nextID
}

// FindVariantEnum returns the EnumDef that declares a variant named
// variantName, used to resolve bare `Variant(...)` patterns and
// constructors against the enum that owns them.
func (t *Table) FindVariantEnum(variantName string) (*EnumDef, *EnumVariantDef, bool) {
	for _, e := range t.Enums {
		for i := range e.Variants {
			if e.Variants[i].Name == variantName {
				return e, &e.Variants[i], true
			}
		}
	}
	return nil, nil, false
}

// ImplsFor returns every ImplDef registered against a target type
// identified by name (struct or enum name).
func (t *Table) ImplsFor(typeName string) []*ImplDef {
	var out []*ImplDef
	for _, impl := range t.Impls {
		if named, ok := nominalName(impl.TargetType); ok && named == typeName {
			out = append(out, impl)
		}
	}
	return out
}

func nominalName(t types.Type) (string, bool) {
	switch v := t.(type) {
	case types.Struct:
		return v.Name, true
	case types.Enum:
		return v.Name, true
	}
	return "", false
}
