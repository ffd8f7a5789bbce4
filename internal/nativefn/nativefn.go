// Package nativefn is the host-side native function registry §6 calls
// for: a fixed table of name -> implementation, installed into a VM's
// Natives map and filtered by the CLI's --config allowlist, the same
// map-of-builtins shape the teacher's evaluator package uses for its
// own Builtins table.
package nativefn

import (
	"fmt"
	"os"

	"github.com/horizonanalytic/stratum/internal/vm"
)

// All is every native function this host implements, independent of
// which ones a given run is allowed to call.
var All = map[string]*vm.NativeFn{
	"print":  {Name: "print", Fn: nativePrint},
	"len":    {Name: "len", Fn: nativeLen},
	"string": {Name: "string", Fn: nativeToString},
}

func nativePrint(args []vm.Value) (vm.Value, error) {
	for i, a := range args {
		if i > 0 {
			fmt.Fprint(os.Stdout, " ")
		}
		if s, ok := a.Obj.(*vm.StringObj); ok {
			fmt.Fprint(os.Stdout, s.S)
			continue
		}
		fmt.Fprint(os.Stdout, vm.Inspect(a))
	}
	fmt.Fprintln(os.Stdout)
	return vm.NullVal(), nil
}

func nativeLen(args []vm.Value) (vm.Value, error) {
	if len(args) != 1 {
		return vm.Value{}, fmt.Errorf("len: expected 1 argument, got %d", len(args))
	}
	switch o := args[0].Obj.(type) {
	case *vm.StringObj:
		return vm.IntVal(int64(len([]rune(o.S)))), nil
	case *vm.ListObj:
		return vm.IntVal(int64(len(o.Elems))), nil
	case *vm.MapObj:
		return vm.IntVal(int64(len(o.Pairs()))), nil
	case *vm.TupleObj:
		return vm.IntVal(int64(len(o.Elems))), nil
	}
	return vm.Value{}, fmt.Errorf("len: unsupported type %s", vm.TypeName(args[0]))
}

func nativeToString(args []vm.Value) (vm.Value, error) {
	if len(args) != 1 {
		return vm.Value{}, fmt.Errorf("string: expected 1 argument, got %d", len(args))
	}
	if s, ok := args[0].Obj.(*vm.StringObj); ok {
		return vm.StringVal(s.S), nil
	}
	return vm.StringVal(vm.Inspect(args[0])), nil
}

// Install copies every native in allowlist (or every registered native
// when allowlist is nil, meaning "no restriction configured") into
// target's Natives map.
func Install(target *vm.VM, allowlist []string) {
	install := func(name string, fn *vm.NativeFn) {
		target.Natives[name] = fn
		target.DefineGlobal(name, vm.ObjVal(fn))
	}
	if allowlist == nil {
		for name, fn := range All {
			install(name, fn)
		}
		return
	}
	for _, name := range allowlist {
		if fn, ok := All[name]; ok {
			install(name, fn)
		}
	}
}
