package nativefn

import (
	"testing"

	"github.com/horizonanalytic/stratum/internal/vm"
)

func TestInstallNilAllowlistRegistersEverything(t *testing.T) {
	v := vm.New()
	Install(v, nil)
	for name := range All {
		if _, ok := v.Natives[name]; !ok {
			t.Errorf("Natives missing %q", name)
		}
	}
}

func TestInstallAllowlistFilters(t *testing.T) {
	v := vm.New()
	Install(v, []string{"len"})
	if _, ok := v.Natives["len"]; !ok {
		t.Fatalf("expected len to be installed")
	}
	if _, ok := v.Natives["print"]; ok {
		t.Errorf("print should not be installed when only len is allowlisted")
	}
}

func TestNativeLen(t *testing.T) {
	cases := []struct {
		name string
		arg  vm.Value
		want int64
	}{
		{"string", vm.StringVal("hello"), 5},
		{"list", vm.ObjVal(&vm.ListObj{Elems: []vm.Value{vm.IntVal(1), vm.IntVal(2)}}), 2},
	}
	for _, c := range cases {
		got, err := nativeLen([]vm.Value{c.arg})
		if err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}
		if got.AsInt() != c.want {
			t.Errorf("%s: got %d, want %d", c.name, got.AsInt(), c.want)
		}
	}
}

func TestNativeLenWrongArgCount(t *testing.T) {
	if _, err := nativeLen(nil); err == nil {
		t.Fatalf("expected an error calling len() with no arguments")
	}
}

func TestNativeToString(t *testing.T) {
	got, err := nativeToString([]vm.Value{vm.IntVal(42)})
	if err != nil {
		t.Fatalf("nativeToString: %v", err)
	}
	s, ok := got.Obj.(*vm.StringObj)
	if !ok || s.S != "42" {
		t.Errorf("got %v, want string \"42\"", got)
	}
}
