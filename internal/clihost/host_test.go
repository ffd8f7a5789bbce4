package clihost

import (
	"context"
	"testing"
)

func TestCheckCompilesValidSource(t *testing.T) {
	res := Check("1 + 2")
	if len(res.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %v", res.Diagnostics)
	}
	if res.Main == nil {
		t.Fatalf("expected a compiled entry function")
	}
}

func TestCheckReportsSyntaxErrors(t *testing.T) {
	res := Check("let x =")
	if len(res.Diagnostics) == 0 {
		t.Fatalf("expected diagnostics for invalid syntax")
	}
	if res.Main != nil {
		t.Fatalf("expected no compiled function when parsing fails")
	}
}

func TestCheckReportsTypeErrors(t *testing.T) {
	res := Check(`1 + "two"`)
	if len(res.Diagnostics) == 0 {
		t.Fatalf("expected a type diagnostic for Int + String")
	}
}

func TestHostRunExecutesAndDrains(t *testing.T) {
	h := New(DefaultConfig())
	v, diags, err := h.Run(context.Background(), "let x = 2\nlet y = 3\nx * y")
	if err != nil {
		t.Fatalf("Run: %v (diags=%v)", err, diags)
	}
	if v.AsInt() != 6 {
		t.Errorf("got %v, want 6", v)
	}
}

func TestHostRunPropagatesCompileFailure(t *testing.T) {
	h := New(DefaultConfig())
	_, diags, err := h.Run(context.Background(), "let x =")
	if err == nil {
		t.Fatalf("expected an error for unparseable source")
	}
	if len(diags) == 0 {
		t.Fatalf("expected diagnostics explaining the failure")
	}
}
