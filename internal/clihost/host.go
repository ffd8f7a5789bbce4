// Package clihost is the one piece of host-embedding code this module
// ships (§6): it wires the lexer, parser, checker, compiler and VM
// together the way any embedder would, and is driven by cmd/stratum.
package clihost

import (
	"context"
	"fmt"

	"github.com/horizonanalytic/stratum/internal/checker"
	"github.com/horizonanalytic/stratum/internal/diagnostics"
	"github.com/horizonanalytic/stratum/internal/nativefn"
	"github.com/horizonanalytic/stratum/internal/parser"
	"github.com/horizonanalytic/stratum/internal/scheduler"
	"github.com/horizonanalytic/stratum/internal/vm"
)

// Host owns one compiled program's VM and its scheduler, configured
// from a Config.
type Host struct {
	Config    Config
	VM        *vm.VM
	Scheduler *scheduler.Scheduler
}

// New builds a Host from cfg, installing the configured native function
// allowlist and resource limits.
func New(cfg Config) *Host {
	v := vm.New()
	if cfg.FrameLimit > 0 {
		v.FrameLimit = cfg.FrameLimit
	}
	nativefn.Install(v, cfg.NativeAllowlist)
	return &Host{
		Config:    cfg,
		VM:        v,
		Scheduler: scheduler.New(cfg.MaxConcurrentNative),
	}
}

// CompileResult holds everything produced by Check: the compiled entry
// function, or the diagnostics that prevented compilation.
type CompileResult struct {
	Main        *vm.FunctionObj
	Diagnostics []diagnostics.Diagnostic
}

// Check runs the full tier-1 pipeline (parse, type-check, compile)
// over source without executing it, matching the `stratum check`
// subcommand's contract.
func Check(source string) CompileResult {
	mod, diags := parser.Parse(source)
	if diagnostics.HasErrors(diags) {
		return CompileResult{Diagnostics: diags}
	}
	checkDiags := checker.New().Check(mod)
	diags = append(diags, checkDiags...)
	if diagnostics.HasErrors(diags) {
		return CompileResult{Diagnostics: diags}
	}
	main, compileDiags := vm.NewCompiler().CompileModule(mod)
	diags = append(diags, compileDiags...)
	return CompileResult{Main: main, Diagnostics: diags}
}

// RunCompiled executes an already-compiled entry function (e.g. loaded
// from internal/cache or internal/bundle), skipping the parse/check/
// compile pipeline entirely.
func (h *Host) RunCompiled(ctx context.Context, main *vm.FunctionObj) (vm.Value, error) {
	result, err := h.VM.Run(main)
	if err != nil {
		return result, err
	}
	if err := h.Scheduler.Drain(ctx); err != nil {
		return result, err
	}
	return result, nil
}

// Run compiles and executes source to completion, draining any
// scheduled async continuations before returning the program's final
// value.
func (h *Host) Run(ctx context.Context, source string) (vm.Value, []diagnostics.Diagnostic, error) {
	res := Check(source)
	if diagnostics.HasErrors(res.Diagnostics) || res.Main == nil {
		return vm.Value{}, res.Diagnostics, fmt.Errorf("compilation failed")
	}
	result, err := h.VM.Run(res.Main)
	if err != nil {
		return result, res.Diagnostics, err
	}
	if err := h.Scheduler.Drain(ctx); err != nil {
		return result, res.Diagnostics, err
	}
	return result, res.Diagnostics, nil
}
