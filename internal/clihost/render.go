package clihost

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/horizonanalytic/stratum/internal/diagnostics"
)

const (
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiDim    = "\x1b[2m"
	ansiReset  = "\x1b[0m"
)

// Renderer prints diagnostics and run summaries to a writer, coloring
// output only when that writer is a real terminal — the same
// isatty-gated approach the teacher's CLI uses for its own output.
type Renderer struct {
	w      io.Writer
	color  bool
}

// NewRenderer builds a Renderer for w, detecting color support via
// isatty when w is an *os.File.
func NewRenderer(w io.Writer) *Renderer {
	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Renderer{w: w, color: color}
}

func (r *Renderer) colorize(code, s string) string {
	if !r.color {
		return s
	}
	return code + s + ansiReset
}

// Diagnostics prints every diagnostic in ds, one per line, file:line:col
// prefixed, errors in red and warnings in yellow.
func (r *Renderer) Diagnostics(sourceName string, ds []diagnostics.Diagnostic) {
	for _, d := range ds {
		label := "error"
		code := ansiRed
		if d.Warning {
			label = "warning"
			code = ansiYellow
		}
		fmt.Fprintf(r.w, "%s:%d:%d: %s: %s\n",
			sourceName, d.Span.Line, d.Span.Col, r.colorize(code, label), d.Message)
		if d.Hint != "" {
			fmt.Fprintf(r.w, "  %s %s\n", r.colorize(ansiDim, "hint:"), d.Hint)
		}
		for _, rel := range d.Related {
			fmt.Fprintf(r.w, "  %s %d:%d: %s\n", r.colorize(ansiDim, "note:"), rel.Span.Line, rel.Span.Col, rel.Message)
		}
	}
}

// RunSummary prints a one-line human-readable summary of a completed
// run: bundle/source size and elapsed wall time, using go-humanize the
// way the teacher's CLI formats byte counts and durations for users.
func (r *Renderer) RunSummary(sourceBytes int, elapsed time.Duration) {
	fmt.Fprintf(r.w, "%s compiled, %s elapsed\n",
		humanize.Bytes(uint64(sourceBytes)), humanize.RelTime(time.Now().Add(-elapsed), time.Now(), "", ""))
}
