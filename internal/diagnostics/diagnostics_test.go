package diagnostics

import (
	"strings"
	"testing"

	"github.com/horizonanalytic/stratum/internal/token"
)

func TestNewBuildsErrorLevelDiagnostic(t *testing.T) {
	d := New(KindUndefinedVariable, token.Span{Line: 1, Col: 1}, "undefined variable %q", "x")
	if d.Warning {
		t.Errorf("New should produce a non-warning diagnostic")
	}
	if d.Message != `undefined variable "x"` {
		t.Errorf("got message %q", d.Message)
	}
	if d.ID.String() == "" {
		t.Errorf("expected a generated ID")
	}
}

func TestNewWarningSetsWarningFlag(t *testing.T) {
	d := NewWarning(KindNonExhaustiveMatch, token.Span{}, "missing variant %q", "None")
	if !d.Warning {
		t.Errorf("NewWarning should set Warning")
	}
}

func TestTwoDiagnosticsGetDistinctIDs(t *testing.T) {
	a := New(KindSyntaxError, token.Span{}, "a")
	b := New(KindSyntaxError, token.Span{}, "b")
	if a.ID == b.ID {
		t.Errorf("expected distinct generated IDs, both were %s", a.ID)
	}
}

func TestWithHintAndWithRelatedReturnCopies(t *testing.T) {
	base := New(KindCannotUnify, token.Span{}, "mismatch")
	hinted := base.WithHint("try casting")
	if base.Hint != "" {
		t.Errorf("WithHint should not mutate the receiver")
	}
	if hinted.Hint != "try casting" {
		t.Errorf("got hint %q, want %q", hinted.Hint, "try casting")
	}

	related := base.WithRelated(token.Span{Line: 2}, "previous definition here")
	if len(base.Related) != 0 {
		t.Errorf("WithRelated should not mutate the receiver")
	}
	if len(related.Related) != 1 || related.Related[0].Message != "previous definition here" {
		t.Errorf("got related %v", related.Related)
	}
}

func TestStringIncludesLocationKindAndMessage(t *testing.T) {
	d := New(KindSyntaxError, token.Span{Line: 3, Col: 5}, "unexpected token")
	s := d.String()
	if !strings.Contains(s, "3:5") || !strings.Contains(s, "syntax-error") || !strings.Contains(s, "unexpected token") {
		t.Errorf("got %q, missing location/kind/message", s)
	}
}

func TestStringIncludesHintWhenSet(t *testing.T) {
	d := New(KindSyntaxError, token.Span{}, "oops").WithHint("try again")
	if !strings.Contains(d.String(), "hint: try again") {
		t.Errorf("got %q, expected it to include the hint", d.String())
	}
}

func TestHasErrorsTrueOnlyWithNonWarningDiagnostic(t *testing.T) {
	warningsOnly := []Diagnostic{NewWarning(KindUnreachableMatchArm, token.Span{}, "unreachable")}
	if HasErrors(warningsOnly) {
		t.Errorf("a warning-only slice should report no errors")
	}
	withError := append(warningsOnly, New(KindSyntaxError, token.Span{}, "bad"))
	if !HasErrors(withError) {
		t.Errorf("expected HasErrors to find the error-level diagnostic")
	}
}

func TestHasErrorsEmptySlice(t *testing.T) {
	if HasErrors(nil) {
		t.Errorf("an empty slice should report no errors")
	}
}
