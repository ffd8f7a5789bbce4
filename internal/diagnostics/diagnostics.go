// Package diagnostics defines the compile-time diagnostic model shared by
// the parser and type checker (tier 1 of the error-handling design: never
// thrown, always collected and returned).
package diagnostics

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/horizonanalytic/stratum/internal/token"
)

// Kind enumerates every diagnostic kind the parser and checker can report.
type Kind string

const (
	KindSyntaxError             Kind = "syntax-error"
	KindTypeMismatch             Kind = "type-mismatch"
	KindUndefinedVariable        Kind = "undefined-variable"
	KindUndefinedType            Kind = "undefined-type"
	KindUndefinedFunction        Kind = "undefined-function"
	KindUndefinedStruct          Kind = "undefined-struct"
	KindUndefinedEnum            Kind = "undefined-enum"
	KindUndefinedInterface       Kind = "undefined-interface"
	KindNotCallable              Kind = "not-callable"
	KindWrongArgumentCount       Kind = "wrong-argument-count"
	KindNotIndexable             Kind = "not-indexable"
	KindInvalidIndexType         Kind = "invalid-index-type"
	KindNoSuchField              Kind = "no-such-field"
	KindUnnecessaryNullSafe      Kind = "unnecessary-null-safe"
	KindNullabilityMismatch      Kind = "nullability-mismatch"
	KindInvalidBinaryOp          Kind = "invalid-binary-op"
	KindInvalidUnaryOp           Kind = "invalid-unary-op"
	KindReturnTypeMismatch       Kind = "return-type-mismatch"
	KindInvalidAssignmentTarget  Kind = "invalid-assignment-target"
	KindDuplicateField           Kind = "duplicate-field"
	KindMissingField             Kind = "missing-field"
	KindExtraField               Kind = "extra-field"
	KindCannotInfer              Kind = "cannot-infer"
	KindRecursiveType            Kind = "recursive-type"
	KindDuplicateDefinition      Kind = "duplicate-definition"
	KindBreakOutsideLoop         Kind = "break-outside-loop"
	KindContinueOutsideLoop      Kind = "continue-outside-loop"
	KindReturnOutsideFunction    Kind = "return-outside-function"
	KindIncompatibleBranches     Kind = "incompatible-branches"
	KindWrongTypeArgCount        Kind = "wrong-type-arg-count"
	KindOccursCheck              Kind = "occurs-check"
	KindCannotUnify              Kind = "cannot-unify"
	KindMissingInterfaceMethod   Kind = "missing-interface-method"
	KindMethodSignatureMismatch  Kind = "method-signature-mismatch"
	KindDuplicateImpl            Kind = "duplicate-impl"
	KindMethodNotFound           Kind = "method-not-found"
	KindNonExhaustiveMatch       Kind = "non-exhaustive-match"
	KindUnreachableMatchArm      Kind = "unreachable-match-arm"
)

// RelatedLocation attaches a secondary span to a Diagnostic — e.g. the
// location of a previous conflicting definition.
type RelatedLocation struct {
	Span    token.Span
	Message string
}

// Diagnostic is a single compile-time error or warning.
type Diagnostic struct {
	ID       uuid.UUID
	Kind     Kind
	Span     token.Span
	Message  string
	Hint     string
	Warning  bool
	Related  []RelatedLocation
}

// New builds an error-level Diagnostic with a freshly generated ID.
func New(kind Kind, span token.Span, format string, args ...interface{}) Diagnostic {
	return Diagnostic{
		ID:      uuid.New(),
		Kind:    kind,
		Span:    span,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewWarning builds a warning-level Diagnostic.
func NewWarning(kind Kind, span token.Span, format string, args ...interface{}) Diagnostic {
	d := New(kind, span, format, args...)
	d.Warning = true
	return d
}

// WithHint returns a copy of d with Hint set.
func (d Diagnostic) WithHint(hint string) Diagnostic {
	d.Hint = hint
	return d
}

// WithRelated returns a copy of d with an additional related location.
func (d Diagnostic) WithRelated(span token.Span, message string) Diagnostic {
	d.Related = append(d.Related, RelatedLocation{Span: span, Message: message})
	return d
}

func (d Diagnostic) String() string {
	s := fmt.Sprintf("%s:%d:%d: %s", d.Kind, d.Span.Line, d.Span.Col, d.Message)
	if d.Hint != "" {
		s += fmt.Sprintf(" (hint: %s)", d.Hint)
	}
	return s
}

// HasErrors reports whether ds contains at least one non-warning
// diagnostic.
func HasErrors(ds []Diagnostic) bool {
	for _, d := range ds {
		if !d.Warning {
			return true
		}
	}
	return false
}
