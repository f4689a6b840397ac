package quadra

import "fmt"

// ValidationKind identifies which request invariant a ValidationError
// reports. The set is closed; transports map kinds to messages verbatim.
type ValidationKind string

const (
	BadBounds     ValidationKind = "bad_bounds"
	BadPointCount ValidationKind = "bad_point_count"
	UnknownMethod ValidationKind = "unknown_method"
)

// ValidationError reports a malformed request, detected before any
// compilation or evaluation work is spent.
type ValidationError struct {
	Kind    ValidationKind
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func newValidationError(kind ValidationKind, format string, a ...interface{}) *ValidationError {
	return &ValidationError{Kind: kind, Message: fmt.Sprintf(format, a...)}
}

// ExpressionKind distinguishes text that does not parse from text that
// parses but references a symbol outside the supported set.
type ExpressionKind string

const (
	SyntaxError   ExpressionKind = "syntax_error"
	UnknownSymbol ExpressionKind = "unknown_symbol"
)

// ExpressionError reports that an expression string could not be compiled.
type ExpressionError struct {
	Kind    ExpressionKind
	Message string
}

func (e *ExpressionError) Error() string { return e.Message }

func newExpressionError(kind ExpressionKind, format string, a ...interface{}) *ExpressionError {
	return &ExpressionError{Kind: kind, Message: fmt.Sprintf(format, a...)}
}

// EvaluationError reports a domain fault: an evaluation that produced a
// mathematically undefined or non-finite value at some sample point.
type EvaluationError struct {
	At      float64
	Message string
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("%s (at x=%g)", e.Message, e.At)
}

func newEvaluationError(at float64, format string, a ...interface{}) *EvaluationError {
	return &EvaluationError{At: at, Message: fmt.Sprintf(format, a...)}
}
