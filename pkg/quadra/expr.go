package quadra

import (
	"math"

	"github.com/quadra-io/quadra/pkg/quadra/parser"
)

// The compiler accepts exactly one variable, two constants, and six
// single-argument functions. Anything else is rejected at compile time, so
// the evaluator can never be driven to execute arbitrary code.
const variableName = "x"

var constants = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}

var functions = map[string]func(float64) float64{
	"sin":  math.Sin,
	"cos":  math.Cos,
	"tan":  math.Tan,
	"exp":  math.Exp,
	"log":  math.Log,
	"sqrt": math.Sqrt,
}

// maxExpressionNodes caps AST size so a pathological request cannot buy
// unbounded evaluation work per sample point.
const maxExpressionNodes = 1000

// CompiledExpression is an immutable, re-evaluable wrapper around a parsed
// expression. It is owned by the request that compiled it and holds no
// mutable state, so Evaluate is safe to call concurrently.
type CompiledExpression struct {
	root   parser.Expression
	source string
}

// Compile parses text into a CompiledExpression. It fails with an
// ExpressionError of kind SyntaxError when the text does not parse, or
// UnknownSymbol when it references anything outside the supported set.
// Compile never evaluates: "1/0 * x" compiles fine and only faults at
// evaluation time.
func Compile(text string) (*CompiledExpression, error) {
	p := parser.New(parser.NewLexer(text))
	root := p.ParseExpression()

	if errs := p.Errors(); len(errs) > 0 {
		return nil, newExpressionError(SyntaxError, "invalid expression: %s", errs[0])
	}

	if n := parser.CountNodes(root); n > maxExpressionNodes {
		return nil, newExpressionError(SyntaxError, "expression too large (%d nodes)", n)
	}

	if err := validate(root); err != nil {
		return nil, err
	}

	return &CompiledExpression{root: root, source: text}, nil
}

// Source returns the original expression text.
func (c *CompiledExpression) Source() string { return c.source }

// Evaluate computes f(x). Division by zero, log of a non-positive number,
// sqrt of a negative number, and any operation producing a non-finite
// value fail with an EvaluationError instead of propagating NaN/Inf.
func (c *CompiledExpression) Evaluate(x float64) (float64, error) {
	return eval(c.root, x)
}

// validate walks the tree and rejects any identifier or call target
// outside the closed symbol set. Rejecting, not ignoring, unknown tokens
// is what keeps the evaluator a pure numeric machine.
func validate(expr parser.Expression) error {
	switch e := expr.(type) {
	case *parser.NumberLiteral:
		return nil
	case *parser.Identifier:
		if e.Value == variableName {
			return nil
		}
		if _, ok := constants[e.Value]; ok {
			return nil
		}
		if _, ok := functions[e.Value]; ok {
			return newExpressionError(UnknownSymbol, "%s is a function and must be called", e.Value)
		}
		return newExpressionError(UnknownSymbol, "unknown symbol: %s", e.Value)
	case *parser.PrefixExpression:
		return validate(e.Right)
	case *parser.InfixExpression:
		if err := validate(e.Left); err != nil {
			return err
		}
		return validate(e.Right)
	case *parser.CallExpression:
		if _, ok := functions[e.Function.Value]; !ok {
			return newExpressionError(UnknownSymbol, "unknown function: %s", e.Function.Value)
		}
		if len(e.Arguments) != 1 {
			return newExpressionError(SyntaxError, "%s takes exactly one argument, got %d",
				e.Function.Value, len(e.Arguments))
		}
		return validate(e.Arguments[0])
	default:
		return newExpressionError(SyntaxError, "unsupported expression node %T", expr)
	}
}

func eval(expr parser.Expression, x float64) (float64, error) {
	switch e := expr.(type) {
	case *parser.NumberLiteral:
		return e.Value, nil

	case *parser.Identifier:
		if e.Value == variableName {
			return x, nil
		}
		// validate guarantees this lookup succeeds
		return constants[e.Value], nil

	case *parser.PrefixExpression:
		right, err := eval(e.Right, x)
		if err != nil {
			return 0, err
		}
		return -right, nil

	case *parser.InfixExpression:
		left, err := eval(e.Left, x)
		if err != nil {
			return 0, err
		}
		right, err := eval(e.Right, x)
		if err != nil {
			return 0, err
		}
		return evalInfix(e.Operator, left, right, x)

	case *parser.CallExpression:
		arg, err := eval(e.Arguments[0], x)
		if err != nil {
			return 0, err
		}
		return evalCall(e.Function.Value, arg, x)

	default:
		return 0, newEvaluationError(x, "unsupported expression node %T", expr)
	}
}

func evalInfix(operator string, left, right, x float64) (float64, error) {
	var result float64

	switch operator {
	case "+":
		result = left + right
	case "-":
		result = left - right
	case "*":
		result = left * right
	case "/":
		if right == 0 {
			return 0, newEvaluationError(x, "division by zero")
		}
		result = left / right
	case "**":
		result = math.Pow(left, right)
	default:
		return 0, newEvaluationError(x, "unknown operator: %s", operator)
	}

	if !isFinite(result) {
		return 0, newEvaluationError(x, "%s produced a non-finite value", operator)
	}
	return result, nil
}

func evalCall(name string, arg, x float64) (float64, error) {
	switch name {
	case "log":
		if arg <= 0 {
			return 0, newEvaluationError(x, "log of non-positive value %g", arg)
		}
	case "sqrt":
		if arg < 0 {
			return 0, newEvaluationError(x, "sqrt of negative value %g", arg)
		}
	}

	result := functions[name](arg)
	if !isFinite(result) {
		return 0, newEvaluationError(x, "%s produced a non-finite value", name)
	}
	return result, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
