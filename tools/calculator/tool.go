package calculator

import (
	"context"
	"strconv"
	"strings"

	"github.com/bububa/marksix-agents/schema"
	"github.com/bububa/marksix-agents/tools"
)

// Input Tool for performing arithmetic calculations. Either provide a mathematical
// expression, or two numbers and an operation. Use this tool for any math the user asks for.
type Input struct {
	schema.Base
	// Expression Mathematical expression to evaluate. For example, '2 + 2' or '(15 × 3) ÷ 5'.
	Expression string `json:"expression,omitempty" jsonschema:"title=expression,description=Mathematical expression to evaluate. For example '2 + 2' or '(15 × 3) ÷ 5'. Supports + - * / ** and parentheses."`
	// Number1 First number for operand based calculation
	Number1 *float64 `json:"number1,omitempty" jsonschema:"title=number1,description=First number when not using an expression."`
	// Number2 Second number for operand based calculation
	Number2 *float64 `json:"number2,omitempty" jsonschema:"title=number2,description=Second number when not using an expression."`
	// Operation to apply on number1 and number2
	Operation string `json:"operation,omitempty" jsonschema:"title=operation,description=Operation applied to number1 and number2: add / subtract / multiply / divide (or + - * x / ÷)."`
}

// NewInput returns an expression Input
func NewInput(exp string) *Input {
	return &Input{
		Expression: exp,
	}
}

// NewOperandsInput returns an operands Input
func NewOperandsInput(a float64, b float64, operation string) *Input {
	return &Input{
		Number1:   &a,
		Number2:   &b,
		Operation: operation,
	}
}

// ToRequest converts the Input into a Request, a non-empty expression wins over operands
func (i Input) ToRequest() (Request, error) {
	if strings.TrimSpace(i.Expression) != "" {
		return Expression(i.Expression), nil
	}
	if i.Number1 != nil && i.Number2 != nil && strings.TrimSpace(i.Operation) != "" {
		return Operands{A: *i.Number1, B: *i.Number2, Operator: i.Operation}, nil
	}
	return nil, ErrMissingArguments
}

// Output Schema for the output of the CalculatorTool
type Output struct {
	schema.Base
	// Result Result of the calculation
	Result float64 `json:"result" jsonschema:"title=result,description=Result of the calculation."`
}

func NewOutput(result float64) *Output {
	return &Output{
		Result: result,
	}
}

// String returns the shortest decimal representation of the result
func (o Output) String() string {
	return strconv.FormatFloat(o.Result, 'f', -1, 64)
}

type Tool struct {
	tools.Config
}

var (
	_ tools.Tool[Input, Output] = (*Tool)(nil)
	_ tools.OrchestrationTool   = (*Tool)(nil)
)

func New(opts ...tools.Option) *Tool {
	ret := new(Tool)
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.Title() == "" {
		ret.SetTitle("CalculatorTool")
	}
	if ret.Description() == "" {
		ret.SetDescription("Perform arithmetic from an expression or from two numbers and an operation.")
	}
	return ret
}

// Run executes the CalculatorTool with the given parameters.
func (t *Tool) Run(ctx context.Context, input *Input) (*Output, error) {
	req, err := input.ToRequest()
	if err != nil {
		return nil, err
	}
	result, err := Calculate(req)
	if err != nil {
		return nil, err
	}
	return NewOutput(result), nil
}

// RunOrchestration implements tools.OrchestrationTool
func (t *Tool) RunOrchestration(ctx context.Context, input any) (any, error) {
	return tools.RunTyped(ctx, input, t.Run)
}
