package calculator

import "fmt"

// Request is either an Expression or a set of Operands
type Request interface {
	isRequest()
}

// Expression is a free form arithmetic expression, e.g. "(2+3)*4"
type Expression string

// Operands is a single binary operation, e.g. {A: 10, B: 5, Operator: "divide"}
type Operands struct {
	A        float64
	B        float64
	Operator string
}

func (Expression) isRequest() {}

func (Operands) isRequest() {}

// Calculate evaluates an expression or applies an operator to two operands
func Calculate(req Request) (float64, error) {
	switch r := req.(type) {
	case Expression:
		return Evaluate(string(r))
	case Operands:
		op, err := ParseOperator(r.Operator)
		if err != nil {
			return 0, err
		}
		value, err := op.Apply(r.A, r.B)
		if err != nil {
			return 0, &EvaluationError{Expression: fmt.Sprintf("%v %s %v", r.A, op, r.B), Err: err}
		}
		return value, nil
	}
	return 0, ErrMissingArguments
}
