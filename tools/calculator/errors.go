package calculator

import (
	"errors"
	"fmt"
)

var (
	// ErrDivisionByZero is wrapped by an EvaluationError whenever a divisor evaluates to zero
	ErrDivisionByZero = errors.New("cannot divide by zero")
	// ErrMissingArguments returned when neither an expression nor a complete set of operands is supplied
	ErrMissingArguments = errors.New("must provide either expression or (number1, number2, operation)")
)

// EvaluationError reports a malformed, unsafe or undefined arithmetic expression
type EvaluationError struct {
	// Expression the offending text
	Expression string
	// Err the underlying parser or arithmetic error
	Err error
}

func (e *EvaluationError) Error() string {
	if errors.Is(e.Err, ErrDivisionByZero) {
		return ErrDivisionByZero.Error()
	}
	return fmt.Sprintf("cannot evaluate expression: %s. error: %v", e.Expression, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}

// UnsupportedOperationError reports an operator token missing from the synonym table
type UnsupportedOperationError struct {
	Operation string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("unsupported operation: %s", e.Operation)
}
