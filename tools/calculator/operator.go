package calculator

import "strings"

// Operator is one of the four binary operations accepted in operands mode
type Operator int

const (
	Add Operator = iota
	Subtract
	Multiply
	Divide
)

var operatorSymbols = map[Operator]string{
	Add:      "+",
	Subtract: "-",
	Multiply: "*",
	Divide:   "/",
}

var operatorTokens = map[string]Operator{
	"add":      Add,
	"+":        Add,
	"subtract": Subtract,
	"-":        Subtract,
	"multiply": Multiply,
	"*":        Multiply,
	"×":        Multiply,
	"x":        Multiply,
	"divide":   Divide,
	"/":        Divide,
	"÷":        Divide,
}

// ParseOperator looks up an operator token, case-insensitive and ignoring surrounding spaces
func ParseOperator(token string) (Operator, error) {
	if op, ok := operatorTokens[strings.ToLower(strings.TrimSpace(token))]; ok {
		return op, nil
	}
	return 0, &UnsupportedOperationError{Operation: token}
}

func (o Operator) String() string {
	return operatorSymbols[o]
}

// Apply computes a op b
func (o Operator) Apply(a, b float64) (float64, error) {
	switch o {
	case Add:
		return a + b, nil
	case Subtract:
		return a - b, nil
	case Multiply:
		return a * b, nil
	case Divide:
		if b == 0 {
			return 0, ErrDivisionByZero
		}
		return a / b, nil
	}
	return 0, &UnsupportedOperationError{Operation: o.String()}
}
