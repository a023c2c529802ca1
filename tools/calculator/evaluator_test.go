package calculator

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"testing"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		expression string
		expected   float64
	}{
		{"2+2", 4},
		{"1-9", -8},
		{"10/2", 5},
		{"(2+3)*(4-1)", 15},
		{"2**3", 8},
		{"2**3**2", 512},
		{"-2**2", -4},
		{"2**-1", 0.5},
		{"2*-3", -6},
		{"2/4+3*5-1/2*7", 12},
		{"((1.5))", 1.5},
		{" 15 × 3 ÷ 5 ", 9},
		{"-(4 - 6)", 2},
		{".5 + 0.25", 0.75},
		{"--3", 3},
		{"2*--3", 6},
		{"-(-3)", 3},
		{"---3", -3},
		{"2--3", 5},
		{"1 - - 2", 3},
		{"2 - - - 3", -1},
		{"2**--2", 4},
	}
	for _, tt := range tests {
		got, err := Evaluate(tt.expression)
		if err != nil {
			t.Errorf("%s: unexpected error %v", tt.expression, err)
			continue
		}
		if got != tt.expected {
			t.Errorf("%s: expecting %v, but got %v", tt.expression, tt.expected, got)
		}
	}
}

func TestEvaluateRejects(t *testing.T) {
	for _, expression := range []string{
		"",
		"   ",
		"not math",
		"x + 1",
		"pi * 2",
		"sqrt(4)",
		"__import__('os')",
		"1 == 1",
		"1 < 2",
		"1 && 1",
		"3 % 2",
		"1 & 3",
		"1 << 2",
		"(1 + 2",
		"1 + 2)",
		"()",
		"(2)(3)",
		"2 3",
		"1 +",
		"1..2",
		"2 // 3",
		"'a'",
	} {
		_, err := Evaluate(expression)
		var evalErr *EvaluationError
		if !errors.As(err, &evalErr) {
			t.Errorf("%q: expecting EvaluationError, but got %v", expression, err)
			continue
		}
		if errors.Is(err, ErrDivisionByZero) {
			t.Errorf("%q: unexpected division by zero", expression)
		}
	}
}

func TestEvaluateDivisionByZero(t *testing.T) {
	for _, expression := range []string{
		"10/0",
		"1/(2-2)",
		"5 ÷ (3*0)",
		"0**-1",
	} {
		_, err := Evaluate(expression)
		if !errors.Is(err, ErrDivisionByZero) {
			t.Errorf("%q: expecting ErrDivisionByZero, but got %v", expression, err)
			continue
		}
		if err.Error() != "cannot divide by zero" {
			t.Errorf("%q: unexpected message %q", expression, err.Error())
		}
	}
}

func TestEvaluationErrorMessage(t *testing.T) {
	tests := []struct {
		expression string
		expected   string
	}{
		{"2 $ 3", `cannot evaluate expression: 2 $ 3. error: unsupported token '$'`},
		{"1.2.3 + 1", `cannot evaluate expression: 1.2.3 + 1. error: invalid number "1.2.3"`},
		{"1..2", `cannot evaluate expression: 1..2. error: invalid number "1..2"`},
		{"2 3", `cannot evaluate expression: 2 3. error: invalid syntax`},
		{"(1 + 2", `cannot evaluate expression: (1 + 2. error: unbalanced parentheses`},
		{"1 +", `cannot evaluate expression: 1 +. error: unexpected end of expression`},
	}
	for _, tt := range tests {
		_, err := Evaluate(tt.expression)
		if err == nil || err.Error() != tt.expected {
			t.Errorf("expecting %q, but got %v", tt.expected, err)
		}
	}
}

// node is a random arithmetic expression rendered as text and evaluated directly
type node struct {
	op          string
	value       float64
	left, right *node
}

func randomNode(rnd *rand.Rand, depth int) *node {
	if depth == 0 || rnd.Intn(3) == 0 {
		return &node{value: float64(rnd.Intn(10))}
	}
	switch op := []string{"+", "-", "*", "/", "**", "neg"}[rnd.Intn(6)]; op {
	case "neg":
		return &node{op: op, left: randomNode(rnd, depth-1)}
	case "**":
		return &node{op: op, left: randomNode(rnd, depth-1), right: &node{value: float64(rnd.Intn(4))}}
	default:
		return &node{op: op, left: randomNode(rnd, depth-1), right: randomNode(rnd, depth-1)}
	}
}

func (n *node) String() string {
	switch n.op {
	case "":
		return fmt.Sprintf("%g", n.value)
	case "neg":
		return "-" + n.left.String()
	case "**":
		base := n.left.String()
		if n.left.op == "neg" {
			base = "(" + base + ")"
		}
		return "(" + base + "**" + n.right.String() + ")"
	}
	return "(" + n.left.String() + " " + n.op + " " + n.right.String() + ")"
}

func (n *node) eval() (float64, error) {
	if n.op == "" {
		return n.value, nil
	}
	a, err := n.left.eval()
	if err != nil {
		return 0, err
	}
	if n.op == "neg" {
		return -a, nil
	}
	b, err := n.right.eval()
	if err != nil {
		return 0, err
	}
	switch n.op {
	case "+":
		return a + b, nil
	case "-":
		return a - b, nil
	case "*":
		return a * b, nil
	case "/":
		if b == 0 {
			return 0, ErrDivisionByZero
		}
		return a / b, nil
	}
	if a == 0 && b < 0 {
		return 0, ErrDivisionByZero
	}
	return math.Pow(a, b), nil
}

func TestEvaluateRandomExpressions(t *testing.T) {
	rnd := rand.New(rand.NewSource(6))
	for i := 0; i < 500; i++ {
		n := randomNode(rnd, 4)
		expression := n.String()
		expected, expectedErr := n.eval()
		got, err := Evaluate(expression)
		switch {
		case expectedErr != nil:
			if !errors.Is(err, expectedErr) {
				t.Errorf("%s: expecting %v, but got %v, %v", expression, expectedErr, got, err)
			}
		case math.IsInf(expected, 0) || math.IsNaN(expected):
			var evalErr *EvaluationError
			if !errors.As(err, &evalErr) {
				t.Errorf("%s: expecting EvaluationError, but got %v, %v", expression, got, err)
			}
		case err != nil:
			t.Errorf("%s: unexpected error %v", expression, err)
		case got != expected:
			t.Errorf("%s: expecting %v, but got %v", expression, expected, got)
		}
	}
}

func FuzzEvaluate(f *testing.F) {
	for _, seed := range []string{
		"2+2",
		"--3",
		"2*--3",
		"(1+2)*3**2",
		"1/(2-2)",
		"1..2",
		"((((",
		"-",
		"2 ** ** 3",
		"15 × 3 ÷ 5",
	} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, expression string) {
		got, err := Evaluate(expression)
		if err != nil {
			var evalErr *EvaluationError
			if !errors.As(err, &evalErr) {
				t.Fatalf("%q: expecting EvaluationError, but got %T %v", expression, err, err)
			}
			if strings.HasSuffix(err.Error(), "\n") {
				t.Fatalf("%q: error ends with a newline %q", expression, err.Error())
			}
			return
		}
		if math.IsInf(got, 0) || math.IsNaN(got) {
			t.Fatalf("%q: expecting a finite result, but got %v", expression, got)
		}
	})
}
