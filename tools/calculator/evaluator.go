package calculator

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/Knetic/govaluate"
)

var normalizer = strings.NewReplacer("×", "*", "÷", "/")

// Evaluate computes an arithmetic expression made of numeric literals,
// unary minus, + - * / ** and parentheses.
// Anything else (identifiers, calls, strings, comparisons, logical or bitwise operators)
// is rejected with an EvaluationError.
func Evaluate(text string) (float64, error) {
	expression := strings.TrimSpace(normalizer.Replace(text))
	if expression == "" {
		return 0, &EvaluationError{Expression: text, Err: errors.New("empty expression")}
	}
	spaced, err := tokenize(expression)
	if err != nil {
		return 0, &EvaluationError{Expression: expression, Err: err}
	}
	tokens, err := lex(spaced)
	if err != nil {
		return 0, &EvaluationError{Expression: expression, Err: err}
	}
	p := &parser{tokens: tokens}
	if err := p.check(); err != nil {
		return 0, &EvaluationError{Expression: expression, Err: err}
	}
	value, err := p.parse()
	if err != nil {
		return 0, &EvaluationError{Expression: expression, Err: err}
	}
	return value, nil
}

// tokenize whitelists the characters of an expression and separates its tokens by a single space,
// keeping adjacent operators such as "*-" apart for the govaluate lexer
func tokenize(expression string) (string, error) {
	var (
		tokens []string
		number strings.Builder
	)
	flush := func() error {
		if number.Len() == 0 {
			return nil
		}
		literal := number.String()
		number.Reset()
		if _, err := strconv.ParseFloat(literal, 64); err != nil {
			return fmt.Errorf("invalid number %q", literal)
		}
		tokens = append(tokens, literal)
		return nil
	}
	runes := []rune(expression)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if !(r >= '0' && r <= '9' || r == '.') {
			if err := flush(); err != nil {
				return "", err
			}
		}
		switch {
		case r >= '0' && r <= '9', r == '.':
			number.WriteRune(r)
		case unicode.IsSpace(r):
		case r == '*' && i+1 < len(runes) && runes[i+1] == '*':
			tokens = append(tokens, "**")
			i++
		case strings.ContainsRune("+-*/()", r):
			tokens = append(tokens, string(r))
		default:
			return "", fmt.Errorf("unsupported token %q", r)
		}
	}
	if err := flush(); err != nil {
		return "", err
	}
	return strings.Join(foldSigns(tokens), " "), nil
}

// foldSigns turns a run of prefix minus signs into one sign when odd and none when even,
// govaluate refuses a prefix right after another prefix
func foldSigns(tokens []string) []string {
	ret := make([]string, 0, len(tokens))
	signs := 0
	for _, token := range tokens {
		if token == "-" && operandExpected(ret) {
			signs++
			continue
		}
		if signs%2 == 1 {
			ret = append(ret, "-")
		}
		signs = 0
		ret = append(ret, token)
	}
	if signs%2 == 1 {
		ret = append(ret, "-")
	}
	return ret
}

// operandExpected reports whether the next token starts an operand, making a minus sign a prefix
func operandExpected(tokens []string) bool {
	if len(tokens) == 0 {
		return true
	}
	switch tokens[len(tokens)-1] {
	case "+", "-", "*", "/", "**", "(":
		return true
	}
	return false
}

// lex runs the govaluate lexer and syntax checks, evaluation is done over the returned tokens
func lex(spaced string) (tokens []govaluate.ExpressionToken, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errInvalidSyntax
		}
	}()
	exp, err := govaluate.NewEvaluableExpression(spaced)
	if err != nil {
		return nil, syntaxError(err)
	}
	return exp.Tokens(), nil
}

var errInvalidSyntax = errors.New("invalid syntax")

// syntaxError replaces govaluate parse errors with stable wording
func syntaxError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "parenthesis"):
		return errors.New("unbalanced parentheses")
	case strings.Contains(msg, "unexpected end"):
		return errors.New("unexpected end of expression")
	}
	return errInvalidSyntax
}

// parser is a precedence climbing evaluator:
//
//	expr    := term (('+' | '-') term)*
//	term    := unary (('*' | '/') unary)*
//	unary   := '-' unary | power
//	power   := primary ('**' unary)?
//	primary := number | '(' expr ')'
type parser struct {
	tokens []govaluate.ExpressionToken
	pos    int
}

// check rejects every token kind outside of plain arithmetic
func (p *parser) check() error {
	for _, token := range p.tokens {
		switch token.Kind {
		case govaluate.NUMERIC, govaluate.CLAUSE, govaluate.CLAUSE_CLOSE:
		case govaluate.PREFIX:
			if token.Value != "-" {
				return fmt.Errorf("unsupported operator %v", token.Value)
			}
		case govaluate.MODIFIER:
			switch token.Value {
			case "+", "-", "*", "/", "**":
			default:
				return fmt.Errorf("unsupported operator %v", token.Value)
			}
		default:
			return fmt.Errorf("unsupported token %v", token.Value)
		}
	}
	return nil
}

func (p *parser) parse() (float64, error) {
	value, err := p.expr()
	if err != nil {
		return 0, err
	}
	if token, ok := p.peek(); ok {
		return 0, fmt.Errorf("unexpected token %s", tokenText(token))
	}
	if math.IsInf(value, 0) {
		return 0, errors.New("result out of range")
	}
	if math.IsNaN(value) {
		return 0, errors.New("result is not a real number")
	}
	return value, nil
}

func (p *parser) peek() (govaluate.ExpressionToken, bool) {
	if p.pos >= len(p.tokens) {
		return govaluate.ExpressionToken{}, false
	}
	return p.tokens[p.pos], true
}

func (p *parser) accept(kind govaluate.TokenKind, value any) bool {
	token, ok := p.peek()
	if !ok || token.Kind != kind || token.Value != value {
		return false
	}
	p.pos++
	return true
}

func (p *parser) expr() (float64, error) {
	left, err := p.term()
	if err != nil {
		return 0, err
	}
	for {
		var op Operator
		switch {
		case p.accept(govaluate.MODIFIER, "+"):
			op = Add
		case p.accept(govaluate.MODIFIER, "-"):
			op = Subtract
		default:
			return left, nil
		}
		right, err := p.term()
		if err != nil {
			return 0, err
		}
		if left, err = op.Apply(left, right); err != nil {
			return 0, err
		}
	}
}

func (p *parser) term() (float64, error) {
	left, err := p.unary()
	if err != nil {
		return 0, err
	}
	for {
		var op Operator
		switch {
		case p.accept(govaluate.MODIFIER, "*"):
			op = Multiply
		case p.accept(govaluate.MODIFIER, "/"):
			op = Divide
		default:
			return left, nil
		}
		right, err := p.unary()
		if err != nil {
			return 0, err
		}
		if left, err = op.Apply(left, right); err != nil {
			return 0, err
		}
	}
}

func (p *parser) unary() (float64, error) {
	if p.accept(govaluate.PREFIX, "-") {
		value, err := p.unary()
		if err != nil {
			return 0, err
		}
		return -value, nil
	}
	return p.power()
}

func (p *parser) power() (float64, error) {
	base, err := p.primary()
	if err != nil {
		return 0, err
	}
	if !p.accept(govaluate.MODIFIER, "**") {
		return base, nil
	}
	exponent, err := p.unary()
	if err != nil {
		return 0, err
	}
	if base == 0 && exponent < 0 {
		return 0, ErrDivisionByZero
	}
	return math.Pow(base, exponent), nil
}

func (p *parser) primary() (float64, error) {
	token, ok := p.peek()
	if !ok {
		return 0, errors.New("unexpected end of expression")
	}
	switch token.Kind {
	case govaluate.NUMERIC:
		p.pos++
		if value, ok := token.Value.(float64); ok {
			return value, nil
		}
	case govaluate.CLAUSE:
		p.pos++
		value, err := p.expr()
		if err != nil {
			return 0, err
		}
		if !p.accept(govaluate.CLAUSE_CLOSE, ')') {
			return 0, errors.New("missing closing parenthesis")
		}
		return value, nil
	}
	return 0, fmt.Errorf("unexpected token %s", tokenText(token))
}

func tokenText(token govaluate.ExpressionToken) string {
	if r, ok := token.Value.(rune); ok {
		return fmt.Sprintf("'%c'", r)
	}
	return fmt.Sprintf("'%v'", token.Value)
}
