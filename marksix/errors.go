package marksix

import "fmt"

// Rule identifies one of the draw result validation rules, in evaluation order
type Rule string

const (
	RuleDrawNumber    Rule = "draw_number"
	RuleNumbersCount  Rule = "numbers_count"
	RuleNumbersRange  Rule = "numbers_range"
	RuleNumbersUnique Rule = "numbers_unique"
	RuleBonusRange    Rule = "bonus_range"
	RuleBonusDistinct Rule = "bonus_distinct"
)

var ruleMessages = map[Rule]string{
	RuleDrawNumber:    "draw number must be a positive integer",
	RuleNumbersCount:  "numbers must contain exactly 6 elements",
	RuleNumbersRange:  "numbers must be between 1 and 49",
	RuleNumbersUnique: "numbers must be unique",
	RuleBonusRange:    "bonus number must be between 1 and 49",
	RuleBonusDistinct: "bonus number cannot be one of the main numbers",
}

// ValidationError reports the first draw result rule violated
type ValidationError struct {
	Rule Rule
	// Value the offending value
	Value any
}

func (e *ValidationError) Message() string {
	return ruleMessages[e.Rule]
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s (got %v)", e.Message(), e.Value)
}
