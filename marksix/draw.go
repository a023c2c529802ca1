package marksix

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	// NumbersCount is the count of main numbers in a draw
	NumbersCount = 6
	// MinNumber is the smallest ball
	MinNumber = 1
	// MaxNumber is the largest ball
	MaxNumber = 49
	// DateLayout is the canonical draw date layout
	DateLayout = "2006-01-02"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// DrawResult is a validated Mark Six draw, immutable after construction
type DrawResult struct {
	drawNumber int
	drawDate   time.Time
	numbers    [NumbersCount]int
	bonus      int
}

// NewDrawResult validates a draw and returns it with ascending numbers.
// Rules are checked in order and the first failure is returned as *ValidationError.
func NewDrawResult(drawNumber int, drawDate time.Time, numbers []int, bonus int) (*DrawResult, error) {
	if err := validate.Var(drawNumber, "gt=0"); err != nil {
		return nil, &ValidationError{Rule: RuleDrawNumber, Value: drawNumber}
	}
	if err := validate.Var(numbers, "len=6"); err != nil {
		return nil, &ValidationError{Rule: RuleNumbersCount, Value: len(numbers)}
	}
	for _, n := range numbers {
		if err := validate.Var(n, "min=1,max=49"); err != nil {
			return nil, &ValidationError{Rule: RuleNumbersRange, Value: n}
		}
	}
	if err := validate.Var(numbers, "unique"); err != nil {
		return nil, &ValidationError{Rule: RuleNumbersUnique, Value: duplicate(numbers)}
	}
	if err := validate.Var(bonus, "min=1,max=49"); err != nil {
		return nil, &ValidationError{Rule: RuleBonusRange, Value: bonus}
	}
	if slices.Contains(numbers, bonus) {
		return nil, &ValidationError{Rule: RuleBonusDistinct, Value: bonus}
	}
	ret := &DrawResult{
		drawNumber: drawNumber,
		drawDate:   drawDate,
		bonus:      bonus,
	}
	copy(ret.numbers[:], numbers)
	slices.Sort(ret.numbers[:])
	return ret, nil
}

func duplicate(numbers []int) int {
	seen := make(map[int]struct{}, len(numbers))
	for _, n := range numbers {
		if _, ok := seen[n]; ok {
			return n
		}
		seen[n] = struct{}{}
	}
	return 0
}

func (d DrawResult) DrawNumber() int {
	return d.drawNumber
}

func (d DrawResult) DrawDate() time.Time {
	return d.drawDate
}

// Numbers returns a copy of the ascending main numbers
func (d DrawResult) Numbers() []int {
	return slices.Clone(d.numbers[:])
}

func (d DrawResult) Bonus() int {
	return d.bonus
}

// String implements fmt.Stringer
func (d DrawResult) String() string {
	numbers := make([]string, 0, NumbersCount)
	for _, n := range d.numbers {
		numbers = append(numbers, strconv.Itoa(n))
	}
	return fmt.Sprintf("Draw #%d - %s\nNumbers: %s\nBonus: %d", d.drawNumber, d.drawDate.Format(DateLayout), strings.Join(numbers, ", "), d.bonus)
}

// Extraction returns the wire representation of the draw
func (d DrawResult) Extraction() Extraction {
	return Extraction{
		DrawNumber:  d.drawNumber,
		DrawDate:    d.drawDate.Format(DateLayout),
		Numbers:     d.Numbers(),
		BonusNumber: d.bonus,
	}
}

// MarshalJSON implements json.Marshaler
func (d DrawResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Extraction())
}
