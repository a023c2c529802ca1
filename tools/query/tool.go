package query

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bububa/marksix-agents/marksix"
	"github.com/bububa/marksix-agents/marksix/history"
	"github.com/bububa/marksix-agents/schema"
	"github.com/bububa/marksix-agents/tools"
)

const (
	Latest    = "latest"
	Frequency = "frequency"
	Stats     = "stats"

	// DefaultLimit is the count of draws listed by a latest query
	DefaultLimit = 10
	statsSize    = 10
)

// Input Query historical Hong Kong Mark Six results: the latest draws, how often a number
// was drawn, or overall hot and cold numbers.
type Input struct {
	schema.Base
	// QueryType Type of query
	QueryType string `json:"query_type" jsonschema:"title=query_type,description=Type of query: latest draws / frequency of one number / overall stats.,enum=latest,enum=frequency,enum=stats" validate:"required"`
	// Number Specific number to check, required by frequency queries
	Number *int `json:"number,omitempty" jsonschema:"title=number,description=Specific number (1-49) to check. Required for the frequency query.,minimum=1,maximum=49"`
	// Limit Count of draws returned by latest queries
	Limit int `json:"limit,omitempty" jsonschema:"title=limit,description=Number of draws to return for the latest query.,default=10,minimum=1"`
}

func NewInput(queryType string) *Input {
	return &Input{
		QueryType: queryType,
		Limit:     DefaultLimit,
	}
}

// WithNumber sets the number checked by a frequency query
func (i *Input) WithNumber(n int) *Input {
	i.Number = &n
	return i
}

// Output is the formatted query answer
type Output struct {
	schema.Base
	Text string `json:"text" jsonschema:"title=text,description=Formatted query result."`
}

func NewOutput(text string) *Output {
	return &Output{
		Text: text,
	}
}

func (o Output) String() string {
	return o.Text
}

type Tool struct {
	tools.Config
	source history.Source
}

var (
	_ tools.Tool[Input, Output] = (*Tool)(nil)
	_ tools.OrchestrationTool   = (*Tool)(nil)
)

func New(source history.Source, opts ...tools.Option) *Tool {
	ret := &Tool{
		source: source,
	}
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.Title() == "" {
		ret.SetTitle("MarkSixHistoryTool")
	}
	if ret.Description() == "" {
		ret.SetDescription("Query historical Mark Six draws: latest results, number frequency or statistics.")
	}
	return ret
}

// Run executes the query, data problems are reported as text for the user
func (t *Tool) Run(ctx context.Context, input *Input) (*Output, error) {
	records, err := t.source.Load(ctx)
	if errors.Is(err, history.ErrNotAvailable) {
		return NewOutput("Historical data not available. Please update the database first."), nil
	} else if err != nil {
		return NewOutput(fmt.Sprintf("Error reading historical data: %v", err)), nil
	}
	if len(records) == 0 {
		return NewOutput("No historical data available."), nil
	}
	queryType := strings.ToLower(strings.TrimSpace(input.QueryType))
	switch queryType {
	case Latest:
		return NewOutput(latest(records, input.Limit)), nil
	case Frequency:
		return NewOutput(frequency(records, input.Number)), nil
	case Stats:
		return NewOutput(stats(records)), nil
	}
	return NewOutput(fmt.Sprintf("Unknown query type: %s. Use 'latest', 'frequency', or 'stats'.", queryType)), nil
}

// RunOrchestration implements tools.OrchestrationTool
func (t *Tool) RunOrchestration(ctx context.Context, input any) (any, error) {
	return tools.RunTyped(ctx, input, t.Run)
}

func latest(records []history.Record, limit int) string {
	if limit <= 0 {
		limit = DefaultLimit
	}
	limit = min(limit, len(records))
	lines := make([]string, 0, limit+1)
	lines = append(lines, fmt.Sprintf("Latest %d Mark Six Results:\n", limit))
	for _, r := range records[:limit] {
		numbers := make([]string, 0, marksix.NumbersCount)
		for _, n := range r.Numbers {
			numbers = append(numbers, strconv.Itoa(n))
		}
		extra := "N/A"
		if r.Extra != nil {
			extra = strconv.Itoa(*r.Extra)
		}
		lines = append(lines, fmt.Sprintf("%s: %s + Extra: %s", r.FormatDate(), strings.Join(numbers, ", "), extra))
	}
	return strings.Join(lines, "\n")
}

func frequency(records []history.Record, number *int) string {
	if number == nil {
		return "Please specify a number (1-49) to check its frequency."
	}
	n := *number
	if n < marksix.MinNumber || n > marksix.MaxNumber {
		return "Number must be between 1 and 49."
	}
	drawn, extra := history.NumberFrequency(records, n)
	percentage := float64(drawn) / float64(len(records)) * 100
	return fmt.Sprintf(`Frequency Analysis for Number %d:
📊 Appeared %d times in main 6 numbers (out of %d draws)
📈 Frequency: %.1f%%
⭐ Appeared %d times as Extra number`, n, drawn, len(records), percentage, extra)
}

func stats(records []history.Record) string {
	counts := history.MainFrequencies(records)
	lines := []string{
		fmt.Sprintf("Statistics from %d draws (%s to %s):\n", len(records), records[len(records)-1].FormatDate(), records[0].FormatDate()),
		"🔥 TOP 10 MOST FREQUENT:",
	}
	for _, c := range counts[:min(statsSize, len(counts))] {
		lines = append(lines, fmt.Sprintf("  Number %d: %d times", c.Number, c.Count))
	}
	lines = append(lines, "\n❄️ LEAST FREQUENT (Bottom 10):")
	bottom := counts[max(0, len(counts)-statsSize):]
	for i := len(bottom) - 1; i >= 0; i-- {
		lines = append(lines, fmt.Sprintf("  Number %d: %d times", bottom[i].Number, bottom[i].Count))
	}
	return strings.Join(lines, "\n")
}
