package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bububa/marksix-agents/agents"
	"github.com/bububa/marksix-agents/components"
	"github.com/bububa/marksix-agents/marksix"
	"github.com/bububa/marksix-agents/marksix/history"
	"github.com/bububa/marksix-agents/schema"
	"github.com/bububa/marksix-agents/tools"
	"github.com/bububa/marksix-agents/tools/calculator"
	"github.com/bububa/marksix-agents/tools/extractor"
	"github.com/bububa/marksix-agents/tools/query"
)

type emptySource struct{}

func (emptySource) Load(context.Context) ([]history.Record, error) {
	return nil, history.ErrNotAvailable
}

type nopBackend struct{}

func (nopBackend) Extract(context.Context, []byte) (*marksix.Extraction, error) {
	return nil, errors.New("no vision model")
}

func newTestAssistant(opts ...Option) *Assistant {
	return New(nil, calculator.New(), extractor.New(nopBackend{}, nil), query.New(emptySource{}), opts...)
}

func TestToolCallDispatch(t *testing.T) {
	a := newTestAssistant()
	tests := []struct {
		name     string
		call     ToolCall
		expected string
	}{
		{"expression", ToolCall{Tool: CalculatorTool, Calculator: calculator.NewInput("2/4+3*5-1/2*7")}, "12"},
		{"operands", ToolCall{Tool: CalculatorTool, Calculator: calculator.NewOperandsInput(1, 9, "-")}, "-8"},
		{"query", ToolCall{Tool: QueryTool, Query: query.NewInput(query.Latest)}, "Historical data not available. Please update the database first."},
		{"reply", ToolCall{Tool: ReplyTool, Reply: "Hi! 👋"}, "Hi! 👋"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ret, err := a.tool.RunOrchestration(context.Background(), &tt.call)
			if err != nil {
				t.Fatal(err)
			}
			out, ok := ret.(*schema.Output)
			if !ok {
				t.Fatalf("expecting *schema.Output, but got %T", ret)
			}
			if out.ChatMessage != tt.expected {
				t.Errorf("expecting %q, but got %q", tt.expected, out.ChatMessage)
			}
		})
	}
}

func TestToolCallErrors(t *testing.T) {
	a := newTestAssistant()
	ctx := context.Background()
	if _, err := a.tool.RunOrchestration(ctx, &ToolCall{Tool: CalculatorTool, Calculator: calculator.NewInput("10/0")}); !errors.Is(err, calculator.ErrDivisionByZero) {
		t.Errorf("expecting ErrDivisionByZero, but got %v", err)
	}
	if _, err := a.tool.RunOrchestration(ctx, &ToolCall{Tool: CalculatorTool}); !errors.Is(err, calculator.ErrMissingArguments) {
		t.Errorf("expecting ErrMissingArguments, but got %v", err)
	}
	for _, call := range []ToolCall{
		{Tool: QueryTool},
		{Tool: ExtractorTool},
		{Tool: "weather"},
	} {
		if _, err := a.tool.RunOrchestration(ctx, &call); !errors.Is(err, ErrInvalidToolCall) {
			t.Errorf("%s: expecting ErrInvalidToolCall, but got %v", call.Tool, err)
		}
	}
	_, err := a.tool.RunOrchestration(ctx, &ToolCall{Tool: ExtractorTool, Extractor: extractor.NewInput("/nonexistent/result.jpg")})
	if err == nil || err.Error() != "image file not found: /nonexistent/result.jpg" {
		t.Errorf("unexpected error %v", err)
	}
}

func TestChat(t *testing.T) {
	a := newTestAssistant(WithMaxInputTokens(5), WithTokenCounter(components.WordCounter{}))
	ctx := context.Background()
	if _, err := a.Chat(ctx, 1, strings.Repeat("word ", 6)); !errors.Is(err, ErrInputTooLong) {
		t.Errorf("expecting ErrInputTooLong, but got %v", err)
	}
	if _, err := a.Chat(ctx, 1, "what is 1+1"); !errors.Is(err, agents.ErrNoClient) {
		t.Errorf("expecting ErrNoClient, but got %v", err)
	}
	if n := a.session(1).agent.StartAgent().Memory().MessageCount(); n != 0 {
		t.Errorf("expecting failed turn to be dropped, but memory holds %d messages", n)
	}
	a.session(2)
	if a.Sessions() != 2 {
		t.Errorf("expecting 2 sessions, but got %d", a.Sessions())
	}
	a.Reset(1)
	if a.Sessions() != 1 {
		t.Errorf("expecting 1 session, but got %d", a.Sessions())
	}
}

func TestChatReportsDroppedTurnError(t *testing.T) {
	var reported []error
	a := newTestAssistant(WithToolOptions(tools.WithErrorHook(func(_ context.Context, _ tools.ITool, _ any, err error) {
		reported = append(reported, err)
	})))
	start := a.session(1).agent.StartAgent()
	// the turn is replaced before the failed run is rolled back
	start.SetErrorHook(func(_ context.Context, agent *agents.Agent[schema.Input, ToolCall], _ *schema.Input, _ *components.ApiResponse, _ error) {
		agent.Memory().NewTurn()
	})
	if _, err := a.Chat(context.Background(), 1, "hi"); !errors.Is(err, agents.ErrNoClient) {
		t.Errorf("expecting ErrNoClient, but got %v", err)
	}
	if len(reported) != 1 || !strings.HasPrefix(reported[0].Error(), "drop failed turn of chat 1: ") {
		t.Errorf("expecting the rollback failure to be reported, but got %v", reported)
	}
}

func TestSessionEviction(t *testing.T) {
	now := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	a := newTestAssistant(WithSessionTTL(time.Hour), WithMaxSessions(2))
	a.clock = func() time.Time { return now }

	first := a.session(1)
	now = now.Add(time.Minute)
	a.session(2)
	now = now.Add(time.Minute)
	if a.session(1) != first {
		t.Error("expecting a live session to be reused")
	}
	now = now.Add(time.Minute)
	a.session(3)
	if a.Sessions() != 2 {
		t.Errorf("expecting 2 sessions, but got %d", a.Sessions())
	}
	a.mu.Lock()
	_, ok := a.sessions[2]
	a.mu.Unlock()
	if ok {
		t.Error("expecting the least recently used session to be evicted")
	}

	now = now.Add(2 * time.Hour)
	a.session(4)
	if a.Sessions() != 1 {
		t.Errorf("expecting idle sessions to expire, but got %d sessions", a.Sessions())
	}
	if a.session(1) == first {
		t.Error("expecting an expired session to be recreated")
	}
}
