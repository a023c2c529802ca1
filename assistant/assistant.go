// Package assistant answers chat messages by letting an agent pick one of the Mark Six tools
package assistant

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bububa/instructor-go"

	"github.com/bububa/marksix-agents/agents"
	"github.com/bububa/marksix-agents/components"
	"github.com/bububa/marksix-agents/components/systemprompt"
	"github.com/bububa/marksix-agents/components/systemprompt/cot"
	"github.com/bububa/marksix-agents/schema"
	"github.com/bububa/marksix-agents/tools"
	"github.com/bububa/marksix-agents/tools/calculator"
	"github.com/bububa/marksix-agents/tools/extractor"
	"github.com/bububa/marksix-agents/tools/orchestration"
	"github.com/bububa/marksix-agents/tools/query"
)

// ErrInputTooLong returned when a message exceeds the input token budget
var ErrInputTooLong = errors.New("message is too long")

const (
	DefaultMemorySize     = 10
	DefaultMaxInputTokens = 2000
	DefaultSessionTTL     = 24 * time.Hour
	DefaultMaxSessions    = 1000
)

var (
	background = []string{
		"- You are a helpful assistant with access to three specialized tools.",
		"- calculator performs arithmetic from an expression or from two numbers and an operation.",
		"- extract_mark_six_from_image extracts Hong Kong Mark Six lottery results from an image file.",
		"- query_mark_six_history queries historical Mark Six draws: latest results, frequency of a number or statistics.",
	}
	steps = []string{
		"1. Read the user message and decide whether one of the tools answers it.",
		"2. For any arithmetic pick calculator and pass the full expression string, e.g. \"2/4+3*5-1/2*7\". Do not break expressions down yourself.",
		"3. When the user gives an image path pick extract_mark_six_from_image with that exact path.",
		"4. For questions about past draws pick query_mark_six_history, e.g. \"How often has number 7 appeared?\" is a frequency query with number 7, \"Show me the last 5 draws\" is a latest query with limit 5.",
		"5. Otherwise pick reply and answer in a clear and friendly way.",
	}
	rules = []string{
		"- The calculator supports + - * / ** (power), parentheses and the symbols × and ÷.",
		"- Only fill the arguments of the selected tool.",
		"- Never compute results or invent lottery numbers yourself.",
	}
)

type session struct {
	mu    sync.Mutex
	agent *agents.ToolAgent[schema.Input, ToolCall, schema.Output]
	// lastUsed guarded by Assistant.mu
	lastUsed time.Time
}

// Assistant keeps one agent session per chat, runs of a chat are serialized.
// Sessions idle longer than the session TTL are dropped, and the least recently used
// session is evicted once the session cap is reached.
type Assistant struct {
	Config
	client   instructor.Instructor
	tool     *orchestration.Tool[ToolCall]
	mu       sync.Mutex
	sessions map[int64]*session
	clock    func() time.Time
}

// New returns an Assistant dispatching to the given tools
func New(client instructor.Instructor, calc *calculator.Tool, ext *extractor.Tool, q *query.Tool, opts ...Option) *Assistant {
	ret := &Assistant{
		client:   client,
		sessions: make(map[int64]*session),
		clock:    time.Now,
		Config: Config{
			memorySize:     DefaultMemorySize,
			maxInputTokens: DefaultMaxInputTokens,
			sessionTTL:     DefaultSessionTTL,
			maxSessions:    DefaultMaxSessions,
			location:       time.Local,
		},
	}
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.counter == nil {
		ret.counter = components.NewTokenCounter("cl100k_base")
	}
	set := toolset{
		calculator: calc,
		extractor:  ext,
		query:      q,
		reply:      newReplyTool(),
	}
	toolOpts := append([]tools.Option{tools.WithTitle("MarkSixAssistantTools")}, ret.toolOptions...)
	ret.tool = orchestration.New(set.selector, toolOpts...)
	return ret
}

func (a *Assistant) newSession() *session {
	agent := agents.NewToolAgent[schema.Input, ToolCall, schema.Output](
		agents.WithClient(a.client),
		agents.WithModel(a.model),
		agents.WithMaxTokens(a.maxTokens),
		agents.WithName("MarkSixAssistant"),
		agents.WithMemory(components.NewMemory(a.memorySize)),
		agents.WithSystemPromptGenerator(cot.New(
			cot.WithBackground(background),
			cot.WithSteps(steps),
			cot.WithRules(rules),
			cot.WithContextProviders(systemprompt.NewContextProviderFunc("Current date", func() string {
				return time.Now().In(a.location).Format("2006-01-02 Monday")
			})),
		)),
	)
	agent.SetTool(a.tool)
	return &session{agent: agent}
}

func (a *Assistant) session(chatID int64) *session {
	a.mu.Lock()
	defer a.mu.Unlock()
	now := a.clock()
	a.prune(now)
	s, ok := a.sessions[chatID]
	if !ok {
		if a.maxSessions > 0 && len(a.sessions) >= a.maxSessions {
			a.evictOldest()
		}
		s = a.newSession()
		a.sessions[chatID] = s
	}
	s.lastUsed = now
	return s
}

// prune drops idle sessions, callers hold a.mu
func (a *Assistant) prune(now time.Time) {
	if a.sessionTTL <= 0 {
		return
	}
	for chatID, s := range a.sessions {
		if now.Sub(s.lastUsed) > a.sessionTTL {
			delete(a.sessions, chatID)
		}
	}
}

// evictOldest drops the least recently used session, callers hold a.mu
func (a *Assistant) evictOldest() {
	var (
		oldest   int64
		lastUsed time.Time
		found    bool
	)
	for chatID, s := range a.sessions {
		if !found || s.lastUsed.Before(lastUsed) {
			oldest, lastUsed, found = chatID, s.lastUsed, true
		}
	}
	if found {
		delete(a.sessions, oldest)
	}
}

// Chat answers a message of a chat, tool results are returned verbatim
func (a *Assistant) Chat(ctx context.Context, chatID int64, message string) (string, error) {
	if tokens := a.counter.Count(message); a.maxInputTokens > 0 && tokens > a.maxInputTokens {
		return "", fmt.Errorf("%w: %d tokens, limit %d", ErrInputTooLong, tokens, a.maxInputTokens)
	}
	s := a.session(chatID)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := new(schema.Output)
	if err := s.agent.Run(ctx, schema.NewInput(message), out, nil); err != nil {
		// a failed turn is dropped so the next message does not see a dangling tool call
		memory := s.agent.StartAgent().Memory()
		if turnID := memory.TurnID(); turnID != "" {
			if delErr := memory.DeleteTurn(turnID); delErr != nil {
				a.tool.OnError(ctx, a.tool, message, fmt.Errorf("drop failed turn of chat %d: %w", chatID, delErr))
			}
		}
		return "", err
	}
	return out.ChatMessage, nil
}

// Reset forgets the session of a chat
func (a *Assistant) Reset(chatID int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.sessions, chatID)
}

// Sessions returns the count of live chat sessions
func (a *Assistant) Sessions() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.sessions)
}
