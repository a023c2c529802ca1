package assistant

import (
	"time"

	"github.com/bububa/marksix-agents/components"
	"github.com/bububa/marksix-agents/tools"
)

// Config of an Assistant
type Config struct {
	model          string
	maxTokens      int
	memorySize     int
	maxInputTokens int
	sessionTTL     time.Duration
	maxSessions    int
	counter        components.TokenCounter
	location       *time.Location
	toolOptions    []tools.Option
}

type Option func(c *Config)

func WithModel(model string) Option {
	return func(c *Config) {
		c.model = model
	}
}

func WithMaxTokens(maxTokens int) Option {
	return func(c *Config) {
		c.maxTokens = maxTokens
	}
}

// WithMemorySize set the count of messages remembered per chat
func WithMemorySize(size int) Option {
	return func(c *Config) {
		c.memorySize = size
	}
}

// WithMaxInputTokens set the user message token budget, zero disables the check
func WithMaxInputTokens(tokens int) Option {
	return func(c *Config) {
		c.maxInputTokens = tokens
	}
}

// WithSessionTTL set how long an idle chat session is kept, zero keeps sessions until evicted
func WithSessionTTL(ttl time.Duration) Option {
	return func(c *Config) {
		c.sessionTTL = ttl
	}
}

// WithMaxSessions caps the live chat sessions, the least recently used one is evicted first.
// Zero disables the cap.
func WithMaxSessions(n int) Option {
	return func(c *Config) {
		c.maxSessions = n
	}
}

func WithTokenCounter(counter components.TokenCounter) Option {
	return func(c *Config) {
		c.counter = counter
	}
}

// WithLocation set the timezone of the current date given to the model
func WithLocation(loc *time.Location) Option {
	return func(c *Config) {
		c.location = loc
	}
}

// WithToolOptions set options of the orchestration tool, e.g. logging hooks
func WithToolOptions(opts ...tools.Option) Option {
	return func(c *Config) {
		c.toolOptions = append(c.toolOptions, opts...)
	}
}
