// Package llm builds the instructor client of the configured provider
package llm

import (
	"strings"

	"github.com/bububa/instructor-go"
	"github.com/bububa/instructor-go/instructors"
	cohereClient "github.com/cohere-ai/cohere-go/v2/client"
	cohereOption "github.com/cohere-ai/cohere-go/v2/option"
	anthropic "github.com/liushuangls/go-anthropic/v2"
	openai "github.com/sashabaranov/go-openai"
)

// DefaultOpenAIBaseURL OpenRouter speaks the OpenAI chat completion protocol
const DefaultOpenAIBaseURL = "https://openrouter.ai/api/v1"

// Config credentials of a provider
type Config struct {
	// Provider openai, anthropic or cohere, anything else falls back to openai
	Provider string
	APIKey   string
	BaseURL  string
}

// ParseProvider maps a provider name to instructor.Provider, defaults to openai
func ParseProvider(name string) instructor.Provider {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "anthropic", "claude":
		return instructor.ProviderAnthropic
	case "cohere":
		return instructor.ProviderCohere
	}
	return instructor.ProviderOpenAI
}

func options(provider instructor.Provider) []instructor.Option {
	return []instructor.Option{
		instructor.WithProvider(provider),
		instructor.WithMode(instructor.ModeJSON),
		instructor.WithMaxRetries(3),
		instructor.WithValidation(),
	}
}

// NewInstructor returns a JSON mode instructor which validates and retries structured outputs
func NewInstructor(cfg Config) instructor.Instructor {
	provider := ParseProvider(cfg.Provider)
	switch provider {
	case instructor.ProviderAnthropic:
		opts := make([]anthropic.ClientOption, 0, 1)
		if cfg.BaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
		}
		clt := anthropic.NewClient(cfg.APIKey, opts...)
		return instructors.FromAnthropic(clt, options(provider)...)
	case instructor.ProviderCohere:
		opts := make([]cohereOption.RequestOption, 0, 2)
		opts = append(opts, cohereOption.WithToken(cfg.APIKey))
		if cfg.BaseURL != "" {
			opts = append(opts, cohereOption.WithBaseURL(cfg.BaseURL))
		}
		clt := cohereClient.NewClient(opts...)
		return instructors.FromCohere(clt, options(provider)...)
	default:
		conf := openai.DefaultConfig(cfg.APIKey)
		conf.BaseURL = DefaultOpenAIBaseURL
		if cfg.BaseURL != "" {
			conf.BaseURL = cfg.BaseURL
		}
		clt := openai.NewClientWithConfig(conf)
		return instructors.FromOpenAI(clt, options(provider)...)
	}
}
