package agents

import (
	"context"
	"errors"
	"fmt"

	"github.com/bububa/instructor-go"
	"github.com/bububa/instructor-go/encoding"
	instructorAnthropic "github.com/bububa/instructor-go/instructors/anthropic"
	instructorCohere "github.com/bububa/instructor-go/instructors/cohere"
	instructorOpenAI "github.com/bububa/instructor-go/instructors/openai"
	cohere "github.com/cohere-ai/cohere-go/v2"
	anthropic "github.com/liushuangls/go-anthropic/v2"
	openai "github.com/sashabaranov/go-openai"

	"github.com/bububa/marksix-agents/components"
	"github.com/bububa/marksix-agents/components/systemprompt"
	"github.com/bububa/marksix-agents/components/systemprompt/cot"
	"github.com/bububa/marksix-agents/schema"
)

// ErrNoClient returned when an agent runs without an instructor client
var ErrNoClient = errors.New("agent client is not configured")

// Config represents general agents configuration
type Config struct {
	// client Client for interacting with the language model
	client instructor.Instructor
	//	memory  Memory component for storing chat history.
	memory *components.Memory
	//	systemPromptGenerator Component for generating system prompts.
	systemPromptGenerator systemprompt.Generator
	// model llm model
	model string
	// temperature Temperature for response generation, typically ranging from 0 to 1.
	temperature float32
	// maxTokens Maximum number of tokens allowed in the response
	maxTokens int
	// name is Agent name presentation
	name string
}

// Agent class for chat agents.
// This class provides the core functionality for handling chat interactions, including managing memory,
// generating system prompts, and obtaining responses from a language model.
// An Agent is not safe for concurrent Run calls, callers serialize runs sharing one memory.
type Agent[I schema.Schema, O schema.Schema] struct {
	Config
	startHook func(context.Context, *Agent[I, O], *I)
	endHook   func(context.Context, *Agent[I, O], *I, *O, *components.ApiResponse)
	errorHook func(context.Context, *Agent[I, O], *I, *components.ApiResponse, error)
	enc       instructor.Encoder
}

// NewAgent initializes the Agent
func NewAgent[I schema.Schema, O schema.Schema](options ...Option) *Agent[I, O] {
	ret := new(Agent[I, O])
	for _, opt := range options {
		opt(&ret.Config)
	}
	if ret.memory == nil {
		ret.memory = components.NewMemory(0)
	}
	if ret.systemPromptGenerator == nil {
		ret.systemPromptGenerator = cot.New()
	}
	return ret
}

// ResetMemory resets the memory to its initial state
func (a *Agent[I, O]) ResetMemory() {
	a.memory.Reset()
}

func (a *Agent[I, O]) Memory() *components.Memory {
	return a.memory
}

func (a Agent[I, O]) Name() string {
	return a.name
}

func (a *Agent[I, O]) SetStartHook(fn func(context.Context, *Agent[I, O], *I)) {
	a.startHook = fn
}

func (a *Agent[I, O]) SetEndHook(fn func(context.Context, *Agent[I, O], *I, *O, *components.ApiResponse)) {
	a.endHook = fn
}

func (a *Agent[I, O]) SetErrorHook(fn func(context.Context, *Agent[I, O], *I, *components.ApiResponse, error)) {
	a.errorHook = fn
}

// encoder returns the output encoder of the agent.
// The encoder is kept on the agent so clients shared by agents of different outputs never see a foreign schema.
func (a *Agent[I, O]) encoder(mode instructor.Mode, response *O) (instructor.Encoder, error) {
	if a.enc != nil {
		return a.enc, nil
	}
	enc, err := encoding.PredefinedEncoder(mode, response)
	if err != nil {
		return nil, err
	}
	a.enc = enc
	return enc, nil
}

// response obtains a response from the language model synchronously
func (a *Agent[I, O]) response(ctx context.Context, response *O, apiResponse *components.ApiResponse) error {
	if a.client == nil {
		return ErrNoClient
	}
	enc, err := a.encoder(a.client.Mode(), response)
	if err != nil {
		return err
	}
	systemPrompt := a.systemPromptGenerator.Generate()
	history := a.memory.History()
	switch c := a.client.(type) {
	case *instructorOpenAI.Instructor:
		clt := *c
		clt.SetEncoder(enc)
		chatReq := openai.ChatCompletionRequest{
			Model:               a.model,
			Temperature:         a.temperature,
			MaxCompletionTokens: a.maxTokens,
			Messages:            make([]openai.ChatCompletionMessage, 0, len(history)+1),
		}
		chatReq.Messages = append(chatReq.Messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
		for _, msg := range history {
			v := new(openai.ChatCompletionMessage)
			msg.ToOpenAI(v)
			chatReq.Messages = append(chatReq.Messages, *v)
		}
		res := new(openai.ChatCompletionResponse)
		if err := clt.Chat(ctx, &chatReq, response, res); err != nil {
			return err
		}
		if apiResponse != nil {
			apiResponse.FromOpenAI(res)
		}
	case *instructorAnthropic.Instructor:
		clt := *c
		clt.SetEncoder(enc)
		chatReq := anthropic.MessagesRequest{
			Model:       anthropic.Model(a.model),
			System:      systemPrompt,
			Temperature: &a.temperature,
			MaxTokens:   a.maxTokens,
		}
		for _, msg := range history {
			if msg.Role() == components.SystemRole {
				chatReq.System += "\n\n" + msg.StringifiedContent()
				continue
			}
			v := new(anthropic.Message)
			msg.ToAnthropic(v)
			chatReq.Messages = append(chatReq.Messages, *v)
		}
		res := new(anthropic.MessagesResponse)
		if err := clt.Chat(ctx, &chatReq, response, res); err != nil {
			return err
		}
		if apiResponse != nil {
			apiResponse.FromAnthropic(res)
		}
	case *instructorCohere.Instructor:
		if len(history) == 0 {
			return errors.New("cohere chat requires a user message")
		}
		clt := *c
		clt.SetEncoder(enc)
		lastIdx := len(history) - 1
		temperature := float64(a.temperature)
		chatReq := cohere.ChatRequest{
			Model:       &a.model,
			Temperature: &temperature,
			MaxTokens:   &a.maxTokens,
			Preamble:    &systemPrompt,
			Message:     history[lastIdx].StringifiedContent(),
		}
		for _, msg := range history[:lastIdx] {
			v := new(cohere.Message)
			msg.ToCohere(v)
			chatReq.ChatHistory = append(chatReq.ChatHistory, v)
		}
		res := new(cohere.NonStreamedChatResponse)
		if err := clt.Chat(ctx, &chatReq, response, res); err != nil {
			return err
		}
		if apiResponse != nil {
			apiResponse.FromCohere(res)
		}
	default:
		return fmt.Errorf("%w: unsupported provider %T", ErrNoClient, a.client)
	}
	return nil
}

// Run runs the chat agent with the given user input synchronously.
func (a *Agent[I, O]) Run(ctx context.Context, userInput *I, output *O, apiResp *components.ApiResponse) error {
	if fn := a.startHook; fn != nil {
		fn(ctx, a, userInput)
	}
	if userInput != nil {
		a.memory.NewTurn()
		a.memory.NewMessage(components.UserRole, *userInput)
	}
	if err := a.response(ctx, output, apiResp); err != nil {
		if fn := a.errorHook; fn != nil {
			fn(ctx, a, userInput, apiResp, err)
		}
		return err
	}
	a.memory.NewMessage(components.AssistantRole, *output)
	if fn := a.endHook; fn != nil {
		fn(ctx, a, userInput, output, apiResp)
	}
	return nil
}

// NewMessage appends a message to the agent memory
func (a *Agent[I, O]) NewMessage(role components.MessageRole, content schema.Schema) *components.Message {
	return a.memory.NewMessage(role, content)
}

// SystemPromptContextProvider returns agent systemPromptGenerator's context provider
func (a *Agent[I, O]) SystemPromptContextProvider(title string) (systemprompt.ContextProvider, error) {
	return a.systemPromptGenerator.ContextProvider(title)
}

// RegisterSystemPromptContextProvider registers a new context provider
func (a *Agent[I, O]) RegisterSystemPromptContextProvider(provider systemprompt.ContextProvider) {
	a.systemPromptGenerator.AddContextProviders(provider)
}

// UnregisterSystemPromptContextProvider Unregisters an existing context provider.
func (a *Agent[I, O]) UnregisterSystemPromptContextProvider(title string) {
	a.systemPromptGenerator.RemoveContextProviders(title)
}

// SystemPrompt returns the system prompt
func (a *Agent[I, O]) SystemPrompt() string {
	return a.systemPromptGenerator.Generate()
}
