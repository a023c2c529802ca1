package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/bububa/instructor-go"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/bububa/marksix-agents/agents"
	"github.com/bububa/marksix-agents/components"
	"github.com/bububa/marksix-agents/components/systemprompt/cot"
	"github.com/bububa/marksix-agents/marksix"
	"github.com/bububa/marksix-agents/schema"
)

// Backend reads a draw out of a prepared jpeg image
type Backend interface {
	Extract(ctx context.Context, image []byte) (*marksix.Extraction, error)
}

const instruction = "Extract the Mark Six lottery results from this image."

var (
	background = []string{
		"- You analyze images containing Hong Kong Mark Six lottery results and extract the lottery information.",
	}
	steps = []string{
		"1. Find the draw number and keep it as a positive integer only, without any # prefix or text.",
		"2. Find the draw date and write it in YYYY-MM-DD format (e.g. 2019-08-06).",
		"3. Find the 6 main numbers between 1 and 49, sorted ascending. Do not include the bonus number.",
		"4. Find the bonus (extra) number between 1 and 49.",
	}
	rules = []string{
		"- All 6 main numbers must be between 1 and 49.",
		"- All 6 main numbers must be unique.",
		"- The bonus number must not appear in the main 6 numbers.",
		"- The draw number must be a positive integer.",
	}
)

// Request is the user message sent with the image attachement
type Request struct {
	schema.Base
	Instruction string `json:"instruction" jsonschema:"title=instruction,description=What to extract from the attached image."`
}

// AgentBackend delegates extraction to a vision capable structured output agent
type AgentBackend struct {
	client    instructor.Instructor
	model     string
	maxTokens int
}

var _ Backend = (*AgentBackend)(nil)

func NewAgentBackend(client instructor.Instructor, model string, maxTokens int) *AgentBackend {
	return &AgentBackend{
		client:    client,
		model:     model,
		maxTokens: maxTokens,
	}
}

// Extract implements Backend, every call runs a fresh agent so extractions never share memory
func (b *AgentBackend) Extract(ctx context.Context, image []byte) (*marksix.Extraction, error) {
	agent := agents.NewAgent[Request, marksix.Extraction](
		agents.WithClient(b.client),
		agents.WithModel(b.model),
		agents.WithMaxTokens(b.maxTokens),
		agents.WithName("MarkSixVision"),
		agents.WithSystemPromptGenerator(cot.New(
			cot.WithBackground(background),
			cot.WithSteps(steps),
			cot.WithRules(rules),
		)),
	)
	req := &Request{Instruction: instruction}
	req.SetAttachement(new(schema.Attachement).AddImageURL(components.DataURL(image)))
	out := new(marksix.Extraction)
	if err := agent.Run(ctx, req, out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

// GeminiBackend reads the image with a Gemini model in JSON mode
type GeminiBackend struct {
	client *genai.Client
	model  string
}

var _ Backend = (*GeminiBackend)(nil)

func NewGeminiBackend(ctx context.Context, apiKey string, model string) (*GeminiBackend, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is empty")
	}
	clt, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &GeminiBackend{
		client: clt,
		model:  strings.TrimSpace(model),
	}, nil
}

func (b *GeminiBackend) Close() error {
	return b.client.Close()
}

var extractionSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"draw_number":  {Type: genai.TypeInteger, Description: "Draw number as a positive integer"},
		"draw_date":    {Type: genai.TypeString, Description: "Draw date in YYYY-MM-DD format"},
		"numbers":      {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeInteger}, Description: "The 6 main numbers"},
		"bonus_number": {Type: genai.TypeInteger, Description: "The bonus number"},
	},
	Required: []string{"draw_number", "draw_date", "numbers", "bonus_number"},
}

// Extract implements Backend
func (b *GeminiBackend) Extract(ctx context.Context, image []byte) (*marksix.Extraction, error) {
	m := b.client.GenerativeModel(b.model)
	temperature := float32(0)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      &temperature,
		ResponseMIMEType: "application/json",
		ResponseSchema:   extractionSchema,
	}
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{
			genai.Text(cot.New(cot.WithBackground(background), cot.WithSteps(steps), cot.WithRules(rules)).Generate()),
		},
	}
	resp, err := m.GenerateContent(ctx,
		genai.Text(instruction),
		&genai.Blob{MIMEType: "image/jpeg", Data: image},
	)
	if err != nil {
		return nil, fmt.Errorf("gemini extract: %w", err)
	}
	txt := firstText(resp)
	if txt == "" {
		return nil, errors.New("gemini extract: empty response")
	}
	out := new(marksix.Extraction)
	if err := json.Unmarshal([]byte(stripCodeFences(txt)), out); err != nil {
		return nil, fmt.Errorf("gemini extract: bad JSON: %w", err)
	}
	return out, nil
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if txt, ok := part.(genai.Text); ok && strings.TrimSpace(string(txt)) != "" {
				return string(txt)
			}
		}
	}
	return ""
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
