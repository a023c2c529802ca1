package tools

import (
	"context"
	"errors"

	"github.com/bububa/marksix-agents/schema"
)

// ErrInvalidInput returned by RunOrchestration when the input schema does not match the tool
var ErrInvalidInput = errors.New("invalid tool input schema")

type ITool interface {
	Title() string
	Description() string
}

// Tool is a typed tool
type Tool[I schema.Schema, O schema.Schema] interface {
	ITool
	Run(context.Context, *I) (*O, error)
}

// OrchestrationTool is a tool which could be selected by an orchestration agent
type OrchestrationTool interface {
	ITool
	RunOrchestration(context.Context, any) (any, error)
}

// RunTyped asserts input into *I and runs fn, used by tools implementing OrchestrationTool
func RunTyped[I schema.Schema, O schema.Schema](ctx context.Context, input any, fn func(context.Context, *I) (*O, error)) (any, error) {
	in, ok := input.(*I)
	if !ok {
		return nil, ErrInvalidInput
	}
	return fn(ctx, in)
}
