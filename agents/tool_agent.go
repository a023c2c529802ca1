package agents

import (
	"context"
	"errors"

	"github.com/bububa/marksix-agents/components"
	"github.com/bububa/marksix-agents/schema"
	"github.com/bububa/marksix-agents/tools"
)

var (
	// ErrInvalidToolOutput returned when a tool result is not a schema
	ErrInvalidToolOutput = errors.New("invalid tool output schema")
	// ErrNoTool returned when a ToolAgent runs without a tool
	ErrNoTool = errors.New("tool agent has no tool")
)

// ToolAgent represent agent with tool callback.
// The start agent turns user input into tool parameters T, the tool runs with them.
// With an end agent the tool result is handed to it as context to produce O,
// without one the tool result must already be an O and is returned verbatim.
type ToolAgent[I schema.Schema, T schema.Schema, O schema.Schema] struct {
	start *Agent[I, T]
	end   *Agent[I, O]
	tool  tools.OrchestrationTool
}

// NewToolAgent returns a new ToolAgent instance
func NewToolAgent[I schema.Schema, T schema.Schema, O schema.Schema](options ...Option) *ToolAgent[I, T, O] {
	return &ToolAgent[I, T, O]{
		start: NewAgent[I, T](options...),
	}
}

func (t *ToolAgent[I, T, O]) SetTool(tool tools.OrchestrationTool) *ToolAgent[I, T, O] {
	t.tool = tool
	return t
}

// SetEndAgent set the agent summarizing tool results
func (t *ToolAgent[I, T, O]) SetEndAgent(end *Agent[I, O]) *ToolAgent[I, T, O] {
	t.end = end
	return t
}

// StartAgent returns the agent choosing tool parameters
func (t *ToolAgent[I, T, O]) StartAgent() *Agent[I, T] {
	return t.start
}

func (t *ToolAgent[I, T, O]) ResetMemory() {
	t.start.ResetMemory()
	if t.end != nil {
		t.end.ResetMemory()
	}
}

// Run runs the chat agent with the given user input synchronously.
func (t *ToolAgent[I, T, O]) Run(ctx context.Context, userInput *I, output *O, apiResp *components.ApiResponse) error {
	if t.tool == nil {
		return ErrNoTool
	}
	toolParams := new(T)
	if err := t.start.Run(ctx, userInput, toolParams, apiResp); err != nil {
		return err
	}
	toolResult, err := t.tool.RunOrchestration(ctx, toolParams)
	if err != nil {
		return err
	}
	if t.end == nil {
		outO, ok := toolResult.(*O)
		if !ok {
			return ErrInvalidToolOutput
		}
		t.start.NewMessage(components.AssistantRole, *outO)
		*output = *outO
		return nil
	}
	outS, ok := toolResult.(schema.Schema)
	if !ok {
		return ErrInvalidToolOutput
	}
	t.end.NewMessage(components.SystemRole, outS)
	return t.end.Run(ctx, userInput, output, apiResp)
}
