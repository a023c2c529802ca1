package orchestration

import (
	"context"

	"github.com/bububa/marksix-agents/schema"
	"github.com/bububa/marksix-agents/tools"
)

// ToolSelector returns the tool and its parameters based on the input param
type ToolSelector[I schema.Schema] func(req *I) (tools.OrchestrationTool, any, error)

// Tool is orchestration tool for tools selector
type Tool[I schema.Schema] struct {
	tools.Config
	selector ToolSelector[I]
}

var _ tools.OrchestrationTool = (*Tool[schema.String])(nil)

func New[I schema.Schema](selector ToolSelector[I], opts ...tools.Option) *Tool[I] {
	ret := new(Tool[I])
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.Title() == "" {
		ret.SetTitle("OrchestrationTool")
	}
	ret.selector = selector
	return ret
}

// RunOrchestration selects a tool based on input and returns its result
func (t *Tool[I]) RunOrchestration(ctx context.Context, input any) (any, error) {
	in, ok := input.(*I)
	if !ok {
		return nil, tools.ErrInvalidInput
	}
	tool, params, err := t.selector(in)
	if err != nil {
		t.OnError(ctx, t, input, err)
		return nil, err
	}
	t.OnStart(ctx, tool, params)
	ret, err := tool.RunOrchestration(ctx, params)
	if err != nil {
		t.OnError(ctx, tool, params, err)
		return nil, err
	}
	t.OnEnd(ctx, tool, params, ret)
	return ret, nil
}
