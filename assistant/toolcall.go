package assistant

import (
	"context"
	"errors"
	"fmt"

	"github.com/bububa/marksix-agents/schema"
	"github.com/bububa/marksix-agents/tools"
	"github.com/bububa/marksix-agents/tools/calculator"
	"github.com/bububa/marksix-agents/tools/extractor"
	"github.com/bububa/marksix-agents/tools/query"
)

const (
	CalculatorTool = "calculator"
	ExtractorTool  = "extract_mark_six_from_image"
	QueryTool      = "query_mark_six_history"
	ReplyTool      = "reply"
)

// ErrInvalidToolCall returned when the model picks a tool without its arguments
var ErrInvalidToolCall = errors.New("invalid tool call")

// ToolCall Choose exactly one tool to answer the user, or reply directly when no tool applies
type ToolCall struct {
	schema.Base
	// Tool the tool to call
	Tool string `json:"tool" jsonschema:"title=tool,description=The tool to call. Use reply only when no tool applies.,enum=calculator,enum=extract_mark_six_from_image,enum=query_mark_six_history,enum=reply" validate:"required,oneof=calculator extract_mark_six_from_image query_mark_six_history reply"`
	// Calculator arguments of the calculator tool
	Calculator *calculator.Input `json:"calculator,omitempty" jsonschema:"title=calculator,description=Arguments when tool is calculator."`
	// Extractor arguments of the image extractor tool
	Extractor *extractor.Input `json:"extract_mark_six_from_image,omitempty" jsonschema:"title=extract_mark_six_from_image,description=Arguments when tool is extract_mark_six_from_image."`
	// Query arguments of the history query tool
	Query *query.Input `json:"query_mark_six_history,omitempty" jsonschema:"title=query_mark_six_history,description=Arguments when tool is query_mark_six_history."`
	// Reply direct answer to the user
	Reply string `json:"reply,omitempty" jsonschema:"title=reply,description=Friendly answer to the user when tool is reply."`
}

// textTool renders the result of a tool as a chat Output
type textTool struct {
	tools.OrchestrationTool
}

func (t textTool) RunOrchestration(ctx context.Context, input any) (any, error) {
	ret, err := t.OrchestrationTool.RunOrchestration(ctx, input)
	if err != nil {
		return nil, err
	}
	if s, ok := ret.(fmt.Stringer); ok {
		return schema.NewOutput(s.String()), nil
	}
	return nil, fmt.Errorf("%s returned %T", t.Title(), ret)
}

// replyTool echoes the reply chosen by the model
type replyTool struct {
	tools.Config
}

func newReplyTool() *replyTool {
	ret := new(replyTool)
	ret.SetTitle("ReplyTool")
	ret.SetDescription("Answer the user directly.")
	return ret
}

func (t *replyTool) RunOrchestration(ctx context.Context, input any) (any, error) {
	return tools.RunTyped(ctx, input, func(_ context.Context, in *schema.Output) (*schema.Output, error) {
		return in, nil
	})
}

type toolset struct {
	calculator tools.OrchestrationTool
	extractor  tools.OrchestrationTool
	query      tools.OrchestrationTool
	reply      tools.OrchestrationTool
}

// selector maps a ToolCall to its tool and arguments
func (s toolset) selector(call *ToolCall) (tools.OrchestrationTool, any, error) {
	switch call.Tool {
	case CalculatorTool:
		args := call.Calculator
		if args == nil {
			args = new(calculator.Input)
		}
		return textTool{s.calculator}, args, nil
	case ExtractorTool:
		if call.Extractor == nil {
			return nil, nil, fmt.Errorf("%w: %s without image_path", ErrInvalidToolCall, call.Tool)
		}
		return textTool{s.extractor}, call.Extractor, nil
	case QueryTool:
		if call.Query == nil {
			return nil, nil, fmt.Errorf("%w: %s without query_type", ErrInvalidToolCall, call.Tool)
		}
		return textTool{s.query}, call.Query, nil
	case ReplyTool:
		return s.reply, schema.NewOutput(call.Reply), nil
	}
	return nil, nil, fmt.Errorf("%w: unknown tool %q", ErrInvalidToolCall, call.Tool)
}
