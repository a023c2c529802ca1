package orchestration

import (
	"context"
	"errors"
	"testing"

	"github.com/bububa/marksix-agents/schema"
	"github.com/bububa/marksix-agents/tools"
)

type echoTool struct {
	tools.Config
}

func (t *echoTool) RunOrchestration(ctx context.Context, input any) (any, error) {
	return tools.RunTyped(ctx, input, func(_ context.Context, in *schema.Input) (*schema.Output, error) {
		return schema.NewOutput(in.ChatMessage), nil
	})
}

func TestRunOrchestration(t *testing.T) {
	echo := new(echoTool)
	echo.SetTitle("echo")
	var started, ended []string
	tool := New(func(req *schema.Input) (tools.OrchestrationTool, any, error) {
		if req.ChatMessage == "" {
			return nil, nil, errors.New("empty")
		}
		return echo, schema.NewInput(req.ChatMessage + "!"), nil
	},
		tools.WithStartHook(func(_ context.Context, tool tools.ITool, _ any) {
			started = append(started, tool.Title())
		}),
		tools.WithEndHook(func(_ context.Context, tool tools.ITool, _ any, _ any) {
			ended = append(ended, tool.Title())
		}),
	)
	ret, err := tool.RunOrchestration(context.Background(), schema.NewInput("hi"))
	if err != nil {
		t.Fatal(err)
	}
	out, ok := ret.(*schema.Output)
	if !ok {
		t.Fatalf("expecting *schema.Output, but got %T", ret)
	}
	if out.ChatMessage != "hi!" {
		t.Errorf("expecting hi!, but got %s", out.ChatMessage)
	}
	if len(started) != 1 || started[0] != "echo" || len(ended) != 1 {
		t.Errorf("unexpected hooks calls, start: %v, end: %v", started, ended)
	}
	if _, err := tool.RunOrchestration(context.Background(), schema.NewInput("")); err == nil {
		t.Error("expecting selector error")
	}
	if _, err := tool.RunOrchestration(context.Background(), schema.NewString("x")); !errors.Is(err, tools.ErrInvalidInput) {
		t.Errorf("expecting ErrInvalidInput, but got %v", err)
	}
}
