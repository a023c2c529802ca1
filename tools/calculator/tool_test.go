package calculator

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestTool(t *testing.T) {
	ctx := context.Background()
	tool := New()
	ret, err := tool.Run(ctx, NewInput("2+2"))
	if err != nil {
		t.Fatal(err)
	}
	if ret.Result != 4 {
		t.Errorf("expecting 4, but got %v", ret.Result)
	}
	if _, err := tool.Run(ctx, NewOperandsInput(10, 0, "÷")); !errors.Is(err, ErrDivisionByZero) {
		t.Errorf("expecting ErrDivisionByZero, but got %v", err)
	}
	if _, err := tool.Run(ctx, new(Input)); !errors.Is(err, ErrMissingArguments) {
		t.Errorf("expecting ErrMissingArguments, but got %v", err)
	}
}

func TestToolOrchestration(t *testing.T) {
	ret, err := New().RunOrchestration(context.Background(), NewOperandsInput(6, 7, "x"))
	if err != nil {
		t.Fatal(err)
	}
	out, ok := ret.(*Output)
	if !ok || out.String() != "42" {
		t.Errorf("expecting 42, but got %v", ret)
	}
}

func ExampleTool() {
	ctx := context.Background()
	tool := New()
	ret, _ := tool.Run(ctx, NewInput("(15 × 3) ÷ 4"))
	fmt.Println(ret)
	ret, _ = tool.Run(ctx, NewOperandsInput(10, 2, "divide"))
	fmt.Println(ret)
	_, err := tool.Run(ctx, NewOperandsInput(10, 2, "power"))
	fmt.Println(err)
	// Output:
	// 11.25
	// 5
	// unsupported operation: power
}
