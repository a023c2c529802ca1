package cot

import (
	"strings"
	"testing"

	"github.com/bububa/marksix-agents/components/systemprompt"
)

func TestGenerate(t *testing.T) {
	g := New(
		WithBackground([]string{"- You extract Hong Kong Mark Six results."}),
		WithSteps([]string{"1. Read the draw number"}),
		WithRules([]string{"- Never guess a number."}),
		WithContextProviders(systemprompt.NewContextProviderFunc("Current date", func() string {
			return "2024-01-02"
		})),
	)
	prompt := g.Generate()
	for _, expect := range []string{
		"# IDENTITY and PURPOSE\n- You extract Hong Kong Mark Six results.",
		"# INTERNAL ASSISTANT STEPS\n1. Read the draw number",
		"# RULES\n- Never guess a number.",
		"# OUTPUT INSTRUCTIONS\n- Always respond using the proper JSON schema.",
		"# EXTRA INFORMATION AND CONTEXT\n## Current date\n2024-01-02",
	} {
		if !strings.Contains(prompt, expect) {
			t.Errorf("expecting prompt to contain %q, got:\n%s", expect, prompt)
		}
	}
	g.RemoveContextProviders("Current date")
	if strings.Contains(g.Generate(), "EXTRA INFORMATION") {
		t.Error("expecting context provider to be removed")
	}
}

func TestContextProviderLookup(t *testing.T) {
	g := New()
	g.AddContextProviders(systemprompt.NewContextProviderFunc("a", func() string { return "1" }))
	g.AddContextProviders(systemprompt.NewContextProviderFunc("a", func() string { return "2" }))
	p, err := g.ContextProvider("a")
	if err != nil {
		t.Fatal(err)
	}
	if p.Info() != "1" {
		t.Errorf("expecting first registered provider to win, but got %s", p.Info())
	}
	if _, err := g.ContextProvider("b"); err == nil {
		t.Error("expecting not found error")
	}
}
