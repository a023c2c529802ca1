package components

import (
	"testing"

	"github.com/bububa/marksix-agents/schema"
)

func TestMemoryOverflow(t *testing.T) {
	mem := NewMemory(3)
	for _, v := range []string{"a", "b", "c", "d", "e"} {
		mem.NewMessage(UserRole, schema.String(v))
	}
	history := mem.History()
	if len(history) != 3 {
		t.Fatalf("expecting 3 messages, but got %d", len(history))
	}
	if got := history[0].StringifiedContent(); got != "c" {
		t.Errorf("expecting oldest kept message c, but got %s", got)
	}
}

func TestMemoryDeleteTurn(t *testing.T) {
	mem := NewMemory(0)
	first := mem.NewTurn()
	mem.NewMessage(UserRole, schema.String("1+1"))
	mem.NewMessage(AssistantRole, schema.String("2"))
	second := mem.NewTurn()
	mem.NewMessage(UserRole, schema.String("2*3"))
	if err := mem.DeleteTurn(second); err != nil {
		t.Fatal(err)
	}
	if mem.MessageCount() != 2 {
		t.Errorf("expecting 2 messages, but got %d", mem.MessageCount())
	}
	if mem.TurnID() != first {
		t.Errorf("expecting current turn %s, but got %s", first, mem.TurnID())
	}
	if err := mem.DeleteTurn("missing"); err == nil {
		t.Error("expecting error deleting unknown turn")
	}
	mem.Reset()
	if mem.MessageCount() != 0 {
		t.Error("expecting empty memory after reset")
	}
}
