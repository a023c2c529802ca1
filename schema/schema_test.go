package schema

import "testing"

func TestStringify(t *testing.T) {
	tests := []struct {
		name   string
		schema Schema
		expect string
	}{
		{name: "string", schema: String("hello"), expect: "hello"},
		{name: "string pointer", schema: NewString("world"), expect: "world"},
		{name: "input", schema: NewInput("1-9"), expect: `{"chat_message":"1-9"}`},
		{name: "output", schema: Output{ChatMessage: "ok"}, expect: `{"chat_message":"ok"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Stringify(tt.schema); got != tt.expect {
				t.Errorf("expecting %s, but got %s", tt.expect, got)
			}
		})
	}
}

func TestAttachement(t *testing.T) {
	input := NewInput("extract")
	if input.Attachement() != nil {
		t.Fatal("expecting nil attachement")
	}
	attachement := new(Attachement).AddImageURL("data:image/jpeg;base64,AAAA")
	input.SetAttachement(attachement)
	if got := input.Attachement(); got == nil || len(got.ImageURLs) != 1 {
		t.Fatalf("expecting 1 image url, but got %+v", got)
	}
	// attachements survive value copies, agents store user input by value
	copied := *input
	if copied.Attachement() != attachement {
		t.Error("expecting attachement to be shared by copies")
	}
}
