package components

import (
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/bububa/marksix-agents/schema"
)

var jpegHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}

func TestDataURL(t *testing.T) {
	link := DataURL(jpegHeader)
	if !strings.HasPrefix(link, "data:image/jpeg;base64,") {
		t.Fatalf("unexpected data url: %s", link)
	}
	mediaType, data, ok := ParseDataURL(link)
	if !ok {
		t.Fatal("expecting data url to be parsed")
	}
	if mediaType != "image/jpeg" {
		t.Errorf("expecting image/jpeg, but got %s", mediaType)
	}
	if data == "" {
		t.Error("expecting non empty payload")
	}
	if _, _, ok := ParseDataURL("https://example.com/a.jpg"); ok {
		t.Error("expecting remote url not to be parsed as data url")
	}
}

func TestMessageToOpenAI(t *testing.T) {
	input := schema.NewInput("Extract the Mark Six lottery results from this image.")
	input.SetAttachement(new(schema.Attachement).AddImageURL(DataURL(jpegHeader)))
	msg := NewMessage(UserRole, *input)
	var dist openai.ChatCompletionMessage
	msg.ToOpenAI(&dist)
	if dist.Role != UserRole {
		t.Errorf("expecting role %s, but got %s", UserRole, dist.Role)
	}
	if len(dist.MultiContent) != 2 {
		t.Fatalf("expecting 2 content parts, but got %d", len(dist.MultiContent))
	}
	if dist.MultiContent[1].ImageURL == nil || !strings.HasPrefix(dist.MultiContent[1].ImageURL.URL, "data:image/jpeg") {
		t.Error("expecting image part with data url")
	}

	plain := NewMessage(AssistantRole, schema.String("hello"))
	dist = openai.ChatCompletionMessage{}
	plain.ToOpenAI(&dist)
	if dist.Content != "hello" || len(dist.MultiContent) != 0 {
		t.Errorf("unexpected plain message conversion: %+v", dist)
	}
}
