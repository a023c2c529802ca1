package components

import (
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	cohere "github.com/cohere-ai/cohere-go/v2"
	"github.com/gabriel-vasile/mimetype"
	anthropic "github.com/liushuangls/go-anthropic/v2"
	"github.com/rs/xid"
	openai "github.com/sashabaranov/go-openai"

	"github.com/bububa/marksix-agents/schema"
)

// NewTurnID returns a new turn ID.
func NewTurnID() string {
	return xid.New().String()
}

// MessageRole is the role of the message sender (e.g., 'user', 'system', 'tool')
type MessageRole = string

const (
	SystemRole    MessageRole = "system"
	UserRole      MessageRole = "user"
	AssistantRole MessageRole = "assistant"
	ToolRole      MessageRole = "tool"
	FunctionRole  MessageRole = "function"
)

// ApiResponse instructor provider chat response
type ApiResponse struct {
	ID        string      `json:"id,omitempty"`
	Role      MessageRole `json:"role,omitempty"`
	Model     string      `json:"model,omitempty"`
	Usage     *ApiUsage   `json:"usage,omitempty"`
	Timestamp int64       `json:"ts,omitempty"`
	Details   any         `json:"content,omitempty"`
}

// FromOpenAI convnert response from openai
func (r *ApiResponse) FromOpenAI(v *openai.ChatCompletionResponse) {
	r.ID = v.ID
	r.Role = AssistantRole
	r.Model = v.Model
	r.Timestamp = v.Created
	r.Usage = &ApiUsage{
		InputTokens:  v.Usage.PromptTokens,
		OutputTokens: v.Usage.CompletionTokens,
	}
	r.Details = v.Choices
}

// FromAnthropic convert response from anthropic
func (r *ApiResponse) FromAnthropic(v *anthropic.MessagesResponse) {
	r.ID = v.ID
	r.Role = AssistantRole
	r.Model = string(v.Model)
	r.Usage = &ApiUsage{
		InputTokens:  v.Usage.InputTokens,
		OutputTokens: v.Usage.OutputTokens,
	}
	r.Details = v.Content
}

// FromCohere convert response from cohere
func (r *ApiResponse) FromCohere(v *cohere.NonStreamedChatResponse) {
	if v.GenerationId != nil {
		r.ID = *v.GenerationId
	}
	r.Role = AssistantRole
	if meta := v.Meta; meta != nil {
		if usage := meta.Tokens; usage != nil {
			r.Usage = new(ApiUsage)
			if usage.InputTokens != nil {
				r.Usage.InputTokens = int(*usage.InputTokens)
			}
			if usage.OutputTokens != nil {
				r.Usage.OutputTokens = int(*usage.OutputTokens)
			}
		}
		if version := meta.ApiVersion; version != nil {
			r.Model = version.Version
		}
	}
	r.Details = v
}

// ApiUsage token usage of a completion
type ApiUsage struct {
	InputTokens  int `json:"input_tokens,omitempty"`
	OutputTokens int `json:"output_tokens,omitempty"`
}

// Merge adds v into u
func (u *ApiUsage) Merge(v *ApiUsage) {
	if v == nil {
		return
	}
	u.InputTokens += v.InputTokens
	u.OutputTokens += v.OutputTokens
}

// Message  Represents a message in the chat history.
type Message struct {
	content schema.Schema
	// role is the role of the message sender (e.g., 'user', 'system', 'tool')
	role MessageRole
	//	turnID is Unique identifier for the turn this message belongs to.
	turnID string
}

// NewMessage returns a new Message
func NewMessage(role MessageRole, content schema.Schema) *Message {
	return &Message{
		role:    role,
		content: content,
	}
}

// SetTurnID set message turnID
func (m *Message) SetTurnID(turnID string) *Message {
	m.turnID = turnID
	return m
}

// Role returns message role
func (m Message) Role() MessageRole {
	return m.role
}

// Content returns message content
func (m Message) Content() schema.Schema {
	return m.content
}

// StringifiedContent returns message content as text
func (m Message) StringifiedContent() string {
	if m.content == nil {
		return ""
	}
	return schema.Stringify(m.content)
}

// Attachement returns message attachement
func (m Message) Attachement() *schema.Attachement {
	if m.content == nil {
		return nil
	}
	return m.content.Attachement()
}

// TurnID returns message turnID
func (m Message) TurnID() string {
	return m.turnID
}

// ToOpenAI convert message to openai ChatCompletionMessage
func (m Message) ToOpenAI(dist *openai.ChatCompletionMessage) {
	dist.Role = m.role
	if attachement := m.Attachement(); attachement != nil && len(attachement.ImageURLs) > 0 {
		dist.MultiContent = make([]openai.ChatMessagePart, 0, len(attachement.ImageURLs)+1)
		dist.MultiContent = append(dist.MultiContent, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeText,
			Text: m.StringifiedContent(),
		})
		for _, imageURL := range attachement.ImageURLs {
			dist.MultiContent = append(dist.MultiContent, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    imageURL,
					Detail: openai.ImageURLDetailAuto,
				},
			})
		}
		return
	}
	dist.Content = m.StringifiedContent()
}

// ToAnthropic convert message to anthropic Message.
// System messages are not allowed in anthropic message list, callers should move them into the request system prompt
func (m Message) ToAnthropic(dist *anthropic.Message) {
	dist.Role = anthropic.ChatRole(m.role)
	if m.role != AssistantRole {
		dist.Role = anthropic.RoleUser
	}
	dist.Content = make([]anthropic.MessageContent, 0, 2)
	if attachement := m.Attachement(); attachement != nil {
		for _, link := range attachement.ImageURLs {
			mediaType, data, err := imageBase64(link)
			if err != nil {
				continue
			}
			dist.Content = append(dist.Content, anthropic.NewImageMessageContent(anthropic.MessageContentSource{
				Type:      "base64",
				MediaType: mediaType,
				Data:      data,
			}))
		}
	}
	dist.Content = append(dist.Content, anthropic.NewTextMessageContent(m.StringifiedContent()))
}

// ToCohere convert message to cohere Message
func (m Message) ToCohere(dist *cohere.Message) {
	dist.Role = m.role
	switch m.role {
	case SystemRole:
		dist.Role = "SYSTEM"
		dist.System = &cohere.ChatMessage{
			Message: m.StringifiedContent(),
		}
	case AssistantRole:
		dist.Role = "CHATBOT"
		dist.Chatbot = &cohere.ChatMessage{
			Message: m.StringifiedContent(),
		}
	default:
		dist.Role = "USER"
		dist.User = &cohere.ChatMessage{
			Message: m.StringifiedContent(),
		}
	}
}

var imageHTTPClient = &http.Client{Timeout: 30 * time.Second}

// imageBase64 returns media type and base64 payload of an image url.
// data urls are decoded in place, remote images are downloaded
func imageBase64(link string) (string, string, error) {
	if mediaType, data, ok := ParseDataURL(link); ok {
		return mediaType, data, nil
	}
	resp, err := imageHTTPClient.Get(link)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", "", errors.New(resp.Status)
	}
	bs, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", err
	}
	return mimetype.Detect(bs).String(), base64.StdEncoding.EncodeToString(bs), nil
}

// DataURL encodes bytes into a base64 data url, media type is sniffed from content
func DataURL(bs []byte) string {
	var builder strings.Builder
	builder.WriteString("data:")
	builder.WriteString(mimetype.Detect(bs).String())
	builder.WriteString(";base64,")
	builder.WriteString(base64.StdEncoding.EncodeToString(bs))
	return builder.String()
}

// ParseDataURL splits a base64 data url into media type and payload
func ParseDataURL(link string) (string, string, bool) {
	rest, found := strings.CutPrefix(link, "data:")
	if !found {
		return "", "", false
	}
	header, data, found := strings.Cut(rest, ",")
	if !found {
		return "", "", false
	}
	mediaType, found := strings.CutSuffix(header, ";base64")
	if !found {
		return "", "", false
	}
	return mediaType, data, true
}
