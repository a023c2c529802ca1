package schema

// Input represents a chat message sent by the user
type Input struct {
	Base
	// ChatMessage The chat message sent by the user to the assistant.
	ChatMessage string `json:"chat_message" jsonschema:"title=chat_message,description=The chat message sent by the user to the assistant." validate:"required"`
}

// NewInput returns a new Input
func NewInput(msg string) *Input {
	return &Input{
		ChatMessage: msg,
	}
}

// Output represents the response generated by the chat agent or a tool
type Output struct {
	Base
	// ChatMessage The chat message exchanged between the user and the chat agent.
	ChatMessage string `json:"chat_message" jsonschema:"title=chat_message,description=The chat message exchanged between the user and the chat agent."`
}

// NewOutput returns a new Output
func NewOutput(msg string) *Output {
	return &Output{
		ChatMessage: msg,
	}
}

// String implements fmt.Stringer
func (o Output) String() string {
	return o.ChatMessage
}
