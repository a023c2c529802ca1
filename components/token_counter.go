package components

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter defines the interface for counting tokens in a string.
type TokenCounter interface {
	Count(text string) int
}

// WordCounter approximates token counts by splitting on whitespace.
type WordCounter struct{}

// Count returns the number of words in the text
func (WordCounter) Count(text string) int {
	return len(strings.Fields(text))
}

// TikTokenCounter counts tokens with the tiktoken encodings used by OpenAI models.
type TikTokenCounter struct {
	tke *tiktoken.Tiktoken
}

// NewTikTokenCounter creates a new TikTokenCounter using the specified encoding, e.g. "cl100k_base"
func NewTikTokenCounter(encoding string) (*TikTokenCounter, error) {
	tke, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to get encoding: %w", err)
	}
	return &TikTokenCounter{tke: tke}, nil
}

// Count returns the number of tokens in the text
func (c *TikTokenCounter) Count(text string) int {
	return len(c.tke.Encode(text, nil, nil))
}

// NewTokenCounter returns a tiktoken counter for encoding,
// falling back to WordCounter when the encoding can not be loaded (e.g. offline)
func NewTokenCounter(encoding string) TokenCounter {
	if counter, err := NewTikTokenCounter(encoding); err == nil {
		return counter
	}
	return WordCounter{}
}
