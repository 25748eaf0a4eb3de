package llm

import (
	"context"
	"encoding/json"
)

// Provider sends one prompt to a model and returns its answer.
type Provider interface {
	// Generate runs req. When req.Schema is set the returned Content has
	// already been validated against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID is the model this provider talks to.
	ModelID() string
}

// Request is a single-turn prompt plus generation limits.
type Request struct {
	System   string
	Messages []Message

	// Schema asks the provider for JSON output of this shape. Nil means
	// free text.
	Schema *Schema

	MaxTokens int

	// Temperature in [0,1]. Zero leaves the provider default.
	Temperature float64
}

// Message is one turn of the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role identifies who wrote a Message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema names a JSON Schema document. Name is used as the cache key for the
// compiled schema and as the OpenAI response format name, so it must be
// unique per definition.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// Stop reasons reported in Response.StopReason.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
)

// Response is what a provider returned.
type Response struct {
	Content    json.RawMessage
	Usage      Usage
	Model      string
	StopReason string
}

// Usage counts tokens for one request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

func usage(in, out int) Usage {
	return Usage{InputTokens: in, OutputTokens: out, TotalTokens: in + out}
}
