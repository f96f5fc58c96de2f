package llm

import (
	"context"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system", "tool"
	Content string

	// ToolCalls is set on assistant messages that requested tools.
	ToolCalls []ToolCall
	// ToolCallId links a "tool" message to the call it answers.
	ToolCallId string
	Name       string
}

// ToolCall is a function invocation requested by the model. Arguments is the
// raw JSON object produced by the model.
type ToolCall struct {
	Id        string `json:"toolCallId"`
	Name      string `json:"toolName"`
	Arguments string `json:"args"`
}

// ToolDefinition advertises a callable function to the model.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// Finish reasons shared by every provider.
const (
	FinishStop      = "stop"
	FinishToolCalls = "tool-calls"
	FinishLength    = "length"
	FinishUnknown   = "unknown"
)

// ChatResult is the outcome of one streamed model call.
type ChatResult struct {
	Content      string
	ToolCalls    []ToolCall
	FinishReason string
}

// DeltaFunc receives visible text as the model produces it. Returning an
// error aborts the stream.
type DeltaFunc func(delta string) error

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature *float64 // nil leaves the backend default
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = &temp
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// Chat sends a chat history to the model and returns the response
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// Generate sends a single prompt to the model (convenience method)
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}

// ToolChatProvider is a backend able to stream answers and request tools.
type ToolChatProvider interface {
	LLMProvider

	// StreamChat runs one model call. Text deltas go to onDelta as they
	// arrive; requested tool calls are returned fully assembled.
	StreamChat(ctx context.Context, history []Message, tools []ToolDefinition, onDelta DeltaFunc, options ...Option) (*ChatResult, error)
}
