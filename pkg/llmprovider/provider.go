// Package llmprovider defines the capability-set abstraction over Large
// Language Model backends used throughout the narrative engine: the main
// story-generation model, the extraction model used for NPC mining and
// query decomposition, and the recall agent's reasoning model may all be
// different Provider instances wired up by the caller.
//
// Implementors must be safe for concurrent use. Channels returned by
// StreamCompletion must be closed by the implementation when the stream
// ends or when the supplied context is cancelled.
package llmprovider

import "context"

// Message represents a single message in an LLM conversation history.
type Message struct {
	// Role is one of "system", "user", "assistant", or "tool".
	Role string

	// Content is the text content of the message.
	Content string

	// Name is an optional participant name, used for multi-character
	// roleplay turns where several "assistant" messages must be
	// attributed to different in-story speakers.
	Name string

	// ToolCalls contains any tool invocations requested by the assistant.
	ToolCalls []ToolCall

	// ToolCallID is set when Role is "tool", identifying which tool call
	// this message responds to.
	ToolCallID string
}

// ToolCall represents a tool/function invocation requested by the LLM.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// ToolDefinition describes a tool that can be offered to an LLM.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ModelCapabilities describes what a model supports.
type ModelCapabilities struct {
	ContextWindow       int
	MaxOutputTokens     int
	SupportsToolCalling bool
	SupportsStreaming   bool
}

// Usage holds token accounting information returned by the backend.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// CompletionRequest carries everything the model needs to produce a
// response. Callers should treat a zero-value request as invalid; at
// minimum Messages must be non-empty.
type CompletionRequest struct {
	Messages []Message

	// Tools is the set of tool definitions offered to the model.
	// Providers that do not support tool calling should ignore this field
	// — callers check Capabilities().SupportsToolCalling first.
	Tools []ToolDefinition

	// Temperature controls output randomness, range [0.0, 2.0].
	Temperature float64

	// MaxTokens caps completion tokens. Zero means provider default.
	MaxTokens int

	// SystemPrompt is prepended ahead of the conversation history.
	SystemPrompt string
}

// Chunk is a single fragment emitted by a streaming completion.
type Chunk struct {
	Text         string
	FinishReason string
	ToolCalls    []ToolCall
}

// CompletionResponse is returned by the non-streaming Complete method.
type CompletionResponse struct {
	Content   string
	ToolCalls []ToolCall
	Usage     Usage
}

// Provider is the abstraction over any LLM backend. Implementations must
// be safe for concurrent use from multiple goroutines and propagate
// context cancellation promptly.
type Provider interface {
	// StreamCompletion returns a channel emitting Chunk values as they
	// arrive. The channel is closed by the implementation when generation
	// finishes or ctx is cancelled. The returned channel is never nil
	// when error is nil.
	StreamCompletion(ctx context.Context, req CompletionRequest) (<-chan Chunk, error)

	// Complete waits for the full response. It is a convenience wrapper
	// for callers that do not need incremental output.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// CountTokens estimates the token cost of messages. Implementations
	// may call a tokenizer API or approximate locally; the result must
	// not undercount.
	CountTokens(messages []Message) (int, error)

	// Capabilities returns static metadata about the underlying model.
	Capabilities() ModelCapabilities
}
