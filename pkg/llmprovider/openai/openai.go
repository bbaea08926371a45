// Package openai provides an llmprovider.Provider backed by the OpenAI
// chat completions API.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/kahani-engine/narrative/pkg/llmprovider"
)

// Provider implements llmprovider.Provider using the OpenAI API.
type Provider struct {
	client oai.Client
	model  string
	caps   llmprovider.ModelCapabilities
}

type config struct {
	baseURL string
	timeout time.Duration
	caps    llmprovider.ModelCapabilities
}

// Option is a functional option for New.
type Option func(*config)

// WithBaseURL overrides the default OpenAI API base URL (used to point at
// Azure OpenAI or an OpenAI-compatible gateway).
func WithBaseURL(url string) Option {
	return func(c *config) { c.baseURL = url }
}

// WithTimeout sets a per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d }
}

// WithCapabilities overrides the declared model capabilities. Defaults to
// a 128k context window with tool calling and streaming enabled.
func WithCapabilities(caps llmprovider.ModelCapabilities) Option {
	return func(c *config) { c.caps = caps }
}

// New constructs a Provider for the given model, authenticated with apiKey.
func New(apiKey, model string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("llmprovider/openai: apiKey must not be empty")
	}
	if model == "" {
		return nil, fmt.Errorf("llmprovider/openai: model must not be empty")
	}

	cfg := &config{
		caps: llmprovider.ModelCapabilities{
			ContextWindow:       128_000,
			MaxOutputTokens:     4096,
			SupportsToolCalling: true,
			SupportsStreaming:   true,
		},
	}
	for _, o := range opts {
		o(cfg)
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.timeout > 0 {
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{Timeout: cfg.timeout}))
	}

	return &Provider{
		client: oai.NewClient(reqOpts...),
		model:  model,
		caps:   cfg.caps,
	}, nil
}

func (p *Provider) buildParams(req llmprovider.CompletionRequest) oai.ChatCompletionNewParams {
	var msgs []oai.ChatCompletionMessageParamUnion
	if req.SystemPrompt != "" {
		msgs = append(msgs, oai.SystemMessage(req.SystemPrompt))
	}
	for _, m := range req.Messages {
		switch m.Role {
		case "system":
			msgs = append(msgs, oai.SystemMessage(m.Content))
		case "assistant":
			msgs = append(msgs, oai.AssistantMessage(m.Content))
		case "tool":
			msgs = append(msgs, oai.ToolMessage(m.Content, m.ToolCallID))
		default:
			msgs = append(msgs, oai.UserMessage(m.Content))
		}
	}

	params := oai.ChatCompletionNewParams{
		Model:    p.model,
		Messages: msgs,
	}
	if req.Temperature > 0 {
		params.Temperature = oai.Float(req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = oai.Int(int64(req.MaxTokens))
	}
	return params
}

// Complete implements llmprovider.Provider.
func (p *Provider) Complete(ctx context.Context, req llmprovider.CompletionRequest) (*llmprovider.CompletionResponse, error) {
	params := p.buildParams(req)
	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("llmprovider/openai: complete: %w", err)
	}
	if len(resp.Choices) == 0 {
		return &llmprovider.CompletionResponse{}, nil
	}
	choice := resp.Choices[0]

	var calls []llmprovider.ToolCall
	for _, tc := range choice.Message.ToolCalls {
		calls = append(calls, llmprovider.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}

	return &llmprovider.CompletionResponse{
		Content:   choice.Message.Content,
		ToolCalls: calls,
		Usage: llmprovider.Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}, nil
}

// StreamCompletion implements llmprovider.Provider.
func (p *Provider) StreamCompletion(ctx context.Context, req llmprovider.CompletionRequest) (<-chan llmprovider.Chunk, error) {
	params := p.buildParams(req)
	stream := p.client.Chat.Completions.NewStreaming(ctx, params)
	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("llmprovider/openai: start stream: %w", err)
	}

	ch := make(chan llmprovider.Chunk, 32)
	go func() {
		defer close(ch)
		defer stream.Close()

		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) == 0 {
				continue
			}
			choice := chunk.Choices[0]
			out := llmprovider.Chunk{
				Text:         choice.Delta.Content,
				FinishReason: string(choice.FinishReason),
			}
			select {
			case <-ctx.Done():
				return
			case ch <- out:
			}
		}
		if err := stream.Err(); err != nil {
			select {
			case ch <- llmprovider.Chunk{FinishReason: "error"}:
			case <-ctx.Done():
			}
		}
	}()
	return ch, nil
}

// CountTokens approximates token count at four characters per token. The
// OpenAI SDK does not expose a local tokenizer; callers needing exact
// counts should rely on the Usage field returned by Complete instead.
func (p *Provider) CountTokens(messages []llmprovider.Message) (int, error) {
	total := 0
	for _, m := range messages {
		total += (len(m.Content) + 3) / 4
	}
	return total, nil
}

// Capabilities implements llmprovider.Provider.
func (p *Provider) Capabilities() llmprovider.ModelCapabilities {
	return p.caps
}

var _ llmprovider.Provider = (*Provider)(nil)
