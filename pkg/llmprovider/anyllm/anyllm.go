// Package anyllm provides an llmprovider.Provider backed by
// github.com/mozilla-ai/any-llm-go, giving the narrative engine a single
// adapter that can reach OpenAI, Anthropic, Gemini, Ollama, and other
// backends interchangeably — useful for routing the extraction model to a
// cheaper/local backend than the main story-generation model.
package anyllm

import (
	"context"
	"fmt"
	"strings"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/mozilla-ai/any-llm-go/providers/anthropic"
	"github.com/mozilla-ai/any-llm-go/providers/deepseek"
	"github.com/mozilla-ai/any-llm-go/providers/gemini"
	"github.com/mozilla-ai/any-llm-go/providers/groq"
	"github.com/mozilla-ai/any-llm-go/providers/ollama"
	anyllmoai "github.com/mozilla-ai/any-llm-go/providers/openai"

	"github.com/kahani-engine/narrative/pkg/llmprovider"
)

// Provider implements llmprovider.Provider by wrapping any-llm-go.
type Provider struct {
	backend anyllmlib.Provider
	model   string
	caps    llmprovider.ModelCapabilities
}

// New creates a Provider backed by the named any-llm-go backend: one of
// "openai", "anthropic", "gemini", "ollama", "deepseek", "groq". Without an
// API key option, each backend falls back to its conventional environment
// variable (OPENAI_API_KEY, ANTHROPIC_API_KEY, ...).
func New(providerName, model string, caps llmprovider.ModelCapabilities, opts ...anyllmlib.Option) (*Provider, error) {
	if providerName == "" {
		return nil, fmt.Errorf("llmprovider/anyllm: providerName must not be empty")
	}
	if model == "" {
		return nil, fmt.Errorf("llmprovider/anyllm: model must not be empty")
	}

	backend, err := createBackend(providerName, opts...)
	if err != nil {
		return nil, fmt.Errorf("llmprovider/anyllm: create %q backend: %w", providerName, err)
	}
	return &Provider{backend: backend, model: model, caps: caps}, nil
}

func createBackend(providerName string, opts ...anyllmlib.Option) (anyllmlib.Provider, error) {
	switch strings.ToLower(providerName) {
	case "openai":
		return anyllmoai.New(opts...)
	case "anthropic":
		return anthropic.New(opts...)
	case "gemini":
		return gemini.New(opts...)
	case "ollama":
		return ollama.New(opts...)
	case "deepseek":
		return deepseek.New(opts...)
	case "groq":
		return groq.New(opts...)
	default:
		return nil, fmt.Errorf("unsupported provider %q; supported: openai, anthropic, gemini, ollama, deepseek, groq", providerName)
	}
}

func (p *Provider) buildParams(req llmprovider.CompletionRequest) anyllmlib.CompletionParams {
	var msgs []anyllmlib.Message
	if req.SystemPrompt != "" {
		msgs = append(msgs, anyllmlib.Message{Role: "system", Content: req.SystemPrompt})
	}
	for _, m := range req.Messages {
		msgs = append(msgs, anyllmlib.Message{Role: m.Role, Content: m.Content, Name: m.Name})
	}
	params := anyllmlib.CompletionParams{
		Model:    p.model,
		Messages: msgs,
	}
	if req.Temperature > 0 {
		params.Temperature = &req.Temperature
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = &req.MaxTokens
	}
	return params
}

// Complete implements llmprovider.Provider.
func (p *Provider) Complete(ctx context.Context, req llmprovider.CompletionRequest) (*llmprovider.CompletionResponse, error) {
	params := p.buildParams(req)
	resp, err := p.backend.Completion(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("llmprovider/anyllm: completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("llmprovider/anyllm: empty choices in response")
	}
	choice := resp.Choices[0]
	return &llmprovider.CompletionResponse{
		Content: choice.Message.ContentString(),
		Usage: llmprovider.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

// StreamCompletion implements llmprovider.Provider.
func (p *Provider) StreamCompletion(ctx context.Context, req llmprovider.CompletionRequest) (<-chan llmprovider.Chunk, error) {
	params := p.buildParams(req)
	backendChunks, backendErrs := p.backend.CompletionStream(ctx, params)

	ch := make(chan llmprovider.Chunk, 32)
	go func() {
		defer close(ch)
		for chunk := range backendChunks {
			if len(chunk.Choices) == 0 {
				continue
			}
			choice := chunk.Choices[0]
			out := llmprovider.Chunk{
				Text:         choice.Delta.Content,
				FinishReason: choice.FinishReason,
			}
			select {
			case ch <- out:
			case <-ctx.Done():
				return
			}
		}
		if err, ok := <-backendErrs; ok && err != nil {
			select {
			case ch <- llmprovider.Chunk{FinishReason: "error", Text: err.Error()}:
			case <-ctx.Done():
			}
		}
	}()
	return ch, nil
}

// CountTokens approximates at four characters per token; any-llm-go does
// not expose a unified local tokenizer across backends.
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
