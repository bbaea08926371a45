// Package mock provides a test double for the llmprovider.Provider interface.
package mock

import (
	"context"
	"sync"

	"github.com/kahani-engine/narrative/pkg/llmprovider"
)

// CompleteCall records a single invocation of Complete.
type CompleteCall struct {
	Ctx context.Context
	Req llmprovider.CompletionRequest
}

// Provider is a mock implementation of llmprovider.Provider. Zero values
// for response fields cause methods to return zero values and nil errors;
// set the Err fields to inject failures.
type Provider struct {
	mu sync.Mutex

	// Responses is consumed in order by successive Complete calls. When
	// exhausted, the last entry (or CompleteResponse if Responses is
	// empty) is repeated. This lets a test script a multi-turn ReAct loop.
	Responses []string

	CompleteResponse *llmprovider.CompletionResponse
	CompleteErr      error
	TokenCount       int
	CountTokensErr   error
	Caps             llmprovider.ModelCapabilities

	CompleteCalls []CompleteCall
	callIdx       int
}

// Complete records the call and returns the next scripted response, or
// CompleteResponse/CompleteErr if Responses is empty.
func (p *Provider) Complete(ctx context.Context, req llmprovider.CompletionRequest) (*llmprovider.CompletionResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.CompleteCalls = append(p.CompleteCalls, CompleteCall{Ctx: ctx, Req: req})

	if p.CompleteErr != nil {
		return nil, p.CompleteErr
	}
	if len(p.Responses) > 0 {
		idx := p.callIdx
		if idx >= len(p.Responses) {
			idx = len(p.Responses) - 1
		}
		p.callIdx++
		return &llmprovider.CompletionResponse{Content: p.Responses[idx]}, nil
	}
	return p.CompleteResponse, nil
}

// StreamCompletion emits the Complete response as a single chunk.
func (p *Provider) StreamCompletion(ctx context.Context, req llmprovider.CompletionRequest) (<-chan llmprovider.Chunk, error) {
	resp, err := p.Complete(ctx, req)
	if err != nil {
		return nil, err
	}
	ch := make(chan llmprovider.Chunk, 1)
	if resp != nil {
		ch <- llmprovider.Chunk{Text: resp.Content, FinishReason: "stop", ToolCalls: resp.ToolCalls}
	}
	close(ch)
	return ch, nil
}

// CountTokens returns TokenCount, CountTokensErr.
func (p *Provider) CountTokens(messages []llmprovider.Message) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.CountTokensErr != nil {
		return 0, p.CountTokensErr
	}
	if p.TokenCount > 0 {
		return p.TokenCount, nil
	}
	total := 0
	for _, m := range messages {
		total += len(m.Content) / 4
	}
	return total, nil
}

// Capabilities returns Caps.
func (p *Provider) Capabilities() llmprovider.ModelCapabilities {
	return p.Caps
}

var _ llmprovider.Provider = (*Provider)(nil)
