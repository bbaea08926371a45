// Package mock provides a test double for the embedprovider.Provider interface.
package mock

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
)

// Provider is a deterministic mock embedder: it hashes the input text into
// a fixed-dimension pseudo-random vector so that identical texts always
// embed identically and similarity tests are reproducible without a live
// embedding backend.
type Provider struct {
	mu   sync.Mutex
	Dims int
	Err  error

	EmbedCalls []string
}

// New creates a mock Provider with the given dimensionality.
func New(dims int) *Provider {
	if dims <= 0 {
		dims = 16
	}
	return &Provider{Dims: dims}
}

// Embed returns a deterministic pseudo-vector derived from text.
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	p.mu.Lock()
	p.EmbedCalls = append(p.EmbedCalls, text)
	err := p.Err
	p.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return deterministicVector(text, p.Dims), nil
}

// EmbedBatch embeds each text independently via Embed.
func (p *Provider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := p.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Dimensions returns Dims.
func (p *Provider) Dimensions() int { return p.Dims }

// ModelID returns a fixed mock model identifier.
func (p *Provider) ModelID() string { return "mock-embed-v1" }

func deterministicVector(text string, dims int) []float32 {
	vec := make([]float32, dims)
	for i := 0; i < dims; i++ {
		h := fnv.New32a()
		fmt.Fprintf(h, "%s|%d", text, i)
		// Map the hash into [-1, 1].
		vec[i] = float32(h.Sum32()%2000)/1000 - 1
	}
	return vec
}
