// Package openai provides an embedprovider.Provider backed by the OpenAI
// embeddings API.
package openai

import (
	"context"
	"fmt"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/kahani-engine/narrative/pkg/embedprovider"
)

// Provider implements embedprovider.Provider using the OpenAI API.
type Provider struct {
	client oai.Client
	model  string
	dims   int
}

// New constructs a Provider for the given embedding model. dims must match
// the model's native output dimensionality (1536 for text-embedding-3-small,
// 3072 for text-embedding-3-large) unless the API request truncates it via
// the dimensions parameter.
func New(apiKey, model string, dims int, opts ...option.RequestOption) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("embedprovider/openai: apiKey must not be empty")
	}
	if model == "" {
		return nil, fmt.Errorf("embedprovider/openai: model must not be empty")
	}
	if dims <= 0 {
		dims = 1536
	}
	reqOpts := append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &Provider{client: oai.NewClient(reqOpts...), model: model, dims: dims}, nil
}

// Embed implements embedprovider.Provider.
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch implements embedprovider.Provider.
func (p *Provider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := p.client.Embeddings.New(ctx, oai.EmbeddingNewParams{
		Model:      p.model,
		Input:      oai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Dimensions: oai.Int(int64(p.dims)),
	})
	if err != nil {
		return nil, fmt.Errorf("embedprovider/openai: embed batch: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedprovider/openai: expected %d embeddings, got %d", len(texts), len(resp.Data))
	}
	out := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vec := make([]float32, len(d.Embedding))
		for j, f := range d.Embedding {
			vec[j] = float32(f)
		}
		out[i] = vec
	}
	return out, nil
}

// Dimensions implements embedprovider.Provider.
func (p *Provider) Dimensions() int { return p.dims }

// ModelID implements embedprovider.Provider.
func (p *Provider) ModelID() string { return p.model }

var _ embedprovider.Provider = (*Provider)(nil)
