// Package embedprovider defines the abstraction over text-embedding
// backends used by the dense half of semantic recall (§4.4): scenes and
// scene events are embedded at ingestion time and queries are embedded at
// recall time, both through the same Provider so vectors share a space.
//
// Implementations must be safe for concurrent use.
package embedprovider

import "context"

// Provider is the abstraction over any text-embedding backend.
//
// All vectors returned by a single Provider instance share the same
// dimensionality (Dimensions). Callers must not mix vectors from different
// Provider instances in one similarity computation.
type Provider interface {
	// Embed computes the embedding vector for a single text string.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch computes vectors for many texts in one provider call. The
	// returned slice has the same length as texts; on error the entire
	// result is nil — partial results are not returned.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the fixed vector length for this provider.
	Dimensions() int

	// ModelID returns the provider-specific model identifier.
	ModelID() string
}
