// Package recall implements the deterministic semantic-recall pipeline
// described in §4.4: query decomposition, a dense+sparse+RRF+rerank
// search over past scenes, a quality gate, and ±1 neighbor expansion of
// surviving candidates into a "relevant past turns" prompt block.
//
// The alternative ReAct recall agent lives in the sibling
// pkg/narrative/recallagent package; both share the SceneReader and
// EventStore abstractions defined here.
package recall

import "context"

// IntentType classifies what the player's message is asking for.
type IntentType string

const (
	IntentDirect    IntentType = "direct"
	IntentRecall    IntentType = "recall"
	IntentReference IntentType = "reference"
)

// TemporalHint narrows how far back a recall search should look.
type TemporalHint string

const (
	TemporalPast   TemporalHint = "past"
	TemporalRecent TemporalHint = "recent"
	TemporalAny    TemporalHint = "any"
)

// Decomposition is the extraction LLM's structured read of player intent.
type Decomposition struct {
	Intent      IntentType
	Temporal    TemporalHint
	SubQueries  []string
	Keywords    []string
}

// RosterMember is the pronoun-resolution hint passed alongside the
// player's message to the decomposition LLM.
type RosterMember struct {
	Name   string
	Gender string
	Role   string
}

// SceneRef identifies one scene within a story branch.
type SceneRef struct {
	SceneID      int64
	Sequence     int
	ChapterID    *int64
	Characters   []string
	Content      string
}

// Candidate is a scene under consideration for inclusion in the
// relevant-past-turns block, carrying its score at each pipeline stage.
type Candidate struct {
	Scene       SceneRef
	DenseRank   map[int]int // sub-query index -> 1-based dense rank, absent if not found
	SparseRank  map[int]int // sub-query index -> 1-based sparse rank, absent if not found
	BestDenseScore float64  // highest raw cosine similarity across sub-queries
	RRFScore    float64
	RerankScore float64
	HasRerank   bool
}

// QualityScore is the value the quality gate evaluates: the rerank
// score when a reranker ran, else the best raw dense similarity seen
// for this candidate. RRF scores themselves are rank-based and not on
// a comparable 0-1 similarity scale, so the gate never compares against
// RRFScore directly.
func (c *Candidate) QualityScore() float64 {
	if c.HasRerank {
		return c.RerankScore
	}
	return c.BestDenseScore
}

// Config bounds the deterministic pipeline's behavior. Zero-value fields
// are replaced with the package defaults by WithDefaults.
type Config struct {
	TopKPerSubQuery     int
	MaxTopKPerSubQuery  int
	RRFConstant         int
	QualityThreshold    float64
	NeighborRadius      int
	MaxSubQueries       int
	MinKeywordLength    int
}

// DefaultConfig returns the §4.4-mandated defaults.
func DefaultConfig() Config {
	return Config{
		TopKPerSubQuery:    8,
		MaxTopKPerSubQuery: 15,
		RRFConstant:        60,
		QualityThreshold:   0.60,
		NeighborRadius:     1,
		MaxSubQueries:      5,
		MinKeywordLength:   4,
	}
}

// WithDefaults fills any zero-valued field of c with DefaultConfig's value.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.TopKPerSubQuery <= 0 {
		c.TopKPerSubQuery = d.TopKPerSubQuery
	}
	if c.MaxTopKPerSubQuery <= 0 {
		c.MaxTopKPerSubQuery = d.MaxTopKPerSubQuery
	}
	if c.TopKPerSubQuery > c.MaxTopKPerSubQuery {
		c.TopKPerSubQuery = c.MaxTopKPerSubQuery
	}
	if c.RRFConstant <= 0 {
		c.RRFConstant = d.RRFConstant
	}
	if c.QualityThreshold <= 0 {
		c.QualityThreshold = d.QualityThreshold
	}
	if c.NeighborRadius <= 0 {
		c.NeighborRadius = d.NeighborRadius
	}
	if c.MaxSubQueries <= 0 {
		c.MaxSubQueries = d.MaxSubQueries
	}
	if c.MinKeywordLength <= 0 {
		c.MinKeywordLength = d.MinKeywordLength
	}
	return c
}

// DenseHit is one result of a dense vector search, carrying the raw
// cosine-similarity score so the quality gate can be evaluated against
// it even when no reranker is configured.
type DenseHit struct {
	Scene SceneRef
	Score float64
}

// DenseSearcher performs vector similarity search against per-scene
// embeddings, implemented by a storage adapter wrapping pgvector.
type DenseSearcher interface {
	SearchDense(ctx context.Context, storyID, branchID int64, query string, topK int, excludeSequences []int) ([]DenseHit, error)
}

// SceneReader loads scene content and neighbor metadata, shared with
// pkg/narrative/recallagent's tools.
type SceneReader interface {
	ReadScene(ctx context.Context, storyID, branchID int64, sequence int) (SceneRef, error)
	ReadScenesInRange(ctx context.Context, storyID, branchID int64, minSeq, maxSeq int) ([]SceneRef, error)
	ReadChapterScenes(ctx context.Context, storyID, branchID int64, chapterNumber int) ([]SceneRef, error)
}

// Reranker scores a query against a small candidate set with a more
// expensive cross-encoder model. Optional; callers without one skip
// stage 5 entirely.
type Reranker interface {
	Rerank(ctx context.Context, query string, candidates []string) ([]float64, error)
}
