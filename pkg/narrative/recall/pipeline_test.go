package recall

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDenseSearcher struct {
	bySubQuery map[string][]DenseHit
	err        error
}

func (f *fakeDenseSearcher) SearchDense(ctx context.Context, storyID, branchID int64, query string, topK int, excludeSequences []int) ([]DenseHit, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.bySubQuery[query], nil
}

type fakeEventStore struct {
	events []Event
	err    error
}

func (f *fakeEventStore) EventsForBranch(ctx context.Context, storyID, branchID int64) ([]Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.events, nil
}

type fakeSceneReader struct {
	byID map[int]SceneRef
	err  error
}

func (f *fakeSceneReader) ReadScene(ctx context.Context, storyID, branchID int64, sequence int) (SceneRef, error) {
	s, ok := f.byID[sequence]
	if !ok {
		return SceneRef{}, fmt.Errorf("not found")
	}
	return s, nil
}

func (f *fakeSceneReader) ReadScenesInRange(ctx context.Context, storyID, branchID int64, minSeq, maxSeq int) ([]SceneRef, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []SceneRef
	for seq, s := range f.byID {
		if seq >= minSeq && seq <= maxSeq {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSceneReader) ReadChapterScenes(ctx context.Context, storyID, branchID int64, chapterNumber int) ([]SceneRef, error) {
	return f.ReadScenesInRange(ctx, storyID, branchID, 0, 1000)
}

type fakeReranker struct {
	scores []float64
	err    error
}

func (f *fakeReranker) Rerank(ctx context.Context, query string, candidates []string) ([]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.scores, nil
}

func basicSceneReader() *fakeSceneReader {
	return &fakeSceneReader{byID: map[int]SceneRef{
		4: {SceneID: 4, Sequence: 4, Content: "Elena enters the hallway."},
		5: {SceneID: 5, Sequence: 5, Content: "Elena finds the hidden letter."},
		6: {SceneID: 6, Sequence: 6, Content: "Elena reads the letter aloud."},
	}}
}

func TestPipeline_DirectIntentShortCircuits(t *testing.T) {
	p := NewPipeline(&fakeDenseSearcher{}, &fakeEventStore{}, basicSceneReader(), nil, DefaultConfig(), nil)
	_, ok := p.Search(context.Background(), 1, 1, Decomposition{Intent: IntentDirect}, nil)
	assert.False(t, ok)
}

func TestPipeline_QualityGatePassesAboveThreshold(t *testing.T) {
	dense := &fakeDenseSearcher{bySubQuery: map[string][]DenseHit{
		"hidden letter": {
			{Scene: SceneRef{SceneID: 5, Sequence: 5, Content: "Elena finds the hidden letter."}, Score: 0.85},
		},
	}}
	p := NewPipeline(dense, &fakeEventStore{}, basicSceneReader(), nil, DefaultConfig(), nil)
	result, ok := p.Search(context.Background(), 1, 1, Decomposition{
		Intent:     IntentRecall,
		SubQueries: []string{"hidden letter"},
	}, nil)
	require.True(t, ok)
	assert.Contains(t, result.Text, "Scene 5")
	assert.GreaterOrEqual(t, result.TopScore, 0.60)
}

func TestPipeline_QualityGateRejectsBelowThreshold(t *testing.T) {
	dense := &fakeDenseSearcher{bySubQuery: map[string][]DenseHit{
		"vague query": {
			{Scene: SceneRef{SceneID: 5, Sequence: 5, Content: "Elena finds the hidden letter."}, Score: 0.2},
		},
	}}
	p := NewPipeline(dense, &fakeEventStore{}, basicSceneReader(), nil, DefaultConfig(), nil)
	_, ok := p.Search(context.Background(), 1, 1, Decomposition{
		Intent:     IntentRecall,
		SubQueries: []string{"vague query"},
	}, nil)
	assert.False(t, ok)
}

func TestPipeline_EmptyCandidatesReturnsFalse(t *testing.T) {
	p := NewPipeline(&fakeDenseSearcher{}, &fakeEventStore{}, basicSceneReader(), nil, DefaultConfig(), nil)
	_, ok := p.Search(context.Background(), 1, 1, Decomposition{
		Intent:     IntentRecall,
		SubQueries: []string{"nothing matches"},
	}, nil)
	assert.False(t, ok)
}

func TestPipeline_NeighborExpansionIncludesAdjacentScenes(t *testing.T) {
	dense := &fakeDenseSearcher{bySubQuery: map[string][]DenseHit{
		"the letter": {
			{Scene: SceneRef{SceneID: 5, Sequence: 5, Content: "Elena finds the hidden letter."}, Score: 0.9},
		},
	}}
	p := NewPipeline(dense, &fakeEventStore{}, basicSceneReader(), nil, DefaultConfig(), nil)
	result, ok := p.Search(context.Background(), 1, 1, Decomposition{
		Intent:     IntentRecall,
		SubQueries: []string{"the letter"},
	}, nil)
	require.True(t, ok)
	assert.Contains(t, result.Text, "Scene 4")
	assert.Contains(t, result.Text, "Scene 5")
	assert.Contains(t, result.Text, "Scene 6")
}

func TestPipeline_DenseSearchFailureIsNonFatal(t *testing.T) {
	dense := &fakeDenseSearcher{err: fmt.Errorf("connection refused")}
	events := &fakeEventStore{events: []Event{
		{SceneID: 5, Sequence: 5, EventText: "Elena finds the hidden letter in the study"},
	}}
	p := NewPipeline(dense, events, basicSceneReader(), nil, DefaultConfig(), nil)
	// Sparse alone can't reach the quality gate (no BestDenseScore, no rerank),
	// so this should fail the gate rather than panicking or erroring.
	_, ok := p.Search(context.Background(), 1, 1, Decomposition{
		Intent:     IntentRecall,
		SubQueries: []string{"hidden letter study"},
	}, nil)
	assert.False(t, ok)
}

func TestPipeline_RerankerReordersAndCanPassGate(t *testing.T) {
	dense := &fakeDenseSearcher{bySubQuery: map[string][]DenseHit{
		"the letter": {
			{Scene: SceneRef{SceneID: 5, Sequence: 5, Content: "Elena finds the hidden letter."}, Score: 0.1},
		},
	}}
	reranker := &fakeReranker{scores: []float64{0.95}}
	p := NewPipeline(dense, &fakeEventStore{}, basicSceneReader(), reranker, DefaultConfig(), nil)
	result, ok := p.Search(context.Background(), 1, 1, Decomposition{
		Intent:     IntentRecall,
		SubQueries: []string{"the letter"},
	}, nil)
	require.True(t, ok)
	assert.GreaterOrEqual(t, result.TopScore, 0.60)
}

func TestPipeline_EventStoreFailureFallsBackToDenseOnly(t *testing.T) {
	dense := &fakeDenseSearcher{bySubQuery: map[string][]DenseHit{
		"the letter": {
			{Scene: SceneRef{SceneID: 5, Sequence: 5, Content: "Elena finds the hidden letter."}, Score: 0.9},
		},
	}}
	events := &fakeEventStore{err: fmt.Errorf("index unavailable")}
	p := NewPipeline(dense, events, basicSceneReader(), nil, DefaultConfig(), nil)
	result, ok := p.Search(context.Background(), 1, 1, Decomposition{
		Intent:     IntentRecall,
		SubQueries: []string{"the letter"},
	}, nil)
	require.True(t, ok)
	assert.Contains(t, result.Text, "Scene 5")
}
