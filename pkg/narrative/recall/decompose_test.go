package recall

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kahani-engine/narrative/pkg/llmprovider/mock"
)

func TestDecompose_SuccessfulParse(t *testing.T) {
	provider := &mock.Provider{Responses: []string{
		`{"intent": "recall", "temporal_hint": "past", "sub_queries": ["what did Elena find in the study"], "keywords": ["letter", "study"]}`,
	}}
	d, err := Decompose(context.Background(), provider, "What did she find earlier?", nil, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, IntentRecall, d.Intent)
	assert.Equal(t, TemporalPast, d.Temporal)
	assert.Equal(t, []string{"what did Elena find in the study"}, d.SubQueries)
	assert.Equal(t, []string{"letter", "study"}, d.Keywords)
}

func TestDecompose_UnrecognizedIntentAndTemporalFallBackToDefaults(t *testing.T) {
	provider := &mock.Provider{Responses: []string{
		`{"intent": "unknown_value", "temporal_hint": "whenever", "sub_queries": ["x"], "keywords": ["keyword"]}`,
	}}
	d, err := Decompose(context.Background(), provider, "hello", nil, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, IntentRecall, d.Intent)
	assert.Equal(t, TemporalAny, d.Temporal)
}

func TestDecompose_CapsSubQueriesAtMaxSubQueries(t *testing.T) {
	provider := &mock.Provider{Responses: []string{
		`{"intent": "recall", "temporal_hint": "any", "sub_queries": ["a","b","c","d","e","f","g"], "keywords": ["keyword"]}`,
	}}
	cfg := DefaultConfig()
	cfg.MaxSubQueries = 3
	d, err := Decompose(context.Background(), provider, "hello", nil, cfg)
	require.NoError(t, err)
	assert.Len(t, d.SubQueries, 3)
}

func TestDecompose_EmptySubQueriesFallsBackToUserInput(t *testing.T) {
	provider := &mock.Provider{Responses: []string{
		`{"intent": "direct", "temporal_hint": "any", "sub_queries": [], "keywords": []}`,
	}}
	d, err := Decompose(context.Background(), provider, "Where are we right now?", nil, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, []string{"Where are we right now?"}, d.SubQueries)
}

func TestDecompose_SynthesizesKeywordsWhenModelOmitsThem(t *testing.T) {
	provider := &mock.Provider{Responses: []string{
		`{"intent": "recall", "temporal_hint": "past", "sub_queries": ["the hidden letter in the study"], "keywords": []}`,
	}}
	d, err := Decompose(context.Background(), provider, "hello", nil, DefaultConfig())
	require.NoError(t, err)
	assert.Contains(t, d.Keywords, "hidden")
	assert.Contains(t, d.Keywords, "letter")
	assert.Contains(t, d.Keywords, "study")
	assert.NotContains(t, d.Keywords, "the")
}

func TestDecompose_MalformedJSONReturnsError(t *testing.T) {
	provider := &mock.Provider{Responses: []string{"not json at all"}}
	_, err := Decompose(context.Background(), provider, "hello", nil, DefaultConfig())
	assert.Error(t, err)
}
