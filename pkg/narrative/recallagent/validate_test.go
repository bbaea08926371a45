package recallagent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kahani-engine/narrative/pkg/llmprovider/mock"
	"github.com/kahani-engine/narrative/pkg/narrative/recall"
)

func sampleScenes() []recall.SceneRef {
	return []recall.SceneRef{
		{SceneID: 1, Sequence: 3, Content: "Elena finds the letter."},
		{SceneID: 2, Sequence: 7, Content: "Marcus confronts the guard."},
	}
}

func TestValidate_KeepsOnlyTrueVerdicts(t *testing.T) {
	provider := &mock.Provider{Responses: []string{`{"3": true, "7": false}`}}
	kept, err := Validate(context.Background(), provider, "what did Elena find?", sampleScenes())
	require.NoError(t, err)
	require.Len(t, kept, 1)
	assert.Equal(t, 3, kept[0].Sequence)
}

func TestValidate_AllRejectedFallsBackToOriginal(t *testing.T) {
	provider := &mock.Provider{Responses: []string{`{"3": false, "7": false}`}}
	kept, err := Validate(context.Background(), provider, "what did Elena find?", sampleScenes())
	require.NoError(t, err)
	assert.Equal(t, sampleScenes(), kept)
}

func TestValidate_EmptyInputShortCircuits(t *testing.T) {
	provider := &mock.Provider{}
	kept, err := Validate(context.Background(), provider, "anything", nil)
	require.NoError(t, err)
	assert.Empty(t, kept)
	assert.Empty(t, provider.CompleteCalls)
}

func TestValidate_MalformedJSONFallsBackToOriginal(t *testing.T) {
	provider := &mock.Provider{Responses: []string{"not json at all"}}
	kept, err := Validate(context.Background(), provider, "anything", sampleScenes())
	assert.Error(t, err)
	assert.Equal(t, sampleScenes(), kept)
}
