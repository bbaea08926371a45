package branch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedStory(t *testing.T, s *MemStore) (Story, Branch) {
	t.Helper()
	ctx := context.Background()

	st, err := s.CreateStory(ctx, Story{Title: "The Hollow Keep"})
	require.NoError(t, err)

	b, err := s.CreateBranch(ctx, Branch{StoryID: st.ID, Name: "main"})
	require.NoError(t, err)

	return st, b
}

func TestForkBranch_CopiesUpToForkPointAndDropsAfter(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	st, b := seedStory(t, s)

	ch, err := s.CreateChapter(ctx, Chapter{BranchID: b.ID, Number: 1, Title: "Arrival"})
	require.NoError(t, err)

	var scenes []Scene
	for i := 1; i <= 5; i++ {
		sc, err := s.CreateScene(ctx, Scene{
			BranchID:  b.ID,
			Sequence:  i,
			ChapterID: &ch.ID,
			Type:      SceneNarrative,
		})
		require.NoError(t, err)
		scenes = append(scenes, sc)
	}

	for _, sc := range scenes {
		_, err := s.CreateSceneVariant(ctx, SceneVariant{
			SceneID:    sc.ID,
			IsOriginal: true,
			Content:    "content",
		})
		require.NoError(t, err)
	}

	result, err := s.Fork(ctx, st.ID, b.ID, 3, "what-if")
	require.NoError(t, err)

	assert.Equal(t, b.ID, *result.NewBranch.ParentBranchID)
	assert.Equal(t, 3, result.NewBranch.ForkedAtSequence)

	newScenes, err := s.ListScenes(ctx, result.NewBranch.ID)
	require.NoError(t, err)
	assert.Len(t, newScenes, 3, "only scenes at or before the fork sequence are cloned")

	for _, sc := range newScenes {
		assert.LessOrEqual(t, sc.Sequence, 3)
		require.NotNil(t, sc.ChapterID)

		variants, err := s.ListSceneVariants(ctx, sc.ID)
		require.NoError(t, err)
		assert.Len(t, variants, 1)
	}

	newChapters, err := s.ListChapters(ctx, result.NewBranch.ID)
	require.NoError(t, err)
	assert.Len(t, newChapters, 1)
}

func TestForkBranch_DropsChoicesLeadingPastTheForkPoint(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	st, b := seedStory(t, s)

	sc1, err := s.CreateScene(ctx, Scene{BranchID: b.ID, Sequence: 1, Type: SceneNarrative})
	require.NoError(t, err)
	sc2, err := s.CreateScene(ctx, Scene{BranchID: b.ID, Sequence: 2, Type: SceneNarrative})
	require.NoError(t, err)

	_, err = s.CreateSceneChoice(ctx, SceneChoice{
		SceneID:        sc1.ID,
		ChoiceText:     "Open the door",
		LeadsToSceneID: &sc2.ID,
	})
	require.NoError(t, err)

	result, err := s.Fork(ctx, st.ID, b.ID, 1, "stopped-at-door")
	require.NoError(t, err)

	newSc1ID, ok := result.SceneIDMap[sc1.ID]
	require.True(t, ok)

	choices, err := s.ListSceneChoices(ctx, newSc1ID)
	require.NoError(t, err)
	require.Len(t, choices, 1)
	assert.Nil(t, choices[0].LeadsToSceneID, "choice leading past the fork boundary should be nilled, not dangling")
}

func TestForkBranch_CarriesForwardTheCharacterRoster(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	st, b := seedStory(t, s)

	c, err := s.CreateCharacter(ctx, Character{StoryID: st.ID, Name: "Lyra"})
	require.NoError(t, err)

	_, err = s.CreateStoryCharacter(ctx, StoryCharacter{
		BranchID:      b.ID,
		CharacterID:   c.ID,
		Talkativeness: 0.8,
		TurnMode:      TurnNatural,
		Relationships: []Relationship{{OtherCharacterID: 99, Type: "ally", Strength: 0.5}},
	})
	require.NoError(t, err)

	result, err := s.Fork(ctx, st.ID, b.ID, 0, "branch-2")
	require.NoError(t, err)

	newRoster, err := s.ListStoryCharacters(ctx, result.NewBranch.ID)
	require.NoError(t, err)
	require.Len(t, newRoster, 1)
	assert.Equal(t, 0.8, newRoster[0].Talkativeness)
	require.Len(t, newRoster[0].Relationships, 1)
	assert.Equal(t, "ally", newRoster[0].Relationships[0].Type)
}

func TestForkBranch_RejectsBranchFromAnotherStory(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	_, b := seedStory(t, s)

	otherStory, err := s.CreateStory(ctx, Story{Title: "Unrelated"})
	require.NoError(t, err)

	_, err = s.Fork(ctx, otherStory.ID, b.ID, 0, "should-fail")
	require.ErrorIs(t, err, ErrForkFailed)
}

func TestForkBranch_StoryFlowRemapsThroughAccumulatedIDMaps(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	st, b := seedStory(t, s)

	sc, err := s.CreateScene(ctx, Scene{BranchID: b.ID, Sequence: 1, Type: SceneNarrative})
	require.NoError(t, err)
	v, err := s.CreateSceneVariant(ctx, SceneVariant{SceneID: sc.ID, IsOriginal: true})
	require.NoError(t, err)

	_, err = s.AppendStoryFlow(ctx, StoryFlow{
		StoryID:        st.ID,
		BranchID:       b.ID,
		SequenceNumber: 1,
		SceneID:        sc.ID,
		SceneVariantID: v.ID,
		IsActive:       true,
	})
	require.NoError(t, err)

	result, err := s.Fork(ctx, st.ID, b.ID, 1, "branch-2")
	require.NoError(t, err)

	flow, err := s.ListStoryFlow(ctx, result.NewBranch.ID)
	require.NoError(t, err)
	require.Len(t, flow, 1)
	assert.Equal(t, result.SceneIDMap[sc.ID], flow[0].SceneID)
	assert.Equal(t, result.SceneVariantIDMap[v.ID], flow[0].SceneVariantID)
}
