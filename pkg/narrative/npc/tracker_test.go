package npc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExtractor struct {
	profile Profile
	calls   int
}

func (s *stubExtractor) ExtractProfile(ctx context.Context, storyID, branchID int64, characterName string) (Profile, error) {
	s.calls++
	return s.profile, nil
}

func TestTracker_TrackScene_AccumulatesMentionsAcrossScenes(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	tracker := NewTracker(store, nil, ScoringConfig{InactiveWindow: 10, RecencyDecayFloor: 0.3}, 50, nil)

	n, err := tracker.TrackScene(ctx, 1, 1, 100, 1, []ExtractedNPC{
		{Name: "Bram", EntityType: "CHARACTER", MentionCount: 3, HasDialogue: true},
	}, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = tracker.TrackScene(ctx, 1, 1, 101, 2, []ExtractedNPC{
		{Name: "Bram", EntityType: "CHARACTER", MentionCount: 2, HasDialogue: true},
	}, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	tracking, err := store.GetTracking(ctx, 1, 1, "Bram")
	require.NoError(t, err)
	assert.Equal(t, 5, tracking.TotalMentions)
	assert.Equal(t, 2, tracking.HasDialogueCount)
	assert.Equal(t, 2, tracking.SceneCount)
}

func TestTracker_TrackScene_CrossingThresholdTriggersProfileExtraction(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	extractor := &stubExtractor{profile: Profile{Role: "blacksmith"}}
	tracker := NewTracker(store, extractor, ScoringConfig{InactiveWindow: 10, RecencyDecayFloor: 0.3}, 10, nil)

	_, err := tracker.TrackScene(ctx, 1, 1, 100, 1, []ExtractedNPC{
		{Name: "Bram", EntityType: "CHARACTER", MentionCount: 50, HasDialogue: true, HasActions: true},
	}, 1)
	require.NoError(t, err)

	tracking, err := store.GetTracking(ctx, 1, 1, "Bram")
	require.NoError(t, err)
	assert.True(t, tracking.CrossedThreshold)
	assert.True(t, tracking.ProfileExtracted)
	require.NotNil(t, tracking.ExtractedProfile)
	assert.Equal(t, "blacksmith", tracking.ExtractedProfile.Role)
	assert.Equal(t, 1, extractor.calls)

	// A second mention shouldn't re-trigger extraction.
	_, err = tracker.TrackScene(ctx, 1, 1, 101, 2, []ExtractedNPC{
		{Name: "Bram", EntityType: "CHARACTER", MentionCount: 10},
	}, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, extractor.calls)
}

func TestTracker_TrackScene_MergesNearDuplicateNames(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	tracker := NewTracker(store, nil, ScoringConfig{InactiveWindow: 10, RecencyDecayFloor: 0.3}, 50, nil)

	_, err := tracker.TrackScene(ctx, 1, 1, 100, 1, []ExtractedNPC{
		{Name: "Reynolds", EntityType: "CHARACTER", MentionCount: 10},
	}, 5)
	require.NoError(t, err)

	_, err = tracker.TrackScene(ctx, 1, 1, 101, 2, []ExtractedNPC{
		{Name: "Raynolds", EntityType: "CHARACTER", MentionCount: 2},
	}, 5)
	require.NoError(t, err)

	all, err := store.ListTracking(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, all, 1, "near-duplicate spellings should merge into one tracking record")
	assert.Equal(t, 12, all[0].TotalMentions)
}

func TestTracker_Snapshot_PersistsTieredView(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	tracker := NewTracker(store, nil, ScoringConfig{InactiveWindow: 10, RecencyDecayFloor: 0.3}, 50, nil)

	in := TieringInput{
		Tracked: []Tracking{
			{CharacterName: "Bram", EntityType: EntityCharacter, CrossedThreshold: true, LastAppearanceScene: 5, ImportanceScore: 80},
		},
		SceneSequence: 5,
		ActiveWindow:  5,
	}

	snap, err := tracker.Snapshot(ctx, in, 200, 1, 1)
	require.NoError(t, err)
	require.Len(t, snap.ActiveForContext, 1)

	fromStore, err := store.GetSnapshotForScene(ctx, 200)
	require.NoError(t, err)
	assert.Equal(t, "Bram", fromStore.ActiveForContext[0].Name)
}
