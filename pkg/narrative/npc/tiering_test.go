package npc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyTier_DormantWhenThresholdNeverCrossed(t *testing.T) {
	tier := ClassifyTier(Tracking{EntityType: EntityCharacter}, 10, false, 5)
	assert.Equal(t, TierDormant, tier)
}

func TestClassifyTier_DormantWhenConvertedToCharacter(t *testing.T) {
	tr := Tracking{EntityType: EntityCharacter, CrossedThreshold: true, ConvertedToCharacter: true, LastAppearanceScene: 10}
	assert.Equal(t, TierDormant, ClassifyTier(tr, 10, false, 5))
}

func TestClassifyTier_ActiveWithinRecencyWindow(t *testing.T) {
	tr := Tracking{EntityType: EntityCharacter, CrossedThreshold: true, LastAppearanceScene: 8}
	assert.Equal(t, TierActive, ClassifyTier(tr, 10, false, 5))
}

func TestClassifyTier_ActiveWhenInCurrentChapterEvenIfStale(t *testing.T) {
	tr := Tracking{EntityType: EntityCharacter, CrossedThreshold: true, LastAppearanceScene: 1}
	assert.Equal(t, TierActive, ClassifyTier(tr, 50, true, 5))
}

func TestClassifyTier_InactiveBeyondActiveWindow(t *testing.T) {
	tr := Tracking{EntityType: EntityCharacter, CrossedThreshold: true, LastAppearanceScene: 10}
	assert.Equal(t, TierInactive, ClassifyTier(tr, 17, false, 5))
}

func TestBuildSnapshot_CapsEachTierAndOrdersByImportance(t *testing.T) {
	var tracked []Tracking
	for i := 0; i < 15; i++ {
		tracked = append(tracked, Tracking{
			CharacterName:       "npc",
			EntityType:          EntityCharacter,
			CrossedThreshold:    true,
			LastAppearanceScene: 10,
			ImportanceScore:     float64(i),
		})
	}

	active, inactive := BuildSnapshot(TieringInput{
		Tracked:       tracked,
		SceneSequence: 10,
		ActiveWindow:  5,
	})

	require.Len(t, active, TierCap)
	assert.Empty(t, inactive)
}

func TestBuildSnapshot_RendersFullProfileForActiveOnly(t *testing.T) {
	profile := Profile{Role: "blacksmith", Description: "forges blades"}
	tracked := []Tracking{
		{CharacterName: "Bram", EntityType: EntityCharacter, CrossedThreshold: true, LastAppearanceScene: 18, ExtractedProfile: &profile, ImportanceScore: 90},
		{CharacterName: "Lyra", EntityType: EntityCharacter, CrossedThreshold: true, LastAppearanceScene: 1, ExtractedProfile: &profile, ImportanceScore: 80},
	}

	active, inactive := BuildSnapshot(TieringInput{
		Tracked:       tracked,
		SceneSequence: 20,
		ActiveWindow:  5,
	})

	require.Len(t, active, 1)
	assert.Equal(t, "blacksmith", active[0].Role)
	assert.Equal(t, "forges blades", active[0].Description)

	require.Len(t, inactive, 1)
	assert.Equal(t, "blacksmith", inactive[0].Role)
	assert.Empty(t, inactive[0].Description)
}
