package npc

import "math"

// ScoringConfig holds the tunables that shape importance scoring and
// recency decay, mirroring [github.com/kahani-engine/narrative/internal/config.TuningConfig].
type ScoringConfig struct {
	// InactiveWindow is the decay window: scores hold steady within it and
	// decay over an equal span beyond it. Tier classification
	// ([ClassifyTier]) does not use it.
	InactiveWindow int
	// RecencyDecayFloor is the minimum multiplier a fully-decayed score is
	// still scaled by, so an NPC absent for a long stretch can regain
	// prominence quickly if they reappear rather than starting from zero.
	RecencyDecayFloor float64
}

// dialogueActionPointsPerScene is the per-scene weight contributed toward
// the significance score by either dialogue or action presence.
const dialogueActionPointsPerScene = 3.0

const (
	maxMentionScore      = 50.0
	maxSceneScore        = 20.0
	maxDialogueScore     = 15.0
	maxActionScore       = 15.0
	maxFrequencyScore    = maxMentionScore + maxSceneScore
	maxSignificanceScore = maxDialogueScore + maxActionScore
	maxBaseScore         = 100.0
)

// Recompute updates t's FrequencyScore, SignificanceScore, and
// ImportanceScore in place from its current totals.
//
// FrequencyScore (0-70) blends a logarithmic mention count (so the first
// ten mentions matter far more than the hundredth) with linear scene
// coverage. SignificanceScore (0-30) rewards scenes where the NPC spoke
// or acted, capped independently for each. The two sum to a base score
// out of 100, which is then scaled down by recency decay if the NPC
// hasn't appeared in currentSceneSequence - t.LastAppearanceScene scenes
// within cfg.InactiveWindow.
func Recompute(t *Tracking, totalScenesInStory int, currentSceneSequence int, cfg ScoringConfig) {
	if totalScenesInStory <= 0 {
		t.FrequencyScore = 0
		t.SignificanceScore = 0
		t.ImportanceScore = 0
		return
	}

	mentionScore := 0.0
	if t.TotalMentions > 0 {
		mentionScore = math.Min(10+math.Log10(float64(t.TotalMentions))*20, maxMentionScore)
	}
	scenePercentage := float64(t.SceneCount) / float64(totalScenesInStory)
	sceneScore := scenePercentage * maxSceneScore
	t.FrequencyScore = mentionScore + sceneScore

	significance := 0.0
	if t.HasDialogueCount > 0 {
		significance += math.Min(float64(t.HasDialogueCount)*dialogueActionPointsPerScene, maxDialogueScore)
	}
	if t.HasActionsCount > 0 {
		significance += math.Min(float64(t.HasActionsCount)*dialogueActionPointsPerScene, maxActionScore)
	}
	t.SignificanceScore = significance

	baseScore := math.Min(t.FrequencyScore+t.SignificanceScore, maxBaseScore)

	t.ImportanceScore = baseScore * RecencyFactor(t.LastAppearanceScene, currentSceneSequence, cfg)
}

// RecencyFactor returns the multiplier a base importance score is scaled
// by given how many scenes have elapsed since lastAppearanceScene. It
// stays at 1.0 within cfg.InactiveWindow scenes, then decays linearly
// down to cfg.RecencyDecayFloor over the next cfg.InactiveWindow scenes,
// holding at the floor beyond that.
func RecencyFactor(lastAppearanceScene, currentSceneSequence int, cfg ScoringConfig) float64 {
	scenesSince := currentSceneSequence - lastAppearanceScene
	if scenesSince <= cfg.InactiveWindow {
		return 1.0
	}
	if cfg.InactiveWindow <= 0 {
		return cfg.RecencyDecayFloor
	}
	excess := scenesSince - cfg.InactiveWindow
	decayRate := math.Min(float64(excess)/float64(cfg.InactiveWindow), 1.0)
	span := 1.0 - cfg.RecencyDecayFloor
	factor := 1.0 - decayRate*span
	return math.Max(cfg.RecencyDecayFloor, factor)
}
