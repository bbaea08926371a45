package npc

import (
	"context"
	"log/slog"
)

// ProfileExtractor extracts a full character profile for an NPC once it
// crosses the importance threshold. This module ships no implementation;
// callers supply one and tests stub it.
type ProfileExtractor interface {
	ExtractProfile(ctx context.Context, storyID, branchID int64, characterName string) (Profile, error)
}

// Tracker is the write path for NPC mentions: it records a [Mention],
// merges it into the right [Tracking] record (resolving near-duplicate
// names via [CanonicalName]), recomputes that record's importance score,
// and latches CrossedThreshold the first time the score clears
// ImportanceThreshold — triggering a one-time profile extraction.
type Tracker struct {
	store    Store
	extract  ProfileExtractor
	cfg      ScoringConfig
	// ImportanceThreshold is the score at which an NPC is promoted into
	// the tiered context rosters and a full profile is extracted.
	ImportanceThreshold float64
	logger              *slog.Logger
}

// NewTracker constructs a Tracker. extract may be nil, in which case
// threshold crossings are recorded but no profile is extracted.
func NewTracker(store Store, extract ProfileExtractor, cfg ScoringConfig, importanceThreshold float64, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{store: store, extract: extract, cfg: cfg, ImportanceThreshold: importanceThreshold, logger: logger}
}

// TrackScene records every validated mention found in one scene, merging
// each into its tracking record. totalScenesInStory and sceneSequence
// feed [Recompute]'s frequency and recency calculations.
func (t *Tracker) TrackScene(ctx context.Context, storyID, branchID, sceneID int64, sequence int, mentions []ExtractedNPC, totalScenesInStory int) (int, error) {
	tracked := 0
	for _, m := range mentions {
		if m.MentionCount < 1 {
			continue
		}
		if err := t.trackOne(ctx, storyID, branchID, sceneID, sequence, m, totalScenesInStory); err != nil {
			t.logger.Error("track npc mention failed", "character", m.Name, "error", err)
			continue
		}
		tracked++
	}
	return tracked, nil
}

func (t *Tracker) trackOne(ctx context.Context, storyID, branchID, sceneID int64, sequence int, m ExtractedNPC, totalScenesInStory int) error {
	existing, err := t.store.ListTracking(ctx, storyID, branchID)
	if err != nil {
		return err
	}

	name := m.Name
	if canonical, ok := CanonicalName(name, existing); ok {
		t.logger.Info("merging npc name into canonical entry", "from", name, "to", canonical)
		name = canonical
	}

	if _, err := t.store.CreateMention(ctx, Mention{
		StoryID:          storyID,
		BranchID:         branchID,
		SceneID:          sceneID,
		CharacterName:    name,
		SequenceNumber:   sequence,
		MentionCount:     m.MentionCount,
		HasDialogue:      m.HasDialogue,
		HasActions:       m.HasActions,
		HasRelationships: m.HasRelationships,
		ContextSnippets:  m.ContextSnippets,
		Properties:       m.Properties,
	}); err != nil {
		return err
	}

	tracking, err := t.store.GetTracking(ctx, storyID, branchID, name)
	if err != nil {
		entityType := EntityType(m.EntityType)
		if entityType == "" {
			entityType = EntityCharacter
		}
		tracking = Tracking{
			StoryID:              storyID,
			BranchID:             branchID,
			CharacterName:        name,
			EntityType:           entityType,
			FirstAppearanceScene: sequence,
		}
	}

	tracking.TotalMentions += m.MentionCount
	tracking.LastAppearanceScene = sequence
	if m.HasDialogue {
		tracking.HasDialogueCount++
	}
	if m.HasActions {
		tracking.HasActionsCount++
	}

	sceneIDs, err := t.store.MentionScenesFor(ctx, storyID, branchID, name)
	if err != nil {
		return err
	}
	tracking.SceneCount = len(sceneIDs)

	Recompute(&tracking, totalScenesInStory, sequence, t.cfg)

	if !tracking.CrossedThreshold && tracking.ImportanceScore >= t.ImportanceThreshold {
		tracking.CrossedThreshold = true
		t.logger.Info("npc crossed importance threshold", "character", name, "score", tracking.ImportanceScore)

		if t.extract != nil && !tracking.ProfileExtracted {
			profile, err := t.extract.ExtractProfile(ctx, storyID, branchID, name)
			if err != nil {
				t.logger.Warn("npc profile extraction failed", "character", name, "error", err)
			} else {
				tracking.ExtractedProfile = &profile
				tracking.ProfileExtracted = true
			}
		}
	}

	_, err = t.store.UpsertTracking(ctx, tracking)
	return err
}

// RecalculateAll recomputes every tracked NPC's importance score for a
// branch without touching mention counts — used after a scene is edited
// or deleted and scene totals shift.
func (t *Tracker) RecalculateAll(ctx context.Context, storyID, branchID int64, totalScenesInStory, currentSceneSequence int) (int, error) {
	tracked, err := t.store.ListTracking(ctx, storyID, branchID)
	if err != nil {
		return 0, err
	}
	for _, tr := range tracked {
		Recompute(&tr, totalScenesInStory, currentSceneSequence, t.cfg)
		if _, err := t.store.UpsertTracking(ctx, tr); err != nil {
			return 0, err
		}
	}
	return len(tracked), nil
}

// Snapshot builds and persists the tiered NPC view for one scene.
func (t *Tracker) Snapshot(ctx context.Context, in TieringInput, sceneID, storyID, branchID int64) (Snapshot, error) {
	active, inactive := BuildSnapshot(in)
	return t.store.PutSnapshot(ctx, Snapshot{
		SceneID:            sceneID,
		SceneSequence:      in.SceneSequence,
		StoryID:            storyID,
		BranchID:           branchID,
		ChapterID:          in.ChapterID,
		ActiveForContext:   active,
		InactiveForContext: inactive,
	})
}
