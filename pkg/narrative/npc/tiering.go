package npc

import (
	"sort"
	"strings"
)

// TierCap is the maximum number of NPCs context assembly will pull from
// either the active or the inactive tier.
const TierCap = 10

// TieringInput is everything [BuildSnapshot] needs to classify a story's
// tracked NPCs as of one scene.
type TieringInput struct {
	Tracked            []Tracking
	SceneSequence      int
	ChapterID          *int64
	ChapterNPCNames    map[string]bool // lowercased names mentioned anywhere in the current chapter
	UseChapterAwareness bool
	ActiveWindow       int
}

// ClassifyTier returns the tier a single tracked NPC falls into as of
// sceneSequence. An NPC that never crossed the importance threshold, or
// that has since been promoted to an explicit [branch.Character], is
// always TierDormant regardless of recency — dormant NPCs are persisted
// but excluded from every roster read. Otherwise the NPC is TierActive
// when within activeWindow scenes or in the current chapter, and
// TierInactive however long ago it last appeared; no recency limit moves
// an eligible NPC to TierDormant.
func ClassifyTier(t Tracking, sceneSequence int, inCurrentChapter bool, activeWindow int) Tier {
	if !t.CrossedThreshold || t.ConvertedToCharacter || t.EntityType != EntityCharacter {
		return TierDormant
	}

	scenesSinceAppearance := sceneSequence - t.LastAppearanceScene
	if scenesSinceAppearance <= activeWindow || inCurrentChapter {
		return TierActive
	}
	return TierInactive
}

// BuildSnapshot classifies every tracked NPC into active/inactive/dormant
// tiers, ordered by ImportanceScore descending within each tier and
// capped at [TierCap], and renders the surviving entries into the shape
// context assembly consumes.
//
// Active entries carry the full extracted profile; inactive entries
// carry only a name and role, since they are mentioned in context purely
// to remind the model they exist, not to drive dialogue.
func BuildSnapshot(in TieringInput) (active, inactive []ContextEntry) {
	sorted := make([]Tracking, len(in.Tracked))
	copy(sorted, in.Tracked)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ImportanceScore > sorted[j].ImportanceScore
	})

	for _, t := range sorted {
		inChapter := in.UseChapterAwareness && in.ChapterNPCNames != nil &&
			in.ChapterNPCNames[strings.ToLower(t.CharacterName)]

		switch ClassifyTier(t, in.SceneSequence, inChapter, in.ActiveWindow) {
		case TierActive:
			if len(active) < TierCap {
				active = append(active, renderActiveEntry(t))
			}
		case TierInactive:
			if len(inactive) < TierCap {
				inactive = append(inactive, renderInactiveEntry(t))
			}
		}
	}

	return active, inactive
}

func renderActiveEntry(t Tracking) ContextEntry {
	entry := ContextEntry{Name: t.CharacterName, Role: "NPC"}
	if t.ExtractedProfile != nil {
		p := t.ExtractedProfile
		if p.Role != "" {
			entry.Role = p.Role
		}
		entry.Description = p.Description
		entry.Background = p.Background
		entry.Goals = p.Goals
		entry.Relationships = p.Relationships
		if len(p.Personality) > 0 {
			entry.Personality = strings.Join(p.Personality, ", ")
		}
	}
	return entry
}

func renderInactiveEntry(t Tracking) ContextEntry {
	role := "NPC"
	if t.ExtractedProfile != nil && t.ExtractedProfile.Role != "" {
		role = t.ExtractedProfile.Role
	}
	return ContextEntry{Name: t.CharacterName, Role: role}
}
