// Package npc tracks non-player characters mentioned in scenes that were
// never added to a story's explicit roster, scores their narrative
// importance, and promotes the ones that matter into the tiered lists
// context assembly pulls from.
//
// Three kinds of record flow through the package: a [Mention] is one
// scene's raw sighting of a name; a [Tracking] record aggregates every
// mention of that name across a branch into a running importance score;
// a [Snapshot] freezes the tiered view as of one scene so later scenes
// keep reading the same roster until the next extraction pass recomputes
// it.
package npc

import "time"

// EntityType classifies an extracted name. Only CHARACTER rows are
// eligible for tiering and context inclusion — ENTITY rows (locations,
// organizations, objects) are persisted for completeness but filtered out
// everywhere a roster is read.
type EntityType string

const (
	EntityCharacter EntityType = "CHARACTER"
	EntityOther     EntityType = "ENTITY"
)

// Tier classifies how prominently a tracked NPC should surface in
// assembled context.
type Tier string

const (
	TierActive   Tier = "active"
	TierInactive Tier = "inactive"
	TierDormant  Tier = "dormant"
)

// Mention is one scene's sighting of a name, as extracted by the LLM
// extraction pass and validated by [ValidateExtracted].
type Mention struct {
	ID               int64
	StoryID          int64
	BranchID         int64
	SceneID          int64
	CharacterName    string
	SequenceNumber   int
	MentionCount     int
	HasDialogue      bool
	HasActions       bool
	HasRelationships bool
	ContextSnippets  []string
	Properties       map[string]string
	CreatedAt        time.Time
}

// Profile is a full character sketch extracted once a tracked NPC crosses
// the importance threshold.
type Profile struct {
	Name          string
	Role          string
	Description   string
	Personality   []string
	Background    string
	Goals         string
	Relationships map[string]string
	Appearance    string
}

// Tracking is the aggregated record for one name within one branch: the
// running totals [Recompute] reads to compute ImportanceScore, plus the
// status flags that gate one-time profile extraction and promotion.
type Tracking struct {
	ID                    int64
	StoryID               int64
	BranchID              int64
	CharacterName         string
	EntityType            EntityType
	TotalMentions         int
	SceneCount            int
	FirstAppearanceScene  int
	LastAppearanceScene   int
	HasDialogueCount      int
	HasActionsCount       int
	SignificanceScore     float64
	FrequencyScore        float64
	ImportanceScore       float64
	ExtractedProfile      *Profile
	CrossedThreshold      bool
	UserPrompted          bool
	ProfileExtracted      bool
	ConvertedToCharacter  bool
	LastCalculated        time.Time
}

// ContextEntry is one NPC's rendering for inclusion in assembled context,
// shaped by its tier: active entries carry the full profile, inactive
// entries carry only a name and role.
type ContextEntry struct {
	Name          string
	Role          string
	Description   string
	Personality   string
	Background    string
	Goals         string
	Relationships map[string]string
}

// Snapshot freezes the tiered NPC view as of one scene, so every later
// scene up to the next extraction pass reads an identical roster instead
// of one that shifts as scores are recalculated out from under it.
type Snapshot struct {
	ID                  int64
	SceneID             int64
	SceneSequence       int
	StoryID             int64
	BranchID            int64
	ChapterID           *int64
	ActiveForContext    []ContextEntry
	InactiveForContext  []ContextEntry
	CreatedAt           time.Time
}
