// Package branch implements the branch-aware entity store: the narrative
// graph of stories, branches, scenes, scene variants, and characters, plus
// the filtered-clone fork engine that lets a player rewind to an earlier
// point and continue down a new timeline without disturbing the original.
//
// Every row in the graph lives on exactly one Branch (via an explicit
// BranchID field) except Story and Character, which are story-scoped and
// shared across all of a story's branches. IDs are caller-opaque int64
// values assigned by the Store on creation — there is no ORM and no cyclic
// object graph; callers hold IDs and look up related rows through the
// Store, never through embedded pointers.
package branch

import "time"

// SceneType classifies the narrative function of a Scene.
type SceneType string

const (
	SceneNarrative  SceneType = "narrative"
	SceneDialogue   SceneType = "dialogue"
	SceneAction     SceneType = "action"
	SceneDescription SceneType = "description"
)

// TurnMode selects how the engine decides which AI character(s) respond to
// a player utterance in a multi-character scene.
type TurnMode string

const (
	TurnNatural    TurnMode = "natural"
	TurnRoundRobin TurnMode = "round_robin"
	TurnManual     TurnMode = "manual"
)

// Story is the top-level container for a narrative: a title shared by every
// branch forked from it. LastResponderIdx persists the round-robin cursor
// used by TurnRoundRobin across the whole story, not per-branch — forking
// does not reset whose turn it is.
type Story struct {
	ID               int64
	Title            string
	CreatedAt        time.Time
	LastResponderIdx int
}

// Branch is one timeline within a Story. A Branch with a non-nil
// ParentBranchID was produced by Fork: everything up to and including
// ForkedAtSequence was cloned from the parent, and the two branches are
// identical up to that point and diverge after it.
type Branch struct {
	ID               int64
	StoryID          int64
	Name             string
	ParentBranchID   *int64
	ForkedAtSequence int
	CreatedAt        time.Time
}

// Chapter groups a contiguous run of scenes within a Branch under a title,
// used to scope NPC tiering's "same chapter" rule and to label context for
// the player.
type Chapter struct {
	ID       int64
	BranchID int64
	Number   int
	Title    string
}

// Scene is one narrative beat within a Branch, addressed by its Sequence
// within that branch. ParentSceneID/IsDeleted/DeletionPoint preserve the
// legacy linear-branching fields the original system stored alongside the
// newer Branch-based model; the engine reads Branch+Sequence as the source
// of truth and treats these as historical metadata.
type Scene struct {
	ID            int64
	BranchID      int64
	Sequence      int
	ChapterID     *int64
	Type          SceneType
	ParentSceneID *int64
	IsDeleted     bool
	DeletionPoint *int
}

// SceneVariant holds one generated or edited rendition of a Scene's prose.
// A Scene may accumulate several variants (regenerations, user edits); the
// one with IsOriginal true (or the highest VariantNumber lacking an
// explicit active pointer) is the one context assembly reads by default.
type SceneVariant struct {
	ID                int64
	SceneID           int64
	VariantNumber     int
	IsOriginal        bool
	Content           string
	Title             string
	CharactersPresent []string
	Location          string
	Mood              string
	GenerationPrompt  string
	GenerationMethod  string // "auto" | "user_edit" | "regenerate"
	OriginalContent   string
	UserEdited        bool
	UserRating        *int
	IsFavorite        bool
}

// SceneChoice is a player-facing branch point offered at the end of a
// Scene.
type SceneChoice struct {
	ID             int64
	SceneID        int64
	ChoiceText     string
	ChoiceOrder    int
	TimesSelected  int
	LeadsToSceneID *int64
}

// StoryFlow records the realized sequence of scenes actually played within
// a Branch — the edit log that Fork replays up to ForkedAtSequence and that
// context assembly's recent-turns window scans backward from.
type StoryFlow struct {
	ID             int64
	StoryID        int64
	BranchID       int64
	SequenceNumber int
	SceneID        int64
	SceneVariantID int64
	FromChoiceID   *int64
	ChoiceText     string
	IsActive       bool
}

// Character is a story-scoped roster entry: a player character or an AI
// character eligible for promotion from an NPC (see
// [github.com/kahani-engine/narrative/pkg/narrative/npc]).
type Character struct {
	ID                int64
	StoryID           int64
	Name              string
	Description       string
	IsPlayerCharacter bool
}

// Relationship is one directed edge in a StoryCharacter's relationship
// list, e.g. "Bram trusts Lyra (strength 0.7)".
type Relationship struct {
	OtherCharacterID int64
	Type             string
	Strength         float64
	ArcSummary       string
}

// StoryCharacter binds a Character to a Branch with branch-local state:
// how talkative it is in TurnNatural resolution, its relationships, and
// which TurnMode governs it.
type StoryCharacter struct {
	ID            int64
	BranchID      int64
	CharacterID   int64
	Talkativeness float64
	Relationships []Relationship
	TurnMode      TurnMode
}
