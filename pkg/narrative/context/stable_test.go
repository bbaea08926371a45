package context

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildScenario_PlayerModes(t *testing.T) {
	base := ScenarioInfo{Scenario: "A storm rolls in", PlayerName: "Kara"}

	character := buildScenario(base)
	assert.Contains(t, character, "The player is roleplaying as Kara.")

	base.PlayerMode = "narrator"
	narrator := buildScenario(base)
	assert.Contains(t, narrator, "acts as Narrator")

	base.PlayerMode = "director"
	director := buildScenario(base)
	assert.Contains(t, director, "acts as Director")
}

func TestBuildScenario_DefaultsPlayerNameWhenMissing(t *testing.T) {
	out := buildScenario(ScenarioInfo{})
	assert.Contains(t, out, "the user")
}

func TestBuildCharacterRoster_SkipsPlayerAndEmptyRoster(t *testing.T) {
	assert.Equal(t, "", buildCharacterRoster(nil))
	assert.Equal(t, "", buildCharacterRoster([]CharacterInfo{{Name: "Kara", IsPlayer: true}}))

	out := buildCharacterRoster([]CharacterInfo{
		{Name: "Kara", IsPlayer: true},
		{Name: "Elena Voss", Description: "a wary scout", Background: "orphaned young", Goals: "find her sister"},
	})
	assert.Contains(t, out, "Elena Voss")
	assert.NotContains(t, out, "Kara")
	assert.Contains(t, out, "wary scout")
	assert.Contains(t, out, "find her sister")
}

func TestBuildDialogueStyles_OnlyNonPlayerWithVoice(t *testing.T) {
	assert.Equal(t, "", buildDialogueStyles([]CharacterInfo{{Name: "Kara", IsPlayer: true, VoiceStyle: "clipped"}}))
	assert.Equal(t, "", buildDialogueStyles([]CharacterInfo{{Name: "Elena"}}))

	out := buildDialogueStyles([]CharacterInfo{{Name: "Elena Voss", VoiceStyle: "terse, sardonic"}})
	assert.Contains(t, out, "Elena Voss speaks: terse, sardonic")
}

func TestBuildRelationships_SkipsCharactersWithNone(t *testing.T) {
	assert.Equal(t, "", buildRelationships([]CharacterInfo{{Name: "Elena"}}))

	out := buildRelationships([]CharacterInfo{
		{Name: "Elena Voss", Relationships: []Relationship{
			{OtherCharacterName: "Kara", Type: "ally", Strength: 0.8, ArcSummary: "fought side by side"},
		}},
	})
	assert.Contains(t, out, "Elena Voss:")
	assert.Contains(t, out, "ally")
	assert.Contains(t, out, "fought side by side")
}

func TestBuildRules_MentionsPlayerAndResponseLength(t *testing.T) {
	concise := buildRules(RulesInfo{TurnMode: "natural", ResponseLength: "concise"}, "Kara")
	assert.Contains(t, concise, "Turn mode: natural")
	assert.Contains(t, concise, "Kara")
	assert.Contains(t, concise, "concise")

	detailed := buildRules(RulesInfo{ResponseLength: "detailed"}, "")
	assert.Contains(t, detailed, "detailed")
	assert.NotContains(t, detailed, "that is the player's role")
}
