package context

import (
	"fmt"
	"strings"
)

// buildSystemPrompt renders message 1: the overall system prompt, built
// from the scenario's content rating and the rules' narration posture.
func buildSystemPrompt(scenario ScenarioInfo, rules RulesInfo) string {
	var b strings.Builder
	b.WriteString("You are the game master and supporting cast of an interactive story. ")
	b.WriteString("Stay in character, respect established continuity, and never break the fourth wall.\n")
	if scenario.ContentRating != "" {
		fmt.Fprintf(&b, "Content rating: %s.\n", strings.ToUpper(scenario.ContentRating))
	}
	if rules.NarrationStyle != "" {
		fmt.Fprintf(&b, "Narration style: %s.\n", rules.NarrationStyle)
	}
	return b.String()
}

// buildScenario renders message 2: the stable scenario block.
func buildScenario(s ScenarioInfo) string {
	var b strings.Builder
	b.WriteString("=== ROLEPLAY SCENARIO ===")
	if s.Tone != "" {
		fmt.Fprintf(&b, "\nTone: %s", s.Tone)
	}
	if s.Scenario != "" {
		fmt.Fprintf(&b, "\nScenario: %s", s.Scenario)
	}
	if s.WorldSetting != "" {
		fmt.Fprintf(&b, "\nSetting: %s", s.WorldSetting)
	}
	if s.ContentRating != "" {
		fmt.Fprintf(&b, "\nContent Rating: %s", strings.ToUpper(s.ContentRating))
	}

	playerName := s.PlayerName
	if playerName == "" {
		playerName = "the user"
	}
	switch s.PlayerMode {
	case "narrator":
		b.WriteString("\n\nThe player acts as Narrator, describing events without being a character.")
	case "director":
		b.WriteString("\n\nThe player acts as Director, giving meta-instructions to guide the scene.")
	default:
		fmt.Fprintf(&b, "\n\nThe player is roleplaying as %s.", playerName)
	}

	return b.String()
}

// buildCharacterRoster renders message 3: every non-player character's
// descriptive block. Returns "" if there are no AI characters.
func buildCharacterRoster(characters []CharacterInfo) string {
	var b strings.Builder
	b.WriteString("=== CHARACTER ROSTER ===\n")
	wrote := false
	for _, c := range characters {
		if c.IsPlayer {
			continue
		}
		wrote = true
		fmt.Fprintf(&b, "\n%s", c.Name)
		if c.Description != "" {
			fmt.Fprintf(&b, ": %s", c.Description)
		}
		if c.Background != "" {
			fmt.Fprintf(&b, "\n  Background: %s", c.Background)
		}
		if c.Goals != "" {
			fmt.Fprintf(&b, "\n  Goals: %s", c.Goals)
		}
	}
	if !wrote {
		return ""
	}
	return b.String()
}

// buildDialogueStyles renders message 4: each non-player character's
// voice style, if any are set.
func buildDialogueStyles(characters []CharacterInfo) string {
	var b strings.Builder
	wrote := false
	for _, c := range characters {
		if c.IsPlayer || c.VoiceStyle == "" {
			continue
		}
		wrote = true
		fmt.Fprintf(&b, "%s speaks: %s\n", c.Name, c.VoiceStyle)
	}
	if !wrote {
		return ""
	}
	return "=== CHARACTER DIALOGUE STYLES ===\n" + b.String()
}

// buildRelationships renders message 5: a relationship summary per
// character that has any relationships recorded, grounded on
// SPEC_FULL.md §D.4's relationship-summary supplement.
func buildRelationships(characters []CharacterInfo) string {
	var b strings.Builder
	wrote := false
	for _, c := range characters {
		if len(c.Relationships) == 0 {
			continue
		}
		wrote = true
		fmt.Fprintf(&b, "%s:\n", c.Name)
		for _, r := range c.Relationships {
			fmt.Fprintf(&b, "  - %s %s (strength %.1f)", c.Name, r.Type, r.Strength)
			if r.ArcSummary != "" {
				fmt.Fprintf(&b, ": %s", r.ArcSummary)
			}
			b.WriteString("\n")
		}
	}
	if !wrote {
		return ""
	}
	return "=== CHARACTER RELATIONSHIPS ===\n" + b.String()
}

// buildRules renders message 6: the turn-mode and response-length rules
// governing this story.
func buildRules(rules RulesInfo, playerName string) string {
	var b strings.Builder
	b.WriteString("=== ROLEPLAY RULES ===\n")
	fmt.Fprintf(&b, "Turn mode: %s\n", rules.TurnMode)
	if playerName != "" {
		fmt.Fprintf(&b, "Never write dialogue or actions for %s; that is the player's role.\n", playerName)
	}
	switch rules.ResponseLength {
	case "detailed":
		b.WriteString("Write detailed, immersive responses (300-600 words).\n")
	default:
		b.WriteString("Keep responses concise (150-300 words).\n")
	}
	return b.String()
}
