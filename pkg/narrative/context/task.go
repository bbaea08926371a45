package context

import (
	"fmt"
	"strings"
)

// PromptCatalog resolves a template by key for task-message rendering.
// This module ships no implementation of it. GetRawPrompt returns "", false if key is
// unknown or unset, in which case callers fall back to an inline
// template so a missing or not-yet-loaded catalog entry never blocks a
// turn.
type PromptCatalog interface {
	GetRawPrompt(key string, vars map[string]string) (string, bool)
}

// InputMode is the kind of input the player supplied for a turn.
type InputMode string

const (
	InputCharacter InputMode = "character"
	InputNarration InputMode = "narration"
	InputDirection InputMode = "direction"
)

func lengthInstruction(cat PromptCatalog, responseLength, suffix string) string {
	key := "roleplay.length_concise" + suffix
	if responseLength == "detailed" {
		key = "roleplay.length_detailed" + suffix
	}
	if cat != nil {
		if v, ok := cat.GetRawPrompt(key, nil); ok {
			return v
		}
	}
	if responseLength == "detailed" {
		return "Write detailed, immersive responses (300-600 words)."
	}
	return "Keep responses concise (150-300 words)."
}

func narrationInstruction(cat PromptCatalog, narrationStyle string) string {
	if narrationStyle == "" {
		narrationStyle = "moderate"
	}
	if cat != nil {
		if v, ok := cat.GetRawPrompt("roleplay.narration_"+narrationStyle, nil); ok {
			return v
		}
	}
	return ""
}

// BuildTaskMessageFor renders the final message appended after an
// assembled prompt for a normal (non-auto, non-opening) turn, trying
// cat for a per-mode template and falling back to an inline rendering
// when the catalog has no entry.
func BuildTaskMessageFor(cat PromptCatalog, userInput string, mode InputMode, activeCharacterNames []string, playerName string, rules RulesInfo) string {
	activeList := strings.Join(activeCharacterNames, ", ")
	length := lengthInstruction(cat, rules.ResponseLength, "")
	narration := narrationInstruction(cat, rules.NarrationStyle)

	templateKey := "roleplay.task_character"
	switch mode {
	case InputDirection:
		templateKey = "roleplay.task_direction"
	case InputNarration:
		templateKey = "roleplay.task_narration"
	}

	if cat != nil {
		if v, ok := cat.GetRawPrompt(templateKey, map[string]string{
			"active_list":           activeList,
			"user_input":            userInput,
			"player_name":           playerName,
			"length_instruction":    length,
			"narration_instruction": narration,
		}); ok {
			return v
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "ACTIVE CHARACTERS THIS TURN: %s\n\n", activeList)
	fmt.Fprintf(&b, ">>> %s <<<\n\n", userInput)
	b.WriteString("Write responses for the active characters.\n")
	fmt.Fprintf(&b, "%s\n%s", length, narration)
	return b.String()
}

// BuildAutoContinueTask renders the task message for an auto-continue
// turn, where AI characters talk to one another without new user input.
func BuildAutoContinueTask(cat PromptCatalog, activeCharacterNames []string, playerName string, rules RulesInfo) string {
	activeList := strings.Join(activeCharacterNames, ", ")
	length := lengthInstruction(cat, rules.ResponseLength, "_auto")

	if cat != nil {
		if v, ok := cat.GetRawPrompt("roleplay.task_auto_continue", map[string]string{
			"active_list":        activeList,
			"player_name":        playerName,
			"length_instruction": length,
		}); ok {
			return v
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "ACTIVE CHARACTERS THIS TURN: %s\n\n", activeList)
	b.WriteString("Continue the conversation between the AI characters.\n")
	b.WriteString(length)
	return b.String()
}

// BuildAutoPlayerTask renders the task message for auto-generating the
// player character's own next turn.
func BuildAutoPlayerTask(cat PromptCatalog, playerName string, rules RulesInfo) string {
	length := lengthInstruction(cat, rules.ResponseLength, "")
	narration := narrationInstruction(cat, rules.NarrationStyle)

	if cat != nil {
		if v, ok := cat.GetRawPrompt("roleplay.task_auto_player", map[string]string{
			"player_name":           playerName,
			"length_instruction":    length,
			"narration_instruction": narration,
		}); ok {
			return v
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Write %s's next response in this conversation.\n", playerName)
	fmt.Fprintf(&b, "Write ONLY %s — no other characters.\n", playerName)
	fmt.Fprintf(&b, "%s\n%s", length, narration)
	return b.String()
}

// BuildOpeningTask renders the task message for generating the opening
// scene of a new story, before any turns have been played.
func BuildOpeningTask(cat PromptCatalog, characterNames []string, playerName, scenario string, rules RulesInfo) string {
	charList := strings.Join(characterNames, ", ")
	length := lengthInstruction(cat, rules.ResponseLength, "_opening")

	if cat != nil {
		if v, ok := cat.GetRawPrompt("roleplay.task_opening", map[string]string{
			"char_list":          charList,
			"scenario":           scenario,
			"player_name":        playerName,
			"length_instruction": length,
		}); ok {
			return v
		}
	}

	var b strings.Builder
	b.WriteString("Generate the opening scene for this roleplay.\n\n")
	fmt.Fprintf(&b, "Characters present: %s\n", charList)
	fmt.Fprintf(&b, "Scenario: %s\n\n", scenario)
	b.WriteString("Establish the setting and show the characters' initial behavior.\n")
	b.WriteString(length)
	return b.String()
}
