package context

import (
	"math/rand"
	"regexp"
	"strings"
)

// TalkativenessRoll draws a pseudo-random float in [0, 1) used to decide
// whether an unmentioned character speaks unprompted in "natural" turn
// mode. Exposed as a variable so tests can substitute a deterministic
// source.
var TalkativenessRoll = rand.Float64

// ResolveActiveCharacters decides which non-player characters respond
// this turn, given the mode configured for the story.
//
//   - "natural": characters named in userInput always respond, ordered
//     by where their name appears; unmentioned characters respond with
//     probability equal to their Talkativeness. At least one character
//     always responds.
//   - "round_robin": cycles through the roster, cursor persisted by the
//     caller via lastIndex, advancing by one character per turn.
//   - "manual": only the characters in selectedNames respond; falls back
//     to every character if selectedNames is empty or none match.
func ResolveActiveCharacters(mode string, characters []CharacterInfo, userInput string, lastIndex int, selectedNames []string) []CharacterInfo {
	nonPlayer := make([]CharacterInfo, 0, len(characters))
	for _, c := range characters {
		if !c.IsPlayer {
			nonPlayer = append(nonPlayer, c)
		}
	}
	if len(nonPlayer) == 0 {
		return nil
	}

	switch mode {
	case "round_robin":
		return resolveRoundRobin(nonPlayer, lastIndex)
	case "manual":
		return resolveManual(nonPlayer, selectedNames)
	default:
		return resolveNatural(nonPlayer, userInput)
	}
}

func resolveNatural(characters []CharacterInfo, userInput string) []CharacterInfo {
	type mentioned struct {
		c   CharacterInfo
		pos int
	}
	var hits []mentioned
	var rest []CharacterInfo

	lowerInput := strings.ToLower(userInput)
	for _, c := range characters {
		pos := mentionPosition(lowerInput, c.Name)
		if pos >= 0 {
			hits = append(hits, mentioned{c, pos})
			continue
		}
		rest = append(rest, c)
	}

	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && hits[j].pos < hits[j-1].pos; j-- {
			hits[j], hits[j-1] = hits[j-1], hits[j]
		}
	}

	active := make([]CharacterInfo, 0, len(characters))
	for _, h := range hits {
		active = append(active, h.c)
	}
	for _, c := range rest {
		if TalkativenessRoll() < c.Talkativeness {
			active = append(active, c)
		}
	}

	if len(active) == 0 && len(characters) > 0 {
		active = append(active, characters[0])
	}
	return active
}

// mentionPosition returns the earliest index at which c's name is
// referenced in lowerInput (already lowercased), or -1 if not mentioned.
// A full-name substring match is tried first; failing that, the
// character's first name is matched on a word boundary, so "Elena"
// matches a mention of "Elena Voss" found by first name alone.
func mentionPosition(lowerInput, name string) int {
	lowerName := strings.ToLower(name)
	if idx := strings.Index(lowerInput, lowerName); idx >= 0 {
		return idx
	}
	firstName := lowerName
	if sp := strings.IndexByte(lowerName, ' '); sp >= 0 {
		firstName = lowerName[:sp]
	}
	if firstName == "" {
		return -1
	}
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(firstName) + `\b`)
	loc := re.FindStringIndex(lowerInput)
	if loc == nil {
		return -1
	}
	return loc[0]
}

func resolveRoundRobin(characters []CharacterInfo, lastIndex int) []CharacterInfo {
	next := (lastIndex + 1) % len(characters)
	return []CharacterInfo{characters[next]}
}

func resolveManual(characters []CharacterInfo, selectedNames []string) []CharacterInfo {
	if len(selectedNames) == 0 {
		return characters
	}
	want := make(map[string]bool, len(selectedNames))
	for _, n := range selectedNames {
		want[strings.ToLower(n)] = true
	}
	var matched []CharacterInfo
	for _, c := range characters {
		if want[strings.ToLower(c.Name)] {
			matched = append(matched, c)
		}
	}
	if len(matched) == 0 {
		return characters
	}
	return matched
}
