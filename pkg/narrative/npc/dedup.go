package npc

import (
	"strings"

	"github.com/antzucaro/matchr"
)

// fuzzyDuplicateThreshold is the Jaro-Winkler similarity above which two
// different-cased or lightly-misspelled names are treated as the same
// NPC, e.g. "Vortex" and "vortex", or "Reynolds" and "Raynolds".
const fuzzyDuplicateThreshold = 0.8

// mergeFavorsMentionCount is the total-mention count above which an
// existing tracking record is considered established enough that its
// name should win a fuzzy-duplicate merge over a freshly seen variant.
const mergeFavorsMentionCount = 5

// CanonicalName resolves name against an existing set of tracked NPCs,
// returning the name it should be merged into. It returns ("", false)
// when name introduces no duplicate and should be tracked under its own
// identity.
//
// Three passes, each more permissive than the one before:
// exact case-insensitive match, substring containment (e.g. "Reynolds"
// inside "Sheriff Reynolds"), then Jaro-Winkler similarity above
// [fuzzyDuplicateThreshold].
func CanonicalName(name string, existing []Tracking) (string, bool) {
	nameLower := strings.ToLower(strings.TrimSpace(name))

	for _, t := range existing {
		existingLower := strings.ToLower(t.CharacterName)
		if nameLower == existingLower && name != t.CharacterName {
			if t.TotalMentions > 0 {
				return t.CharacterName, true
			}
			if isUpper(name) && !isUpper(t.CharacterName) {
				return name, true
			}
			return t.CharacterName, true
		}
	}

	for _, t := range existing {
		existingLower := strings.ToLower(t.CharacterName)
		if existingLower == nameLower {
			continue
		}
		if strings.Contains(existingLower, nameLower) {
			return t.CharacterName, true
		}
		if strings.Contains(nameLower, existingLower) {
			return name, true
		}
	}

	for _, t := range existing {
		existingLower := strings.ToLower(t.CharacterName)
		if existingLower == nameLower {
			continue
		}
		similarity := matchr.JaroWinkler(nameLower, existingLower, false)
		if similarity > fuzzyDuplicateThreshold {
			if t.TotalMentions > mergeFavorsMentionCount {
				return t.CharacterName, true
			}
			return name, true
		}
	}

	return "", false
}

func isUpper(name string) bool {
	r := []rune(name)
	return len(r) > 0 && r[0] >= 'A' && r[0] <= 'Z'
}
