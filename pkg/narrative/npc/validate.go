package npc

import (
	"regexp"
	"strings"
)

// ExtractedNPC is the raw shape an extraction-LLM call returns per entity,
// before [ValidateExtracted] filters and normalizes it into a [Mention].
type ExtractedNPC struct {
	Name             string
	EntityType       string
	MentionCount     int
	HasDialogue      bool
	HasActions       bool
	HasRelationships bool
	ContextSnippets  []string
	Properties       map[string]string
}

var genericTerms = map[string]bool{
	"guards": true, "guard": true, "soldiers": true, "soldier": true,
	"troops": true, "troop": true, "units": true, "unit": true,
	"forces": true, "force": true, "creatures": true, "creature": true,
	"beings": true, "being": true, "figures": true, "figure": true,
	"entities": true, "entity": true, "shadows": true, "shadow": true,
	"lights": true, "light": true, "voices": true, "voice": true,
	"sounds": true, "sound": true, "noises": true, "noise": true,
	"bolts": true, "bolt": true, "projectiles": true, "projectile": true,
	"plasma bolts": true, "plasma bolt": true,
	"elongated figures": true, "elongated figure": true,
}

var genericPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(guards?|soldiers?|troops?|units?|forces?|creatures?|beings?|figures?|entities?|shadows?|lights?|voices?|sounds?|noises?|bolts?|projectiles?)$`),
	regexp.MustCompile(`^(the|a|an) (guard|soldier|troop|unit|force|creature|being|figure|entity|shadow|light|voice|sound|noise|bolt|projectile)s?$`),
	regexp.MustCompile(`^[a-z]+ (guards?|soldiers?|troops?|units?|forces?|creatures?|beings?|figures?|entities?|shadows?|lights?|voices?|sounds?|noises?|bolts?)$`),
	regexp.MustCompile(`^(plasma|energy|laser) (bolts?|projectiles?|beams?)$`),
	regexp.MustCompile(`^(elongated|strange|alien|mysterious) (figures?|creatures?|beings?|entities?)$`),
}

// ValidateExtracted filters raw extraction output down to entities worth
// tracking: CHARACTER-typed, not already on the explicit roster
// (explicitNameParts holds lowercase name-word fragments from story
// characters, so "Reynolds" filters out "Sheriff Reynolds"), not a
// generic plural noun, and containing at least one capitalized word.
func ValidateExtracted(raw []ExtractedNPC, explicitNameParts map[string]bool) []ExtractedNPC {
	var out []ExtractedNPC
	for _, n := range raw {
		name := strings.TrimSpace(n.Name)
		if name == "" {
			continue
		}

		entityType := strings.ToUpper(strings.TrimSpace(n.EntityType))
		if entityType == "" {
			entityType = string(EntityCharacter)
		}
		if entityType != string(EntityCharacter) {
			continue
		}

		nameLower := strings.ToLower(name)
		if explicitNameParts != nil {
			if explicitNameParts[nameLower] {
				continue
			}
			skip := false
			for _, part := range strings.Fields(nameLower) {
				if len(part) > 2 && explicitNameParts[part] {
					skip = true
					break
				}
			}
			if skip {
				continue
			}
		}

		if !hasCapitalizedWord(name) {
			continue
		}
		if genericTerms[nameLower] {
			continue
		}
		if matchesGenericPattern(nameLower) {
			continue
		}
		if looksLikeLowercasePlural(name, nameLower) {
			continue
		}

		n.Name = name
		n.EntityType = entityType
		if n.MentionCount <= 0 {
			n.MentionCount = 1
		}
		out = append(out, n)
	}
	return out
}

func hasCapitalizedWord(name string) bool {
	for _, word := range strings.Fields(name) {
		r := []rune(word)
		if len(r) == 0 {
			continue
		}
		if r[0] >= 'A' && r[0] <= 'Z' {
			return true
		}
	}
	return false
}

func matchesGenericPattern(nameLower string) bool {
	for _, p := range genericPatterns {
		if p.MatchString(nameLower) {
			return true
		}
	}
	return false
}

// looksLikeLowercasePlural catches generic plural nouns the LLM
// mislabeled as CHARACTER, e.g. "villagers" rather than a proper name.
func looksLikeLowercasePlural(name, nameLower string) bool {
	if !strings.HasSuffix(nameLower, "s") || len(nameLower) <= 3 {
		return false
	}
	r := []rune(name)
	return r[0] < 'A' || r[0] > 'Z'
}

// ExplicitNameParts builds the lookup [ValidateExtracted] uses to exclude
// already-rostered characters, from their full names: each name
// contributes its lowercase form plus every word longer than two
// characters, so "Alice Smith" filters future mentions of "Alice" alone.
func ExplicitNameParts(names []string) map[string]bool {
	parts := make(map[string]bool)
	for _, name := range names {
		nameLower := strings.ToLower(strings.TrimSpace(name))
		if nameLower == "" {
			continue
		}
		parts[nameLower] = true
		for _, part := range strings.Fields(nameLower) {
			if len(part) > 2 {
				parts[part] = true
			}
		}
	}
	return parts
}
