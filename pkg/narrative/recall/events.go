package recall

import (
	"context"
	"sort"
	"strings"

	"github.com/coregx/ahocorasick"
	"github.com/orsinium-labs/stopwords"
)

// Event is one structured fact extracted from a scene, the per-scene
// sparse index the original's _lookup_scene_events scans — §D.5.
type Event struct {
	SceneID      int64
	Sequence     int
	EventText    string
}

// EventStore persists and serves the scene-event sparse index.
type EventStore interface {
	EventsForBranch(ctx context.Context, storyID, branchID int64) ([]Event, error)
}

// EventMatch is a sparse-index hit for one sub-query.
type EventMatch struct {
	Event Event
	Score float64
}

var englishStopwords = stopwords.MustGet("en")

// tokenize lowercases and splits on non-letter/digit runs, dropping
// stopwords and anything shorter than 2 characters.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < 2 || englishStopwords.Contains(f) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// SearchEvents scans events for matches against subQueries (token-overlap
// scoring) and keywords (substring matching via an Aho-Corasick
// automaton), per §4.4 step 2. Results are sorted by score descending.
func SearchEvents(events []Event, subQueries, keywords []string) ([]EventMatch, error) {
	queryTokens := make([][]string, len(subQueries))
	for i, q := range subQueries {
		queryTokens[i] = tokenize(q)
	}

	var automaton *ahocorasick.Automaton
	if len(keywords) > 0 {
		lowered := make([]string, len(keywords))
		for i, k := range keywords {
			lowered[i] = strings.ToLower(k)
		}
		built, err := ahocorasick.NewBuilder().
			AddStrings(lowered).
			SetMatchKind(ahocorasick.LeftmostLongest).
			Build()
		if err != nil {
			return nil, err
		}
		automaton = built
	}

	scores := make(map[int64]float64, len(events))
	byID := make(map[int64]Event, len(events))
	for _, ev := range events {
		byID[ev.SceneID] = ev
		eventTokenSet := tokenSet(tokenize(ev.EventText))

		var best float64
		for _, qt := range queryTokens {
			overlap := 0
			for _, t := range qt {
				if eventTokenSet[t] {
					overlap++
				}
			}
			if len(qt) == 0 {
				continue
			}
			score := float64(overlap) / float64(len(qt))
			if score > best {
				best = score
			}
		}

		if automaton != nil {
			haystack := []byte(strings.ToLower(ev.EventText))
			if len(automaton.FindAllOverlapping(haystack)) > 0 {
				best += 0.5
			}
		}

		if best > 0 {
			scores[ev.SceneID] += best
		}
	}

	matches := make([]EventMatch, 0, len(scores))
	for id, score := range scores {
		matches = append(matches, EventMatch{Event: byID[id], Score: score})
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	return matches, nil
}

func tokenSet(tokens []string) map[string]bool {
	m := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		m[t] = true
	}
	return m
}
