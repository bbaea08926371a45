package recall

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kahani-engine/narrative/internal/extract"
	"github.com/kahani-engine/narrative/pkg/llmprovider"
)

// decompositionWire mirrors the extraction LLM's JSON schema for query
// decomposition, per §4.4.
type decompositionWire struct {
	Intent     string   `json:"intent"`
	Temporal   string   `json:"temporal_hint"`
	SubQueries []string `json:"sub_queries"`
	Keywords   []string `json:"keywords"`
}

// Decompose asks the extraction model to classify the player's intent
// and break it into 1-5 natural-language sub-queries, supplying the
// active roster so the model can resolve pronouns ("her", "the captain")
// to character names.
func Decompose(ctx context.Context, provider llmprovider.Provider, userInput string, roster []RosterMember, cfg Config) (Decomposition, error) {
	cfg = cfg.WithDefaults()

	resp, err := provider.Complete(ctx, llmprovider.CompletionRequest{
		SystemPrompt: decompositionSystemPrompt(),
		Messages: []llmprovider.Message{
			{Role: "user", Content: decompositionUserPrompt(userInput, roster)},
		},
		Temperature: 0,
		MaxTokens:   400,
	})
	if err != nil {
		return Decomposition{}, fmt.Errorf("recall: decompose query: %w", err)
	}

	raw, err := extract.Robust(resp.Content)
	if err != nil {
		return Decomposition{}, fmt.Errorf("recall: decompose query: %w", err)
	}

	var wire decompositionWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return Decomposition{}, fmt.Errorf("recall: decompose query: invalid JSON: %w", err)
	}

	d := Decomposition{
		Intent:     normalizeIntent(wire.Intent),
		Temporal:   normalizeTemporal(wire.Temporal),
		SubQueries: wire.SubQueries,
		Keywords:   wire.Keywords,
	}
	if len(d.SubQueries) == 0 {
		d.SubQueries = []string{userInput}
	}
	if len(d.SubQueries) > cfg.MaxSubQueries {
		d.SubQueries = d.SubQueries[:cfg.MaxSubQueries]
	}
	if len(d.Keywords) == 0 {
		d.Keywords = synthesizeKeywords(d.SubQueries, cfg.MinKeywordLength)
	}
	return d, nil
}

func normalizeIntent(s string) IntentType {
	switch IntentType(strings.ToLower(strings.TrimSpace(s))) {
	case IntentDirect:
		return IntentDirect
	case IntentReference:
		return IntentReference
	default:
		return IntentRecall
	}
}

func normalizeTemporal(s string) TemporalHint {
	switch TemporalHint(strings.ToLower(strings.TrimSpace(s))) {
	case TemporalPast:
		return TemporalPast
	case TemporalRecent:
		return TemporalRecent
	default:
		return TemporalAny
	}
}

// synthesizeKeywords auto-derives a sparse-match keyword list from the
// sub-queries when the model didn't supply one: every word of at least
// minLen characters, deduplicated and lowercased, minus a short stopword
// set handled separately by the sparse index itself.
func synthesizeKeywords(subQueries []string, minLen int) []string {
	seen := map[string]bool{}
	var out []string
	for _, q := range subQueries {
		for _, word := range strings.Fields(q) {
			w := strings.ToLower(strings.Trim(word, ".,!?;:\"'()"))
			if len(w) < minLen || seen[w] {
				continue
			}
			seen[w] = true
			out = append(out, w)
		}
	}
	return out
}

func decompositionSystemPrompt() string {
	return "You analyze a player's message in an interactive story and decide whether " +
		"it requires searching past scenes for context. Respond with a single JSON object: " +
		`{"intent": "direct"|"recall"|"reference", "temporal_hint": "past"|"recent"|"any", ` +
		`"sub_queries": ["..."], "keywords": ["..."]}. "direct" means no past scene could ` +
		"possibly be relevant. Return 1 to 5 sub_queries in natural language."
}

func decompositionUserPrompt(userInput string, roster []RosterMember) string {
	var b strings.Builder
	b.WriteString("Active characters (for resolving pronouns):\n")
	for _, r := range roster {
		fmt.Fprintf(&b, "- %s", r.Name)
		if r.Gender != "" {
			fmt.Fprintf(&b, " (%s)", r.Gender)
		}
		if r.Role != "" {
			fmt.Fprintf(&b, ", %s", r.Role)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nPlayer message: %s\n", userInput)
	return b.String()
}
