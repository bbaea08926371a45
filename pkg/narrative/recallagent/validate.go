package recallagent

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/kahani-engine/narrative/internal/extract"
	"github.com/kahani-engine/narrative/pkg/llmprovider"
	"github.com/kahani-engine/narrative/pkg/narrative/recall"
)

const validationSnippetChars = 500

// Validate asks the extraction model to confirm each scene the agent
// proposed is genuinely relevant, dropping any it rejects. If every
// scene is rejected, the original list is kept unchanged — a false
// rejection is assumed more likely than true relevance being zero
// across the board, per §4.4's post-validation fallback.
func Validate(ctx context.Context, provider llmprovider.Provider, userIntent string, scenes []recall.SceneRef) ([]recall.SceneRef, error) {
	if len(scenes) == 0 {
		return scenes, nil
	}

	resp, err := provider.Complete(ctx, llmprovider.CompletionRequest{
		SystemPrompt: "You verify whether proposed scenes from a story are actually relevant to a player's message. " +
			`Respond with a single JSON object mapping each scene number to true or false, e.g. {"3": true, "7": false}.`,
		Messages: []llmprovider.Message{
			{Role: "user", Content: validationPrompt(userIntent, scenes)},
		},
		Temperature: 0,
		MaxTokens:   300,
	})
	if err != nil {
		return scenes, fmt.Errorf("recallagent: validate scenes: %w", err)
	}

	raw, err := extract.Robust(resp.Content)
	if err != nil {
		return scenes, fmt.Errorf("recallagent: validate scenes: %w", err)
	}

	var verdicts map[string]bool
	if err := json.Unmarshal(raw, &verdicts); err != nil {
		return scenes, fmt.Errorf("recallagent: validate scenes: invalid JSON: %w", err)
	}

	var kept []recall.SceneRef
	for _, s := range scenes {
		if verdicts[strconv.Itoa(s.Sequence)] {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return scenes, nil
	}
	return kept, nil
}

func validationPrompt(userIntent string, scenes []recall.SceneRef) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Player message: %s\n\nProposed scenes:\n", userIntent)
	for _, s := range scenes {
		snippet := s.Content
		if len(snippet) > validationSnippetChars {
			snippet = snippet[:validationSnippetChars]
		}
		fmt.Fprintf(&b, "Scene %d: %s\n", s.Sequence, snippet)
	}
	return b.String()
}
