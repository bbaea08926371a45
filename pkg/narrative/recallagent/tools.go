package recallagent

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/kahani-engine/narrative/pkg/narrative/recall"
)

const (
	maxReadSceneChars    = 4000
	maxObservationChars  = 6000
	maxReadScenesCount   = 8
	defaultSearchTopK    = 8
	maxSearchTopK        = 15
	maxNearbyRadius      = 5
)

// Tool is one ReAct-callable action, named and described for the agent's
// system prompt and invoked with the JSON-decoded Action Input map.
type Tool struct {
	Name        string
	Description string
	Run         func(ctx context.Context, args map[string]any) (string, error)
}

// ToolsetDeps are the backends the six fixed tools are wired to.
type ToolsetDeps struct {
	Dense    recall.DenseSearcher
	Events   recall.EventStore
	Scenes   recall.SceneReader
	StoryID  int64
	BranchID int64
}

// BuildToolset returns the six fixed tools of §4.4, closed over storyID
// and branchID so the agent's Action Input never needs to carry them.
func BuildToolset(d ToolsetDeps) []Tool {
	return []Tool{
		{
			Name:        "search_scenes",
			Description: `search_scenes(query: string, top_k: int<=15) -> formatted list of (scene N, chapter id, score, characters)`,
			Run: func(ctx context.Context, args map[string]any) (string, error) {
				query, _ := args["query"].(string)
				if query == "" {
					return "", fmt.Errorf("search_scenes: query is required")
				}
				topK := clampInt(intArg(args, "top_k", defaultSearchTopK), 1, maxSearchTopK)
				hits, err := d.Dense.SearchDense(ctx, d.StoryID, d.BranchID, query, topK, nil)
				if err != nil {
					return "", err
				}
				if len(hits) == 0 {
					return "No matching scenes found.", nil
				}
				var b strings.Builder
				for _, h := range hits {
					chapter := "none"
					if h.Scene.ChapterID != nil {
						chapter = strconv.FormatInt(*h.Scene.ChapterID, 10)
					}
					fmt.Fprintf(&b, "Scene %d (chapter id %s, score %.3f): %s\n", h.Scene.Sequence, chapter, h.Score, strings.Join(h.Scene.Characters, ", "))
				}
				return strings.TrimRight(b.String(), "\n"), nil
			},
		},
		{
			Name:        "search_events",
			Description: `search_events(queries: comma-list, keywords: comma-list) -> event-index matches`,
			Run: func(ctx context.Context, args map[string]any) (string, error) {
				if d.Events == nil {
					return "Event index unavailable.", nil
				}
				queries := splitCommaList(stringArg(args, "queries"))
				keywords := splitCommaList(stringArg(args, "keywords"))
				events, err := d.Events.EventsForBranch(ctx, d.StoryID, d.BranchID)
				if err != nil {
					return "", err
				}
				matches, err := recall.SearchEvents(events, queries, keywords)
				if err != nil {
					return "", err
				}
				if len(matches) == 0 {
					return "No matching events found.", nil
				}
				var b strings.Builder
				for _, m := range matches {
					fmt.Fprintf(&b, "Scene %d (score %.2f): %s\n", m.Event.Sequence, m.Score, m.Event.EventText)
				}
				return strings.TrimRight(b.String(), "\n"), nil
			},
		},
		{
			Name:        "read_scene",
			Description: `read_scene(sequence: int) -> full content of one scene, truncated to 4000 chars`,
			Run: func(ctx context.Context, args map[string]any) (string, error) {
				seq := intArg(args, "sequence", -1)
				if seq < 0 {
					return "", fmt.Errorf("read_scene: sequence is required")
				}
				scene, err := d.Scenes.ReadScene(ctx, d.StoryID, d.BranchID, seq)
				if err != nil {
					return "", err
				}
				return truncate(scene.Content, maxReadSceneChars), nil
			},
		},
		{
			Name:        "read_scenes",
			Description: `read_scenes(sequences: comma-list, max 8) -> short previews of multiple scenes`,
			Run: func(ctx context.Context, args map[string]any) (string, error) {
				seqs := splitCommaInts(stringArg(args, "sequences"))
				if len(seqs) > maxReadScenesCount {
					seqs = seqs[:maxReadScenesCount]
				}
				var b strings.Builder
				for _, seq := range seqs {
					scene, err := d.Scenes.ReadScene(ctx, d.StoryID, d.BranchID, seq)
					if err != nil {
						fmt.Fprintf(&b, "Scene %d: (unavailable)\n", seq)
						continue
					}
					fmt.Fprintf(&b, "Scene %d: %s\n", seq, truncate(scene.Content, 300))
				}
				return strings.TrimRight(b.String(), "\n"), nil
			},
		},
		{
			Name:        "get_nearby_scenes",
			Description: `get_nearby_scenes(sequence: int, radius: int<=5) -> previews of neighbors`,
			Run: func(ctx context.Context, args map[string]any) (string, error) {
				seq := intArg(args, "sequence", -1)
				if seq < 0 {
					return "", fmt.Errorf("get_nearby_scenes: sequence is required")
				}
				radius := clampInt(intArg(args, "radius", 1), 1, maxNearbyRadius)
				scenes, err := d.Scenes.ReadScenesInRange(ctx, d.StoryID, d.BranchID, seq-radius, seq+radius)
				if err != nil {
					return "", err
				}
				return formatPreviews(scenes), nil
			},
		},
		{
			Name:        "list_chapter_scenes",
			Description: `list_chapter_scenes(chapter_number: int) -> all scene previews in a chapter`,
			Run: func(ctx context.Context, args map[string]any) (string, error) {
				chapter := intArg(args, "chapter_number", -1)
				if chapter < 0 {
					return "", fmt.Errorf("list_chapter_scenes: chapter_number is required")
				}
				scenes, err := d.Scenes.ReadChapterScenes(ctx, d.StoryID, d.BranchID, chapter)
				if err != nil {
					return "", err
				}
				return formatPreviews(scenes), nil
			},
		},
	}
}

func formatPreviews(scenes []recall.SceneRef) string {
	if len(scenes) == 0 {
		return "No scenes found."
	}
	sort.Slice(scenes, func(i, j int) bool { return scenes[i].Sequence < scenes[j].Sequence })
	var b strings.Builder
	for _, s := range scenes {
		fmt.Fprintf(&b, "Scene %d: %s\n", s.Sequence, truncate(s.Content, 300))
	}
	return strings.TrimRight(b.String(), "\n")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func intArg(args map[string]any, key string, def int) int {
	v, ok := args[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return i
		}
	}
	return def
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func splitCommaList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func splitCommaInts(s string) []int {
	var out []int
	for _, p := range splitCommaList(s) {
		if n, err := strconv.Atoi(p); err == nil {
			out = append(out, n)
		}
	}
	return out
}
