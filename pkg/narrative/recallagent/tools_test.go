package recallagent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kahani-engine/narrative/pkg/narrative/recall"
)

type fakeDense struct {
	hits []recall.DenseHit
}

func (f *fakeDense) SearchDense(ctx context.Context, storyID, branchID int64, query string, topK int, excludeSequences []int) ([]recall.DenseHit, error) {
	return f.hits, nil
}

type fakeEvents struct {
	events []recall.Event
}

func (f *fakeEvents) EventsForBranch(ctx context.Context, storyID, branchID int64) ([]recall.Event, error) {
	return f.events, nil
}

type fakeScenes struct {
	byID map[int]recall.SceneRef
}

func (f *fakeScenes) ReadScene(ctx context.Context, storyID, branchID int64, sequence int) (recall.SceneRef, error) {
	s, ok := f.byID[sequence]
	if !ok {
		return recall.SceneRef{}, assertNotFound{sequence}
	}
	return s, nil
}

type assertNotFound struct{ seq int }

func (e assertNotFound) Error() string { return "scene not found" }

func (f *fakeScenes) ReadScenesInRange(ctx context.Context, storyID, branchID int64, minSeq, maxSeq int) ([]recall.SceneRef, error) {
	var out []recall.SceneRef
	for seq, s := range f.byID {
		if seq >= minSeq && seq <= maxSeq {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeScenes) ReadChapterScenes(ctx context.Context, storyID, branchID int64, chapterNumber int) ([]recall.SceneRef, error) {
	return f.ReadScenesInRange(ctx, storyID, branchID, 0, 1000)
}

func testDeps() ToolsetDeps {
	return ToolsetDeps{
		Dense: &fakeDense{hits: []recall.DenseHit{
			{Scene: recall.SceneRef{SceneID: 1, Sequence: 5, Characters: []string{"Elena"}}, Score: 0.9},
		}},
		Events: &fakeEvents{events: []recall.Event{
			{SceneID: 2, Sequence: 10, EventText: "Elena finds the hidden letter"},
		}},
		Scenes: &fakeScenes{byID: map[int]recall.SceneRef{
			5:  {SceneID: 1, Sequence: 5, Content: "Elena enters the kitchen and finds a fight in progress."},
			10: {SceneID: 2, Sequence: 10, Content: "Elena reads the letter quietly."},
			11: {SceneID: 3, Sequence: 11, Content: "Marcus arrives."},
		}},
		StoryID:  1,
		BranchID: 1,
	}
}

func findTool(t *testing.T, tools []Tool, name string) Tool {
	t.Helper()
	for _, tool := range tools {
		if tool.Name == name {
			return tool
		}
	}
	t.Fatalf("tool %q not found", name)
	return Tool{}
}

func TestBuildToolset_SearchScenes(t *testing.T) {
	tools := BuildToolset(testDeps())
	tool := findTool(t, tools, "search_scenes")
	out, err := tool.Run(context.Background(), map[string]any{"query": "kitchen fight"})
	require.NoError(t, err)
	assert.Contains(t, out, "Scene 5")
	assert.Contains(t, out, "Elena")
}

func TestBuildToolset_SearchEvents(t *testing.T) {
	tools := BuildToolset(testDeps())
	tool := findTool(t, tools, "search_events")
	out, err := tool.Run(context.Background(), map[string]any{"queries": "hidden letter", "keywords": "letter"})
	require.NoError(t, err)
	assert.Contains(t, out, "Scene 10")
}

func TestBuildToolset_ReadScene(t *testing.T) {
	tools := BuildToolset(testDeps())
	tool := findTool(t, tools, "read_scene")
	out, err := tool.Run(context.Background(), map[string]any{"sequence": float64(5)})
	require.NoError(t, err)
	assert.Contains(t, out, "kitchen")
}

func TestBuildToolset_ReadScenes(t *testing.T) {
	tools := BuildToolset(testDeps())
	tool := findTool(t, tools, "read_scenes")
	out, err := tool.Run(context.Background(), map[string]any{"sequences": "5, 10"})
	require.NoError(t, err)
	assert.Contains(t, out, "Scene 5")
	assert.Contains(t, out, "Scene 10")
}

func TestBuildToolset_GetNearbyScenes(t *testing.T) {
	tools := BuildToolset(testDeps())
	tool := findTool(t, tools, "get_nearby_scenes")
	out, err := tool.Run(context.Background(), map[string]any{"sequence": float64(10), "radius": float64(1)})
	require.NoError(t, err)
	assert.Contains(t, out, "Scene 10")
	assert.Contains(t, out, "Scene 11")
}

func TestBuildToolset_ListChapterScenes(t *testing.T) {
	tools := BuildToolset(testDeps())
	tool := findTool(t, tools, "list_chapter_scenes")
	out, err := tool.Run(context.Background(), map[string]any{"chapter_number": float64(1)})
	require.NoError(t, err)
	assert.Contains(t, out, "Scene 5")
}

func TestBuildToolset_RequiresArguments(t *testing.T) {
	tools := BuildToolset(testDeps())
	_, err := findTool(t, tools, "search_scenes").Run(context.Background(), map[string]any{})
	assert.Error(t, err)
}
