package branch

import (
	"context"
	"fmt"
)

// CloneDescriptor documents one entity kind's place in the fork plan: the
// order it is cloned in (Priority, lower first) and which other kind's ID
// map it depends on. The narrative graph only has six clonable kinds, so
// this list is informational/ordering metadata rather than a reflection-
// driven registry — [ForkBranch] executes the equivalent steps directly
// against the [Store] interface in this order.
var CloneDescriptors = []CloneDescriptor{
	{Entity: "Chapter", Priority: 10, ParentFKField: "BranchID"},
	{Entity: "Scene", Priority: 10, ParentFKField: "BranchID", DependsOn: "Chapter"},
	{Entity: "StoryCharacter", Priority: 20, ParentFKField: "BranchID"},
	{Entity: "SceneVariant", Priority: 31, ParentFKField: "SceneID", DependsOn: "Scene"},
	{Entity: "SceneChoice", Priority: 35, ParentFKField: "SceneID", DependsOn: "Scene"},
	{Entity: "StoryFlow", Priority: 60, ParentFKField: "BranchID", DependsOn: "SceneVariant"},
}

// CloneDescriptor is one entry in [CloneDescriptors].
type CloneDescriptor struct {
	Entity        string
	Priority      int
	ParentFKField string
	DependsOn     string
}

// ForkResult reports the new branch produced by a fork and the old-ID to
// new-ID mappings for every cloned row, so a caller holding a reference to
// a pre-fork scene or variant can translate it into the new branch's graph.
type ForkResult struct {
	NewBranch         Branch
	ChapterIDMap      map[int64]int64
	SceneIDMap        map[int64]int64
	SceneVariantIDMap map[int64]int64
	SceneChoiceIDMap  map[int64]int64
	StoryCharacterMap map[int64]int64
}

// ForkBranch clones sourceBranchID into a new branch under storyID,
// carrying forward every row at or before forkAtSequence and dropping
// everything after it. It is the shared implementation [Store.Fork]
// delegates to; callers normally invoke Store.Fork rather than this
// function directly.
//
// The clone order follows [CloneDescriptors]: chapters and scenes first
// (so later steps can remap ChapterID/SceneID), then the branch-scoped
// character roster, then scene variants and choices (which hang off
// scenes), then story flow (which hangs off both scenes and variants).
// ForkBranch itself is not atomic; isolation comes from the caller. The
// postgres adapter wraps it in a SQL transaction, so a failure partway
// through leaves no partial clone visible to other callers. [MemStore]
// does not hold its mutex across the call (see [MemStore.Fork]), so it
// gives no such guarantee.
func ForkBranch(ctx context.Context, s Store, storyID, sourceBranchID int64, forkAtSequence int, newBranchName string) (*ForkResult, error) {
	source, err := s.GetBranch(ctx, sourceBranchID)
	if err != nil {
		return nil, fmt.Errorf("%w: load source branch: %v", ErrForkFailed, err)
	}
	if source.StoryID != storyID {
		return nil, fmt.Errorf("%w: branch %d does not belong to story %d", ErrForkFailed, sourceBranchID, storyID)
	}

	newBranch, err := s.CreateBranch(ctx, Branch{
		StoryID:          storyID,
		Name:             newBranchName,
		ParentBranchID:   &sourceBranchID,
		ForkedAtSequence: forkAtSequence,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create branch: %v", ErrForkFailed, err)
	}

	result := &ForkResult{
		NewBranch:         newBranch,
		ChapterIDMap:      map[int64]int64{},
		SceneIDMap:        map[int64]int64{},
		SceneVariantIDMap: map[int64]int64{},
		SceneChoiceIDMap:  map[int64]int64{},
		StoryCharacterMap: map[int64]int64{},
	}

	if err := cloneChapters(ctx, s, source.ID, newBranch.ID, result); err != nil {
		return nil, fmt.Errorf("%w: clone chapters: %v", ErrForkFailed, err)
	}
	if err := cloneScenes(ctx, s, source.ID, newBranch.ID, forkAtSequence, result); err != nil {
		return nil, fmt.Errorf("%w: clone scenes: %v", ErrForkFailed, err)
	}
	if err := cloneStoryCharacters(ctx, s, source.ID, newBranch.ID, result); err != nil {
		return nil, fmt.Errorf("%w: clone story characters: %v", ErrForkFailed, err)
	}
	if err := cloneSceneVariants(ctx, s, result); err != nil {
		return nil, fmt.Errorf("%w: clone scene variants: %v", ErrForkFailed, err)
	}
	if err := cloneSceneChoices(ctx, s, result); err != nil {
		return nil, fmt.Errorf("%w: clone scene choices: %v", ErrForkFailed, err)
	}
	if err := cloneStoryFlow(ctx, s, storyID, source.ID, newBranch.ID, forkAtSequence, result); err != nil {
		return nil, fmt.Errorf("%w: clone story flow: %v", ErrForkFailed, err)
	}

	return result, nil
}

func cloneChapters(ctx context.Context, s Store, sourceBranchID, newBranchID int64, result *ForkResult) error {
	chapters, err := s.ListChapters(ctx, sourceBranchID)
	if err != nil {
		return err
	}
	for _, c := range chapters {
		oldID := c.ID
		c.ID = 0
		c.BranchID = newBranchID
		created, err := s.CreateChapter(ctx, c)
		if err != nil {
			return err
		}
		result.ChapterIDMap[oldID] = created.ID
	}
	return nil
}

func cloneScenes(ctx context.Context, s Store, sourceBranchID, newBranchID int64, forkAtSequence int, result *ForkResult) error {
	scenes, err := s.ListScenes(ctx, sourceBranchID)
	if err != nil {
		return err
	}
	for _, sc := range scenes {
		if sc.Sequence > forkAtSequence {
			continue
		}
		oldID := sc.ID
		sc.ID = 0
		sc.BranchID = newBranchID
		if sc.ChapterID != nil {
			if newChID, ok := result.ChapterIDMap[*sc.ChapterID]; ok {
				sc.ChapterID = &newChID
			} else {
				sc.ChapterID = nil
			}
		}
		// Legacy linear-branch fields don't survive the clone: the new
		// branch's own scene graph is the source of truth going forward.
		sc.ParentSceneID = nil
		created, err := s.CreateScene(ctx, sc)
		if err != nil {
			return err
		}
		result.SceneIDMap[oldID] = created.ID
	}
	return nil
}

func cloneStoryCharacters(ctx context.Context, s Store, sourceBranchID, newBranchID int64, result *ForkResult) error {
	chars, err := s.ListStoryCharacters(ctx, sourceBranchID)
	if err != nil {
		return err
	}
	for _, sc := range chars {
		oldID := sc.ID
		sc.ID = 0
		sc.BranchID = newBranchID
		rels := make([]Relationship, len(sc.Relationships))
		copy(rels, sc.Relationships)
		sc.Relationships = rels
		created, err := s.CreateStoryCharacter(ctx, sc)
		if err != nil {
			return err
		}
		result.StoryCharacterMap[oldID] = created.ID
	}
	return nil
}

func cloneSceneVariants(ctx context.Context, s Store, result *ForkResult) error {
	for oldSceneID, newSceneID := range result.SceneIDMap {
		variants, err := s.ListSceneVariants(ctx, oldSceneID)
		if err != nil {
			return err
		}
		for _, v := range variants {
			oldID := v.ID
			v.ID = 0
			v.SceneID = newSceneID
			created, err := s.CreateSceneVariant(ctx, v)
			if err != nil {
				return err
			}
			result.SceneVariantIDMap[oldID] = created.ID
		}
	}
	return nil
}

func cloneSceneChoices(ctx context.Context, s Store, result *ForkResult) error {
	for oldSceneID, newSceneID := range result.SceneIDMap {
		choices, err := s.ListSceneChoices(ctx, oldSceneID)
		if err != nil {
			return err
		}
		for _, c := range choices {
			oldID := c.ID
			c.ID = 0
			c.SceneID = newSceneID
			if c.LeadsToSceneID != nil {
				if newTarget, ok := result.SceneIDMap[*c.LeadsToSceneID]; ok {
					c.LeadsToSceneID = &newTarget
				} else {
					// The choice led past the fork point; the new branch
					// has no such scene yet.
					c.LeadsToSceneID = nil
				}
			}
			created, err := s.CreateSceneChoice(ctx, c)
			if err != nil {
				return err
			}
			result.SceneChoiceIDMap[oldID] = created.ID
		}
	}
	return nil
}

func cloneStoryFlow(ctx context.Context, s Store, storyID, sourceBranchID, newBranchID int64, forkAtSequence int, result *ForkResult) error {
	flow, err := s.ListStoryFlow(ctx, sourceBranchID)
	if err != nil {
		return err
	}
	for _, f := range flow {
		if f.SequenceNumber > forkAtSequence {
			continue
		}
		f.ID = 0
		f.StoryID = storyID
		f.BranchID = newBranchID
		if newSceneID, ok := result.SceneIDMap[f.SceneID]; ok {
			f.SceneID = newSceneID
		}
		if newVariantID, ok := result.SceneVariantIDMap[f.SceneVariantID]; ok {
			f.SceneVariantID = newVariantID
		}
		if f.FromChoiceID != nil {
			if newChoiceID, ok := result.SceneChoiceIDMap[*f.FromChoiceID]; ok {
				f.FromChoiceID = &newChoiceID
			} else {
				f.FromChoiceID = nil
			}
		}
		if _, err := s.AppendStoryFlow(ctx, f); err != nil {
			return err
		}
	}
	return nil
}
