package branch

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get-style methods when the requested row does
// not exist.
var ErrNotFound = errors.New("branch: not found")

// ErrDuplicateID is returned when a Create call is given a non-zero ID that
// already exists.
var ErrDuplicateID = errors.New("branch: id already exists")

// ErrForkFailed wraps the underlying cause of a failed [Store.Fork] call.
// The postgres adapter's Fork is transactional and leaves no partial clone
// behind on error; [MemStore.Fork] is not, and keeps whatever rows it had
// already cloned.
var ErrForkFailed = errors.New("branch: fork failed")

// Store is the persistence contract for the narrative graph. All methods
// must be safe for concurrent use. Implementations: [MemStore] for tests
// and single-process demos, and the pgx-backed adapter in
// github.com/kahani-engine/narrative/storage/postgres for durable
// multi-process deployments.
type Store interface {
	CreateStory(ctx context.Context, s Story) (Story, error)
	GetStory(ctx context.Context, id int64) (Story, error)
	SetLastResponderIdx(ctx context.Context, storyID int64, idx int) error

	CreateBranch(ctx context.Context, b Branch) (Branch, error)
	GetBranch(ctx context.Context, id int64) (Branch, error)
	ListBranches(ctx context.Context, storyID int64) ([]Branch, error)

	CreateChapter(ctx context.Context, c Chapter) (Chapter, error)
	GetChapter(ctx context.Context, id int64) (Chapter, error)
	ListChapters(ctx context.Context, branchID int64) ([]Chapter, error)

	CreateScene(ctx context.Context, sc Scene) (Scene, error)
	GetScene(ctx context.Context, id int64) (Scene, error)
	GetSceneBySequence(ctx context.Context, branchID int64, sequence int) (Scene, error)
	ListScenes(ctx context.Context, branchID int64) ([]Scene, error)
	UpdateScene(ctx context.Context, sc Scene) error

	CreateSceneVariant(ctx context.Context, v SceneVariant) (SceneVariant, error)
	GetSceneVariant(ctx context.Context, id int64) (SceneVariant, error)
	ListSceneVariants(ctx context.Context, sceneID int64) ([]SceneVariant, error)
	UpdateSceneVariant(ctx context.Context, v SceneVariant) error

	CreateSceneChoice(ctx context.Context, c SceneChoice) (SceneChoice, error)
	ListSceneChoices(ctx context.Context, sceneID int64) ([]SceneChoice, error)
	IncrementChoiceSelected(ctx context.Context, choiceID int64) error

	AppendStoryFlow(ctx context.Context, f StoryFlow) (StoryFlow, error)
	ListStoryFlow(ctx context.Context, branchID int64) ([]StoryFlow, error)
	// RecentStoryFlow returns up to limit StoryFlow rows with the highest
	// SequenceNumber <= beforeSequence, ordered oldest-first — the window
	// context assembly's recent-turns block reads from.
	RecentStoryFlow(ctx context.Context, branchID int64, beforeSequence, limit int) ([]StoryFlow, error)

	CreateCharacter(ctx context.Context, c Character) (Character, error)
	GetCharacter(ctx context.Context, id int64) (Character, error)
	ListCharacters(ctx context.Context, storyID int64) ([]Character, error)

	CreateStoryCharacter(ctx context.Context, sc StoryCharacter) (StoryCharacter, error)
	GetStoryCharacter(ctx context.Context, id int64) (StoryCharacter, error)
	ListStoryCharacters(ctx context.Context, branchID int64) ([]StoryCharacter, error)
	UpdateStoryCharacter(ctx context.Context, sc StoryCharacter) error

	// Fork creates a new Branch under storyID whose scene/variant/choice/
	// character graph is a filtered clone of sourceBranchID as of
	// forkAtSequence: rows at or before that sequence are copied, rows
	// strictly after it are dropped. See [ForkBranch] for the clone-descriptor
	// algorithm driving this.
	Fork(ctx context.Context, storyID, sourceBranchID int64, forkAtSequence int, newBranchName string) (*ForkResult, error)
}
