package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kahani-engine/narrative/pkg/narrative/branch"
)

// BranchStore is a branch.Store backed by PostgreSQL. Obtain one via
// [Store.Branch] rather than constructing directly, except in tests that
// want to drive a bare DB/transaction.
type BranchStore struct {
	db DB
}

func (s *BranchStore) CreateStory(ctx context.Context, st branch.Story) (branch.Story, error) {
	const q = `INSERT INTO stories (title) VALUES ($1) RETURNING id, created_at, last_responder_idx`
	err := s.db.QueryRow(ctx, q, st.Title).Scan(&st.ID, &st.CreatedAt, &st.LastResponderIdx)
	if err != nil {
		return branch.Story{}, fmt.Errorf("postgres: create story: %w", err)
	}
	return st, nil
}

func (s *BranchStore) GetStory(ctx context.Context, id int64) (branch.Story, error) {
	const q = `SELECT id, title, created_at, last_responder_idx FROM stories WHERE id = $1`
	var st branch.Story
	err := s.db.QueryRow(ctx, q, id).Scan(&st.ID, &st.Title, &st.CreatedAt, &st.LastResponderIdx)
	if errors.Is(err, pgx.ErrNoRows) {
		return branch.Story{}, branch.ErrNotFound
	}
	if err != nil {
		return branch.Story{}, fmt.Errorf("postgres: get story %d: %w", id, err)
	}
	return st, nil
}

func (s *BranchStore) SetLastResponderIdx(ctx context.Context, storyID int64, idx int) error {
	const q = `UPDATE stories SET last_responder_idx = $2 WHERE id = $1`
	tag, err := s.db.Exec(ctx, q, storyID, idx)
	if err != nil {
		return fmt.Errorf("postgres: set last responder idx: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return branch.ErrNotFound
	}
	return nil
}

func (s *BranchStore) CreateBranch(ctx context.Context, b branch.Branch) (branch.Branch, error) {
	const q = `
		INSERT INTO branches (story_id, name, parent_branch_id, forked_at_sequence)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	err := s.db.QueryRow(ctx, q, b.StoryID, b.Name, b.ParentBranchID, b.ForkedAtSequence).
		Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return branch.Branch{}, fmt.Errorf("postgres: create branch: %w", err)
	}
	return b, nil
}

func (s *BranchStore) GetBranch(ctx context.Context, id int64) (branch.Branch, error) {
	const q = `
		SELECT id, story_id, name, parent_branch_id, forked_at_sequence, created_at
		FROM branches WHERE id = $1`
	var b branch.Branch
	err := s.db.QueryRow(ctx, q, id).
		Scan(&b.ID, &b.StoryID, &b.Name, &b.ParentBranchID, &b.ForkedAtSequence, &b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return branch.Branch{}, branch.ErrNotFound
	}
	if err != nil {
		return branch.Branch{}, fmt.Errorf("postgres: get branch %d: %w", id, err)
	}
	return b, nil
}

func (s *BranchStore) ListBranches(ctx context.Context, storyID int64) ([]branch.Branch, error) {
	const q = `
		SELECT id, story_id, name, parent_branch_id, forked_at_sequence, created_at
		FROM branches WHERE story_id = $1 ORDER BY id`
	rows, err := s.db.Query(ctx, q, storyID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list branches: %w", err)
	}
	defer rows.Close()
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (branch.Branch, error) {
		var b branch.Branch
		err := row.Scan(&b.ID, &b.StoryID, &b.Name, &b.ParentBranchID, &b.ForkedAtSequence, &b.CreatedAt)
		return b, err
	})
}

func (s *BranchStore) CreateChapter(ctx context.Context, c branch.Chapter) (branch.Chapter, error) {
	const q = `INSERT INTO chapters (branch_id, number, title) VALUES ($1, $2, $3) RETURNING id`
	err := s.db.QueryRow(ctx, q, c.BranchID, c.Number, c.Title).Scan(&c.ID)
	if err != nil {
		return branch.Chapter{}, fmt.Errorf("postgres: create chapter: %w", err)
	}
	return c, nil
}

func (s *BranchStore) GetChapter(ctx context.Context, id int64) (branch.Chapter, error) {
	const q = `SELECT id, branch_id, number, title FROM chapters WHERE id = $1`
	var c branch.Chapter
	err := s.db.QueryRow(ctx, q, id).Scan(&c.ID, &c.BranchID, &c.Number, &c.Title)
	if errors.Is(err, pgx.ErrNoRows) {
		return branch.Chapter{}, branch.ErrNotFound
	}
	if err != nil {
		return branch.Chapter{}, fmt.Errorf("postgres: get chapter %d: %w", id, err)
	}
	return c, nil
}

func (s *BranchStore) ListChapters(ctx context.Context, branchID int64) ([]branch.Chapter, error) {
	const q = `SELECT id, branch_id, number, title FROM chapters WHERE branch_id = $1 ORDER BY number`
	rows, err := s.db.Query(ctx, q, branchID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list chapters: %w", err)
	}
	defer rows.Close()
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (branch.Chapter, error) {
		var c branch.Chapter
		err := row.Scan(&c.ID, &c.BranchID, &c.Number, &c.Title)
		return c, err
	})
}

func (s *BranchStore) CreateScene(ctx context.Context, sc branch.Scene) (branch.Scene, error) {
	const q = `
		INSERT INTO scenes (branch_id, sequence, chapter_id, type, parent_scene_id, is_deleted, deletion_point)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	err := s.db.QueryRow(ctx, q, sc.BranchID, sc.Sequence, sc.ChapterID, string(sc.Type), sc.ParentSceneID, sc.IsDeleted, sc.DeletionPoint).
		Scan(&sc.ID)
	if err != nil {
		return branch.Scene{}, fmt.Errorf("postgres: create scene: %w", err)
	}
	return sc, nil
}

func (s *BranchStore) GetScene(ctx context.Context, id int64) (branch.Scene, error) {
	const q = `
		SELECT id, branch_id, sequence, chapter_id, type, parent_scene_id, is_deleted, deletion_point
		FROM scenes WHERE id = $1`
	return scanScene(s.db.QueryRow(ctx, q, id))
}

func (s *BranchStore) GetSceneBySequence(ctx context.Context, branchID int64, sequence int) (branch.Scene, error) {
	const q = `
		SELECT id, branch_id, sequence, chapter_id, type, parent_scene_id, is_deleted, deletion_point
		FROM scenes WHERE branch_id = $1 AND sequence = $2`
	return scanScene(s.db.QueryRow(ctx, q, branchID, sequence))
}

func scanScene(row pgx.Row) (branch.Scene, error) {
	var sc branch.Scene
	var sceneType string
	err := row.Scan(&sc.ID, &sc.BranchID, &sc.Sequence, &sc.ChapterID, &sceneType, &sc.ParentSceneID, &sc.IsDeleted, &sc.DeletionPoint)
	if errors.Is(err, pgx.ErrNoRows) {
		return branch.Scene{}, branch.ErrNotFound
	}
	if err != nil {
		return branch.Scene{}, fmt.Errorf("postgres: get scene: %w", err)
	}
	sc.Type = branch.SceneType(sceneType)
	return sc, nil
}

func (s *BranchStore) ListScenes(ctx context.Context, branchID int64) ([]branch.Scene, error) {
	const q = `
		SELECT id, branch_id, sequence, chapter_id, type, parent_scene_id, is_deleted, deletion_point
		FROM scenes WHERE branch_id = $1 ORDER BY sequence`
	rows, err := s.db.Query(ctx, q, branchID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list scenes: %w", err)
	}
	defer rows.Close()
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (branch.Scene, error) {
		var sc branch.Scene
		var sceneType string
		err := row.Scan(&sc.ID, &sc.BranchID, &sc.Sequence, &sc.ChapterID, &sceneType, &sc.ParentSceneID, &sc.IsDeleted, &sc.DeletionPoint)
		sc.Type = branch.SceneType(sceneType)
		return sc, err
	})
}

func (s *BranchStore) UpdateScene(ctx context.Context, sc branch.Scene) error {
	const q = `
		UPDATE scenes SET chapter_id = $2, type = $3, parent_scene_id = $4, is_deleted = $5, deletion_point = $6
		WHERE id = $1`
	tag, err := s.db.Exec(ctx, q, sc.ID, sc.ChapterID, string(sc.Type), sc.ParentSceneID, sc.IsDeleted, sc.DeletionPoint)
	if err != nil {
		return fmt.Errorf("postgres: update scene: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return branch.ErrNotFound
	}
	return nil
}

func (s *BranchStore) CreateSceneVariant(ctx context.Context, v branch.SceneVariant) (branch.SceneVariant, error) {
	charsJSON, err := json.Marshal(emptySlice(v.CharactersPresent))
	if err != nil {
		return branch.SceneVariant{}, fmt.Errorf("postgres: marshal characters_present: %w", err)
	}
	const q = `
		INSERT INTO scene_variants (
			scene_id, variant_number, is_original, content, title, characters_present,
			location, mood, generation_prompt, generation_method, original_content,
			user_edited, user_rating, is_favorite
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		RETURNING id`
	err = s.db.QueryRow(ctx, q,
		v.SceneID, v.VariantNumber, v.IsOriginal, v.Content, v.Title, charsJSON,
		v.Location, v.Mood, v.GenerationPrompt, v.GenerationMethod, v.OriginalContent,
		v.UserEdited, v.UserRating, v.IsFavorite,
	).Scan(&v.ID)
	if err != nil {
		return branch.SceneVariant{}, fmt.Errorf("postgres: create scene variant: %w", err)
	}
	return v, nil
}

func (s *BranchStore) GetSceneVariant(ctx context.Context, id int64) (branch.SceneVariant, error) {
	const q = `
		SELECT id, scene_id, variant_number, is_original, content, title, characters_present,
		       location, mood, generation_prompt, generation_method, original_content,
		       user_edited, user_rating, is_favorite
		FROM scene_variants WHERE id = $1`
	return scanSceneVariant(s.db.QueryRow(ctx, q, id))
}

func scanSceneVariant(row pgx.Row) (branch.SceneVariant, error) {
	var v branch.SceneVariant
	var charsJSON []byte
	err := row.Scan(&v.ID, &v.SceneID, &v.VariantNumber, &v.IsOriginal, &v.Content, &v.Title, &charsJSON,
		&v.Location, &v.Mood, &v.GenerationPrompt, &v.GenerationMethod, &v.OriginalContent,
		&v.UserEdited, &v.UserRating, &v.IsFavorite)
	if errors.Is(err, pgx.ErrNoRows) {
		return branch.SceneVariant{}, branch.ErrNotFound
	}
	if err != nil {
		return branch.SceneVariant{}, fmt.Errorf("postgres: get scene variant: %w", err)
	}
	if err := json.Unmarshal(charsJSON, &v.CharactersPresent); err != nil {
		return branch.SceneVariant{}, fmt.Errorf("postgres: unmarshal characters_present: %w", err)
	}
	return v, nil
}

func (s *BranchStore) ListSceneVariants(ctx context.Context, sceneID int64) ([]branch.SceneVariant, error) {
	const q = `
		SELECT id, scene_id, variant_number, is_original, content, title, characters_present,
		       location, mood, generation_prompt, generation_method, original_content,
		       user_edited, user_rating, is_favorite
		FROM scene_variants WHERE scene_id = $1 ORDER BY variant_number`
	rows, err := s.db.Query(ctx, q, sceneID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list scene variants: %w", err)
	}
	defer rows.Close()
	var out []branch.SceneVariant
	for rows.Next() {
		v, err := scanSceneVariant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *BranchStore) UpdateSceneVariant(ctx context.Context, v branch.SceneVariant) error {
	charsJSON, err := json.Marshal(emptySlice(v.CharactersPresent))
	if err != nil {
		return fmt.Errorf("postgres: marshal characters_present: %w", err)
	}
	const q = `
		UPDATE scene_variants SET
			is_original = $2, content = $3, title = $4, characters_present = $5,
			location = $6, mood = $7, generation_prompt = $8, generation_method = $9,
			original_content = $10, user_edited = $11, user_rating = $12, is_favorite = $13
		WHERE id = $1`
	tag, err := s.db.Exec(ctx, q, v.ID, v.IsOriginal, v.Content, v.Title, charsJSON,
		v.Location, v.Mood, v.GenerationPrompt, v.GenerationMethod, v.OriginalContent,
		v.UserEdited, v.UserRating, v.IsFavorite)
	if err != nil {
		return fmt.Errorf("postgres: update scene variant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return branch.ErrNotFound
	}
	return nil
}

func (s *BranchStore) CreateSceneChoice(ctx context.Context, c branch.SceneChoice) (branch.SceneChoice, error) {
	const q = `
		INSERT INTO scene_choices (scene_id, choice_text, choice_order, times_selected, leads_to_scene_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err := s.db.QueryRow(ctx, q, c.SceneID, c.ChoiceText, c.ChoiceOrder, c.TimesSelected, c.LeadsToSceneID).Scan(&c.ID)
	if err != nil {
		return branch.SceneChoice{}, fmt.Errorf("postgres: create scene choice: %w", err)
	}
	return c, nil
}

func (s *BranchStore) ListSceneChoices(ctx context.Context, sceneID int64) ([]branch.SceneChoice, error) {
	const q = `
		SELECT id, scene_id, choice_text, choice_order, times_selected, leads_to_scene_id
		FROM scene_choices WHERE scene_id = $1 ORDER BY choice_order`
	rows, err := s.db.Query(ctx, q, sceneID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list scene choices: %w", err)
	}
	defer rows.Close()
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (branch.SceneChoice, error) {
		var c branch.SceneChoice
		err := row.Scan(&c.ID, &c.SceneID, &c.ChoiceText, &c.ChoiceOrder, &c.TimesSelected, &c.LeadsToSceneID)
		return c, err
	})
}

func (s *BranchStore) IncrementChoiceSelected(ctx context.Context, choiceID int64) error {
	const q = `UPDATE scene_choices SET times_selected = times_selected + 1 WHERE id = $1`
	tag, err := s.db.Exec(ctx, q, choiceID)
	if err != nil {
		return fmt.Errorf("postgres: increment choice selected: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return branch.ErrNotFound
	}
	return nil
}

func (s *BranchStore) AppendStoryFlow(ctx context.Context, f branch.StoryFlow) (branch.StoryFlow, error) {
	const q = `
		INSERT INTO story_flow (story_id, branch_id, sequence_number, scene_id, scene_variant_id, from_choice_id, choice_text, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id`
	err := s.db.QueryRow(ctx, q, f.StoryID, f.BranchID, f.SequenceNumber, f.SceneID, f.SceneVariantID, f.FromChoiceID, f.ChoiceText, f.IsActive).
		Scan(&f.ID)
	if err != nil {
		return branch.StoryFlow{}, fmt.Errorf("postgres: append story flow: %w", err)
	}
	return f, nil
}

func (s *BranchStore) ListStoryFlow(ctx context.Context, branchID int64) ([]branch.StoryFlow, error) {
	const q = `
		SELECT id, story_id, branch_id, sequence_number, scene_id, scene_variant_id, from_choice_id, choice_text, is_active
		FROM story_flow WHERE branch_id = $1 ORDER BY sequence_number`
	rows, err := s.db.Query(ctx, q, branchID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list story flow: %w", err)
	}
	defer rows.Close()
	return pgx.CollectRows(rows, scanStoryFlow)
}

func (s *BranchStore) RecentStoryFlow(ctx context.Context, branchID int64, beforeSequence, limit int) ([]branch.StoryFlow, error) {
	const q = `
		SELECT id, story_id, branch_id, sequence_number, scene_id, scene_variant_id, from_choice_id, choice_text, is_active
		FROM story_flow
		WHERE branch_id = $1 AND sequence_number <= $2
		ORDER BY sequence_number DESC
		LIMIT $3`
	rows, err := s.db.Query(ctx, q, branchID, beforeSequence, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: recent story flow: %w", err)
	}
	defer rows.Close()
	out, err := pgx.CollectRows(rows, scanStoryFlow)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func scanStoryFlow(row pgx.CollectableRow) (branch.StoryFlow, error) {
	var f branch.StoryFlow
	err := row.Scan(&f.ID, &f.StoryID, &f.BranchID, &f.SequenceNumber, &f.SceneID, &f.SceneVariantID, &f.FromChoiceID, &f.ChoiceText, &f.IsActive)
	return f, err
}

func (s *BranchStore) CreateCharacter(ctx context.Context, c branch.Character) (branch.Character, error) {
	const q = `
		INSERT INTO characters (story_id, name, description, is_player_character)
		VALUES ($1, $2, $3, $4) RETURNING id`
	err := s.db.QueryRow(ctx, q, c.StoryID, c.Name, c.Description, c.IsPlayerCharacter).Scan(&c.ID)
	if err != nil {
		return branch.Character{}, fmt.Errorf("postgres: create character: %w", err)
	}
	return c, nil
}

func (s *BranchStore) GetCharacter(ctx context.Context, id int64) (branch.Character, error) {
	const q = `SELECT id, story_id, name, description, is_player_character FROM characters WHERE id = $1`
	var c branch.Character
	err := s.db.QueryRow(ctx, q, id).Scan(&c.ID, &c.StoryID, &c.Name, &c.Description, &c.IsPlayerCharacter)
	if errors.Is(err, pgx.ErrNoRows) {
		return branch.Character{}, branch.ErrNotFound
	}
	if err != nil {
		return branch.Character{}, fmt.Errorf("postgres: get character %d: %w", id, err)
	}
	return c, nil
}

func (s *BranchStore) ListCharacters(ctx context.Context, storyID int64) ([]branch.Character, error) {
	const q = `SELECT id, story_id, name, description, is_player_character FROM characters WHERE story_id = $1 ORDER BY name`
	rows, err := s.db.Query(ctx, q, storyID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list characters: %w", err)
	}
	defer rows.Close()
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (branch.Character, error) {
		var c branch.Character
		err := row.Scan(&c.ID, &c.StoryID, &c.Name, &c.Description, &c.IsPlayerCharacter)
		return c, err
	})
}

func (s *BranchStore) CreateStoryCharacter(ctx context.Context, sc branch.StoryCharacter) (branch.StoryCharacter, error) {
	relJSON, err := json.Marshal(emptyRelationships(sc.Relationships))
	if err != nil {
		return branch.StoryCharacter{}, fmt.Errorf("postgres: marshal relationships: %w", err)
	}
	const q = `
		INSERT INTO story_characters (branch_id, character_id, talkativeness, relationships, turn_mode)
		VALUES ($1,$2,$3,$4,$5) RETURNING id`
	err = s.db.QueryRow(ctx, q, sc.BranchID, sc.CharacterID, sc.Talkativeness, relJSON, string(sc.TurnMode)).Scan(&sc.ID)
	if err != nil {
		return branch.StoryCharacter{}, fmt.Errorf("postgres: create story character: %w", err)
	}
	return sc, nil
}

func (s *BranchStore) GetStoryCharacter(ctx context.Context, id int64) (branch.StoryCharacter, error) {
	const q = `
		SELECT id, branch_id, character_id, talkativeness, relationships, turn_mode
		FROM story_characters WHERE id = $1`
	return scanStoryCharacter(s.db.QueryRow(ctx, q, id))
}

func scanStoryCharacter(row pgx.Row) (branch.StoryCharacter, error) {
	var sc branch.StoryCharacter
	var relJSON []byte
	var turnMode string
	err := row.Scan(&sc.ID, &sc.BranchID, &sc.CharacterID, &sc.Talkativeness, &relJSON, &turnMode)
	if errors.Is(err, pgx.ErrNoRows) {
		return branch.StoryCharacter{}, branch.ErrNotFound
	}
	if err != nil {
		return branch.StoryCharacter{}, fmt.Errorf("postgres: get story character: %w", err)
	}
	if err := json.Unmarshal(relJSON, &sc.Relationships); err != nil {
		return branch.StoryCharacter{}, fmt.Errorf("postgres: unmarshal relationships: %w", err)
	}
	sc.TurnMode = branch.TurnMode(turnMode)
	return sc, nil
}

func (s *BranchStore) ListStoryCharacters(ctx context.Context, branchID int64) ([]branch.StoryCharacter, error) {
	const q = `
		SELECT id, branch_id, character_id, talkativeness, relationships, turn_mode
		FROM story_characters WHERE branch_id = $1 ORDER BY id`
	rows, err := s.db.Query(ctx, q, branchID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list story characters: %w", err)
	}
	defer rows.Close()
	var out []branch.StoryCharacter
	for rows.Next() {
		sc, err := scanStoryCharacter(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

func (s *BranchStore) UpdateStoryCharacter(ctx context.Context, sc branch.StoryCharacter) error {
	relJSON, err := json.Marshal(emptyRelationships(sc.Relationships))
	if err != nil {
		return fmt.Errorf("postgres: marshal relationships: %w", err)
	}
	const q = `
		UPDATE story_characters SET talkativeness = $2, relationships = $3, turn_mode = $4
		WHERE id = $1`
	tag, err := s.db.Exec(ctx, q, sc.ID, sc.Talkativeness, relJSON, string(sc.TurnMode))
	if err != nil {
		return fmt.Errorf("postgres: update story character: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return branch.ErrNotFound
	}
	return nil
}

// Fork runs [branch.ForkBranch] inside a SQL transaction scoped to a
// BranchStore bound to that transaction, so a failure partway through the
// clone leaves no partial branch visible to other connections. (The
// in-memory branch.MemStore.Fork gives no such guarantee.)
func (s *BranchStore) Fork(ctx context.Context, storyID, sourceBranchID int64, forkAtSequence int, newBranchName string) (*branch.ForkResult, error) {
	pool, ok := s.db.(*pgxpool.Pool)
	if !ok {
		return nil, fmt.Errorf("postgres: fork requires a *pgxpool.Pool-backed store")
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: begin transaction: %v", branch.ErrForkFailed, err)
	}
	defer tx.Rollback(ctx)

	txStore := &BranchStore{db: tx}
	result, err := branch.ForkBranch(ctx, txStore, storyID, sourceBranchID, forkAtSequence, newBranchName)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: commit transaction: %v", branch.ErrForkFailed, err)
	}
	return result, nil
}

func emptySlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func emptyRelationships(rs []branch.Relationship) []branch.Relationship {
	if rs == nil {
		return []branch.Relationship{}
	}
	return rs
}
