package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kahani-engine/narrative/pkg/narrative/npc"
)

// NPCStore is an npc.Store backed by PostgreSQL. Obtain one via
// [Store.NPC].
type NPCStore struct {
	db DB
}

func (s *NPCStore) CreateMention(ctx context.Context, m npc.Mention) (npc.Mention, error) {
	snippetsJSON, err := json.Marshal(emptyStringSlice(m.ContextSnippets))
	if err != nil {
		return npc.Mention{}, fmt.Errorf("postgres: marshal context_snippets: %w", err)
	}
	propsJSON, err := json.Marshal(emptyStringMap(m.Properties))
	if err != nil {
		return npc.Mention{}, fmt.Errorf("postgres: marshal properties: %w", err)
	}

	const q = `
		INSERT INTO npc_mentions (
			story_id, branch_id, scene_id, character_name, sequence_number,
			mention_count, has_dialogue, has_actions, has_relationships,
			context_snippets, properties
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING id, created_at`
	err = s.db.QueryRow(ctx, q,
		m.StoryID, m.BranchID, m.SceneID, m.CharacterName, m.SequenceNumber,
		m.MentionCount, m.HasDialogue, m.HasActions, m.HasRelationships,
		snippetsJSON, propsJSON,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return npc.Mention{}, fmt.Errorf("postgres: create mention: %w", err)
	}
	return m, nil
}

func (s *NPCStore) GetTracking(ctx context.Context, storyID, branchID int64, characterName string) (npc.Tracking, error) {
	const q = `
		SELECT id, story_id, branch_id, character_name, entity_type,
		       total_mentions, scene_count, first_appearance_scene, last_appearance_scene,
		       has_dialogue_count, has_actions_count, significance_score, frequency_score,
		       importance_score, extracted_profile, crossed_threshold, user_prompted,
		       profile_extracted, converted_to_character, last_calculated
		FROM npc_tracking WHERE story_id = $1 AND branch_id = $2 AND character_name = $3`
	return scanTracking(s.db.QueryRow(ctx, q, storyID, branchID, characterName))
}

func scanTracking(row pgx.Row) (npc.Tracking, error) {
	var t npc.Tracking
	var entityType string
	var profileJSON []byte
	err := row.Scan(
		&t.ID, &t.StoryID, &t.BranchID, &t.CharacterName, &entityType,
		&t.TotalMentions, &t.SceneCount, &t.FirstAppearanceScene, &t.LastAppearanceScene,
		&t.HasDialogueCount, &t.HasActionsCount, &t.SignificanceScore, &t.FrequencyScore,
		&t.ImportanceScore, &profileJSON, &t.CrossedThreshold, &t.UserPrompted,
		&t.ProfileExtracted, &t.ConvertedToCharacter, &t.LastCalculated,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return npc.Tracking{}, npc.ErrNotFound
	}
	if err != nil {
		return npc.Tracking{}, fmt.Errorf("postgres: get tracking: %w", err)
	}
	t.EntityType = npc.EntityType(entityType)
	if profileJSON != nil {
		var p npc.Profile
		if err := json.Unmarshal(profileJSON, &p); err != nil {
			return npc.Tracking{}, fmt.Errorf("postgres: unmarshal extracted_profile: %w", err)
		}
		t.ExtractedProfile = &p
	}
	return t, nil
}

func (s *NPCStore) ListTracking(ctx context.Context, storyID, branchID int64) ([]npc.Tracking, error) {
	const q = `
		SELECT id, story_id, branch_id, character_name, entity_type,
		       total_mentions, scene_count, first_appearance_scene, last_appearance_scene,
		       has_dialogue_count, has_actions_count, significance_score, frequency_score,
		       importance_score, extracted_profile, crossed_threshold, user_prompted,
		       profile_extracted, converted_to_character, last_calculated
		FROM npc_tracking WHERE story_id = $1 AND branch_id = $2 ORDER BY importance_score DESC`
	rows, err := s.db.Query(ctx, q, storyID, branchID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list tracking: %w", err)
	}
	defer rows.Close()
	var out []npc.Tracking
	for rows.Next() {
		t, err := scanTracking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *NPCStore) UpsertTracking(ctx context.Context, t npc.Tracking) (npc.Tracking, error) {
	var profileJSON []byte
	if t.ExtractedProfile != nil {
		var err error
		profileJSON, err = json.Marshal(t.ExtractedProfile)
		if err != nil {
			return npc.Tracking{}, fmt.Errorf("postgres: marshal extracted_profile: %w", err)
		}
	}

	const q = `
		INSERT INTO npc_tracking (
			story_id, branch_id, character_name, entity_type,
			total_mentions, scene_count, first_appearance_scene, last_appearance_scene,
			has_dialogue_count, has_actions_count, significance_score, frequency_score,
			importance_score, extracted_profile, crossed_threshold, user_prompted,
			profile_extracted, converted_to_character, last_calculated
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,now())
		ON CONFLICT (story_id, branch_id, character_name) DO UPDATE SET
			entity_type = EXCLUDED.entity_type,
			total_mentions = EXCLUDED.total_mentions,
			scene_count = EXCLUDED.scene_count,
			first_appearance_scene = EXCLUDED.first_appearance_scene,
			last_appearance_scene = EXCLUDED.last_appearance_scene,
			has_dialogue_count = EXCLUDED.has_dialogue_count,
			has_actions_count = EXCLUDED.has_actions_count,
			significance_score = EXCLUDED.significance_score,
			frequency_score = EXCLUDED.frequency_score,
			importance_score = EXCLUDED.importance_score,
			extracted_profile = EXCLUDED.extracted_profile,
			crossed_threshold = EXCLUDED.crossed_threshold,
			user_prompted = EXCLUDED.user_prompted,
			profile_extracted = EXCLUDED.profile_extracted,
			converted_to_character = EXCLUDED.converted_to_character,
			last_calculated = now()
		RETURNING id, last_calculated`
	err := s.db.QueryRow(ctx, q,
		t.StoryID, t.BranchID, t.CharacterName, string(t.EntityType),
		t.TotalMentions, t.SceneCount, t.FirstAppearanceScene, t.LastAppearanceScene,
		t.HasDialogueCount, t.HasActionsCount, t.SignificanceScore, t.FrequencyScore,
		t.ImportanceScore, profileJSON, t.CrossedThreshold, t.UserPrompted,
		t.ProfileExtracted, t.ConvertedToCharacter,
	).Scan(&t.ID, &t.LastCalculated)
	if err != nil {
		return npc.Tracking{}, fmt.Errorf("postgres: upsert tracking: %w", err)
	}
	return t, nil
}

func (s *NPCStore) MentionScenesFor(ctx context.Context, storyID, branchID int64, characterName string) ([]int64, error) {
	const q = `
		SELECT DISTINCT scene_id FROM npc_mentions
		WHERE story_id = $1 AND branch_id = $2 AND character_name = $3
		ORDER BY scene_id`
	rows, err := s.db.Query(ctx, q, storyID, branchID, characterName)
	if err != nil {
		return nil, fmt.Errorf("postgres: mention scenes for: %w", err)
	}
	defer rows.Close()
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}

func (s *NPCStore) PutSnapshot(ctx context.Context, snap npc.Snapshot) (npc.Snapshot, error) {
	activeJSON, err := json.Marshal(emptyContextEntries(snap.ActiveForContext))
	if err != nil {
		return npc.Snapshot{}, fmt.Errorf("postgres: marshal active_for_context: %w", err)
	}
	inactiveJSON, err := json.Marshal(emptyContextEntries(snap.InactiveForContext))
	if err != nil {
		return npc.Snapshot{}, fmt.Errorf("postgres: marshal inactive_for_context: %w", err)
	}

	const q = `
		INSERT INTO npc_snapshots (
			scene_id, scene_sequence, story_id, branch_id, chapter_id,
			active_for_context, inactive_for_context
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id, created_at`
	err = s.db.QueryRow(ctx, q,
		snap.SceneID, snap.SceneSequence, snap.StoryID, snap.BranchID, snap.ChapterID,
		activeJSON, inactiveJSON,
	).Scan(&snap.ID, &snap.CreatedAt)
	if err != nil {
		return npc.Snapshot{}, fmt.Errorf("postgres: put snapshot: %w", err)
	}
	return snap, nil
}

func (s *NPCStore) GetSnapshotForScene(ctx context.Context, sceneID int64) (npc.Snapshot, error) {
	const q = `
		SELECT id, scene_id, scene_sequence, story_id, branch_id, chapter_id,
		       active_for_context, inactive_for_context, created_at
		FROM npc_snapshots WHERE scene_id = $1`
	var snap npc.Snapshot
	var activeJSON, inactiveJSON []byte
	err := s.db.QueryRow(ctx, q, sceneID).Scan(
		&snap.ID, &snap.SceneID, &snap.SceneSequence, &snap.StoryID, &snap.BranchID, &snap.ChapterID,
		&activeJSON, &inactiveJSON, &snap.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return npc.Snapshot{}, npc.ErrNotFound
	}
	if err != nil {
		return npc.Snapshot{}, fmt.Errorf("postgres: get snapshot for scene %d: %w", sceneID, err)
	}
	if err := json.Unmarshal(activeJSON, &snap.ActiveForContext); err != nil {
		return npc.Snapshot{}, fmt.Errorf("postgres: unmarshal active_for_context: %w", err)
	}
	if err := json.Unmarshal(inactiveJSON, &snap.InactiveForContext); err != nil {
		return npc.Snapshot{}, fmt.Errorf("postgres: unmarshal inactive_for_context: %w", err)
	}
	return snap, nil
}

func emptyStringSlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func emptyStringMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

func emptyContextEntries(e []npc.ContextEntry) []npc.ContextEntry {
	if e == nil {
		return []npc.ContextEntry{}
	}
	return e
}
