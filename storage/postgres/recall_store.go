package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/kahani-engine/narrative/pkg/embedprovider"
	"github.com/kahani-engine/narrative/pkg/narrative/recall"
)

// SceneIndex satisfies recall.DenseSearcher, recall.EventStore, and
// recall.SceneReader against the scene_embeddings, scene_events, scenes,
// and scene_variants tables. Obtain one via [Store.Scenes].
type SceneIndex struct {
	db       DB
	embedder embedprovider.Provider
}

// SearchDense embeds query with the configured provider and runs a
// cosine-distance nearest-neighbor search against scene_embeddings,
// scoped to one branch and excluding any sequence in excludeSequences
// (already-surfaced scenes a caller doesn't want repeated).
func (s *SceneIndex) SearchDense(ctx context.Context, storyID, branchID int64, query string, topK int, excludeSequences []int) ([]recall.DenseHit, error) {
	vecs, err := s.embedder.EmbedBatch(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("postgres: embed query: %w", err)
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("postgres: embed query: empty result")
	}
	queryVec := pgvector.NewVector(vecs[0])

	args := []any{queryVec, storyID, branchID}
	excludeClause := ""
	if len(excludeSequences) > 0 {
		placeholders := make([]any, len(excludeSequences))
		for i, seq := range excludeSequences {
			args = append(args, seq)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		excludeClause = fmt.Sprintf(" AND sequence NOT IN (%s)", joinPlaceholders(placeholders))
	}
	args = append(args, topK)
	limitArg := fmt.Sprintf("$%d", len(args))

	q := fmt.Sprintf(`
		SELECT scene_id, sequence, chapter_id, characters, content,
		       1 - (embedding <=> $1) AS similarity
		FROM scene_embeddings
		WHERE story_id = $2 AND branch_id = $3%s
		ORDER BY embedding <=> $1
		LIMIT %s`, excludeClause, limitArg)

	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: search dense: %w", err)
	}
	defer rows.Close()

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (recall.DenseHit, error) {
		var hit recall.DenseHit
		var charsJSON []byte
		if err := row.Scan(&hit.Scene.SceneID, &hit.Scene.Sequence, &hit.Scene.ChapterID, &charsJSON, &hit.Scene.Content, &hit.Score); err != nil {
			return recall.DenseHit{}, err
		}
		if err := json.Unmarshal(charsJSON, &hit.Scene.Characters); err != nil {
			return recall.DenseHit{}, fmt.Errorf("postgres: unmarshal characters: %w", err)
		}
		return hit, nil
	})
}

// IndexScene upserts the embedding and denormalized content for one scene.
// Called by whatever pipeline generates scene content, after embedding it,
// so SearchDense has something to query.
func (s *SceneIndex) IndexScene(ctx context.Context, storyID, branchID int64, ref recall.SceneRef, embedding []float32) error {
	charsJSON, err := json.Marshal(emptyStringSlice(ref.Characters))
	if err != nil {
		return fmt.Errorf("postgres: marshal characters: %w", err)
	}
	const q = `
		INSERT INTO scene_embeddings (scene_id, story_id, branch_id, sequence, chapter_id, characters, content, embedding)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (scene_id) DO UPDATE SET
			sequence = EXCLUDED.sequence,
			chapter_id = EXCLUDED.chapter_id,
			characters = EXCLUDED.characters,
			content = EXCLUDED.content,
			embedding = EXCLUDED.embedding`
	_, err = s.db.Exec(ctx, q, ref.SceneID, storyID, branchID, ref.Sequence, ref.ChapterID, charsJSON, ref.Content, pgvector.NewVector(embedding))
	if err != nil {
		return fmt.Errorf("postgres: index scene: %w", err)
	}
	return nil
}

// EventsForBranch returns every indexed scene event within one branch, for
// the sparse-search stage of the recall pipeline.
func (s *SceneIndex) EventsForBranch(ctx context.Context, storyID, branchID int64) ([]recall.Event, error) {
	const q = `
		SELECT scene_id, sequence, event_text FROM scene_events
		WHERE story_id = $1 AND branch_id = $2 ORDER BY sequence`
	rows, err := s.db.Query(ctx, q, storyID, branchID)
	if err != nil {
		return nil, fmt.Errorf("postgres: events for branch: %w", err)
	}
	defer rows.Close()
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (recall.Event, error) {
		var e recall.Event
		err := row.Scan(&e.SceneID, &e.Sequence, &e.EventText)
		return e, err
	})
}

// IndexEvent records one extracted event fact for the sparse index.
func (s *SceneIndex) IndexEvent(ctx context.Context, storyID, branchID int64, ev recall.Event) error {
	const q = `INSERT INTO scene_events (story_id, branch_id, scene_id, sequence, event_text) VALUES ($1,$2,$3,$4,$5)`
	_, err := s.db.Exec(ctx, q, storyID, branchID, ev.SceneID, ev.Sequence, ev.EventText)
	if err != nil {
		return fmt.Errorf("postgres: index event: %w", err)
	}
	return nil
}

func (s *SceneIndex) ReadScene(ctx context.Context, storyID, branchID int64, sequence int) (recall.SceneRef, error) {
	const q = `
		SELECT sc.id, sc.sequence, sc.chapter_id, sv.characters_present, sv.content
		FROM scenes sc
		JOIN scene_variants sv ON sv.scene_id = sc.id AND sv.is_original
		JOIN branches b ON b.id = sc.branch_id
		WHERE b.story_id = $1 AND sc.branch_id = $2 AND sc.sequence = $3`
	return scanSceneRef(s.db.QueryRow(ctx, q, storyID, branchID, sequence))
}

func scanSceneRef(row pgx.Row) (recall.SceneRef, error) {
	var ref recall.SceneRef
	var charsJSON []byte
	if err := row.Scan(&ref.SceneID, &ref.Sequence, &ref.ChapterID, &charsJSON, &ref.Content); err != nil {
		return recall.SceneRef{}, fmt.Errorf("postgres: read scene: %w", err)
	}
	if err := json.Unmarshal(charsJSON, &ref.Characters); err != nil {
		return recall.SceneRef{}, fmt.Errorf("postgres: unmarshal characters_present: %w", err)
	}
	return ref, nil
}

func (s *SceneIndex) ReadScenesInRange(ctx context.Context, storyID, branchID int64, minSeq, maxSeq int) ([]recall.SceneRef, error) {
	const q = `
		SELECT sc.id, sc.sequence, sc.chapter_id, sv.characters_present, sv.content
		FROM scenes sc
		JOIN scene_variants sv ON sv.scene_id = sc.id AND sv.is_original
		JOIN branches b ON b.id = sc.branch_id
		WHERE b.story_id = $1 AND sc.branch_id = $2 AND sc.sequence BETWEEN $3 AND $4
		ORDER BY sc.sequence`
	rows, err := s.db.Query(ctx, q, storyID, branchID, minSeq, maxSeq)
	if err != nil {
		return nil, fmt.Errorf("postgres: read scenes in range: %w", err)
	}
	defer rows.Close()
	var out []recall.SceneRef
	for rows.Next() {
		ref, err := scanSceneRef(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, rows.Err()
}

func (s *SceneIndex) ReadChapterScenes(ctx context.Context, storyID, branchID int64, chapterNumber int) ([]recall.SceneRef, error) {
	const q = `
		SELECT sc.id, sc.sequence, sc.chapter_id, sv.characters_present, sv.content
		FROM scenes sc
		JOIN scene_variants sv ON sv.scene_id = sc.id AND sv.is_original
		JOIN branches b ON b.id = sc.branch_id
		JOIN chapters ch ON ch.id = sc.chapter_id
		WHERE b.story_id = $1 AND sc.branch_id = $2 AND ch.number = $3
		ORDER BY sc.sequence`
	rows, err := s.db.Query(ctx, q, storyID, branchID, chapterNumber)
	if err != nil {
		return nil, fmt.Errorf("postgres: read chapter scenes: %w", err)
	}
	defer rows.Close()
	var out []recall.SceneRef
	for rows.Next() {
		ref, err := scanSceneRef(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, rows.Err()
}

func joinPlaceholders(ph []any) string {
	out := ""
	for i, p := range ph {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%v", p)
	}
	return out
}
