// Package postgres provides the durable, multi-process persistence layer
// for the narrative engine: a pgx-backed implementation of
// [github.com/kahani-engine/narrative/pkg/narrative/branch.Store] and
// [github.com/kahani-engine/narrative/pkg/narrative/npc.Store], plus a
// pgvector-backed dense index satisfying
// [github.com/kahani-engine/narrative/pkg/narrative/recall.DenseSearcher],
// [recall.EventStore], and [recall.SceneReader].
//
// All three concerns share a single connection pool. The pgvector
// extension must be available in the target database; [Migrate] installs
// it automatically via CREATE EXTENSION IF NOT EXISTS.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
)

const ddlGraph = `
CREATE TABLE IF NOT EXISTS stories (
    id                 BIGSERIAL    PRIMARY KEY,
    title              TEXT         NOT NULL,
    created_at         TIMESTAMPTZ  NOT NULL DEFAULT now(),
    last_responder_idx INT          NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS branches (
    id                 BIGSERIAL    PRIMARY KEY,
    story_id           BIGINT       NOT NULL REFERENCES stories(id) ON DELETE CASCADE,
    name               TEXT         NOT NULL,
    parent_branch_id   BIGINT       REFERENCES branches(id),
    forked_at_sequence INT          NOT NULL DEFAULT 0,
    created_at         TIMESTAMPTZ  NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_branches_story ON branches(story_id);

CREATE TABLE IF NOT EXISTS chapters (
    id         BIGSERIAL PRIMARY KEY,
    branch_id  BIGINT    NOT NULL REFERENCES branches(id) ON DELETE CASCADE,
    number     INT       NOT NULL,
    title      TEXT      NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_chapters_branch ON chapters(branch_id);

CREATE TABLE IF NOT EXISTS scenes (
    id              BIGSERIAL PRIMARY KEY,
    branch_id       BIGINT    NOT NULL REFERENCES branches(id) ON DELETE CASCADE,
    sequence        INT       NOT NULL,
    chapter_id      BIGINT    REFERENCES chapters(id),
    type            TEXT      NOT NULL DEFAULT 'narrative',
    parent_scene_id BIGINT,
    is_deleted      BOOLEAN   NOT NULL DEFAULT false,
    deletion_point  INT,
    UNIQUE (branch_id, sequence)
);
CREATE INDEX IF NOT EXISTS idx_scenes_branch ON scenes(branch_id);

CREATE TABLE IF NOT EXISTS scene_variants (
    id                  BIGSERIAL PRIMARY KEY,
    scene_id            BIGINT    NOT NULL REFERENCES scenes(id) ON DELETE CASCADE,
    variant_number      INT       NOT NULL,
    is_original         BOOLEAN   NOT NULL DEFAULT false,
    content             TEXT      NOT NULL DEFAULT '',
    title               TEXT      NOT NULL DEFAULT '',
    characters_present  JSONB     NOT NULL DEFAULT '[]',
    location            TEXT      NOT NULL DEFAULT '',
    mood                TEXT      NOT NULL DEFAULT '',
    generation_prompt   TEXT      NOT NULL DEFAULT '',
    generation_method   TEXT      NOT NULL DEFAULT 'auto',
    original_content    TEXT      NOT NULL DEFAULT '',
    user_edited         BOOLEAN   NOT NULL DEFAULT false,
    user_rating         INT,
    is_favorite         BOOLEAN   NOT NULL DEFAULT false
);
CREATE INDEX IF NOT EXISTS idx_scene_variants_scene ON scene_variants(scene_id);

CREATE TABLE IF NOT EXISTS scene_choices (
    id                BIGSERIAL PRIMARY KEY,
    scene_id          BIGINT    NOT NULL REFERENCES scenes(id) ON DELETE CASCADE,
    choice_text       TEXT      NOT NULL DEFAULT '',
    choice_order      INT       NOT NULL DEFAULT 0,
    times_selected    INT       NOT NULL DEFAULT 0,
    leads_to_scene_id BIGINT
);
CREATE INDEX IF NOT EXISTS idx_scene_choices_scene ON scene_choices(scene_id);

CREATE TABLE IF NOT EXISTS story_flow (
    id               BIGSERIAL PRIMARY KEY,
    story_id         BIGINT    NOT NULL REFERENCES stories(id) ON DELETE CASCADE,
    branch_id        BIGINT    NOT NULL REFERENCES branches(id) ON DELETE CASCADE,
    sequence_number  INT       NOT NULL,
    scene_id         BIGINT    NOT NULL,
    scene_variant_id BIGINT    NOT NULL,
    from_choice_id   BIGINT,
    choice_text      TEXT      NOT NULL DEFAULT '',
    is_active        BOOLEAN   NOT NULL DEFAULT true,
    UNIQUE (branch_id, sequence_number)
);
CREATE INDEX IF NOT EXISTS idx_story_flow_branch_seq ON story_flow(branch_id, sequence_number);

CREATE TABLE IF NOT EXISTS characters (
    id                   BIGSERIAL PRIMARY KEY,
    story_id             BIGINT    NOT NULL REFERENCES stories(id) ON DELETE CASCADE,
    name                 TEXT      NOT NULL,
    description          TEXT      NOT NULL DEFAULT '',
    is_player_character  BOOLEAN   NOT NULL DEFAULT false
);
CREATE INDEX IF NOT EXISTS idx_characters_story ON characters(story_id);

CREATE TABLE IF NOT EXISTS story_characters (
    id             BIGSERIAL PRIMARY KEY,
    branch_id      BIGINT    NOT NULL REFERENCES branches(id) ON DELETE CASCADE,
    character_id   BIGINT    NOT NULL REFERENCES characters(id) ON DELETE CASCADE,
    talkativeness  DOUBLE PRECISION NOT NULL DEFAULT 0.5,
    relationships  JSONB     NOT NULL DEFAULT '[]',
    turn_mode      TEXT      NOT NULL DEFAULT 'natural',
    UNIQUE (branch_id, character_id)
);
CREATE INDEX IF NOT EXISTS idx_story_characters_branch ON story_characters(branch_id);
`

const ddlNPC = `
CREATE TABLE IF NOT EXISTS npc_mentions (
    id                 BIGSERIAL PRIMARY KEY,
    story_id           BIGINT    NOT NULL,
    branch_id          BIGINT    NOT NULL,
    scene_id           BIGINT    NOT NULL,
    character_name     TEXT      NOT NULL,
    sequence_number    INT       NOT NULL,
    mention_count      INT       NOT NULL DEFAULT 1,
    has_dialogue       BOOLEAN   NOT NULL DEFAULT false,
    has_actions        BOOLEAN   NOT NULL DEFAULT false,
    has_relationships  BOOLEAN   NOT NULL DEFAULT false,
    context_snippets   JSONB     NOT NULL DEFAULT '[]',
    properties         JSONB     NOT NULL DEFAULT '{}',
    created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_npc_mentions_branch_name ON npc_mentions(branch_id, character_name);

CREATE TABLE IF NOT EXISTS npc_tracking (
    id                     BIGSERIAL PRIMARY KEY,
    story_id               BIGINT    NOT NULL,
    branch_id              BIGINT    NOT NULL,
    character_name         TEXT      NOT NULL,
    entity_type            TEXT      NOT NULL DEFAULT 'CHARACTER',
    total_mentions         INT       NOT NULL DEFAULT 0,
    scene_count            INT       NOT NULL DEFAULT 0,
    first_appearance_scene INT       NOT NULL DEFAULT 0,
    last_appearance_scene  INT       NOT NULL DEFAULT 0,
    has_dialogue_count     INT       NOT NULL DEFAULT 0,
    has_actions_count      INT       NOT NULL DEFAULT 0,
    significance_score     DOUBLE PRECISION NOT NULL DEFAULT 0,
    frequency_score        DOUBLE PRECISION NOT NULL DEFAULT 0,
    importance_score       DOUBLE PRECISION NOT NULL DEFAULT 0,
    extracted_profile      JSONB,
    crossed_threshold      BOOLEAN   NOT NULL DEFAULT false,
    user_prompted          BOOLEAN   NOT NULL DEFAULT false,
    profile_extracted      BOOLEAN   NOT NULL DEFAULT false,
    converted_to_character BOOLEAN   NOT NULL DEFAULT false,
    last_calculated        TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (story_id, branch_id, character_name)
);

CREATE TABLE IF NOT EXISTS npc_snapshots (
    id                    BIGSERIAL PRIMARY KEY,
    scene_id              BIGINT    NOT NULL,
    scene_sequence        INT       NOT NULL,
    story_id              BIGINT    NOT NULL,
    branch_id             BIGINT    NOT NULL,
    chapter_id            BIGINT,
    active_for_context    JSONB     NOT NULL DEFAULT '[]',
    inactive_for_context  JSONB     NOT NULL DEFAULT '[]',
    created_at            TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_npc_snapshots_scene ON npc_snapshots(scene_id);
`

const ddlSceneEvents = `
CREATE TABLE IF NOT EXISTS scene_events (
    id          BIGSERIAL PRIMARY KEY,
    story_id    BIGINT    NOT NULL,
    branch_id   BIGINT    NOT NULL,
    scene_id    BIGINT    NOT NULL,
    sequence    INT       NOT NULL,
    event_text  TEXT      NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_scene_events_branch ON scene_events(story_id, branch_id);
`

// ddlSceneEmbeddings returns the DDL for the dense-search index with the
// embedding dimension baked into the column type, following the teacher's
// pattern of substituting the vector width at migration time since pgvector
// requires a fixed dimension per column.
func ddlSceneEmbeddings(dimensions int) string {
	return fmt.Sprintf(`
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS scene_embeddings (
    scene_id    BIGINT PRIMARY KEY,
    story_id    BIGINT NOT NULL,
    branch_id   BIGINT NOT NULL,
    sequence    INT    NOT NULL,
    chapter_id  BIGINT,
    characters  JSONB  NOT NULL DEFAULT '[]',
    content     TEXT   NOT NULL DEFAULT '',
    embedding   vector(%d)
);
CREATE INDEX IF NOT EXISTS idx_scene_embeddings_branch ON scene_embeddings(story_id, branch_id);
CREATE INDEX IF NOT EXISTS idx_scene_embeddings_vec
    ON scene_embeddings USING hnsw (embedding vector_cosine_ops);
`, dimensions)
}

// Migrate creates or ensures all required tables, indexes, and the pgvector
// extension exist. It is idempotent and safe to call on every application
// start.
//
// embeddingDimensions must match the configured embedprovider.Provider's
// Dimensions() (e.g. 1536 for OpenAI text-embedding-3-small). Changing it
// after the first migration requires a manual schema change.
func Migrate(ctx context.Context, pool *pgxpool.Pool, embeddingDimensions int) error {
	statements := []string{ddlGraph, ddlNPC, ddlSceneEvents, ddlSceneEmbeddings(embeddingDimensions)}
	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres: migrate: %w", err)
		}
	}
	return nil
}

// DB is the subset of pgx's connection/pool API the store implementations
// need. Both *pgxpool.Pool and *pgx.Conn satisfy it.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// registerVectorTypes configures a pgxpool.Config so every connection it
// opens can scan into and insert from pgvector.Vector values.
func registerVectorTypes(cfg *pgxpool.Config) {
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}
}
