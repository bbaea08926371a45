package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kahani-engine/narrative/pkg/embedprovider"
	"github.com/kahani-engine/narrative/pkg/narrative/branch"
	"github.com/kahani-engine/narrative/pkg/narrative/npc"
	"github.com/kahani-engine/narrative/pkg/narrative/recall"
)

// Compile-time interface checks.
var (
	_ branch.Store        = (*BranchStore)(nil)
	_ npc.Store           = (*NPCStore)(nil)
	_ recall.DenseSearcher = (*SceneIndex)(nil)
	_ recall.EventStore    = (*SceneIndex)(nil)
	_ recall.SceneReader   = (*SceneIndex)(nil)
)

// Store is the central PostgreSQL-backed persistence layer for the
// narrative engine. It holds a single connection pool and exposes three
// sub-stores: [Store.Branch] (the branch-aware entity graph), [Store.NPC]
// (mention tracking), and [Store.Scenes] (the dense/sparse recall index).
type Store struct {
	pool   *pgxpool.Pool
	branch *BranchStore
	npc    *NPCStore
	scenes *SceneIndex
}

// NewStore opens a connection pool to dsn, registers pgvector types on
// every connection, runs [Migrate], and returns a ready-to-use Store.
//
// embedder is used by [SceneIndex.SearchDense] to embed query text before
// issuing a cosine-similarity search; its Dimensions() must match the
// width baked into the scene_embeddings table at migration time.
func NewStore(ctx context.Context, dsn string, embedder embedprovider.Provider) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse dsn: %w", err)
	}
	registerVectorTypes(cfg)

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	if err := Migrate(ctx, pool, embedder.Dimensions()); err != nil {
		pool.Close()
		return nil, err
	}

	return &Store{
		pool:   pool,
		branch: &BranchStore{db: pool},
		npc:    &NPCStore{db: pool},
		scenes: &SceneIndex{db: pool, embedder: embedder},
	}, nil
}

// Branch returns the branch.Store implementation.
func (s *Store) Branch() *BranchStore { return s.branch }

// NPC returns the npc.Store implementation.
func (s *Store) NPC() *NPCStore { return s.npc }

// Scenes returns the recall dense/sparse index implementation.
func (s *Store) Scenes() *SceneIndex { return s.scenes }

// Close releases all connections held by the underlying pool.
func (s *Store) Close() {
	s.pool.Close()
}
