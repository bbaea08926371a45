package recall

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// Pipeline runs the deterministic search-and-format flow of §4.4: a dense
// vector search per sub-query and one sparse event-index lookup over all
// sub-queries are unioned, fused via Reciprocal Rank Fusion,
// optionally reranked, gated on quality, and the survivors are expanded
// to their narrative neighbors and formatted into a prompt block.
type Pipeline struct {
	dense    DenseSearcher
	events   EventStore
	scenes   SceneReader
	reranker Reranker
	cfg      Config
	logger   *slog.Logger
}

// NewPipeline constructs a Pipeline. reranker may be nil, in which case
// stage 5 is skipped and the quality gate falls back to raw dense
// similarity.
func NewPipeline(dense DenseSearcher, events EventStore, scenes SceneReader, reranker Reranker, cfg Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{dense: dense, events: events, scenes: scenes, reranker: reranker, cfg: cfg.WithDefaults(), logger: logger}
}

// Result is the formatted output of a successful Search, or the zero
// value if the quality gate rejected every candidate.
type Result struct {
	Text     string
	TopScore float64
	SceneIDs []int64
}

// Search runs the full pipeline for one already-decomposed query. It
// returns ok=false (never an error) whenever recall should be silently
// skipped: empty candidate set, quality gate rejection, or a
// non-fatal tool/store failure — per §4.4's "entirely optional, never
// fatal" failure semantics. Context cancellation during the dense search
// also yields ok=false.
func (p *Pipeline) Search(ctx context.Context, storyID, branchID int64, d Decomposition, excludeSequences []int) (Result, bool) {
	if d.Intent == IntentDirect {
		return Result{}, false
	}

	candidates := map[int64]*Candidate{}

	for i, sq := range d.SubQueries {
		hits, err := p.dense.SearchDense(ctx, storyID, branchID, sq, p.cfg.TopKPerSubQuery, excludeSequences)
		if err != nil {
			if ctx.Err() != nil {
				return Result{}, false
			}
			p.logger.Warn("recall: dense search failed, continuing", "sub_query", sq, "error", err)
			continue
		}
		for rank, hit := range hits {
			c := candidates[hit.Scene.SceneID]
			if c == nil {
				c = &Candidate{Scene: hit.Scene, DenseRank: map[int]int{}, SparseRank: map[int]int{}}
				candidates[hit.Scene.SceneID] = c
			}
			c.DenseRank[i] = rank + 1
			if hit.Score > c.BestDenseScore {
				c.BestDenseScore = hit.Score
			}
		}
	}

	if p.events != nil {
		events, err := p.events.EventsForBranch(ctx, storyID, branchID)
		if err != nil {
			p.logger.Warn("recall: event index unavailable, continuing with dense only", "error", err)
		} else {
			matches, err := SearchEvents(events, d.SubQueries, d.Keywords)
			if err != nil {
				p.logger.Warn("recall: sparse search failed, continuing with dense only", "error", err)
			} else {
				sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
				for rank, m := range matches {
					c := candidates[m.Event.SceneID]
					if c == nil {
						c = &Candidate{
							Scene:      SceneRef{SceneID: m.Event.SceneID, Sequence: m.Event.Sequence},
							DenseRank:  map[int]int{},
							SparseRank: map[int]int{},
						}
						candidates[m.Event.SceneID] = c
					}
					c.SparseRank[0] = rank + 1
				}
			}
		}
	}

	if len(candidates) == 0 {
		return Result{}, false
	}

	FuseRRF(candidates, p.cfg.RRFConstant)
	top := TopByRRF(candidates, p.cfg.TopKPerSubQuery*2)

	if p.reranker != nil {
		texts := make([]string, len(top))
		for i, c := range top {
			texts[i] = c.Scene.Content
		}
		scores, err := p.reranker.Rerank(ctx, strings.Join(d.SubQueries, " / "), texts)
		if err != nil {
			p.logger.Warn("recall: rerank failed, falling back to RRF order", "error", err)
		} else if len(scores) == len(top) {
			for i, c := range top {
				c.RerankScore = scores[i]
				c.HasRerank = true
			}
			sort.Slice(top, func(i, j int) bool { return top[i].RerankScore > top[j].RerankScore })
		}
	}

	if bestScore(top) < p.cfg.QualityThreshold {
		return Result{}, false
	}

	survivors := top
	if len(survivors) > p.cfg.TopKPerSubQuery {
		survivors = survivors[:p.cfg.TopKPerSubQuery]
	}

	expanded, err := p.expandNeighbors(ctx, storyID, branchID, survivors)
	if err != nil {
		p.logger.Warn("recall: neighbor expansion failed, using unexpanded candidates", "error", err)
		expanded = sceneRefsFromCandidates(survivors)
	}

	text := formatRelevantPastTurns(expanded)
	sceneIDs := make([]int64, len(expanded))
	for i, s := range expanded {
		sceneIDs[i] = s.SceneID
	}

	return Result{Text: text, TopScore: bestScore(survivors), SceneIDs: sceneIDs}, true
}

func sceneRefsFromCandidates(cands []*Candidate) []SceneRef {
	out := make([]SceneRef, len(cands))
	for i, c := range cands {
		out[i] = c.Scene
	}
	return out
}

// expandNeighbors loads each surviving scene's ±radius neighbors so the
// formatted block has narrative continuity rather than isolated lines,
// deduplicating by scene id and sorting by sequence.
func (p *Pipeline) expandNeighbors(ctx context.Context, storyID, branchID int64, survivors []*Candidate) ([]SceneRef, error) {
	seen := map[int64]SceneRef{}
	for _, c := range survivors {
		minSeq := c.Scene.Sequence - p.cfg.NeighborRadius
		maxSeq := c.Scene.Sequence + p.cfg.NeighborRadius
		scenes, err := p.scenes.ReadScenesInRange(ctx, storyID, branchID, minSeq, maxSeq)
		if err != nil {
			return nil, fmt.Errorf("recall: expand neighbors for scene %d: %w", c.Scene.SceneID, err)
		}
		for _, s := range scenes {
			seen[s.SceneID] = s
		}
	}
	out := make([]SceneRef, 0, len(seen))
	for _, s := range seen {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

func formatRelevantPastTurns(scenes []SceneRef) string {
	var b strings.Builder
	for _, s := range scenes {
		fmt.Fprintf(&b, "[Scene %d] %s\n", s.Sequence, s.Content)
	}
	return strings.TrimRight(b.String(), "\n")
}
