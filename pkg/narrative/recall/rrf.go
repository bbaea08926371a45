package recall

import "sort"

// FuseRRF combines dense and sparse rankings for each sub-query into a
// single score per scene using Reciprocal Rank Fusion:
// score = Σ 1/(k + rank_in_subquery_i), summed over every ranked list
// (dense and sparse) in which the scene appears, per §4.4 step 4.
func FuseRRF(candidates map[int64]*Candidate, k int) {
	for _, c := range candidates {
		var score float64
		for _, rank := range c.DenseRank {
			score += 1.0 / float64(k+rank)
		}
		for _, rank := range c.SparseRank {
			score += 1.0 / float64(k+rank)
		}
		c.RRFScore = score
	}
}

// TopByRRF returns candidates sorted by RRFScore descending, truncated
// to the top m (or all, if m <= 0).
func TopByRRF(candidates map[int64]*Candidate, m int) []*Candidate {
	out := make([]*Candidate, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RRFScore != out[j].RRFScore {
			return out[i].RRFScore > out[j].RRFScore
		}
		return out[i].Scene.Sequence > out[j].Scene.Sequence
	})
	if m > 0 && len(out) > m {
		out = out[:m]
	}
	return out
}

// bestScore returns the highest QualityScore among candidates. Used by
// the quality gate.
func bestScore(candidates []*Candidate) float64 {
	var best float64
	for _, c := range candidates {
		if s := c.QualityScore(); s > best {
			best = s
		}
	}
	return best
}
