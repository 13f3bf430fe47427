package chain

import (
	"math"
	"sort"

	"github.com/grailbio/base/log"
	"github.com/pkg/errors"

	"github.com/dotxdb/dotx/dotxerr"
	"github.com/dotxdb/dotx/dotxpb"
)

type groupKey struct {
	query, target string
	strand        dotxpb.Strand
}

// Chain groups anchors into high-scoring chains via banded concave-gap
// DP (spec.md S4.4). Anchors are grouped by (Query, Target, Strand);
// each group is chained independently. The returned chains reference
// indices into anchors -- callers must not reorder anchors while the
// result is alive.
//
// Chain fails only on an empty anchors slice (dotxerr.NoAnchors) or on
// params that do not pass Validate (dotxerr.InvalidParams).
func Chain(anchors []dotxpb.Anchor, params Params) ([]dotxpb.Chain, error) {
	if len(anchors) == 0 {
		return nil, errors.Wrap(dotxerr.ErrNoAnchors, "chain.Chain")
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	groups := make(map[groupKey][]int)
	for i := range anchors {
		a := &anchors[i]
		k := groupKey{a.Query, a.Target, a.Strand}
		groups[k] = append(groups[k], i)
	}

	// Map iteration order is randomized per run; visit groups in a
	// fixed (query, target, strand) order so allChains' pre-sort order
	// -- and hence which chains land on either side of the truncation
	// cut below for a same-score tie -- is reproducible across runs.
	keys := make([]groupKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].query != keys[j].query {
			return keys[i].query < keys[j].query
		}
		if keys[i].target != keys[j].target {
			return keys[i].target < keys[j].target
		}
		return keys[i].strand < keys[j].strand
	})

	var allChains []dotxpb.Chain
	for _, k := range keys {
		idx := groups[k]
		chains := chainGroup(anchors, idx, params)
		if params.StrictPerGroupCap && len(chains) > params.MaxChainsPerGroup {
			chains = chains[:params.MaxChainsPerGroup]
		}
		allChains = append(allChains, chains...)
		log.Debug.Printf("chain: group (%s,%s,%s) produced %d chains from %d anchors",
			k.query, k.target, k.strand, len(chains), len(idx))
	}

	sort.SliceStable(allChains, func(i, j int) bool {
		return cmpFloat32Desc(allChains[i].Score, allChains[j].Score)
	})

	if !params.StrictPerGroupCap {
		limit := params.MaxChainsPerGroup * len(groups)
		if limit >= 0 && len(allChains) > limit {
			allChains = allChains[:limit]
		}
	}

	out := allChains[:0]
	for _, c := range allChains {
		if c.Score >= params.MinScore {
			out = append(out, c)
		}
	}
	return out, nil
}

// chainGroup runs the DP over one (q,t,strand) group, whose anchors are
// indexed by idx into the shared anchors array.
func chainGroup(anchors []dotxpb.Anchor, idx []int, params Params) []dotxpb.Chain {
	n := len(idx)
	order := append([]int(nil), idx...)
	sort.Slice(order, func(i, j int) bool {
		ai, aj := &anchors[order[i]], &anchors[order[j]]
		di, dj := ai.QueryStart+ai.TargetStart, aj.QueryStart+aj.TargetStart
		if di != dj {
			return di < dj
		}
		if ai.QueryStart != aj.QueryStart {
			return ai.QueryStart < aj.QueryStart
		}
		return ai.TargetStart < aj.TargetStart
	})

	score := make([]float32, n)
	parent := make([]int, n)
	for i := range parent {
		parent[i] = -1
	}
	if n > 0 {
		score[0] = anchors[order[0]].AvgLen()
	}
	strand := anchors[order[0]].Strand
	for i := 1; i < n; i++ {
		ai := &anchors[order[i]]
		score[i] = ai.AvgLen()
		for j := 0; j < i; j++ {
			aj := &anchors[order[j]]
			if !canLink(ai, aj, strand, params) {
				continue
			}
			cand := score[j] + ai.AvgLen() - gapCost(ai, aj, params)
			if cand > score[i] {
				score[i] = cand
				parent[i] = j
			}
		}
	}

	consumed := make([]bool, n)
	endOrder := make([]int, n)
	for i := range endOrder {
		endOrder[i] = i
	}
	sort.SliceStable(endOrder, func(a, b int) bool {
		return cmpFloat32Desc(score[endOrder[a]], score[endOrder[b]])
	})

	var chains []dotxpb.Chain
	for _, end := range endOrder {
		if consumed[end] || score[end] < params.MinScore {
			continue
		}
		var members []int
		for i := end; i != -1; i = parent[i] {
			if consumed[i] {
				// A cycle-free DP can't revisit, but guard against a
				// shared ancestor claimed by an earlier, higher-scoring
				// chain.
				break
			}
			consumed[i] = true
			members = append(members, order[i])
			if parent[i] == -1 {
				break
			}
		}
		// members was collected end-to-start; reverse to start-to-end.
		for l, r := 0, len(members)-1; l < r; l, r = l+1, r-1 {
			members[l], members[r] = members[r], members[l]
		}
		a0 := anchors[order[end]]
		chains = append(chains, dotxpb.Chain{
			Indices: members,
			Score:   score[end],
			Strand:  strand,
			Query:   a0.Query,
			Target:  a0.Target,
		})
	}
	return chains
}

// canLink reports whether aj may precede ai in a chain (spec.md S4.4).
func canLink(ai, aj *dotxpb.Anchor, strand dotxpb.Strand, params Params) bool {
	if ai.QueryStart < aj.QueryEnd {
		return false
	}
	if strand == dotxpb.Forward {
		if ai.TargetStart < aj.TargetEnd {
			return false
		}
	}
	qDist := ai.QueryStart - aj.QueryEnd
	if qDist > params.MaxDistance {
		return false
	}
	tGap := ai.TargetStart - aj.TargetEnd
	if absInt64(tGap) > params.MaxDistance {
		return false
	}
	diagI := ai.QueryStart - ai.TargetStart
	diagJ := aj.QueryStart - aj.TargetStart
	if absInt64(diagI-diagJ) > params.Bandwidth {
		return false
	}
	return true
}

// gapCost is the concave (logarithmic) gap penalty (spec.md S4.4).
func gapCost(ai, aj *dotxpb.Anchor, params Params) float32 {
	qGap := ai.QueryStart - aj.QueryEnd
	tGap := absInt64(ai.TargetStart - aj.TargetEnd)
	g := qGap
	if tGap > g {
		g = tGap
	}
	if g == 0 {
		return 0
	}
	gf := float64(g)
	return float32(params.GapExtend * gf * math.Log(1+gf/params.MaxGap))
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// cmpFloat32Desc reports whether a should sort before b for a
// descending-by-score ordering, with NaN treated as equal to
// everything (spec.md S4.4's total-order fallback).
func cmpFloat32Desc(a, b float32) bool {
	if math.IsNaN(float64(a)) || math.IsNaN(float64(b)) {
		return false
	}
	return a > b
}
