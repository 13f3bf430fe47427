package verify

import (
	"github.com/pkg/errors"

	"github.com/dotxdb/dotx/dotxerr"
	"github.com/dotxdb/dotx/dotxpb"
)

// tbOp is the traceback operation recorded at each DP cell. Insert
// consumes a query base; Delete consumes a target base (spec.md S4.6).
type tbOp uint8

const (
	tbNone tbOp = iota
	tbMatch
	tbInsert
	tbDelete
)

// negInf is a sentinel score low enough that it never wins a max()
// against any reachable real score, but doesn't overflow when a gap
// penalty is added to it.
const negInf = -(1 << 30)

// AlignmentResult is the outcome of one banded local alignment (spec.md
// S4.6).
type AlignmentResult struct {
	Identity     float32 // percent
	Matches      int
	Mismatches   int
	Insertions   int
	Deletions    int
	Score        int
	QueryStart   int64
	QueryEnd     int64
	TargetStart  int64
	TargetEnd    int64
}

// VerifyAnchor performs banded affine-gap local alignment between the
// query and target sequences bounded (plus padding) by anchor, per
// spec.md S4.6.
func VerifyAnchor(anchor *dotxpb.Anchor, querySeq, targetSeq []byte, params Params) (*AlignmentResult, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	qs, qe, err := paddedRange(anchor.QueryStart, anchor.QueryEnd, int64(len(querySeq)), params.Padding)
	if err != nil {
		return nil, errors.Wrap(err, "query range")
	}
	ts, te, err := paddedRange(anchor.TargetStart, anchor.TargetEnd, int64(len(targetSeq)), params.Padding)
	if err != nil {
		return nil, errors.Wrap(err, "target range")
	}

	Q := querySeq[qs:qe]
	T := targetSeq[ts:te]
	if anchor.Strand == dotxpb.Reverse {
		T = ReverseComplement(T)
	}

	res := bandedAlign(Q, T, params)
	res.QueryStart = qs + res.QueryStart
	res.QueryEnd = qs + res.QueryEnd
	res.TargetStart = ts + res.TargetStart
	res.TargetEnd = ts + res.TargetEnd
	return res, nil
}

// paddedRange computes [start-padding, end+padding) clamped to
// [0, seqLen), failing with InvalidSequence if the result is empty.
func paddedRange(start, end, seqLen, padding int64) (int64, int64, error) {
	s := start - padding
	if s < 0 {
		s = 0
	}
	e := end + padding
	if e > seqLen {
		e = seqLen
	}
	if s >= e {
		return 0, 0, errors.Wrap(dotxerr.New(dotxerr.InvalidSequence, "empty extraction window"), "paddedRange")
	}
	return s, e, nil
}

// bandedAlign runs the banded Gotoh-style DP of spec.md S4.6 over Q
// (query) and T (target), with free end gaps: the alignment always
// starts at (0,0) and ends at whichever cell scores highest.
func bandedAlign(Q, T []byte, params Params) *AlignmentResult {
	m, n := len(Q), len(T)
	B := params.Bandwidth

	dp := make([][]int, m+1)
	tb := make([][]tbOp, m+1)
	for i := range dp {
		dp[i] = make([]int, n+1)
		tb[i] = make([]tbOp, n+1)
		for j := range dp[i] {
			dp[i][j] = negInf
		}
	}
	dp[0][0] = 0

	bestScore := dp[0][0]
	bestI, bestJ := 0, 0
	consider := func(i, j int) {
		if dp[i][j] > bestScore {
			bestScore = dp[i][j]
			bestI, bestJ = i, j
		}
	}

	rowLimit := B
	if rowLimit > n {
		rowLimit = n
	}
	for j := 1; j <= rowLimit; j++ {
		dp[0][j] = params.GapOpen + (j-1)*params.GapExtend
		tb[0][j] = tbDelete
		consider(0, j)
	}
	colLimit := B
	if colLimit > m {
		colLimit = m
	}
	for i := 1; i <= colLimit; i++ {
		dp[i][0] = params.GapOpen + (i-1)*params.GapExtend
		tb[i][0] = tbInsert
		consider(i, 0)
	}

	for i := 1; i <= m; i++ {
		jLo := i - B
		if jLo < 1 {
			jLo = 1
		}
		jHi := i + B
		if jHi > n {
			jHi = n
		}
		for j := jLo; j <= jHi; j++ {
			matchScore := params.MismatchPenalty
			if Q[i-1] == T[j-1] {
				matchScore = params.MatchScore
			}
			matchCand := dp[i-1][j-1] + matchScore

			insertCost := params.GapOpen
			if tb[i-1][j] == tbInsert {
				insertCost = params.GapExtend
			}
			insertCand := dp[i-1][j] + insertCost

			deleteCost := params.GapOpen
			if tb[i][j-1] == tbDelete {
				deleteCost = params.GapExtend
			}
			deleteCand := dp[i][j-1] + deleteCost

			best := matchCand
			op := tbMatch
			if insertCand > best {
				best, op = insertCand, tbInsert
			}
			if deleteCand > best {
				best, op = deleteCand, tbDelete
			}
			dp[i][j] = best
			tb[i][j] = op
			consider(i, j)
		}
	}

	return traceback(Q, T, tb, bestI, bestJ, dp[bestI][bestJ])
}

func traceback(Q, T []byte, tb [][]tbOp, endI, endJ, score int) *AlignmentResult {
	i, j := endI, endJ
	var matches, mismatches, insertions, deletions int
	for tb[i][j] != tbNone {
		switch tb[i][j] {
		case tbMatch:
			if Q[i-1] == T[j-1] {
				matches++
			} else {
				mismatches++
			}
			i--
			j--
		case tbInsert:
			insertions++
			i--
		case tbDelete:
			deletions++
			j--
		}
	}
	total := matches + mismatches + insertions + deletions
	var identity float32
	if total > 0 {
		identity = float32(matches) / float32(total) * 100
	}
	return &AlignmentResult{
		Identity:    identity,
		Matches:     matches,
		Mismatches:  mismatches,
		Insertions:  insertions,
		Deletions:   deletions,
		Score:       score,
		QueryStart:  int64(i),
		QueryEnd:    int64(endI),
		TargetStart: int64(j),
		TargetEnd:   int64(endJ),
	}
}
