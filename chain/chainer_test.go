package chain

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dotxdb/dotx/dotxerr"
	"github.com/dotxdb/dotx/dotxpb"
)

func fwdAnchor(q, t string, qs, qe, ts, te int64) dotxpb.Anchor {
	return dotxpb.Anchor{
		Query: q, Target: t,
		QueryStart: qs, QueryEnd: qe,
		TargetStart: ts, TargetEnd: te,
		Strand: dotxpb.Forward, MapQ: dotxpb.MissingMapQ, EngineTag: "test",
	}
}

func TestChainEmptyInput(t *testing.T) {
	_, err := Chain(nil, DefaultParams())
	require.Error(t, err)
	require.Equal(t, dotxerr.NoAnchors, dotxerr.Of(err))
}

// Scenario S1: chain build-up on a perfect diagonal.
func TestScenarioS1PerfectDiagonal(t *testing.T) {
	anchors := []dotxpb.Anchor{
		fwdAnchor("chr1", "chr2", 1000, 1100, 5000, 5100),
		fwdAnchor("chr1", "chr2", 1200, 1300, 5200, 5300),
		fwdAnchor("chr1", "chr2", 1400, 1500, 5400, 5500),
	}
	chains, err := Chain(anchors, DefaultParams())
	require.NoError(t, err)
	require.Len(t, chains, 1)
	require.Len(t, chains[0].Indices, 3)
	require.Equal(t, []int{0, 1, 2}, chains[0].Indices)
	require.Greater(t, chains[0].Score, float32(0))
}

// Scenario S2: strand separation -- forward and reverse anchors never merge.
func TestScenarioS2StrandSeparation(t *testing.T) {
	anchors := []dotxpb.Anchor{
		fwdAnchor("chr1", "chr2", 1000, 1100, 5000, 5100),
		{
			Query: "chr1", Target: "chr2",
			QueryStart: 1200, QueryEnd: 1300,
			TargetStart: 5200, TargetEnd: 5300,
			Strand: dotxpb.Reverse, MapQ: dotxpb.MissingMapQ, EngineTag: "test",
		},
	}
	params := DefaultParams()
	params.MinScore = 0
	chains, err := Chain(anchors, params)
	require.NoError(t, err)
	require.Len(t, chains, 2)
	for _, c := range chains {
		require.Len(t, c.Indices, 1)
	}
}

func TestSingleAnchorChainsIffAboveMinScore(t *testing.T) {
	a := fwdAnchor("chr1", "chr2", 0, 100, 0, 100) // avgLen = 100
	params := DefaultParams()
	params.MinScore = 40
	chains, err := Chain([]dotxpb.Anchor{a}, params)
	require.NoError(t, err)
	require.Len(t, chains, 1)

	params.MinScore = 1000
	chains, err = Chain([]dotxpb.Anchor{a}, params)
	require.NoError(t, err)
	require.Empty(t, chains)
}

func TestEveryChainLinkSatisfiesCanLink(t *testing.T) {
	anchors := []dotxpb.Anchor{
		fwdAnchor("chr1", "chr2", 0, 100, 0, 100),
		fwdAnchor("chr1", "chr2", 150, 250, 150, 250),
		fwdAnchor("chr1", "chr2", 300, 400, 300, 400),
	}
	params := DefaultParams()
	chains, err := Chain(anchors, params)
	require.NoError(t, err)
	require.Len(t, chains, 1)
	idx := chains[0].Indices
	for k := 1; k < len(idx); k++ {
		ai, aj := &anchors[idx[k]], &anchors[idx[k-1]]
		require.True(t, canLink(ai, aj, dotxpb.Forward, params))
	}
}

func TestDiagonalDeviationBlocksLink(t *testing.T) {
	a := fwdAnchor("chr1", "chr2", 0, 100, 0, 100)
	b := fwdAnchor("chr1", "chr2", 200, 300, 900, 1000) // diagonal shifted by ~700
	params := DefaultParams()
	require.False(t, canLink(&b, &a, dotxpb.Forward, params))
}

func TestGapCostZeroForAdjacentAnchors(t *testing.T) {
	a := fwdAnchor("chr1", "chr2", 0, 100, 0, 100)
	b := fwdAnchor("chr1", "chr2", 100, 200, 100, 200)
	require.Equal(t, float32(0), gapCost(&b, &a, DefaultParams()))
}

func TestParamsValidate(t *testing.T) {
	p := DefaultParams()
	p.Bandwidth = 0
	require.Error(t, p.Validate())

	p = DefaultParams()
	require.NoError(t, p.Validate())
}
